package service

import (
	"bytes"
	"html/template"
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"qrstudio-backend/pkg/validator"
)

var (
	descriptionMarkdown     goldmark.Markdown
	descriptionMarkdownOnce sync.Once
)

func markdownRenderer() goldmark.Markdown {
	descriptionMarkdownOnce.Do(func() {
		descriptionMarkdown = goldmark.New(
			goldmark.WithExtensions(extension.Linkify, extension.Strikethrough),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		)
	})
	return descriptionMarkdown
}

// RenderDescription turns a microsite description into sanitized HTML.
// Descriptions arrive in share tokens from anyone, so raw HTML is never
// trusted: goldmark escapes it and bluemonday strips what remains.
func RenderDescription(source string) template.HTML {
	source = strings.TrimSpace(source)
	if source == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := markdownRenderer().Convert([]byte(source), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(source))
	}
	return template.HTML(validator.SanitizeHTML(buf.String()))
}
