package qrcontent

import (
	"net/url"
	"strings"
)

// url.QueryEscape leaves a narrower unreserved set than encodeURIComponent
// and turns spaces into '+'. These replacements bring it in line.
var componentFixups = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// encodeURIComponent percent-encodes s leaving only
// A-Z a-z 0-9 - _ . ! ~ * ' ( ) unescaped.
func encodeURIComponent(s string) string {
	return componentFixups.Replace(url.QueryEscape(s))
}

// EncodeURIComponent is exported for the microsite codec, which must use
// the same escaping as mailto and wa.me payloads.
func EncodeURIComponent(s string) string {
	return encodeURIComponent(s)
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func identity(s string) string { return s }

var wifiEscaper = strings.NewReplacer(
	`\`, `\\`,
	`;`, `\;`,
	`,`, `\,`,
	`:`, `\:`,
	`"`, `\"`,
)

func escapeWiFi(s string) string {
	return wifiEscaper.Replace(s)
}

// RFC 6350 section 3.4 and RFC 5545 section 3.3.11 text escaping.
var textEscaper = strings.NewReplacer(
	`\`, `\\`,
	`;`, `\;`,
	`,`, `\,`,
	"\r\n", `\n`,
	"\n", `\n`,
)

func escapeText(s string) string {
	return textEscaper.Replace(s)
}
