package service

import (
	"strings"
	"testing"
)

func TestRenderDescription(t *testing.T) {
	got := string(RenderDescription("Fresh **coffee** daily\nsee https://example.com"))
	if !strings.Contains(got, "<strong>coffee</strong>") {
		t.Fatalf("expected emphasis to render, got %q", got)
	}
	if !strings.Contains(got, "<br") {
		t.Fatalf("expected hard wraps, got %q", got)
	}
	if !strings.Contains(got, `href="https://example.com"`) {
		t.Fatalf("expected bare url to be linked, got %q", got)
	}
}

func TestRenderDescriptionStripsScript(t *testing.T) {
	got := string(RenderDescription(`<script>alert(1)</script>[x](javascript:alert(1))`))
	if strings.Contains(got, "<script") || strings.Contains(got, "javascript:") {
		t.Fatalf("unsafe markup survived: %q", got)
	}
	if RenderDescription("   ") != "" {
		t.Fatalf("expected empty output for blank input")
	}
}
