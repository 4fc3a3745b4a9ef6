package main

import (
	"bytes"
	"encoding/json"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"qrstudio-backend/internal/microsite"
)

func TestRunEncodesFlags(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run([]string{"--kind", "phone", "--field", "phone=+15550100"}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	if lines[0] != "tel:+15550100" {
		t.Fatalf("unexpected payload line %q", lines[0])
	}
	if lines[1] != "length: 13 (ok)" {
		t.Fatalf("unexpected capacity line %q", lines[1])
	}
}

func TestRunRequiresKind(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if err := run(nil, &stdout, &stderr); err == nil {
		t.Fatalf("expected an error without --kind")
	}
	if err := run([]string{"--kind", "fax"}, &stdout, &stderr); err == nil {
		t.Fatalf("expected an error for an unknown kind")
	}
}

func TestRunWritesImage(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "code.png")

	var stdout, stderr bytes.Buffer
	err := run([]string{"-k", "url", "-f", "url=https://example.com", "--out", out, "--width", "200", "--dot-style", "dots"}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("image not written: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	if img.Bounds().Dx() != 200 {
		t.Fatalf("expected 200px, got %d", img.Bounds().Dx())
	}
}

func TestRunReadsYAMLDescription(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shop.yaml")
	doc := `kind: microsite
microsite:
  title: Weekend Market
  themeColor: "#10b981"
  links:
    - label: Stalls
      url: https://market.example.com
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	var stdout, stderr bytes.Buffer
	if err := run([]string{"--file", path, "--base-url", "https://qr.example.com/m", "--json"}, &stdout, &stderr); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	var resp struct {
		Payload string `json:"payload"`
		Token   string `json:"token"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if !strings.HasPrefix(resp.Payload, "https://qr.example.com/m?p=") {
		t.Fatalf("unexpected share link %q", resp.Payload)
	}
	cfg, ok := microsite.Deserialize(resp.Token)
	if !ok || cfg.Title != "Weekend Market" || len(cfg.Links) != 1 {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestParseDescriptionJSONCAndYAMLFields(t *testing.T) {
	jsoncDoc := []byte(`{
		// comments and trailing commas are fine
		"kind": "sms",
		"fields": {"phone": "+15550100", "message": "hi",},
	}`)
	desc, err := parseDescription(jsoncDoc, ".jsonc")
	if err != nil {
		t.Fatalf("jsonc parse failed: %v", err)
	}
	if desc.Kind != "sms" || desc.Fields["message"] != "hi" {
		t.Fatalf("unexpected description %+v", desc)
	}

	yamlDoc := []byte("kind: location\nfields:\n  lat: 40.7128\n  lng: -74.006\n")
	desc, err = parseDescription(yamlDoc, ".yml")
	if err != nil {
		t.Fatalf("yaml parse failed: %v", err)
	}
	if desc.Fields["lat"] != "40.7128" || desc.Fields["lng"] != "-74.006" {
		t.Fatalf("numeric yaml fields should become strings, got %+v", desc.Fields)
	}
}

func TestRunDecode(t *testing.T) {
	token := microsite.Serialize(microsite.Config{Title: "Decoded", Links: []microsite.Link{}})

	var stdout bytes.Buffer
	if err := run([]string{"decode", "https://qr.example.com/m?p=" + token}, &stdout, &bytes.Buffer{}); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if !strings.Contains(stdout.String(), `"title": "Decoded"`) {
		t.Fatalf("unexpected output %s", stdout.String())
	}

	if err := run([]string{"decode", "not-a-token"}, &bytes.Buffer{}, &bytes.Buffer{}); err == nil {
		t.Fatalf("expected decode error")
	}
}
