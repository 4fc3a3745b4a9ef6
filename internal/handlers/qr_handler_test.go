package handlers

import (
	"bytes"
	"image/png"
	"net/http"
	"strings"
	"testing"

	"qrstudio-backend/internal/microsite"
	"qrstudio-backend/internal/models"
)

func TestKindsListsCatalogAndIcons(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(http.MethodGet, "/api/v1/kinds", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Kinds []map[string]interface{} `json:"kinds"`
		Icons []string                 `json:"icons"`
	}
	decodeJSON(t, rec, &body)
	if len(body.Kinds) < 19 {
		t.Fatalf("expected every kind in the catalog, got %d", len(body.Kinds))
	}
	if len(body.Icons) != len(microsite.Icons()) {
		t.Fatalf("unexpected icon list %v", body.Icons)
	}
}

func TestPayloadEncodesFields(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(http.MethodPost, "/api/v1/qr/payload", models.GeneratePayloadRequest{
		Kind:   "wifi",
		Fields: map[string]string{"ssid": "Home", "password": "pw", "encryption": "WPA"},
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp models.PayloadResponse
	decodeJSON(t, rec, &resp)
	if resp.Payload != "WIFI:T:WPA;S:Home;P:pw;;" {
		t.Fatalf("unexpected payload %q", resp.Payload)
	}
	if resp.Capacity.Length != len(resp.Payload) || resp.Capacity.Level != "ok" {
		t.Fatalf("unexpected capacity %+v", resp.Capacity)
	}
}

func TestPayloadRejectsUnknownKind(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(http.MethodPost, "/api/v1/qr/payload", models.GeneratePayloadRequest{Kind: "fax"}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if rec := srv.do(http.MethodPost, "/api/v1/qr/payload", map[string]string{}, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing kind should fail binding, got %d", rec.Code)
	}
}

func TestMicrositePayloadRoundTripsThroughDecode(t *testing.T) {
	srv := newTestServer(t)

	cfg := microsite.DefaultConfig()
	cfg.Title = "Pop-up Store"
	cfg.Links = []microsite.Link{{ID: "a", Type: microsite.LinkTypeLink, Label: "Shop", URL: "https://shop.example.com"}}

	rec := srv.do(http.MethodPost, "/api/v1/qr/payload", models.GeneratePayloadRequest{Kind: "microsite", Microsite: &cfg}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp models.PayloadResponse
	decodeJSON(t, rec, &resp)
	if !strings.HasPrefix(resp.Payload, testViewerBase+"?p=") || resp.Token == "" {
		t.Fatalf("unexpected share link %q", resp.Payload)
	}

	decoded := srv.do(http.MethodPost, "/api/v1/microsites/decode", models.DecodeMicrositeRequest{URL: resp.Payload}, nil)
	if decoded.Code != http.StatusOK {
		t.Fatalf("decode failed: %d %s", decoded.Code, decoded.Body.String())
	}
	var out struct {
		Config microsite.Config `json:"config"`
	}
	decodeJSON(t, decoded, &out)
	if out.Config.Title != "Pop-up Store" || len(out.Config.Links) != 1 || out.Config.Links[0].URL != "https://shop.example.com" {
		t.Fatalf("unexpected decoded config %+v", out.Config)
	}

	bad := srv.do(http.MethodPost, "/api/v1/microsites/decode", models.DecodeMicrositeRequest{Token: "!!!"}, nil)
	if bad.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for a broken token, got %d", bad.Code)
	}
}

func renderBody(payload string, width int) models.RenderRequest {
	opts := models.DefaultVisualOptions()
	opts.Width = width
	return models.RenderRequest{Payload: payload, Options: opts}
}

func TestRenderPNGAndSVG(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(http.MethodPost, "/api/v1/qr/render", renderBody("https://example.com", 256), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("unexpected content type %q", ct)
	}
	img, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("response is not a PNG: %v", err)
	}
	if img.Bounds().Dx() != 256 {
		t.Fatalf("expected 256px image, got %d", img.Bounds().Dx())
	}

	svg := srv.do(http.MethodPost, "/api/v1/qr/render?format=svg&download=1", renderBody("https://example.com", 256), nil)
	if svg.Code != http.StatusOK || svg.Header().Get("Content-Type") != "image/svg+xml" {
		t.Fatalf("unexpected svg response %d %q", svg.Code, svg.Header().Get("Content-Type"))
	}
	if !strings.Contains(svg.Body.String(), "<svg") {
		t.Fatalf("expected svg markup")
	}
	if got := svg.Header().Get("Content-Disposition"); !strings.Contains(got, "qrcode.svg") {
		t.Fatalf("unexpected disposition %q", got)
	}
}

func TestRenderRawAlwaysReturnsPNG(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(http.MethodPost, "/api/v1/qr/render?format=svg&raw=1", renderBody("hello", 128), nil)
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("raw mode must answer with PNG, got %d %q", rec.Code, rec.Header().Get("Content-Type"))
	}
}

func TestRenderComputesPayloadFromKind(t *testing.T) {
	srv := newTestServer(t)

	req := renderBody("", 128)
	req.Kind = "phone"
	req.Fields = map[string]string{"phone": "+15550100"}
	if rec := srv.do(http.MethodPost, "/api/v1/qr/render", req, nil); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRenderErrors(t *testing.T) {
	srv := newTestServer(t)

	if rec := srv.do(http.MethodPost, "/api/v1/qr/render?format=gif", renderBody("x", 128), nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown format: expected 400, got %d", rec.Code)
	}

	huge := renderBody(strings.Repeat("a", 5000), 128)
	if rec := srv.do(http.MethodPost, "/api/v1/qr/render", huge, nil); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("oversized payload: expected 422, got %d", rec.Code)
	}

	badColor := renderBody("x", 128)
	badColor.Options.Color = "red"
	if rec := srv.do(http.MethodPost, "/api/v1/qr/render", badColor, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid color: expected 400, got %d", rec.Code)
	}
}
