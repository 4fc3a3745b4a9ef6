package handlers

import (
	"net/http"
	"strings"
	"testing"

	"qrstudio-backend/internal/microsite"
	"qrstudio-backend/internal/models"
)

type micrositeBody struct {
	Microsite struct {
		Slug   string           `json:"slug"`
		Config microsite.Config `json:"config"`
	} `json:"microsite"`
	EditToken string `json:"edit_token"`
	URL       string `json:"url"`
	ShareURL  string `json:"share_url"`
	Token     string `json:"token"`
}

type linkBody struct {
	Link microsite.Link `json:"link"`
}

func createMicrosite(t *testing.T, srv *testServer, req models.CreateMicrositeRequest) micrositeBody {
	t.Helper()
	rec := srv.do(http.MethodPost, "/api/v1/microsites", req, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create failed: %d %s", rec.Code, rec.Body.String())
	}
	var body micrositeBody
	decodeJSON(t, rec, &body)
	return body
}

func TestCreateMicrositeReturnsEditToken(t *testing.T) {
	srv := newTestServer(t)

	cfg := microsite.DefaultConfig()
	cfg.Title = "Flower Market"
	body := createMicrosite(t, srv, models.CreateMicrositeRequest{Config: cfg})

	if body.Microsite.Slug != "flower-market" {
		t.Fatalf("unexpected slug %q", body.Microsite.Slug)
	}
	if body.EditToken == "" {
		t.Fatalf("expected an edit token on create")
	}
	if body.URL != testViewerBase+"/flower-market" {
		t.Fatalf("unexpected page url %q", body.URL)
	}
	if !strings.HasPrefix(body.ShareURL, testViewerBase+"?p=") {
		t.Fatalf("unexpected share url %q", body.ShareURL)
	}

	get := srv.do(http.MethodGet, "/api/v1/microsites/flower-market", nil, nil)
	if get.Code != http.StatusOK {
		t.Fatalf("get failed: %d", get.Code)
	}
	var fetched micrositeBody
	decodeJSON(t, get, &fetched)
	if fetched.EditToken != "" {
		t.Fatalf("reads must never expose the edit token")
	}
	if fetched.Microsite.Config.Title != "Flower Market" {
		t.Fatalf("unexpected config %+v", fetched.Microsite.Config)
	}
}

func TestCreateMicrositeSlugErrors(t *testing.T) {
	srv := newTestServer(t)

	createMicrosite(t, srv, models.CreateMicrositeRequest{Slug: "taken", Config: microsite.DefaultConfig()})

	if rec := srv.do(http.MethodPost, "/api/v1/microsites", models.CreateMicrositeRequest{Slug: "taken", Config: microsite.DefaultConfig()}, nil); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for a taken slug, got %d", rec.Code)
	}
	if rec := srv.do(http.MethodPost, "/api/v1/microsites", models.CreateMicrositeRequest{Slug: "Not A Slug", Config: microsite.DefaultConfig()}, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for an invalid slug, got %d", rec.Code)
	}
}

func TestMicrositeEditsRequireToken(t *testing.T) {
	srv := newTestServer(t)
	created := createMicrosite(t, srv, models.CreateMicrositeRequest{Slug: "guarded", Config: microsite.DefaultConfig()})

	link := microsite.Link{Label: "Site", URL: "https://example.com"}
	if rec := srv.do(http.MethodPost, "/api/v1/microsites/guarded/links", link, nil); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without token, got %d", rec.Code)
	}
	if rec := srv.do(http.MethodPost, "/api/v1/microsites/guarded/links", link, map[string]string{EditTokenHeader: "forged"}); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 with a forged token, got %d", rec.Code)
	}
	bearer := map[string]string{"Authorization": "Bearer " + created.EditToken}
	if rec := srv.do(http.MethodPost, "/api/v1/microsites/guarded/links", link, bearer); rec.Code != http.StatusCreated {
		t.Fatalf("expected bearer token to be accepted, got %d", rec.Code)
	}
	if rec := srv.do(http.MethodPost, "/api/v1/microsites/missing/links", link, bearer); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for a missing microsite, got %d", rec.Code)
	}
}

func TestMicrositeLinkLifecycle(t *testing.T) {
	srv := newTestServer(t)
	created := createMicrosite(t, srv, models.CreateMicrositeRequest{Slug: "links", Config: microsite.DefaultConfig()})
	auth := map[string]string{EditTokenHeader: created.EditToken}

	first := srv.do(http.MethodPost, "/api/v1/microsites/links/links", microsite.Link{Label: "One", URL: "https://one.example.com"}, auth)
	if first.Code != http.StatusCreated {
		t.Fatalf("add failed: %d %s", first.Code, first.Body.String())
	}
	var one linkBody
	decodeJSON(t, first, &one)
	if one.Link.ID == "" || one.Link.Type != microsite.LinkTypeLink || one.Link.Icon != microsite.IconLink {
		t.Fatalf("expected id and defaults on added link, got %+v", one.Link)
	}

	second := srv.do(http.MethodPost, "/api/v1/microsites/links/links?preset=product", nil, auth)
	if second.Code != http.StatusCreated {
		t.Fatalf("preset add failed: %d %s", second.Code, second.Body.String())
	}
	var two linkBody
	decodeJSON(t, second, &two)
	if two.Link.Type != microsite.LinkTypeProduct || two.Link.Label != "Product Name" {
		t.Fatalf("expected product placeholder, got %+v", two.Link)
	}
	if two.Link.ID == one.Link.ID {
		t.Fatalf("link ids must be unique")
	}

	update := srv.do(http.MethodPut, "/api/v1/microsites/links/links/"+one.Link.ID, microsite.Link{Label: "Uno", URL: "https://uno.example.com"}, auth)
	if update.Code != http.StatusOK {
		t.Fatalf("update failed: %d %s", update.Code, update.Body.String())
	}
	var updated linkBody
	decodeJSON(t, update, &updated)
	if updated.Link.ID != one.Link.ID || updated.Link.Label != "Uno" {
		t.Fatalf("update must keep the id, got %+v", updated.Link)
	}

	reorder := srv.do(http.MethodPost, "/api/v1/microsites/links/links/reorder", models.ReorderLinksRequest{LinkIDs: []string{two.Link.ID, one.Link.ID}}, auth)
	if reorder.Code != http.StatusOK {
		t.Fatalf("reorder failed: %d %s", reorder.Code, reorder.Body.String())
	}
	var ordered struct {
		Links []microsite.Link `json:"links"`
	}
	decodeJSON(t, reorder, &ordered)
	if len(ordered.Links) != 2 || ordered.Links[0].ID != two.Link.ID {
		t.Fatalf("unexpected order %+v", ordered.Links)
	}

	partial := srv.do(http.MethodPost, "/api/v1/microsites/links/links/reorder", models.ReorderLinksRequest{LinkIDs: []string{one.Link.ID}}, auth)
	if partial.Code != http.StatusBadRequest {
		t.Fatalf("partial reorder: expected 400, got %d", partial.Code)
	}

	if rec := srv.do(http.MethodDelete, "/api/v1/microsites/links/links/"+one.Link.ID, nil, auth); rec.Code != http.StatusOK {
		t.Fatalf("remove failed: %d", rec.Code)
	}
	if rec := srv.do(http.MethodDelete, "/api/v1/microsites/links/links/"+one.Link.ID, nil, auth); rec.Code != http.StatusNotFound {
		t.Fatalf("second remove: expected 404, got %d", rec.Code)
	}
	if rec := srv.do(http.MethodPut, "/api/v1/microsites/links/links/"+one.Link.ID, microsite.Link{Label: "Ghost"}, auth); rec.Code != http.StatusNotFound {
		t.Fatalf("update of removed link: expected 404, got %d", rec.Code)
	}
}

func TestReplaceRotateAndDelete(t *testing.T) {
	srv := newTestServer(t)
	created := createMicrosite(t, srv, models.CreateMicrositeRequest{Slug: "cycle", Config: microsite.DefaultConfig()})
	auth := map[string]string{EditTokenHeader: created.EditToken}

	next := microsite.DefaultConfig()
	next.Title = "Renamed"
	next.ThemeColor = "#000000"
	replaced := srv.do(http.MethodPut, "/api/v1/microsites/cycle", models.UpdateMicrositeRequest{Config: next}, auth)
	if replaced.Code != http.StatusOK {
		t.Fatalf("replace failed: %d %s", replaced.Code, replaced.Body.String())
	}
	var body micrositeBody
	decodeJSON(t, replaced, &body)
	if body.Microsite.Config.Title != "Renamed" || body.Microsite.Slug != "cycle" {
		t.Fatalf("unexpected replaced microsite %+v", body.Microsite)
	}

	bad := next
	bad.ThemeColor = "purple"
	if rec := srv.do(http.MethodPut, "/api/v1/microsites/cycle", models.UpdateMicrositeRequest{Config: bad}, auth); rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid theme color: expected 400, got %d", rec.Code)
	}

	rotated := srv.do(http.MethodPost, "/api/v1/microsites/cycle/token", nil, auth)
	if rotated.Code != http.StatusOK {
		t.Fatalf("rotate failed: %d", rotated.Code)
	}
	var token struct {
		EditToken string `json:"edit_token"`
	}
	decodeJSON(t, rotated, &token)

	if rec := srv.do(http.MethodDelete, "/api/v1/microsites/cycle", nil, auth); rec.Code != http.StatusForbidden {
		t.Fatalf("rotated-out token must be refused, got %d", rec.Code)
	}
	if rec := srv.do(http.MethodDelete, "/api/v1/microsites/cycle", nil, map[string]string{EditTokenHeader: token.EditToken}); rec.Code != http.StatusOK {
		t.Fatalf("delete failed: %d", rec.Code)
	}
	if rec := srv.do(http.MethodGet, "/api/v1/microsites/cycle", nil, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestListMicrosites(t *testing.T) {
	srv := newTestServer(t)
	createMicrosite(t, srv, models.CreateMicrositeRequest{Slug: "a", Config: microsite.DefaultConfig()})
	createMicrosite(t, srv, models.CreateMicrositeRequest{Slug: "b", Config: microsite.DefaultConfig()})

	rec := srv.do(http.MethodGet, "/api/v1/microsites?limit=10", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list failed: %d", rec.Code)
	}
	var body struct {
		Total int64 `json:"total"`
	}
	decodeJSON(t, rec, &body)
	if body.Total != 2 {
		t.Fatalf("expected 2 microsites, got %d", body.Total)
	}
}
