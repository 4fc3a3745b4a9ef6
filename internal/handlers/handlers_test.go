package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"qrstudio-backend/internal/models"
	"qrstudio-backend/internal/service"
	"qrstudio-backend/pkg/validator"
)

const testViewerBase = "https://qr.example.com/m"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	validator.Init()
	os.Exit(m.Run())
}

type memoryMicrositeRepo struct {
	mu     sync.Mutex
	nextID uint
	sites  map[string]models.Microsite
}

func newMemoryMicrositeRepo() *memoryMicrositeRepo {
	return &memoryMicrositeRepo{sites: make(map[string]models.Microsite)}
}

func (r *memoryMicrositeRepo) Create(ctx context.Context, site *models.Microsite) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sites[site.Slug]; exists {
		return errors.New("duplicate slug")
	}
	r.nextID++
	site.ID = r.nextID
	site.CreatedAt = time.Now()
	r.sites[site.Slug] = *site
	return nil
}

func (r *memoryMicrositeRepo) Update(ctx context.Context, site *models.Microsite) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sites[site.Slug] = *site
	return nil
}

func (r *memoryMicrositeRepo) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for slug, site := range r.sites {
		if site.ID == id {
			delete(r.sites, slug)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *memoryMicrositeRepo) GetBySlug(ctx context.Context, slug string) (*models.Microsite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	site, ok := r.sites[slug]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &site, nil
}

func (r *memoryMicrositeRepo) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sites[slug]
	return ok, nil
}

func (r *memoryMicrositeRepo) IncrementViews(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for slug, site := range r.sites {
		if site.ID == id {
			site.Views++
			r.sites[slug] = site
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *memoryMicrositeRepo) List(ctx context.Context, limit, offset int) ([]models.Microsite, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Microsite, 0, len(r.sites))
	for _, site := range r.sites {
		out = append(out, site)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

type memoryDesignRepo struct {
	nextID  uint
	designs map[uint]models.Design
}

func (r *memoryDesignRepo) Create(ctx context.Context, design *models.Design) error {
	r.nextID++
	design.ID = r.nextID
	r.designs[design.ID] = *design
	return nil
}

func (r *memoryDesignRepo) GetByID(ctx context.Context, id uint) (*models.Design, error) {
	design, ok := r.designs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &design, nil
}

func (r *memoryDesignRepo) List(ctx context.Context, kind string, limit, offset int) ([]models.Design, int64, error) {
	var out []models.Design
	for id := uint(1); id <= r.nextID; id++ {
		if design, ok := r.designs[id]; ok && (kind == "" || design.Kind == kind) {
			out = append(out, design)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memoryDesignRepo) Delete(ctx context.Context, id uint) error {
	if _, ok := r.designs[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.designs, id)
	return nil
}

type testServer struct {
	router *gin.Engine
	repo   *memoryMicrositeRepo
}

// newTestServer wires real services over in-memory repositories, with the
// same routes the application registers.
func newTestServer(t *testing.T) *testServer {
	t.Helper()

	repo := newMemoryMicrositeRepo()
	qr := service.NewQRService(testViewerBase)
	renderer := service.NewRenderService(nil, nil, 0, 1024)
	microsites := service.NewMicrositeService(
		repo,
		nil,
		service.NewEditTokens("handler-secret", time.Hour),
		qr,
		func(slug string) string { return testViewerBase + "/" + slug },
	)
	designs := service.NewDesignService(&memoryDesignRepo{designs: map[uint]models.Design{}}, qr)
	uploads := service.NewUploadService(t.TempDir(), 1<<20)

	viewer, err := NewViewerHandler(qr, microsites, "dark")
	if err != nil {
		t.Fatalf("viewer init failed: %v", err)
	}
	qrHandler := NewQRHandler(qr, renderer)
	micrositeHandler := NewMicrositeHandler(microsites)
	designHandler := NewDesignHandler(designs)
	uploadHandler := NewUploadHandler(uploads)

	router := gin.New()
	router.GET("/m", viewer.ShowToken)
	router.GET("/m/:slug", viewer.ShowStored)

	v1 := router.Group("/api/v1")
	v1.GET("/kinds", qrHandler.Kinds)
	v1.POST("/qr/payload", qrHandler.Payload)
	v1.POST("/qr/render", qrHandler.Render)
	v1.POST("/microsites", micrositeHandler.Create)
	v1.POST("/microsites/decode", qrHandler.DecodeMicrosite)
	v1.GET("/microsites", micrositeHandler.List)
	v1.GET("/microsites/:slug", micrositeHandler.Get)
	v1.PUT("/microsites/:slug", micrositeHandler.Replace)
	v1.DELETE("/microsites/:slug", micrositeHandler.Delete)
	v1.POST("/microsites/:slug/token", micrositeHandler.RotateToken)
	v1.POST("/microsites/:slug/links", micrositeHandler.AddLink)
	v1.POST("/microsites/:slug/links/reorder", micrositeHandler.ReorderLinks)
	v1.PUT("/microsites/:slug/links/:linkId", micrositeHandler.UpdateLink)
	v1.DELETE("/microsites/:slug/links/:linkId", micrositeHandler.RemoveLink)
	v1.POST("/designs", designHandler.Create)
	v1.GET("/designs", designHandler.List)
	v1.GET("/designs/:id", designHandler.Get)
	v1.DELETE("/designs/:id", designHandler.Delete)
	v1.POST("/uploads", uploadHandler.Upload)
	v1.GET("/uploads", uploadHandler.List)
	v1.DELETE("/uploads", uploadHandler.Delete)

	return &testServer{router: router, repo: repo}
}

func (s *testServer) do(method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dest); err != nil {
		t.Fatalf("response is not JSON: %v (%s)", err, rec.Body.String())
	}
}

func TestUnknownRouteIsNotFound(t *testing.T) {
	srv := newTestServer(t)
	if rec := srv.do(http.MethodGet, "/api/v1/nothing", nil, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
