package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"qrstudio-backend/internal/microsite"
	"qrstudio-backend/internal/models"
)

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
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	total := int64(len(out))
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, total, nil
}

type recordingCache struct {
	invalidated []string
}

func (c *recordingCache) CacheMicrosite(ctx context.Context, slug string, site interface{}) error {
	return nil
}

func (c *recordingCache) GetCachedMicrosite(ctx context.Context, slug string, dest interface{}) error {
	return errors.New("miss")
}

func (c *recordingCache) InvalidateMicrosite(ctx context.Context, slug string) error {
	c.invalidated = append(c.invalidated, slug)
	return nil
}

func newTestMicrositeService() (*MicrositeService, *memoryMicrositeRepo, *recordingCache) {
	repo := newMemoryMicrositeRepo()
	cache := &recordingCache{}
	svc := NewMicrositeService(
		repo,
		cache,
		NewEditTokens("test-secret", time.Hour),
		NewQRService("https://qr.example.com/m"),
		func(slug string) string { return "https://qr.example.com/m/" + slug },
	)
	return svc, repo, cache
}

func sampleConfig() microsite.Config {
	cfg := microsite.DefaultConfig()
	cfg.Title = "Café Olé"
	cfg.Links = []microsite.Link{
		{Label: "Menu", URL: "https://example.com/menu"},
		{Type: microsite.LinkTypeProduct, Label: "Beans", Price: "12.00", Currency: "€"},
	}
	return cfg
}

func TestCreateMicrosite(t *testing.T) {
	svc, _, _ := newTestMicrositeService()
	ctx := context.Background()

	resp, err := svc.Create(ctx, models.CreateMicrositeRequest{Config: sampleConfig()})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if resp.Microsite.Slug != "cafe-ole" {
		t.Fatalf("unexpected slug %q", resp.Microsite.Slug)
	}
	if resp.EditToken == "" {
		t.Fatal("expected an edit token")
	}
	if resp.URL != "https://qr.example.com/m/cafe-ole" {
		t.Fatalf("unexpected url %q", resp.URL)
	}

	links := resp.Microsite.Config.Data().Links
	if len(links) != 2 || links[0].ID == "" || links[1].ID == "" || links[0].ID == links[1].ID {
		t.Fatalf("expected distinct generated ids, got %+v", links)
	}
	if links[0].Type != microsite.LinkTypeLink || links[0].Icon != microsite.IconLink {
		t.Fatalf("expected link defaults, got %+v", links[0])
	}
	if links[1].Icon != microsite.IconShoppingBag {
		t.Fatalf("expected product icon, got %q", links[1].Icon)
	}

	decoded, ok := microsite.Deserialize(resp.Token)
	if !ok || decoded.Title != "Café Olé" || len(decoded.Links) != 2 {
		t.Fatalf("share token does not carry the stored config: %+v", decoded)
	}
	if resp.Capacity.Level != "ok" {
		t.Fatalf("unexpected capacity %+v", resp.Capacity)
	}
}

func TestCreateMicrositeSlugCollisions(t *testing.T) {
	svc, _, _ := newTestMicrositeService()
	ctx := context.Background()

	first, err := svc.Create(ctx, models.CreateMicrositeRequest{Config: sampleConfig()})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	second, err := svc.Create(ctx, models.CreateMicrositeRequest{Config: sampleConfig()})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if first.Microsite.Slug != "cafe-ole" || second.Microsite.Slug != "cafe-ole-2" {
		t.Fatalf("unexpected slugs %q and %q", first.Microsite.Slug, second.Microsite.Slug)
	}

	if _, err := svc.Create(ctx, models.CreateMicrositeRequest{Slug: "cafe-ole", Config: sampleConfig()}); !errors.Is(err, ErrSlugTaken) {
		t.Fatalf("expected ErrSlugTaken, got %v", err)
	}
	if _, err := svc.Create(ctx, models.CreateMicrositeRequest{Slug: "Not A Slug", Config: sampleConfig()}); !errors.Is(err, ErrInvalidSlug) {
		t.Fatalf("expected ErrInvalidSlug, got %v", err)
	}

	untitled := microsite.DefaultConfig()
	untitled.Title = "!!!"
	resp, err := svc.Create(ctx, models.CreateMicrositeRequest{Config: untitled})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if resp.Microsite.Slug != "page" {
		t.Fatalf("expected fallback slug, got %q", resp.Microsite.Slug)
	}
}

func TestMicrositeLinkEdits(t *testing.T) {
	svc, repo, cache := newTestMicrositeService()
	ctx := context.Background()

	created, err := svc.Create(ctx, models.CreateMicrositeRequest{Config: sampleConfig()})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	slug, token := created.Microsite.Slug, created.EditToken
	original := created.Microsite.Config.Data().Links

	added, err := svc.AddLink(ctx, slug, token, microsite.Link{Type: microsite.LinkTypeFile, Label: "Price list", URL: "/uploads/prices.pdf"})
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if added.ID == "" || added.Icon != microsite.IconDownload {
		t.Fatalf("unexpected added link %+v", added)
	}

	updated, err := svc.UpdateLink(ctx, slug, token, original[0].ID, microsite.Link{Label: "Lunch menu", URL: "https://example.com/lunch"})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.ID != original[0].ID || updated.Label != "Lunch menu" {
		t.Fatalf("unexpected updated link %+v", updated)
	}

	if err := svc.RemoveLink(ctx, slug, token, original[1].ID); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if err := svc.RemoveLink(ctx, slug, token, original[1].ID); !errors.Is(err, microsite.ErrLinkNotFound) {
		t.Fatalf("expected ErrLinkNotFound on second remove, got %v", err)
	}

	ordered, err := svc.ReorderLinks(ctx, slug, token, []string{added.ID, original[0].ID})
	if err != nil {
		t.Fatalf("reorder failed: %v", err)
	}
	if ordered[0].ID != added.ID || ordered[1].ID != original[0].ID {
		t.Fatalf("unexpected order %+v", ordered)
	}
	if _, err := svc.ReorderLinks(ctx, slug, token, []string{added.ID}); !errors.Is(err, microsite.ErrInvalidReorder) {
		t.Fatalf("expected ErrInvalidReorder, got %v", err)
	}

	stored, _ := repo.GetBySlug(ctx, slug)
	links := stored.Config.Data().Links
	if len(links) != 2 || links[0].Label != "Price list" || links[1].Label != "Lunch menu" {
		t.Fatalf("unexpected stored links %+v", links)
	}
	if len(cache.invalidated) == 0 {
		t.Fatal("expected cache invalidation after edits")
	}
}

func TestAddLinkNeverReusesRemovedID(t *testing.T) {
	svc, repo, _ := newTestMicrositeService()
	ctx := context.Background()

	created, err := svc.Create(ctx, models.CreateMicrositeRequest{Config: sampleConfig()})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	slug, token := created.Microsite.Slug, created.EditToken
	removedID := created.Microsite.Config.Data().Links[0].ID

	if err := svc.RemoveLink(ctx, slug, token, removedID); err != nil {
		t.Fatalf("remove failed: %v", err)
	}

	added, err := svc.AddLink(ctx, slug, token, microsite.Link{ID: removedID, Label: "Comeback"})
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if added.ID == "" || added.ID == removedID {
		t.Fatalf("expected a fresh id, got %q (removed %q)", added.ID, removedID)
	}

	stored, _ := repo.GetBySlug(ctx, slug)
	for _, link := range stored.Config.Data().Links {
		if link.ID == removedID {
			t.Fatalf("removed id %q is back in the stored list", removedID)
		}
	}
}

func TestMicrositeEditsRequireToken(t *testing.T) {
	svc, _, _ := newTestMicrositeService()
	ctx := context.Background()

	created, err := svc.Create(ctx, models.CreateMicrositeRequest{Config: sampleConfig()})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	slug := created.Microsite.Slug

	if _, err := svc.AddLink(ctx, slug, "", microsite.Link{}); !errors.Is(err, ErrInvalidEditToken) {
		t.Fatalf("expected ErrInvalidEditToken, got %v", err)
	}
	if err := svc.Delete(ctx, "missing", created.EditToken); !errors.Is(err, ErrMicrositeNotFound) {
		t.Fatalf("expected ErrMicrositeNotFound, got %v", err)
	}

	other, err := svc.Create(ctx, models.CreateMicrositeRequest{Slug: "other", Config: sampleConfig()})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := svc.Delete(ctx, slug, other.EditToken); !errors.Is(err, ErrInvalidEditToken) {
		t.Fatalf("expected token for another microsite to be refused, got %v", err)
	}
}

func TestRotateEditTokenRevokesOldToken(t *testing.T) {
	svc, _, _ := newTestMicrositeService()
	ctx := context.Background()

	created, err := svc.Create(ctx, models.CreateMicrositeRequest{Config: sampleConfig()})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	slug := created.Microsite.Slug

	fresh, err := svc.RotateEditToken(ctx, slug, created.EditToken)
	if err != nil {
		t.Fatalf("rotate failed: %v", err)
	}
	if _, err := svc.AddLink(ctx, slug, created.EditToken, microsite.Link{}); !errors.Is(err, ErrInvalidEditToken) {
		t.Fatalf("expected old token to be revoked, got %v", err)
	}
	if _, err := svc.AddLink(ctx, slug, fresh, microsite.Link{}); err != nil {
		t.Fatalf("expected new token to work: %v", err)
	}
}

func TestReplaceAndDeleteMicrosite(t *testing.T) {
	svc, repo, _ := newTestMicrositeService()
	ctx := context.Background()

	created, err := svc.Create(ctx, models.CreateMicrositeRequest{Config: sampleConfig()})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	slug, token := created.Microsite.Slug, created.EditToken

	next := microsite.DefaultConfig()
	next.Title = "Renamed"
	next.ButtonStyle = ""
	resp, err := svc.Replace(ctx, slug, token, next)
	if err != nil {
		t.Fatalf("replace failed: %v", err)
	}
	cfg := resp.Microsite.Config.Data()
	if cfg.Title != "Renamed" || len(cfg.Links) != 0 || cfg.ButtonStyle != microsite.ButtonRounded {
		t.Fatalf("unexpected replaced config %+v", cfg)
	}
	if resp.Microsite.Slug != slug {
		t.Fatalf("slug must not change on replace, got %q", resp.Microsite.Slug)
	}

	svc.RecordView(ctx, resp.Microsite)
	stored, _ := repo.GetBySlug(ctx, slug)
	if stored.Views != 1 {
		t.Fatalf("expected one view, got %d", stored.Views)
	}

	if err := svc.Delete(ctx, slug, token); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := svc.Get(ctx, slug); !errors.Is(err, ErrMicrositeNotFound) {
		t.Fatalf("expected ErrMicrositeNotFound after delete, got %v", err)
	}
}
