package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"qrstudio-backend/internal/background"
	"qrstudio-backend/internal/capacity"
	"qrstudio-backend/internal/microsite"
	"qrstudio-backend/internal/models"
	"qrstudio-backend/internal/render"
	"qrstudio-backend/internal/repository"
	"qrstudio-backend/pkg/logger"
	"qrstudio-backend/pkg/utils"
	"qrstudio-backend/pkg/validator"
)

var (
	ErrMicrositeNotFound = errors.New("microsite not found")
	ErrSlugTaken         = errors.New("slug already in use")
	ErrInvalidSlug       = errors.New("invalid slug")
)

const defaultSlugBase = "page"

// MicrositeCache is the subset of *cache.Cache the service uses.
type MicrositeCache interface {
	CacheMicrosite(ctx context.Context, slug string, site interface{}) error
	GetCachedMicrosite(ctx context.Context, slug string, dest interface{}) error
	InvalidateMicrosite(ctx context.Context, slug string) error
}

type TaskSubmitter interface {
	Submit(task background.Task) error
}

// MicrositeService persists microsites. Every change loads the stored
// config, applies one edit through a LinkList and saves the whole value.
type MicrositeService struct {
	repo   repository.MicrositeRepository
	cache  MicrositeCache
	tokens *EditTokens
	qr     *QRService
	// pageURL maps a slug to its public viewer address.
	pageURL func(slug string) string

	tasks        TaskSubmitter
	renderer     *RenderService
	prewarmStyle models.VisualOptions
}

func NewMicrositeService(repo repository.MicrositeRepository, cache MicrositeCache, tokens *EditTokens, qr *QRService, pageURL func(string) string) *MicrositeService {
	return &MicrositeService{
		repo:    repo,
		cache:   cache,
		tokens:  tokens,
		qr:      qr,
		pageURL: pageURL,
	}
}

// UseBackground lets the service render the share code of a changed
// microsite ahead of the first request for it.
func (s *MicrositeService) UseBackground(tasks TaskSubmitter, renderer *RenderService, style models.VisualOptions) {
	s.tasks = tasks
	s.renderer = renderer
	s.prewarmStyle = style
}

func (s *MicrositeService) Create(ctx context.Context, req models.CreateMicrositeRequest) (*models.MicrositeResponse, error) {
	cfg := normalizeConfig(req.Config)

	slug, err := s.chooseSlug(ctx, req.Slug, cfg.Title)
	if err != nil {
		return nil, err
	}

	site := &models.Microsite{
		Slug:        slug,
		Title:       cfg.Title,
		Config:      datatypes.NewJSONType(cfg),
		EditVersion: 1,
	}
	if err := s.repo.Create(ctx, site); err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(site.Slug, site.EditVersion)
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).WithField("slug", slug).Info("Microsite created")
	s.prewarm(site)
	return s.Response(site, token), nil
}

func (s *MicrositeService) chooseSlug(ctx context.Context, requested, title string) (string, error) {
	if requested = strings.TrimSpace(requested); requested != "" {
		if !validator.IsSlug(requested) {
			return "", ErrInvalidSlug
		}
		exists, err := s.repo.ExistsBySlug(ctx, requested)
		if err != nil {
			return "", err
		}
		if exists {
			return "", ErrSlugTaken
		}
		return requested, nil
	}

	base := utils.GenerateSlug(title)
	if base == "" {
		base = defaultSlugBase
	}

	candidate := base
	for i := 2; i < 100; i++ {
		exists, err := s.repo.ExistsBySlug(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return base + "-" + uuid.New().String()[:8], nil
}

// Get returns the stored microsite, preferring the cache.
func (s *MicrositeService) Get(ctx context.Context, slug string) (*models.Microsite, error) {
	var cached models.Microsite
	if s.cache != nil && s.cache.GetCachedMicrosite(ctx, slug, &cached) == nil {
		return &cached, nil
	}

	site, err := s.load(ctx, slug)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.CacheMicrosite(ctx, slug, site); err != nil {
			logger.FromContext(ctx).WithError(err).Warn("Failed to cache microsite")
		}
	}
	return site, nil
}

func (s *MicrositeService) load(ctx context.Context, slug string) (*models.Microsite, error) {
	site, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMicrositeNotFound
		}
		return nil, err
	}
	return site, nil
}

func (s *MicrositeService) List(ctx context.Context, limit, offset int) ([]models.Microsite, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, limit, offset)
}

// Response describes site with its viewer address and a self-contained
// share link. editToken is only included right after it was issued.
func (s *MicrositeService) Response(site *models.Microsite, editToken string) *models.MicrositeResponse {
	share, token := s.qr.ShareURL(site.Config.Data())
	resp := &models.MicrositeResponse{
		Microsite: site,
		EditToken: editToken,
		ShareURL:  share,
		Token:     token,
	}
	if s.pageURL != nil {
		resp.URL = s.pageURL(site.Slug)
	}
	// The short address is what a printed code should carry.
	target := resp.URL
	if target == "" {
		target = share
	}
	resp.Capacity = capacity.Assess(target)
	return resp
}

// Replace swaps the whole config of a stored microsite.
func (s *MicrositeService) Replace(ctx context.Context, slug, editToken string, cfg microsite.Config) (*models.MicrositeResponse, error) {
	site, err := s.mutate(ctx, slug, editToken, func(links *microsite.LinkList, current *microsite.Config) error {
		*current = normalizeConfig(cfg)
		*links = *microsite.NewLinkList(current.Links)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Response(site, ""), nil
}

// AddLink appends link under a freshly minted id. Client supplied ids are
// ignored: the stored list only knows live ids, so honouring them could
// hand out an id that was removed earlier.
func (s *MicrositeService) AddLink(ctx context.Context, slug, editToken string, link microsite.Link) (microsite.Link, error) {
	link.ID = ""
	var added microsite.Link
	_, err := s.mutate(ctx, slug, editToken, func(links *microsite.LinkList, _ *microsite.Config) error {
		added = links.Add(link)
		return nil
	})
	return added, err
}

func (s *MicrositeService) UpdateLink(ctx context.Context, slug, editToken, linkID string, link microsite.Link) (microsite.Link, error) {
	var updated microsite.Link
	_, err := s.mutate(ctx, slug, editToken, func(links *microsite.LinkList, _ *microsite.Config) error {
		if link.Type == "" {
			link.Type = microsite.LinkTypeLink
		}
		if link.Icon == "" {
			link.Icon = microsite.DefaultIcon(link.Type)
		}
		var err error
		updated, err = links.Update(linkID, link)
		return err
	})
	return updated, err
}

func (s *MicrositeService) RemoveLink(ctx context.Context, slug, editToken, linkID string) error {
	_, err := s.mutate(ctx, slug, editToken, func(links *microsite.LinkList, _ *microsite.Config) error {
		return links.Remove(linkID)
	})
	return err
}

func (s *MicrositeService) ReorderLinks(ctx context.Context, slug, editToken string, ids []string) ([]microsite.Link, error) {
	var ordered []microsite.Link
	_, err := s.mutate(ctx, slug, editToken, func(links *microsite.LinkList, _ *microsite.Config) error {
		if err := links.Reorder(ids); err != nil {
			return err
		}
		ordered = links.Links()
		return nil
	})
	return ordered, err
}

// RotateEditToken revokes every outstanding edit token and issues a new one.
func (s *MicrositeService) RotateEditToken(ctx context.Context, slug, editToken string) (string, error) {
	site, err := s.authorize(ctx, slug, editToken)
	if err != nil {
		return "", err
	}
	site.EditVersion++
	if err := s.repo.Update(ctx, site); err != nil {
		return "", err
	}
	return s.tokens.Issue(site.Slug, site.EditVersion)
}

func (s *MicrositeService) Delete(ctx context.Context, slug, editToken string) error {
	site, err := s.authorize(ctx, slug, editToken)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, site.ID); err != nil {
		return err
	}
	s.invalidate(ctx, slug)
	logger.FromContext(ctx).WithField("slug", slug).Info("Microsite deleted")
	return nil
}

// RecordView counts a visit. Failures are logged, never surfaced.
func (s *MicrositeService) RecordView(ctx context.Context, site *models.Microsite) {
	if site == nil || site.ID == 0 {
		return
	}
	if err := s.repo.IncrementViews(ctx, site.ID); err != nil {
		logger.FromContext(ctx).WithError(err).Warn("Failed to record microsite view")
	}
}

func (s *MicrositeService) authorize(ctx context.Context, slug, editToken string) (*models.Microsite, error) {
	site, err := s.load(ctx, slug)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.Verify(editToken, site.Slug, site.EditVersion); err != nil {
		return nil, err
	}
	return site, nil
}

func (s *MicrositeService) mutate(ctx context.Context, slug, editToken string, edit func(*microsite.LinkList, *microsite.Config) error) (*models.Microsite, error) {
	site, err := s.authorize(ctx, slug, editToken)
	if err != nil {
		return nil, err
	}

	cfg := site.Config.Data().Clone()
	links := microsite.NewLinkList(cfg.Links)
	if err := edit(links, &cfg); err != nil {
		return nil, err
	}
	cfg.Links = links.Links()

	site.Config = datatypes.NewJSONType(cfg)
	site.Title = cfg.Title
	if err := s.repo.Update(ctx, site); err != nil {
		return nil, err
	}

	s.invalidate(ctx, slug)
	s.prewarm(site)
	return site, nil
}

func (s *MicrositeService) invalidate(ctx context.Context, slug string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateMicrosite(ctx, slug); err != nil {
		logger.FromContext(ctx).WithError(err).Warn("Failed to invalidate microsite cache")
	}
}

func (s *MicrositeService) prewarm(site *models.Microsite) {
	if s.tasks == nil || s.renderer == nil || s.pageURL == nil {
		return
	}
	target := s.pageURL(site.Slug)
	style := s.prewarmStyle
	err := s.tasks.Submit(background.Task{
		Key:     "prewarm:" + site.Slug,
		Retries: 1,
		Run: func(ctx context.Context) error {
			_, err := s.renderer.Render(ctx, target, style, render.FormatPNG)
			return err
		},
	})
	if err != nil && !errors.Is(err, background.ErrTaskPending) {
		logger.Debug("Share code prewarm skipped", map[string]interface{}{"slug": site.Slug, "error": err.Error()})
	}
}

// normalizeConfig repairs link ids and fills link defaults. Everything
// else is stored exactly as given.
func normalizeConfig(cfg microsite.Config) microsite.Config {
	cfg = cfg.Clone()
	if cfg.ButtonStyle == "" {
		cfg.ButtonStyle = microsite.ButtonRounded
	}
	list := microsite.NewLinkList(nil)
	for _, link := range microsite.NewLinkList(cfg.Links).Links() {
		list.Add(link)
	}
	cfg.Links = list.Links()
	return cfg
}
