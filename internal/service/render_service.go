package service

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/zeebo/blake3"

	"qrstudio-backend/internal/models"
	"qrstudio-backend/internal/render"
	"qrstudio-backend/pkg/cache"
	"qrstudio-backend/pkg/logger"
)

// RenderCache stores finished images. *cache.Cache satisfies it.
type RenderCache interface {
	GetCachedRender(ctx context.Context, key string) ([]byte, error)
	CacheRender(ctx context.Context, key string, data []byte, ttl time.Duration) error
}

type RenderResult struct {
	Data        []byte
	ContentType string
	Format      render.Format
	Cached      bool
	// LogoError is set when the symbol was drawn without its logo.
	LogoError error
}

type RenderService struct {
	cache    RenderCache
	logos    render.LogoLoader
	ttl      time.Duration
	maxWidth int
}

func NewRenderService(c RenderCache, logos render.LogoLoader, ttl time.Duration, maxWidth int) *RenderService {
	if maxWidth <= 0 {
		maxWidth = 4096
	}
	return &RenderService{cache: c, logos: logos, ttl: ttl, maxWidth: maxWidth}
}

// Render draws payload with opts and exports it. A fresh adapter is used
// per call, so concurrent renders share nothing.
func (s *RenderService) Render(ctx context.Context, payload string, opts models.VisualOptions, format render.Format) (*RenderResult, error) {
	return s.render(ctx, payload, opts, format, func(a render.Adapter) ([]byte, error) {
		return a.Export(format)
	})
}

// RenderRaw returns the clipboard bytes of the adapter, which are PNG.
func (s *RenderService) RenderRaw(ctx context.Context, payload string, opts models.VisualOptions) (*RenderResult, error) {
	return s.render(ctx, payload, opts, render.FormatPNG, render.Adapter.RawData)
}

func (s *RenderService) render(ctx context.Context, payload string, opts models.VisualOptions, format render.Format, export func(render.Adapter) ([]byte, error)) (*RenderResult, error) {
	opts = opts.Normalized()
	if opts.Width > s.maxWidth {
		opts.Width = s.maxWidth
		opts = opts.Normalized()
	}

	key := RenderCacheKey(payload, opts, format)
	if s.cache != nil {
		data, err := s.cache.GetCachedRender(ctx, key)
		switch {
		case err == nil:
			observeCacheLookup(true)
			return &RenderResult{Data: data, ContentType: format.ContentType(), Format: format, Cached: true}, nil
		case errors.Is(err, cache.ErrCacheMiss):
			observeCacheLookup(false)
		case !errors.Is(err, cache.ErrCacheDisabled):
			logger.FromContext(ctx).WithError(err).Warn("Render cache lookup failed")
		}
	}

	started := time.Now()
	adapter := render.NewStyled(render.WithLogoLoader(s.logos))
	if err := adapter.Update(payload, opts); err != nil {
		return nil, err
	}
	data, err := export(adapter)
	if err != nil {
		return nil, err
	}
	observeRender(string(format), started)

	result := &RenderResult{Data: data, ContentType: format.ContentType(), Format: format, LogoError: adapter.LogoError()}
	if result.LogoError != nil {
		logger.FromContext(ctx).WithError(result.LogoError).Warn("Logo could not be placed; rendered without it")
		// A later request may succeed once the logo is reachable.
		return result, nil
	}

	if s.cache != nil {
		if err := s.cache.CacheRender(ctx, key, data, s.ttl); err != nil {
			logger.FromContext(ctx).WithError(err).Warn("Failed to cache render")
		}
	}
	return result, nil
}

// RenderCacheKey hashes everything that affects the output bytes.
func RenderCacheKey(payload string, opts models.VisualOptions, format render.Format) string {
	h := blake3.New()
	h.WriteString(string(format))
	h.WriteString("\x00")
	h.WriteString(payload)
	h.WriteString("\x00")
	if encoded, err := json.Marshal(opts); err == nil {
		h.Write(encoded)
	}
	return hex.EncodeToString(h.Sum(nil))
}
