package seed

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"sort"

	"qrstudio-backend/internal/models"
	"qrstudio-backend/internal/service"
	"qrstudio-backend/pkg/logger"
)

//go:embed data/microsites/*.json
var defaultMicrositesFS embed.FS

// MicrositeStore is the part of the microsite service seeding needs.
type MicrositeStore interface {
	Get(ctx context.Context, slug string) (*models.Microsite, error)
	Create(ctx context.Context, req models.CreateMicrositeRequest) (*models.MicrositeResponse, error)
}

// EnsureDemoMicrosites creates the embedded example pages when missing.
// It returns the slugs that were created.
func EnsureDemoMicrosites(ctx context.Context, store MicrositeStore) []string {
	return ensureMicrosites(ctx, store, defaultMicrositesFS, "data/microsites")
}

func ensureMicrosites(ctx context.Context, store MicrositeStore, fsys fs.FS, dir string) []string {
	if store == nil || fsys == nil {
		return nil
	}

	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		logger.Error(err, "Failed to read microsite definitions", nil)
		return nil
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	var created []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		data, err := fs.ReadFile(fsys, fmt.Sprintf("%s/%s", dir, name))
		if err != nil {
			logger.Error(err, "Failed to read microsite definition file", map[string]interface{}{"file": name})
			continue
		}

		definitions, err := parseMicrositeDefinitions(data)
		if err != nil {
			logger.Error(err, "Failed to parse microsite definition file", map[string]interface{}{"file": name})
			continue
		}

		for _, definition := range definitions {
			if ensureMicrosite(ctx, store, definition, name) {
				created = append(created, definition.Slug)
			}
		}
	}
	return created
}

func ensureMicrosite(ctx context.Context, store MicrositeStore, definition models.CreateMicrositeRequest, source string) bool {
	fields := map[string]interface{}{"slug": definition.Slug, "source": source}
	if definition.Slug == "" {
		logger.Warn("Skipping microsite definition without slug", fields)
		return false
	}

	if _, err := store.Get(ctx, definition.Slug); err == nil {
		logger.Info("Demo microsite already present", fields)
		return false
	} else if !errors.Is(err, service.ErrMicrositeNotFound) {
		logger.Error(err, "Failed to verify demo microsite", fields)
		return false
	}

	resp, err := store.Create(ctx, definition)
	if err != nil {
		logger.Error(err, "Failed to create demo microsite", fields)
		return false
	}

	fields["url"] = resp.URL
	fields["edit_token"] = resp.EditToken
	logger.Info("Created demo microsite", fields)
	return true
}

// parseMicrositeDefinitions accepts either a single definition or a list.
func parseMicrositeDefinitions(data []byte) ([]models.CreateMicrositeRequest, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var list []models.CreateMicrositeRequest
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, err
		}
		return list, nil
	}

	var single models.CreateMicrositeRequest
	if err := json.Unmarshal(trimmed, &single); err != nil {
		return nil, err
	}
	return []models.CreateMicrositeRequest{single}, nil
}
