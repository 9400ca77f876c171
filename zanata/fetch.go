package zanata

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/minios-linux/mmdl10n/cache"
	"github.com/minios-linux/mmdl10n/pofile"
)

// Source is the read side of the translation service.
type Source interface {
	Locales(ctx context.Context, project, version string) ([]string, error)
	Catalog(ctx context.Context, project, version, locale, document string) ([]byte, error)
}

var _ Source = (*Client)(nil)

// FetchAll downloads and parses the catalog of every translated locale.
// A locale the server refuses is logged and skipped. Catalogs found in c
// are not downloaded again; c may be nil.
func FetchAll(ctx context.Context, src Source, project, version, document string, c cache.Cache, logger *log.Logger) (map[string]*pofile.File, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	locales, err := src.Locales(ctx, project, version)
	if err != nil {
		return nil, err
	}
	logger.Debug("Available locales", "locales", locales)

	catalogs := make(map[string]*pofile.File, len(locales))
	for _, locale := range locales {
		key := cache.Key(project, version, locale, document)

		var data []byte
		cached := false
		if c != nil {
			data, cached = c.Get(key)
		}
		if !cached {
			data, err = src.Catalog(ctx, project, version, locale, document)
			if err != nil {
				var se *StatusError
				if errors.As(err, &se) {
					logger.Warn("Could not retrieve translations", "locale", locale, "status", se.StatusCode)
					continue
				}
				return nil, fmt.Errorf("fetching %s: %w", locale, err)
			}
		}

		f, err := pofile.Parse(bytes.NewReader(data))
		if err != nil {
			logger.Warn("Skipping unreadable catalog", "locale", locale, "err", err)
			continue
		}
		if c != nil && !cached {
			if err := c.Set(key, data); err != nil {
				logger.Debug("Cache write failed", "locale", locale, "err", err)
			}
		}
		logger.Debug("Fetched catalog", "locale", locale, "entries", len(f.Entries), "cached", cached)
		catalogs[locale] = f
	}
	return catalogs, nil
}
