package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/minios-linux/mmdl10n/cache"
	"github.com/minios-linux/mmdl10n/i18n"
	"github.com/minios-linux/mmdl10n/modulemd"
	"github.com/minios-linux/mmdl10n/pofile"
	"github.com/minios-linux/mmdl10n/reconcile"
	"github.com/minios-linux/mmdl10n/zanata"
)

// LocalCatalogs reads every .po file directly under dir. The locale comes
// from the Language header, or from the file name when the header is
// missing. A later file for the same locale replaces an earlier one.
func LocalCatalogs(dir string, logger *log.Logger) (map[string]*reconcile.Translated, error) {
	logger = discard(logger)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, de := range entries {
		if !de.IsDir() && strings.HasSuffix(de.Name(), ".po") {
			names = append(names, de.Name())
		}
	}
	sort.Strings(names)

	catalogs := make(map[string]*reconcile.Translated, len(names))
	for _, name := range names {
		f, err := pofile.ParseFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		locale := f.HeaderField("Language")
		if locale == "" {
			locale = strings.TrimSuffix(name, ".po")
		}
		locale = i18n.NormalizeLocale(locale)
		if _, dup := catalogs[locale]; dup {
			logger.Warn("Several catalogs for one locale, using the last", "locale", locale, "file", name)
		}
		catalogs[locale] = reconcile.FromPO(locale, f)
		logger.Debug("Loaded catalog", "file", name, "locale", locale, "messages", len(catalogs[locale].Messages))
	}
	return catalogs, nil
}

// RemoteCatalogs downloads the translated catalogs of a project version.
func RemoteCatalogs(ctx context.Context, src zanata.Source, project, version, document string, c cache.Cache, logger *log.Logger) (map[string]*reconcile.Translated, error) {
	files, err := zanata.FetchAll(ctx, src, project, version, document, c, discard(logger))
	if err != nil {
		return nil, err
	}
	catalogs := make(map[string]*reconcile.Translated, len(files))
	for locale, f := range files {
		catalogs[locale] = reconcile.FromPO(locale, f)
	}
	return catalogs, nil
}

// Generate reconciles catalogs and writes the translations document to
// path.
func Generate(path string, catalogs map[string]*reconcile.Translated, r *reconcile.Reconciler) ([]*modulemd.Translation, error) {
	translations := r.Reconcile(catalogs)
	if err := modulemd.DumpFile(path, translations); err != nil {
		return nil, err
	}
	return translations, nil
}
