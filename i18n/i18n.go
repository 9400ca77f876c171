// Package i18n translates the messages mmdl10n prints.
//
// UI catalogs are embedded under locales/{dir}/LC_MESSAGES/mmdl10n.po, where
// dir is a gettext locale name. The requested language and the catalog
// directories are both normalized to BCP 47 and matched with
// golang.org/x/text/language, the same way translated module catalogs are
// keyed, so "pt_BR.UTF-8", "de-AT" or "zh-Hant" pick the closest catalog.
// Without a match T returns its argument.
package i18n

import (
	"embed"
	"io/fs"
	"os"
	"strings"

	"github.com/leonelquinteros/gotext"
	"golang.org/x/text/language"
)

//go:embed all:locales
var locales embed.FS

const (
	domain     = "mmdl10n"
	localesDir = "locales"
)

var (
	po      *gotext.Locale
	current = "en"
)

// catalog is an embedded UI translation.
type catalog struct {
	dir string
	tag language.Tag
}

// catalogs lists the embedded catalog directories with a parseable name.
func catalogs(fsys fs.FS) []catalog {
	entries, err := fs.ReadDir(fsys, localesDir)
	if err != nil {
		return nil
	}
	var out []catalog
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		tag, err := language.Parse(NormalizeLocale(e.Name()))
		if err != nil {
			continue
		}
		out = append(out, catalog{dir: e.Name(), tag: tag})
	}
	return out
}

// Match returns the catalog directory in fsys that best serves the
// preferred locales, or "" when English passthrough is the best choice.
func Match(fsys fs.FS, prefs ...string) string {
	available := catalogs(fsys)
	if len(available) == 0 {
		return ""
	}

	var desired []language.Tag
	for _, p := range prefs {
		tag, err := language.Parse(NormalizeLocale(p))
		if err != nil {
			continue
		}
		desired = append(desired, tag)
	}
	if len(desired) == 0 {
		return ""
	}

	// Index 0 is the untranslated source language.
	supported := []language.Tag{language.English}
	for _, c := range available {
		supported = append(supported, c.tag)
	}
	_, idx, conf := language.NewMatcher(supported).Match(desired...)
	if idx == 0 || conf == language.No {
		return ""
	}
	return available[idx-1].dir
}

// Init loads the catalog best matching lang, or the environment's
// preferences when lang is empty.
func Init(lang string) {
	prefs := []string{lang}
	if lang == "" {
		prefs = envPreferences()
	}

	po = nil
	current = "en"
	dir := Match(locales, prefs...)
	if dir == "" {
		return
	}

	l := gotext.NewLocaleFSWithPath(dir, locales, localesDir)
	l.AddDomain(domain)
	l.SetDomain(domain)
	po = l
	current = NormalizeLocale(dir)
}

// Language is the BCP 47 tag of the active catalog, "en" when untranslated.
func Language() string { return current }

// T translates msgid, falling back to msgid itself.
func T(msgid string) string {
	if po == nil {
		return msgid
	}
	return po.Get(msgid)
}

// envPreferences reads LANGUAGE, LC_ALL, LC_MESSAGES and LANG in gettext
// order. LANGUAGE may hold a colon-separated list; C and POSIX are skipped.
func envPreferences() []string {
	var prefs []string
	for _, env := range []string{"LANGUAGE", "LC_ALL", "LC_MESSAGES", "LANG"} {
		for _, val := range strings.Split(os.Getenv(env), ":") {
			if idx := strings.IndexByte(val, '.'); idx >= 0 {
				val = val[:idx]
			}
			if val == "" || val == "C" || val == "POSIX" {
				continue
			}
			prefs = append(prefs, val)
		}
	}
	return prefs
}
