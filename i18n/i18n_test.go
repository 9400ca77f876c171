package i18n

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
)

func clearLocaleEnv(t *testing.T) {
	t.Helper()
	t.Setenv("LANGUAGE", "")
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_MESSAGES", "")
	t.Setenv("LANG", "")
}

func restoreCatalog(t *testing.T) {
	t.Helper()
	oldPO, oldCurrent := po, current
	t.Cleanup(func() { po, current = oldPO, oldCurrent })
}

func testCatalogs() fstest.MapFS {
	file := &fstest.MapFile{Data: []byte("msgid \"\"\nmsgstr \"\"\n")}
	return fstest.MapFS{
		"locales/de/LC_MESSAGES/mmdl10n.po":    file,
		"locales/pt_BR/LC_MESSAGES/mmdl10n.po": file,
		"locales/README":                       &fstest.MapFile{Data: []byte("not a catalog")},
	}
}

func TestMatch(t *testing.T) {
	fsys := testCatalogs()
	tests := []struct {
		name  string
		prefs []string
		want  string
	}{
		{"exact", []string{"de"}, "de"},
		{"posix with encoding", []string{"pt_BR.UTF-8"}, "pt_BR"},
		{"bcp47 region", []string{"pt-BR"}, "pt_BR"},
		{"regional variant falls back to language", []string{"de_AT"}, "de"},
		{"later preference used when earlier has no catalog", []string{"fr", "de_CH"}, "de"},
		{"script without catalog", []string{"zh-Hant"}, ""},
		{"english source", []string{"en_US"}, ""},
		{"unparseable", []string{"sr@latin"}, ""},
		{"no preferences", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Match(fsys, tt.prefs...))
		})
	}
}

func TestMatchWithoutCatalogs(t *testing.T) {
	assert.Equal(t, "", Match(fstest.MapFS{}, "de"))
}

func TestEnvPreferences(t *testing.T) {
	t.Run("gettext order with LANGUAGE list", func(t *testing.T) {
		clearLocaleEnv(t)
		t.Setenv("LANGUAGE", "ru_RU.UTF-8:en_US")
		t.Setenv("LANG", "de_DE.UTF-8")
		assert.Equal(t, []string{"ru_RU", "en_US", "de_DE"}, envPreferences())
	})

	t.Run("C and POSIX are skipped", func(t *testing.T) {
		clearLocaleEnv(t)
		t.Setenv("LANGUAGE", "C")
		t.Setenv("LC_ALL", "POSIX")
		t.Setenv("LC_MESSAGES", "fr_FR.UTF-8")
		assert.Equal(t, []string{"fr_FR"}, envPreferences())
	})

	t.Run("empty environment", func(t *testing.T) {
		clearLocaleEnv(t)
		assert.Empty(t, envPreferences())
	})
}

func TestInitResolvesNormalizedLocale(t *testing.T) {
	restoreCatalog(t)

	Init("de_DE.UTF-8")
	assert.Equal(t, "de", Language())
	assert.Equal(t, "Übersetzungsstatistik", T("Translation Statistics"))
	assert.Equal(t, "untranslated message", T("untranslated message"))
}

func TestInitFallsBackToPassthrough(t *testing.T) {
	restoreCatalog(t)

	Init("zh-Hant")
	assert.Equal(t, "en", Language())
	assert.Equal(t, "Translation Statistics", T("Translation Statistics"))
}

func TestInitFromEnvironment(t *testing.T) {
	restoreCatalog(t)
	clearLocaleEnv(t)
	t.Setenv("LANGUAGE", "fr:de_CH")

	Init("")
	assert.Equal(t, "de", Language())
	assert.Equal(t, "Übersetzungsstatistik", T("Translation Statistics"))
}

func TestTWhenUninitialized(t *testing.T) {
	restoreCatalog(t)
	po = nil
	assert.Equal(t, "Hello", T("Hello"))
}

func TestNormalizeLocale(t *testing.T) {
	tests := map[string]string{
		"de":          "de",
		"pt_BR":       "pt-BR",
		"de_DE.UTF-8": "de-DE",
		"zh-Hans":     "zh-Hans",
		" ja ":        "ja",
		"sr@latin":    "sr@latin",
		"":            "",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeLocale(in), "NormalizeLocale(%q)", in)
	}
}

func TestLanguageName(t *testing.T) {
	assert.Equal(t, "Deutsch", LanguageName("de"))
	assert.Equal(t, "", LanguageName("not a locale!"))
}
