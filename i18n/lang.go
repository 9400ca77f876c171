package i18n

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// NormalizeLocale turns a gettext or POSIX locale ("pt_BR", "de_DE.UTF-8")
// into its BCP 47 form ("pt-BR", "de-DE"). Values the parser rejects, such
// as "sr@latin", are returned trimmed but otherwise unchanged.
func NormalizeLocale(locale string) string {
	locale = strings.TrimSpace(locale)
	if idx := strings.IndexByte(locale, '.'); idx >= 0 {
		locale = locale[:idx]
	}
	if locale == "" {
		return ""
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return locale
	}
	return tag.String()
}

// LanguageName returns the name of a locale in its own language, e.g.
// "Deutsch" for "de". Unknown locales yield "".
func LanguageName(locale string) string {
	tag, err := language.Parse(locale)
	if err != nil {
		return ""
	}
	return display.Self.Name(tag)
}
