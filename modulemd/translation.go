package modulemd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// DocumentTranslations is the document type of translation documents.
const DocumentTranslations = "modulemd-translations"

// TranslationsVersion is the only modulemd-translations schema version
// written and read.
const TranslationsVersion = 1

// TranslationEntry holds the translations of one module stream for a locale.
type TranslationEntry struct {
	Locale      string
	Summary     string
	Description string
	// ProfileDescriptions maps profile name to its translated description.
	ProfileDescriptions map[string]string
}

// NewTranslationEntry returns an empty entry for locale.
func NewTranslationEntry(locale string) *TranslationEntry {
	return &TranslationEntry{
		Locale:              locale,
		ProfileDescriptions: make(map[string]string),
	}
}

func (e *TranslationEntry) SetSummary(s string)     { e.Summary = s }
func (e *TranslationEntry) SetDescription(s string) { e.Description = s }

// SetProfileDescription sets the translated description of a profile.
func (e *TranslationEntry) SetProfileDescription(profile, s string) {
	if e.ProfileDescriptions == nil {
		e.ProfileDescriptions = make(map[string]string)
	}
	e.ProfileDescriptions[profile] = s
}

// Complete reports whether both mandatory fields are translated.
func (e *TranslationEntry) Complete() bool {
	return e.Summary != "" && e.Description != ""
}

// Translation bundles every locale's translations for one module stream.
type Translation struct {
	Module    string
	Stream    string
	MDVersion int
	// Modified is the UTC time of generation as YYYYMMDDHHMMSS.
	Modified int64
	Entries  []*TranslationEntry
}

// Entry returns the entry for locale, or nil.
func (t *Translation) Entry(locale string) *TranslationEntry {
	for _, e := range t.Entries {
		if e.Locale == locale {
			return e
		}
	}
	return nil
}

// ModifiedStamp encodes a time as the integer YYYYMMDDHHMMSS in UTC.
func ModifiedStamp(now time.Time) int64 {
	u := now.UTC()
	return int64(u.Year())*10000000000 +
		int64(u.Month())*100000000 +
		int64(u.Day())*1000000 +
		int64(u.Hour())*10000 +
		int64(u.Minute())*100 +
		int64(u.Second())
}

// Less orders translations by module name, then stream.
func Less(a, b *Translation) bool {
	if a.Module != b.Module {
		return a.Module < b.Module
	}
	return a.Stream < b.Stream
}

// Sort orders translations with Less.
func Sort(ts []*Translation) {
	sort.SliceStable(ts, func(i, j int) bool { return Less(ts[i], ts[j]) })
}

// ---------------------------------------------------------------------------
// YAML schema
// ---------------------------------------------------------------------------

type translationsDocument struct {
	Document string           `yaml:"document"`
	Version  int              `yaml:"version"`
	Data     translationsData `yaml:"data"`
}

type translationsData struct {
	Module       string                      `yaml:"module"`
	Stream       string                      `yaml:"stream"`
	Modified     int64                       `yaml:"modified"`
	Translations map[string]translationEntry `yaml:"translations"`
}

type translationEntry struct {
	Summary     string            `yaml:"summary"`
	Description string            `yaml:"description"`
	Profiles    map[string]string `yaml:"profiles,omitempty"`
}

// Dump writes translations as a multi-document YAML stream, one document
// per module stream, in the order given.
func Dump(w io.Writer, translations []*Translation) error {
	for _, t := range translations {
		doc := translationsDocument{
			Document: DocumentTranslations,
			Version:  t.MDVersion,
			Data: translationsData{
				Module:       t.Module,
				Stream:       t.Stream,
				Modified:     t.Modified,
				Translations: make(map[string]translationEntry, len(t.Entries)),
			},
		}
		if doc.Version == 0 {
			doc.Version = TranslationsVersion
		}
		for _, e := range t.Entries {
			entry := translationEntry{Summary: e.Summary, Description: e.Description}
			if len(e.ProfileDescriptions) > 0 {
				entry.Profiles = e.ProfileDescriptions
			}
			doc.Data.Translations[e.Locale] = entry
		}

		var buf bytes.Buffer
		buf.WriteString("---\n")
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(&doc); err != nil {
			return fmt.Errorf("encoding %s:%s: %w", t.Module, t.Stream, err)
		}
		if err := enc.Close(); err != nil {
			return err
		}
		buf.WriteString("...\n")

		if _, err := w.Write(buf.Bytes()); err != nil {
			return err
		}
	}
	return nil
}

// DumpFile writes translations to path through a temporary file in the same
// directory, so readers never see a partially written document.
func DumpFile(path string, translations []*Translation) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating temporary file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := Dump(tmp, translations); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

// LoadTranslations reads modulemd-translations documents from r. Documents
// of other types are skipped.
func LoadTranslations(r io.Reader) ([]*Translation, error) {
	dec := yaml.NewDecoder(r)

	var out []*Translation
	for {
		var doc translationsDocument
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing translations: %w", err)
		}
		if doc.Document != DocumentTranslations {
			continue
		}
		if doc.Version != TranslationsVersion {
			return nil, fmt.Errorf("%s:%s: unsupported translations version %d",
				doc.Data.Module, doc.Data.Stream, doc.Version)
		}

		t := &Translation{
			Module:    doc.Data.Module,
			Stream:    doc.Data.Stream,
			MDVersion: doc.Version,
			Modified:  doc.Data.Modified,
		}
		locales := make([]string, 0, len(doc.Data.Translations))
		for locale := range doc.Data.Translations {
			locales = append(locales, locale)
		}
		sort.Strings(locales)
		for _, locale := range locales {
			src := doc.Data.Translations[locale]
			e := NewTranslationEntry(locale)
			e.Summary = src.Summary
			e.Description = src.Description
			for name, desc := range src.Profiles {
				e.ProfileDescriptions[name] = desc
			}
			t.Entries = append(t.Entries, e)
		}
		out = append(out, t)
	}
	return out, nil
}
