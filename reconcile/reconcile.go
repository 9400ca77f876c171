package reconcile

import (
	"io"
	"sort"
	"time"

	"github.com/charmbracelet/log"

	"github.com/minios-linux/mmdl10n/location"
	"github.com/minios-linux/mmdl10n/modulemd"
)

// Reconciler merges translated catalogs into modulemd translations.
type Reconciler struct {
	// Now returns the time stamped on every translation of a run.
	Now func() time.Time
	// Logger receives malformed location reports and conflicts.
	Logger *log.Logger
}

// New returns a Reconciler using the wall clock and logger. A nil logger
// discards reports.
func New(logger *log.Logger) *Reconciler {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Reconciler{Now: time.Now, Logger: logger}
}

type entryKey struct {
	module string
	stream string
	locale string
}

type streamKey struct {
	module string
	stream string
}

// Reconcile builds one translation per module stream from catalogs keyed by
// locale.
//
// Locales are visited in ascending order and, within a locale, messages in
// ascending msgid order. When several messages claim the same field of the
// same module stream and locale, the one visited last wins, so the outcome
// does not depend on catalog or map order.
//
// Entries missing the summary or the description translation are dropped,
// and module streams left without entries produce no translation.
func (r *Reconciler) Reconcile(catalogs map[string]*Translated) []*modulemd.Translation {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	logger := r.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	modified := modulemd.ModifiedStamp(now())

	entries := make(map[entryKey]*modulemd.TranslationEntry)
	sources := make(map[entryKey]map[string]string)

	locales := make([]string, 0, len(catalogs))
	for locale := range catalogs {
		locales = append(locales, locale)
	}
	sort.Strings(locales)

	for _, locale := range locales {
		cat := catalogs[locale]
		if cat == nil {
			continue
		}
		msgs := make([]Message, len(cat.Messages))
		copy(msgs, cat.Messages)
		sort.SliceStable(msgs, func(i, j int) bool { return msgs[i].MsgID < msgs[j].MsgID })

		for _, msg := range msgs {
			if msg.MsgStr == "" || len(msg.Locations) == 0 {
				continue
			}
			for _, ref := range msg.Locations {
				loc, err := location.Decode(ref.Location)
				if err != nil {
					logger.Warn("Invalid location clue in translation data", "locale", locale, "location", ref.Location)
					continue
				}

				var slot string
				switch loc.Kind {
				case location.KindSummary, location.KindDescription:
					slot = string(loc.Kind)
				case location.KindProfile:
					if loc.Profile == "" {
						logger.Warn("Profile location without a profile name", "locale", locale, "location", ref.Location)
						continue
					}
					slot = "profile;" + loc.Profile
				default:
					continue
				}

				key := entryKey{loc.Module, loc.Stream, locale}
				entry, ok := entries[key]
				if !ok {
					entry = modulemd.NewTranslationEntry(locale)
					entries[key] = entry
					sources[key] = make(map[string]string)
				}

				if prev, seen := sources[key][slot]; seen && prev != msg.MsgID {
					logger.Debug("Conflicting translations, keeping the later one",
						"module", loc.Module, "stream", loc.Stream, "locale", locale,
						"field", slot, "previous", prev, "msgid", msg.MsgID)
				}
				sources[key][slot] = msg.MsgID

				switch loc.Kind {
				case location.KindSummary:
					entry.SetSummary(msg.MsgStr)
				case location.KindDescription:
					entry.SetDescription(msg.MsgStr)
				case location.KindProfile:
					entry.SetProfileDescription(loc.Profile, msg.MsgStr)
				}
			}
		}
	}

	grouped := make(map[streamKey]*modulemd.Translation)
	for key, entry := range entries {
		if !entry.Complete() {
			continue
		}
		sk := streamKey{key.module, key.stream}
		t, ok := grouped[sk]
		if !ok {
			t = &modulemd.Translation{
				Module:    key.module,
				Stream:    key.stream,
				MDVersion: modulemd.TranslationsVersion,
				Modified:  modified,
			}
			grouped[sk] = t
		}
		t.Entries = append(t.Entries, entry)
	}

	out := make([]*modulemd.Translation, 0, len(grouped))
	for _, t := range grouped {
		sort.Slice(t.Entries, func(i, j int) bool { return t.Entries[i].Locale < t.Entries[j].Locale })
		out = append(out, t)
	}
	modulemd.Sort(out)
	return out
}
