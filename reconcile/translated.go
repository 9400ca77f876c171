// Package reconcile turns translated catalogs back into per-module-stream
// translation documents.
package reconcile

import (
	"github.com/minios-linux/mmdl10n/pofile"
)

// Message is one translated string with the locations copied from the
// source catalog.
type Message struct {
	MsgID     string
	MsgStr    string
	Locations []pofile.Reference
}

// Translated is the catalog of a single locale.
type Translated struct {
	Locale   string
	Messages []Message
}

// FromPO extracts the translated messages of a PO file. Obsolete and fuzzy
// entries are left out; untranslated entries are kept and later ignored.
func FromPO(locale string, f *pofile.File) *Translated {
	t := &Translated{Locale: locale}
	for _, e := range f.Entries {
		if e.MsgID == "" || e.Obsolete || e.IsFuzzy() {
			continue
		}
		t.Messages = append(t.Messages, Message{
			MsgID:     e.MsgID,
			MsgStr:    e.MsgStr,
			Locations: e.Locations(),
		})
	}
	return t
}
