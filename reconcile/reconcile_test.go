package reconcile

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/minios-linux/mmdl10n/pofile"
)

var fixedNow = time.Date(2019, 6, 27, 14, 5, 9, 0, time.UTC)

func newTestReconciler(buf *bytes.Buffer) *Reconciler {
	logger := log.New(buf)
	logger.SetLevel(log.DebugLevel)
	r := New(logger)
	r.Now = func() time.Time { return fixedNow }
	return r
}

func refs(tokens ...string) []pofile.Reference {
	out := make([]pofile.Reference, len(tokens))
	for i, tok := range tokens {
		out[i] = pofile.Reference{Location: tok, Line: 1}
	}
	return out
}

func TestReconcileEndToEnd(t *testing.T) {
	var buf bytes.Buffer
	r := newTestReconciler(&buf)

	got := r.Reconcile(map[string]*Translated{
		"de": {Locale: "de", Messages: []Message{
			{MsgID: "Foo summary", MsgStr: "Foo Zusammenfassung", Locations: refs("foo;s1;summary")},
			{MsgID: "Foo desc", MsgStr: "Foo Beschreibung", Locations: refs("foo;s1;description")},
		}},
	})

	if len(got) != 1 {
		t.Fatalf("got %d translations, want 1", len(got))
	}
	tr := got[0]
	if tr.Module != "foo" || tr.Stream != "s1" {
		t.Fatalf("translation for %s:%s, want foo:s1", tr.Module, tr.Stream)
	}
	if tr.MDVersion != 1 {
		t.Fatalf("MDVersion = %d, want 1", tr.MDVersion)
	}
	if tr.Modified != 20190627140509 {
		t.Fatalf("Modified = %d", tr.Modified)
	}
	if len(tr.Entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(tr.Entries))
	}
	e := tr.Entries[0]
	if e.Locale != "de" || e.Summary != "Foo Zusammenfassung" || e.Description != "Foo Beschreibung" {
		t.Fatalf("entry = %#v", e)
	}
}

func TestReconcileCompletenessFilter(t *testing.T) {
	var buf bytes.Buffer
	r := newTestReconciler(&buf)

	got := r.Reconcile(map[string]*Translated{
		"fr": {Locale: "fr", Messages: []Message{
			{MsgID: "Foo desc", MsgStr: "Description de foo", Locations: refs("foo;s1;description")},
		}},
	})
	if len(got) != 0 {
		t.Fatalf("got %d translations, want none", len(got))
	}
}

func TestReconcileDropsOnlyIncompleteLocales(t *testing.T) {
	var buf bytes.Buffer
	r := newTestReconciler(&buf)

	got := r.Reconcile(map[string]*Translated{
		"de": {Locale: "de", Messages: []Message{
			{MsgID: "Foo summary", MsgStr: "Zusammenfassung", Locations: refs("foo;s1;summary")},
			{MsgID: "Foo desc", MsgStr: "Beschreibung", Locations: refs("foo;s1;description")},
		}},
		"fr": {Locale: "fr", Messages: []Message{
			{MsgID: "Foo summary", MsgStr: "Résumé", Locations: refs("foo;s1;summary")},
		}},
	})
	if len(got) != 1 || len(got[0].Entries) != 1 || got[0].Entries[0].Locale != "de" {
		t.Fatalf("unexpected result %#v", got)
	}
}

func TestReconcileMalformedTokenIsReported(t *testing.T) {
	var buf bytes.Buffer
	r := newTestReconciler(&buf)

	got := r.Reconcile(map[string]*Translated{
		"de": {Locale: "de", Messages: []Message{
			{MsgID: "Broken", MsgStr: "Kaputt", Locations: refs("onlytwo;parts")},
			{MsgID: "Foo summary", MsgStr: "Zusammenfassung", Locations: refs("foo;s1;summary")},
			{MsgID: "Foo desc", MsgStr: "Beschreibung", Locations: refs("foo;s1;description")},
		}},
	})
	if len(got) != 1 || len(got[0].Entries) != 1 {
		t.Fatalf("valid entries were not reconciled: %#v", got)
	}
	if !strings.Contains(buf.String(), "onlytwo;parts") {
		t.Fatalf("malformed token not reported, log: %q", buf.String())
	}
}

func TestReconcileProfilesAndUnknownKinds(t *testing.T) {
	var buf bytes.Buffer
	r := newTestReconciler(&buf)

	got := r.Reconcile(map[string]*Translated{
		"cs": {Locale: "cs", Messages: []Message{
			{MsgID: "Runtime", MsgStr: "Běhové prostředí", Locations: refs("nodejs;12;summary")},
			{MsgID: "Node", MsgStr: "Uzel", Locations: refs("nodejs;12;description")},
			{MsgID: "Default", MsgStr: "Výchozí", Locations: refs("nodejs;12;profile;default")},
			{MsgID: "Weird", MsgStr: "Divné", Locations: refs("nodejs;12;banner")},
		}},
	})
	if len(got) != 1 {
		t.Fatalf("got %d translations, want 1", len(got))
	}
	e := got[0].Entries[0]
	if len(e.ProfileDescriptions) != 1 || e.ProfileDescriptions["default"] != "Výchozí" {
		t.Fatalf("ProfileDescriptions = %#v", e.ProfileDescriptions)
	}
}

func TestReconcileFivePartProfileToken(t *testing.T) {
	var buf bytes.Buffer
	r := newTestReconciler(&buf)

	got := r.Reconcile(map[string]*Translated{
		"de": {Locale: "de", Messages: []Message{
			{MsgID: "Sum", MsgStr: "Zusammenfassung", Locations: refs("m;s;summary")},
			{MsgID: "Desc", MsgStr: "Beschreibung", Locations: refs("m;s;description")},
			{MsgID: "Default", MsgStr: "Standard", Locations: refs("m;s;profile;default;extra")},
		}},
	})
	if len(got) != 1 || len(got[0].Entries) != 1 {
		t.Fatalf("got %#v", got)
	}
	if p := got[0].Entries[0].ProfileDescriptions; p["default"] != "Standard" {
		t.Fatalf("ProfileDescriptions = %#v", p)
	}
	if strings.Contains(buf.String(), "Invalid location") {
		t.Fatalf("five-part token reported as invalid, log: %q", buf.String())
	}
}

func TestReconcileSkipsUntranslatedAndUnlocated(t *testing.T) {
	var buf bytes.Buffer
	r := newTestReconciler(&buf)

	got := r.Reconcile(map[string]*Translated{
		"de": {Locale: "de", Messages: []Message{
			{MsgID: "Foo summary", MsgStr: "", Locations: refs("foo;s1;summary")},
			{MsgID: "Foo desc", MsgStr: "Beschreibung"},
		}},
	})
	if len(got) != 0 {
		t.Fatalf("got %#v, want nothing", got)
	}
}

func TestReconcileSharedStringFillsEveryStream(t *testing.T) {
	var buf bytes.Buffer
	r := newTestReconciler(&buf)

	got := r.Reconcile(map[string]*Translated{
		"de": {Locale: "de", Messages: []Message{
			{MsgID: "Runtime", MsgStr: "Laufzeit", Locations: refs("nodejs;12;summary", "nodejs;10;summary")},
			{MsgID: "Node", MsgStr: "Knoten", Locations: refs("nodejs;12;description", "nodejs;10;description")},
		}},
	})
	if len(got) != 2 {
		t.Fatalf("got %d translations, want 2", len(got))
	}
	if got[0].Stream != "10" || got[1].Stream != "12" {
		t.Fatalf("order = %s, %s; want 10, 12", got[0].Stream, got[1].Stream)
	}
	if got[0].Modified != got[1].Modified {
		t.Fatalf("modified stamps differ: %d, %d", got[0].Modified, got[1].Modified)
	}
}

func TestReconcileTieBreakIsDeterministic(t *testing.T) {
	catalogs := func() map[string]*Translated {
		return map[string]*Translated{
			"de": {Locale: "de", Messages: []Message{
				{MsgID: "Zeta", MsgStr: "Z", Locations: refs("m;s;summary")},
				{MsgID: "Alpha", MsgStr: "A", Locations: refs("m;s;summary")},
				{MsgID: "Desc", MsgStr: "D", Locations: refs("m;s;description")},
			}},
		}
	}

	for i := 0; i < 5; i++ {
		var buf bytes.Buffer
		r := newTestReconciler(&buf)
		got := r.Reconcile(catalogs())
		if len(got) != 1 || got[0].Entries[0].Summary != "Z" {
			t.Fatalf("run %d: summary = %#v, want Z", i, got)
		}
		if !strings.Contains(buf.String(), "Conflicting translations") {
			t.Fatalf("run %d: conflict not reported", i)
		}
	}
}

func TestReconcileSortsRecordsAndEntries(t *testing.T) {
	var buf bytes.Buffer
	r := newTestReconciler(&buf)

	full := func(module, stream string) []Message {
		return []Message{
			{MsgID: module + stream + "s", MsgStr: "s", Locations: refs(module + ";" + stream + ";summary")},
			{MsgID: module + stream + "d", MsgStr: "d", Locations: refs(module + ";" + stream + ";description")},
		}
	}
	msgs := append(full("perl", "5.30"), full("nodejs", "12")...)
	got := r.Reconcile(map[string]*Translated{
		"uk": {Locale: "uk", Messages: msgs},
		"de": {Locale: "de", Messages: msgs},
		"ja": {Locale: "ja", Messages: msgs},
	})

	if len(got) != 2 || got[0].Module != "nodejs" || got[1].Module != "perl" {
		t.Fatalf("unexpected record order")
	}
	for _, tr := range got {
		var locales []string
		for _, e := range tr.Entries {
			locales = append(locales, e.Locale)
		}
		if strings.Join(locales, ",") != "de,ja,uk" {
			t.Fatalf("%s locales = %v", tr.Module, locales)
		}
	}
}

func TestFromPO(t *testing.T) {
	src := `msgid ""
msgstr ""
"Language: de\n"

#: foo;s1;summary:1
msgid "Foo summary"
msgstr "Zusammenfassung"

#, fuzzy
#: foo;s1;description:2
msgid "Foo desc"
msgstr "Beschreibung"

#~ msgid "Old"
#~ msgstr "Alt"
`
	f, err := pofile.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	tr := FromPO("de", f)
	if tr.Locale != "de" {
		t.Fatalf("Locale = %q", tr.Locale)
	}
	if len(tr.Messages) != 1 {
		t.Fatalf("got %d messages, want 1: %#v", len(tr.Messages), tr.Messages)
	}
	m := tr.Messages[0]
	if m.MsgID != "Foo summary" || m.MsgStr != "Zusammenfassung" {
		t.Fatalf("message = %#v", m)
	}
	if len(m.Locations) != 1 || m.Locations[0].Location != "foo;s1;summary" || m.Locations[0].Line != 1 {
		t.Fatalf("locations = %#v", m.Locations)
	}
}
