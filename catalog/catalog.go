// Package catalog builds the translation source catalog: every translatable
// string of a set of module streams together with the places it came from.
package catalog

import (
	"github.com/minios-linux/mmdl10n/location"
	"github.com/minios-linux/mmdl10n/modulemd"
	"github.com/minios-linux/mmdl10n/pofile"
)

// Source maps each source string to the ordered set of its locations.
// Strings keep their first-insertion order.
type Source struct {
	order     []string
	locations map[string][]location.Location
}

// New returns an empty catalog.
func New() *Source {
	return &Source{locations: make(map[string][]location.Location)}
}

// Add records loc for msg. Empty strings are skipped and a location already
// recorded for msg is not repeated.
func (s *Source) Add(msg string, loc location.Location) {
	if msg == "" {
		return
	}
	existing, ok := s.locations[msg]
	if !ok {
		s.order = append(s.order, msg)
	}
	for _, l := range existing {
		if l == loc {
			return
		}
	}
	s.locations[msg] = append(existing, loc)
}

// Len returns the number of distinct strings.
func (s *Source) Len() int { return len(s.order) }

// Strings returns the source strings in insertion order.
func (s *Source) Strings() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Locations returns the locations recorded for msg.
func (s *Source) Locations(msg string) []location.Location {
	return s.locations[msg]
}

// Tokens returns the encoded locations recorded for msg.
func (s *Source) Tokens(msg string) []string {
	locs := s.locations[msg]
	tokens := make([]string, len(locs))
	for i, l := range locs {
		tokens[i] = l.String()
	}
	return tokens
}

// Build collects the summary, description and profile descriptions of every
// descriptor, in input order.
func Build(descriptors []modulemd.Descriptor) *Source {
	s := New()
	for _, d := range descriptors {
		AddDescriptor(s, d)
	}
	return s
}

// AddDescriptor adds the strings of a single module stream to s.
func AddDescriptor(s *Source, d modulemd.Descriptor) {
	s.Add(d.Summary, location.Location{Module: d.Name, Stream: d.Stream, Kind: location.KindSummary})
	s.Add(d.Description, location.Location{Module: d.Name, Stream: d.Stream, Kind: location.KindDescription})
	for _, p := range d.Profiles {
		s.Add(p.Description, location.Location{
			Module:  d.Name,
			Stream:  d.Stream,
			Kind:    location.KindProfile,
			Profile: p.Name,
		})
	}
}

// Template renders the catalog as a POT file for project and version, sorted
// by location so related strings of a module stream stay together.
func (s *Source) Template(project, version string) *pofile.File {
	pot := pofile.NewTemplate(project, version)
	for _, msg := range s.order {
		e := &pofile.Entry{MsgID: msg}
		for _, l := range s.locations[msg] {
			e.AddLocation(pofile.Reference{Location: l.String(), Line: l.Kind.Line()})
		}
		pot.Entries = append(pot.Entries, e)
	}
	pot.SortByReference()
	return pot
}
