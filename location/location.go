// Package location encodes and decodes the provenance clues stored in the
// "#:" references of the extracted catalog.
//
// A clue names the module stream and the field a string was taken from:
//
//	name;stream;summary
//	name;stream;description
//	name;stream;profile;profilename
package location

import (
	"errors"
	"fmt"
	"strings"
)

// Separator joins the parts of an encoded location.
const Separator = ";"

// Kind is the metadata field a string was extracted from.
type Kind string

const (
	KindSummary     Kind = "summary"
	KindDescription Kind = "description"
	KindProfile     Kind = "profile"
)

// Line returns the pseudo line number written next to a location in the
// template. Translation tools need one; the value only groups fields.
func (k Kind) Line() int {
	switch k {
	case KindSummary:
		return 1
	case KindDescription:
		return 2
	case KindProfile:
		return 3
	}
	return 0
}

// ErrMalformed is matched by every decoding failure.
var ErrMalformed = errors.New("malformed location")

// MalformedError reports a token that does not split into 3 to 5 parts.
type MalformedError struct {
	Token string
	Parts int
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("invalid location clue %q: %d parts", e.Token, e.Parts)
}

func (e *MalformedError) Unwrap() error { return ErrMalformed }

// Location identifies one occurrence of a translatable string.
type Location struct {
	Module  string
	Stream  string
	Kind    Kind
	Profile string
}

// Encode builds the token for a field. profile is only used for KindProfile.
func Encode(module, stream string, kind Kind, profile string) string {
	parts := []string{module, stream, string(kind)}
	if kind == KindProfile {
		parts = append(parts, profile)
	}
	return strings.Join(parts, Separator)
}

// String returns the encoded token.
func (l Location) String() string {
	return Encode(l.Module, l.Stream, l.Kind, l.Profile)
}

// Decode splits a token back into its parts. Empty names are not rejected.
func Decode(token string) (Location, error) {
	parts := strings.Split(token, Separator)
	if len(parts) < 3 || len(parts) > 5 {
		return Location{}, &MalformedError{Token: token, Parts: len(parts)}
	}

	loc := Location{
		Module: parts[0],
		Stream: parts[1],
		Kind:   Kind(parts[2]),
	}
	if loc.Kind == KindProfile && len(parts) > 3 {
		loc.Profile = parts[3]
	}
	return loc, nil
}
