// Package modulemd reads the module metadata documents produced by the build
// system and writes the modulemd-translations documents consumed by the
// distribution tooling.
//
// Only the fields needed for localization are modelled: name, stream,
// summary, description and profile descriptions.
package modulemd

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// DocumentModule is the document type of a module stream definition.
const DocumentModule = "modulemd"

// ErrMultipleDocuments is matched by MultipleDocumentsError.
var ErrMultipleDocuments = errors.New("expected exactly one modulemd document")

// MultipleDocumentsError reports a payload that does not hold exactly one
// module stream definition.
type MultipleDocumentsError struct {
	Count int
}

func (e *MultipleDocumentsError) Error() string {
	return fmt.Sprintf("expected exactly one modulemd document, found %d", e.Count)
}

func (e *MultipleDocumentsError) Unwrap() error { return ErrMultipleDocuments }

// Profile is an installation profile of a module stream.
type Profile struct {
	Name        string
	Description string
}

// Descriptor holds the translatable text of one module stream.
type Descriptor struct {
	Name        string
	Stream      string
	Summary     string
	Description string
	// Profiles are kept in document order.
	Profiles []Profile
}

type document struct {
	Document string    `yaml:"document"`
	Version  int       `yaml:"version"`
	Data     yaml.Node `yaml:"data"`
}

type moduleData struct {
	Name        string    `yaml:"name"`
	Stream      string    `yaml:"stream"`
	Summary     string    `yaml:"summary"`
	Description string    `yaml:"description"`
	Profiles    yaml.Node `yaml:"profiles"`
}

type profileData struct {
	Description string `yaml:"description"`
}

// ParseDescriptor parses a YAML stream that must contain exactly one
// modulemd document. Documents of other types are ignored.
func ParseDescriptor(data []byte) (Descriptor, error) {
	return ParseDescriptorFor(data, "", "")
}

// ParseDescriptorFor is ParseDescriptor with fallbacks for documents that
// omit their name or stream; the build system records both separately.
func ParseDescriptorFor(data []byte, name, stream string) (Descriptor, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))

	var modules []moduleData
	for i := 1; ; i++ {
		var doc document
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Descriptor{}, fmt.Errorf("parsing document %d: %w", i, err)
		}
		if doc.Document != DocumentModule {
			continue
		}
		var md moduleData
		if err := doc.Data.Decode(&md); err != nil {
			return Descriptor{}, fmt.Errorf("parsing modulemd data: %w", err)
		}
		modules = append(modules, md)
	}

	if len(modules) != 1 {
		return Descriptor{}, &MultipleDocumentsError{Count: len(modules)}
	}

	md := modules[0]
	d := Descriptor{
		Name:        md.Name,
		Stream:      md.Stream,
		Summary:     md.Summary,
		Description: md.Description,
	}
	if d.Name == "" {
		d.Name = name
	}
	if d.Stream == "" {
		d.Stream = stream
	}

	profiles, err := parseProfiles(&md.Profiles)
	if err != nil {
		return Descriptor{}, err
	}
	d.Profiles = profiles
	return d, nil
}

// parseProfiles walks the profiles mapping node so document order survives.
func parseProfiles(node *yaml.Node) ([]Profile, error) {
	if node.Kind == 0 || (node.Kind == yaml.ScalarNode && node.Tag == "!!null") {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("profiles must be a mapping, got kind %d", node.Kind)
	}

	var profiles []Profile
	for i := 0; i+1 < len(node.Content); i += 2 {
		var p profileData
		if err := node.Content[i+1].Decode(&p); err != nil {
			return nil, fmt.Errorf("profile %q: %w", node.Content[i].Value, err)
		}
		profiles = append(profiles, Profile{
			Name:        node.Content[i].Value,
			Description: p.Description,
		})
	}
	return profiles, nil
}
