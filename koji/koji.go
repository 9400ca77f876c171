// Package koji queries a koji hub for tagged module builds and their
// modulemd payloads.
package koji

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// DefaultURL is the Fedora koji hub.
const DefaultURL = "https://koji.fedoraproject.org/kojihub"

// Rawhide is the branch alias that resolves through the rawhide build target.
const Rawhide = "rawhide"

// ErrUnavailable is returned once every attempt to reach the hub failed.
var ErrUnavailable = errors.New("koji hub unavailable")

// ErrNoTarget is returned when a build target lookup comes back empty.
var ErrNoTarget = errors.New("build target not found")

// Build is one entry of a tag listing. For module builds Stream holds what
// koji calls the version.
type Build struct {
	ID      int
	Name    string
	Stream  string
	Release string
	NVR     string
}

// BuildInfo is the subset of getBuild the extractor needs.
type BuildInfo struct {
	ID           int
	NVR          string
	PackageName  string
	ModuleName   string
	ModuleStream string
	// ModulemdStr is the raw modulemd YAML attached to a module build.
	ModulemdStr string
}

// Target is a build target.
type Target struct {
	Name         string
	BuildTagName string
	DestTagName  string
}

// Session is the part of the hub API used here.
type Session interface {
	ListTagged(ctx context.Context, tag string) ([]Build, error)
	GetBuild(ctx context.Context, id int) (*BuildInfo, error)
	GetBuildTargets(ctx context.Context, name string) ([]Target, error)
}

var tagSuffixes = []string{
	"",
	"-override",
	"-pending",
	"-signing-pending",
	"-updates",
	"-updates-candidate",
	"-updates-pending",
	"-updates-testing",
	"-updates-testing-pending",
}

// TagsForBranch lists every modular tag a build of branch can land in.
func TagsForBranch(branch string) []string {
	tags := make([]string, 0, len(tagSuffixes))
	for _, s := range tagSuffixes {
		tags = append(tags, branch+"-modular"+s)
	}
	return tags
}

// ResolveBranch maps the rawhide alias to the release it currently builds
// for, e.g. "f32". Any other branch is returned as is.
func ResolveBranch(ctx context.Context, s Session, branch string) (string, error) {
	if branch != Rawhide {
		return branch, nil
	}

	targets, err := s.GetBuildTargets(ctx, Rawhide)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", Rawhide, err)
	}
	if len(targets) == 0 {
		return "", fmt.Errorf("resolving %s: %w", Rawhide, ErrNoTarget)
	}
	return strings.TrimSuffix(targets[0].BuildTagName, "-build"), nil
}
