// Package pipeline wires the build system, the string catalog, the
// translation service and the reconciler into the two flows the command
// exposes: extracting a template and generating translations metadata.
package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/minios-linux/mmdl10n/koji"
	"github.com/minios-linux/mmdl10n/modulemd"
	"github.com/minios-linux/mmdl10n/selector"
)

func discard(l *log.Logger) *log.Logger {
	if l == nil {
		return log.New(io.Discard)
	}
	return l
}

// LatestModules lists every tag, keeps the latest builds of each tag and
// merges the results. A build tagged more than once appears once, at its
// first position.
func LatestModules(ctx context.Context, s koji.Session, tags []string, logger *log.Logger) ([]koji.Build, error) {
	logger = discard(logger)

	seen := make(map[int]bool)
	var builds []koji.Build
	for _, tag := range tags {
		tagged, err := s.ListTagged(ctx, tag)
		if err != nil {
			return nil, err
		}
		latest := selector.SelectLatest(tagged)
		logger.Debug("Listed tag", "tag", tag, "builds", len(tagged), "latest", len(latest))

		for _, b := range latest {
			if seen[b.ID] {
				continue
			}
			seen[b.ID] = true
			builds = append(builds, b)
		}
	}
	return builds, nil
}

// Descriptors fetches the modulemd of every build. A payload that does not
// hold exactly one module document aborts with an error naming the build.
// onBuild, if set, is called before each build is parsed.
func Descriptors(ctx context.Context, s koji.Session, builds []koji.Build, onBuild func(*koji.BuildInfo)) ([]modulemd.Descriptor, error) {
	descriptors := make([]modulemd.Descriptor, 0, len(builds))
	for _, b := range builds {
		info, err := s.GetBuild(ctx, b.ID)
		if err != nil {
			return nil, err
		}
		if onBuild != nil {
			onBuild(info)
		}

		name, stream := info.ModuleName, info.ModuleStream
		if name == "" {
			name = b.Name
		}
		if stream == "" {
			stream = b.Stream
		}

		nvr := info.NVR
		if nvr == "" {
			nvr = b.NVR
		}
		d, err := modulemd.ParseDescriptorFor([]byte(info.ModulemdStr), name, stream)
		if err != nil {
			return nil, fmt.Errorf("koji build %s: %w", nvr, err)
		}
		descriptors = append(descriptors, d)
	}
	return descriptors, nil
}
