package pipeline

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/minios-linux/mmdl10n/catalog"
	"github.com/minios-linux/mmdl10n/koji"
	"github.com/minios-linux/mmdl10n/lockfile"
	"github.com/minios-linux/mmdl10n/pofile"
)

// ExtractOptions configures Extract.
type ExtractOptions struct {
	Session koji.Session
	// Branch may be "rawhide"; it is resolved before the tags are built.
	Branch  string
	Project string
	Logger  *log.Logger
}

// ExtractResult is the outcome of an extraction.
type ExtractResult struct {
	// Branch is the resolved branch, e.g. "f32" for rawhide.
	Branch   string
	Builds   []*koji.BuildInfo
	Source   *catalog.Source
	Template *pofile.File
}

// Extract collects the translatable strings of every module in the
// branch's modular tags and renders them as a template.
func Extract(ctx context.Context, opts ExtractOptions) (*ExtractResult, error) {
	logger := discard(opts.Logger)

	branch, err := koji.ResolveBranch(ctx, opts.Session, opts.Branch)
	if err != nil {
		return nil, err
	}
	if branch != opts.Branch {
		logger.Debug("Resolved branch", "alias", opts.Branch, "branch", branch)
	}

	builds, err := LatestModules(ctx, opts.Session, koji.TagsForBranch(branch), logger)
	if err != nil {
		return nil, err
	}

	res := &ExtractResult{Branch: branch}
	descriptors, err := Descriptors(ctx, opts.Session, builds, func(info *koji.BuildInfo) {
		logger.Debug("Processing", "package", info.PackageName, "nvr", info.NVR)
		res.Builds = append(res.Builds, info)
	})
	if err != nil {
		return nil, err
	}

	res.Source = catalog.Build(descriptors)
	res.Template = res.Source.Template(opts.Project, branch)
	return res, nil
}

// Snapshot returns the extracted strings in lock file form.
func (r *ExtractResult) Snapshot() lockfile.Snapshot {
	s := make(lockfile.Snapshot, r.Source.Len())
	for _, msg := range r.Source.Strings() {
		s[msg] = r.Source.Tokens(msg)
	}
	return s
}
