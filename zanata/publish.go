package zanata

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// DefaultCLI is where Fedora installs zanata-cli.
const DefaultCLI = "/usr/bin/zanata-cli"

// Publish steps.
const (
	StepPutVersion = "put-version"
	StepPush       = "push"
)

// PublishRequest describes one template upload.
type PublishRequest struct {
	URL        string
	Project    string
	Version    string
	SrcDir     string // directory holding the .pot file
	UserConfig string
}

// Publisher uploads a source template to the translation service.
type Publisher interface {
	Publish(ctx context.Context, req PublishRequest) error
}

// PublishError reports a failed zanata-cli step with its output.
type PublishError struct {
	Step     string
	ExitCode int
	Output   string
}

func (e *PublishError) Error() string {
	msg := fmt.Sprintf("zanata-cli %s failed with exit code %d", e.Step, e.ExitCode)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += ":\n" + out
	}
	return msg
}

// Runner runs an external command and returns its combined output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run implements Runner.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// CLIPublisher publishes through zanata-cli: put-version makes sure the
// version exists, push uploads the template.
type CLIPublisher struct {
	Path   string
	Runner Runner
	// OnOutput receives the output of every successful step.
	OnOutput func(step string, output []byte)
}

// NewCLIPublisher returns a publisher running the zanata-cli binary at path.
func NewCLIPublisher(path string) *CLIPublisher {
	if path == "" {
		path = DefaultCLI
	}
	return &CLIPublisher{Path: path, Runner: ExecRunner{}}
}

// Args returns the zanata-cli arguments of a step.
func Args(step string, req PublishRequest) []string {
	args := []string{"-B", "-e", step, "--url", req.URL}
	switch step {
	case StepPutVersion:
		args = append(args,
			"--version-project", req.Project,
			"--version-slug", req.Version)
	case StepPush:
		args = append(args,
			"--project", req.Project,
			"--project-type", "gettext",
			"--project-version", req.Version,
			"--src-dir", req.SrcDir)
	}
	return append(args, "--user-config", req.UserConfig)
}

// Publish runs put-version then push, stopping at the first failure.
func (p *CLIPublisher) Publish(ctx context.Context, req PublishRequest) error {
	runner := p.Runner
	if runner == nil {
		runner = ExecRunner{}
	}
	for _, step := range []string{StepPutVersion, StepPush} {
		out, err := runner.Run(ctx, p.Path, Args(step, req)...)
		if err != nil {
			code := -1
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				code = exitErr.ExitCode()
			}
			if len(out) == 0 {
				out = []byte(err.Error())
			}
			return &PublishError{Step: step, ExitCode: code, Output: string(out)}
		}
		if p.OnOutput != nil {
			p.OnOutput(step, out)
		}
	}
	return nil
}
