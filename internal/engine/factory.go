package engine

import (
	"os"

	"github.com/baldr/baldr/pkg/config"
	"github.com/baldr/baldr/pkg/container"
	"github.com/baldr/baldr/pkg/logger"
	"github.com/baldr/baldr/pkg/notifier"
	"github.com/baldr/baldr/pkg/process"
	"github.com/baldr/baldr/pkg/prompt"
)

// DependencyFactory creates default implementations of dependencies.
type DependencyFactory struct {
	opts   Options
	config *config.View
	logger logger.Logger
}

// NewDependencyFactory creates a new dependency factory
func NewDependencyFactory(opts Options, cfg *config.View, log logger.Logger) *DependencyFactory {
	return &DependencyFactory{
		opts:   opts,
		config: cfg,
		logger: log,
	}
}

// CreateDefaults wires the local process runner, or the container runner
// when --docker is set, the stdin confirmation and the desktop notifier.
func (f *DependencyFactory) CreateDefaults() (Dependencies, error) {
	runner, err := f.createRunner()
	if err != nil {
		return Dependencies{}, err
	}
	return Dependencies{
		Runner:   runner,
		Confirm:  prompt.DefaultConfirm(),
		Notifier: notifier.New(f.config.Notify(), f.logger),
		Stdin:    os.Stdin,
	}, nil
}

// CreateWithOverrides fills every unset field of overrides with its default.
func (f *DependencyFactory) CreateWithOverrides(overrides Dependencies) (Dependencies, error) {
	deps := overrides
	if deps.Runner == nil {
		runner, err := f.createRunner()
		if err != nil {
			return Dependencies{}, err
		}
		deps.Runner = runner
	}
	if deps.Confirm == nil {
		deps.Confirm = prompt.DefaultConfirm()
	}
	if deps.Notifier == nil {
		deps.Notifier = notifier.New(f.config.Notify(), f.logger)
	}
	if deps.Stdin == nil {
		deps.Stdin = os.Stdin
	}
	return deps, nil
}

func (f *DependencyFactory) createRunner() (process.Runner, error) {
	local := process.NewExecRunner(f.logger)
	if !f.opts.Docker {
		return local, nil
	}

	project, err := absProject(f.opts.Project)
	if err != nil {
		return nil, err
	}
	return container.New(f.config.Docker(), project, local, f.logger)
}
