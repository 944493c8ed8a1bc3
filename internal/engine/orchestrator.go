package engine

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/baldr/baldr/pkg/cmake"
	"github.com/baldr/baldr/pkg/config"
	"github.com/baldr/baldr/pkg/debugger"
	"github.com/baldr/baldr/pkg/identity"
	"github.com/baldr/baldr/pkg/locator"
	"github.com/baldr/baldr/pkg/logger"
	"github.com/baldr/baldr/pkg/notifier"
	"github.com/baldr/baldr/pkg/process"
	"github.com/baldr/baldr/pkg/prompt"
	"github.com/baldr/baldr/pkg/utils"
)

// Options are the per-invocation inputs from the command line.
type Options struct {
	Project   string
	BuildType string
	// BuildDir replaces the derived build directory when set.
	BuildDir    string
	Target      string
	Jobs        int
	Defines     []string
	Sanitizer   string
	Delete      bool
	NoConfirm   bool
	NoConfigure bool
	Run         bool
	// Debug implies Run.
	Debug  bool
	Docker bool
	// Args are forwarded verbatim to the launched target.
	Args []string
}

// DefaultOptions returns the command line defaults.
func DefaultOptions() Options {
	return Options{
		BuildType: "Debug",
		Target:    "all",
		Jobs:      1,
	}
}

// Dependencies are the collaborators an Engine drives.
type Dependencies struct {
	// Runner executes configure, build and the target.
	Runner   process.Runner
	Confirm  prompt.ConfirmFunc
	Notifier notifier.Notifier
	// Stdin is handed to the launched target.
	Stdin io.Reader
}

// Engine runs one invocation through its phases. It is not safe for
// concurrent use and is meant to be run once.
type Engine struct {
	opts   Options
	config *config.View
	deps   Dependencies
	logger logger.Logger

	project  string
	buildDir string
	phase    Phase
}

// New creates an engine. The project path is made absolute.
func New(opts Options, cfg *config.View, deps Dependencies, log logger.Logger) (*Engine, error) {
	if opts.Project == "" {
		return nil, errors.New("project path is required")
	}
	if opts.Jobs < 1 {
		return nil, fmt.Errorf("jobs must be at least 1, got %d", opts.Jobs)
	}
	if deps.Runner == nil {
		return nil, errors.New("runner dependency is required")
	}
	if deps.Confirm == nil {
		deps.Confirm = prompt.DefaultConfirm()
	}
	if opts.Debug {
		opts.Run = true
	}

	project, err := absProject(opts.Project)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		opts:    opts,
		config:  cfg,
		deps:    deps,
		logger:  log.WithTarget(opts.Target),
		project: project,
		phase:   NotConfigured,
	}
	e.buildDir, err = e.resolveBuildDir()
	if err != nil {
		return nil, err
	}
	return e, nil
}

// BuildDir is the directory this invocation builds in.
func (e *Engine) BuildDir() string { return e.buildDir }

// Project is the absolute project root.
func (e *Engine) Project() string { return e.project }

// Phase is the last phase reached.
func (e *Engine) Phase() Phase { return e.phase }

func (e *Engine) resolveBuildDir() (string, error) {
	if e.opts.BuildDir != "" {
		dir, err := filepath.Abs(e.opts.BuildDir)
		if err != nil {
			return "", &FilesystemError{Op: "resolve", Path: e.opts.BuildDir, Err: err}
		}
		return dir, nil
	}

	var compiler string
	if e.config != nil {
		if _, cxx, ok := e.config.Compilers(); ok {
			compiler = cxx
		}
	}
	return identity.BuildPath{
		Project:      e.project,
		BuildType:    e.opts.BuildType,
		CompilerPath: compiler,
		Sanitizer:    e.opts.Sanitizer,
	}.Path(), nil
}

func (e *Engine) transition(to Phase) {
	e.logger.Debug("Phase transition", logger.WithField("from", e.phase), logger.WithField("to", to))
	e.phase = to
}

func (e *Engine) fail(err error) error {
	e.transition(Failed)
	return err
}

// Run executes the invocation. Every failure aborts the remaining phases.
func (e *Engine) Run() error {
	var dbg *debugger.Debugger
	if e.opts.Run {
		if e.opts.Target == "all" {
			return e.fail(ErrConcreteTarget)
		}
		if e.opts.Debug {
			d, err := e.resolveDebugger()
			if err != nil {
				return e.fail(err)
			}
			dbg = &d
		}
	}

	configure, err := e.prepareBuildDir()
	if err != nil {
		return e.fail(err)
	}

	if configure {
		if err := e.configure(); err != nil {
			return e.fail(err)
		}
	}

	if err := e.build(); err != nil {
		return e.fail(err)
	}

	if err := utils.SyncCompileCommands(e.project, e.buildDir, e.logger); err != nil {
		e.logger.Error("Failed to update compile commands symlink", logger.WithField("error", err))
	}

	if !e.opts.Run {
		e.transition(Done)
		return nil
	}

	if err := e.launch(dbg); err != nil {
		return e.fail(err)
	}
	e.transition(Done)
	return nil
}

func (e *Engine) resolveDebugger() (debugger.Debugger, error) {
	var name string
	if e.config != nil {
		name, _ = e.config.Debugger()
	}
	d, err := debugger.Parse(name)
	if err != nil {
		return debugger.Debugger{}, err
	}
	e.logger.Debug("Debugger resolved", logger.WithField("debugger", d.Kind), logger.WithField("program", d.Program))
	return d, nil
}

// prepareBuildDir applies --delete and the exists check. It reports whether
// the configure step has to run.
func (e *Engine) prepareBuildDir() (bool, error) {
	if e.opts.Delete && utils.DirectoryExists(e.buildDir) {
		if _, err := prompt.ConfirmAndDelete(e.buildDir, !e.opts.NoConfirm, e.deps.Confirm, e.logger); err != nil {
			return false, &FilesystemError{Op: "delete", Path: e.buildDir, Err: err}
		}
	}

	if !utils.DirectoryExists(e.buildDir) {
		if err := utils.EnsureDirectory(e.buildDir); err != nil {
			return false, &FilesystemError{Op: "create", Path: e.buildDir, Err: err}
		}
		e.logger.Info("Build directory created at: " + e.buildDir)
		return true, nil
	}

	e.logger.Info("Build directory already exists at: " + e.buildDir)
	if e.opts.NoConfigure {
		e.logger.Debug("Skipping configure")
		e.transition(Configured)
		return false, nil
	}
	return true, nil
}

func (e *Engine) configure() error {
	e.transition(Configuring)

	if err := cmake.ValidateProject(e.project); err != nil {
		return &PhaseError{Phase: Configuring, Err: err}
	}

	opts := cmake.ConfigureOptions{
		Project:    e.project,
		BuildDir:   e.buildDir,
		BuildType:  e.opts.BuildType,
		Sanitizer:  e.opts.Sanitizer,
		CLIDefines: e.opts.Defines,
	}
	if e.config != nil {
		opts.ConfigDefines = e.config.CMakeDefinitions()
		if cc, cxx, ok := e.config.Compilers(); ok {
			opts.CC, opts.CXX = cc, cxx
		}
	}

	cmd, err := cmake.ConfigureCommand(opts)
	if err != nil {
		return &PhaseError{Phase: Configuring, Err: err}
	}
	if err := e.deps.Runner.Run(cmd); err != nil {
		return &PhaseError{Phase: Configuring, Err: err}
	}

	e.transition(Configured)
	return nil
}

func (e *Engine) build() error {
	e.transition(Building)

	start := time.Now()
	err := e.deps.Runner.Run(cmake.BuildCommand(e.buildDir, e.opts.Target, e.opts.Jobs))
	if err != nil {
		if e.deps.Notifier != nil {
			e.deps.Notifier.BuildFailed(e.opts.Target, err)
		}
		return &PhaseError{Phase: Building, Err: err}
	}

	elapsed := time.Since(start)
	if e.deps.Notifier != nil {
		e.deps.Notifier.BuildSucceeded(e.opts.Target, elapsed)
	}
	e.logger.Success("Build finished", logger.WithField("duration", elapsed.Round(time.Millisecond)))
	e.transition(Built)
	return nil
}

func (e *Engine) launch(dbg *debugger.Debugger) error {
	e.transition(Running)

	e.hintUndeclaredTarget()

	exe, err := locator.Resolve(e.buildDir, e.opts.Target)
	if err != nil {
		return &PhaseError{Phase: Running, Err: err}
	}

	cmd := process.Command{Program: exe, Args: e.opts.Args, Stdin: e.deps.Stdin}
	if dbg != nil {
		cmd.Program = dbg.Program
		cmd.Args = dbg.Args(exe, e.opts.Args)
	}
	if cmd.Stdin == nil {
		cmd.Stdin = os.Stdin
	}

	e.logger.Info("Running " + cmd.String())
	if err := e.deps.Runner.Run(cmd); err != nil {
		if code, ok := process.ExitCode(err); ok {
			return &TargetExitError{Code: code}
		}
		return &PhaseError{Phase: Running, Err: err}
	}
	return nil
}

// hintUndeclaredTarget warns when the project's CMakeLists.txt files do not
// declare the target as an executable. The locator still has the last word.
func (e *Engine) hintUndeclaredTarget() {
	project, err := cmake.Analyze(e.project)
	if err != nil {
		return
	}
	if len(project.Targets) > 0 && !project.Executable(e.opts.Target) {
		e.logger.Warn("Target is not declared with add_executable", logger.WithField("project", project.Name))
	}
}

func absProject(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", &FilesystemError{Op: "resolve", Path: path, Err: err}
	}
	return abs, nil
}
