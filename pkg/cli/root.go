// Package cli provides the command-line interface for baldr
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/baldr/baldr/internal/engine"
	"github.com/baldr/baldr/pkg/cmake"
	"github.com/baldr/baldr/pkg/config"
	"github.com/baldr/baldr/pkg/logger"
)

// CLI encapsulates the command tree and the state shared by its commands.
type CLI struct {
	config    *Config
	rootCmd   *cobra.Command
	logger    logger.Logger
	view      *config.View
	locations config.Locations
	overrides engine.Dependencies
	output    io.Writer
	errorOut  io.Writer
}

// NewCLI creates a new CLI writing to stdout and stderr
func NewCLI(version string) *CLI {
	c := &CLI{
		config:    NewConfig(version),
		locations: config.DefaultLocations(),
		output:    os.Stdout,
		errorOut:  os.Stderr,
	}
	c.setupCommands()
	return c
}

// NewCLIWithOutput creates a CLI with custom output writers (for testing)
func NewCLIWithOutput(version string, output, errorOut io.Writer) *CLI {
	c := NewCLI(version)
	c.output = output
	c.errorOut = errorOut
	c.rootCmd.SetOut(output)
	c.rootCmd.SetErr(errorOut)
	return c
}

// WithLocations replaces the configuration directories consulted without --config.
func (c *CLI) WithLocations(loc config.Locations) *CLI {
	c.locations = loc
	return c
}

// WithDependencies injects engine collaborators; unset fields use the defaults.
func (c *CLI) WithDependencies(deps engine.Dependencies) *CLI {
	c.overrides = deps
	return c
}

// Execute runs the CLI with the given arguments
func (c *CLI) Execute(args []string) error {
	c.rootCmd.SetArgs(args)
	return c.rootCmd.Execute()
}

func (c *CLI) setupCommands() {
	c.rootCmd = &cobra.Command{
		Use:   "baldr -p <project> [flags] [-- <target args>...]",
		Short: "Configure, build, run and debug CMake projects",
		Long: `baldr configures and builds a CMake project in a build directory derived
from the build type, compiler and sanitizer, keeps compile_commands.json linked
at the project root, and optionally runs or debugs the built target.

Configuration is read from .baldr.<ext> in $XDG_CONFIG_HOME, $HOME and the
working directory (later files win), or only from --config. BALDR_* environment
variables override file values, e.g. BALDR_COMPILER_CC for compiler.cc.`,
		Args:              cobra.ArbitraryArgs,
		PersistentPreRunE: c.initialize,
		RunE:              c.runBuild,
		SilenceErrors:     true,
		SilenceUsage:      true,
	}

	c.rootCmd.Version = c.config.Version
	c.rootCmd.SetVersionTemplate("baldr v{{.Version}}\n")

	flags := c.rootCmd.PersistentFlags()
	flags.StringVar(&c.config.ConfigFile, "config", "", "configuration file, replaces every other configuration file")
	flags.StringVarP(&c.config.Verbosity, "verbosity", "v", "info", "log level (debug, info, warn, error)")
	flags.StringVar(&c.config.LogFile, "log-file", "", "also append log output to this file")

	c.addBuildFlags(c.rootCmd)

	c.rootCmd.AddCommand(c.newConfigCmd())
	c.rootCmd.AddCommand(c.newWatchCmd())
	c.rootCmd.AddCommand(c.newVersionCmd())
}

func (c *CLI) addBuildFlags(cmd *cobra.Command) {
	o := &c.config.Build
	flags := cmd.Flags()
	flags.StringVarP(&o.Project, "project", "p", "", "project path (containing the root CMakeLists.txt)")
	flags.StringVarP(&o.BuildType, "build-type", "b", o.BuildType, "build type")
	flags.StringVar(&o.BuildDir, "build-dir", "", "build directory, replaces the derived one")
	flags.StringVarP(&o.Target, "target", "t", o.Target, "cmake target to build")
	flags.IntVarP(&o.Jobs, "jobs", "j", o.Jobs, "number of parallel build jobs")
	flags.StringArrayVarP(&o.Defines, "cmake-define", "D", nil, "KEY=VALUE forwarded to cmake as -DKEY=VALUE (repeatable)")
	flags.StringVar(&o.Sanitizer, "sanitizer", "", "sanitizer ("+strings.Join(cmake.Sanitizers(), ", ")+")")
	flags.BoolVarP(&o.Delete, "delete", "d", false, "delete the build directory first")
	flags.BoolVar(&o.NoConfirm, "no-confirm", false, "skip confirmations")
	flags.BoolVar(&o.NoConfigure, "no-configure", false, "skip configure when the build directory exists")
	flags.BoolVarP(&o.Run, "run", "r", false, "run the built target")
	flags.BoolVar(&o.Debug, "debug", false, "run the built target under the configured debugger")
	flags.BoolVar(&o.Docker, "docker", false, "run cmake and the target inside the configured container image")
	_ = cmd.MarkFlagRequired("project")
}

func (c *CLI) initialize(cmd *cobra.Command, args []string) error {
	if c.errorOut == os.Stderr {
		c.logger = logger.CreateLogger(c.config.LogFile, c.config.Verbosity)
	} else {
		c.logger = logger.CreateLoggerWithOutput(c.config.LogFile, c.config.Verbosity, c.errorOut)
	}

	view, err := config.Resolve(c.config.ConfigFile, c.locations)
	if err != nil {
		return err
	}
	c.view = view
	for _, src := range view.Sources() {
		c.logger.Debug("Configuration loaded", logger.WithField("file", src))
	}
	return nil
}

// trailingArgs returns the arguments after `--`. Anything before it is rejected.
func trailingArgs(cmd *cobra.Command, args []string) ([]string, error) {
	dash := cmd.ArgsLenAtDash()
	if dash < 0 {
		if len(args) > 0 {
			return nil, fmt.Errorf("unexpected arguments %q, pass target arguments after --", args)
		}
		return nil, nil
	}
	if dash > 0 {
		return nil, fmt.Errorf("unexpected arguments %q before --", args[:dash])
	}
	return args[dash:], nil
}

func (c *CLI) runBuild(cmd *cobra.Command, args []string) error {
	trailing, err := trailingArgs(cmd, args)
	if err != nil {
		return err
	}
	opts := c.config.Build
	opts.Args = trailing
	if len(trailing) > 0 && !opts.Run && !opts.Debug {
		c.logger.Warn("Target arguments are ignored without --run or --debug")
	}
	return c.build(opts)
}

func (c *CLI) build(opts engine.Options) error {
	e, err := c.newEngine(opts)
	if err != nil {
		return err
	}
	return e.Run()
}

func (c *CLI) newEngine(opts engine.Options) (*engine.Engine, error) {
	deps, err := engine.NewDependencyFactory(opts, c.view, c.logger).CreateWithOverrides(c.overrides)
	if err != nil {
		return nil, err
	}
	return engine.New(opts, c.view, deps, c.logger)
}
