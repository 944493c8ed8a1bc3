// Package process runs external tools to completion and reports how they ended
package process

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/baldr/baldr/pkg/logger"
)

// Command describes one child process invocation.
type Command struct {
	Program string
	Args    []string

	// Env holds overrides applied on top of the inherited environment.
	Env map[string]string
	Dir string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// String reconstructs the command line for diagnostics.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, c.Program)
	parts = append(parts, c.Args...)
	return strings.Join(parts, " ")
}

// EnvList returns the overrides as sorted KEY=VALUE pairs.
func (c Command) EnvList() []string {
	if len(c.Env) == 0 {
		return nil
	}
	keys := make([]string, 0, len(c.Env))
	for k := range c.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+c.Env[k])
	}
	return out
}

// Runner runs a command and blocks until it exits.
type Runner interface {
	Run(cmd Command) error
}

// SpawnError means the child could not be started at all.
type SpawnError struct {
	Command string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawning command `%s` failed: %v", e.Command, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// ExitError means the child ran and returned a non-zero status.
type ExitError struct {
	Command string
	Code    int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("command `%s` exited with status %d", e.Command, e.Code)
}

// ExitCode extracts the exit status carried by err, if any.
func ExitCode(err error) (int, bool) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code, true
	}
	return 0, false
}

// ExecRunner runs commands as local child processes.
type ExecRunner struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger logger.Logger
}

// NewExecRunner creates a runner wired to the current process' stdout and stderr
func NewExecRunner(log logger.Logger) *ExecRunner {
	return &ExecRunner{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Logger: log,
	}
}

// Run starts the command and waits for it. There is no timeout.
func (r *ExecRunner) Run(c Command) error {
	cmdline := c.String()
	if r.Logger != nil {
		r.Logger.Debug("CMD: " + cmdline)
	}

	cmd := exec.Command(c.Program, c.Args...)
	cmd.Dir = c.Dir
	cmd.Stdin = c.Stdin
	cmd.Stdout = pick(c.Stdout, r.Stdout)
	cmd.Stderr = pick(c.Stderr, r.Stderr)
	if len(c.Env) > 0 {
		cmd.Env = MergeEnv(os.Environ(), c.Env)
	}

	if err := cmd.Start(); err != nil {
		return &SpawnError{Command: cmdline, Err: err}
	}

	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &ExitError{Command: cmdline, Code: exitErr.ExitCode()}
		}
		return &SpawnError{Command: cmdline, Err: err}
	}
	return nil
}

// MergeEnv overlays override on base, keeping base order and appending new keys sorted.
func MergeEnv(base []string, override map[string]string) []string {
	out := make([]string, 0, len(base)+len(override))
	seen := make(map[string]bool, len(override))
	for _, kv := range base {
		k, _, ok := strings.Cut(kv, "=")
		if ok {
			if v, found := override[k]; found {
				out = append(out, k+"="+v)
				seen[k] = true
				continue
			}
		}
		out = append(out, kv)
	}

	keys := make([]string, 0, len(override))
	for k := range override {
		if !seen[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		out = append(out, k+"="+override[k])
	}
	return out
}

func pick(w, fallback io.Writer) io.Writer {
	if w != nil {
		return w
	}
	return fallback
}
