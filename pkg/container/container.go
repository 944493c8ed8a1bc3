// Package container runs tool commands inside a container image through the docker CLI.
package container

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/baldr/baldr/pkg/config"
	"github.com/baldr/baldr/pkg/logger"
	"github.com/baldr/baldr/pkg/process"
)

// LabelKey tags every container started by one invocation.
const LabelKey = "baldr.invocation"

// ErrNoImage is returned when docker.image is not configured.
var ErrNoImage = errors.New("no container image configured (docker.image)")

// Runner implements process.Runner by wrapping each command in `docker run`.
type Runner struct {
	Settings config.Docker
	// Mount is bind-mounted at the same path inside the container.
	Mount string
	// Program is the docker CLI.
	Program string
	// Exec starts the docker CLI itself.
	Exec process.Runner

	Stdout io.Writer
	Stderr io.Writer
	Logger logger.Logger

	invocation string
}

// New creates a runner for the project at mount.
func New(settings config.Docker, mount string, exec process.Runner, log logger.Logger) (*Runner, error) {
	if settings.Image == "" {
		return nil, ErrNoImage
	}
	return &Runner{
		Settings:   settings,
		Mount:      mount,
		Program:    "docker",
		Exec:       exec,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		Logger:     log,
		invocation: uuid.NewString(),
	}, nil
}

// Invocation is the label value shared by this runner's containers.
func (r *Runner) Invocation() string {
	return r.invocation
}

// Command translates cmd into the docker CLI invocation.
func (r *Runner) Command(cmd process.Command) process.Command {
	args := []string{"run"}
	if r.Settings.Name != "" {
		args = append(args, "--name", r.Settings.Name)
	}
	if r.Settings.Remove {
		args = append(args, "--rm")
	}
	if cmd.Stdin != nil {
		args = append(args, "-i")
	}
	args = append(args, "--label", LabelKey+"="+r.invocation)

	for _, kv := range r.Settings.Env {
		args = append(args, "-e", kv)
	}
	for _, kv := range cmd.EnvList() {
		args = append(args, "-e", kv)
	}

	workdir := cmd.Dir
	if workdir == "" {
		workdir = r.Mount
	}
	args = append(args,
		"-v", r.Mount+":"+r.Mount,
		"-w", workdir,
		r.Settings.Image,
		cmd.Program,
	)
	args = append(args, cmd.Args...)

	return process.Command{
		Program: r.Program,
		Args:    args,
		Stdin:   cmd.Stdin,
	}
}

// Run executes cmd in a fresh container and waits for it. Both output
// streams are drained until end-of-stream; a stream disabled in the docker
// settings is discarded.
func (r *Runner) Run(cmd process.Command) error {
	if r.Settings.Image == "" {
		return ErrNoImage
	}

	if err := r.removeStale(); err != nil && r.Logger != nil {
		r.Logger.Debug("Failed to remove stale container", logger.WithField("name", r.Settings.Name), logger.WithField("error", err))
	}

	docker := r.Command(cmd)

	stdoutR, stdoutW := io.Pipe()
	stderrR, stderrW := io.Pipe()
	docker.Stdout = stdoutW
	docker.Stderr = stderrW

	var g errgroup.Group
	g.Go(func() error {
		return forward(r.sink(r.Settings.Stdout, cmd.Stdout, r.Stdout), stdoutR)
	})
	g.Go(func() error {
		return forward(r.sink(r.Settings.Stderr, cmd.Stderr, r.Stderr), stderrR)
	})

	if r.Logger != nil {
		r.Logger.Debug("Running in container", logger.WithField("image", r.Settings.Image), logger.WithField("label", LabelKey+"="+r.invocation))
	}
	runErr := r.Exec.Run(docker)
	stdoutW.Close()
	stderrW.Close()

	if err := g.Wait(); err != nil && runErr == nil {
		return fmt.Errorf("reading container output: %w", err)
	}
	return runErr
}

// removeStale deletes stopped containers left under the configured name by an
// earlier phase or invocation. Only containers carrying LabelKey are touched;
// a foreign container with that name still makes `docker run` fail.
func (r *Runner) removeStale() error {
	if r.Settings.Name == "" || r.Settings.Remove {
		return nil
	}

	var out bytes.Buffer
	ps := process.Command{
		Program: r.Program,
		Args: []string{
			"ps", "--all", "--quiet",
			"--filter", "name=^/?" + regexp.QuoteMeta(r.Settings.Name) + "$",
			"--filter", "label=" + LabelKey,
		},
		Stdout: &out,
		Stderr: io.Discard,
	}
	if err := r.Exec.Run(ps); err != nil {
		return fmt.Errorf("listing containers named %s: %w", r.Settings.Name, err)
	}

	ids := strings.Fields(out.String())
	if len(ids) == 0 {
		return nil
	}
	rm := process.Command{
		Program: r.Program,
		Args:    append([]string{"rm", "--force"}, ids...),
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}
	if err := r.Exec.Run(rm); err != nil {
		return fmt.Errorf("removing container %s: %w", r.Settings.Name, err)
	}
	return nil
}

func (r *Runner) sink(enabled bool, cmdWriter, fallback io.Writer) io.Writer {
	if !enabled {
		return io.Discard
	}
	if cmdWriter != nil {
		return cmdWriter
	}
	if fallback != nil {
		return fallback
	}
	return io.Discard
}

// forward copies chunks from r to w until EOF. After a write failure the
// rest of the stream is still drained so the producer never blocks.
func forward(w io.Writer, r io.Reader) error {
	buf := make([]byte, 32*1024)
	var writeErr error
	for {
		n, err := r.Read(buf)
		if n > 0 && writeErr == nil {
			if _, werr := w.Write(buf[:n]); werr != nil {
				writeErr = werr
			}
		}
		if err == io.EOF {
			return writeErr
		}
		if err != nil {
			return err
		}
	}
}
