package engine

import (
	"errors"
	"fmt"
	"strings"
)

// ErrConcreteTarget rejects running the meta-target `all`.
var ErrConcreteTarget = errors.New("must specify a concrete target to run, `all` is not an executable")

// FilesystemError reports a failed directory or link operation.
type FilesystemError struct {
	Op   string
	Path string
	Err  error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FilesystemError) Unwrap() error { return e.Err }

// PhaseError names the phase a failure aborted.
type PhaseError struct {
	Phase Phase
	Err   error
}

func (e *PhaseError) Error() string {
	name := e.Phase.String()
	return fmt.Sprintf("%s%s failed: %v", strings.ToUpper(name[:1]), name[1:], e.Err)
}

func (e *PhaseError) Unwrap() error { return e.Err }

// TargetExitError is a non-zero exit of the launched target itself.
type TargetExitError struct {
	Code int
}

func (e *TargetExitError) Error() string {
	return fmt.Sprintf("process has returned with exit code: %d", e.Code)
}
