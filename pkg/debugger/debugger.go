// Package debugger maps a configured debugger to its launch convention.
package debugger

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrNoDebugger is returned when debugging is requested without a debugger configured.
var ErrNoDebugger = errors.New("no debugger configured")

// UnsupportedError reports a debugger name outside the supported set.
type UnsupportedError struct {
	Name string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported debugger: %s", e.Name)
}

// Kind is a supported debugger front end.
type Kind int

const (
	GDB Kind = iota
	CGDB
	LLDB
	RR
)

var kindNames = map[Kind]string{
	GDB:  "gdb",
	CGDB: "cgdb",
	LLDB: "lldb",
	RR:   "rr",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Debugger is a parsed debugger configuration.
type Debugger struct {
	Kind Kind
	// Program is the configured value, executed as is.
	Program string
}

// Parse matches the base name of value against the supported front ends.
func Parse(value string) (Debugger, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Debugger{}, ErrNoDebugger
	}
	base := filepath.Base(value)
	for kind, name := range kindNames {
		if base == name {
			return Debugger{Kind: kind, Program: value}, nil
		}
	}
	return Debugger{}, &UnsupportedError{Name: value}
}

// Args returns the debugger arguments that launch exe with args.
func (d Debugger) Args(exe string, args []string) []string {
	var out []string
	switch d.Kind {
	case GDB, CGDB:
		out = append(out, "--args", exe)
	case LLDB:
		out = append(out, "--", exe)
	case RR:
		out = append(out, "record", exe)
	}
	return append(out, args...)
}
