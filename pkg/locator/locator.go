// Package locator finds built executables inside a build directory.
package locator

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

var (
	// ErrNotFound means no file matched the target name.
	ErrNotFound = errors.New("executable not found")
	// ErrAmbiguous means more than one file matched the target name.
	ErrAmbiguous = errors.New("multiple executables found")
)

// Error carries the searched directory and the candidates behind a lookup failure.
type Error struct {
	Dir     string
	Target  string
	Matches []string
	Err     error
}

func (e *Error) Error() string {
	if len(e.Matches) == 0 {
		return fmt.Sprintf("%v: no file named %q under %s", e.Err, e.Target, e.Dir)
	}
	return fmt.Sprintf("%v: %q matches %s", e.Err, e.Target, strings.Join(e.Matches, ", "))
}

func (e *Error) Unwrap() error { return e.Err }

// Find walks root and returns every regular file whose base name satisfies
// match. Unreadable subtrees are skipped.
func Find(root string, match func(name string) bool) []string {
	var matches []string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() && path != root {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if match(d.Name()) {
			matches = append(matches, path)
		}
		return nil
	})
	return matches
}

// Resolve returns the single file under root named target.
func Resolve(root, target string) (string, error) {
	matches := Find(root, func(name string) bool { return name == target })
	switch len(matches) {
	case 0:
		return "", &Error{Dir: root, Target: target, Err: ErrNotFound}
	case 1:
		return matches[0], nil
	default:
		return "", &Error{Dir: root, Target: target, Matches: matches, Err: ErrAmbiguous}
	}
}
