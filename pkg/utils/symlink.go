// Package utils provides filesystem helpers shared by the orchestrator and the watcher
package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/baldr/baldr/pkg/logger"
)

// CompileCommands is the compile-metadata file cmake exports.
const CompileCommands = "compile_commands.json"

// SymlinkError wraps a failed symlink operation.
type SymlinkError struct {
	Op   string
	Path string
	Err  error
}

func (e *SymlinkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *SymlinkError) Unwrap() error { return e.Err }

// SyncCompileCommands keeps <project>/compile_commands.json pointing at the
// file in buildDir. A link that resolves is left untouched, a dangling one is
// replaced and a regular file is never overwritten.
func SyncCompileCommands(project, buildDir string, log logger.Logger) error {
	target, err := filepath.Abs(filepath.Join(buildDir, CompileCommands))
	if err != nil {
		return &SymlinkError{Op: "resolve", Path: buildDir, Err: err}
	}
	link := filepath.Join(project, CompileCommands)

	info, err := os.Lstat(link)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return &SymlinkError{Op: "stat", Path: link, Err: err}
	case info.Mode()&fs.ModeSymlink == 0:
		log.Warn(fmt.Sprintf("`%s` exists and is not a symlink, leaving it untouched.", CompileCommands), logger.WithField("path", link))
		return nil
	default:
		if _, err := os.Stat(link); err == nil {
			log.Info(fmt.Sprintf("`%s` symlink already exists and is valid.", CompileCommands))
			if dest, err := os.Readlink(link); err == nil {
				log.Debug("Symlink destination", logger.WithField("target", dest))
			}
			return nil
		}
		if err := os.Remove(link); err != nil {
			return &SymlinkError{Op: "remove", Path: link, Err: err}
		}
		log.Info(fmt.Sprintf("Broken `%s` symlink is removed.", CompileCommands))
	}

	log.Info(fmt.Sprintf("Creating `%s` symlink...", CompileCommands))
	if err := os.Symlink(target, link); err != nil {
		return &SymlinkError{Op: "symlink", Path: link, Err: err}
	}
	return nil
}

// IsSymlink reports whether path is a symbolic link.
func IsSymlink(path string) bool {
	info, err := os.Lstat(path)
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeSymlink != 0
}

// DirectoryExists reports whether path is an existing directory.
func DirectoryExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// EnsureDirectory creates path and its parents.
func EnsureDirectory(path string) error {
	return os.MkdirAll(path, 0755)
}
