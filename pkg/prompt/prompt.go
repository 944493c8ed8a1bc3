// Package prompt gates destructive operations behind a yes/no question.
package prompt

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/baldr/baldr/pkg/logger"
)

// ConfirmFunc asks question and reports whether the user accepted.
type ConfirmFunc func(question string) bool

// StdinConfirm returns a ConfirmFunc that writes the question to out and
// accepts only a line reading exactly "y" once trimmed. EOF and read errors
// decline. Input is consumed up to the newline and no further, so whatever
// follows stays readable by the launched target.
func StdinConfirm(in io.Reader, out io.Writer) ConfirmFunc {
	return func(question string) bool {
		fmt.Fprintf(out, "%s %s ", color.New(color.FgYellow, color.Bold).Sprint(question), color.New(color.Faint).Sprint("[y/N]"))

		line, err := readLine(in)
		if err != nil && line == "" {
			fmt.Fprintln(out)
			return false
		}
		return strings.TrimSpace(line) == "y"
	}
}

// readLine reads one byte at a time up to and including '\n'.
func readLine(in io.Reader) (string, error) {
	var sb strings.Builder
	buf := make([]byte, 1)
	for {
		n, err := in.Read(buf)
		if n > 0 {
			if buf[0] == '\n' {
				return sb.String(), nil
			}
			sb.WriteByte(buf[0])
		}
		if err != nil {
			return sb.String(), err
		}
	}
}

// DefaultConfirm prompts on stderr and reads stdin.
func DefaultConfirm() ConfirmFunc {
	return StdinConfirm(os.Stdin, os.Stderr)
}

// ConfirmAndDelete removes path recursively. When interactive, confirm is
// asked first and a decline leaves path untouched. It reports whether path
// was deleted; a failed removal is returned as an error.
func ConfirmAndDelete(path string, interactive bool, confirm ConfirmFunc, log logger.Logger) (bool, error) {
	if interactive {
		if !confirm(fmt.Sprintf("Delete build directory %s?", path)) {
			log.Info("Deletion skipped", logger.WithField("path", path))
			return false, nil
		}
	} else {
		log.Info("Confirmation skipped, deleting build directory", logger.WithField("path", path))
	}

	if err := os.RemoveAll(path); err != nil {
		return false, fmt.Errorf("failed to delete %s: %w", path, err)
	}
	log.Info("Build directory deleted", logger.WithField("path", path))
	return true, nil
}
