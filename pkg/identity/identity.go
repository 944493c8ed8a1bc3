// Package identity derives the build directory for one build flavor.
package identity

import (
	"path/filepath"
	"strings"
)

// BuildDirName is the directory under the project holding every build flavor.
const BuildDirName = "build"

// BuildPath is the identity of a build: equal values always map to the same
// directory.
type BuildPath struct {
	Project      string
	BuildType    string
	CompilerPath string
	Sanitizer    string
}

// Path returns <project>/build/<build-type>[-<compiler>][-<sanitizer>].
// The build type is lowercased here only; the compiler contributes its base name.
func (b BuildPath) Path() string {
	return filepath.Join(b.Project, BuildDirName, b.Flavor())
}

// Flavor returns the last path segment of Path.
func (b BuildPath) Flavor() string {
	var sb strings.Builder
	sb.WriteString(strings.ToLower(b.BuildType))
	if b.CompilerPath != "" {
		sb.WriteString("-")
		sb.WriteString(filepath.Base(b.CompilerPath))
	}
	if b.Sanitizer != "" {
		sb.WriteString("-")
		sb.WriteString(b.Sanitizer)
	}
	return sb.String()
}

func (b BuildPath) String() string {
	return b.Path()
}
