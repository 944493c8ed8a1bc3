// Package cmake builds the cmake invocations baldr drives.
package cmake

import (
	"strconv"

	"github.com/baldr/baldr/pkg/process"
)

// Program is the cmake executable looked up on PATH.
var Program = "cmake"

// ConfigureOptions are the inputs of the configure step.
type ConfigureOptions struct {
	Project   string
	BuildDir  string
	BuildType string
	Sanitizer string
	// ConfigDefines come from cmake.definitions and precede CLIDefines.
	ConfigDefines []string
	CLIDefines    []string
	// CC and CXX are exported only when both are set.
	CC  string
	CXX string
}

// ConfigureCommand returns
// cmake -S <project> -B <dir> -DCMAKE_BUILD_TYPE=<type> -DCMAKE_EXPORT_COMPILE_COMMANDS=ON ...
func ConfigureCommand(opts ConfigureOptions) (process.Command, error) {
	args := []string{
		"-S", opts.Project,
		"-B", opts.BuildDir,
		"-DCMAKE_BUILD_TYPE=" + opts.BuildType,
		"-DCMAKE_EXPORT_COMPILE_COMMANDS=ON",
	}

	if opts.Sanitizer != "" {
		defines, err := SanitizerDefines(opts.Sanitizer)
		if err != nil {
			return process.Command{}, err
		}
		args = append(args, defines...)
	}

	for _, def := range opts.ConfigDefines {
		args = append(args, "-D"+def)
	}
	for _, def := range opts.CLIDefines {
		args = append(args, "-D"+def)
	}

	cmd := process.Command{Program: Program, Args: args}
	if opts.CC != "" && opts.CXX != "" {
		cmd.Env = map[string]string{
			"CC":  opts.CC,
			"CXX": opts.CXX,
		}
	}
	return cmd, nil
}

// BuildCommand returns cmake --build <dir> --target <target> -- -j <jobs>.
func BuildCommand(buildDir, target string, jobs int) process.Command {
	return process.Command{
		Program: Program,
		Args: []string{
			"--build", buildDir,
			"--target", target,
			"--",
			"-j", strconv.Itoa(jobs),
		},
	}
}
