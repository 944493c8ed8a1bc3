//go:build integration

package integration_test

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baldr/baldr/internal/engine"
	"github.com/baldr/baldr/pkg/cli"
	"github.com/baldr/baldr/pkg/config"
	"github.com/baldr/baldr/pkg/utils"
)

const mainSource = `#include <stdio.h>
#include <stdlib.h>

int main(int argc, char **argv) {
	for (int i = 1; i < argc; i++) {
		printf("%s\n", argv[i]);
	}
	return argc > 1 ? atoi(argv[argc - 1]) : 0;
}
`

const listsFile = `cmake_minimum_required(VERSION 3.10)
project(hello C)
add_executable(hello main.c)
`

func requireToolchain(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	if _, err := exec.LookPath("cmake"); err != nil {
		t.Skip("cmake not found in PATH")
	}
	if _, err := exec.LookPath("cc"); err != nil {
		t.Skip("no C compiler found in PATH")
	}
}

func newProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "CMakeLists.txt"), []byte(listsFile), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.c"), []byte(mainSource), 0644))
	return dir
}

func newCLI(t *testing.T) (*cli.CLI, *bytes.Buffer) {
	t.Helper()
	t.Setenv("BALDR_COMPILER_CC", "")
	t.Setenv("BALDR_COMPILER_CXX", "")
	var out bytes.Buffer
	c := cli.NewCLIWithOutput("test", &out, &out).WithLocations(config.Locations{})
	return c, &out
}

// TestEndToEndBuild runs a complete configure, build and symlink cycle
func TestEndToEndBuild(t *testing.T) {
	requireToolchain(t)
	project := newProject(t)
	c, out := newCLI(t)

	require.NoError(t, c.Execute([]string{"-p", project, "-t", "hello"}), out.String())

	buildDir := filepath.Join(project, "build", "debug")
	assert.FileExists(t, filepath.Join(buildDir, "CMakeCache.txt"))
	link := filepath.Join(project, utils.CompileCommands)
	assert.True(t, utils.IsSymlink(link))
	assert.Contains(t, out.String(), "Creating `compile_commands.json` symlink...")

	// A second run finds the directory and the link in place.
	c, out = newCLI(t)
	require.NoError(t, c.Execute([]string{"-p", project, "-t", "hello", "--no-configure"}), out.String())
	assert.Contains(t, out.String(), "Build directory already exists at: "+buildDir)
	assert.Contains(t, out.String(), "symlink already exists and is valid.")
}

func TestEndToEndRunReportsExitCode(t *testing.T) {
	requireToolchain(t)
	project := newProject(t)
	c, _ := newCLI(t)

	err := c.Execute([]string{"-p", project, "-t", "hello", "--run", "--", "arg1", "7"})
	require.Error(t, err)

	var exitErr *engine.TargetExitError
	require.True(t, errors.As(err, &exitErr), err.Error())
	assert.Equal(t, 7, exitErr.Code)
}

func TestEndToEndConfigureFailure(t *testing.T) {
	requireToolchain(t)
	project := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(project, "CMakeLists.txt"), []byte("this is not cmake(\n"), 0644))
	c, out := newCLI(t)

	err := c.Execute([]string{"-p", project})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Configuring failed", out.String())
}
