package cmake_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baldr/baldr/pkg/cmake"
	"github.com/baldr/baldr/pkg/process"
)

func TestConfigureCommand(t *testing.T) {
	cmd, err := cmake.ConfigureCommand(cmake.ConfigureOptions{
		Project:       "/src/app",
		BuildDir:      "/src/app/build/debug",
		BuildType:     "Debug",
		ConfigDefines: []string{"FROM_CONFIG=1", "SHARED=OFF"},
		CLIDefines:    []string{"FROM_CLI=1", "SHARED=ON"},
	})
	require.NoError(t, err)

	want := process.Command{
		Program: "cmake",
		Args: []string{
			"-S", "/src/app",
			"-B", "/src/app/build/debug",
			"-DCMAKE_BUILD_TYPE=Debug",
			"-DCMAKE_EXPORT_COMPILE_COMMANDS=ON",
			"-DFROM_CONFIG=1",
			"-DSHARED=OFF",
			"-DFROM_CLI=1",
			"-DSHARED=ON",
		},
	}
	if diff := cmp.Diff(want, cmd); diff != "" {
		t.Errorf("ConfigureCommand() mismatch (-want +got):\n%s", diff)
	}
}

func TestConfigureCommand_Compilers(t *testing.T) {
	cmd, err := cmake.ConfigureCommand(cmake.ConfigureOptions{
		Project: "p", BuildDir: "p/build/debug-g++", BuildType: "Debug",
		CC: "/usr/bin/gcc", CXX: "/usr/bin/g++",
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"CC": "/usr/bin/gcc", "CXX": "/usr/bin/g++"}, cmd.Env)

	cmd, err = cmake.ConfigureCommand(cmake.ConfigureOptions{
		Project: "p", BuildDir: "p/build/debug", BuildType: "Debug",
		CC: "/usr/bin/gcc",
	})
	require.NoError(t, err)
	assert.Nil(t, cmd.Env)
}

func TestConfigureCommand_Sanitizer(t *testing.T) {
	cmd, err := cmake.ConfigureCommand(cmake.ConfigureOptions{
		Project: "p", BuildDir: "p/build/debug-asan", BuildType: "Debug",
		Sanitizer:  "asan",
		CLIDefines: []string{"X=1"},
	})
	require.NoError(t, err)

	want := []string{
		"-S", "p",
		"-B", "p/build/debug-asan",
		"-DCMAKE_BUILD_TYPE=Debug",
		"-DCMAKE_EXPORT_COMPILE_COMMANDS=ON",
		"-DCMAKE_C_FLAGS=-fsanitize=address -fno-omit-frame-pointer",
		"-DCMAKE_CXX_FLAGS=-fsanitize=address -fno-omit-frame-pointer",
		"-DCMAKE_EXE_LINKER_FLAGS=-fsanitize=address",
		"-DX=1",
	}
	if diff := cmp.Diff(want, cmd.Args); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}
}

func TestConfigureCommand_UnknownSanitizer(t *testing.T) {
	_, err := cmake.ConfigureCommand(cmake.ConfigureOptions{Project: "p", BuildDir: "b", BuildType: "Debug", Sanitizer: "bogus"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bogus")
}

func TestBuildCommand(t *testing.T) {
	cmd := cmake.BuildCommand("/src/app/build/release", "app", 8)

	assert.Equal(t, "cmake --build /src/app/build/release --target app -- -j 8", cmd.String())
	assert.Nil(t, cmd.Env)
}

func TestSanitizers(t *testing.T) {
	assert.Equal(t, []string{"asan", "lsan", "msan", "tsan", "ubsan"}, cmake.Sanitizers())

	defines, err := cmake.SanitizerDefines("ubsan")
	require.NoError(t, err)
	assert.Contains(t, defines, "-DCMAKE_EXE_LINKER_FLAGS=-fsanitize=undefined")
}

func TestValidateProject(t *testing.T) {
	dir := t.TempDir()
	assert.Error(t, cmake.ValidateProject(dir))
	assert.Error(t, cmake.ValidateProject(filepath.Join(dir, "missing")))

	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, nil, 0644))
	assert.Error(t, cmake.ValidateProject(file))

	require.NoError(t, os.WriteFile(filepath.Join(dir, cmake.ListsFile), []byte("project(x)\n"), 0644))
	assert.NoError(t, cmake.ValidateProject(dir))
}

func TestAnalyze(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, cmake.ListsFile), []byte(`cmake_minimum_required(VERSION 3.10)
project(TestProject VERSION 1.2.0)

# add_executable(commented main.cpp)
add_executable(app main.cpp)
add_library(core SHARED core.cpp)
add_subdirectory(tools)
`), 0644))

	tools := filepath.Join(root, "tools")
	require.NoError(t, os.MkdirAll(tools, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(tools, cmake.ListsFile), []byte("add_executable(tool tool.cpp)\nadd_library(util util.cpp)\n"), 0644))

	build := filepath.Join(root, "build", "debug")
	require.NoError(t, os.MkdirAll(build, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(build, cmake.ListsFile), []byte("add_executable(generated x.cpp)\n"), 0644))

	project, err := cmake.Analyze(root)
	require.NoError(t, err)

	assert.Equal(t, "TestProject", project.Name)
	assert.Equal(t, "1.2.0", project.Version)
	assert.ElementsMatch(t, []cmake.Target{
		{Name: "app", Type: "EXECUTABLE", Directory: "."},
		{Name: "core", Type: "SHARED_LIBRARY", Directory: "."},
		{Name: "tool", Type: "EXECUTABLE", Directory: "tools"},
		{Name: "util", Type: "STATIC_LIBRARY", Directory: "tools"},
	}, project.Targets)

	assert.True(t, project.Executable("tool"))
	assert.False(t, project.Executable("core"))
	assert.False(t, project.Executable("generated"))
}
