package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/baldr/baldr/internal/engine"
	"github.com/baldr/baldr/pkg/config"
	"github.com/baldr/baldr/pkg/mocks"
	"github.com/baldr/baldr/pkg/process"
)

func newTestCLI(t *testing.T, runner *mocks.RecordingRunner) (*CLI, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	t.Setenv("BALDR_COMPILER_CC", "")
	t.Setenv("BALDR_COMPILER_CXX", "")
	var stdout, stderr bytes.Buffer
	c := NewCLIWithOutput("1.2.3", &stdout, &stderr).
		WithLocations(config.Locations{}).
		WithDependencies(engine.Dependencies{
			Runner:  runner,
			Confirm: func(string) bool { return false },
			Stdin:   strings.NewReader(""),
		})
	return c, &stdout, &stderr
}

func newProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	lists := "cmake_minimum_required(VERSION 3.16)\nproject(demo)\nadd_executable(test main.cpp)\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "CMakeLists.txt"), []byte(lists), 0644))
	return dir
}

func TestVersionCommand(t *testing.T) {
	c, stdout, _ := newTestCLI(t, mocks.NewRecordingRunner())

	require.NoError(t, c.Execute([]string{"version"}))
	assert.Equal(t, "baldr v1.2.3\n", stdout.String())
}

func TestVersionFlag(t *testing.T) {
	c, stdout, _ := newTestCLI(t, mocks.NewRecordingRunner())

	require.NoError(t, c.Execute([]string{"--version"}))
	assert.Equal(t, "baldr v1.2.3\n", stdout.String())
}

func TestRootRequiresProject(t *testing.T) {
	runner := mocks.NewRecordingRunner()
	c, _, _ := newTestCLI(t, runner)

	err := c.Execute([]string{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"project"`)
	assert.Empty(t, runner.Commands())
}

func TestRootRejectsArgumentsBeforeDash(t *testing.T) {
	runner := mocks.NewRecordingRunner()
	c, _, _ := newTestCLI(t, runner)

	err := c.Execute([]string{"-p", newProject(t), "stray"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stray")
	assert.Empty(t, runner.Commands())
}

func TestRootConfiguresAndBuilds(t *testing.T) {
	project := newProject(t)
	runner := mocks.NewRecordingRunner()
	c, _, stderr := newTestCLI(t, runner)

	err := c.Execute([]string{"-p", project, "-t", "test", "-j", "4", "-D", "FOO=1", "--sanitizer", "asan"})
	require.NoError(t, err)

	lines := runner.CommandLines()
	require.Len(t, lines, 2)
	buildDir := filepath.Join(project, "build", "debug-asan")
	assert.True(t, strings.HasPrefix(lines[0], "cmake -S "+project+" -B "+buildDir), lines[0])
	assert.Contains(t, lines[0], "-DFOO=1")
	assert.Contains(t, lines[0], "-fsanitize=address")
	assert.Equal(t, "cmake --build "+buildDir+" --target test -- -j 4", lines[1])
	assert.DirExists(t, buildDir)
	assert.Contains(t, stderr.String(), "Build directory created at: "+buildDir)
}

func TestRootWarnsAboutIgnoredTargetArguments(t *testing.T) {
	runner := mocks.NewRecordingRunner()
	c, _, stderr := newTestCLI(t, runner)

	require.NoError(t, c.Execute([]string{"-p", newProject(t), "--", "arg1"}))
	assert.Contains(t, stderr.String(), "Target arguments are ignored")
	assert.Len(t, runner.Commands(), 2)
}

func TestRootRunAllIsRejected(t *testing.T) {
	runner := mocks.NewRecordingRunner()
	c, _, _ := newTestCLI(t, runner)

	err := c.Execute([]string{"-p", newProject(t), "--run"})
	require.ErrorIs(t, err, engine.ErrConcreteTarget)
	assert.Empty(t, runner.Commands())
}

func TestRootMissingConfigOverride(t *testing.T) {
	runner := mocks.NewRecordingRunner()
	c, _, _ := newTestCLI(t, runner)

	err := c.Execute([]string{"--config", filepath.Join(t.TempDir(), "nope.toml"), "-p", newProject(t)})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Empty(t, runner.Commands())
}

func TestConfigCommand(t *testing.T) {
	file := filepath.Join(t.TempDir(), "baldr.toml")
	content := "[compiler]\ncc = \"clang\"\ncxx = \"clang++\"\n\n[cmake]\ndefinitions = [\"A=1\"]\n"
	require.NoError(t, os.WriteFile(file, []byte(content), 0644))

	c, stdout, _ := newTestCLI(t, mocks.NewRecordingRunner())
	require.NoError(t, c.Execute([]string{"config", "--config", file}))

	var dump struct {
		Sources  []string               `yaml:"sources"`
		Settings map[string]interface{} `yaml:"settings"`
	}
	require.NoError(t, yaml.Unmarshal(stdout.Bytes(), &dump))
	assert.Equal(t, []string{file}, dump.Sources)
	require.Contains(t, dump.Settings, "compiler")
	compiler, ok := dump.Settings["compiler"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "clang++", compiler["cxx"])
}

func TestConfigCommandWithoutFiles(t *testing.T) {
	c, stdout, _ := newTestCLI(t, mocks.NewRecordingRunner())

	require.NoError(t, c.Execute([]string{"config"}))
	assert.Contains(t, stdout.String(), "sources: []")
}

func TestTrailingArgs(t *testing.T) {
	c, _, _ := newTestCLI(t, mocks.NewRecordingRunner())
	cmd := c.rootCmd
	require.NoError(t, cmd.ParseFlags([]string{"-p", "x", "--", "a", "b"}))

	args, err := trailingArgs(cmd, cmd.Flags().Args())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, args)
}

func TestRunWatchBuildsOnceAndStopsWithContext(t *testing.T) {
	project := newProject(t)
	runner := mocks.NewRecordingRunner()
	c, _, stderr := newTestCLI(t, runner)

	// Run the pre-run hook only, so the watch loop can be driven directly.
	c.config.Build.Project = project
	require.NoError(t, c.initialize(c.rootCmd, nil))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, c.runWatch(ctx, nil))

	assert.Len(t, runner.Commands(), 2)
	assert.Contains(t, stderr.String(), "Stopped watching")
}

func TestRunWatchSurvivesFailedInitialBuild(t *testing.T) {
	project := t.TempDir()
	runner := mocks.NewRecordingRunner()
	c, _, stderr := newTestCLI(t, runner)

	c.config.Build.Project = project
	require.NoError(t, c.initialize(c.rootCmd, nil))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, c.runWatch(ctx, nil))

	assert.Contains(t, stderr.String(), "Initial build failed")
	assert.Empty(t, runner.Commands())
}

func TestLogFileReceivesOutput(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "baldr.log")
	runner := mocks.NewRecordingRunner()
	c, _, stderr := newTestCLI(t, runner)

	require.NoError(t, c.Execute([]string{"--log-file", logFile, "-p", newProject(t)}))

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Build directory created at:")
	assert.Contains(t, stderr.String(), "Build directory created at:")
}

func TestRunWatchIgnoresBuildDirectoryInsideProject(t *testing.T) {
	project := newProject(t)
	out := filepath.Join(project, "out")
	runner := mocks.NewRecordingRunner()
	runner.OnRun(func(cmd process.Command) {
		if cmd.Program == "cmake" && cmd.Args[0] == "--build" {
			_ = os.WriteFile(filepath.Join(cmd.Args[1], "obj.o"), []byte(time.Now().String()), 0644)
		}
	})
	builds := func() int {
		n := 0
		for _, cmd := range runner.Commands() {
			if cmd.Args[0] == "--build" {
				n++
			}
		}
		return n
	}

	c, _, _ := newTestCLI(t, runner)
	c.config.Build.Project = project
	c.config.Build.BuildDir = out
	require.NoError(t, c.initialize(c.rootCmd, nil))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.runWatch(ctx, nil) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("watch did not stop")
		}
	})

	require.Eventually(t, func() bool { return builds() == 1 }, 5*time.Second, 10*time.Millisecond)
	time.Sleep(500 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(project, "main.cpp"), []byte("int main() {}\n"), 0644))
	require.Eventually(t, func() bool { return builds() >= 2 }, 5*time.Second, 10*time.Millisecond)

	time.Sleep(1500 * time.Millisecond)
	assert.Equal(t, 2, builds())
	assert.FileExists(t, filepath.Join(out, "obj.o"))
}
