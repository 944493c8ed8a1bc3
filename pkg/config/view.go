package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Recognized keys.
const (
	KeyCC               = "compiler.cc"
	KeyCXX              = "compiler.cxx"
	KeyCMakeDefinitions = "cmake.definitions"
	KeyDebugger         = "debugger"
	KeyDockerName       = "docker.name"
	KeyDockerImage      = "docker.image"
	KeyDockerEnv        = "docker.env"
	KeyDockerRemove     = "docker.remove"
	KeyDockerStdout     = "docker.stdout"
	KeyDockerStderr     = "docker.stderr"
	KeyNotify           = "notify"
	KeyWatchSettle      = "watch.settle"
	KeyWatchExclude     = "watch.exclude"
)

// DefaultWatchSettle is used when watch.settle is unset or not positive.
const DefaultWatchSettle = 300 * time.Millisecond

// View is a read-only view over the merged configuration. Every key is
// optional; a missing key yields the zero value or the documented default.
type View struct {
	v       *viper.Viper
	sources []string
}

// Empty returns a view with no file sources. The environment overlay still applies.
func Empty() *View {
	view, _ := Load(nil)
	return view
}

// Sources lists the files that contributed, lowest precedence first.
func (c *View) Sources() []string {
	out := make([]string, len(c.sources))
	copy(out, c.sources)
	return out
}

// IsSet reports whether key has a value in any layer.
func (c *View) IsSet(key string) bool {
	return c.v.IsSet(key)
}

// String returns key as a string.
func (c *View) String(key string) string {
	return c.v.GetString(key)
}

// Strings returns key as a list, preserving order.
func (c *View) Strings(key string) []string {
	return c.v.GetStringSlice(key)
}

// Bool returns key as a boolean, or def when unset.
func (c *View) Bool(key string, def bool) bool {
	if !c.v.IsSet(key) {
		return def
	}
	return c.v.GetBool(key)
}

// CC returns the configured C compiler.
func (c *View) CC() string { return c.String(KeyCC) }

// CXX returns the configured C++ compiler.
func (c *View) CXX() string { return c.String(KeyCXX) }

// Compilers returns both compilers and whether both are configured. The
// compiler override only takes effect when both are present.
func (c *View) Compilers() (cc, cxx string, ok bool) {
	cc, cxx = c.CC(), c.CXX()
	return cc, cxx, cc != "" && cxx != ""
}

// CMakeDefinitions returns the KEY=VALUE defines from cmake.definitions.
func (c *View) CMakeDefinitions() []string {
	return c.Strings(KeyCMakeDefinitions)
}

// Debugger returns the configured debugger and whether it is set.
func (c *View) Debugger() (string, bool) {
	d := c.String(KeyDebugger)
	return d, d != ""
}

// Notify reports whether desktop notifications are enabled.
func (c *View) Notify() bool {
	return c.Bool(KeyNotify, false)
}

// WatchSettle returns the settling delay for watch mode.
func (c *View) WatchSettle() time.Duration {
	ms := c.v.GetInt(KeyWatchSettle)
	if ms <= 0 {
		return DefaultWatchSettle
	}
	return time.Duration(ms) * time.Millisecond
}

// WatchExclude returns extra directory names ignored in watch mode.
func (c *View) WatchExclude() []string {
	return c.Strings(KeyWatchExclude)
}

// Docker holds the docker.* sub-table.
type Docker struct {
	Name   string
	Image  string
	Env    []string
	Remove bool
	Stdout bool
	Stderr bool
}

// Docker returns the container settings. Stream forwarding defaults to on.
func (c *View) Docker() Docker {
	return Docker{
		Name:   c.String(KeyDockerName),
		Image:  c.String(KeyDockerImage),
		Env:    c.Strings(KeyDockerEnv),
		Remove: c.Bool(KeyDockerRemove, false),
		Stdout: c.Bool(KeyDockerStdout, true),
		Stderr: c.Bool(KeyDockerStderr, true),
	}
}

// Settings returns a copy of the merged file settings with the environment
// overlay applied to the recognized keys.
func (c *View) Settings() map[string]interface{} {
	settings := c.v.AllSettings()
	for _, key := range []string{KeyCC, KeyCXX, KeyDebugger, KeyDockerName, KeyDockerImage} {
		if c.v.IsSet(key) {
			set(settings, key, c.v.Get(key))
		}
	}
	return settings
}

func set(m map[string]interface{}, key string, value interface{}) {
	parts := strings.Split(key, ".")
	for _, p := range parts[:len(parts)-1] {
		next, ok := m[p].(map[string]interface{})
		if !ok {
			next = make(map[string]interface{})
			m[p] = next
		}
		m = next
	}
	m[parts[len(parts)-1]] = value
}
