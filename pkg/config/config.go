// Package config resolves baldr's layered configuration
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// EnvPrefix is the prefix of environment variables overriding file values.
	EnvPrefix = "BALDR"

	// FileName is the base name looked up in every configuration directory.
	FileName = ".baldr"
)

// Source is one configuration file candidate.
type Source struct {
	Path     string
	Required bool
}

// Locations holds the directories consulted when no override file is given.
// Empty entries are skipped.
type Locations struct {
	ConfigHome string
	Home       string
	WorkDir    string
}

// DefaultLocations reads XDG_CONFIG_HOME, HOME and the working directory.
func DefaultLocations() Locations {
	loc := Locations{
		ConfigHome: os.Getenv("XDG_CONFIG_HOME"),
		Home:       os.Getenv("HOME"),
	}
	if wd, err := os.Getwd(); err == nil {
		loc.WorkDir = wd
	}
	return loc
}

// Sources lists the candidates in increasing order of precedence.
func (l Locations) Sources() []Source {
	var sources []Source
	for _, dir := range []string{l.ConfigHome, l.Home, l.WorkDir} {
		if dir == "" {
			continue
		}
		sources = append(sources, Source{Path: filepath.Join(dir, FileName)})
	}
	return sources
}

// LoadError reports a configuration file that exists but could not be read,
// or a required one that is missing.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load config file %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// ParseError reports a configuration file in an unknown or malformed format.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse config file %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Resolve builds the configuration view. A non-empty override is the only
// file read; otherwise the files from loc are merged.
func Resolve(override string, loc Locations) (*View, error) {
	if override != "" {
		return Load([]Source{{Path: override, Required: true}})
	}
	return Load(loc.Sources())
}

// Load merges sources left to right, last write wins per leaf key, then
// applies the BALDR_ environment overlay.
func Load(sources []Source) (*View, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var used []string
	for _, src := range sources {
		path, err := locate(src.Path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && !src.Required {
				continue
			}
			return nil, &LoadError{Path: src.Path, Err: err}
		}

		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return nil, classify(path, err)
		}
		used = append(used, path)
	}

	return &View{v: v, sources: used}, nil
}

// locate finds the file for a source path. A path carrying a supported
// extension is used as is; otherwise each supported extension is probed.
func locate(path string) (string, error) {
	if ext := strings.TrimPrefix(filepath.Ext(path), "."); ext != "" && supported(ext) {
		if err := regularFile(path); err != nil {
			return "", err
		}
		return path, nil
	}

	for _, ext := range viper.SupportedExts {
		candidate := path + "." + ext
		err := regularFile(candidate)
		if err == nil {
			return candidate, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
	}

	// An existing file with an unrecognized extension is still handed to
	// viper so it can report the unsupported format.
	if err := regularFile(path); err == nil {
		return path, nil
	}
	return "", fs.ErrNotExist
}

func regularFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory: %w", path, fs.ErrNotExist)
	}
	return nil
}

func supported(ext string) bool {
	for _, e := range viper.SupportedExts {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}

func classify(path string, err error) error {
	var parseErr viper.ConfigParseError
	if errors.As(err, &parseErr) {
		return &ParseError{Path: path, Err: err}
	}
	var unsupported viper.UnsupportedConfigError
	if errors.As(err, &unsupported) {
		return &ParseError{Path: path, Err: err}
	}
	return &LoadError{Path: path, Err: err}
}
