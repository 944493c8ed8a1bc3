package utils

import (
	"path/filepath"
	"regexp"
	"strings"
)

// PatternMatcher handles glob pattern matching
type PatternMatcher struct {
	regexps []*regexp.Regexp
}

// NewPatternMatcher compiles patterns. `*` and `?` stop at `/`, `**` crosses directories.
func NewPatternMatcher(patterns []string) (*PatternMatcher, error) {
	pm := &PatternMatcher{regexps: make([]*regexp.Regexp, 0, len(patterns))}
	for _, pattern := range patterns {
		regex, err := globToRegex(pattern)
		if err != nil {
			return nil, err
		}
		pm.regexps = append(pm.regexps, regex)
	}
	return pm, nil
}

// Match checks if a path matches any pattern
func (pm *PatternMatcher) Match(path string) bool {
	path = filepath.ToSlash(path)
	for _, regex := range pm.regexps {
		if regex.MatchString(path) {
			return true
		}
	}
	return false
}

func globToRegex(pattern string) (*regexp.Regexp, error) {
	pattern = filepath.ToSlash(pattern)

	var regex strings.Builder
	regex.WriteString("^")

	i := 0
	for i < len(pattern) {
		switch pattern[i] {
		case '*':
			if i+1 < len(pattern) && pattern[i+1] == '*' {
				if i+2 < len(pattern) && pattern[i+2] == '/' {
					regex.WriteString("(.*/)?")
					i += 3
				} else {
					regex.WriteString(".*")
					i += 2
				}
			} else {
				regex.WriteString("[^/]*")
				i++
			}
		case '?':
			regex.WriteString("[^/]")
			i++
		case '[':
			j := i + 1
			var class strings.Builder
			if j < len(pattern) && pattern[j] == '!' {
				class.WriteString("[^")
				j++
			} else {
				class.WriteString("[")
			}
			for j < len(pattern) && pattern[j] != ']' {
				class.WriteByte(pattern[j])
				j++
			}
			if j < len(pattern) {
				regex.WriteString(class.String())
				regex.WriteByte(']')
				i = j + 1
			} else {
				// unclosed, literal
				regex.WriteString(`\[`)
				i++
			}
		case '.', '+', '^', '$', '(', ')', '{', '}', '|', '\\':
			regex.WriteByte('\\')
			regex.WriteByte(pattern[i])
			i++
		default:
			regex.WriteByte(pattern[i])
			i++
		}
	}

	regex.WriteString("$")
	return regexp.Compile(regex.String())
}

// ExclusionMatcher decides which project paths the watcher ignores.
// Bare names exclude that file or directory at any depth.
type ExclusionMatcher struct {
	matcher *PatternMatcher
}

// NewExclusionMatcher creates a new exclusion matcher
func NewExclusionMatcher(patterns []string) (*ExclusionMatcher, error) {
	var expanded []string
	for _, pattern := range patterns {
		pattern = NormalizePattern(pattern)
		if pattern == "" {
			continue
		}
		if !strings.Contains(pattern, "/") {
			expanded = append(expanded, "**/"+pattern, "**/"+pattern+"/**")
			continue
		}
		expanded = append(expanded, pattern, pattern+"/**")
	}

	matcher, err := NewPatternMatcher(expanded)
	if err != nil {
		return nil, err
	}
	return &ExclusionMatcher{matcher: matcher}, nil
}

// IsExcluded checks if a path, relative to the project root, should be excluded
func (em *ExclusionMatcher) IsExcluded(path string) bool {
	return em.matcher.Match(path)
}

// NormalizePattern normalizes a file pattern
func NormalizePattern(pattern string) string {
	pattern = strings.ReplaceAll(pattern, "\\", "/")
	pattern = strings.TrimPrefix(pattern, "./")
	return strings.TrimSuffix(pattern, "/")
}

// DefaultExclusions are never watched: build output, VCS metadata, the
// compile-metadata link and editor scratch files.
func DefaultExclusions() []string {
	return []string{
		"build",
		".git",
		".svn",
		".hg",
		".cache",
		".idea",
		".vscode",
		CompileCommands,
		"*.swp",
		"*.swo",
		"*~",
		".DS_Store",
	}
}
