package cmake

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// ListsFile is the cmake project file expected at the project root.
const ListsFile = "CMakeLists.txt"

// Target is a target declared in a CMakeLists.txt.
type Target struct {
	Name      string
	Type      string
	Directory string
}

// Project is what a shallow scan of the project's CMakeLists.txt files reveals.
type Project struct {
	Root    string
	Name    string
	Version string
	Targets []Target
}

var (
	projectNameRegex = regexp.MustCompile(`^\s*project\s*\(\s*([^)\s]+)`)
	versionRegex     = regexp.MustCompile(`VERSION\s+([0-9.]+)`)
	targetRegex      = regexp.MustCompile(`^\s*(add_executable|add_library)\s*\(\s*([^)\s]+)(?:\s+(STATIC|SHARED|MODULE|INTERFACE|OBJECT))?`)
)

// ValidateProject checks that root is a directory holding a CMakeLists.txt.
func ValidateProject(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("project directory %s: %w", root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("project path %s is not a directory", root)
	}
	if _, err := os.Stat(filepath.Join(root, ListsFile)); err != nil {
		return fmt.Errorf("no %s found in %s: %w", ListsFile, root, err)
	}
	return nil
}

// Analyze scans every CMakeLists.txt under root, skipping build and hidden
// directories. Files that cannot be read are ignored.
func Analyze(root string) (*Project, error) {
	if err := ValidateProject(root); err != nil {
		return nil, err
	}

	project := &Project{Root: root}
	if err := scanMain(filepath.Join(root, ListsFile), project); err != nil {
		return nil, fmt.Errorf("failed to analyze %s: %w", ListsFile, err)
	}

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() && path != root && (d.Name() == "build" || strings.HasPrefix(d.Name(), ".")) {
			return filepath.SkipDir
		}
		if d.Name() == ListsFile && !d.IsDir() {
			_ = scanTargets(root, path, project)
		}
		return nil
	})
	return project, err
}

// Executable reports whether name is declared with add_executable.
func (p *Project) Executable(name string) bool {
	for _, t := range p.Targets {
		if t.Name == name && t.Type == "EXECUTABLE" {
			return true
		}
	}
	return false
}

func scanMain(path string, project *Project) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "#") {
			continue
		}
		if matches := projectNameRegex.FindStringSubmatch(line); len(matches) > 1 {
			project.Name = matches[1]
			if v := versionRegex.FindStringSubmatch(line); len(v) > 1 {
				project.Version = v[1]
			}
			break
		}
	}
	return scanner.Err()
}

func scanTargets(root, path string, project *Project) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	relDir, _ := filepath.Rel(root, filepath.Dir(path))

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "#") {
			continue
		}
		matches := targetRegex.FindStringSubmatch(line)
		if len(matches) < 3 {
			continue
		}
		project.Targets = append(project.Targets, Target{
			Name:      matches[2],
			Type:      targetType(matches[1], matches[3]),
			Directory: relDir,
		})
	}
	return scanner.Err()
}

func targetType(command, libType string) string {
	if command == "add_executable" {
		return "EXECUTABLE"
	}
	switch strings.ToUpper(libType) {
	case "SHARED":
		return "SHARED_LIBRARY"
	case "MODULE":
		return "MODULE_LIBRARY"
	case "INTERFACE":
		return "INTERFACE_LIBRARY"
	case "OBJECT":
		return "OBJECT_LIBRARY"
	default:
		return "STATIC_LIBRARY"
	}
}
