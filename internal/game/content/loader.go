package content

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// LoadFileFromBytes parses and validates one content document.
//
// Postcondition: Returns a validated *File, or an error.
func LoadFileFromBytes(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing content YAML: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Defaults returns the built-in content: knight, rogue and cleric classes and the goblin enemy.
func Defaults() (*File, error) {
	f, err := LoadFileFromBytes(defaultsYAML)
	if err != nil {
		return nil, fmt.Errorf("loading built-in content: %w", err)
	}
	return f, nil
}

// LoadDir reads all *.yaml and *.yml files in dir in lexicographic order.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all files or an error on the first parse or validate
// failure; on error, the partial result is discarded.
func LoadDir(dir string) ([]*File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading content dir %q: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !(strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")) {
			continue
		}
		paths = append(paths, filepath.Join(dir, name))
	}
	sort.Strings(paths)

	var files []*File
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		f, err := LoadFileFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		files = append(files, f)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("content dir %q contains no YAML files", dir)
	}
	return files, nil
}

// Load returns the built-in content followed by the files in dir. Files in dir
// extend the built-ins; reusing a built-in id is rejected by NewLibrary.
//
// Postcondition: The first element is always the built-in file.
func Load(dir string) ([]*File, error) {
	f, err := Defaults()
	if err != nil {
		return nil, err
	}
	if dir == "" {
		return []*File{f}, nil
	}
	extra, err := LoadDir(dir)
	if err != nil {
		return nil, err
	}
	return append([]*File{f}, extra...), nil
}
