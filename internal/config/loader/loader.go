// Package loader reads treedoc configuration and schema definition files.
//
// Files are parsed into generic maps (map[string]any) so that they can be
// layered with DeepMerge before being decoded into typed values. TOML, YAML
// and JSON are supported; the format is chosen by file extension. Every
// format honours the "@include" key, which names files (relative to the
// including file) whose values the including file overrides.
//
// Environment variables with a common prefix are loaded by EnvLoader.
package loader

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultIncludeDepth bounds nested @include directives.
const DefaultIncludeDepth = 8

// Loader is the interface for configuration loaders.
type Loader interface {
	// Load reads configuration from the source and returns a map.
	// Returns nil, nil if the source doesn't exist (not an error).
	Load() (map[string]any, error)
}

// FileLoader is the interface for loaders that read from files.
type FileLoader interface {
	Loader
	// LoadFrom reads configuration from a specific path.
	LoadFrom(path string) (map[string]any, error)
}

// ReaderLoader is the interface for loaders that read from io.Reader.
type ReaderLoader interface {
	// LoadFromReader reads configuration from a reader.
	LoadFromReader(r io.Reader) (map[string]any, error)
}

// FileSystem is an abstraction for file system operations.
// This allows for easy testing with in-memory file systems.
type FileSystem interface {
	fs.FS
	// ReadFile reads the entire file at path.
	ReadFile(path string) ([]byte, error)
	// Stat returns file info for path.
	Stat(path string) (fs.FileInfo, error)
}

// OSFS implements FileSystem using the real OS file system.
type OSFS struct{}

// Open implements fs.FS.
func (OSFS) Open(name string) (fs.File, error) {
	return os.Open(name)
}

// ReadFile reads the entire file at path.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Stat returns file info for path.
func (OSFS) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// DefaultFS returns the default file system (OS).
func DefaultFS() FileSystem {
	return OSFS{}
}

// parser turns raw file bytes into a map. source names the input in errors.
type parser func(source string, data []byte) (map[string]any, error)

// fileLoader implements the file reading and include handling shared by all
// formats.
type fileLoader struct {
	fs    FileSystem
	path  string
	parse parser
}

func (l *fileLoader) Load() (map[string]any, error) {
	return l.LoadFrom(l.path)
}

func (l *fileLoader) LoadFrom(path string) (map[string]any, error) {
	data, err := l.fs.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // File doesn't exist, not an error
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return l.parse(path, data)
}

func (l *fileLoader) LoadFromReader(r io.Reader) (map[string]any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return l.parse("<reader>", data)
}

// LoadWithIncludes loads path and processes @include directives.
// The maxDepth parameter limits nested includes to prevent infinite loops.
func (l *fileLoader) LoadWithIncludes(path string, maxDepth int) (map[string]any, error) {
	if maxDepth <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrIncludeDepth, path)
	}

	config, err := l.LoadFrom(path)
	if err != nil || config == nil {
		return config, err
	}

	includes, ok := config["@include"]
	if !ok {
		return config, nil
	}
	delete(config, "@include")

	var list []string
	switch v := includes.(type) {
	case string:
		list = []string{v}
	case []any:
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("@include must be string or array of strings")
			}
			list = append(list, s)
		}
	case []string:
		list = v
	default:
		return nil, fmt.Errorf("@include must be string or array of strings, got %T", includes)
	}

	baseDir := filepath.Dir(path)
	for _, inc := range list {
		incPath := inc
		if !filepath.IsAbs(inc) {
			incPath = filepath.Join(baseDir, inc)
		}
		sub, err := ForPath(l.fs, incPath)
		if err != nil {
			return nil, err
		}
		incConfig, err := sub.LoadWithIncludes(incPath, maxDepth-1)
		if err != nil {
			return nil, fmt.Errorf("loading include %s: %w", incPath, err)
		}
		// Main file values override include values.
		config = DeepMerge(incConfig, config)
	}
	return config, nil
}

// IncludeLoader is a FileLoader that also resolves @include directives.
type IncludeLoader interface {
	FileLoader
	ReaderLoader
	LoadWithIncludes(path string, maxDepth int) (map[string]any, error)
}

// ForPath returns a loader for path chosen by its extension.
func ForPath(fsys FileSystem, path string) (IncludeLoader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return NewTOMLLoaderWithFS(fsys, path), nil
	case ".yaml", ".yml":
		return NewYAMLLoaderWithFS(fsys, path), nil
	case ".json":
		return NewJSONLoaderWithFS(fsys, path), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

// LoadFile loads path with includes using the loader for its extension.
// A missing file is an error.
func LoadFile(fsys FileSystem, path string) (map[string]any, error) {
	l, err := ForPath(fsys, path)
	if err != nil {
		return nil, err
	}
	config, err := l.LoadWithIncludes(path, DefaultIncludeDepth)
	if err != nil {
		return nil, err
	}
	if config == nil {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}
	return config, nil
}
