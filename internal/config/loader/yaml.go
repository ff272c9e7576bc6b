package loader

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// YAMLLoader loads configuration from YAML files.
type YAMLLoader struct {
	fileLoader
}

// NewYAMLLoader creates a new YAML loader for the given path.
func NewYAMLLoader(path string) *YAMLLoader {
	return NewYAMLLoaderWithFS(DefaultFS(), path)
}

// NewYAMLLoaderWithFS creates a YAML loader with a custom file system.
func NewYAMLLoaderWithFS(fs FileSystem, path string) *YAMLLoader {
	return &YAMLLoader{fileLoader{fs: fs, path: path, parse: parseYAML}}
}

func parseYAML(source string, data []byte) (map[string]any, error) {
	var config map[string]any
	if err := yaml.Unmarshal(data, &config); err != nil {
		perr := &ParseError{Path: source, Message: err.Error(), Err: err}
		var terr *yaml.TypeError
		if errors.As(err, &terr) && len(terr.Errors) > 0 {
			perr.Message = terr.Errors[0]
		}
		return nil, perr
	}
	normalized, ok := normalizeYAML(config).(map[string]any)
	if !ok && config != nil {
		return nil, &ParseError{Path: source, Message: fmt.Sprintf("unexpected top-level value %T", config)}
	}
	return normalized, nil
}

// normalizeYAML converts map[any]any values, which yaml produces for
// non-string keys, into map[string]any.
func normalizeYAML(v any) any {
	switch x := v.(type) {
	case map[string]any:
		for k, e := range x {
			x[k] = normalizeYAML(e)
		}
		return x
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[fmt.Sprint(k)] = normalizeYAML(e)
		}
		return out
	case []any:
		for i, e := range x {
			x[i] = normalizeYAML(e)
		}
		return x
	}
	return v
}
