package loader

import (
	"github.com/tidwall/gjson"
)

// JSONLoader loads configuration from JSON files.
type JSONLoader struct {
	fileLoader
}

// NewJSONLoader creates a new JSON loader for the given path.
func NewJSONLoader(path string) *JSONLoader {
	return NewJSONLoaderWithFS(DefaultFS(), path)
}

// NewJSONLoaderWithFS creates a JSON loader with a custom file system.
func NewJSONLoaderWithFS(fs FileSystem, path string) *JSONLoader {
	return &JSONLoader{fileLoader{fs: fs, path: path, parse: parseJSON}}
}

func parseJSON(source string, data []byte) (map[string]any, error) {
	if !gjson.ValidBytes(data) {
		return nil, &ParseError{Path: source, Message: "invalid JSON"}
	}
	r := gjson.ParseBytes(data)
	if !r.IsObject() {
		return nil, &ParseError{Path: source, Message: "top-level value must be an object"}
	}
	config, _ := r.Value().(map[string]any)
	return config, nil
}
