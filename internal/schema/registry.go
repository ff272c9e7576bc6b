package schema

import (
	"sync"

	"github.com/dshills/treedoc/internal/config/loader"
	"github.com/dshills/treedoc/internal/model"
	"golang.org/x/sync/singleflight"
)

// Registry caches compiled schemas by file path. Concurrent requests for
// the same uncached path share a single load.
type Registry struct {
	fs    loader.FileSystem
	group singleflight.Group

	mu      sync.RWMutex
	schemas map[string]*model.Schema
}

// NewRegistry creates a registry reading schema files from fsys.
func NewRegistry(fsys loader.FileSystem) *Registry {
	return &Registry{fs: fsys, schemas: make(map[string]*model.Schema)}
}

// Get returns the schema defined at path, loading it on first use. An empty
// path returns the built-in schema.
func (r *Registry) Get(path string) (*model.Schema, error) {
	if path == "" {
		return Default(), nil
	}

	r.mu.RLock()
	s, ok := r.schemas[path]
	r.mu.RUnlock()
	if ok {
		return s, nil
	}

	v, err, _ := r.group.Do(path, func() (any, error) {
		s, err := Load(r.fs, path)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.schemas[path] = s
		r.mu.Unlock()
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.Schema), nil
}

// Invalidate drops the cached schema for path so the next Get reloads it.
func (r *Registry) Invalidate(path string) {
	r.mu.Lock()
	delete(r.schemas, path)
	r.mu.Unlock()
}
