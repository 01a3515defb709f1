package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/tiagomgelias/kernel/internal/fault"
)

// Store persists the module registry. Load of a registry that was never
// saved yields an empty registry; Save replaces the persisted set as a whole.
type Store interface {
	Load() (*Registry, error)
	Save(*Registry) error
}

const fileVersion = 1

type registryFile struct {
	Version int           `json:"version"`
	Modules []*Descriptor `json:"modules"`
}

// FileStore keeps the registry in a JSON file.
type FileStore struct {
	Path string
}

// NewFileStore returns a store backed by the file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Load reads the registry file.
func (s *FileStore) Load() (*Registry, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return newRegistry(nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading registry %s: %w", s.Path, err)
	}

	var f registryFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing registry %s: %w", s.Path, err)
	}
	if f.Version != fileVersion {
		return nil, fmt.Errorf("registry %s has unsupported version %d", s.Path, f.Version)
	}
	seen := make(map[string]bool, len(f.Modules))
	for i, m := range f.Modules {
		switch {
		case m == nil:
			return nil, fmt.Errorf("registry %s: entry %d is empty", s.Path, i)
		case m.Name == "":
			return nil, fmt.Errorf("registry %s: entry %d has no name", s.Path, i)
		case seen[m.Name]:
			return nil, fmt.Errorf("registry %s: %w", s.Path, &fault.DuplicateModuleError{Name: m.Name})
		}
		seen[m.Name] = true
	}
	return newRegistry(f.Modules), nil
}

// Save writes the registry to a temporary file next to Path and renames it
// into place, so readers see either the old or the new registry.
func (s *FileStore) Save(r *Registry) error {
	mods := r.Modules()
	if mods == nil {
		mods = []*Descriptor{}
	}
	data, err := json.MarshalIndent(registryFile{Version: fileVersion, Modules: mods}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding registry: %w", err)
	}

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".registry-*.json")
	if err != nil {
		return fmt.Errorf("creating temporary registry file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("writing registry: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing registry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing registry: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return fmt.Errorf("replacing registry %s: %w", s.Path, err)
	}
	return nil
}

// MemoryStore keeps the registry in memory. It is used by embedding hosts
// that build the registry themselves.
type MemoryStore struct {
	mu  sync.Mutex
	reg *Registry
}

// NewMemoryStore returns a store holding copies of mods.
func NewMemoryStore(mods ...*Descriptor) *MemoryStore {
	return &MemoryStore{reg: NewRegistry(mods)}
}

// Load returns the stored snapshot.
func (s *MemoryStore) Load() (*Registry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reg == nil {
		return newRegistry(nil), nil
	}
	return s.reg, nil
}

// Save replaces the stored snapshot.
func (s *MemoryStore) Save(r *Registry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reg = NewRegistry(r.Modules())
	return nil
}
