package profile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/tiagomgelias/kernel/internal/platform"
	"go.yaml.in/yaml/v3"
)

// ActiveLink is the name of the symlink selecting the active profile.
const ActiveLink = "active"

const ext = ".yaml"

// ErrNotFound is returned for a profile that is neither built in nor on disk.
var ErrNotFound = errors.New("profile not found")

// Store reads and writes profiles in a directory.
type Store struct {
	Dir string
}

// NewStore returns a store over dir.
func NewStore(dir string) *Store {
	return &Store{Dir: dir}
}

// List returns all profile names, built-in and on disk, sorted.
func (s *Store) List() ([]string, error) {
	names := BuiltinNames()
	entries, err := os.ReadDir(s.Dir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading profiles directory: %w", err)
	}
	for _, e := range entries {
		name := e.Name()
		if name == ActiveLink || !strings.HasSuffix(name, ext) {
			continue
		}
		names = append(names, strings.TrimSuffix(name, ext))
	}
	slices.Sort(names)
	return slices.Compact(names), nil
}

// Load returns the named profile. A file on disk takes precedence over a
// built-in profile of the same name.
func (s *Store) Load(name string) (*Profile, error) {
	p, err := s.loadOne(name)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{p.Name: true}
	for parent := p.Extends; parent != ""; {
		if seen[parent] {
			return nil, fmt.Errorf("profile %q: circular extends via %q", name, parent)
		}
		seen[parent] = true
		pp, err := s.loadOne(parent)
		if err != nil {
			return nil, fmt.Errorf("profile %q extends %q: %w", name, parent, err)
		}
		p.lineage = append(p.lineage, pp.Name)
		parent = pp.Extends
	}
	return p, nil
}

func (s *Store) loadOne(name string) (*Profile, error) {
	data, err := os.ReadFile(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		if p, ok := Builtin(name); ok {
			return p, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("reading profile %q: %w", name, err)
	}
	return parse(name, data)
}

func parse(name string, data []byte) (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing profile %q: %w", name, err)
	}
	if p.Name == "" {
		p.Name = name
	}
	if p.Kind == "" {
		p.Kind = KindWeb
	}
	for _, t := range p.Accept {
		if !t.Valid() {
			return nil, fmt.Errorf("profile %q accepts unknown module type %q", name, t)
		}
	}
	return &p, nil
}

// Save writes p to <dir>/<name>.yaml.
func (s *Store) Save(p *Profile) error {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return fmt.Errorf("creating profiles directory: %w", err)
	}
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding profile %q: %w", p.Name, err)
	}
	if err := os.WriteFile(s.path(p.Name), data, 0644); err != nil {
		return fmt.Errorf("writing profile %q: %w", p.Name, err)
	}
	return nil
}

// ActiveName returns the name of the profile the active link points to.
func (s *Store) ActiveName() (string, error) {
	target, err := platform.ReadSymlinkTarget(filepath.Join(s.Dir, ActiveLink))
	if err != nil {
		return "", fmt.Errorf("reading active profile link: %w", err)
	}
	return strings.TrimSuffix(filepath.Base(target), ext), nil
}

// Active returns the profile selected by the active link, or the fallback
// profile when no link exists.
func (s *Store) Active(fallback string) (*Profile, error) {
	name, err := s.ActiveName()
	if err != nil {
		if _, statErr := os.Lstat(filepath.Join(s.Dir, ActiveLink)); !errors.Is(statErr, fs.ErrNotExist) {
			return nil, err
		}
		name = fallback
	}
	return s.Load(name)
}

// Use points the active link at the named profile. A built-in profile
// without a file is written out first so the link has a target.
func (s *Store) Use(name string) error {
	if _, err := os.Stat(s.path(name)); errors.Is(err, fs.ErrNotExist) {
		p, ok := Builtin(name)
		if !ok {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		if err := s.Save(p); err != nil {
			return err
		}
	} else if err != nil {
		return fmt.Errorf("checking profile %q: %w", name, err)
	}

	active := filepath.Join(s.Dir, ActiveLink)
	platform.RemoveSymlink(active)
	if err := platform.CreateSymlink(name+ext, active); err != nil {
		return fmt.Errorf("creating active link: %w", err)
	}
	return nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.Dir, name+ext)
}
