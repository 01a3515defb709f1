package registry

import (
	"errors"
	"fmt"

	"github.com/tiagomgelias/kernel/internal/fault"
	"github.com/tiagomgelias/kernel/internal/manifest"
)

// LoadMetadata fills each descriptor from its module manifest. dirOf maps a
// descriptor to its directory. A module without a manifest contributes only
// assets: no dependencies and no start-up hook.
func LoadMetadata(mods []*Descriptor, dirOf func(*Descriptor) string) error {
	for _, d := range mods {
		if err := loadOne(d, dirOf(d)); err != nil {
			return err
		}
	}
	return nil
}

func loadOne(d *Descriptor, dir string) error {
	path, err := manifest.Find(dir)
	if errors.Is(err, manifest.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	result, err := manifest.ValidateFile(path)
	if err != nil {
		return fmt.Errorf("validating manifest of %s: %w", d.Name, err)
	}
	if !result.Valid {
		return &fault.ManifestError{Module: d.Name, Path: path, Issues: result.Messages()}
	}

	m, err := manifest.ParseFile(path)
	if err != nil {
		return err
	}
	if m.Name != "" && m.Name != d.Name {
		return &fault.ManifestError{
			Module: d.Name,
			Path:   path,
			Issues: []string{fmt.Sprintf("/name: %q does not match the module location", m.Name)},
		}
	}

	d.Description = m.Description
	d.Version = m.Version
	d.Dependencies = m.Dependencies()
	d.Priority = m.Priority
	d.Bootstrapper = m.Bootstrapper
	return nil
}
