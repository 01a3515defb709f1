package registry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/tiagomgelias/kernel/internal/platform"
)

// Publisher exposes each module's public directory under a shared
// publishing directory as <publishing>/<name>, a symlink (a junction on
// Windows) to <module>/<public>.
type Publisher struct {
	// Dir is the publishing directory.
	Dir string
	// PublicDir is the name of the public directory inside a module.
	PublicDir string
	// ModuleDir maps a descriptor to its directory.
	ModuleDir func(*Descriptor) string
}

// Publish removes every existing link under Dir, then links the public
// directory of each module that has one. Failures are reported per module
// after all modules were attempted.
func (p *Publisher) Publish(mods []*Descriptor) error {
	if err := p.Clear(); err != nil {
		return err
	}

	var errs []error
	for _, m := range mods {
		public := filepath.Join(p.ModuleDir(m), p.PublicDir)
		if info, err := os.Stat(public); err != nil || !info.IsDir() {
			continue
		}
		link := filepath.Join(p.Dir, filepath.FromSlash(m.Name))
		if err := platform.LinkDir(public, link); err != nil {
			errs = append(errs, fmt.Errorf("publishing %s: %w", m.Name, err))
		}
	}
	return errors.Join(errs...)
}

// Clear removes all published links, leaving their targets untouched.
// Empty group directories are removed as well.
func (p *Publisher) Clear() error {
	if _, err := os.Stat(p.Dir); err != nil {
		return nil
	}
	links, err := doublestar.Glob(os.DirFS(p.Dir), "*/*")
	if err != nil {
		return fmt.Errorf("listing %s: %w", p.Dir, err)
	}
	for _, l := range links {
		full := filepath.Join(p.Dir, filepath.FromSlash(l))
		info, err := os.Lstat(full)
		if err != nil || !isLink(info.Mode()) {
			continue
		}
		if err := platform.RemoveSymlink(full); err != nil {
			return fmt.Errorf("removing %s: %w", full, err)
		}
	}

	groups, err := os.ReadDir(p.Dir)
	if err != nil {
		return fmt.Errorf("listing %s: %w", p.Dir, err)
	}
	for _, g := range groups {
		if g.IsDir() {
			// Fails harmlessly when the group still holds other files.
			os.Remove(filepath.Join(p.Dir, g.Name()))
		}
	}
	return nil
}

// isLink reports symlinks and, on Windows, directory junctions.
func isLink(mode os.FileMode) bool {
	return mode&os.ModeSymlink != 0 || mode&os.ModeIrregular != 0
}
