package registry

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/tiagomgelias/kernel/internal/fault"
	"github.com/tiagomgelias/kernel/internal/logging"
)

// Migrator performs per-module setup after a rebuild and teardown before a
// module is uninstalled. dir is the module's directory.
type Migrator interface {
	Migrate(m *Descriptor, dir string) error
	Rollback(m *Descriptor, dir string) error
}

// Installer rebuilds the persisted registry from disk.
type Installer struct {
	Scanner   *Scanner
	Store     Store
	Publisher *Publisher // optional
	Migrator  Migrator   // optional
	Logger    *log.Logger
}

// RebuildResult reports what a successful rebuild did.
type RebuildResult struct {
	Diff     *Diff
	Registry *Registry
	// SetupErrors holds per-module setup and publishing failures. They do
	// not fail the rebuild.
	SetupErrors []error
}

func (i *Installer) logger() *log.Logger {
	if i.Logger == nil {
		return logging.Discard()
	}
	return i.Logger
}

// Rebuild rescans all modules, resolves their load order, merges kept
// properties from the previous registry and saves the result. When scanning,
// manifest validation or resolution fails, nothing is saved and the previous
// registry stays in place. After saving, public directories are published
// and new and kept modules are set up.
func (i *Installer) Rebuild() (*RebuildResult, error) {
	lg := i.logger()

	scanned, err := i.Scanner.Scan()
	if err != nil {
		return nil, err
	}
	lg.Debug("scanned modules", "count", len(scanned))

	if err := LoadMetadata(scanned, i.Scanner.Dir); err != nil {
		return nil, err
	}
	ordered, err := Resolve(scanned)
	if err != nil {
		return nil, err
	}
	for _, edge := range LowerTierDependencies(ordered) {
		lg.Warn("dependency on a later tier cannot be loaded first", "edge", edge)
	}

	previous, err := i.Store.Load()
	if err != nil {
		return nil, fmt.Errorf("loading previous registry: %w", err)
	}
	diff := Reconcile(ordered, previous)
	reg := diff.Registry()
	if err := i.Store.Save(reg); err != nil {
		return nil, fmt.Errorf("saving registry: %w", err)
	}
	lg.Info("registry rebuilt", "modules", reg.Len(), "new", len(diff.New), "kept", len(diff.Kept), "removed", len(diff.Removed))
	for _, name := range diff.Removed {
		lg.Info("module removed", "module", name)
	}

	res := &RebuildResult{Diff: diff, Registry: reg}
	if i.Publisher != nil {
		if err := i.Publisher.Publish(reg.Modules()); err != nil {
			lg.Warn("publishing failed", "err", err)
			res.SetupErrors = append(res.SetupErrors, err)
		}
	}
	res.SetupErrors = append(res.SetupErrors, i.setup(reg, diff.New, "new")...)
	res.SetupErrors = append(res.SetupErrors, i.setup(reg, diff.Kept, "kept")...)
	return res, nil
}

// setup runs the migrator for each named module. A failing module is logged
// and skipped.
func (i *Installer) setup(reg *Registry, names []string, kind string) []error {
	if i.Migrator == nil {
		return nil
	}
	lg := i.logger()

	var errs []error
	for _, name := range names {
		m, ok := reg.Get(name)
		if !ok {
			continue
		}
		if err := i.Migrator.Migrate(m, i.Scanner.Dir(m)); err != nil {
			serr := &fault.SetupError{Module: name, Err: err}
			lg.Error("module setup failed", "module", name, "kind", kind, "err", err)
			errs = append(errs, serr)
			continue
		}
		lg.Debug("module set up", "module", name, "kind", kind)
	}
	return errs
}

// CleanUp undoes a module's setup before it is uninstalled.
func (i *Installer) CleanUp(name string) error {
	reg, err := i.Store.Load()
	if err != nil {
		return fmt.Errorf("loading registry: %w", err)
	}
	m, ok := reg.Get(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if i.Migrator == nil {
		return nil
	}
	if err := i.Migrator.Rollback(m, i.Scanner.Dir(m)); err != nil {
		return &fault.SetupError{Module: name, Err: err}
	}
	i.logger().Info("module cleaned up", "module", name)
	return nil
}

// SetEnabled toggles a module's enabled flag in the persisted registry.
func (i *Installer) SetEnabled(name string, enabled bool) error {
	reg, err := i.Store.Load()
	if err != nil {
		return fmt.Errorf("loading registry: %w", err)
	}
	next, err := reg.WithEnabled(name, enabled)
	if err != nil {
		return err
	}
	if err := i.Store.Save(next); err != nil {
		return fmt.Errorf("saving registry: %w", err)
	}
	return nil
}

// IsNotFound reports whether err names a module missing from the registry.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
