// Package builtin holds the bootstrappers of the framework subsystems that
// ship with the kernel binary.
package builtin

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/tiagomgelias/kernel/internal/kernel"
	"github.com/tiagomgelias/kernel/internal/registry"
)

// Bootstrapper names, as referenced from subsystem manifests.
const (
	RegistryHook = "subsystems/registry"
	StatusHook   = "subsystems/status"
)

// Register adds the built-in bootstrappers to h.
func Register(h *kernel.Hooks) error {
	if err := h.Register(RegistryHook, func() kernel.Bootstrapper { return &Registry{} }); err != nil {
		return err
	}
	return h.Register(StatusHook, func() kernel.Bootstrapper { return &Status{} })
}

// Registry exposes the persisted module registry as a service, so modules
// can inspect their peers once services are registered.
type Registry struct {
	// Store overrides the registry file named by the kernel settings.
	Store registry.Store
}

// StartUp implements kernel.Bootstrapper.
func (b *Registry) StartUp(k *kernel.Kernel, m *registry.Descriptor) error {
	k.OnRegisterServices(func(c *kernel.Container) error {
		store := b.Store
		if store == nil {
			store = registry.NewFileStore(k.Settings().RegistryFile())
		}
		reg, err := store.Load()
		if err != nil {
			return fmt.Errorf("%s: %w", m.Name, err)
		}
		kernel.Register(c, store)
		kernel.Register(c, reg)
		return nil
	})
	return nil
}

// Status logs a summary when the application runs and when it shuts down.
type Status struct{}

// StartUp implements kernel.Bootstrapper.
func (Status) StartUp(k *kernel.Kernel, m *registry.Descriptor) error {
	k.OnRun(func(r kernel.Resolver) error {
		lg, err := kernel.Get[*log.Logger](r)
		if err != nil {
			return err
		}
		lg.Info("application running",
			"profile", k.Profile().Name,
			"modules", len(k.Started()),
			"services", len(r.Capabilities()),
			"dev", k.DevEnv())
		return nil
	})
	k.OnShutdown(func(r kernel.Resolver) error {
		lg, err := kernel.Get[*log.Logger](r)
		if err != nil {
			return err
		}
		lg.Info("application stopped", "exit", k.ExitCode())
		return nil
	})
	return nil
}
