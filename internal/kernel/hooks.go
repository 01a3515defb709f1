package kernel

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/tiagomgelias/kernel/internal/fault"
	"github.com/tiagomgelias/kernel/internal/registry"
)

// Bootstrapper is a module's start-up hook. StartUp runs once per boot,
// before any phase fires, and typically registers phase handlers on k.
type Bootstrapper interface {
	StartUp(k *Kernel, m *registry.Descriptor) error
}

// ProfileAware is implemented by bootstrappers that only run under some
// profiles. A profile matches when it, or a profile it extends, is listed.
type ProfileAware interface {
	CompatibleProfiles() []string
}

// BootstrapperFunc adapts a function to Bootstrapper.
type BootstrapperFunc func(k *Kernel, m *registry.Descriptor) error

// StartUp calls f.
func (f BootstrapperFunc) StartUp(k *Kernel, m *registry.Descriptor) error { return f(k, m) }

// Factory creates a bootstrapper.
type Factory func() Bootstrapper

// Hooks maps bootstrapper names, as declared in module manifests, to
// factories.
type Hooks struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewHooks returns an empty hook registry.
func NewHooks() *Hooks {
	return &Hooks{factories: make(map[string]Factory)}
}

// Register adds a factory under name.
func (h *Hooks) Register(name string, f Factory) error {
	if name == "" {
		return errors.New("bootstrapper name is empty")
	}
	if f == nil {
		return fmt.Errorf("bootstrapper %q has a nil factory", name)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, dup := h.factories[name]; dup {
		return fmt.Errorf("bootstrapper %q already registered", name)
	}
	h.factories[name] = f
	return nil
}

// MustRegister is like Register but panics on error. It is meant for
// package initialization.
func (h *Hooks) MustRegister(name string, f Factory) {
	if err := h.Register(name, f); err != nil {
		panic(err)
	}
}

// Lookup creates the bootstrapper named by module's manifest.
func (h *Hooks) Lookup(module, name string) (Bootstrapper, error) {
	h.mu.RLock()
	f, ok := h.factories[name]
	h.mu.RUnlock()
	if !ok {
		return nil, &fault.HookError{Module: module, Hook: name, Reason: "no such bootstrapper is registered"}
	}
	b := f()
	if b == nil {
		return nil, &fault.HookError{Module: module, Hook: name, Reason: "factory returned no bootstrapper"}
	}
	return b, nil
}

// Names returns the registered bootstrapper names, sorted.
func (h *Hooks) Names() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	names := make([]string, 0, len(h.factories))
	for n := range h.factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
