package registry

import (
	"errors"
	"fmt"
	"path"
	"slices"
	"strings"
)

// ErrNotFound is returned when a module name is not part of a registry.
var ErrNotFound = errors.New("module not found")

// ModuleType is the tier a module belongs to. Tiers load in precedence
// order: subsystems first, then plugins, then private modules.
type ModuleType string

const (
	TypeSubsystem ModuleType = "subsystem"
	TypePlugin    ModuleType = "plugin"
	TypePrivate   ModuleType = "private"
)

// Tiers lists the module types in load precedence order.
var Tiers = []ModuleType{TypeSubsystem, TypePlugin, TypePrivate}

// Precedence returns the tier index of t, lower loads first. Unknown types
// return -1.
func (t ModuleType) Precedence() int {
	return slices.Index(Tiers, t)
}

// Valid reports whether t is one of the known tiers.
func (t ModuleType) Valid() bool { return t.Precedence() >= 0 }

// ParseType converts a string into a ModuleType.
func ParseType(s string) (ModuleType, error) {
	t := ModuleType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown module type %q (expected subsystem, plugin or private)", s)
	}
	return t, nil
}

// Descriptor describes one discoverable module.
type Descriptor struct {
	Name         string     `json:"name"`
	Path         string     `json:"path"`
	Type         ModuleType `json:"type"`
	Description  string     `json:"description,omitempty"`
	Version      string     `json:"version,omitempty"`
	Dependencies []string   `json:"dependencies,omitempty"`
	RequiredBy   []string   `json:"requiredBy,omitempty"`
	Priority     int        `json:"priority"`
	Enabled      bool       `json:"enabled"`
	Bootstrapper string     `json:"bootstrapper,omitempty"`
	RealPath     string     `json:"realPath,omitempty"`
}

// NewDescriptor returns a freshly scanned descriptor. Modules start enabled.
func NewDescriptor(name, path string, typ ModuleType) *Descriptor {
	return &Descriptor{Name: name, Path: path, Type: typ, Enabled: true}
}

// Clone returns a deep copy of d.
func (d *Descriptor) Clone() *Descriptor {
	c := *d
	c.Dependencies = slices.Clone(d.Dependencies)
	c.RequiredBy = slices.Clone(d.RequiredBy)
	return &c
}

// Bootable reports whether the module declares a start-up hook.
func (d *Descriptor) Bootable() bool { return d.Bootstrapper != "" }

// Group returns the first segment of the module name.
func (d *Descriptor) Group() string {
	group, _, _ := strings.Cut(d.Name, "/")
	return group
}

// ShortName returns the last segment of the module name.
func (d *Descriptor) ShortName() string { return path.Base(d.Name) }

// KeptProperty is a user-controlled descriptor field carried over from the
// previous registry on every rebuild.
type KeptProperty struct {
	Name string
	Copy func(dst, src *Descriptor)
}

// KeptProperties is the table of properties preserved across rebuilds.
var KeptProperties = []KeptProperty{
	{Name: "enabled", Copy: func(dst, src *Descriptor) { dst.Enabled = src.Enabled }},
}

// Registry is an immutable, ordered snapshot of module descriptors.
// Descriptors handed out by a Registry are copies.
type Registry struct {
	modules []*Descriptor
	index   map[string]int
}

// NewRegistry builds a snapshot holding copies of mods, in order.
func NewRegistry(mods []*Descriptor) *Registry {
	clones := make([]*Descriptor, len(mods))
	for i, m := range mods {
		clones[i] = m.Clone()
	}
	return newRegistry(clones)
}

func newRegistry(mods []*Descriptor) *Registry {
	r := &Registry{modules: mods, index: make(map[string]int, len(mods))}
	for i, m := range mods {
		r.index[m.Name] = i
	}
	return r
}

// Len returns the number of modules.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.modules)
}

// Modules returns copies of the descriptors in load order.
func (r *Registry) Modules() []*Descriptor {
	if r == nil {
		return nil
	}
	out := make([]*Descriptor, len(r.modules))
	for i, m := range r.modules {
		out[i] = m.Clone()
	}
	return out
}

// Names returns module names in load order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, len(r.modules))
	for i, m := range r.modules {
		names[i] = m.Name
	}
	return names
}

// Get returns a copy of the named descriptor.
func (r *Registry) Get(name string) (*Descriptor, bool) {
	if r == nil {
		return nil, false
	}
	i, ok := r.index[name]
	if !ok {
		return nil, false
	}
	return r.modules[i].Clone(), true
}

// Filter returns the snapshot restricted to modules matching keep.
func (r *Registry) Filter(keep func(*Descriptor) bool) *Registry {
	if r == nil {
		return newRegistry(nil)
	}
	var out []*Descriptor
	for _, m := range r.modules {
		if keep(m) {
			out = append(out, m)
		}
	}
	return newRegistry(out)
}

// OnlyBootable keeps modules that declare a start-up hook.
func (r *Registry) OnlyBootable() *Registry {
	return r.Filter((*Descriptor).Bootable)
}

// OnlyEnabled keeps enabled modules.
func (r *Registry) OnlyEnabled() *Registry {
	return r.Filter(func(m *Descriptor) bool { return m.Enabled })
}

// OnlyPrivateOrPlugins keeps user-space modules.
func (r *Registry) OnlyPrivateOrPlugins() *Registry {
	return r.Filter(func(m *Descriptor) bool { return m.Type != TypeSubsystem })
}

// OfType keeps modules of the given tier.
func (r *Registry) OfType(t ModuleType) *Registry {
	return r.Filter(func(m *Descriptor) bool { return m.Type == t })
}

// WithEnabled returns a new snapshot in which the named module's enabled
// flag is set to enabled.
func (r *Registry) WithEnabled(name string, enabled bool) (*Registry, error) {
	if _, ok := r.Get(name); !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	out := make([]*Descriptor, len(r.modules))
	for i, m := range r.modules {
		if m.Name == name {
			m = m.Clone()
			m.Enabled = enabled
		}
		out[i] = m
	}
	return newRegistry(out), nil
}
