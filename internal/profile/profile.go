// Package profile defines configuration profiles. A profile decides which
// modules a boot run starts: it names modules to always skip or always
// start, and the module types it accepts. Built-in profiles can be
// overridden, and new ones added, by YAML files in the profiles directory.
package profile

import (
	"slices"

	"github.com/tiagomgelias/kernel/internal/registry"
)

// Kind is the kind of application a profile runs.
type Kind string

const (
	KindWeb     Kind = "web"
	KindConsole Kind = "console"
)

// Profile is a named boot configuration.
type Profile struct {
	Name        string `yaml:"name"`
	Kind        Kind   `yaml:"kind,omitempty"`
	Description string `yaml:"description,omitempty"`
	// Extends names a parent profile. Modules compatible with the parent
	// are compatible with this profile too.
	Extends string `yaml:"extends,omitempty"`
	// Exclude lists modules never started under this profile.
	Exclude []string `yaml:"exclude,omitempty"`
	// Include lists modules always started, bypassing type and
	// compatibility checks.
	Include []string `yaml:"include,omitempty"`
	// Accept lists the module types started under this profile. Empty
	// accepts every type.
	Accept []registry.ModuleType `yaml:"accept,omitempty"`

	lineage []string
}

// Excludes reports whether the named module is excluded.
func (p *Profile) Excludes(module string) bool { return slices.Contains(p.Exclude, module) }

// Includes reports whether the named module is explicitly included.
func (p *Profile) Includes(module string) bool { return slices.Contains(p.Include, module) }

// Accepts reports whether modules of type t may start under this profile.
func (p *Profile) Accepts(t registry.ModuleType) bool {
	return len(p.Accept) == 0 || slices.Contains(p.Accept, t)
}

// Is reports whether the profile is, or extends, the named profile.
func (p *Profile) Is(name string) bool {
	return p.Name == name || slices.Contains(p.lineage, name)
}

// CompatibleWith reports whether any of the given profile names matches
// this profile or one of its ancestors.
func (p *Profile) CompatibleWith(names []string) bool {
	for _, n := range names {
		if p.Is(n) {
			return true
		}
	}
	return false
}

// Lineage returns the names of the profile's ancestors, nearest first.
func (p *Profile) Lineage() []string { return slices.Clone(p.lineage) }

var builtins = map[string]Profile{
	"web": {
		Name:        "web",
		Kind:        KindWeb,
		Description: "Web application serving HTTP requests",
	},
	"api": {
		Name:        "api",
		Kind:        KindWeb,
		Description: "Web application serving a JSON API",
		Extends:     "web",
	},
	"console": {
		Name:        "console",
		Kind:        KindConsole,
		Description: "Command-line application",
		Accept:      []registry.ModuleType{registry.TypeSubsystem, registry.TypePlugin},
	},
}

// Builtin returns a copy of a built-in profile.
func Builtin(name string) (*Profile, bool) {
	p, ok := builtins[name]
	if !ok {
		return nil, false
	}
	p.Exclude = slices.Clone(p.Exclude)
	p.Include = slices.Clone(p.Include)
	p.Accept = slices.Clone(p.Accept)
	return &p, true
}

// BuiltinNames returns the names of the built-in profiles, sorted.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for n := range builtins {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}
