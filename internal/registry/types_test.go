package registry

import (
	"errors"
	"reflect"
	"testing"
)

func sampleRegistry() *Registry {
	disabled := mod("acme/off", TypePlugin, 0)
	disabled.Enabled = false
	hooked := mod("subsystems/log", TypeSubsystem, 0)
	hooked.Bootstrapper = "subsystems/log"
	shop := mod("app/shop", TypePrivate, 0)
	shop.Bootstrapper = "app/shop"
	return NewRegistry([]*Descriptor{hooked, disabled, mod("acme/blog", TypePlugin, 0), shop})
}

func TestRegistryFilters(t *testing.T) {
	r := sampleRegistry()

	tests := []struct {
		name string
		got  *Registry
		want []string
	}{
		{"bootable", r.OnlyBootable(), []string{"subsystems/log", "app/shop"}},
		{"enabled", r.OnlyEnabled(), []string{"subsystems/log", "acme/blog", "app/shop"}},
		{"user space", r.OnlyPrivateOrPlugins(), []string{"acme/off", "acme/blog", "app/shop"}},
		{"plugins", r.OfType(TypePlugin), []string{"acme/off", "acme/blog"}},
		{"chained", r.OnlyBootable().OnlyEnabled().OfType(TypePrivate), []string{"app/shop"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !reflect.DeepEqual(tt.got.Names(), tt.want) {
				t.Errorf("Names() = %v, want %v", tt.got.Names(), tt.want)
			}
		})
	}
}

func TestRegistryIsImmutable(t *testing.T) {
	r := sampleRegistry()
	m, ok := r.Get("acme/blog")
	if !ok {
		t.Fatal("acme/blog not found")
	}
	m.Enabled = false
	r.Modules()[0].Priority = 42

	again, _ := r.Get("acme/blog")
	if !again.Enabled {
		t.Error("mutating a returned descriptor changed the registry")
	}
	if first, _ := r.Get("subsystems/log"); first.Priority != 0 {
		t.Error("mutating Modules() changed the registry")
	}
}

func TestRegistryWithEnabled(t *testing.T) {
	r := sampleRegistry()
	next, err := r.WithEnabled("acme/off", true)
	if err != nil {
		t.Fatalf("WithEnabled: %v", err)
	}
	if m, _ := next.Get("acme/off"); !m.Enabled {
		t.Error("acme/off not enabled in new snapshot")
	}
	if m, _ := r.Get("acme/off"); m.Enabled {
		t.Error("original snapshot changed")
	}
	if !reflect.DeepEqual(next.Names(), r.Names()) {
		t.Errorf("order changed: %v vs %v", next.Names(), r.Names())
	}

	if _, err := r.WithEnabled("app/ghost", true); !errors.Is(err, ErrNotFound) {
		t.Errorf("WithEnabled(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestNilRegistry(t *testing.T) {
	var r *Registry
	if r.Len() != 0 || r.Names() != nil || r.OnlyEnabled().Len() != 0 {
		t.Error("nil registry should behave as empty")
	}
	if _, ok := r.Get("x/y"); ok {
		t.Error("Get on nil registry found a module")
	}
}

func TestParseType(t *testing.T) {
	for in, want := range map[string]ModuleType{"plugin": TypePlugin, " Private ": TypePrivate, "subsystem": TypeSubsystem} {
		got, err := ParseType(in)
		if err != nil || got != want {
			t.Errorf("ParseType(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseType("theme"); err == nil {
		t.Error("ParseType(theme) should fail")
	}
}

func TestDescriptorNameParts(t *testing.T) {
	d := NewDescriptor("acme/blog", "private/plugins/acme/blog", TypePlugin)
	if d.Group() != "acme" || d.ShortName() != "blog" {
		t.Errorf("Group/ShortName = %q/%q", d.Group(), d.ShortName())
	}
	if !d.Enabled {
		t.Error("fresh descriptor should be enabled")
	}
}
