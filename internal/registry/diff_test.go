package registry

import (
	"reflect"
	"testing"
)

func TestReconcilePreservesDisabledFlag(t *testing.T) {
	old := mod("app/m", TypePrivate, 0)
	old.Enabled = false
	previous := NewRegistry([]*Descriptor{old})

	fresh := mod("app/m", TypePrivate, 0)
	d := Reconcile([]*Descriptor{fresh}, previous)

	if d.Modules[0].Enabled {
		t.Error("app/m enabled after reconcile, want disabled as before")
	}
	if !fresh.Enabled {
		t.Error("Reconcile modified its input")
	}
	if len(d.New) != 0 {
		t.Errorf("New = %v, want none", d.New)
	}
}

func TestReconcileClassifies(t *testing.T) {
	disabledPlugin := mod("acme/off", TypePlugin, 0)
	disabledPlugin.Enabled = false
	disabledSubsystem := mod("subsystems/off", TypeSubsystem, 0)
	disabledSubsystem.Enabled = false

	previous := NewRegistry([]*Descriptor{
		mod("subsystems/log", TypeSubsystem, 0),
		disabledSubsystem,
		mod("acme/blog", TypePlugin, 0),
		disabledPlugin,
		mod("app/gone", TypePrivate, 0),
	})
	current := []*Descriptor{
		mod("subsystems/log", TypeSubsystem, 0),
		mod("subsystems/off", TypeSubsystem, 0),
		mod("acme/blog", TypePlugin, 0),
		mod("acme/off", TypePlugin, 0),
		mod("app/fresh", TypePrivate, 0),
	}

	d := Reconcile(current, previous)

	if want := []string{"app/fresh"}; !reflect.DeepEqual(d.New, want) {
		t.Errorf("New = %v, want %v", d.New, want)
	}
	if want := []string{"subsystems/log", "subsystems/off", "acme/blog"}; !reflect.DeepEqual(d.Kept, want) {
		t.Errorf("Kept = %v, want %v", d.Kept, want)
	}
	if want := []string{"app/gone"}; !reflect.DeepEqual(d.Removed, want) {
		t.Errorf("Removed = %v, want %v", d.Removed, want)
	}

	newSet := make(map[string]bool)
	for _, n := range d.New {
		newSet[n] = true
	}
	for _, n := range d.Kept {
		if newSet[n] {
			t.Errorf("%s is both new and kept", n)
		}
	}

	reg := d.Registry()
	if got, _ := reg.Get("acme/off"); got.Enabled {
		t.Error("acme/off enabled flag not carried over")
	}
	if got, _ := reg.Get("subsystems/off"); got.Enabled {
		t.Error("subsystems/off enabled flag not carried over")
	}
	if _, ok := reg.Get("app/gone"); ok {
		t.Error("removed module still in merged registry")
	}
}

func TestReconcileWithoutPrevious(t *testing.T) {
	d := Reconcile([]*Descriptor{mod("app/a", TypePrivate, 0), mod("app/b", TypePrivate, 0)}, nil)
	if want := []string{"app/a", "app/b"}; !reflect.DeepEqual(d.New, want) {
		t.Errorf("New = %v, want %v", d.New, want)
	}
	if len(d.Kept) != 0 || len(d.Removed) != 0 {
		t.Errorf("Kept = %v, Removed = %v, want none", d.Kept, d.Removed)
	}
}

func TestReconcileUsesKeptPropertyTable(t *testing.T) {
	saved := KeptProperties
	t.Cleanup(func() { KeptProperties = saved })
	KeptProperties = append(KeptProperties, KeptProperty{
		Name: "priority",
		Copy: func(dst, src *Descriptor) { dst.Priority = src.Priority },
	})

	previous := NewRegistry([]*Descriptor{mod("app/a", TypePrivate, 7)})
	d := Reconcile([]*Descriptor{mod("app/a", TypePrivate, 0)}, previous)
	if d.Modules[0].Priority != 7 {
		t.Errorf("Priority = %d, want 7 carried over", d.Modules[0].Priority)
	}
}
