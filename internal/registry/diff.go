package registry

// Diff is the result of reconciling a fresh scan with the previous registry.
type Diff struct {
	// New lists modules absent from the previous registry.
	New []string
	// Kept lists modules present in both that need re-validation:
	// subsystems always, plugins and private modules only if they were
	// enabled.
	Kept []string
	// Removed lists modules that disappeared since the previous registry.
	Removed []string
	// Modules is the merged current set, in the order it was given.
	Modules []*Descriptor
}

// Registry returns the merged set as a snapshot.
func (d *Diff) Registry() *Registry {
	return newRegistry(d.Modules)
}

// Reconcile compares current against previous. Every module present in both
// gets its kept properties copied from the previous descriptor. current is
// not modified; previous may be nil.
func Reconcile(current []*Descriptor, previous *Registry) *Diff {
	d := &Diff{Modules: make([]*Descriptor, len(current))}
	seen := make(map[string]bool, len(current))

	for i, m := range current {
		m = m.Clone()
		d.Modules[i] = m
		seen[m.Name] = true

		old, ok := previous.Get(m.Name)
		if !ok {
			d.New = append(d.New, m.Name)
			continue
		}
		for _, p := range KeptProperties {
			p.Copy(m, old)
		}
		if m.Type == TypeSubsystem || old.Enabled {
			d.Kept = append(d.Kept, m.Name)
		}
	}

	for _, name := range previous.Names() {
		if !seen[name] {
			d.Removed = append(d.Removed, name)
		}
	}
	return d
}
