package registry

import (
	"fmt"
	"slices"
	"sort"

	"github.com/tiagomgelias/kernel/internal/fault"
)

// Link rebuilds every descriptor's RequiredBy as the exact reverse of
// Dependencies. Edges may cross tiers: a dependency on a higher-precedence
// tier is satisfied by tier order, and one on a lower-precedence tier is
// recorded but cannot be honored (see LowerTierDependencies). Link fails on
// duplicate names, unknown types and unknown dependencies.
func Link(mods []*Descriptor) error {
	index := make(map[string]*Descriptor, len(mods))
	for _, m := range mods {
		if !m.Type.Valid() {
			return fmt.Errorf("module %q has unknown type %q: %w", m.Name, m.Type, fault.ErrConfig)
		}
		if _, dup := index[m.Name]; dup {
			return &fault.DuplicateModuleError{Name: m.Name}
		}
		index[m.Name] = m
		m.RequiredBy = nil
	}

	for _, m := range mods {
		seen := make(map[string]bool, len(m.Dependencies))
		for _, name := range m.Dependencies {
			if seen[name] {
				continue
			}
			seen[name] = true

			dep, ok := index[name]
			if !ok {
				return &fault.UnknownDependencyError{Module: m.Name, Dependency: name}
			}
			dep.RequiredBy = append(dep.RequiredBy, m.Name)
		}
	}
	return nil
}

// LowerTierDependencies lists, as "module -> dependency", every dependency
// on a module of a lower-precedence tier. Such modules load before their
// dependency.
func LowerTierDependencies(mods []*Descriptor) []string {
	types := make(map[string]ModuleType, len(mods))
	for _, m := range mods {
		types[m.Name] = m.Type
	}
	var out []string
	for _, m := range mods {
		for _, name := range m.Dependencies {
			t, ok := types[name]
			if ok && t.Precedence() > m.Type.Precedence() {
				out = append(out, m.Name+" -> "+name)
			}
		}
	}
	return out
}

// TopologicalSort orders the modules of a single, linked tier so every
// module comes after the modules it depends on.
//
// Modules nobody depends on are eliminated first, each prepended to the
// result; eliminating a module erases its edges and makes a dependency
// eligible once it has no dependents left. Independent modules keep their
// input order. Modules still holding dependents at the end form a cycle.
func TopologicalSort(tier []*Descriptor) ([]*Descriptor, error) {
	pending := make(map[string][]string, len(tier))
	inTier := make(map[string]bool, len(tier))
	for _, m := range tier {
		inTier[m.Name] = true
	}

	var ready []*Descriptor
	for _, m := range tier {
		for _, by := range m.RequiredBy {
			if inTier[by] {
				pending[m.Name] = append(pending[m.Name], by)
			}
		}
		if len(pending[m.Name]) == 0 {
			ready = append(ready, m)
		}
	}

	byName := make(map[string]*Descriptor, len(tier))
	for _, m := range tier {
		byName[m.Name] = m
	}

	sorted := make([]*Descriptor, len(tier))
	pos := len(tier)
	for len(ready) > 0 {
		n := ready[len(ready)-1]
		ready = ready[:len(ready)-1]
		pos--
		sorted[pos] = n

		for _, name := range n.Dependencies {
			deps, ok := pending[name]
			if !ok || !inTier[name] {
				continue
			}
			i := slices.Index(deps, n.Name)
			if i < 0 {
				continue
			}
			deps = slices.Delete(deps, i, i+1)
			pending[name] = deps
			if len(deps) == 0 {
				ready = append(ready, byName[name])
			}
		}
	}

	if pos > 0 {
		var cyclic []string
		for _, m := range tier {
			if len(pending[m.Name]) > 0 {
				cyclic = append(cyclic, m.Name)
			}
		}
		return nil, &fault.CycleError{Modules: cyclic}
	}
	return sorted, nil
}

// PrioritySort lifts higher-priority modules to the front of their tier.
// Tier order is never changed and modules of equal priority keep their
// relative order. The pass does not re-check dependency order, so a
// high-priority module may move ahead of its prerequisites.
func PrioritySort(mods []*Descriptor) []*Descriptor {
	out := slices.Clone(mods)
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := out[i].Type.Precedence(), out[j].Type.Precedence()
		if pi != pj {
			return pi < pj
		}
		return out[i].Priority > out[j].Priority
	})
	return out
}

// Resolve returns the load order of mods: each tier sorted topologically,
// tiers concatenated in precedence order, then the priority pass. The input
// descriptors are not modified.
func Resolve(mods []*Descriptor) ([]*Descriptor, error) {
	linked := make([]*Descriptor, len(mods))
	for i, m := range mods {
		linked[i] = m.Clone()
	}
	if err := Link(linked); err != nil {
		return nil, err
	}

	ordered := make([]*Descriptor, 0, len(linked))
	for _, t := range Tiers {
		var tier []*Descriptor
		for _, m := range linked {
			if m.Type == t {
				tier = append(tier, m)
			}
		}
		sorted, err := TopologicalSort(tier)
		if err != nil {
			return nil, fmt.Errorf("resolving %s modules: %w", t, err)
		}
		ordered = append(ordered, sorted...)
	}
	return PrioritySort(ordered), nil
}
