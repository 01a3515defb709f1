package manifest

import "sort"

// Manifest file names, in lookup order.
const (
	FileName         = "module.yaml"
	FallbackFileName = "module.json"
)

// Manifest is the parsed content of a module manifest.
type Manifest struct {
	Name         string            `yaml:"name,omitempty" json:"name,omitempty"`
	Description  string            `yaml:"description,omitempty" json:"description,omitempty"`
	Version      string            `yaml:"version,omitempty" json:"version,omitempty"`
	Requires     map[string]string `yaml:"requires,omitempty" json:"requires,omitempty"`
	Priority     int               `yaml:"priority,omitempty" json:"priority,omitempty"`
	Bootstrapper string            `yaml:"bootstrapper,omitempty" json:"bootstrapper,omitempty"`
	Tags         []string          `yaml:"tags,omitempty" json:"tags,omitempty"`
	Author       string            `yaml:"author,omitempty" json:"author,omitempty"`
}

// Dependencies returns the names of the required modules, sorted so that the
// resulting load order does not depend on map iteration.
func (m *Manifest) Dependencies() []string {
	if len(m.Requires) == 0 {
		return nil
	}
	deps := make([]string, 0, len(m.Requires))
	for name := range m.Requires {
		deps = append(deps, name)
	}
	sort.Strings(deps)
	return deps
}
