package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/tiagomgelias/kernel/internal/config"
	"github.com/tiagomgelias/kernel/internal/platform"
)

// subsystemGroup is the name group of framework subsystems.
const subsystemGroup = "subsystems"

// Root is a directory searched for modules of one type.
type Root struct {
	Type ModuleType
	Dir  string // absolute or relative to the scanner's base directory
	// Pattern selects module directories relative to Dir: "*" for one
	// level, "*/*" for <group>/<module>.
	Pattern string
	// Group, when set, prefixes single-level names (e.g. "subsystems/log").
	Group string
}

// Scanner finds module directories on disk and produces fresh descriptors.
type Scanner struct {
	BaseDir string
	Roots   []Root
}

// NewScanner returns a scanner for the standard layout described by s:
// framework subsystems, plugins and private modules.
func NewScanner(s config.Settings) *Scanner {
	return &Scanner{
		BaseDir: s.BaseDir,
		Roots: []Root{
			{Type: TypeSubsystem, Dir: s.SubsystemsDir(), Pattern: "*", Group: subsystemGroup},
			{Type: TypePlugin, Dir: s.Abs(s.PluginsPath), Pattern: "*/*"},
			{Type: TypePrivate, Dir: s.Abs(s.ModulesPath), Pattern: "*/*"},
		},
	}
}

// Scan walks every root and returns one descriptor per module directory,
// ordered by root then name. Missing roots are skipped.
func (s *Scanner) Scan() ([]*Descriptor, error) {
	var mods []*Descriptor
	for _, root := range s.Roots {
		found, err := s.scanRoot(root)
		if err != nil {
			return nil, err
		}
		mods = append(mods, found...)
	}
	return mods, nil
}

func (s *Scanner) scanRoot(root Root) ([]*Descriptor, error) {
	dir := s.abs(root.Dir)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, nil
	}

	matches, err := doublestar.Glob(os.DirFS(dir), root.Pattern)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}
	sort.Strings(matches)

	var mods []*Descriptor
	for _, match := range matches {
		if hidden(match) {
			continue
		}
		full := filepath.Join(dir, filepath.FromSlash(match))
		info, err := os.Stat(full)
		if err != nil || !info.IsDir() {
			continue
		}

		name := match
		if root.Group != "" {
			name = root.Group + "/" + match
		}
		d := NewDescriptor(name, s.rel(full), root.Type)
		d.RealPath = platform.ResolvedPath(full)
		mods = append(mods, d)
	}
	return mods, nil
}

// Dir returns the absolute directory of a scanned module.
func (s *Scanner) Dir(d *Descriptor) string {
	return s.abs(filepath.FromSlash(d.Path))
}

// Target returns the directory where a module called name of type typ
// would be found by Scan.
func (s *Scanner) Target(name string, typ ModuleType) (string, error) {
	group, short, ok := strings.Cut(name, "/")
	if !ok || group == "" || short == "" || strings.Contains(short, "/") {
		return "", fmt.Errorf("invalid module name %q: want <group>/<module>", name)
	}
	for _, root := range s.Roots {
		if root.Type != typ {
			continue
		}
		if root.Group != "" {
			if group != root.Group {
				return "", fmt.Errorf("%s modules must be named %s/<module>, got %q", typ, root.Group, name)
			}
			return filepath.Join(s.abs(root.Dir), short), nil
		}
		return filepath.Join(s.abs(root.Dir), group, short), nil
	}
	return "", fmt.Errorf("no module root for type %q", typ)
}

func (s *Scanner) abs(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(s.BaseDir, p)
}

func (s *Scanner) rel(p string) string {
	return config.Settings{BaseDir: s.BaseDir}.Rel(p)
}

func hidden(match string) bool {
	for _, seg := range strings.Split(match, "/") {
		if strings.HasPrefix(seg, ".") {
			return true
		}
	}
	return false
}
