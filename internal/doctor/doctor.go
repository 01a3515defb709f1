package doctor

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/tiagomgelias/kernel/internal/config"
	"github.com/tiagomgelias/kernel/internal/platform"
	"github.com/tiagomgelias/kernel/internal/profile"
	"github.com/tiagomgelias/kernel/internal/registry"
)

// Report counts the findings of a check run.
type Report struct {
	Problems int
	Warnings int
	Fixed    int
}

// Healthy reports whether the run found nothing that needs attention.
func (r *Report) Healthy() bool {
	return r.Problems == 0 && r.Warnings == 0
}

type checker struct {
	w   io.Writer
	fix bool
	r   Report
}

func (c *checker) ok(format string, args ...any) {
	fmt.Fprintf(c.w, "  [ OK ] "+format+"\n", args...)
}

func (c *checker) miss(format string, args ...any) {
	c.r.Problems++
	fmt.Fprintf(c.w, "  [MISS] "+format+"\n", args...)
}

func (c *checker) warn(format string, args ...any) {
	c.r.Warnings++
	fmt.Fprintf(c.w, "  [WARN] "+format+"\n", args...)
}

func (c *checker) fail(format string, args ...any) {
	c.r.Problems++
	fmt.Fprintf(c.w, "  [FAIL] "+format+"\n", args...)
}

func (c *checker) fixed(format string, args ...any) {
	c.r.Fixed++
	c.r.Problems--
	fmt.Fprintf(c.w, "  [FIX ] "+format+"\n", args...)
}

// Check validates the application layout described by s and writes one line
// per finding to w. When fix is true, missing directories are created.
func Check(w io.Writer, s config.Settings, fix bool) *Report {
	c := &checker{w: w, fix: fix}

	fmt.Fprintln(w, "Layout:")
	c.checkDir(s.BaseDir, false)
	for _, dir := range []string{
		s.SubsystemsDir(),
		s.Abs(s.PluginsPath),
		s.Abs(s.ModulesPath),
		s.Abs(s.StoragePath),
	} {
		c.checkDir(dir, true)
	}

	fmt.Fprintln(w, "Registry:")
	sc := registry.NewScanner(s)
	reg := c.checkRegistry(s.RegistryFile())
	for _, m := range reg.Modules() {
		if info, err := os.Stat(sc.Dir(m)); err != nil || !info.IsDir() {
			c.warn("%s: directory %s is gone (run 'module refresh')", m.Name, m.Path)
		}
	}
	c.checkPublished(s.Abs(s.PublishingPath))

	fmt.Fprintln(w, "Profile:")
	c.checkProfile(s)

	return &c.r
}

func (c *checker) checkDir(path string, fixable bool) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		c.miss("%s does not exist", path)
		if c.fix && fixable {
			if mkErr := os.MkdirAll(path, 0755); mkErr != nil {
				c.fail("could not create %s: %v", path, mkErr)
				return
			}
			c.fixed("created %s", path)
		}
		return
	}
	if err != nil {
		c.fail("%s: %v", path, err)
		return
	}
	if !info.IsDir() {
		c.fail("%s exists but is not a directory", path)
		return
	}
	c.ok("%s", path)
}

func (c *checker) checkRegistry(path string) *registry.Registry {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		c.warn("%s not found (run 'module refresh')", path)
		return registry.NewRegistry(nil)
	}
	reg, err := registry.NewFileStore(path).Load()
	if err != nil {
		c.fail("%v", err)
		return registry.NewRegistry(nil)
	}
	c.ok("%s (%d modules)", path, reg.Len())
	return reg
}

func (c *checker) checkPublished(dir string) {
	links, err := doublestar.Glob(os.DirFS(dir), "*/*")
	if err != nil || len(links) == 0 {
		return
	}
	dangling := 0
	for _, l := range links {
		full := filepath.Join(dir, filepath.FromSlash(l))
		if _, err := os.Stat(full); err != nil {
			c.warn("published link %s is dangling", full)
			dangling++
		}
	}
	if dangling == 0 {
		c.ok("%d published modules", len(links))
	}
}

func (c *checker) checkProfile(s config.Settings) {
	store := profile.NewStore(s.ProfilesDir())

	p, err := store.Active(s.Profile)
	if err != nil {
		c.fail("active profile: %v", err)
		return
	}
	target, err := platform.ReadSymlinkTarget(filepath.Join(store.Dir, profile.ActiveLink))
	if err != nil {
		c.ok("%s (configured default)", p.Name)
		return
	}
	c.ok("%s (active link -> %s)", p.Name, target)
}
