package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func testPath(name string) string {
	return filepath.Join("testdata", name)
}

func TestParseFile(t *testing.T) {
	m, err := ParseFile(testPath("valid-module.yaml"))
	if err != nil {
		t.Fatalf("ParseFile error: %v", err)
	}
	if m.Name != "core/http" {
		t.Errorf("Name = %q, want core/http", m.Name)
	}
	if m.Priority != 2 {
		t.Errorf("Priority = %d, want 2", m.Priority)
	}
	if m.Bootstrapper != "core/http" {
		t.Errorf("Bootstrapper = %q, want core/http", m.Bootstrapper)
	}
	if m.Requires["core/log"] != "^1.0" {
		t.Errorf("Requires[core/log] = %q, want ^1.0", m.Requires["core/log"])
	}
}

func TestParseFile_JSON(t *testing.T) {
	m, err := ParseFile(testPath("core-log/module.json"))
	if err != nil {
		t.Fatalf("ParseFile error: %v", err)
	}
	if m.Name != "core/log" || m.Version != "1.0.0" {
		t.Errorf("got %+v", m)
	}
}

func TestParseFile_NotFound(t *testing.T) {
	if _, err := ParseFile(testPath("missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse([]byte("name: [oops")); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

func TestDependencies_Sorted(t *testing.T) {
	m := &Manifest{Requires: map[string]string{"b/x": "*", "a/y": "", "c/z": "^1"}}
	want := []string{"a/y", "b/x", "c/z"}
	if got := m.Dependencies(); !reflect.DeepEqual(got, want) {
		t.Errorf("Dependencies() = %v, want %v", got, want)
	}
	if got := (&Manifest{}).Dependencies(); got != nil {
		t.Errorf("Dependencies() on empty manifest = %v, want nil", got)
	}
}

func TestFind(t *testing.T) {
	t.Run("json fallback", func(t *testing.T) {
		p, err := Find(testPath("core-log"))
		if err != nil {
			t.Fatalf("Find error: %v", err)
		}
		if filepath.Base(p) != FallbackFileName {
			t.Errorf("Find = %s, want %s", p, FallbackFileName)
		}
	})

	t.Run("yaml preferred", func(t *testing.T) {
		dir := t.TempDir()
		for _, name := range []string{FileName, FallbackFileName} {
			if err := os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0o644); err != nil {
				t.Fatal(err)
			}
		}
		p, err := Find(dir)
		if err != nil {
			t.Fatalf("Find error: %v", err)
		}
		if filepath.Base(p) != FileName {
			t.Errorf("Find = %s, want %s", p, FileName)
		}
	})

	t.Run("none", func(t *testing.T) {
		_, err := Find(t.TempDir())
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Find error = %v, want ErrNotFound", err)
		}
	})
}
