package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/tiagomgelias/kernel/internal/fault"
)

// run executes the root command with fresh flag and viper state.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	viper.Reset()
	cfgFile, baseDir, logLevel = "", "", ""
	bootProfile = ""
	moduleListType, moduleListJSON = "", false
	profileShowYAML, profileShowJSON = false, false
	versionShort, versionJSON = false, false
	moduleNewType, moduleNewDescription, moduleNewBootstrapper = "private", "", ""
	moduleNewPriority, moduleNewRequires = 0, nil
	doctorFix = false

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

// project creates an application tree and isolates the config directory.
func project(t *testing.T, files map[string]string) string {
	t.Helper()
	t.Setenv("KERNEL_HOME", t.TempDir())
	base := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(base, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	t.Cleanup(viper.Reset)
	return base
}

var sampleApp = map[string]string{
	"framework/subsystems/status/module.yaml":   "bootstrapper: subsystems/status\n",
	"framework/subsystems/registry/module.yaml": "bootstrapper: subsystems/registry\n",
	"private/plugins/acme/blog/module.yaml":     "version: 1.2.0\nrequires:\n  subsystems/status: \"*\"\n",
	"private/modules/app/shop/module.yaml":      "priority: 2\nrequires:\n  acme/blog: ^2.0\n",
	"private/modules/app/assets/public/app.css": "body{}",
}

func TestModuleRefreshAndList(t *testing.T) {
	base := project(t, sampleApp)

	out, _, err := run(t, "module", "refresh", "-C", base)
	if err != nil {
		t.Fatalf("module refresh: %v", err)
	}
	if !strings.Contains(out, "Registry rebuilt: 5 modules") {
		t.Errorf("refresh output = %q", out)
	}

	out, _, err = run(t, "module", "list", "--json", "-C", base)
	if err != nil {
		t.Fatalf("module list: %v", err)
	}
	var entries []moduleEntry
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("decoding list output: %v\n%s", err, out)
	}
	var got []string
	for _, e := range entries {
		got = append(got, e.Name)
	}
	want := []string{"subsystems/registry", "subsystems/status", "acme/blog", "app/shop", "app/assets"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("list order = %v, want %v", got, want)
	}

	out, _, err = run(t, "module", "list", "--type", "plugin", "-C", base)
	if err != nil {
		t.Fatalf("module list --type: %v", err)
	}
	if !strings.Contains(out, "acme/blog") || strings.Contains(out, "app/shop") {
		t.Errorf("filtered list = %q", out)
	}

	if runtime.GOOS != "windows" {
		if _, err := os.Stat(filepath.Join(base, "modules", "app", "assets", "app.css")); err != nil {
			t.Errorf("public assets not published: %v", err)
		}
	}
}

func TestModuleDisableSurvivesRefresh(t *testing.T) {
	base := project(t, sampleApp)
	if _, _, err := run(t, "module", "refresh", "-C", base); err != nil {
		t.Fatal(err)
	}
	if _, _, err := run(t, "module", "disable", "app/shop", "-C", base); err != nil {
		t.Fatalf("module disable: %v", err)
	}
	if _, _, err := run(t, "module", "refresh", "-C", base); err != nil {
		t.Fatal(err)
	}

	out, _, err := run(t, "module", "list", "--json", "-C", base)
	if err != nil {
		t.Fatal(err)
	}
	var entries []moduleEntry
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if e.Name == "app/shop" && e.Enabled {
			t.Error("app/shop re-enabled by refresh")
		}
	}

	if _, _, err := run(t, "module", "enable", "app/ghost", "-C", base); err == nil {
		t.Error("enabling an unknown module should fail")
	}
}

func TestModuleValidate(t *testing.T) {
	base := project(t, sampleApp)
	out, _, err := run(t, "module", "validate", "-C", base)
	if err != nil {
		t.Fatalf("module validate: %v", err)
	}
	if !strings.Contains(out, "Load order") {
		t.Errorf("validate output = %q", out)
	}
	// app/shop wants acme/blog ^2.0 but 1.2.0 is installed.
	if !strings.Contains(out, "app/shop requires acme/blog ^2.0, found 1.2.0") {
		t.Errorf("missing constraint warning in %q", out)
	}
	if _, err := os.Stat(filepath.Join(base, "private", "storage", "registry.json")); !os.IsNotExist(err) {
		t.Error("validate must not write the registry")
	}
}

func TestModuleValidateReportsCycle(t *testing.T) {
	base := project(t, map[string]string{
		"private/modules/app/x/module.yaml": "requires:\n  app/y: \"*\"\n",
		"private/modules/app/y/module.yaml": "requires:\n  app/x: \"*\"\n",
	})
	_, _, err := run(t, "module", "validate", "-C", base)
	if !errors.Is(err, fault.ErrConfig) {
		t.Fatalf("validate error = %v, want configuration error", err)
	}
	if !strings.Contains(err.Error(), `"app/x" <-> "app/y"`) {
		t.Errorf("error %q does not name the cycle", err)
	}
}

func TestBoot(t *testing.T) {
	base := project(t, sampleApp)
	if _, _, err := run(t, "module", "refresh", "-C", base); err != nil {
		t.Fatal(err)
	}
	_, logs, err := run(t, "boot", "-C", base)
	if err != nil {
		t.Fatalf("boot: %v", err)
	}
	if !strings.Contains(logs, "application running") || !strings.Contains(logs, "application stopped") {
		t.Errorf("boot logs = %q", logs)
	}
}

func TestBootMissingBootstrapper(t *testing.T) {
	base := project(t, map[string]string{
		"private/modules/app/shop/module.yaml": "bootstrapper: app/not-compiled-in\n",
	})
	if _, _, err := run(t, "module", "refresh", "-C", base); err != nil {
		t.Fatal(err)
	}
	_, _, err := run(t, "boot", "-C", base)

	var exit *ExitError
	if !errors.As(err, &exit) || exit.Code != 1 {
		t.Fatalf("boot error = %v, want exit status 1", err)
	}
	var hookErr *fault.HookError
	if !errors.As(err, &hookErr) {
		t.Errorf("boot error = %v, want hook error", err)
	}

	// The console profile does not accept private modules.
	if _, _, err := run(t, "boot", "--profile", "console", "-C", base); err != nil {
		t.Errorf("boot --profile console: %v", err)
	}
}

func TestProfileCommands(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks require privileges on Windows")
	}
	project(t, nil)

	out, _, err := run(t, "profile", "list")
	if err != nil {
		t.Fatalf("profile list: %v", err)
	}
	if line := lineWith(out, "(active)"); !strings.Contains(line, "web") {
		t.Errorf("profile list = %q, want web active by default", out)
	}

	if _, _, err := run(t, "profile", "use", "api"); err != nil {
		t.Fatalf("profile use: %v", err)
	}
	out, _, err = run(t, "profile", "show")
	if err != nil {
		t.Fatalf("profile show: %v", err)
	}
	if !strings.Contains(out, "Profile: api") || !strings.Contains(out, "extends:  web") {
		t.Errorf("profile show = %q", out)
	}

	if _, _, err := run(t, "profile", "use", "nope"); err == nil {
		t.Error("switching to an unknown profile should fail")
	}
}

func TestConfigSetGet(t *testing.T) {
	project(t, nil)
	if _, _, err := run(t, "config", "set", "profile", "console"); err != nil {
		t.Fatalf("config set: %v", err)
	}
	out, _, err := run(t, "config", "get", "profile")
	if err != nil {
		t.Fatalf("config get: %v", err)
	}
	if strings.TrimSpace(out) != "console" {
		t.Errorf("config get profile = %q, want console", out)
	}
}

func TestVersion(t *testing.T) {
	buildVersion = "1.2.3"
	out, _, err := run(t, "version", "--short")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "1.2.3" {
		t.Errorf("version --short = %q", out)
	}
}

func lineWith(out, substr string) string {
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, substr) {
			return line
		}
	}
	return ""
}

func TestModuleNewScaffoldsRegistrableModule(t *testing.T) {
	base := project(t, sampleApp)

	out, _, err := run(t, "module", "new", "app/cart", "--requires", "acme/blog", "--priority", "5", "-C", base)
	if err != nil {
		t.Fatalf("module new: %v", err)
	}
	if !strings.Contains(out, "Created app/cart") || !strings.Contains(out, "private/modules/app/cart") {
		t.Errorf("new output = %q", out)
	}
	if strings.Contains(out, "warning") {
		t.Errorf("unexpected warnings: %q", out)
	}

	out, _, err = run(t, "module", "validate", "-C", base)
	if err != nil {
		t.Fatalf("module validate: %v", err)
	}
	if !strings.Contains(out, "app/cart") {
		t.Errorf("validate output = %q, want app/cart in load order", out)
	}

	_, _, err = run(t, "module", "new", "app/cart", "-C", base)
	if err == nil || !strings.Contains(err.Error(), "not empty") {
		t.Errorf("second module new error = %v, want not empty", err)
	}

	_, _, err = run(t, "module", "new", "log", "--type", "subsystem", "-C", base)
	if err == nil {
		t.Error("module new with an invalid name should fail")
	}
}

func TestDoctor(t *testing.T) {
	base := project(t, sampleApp)

	out, _, err := run(t, "doctor", "-C", base)
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 1 {
		t.Fatalf("doctor error = %v, want exit code 1 for the missing storage dir", err)
	}
	if !strings.Contains(out, "[MISS]") {
		t.Errorf("doctor output = %q", out)
	}

	if _, _, err := run(t, "doctor", "--fix", "-C", base); err != nil {
		t.Fatalf("doctor --fix: %v", err)
	}
	if _, _, err := run(t, "module", "refresh", "-C", base); err != nil {
		t.Fatalf("module refresh: %v", err)
	}
	out, _, err = run(t, "doctor", "-C", base)
	if err != nil {
		t.Fatalf("doctor after refresh: %v\n%s", err, out)
	}
	if !strings.Contains(out, "All checks passed") {
		t.Errorf("doctor output = %q", out)
	}
}
