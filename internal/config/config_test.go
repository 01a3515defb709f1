package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func TestLoadFromAppliesDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))

	s, err := Current()
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if s != Defaults() {
		t.Errorf("Current() = %+v, want defaults %+v", s, Defaults())
	}
}

func TestLoadFromReadsFileAndEnv(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "modules_path: app/modules\nprofile: console\ndev_env: true\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("KERNEL_LOG_LEVEL", "debug")

	LoadFrom(path)

	s, err := Current()
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if s.ModulesPath != "app/modules" {
		t.Errorf("ModulesPath = %q, want %q", s.ModulesPath, "app/modules")
	}
	if s.Profile != "console" {
		t.Errorf("Profile = %q, want %q", s.Profile, "console")
	}
	if !s.DevEnv {
		t.Error("DevEnv = false, want true")
	}
	if s.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q (from env)", s.LogLevel, "debug")
	}
	if s.PluginsPath != Defaults().PluginsPath {
		t.Errorf("PluginsPath = %q, want default", s.PluginsPath)
	}
}

func TestSetWritesConfigFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	home := t.TempDir()
	t.Setenv("KERNEL_HOME", home)
	Load()

	if err := Set(KeyProfile, "api"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(home, "config.yaml"))
	if err != nil {
		t.Fatalf("reading config file: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("config file is empty")
	}
	if got := Get(KeyProfile); got != "api" {
		t.Errorf("Get(profile) = %q, want %q", got, "api")
	}
}

func TestSettingsPaths(t *testing.T) {
	s := Defaults()
	s.BaseDir = "/srv/app"

	if got := s.RegistryFile(); got != filepath.Join("/srv/app", "private/storage", "registry.json") {
		t.Errorf("RegistryFile() = %q", got)
	}
	if got := s.SubsystemsDir(); got != filepath.Join("/srv/app", "framework", "subsystems") {
		t.Errorf("SubsystemsDir() = %q", got)
	}
	if got := s.Abs("/etc/x"); got != "/etc/x" {
		t.Errorf("Abs(absolute) = %q, want unchanged", got)
	}
	if got := s.Rel("/srv/app/private/modules/acme/blog"); got != "private/modules/acme/blog" {
		t.Errorf("Rel() = %q", got)
	}
	if got := s.Rel("/elsewhere/x"); got != "/elsewhere/x" {
		t.Errorf("Rel(outside) = %q, want unchanged", got)
	}
}
