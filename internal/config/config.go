package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"github.com/tiagomgelias/kernel/internal/branding"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Setting keys.
const (
	KeyBaseDir          = "base_dir"
	KeyFrameworkPath    = "framework_path"
	KeyPluginsPath      = "plugins_path"
	KeyModulesPath      = "modules_path"
	KeyStoragePath      = "storage_path"
	KeyModulePublicPath = "module_public_path"
	KeyPublishingPath   = "publishing_path"
	KeyProfile          = "profile"
	KeyLogLevel         = "log_level"
	KeyDevEnv           = "dev_env"
	KeyDatabaseURL      = "database_url"
)

// Settings is the typed view of the kernel configuration. Paths other than
// BaseDir are relative to BaseDir unless absolute.
type Settings struct {
	BaseDir          string `mapstructure:"base_dir"`
	FrameworkPath    string `mapstructure:"framework_path"`
	PluginsPath      string `mapstructure:"plugins_path"`
	ModulesPath      string `mapstructure:"modules_path"`
	StoragePath      string `mapstructure:"storage_path"`
	ModulePublicPath string `mapstructure:"module_public_path"`
	PublishingPath   string `mapstructure:"publishing_path"`
	Profile          string `mapstructure:"profile"`
	LogLevel         string `mapstructure:"log_level"`
	DevEnv           bool   `mapstructure:"dev_env"`
	DatabaseURL      string `mapstructure:"database_url"`
}

// Defaults returns the settings used when nothing is configured.
func Defaults() Settings {
	return Settings{
		BaseDir:          ".",
		FrameworkPath:    "framework",
		PluginsPath:      "private/plugins",
		ModulesPath:      "private/modules",
		StoragePath:      "private/storage",
		ModulePublicPath: "public",
		PublishingPath:   "modules",
		Profile:          "web",
		LogLevel:         "info",
	}
}

// Dir returns the path to the config directory (~/.kernel/).
func Dir() string {
	if v := os.Getenv(branding.EnvVar("HOME")); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the config file (~/.kernel/config.yaml).
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// EnsureDir creates the config directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

// Load initializes Viper to read from the default config file and environment.
func Load() {
	LoadFrom(FilePath())
}

// LoadFrom initializes Viper to read from the given config file and environment.
func LoadFrom(path string) {
	setDefaults()
	viper.SetConfigFile(path)
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix(branding.EnvPrefix())
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Ignore error if config file doesn't exist yet.
	_ = viper.ReadInConfig()
}

func setDefaults() {
	d := Defaults()
	viper.SetDefault(KeyBaseDir, d.BaseDir)
	viper.SetDefault(KeyFrameworkPath, d.FrameworkPath)
	viper.SetDefault(KeyPluginsPath, d.PluginsPath)
	viper.SetDefault(KeyModulesPath, d.ModulesPath)
	viper.SetDefault(KeyStoragePath, d.StoragePath)
	viper.SetDefault(KeyModulePublicPath, d.ModulePublicPath)
	viper.SetDefault(KeyPublishingPath, d.PublishingPath)
	viper.SetDefault(KeyProfile, d.Profile)
	viper.SetDefault(KeyLogLevel, d.LogLevel)
	viper.SetDefault(KeyDevEnv, d.DevEnv)
	viper.SetDefault(KeyDatabaseURL, d.DatabaseURL)
}

// Get returns a config value by key. Returns empty string if not set.
func Get(key string) string {
	return viper.GetString(key)
}

// Set writes a config key-value pair and saves the config file.
func Set(key, value string) error {
	if err := EnsureDir(); err != nil {
		return err
	}

	viper.Set(key, value)

	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		configFile = FilePath()
	}

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("creating config file %s: %w", configFile, err)
		}
		f.Close()
	}

	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// Current returns the settings resolved from defaults, the config file and
// the environment.
func Current() (Settings, error) {
	var s Settings
	if err := viper.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("decoding settings: %w", err)
	}
	return s, nil
}

// Abs converts a path relative to BaseDir into an absolute-from-base path.
// Absolute paths are returned unmodified.
func (s Settings) Abs(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.BaseDir, path)
}

// Rel converts a path under BaseDir into a BaseDir-relative, slash-separated
// path. Paths outside BaseDir are returned unmodified.
func (s Settings) Rel(path string) string {
	base, err := filepath.Abs(s.BaseDir)
	if err != nil {
		return path
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(base, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}

// SubsystemsDir returns the directory holding framework subsystems.
func (s Settings) SubsystemsDir() string {
	return s.Abs(filepath.Join(s.FrameworkPath, "subsystems"))
}

// RegistryFile returns the path of the persisted module registry.
func (s Settings) RegistryFile() string {
	return s.Abs(filepath.Join(s.StoragePath, "registry.json"))
}

// ProfilesDir returns the directory holding user profile files.
func (s Settings) ProfilesDir() string {
	return filepath.Join(Dir(), "profiles")
}
