package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tiagomgelias/kernel/internal/branding"
	"github.com/tiagomgelias/kernel/internal/config"
	"github.com/tiagomgelias/kernel/internal/logging"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string

	cfgFile  string
	baseDir  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` discovers the modules of an application, keeps their registry and
load order up to date, and boots the application through its lifecycle phases.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if cfgFile != "" {
			config.LoadFrom(cfgFile)
		} else {
			config.Load()
		}
		if baseDir != "" {
			viper.Set(config.KeyBaseDir, baseDir)
		}
		if logLevel != "" {
			viper.Set(config.KeyLogLevel, logLevel)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default "+config.FilePath()+")")
	rootCmd.PersistentFlags().StringVarP(&baseDir, "dir", "C", "", "Application base directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	return rootCmd.Execute()
}

// currentSettings returns the resolved settings for the running command.
func currentSettings() (config.Settings, error) {
	s, err := config.Current()
	if err != nil {
		return config.Settings{}, fmt.Errorf("loading settings: %w", err)
	}
	return s, nil
}

func newLogger(cmd *cobra.Command, s config.Settings) *log.Logger {
	w := cmd.ErrOrStderr()
	if w == nil {
		w = os.Stderr
	}
	return logging.New(w, s.LogLevel)
}
