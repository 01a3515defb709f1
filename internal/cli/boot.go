package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tiagomgelias/kernel/internal/builtin"
	"github.com/tiagomgelias/kernel/internal/kernel"
	"github.com/tiagomgelias/kernel/internal/profile"
	"github.com/tiagomgelias/kernel/internal/registry"
)

var bootProfile string

func init() {
	bootCmd.Flags().StringVarP(&bootProfile, "profile", "p", "", "Profile to boot with (default: the active profile)")
	rootCmd.AddCommand(bootCmd)
}

// hooks is the bootstrapper registry used by boot. Applications embedding
// the kernel add their own bootstrappers to it before calling Execute.
var hooks = newHooks()

func newHooks() *kernel.Hooks {
	h := kernel.NewHooks()
	if err := builtin.Register(h); err != nil {
		panic(err)
	}
	return h
}

// Hooks returns the bootstrapper registry used by the boot command.
func Hooks() *kernel.Hooks { return hooks }

var bootCmd = &cobra.Command{
	Use:   "boot",
	Short: "Boot the application",
	Long: `Start every enabled module accepted by the profile, in registry order, then run the
lifecycle phases. Run 'module refresh' first to pick up new or changed modules.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := currentSettings()
		if err != nil {
			return err
		}
		p, err := resolveProfile(s.ProfilesDir(), bootProfile, s.Profile)
		if err != nil {
			return err
		}

		k := kernel.New(
			kernel.WithStore(registry.NewFileStore(s.RegistryFile())),
			kernel.WithHooks(hooks),
			kernel.WithProfile(p),
			kernel.WithSettings(s),
			kernel.WithLogger(newLogger(cmd, s)),
		)
		err = k.Boot()
		if code := k.ExitCode(); code != 0 {
			return &ExitError{Code: code, Err: err}
		}
		return err
	},
}

// resolveProfile loads the named profile, or the active one when name is
// empty, falling back to the configured default.
func resolveProfile(dir, name, fallback string) (*profile.Profile, error) {
	store := profile.NewStore(dir)
	var (
		p   *profile.Profile
		err error
	)
	if name != "" {
		p, err = store.Load(name)
	} else {
		p, err = store.Active(fallback)
	}
	if err != nil {
		return nil, fmt.Errorf("loading profile: %w", err)
	}
	return p, nil
}
