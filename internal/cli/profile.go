package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/tiagomgelias/kernel/internal/profile"
)

var (
	profileShowYAML bool
	profileShowJSON bool
)

func init() {
	profileShowCmd.Flags().BoolVar(&profileShowYAML, "yaml", false, "Output as YAML")
	profileShowCmd.Flags().BoolVar(&profileShowJSON, "json", false, "Output as JSON")

	profileCmd.AddCommand(profileListCmd)
	profileCmd.AddCommand(profileUseCmd)
	profileCmd.AddCommand(profileShowCmd)
	rootCmd.AddCommand(profileCmd)
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage boot profiles",
	Long:  `A profile selects which modules a boot run starts. Profiles live in ~/.kernel/profiles/.`,
}

func profileStore() (*profile.Store, string, error) {
	s, err := currentSettings()
	if err != nil {
		return nil, "", err
	}
	return profile.NewStore(s.ProfilesDir()), s.Profile, nil
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show all profiles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, fallback, err := profileStore()
		if err != nil {
			return err
		}
		names, err := store.List()
		if err != nil {
			return fmt.Errorf("listing profiles: %w", err)
		}

		active, err := store.ActiveName()
		if err != nil {
			active = fallback
		}
		out := cmd.OutOrStdout()
		for _, name := range names {
			if name == active {
				fmt.Fprintf(out, "  %s %s\n", name, okStyle.Render("(active)"))
			} else {
				fmt.Fprintf(out, "  %s\n", name)
			}
		}
		return nil
	},
}

var profileUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Switch active profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, err := profileStore()
		if err != nil {
			return err
		}
		if err := store.Use(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Switched to profile %q\n", args[0])
		return nil
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show a profile (default: the active one)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, fallback, err := profileStore()
		if err != nil {
			return err
		}
		name := ""
		if len(args) == 1 {
			name = args[0]
		}
		p, err := resolveProfile(store.Dir, name, fallback)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		switch {
		case profileShowJSON:
			data, err := json.MarshalIndent(p, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling profile as JSON: %w", err)
			}
			fmt.Fprintln(out, string(data))
		case profileShowYAML:
			data, err := yaml.Marshal(p)
			if err != nil {
				return fmt.Errorf("marshaling profile as YAML: %w", err)
			}
			fmt.Fprint(out, string(data))
		default:
			fmt.Fprintln(out, headingStyle.Render("Profile: "+p.Name))
			fmt.Fprintf(out, "  kind:     %s\n", p.Kind)
			if lineage := p.Lineage(); len(lineage) > 0 {
				fmt.Fprintf(out, "  extends:  %s\n", strings.Join(lineage, " > "))
			}
			accept := "all"
			if len(p.Accept) > 0 {
				types := make([]string, len(p.Accept))
				for i, t := range p.Accept {
					types[i] = string(t)
				}
				accept = strings.Join(types, ", ")
			}
			fmt.Fprintf(out, "  accepts:  %s\n", accept)
			if len(p.Include) > 0 {
				fmt.Fprintf(out, "  include:  %s\n", strings.Join(p.Include, ", "))
			}
			if len(p.Exclude) > 0 {
				fmt.Fprintf(out, "  exclude:  %s\n", strings.Join(p.Exclude, ", "))
			}
		}
		return nil
	},
}
