package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tiagomgelias/kernel/internal/config"
	"github.com/tiagomgelias/kernel/internal/manifest"
	"github.com/tiagomgelias/kernel/internal/migrate"
	"github.com/tiagomgelias/kernel/internal/registry"
)

var (
	moduleListType string
	moduleListJSON bool
)

func init() {
	moduleListCmd.Flags().StringVar(&moduleListType, "type", "", "Filter by type (subsystem, plugin, private)")
	moduleListCmd.Flags().BoolVar(&moduleListJSON, "json", false, "Output in JSON format")

	moduleCmd.AddCommand(moduleRefreshCmd)
	moduleCmd.AddCommand(moduleListCmd)
	moduleCmd.AddCommand(moduleEnableCmd)
	moduleCmd.AddCommand(moduleDisableCmd)
	moduleCmd.AddCommand(moduleCleanupCmd)
	moduleCmd.AddCommand(moduleValidateCmd)
	rootCmd.AddCommand(moduleCmd)
}

var moduleCmd = &cobra.Command{
	Use:   "module",
	Short: "Manage the module registry",
}

// newInstaller wires the installer for the application described by s.
func newInstaller(cmd *cobra.Command, s config.Settings) *registry.Installer {
	sc := registry.NewScanner(s)
	lg := newLogger(cmd, s)
	return &registry.Installer{
		Scanner: sc,
		Store:   registry.NewFileStore(s.RegistryFile()),
		Publisher: &registry.Publisher{
			Dir:       s.Abs(s.PublishingPath),
			PublicDir: s.ModulePublicPath,
			ModuleDir: sc.Dir,
		},
		Migrator: migrate.New(s.DatabaseURL, lg),
		Logger:   lg,
	}
}

var moduleRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Rescan modules and rebuild the registry",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := currentSettings()
		if err != nil {
			return err
		}
		res, err := newInstaller(cmd, s).Rebuild()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, headingStyle.Render(fmt.Sprintf("Registry rebuilt: %d modules", res.Registry.Len())))
		printNames(out, "new", res.Diff.New)
		printNames(out, "kept", res.Diff.Kept)
		printNames(out, "removed", res.Diff.Removed)
		for _, e := range res.SetupErrors {
			fmt.Fprintln(out, warnStyle.Render("warning: ")+e.Error())
		}
		return nil
	},
}

func printNames(w io.Writer, label string, names []string) {
	if len(names) == 0 {
		return
	}
	fmt.Fprintf(w, "  %s %s\n", dimStyle.Render(label+":"), strings.Join(names, ", "))
}

type moduleEntry struct {
	Name         string   `json:"name"`
	Type         string   `json:"type"`
	Priority     int      `json:"priority"`
	Enabled      bool     `json:"enabled"`
	Bootstrapper string   `json:"bootstrapper,omitempty"`
	Version      string   `json:"version,omitempty"`
	Dependencies []string `json:"dependencies,omitempty"`
}

var moduleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered modules in load order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := currentSettings()
		if err != nil {
			return err
		}
		reg, err := registry.NewFileStore(s.RegistryFile()).Load()
		if err != nil {
			return err
		}
		if moduleListType != "" {
			t, err := registry.ParseType(moduleListType)
			if err != nil {
				return err
			}
			reg = reg.OfType(t)
		}

		out := cmd.OutOrStdout()
		if reg.Len() == 0 && !moduleListJSON {
			fmt.Fprintln(out, "No modules registered. Run 'module refresh' to scan the application.")
			return nil
		}

		entries := make([]moduleEntry, 0, reg.Len())
		for _, m := range reg.Modules() {
			entries = append(entries, moduleEntry{
				Name:         m.Name,
				Type:         string(m.Type),
				Priority:     m.Priority,
				Enabled:      m.Enabled,
				Bootstrapper: m.Bootstrapper,
				Version:      m.Version,
				Dependencies: m.Dependencies,
			})
		}

		if moduleListJSON {
			data, err := json.MarshalIndent(entries, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling modules: %w", err)
			}
			fmt.Fprintln(out, string(data))
			return nil
		}

		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tTYPE\tPRIORITY\tENABLED\tBOOTSTRAPPER\tVERSION")
		for _, e := range entries {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n",
				e.Name, e.Type, e.Priority, strconv.FormatBool(e.Enabled), orDash(e.Bootstrapper), orDash(e.Version))
		}
		return tw.Flush()
	},
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

var moduleEnableCmd = &cobra.Command{
	Use:   "enable <name>",
	Short: "Enable a module",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return setEnabled(cmd, args[0], true) },
}

var moduleDisableCmd = &cobra.Command{
	Use:   "disable <name>",
	Short: "Disable a module; it stays registered but is not booted",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return setEnabled(cmd, args[0], false) },
}

func setEnabled(cmd *cobra.Command, name string, enabled bool) error {
	s, err := currentSettings()
	if err != nil {
		return err
	}
	if err := newInstaller(cmd, s).SetEnabled(name, enabled); err != nil {
		if registry.IsNotFound(err) {
			return fmt.Errorf("%w (run 'module list' to see registered modules)", err)
		}
		return err
	}
	state := "disabled"
	if enabled {
		state = "enabled"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", okStyle.Render(state), name)
	return nil
}

var moduleCleanupCmd = &cobra.Command{
	Use:   "cleanup <name>",
	Short: "Roll back a module's migrations before uninstalling it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := currentSettings()
		if err != nil {
			return err
		}
		if err := newInstaller(cmd, s).CleanUp(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", okStyle.Render("cleaned up"), args[0])
		return nil
	},
}

var moduleValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check manifests and dependencies without touching the registry",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := currentSettings()
		if err != nil {
			return err
		}
		sc := registry.NewScanner(s)
		mods, err := sc.Scan()
		if err != nil {
			return err
		}
		if err := registry.LoadMetadata(mods, sc.Dir); err != nil {
			return err
		}
		ordered, err := registry.Resolve(mods)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, headingStyle.Render("Load order"))
		for i, m := range ordered {
			fmt.Fprintf(out, "  %2d. %s %s\n", i+1, m.Name, dimStyle.Render("("+string(m.Type)+")"))
		}
		for _, w := range constraintWarnings(sc, ordered) {
			fmt.Fprintln(out, warnStyle.Render("warning: ")+w)
		}
		return nil
	},
}

// constraintWarnings reports requirements whose version constraint the
// installed dependency does not meet. Versions are advisory only.
func constraintWarnings(sc *registry.Scanner, mods []*registry.Descriptor) []string {
	versions := make(map[string]string, len(mods))
	for _, m := range mods {
		versions[m.Name] = m.Version
	}

	var warnings []string
	for _, m := range mods {
		path, err := manifest.Find(sc.Dir(m))
		if err != nil {
			continue
		}
		mf, err := manifest.ParseFile(path)
		if err != nil {
			continue
		}
		for _, dep := range mf.Dependencies() {
			ok, err := manifest.Satisfies(mf.Requires[dep], versions[dep])
			switch {
			case err != nil:
				warnings = append(warnings, fmt.Sprintf("%s: %v", m.Name, err))
			case !ok:
				warnings = append(warnings, fmt.Sprintf("%s requires %s %s, found %s",
					m.Name, dep, mf.Requires[dep], versions[dep]))
			}
		}
	}
	return warnings
}
