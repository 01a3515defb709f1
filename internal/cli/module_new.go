package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tiagomgelias/kernel/internal/registry"
	"github.com/tiagomgelias/kernel/internal/scaffold"
)

var (
	moduleNewType         string
	moduleNewDescription  string
	moduleNewBootstrapper string
	moduleNewPriority     int
	moduleNewRequires     []string
)

func init() {
	moduleNewCmd.Flags().StringVarP(&moduleNewType, "type", "t", string(registry.TypePrivate), "Module type (subsystem, plugin, private)")
	moduleNewCmd.Flags().StringVarP(&moduleNewDescription, "description", "d", "", "Module description")
	moduleNewCmd.Flags().StringVar(&moduleNewBootstrapper, "bootstrapper", "", "Bootstrapper hook name")
	moduleNewCmd.Flags().IntVar(&moduleNewPriority, "priority", 0, "Load priority (higher boots first)")
	moduleNewCmd.Flags().StringSliceVar(&moduleNewRequires, "requires", nil, "Modules this one depends on")
	moduleCmd.AddCommand(moduleNewCmd)
}

var moduleNewCmd = &cobra.Command{
	Use:   "new <group/name>",
	Short: "Create a new module skeleton",
	Long: `Create a new module directory with a manifest, a README and empty
public/ and migrations/ directories, in the location the scanner expects
for its type. Run 'module refresh' afterwards to register it.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := currentSettings()
		if err != nil {
			return err
		}
		typ, err := registry.ParseType(moduleNewType)
		if err != nil {
			return err
		}
		dir, err := registry.NewScanner(s).Target(args[0], typ)
		if err != nil {
			return err
		}

		data := scaffold.NewData(args[0], typ)
		if moduleNewDescription != "" {
			data.Description = moduleNewDescription
		}
		data.Bootstrapper = moduleNewBootstrapper
		data.Priority = moduleNewPriority
		data.Requires = moduleNewRequires

		res, err := scaffold.Generate(data, dir)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, okStyle.Render("Created "+args[0]))
		fmt.Fprintf(out, "  %s %s\n", dimStyle.Render("dir:"), s.Rel(res.OutputDir))
		for _, f := range res.Files {
			fmt.Fprintf(out, "  %s\n", f)
		}
		for _, w := range res.Warnings {
			fmt.Fprintln(out, warnStyle.Render("warning: ")+w)
		}
		return nil
	},
}
