package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tiagomgelias/kernel/internal/doctor"
)

var doctorFix bool

func init() {
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "Create missing directories")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the application layout, registry and active profile",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := currentSettings()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		r := doctor.Check(out, s, doctorFix)
		switch {
		case r.Problems > 0:
			fmt.Fprintln(out, warnStyle.Render(fmt.Sprintf("%d problems found", r.Problems)))
			return &ExitError{Code: 1}
		case r.Warnings > 0:
			fmt.Fprintln(out, warnStyle.Render(fmt.Sprintf("%d warnings", r.Warnings)))
		default:
			fmt.Fprintln(out, okStyle.Render("All checks passed"))
		}
		return nil
	},
}
