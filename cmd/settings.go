package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/pallet-manifest/internal/format"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change the stored settings",
}

var settingsGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the stored settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		fmt.Fprintf(cmd.OutOrStdout(), "Max pallet weight: %s kg\n",
			format.Value(a.importer.Settings().MaxPalletWeightKg()))
		return nil
	},
}

var settingsSetMaxWeightCmd = &cobra.Command{
	Use:   "set-max-weight <kg>",
	Short: "Set the pallet weight limit",
	Long: `Set the pallet weight limit used to flag heavy pallets. Negative values are
stored as 0, which disables the check.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kg, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid weight %q: %w", args[0], err)
		}

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		updated := a.importer.Settings().SetMaxPalletWeightKg(cmd.Context(), kg)
		fmt.Fprintf(cmd.OutOrStdout(), "Max pallet weight: %s kg\n", format.Value(updated.MaxPalletWeightKg))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsSetMaxWeightCmd)
}
