package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "possales",
	Short: "Sales reports from the Loyverse point-of-sale API",
	Long: `possales fetches receipts, items and categories from Loyverse,
joins line items to their categories and totals sales per day, week or month.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(
		reportCmd,
		historyCmd,
		serveCmd,
	)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
