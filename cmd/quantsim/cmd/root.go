package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "quantsim",
	Short: "Backtest simulation, stress testing, and risk monitoring",
	Long: `Quantsim replays a price series trade-by-trade against a signal series,
tracks portfolio state, computes risk statistics, and evaluates emergency-stop
conditions.

It provides tools for:
  - Backtesting a signal series against historical bars
  - Stress-testing the same strategy under adverse scenarios
  - Kill-switch evaluation with latched trip reasons
  - Journaling trade logs and equity curves to CSV or SQLite`,
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}
