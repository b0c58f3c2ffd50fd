package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/quantsim/journal"
)

var showCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show a journaled run from a SQLite journal",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var showDBPath string

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().StringVarP(&showDBPath, "db", "d", "", "path to the SQLite journal (required)")
	showCmd.MarkFlagRequired("db")
}

func runShow(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(showDBPath)
	if err != nil {
		return err
	}
	defer j.Close()

	runID := args[0]
	run, err := j.GetRun(runID)
	if err != nil {
		return err
	}

	fmt.Printf("Run:          %s (%s)\n", run.RunID, run.Scenario)
	fmt.Printf("Created:      %s\n", run.Created.Format("2006-01-02 15:04:05"))
	fmt.Printf("Termination:  %s\n", run.Termination)
	fmt.Printf("Equity:       %.2f -> %.2f (%.2f%%)\n",
		run.InitialCapital, run.FinalEquity, run.TotalReturn*100)
	fmt.Printf("Max drawdown: %.2f%%  Sharpe: %s\n", run.MaxDrawdown*100, ratio(run.Sharpe))

	trades, err := j.ListTradesByRun(runID)
	if err != nil {
		return err
	}
	if len(trades) > 0 {
		fmt.Printf("\n%-8s %-6s %10s %10s %10s %10s  %s\n",
			"trade", "side", "units", "entry", "exit", "pl", "reason")
		for _, t := range trades {
			fmt.Printf("%-8s %-6s %10.2f %10.4f %10.4f %10.2f  %s\n",
				t.TradeID, t.Side, t.Units, t.EntryPrice, t.ExitPrice, t.RealizedPL, t.ExitReason)
		}
	}

	curve, err := j.ListEquityByRun(runID)
	if err != nil {
		return err
	}
	fmt.Printf("\n%d trades, %d equity points\n", len(trades), len(curve))
	return nil
}
