package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/quantsim/dataset"
	"github.com/rustyeddy/quantsim/journal"
	"github.com/rustyeddy/quantsim/scenario"
	"github.com/rustyeddy/quantsim/sweep"
)

var stressCmd = &cobra.Command{
	Use:   "stress",
	Short: "Run the strategy through every stress scenario",
	Long: `Stress generates adverse variants of the baseline series (volatility
shock, gap crash, limit moves, liquidity dry-up) and backtests the same
signal series against each one concurrently, then ranks the outcomes.

Example:
  quantsim stress --bars data/bars.csv --signals data/signals.csv --seed 42`,
	RunE: runStress,
}

var stressSeed int64

func init() {
	rootCmd.AddCommand(stressCmd)

	stressCmd.Flags().StringVarP(&btBarsPath, "bars", "b", "", "path to bar CSV, .xz supported (required)")
	stressCmd.Flags().StringVarP(&btSignalsPath, "signals", "s", "", "path to signal CSV (required)")
	stressCmd.Flags().StringVarP(&btConfigPath, "config", "c", "", "path to YAML/JSON config")
	stressCmd.Flags().Int64Var(&stressSeed, "seed", 0, "scenario seed (overrides config when non-zero)")

	stressCmd.MarkFlagRequired("bars")
	stressCmd.MarkFlagRequired("signals")
}

func runStress(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	seed := cfg.Scenario.Seed
	if stressSeed != 0 {
		seed = stressSeed
	}

	bars, err := dataset.LoadBars(btBarsPath)
	if err != nil {
		return err
	}
	sigs, err := dataset.LoadSignals(btSignalsPath)
	if err != nil {
		return err
	}

	runner := &sweep.Runner{
		Generator:   scenario.NewGenerator(cfg.ScenarioParams(), seed),
		Engine:      cfg.SimConfig(),
		BarsPerYear: cfg.Engine.BarsPerYear,
	}

	rep, err := runner.Run(context.Background(), bars, sigs, scenario.Kinds())
	if err != nil {
		return err
	}

	j, err := cfg.OpenJournal()
	if err != nil {
		return err
	}
	if j != nil {
		defer j.Close()
	}

	fmt.Printf("%-24s %10s %10s %8s %8s  %s\n", "scenario", "return", "max dd", "sharpe", "trades", "termination")
	for _, sr := range rep.Results {
		if sr.Err != nil {
			fmt.Printf("%-24s skipped: %v\n", sr.Kind, sr.Err)
			continue
		}
		fmt.Printf("%-24s %9.2f%% %9.2f%% %8s %8d  %s\n",
			sr.Kind,
			sr.Summary.TotalReturn*100,
			sr.Summary.MaxDrawdown*100,
			ratio(sr.Summary.Sharpe),
			sr.Summary.Trades.Total,
			sr.Result.Termination)

		if j != nil {
			if err := journal.Record(j, sr.Result, sr.Summary, sr.Kind.String(), cfg.Engine.InitialCapital); err != nil {
				return fmt.Errorf("journal %s: %w", sr.Kind, err)
			}
		}
	}
	fmt.Printf("\nMost resilient:  %s\nMost vulnerable: %s\n", rep.MostResilient, rep.MostVulnerable)
	return nil
}
