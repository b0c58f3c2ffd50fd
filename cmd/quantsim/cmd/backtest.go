package cmd

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/quantsim/config"
	"github.com/rustyeddy/quantsim/dataset"
	"github.com/rustyeddy/quantsim/journal"
	"github.com/rustyeddy/quantsim/riskzone"
	"github.com/rustyeddy/quantsim/sim"
	"github.com/rustyeddy/quantsim/stats"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run a single backtest over a bar and signal series",
	Long: `Backtest replays a price series against an externally generated signal
series, enforcing stop-loss/take-profit levels, the drawdown limit, and the
kill-switch, then prints a performance summary.

Example:
  quantsim backtest --bars data/bars.csv --signals data/signals.csv`,
	RunE: runBacktest,
}

var (
	btBarsPath    string
	btSignalsPath string
	btConfigPath  string
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().StringVarP(&btBarsPath, "bars", "b", "", "path to bar CSV (time,open,high,low,close,volume), .xz supported (required)")
	backtestCmd.Flags().StringVarP(&btSignalsPath, "signals", "s", "", "path to signal CSV (time,direction,strength) (required)")
	backtestCmd.Flags().StringVarP(&btConfigPath, "config", "c", "", "path to YAML/JSON config (defaults apply when omitted)")

	backtestCmd.MarkFlagRequired("bars")
	backtestCmd.MarkFlagRequired("signals")
}

func loadConfig() (*config.Config, error) {
	if btConfigPath == "" {
		return config.Default(), nil
	}
	return config.LoadFromFile(btConfigPath)
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	bars, err := dataset.LoadBars(btBarsPath)
	if err != nil {
		return err
	}
	sigs, err := dataset.LoadSignals(btSignalsPath)
	if err != nil {
		return err
	}

	engine := sim.New(cfg.SimConfig())
	res, err := engine.Run(bars, sigs)
	if err != nil {
		return err
	}

	sum := stats.Summarize(res.EquityCurve, res.Trades, cfg.Engine.InitialCapital, cfg.Engine.BarsPerYear)

	if j, err := cfg.OpenJournal(); err != nil {
		return err
	} else if j != nil {
		defer j.Close()
		if err := journal.Record(j, res, sum, "baseline", cfg.Engine.InitialCapital); err != nil {
			return fmt.Errorf("journal run: %w", err)
		}
	}

	printSummary(res, sum)
	return nil
}

func printSummary(res sim.Result, sum stats.Summary) {
	fmt.Printf("Run:          %s\n", res.RunID)
	fmt.Printf("Termination:  %s\n", res.Termination)
	if len(res.Tripped) > 0 {
		fmt.Printf("Trip reasons: %v\n", res.Tripped)
	}
	fmt.Printf("Bars:         %d\n", len(res.EquityCurve))
	fmt.Printf("Return:       %.2f%% (%.2f%% annualized)\n", sum.TotalReturn*100, sum.AnnualizedReturn*100)
	fmt.Printf("Max drawdown: %.2f%%\n", sum.MaxDrawdown*100)
	fmt.Printf("Sharpe:       %s  Sortino: %s  Calmar: %s\n",
		ratio(sum.Sharpe), ratio(sum.Sortino), ratio(sum.Calmar))
	fmt.Printf("Trades:       %d (%d wins / %d losses, win rate %.1f%%)\n",
		sum.Trades.Total, sum.Trades.Wins, sum.Trades.Losses, sum.Trades.WinRate*100)
	fmt.Printf("Avg win:      %.2f  Avg loss: %.2f  Profit factor: %s\n",
		sum.Trades.AvgWin, sum.Trades.AvgLoss, ratio(sum.Trades.ProfitFactor))

	periods := stats.DrawdownPeriods(res.EquityCurve)
	recovered := 0
	for _, p := range periods {
		if p.Recovered() {
			recovered++
		}
	}
	fmt.Printf("Drawdowns:    %d (%d recovered)\n", len(periods), recovered)

	if n := len(res.Trades); n > 0 {
		var rrSum float64
		planned := 0
		for _, t := range res.Trades {
			if rr := riskzone.RewardRisk(t.EntryPrice, t.Stop, t.Take); rr > 0 {
				rrSum += rr
				planned++
			}
		}
		if planned > 0 {
			fmt.Printf("Avg planned reward/risk: %.2f over %d trades\n", rrSum/float64(planned), planned)
		}
	}
}

func ratio(v float64) string {
	if math.IsInf(v, 1) {
		return "+inf"
	}
	if math.IsInf(v, -1) {
		return "-inf"
	}
	return fmt.Sprintf("%.2f", v)
}
