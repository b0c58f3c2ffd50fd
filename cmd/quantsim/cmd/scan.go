package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/quantsim/dataset"
	"github.com/rustyeddy/quantsim/killswitch"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan a bar series for market anomalies",
	Long: `Scan slides a window over the series and reports gap opens, limit-sized
moves, volume collapses or spikes, and spread widening. Alerts are advisory:
they never trip the kill-switch on their own.

Example:
  quantsim scan --bars data/bars.csv --window 30`,
	RunE: runScan,
}

var scanWindow int

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVarP(&btBarsPath, "bars", "b", "", "path to bar CSV, .xz supported (required)")
	scanCmd.Flags().IntVarP(&scanWindow, "window", "w", 30, "bars of history per scan")

	scanCmd.MarkFlagRequired("bars")
}

func runScan(cmd *cobra.Command, args []string) error {
	bars, err := dataset.LoadBars(btBarsPath)
	if err != nil {
		return err
	}
	if scanWindow < 2 {
		return fmt.Errorf("window must be at least 2, got %d", scanWindow)
	}

	total := 0
	for i := 1; i < len(bars); i++ {
		start := i + 1 - scanWindow
		if start < 0 {
			start = 0
		}
		for _, a := range killswitch.AnomalyScan(bars[start : i+1]) {
			total++
			fmt.Printf("%s  %-8s %-16s %s\n",
				bars[i].Time.Format("2006-01-02 15:04"), a.Level, a.Type, a.Message)
		}
	}

	fmt.Printf("\n%d bars scanned, %d alerts\n", len(bars), total)
	return nil
}
