package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

// CSVJournal writes three flat files: one row per trade, one per equity
// point, one per run. Writers flush per record so a crashed process still
// leaves a usable audit trail.
type CSVJournal struct {
	trades *csv.Writer
	equity *csv.Writer
	runs   *csv.Writer
	files  []*os.File
}

var (
	tradeHeader = []string{"run_id", "trade_id", "side", "units", "entry_time", "exit_time",
		"entry_price", "exit_price", "realized_pl", "commission", "exit_reason"}
	equityHeader = []string{"run_id", "time", "cash", "position_value", "equity", "drawdown"}
	runHeader    = []string{"run_id", "created", "scenario", "termination", "initial_capital",
		"final_equity", "total_return", "annualized_return", "max_drawdown", "sharpe",
		"sortino", "calmar", "trades", "wins", "losses", "win_rate", "profit_factor"}
)

func NewCSV(tradesPath, equityPath, runsPath string) (*CSVJournal, error) {
	j := &CSVJournal{}

	for _, spec := range []struct {
		path   string
		header []string
		dst    **csv.Writer
	}{
		{tradesPath, tradeHeader, &j.trades},
		{equityPath, equityHeader, &j.equity},
		{runsPath, runHeader, &j.runs},
	} {
		f, err := os.Create(spec.path)
		if err != nil {
			j.Close()
			return nil, err
		}
		j.files = append(j.files, f)

		w := csv.NewWriter(f)
		if err := w.Write(spec.header); err != nil {
			j.Close()
			return nil, err
		}
		w.Flush()
		if err := w.Error(); err != nil {
			j.Close()
			return nil, err
		}
		*spec.dst = w
	}

	return j, nil
}

func (j *CSVJournal) RecordTrade(t TradeRecord) error {
	err := j.trades.Write([]string{
		t.RunID,
		t.TradeID,
		t.Side,
		f(t.Units),
		t.EntryTime.Format(time.RFC3339),
		t.ExitTime.Format(time.RFC3339),
		f(t.EntryPrice),
		f(t.ExitPrice),
		f(t.RealizedPL),
		f(t.Commission),
		t.ExitReason,
	})
	if err != nil {
		return err
	}
	j.trades.Flush()
	return j.trades.Error()
}

func (j *CSVJournal) RecordEquity(e EquityRecord) error {
	err := j.equity.Write([]string{
		e.RunID,
		e.Time.Format(time.RFC3339),
		f(e.Cash),
		f(e.PositionValue),
		f(e.Equity),
		f(e.Drawdown),
	})
	if err != nil {
		return err
	}
	j.equity.Flush()
	return j.equity.Error()
}

func (j *CSVJournal) RecordRun(r RunRecord) error {
	err := j.runs.Write([]string{
		r.RunID,
		r.Created.Format(time.RFC3339),
		r.Scenario,
		r.Termination,
		f(r.InitialCapital),
		f(r.FinalEquity),
		f(r.TotalReturn),
		f(r.AnnualizedReturn),
		f(r.MaxDrawdown),
		f(r.Sharpe),
		f(r.Sortino),
		f(r.Calmar),
		strconv.Itoa(r.Trades),
		strconv.Itoa(r.Wins),
		strconv.Itoa(r.Losses),
		f(r.WinRate),
		f(r.ProfitFactor),
	})
	if err != nil {
		return err
	}
	j.runs.Flush()
	return j.runs.Error()
}

func (j *CSVJournal) Close() error {
	var firstErr error
	for _, w := range []*csv.Writer{j.trades, j.equity, j.runs} {
		if w == nil {
			continue
		}
		w.Flush()
		if err := w.Error(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	for _, file := range j.files {
		if err := file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
