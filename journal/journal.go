// Package journal persists finished runs for audit: the trade log, the
// equity curve, and a per-run summary. CSV is the interchange format for
// audit trails; SQLite is the queryable store.
package journal

import (
	"time"

	"github.com/rustyeddy/quantsim/sim"
	"github.com/rustyeddy/quantsim/stats"
)

type TradeRecord struct {
	RunID      string
	TradeID    string
	Side       string
	Units      float64
	EntryTime  time.Time
	ExitTime   time.Time
	EntryPrice float64
	ExitPrice  float64
	RealizedPL float64
	Commission float64
	ExitReason string
}

type EquityRecord struct {
	RunID         string
	Time          time.Time
	Cash          float64
	PositionValue float64
	Equity        float64
	Drawdown      float64
}

type RunRecord struct {
	RunID       string
	Created     time.Time
	Scenario    string
	Termination string

	InitialCapital float64
	FinalEquity    float64

	TotalReturn      float64
	AnnualizedReturn float64
	MaxDrawdown      float64
	Sharpe           float64
	Sortino          float64
	Calmar           float64

	Trades       int
	Wins         int
	Losses       int
	WinRate      float64
	ProfitFactor float64
}

type Journal interface {
	RecordRun(RunRecord) error
	RecordTrade(TradeRecord) error
	RecordEquity(EquityRecord) error
	Close() error
}

// Record writes a whole finished run: the summary row, every closed trade,
// and every equity point.
func Record(j Journal, res sim.Result, sum stats.Summary, scenarioName string, initialCapital float64) error {
	final := initialCapital
	if n := len(res.EquityCurve); n > 0 {
		final = res.EquityCurve[n-1].Equity
	}

	run := RunRecord{
		RunID:            res.RunID,
		Created:          time.Now().UTC(),
		Scenario:         scenarioName,
		Termination:      string(res.Termination),
		InitialCapital:   initialCapital,
		FinalEquity:      final,
		TotalReturn:      sum.TotalReturn,
		AnnualizedReturn: sum.AnnualizedReturn,
		MaxDrawdown:      sum.MaxDrawdown,
		Sharpe:           sum.Sharpe,
		Sortino:          sum.Sortino,
		Calmar:           sum.Calmar,
		Trades:           sum.Trades.Total,
		Wins:             sum.Trades.Wins,
		Losses:           sum.Trades.Losses,
		WinRate:          sum.Trades.WinRate,
		ProfitFactor:     sum.Trades.ProfitFactor,
	}
	if err := j.RecordRun(run); err != nil {
		return err
	}

	for _, t := range res.Trades {
		rec := TradeRecord{
			RunID:      res.RunID,
			TradeID:    t.ID,
			Side:       t.Side.String(),
			Units:      t.Units,
			EntryTime:  t.EntryTime,
			ExitTime:   t.ExitTime,
			EntryPrice: t.EntryPrice,
			ExitPrice:  t.ExitPrice,
			RealizedPL: t.RealizedPL,
			Commission: t.Commission,
			ExitReason: string(t.ExitReason),
		}
		if err := j.RecordTrade(rec); err != nil {
			return err
		}
	}

	for _, p := range res.EquityCurve {
		rec := EquityRecord{
			RunID:         res.RunID,
			Time:          p.Time,
			Cash:          p.Cash,
			PositionValue: p.PositionValue,
			Equity:        p.Equity,
			Drawdown:      p.Drawdown,
		}
		if err := j.RecordEquity(rec); err != nil {
			return err
		}
	}
	return nil
}
