package stats

import (
	"math"

	"github.com/rustyeddy/quantsim/portfolio"
)

// TradeSummary aggregates the closed-trade log. These figures come straight
// from realized P&L per trade, never from the equity curve.
type TradeSummary struct {
	Total  int
	Wins   int
	Losses int

	WinRate      float64
	ProfitFactor float64 // gross wins / |gross losses|; +Inf with wins and no losses
	AvgWin       float64
	AvgLoss      float64
	NetPL        float64
}

// TradeStats computes the summary over closed trades; open trades are
// ignored.
func TradeStats(trades []portfolio.Trade) TradeSummary {
	var s TradeSummary
	var grossWin, grossLoss float64

	for _, t := range trades {
		if t.Open {
			continue
		}
		s.Total++
		s.NetPL += t.RealizedPL
		switch {
		case t.RealizedPL > 0:
			s.Wins++
			grossWin += t.RealizedPL
		case t.RealizedPL < 0:
			s.Losses++
			grossLoss += t.RealizedPL
		}
	}

	if s.Total > 0 {
		s.WinRate = float64(s.Wins) / float64(s.Total)
	}
	if s.Wins > 0 {
		s.AvgWin = grossWin / float64(s.Wins)
	}
	if s.Losses > 0 {
		s.AvgLoss = grossLoss / float64(s.Losses)
		s.ProfitFactor = grossWin / -grossLoss
	} else if grossWin > 0 {
		s.ProfitFactor = math.Inf(1)
	}
	return s
}

// Summary is the full per-run performance report consumed by journaling and
// the stress sweep.
type Summary struct {
	TotalReturn      float64
	AnnualizedReturn float64
	MaxDrawdown      float64
	Sharpe           float64
	Sortino          float64
	Calmar           float64
	Trades           TradeSummary
}

// Summarize builds a Summary from a finished run's equity curve and trade
// log. barsPerYear sets the annualization factor (e.g. 252 for daily bars).
func Summarize(curve []portfolio.EquityPoint, trades []portfolio.Trade, initialCapital, barsPerYear float64) Summary {
	rets := EquityReturns(curve)

	total := 0.0
	if len(curve) > 0 && initialCapital > 0 {
		total = (curve[len(curve)-1].Equity - initialCapital) / initialCapital
	}

	return Summary{
		TotalReturn:      total,
		AnnualizedReturn: AnnualizedReturn(total, len(curve), barsPerYear),
		MaxDrawdown:      MaxDrawdown(curve),
		Sharpe:           Sharpe(rets, barsPerYear),
		Sortino:          Sortino(rets, 0, barsPerYear),
		Calmar:           Calmar(rets, barsPerYear),
		Trades:           TradeStats(trades),
	}
}
