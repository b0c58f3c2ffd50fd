// Package sim drives a price series and a signal series through a portfolio
// ledger, bar by bar, and emits a finished run.
//
// The engine is strictly sequential: each bar's decisions depend on the
// cumulative state of the previous bar (drawdown from peak, the open
// position), so a single run must never be parallelized. Independent runs
// share nothing and may execute concurrently.
//
// The central correctness invariant is no look-ahead: a decision at bar i
// uses only bars[0..i]. Entries fill at the bar close; stops and targets
// are checked against the current bar's high/low and fill at the stop or
// target price, never at a more favorable one.
package sim

import (
	"fmt"

	"github.com/rustyeddy/quantsim/internal/id"
	"github.com/rustyeddy/quantsim/killswitch"
	"github.com/rustyeddy/quantsim/market"
	"github.com/rustyeddy/quantsim/portfolio"
	"github.com/rustyeddy/quantsim/riskzone"
	"github.com/rustyeddy/quantsim/signal"
)

// Termination records why a run stopped.
type Termination string

const (
	TermEndOfSeries   Termination = "end-of-series"
	TermDrawdownLimit Termination = "drawdown-limit-breached"
	TermKillSwitch    Termination = "kill-switch-tripped"
)

// StopPlanner supplies stop/take levels for a new position at entry time.
// history is every bar up to and including the entry bar.
type StopPlanner interface {
	PlanLevels(history []market.Bar, side portfolio.Side, entry float64) riskzone.Levels
}

// Config is the full engine configuration, threaded explicitly through the
// constructor. There is no process-wide state.
type Config struct {
	InitialCapital float64

	// MaxDrawdownLimit halts the run when drawdown from peak exceeds this
	// fraction (0.20 = stop at -20%). 0 disables the check.
	MaxDrawdownLimit float64

	// CommissionRate is charged per side on traded notional.
	CommissionRate float64

	// CloseAtEnd closes any open position at the final bar's close with
	// reason end-of-run.
	CloseAtEnd bool

	// Sizing converts equity and signal strength into units at entry.
	// Required.
	Sizing SizingPolicy

	// Planner supplies stop/take levels at entry. Optional; nil means no
	// protective levels.
	Planner StopPlanner

	// KillSwitch, when set, runs a latched monitor inside the loop: each
	// bar is evaluated before any other exit logic, and a trip closes the
	// position and ends the run. The engine owns the latch for the
	// duration of the run.
	KillSwitch *killswitch.Thresholds
}

// Result is the finished run handed to reporting collaborators. Trade IDs
// are sequential within the run so identical inputs produce byte-identical
// trade logs; RunID alone is freshly generated per run.
type Result struct {
	RunID       string
	Trades      []portfolio.Trade
	EquityCurve []portfolio.EquityPoint
	Termination Termination
	Tripped     []killswitch.TripReason // non-nil only for TermKillSwitch
}

type Engine struct {
	cfg Config
}

func New(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Run replays the series through a fresh ledger. It fails the entire run on
// malformed or misaligned input; a silently skipped bar would break the
// cash + position == equity invariant.
func (e *Engine) Run(bars []market.Bar, sigs []signal.Signal) (Result, error) {
	if e.cfg.InitialCapital <= 0 {
		return Result{}, fmt.Errorf("%w: initial capital must be positive, got %g",
			market.ErrInvalidInput, e.cfg.InitialCapital)
	}
	if e.cfg.Sizing == nil {
		return Result{}, fmt.Errorf("%w: sizing policy is required", market.ErrInvalidInput)
	}
	if err := market.ValidateSeries(bars); err != nil {
		return Result{}, err
	}
	if err := signal.Validate(sigs); err != nil {
		return Result{}, err
	}
	if err := signal.CheckAligned(bars, sigs); err != nil {
		return Result{}, err
	}

	ledger, err := portfolio.NewLedger(e.cfg.InitialCapital)
	if err != nil {
		return Result{}, err
	}

	var monitor *killswitch.Monitor
	if e.cfg.KillSwitch != nil {
		monitor = killswitch.NewMonitor(*e.cfg.KillSwitch)
	}

	res := Result{RunID: id.New()}
	nextTrade := 1
	spreadSum := 0.0 // running sum of spread proxies for the monitor

	for i, bar := range bars {
		spreadSum += bar.SpreadProxy()

		// 1) Latched kill-switch, highest priority of all exits.
		if monitor != nil {
			dec := monitor.Evaluate(e.monitorInput(ledger, bars, i, spreadSum))
			if dec.Tripped {
				if err := e.closeOpen(ledger, bar.Close, bar, portfolio.ExitKillSwitch); err != nil {
					return Result{}, err
				}
				ledger.MarkToMarket(bar)
				res.Termination = TermKillSwitch
				res.Tripped = dec.Reasons
				break
			}
		}

		// 2) Protective exits on this bar's range: stop before take.
		if tr, ok := ledger.OpenTrade(); ok {
			if px, reason, hit := checkExit(tr, bar); hit {
				if err := e.closeOpen(ledger, px, bar, reason); err != nil {
					return Result{}, err
				}
			}
		}

		// 3) Signal-driven exit, then entry while flat.
		sig := sigs[i]
		if tr, ok := ledger.OpenTrade(); ok {
			if exitRequested(sig.Direction, tr.Side) {
				if err := e.closeOpen(ledger, bar.Close, bar, portfolio.ExitSignal); err != nil {
					return Result{}, err
				}
			}
		}
		if ledger.Position().Flat() {
			if side, ok := entrySide(sig.Direction); ok {
				if err := e.openPosition(ledger, bars, i, side, sig.Strength, &nextTrade); err != nil {
					return Result{}, err
				}
			}
		}

		// 4) Equity update, then drawdown enforcement.
		ep := ledger.MarkToMarket(bar)
		if e.cfg.MaxDrawdownLimit > 0 && ep.Drawdown <= -e.cfg.MaxDrawdownLimit {
			if err := e.closeOpen(ledger, bar.Close, bar, portfolio.ExitKillSwitch); err != nil {
				return Result{}, err
			}
			res.Termination = TermDrawdownLimit
			break
		}
	}

	if res.Termination == "" {
		res.Termination = TermEndOfSeries
		if e.cfg.CloseAtEnd {
			last := bars[len(bars)-1]
			if err := e.closeOpen(ledger, last.Close, last, portfolio.ExitEndOfRun); err != nil {
				return Result{}, err
			}
		}
	}

	ledger.Freeze()
	res.Trades = ledger.Trades()
	res.EquityCurve = ledger.Curve()
	return res, nil
}

func (e *Engine) openPosition(ledger *portfolio.Ledger, bars []market.Bar, i int, side portfolio.Side, strength float64, nextTrade *int) error {
	entry := bars[i].Close
	units := e.cfg.Sizing(ledger.EquityAt(entry), entry, strength)
	if units <= 0 {
		return nil
	}

	var lv riskzone.Levels
	if e.cfg.Planner != nil {
		lv = e.cfg.Planner.PlanLevels(bars[:i+1], side, entry)
	}

	tradeID := fmt.Sprintf("T-%04d", *nextTrade)
	commission := e.cfg.CommissionRate * units * entry
	if err := ledger.Open(tradeID, side, units, entry, lv.Stop, lv.Takes[0], bars[i].Time, commission); err != nil {
		return err
	}
	*nextTrade++
	return nil
}

func (e *Engine) closeOpen(ledger *portfolio.Ledger, price float64, bar market.Bar, reason portfolio.ExitReason) error {
	tr, ok := ledger.OpenTrade()
	if !ok {
		return nil
	}
	commission := e.cfg.CommissionRate * tr.Units * price
	_, err := ledger.Close(price, bar.Time, reason, commission)
	return err
}

// monitorInput assembles the kill-switch evaluation sample for bar i.
// Drawdown previews equity at the current close against the running peak;
// the spread ratio compares this bar to the average of all bars seen so
// far; the volume window holds the most recent bars including this one.
func (e *Engine) monitorInput(ledger *portfolio.Ledger, bars []market.Bar, i int, spreadSum float64) killswitch.Input {
	equity := ledger.EquityAt(bars[i].Close)
	dd := 0.0
	if peak := ledger.Peak(); peak > 0 && equity < peak {
		dd = (equity - peak) / peak
	}

	avgSpread := spreadSum / float64(i+1)
	ratio := 0.0
	if avgSpread > 0 {
		ratio = bars[i].SpreadProxy() / avgSpread
	}

	lookback := e.cfg.KillSwitch.VolumeLookback
	if lookback <= 0 {
		lookback = 5
	}
	start := i + 1 - lookback
	if start < 0 {
		start = 0
	}
	window := make([]float64, 0, i+1-start)
	for _, b := range bars[start : i+1] {
		window = append(window, b.Volume)
	}

	return killswitch.Input{Drawdown: dd, SpreadRatio: ratio, VolumeWindow: window}
}

// checkExit evaluates stop/take against the bar's high/low. If both are
// breached within the same bar the stop wins: capital preservation over
// profit-taking.
func checkExit(tr portfolio.Trade, bar market.Bar) (exitPx float64, reason portfolio.ExitReason, hit bool) {
	hasStop := tr.Stop != 0
	hasTake := tr.Take != 0

	var stopHit, takeHit bool
	switch tr.Side {
	case portfolio.Long:
		stopHit = hasStop && bar.Low <= tr.Stop
		takeHit = hasTake && bar.High >= tr.Take
	case portfolio.Short:
		stopHit = hasStop && bar.High >= tr.Stop
		takeHit = hasTake && bar.Low <= tr.Take
	}

	switch {
	case stopHit:
		return tr.Stop, portfolio.ExitStopLoss, true
	case takeHit:
		return tr.Take, portfolio.ExitTakeProfit, true
	}
	return 0, "", false
}

func exitRequested(d signal.Direction, side portfolio.Side) bool {
	return (d == signal.LongExit && side == portfolio.Long) ||
		(d == signal.ShortExit && side == portfolio.Short)
}

func entrySide(d signal.Direction) (portfolio.Side, bool) {
	switch d {
	case signal.LongEntry:
		return portfolio.Long, true
	case signal.ShortEntry:
		return portfolio.Short, true
	}
	return 0, false
}
