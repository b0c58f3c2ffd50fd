// Package portfolio tracks cash, position, trade log, and equity curve for a
// single simulation run. The ledger is owned and mutated exclusively by the
// simulation engine; once a run ends it is frozen and only the read
// accessors remain useful.
package portfolio

import (
	"fmt"
	"time"

	"github.com/rustyeddy/quantsim/market"
)

type Ledger struct {
	initial float64
	cash    float64
	peak    float64
	pos     Position
	open    *Trade
	trades  []Trade
	curve   []EquityPoint
	frozen  bool
}

// NewLedger creates an empty ledger holding only cash.
func NewLedger(initialCapital float64) (*Ledger, error) {
	if initialCapital <= 0 {
		return nil, fmt.Errorf("%w: initial capital must be positive, got %g", market.ErrInvalidInput, initialCapital)
	}
	return &Ledger{
		initial: initialCapital,
		cash:    initialCapital,
		peak:    initialCapital,
	}, nil
}

// Open opens a position. Units must be positive; Side carries the sign.
// Commission is deducted from cash immediately.
func (l *Ledger) Open(id string, side Side, units, price float64, stop, take float64, t time.Time, commission float64) error {
	if l.frozen {
		return fmt.Errorf("ledger is frozen")
	}
	if !l.pos.Flat() {
		return fmt.Errorf("position already open")
	}
	if units <= 0 || price <= 0 {
		return fmt.Errorf("%w: units and price must be positive (units=%g price=%g)", market.ErrInvalidInput, units, price)
	}

	signed := float64(side) * units
	l.cash -= signed*price + commission
	l.pos = Position{Units: signed, AvgEntry: price}

	l.open = &Trade{
		ID:         id,
		Side:       side,
		Units:      units,
		EntryTime:  t,
		EntryPrice: price,
		Stop:       stop,
		Take:       take,
		Commission: commission,
		Open:       true,
	}
	return nil
}

// Close closes the open position at price, appends the finished trade to the
// log, and returns it. Realized P&L comes from the closed trade only, never
// from the equity curve.
func (l *Ledger) Close(price float64, t time.Time, reason ExitReason, commission float64) (Trade, error) {
	if l.frozen {
		return Trade{}, fmt.Errorf("ledger is frozen")
	}
	if l.open == nil || l.pos.Flat() {
		return Trade{}, fmt.Errorf("no open position")
	}

	signed := l.pos.Units
	l.cash += signed*price - commission

	tr := *l.open
	tr.ExitTime = t
	tr.ExitPrice = price
	tr.Commission += commission
	tr.RealizedPL = signed*(price-tr.EntryPrice) - tr.Commission
	tr.ExitReason = reason
	tr.Open = false

	l.pos = Position{}
	l.open = nil
	l.trades = append(l.trades, tr)
	return tr, nil
}

// MarkToMarket values the position at the bar close, appends one equity
// point, and returns it. Cash + position value == equity by construction.
func (l *Ledger) MarkToMarket(bar market.Bar) EquityPoint {
	posValue := l.pos.Units * bar.Close
	equity := l.cash + posValue
	if !l.pos.Flat() {
		l.pos.UnrealizedPL = l.pos.Units * (bar.Close - l.pos.AvgEntry)
	}

	if equity > l.peak {
		l.peak = equity
	}
	dd := 0.0
	if l.peak > 0 && equity < l.peak {
		dd = (equity - l.peak) / l.peak
	}

	ep := EquityPoint{
		Time:          bar.Time,
		Cash:          l.cash,
		PositionValue: posValue,
		Equity:        equity,
		Drawdown:      dd,
	}
	l.curve = append(l.curve, ep)
	return ep
}

// Freeze makes the ledger read-only. Called by the engine when the run ends.
func (l *Ledger) Freeze() { l.frozen = true }

func (l *Ledger) Cash() float64       { return l.cash }
func (l *Ledger) Peak() float64       { return l.peak }
func (l *Ledger) Position() Position  { return l.pos }
func (l *Ledger) Initial() float64    { return l.initial }
func (l *Ledger) Trades() []Trade     { return l.trades }
func (l *Ledger) Curve() []EquityPoint { return l.curve }

// OpenTrade returns a copy of the currently open trade, if any.
func (l *Ledger) OpenTrade() (Trade, bool) {
	if l.open == nil {
		return Trade{}, false
	}
	return *l.open, true
}

// RealizedPL sums realized P&L over the closed-trade log.
func (l *Ledger) RealizedPL() float64 {
	var sum float64
	for _, t := range l.trades {
		sum += t.RealizedPL
	}
	return sum
}

// EquityAt values the ledger at an arbitrary price without recording an
// equity point. Used for previews and never affects the peak.
func (l *Ledger) EquityAt(price float64) float64 {
	return l.cash + l.pos.Units*price
}
