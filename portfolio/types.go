package portfolio

import "time"

// Side: +1 long, -1 short
type Side int8

const (
	Long  Side = +1
	Short Side = -1
)

func (s Side) String() string {
	if s == Short {
		return "short"
	}
	return "long"
}

// ExitReason records why a trade was closed. The set is closed; the engine
// resolves conflicts in priority order kill-switch > stop-loss >
// take-profit > signal.
type ExitReason string

const (
	ExitSignal     ExitReason = "signal"
	ExitStopLoss   ExitReason = "stop-loss"
	ExitTakeProfit ExitReason = "take-profit"
	ExitKillSwitch ExitReason = "kill-switch"
	ExitEndOfRun   ExitReason = "end-of-run"
)

// Position is the ledger's open exposure. Units is signed: positive long,
// negative short, zero flat.
type Position struct {
	Units        float64
	AvgEntry     float64
	UnrealizedPL float64
}

func (p Position) Flat() bool { return p.Units == 0 }

// Trade is one round trip. While open, exit fields are zero; once closed the
// record is immutable.
type Trade struct {
	ID         string
	Side       Side
	Units      float64 // always positive; Side carries the sign
	EntryTime  time.Time
	EntryPrice float64
	Stop       float64 // 0 = none
	Take       float64 // 0 = none

	ExitTime   time.Time
	ExitPrice  float64
	RealizedPL float64
	Commission float64 // entry + exit, account currency
	ExitReason ExitReason
	Open       bool
}

// EquityPoint is one mark-to-market snapshot, produced once per processed
// bar. Drawdown is the fractional decline from the running equity peak and
// is always <= 0.
type EquityPoint struct {
	Time          time.Time
	Cash          float64
	PositionValue float64
	Equity        float64
	Drawdown      float64
}
