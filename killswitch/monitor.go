// Package killswitch implements the latched emergency-stop monitor. A
// Monitor is a two-state machine (Active, Tripped): once any trip condition
// fires it stays tripped, reporting the original reasons, until the owner
// calls Reset. A momentary recovery can never silently resume trading.
//
// Evaluate itself is pure with respect to market history: the caller passes
// the accumulated drawdown, spread ratio, and volume window explicitly. The
// latch is the only state, and it belongs to exactly one caller; share a
// Monitor across goroutines only with external synchronization.
package killswitch

// Thresholds configures the independent trip conditions. There is no
// package-level default in effect anywhere; every Monitor is constructed
// with an explicit value.
type Thresholds struct {
	// MaxDrawdown trips when drawdown from peak reaches this fraction
	// (0.20 = trip at -20%).
	MaxDrawdown float64

	// SpreadMultiple trips when the current spread is this many times the
	// normal spread.
	SpreadMultiple float64

	// VolumeLookback is how many recent bars of the supplied volume window
	// are summed for the market-halt check.
	VolumeLookback int
}

// DefaultThresholds mirrors the monitoring defaults: -20% drawdown, 3x
// spread, 5-bar volume lookback.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MaxDrawdown:    0.20,
		SpreadMultiple: 3.0,
		VolumeLookback: 5,
	}
}

// TripReason identifies which condition fired. All firing reasons are
// reported, in evaluation order, not just the first.
type TripReason string

const (
	ReasonDrawdown TripReason = "drawdown-limit"
	ReasonSpread   TripReason = "spread-widening"
	ReasonVolume   TripReason = "volume-halt"
)

// Input is one evaluation sample. Drawdown is a fraction <= 0 (e.g. -0.25
// for a 25% decline). SpreadRatio is current spread over normal spread.
// VolumeWindow holds recent per-bar volumes, oldest first; only the last
// VolumeLookback entries are considered.
type Input struct {
	Drawdown     float64
	SpreadRatio  float64
	VolumeWindow []float64
}

// Decision is the evaluation outcome. Tripped=true requires action from the
// caller; it is the load-bearing signal, not an exceptional condition.
type Decision struct {
	Tripped bool
	Reasons []TripReason
}

type State int

const (
	Active State = iota
	Tripped
)

func (s State) String() string {
	if s == Tripped {
		return "tripped"
	}
	return "active"
}

type Monitor struct {
	th      Thresholds
	state   State
	reasons []TripReason
}

func NewMonitor(th Thresholds) *Monitor {
	return &Monitor{th: th}
}

func (m *Monitor) State() State { return m.state }

// Evaluate checks all trip conditions. Once tripped, it keeps returning the
// original triggering reasons regardless of input.
func (m *Monitor) Evaluate(in Input) Decision {
	if m.state == Tripped {
		return Decision{Tripped: true, Reasons: m.reasons}
	}

	var reasons []TripReason

	if m.th.MaxDrawdown > 0 && in.Drawdown <= -m.th.MaxDrawdown {
		reasons = append(reasons, ReasonDrawdown)
	}
	if m.th.SpreadMultiple > 0 && in.SpreadRatio >= m.th.SpreadMultiple {
		reasons = append(reasons, ReasonSpread)
	}
	if n := len(in.VolumeWindow); n > 0 {
		start := 0
		if m.th.VolumeLookback > 0 && n > m.th.VolumeLookback {
			start = n - m.th.VolumeLookback
		}
		sum := 0.0
		for _, v := range in.VolumeWindow[start:] {
			sum += v
		}
		if sum == 0 {
			reasons = append(reasons, ReasonVolume)
		}
	}

	if len(reasons) > 0 {
		m.state = Tripped
		m.reasons = reasons
		return Decision{Tripped: true, Reasons: reasons}
	}
	return Decision{}
}

// Reset returns a tripped monitor to Active. This is deliberately a separate
// operation: the monitor never un-trips itself.
func (m *Monitor) Reset() {
	m.state = Active
	m.reasons = nil
}
