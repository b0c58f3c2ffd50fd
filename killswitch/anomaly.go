package killswitch

import (
	"fmt"

	"github.com/rustyeddy/quantsim/market"
)

// AlertLevel grades an anomaly. Alerts are advisory: they never trip the
// monitor's latch.
type AlertLevel int

const (
	Info AlertLevel = iota
	Warning
	Critical
)

func (l AlertLevel) String() string {
	switch l {
	case Critical:
		return "critical"
	case Warning:
		return "warning"
	default:
		return "info"
	}
}

// Alert is one detected market anomaly.
type Alert struct {
	Type    string
	Level   AlertLevel
	Message string
	Value   float64
}

const (
	gapThreshold       = 0.05  // open gap vs previous close
	limitMoveThreshold = 0.098 // intraday move near a 10% limit
	volumeCollapse     = 0.3   // recent volume below 30% of historical
	volumeSpike        = 3.0   // recent volume above 3x historical
	spreadWideningMult = 2.0   // bar spread vs window average
)

// AnomalyScan inspects a recent bar window (oldest first) for gap opens,
// limit-sized moves, volume collapse or spikes, and spread widening. It is
// stateless; the latest bar is the one examined against the rest of the
// window.
func AnomalyScan(window []market.Bar) []Alert {
	if len(window) < 2 {
		return nil
	}

	var alerts []Alert
	last := window[len(window)-1]
	prev := window[len(window)-2]

	if prev.Close != 0 {
		gap := (last.Open - prev.Close) / prev.Close
		if gap > gapThreshold || gap < -gapThreshold {
			alerts = append(alerts, Alert{
				Type:    "gap-open",
				Level:   Warning,
				Message: fmt.Sprintf("open gapped %.2f%% from previous close", gap*100),
				Value:   gap,
			})
		}
	}

	if last.Open != 0 {
		move := (last.Close - last.Open) / last.Open
		if move > limitMoveThreshold || move < -limitMoveThreshold {
			alerts = append(alerts, Alert{
				Type:    "limit-move",
				Level:   Critical,
				Message: fmt.Sprintf("intraday move %.2f%% approaching limit", move*100),
				Value:   move,
			})
		}
	}

	recent := meanVolume(window, 5)
	historical := meanVolume(window, 30)
	if historical > 0 {
		ratio := recent / historical
		if ratio < volumeCollapse {
			alerts = append(alerts, Alert{
				Type:    "volume-collapse",
				Level:   Warning,
				Message: fmt.Sprintf("recent volume only %.1f%% of historical average", ratio*100),
				Value:   ratio,
			})
		} else if ratio > volumeSpike {
			alerts = append(alerts, Alert{
				Type:    "volume-spike",
				Level:   Warning,
				Message: fmt.Sprintf("recent volume %.1f%% of historical average", ratio*100),
				Value:   ratio,
			})
		}
	}

	if avg := meanSpread(window); avg > 0 {
		ratio := last.SpreadProxy() / avg
		if ratio >= spreadWideningMult {
			alerts = append(alerts, Alert{
				Type:    "spread-widening",
				Level:   Warning,
				Message: fmt.Sprintf("spread %.1fx the window average", ratio),
				Value:   ratio,
			})
		}
	}

	return alerts
}

func meanVolume(window []market.Bar, n int) float64 {
	start := 0
	if len(window) > n {
		start = len(window) - n
	}
	tail := window[start:]
	if len(tail) == 0 {
		return 0
	}
	sum := 0.0
	for _, b := range tail {
		sum += b.Volume
	}
	return sum / float64(len(tail))
}

func meanSpread(window []market.Bar) float64 {
	if len(window) == 0 {
		return 0
	}
	sum := 0.0
	for _, b := range window {
		sum += b.SpreadProxy()
	}
	return sum / float64(len(window))
}
