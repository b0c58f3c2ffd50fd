package killswitch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateTripConditions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      Input
		reasons []TripReason
	}{
		{
			name: "calm market",
			in:   Input{Drawdown: -0.05, SpreadRatio: 1.2, VolumeWindow: []float64{10, 10, 10, 10, 10}},
		},
		{
			name:    "drawdown at limit",
			in:      Input{Drawdown: -0.20, SpreadRatio: 1.0, VolumeWindow: []float64{10}},
			reasons: []TripReason{ReasonDrawdown},
		},
		{
			name:    "spread widening",
			in:      Input{Drawdown: 0, SpreadRatio: 3.0, VolumeWindow: []float64{10}},
			reasons: []TripReason{ReasonSpread},
		},
		{
			name:    "volume halt",
			in:      Input{Drawdown: 0, SpreadRatio: 1.0, VolumeWindow: []float64{0, 0, 0, 0, 0}},
			reasons: []TripReason{ReasonVolume},
		},
		{
			name: "volume halt needs the whole lookback dry",
			in:   Input{VolumeWindow: []float64{0, 0, 0, 0, 5}},
		},
		{
			name:    "all three at once, evaluation order",
			in:      Input{Drawdown: -0.30, SpreadRatio: 5.0, VolumeWindow: []float64{0, 0, 0, 0, 0}},
			reasons: []TripReason{ReasonDrawdown, ReasonSpread, ReasonVolume},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMonitor(DefaultThresholds())
			d := m.Evaluate(tt.in)
			assert.Equal(t, len(tt.reasons) > 0, d.Tripped)
			assert.Equal(t, tt.reasons, d.Reasons)
		})
	}
}

func TestVolumeLookbackWindow(t *testing.T) {
	t.Parallel()

	m := NewMonitor(Thresholds{VolumeLookback: 3})

	// older bars carry volume but the last 3 are dry
	d := m.Evaluate(Input{VolumeWindow: []float64{100, 100, 0, 0, 0}})
	assert.True(t, d.Tripped)
	assert.Equal(t, []TripReason{ReasonVolume}, d.Reasons)
}

func TestLatchPersists(t *testing.T) {
	t.Parallel()

	m := NewMonitor(DefaultThresholds())
	assert.Equal(t, Active, m.State())

	d := m.Evaluate(Input{Drawdown: -0.25})
	assert.True(t, d.Tripped)
	assert.Equal(t, Tripped, m.State())

	// perfectly healthy input cannot un-trip a latched monitor
	d = m.Evaluate(Input{Drawdown: 0, SpreadRatio: 1.0, VolumeWindow: []float64{10, 10, 10}})
	assert.True(t, d.Tripped)
	assert.Equal(t, []TripReason{ReasonDrawdown}, d.Reasons)
}

func TestReset(t *testing.T) {
	t.Parallel()

	m := NewMonitor(DefaultThresholds())
	m.Evaluate(Input{SpreadRatio: 10})
	assert.Equal(t, Tripped, m.State())

	m.Reset()
	assert.Equal(t, Active, m.State())

	d := m.Evaluate(Input{Drawdown: -0.01, SpreadRatio: 1.0, VolumeWindow: []float64{5}})
	assert.False(t, d.Tripped)
	assert.Empty(t, d.Reasons)
}

func TestDisabledConditions(t *testing.T) {
	t.Parallel()

	// zeroed thresholds disable drawdown and spread checks entirely
	m := NewMonitor(Thresholds{})
	d := m.Evaluate(Input{Drawdown: -0.99, SpreadRatio: 100})
	assert.False(t, d.Tripped)
}
