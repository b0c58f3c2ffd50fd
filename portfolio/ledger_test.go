package portfolio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rustyeddy/quantsim/market"
)

func mkBar(t time.Time, px float64) market.Bar {
	return market.Bar{Time: t, Open: px, High: px, Low: px, Close: px, Volume: 100}
}

func TestNewLedger(t *testing.T) {
	t.Parallel()

	l, err := NewLedger(100000)
	assert.NoError(t, err)
	assert.Equal(t, 100000.0, l.Cash())
	assert.Equal(t, 100000.0, l.Peak())
	assert.True(t, l.Position().Flat())

	_, err = NewLedger(0)
	assert.ErrorIs(t, err, market.ErrInvalidInput)
	_, err = NewLedger(-5)
	assert.ErrorIs(t, err, market.ErrInvalidInput)
}

func TestLongRoundTrip(t *testing.T) {
	t.Parallel()

	t0 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	l, err := NewLedger(100000)
	assert.NoError(t, err)

	assert.NoError(t, l.Open("T-0001", Long, 1000, 100, 95, 110, t0, 0))
	assert.Equal(t, 0.0, l.Cash())
	assert.Equal(t, 1000.0, l.Position().Units)

	// cash + position == equity at every mark
	ep := l.MarkToMarket(mkBar(t0, 102))
	assert.InDelta(t, 102000, ep.Equity, 1e-9)
	assert.InDelta(t, ep.Cash+ep.PositionValue, ep.Equity, 1e-9)

	tr, err := l.Close(105, t0.Add(time.Hour), ExitSignal, 0)
	assert.NoError(t, err)
	assert.InDelta(t, 5000, tr.RealizedPL, 1e-9)
	assert.Equal(t, ExitSignal, tr.ExitReason)
	assert.False(t, tr.Open)
	assert.InDelta(t, 105000, l.Cash(), 1e-9)
	assert.True(t, l.Position().Flat())
	assert.Len(t, l.Trades(), 1)
}

func TestShortRoundTrip(t *testing.T) {
	t.Parallel()

	t0 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	l, err := NewLedger(50000)
	assert.NoError(t, err)

	// short 100 units at 200: cash goes up by the proceeds
	assert.NoError(t, l.Open("T-0001", Short, 100, 200, 210, 180, t0, 0))
	assert.InDelta(t, 70000, l.Cash(), 1e-9)
	assert.Equal(t, -100.0, l.Position().Units)

	ep := l.MarkToMarket(mkBar(t0, 190))
	assert.InDelta(t, 51000, ep.Equity, 1e-9)
	assert.InDelta(t, ep.Cash+ep.PositionValue, ep.Equity, 1e-9)

	tr, err := l.Close(180, t0.Add(time.Hour), ExitTakeProfit, 0)
	assert.NoError(t, err)
	assert.InDelta(t, 2000, tr.RealizedPL, 1e-9)
	assert.InDelta(t, 52000, l.Cash(), 1e-9)
}

func TestCommission(t *testing.T) {
	t.Parallel()

	t0 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	l, err := NewLedger(10000)
	assert.NoError(t, err)

	assert.NoError(t, l.Open("T-0001", Long, 10, 100, 0, 0, t0, 5))
	assert.InDelta(t, 8995, l.Cash(), 1e-9)

	tr, err := l.Close(100, t0.Add(time.Hour), ExitSignal, 5)
	assert.NoError(t, err)
	assert.InDelta(t, 10, tr.Commission, 1e-9)
	assert.InDelta(t, -10, tr.RealizedPL, 1e-9)
	assert.InDelta(t, 9990, l.Cash(), 1e-9)
}

func TestDrawdownTracking(t *testing.T) {
	t.Parallel()

	t0 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	l, err := NewLedger(100000)
	assert.NoError(t, err)

	assert.NoError(t, l.Open("T-0001", Long, 1000, 100, 0, 0, t0, 0))

	ep := l.MarkToMarket(mkBar(t0, 110))
	assert.Zero(t, ep.Drawdown)
	assert.InDelta(t, 110000, l.Peak(), 1e-9)

	ep = l.MarkToMarket(mkBar(t0.Add(time.Hour), 99))
	assert.InDelta(t, -0.10, ep.Drawdown, 1e-9)
	// peak never moves down
	assert.InDelta(t, 110000, l.Peak(), 1e-9)

	// preview never touches the peak or the curve
	eq := l.EquityAt(200)
	assert.InDelta(t, 200000, eq, 1e-9)
	assert.InDelta(t, 110000, l.Peak(), 1e-9)
	assert.Len(t, l.Curve(), 2)
}

func TestGuards(t *testing.T) {
	t.Parallel()

	t0 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	l, err := NewLedger(10000)
	assert.NoError(t, err)

	_, err = l.Close(100, t0, ExitSignal, 0)
	assert.Error(t, err)

	assert.NoError(t, l.Open("T-0001", Long, 1, 100, 0, 0, t0, 0))
	assert.Error(t, l.Open("T-0002", Long, 1, 100, 0, 0, t0, 0))

	fresh, err := NewLedger(1000)
	assert.NoError(t, err)
	assert.ErrorIs(t, fresh.Open("T-0001", Long, 0, 100, 0, 0, t0, 0), market.ErrInvalidInput)

	l.Freeze()
	_, err = l.Close(100, t0, ExitSignal, 0)
	assert.Error(t, err)
	assert.Error(t, l.Open("T-0003", Long, 1, 100, 0, 0, t0, 0))
}

func TestRealizedPL(t *testing.T) {
	t.Parallel()

	t0 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	l, err := NewLedger(100000)
	assert.NoError(t, err)

	assert.NoError(t, l.Open("T-0001", Long, 10, 100, 0, 0, t0, 0))
	_, err = l.Close(110, t0.Add(time.Hour), ExitSignal, 0)
	assert.NoError(t, err)

	assert.NoError(t, l.Open("T-0002", Long, 10, 110, 0, 0, t0.Add(2*time.Hour), 0))
	_, err = l.Close(105, t0.Add(3*time.Hour), ExitStopLoss, 0)
	assert.NoError(t, err)

	assert.InDelta(t, 50, l.RealizedPL(), 1e-9)
}
