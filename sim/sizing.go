package sim

// SizingPolicy maps current equity, the entry price, and the signal
// strength to position units. It must be a pure function: the engine calls
// it with everything it is allowed to know at the entry bar's close.
type SizingPolicy func(equity, price, strength float64) float64

// FractionalSizing invests a fixed fraction of current equity per entry.
func FractionalSizing(fraction float64) SizingPolicy {
	return func(equity, price, _ float64) float64 {
		if price <= 0 || equity <= 0 || fraction <= 0 {
			return 0
		}
		return equity * fraction / price
	}
}

// StrengthScaledSizing scales a base fraction by signal strength (0-100),
// so a conviction-50 signal commits half of what a conviction-100 one does.
func StrengthScaledSizing(fraction float64) SizingPolicy {
	return func(equity, price, strength float64) float64 {
		if price <= 0 || equity <= 0 || fraction <= 0 {
			return 0
		}
		return equity * fraction * (strength / 100) / price
	}
}
