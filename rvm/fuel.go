package rvm

// FuelCosts is the injectable cost table ("policy, not correctness"). The
// executor reads only Base: each OpConsumeFuel it executes costs Base times
// the instruction's Aux. Call, MemoryGrow and TableGrow are not read by the
// executor, and the translate package emits no OpConsumeFuel, so only
// hand-built IR that contains the marker is metered. A zero-value FuelCosts
// makes every charge 0 (OutOfFuel never fires).
type FuelCosts struct {
	Base       uint64 // multiplied by each OpConsumeFuel's Aux
	Call       uint64
	MemoryGrow uint64
	TableGrow  uint64
}

// DefaultFuelCosts sets every field to 1, so an OpConsumeFuel costs its
// Aux; only Base takes effect.
func DefaultFuelCosts() FuelCosts {
	return FuelCosts{Base: 1, Call: 1, MemoryGrow: 1, TableGrow: 1}
}

// consumeFuel subtracts amount from fuel, saturating at zero rather than
// wrapping, and reports whether the executor is now out of fuel.
func consumeFuel(fuel *uint64, amount uint64) (exhausted bool) {
	if amount >= *fuel {
		*fuel = 0
		return true
	}
	*fuel -= amount
	return false
}
