package rvm

import "github.com/wippyai/wasm-runtime/store"

// Config bundles the executor's injected policy knobs: resource limits and
// fuel pricing. A zero-value Config is usable — DefaultConfig fills in the
// conservative defaults a standalone embedder would otherwise have to spell
// out by hand.
type Config struct {
	Limits    store.Limits
	FuelCosts FuelCosts
	// FuelLimit is the starting fuel balance for a Run call; 0 disables
	// metering (OutOfFuel can never occur).
	FuelLimit uint64
}

// DefaultConfig returns metering disabled (FuelLimit 0) with conservative
// stack/call-depth ceilings — metering is opt-in per spec.md §7, resource
// ceilings are not.
func DefaultConfig() Config {
	return Config{
		Limits:    store.DefaultLimits(),
		FuelCosts: DefaultFuelCosts(),
		FuelLimit: 0,
	}
}
