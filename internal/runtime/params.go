// Package runtime executes compiled network programs with a deterministic
// fixed-step engine. Given the same program and seed, two runs produce
// byte-identical spike sequences.
package runtime

import "fmt"

// LIFParams holds leaky integrate-and-fire membrane parameters. Times are
// nanoseconds, potentials millivolts, resistance megaohms, capacitance
// nanofarads.
type LIFParams struct {
	TauMNS   int64
	VRest    float64
	VReset   float64
	VThresh  float64
	RefracNS int64
	RM       float64
	CM       float64
}

// DefaultLIFParams returns the stock cortical-neuron parameter set used
// for neurons a module references but never declares.
func DefaultLIFParams() LIFParams {
	return LIFParams{
		TauMNS:   20_000_000,
		VRest:    -70,
		VReset:   -75,
		VThresh:  -55,
		RefracNS: 2_000_000,
		RM:       10,
		CM:       1,
	}
}

// Validate rejects parameter sets the engine cannot integrate.
func (p LIFParams) Validate() error {
	if p.TauMNS <= 0 {
		return fmt.Errorf("lif: tau_m must be > 0, got %d", p.TauMNS)
	}
	if p.VThresh <= p.VRest {
		return fmt.Errorf("lif: v_thresh (%g) must be > v_rest (%g)", p.VThresh, p.VRest)
	}
	if p.RM <= 0 || p.CM <= 0 {
		return fmt.Errorf("lif: r_m and c_m must be > 0, got %g and %g", p.RM, p.CM)
	}
	if p.RefracNS < 0 {
		return fmt.Errorf("lif: t_refrac must be >= 0, got %d", p.RefracNS)
	}
	return nil
}

// STDPParams holds the pair-based spike-timing-dependent plasticity rule.
type STDPParams struct {
	APlus      float64
	AMinus     float64
	TauPlusNS  int64
	TauMinusNS int64
	WMin       float64
	WMax       float64
}

// Validate rejects rules the plasticity step cannot apply.
func (p STDPParams) Validate() error {
	if p.TauPlusNS <= 0 || p.TauMinusNS <= 0 {
		return fmt.Errorf("stdp: time constants must be > 0, got %d and %d", p.TauPlusNS, p.TauMinusNS)
	}
	if p.WMin > p.WMax {
		return fmt.Errorf("stdp: w_min (%g) must be <= w_max (%g)", p.WMin, p.WMax)
	}
	return nil
}

// DefaultSeed is used when a program does not carry an explicit RNG seed.
const DefaultSeed uint64 = 42

// SimParams is the fixed-step simulation control block.
type SimParams struct {
	DtNS             int64
	DurationNS       int64
	RecordPotentials bool
	Seed             uint64
}

// Steps returns the number of integration steps in the horizon. A horizon
// that is not a multiple of dt is truncated, never rounded up.
func (p SimParams) Steps() int64 {
	return p.DurationNS / p.DtNS
}

// Validate rejects control blocks the engine cannot run.
func (p SimParams) Validate() error {
	if p.DtNS <= 0 {
		return fmt.Errorf("sim: dt must be > 0, got %d", p.DtNS)
	}
	if p.DurationNS <= 0 {
		return fmt.Errorf("sim: duration must be > 0, got %d", p.DurationNS)
	}
	return nil
}
