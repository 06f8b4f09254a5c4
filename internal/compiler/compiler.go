// Package compiler lowers verified, canonicalized modules into executable
// runtime programs.
package compiler

import (
	"fmt"
	"log/slog"

	"github.com/spikeworks/nir/internal/ir"
	"github.com/spikeworks/nir/internal/passes"
	"github.com/spikeworks/nir/internal/runtime"
	"github.com/spikeworks/nir/internal/schema"
	"github.com/spikeworks/nir/internal/verify"
)

// Error reports a module the lowering rules reject.
type Error struct {
	Op     string
	Reason string
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("compile: %s", e.Reason)
	}
	return fmt.Sprintf("compile: %s: %s", e.Op, e.Reason)
}

// CompileWithPasses is the full pipeline: verify, run the default rewrite
// passes, then lower. This is what the CLI calls.
func CompileWithPasses(reg *schema.Registry, logger *slog.Logger, m *ir.Module) (*runtime.Program, error) {
	if err := verify.Verify(reg, m); err != nil {
		return nil, err
	}
	canonical, err := passes.Default(reg, logger).Run(m)
	if err != nil {
		return nil, err
	}
	return Compile(reg, canonical)
}

// Compile lowers a canonical module. It expects exactly one
// runtime.simulate.run op, at most one plasticity rule, and no aggregate
// connectivity ops (canonicalization must have expanded them).
//
// Neurons are materialized as a dense table covering ids 0 through the
// highest id any synapse or stimulus references. Ids the module never
// declares parameters for get the stock parameter set.
func Compile(reg *schema.Registry, m *ir.Module) (*runtime.Program, error) {
	var (
		lifOp    *ir.Operation
		stdpOp   *ir.Operation
		simOp    *ir.Operation
		synapses []runtime.Synapse
		stimuli  []runtime.Stimulus
		maxID    int64 = -1
	)

	touch := func(id uint32) {
		if int64(id) > maxID {
			maxID = int64(id)
		}
	}

	for _, op := range m.Ops {
		switch {
		case op.Dialect == "neuron" && op.Name == "lif":
			if lifOp != nil {
				return nil, &Error{Op: op.Header(), Reason: "multiple neuron parameter ops"}
			}
			lifOp = op

		case op.Dialect == "plasticity" && op.Name == "stdp":
			if stdpOp != nil {
				return nil, &Error{Op: op.Header(), Reason: "multiple plasticity ops"}
			}
			stdpOp = op

		case op.Is("connectivity", "layer_fully_connected", 1):
			return nil, &Error{Op: op.Header(), Reason: "aggregate connectivity must be canonicalized before lowering"}

		case op.Is("connectivity", "synapse_connect", 1):
			syn, err := lowerSynapse(op)
			if err != nil {
				return nil, err
			}
			touch(syn.Pre)
			touch(syn.Post)
			synapses = append(synapses, syn)

		case op.Is("stimulus", "poisson", 1), op.Is("stimulus", "dc", 1):
			stim, neuron, err := lowerStimulus(op)
			if err != nil {
				return nil, err
			}
			touch(neuron)
			stimuli = append(stimuli, stim)

		case op.Is("runtime", "simulate.run", 1):
			if simOp != nil {
				return nil, &Error{Op: op.Header(), Reason: "multiple simulation control ops"}
			}
			simOp = op

		default:
			return nil, &Error{Op: op.Header(), Reason: "no lowering rule"}
		}
	}

	if simOp == nil {
		return nil, &Error{Reason: "module has no runtime.simulate.run op"}
	}

	sim, err := lowerSim(simOp)
	if err != nil {
		return nil, err
	}

	neuronParams := runtime.DefaultLIFParams()
	if lifOp != nil {
		neuronParams, err = lowerLIF(lifOp)
		if err != nil {
			return nil, err
		}
	}
	neurons := make([]runtime.LIFParams, maxID+1)
	for i := range neurons {
		neurons[i] = neuronParams
	}

	prog := &runtime.Program{
		Neurons:  neurons,
		Synapses: synapses,
		Stimuli:  stimuli,
		Sim:      sim,
	}
	if stdpOp != nil {
		rule, err := lowerSTDP(stdpOp)
		if err != nil {
			return nil, err
		}
		prog.STDP = &rule
	}
	if err := prog.Validate(); err != nil {
		return nil, err
	}
	return prog, nil
}

func lowerLIF(op *ir.Operation) (runtime.LIFParams, error) {
	var p runtime.LIFParams
	var err error
	if p.TauMNS, err = op.DurationNS("tau_m"); err != nil {
		return p, err
	}
	if p.VRest, err = op.FloatVal("v_rest"); err != nil {
		return p, err
	}
	if p.VReset, err = op.FloatVal("v_reset"); err != nil {
		return p, err
	}
	if p.VThresh, err = op.FloatVal("v_thresh"); err != nil {
		return p, err
	}
	if p.RM, err = op.FloatVal("r_m"); err != nil {
		return p, err
	}
	if p.CM, err = op.FloatVal("c_m"); err != nil {
		return p, err
	}
	if _, ok := op.Get("t_refrac"); ok {
		if p.RefracNS, err = op.DurationNS("t_refrac"); err != nil {
			return p, err
		}
	} else {
		p.RefracNS = schema.DefaultRefractoryNS
	}
	return p, nil
}

func lowerSTDP(op *ir.Operation) (runtime.STDPParams, error) {
	var p runtime.STDPParams
	var err error
	if p.APlus, err = op.FloatVal("a_plus"); err != nil {
		return p, err
	}
	if p.AMinus, err = op.FloatVal("a_minus"); err != nil {
		return p, err
	}
	if p.TauPlusNS, err = op.DurationNS("tau_plus"); err != nil {
		return p, err
	}
	if p.TauMinusNS, err = op.DurationNS("tau_minus"); err != nil {
		return p, err
	}
	if _, ok := op.Get("w_min"); ok {
		if p.WMin, err = op.FloatVal("w_min"); err != nil {
			return p, err
		}
		if p.WMax, err = op.FloatVal("w_max"); err != nil {
			return p, err
		}
	} else {
		p.WMin = schema.DefaultWeightMin
		p.WMax = schema.DefaultWeightMax
	}
	return p, nil
}

func lowerSynapse(op *ir.Operation) (runtime.Synapse, error) {
	var s runtime.Synapse
	var err error
	if s.Pre, err = op.Neuron("pre"); err != nil {
		return s, err
	}
	if s.Post, err = op.Neuron("post"); err != nil {
		return s, err
	}
	if s.Weight, err = op.FloatVal("weight"); err != nil {
		return s, err
	}
	if s.DelayNS, err = op.DurationNS("delay"); err != nil {
		return s, err
	}
	return s, nil
}

func lowerStimulus(op *ir.Operation) (runtime.Stimulus, uint32, error) {
	neuron, err := op.Neuron("neuron")
	if err != nil {
		return nil, 0, err
	}
	amplitude, err := op.FloatVal("amplitude")
	if err != nil {
		return nil, 0, err
	}
	start, err := op.TimeNS("start")
	if err != nil {
		return nil, 0, err
	}
	duration, err := op.DurationNS("duration")
	if err != nil {
		return nil, 0, err
	}
	if op.Name == "dc" {
		return &runtime.DCStimulus{
			Neuron: neuron, Amplitude: amplitude, StartNS: start, DurationNS: duration,
		}, neuron, nil
	}
	rate, err := op.FloatVal("rate")
	if err != nil {
		return nil, 0, err
	}
	return &runtime.PoissonStimulus{
		Neuron: neuron, RateHz: rate, Amplitude: amplitude, StartNS: start, DurationNS: duration,
	}, neuron, nil
}

func lowerSim(op *ir.Operation) (runtime.SimParams, error) {
	var p runtime.SimParams
	var err error
	if p.DtNS, err = op.DurationNS("dt"); err != nil {
		return p, err
	}
	if p.DurationNS, err = op.DurationNS("duration"); err != nil {
		return p, err
	}
	if p.RecordPotentials, err = op.BoolVal("record_potentials"); err != nil {
		return p, err
	}
	seed, err := op.IntOpt("seed")
	if err != nil {
		return p, err
	}
	if seed != nil {
		p.Seed = uint64(*seed)
	} else {
		p.Seed = runtime.DefaultSeed
	}
	return p, nil
}
