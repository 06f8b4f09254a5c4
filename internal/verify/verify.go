// Package verify implements the semantic checker that runs between parsing
// and compilation. It walks operations in append order and stops at the
// first violated rule.
package verify

import (
	"fmt"

	"github.com/spikeworks/nir/internal/ir"
	"github.com/spikeworks/nir/internal/schema"
)

// Error identifies the first rule violation found in a module.
type Error struct {
	OpIndex int
	Op      string
	Attr    string
	Rule    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("op %d (%s): attribute %q violates rule %q", e.OpIndex, e.Op, e.Attr, e.Rule)
}

// Verify checks every operation's semantic rules in append order and
// returns the first violation. A nil error means the module is valid
// input for compilation.
func Verify(reg *schema.Registry, m *ir.Module) error {
	for i, op := range m.Ops {
		if err := verifyOp(i, op); err != nil {
			return err
		}
	}
	return nil
}

func verifyOp(idx int, op *ir.Operation) error {
	switch {
	case op.Dialect == "neuron" && op.Name == "lif":
		return verifyLIF(idx, op)
	case op.Dialect == "plasticity" && op.Name == "stdp":
		return verifySTDP(idx, op)
	case op.Is("connectivity", "layer_fully_connected", 1):
		return verifyLayer(idx, op)
	case op.Is("connectivity", "synapse_connect", 1):
		return verifySynapse(idx, op)
	case op.Is("stimulus", "poisson", 1):
		return verifyPoisson(idx, op)
	case op.Is("stimulus", "dc", 1):
		return nil
	case op.Is("runtime", "simulate.run", 1):
		return verifySimulate(idx, op)
	default:
		return nil
	}
}

func verifyLIF(idx int, op *ir.Operation) error {
	tau, err := op.DurationNS("tau_m")
	if err != nil {
		return err
	}
	if tau <= 0 {
		return &Error{OpIndex: idx, Op: op.Header(), Attr: "tau_m", Rule: "> 0"}
	}
	vRest, err := op.FloatVal("v_rest")
	if err != nil {
		return err
	}
	vThresh, err := op.FloatVal("v_thresh")
	if err != nil {
		return err
	}
	if vThresh <= vRest {
		return &Error{OpIndex: idx, Op: op.Header(), Attr: "v_thresh", Rule: "> v_rest"}
	}
	rm, err := op.FloatVal("r_m")
	if err != nil {
		return err
	}
	if rm <= 0 {
		return &Error{OpIndex: idx, Op: op.Header(), Attr: "r_m", Rule: "> 0"}
	}
	cm, err := op.FloatVal("c_m")
	if err != nil {
		return err
	}
	if cm <= 0 {
		return &Error{OpIndex: idx, Op: op.Header(), Attr: "c_m", Rule: "> 0"}
	}
	if op.Version >= 2 {
		refrac, err := op.DurationNS("t_refrac")
		if err != nil {
			return err
		}
		if refrac < 0 {
			return &Error{OpIndex: idx, Op: op.Header(), Attr: "t_refrac", Rule: ">= 0"}
		}
	}
	return nil
}

func verifySTDP(idx int, op *ir.Operation) error {
	for _, key := range []string{"tau_plus", "tau_minus"} {
		tau, err := op.DurationNS(key)
		if err != nil {
			return err
		}
		if tau <= 0 {
			return &Error{OpIndex: idx, Op: op.Header(), Attr: key, Rule: "> 0"}
		}
	}
	if op.Version < 2 {
		return nil
	}
	wMin, err := op.FloatVal("w_min")
	if err != nil {
		return err
	}
	wMax, err := op.FloatVal("w_max")
	if err != nil {
		return err
	}
	if wMin > wMax {
		return &Error{OpIndex: idx, Op: op.Header(), Attr: "w_min", Rule: "<= w_max"}
	}
	return nil
}

func verifyLayer(idx int, op *ir.Operation) error {
	for _, key := range []string{"in", "out"} {
		r, err := op.RangeVal(key)
		if err != nil {
			return err
		}
		if r.Start > r.End {
			return &Error{OpIndex: idx, Op: op.Header(), Attr: key, Rule: "start <= end"}
		}
	}
	delay, err := op.DurationNS("delay")
	if err != nil {
		return err
	}
	if delay < 0 {
		return &Error{OpIndex: idx, Op: op.Header(), Attr: "delay", Rule: ">= 0"}
	}
	return nil
}

func verifySynapse(idx int, op *ir.Operation) error {
	delay, err := op.DurationNS("delay")
	if err != nil {
		return err
	}
	if delay < 0 {
		return &Error{OpIndex: idx, Op: op.Header(), Attr: "delay", Rule: ">= 0"}
	}
	return nil
}

func verifyPoisson(idx int, op *ir.Operation) error {
	rate, err := op.FloatVal("rate")
	if err != nil {
		return err
	}
	if rate < 0 {
		return &Error{OpIndex: idx, Op: op.Header(), Attr: "rate", Rule: ">= 0"}
	}
	return nil
}

func verifySimulate(idx int, op *ir.Operation) error {
	dt, err := op.DurationNS("dt")
	if err != nil {
		return err
	}
	if dt <= 0 {
		return &Error{OpIndex: idx, Op: op.Header(), Attr: "dt", Rule: "> 0"}
	}
	dur, err := op.DurationNS("duration")
	if err != nil {
		return err
	}
	if dur <= 0 {
		return &Error{OpIndex: idx, Op: op.Header(), Attr: "duration", Rule: "> 0"}
	}
	return nil
}
