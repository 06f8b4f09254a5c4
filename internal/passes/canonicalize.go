package passes

import (
	"fmt"

	"github.com/spikeworks/nir/internal/ir"
)

// Canonicalize expands every connectivity.layer_fully_connected op into
// its elementary synapse_connect ops, one per (in, out) pair, outer loop
// over inputs. All other ops are carried through unchanged, so relative
// order within the module is preserved. The pass is idempotent: a module
// without layer ops comes back as an identical copy.
type Canonicalize struct{}

func (Canonicalize) Name() string { return "canonicalize" }

func (Canonicalize) Run(m *ir.Module) (*ir.Module, error) {
	out := ir.NewModule()
	for _, op := range m.Ops {
		if !op.Is("connectivity", "layer_fully_connected", 1) {
			out.Push(op.Clone())
			continue
		}
		in, err := op.RangeVal("in")
		if err != nil {
			return nil, err
		}
		to, err := op.RangeVal("out")
		if err != nil {
			return nil, err
		}
		if in.Start > in.End || to.Start > to.End {
			return nil, fmt.Errorf("%s: inverted range", op.Header())
		}
		weight, ok := op.Get("weight")
		if !ok {
			return nil, fmt.Errorf("%s: missing attribute %q", op.Header(), "weight")
		}
		delay, ok := op.Get("delay")
		if !ok {
			return nil, fmt.Errorf("%s: missing attribute %q", op.Header(), "delay")
		}
		for pre := in.Start; ; pre++ {
			for post := to.Start; ; post++ {
				out.Push(ir.NewOperation("connectivity", "synapse_connect", 1).
					Set("pre", ir.NeuronRef(pre)).
					Set("post", ir.NeuronRef(post)).
					Set("weight", weight).
					Set("delay", delay))
				if post == to.End {
					break
				}
			}
			if pre == in.End {
				break
			}
		}
	}
	return out, nil
}
