package runtime

import "fmt"

// Synapse is one directed, weighted, delayed edge.
type Synapse struct {
	Pre     uint32
	Post    uint32
	Weight  float64
	DelayNS int64
}

// Program is a compiled network ready for execution. The compiler
// materializes neurons as a dense table indexed by id, so every Pre and
// Post below indexes Neurons directly.
type Program struct {
	Neurons  []LIFParams
	Synapses []Synapse
	STDP     *STDPParams
	Stimuli  []Stimulus
	Sim      SimParams
}

// Validate checks the program invariants the compiler is supposed to
// establish. It guards direct construction in tests and embedding code.
func (p *Program) Validate() error {
	if err := p.Sim.Validate(); err != nil {
		return err
	}
	for i, n := range p.Neurons {
		if err := n.Validate(); err != nil {
			return fmt.Errorf("neuron %d: %w", i, err)
		}
	}
	if p.STDP != nil {
		if err := p.STDP.Validate(); err != nil {
			return err
		}
	}
	count := uint32(len(p.Neurons))
	for i, s := range p.Synapses {
		if s.Pre >= count || s.Post >= count {
			return fmt.Errorf("synapse %d: endpoint out of range (%d neurons)", i, count)
		}
		if s.DelayNS < 0 {
			return fmt.Errorf("synapse %d: negative delay %d", i, s.DelayNS)
		}
	}
	return nil
}

// WeightUpdate addresses one edge by its endpoints. It is both the
// snapshot export record and the re-import command.
type WeightUpdate struct {
	Pre    uint32  `json:"pre"`
	Post   uint32  `json:"post"`
	Weight float64 `json:"weight"`
}

// SnapshotWeights exports one (pre, post, weight) triple per distinct
// edge pair, in first-occurrence order. A pair declared more than once
// contributes a single triple carrying the last-listed weight, matching
// ApplyWeightUpdates writing each update onto every edge of the pair.
func (p *Program) SnapshotWeights() []WeightUpdate {
	type edge struct{ pre, post uint32 }
	seen := make(map[edge]int, len(p.Synapses))
	out := make([]WeightUpdate, 0, len(p.Synapses))
	for _, s := range p.Synapses {
		e := edge{s.Pre, s.Post}
		if i, ok := seen[e]; ok {
			out[i].Weight = s.Weight
			continue
		}
		seen[e] = len(out)
		out = append(out, WeightUpdate{Pre: s.Pre, Post: s.Post, Weight: s.Weight})
	}
	return out
}

// ApplyWeightUpdates writes each update onto the matching (pre, post)
// edges and returns how many updates matched at least one edge. Updates
// naming edges the program does not have are skipped, not errors.
func (p *Program) ApplyWeightUpdates(updates []WeightUpdate) int {
	type edge struct{ pre, post uint32 }
	index := make(map[edge][]int, len(p.Synapses))
	for i, s := range p.Synapses {
		e := edge{s.Pre, s.Post}
		index[e] = append(index[e], i)
	}
	applied := 0
	for _, u := range updates {
		targets, ok := index[edge{u.Pre, u.Post}]
		if !ok {
			continue
		}
		for _, i := range targets {
			p.Synapses[i].Weight = u.Weight
		}
		applied++
	}
	return applied
}
