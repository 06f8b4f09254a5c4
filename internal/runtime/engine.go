package runtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
)

// maxSTDPWindowNS bounds the spike pairing window. Pairs further apart
// than 100 ms contribute nothing measurable and are skipped.
const maxSTDPWindowNS int64 = 100_000_000

// Error reports a numeric fault during integration. Spikes recorded
// before the fault are discarded rather than returned as a partial
// result.
type Error struct {
	Neuron uint32
	TimeNS int64
}

func (e *Error) Error() string {
	return fmt.Sprintf("neuron %d: non-finite membrane potential at t=%d ns", e.Neuron, e.TimeNS)
}

// Engine executes programs. It is stateless between runs; all mutable
// simulation state lives on the stack of Run, so one engine may serve
// many programs.
type Engine struct {
	logger *slog.Logger
}

// NewEngine creates an engine. A nil logger disables tracing.
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{logger: logger}
}

type pendingDelivery struct {
	synapse int
}

// Run integrates the program over its full horizon. Steps execute in a
// fixed phase order: deliver queued spikes, apply stimuli, integrate
// membranes in ascending id order, schedule new deliveries, apply
// plasticity. Identical programs and seeds yield identical results.
//
// A non-finite membrane potential aborts the run with an error and no
// partial result.
func (e *Engine) Run(ctx context.Context, p *Program) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	n := len(p.Neurons)
	steps := p.Sim.Steps()
	dt := p.Sim.DtNS
	dtMs := float64(dt) / 1e6

	voltage := make([]float64, n)
	lastSpike := make([]int64, n)
	hasSpiked := make([]bool, n)
	accum := make([]float64, n)
	for i, np := range p.Neurons {
		voltage[i] = np.VRest
	}

	outgoing := make([][]int, n)
	incoming := make([][]int, n)
	for i, s := range p.Synapses {
		outgoing[s.Pre] = append(outgoing[s.Pre], i)
		incoming[s.Post] = append(incoming[s.Post], i)
	}

	maxDelaySteps := int64(1)
	for _, s := range p.Synapses {
		d := s.DelayNS / dt
		if d < 1 {
			d = 1
		}
		if d > maxDelaySteps {
			maxDelaySteps = d
		}
	}
	ring := make([][]pendingDelivery, maxDelaySteps+1)

	rng := newLCG(p.Sim.Seed)
	result := &Result{Spikes: []Spike{}}
	if p.Sim.RecordPotentials {
		result.Potentials = make([][]float64, 0, steps)
	}

	stepSpikes := make([]uint32, 0, n)

	for step := int64(0); step < steps; step++ {
		if step%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		now := step * dt

		slot := step % int64(len(ring))
		for _, d := range ring[slot] {
			syn := p.Synapses[d.synapse]
			accum[syn.Post] += syn.Weight
		}
		ring[slot] = ring[slot][:0]

		for _, st := range p.Stimuli {
			neuron, amp := st.CurrentAt(rng, now, dt)
			if amp != 0 && int(neuron) < n {
				accum[neuron] += amp
			}
		}

		stepSpikes = stepSpikes[:0]
		for id := 0; id < n; id++ {
			np := p.Neurons[id]
			if hasSpiked[id] && now-lastSpike[id] < np.RefracNS {
				continue
			}
			tauMs := float64(np.TauMNS) / 1e6
			dv := ((np.VRest - voltage[id]) + np.RM*accum[id]) * (dtMs / tauMs)
			voltage[id] += dv
			if math.IsNaN(voltage[id]) || math.IsInf(voltage[id], 0) {
				return nil, &Error{Neuron: uint32(id), TimeNS: now}
			}
			if voltage[id] >= np.VThresh {
				result.Spikes = append(result.Spikes, Spike{Neuron: uint32(id), TimeNS: now})
				stepSpikes = append(stepSpikes, uint32(id))
				voltage[id] = np.VReset
				lastSpike[id] = now
				hasSpiked[id] = true
			}
			accum[id] = 0
		}

		if p.Sim.RecordPotentials {
			snapshot := make([]float64, n)
			copy(snapshot, voltage)
			result.Potentials = append(result.Potentials, snapshot)
		}

		for _, id := range stepSpikes {
			for _, si := range outgoing[id] {
				d := p.Synapses[si].DelayNS / dt
				if d < 1 {
					d = 1
				}
				target := (step + d) % int64(len(ring))
				ring[target] = append(ring[target], pendingDelivery{synapse: si})
			}
		}

		if p.STDP != nil {
			applySTDP(p, incoming, outgoing, stepSpikes, lastSpike, hasSpiked, now)
		}
	}

	result.StepsExecuted = steps
	if p.STDP != nil {
		result.FinalWeights = p.SnapshotWeights()
	}
	e.logger.Debug("run complete",
		"steps", steps, "neurons", n, "synapses", len(p.Synapses), "spikes", len(result.Spikes))
	return result, nil
}

// applySTDP runs the nearest-neighbor pair rule for every neuron that
// fired this step. Incoming edges potentiate against the presynaptic
// partner's last spike; outgoing edges depress against the postsynaptic
// partner's. Coincident spikes (delta zero) contribute nothing.
func applySTDP(p *Program, incoming, outgoing [][]int, spiked []uint32, lastSpike []int64, hasSpiked []bool, now int64) {
	rule := p.STDP
	for _, id := range spiked {
		for _, si := range incoming[id] {
			pre := p.Synapses[si].Pre
			if !hasSpiked[pre] {
				continue
			}
			delta := now - lastSpike[pre]
			if delta <= 0 || delta > maxSTDPWindowNS {
				continue
			}
			w := p.Synapses[si].Weight + rule.APlus*math.Exp(-float64(delta)/float64(rule.TauPlusNS))
			p.Synapses[si].Weight = clamp(w, rule.WMin, rule.WMax)
		}
		for _, si := range outgoing[id] {
			post := p.Synapses[si].Post
			if !hasSpiked[post] {
				continue
			}
			delta := now - lastSpike[post]
			if delta <= 0 || delta > maxSTDPWindowNS {
				continue
			}
			w := p.Synapses[si].Weight - rule.AMinus*math.Exp(-float64(delta)/float64(rule.TauMinusNS))
			p.Synapses[si].Weight = clamp(w, rule.WMin, rule.WMax)
		}
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
