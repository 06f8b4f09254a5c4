package runtime

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDtNS int64 = 100_000 // 0.1 ms

func singleNeuronProgram(stimuli ...Stimulus) *Program {
	return &Program{
		Neurons: []LIFParams{DefaultLIFParams()},
		Stimuli: stimuli,
		Sim: SimParams{
			DtNS:             testDtNS,
			DurationNS:       100_000_000,
			RecordPotentials: false,
			Seed:             DefaultSeed,
		},
	}
}

// pulse injects enough current for one step to force an immediate spike.
func pulse(neuron uint32, atNS int64) Stimulus {
	return &DCStimulus{Neuron: neuron, Amplitude: 400, StartNS: atNS, DurationNS: testDtNS}
}

func TestStepsTruncateHorizon(t *testing.T) {
	p := singleNeuronProgram()
	p.Sim.DtNS = 300
	p.Sim.DurationNS = 1000

	res, err := NewEngine(nil).Run(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.StepsExecuted)
}

func TestDCCurrentDrivesSpiking(t *testing.T) {
	p := singleNeuronProgram(&DCStimulus{
		Neuron: 0, Amplitude: 5, StartNS: 0, DurationNS: 100_000_000,
	})

	res, err := NewEngine(nil).Run(context.Background(), p)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Spikes)
	for _, s := range res.Spikes {
		assert.Equal(t, uint32(0), s.Neuron)
	}
}

func TestRefractoryPeriodBoundsFiring(t *testing.T) {
	p := singleNeuronProgram(&DCStimulus{
		Neuron: 0, Amplitude: 400, StartNS: 0, DurationNS: 100_000_000,
	})

	res, err := NewEngine(nil).Run(context.Background(), p)
	require.NoError(t, err)
	require.Greater(t, len(res.Spikes), 2)

	refrac := p.Neurons[0].RefracNS
	for i := 1; i < len(res.Spikes); i++ {
		gap := res.Spikes[i].TimeNS - res.Spikes[i-1].TimeNS
		assert.GreaterOrEqual(t, gap, refrac, "spikes %d and %d", i-1, i)
	}
}

func TestSynapticDelayDelaysDelivery(t *testing.T) {
	p := &Program{
		Neurons:  []LIFParams{DefaultLIFParams(), DefaultLIFParams()},
		Synapses: []Synapse{{Pre: 0, Post: 1, Weight: 400, DelayNS: 500_000}},
		Stimuli:  []Stimulus{pulse(0, 0)},
		Sim: SimParams{DtNS: testDtNS, DurationNS: 10_000_000, Seed: DefaultSeed},
	}

	res, err := NewEngine(nil).Run(context.Background(), p)
	require.NoError(t, err)
	require.Len(t, res.Spikes, 2)
	assert.Equal(t, Spike{Neuron: 0, TimeNS: 0}, res.Spikes[0])
	assert.Equal(t, Spike{Neuron: 1, TimeNS: 500_000}, res.Spikes[1])
}

func TestZeroDelayStillTakesOneStep(t *testing.T) {
	p := &Program{
		Neurons:  []LIFParams{DefaultLIFParams(), DefaultLIFParams()},
		Synapses: []Synapse{{Pre: 0, Post: 1, Weight: 400, DelayNS: 0}},
		Stimuli:  []Stimulus{pulse(0, 0)},
		Sim: SimParams{DtNS: testDtNS, DurationNS: 10_000_000, Seed: DefaultSeed},
	}

	res, err := NewEngine(nil).Run(context.Background(), p)
	require.NoError(t, err)
	require.Len(t, res.Spikes, 2)
	assert.Equal(t, testDtNS, res.Spikes[1].TimeNS)
}

func TestPoissonDeterminism(t *testing.T) {
	build := func(seed uint64) *Program {
		p := singleNeuronProgram(&PoissonStimulus{
			Neuron: 0, RateHz: 1000, Amplitude: 40, StartNS: 0, DurationNS: 100_000_000,
		})
		p.Sim.Seed = seed
		return p
	}

	eng := NewEngine(nil)
	a, err := eng.Run(context.Background(), build(42))
	require.NoError(t, err)
	b, err := eng.Run(context.Background(), build(42))
	require.NoError(t, err)
	assert.Equal(t, a.Spikes, b.Spikes)
	assert.NotEmpty(t, a.Spikes)

	c, err := eng.Run(context.Background(), build(7))
	require.NoError(t, err)
	assert.NotEqual(t, a.Spikes, c.Spikes)
}

func TestPoissonZeroRateIsSilent(t *testing.T) {
	p := singleNeuronProgram(&PoissonStimulus{
		Neuron: 0, RateHz: 0, Amplitude: 40, StartNS: 0, DurationNS: 100_000_000,
	})

	res, err := NewEngine(nil).Run(context.Background(), p)
	require.NoError(t, err)
	assert.Empty(t, res.Spikes)
}

func stdpProgram(firstPulseNeuron, secondPulseNeuron uint32, rule STDPParams) *Program {
	return &Program{
		Neurons:  []LIFParams{DefaultLIFParams(), DefaultLIFParams()},
		Synapses: []Synapse{{Pre: 0, Post: 1, Weight: 0.5, DelayNS: testDtNS}},
		STDP:     &rule,
		Stimuli: []Stimulus{
			pulse(firstPulseNeuron, 0),
			pulse(secondPulseNeuron, 1_000_000),
		},
		Sim: SimParams{DtNS: testDtNS, DurationNS: 10_000_000, Seed: DefaultSeed},
	}
}

func defaultSTDP() STDPParams {
	return STDPParams{
		APlus: 0.01, AMinus: 0.012,
		TauPlusNS: 20_000_000, TauMinusNS: 20_000_000,
		WMin: 0, WMax: 1,
	}
}

func TestSTDPPotentiatesPreBeforePost(t *testing.T) {
	p := stdpProgram(0, 1, defaultSTDP())

	res, err := NewEngine(nil).Run(context.Background(), p)
	require.NoError(t, err)
	require.Len(t, res.FinalWeights, 1)
	assert.Greater(t, res.FinalWeights[0].Weight, 0.5)
}

func TestSTDPDepressesPostBeforePre(t *testing.T) {
	p := stdpProgram(1, 0, defaultSTDP())

	res, err := NewEngine(nil).Run(context.Background(), p)
	require.NoError(t, err)
	require.Len(t, res.FinalWeights, 1)
	assert.Less(t, res.FinalWeights[0].Weight, 0.5)
}

func TestSTDPClampsToBounds(t *testing.T) {
	rule := defaultSTDP()
	rule.WMax = 0.505
	p := stdpProgram(0, 1, rule)

	res, err := NewEngine(nil).Run(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, 0.505, res.FinalWeights[0].Weight)
}

func TestRecordPotentials(t *testing.T) {
	p := singleNeuronProgram()
	p.Sim.DurationNS = 1_000_000
	p.Sim.RecordPotentials = true

	res, err := NewEngine(nil).Run(context.Background(), p)
	require.NoError(t, err)
	require.Len(t, res.Potentials, int(p.Sim.Steps()))
	assert.Equal(t, p.Neurons[0].VRest, res.Potentials[0][0])
}

func TestNonFinitePotentialAborts(t *testing.T) {
	p := singleNeuronProgram(&DCStimulus{
		Neuron: 0, Amplitude: math.MaxFloat64, StartNS: 0, DurationNS: 100_000_000,
	})

	res, err := NewEngine(nil).Run(context.Background(), p)
	assert.Nil(t, res)
	var rerr *Error
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, uint32(0), rerr.Neuron)
}

func TestRunHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewEngine(nil).Run(ctx, singleNeuronProgram())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSnapshotAndApplyWeights(t *testing.T) {
	p := &Program{
		Neurons: []LIFParams{DefaultLIFParams(), DefaultLIFParams(), DefaultLIFParams()},
		Synapses: []Synapse{
			{Pre: 0, Post: 1, Weight: 0.5, DelayNS: testDtNS},
			{Pre: 1, Post: 2, Weight: 0.25, DelayNS: testDtNS},
		},
		Sim: SimParams{DtNS: testDtNS, DurationNS: 1_000_000, Seed: DefaultSeed},
	}

	snap := p.SnapshotWeights()
	require.Len(t, snap, 2)
	assert.Equal(t, WeightUpdate{Pre: 0, Post: 1, Weight: 0.5}, snap[0])

	applied := p.ApplyWeightUpdates([]WeightUpdate{
		{Pre: 0, Post: 1, Weight: 0.9},
		{Pre: 5, Post: 6, Weight: 0.1},
	})
	assert.Equal(t, 1, applied)
	assert.Equal(t, 0.9, p.Synapses[0].Weight)
	assert.Equal(t, 0.25, p.Synapses[1].Weight)
}

func TestSnapshotDeduplicatesRepeatedPairs(t *testing.T) {
	p := &Program{
		Neurons: []LIFParams{DefaultLIFParams(), DefaultLIFParams()},
		Synapses: []Synapse{
			{Pre: 0, Post: 1, Weight: 0.5, DelayNS: testDtNS},
			{Pre: 0, Post: 1, Weight: 0.7, DelayNS: testDtNS},
		},
		Sim: SimParams{DtNS: testDtNS, DurationNS: 1_000_000, Seed: DefaultSeed},
	}

	snap := p.SnapshotWeights()
	require.Len(t, snap, 1)
	assert.Equal(t, WeightUpdate{Pre: 0, Post: 1, Weight: 0.7}, snap[0])

	applied := p.ApplyWeightUpdates(snap)
	assert.Equal(t, 1, applied)
	assert.Equal(t, 0.7, p.Synapses[0].Weight)
	assert.Equal(t, 0.7, p.Synapses[1].Weight)
}

func TestSnapshotReimportReproducesWeights(t *testing.T) {
	build := func() *Program {
		return stdpProgram(0, 1, defaultSTDP())
	}

	trained := build()
	res, err := NewEngine(nil).Run(context.Background(), trained)
	require.NoError(t, err)

	fresh := build()
	applied := fresh.ApplyWeightUpdates(res.FinalWeights)
	assert.Equal(t, len(res.FinalWeights), applied)
	assert.Equal(t, trained.SnapshotWeights(), fresh.SnapshotWeights())
}

func TestFiringRates(t *testing.T) {
	res := &Result{Spikes: []Spike{{Neuron: 0, TimeNS: 0}, {Neuron: 0, TimeNS: 500_000_000}, {Neuron: 1, TimeNS: 1}}}
	rates := res.FiringRates(2, 1_000_000_000)
	assert.Equal(t, 2.0, rates[0])
	assert.Equal(t, 1.0, rates[1])
}
