package runtime

// Stimulus injects current into one neuron during a time window. Current
// implementations draw from the shared engine RNG, so stimuli must be
// evaluated in their definition order every step to stay deterministic.
type Stimulus interface {
	// CurrentAt returns the current (nA) injected at simulation time
	// nowNS for a step of dtNS. It must return 0 outside its window.
	CurrentAt(rng *lcg, nowNS, dtNS int64) (neuron uint32, amplitude float64)
}

// PoissonStimulus fires with per-step probability rate*dt inside its
// window. Each in-window step consumes exactly one RNG draw whether or
// not an event occurs.
type PoissonStimulus struct {
	Neuron     uint32
	RateHz     float64
	Amplitude  float64
	StartNS    int64
	DurationNS int64
}

func (s *PoissonStimulus) CurrentAt(rng *lcg, nowNS, dtNS int64) (uint32, float64) {
	if nowNS < s.StartNS || nowNS >= s.StartNS+s.DurationNS {
		return s.Neuron, 0
	}
	p := s.RateHz * float64(dtNS) / 1e9
	if rng.uniform() < p {
		return s.Neuron, s.Amplitude
	}
	return s.Neuron, 0
}

// DCStimulus injects a constant current inside its window.
type DCStimulus struct {
	Neuron     uint32
	Amplitude  float64
	StartNS    int64
	DurationNS int64
}

func (s *DCStimulus) CurrentAt(_ *lcg, nowNS, _ int64) (uint32, float64) {
	if nowNS < s.StartNS || nowNS >= s.StartNS+s.DurationNS {
		return s.Neuron, 0
	}
	return s.Neuron, s.Amplitude
}
