package runtime

// Spike records one threshold crossing.
type Spike struct {
	Neuron uint32 `json:"neuron"`
	TimeNS int64  `json:"time_ns"`
}

// Result is the outcome of one engine run.
type Result struct {
	Spikes        []Spike        `json:"spikes"`
	Potentials    [][]float64    `json:"potentials,omitempty"`
	StepsExecuted int64          `json:"steps_executed"`
	FinalWeights  []WeightUpdate `json:"final_weights,omitempty"`
}

// SpikeCounts returns the number of spikes per neuron id.
func (r *Result) SpikeCounts(neurons int) []int {
	counts := make([]int, neurons)
	for _, s := range r.Spikes {
		if int(s.Neuron) < neurons {
			counts[s.Neuron]++
		}
	}
	return counts
}

// FiringRates returns each neuron's mean rate in Hz over the simulated
// horizon.
func (r *Result) FiringRates(neurons int, durationNS int64) []float64 {
	rates := make([]float64, neurons)
	if durationNS <= 0 {
		return rates
	}
	seconds := float64(durationNS) / 1e9
	for i, c := range r.SpikeCounts(neurons) {
		rates[i] = float64(c) / seconds
	}
	return rates
}
