package schema

import "sort"

// Registry is the static catalogue of operation schemas. It is populated
// once by NewRegistry and never mutated afterwards, so it is safe to share
// across goroutines without locking.
type Registry struct {
	byKey   map[opKey]*OpSpec
	current map[nameKey]int
	ordered []*OpSpec
}

type opKey struct {
	dialect string
	name    string
	version int
}

type nameKey struct {
	dialect string
	name    string
}

// NewRegistry builds the default op catalogue.
func NewRegistry() *Registry {
	r := &Registry{
		byKey:   make(map[opKey]*OpSpec),
		current: make(map[nameKey]int),
	}
	for _, spec := range catalogue() {
		r.register(spec)
	}
	sort.Slice(r.ordered, func(i, j int) bool {
		a, b := r.ordered[i], r.ordered[j]
		if a.Dialect != b.Dialect {
			return a.Dialect < b.Dialect
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.Version < b.Version
	})
	return r
}

func (r *Registry) register(spec *OpSpec) {
	r.byKey[opKey{spec.Dialect, spec.Name, spec.Version}] = spec
	nk := nameKey{spec.Dialect, spec.Name}
	if spec.Version > r.current[nk] {
		r.current[nk] = spec.Version
	}
	r.ordered = append(r.ordered, spec)
}

// Lookup returns the schema for an exact (dialect, name, version) triple.
func (r *Registry) Lookup(dialect, name string, version int) (*OpSpec, bool) {
	spec, ok := r.byKey[opKey{dialect, name, version}]
	return spec, ok
}

// Current returns the newest registered version for (dialect, name).
func (r *Registry) Current(dialect, name string) (int, bool) {
	v, ok := r.current[nameKey{dialect, name}]
	return v, ok
}

// List returns every registered op spec sorted by dialect, name, version.
// The returned slice is shared; callers must not modify it.
func (r *Registry) List() []*OpSpec {
	return r.ordered
}

// Default values inserted by the version-upgrade pass. Exported so that
// tests and docs reference a single source of truth.
const (
	// DefaultRefractoryNS is the t_refrac inserted when upgrading
	// neuron.lif@v1 to v2 (2 ms).
	DefaultRefractoryNS int64 = 2_000_000
	// DefaultWeightMin is the w_min inserted when upgrading
	// plasticity.stdp@v1 to v2.
	DefaultWeightMin = 0.0
	// DefaultWeightMax is the w_max inserted when upgrading
	// plasticity.stdp@v1 to v2.
	DefaultWeightMax = 1.0
)

// catalogue declares every supported operation. Attribute order here is
// the canonical print order of the textual format.
func catalogue() []*OpSpec {
	return []*OpSpec{
		{
			Dialect: "neuron", Name: "lif", Version: 1,
			Doc: "Leaky integrate-and-fire neuron parameters (pre-refractory schema)",
			Attrs: []AttributeSpec{
				{Name: "tau_m", Kind: KindDuration, Required: true, Doc: "Membrane time constant (ns)"},
				{Name: "v_rest", Kind: KindVoltage, Required: true, Doc: "Resting potential (mV)"},
				{Name: "v_reset", Kind: KindVoltage, Required: true, Doc: "Reset potential (mV)"},
				{Name: "v_thresh", Kind: KindVoltage, Required: true, Doc: "Threshold potential (mV)"},
				{Name: "r_m", Kind: KindResistance, Required: true, Doc: "Membrane resistance (MΩ)"},
				{Name: "c_m", Kind: KindCapacitance, Required: true, Doc: "Membrane capacitance (nF)"},
			},
		},
		{
			Dialect: "neuron", Name: "lif", Version: 2,
			Doc: "Leaky integrate-and-fire neuron parameters",
			Attrs: []AttributeSpec{
				{Name: "tau_m", Kind: KindDuration, Required: true, Doc: "Membrane time constant (ns)"},
				{Name: "v_rest", Kind: KindVoltage, Required: true, Doc: "Resting potential (mV)"},
				{Name: "v_reset", Kind: KindVoltage, Required: true, Doc: "Reset potential (mV)"},
				{Name: "v_thresh", Kind: KindVoltage, Required: true, Doc: "Threshold potential (mV)"},
				{Name: "t_refrac", Kind: KindDuration, Required: true, Doc: "Refractory period (ns)", Default: DefaultRefractoryNS},
				{Name: "r_m", Kind: KindResistance, Required: true, Doc: "Membrane resistance (MΩ)"},
				{Name: "c_m", Kind: KindCapacitance, Required: true, Doc: "Membrane capacitance (nF)"},
			},
		},
		{
			Dialect: "plasticity", Name: "stdp", Version: 1,
			Doc: "Pair-based STDP rule (unbounded weights schema)",
			Attrs: []AttributeSpec{
				{Name: "a_plus", Kind: KindFloat, Required: true, Doc: "Potentiation amplitude"},
				{Name: "a_minus", Kind: KindFloat, Required: true, Doc: "Depression amplitude"},
				{Name: "tau_plus", Kind: KindDuration, Required: true, Doc: "Potentiation time constant (ns)"},
				{Name: "tau_minus", Kind: KindDuration, Required: true, Doc: "Depression time constant (ns)"},
			},
		},
		{
			Dialect: "plasticity", Name: "stdp", Version: 2,
			Doc: "Pair-based STDP rule with weight bounds",
			Attrs: []AttributeSpec{
				{Name: "a_plus", Kind: KindFloat, Required: true, Doc: "Potentiation amplitude"},
				{Name: "a_minus", Kind: KindFloat, Required: true, Doc: "Depression amplitude"},
				{Name: "tau_plus", Kind: KindDuration, Required: true, Doc: "Potentiation time constant (ns)"},
				{Name: "tau_minus", Kind: KindDuration, Required: true, Doc: "Depression time constant (ns)"},
				{Name: "w_min", Kind: KindWeight, Required: true, Doc: "Minimum weight", Default: DefaultWeightMin},
				{Name: "w_max", Kind: KindWeight, Required: true, Doc: "Maximum weight", Default: DefaultWeightMax},
			},
		},
		{
			Dialect: "connectivity", Name: "layer_fully_connected", Version: 1,
			Doc: "Aggregate fully-connected layer; expanded by canonicalization",
			Attrs: []AttributeSpec{
				{Name: "in", Kind: KindRange, Required: true, Doc: "Inclusive input neuron id range"},
				{Name: "out", Kind: KindRange, Required: true, Doc: "Inclusive output neuron id range"},
				{Name: "weight", Kind: KindWeight, Required: true, Doc: "Initial weight for every synapse"},
				{Name: "delay", Kind: KindDuration, Required: true, Doc: "Synaptic delay (ns)"},
			},
		},
		{
			Dialect: "connectivity", Name: "synapse_connect", Version: 1,
			Doc: "Elementary directed synapse",
			Attrs: []AttributeSpec{
				{Name: "pre", Kind: KindNeuronRef, Required: true, Doc: "Pre-synaptic neuron id"},
				{Name: "post", Kind: KindNeuronRef, Required: true, Doc: "Post-synaptic neuron id"},
				{Name: "weight", Kind: KindWeight, Required: true, Doc: "Synaptic weight"},
				{Name: "delay", Kind: KindDuration, Required: true, Doc: "Synaptic delay (ns)"},
			},
		},
		{
			Dialect: "stimulus", Name: "poisson", Version: 1,
			Doc: "Seeded Poisson current injection",
			Attrs: []AttributeSpec{
				{Name: "neuron", Kind: KindNeuronRef, Required: true, Doc: "Target neuron id"},
				{Name: "rate", Kind: KindRate, Required: true, Doc: "Expected firing rate (Hz)"},
				{Name: "amplitude", Kind: KindCurrent, Required: true, Doc: "Injected current per event (nA)"},
				{Name: "start", Kind: KindTime, Required: true, Doc: "Window start (ns)"},
				{Name: "duration", Kind: KindDuration, Required: true, Doc: "Window length (ns)"},
			},
		},
		{
			Dialect: "stimulus", Name: "dc", Version: 1,
			Doc: "Constant current injection",
			Attrs: []AttributeSpec{
				{Name: "neuron", Kind: KindNeuronRef, Required: true, Doc: "Target neuron id"},
				{Name: "amplitude", Kind: KindCurrent, Required: true, Doc: "Injected current per step (nA)"},
				{Name: "start", Kind: KindTime, Required: true, Doc: "Window start (ns)"},
				{Name: "duration", Kind: KindDuration, Required: true, Doc: "Window length (ns)"},
			},
		},
		{
			Dialect: "runtime", Name: "simulate.run", Version: 1,
			Doc: "Simulation control: fixed step size, horizon, recording, seed",
			Attrs: []AttributeSpec{
				{Name: "dt", Kind: KindDuration, Required: true, Doc: "Timestep (ns)"},
				{Name: "duration", Kind: KindDuration, Required: true, Doc: "Simulation horizon (ns)"},
				{Name: "record_potentials", Kind: KindBool, Required: true, Doc: "Sample membrane potentials every step"},
				{Name: "seed", Kind: KindInt, Required: false, Doc: "RNG seed; defaults to 42 when absent"},
			},
		},
	}
}
