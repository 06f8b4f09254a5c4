package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryLookup(t *testing.T) {
	reg := NewRegistry()

	spec, ok := reg.Lookup("neuron", "lif", 2)
	require.True(t, ok)
	assert.Equal(t, "neuron.lif@v2", spec.Header())

	_, ok = reg.Lookup("neuron", "lif", 9)
	assert.False(t, ok)
	_, ok = reg.Lookup("neuron", "izhikevich", 1)
	assert.False(t, ok)
}

func TestRegistryCurrentVersions(t *testing.T) {
	reg := NewRegistry()

	cases := map[[2]string]int{
		{"neuron", "lif"}:                          2,
		{"plasticity", "stdp"}:                     2,
		{"connectivity", "layer_fully_connected"}:  1,
		{"connectivity", "synapse_connect"}:        1,
		{"stimulus", "poisson"}:                    1,
		{"stimulus", "dc"}:                         1,
		{"runtime", "simulate.run"}:                1,
	}
	for key, want := range cases {
		got, ok := reg.Current(key[0], key[1])
		require.True(t, ok, "%s.%s", key[0], key[1])
		assert.Equal(t, want, got, "%s.%s", key[0], key[1])
	}
}

func TestRegistryListIsSortedAndComplete(t *testing.T) {
	reg := NewRegistry()
	specs := reg.List()
	require.Len(t, specs, 9)

	for i := 1; i < len(specs); i++ {
		a, b := specs[i-1], specs[i]
		less := a.Dialect < b.Dialect ||
			(a.Dialect == b.Dialect && a.Name < b.Name) ||
			(a.Dialect == b.Dialect && a.Name == b.Name && a.Version < b.Version)
		assert.True(t, less, "%s before %s", a.Header(), b.Header())
	}
}

func TestAttributeNamesAreUniquePerOp(t *testing.T) {
	for _, spec := range NewRegistry().List() {
		seen := make(map[string]bool)
		for _, a := range spec.Attrs {
			assert.False(t, seen[a.Name], "%s: duplicate attribute %s", spec.Header(), a.Name)
			seen[a.Name] = true
		}
	}
}

func TestUpgradeDefaultsDeclared(t *testing.T) {
	// Every attribute added after v1 of a multi-version op must carry a
	// default, or the upgrade pass cannot migrate old modules.
	reg := NewRegistry()

	v1, ok := reg.Lookup("neuron", "lif", 1)
	require.True(t, ok)
	v2, ok := reg.Lookup("neuron", "lif", 2)
	require.True(t, ok)

	inV1 := make(map[string]bool)
	for _, a := range v1.Attrs {
		inV1[a.Name] = true
	}
	for _, a := range v2.Attrs {
		if !inV1[a.Name] {
			assert.NotNil(t, a.Default, "neuron.lif@v2 attribute %s needs a default", a.Name)
		}
	}
}
