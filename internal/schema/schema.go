// Package schema defines the operation catalogue for the NIR dialects.
// Every operation a module may carry is described here as a versioned
// (dialect, name) pair with an ordered list of attribute descriptors.
// The registry is built once at startup and is read-only afterwards; the
// parser, verifier, and compiler all consult the same instance so the
// enforced schemas can never diverge from the introspected ones.
package schema

import "fmt"

// AttrKind identifies the value kind of an operation attribute.
type AttrKind int

const (
	// KindBool is a boolean attribute.
	KindBool AttrKind = iota
	// KindInt is a 64-bit integer attribute.
	KindInt
	// KindFloat is a dimensionless floating point attribute.
	KindFloat
	// KindDuration is a duration in nanoseconds.
	KindDuration
	// KindTime is an absolute simulation time in nanoseconds.
	KindTime
	// KindVoltage is a potential in millivolts.
	KindVoltage
	// KindResistance is a resistance in megaohms.
	KindResistance
	// KindCapacitance is a capacitance in nanofarads.
	KindCapacitance
	// KindCurrent is a current in nanoamps.
	KindCurrent
	// KindRate is a frequency in hertz.
	KindRate
	// KindWeight is a dimensionless synaptic weight.
	KindWeight
	// KindRange is an inclusive start..end range of neuron ids.
	KindRange
	// KindNeuronRef is a reference to a neuron by id.
	KindNeuronRef
)

// String returns the human-readable kind name used by op listings.
func (k AttrKind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindDuration:
		return "duration(ns)"
	case KindTime:
		return "time(ns)"
	case KindVoltage:
		return "voltage(mV)"
	case KindResistance:
		return "resistance(MΩ)"
	case KindCapacitance:
		return "capacitance(nF)"
	case KindCurrent:
		return "current(nA)"
	case KindRate:
		return "rate(Hz)"
	case KindWeight:
		return "weight"
	case KindRange:
		return "range(start..end)"
	case KindNeuronRef:
		return "neuron(%n<id>)"
	default:
		return fmt.Sprintf("AttrKind(%d)", int(k))
	}
}

// AttributeSpec describes one attribute slot of an operation schema.
type AttributeSpec struct {
	// Name is the attribute key as it appears in the textual format.
	Name string
	// Kind is the expected value kind; mismatches are rejected by the
	// parser and the compiler.
	Kind AttrKind
	// Required marks attributes that must be present.
	Required bool
	// Doc is a short description surfaced by op listings.
	Doc string
	// Default carries the value inserted by the version-upgrade pass for
	// attributes added after the operation's first version. The concrete
	// type depends on Kind: int64 for duration/time/int, float64 for the
	// float-like kinds, bool for KindBool. Nil means no upgrade default.
	Default any
}

// OpSpec describes one version of an operation.
type OpSpec struct {
	// Dialect groups related operations (neuron, plasticity, ...).
	Dialect string
	// Name is the operation name within the dialect.
	Name string
	// Version is the schema version carried in the @vN tag.
	Version int
	// Doc is a one-line description for introspection tooling.
	Doc string
	// Attrs lists the attribute descriptors in declaration order; the
	// textual printer emits attributes in exactly this order.
	Attrs []AttributeSpec
}

// Header returns the "dialect.name@vN" form of the spec.
func (s *OpSpec) Header() string {
	return fmt.Sprintf("%s.%s@v%d", s.Dialect, s.Name, s.Version)
}

// Attr returns the descriptor for the named attribute, if declared.
func (s *OpSpec) Attr(name string) (*AttributeSpec, bool) {
	for i := range s.Attrs {
		if s.Attrs[i].Name == name {
			return &s.Attrs[i], true
		}
	}
	return nil, false
}
