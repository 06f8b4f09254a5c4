// Package ir provides the NIR data model: unit-tagged attributes, versioned
// operations, modules, and the canonical textual format with its
// registry-aware parser.
package ir

import (
	"fmt"
	"strconv"

	"github.com/spikeworks/nir/internal/schema"
)

// Attr is the closed set of attribute value kinds an operation may carry.
// Every concrete type below maps to exactly one schema.AttrKind; consumers
// switch exhaustively so adding a kind is a single change point.
type Attr interface {
	Kind() schema.AttrKind
	// String renders the canonical textual form of the value.
	String() string
}

// Duration is a length of simulated time in nanoseconds.
type Duration int64

// Time is an absolute simulation time in nanoseconds.
type Time int64

// Voltage is a membrane potential in millivolts.
type Voltage float64

// Resistance is a membrane resistance in megaohms.
type Resistance float64

// Capacitance is a membrane capacitance in nanofarads.
type Capacitance float64

// Current is an injected current in nanoamps.
type Current float64

// Rate is a frequency in hertz.
type Rate float64

// Weight is a dimensionless synaptic weight.
type Weight float64

// Float is a dimensionless floating point value.
type Float float64

// Int is a plain 64-bit integer value.
type Int int64

// Bool is a boolean value.
type Bool bool

// Range is an inclusive start..end range of neuron ids. Start <= End is a
// verifier concern, not a construction invariant.
type Range struct {
	Start uint32
	End   uint32
}

// NeuronRef references a neuron by id.
type NeuronRef uint32

// Kind implementations.

func (Duration) Kind() schema.AttrKind    { return schema.KindDuration }
func (Time) Kind() schema.AttrKind        { return schema.KindTime }
func (Voltage) Kind() schema.AttrKind     { return schema.KindVoltage }
func (Resistance) Kind() schema.AttrKind  { return schema.KindResistance }
func (Capacitance) Kind() schema.AttrKind { return schema.KindCapacitance }
func (Current) Kind() schema.AttrKind     { return schema.KindCurrent }
func (Rate) Kind() schema.AttrKind        { return schema.KindRate }
func (Weight) Kind() schema.AttrKind      { return schema.KindWeight }
func (Float) Kind() schema.AttrKind       { return schema.KindFloat }
func (Int) Kind() schema.AttrKind         { return schema.KindInt }
func (Bool) Kind() schema.AttrKind        { return schema.KindBool }
func (Range) Kind() schema.AttrKind       { return schema.KindRange }
func (NeuronRef) Kind() schema.AttrKind   { return schema.KindNeuronRef }

// formatFloat renders a float in the shortest fixed-decimal form that
// round-trips exactly; the printer never emits exponent notation.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (d Duration) String() string    { return fmt.Sprintf("%d ns", int64(d)) }
func (t Time) String() string        { return fmt.Sprintf("%d ns", int64(t)) }
func (v Voltage) String() string     { return formatFloat(float64(v)) + " mV" }
func (r Resistance) String() string  { return formatFloat(float64(r)) + " MΩ" }
func (c Capacitance) String() string { return formatFloat(float64(c)) + " nF" }
func (c Current) String() string     { return formatFloat(float64(c)) + " nA" }
func (r Rate) String() string        { return formatFloat(float64(r)) + " Hz" }
func (w Weight) String() string      { return formatFloat(float64(w)) }
func (f Float) String() string       { return formatFloat(float64(f)) }
func (i Int) String() string         { return strconv.FormatInt(int64(i), 10) }
func (b Bool) String() string        { return strconv.FormatBool(bool(b)) }
func (r Range) String() string       { return fmt.Sprintf("%d..%d", r.Start, r.End) }
func (n NeuronRef) String() string   { return fmt.Sprintf("%%n%d", uint32(n)) }

// AttrError reports a missing or wrongly-kinded attribute on an operation.
// The verifier, passes, and compiler wrap it into their own stage errors.
type AttrError struct {
	Op      string
	Key     string
	Want    schema.AttrKind
	Got     schema.AttrKind
	Missing bool
}

func (e *AttrError) Error() string {
	if e.Missing {
		return fmt.Sprintf("%s: missing attribute %q", e.Op, e.Key)
	}
	return fmt.Sprintf("%s: attribute %q: expected %s, got %s", e.Op, e.Key, e.Want, e.Got)
}
