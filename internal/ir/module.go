package ir

import (
	"fmt"

	"github.com/spikeworks/nir/internal/schema"
)

// Operation is one instance of a (dialect, name, version) schema holding a
// unique-keyed attribute mapping.
type Operation struct {
	Dialect string
	Name    string
	Version int
	Attrs   map[string]Attr
}

// NewOperation creates an operation with an empty attribute map.
func NewOperation(dialect, name string, version int) *Operation {
	return &Operation{
		Dialect: dialect,
		Name:    name,
		Version: version,
		Attrs:   make(map[string]Attr),
	}
}

// Set assigns an attribute and returns the operation for chaining.
func (op *Operation) Set(key string, val Attr) *Operation {
	op.Attrs[key] = val
	return op
}

// Get returns the named attribute, if present.
func (op *Operation) Get(key string) (Attr, bool) {
	a, ok := op.Attrs[key]
	return a, ok
}

// Header returns the "dialect.name@vN" form of the operation.
func (op *Operation) Header() string {
	return fmt.Sprintf("%s.%s@v%d", op.Dialect, op.Name, op.Version)
}

// Is reports whether the operation matches the given identity.
func (op *Operation) Is(dialect, name string, version int) bool {
	return op.Dialect == dialect && op.Name == name && op.Version == version
}

// Clone returns a deep copy of the operation. Attribute values are
// immutable, so copying the map suffices.
func (op *Operation) Clone() *Operation {
	c := NewOperation(op.Dialect, op.Name, op.Version)
	for k, v := range op.Attrs {
		c.Attrs[k] = v
	}
	return c
}

// Typed attribute accessors. Each returns an *AttrError when the attribute
// is missing or carries the wrong kind.

// DurationNS returns a duration attribute in nanoseconds.
func (op *Operation) DurationNS(key string) (int64, error) {
	a, ok := op.Attrs[key]
	if !ok {
		return 0, &AttrError{Op: op.Header(), Key: key, Want: schema.KindDuration, Missing: true}
	}
	d, ok := a.(Duration)
	if !ok {
		return 0, &AttrError{Op: op.Header(), Key: key, Want: schema.KindDuration, Got: a.Kind()}
	}
	return int64(d), nil
}

// TimeNS returns an absolute-time attribute in nanoseconds.
func (op *Operation) TimeNS(key string) (int64, error) {
	a, ok := op.Attrs[key]
	if !ok {
		return 0, &AttrError{Op: op.Header(), Key: key, Want: schema.KindTime, Missing: true}
	}
	t, ok := a.(Time)
	if !ok {
		return 0, &AttrError{Op: op.Header(), Key: key, Want: schema.KindTime, Got: a.Kind()}
	}
	return int64(t), nil
}

// FloatVal returns any float-like attribute (voltage, resistance,
// capacitance, current, rate, weight, raw float) as a float64.
func (op *Operation) FloatVal(key string) (float64, error) {
	a, ok := op.Attrs[key]
	if !ok {
		return 0, &AttrError{Op: op.Header(), Key: key, Want: schema.KindFloat, Missing: true}
	}
	switch v := a.(type) {
	case Float:
		return float64(v), nil
	case Weight:
		return float64(v), nil
	case Voltage:
		return float64(v), nil
	case Resistance:
		return float64(v), nil
	case Capacitance:
		return float64(v), nil
	case Current:
		return float64(v), nil
	case Rate:
		return float64(v), nil
	default:
		return 0, &AttrError{Op: op.Header(), Key: key, Want: schema.KindFloat, Got: a.Kind()}
	}
}

// RangeVal returns an inclusive range attribute.
func (op *Operation) RangeVal(key string) (Range, error) {
	a, ok := op.Attrs[key]
	if !ok {
		return Range{}, &AttrError{Op: op.Header(), Key: key, Want: schema.KindRange, Missing: true}
	}
	r, ok := a.(Range)
	if !ok {
		return Range{}, &AttrError{Op: op.Header(), Key: key, Want: schema.KindRange, Got: a.Kind()}
	}
	return r, nil
}

// Neuron returns a neuron-reference attribute.
func (op *Operation) Neuron(key string) (uint32, error) {
	a, ok := op.Attrs[key]
	if !ok {
		return 0, &AttrError{Op: op.Header(), Key: key, Want: schema.KindNeuronRef, Missing: true}
	}
	n, ok := a.(NeuronRef)
	if !ok {
		return 0, &AttrError{Op: op.Header(), Key: key, Want: schema.KindNeuronRef, Got: a.Kind()}
	}
	return uint32(n), nil
}

// BoolVal returns a boolean attribute.
func (op *Operation) BoolVal(key string) (bool, error) {
	a, ok := op.Attrs[key]
	if !ok {
		return false, &AttrError{Op: op.Header(), Key: key, Want: schema.KindBool, Missing: true}
	}
	b, ok := a.(Bool)
	if !ok {
		return false, &AttrError{Op: op.Header(), Key: key, Want: schema.KindBool, Got: a.Kind()}
	}
	return bool(b), nil
}

// IntOpt returns an optional integer attribute; the pointer is nil when
// the attribute is absent.
func (op *Operation) IntOpt(key string) (*int64, error) {
	a, ok := op.Attrs[key]
	if !ok {
		return nil, nil
	}
	i, ok := a.(Int)
	if !ok {
		return nil, &AttrError{Op: op.Header(), Key: key, Want: schema.KindInt, Got: a.Kind()}
	}
	v := int64(i)
	return &v, nil
}

// Module is an ordered sequence of operations, the unit of compilation.
// It is immutable once handed to the verifier and pass pipeline except
// through whole-list replacement by a pass.
type Module struct {
	Ops []*Operation
}

// NewModule creates an empty module.
func NewModule() *Module {
	return &Module{}
}

// Push appends an operation; it always succeeds.
func (m *Module) Push(op *Operation) {
	m.Ops = append(m.Ops, op)
}

// Clone returns a deep copy of the module.
func (m *Module) Clone() *Module {
	c := NewModule()
	c.Ops = make([]*Operation, len(m.Ops))
	for i, op := range m.Ops {
		c.Ops[i] = op.Clone()
	}
	return c
}
