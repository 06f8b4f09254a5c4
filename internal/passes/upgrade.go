package passes

import (
	"fmt"

	"github.com/spikeworks/nir/internal/ir"
	"github.com/spikeworks/nir/internal/schema"
)

// UpgradeVersions rewrites every op registered below its current schema
// version up to the current one, filling newly required attributes from
// the schema defaults. Ops already at the current version pass through
// untouched, so the pass is idempotent.
type UpgradeVersions struct {
	Registry *schema.Registry
}

func (UpgradeVersions) Name() string { return "upgrade-versions" }

func (p UpgradeVersions) Run(m *ir.Module) (*ir.Module, error) {
	out := ir.NewModule()
	for _, op := range m.Ops {
		cur, ok := p.Registry.Current(op.Dialect, op.Name)
		if !ok || op.Version >= cur {
			out.Push(op.Clone())
			continue
		}
		spec, ok := p.Registry.Lookup(op.Dialect, op.Name, cur)
		if !ok {
			return nil, fmt.Errorf("%s: no schema for current version v%d", op.Header(), cur)
		}
		up := op.Clone()
		up.Version = cur
		for _, as := range spec.Attrs {
			if _, present := up.Attrs[as.Name]; present {
				continue
			}
			if as.Default == nil {
				return nil, fmt.Errorf("%s: upgrade to v%d leaves %q without a default", op.Header(), cur, as.Name)
			}
			val, err := defaultAttr(as)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", op.Header(), err)
			}
			up.Set(as.Name, val)
		}
		out.Push(up)
	}
	return out, nil
}

func defaultAttr(as schema.AttributeSpec) (ir.Attr, error) {
	switch as.Kind {
	case schema.KindDuration:
		v, ok := as.Default.(int64)
		if !ok {
			return nil, fmt.Errorf("default for %q is not an int64", as.Name)
		}
		return ir.Duration(v), nil
	case schema.KindWeight:
		v, ok := as.Default.(float64)
		if !ok {
			return nil, fmt.Errorf("default for %q is not a float64", as.Name)
		}
		return ir.Weight(v), nil
	case schema.KindFloat:
		v, ok := as.Default.(float64)
		if !ok {
			return nil, fmt.Errorf("default for %q is not a float64", as.Name)
		}
		return ir.Float(v), nil
	case schema.KindBool:
		v, ok := as.Default.(bool)
		if !ok {
			return nil, fmt.Errorf("default for %q is not a bool", as.Name)
		}
		return ir.Bool(v), nil
	default:
		return nil, fmt.Errorf("no default conversion for attribute kind %s", as.Kind)
	}
}
