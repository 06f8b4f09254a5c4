package ir

import (
	"sort"
	"strings"

	"github.com/spikeworks/nir/internal/schema"
)

// Text renders the module in the canonical textual format: one operation
// per line inside a nir.module block, attributes in schema-declared order,
// fixed-format literals. The output is deterministic and round-trip stable
// with ParseText.
func (m *Module) Text(reg *schema.Registry) string {
	var b strings.Builder
	b.WriteString("nir.module {\n")
	for _, op := range m.Ops {
		b.WriteString("  ")
		writeOp(&b, reg, op)
		b.WriteByte('\n')
	}
	b.WriteString("}\n")
	return b.String()
}

func writeOp(b *strings.Builder, reg *schema.Registry, op *Operation) {
	b.WriteString(op.Header())
	if len(op.Attrs) == 0 {
		return
	}
	b.WriteString(" { ")
	first := true
	for _, key := range attrOrder(reg, op) {
		val, ok := op.Attrs[key]
		if !ok {
			continue
		}
		if !first {
			b.WriteString(", ")
		}
		first = false
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(val.String())
	}
	b.WriteString(" }")
}

// attrOrder returns the print order for an operation's attributes: the
// schema declaration order, with any keys unknown to the schema appended
// alphabetically so the printer stays deterministic for every input.
func attrOrder(reg *schema.Registry, op *Operation) []string {
	keys := make([]string, 0, len(op.Attrs))
	seen := make(map[string]bool, len(op.Attrs))
	if spec, ok := reg.Lookup(op.Dialect, op.Name, op.Version); ok {
		for _, as := range spec.Attrs {
			if _, present := op.Attrs[as.Name]; present {
				keys = append(keys, as.Name)
				seen[as.Name] = true
			}
		}
	}
	var extra []string
	for k := range op.Attrs {
		if !seen[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return append(keys, extra...)
}
