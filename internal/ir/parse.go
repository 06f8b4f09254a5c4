package ir

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/spikeworks/nir/internal/schema"
)

// ParseError reports a malformed textual module. It names the offending
// line and token; no partial module is ever returned alongside it.
type ParseError struct {
	Line  int
	Token string
	Msg   string
}

func (e *ParseError) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("line %d: %s: %q", e.Line, e.Msg, e.Token)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// ParseText parses the canonical textual format into a module. It is the
// left inverse of Text: for any validly built module m,
// ParseText(reg, m.Text(reg)).Text(reg) == m.Text(reg).
//
// Parsing fails on unknown (dialect, name, version) triples, unknown or
// missing required attributes, kind mismatches, and malformed literals.
func ParseText(reg *schema.Registry, input string) (*Module, error) {
	m := NewModule()
	scanner := bufio.NewScanner(strings.NewReader(input))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line == "nir.module {" || line == "{" || line == "}" {
			continue
		}
		op, err := parseOpLine(reg, lineNo, line)
		if err != nil {
			return nil, err
		}
		m.Push(op)
	}
	return m, nil
}

func parseOpLine(reg *schema.Registry, lineNo int, line string) (*Operation, error) {
	header := line
	body := ""
	if open := strings.IndexByte(line, '{'); open >= 0 {
		closing := strings.LastIndexByte(line, '}')
		if closing < open {
			return nil, &ParseError{Line: lineNo, Msg: "missing '}' in operation"}
		}
		header = strings.TrimSpace(line[:open])
		body = strings.TrimSpace(line[open+1 : closing])
	}

	dialect, name, version, err := parseHeader(lineNo, header)
	if err != nil {
		return nil, err
	}
	spec, ok := reg.Lookup(dialect, name, version)
	if !ok {
		return nil, &ParseError{Line: lineNo, Token: header, Msg: "unknown operation"}
	}

	op := NewOperation(dialect, name, version)
	if body != "" {
		for _, pair := range strings.Split(body, ",") {
			pair = strings.TrimSpace(pair)
			if pair == "" {
				continue
			}
			colon := strings.IndexByte(pair, ':')
			if colon < 0 {
				return nil, &ParseError{Line: lineNo, Token: pair, Msg: "missing ':' in attribute"}
			}
			key := strings.TrimSpace(pair[:colon])
			raw := strings.TrimSpace(pair[colon+1:])
			as, ok := spec.Attr(key)
			if !ok {
				return nil, &ParseError{Line: lineNo, Token: key, Msg: fmt.Sprintf("unknown attribute for %s", spec.Header())}
			}
			if _, dup := op.Attrs[key]; dup {
				return nil, &ParseError{Line: lineNo, Token: key, Msg: "duplicate attribute"}
			}
			val, err := parseValue(lineNo, as.Kind, raw)
			if err != nil {
				return nil, err
			}
			op.Set(key, val)
		}
	}

	for _, as := range spec.Attrs {
		if as.Required {
			if _, present := op.Attrs[as.Name]; !present {
				return nil, &ParseError{Line: lineNo, Token: as.Name, Msg: fmt.Sprintf("missing required attribute in %s", spec.Header())}
			}
		}
	}
	return op, nil
}

// parseHeader splits "dialect.name@vN". The dialect is everything before
// the first dot; op names may themselves contain dots (simulate.run).
func parseHeader(lineNo int, header string) (dialect, name string, version int, err error) {
	at := strings.LastIndexByte(header, '@')
	if at < 0 {
		return "", "", 0, &ParseError{Line: lineNo, Token: header, Msg: "missing @version in header"}
	}
	ver := header[at+1:]
	if !strings.HasPrefix(ver, "v") {
		return "", "", 0, &ParseError{Line: lineNo, Token: ver, Msg: "malformed version tag"}
	}
	version, convErr := strconv.Atoi(ver[1:])
	if convErr != nil || version < 0 {
		return "", "", 0, &ParseError{Line: lineNo, Token: ver, Msg: "malformed version number"}
	}
	qualified := header[:at]
	dot := strings.IndexByte(qualified, '.')
	if dot <= 0 || dot == len(qualified)-1 {
		return "", "", 0, &ParseError{Line: lineNo, Token: qualified, Msg: "missing '.' between dialect and name"}
	}
	return qualified[:dot], qualified[dot+1:], version, nil
}

// unit suffixes accepted (and emitted) per kind.
var kindSuffix = map[schema.AttrKind]string{
	schema.KindDuration:    "ns",
	schema.KindTime:        "ns",
	schema.KindVoltage:     "mV",
	schema.KindResistance:  "MΩ",
	schema.KindCapacitance: "nF",
	schema.KindCurrent:     "nA",
	schema.KindRate:        "Hz",
}

func parseValue(lineNo int, kind schema.AttrKind, raw string) (Attr, error) {
	if suffix, ok := kindSuffix[kind]; ok {
		raw = strings.TrimSpace(strings.TrimSuffix(raw, suffix))
	}
	switch kind {
	case schema.KindDuration, schema.KindTime:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 0 {
			return nil, &ParseError{Line: lineNo, Token: raw, Msg: "malformed nanosecond literal"}
		}
		if kind == schema.KindTime {
			return Time(n), nil
		}
		return Duration(n), nil
	case schema.KindVoltage, schema.KindResistance, schema.KindCapacitance,
		schema.KindCurrent, schema.KindRate, schema.KindWeight, schema.KindFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, &ParseError{Line: lineNo, Token: raw, Msg: "malformed numeric literal"}
		}
		switch kind {
		case schema.KindVoltage:
			return Voltage(f), nil
		case schema.KindResistance:
			return Resistance(f), nil
		case schema.KindCapacitance:
			return Capacitance(f), nil
		case schema.KindCurrent:
			return Current(f), nil
		case schema.KindRate:
			return Rate(f), nil
		case schema.KindWeight:
			return Weight(f), nil
		default:
			return Float(f), nil
		}
	case schema.KindInt:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, &ParseError{Line: lineNo, Token: raw, Msg: "malformed integer literal"}
		}
		return Int(n), nil
	case schema.KindBool:
		switch raw {
		case "true":
			return Bool(true), nil
		case "false":
			return Bool(false), nil
		default:
			return nil, &ParseError{Line: lineNo, Token: raw, Msg: "malformed boolean literal"}
		}
	case schema.KindRange:
		sep := strings.Index(raw, "..")
		if sep < 0 {
			return nil, &ParseError{Line: lineNo, Token: raw, Msg: "malformed range, expected start..end"}
		}
		start, err1 := strconv.ParseUint(strings.TrimSpace(raw[:sep]), 10, 32)
		end, err2 := strconv.ParseUint(strings.TrimSpace(raw[sep+2:]), 10, 32)
		if err1 != nil || err2 != nil {
			return nil, &ParseError{Line: lineNo, Token: raw, Msg: "malformed range bound"}
		}
		return Range{Start: uint32(start), End: uint32(end)}, nil
	case schema.KindNeuronRef:
		body, ok := strings.CutPrefix(raw, "%n")
		if !ok {
			return nil, &ParseError{Line: lineNo, Token: raw, Msg: "malformed neuron reference, expected %n<id>"}
		}
		id, err := strconv.ParseUint(body, 10, 32)
		if err != nil {
			return nil, &ParseError{Line: lineNo, Token: raw, Msg: "malformed neuron id"}
		}
		return NeuronRef(uint32(id)), nil
	default:
		return nil, &ParseError{Line: lineNo, Token: raw, Msg: "unsupported attribute kind"}
	}
}
