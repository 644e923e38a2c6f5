package value

import (
	"fmt"
	"strings"
)

// Layout declares the field order of a record-shaped block once, so encoders
// and decoders address fields by name instead of by index.
type Layout struct {
	name   string
	tag    int
	fields []string
	index  map[string]int
}

// NewLayout declares a record. It panics on duplicate field names.
func NewLayout(name string, tag int, fields ...string) *Layout {
	l := &Layout{name: name, tag: tag, fields: fields, index: make(map[string]int, len(fields))}
	for i, f := range fields {
		if _, dup := l.index[f]; dup {
			panic(fmt.Sprintf("value: duplicate field %q in layout %s", f, name))
		}
		l.index[f] = i
	}
	return l
}

// Name is the record name used in error messages and codec tables.
func (l *Layout) Name() string { return l.name }

// Tag is the block tag of the record.
func (l *Layout) Tag() int { return l.tag }

// Fields returns the declared field names in block order.
func (l *Layout) Fields() []string { return append([]string(nil), l.fields...) }

// String describes the layout as name{tag: f1, f2}.
func (l *Layout) String() string {
	return fmt.Sprintf("%s{%d: %s}", l.name, l.tag, strings.Join(l.fields, ", "))
}

// Make builds the block. Every declared field must be present and no
// undeclared field may be passed.
func (l *Layout) Make(values map[string]Value) (Value, error) {
	if len(values) != len(l.fields) {
		for k := range values {
			if _, ok := l.index[k]; !ok {
				return Value{}, fmt.Errorf("value: %s has no field %q", l.name, k)
			}
		}
	}
	out := make([]Value, len(l.fields))
	for i, f := range l.fields {
		v, ok := values[f]
		if !ok {
			return Value{}, fmt.Errorf("value: %s: missing field %q", l.name, f)
		}
		out[i] = v
	}
	return Block(l.tag, out...), nil
}

// Record is a block opened through a Layout.
type Record struct {
	layout *Layout
	fields []Value
}

// Open checks tag and arity of v against the layout.
func (l *Layout) Open(v Value) (Record, error) {
	fields, err := v.Block(l.tag, len(l.fields))
	if err != nil {
		return Record{}, fmt.Errorf("value: decoding %s: %w", l.name, err)
	}
	return Record{layout: l, fields: fields}, nil
}

// Get returns the named field. Asking for an undeclared field is a
// programming error and panics.
func (r Record) Get(name string) Value {
	i, ok := r.layout.index[name]
	if !ok {
		panic(fmt.Sprintf("value: %s has no field %q", r.layout.name, name))
	}
	return r.fields[i]
}
