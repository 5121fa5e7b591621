// Package tuple holds the ordered, fixed-arity records exchanged with tuple-oriented operators.
package tuple

import (
	"fmt"
)

// Fields is the declared, ordered sequence of tuple field names.
type Fields []string

// Index returns the position of name, or -1.
func (f Fields) Index(name string) int {
	for i, n := range f {
		if n == name {
			return i
		}
	}
	return -1
}

// Tuple is one record. Element i is the value of field i of the Fields it was built against.
type Tuple []any

// Get returns the value of the named field.
func (t Tuple) Get(fields Fields, name string) (any, error) {
	i := fields.Index(name)
	if i < 0 {
		return nil, fmt.Errorf("unknown field %q", name)
	}
	if i >= len(t) {
		return nil, fmt.Errorf("tuple has %d values, field %q is at position %d", len(t), name, i)
	}
	return t[i], nil
}

// Project rebuilds t, declared over from, as a tuple over to. Every field in to must exist in
// from.
func Project(t Tuple, from, to Fields) (Tuple, error) {
	out := make(Tuple, len(to))
	for i, name := range to {
		v, err := t.Get(from, name)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
