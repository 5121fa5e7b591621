package column

import (
	"reflect"
)

// Field binds a tuple field name to the column request that produces it.
type Field struct {
	Name    string
	Request Request
}

// Mapping is an ordered, immutable mapping from tuple field names to column requests. It is
// built once per job and shared read-only by every task.
type Mapping struct {
	fields []Field
	index  map[string]int
}

// NewMapping validates the fields and applies option defaults. Field order is preserved.
func NewMapping(fields ...Field) (*Mapping, error) {
	m := &Mapping{
		fields: make([]Field, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}

	for _, f := range fields {
		if f.Name == "" {
			return nil, newError(ErrInvalidField, "field name cannot be empty")
		}
		if f.Name == EntityIDField {
			return nil, newError(ErrReservedField, "%s", f.Name)
		}
		if _, exists := m.index[f.Name]; exists {
			return nil, newError(ErrDuplicateField, "%s", f.Name)
		}

		req, err := normalizeRequest(f.Request)
		if err != nil {
			return nil, wrapError(ErrInvalidField, err, "field %s", f.Name)
		}

		m.index[f.Name] = len(m.fields)
		m.fields = append(m.fields, Field{Name: f.Name, Request: req})
	}

	return m, nil
}

// Len returns the number of column fields.
func (m *Mapping) Len() int {
	return len(m.fields)
}

// Names returns the field names in declared order.
func (m *Mapping) Names() []string {
	names := make([]string, len(m.fields))
	for i, f := range m.fields {
		names[i] = f.Name
	}
	return names
}

// Fields returns a copy of the declared fields.
func (m *Mapping) Fields() []Field {
	out := make([]Field, len(m.fields))
	copy(out, m.fields)
	return out
}

// Lookup returns the request bound to name.
func (m *Mapping) Lookup(name string) (Request, bool) {
	i, ok := m.index[name]
	if !ok {
		return nil, false
	}
	return m.fields[i].Request, true
}

// Contains reports whether name is a column field.
func (m *Mapping) Contains(name string) bool {
	_, ok := m.index[name]
	return ok
}

// Equal reports whether both mappings declare the same fields, in the same order, with equal
// requests.
func (m *Mapping) Equal(o *Mapping) bool {
	if m == nil || o == nil {
		return m == o
	}
	if len(m.fields) != len(o.fields) {
		return false
	}
	for i := range m.fields {
		if m.fields[i].Name != o.fields[i].Name {
			return false
		}
		if !RequestsEqual(m.fields[i].Request, o.fields[i].Request) {
			return false
		}
	}
	return true
}

// RequestsEqual compares two requests variant by variant.
func RequestsEqual(a, b Request) bool {
	switch x := a.(type) {
	case Family:
		y, ok := b.(Family)
		return ok && x.Family == y.Family && optionsEqual(x.Options, y.Options)
	case Qualified:
		y, ok := b.(Qualified)
		return ok && x.Family == y.Family && x.Qualifier == y.Qualifier &&
			optionsEqual(x.Options, y.Options)
	default:
		return a == nil && b == nil
	}
}

func optionsEqual(a, b Options) bool {
	return a.MaxVersions == b.MaxVersions &&
		FiltersEqual(a.Filter, b.Filter) &&
		reflect.DeepEqual(a.Replacement, b.Replacement)
}
