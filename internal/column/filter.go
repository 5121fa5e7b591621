package column

import (
	"bytes"
	"encoding/json"
	"fmt"
	"github.com/litetable/litetable-scheme/internal/litetable"
	"regexp"
	"sync"
)

const (
	KindQualifierRegex = "qualifier_regex"
	KindValuePrefix    = "value_prefix"
	KindAnd            = "and"
)

// Filter is a cell predicate evaluated by the row store. Filters travel inside the serialized
// data request, so every implementation must marshal to JSON and be registered under its Kind.
type Filter interface {
	Kind() string
	Accept(qualifier string, cell litetable.TimestampedValue) bool
}

var (
	registryMux sync.RWMutex
	registry    = map[string]func() Filter{
		KindQualifierRegex: func() Filter { return &QualifierRegex{} },
		KindValuePrefix:    func() Filter { return &ValuePrefix{} },
		KindAnd:            func() Filter { return &And{} },
	}
)

// RegisterFilter makes a custom filter kind decodable. The factory must return a pointer that
// json.Unmarshal can populate.
func RegisterFilter(kind string, factory func() Filter) {
	registryMux.Lock()
	defer registryMux.Unlock()
	registry[kind] = factory
}

type envelope struct {
	Kind string          `json:"kind"`
	Spec json.RawMessage `json:"spec"`
}

// MarshalFilter encodes a filter with its kind so UnmarshalFilter can restore it.
func MarshalFilter(f Filter) ([]byte, error) {
	if f == nil {
		return nil, nil
	}
	spec, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s filter: %w", f.Kind(), err)
	}
	return json.Marshal(&envelope{Kind: f.Kind(), Spec: spec})
}

// UnmarshalFilter decodes a filter produced by MarshalFilter. Empty input decodes to nil.
func UnmarshalFilter(data []byte) (Filter, error) {
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to unmarshal filter envelope: %w", err)
	}

	registryMux.RLock()
	factory, ok := registry[env.Kind]
	registryMux.RUnlock()
	if !ok {
		return nil, newError(ErrUnknownFilter, "%q", env.Kind)
	}

	f := factory()
	if err := json.Unmarshal(env.Spec, f); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s filter: %w", env.Kind, err)
	}
	return f, nil
}

// FiltersEqual compares two filters by their serialized form.
func FiltersEqual(a, b Filter) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ab, err := MarshalFilter(a)
	if err != nil {
		return false
	}
	bb, err := MarshalFilter(b)
	if err != nil {
		return false
	}
	return bytes.Equal(ab, bb)
}

// QualifierRegex accepts cells whose qualifier fully matches the pattern.
type QualifierRegex struct {
	pattern string
	re      *regexp.Regexp
}

// NewQualifierRegex compiles the pattern; it must match the whole qualifier.
func NewQualifierRegex(pattern string) (*QualifierRegex, error) {
	f := &QualifierRegex{}
	if err := f.compile(pattern); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *QualifierRegex) compile(pattern string) error {
	re, err := regexp.Compile("^(?:" + pattern + ")$")
	if err != nil {
		return fmt.Errorf("invalid qualifier regex %q: %w", pattern, err)
	}
	f.pattern = pattern
	f.re = re
	return nil
}

func (f *QualifierRegex) Kind() string { return KindQualifierRegex }

func (f *QualifierRegex) Accept(qualifier string, _ litetable.TimestampedValue) bool {
	return f.re != nil && f.re.MatchString(qualifier)
}

func (f *QualifierRegex) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Pattern string `json:"pattern"`
	}{Pattern: f.pattern})
}

func (f *QualifierRegex) UnmarshalJSON(data []byte) error {
	var spec struct {
		Pattern string `json:"pattern"`
	}
	if err := json.Unmarshal(data, &spec); err != nil {
		return err
	}
	return f.compile(spec.Pattern)
}

// ValuePrefix accepts cells whose value starts with Prefix.
type ValuePrefix struct {
	Prefix []byte `json:"prefix"`
}

func (f *ValuePrefix) Kind() string { return KindValuePrefix }

func (f *ValuePrefix) Accept(_ string, cell litetable.TimestampedValue) bool {
	return bytes.HasPrefix(cell.Value, f.Prefix)
}

// And accepts a cell only when every child filter does.
type And struct {
	Filters []Filter
}

func (f *And) Kind() string { return KindAnd }

func (f *And) Accept(qualifier string, cell litetable.TimestampedValue) bool {
	for _, child := range f.Filters {
		if !child.Accept(qualifier, cell) {
			return false
		}
	}
	return true
}

func (f *And) MarshalJSON() ([]byte, error) {
	children := make([]json.RawMessage, 0, len(f.Filters))
	for _, child := range f.Filters {
		b, err := MarshalFilter(child)
		if err != nil {
			return nil, err
		}
		children = append(children, b)
	}
	return json.Marshal(children)
}

func (f *And) UnmarshalJSON(data []byte) error {
	var children []json.RawMessage
	if err := json.Unmarshal(data, &children); err != nil {
		return err
	}
	f.Filters = make([]Filter, 0, len(children))
	for _, raw := range children {
		child, err := UnmarshalFilter(raw)
		if err != nil {
			return err
		}
		if child != nil {
			f.Filters = append(f.Filters, child)
		}
	}
	return nil
}
