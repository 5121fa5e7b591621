// Package request folds a time range and a set of column requests into the DataRequest every
// task reads with, and moves that request across the job submission boundary.
package request

import (
	"encoding/json"
	"fmt"
	"github.com/litetable/litetable-scheme/internal/column"
)

// Column is one column definition of a DataRequest. An empty Qualifier requests the whole
// family.
type Column struct {
	Family      string
	Qualifier   string
	MaxVersions int
	Filter      column.Filter
}

// IsFamily reports whether the definition covers every qualifier in the family.
func (c Column) IsFamily() bool {
	return c.Qualifier == ""
}

func (c Column) key() string {
	if c.IsFamily() {
		return c.Family
	}
	return c.Family + ":" + c.Qualifier
}

type columnJSON struct {
	Family      string          `json:"family"`
	Qualifier   string          `json:"qualifier,omitempty"`
	MaxVersions int             `json:"maxVersions"`
	Filter      json.RawMessage `json:"filter,omitempty"`
}

func (c Column) MarshalJSON() ([]byte, error) {
	filter, err := column.MarshalFilter(c.Filter)
	if err != nil {
		return nil, err
	}
	return json.Marshal(&columnJSON{
		Family:      c.Family,
		Qualifier:   c.Qualifier,
		MaxVersions: c.MaxVersions,
		Filter:      filter,
	})
}

func (c *Column) UnmarshalJSON(data []byte) error {
	var raw columnJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	filter, err := column.UnmarshalFilter(raw.Filter)
	if err != nil {
		return err
	}
	*c = Column{
		Family:      raw.Family,
		Qualifier:   raw.Qualifier,
		MaxVersions: raw.MaxVersions,
		Filter:      filter,
	}
	return nil
}

// DataRequest describes an entire row's worth of desired data.
type DataRequest struct {
	TimeRange TimeRange `json:"timeRange"`
	Columns   []Column  `json:"columns"`
}

// Families returns the distinct families named by the request, in request order.
func (d *DataRequest) Families() []string {
	seen := make(map[string]struct{}, len(d.Columns))
	var out []string
	for _, c := range d.Columns {
		if _, ok := seen[c.Family]; ok {
			continue
		}
		seen[c.Family] = struct{}{}
		out = append(out, c.Family)
	}
	return out
}

// Build emits one column definition per request. Two requests for the same column are merged
// when their filters agree; the larger MaxVersions wins. A family request and a qualified request
// inside that family share cells on read, so they must carry the same filter too.
func Build(tr TimeRange, requests []column.Request) (*DataRequest, error) {
	if err := tr.Validate(); err != nil {
		return nil, err
	}

	dr := &DataRequest{
		TimeRange: tr,
		Columns:   make([]Column, 0, len(requests)),
	}
	positions := make(map[string]int, len(requests))

	for _, r := range requests {
		var c Column
		switch req := r.(type) {
		case column.Family:
			c = Column{Family: req.Family}
		case column.Qualified:
			c = Column{Family: req.Family, Qualifier: req.Qualifier}
		default:
			return nil, fmt.Errorf("unsupported column request %T", r)
		}

		opts := column.OptionsOf(r)
		c.MaxVersions = opts.MaxVersions
		if c.MaxVersions <= 0 {
			c.MaxVersions = 1
		}
		c.Filter = opts.Filter

		if i, exists := positions[c.key()]; exists {
			prev := dr.Columns[i]
			if !column.FiltersEqual(prev.Filter, c.Filter) {
				return nil, newError(ErrConflictingColumns, "%s requested with different filters",
					c.key())
			}
			if c.MaxVersions > prev.MaxVersions {
				dr.Columns[i].MaxVersions = c.MaxVersions
			}
			continue
		}

		if err := checkOverlap(dr.Columns, c); err != nil {
			return nil, err
		}

		if _, err := column.MarshalFilter(c.Filter); err != nil {
			return nil, err
		}

		positions[c.key()] = len(dr.Columns)
		dr.Columns = append(dr.Columns, c)
	}

	return dr, nil
}

// checkOverlap rejects a definition whose cells would also be selected by an existing definition
// of the same family with a different filter.
func checkOverlap(columns []Column, c Column) error {
	for _, prev := range columns {
		if prev.Family != c.Family || prev.IsFamily() == c.IsFamily() {
			continue
		}
		if !column.FiltersEqual(prev.Filter, c.Filter) {
			return newError(ErrConflictingColumns, "%s and %s requested with different filters",
				prev.key(), c.key())
		}
	}
	return nil
}
