package litetable

import (
	"sort"
)

// EntityID is the row key of a LiteTable row.
type EntityID string

// TimestampedValue stores a value with its timestamp
type TimestampedValue struct {
	Value       []byte `json:"value"`
	Timestamp   int64  `json:"timestamp"` // unix nanoseconds
	IsTombstone bool   `json:"tombstone"` // if the value is slated for deletion
}

// Versions is the version history of a single column, newest first once it has been selected
// through a data request.
type Versions []TimestampedValue

// Latest returns the newest cell in the history.
func (v Versions) Latest() (TimestampedValue, bool) {
	if len(v) == 0 {
		return TimestampedValue{}, false
	}
	latest := v[0]
	for _, c := range v[1:] {
		if c.Timestamp > latest.Timestamp {
			latest = c
		}
	}
	return latest, true
}

// SortNewestFirst orders the versions by timestamp descending, in place.
func (v Versions) SortNewestFirst() {
	sort.SliceStable(v, func(i, j int) bool {
		return v[i].Timestamp > v[j].Timestamp
	})
}

// VersionedQualifier maps qualifiers to their timestamped values
type VersionedQualifier map[string]Versions

// FamilyValues is the field value produced when an entire column family is requested.
type FamilyValues = VersionedQualifier

// Data is the shape of a table held in memory: rowKey -> family -> qualifier -> versions.
type Data map[string]map[string]VersionedQualifier

// Row defines a row of data in LiteTable:
//
// Example:
//
//	Row{
//	  Key: "row1",
//	  Columns: map[string]VersionedQualifier{
//	    "family1": {
//	      "qualifier1": {{Value: []byte("value1"), Timestamp: 2}},
//	      "qualifier2": {{Value: []byte("value2"), Timestamp: 1}},
//	    },
//	    "family2": {
//	      "qualifier1": {{Value: []byte("value3"), Timestamp: 1}},
//	    },
//	  },
//	}
//
// This represents a row with key "row1" containing two families: "family1" and "family2",
// each with their respective qualifiers and versions.
type Row struct {
	Key     EntityID                      `json:"key"`
	Columns map[string]VersionedQualifier `json:"cols"` // family → qualifier → Versions
}

// NewRow returns an empty row for the given key.
func NewRow(key EntityID) *Row {
	return &Row{
		Key:     key,
		Columns: make(map[string]VersionedQualifier),
	}
}

// Add appends a cell under family:qualifier.
func (r *Row) Add(family, qualifier string, cell TimestampedValue) {
	if r.Columns == nil {
		r.Columns = make(map[string]VersionedQualifier)
	}
	if _, exists := r.Columns[family]; !exists {
		r.Columns[family] = make(VersionedQualifier)
	}
	r.Columns[family][qualifier] = append(r.Columns[family][qualifier], cell)
}

// ContainsFamily reports whether the row holds at least one cell in the family.
func (r *Row) ContainsFamily(family string) bool {
	for _, versions := range r.Columns[family] {
		if len(versions) > 0 {
			return true
		}
	}
	return false
}

// ContainsColumn reports whether the row holds at least one cell at family:qualifier.
func (r *Row) ContainsColumn(family, qualifier string) bool {
	return len(r.Columns[family][qualifier]) > 0
}

// FamilyValues returns every non-empty qualifier of the family.
func (r *Row) FamilyValues(family string) FamilyValues {
	out := make(FamilyValues, len(r.Columns[family]))
	for qualifier, versions := range r.Columns[family] {
		if len(versions) > 0 {
			out[qualifier] = versions
		}
	}
	return out
}

// Values returns the versions stored at family:qualifier.
func (r *Row) Values(family, qualifier string) Versions {
	return r.Columns[family][qualifier]
}
