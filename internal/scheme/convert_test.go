package scheme

import (
	"github.com/litetable/litetable-scheme/internal/column"
	"github.com/litetable/litetable-scheme/internal/litetable"
	"github.com/litetable/litetable-scheme/internal/tuple"
	"github.com/stretchr/testify/require"
	"testing"
)

func cell(value string, ts int64) litetable.TimestampedValue {
	return litetable.TimestampedValue{Value: []byte(value), Timestamp: ts}
}

func TestRowToTuple(t *testing.T) {
	mapping := mustMapping(t,
		column.Field{Name: "name", Request: column.Qualified{Family: "info", Qualifier: "name"}},
		column.Field{Name: "history", Request: column.Qualified{Family: "info", Qualifier: "name",
			Options: column.Options{MaxVersions: 2}}},
		column.Field{Name: "tags", Request: column.Family{Family: "tags"}},
		column.Field{Name: "city", Request: column.Qualified{Family: "addr", Qualifier: "city",
			Options: column.Options{Replacement: "unknown"}}},
	)
	fields := tuple.Fields{"entityId", "name", "history", "tags", "city"}

	full := litetable.NewRow("E1")
	full.Columns["info"] = litetable.VersionedQualifier{
		"name": {cell("Anna", 3), cell("Ann", 2), cell("A", 1)},
	}
	full.Columns["tags"] = litetable.VersionedQualifier{
		"vip":   {cell("y", 1)},
		"empty": {},
	}
	full.Columns["addr"] = litetable.VersionedQualifier{
		"city": {cell("Oslo", 1)},
	}

	tests := map[string]struct {
		row      func() *litetable.Row
		expected tuple.Tuple
		ok       bool
	}{
		"every column present": {
			row: func() *litetable.Row { return full },
			expected: tuple.Tuple{
				litetable.EntityID("E1"),
				litetable.Versions{cell("Anna", 3)},
				litetable.Versions{cell("Anna", 3), cell("Ann", 2)},
				litetable.FamilyValues{"vip": {cell("y", 1)}},
				litetable.Versions{cell("Oslo", 1)},
			},
			ok: true,
		},
		"missing column with replacement": {
			row: func() *litetable.Row {
				r := litetable.NewRow("E2")
				r.Columns["info"] = litetable.VersionedQualifier{"name": {cell("Bob", 1)}}
				r.Columns["tags"] = litetable.VersionedQualifier{"new": {cell("y", 1)}}
				return r
			},
			expected: tuple.Tuple{
				litetable.EntityID("E2"),
				litetable.Versions{cell("Bob", 1)},
				litetable.Versions{cell("Bob", 1)},
				litetable.FamilyValues{"new": {cell("y", 1)}},
				"unknown",
			},
			ok: true,
		},
		"missing required column": {
			row: func() *litetable.Row {
				r := litetable.NewRow("E3")
				r.Columns["info"] = litetable.VersionedQualifier{"name": {cell("Cy", 1)}}
				return r
			},
		},
		"empty family counts as missing": {
			row: func() *litetable.Row {
				r := litetable.NewRow("E4")
				r.Columns["info"] = litetable.VersionedQualifier{"name": {cell("Di", 1)}}
				r.Columns["tags"] = litetable.VersionedQualifier{"vip": {}}
				return r
			},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			req := require.New(t)
			got, ok := RowToTuple(mapping, fields, "", tc.row())
			req.Equal(tc.ok, ok)
			if !tc.ok {
				req.Nil(got)
				return
			}
			req.Equal(tc.expected, got)
		})
	}
}

func TestRowToTuple_FieldOrder(t *testing.T) {
	req := require.New(t)
	mapping := mustMapping(t,
		column.Field{Name: "a", Request: column.Qualified{Family: "f", Qualifier: "a"}},
		column.Field{Name: "b", Request: column.Qualified{Family: "f", Qualifier: "b"}},
	)

	row := litetable.NewRow("E1")
	row.Add("f", "a", cell("1", 1))
	row.Add("f", "b", cell("2", 1))

	got, ok := RowToTuple(mapping, tuple.Fields{"entityId", "b", "a"}, "", row)
	req.True(ok)
	req.Equal(tuple.Tuple{
		litetable.EntityID("E1"),
		litetable.Versions{cell("2", 1)},
		litetable.Versions{cell("1", 1)},
	}, got)
}

func TestRowToTuple_UnknownField(t *testing.T) {
	req := require.New(t)
	row := litetable.NewRow("E1")
	row.Add("info", "name", cell("Ann", 1))

	_, ok := RowToTuple(nameMapping(t), tuple.Fields{"entityId", "nope"}, "", row)
	req.False(ok)
}
