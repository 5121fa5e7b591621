package scheme

import (
	"github.com/litetable/litetable-scheme/internal/column"
	"github.com/litetable/litetable-scheme/internal/litetable"
	"github.com/litetable/litetable-scheme/internal/tuple"
)

// RowToTuple builds the tuple for one row: the entity id first, then one value per declared
// column field. A field the row has no data for takes its replacement; without one the whole
// row is rejected and RowToTuple returns false.
func RowToTuple(mapping *column.Mapping, fields tuple.Fields, timestampField string,
	row *litetable.Row) (tuple.Tuple, bool) {
	t := make(tuple.Tuple, 0, len(fields))
	t = append(t, row.Key)

	for _, name := range fields {
		if name == column.EntityIDField || (timestampField != "" && name == timestampField) {
			continue
		}

		r, ok := mapping.Lookup(name)
		if !ok {
			return nil, false
		}

		v, ok := fieldValue(r, row)
		if !ok {
			return nil, false
		}
		t = append(t, v)
	}

	return t, true
}

func fieldValue(r column.Request, row *litetable.Row) (any, bool) {
	switch req := r.(type) {
	case column.Family:
		if row.ContainsFamily(req.Family) {
			values := row.FamilyValues(req.Family)
			for qualifier, versions := range values {
				values[qualifier] = truncate(versions, req.Options.MaxVersions)
			}
			return values, true
		}
		return replacement(req.Options)
	case column.Qualified:
		if row.ContainsColumn(req.Family, req.Qualifier) {
			return truncate(row.Values(req.Family, req.Qualifier), req.Options.MaxVersions), true
		}
		return replacement(req.Options)
	default:
		return nil, false
	}
}

func replacement(opts column.Options) (any, bool) {
	if !opts.HasReplacement() {
		return nil, false
	}
	return opts.Replacement, true
}

// truncate caps a newest-first history. Rows are normally already capped by the data request,
// but two fields can share one column with different version counts.
func truncate(v litetable.Versions, maxVersions int) litetable.Versions {
	if maxVersions > 0 && len(v) > maxVersions {
		return v[:maxVersions]
	}
	return v
}
