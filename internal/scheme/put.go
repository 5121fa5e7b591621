package scheme

import (
	"context"
	"github.com/litetable/litetable-scheme/internal/column"
	"github.com/litetable/litetable-scheme/internal/litetable"
	"github.com/litetable/litetable-scheme/internal/rowstore"
	"github.com/litetable/litetable-scheme/internal/tuple"
	"sort"
	"time"
)

// PutTuple writes one tuple as cells of the row named by its first field. When timestampField
// is set the second field carries the write timestamp; otherwise clock is read once and every
// cell written by this call shares that reading.
//
// A qualified column is written as a single cell. A family column must carry its own
// qualifiers (a FamilyValues or a qualifier -> value map) and is written one cell per
// qualifier. Nil field values are not written.
func PutTuple(ctx context.Context, mapping *column.Mapping, fields tuple.Fields,
	timestampField string, t tuple.Tuple, w rowstore.Writer, clock func() time.Time) error {
	if len(t) != len(fields) {
		return newError(ErrInvalidTuple, "tuple has %d values for %d fields", len(t), len(fields))
	}
	if len(fields) == 0 || fields[0] != column.EntityIDField {
		return newError(ErrInvalidTuple, "first field must be %s", column.EntityIDField)
	}

	key, err := entityIDOf(t[0])
	if err != nil {
		return err
	}

	var ts int64
	if timestampField != "" {
		if len(fields) < 2 || fields[1] != timestampField {
			return newError(ErrInvalidTuple, "second field must be %s", timestampField)
		}
		if ts, err = timestampOf(t[1]); err != nil {
			return err
		}
	} else {
		ts = clock().UnixNano()
	}

	for i, name := range fields {
		if name == column.EntityIDField || (timestampField != "" && name == timestampField) {
			continue
		}
		if t[i] == nil {
			continue
		}

		r, ok := mapping.Lookup(name)
		if !ok {
			return newError(ErrInvalidTuple, "field %s is not mapped to a column", name)
		}

		switch req := r.(type) {
		case column.Qualified:
			value, ok, err := cellValue(t[i])
			if err != nil {
				return newError(ErrUnsupportedValue, "field %s: %v", name, err)
			}
			if !ok {
				continue
			}
			if err = w.Put(ctx, key, req.Family, req.Qualifier, ts, value); err != nil {
				return err
			}
		case column.Family:
			cells, err := familyCells(t[i])
			if err != nil {
				return newError(ErrUnsupportedValue, "field %s: %v", name, err)
			}
			qualifiers := make([]string, 0, len(cells))
			for q := range cells {
				qualifiers = append(qualifiers, q)
			}
			sort.Strings(qualifiers)
			for _, q := range qualifiers {
				if err = w.Put(ctx, key, req.Family, q, ts, cells[q]); err != nil {
					return err
				}
			}
		default:
			return newError(ErrInvalidTuple, "field %s has unsupported request %T", name, r)
		}
	}

	return nil
}

func entityIDOf(v any) (litetable.EntityID, error) {
	switch id := v.(type) {
	case litetable.EntityID:
		return id, nil
	case string:
		return litetable.EntityID(id), nil
	case []byte:
		return litetable.EntityID(id), nil
	default:
		return "", newError(ErrUnsupportedValue, "entity id of type %T", v)
	}
}

func timestampOf(v any) (int64, error) {
	switch ts := v.(type) {
	case int64:
		return ts, nil
	case int:
		return int64(ts), nil
	case time.Time:
		return ts.UnixNano(), nil
	case litetable.TimestampedValue:
		return ts.Timestamp, nil
	case litetable.Versions:
		if latest, ok := ts.Latest(); ok {
			return latest.Timestamp, nil
		}
		return 0, newError(ErrUnsupportedValue, "timestamp field holds no versions")
	default:
		return 0, newError(ErrUnsupportedValue, "timestamp of type %T", v)
	}
}

// cellValue returns false when there is nothing to write.
func cellValue(v any) ([]byte, bool, error) {
	switch value := v.(type) {
	case []byte:
		return value, true, nil
	case string:
		return []byte(value), true, nil
	case litetable.TimestampedValue:
		return value.Value, true, nil
	case litetable.Versions:
		latest, ok := value.Latest()
		return latest.Value, ok, nil
	default:
		return nil, false, newError(ErrUnsupportedValue, "%T", v)
	}
}

func familyCells(v any) (map[string][]byte, error) {
	out := make(map[string][]byte)
	switch family := v.(type) {
	case litetable.VersionedQualifier:
		for q, versions := range family {
			if latest, ok := versions.Latest(); ok {
				out[q] = latest.Value
			}
		}
	case map[string]litetable.Versions:
		for q, versions := range family {
			if latest, ok := versions.Latest(); ok {
				out[q] = latest.Value
			}
		}
	case map[string][]byte:
		for q, value := range family {
			out[q] = value
		}
	case map[string]string:
		for q, value := range family {
			out[q] = []byte(value)
		}
	default:
		return nil, newError(ErrUnsupportedValue, "family value of type %T", v)
	}
	return out, nil
}
