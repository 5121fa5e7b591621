package request

import (
	"github.com/litetable/litetable-scheme/internal/litetable"
)

// Select applies the request to a raw row: only requested columns are kept, each history is
// trimmed to live cells inside the time range that pass the filter, ordered newest first and
// capped at MaxVersions. Columns left without cells are dropped. The raw row is not modified.
func (d *DataRequest) Select(raw *litetable.Row) *litetable.Row {
	out := litetable.NewRow(raw.Key)

	for _, c := range d.Columns {
		family, exists := raw.Columns[c.Family]
		if !exists {
			continue
		}

		if c.IsFamily() {
			for qualifier, values := range family {
				d.put(out, c, qualifier, values)
			}
			continue
		}

		values, exists := family[c.Qualifier]
		if !exists {
			continue
		}
		d.put(out, c, c.Qualifier, values)
	}

	return out
}

func (d *DataRequest) put(out *litetable.Row, c Column, qualifier string, values litetable.Versions) {
	selected := d.latestN(c, qualifier, values)
	if len(selected) == 0 {
		return
	}

	// a qualifier covered by both a family and a qualified definition keeps the longer history
	if existing := out.Columns[c.Family][qualifier]; len(existing) >= len(selected) {
		return
	}

	if _, exists := out.Columns[c.Family]; !exists {
		out.Columns[c.Family] = make(litetable.VersionedQualifier)
	}
	out.Columns[c.Family][qualifier] = selected
}

// latestN returns up to MaxVersions of the newest visible values.
func (d *DataRequest) latestN(c Column, qualifier string, values litetable.Versions) litetable.Versions {
	if len(values) == 0 {
		return nil
	}

	sorted := make(litetable.Versions, len(values))
	copy(sorted, values)
	sorted.SortNewestFirst()

	// First pass: Find the newest tombstone (if any)
	var tombstoneTimestamp int64
	var hasTombstone bool
	for _, v := range sorted {
		if v.IsTombstone && (!hasTombstone || v.Timestamp > tombstoneTimestamp) {
			tombstoneTimestamp = v.Timestamp
			hasTombstone = true
		}
	}

	// Second pass: Keep only live values newer than the tombstone
	kept := make(litetable.Versions, 0, len(sorted))
	for _, v := range sorted {
		if v.IsTombstone || (hasTombstone && v.Timestamp <= tombstoneTimestamp) {
			continue
		}
		if !d.TimeRange.Contains(v.Timestamp) {
			continue
		}
		if c.Filter != nil && !c.Filter.Accept(qualifier, v) {
			continue
		}
		kept = append(kept, v)
		if c.MaxVersions > 0 && len(kept) == c.MaxVersions {
			break
		}
	}

	if len(kept) == 0 {
		return nil
	}
	return kept
}
