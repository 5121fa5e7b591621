package litetable

import (
	"github.com/litetable/litetable-db/pkg/proto"
	lt "github.com/litetable/litetable-scheme/internal/litetable"
)

// mergeRows folds a Read response into rows keyed by row key. Responses for different families
// of the same row land in one Row.
func mergeRows(rows map[string]*lt.Row, data *proto.LitetableData) {
	for rowKey, protoRow := range data.GetRows() {
		key := protoRow.GetKey()
		if key == "" {
			key = rowKey
		}

		row, exists := rows[key]
		if !exists {
			row = lt.NewRow(lt.EntityID(key))
			rows[key] = row
		}

		for family, vq := range protoRow.GetCols() {
			for qualifier, qv := range vq.GetQualifiers() {
				for _, tv := range qv.GetValues() {
					row.Add(family, qualifier, lt.TimestampedValue{
						Value:     tv.GetValue(),
						Timestamp: tv.GetTimestampUnix(),
					})
				}
			}
		}
	}
}
