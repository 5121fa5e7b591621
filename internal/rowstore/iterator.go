package rowstore

import (
	"context"
	"github.com/litetable/litetable-scheme/internal/litetable"
	"io"
)

// SliceIterator iterates over rows that are already in memory.
type SliceIterator struct {
	rows []*litetable.Row
	pos  int
}

// NewSliceIterator returns an iterator over rows, in order.
func NewSliceIterator(rows []*litetable.Row) *SliceIterator {
	return &SliceIterator{rows: rows}
}

func (s *SliceIterator) Next(ctx context.Context) (*litetable.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.pos >= len(s.rows) {
		return nil, io.EOF
	}
	row := s.rows[s.pos]
	s.pos++
	return row, nil
}

func (s *SliceIterator) Close() error {
	s.rows = nil
	return nil
}
