// Package rowstore declares what the tuple scheme needs from a LiteTable row store: a way to
// iterate over rows that match a data request, and a handle to write cells.
package rowstore

import (
	"context"
	"github.com/litetable/litetable-scheme/internal/litetable"
	"github.com/litetable/litetable-scheme/internal/request"
)

//go:generate mockgen -destination=rowstore_mock.go -package=rowstore -source=rowstore.go

// Partition is the slice of the key space one task reads. An empty Prefix covers every row.
type Partition struct {
	Prefix string
}

// RowIterator yields rows already shaped by the data request. Next returns io.EOF once the
// partition is exhausted.
type RowIterator interface {
	Next(ctx context.Context) (*litetable.Row, error)
	Close() error
}

// Reader opens row iterators.
type Reader interface {
	Scan(ctx context.Context, req *request.DataRequest, p Partition) (RowIterator, error)
}

// Writer writes single cells. A writer is owned by one task and released with Close.
type Writer interface {
	Put(ctx context.Context, key litetable.EntityID, family, qualifier string, timestamp int64,
		value []byte) error
	Close() error
}

// Store opens writers.
type Store interface {
	OpenWriter(ctx context.Context) (Writer, error)
}
