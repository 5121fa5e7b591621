package scheme

import (
	"context"
	"fmt"
	"github.com/litetable/litetable-scheme/internal/rowstore"
	"github.com/litetable/litetable-scheme/internal/tuple"
)

// Sink is the per-task write side. It owns one row-store writer for the lifetime of the task.
type Sink struct {
	scheme   *Scheme
	fields   tuple.Fields
	writer   rowstore.Writer
	counters Counters
	closed   bool
}

// OpenSink acquires a writer from the store. Prefer WithSink, which guarantees the release.
func (s *Scheme) OpenSink(ctx context.Context, store rowstore.Store, counters Counters) (*Sink,
	error) {
	w, err := store.OpenWriter(ctx)
	if err != nil {
		return nil, err
	}
	return &Sink{
		scheme:   s,
		fields:   s.SinkFields(),
		writer:   w,
		counters: countersOrNop(counters),
	}, nil
}

// WithSink opens a sink, runs fn and closes the sink on every exit path, including a panic in
// fn. A close error is returned only when fn succeeded.
func (s *Scheme) WithSink(ctx context.Context, store rowstore.Store, counters Counters,
	fn func(*Sink) error) (err error) {
	sink, err := s.OpenSink(ctx, store, counters)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := sink.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to release writer: %w", closeErr)
		}
	}()
	return fn(sink)
}

// Fields returns the declared sink fields.
func (k *Sink) Fields() tuple.Fields {
	return k.fields
}

// Put writes one tuple declared over Fields.
func (k *Sink) Put(ctx context.Context, t tuple.Tuple) error {
	if k.closed {
		return ErrSinkClosed
	}
	if err := PutTuple(ctx, k.scheme.mapping, k.fields, k.scheme.timestampField, t, k.writer,
		k.scheme.clock); err != nil {
		return err
	}
	k.counters.Increment(CounterGroup, CounterRowsWritten, 1)
	return nil
}

// Close releases the writer. Calling Close more than once is a no-op.
func (k *Sink) Close() error {
	if k.closed {
		return nil
	}
	k.closed = true
	return k.writer.Close()
}
