package scheme

import (
	"context"
	"errors"
	"github.com/litetable/litetable-scheme/internal/request"
	"github.com/litetable/litetable-scheme/internal/rowstore"
	"github.com/litetable/litetable-scheme/internal/tuple"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"io"
)

// Source is the per-task read side. It is not safe for concurrent use.
type Source struct {
	scheme   *Scheme
	fields   tuple.Fields
	rows     rowstore.RowIterator
	counters Counters
	logger   zerolog.Logger

	skipped int
	drained bool
}

// OpenSource decodes the data request stored by SourceConfInit and acquires a row iterator for
// the partition. The caller must Close the source.
func (s *Scheme) OpenSource(ctx context.Context, conf JobConf, reader rowstore.Reader,
	p rowstore.Partition, counters Counters) (*Source, error) {
	encoded, _ := conf.Get(request.ConfKey)
	dr, err := request.Decode(encoded)
	if err != nil {
		return nil, err
	}

	rows, err := reader.Scan(ctx, dr, p)
	if err != nil {
		return nil, err
	}

	return &Source{
		scheme:   s,
		fields:   s.SourceFields(),
		rows:     rows,
		counters: countersOrNop(counters),
		logger:   loggerFrom(ctx),
	}, nil
}

// Next returns the next convertible row as a tuple, skipping rows that are missing a required
// column. It returns io.EOF once the partition is drained.
func (src *Source) Next(ctx context.Context) (tuple.Tuple, error) {
	if src.drained {
		return nil, io.EOF
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row, err := src.rows.Next(ctx)
		if errors.Is(err, io.EOF) {
			src.drained = true
			return nil, io.EOF
		}
		if err != nil {
			return nil, err
		}

		t, ok := RowToTuple(src.scheme.mapping, src.fields, src.scheme.timestampField, row)
		if ok {
			src.counters.Increment(CounterGroup, CounterRowsRead, 1)
			return t, nil
		}

		src.skipped++
		src.counters.Increment(CounterGroup, CounterRowsSkipped, 1)
		if src.skipped%src.scheme.loggingInterval == 0 {
			src.logger.Warn().
				Str("entity_id", row.Key.ShellString()).
				Int("skipped", src.skipped).
				Msgf("Skipping row %s: missing column data with no default", row.Key.ShellString())
		}
	}
}

// Fields returns the declared source fields.
func (src *Source) Fields() tuple.Fields {
	return src.fields
}

// Skipped returns how many rows this source has rejected so far.
func (src *Source) Skipped() int {
	return src.skipped
}

// Close releases the row iterator.
func (src *Source) Close() error {
	return src.rows.Close()
}

// loggerFrom prefers a logger attached to ctx and falls back to the global logger.
func loggerFrom(ctx context.Context) zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return *l
	}
	return log.Logger
}
