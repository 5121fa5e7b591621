package scheme

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"github.com/litetable/litetable-scheme/internal/column"
	"github.com/litetable/litetable-scheme/internal/litetable"
	"github.com/litetable/litetable-scheme/internal/request"
	"github.com/litetable/litetable-scheme/internal/rowstore"
	"github.com/litetable/litetable-scheme/internal/tuple"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"io"
	"strings"
	"sync"
	"testing"
	"time"
)

// recordingCounters stands in for the hosting framework's counters.
type recordingCounters struct {
	mu     sync.Mutex
	values map[string]int64
}

func (c *recordingCounters) Increment(group, name string, delta int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.values == nil {
		c.values = make(map[string]int64)
	}
	c.values[group+"/"+name] += delta
}

func (c *recordingCounters) get(name string) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values[CounterGroup+"/"+name]
}

// staticReader serves fixed rows through the data request, like a real store would.
type staticReader struct {
	rows []*litetable.Row
}

func (r staticReader) Scan(_ context.Context, dr *request.DataRequest,
	_ rowstore.Partition) (rowstore.RowIterator, error) {
	out := make([]*litetable.Row, 0, len(r.rows))
	for _, row := range r.rows {
		out = append(out, dr.Select(row))
	}
	return rowstore.NewSliceIterator(out), nil
}

func openSource(t *testing.T, s *Scheme, reader rowstore.Reader, ctx context.Context,
	counters Counters) *Source {
	t.Helper()
	conf := newMapConf()
	require.NoError(t, s.SourceConfInit(conf))
	src, err := s.OpenSource(ctx, conf, reader, rowstore.Partition{}, counters)
	require.NoError(t, err)
	return src
}

func drain(t *testing.T, ctx context.Context, src *Source) []tuple.Tuple {
	t.Helper()
	var out []tuple.Tuple
	for {
		tup, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			return out
		}
		require.NoError(t, err)
		out = append(out, tup)
	}
}

func TestSource_ConcreteScenario(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()

	s, err := New(&Config{
		Mapping: mustMapping(t, column.Field{
			Name: "name",
			Request: column.Qualified{Family: "info", Qualifier: "name",
				Options: column.Options{MaxVersions: 1}},
		}),
		TimeRange: request.Until(time.Now()),
	})
	req.NoError(err)

	e1 := litetable.NewRow("E1")
	e1.Add("info", "name", cell("Ann", 1))
	e2 := litetable.NewRow("E2")
	e2.Add("info", "age", cell("30", 1))

	counters := &recordingCounters{}
	src := openSource(t, s, staticReader{rows: []*litetable.Row{e1, e2}}, ctx, counters)
	defer func() { _ = src.Close() }()

	tuples := drain(t, ctx, src)
	req.Equal([]tuple.Tuple{
		{litetable.EntityID("E1"), litetable.Versions{cell("Ann", 1)}},
	}, tuples)
	req.Equal(1, src.Skipped())
	req.Equal(int64(1), counters.get(CounterRowsRead))
	req.Equal(int64(1), counters.get(CounterRowsSkipped))

	// drained sources stay drained
	_, err = src.Next(ctx)
	req.ErrorIs(err, io.EOF)
}

func TestSource_FamilyOverlappingQualifiedColumn(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()

	row := litetable.NewRow("E1")
	row.Add("info", "name", cell("x1", 10))
	row.Add("info", "name", cell("x2", 20))
	row.Add("info", "name", cell("Ann", 30))

	name := column.Field{Name: "name", Request: column.Qualified{Family: "info", Qualifier: "name"}}

	// a filtered family would hand its cells to the unfiltered qualified field
	_, err := New(&Config{Mapping: mustMapping(t, name, column.Field{
		Name: "xinfo",
		Request: column.Family{Family: "info", Options: column.Options{
			MaxVersions: 3,
			Filter:      &column.ValuePrefix{Prefix: []byte("x")},
		}},
	})})
	req.ErrorIs(err, request.ErrConflictingColumns)

	s, err := New(&Config{Mapping: mustMapping(t, name, column.Field{
		Name:    "history",
		Request: column.Family{Family: "info", Options: column.Options{MaxVersions: 3}},
	})})
	req.NoError(err)

	src := openSource(t, s, staticReader{rows: []*litetable.Row{row}}, ctx, nil)
	defer func() { _ = src.Close() }()

	tuples := drain(t, ctx, src)
	req.Len(tuples, 1)
	req.Equal(litetable.Versions{cell("Ann", 30)}, tuples[0][1])
	req.Equal(litetable.FamilyValues{
		"name": {cell("Ann", 30), cell("x2", 20), cell("x1", 10)},
	}, tuples[0][2])
}

func TestSource_SkipLogThrottle(t *testing.T) {
	tests := map[string]struct {
		interval int
		skipped  int
		warnings int
	}{
		"every skip": {
			interval: 1,
			skipped:  4,
			warnings: 4,
		},
		"every third skip": {
			interval: 3,
			skipped:  9,
			warnings: 3,
		},
		"partial interval": {
			interval: 5,
			skipped:  9,
			warnings: 1,
		},
		"below the interval": {
			interval: 10,
			skipped:  9,
			warnings: 0,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			req := require.New(t)

			var buf bytes.Buffer
			logger := zerolog.New(&buf)
			ctx := logger.WithContext(context.Background())

			s, err := New(&Config{Mapping: nameMapping(t), LoggingInterval: tc.interval})
			req.NoError(err)

			var rows []*litetable.Row
			for i := 0; i < tc.skipped; i++ {
				rows = append(rows, litetable.NewRow(litetable.EntityID(fmt.Sprintf("it's %d", i))))
				if i%2 == 0 {
					good := litetable.NewRow(litetable.EntityID(fmt.Sprintf("ok%d", i)))
					good.Add("info", "name", cell("Ann", 1))
					rows = append(rows, good)
				}
			}

			counters := &recordingCounters{}
			src := openSource(t, s, staticReader{rows: rows}, ctx, counters)
			tuples := drain(t, ctx, src)

			req.Len(tuples, (tc.skipped+1)/2)
			req.Equal(tc.skipped, src.Skipped())
			req.Equal(int64(tc.skipped), counters.get(CounterRowsSkipped))

			lines := strings.Count(buf.String(), `"level":"warn"`)
			req.Equal(tc.warnings, lines)
			if tc.warnings > 0 {
				req.Contains(buf.String(), `'it'\\''s `)
				req.Contains(buf.String(), "missing column data with no default")
			}
		})
	}
}

func TestSource_ScanErrorPropagates(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	reader := rowstore.NewMockReader(ctrl)

	scanErr := errors.New("connection lost")
	reader.EXPECT().Scan(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, scanErr)

	s, err := New(&Config{Mapping: nameMapping(t)})
	req.NoError(err)

	conf := newMapConf()
	req.NoError(s.SourceConfInit(conf))

	_, err = s.OpenSource(context.Background(), conf, reader, rowstore.Partition{}, nil)
	req.Equal(scanErr, err)
}

func TestSource_IteratorErrorPropagates(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	reader := rowstore.NewMockReader(ctrl)
	rows := rowstore.NewMockRowIterator(ctrl)

	readErr := errors.New("connection lost")
	reader.EXPECT().Scan(gomock.Any(), gomock.Any(), rowstore.Partition{Prefix: "E"}).Return(rows, nil)
	rows.EXPECT().Next(gomock.Any()).Return(nil, readErr)
	rows.EXPECT().Close().Return(nil)

	s, err := New(&Config{Mapping: nameMapping(t)})
	req.NoError(err)

	conf := newMapConf()
	req.NoError(s.SourceConfInit(conf))

	src, err := s.OpenSource(ctx, conf, reader, rowstore.Partition{Prefix: "E"}, nil)
	req.NoError(err)

	_, err = src.Next(ctx)
	req.Equal(readErr, err)
	req.NoError(src.Close())
}

func TestSource_MissingRequest(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	reader := rowstore.NewMockReader(ctrl)

	s, err := New(&Config{Mapping: nameMapping(t)})
	req.NoError(err)

	_, err = s.OpenSource(context.Background(), newMapConf(), reader, rowstore.Partition{}, nil)
	req.ErrorIs(err, request.ErrMissingRequest)
}

func TestSource_Canceled(t *testing.T) {
	req := require.New(t)

	s, err := New(&Config{Mapping: nameMapping(t)})
	req.NoError(err)

	ctx, cancel := context.WithCancel(context.Background())
	src := openSource(t, s, staticReader{}, ctx, nil)
	cancel()

	_, err = src.Next(ctx)
	req.ErrorIs(err, context.Canceled)
}
