package scheme

import (
	"context"
	"errors"
	"github.com/litetable/litetable-scheme/internal/column"
	"github.com/litetable/litetable-scheme/internal/litetable"
	"github.com/litetable/litetable-scheme/internal/rowstore"
	"github.com/litetable/litetable-scheme/internal/tuple"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"testing"
	"time"
)

func TestPutTuple_SharedClockReading(t *testing.T) {
	ctx := context.Background()
	req := require.New(t)
	ctrl := gomock.NewController(t)
	w := rowstore.NewMockWriter(ctrl)

	mapping := mustMapping(t,
		column.Field{Name: "name", Request: column.Qualified{Family: "info", Qualifier: "name"}},
		column.Field{Name: "tags", Request: column.Family{Family: "tags"}},
	)
	fields := tuple.Fields{"entityId", "name", "tags"}

	reads := 0
	clock := func() time.Time {
		reads++
		return time.Unix(0, int64(1000*reads))
	}

	gomock.InOrder(
		w.EXPECT().Put(ctx, litetable.EntityID("E1"), "info", "name", int64(1000), []byte("Ann")),
		w.EXPECT().Put(ctx, litetable.EntityID("E1"), "tags", "a", int64(1000), []byte("1")),
		w.EXPECT().Put(ctx, litetable.EntityID("E1"), "tags", "b", int64(1000), []byte("2")),
	)

	err := PutTuple(ctx, mapping, fields, "", tuple.Tuple{
		"E1",
		"Ann",
		map[string]string{"b": "2", "a": "1"},
	}, w, clock)
	req.NoError(err)
	req.Equal(1, reads)
}

func TestPutTuple_TimestampField(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	w := rowstore.NewMockWriter(ctrl)

	fields := tuple.Fields{"entityId", "ts", "name"}
	clock := func() time.Time {
		t.Fatal("clock must not be read when the tuple carries a timestamp")
		return time.Time{}
	}

	w.EXPECT().Put(ctx, litetable.EntityID("E1"), "info", "name", int64(42), []byte("Ann"))

	err := PutTuple(ctx, nameMapping(t), fields, "ts",
		tuple.Tuple{litetable.EntityID("E1"), int64(42), []byte("Ann")}, w, clock)
	require.NoError(t, err)
}

func TestPutTuple_Values(t *testing.T) {
	fields := tuple.Fields{"entityId", "name"}
	clock := func() time.Time { return time.Unix(0, 7) }

	tests := map[string]struct {
		value     any
		written   []byte
		skip      bool
		expectErr error
	}{
		"string": {
			value:   "Ann",
			written: []byte("Ann"),
		},
		"bytes": {
			value:   []byte("Ann"),
			written: []byte("Ann"),
		},
		"single cell": {
			value:   cell("Ann", 1),
			written: []byte("Ann"),
		},
		"versions write the newest": {
			value:   litetable.Versions{cell("old", 1), cell("new", 5), cell("mid", 3)},
			written: []byte("new"),
		},
		"nil is not written": {
			value: nil,
			skip:  true,
		},
		"empty versions are not written": {
			value: litetable.Versions{},
			skip:  true,
		},
		"unsupported type": {
			value:     3.14,
			expectErr: ErrUnsupportedValue,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			req := require.New(t)
			ctrl := gomock.NewController(t)
			w := rowstore.NewMockWriter(ctrl)

			if !tc.skip && tc.expectErr == nil {
				w.EXPECT().Put(ctx, litetable.EntityID("E1"), "info", "name", int64(7), tc.written)
			}

			err := PutTuple(ctx, nameMapping(t), fields, "", tuple.Tuple{"E1", tc.value}, w, clock)
			if tc.expectErr != nil {
				req.ErrorIs(err, tc.expectErr)
				return
			}
			req.NoError(err)
		})
	}
}

func TestPutTuple_InvalidTuples(t *testing.T) {
	clock := time.Now

	tests := map[string]struct {
		fields         tuple.Fields
		timestampField string
		tuple          tuple.Tuple
		expectErr      error
	}{
		"arity mismatch": {
			fields:    tuple.Fields{"entityId", "name"},
			tuple:     tuple.Tuple{"E1"},
			expectErr: ErrInvalidTuple,
		},
		"entity id not first": {
			fields:    tuple.Fields{"name", "entityId"},
			tuple:     tuple.Tuple{"Ann", "E1"},
			expectErr: ErrInvalidTuple,
		},
		"timestamp not second": {
			fields:         tuple.Fields{"entityId", "name", "ts"},
			timestampField: "ts",
			tuple:          tuple.Tuple{"E1", "Ann", int64(1)},
			expectErr:      ErrInvalidTuple,
		},
		"bad entity id": {
			fields:    tuple.Fields{"entityId", "name"},
			tuple:     tuple.Tuple{42, "Ann"},
			expectErr: ErrUnsupportedValue,
		},
		"bad timestamp": {
			fields:         tuple.Fields{"entityId", "ts", "name"},
			timestampField: "ts",
			tuple:          tuple.Tuple{"E1", "yesterday", "Ann"},
			expectErr:      ErrUnsupportedValue,
		},
		"unmapped field": {
			fields:    tuple.Fields{"entityId", "age"},
			tuple:     tuple.Tuple{"E1", "30"},
			expectErr: ErrInvalidTuple,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			req := require.New(t)
			ctrl := gomock.NewController(t)
			w := rowstore.NewMockWriter(ctrl)

			err := PutTuple(context.Background(), nameMapping(t), tc.fields, tc.timestampField,
				tc.tuple, w, clock)
			req.ErrorIs(err, tc.expectErr)
		})
	}
}

func TestPutTuple_WriterErrorPropagates(t *testing.T) {
	ctx := context.Background()
	req := require.New(t)
	ctrl := gomock.NewController(t)
	w := rowstore.NewMockWriter(ctrl)

	writeErr := errors.New("write rejected")
	w.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(),
		gomock.Any()).Return(writeErr)

	err := PutTuple(ctx, nameMapping(t), tuple.Fields{"entityId", "name"}, "",
		tuple.Tuple{"E1", "Ann"}, w, time.Now)
	req.Equal(writeErr, err)
}
