package litetable

import (
	"context"
	"errors"
	"github.com/litetable/litetable-db/pkg/proto"
	"github.com/litetable/litetable-scheme/internal/column"
	lt "github.com/litetable/litetable-scheme/internal/litetable"
	"github.com/litetable/litetable-scheme/internal/request"
	"github.com/litetable/litetable-scheme/internal/rowstore"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"google.golang.org/grpc"
	"io"
	"testing"
)

func TestNew(t *testing.T) {
	tests := map[string]struct {
		cfg       *Config
		expectErr bool
		cdc       bool
	}{
		"valid config": {
			cfg: &Config{Address: "127.0.0.1", Port: 9443},
		},
		"with change feed": {
			cfg: &Config{Address: "127.0.0.1", Port: 9443, CDCAddress: "127.0.0.1",
				CDCPort: 32473},
			cdc: true,
		},
		"missing address": {
			cfg:       &Config{Port: 9443},
			expectErr: true,
		},
		"missing port": {
			cfg:       &Config{Address: "127.0.0.1"},
			expectErr: true,
		},
		"cdc port without address": {
			cfg:       &Config{Address: "127.0.0.1", Port: 9443, CDCPort: 32473},
			expectErr: true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			req := require.New(t)
			c, err := New(tc.cfg)
			if tc.expectErr {
				req.Error(err)
				return
			}
			req.NoError(err)
			req.Equal(tc.cdc, c.cdc != nil)
			req.NoError(c.Stop())
		})
	}
}

func TestConfig_retries(t *testing.T) {
	req := require.New(t)
	req.Equal(uint64(5), (&Config{}).retries())
	req.Equal(uint64(0), (&Config{Retries: -1}).retries())
	req.Equal(uint64(2), (&Config{Retries: 2}).retries())
}

func buildRequest(t *testing.T, requests ...column.Request) *request.DataRequest {
	t.Helper()
	dr, err := request.Build(request.AllTime(), requests)
	require.NoError(t, err)
	return dr
}

func TestReadRequest(t *testing.T) {
	tests := map[string]struct {
		requests   []column.Request
		family     string
		prefix     string
		rowKey     string
		queryType  proto.QueryType
		qualifiers []string
	}{
		"prefix with qualifiers": {
			requests: []column.Request{
				column.Qualified{Family: "main", Qualifier: "name"},
				column.Qualified{Family: "main", Qualifier: "age"},
			},
			family:     "main",
			prefix:     "user:",
			rowKey:     "user:",
			queryType:  proto.QueryType_PREFIX,
			qualifiers: []string{"name", "age"},
		},
		"whole family drops qualifiers": {
			requests: []column.Request{
				column.Qualified{Family: "main", Qualifier: "name"},
				column.Family{Family: "main"},
			},
			family:    "main",
			prefix:    "user:",
			rowKey:    "user:",
			queryType: proto.QueryType_PREFIX,
		},
		"empty partition reads everything": {
			requests: []column.Request{
				column.Qualified{Family: "main", Qualifier: "name"},
				column.Qualified{Family: "meta", Qualifier: "source"},
			},
			family:     "meta",
			rowKey:     ".*",
			queryType:  proto.QueryType_REGEX,
			qualifiers: []string{"source"},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			req := require.New(t)
			msg := readRequest(buildRequest(t, tc.requests...), tc.family,
				rowstore.Partition{Prefix: tc.prefix})
			req.Equal(tc.family, msg.GetFamily())
			req.Equal(tc.rowKey, msg.GetRowKey())
			req.Equal(tc.queryType, msg.GetQueryType())
			req.Equal(tc.qualifiers, msg.GetQualifiers())
		})
	}
}

func protoRow(key, family, qualifier string, values ...*proto.TimestampedValue) *proto.Row {
	return &proto.Row{
		Key: key,
		Cols: map[string]*proto.VersionedQualifier{
			family: {
				Qualifiers: map[string]*proto.QualifierValues{
					qualifier: {Values: values},
				},
			},
		},
	}
}

func TestClient_Scan(t *testing.T) {
	ctx := context.Background()
	req := require.New(t)
	ctrl := gomock.NewController(t)
	service := NewMocklitetableService(ctrl)

	c := &Client{service: service}
	dr := buildRequest(t,
		column.Qualified{Family: "main", Qualifier: "name"},
		column.Family{Family: "meta"},
	)

	service.EXPECT().Read(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, msg *proto.ReadRequest,
			_ ...grpc.CallOption) (*proto.LitetableData, error) {
			switch msg.GetFamily() {
			case "main":
				return &proto.LitetableData{Rows: map[string]*proto.Row{
					"E2": protoRow("E2", "main", "name",
						&proto.TimestampedValue{Value: []byte("Bob"), TimestampUnix: 1}),
					"E1": protoRow("E1", "main", "name",
						&proto.TimestampedValue{Value: []byte("Ann"), TimestampUnix: 1},
						&proto.TimestampedValue{Value: []byte("Anna"), TimestampUnix: 2}),
				}}, nil
			case "meta":
				return &proto.LitetableData{Rows: map[string]*proto.Row{
					"E1": protoRow("E1", "meta", "source",
						&proto.TimestampedValue{Value: []byte("crm"), TimestampUnix: 3}),
				}}, nil
			}
			return nil, errors.New("unexpected family")
		}).Times(2)

	it, err := c.Scan(ctx, dr, rowstore.Partition{Prefix: "E"})
	req.NoError(err)

	first, err := it.Next(ctx)
	req.NoError(err)
	req.Equal(lt.EntityID("E1"), first.Key)
	req.Equal(lt.Versions{{Value: []byte("Anna"), Timestamp: 2}}, first.Values("main", "name"))
	req.True(first.ContainsColumn("meta", "source"))

	second, err := it.Next(ctx)
	req.NoError(err)
	req.Equal(lt.EntityID("E2"), second.Key)
	req.False(second.ContainsFamily("meta"))

	_, err = it.Next(ctx)
	req.ErrorIs(err, io.EOF)
}

func TestClient_ScanError(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	service := NewMocklitetableService(ctrl)

	readErr := errors.New("connection refused")
	service.EXPECT().Read(gomock.Any(), gomock.Any()).Return(nil, readErr)

	c := &Client{service: service}
	_, err := c.Scan(context.Background(), buildRequest(t, column.Family{Family: "main"}),
		rowstore.Partition{})
	req.ErrorIs(err, readErr)
}

func TestClient_CreateFamilies(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	service := NewMocklitetableService(ctrl)
	c := &Client{service: service}

	service.EXPECT().CreateFamily(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, msg *proto.CreateFamilyRequest,
			_ ...grpc.CallOption) (*proto.Empty, error) {
			req.Equal([]string{"main", "meta"}, msg.GetFamily())
			return &proto.Empty{}, nil
		})

	req.NoError(c.CreateFamilies(context.Background(), "main", "meta"))
	// nothing to create, no call
	req.NoError(c.CreateFamilies(context.Background()))
}

func TestWriter_Put(t *testing.T) {
	ctx := context.Background()
	req := require.New(t)
	ctrl := gomock.NewController(t)
	service := NewMocklitetableService(ctrl)
	c := &Client{service: service}

	service.EXPECT().Write(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, msg *proto.WriteRequest,
			_ ...grpc.CallOption) (*proto.LitetableData, error) {
			req.Equal("E1", msg.GetRowKey())
			req.Equal("main", msg.GetFamily())
			req.Len(msg.GetQualifiers(), 1)
			req.Equal("name", msg.GetQualifiers()[0].GetName())
			req.Equal([]byte("Ann"), msg.GetQualifiers()[0].GetValue())
			return &proto.LitetableData{}, nil
		})

	w, err := c.OpenWriter(ctx)
	req.NoError(err)
	req.NoError(w.Put(ctx, "E1", "main", "name", 10, []byte("Ann")))
	req.NoError(w.Close())
	req.Error(w.Put(ctx, "E1", "main", "name", 11, []byte("Ann")))
}
