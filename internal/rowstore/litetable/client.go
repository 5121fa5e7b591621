// Package litetable is the row store backed by a running LiteTable server. Reads and writes go
// through the LiteTable gRPC service; the change feed follows the server's CDC stream.
package litetable

import (
	"context"
	"errors"
	"fmt"
	cdc "github.com/litetable/litetable-cdc/go/v1"
	"github.com/litetable/litetable-db/pkg/proto"
	lt "github.com/litetable/litetable-scheme/internal/litetable"
	"github.com/litetable/litetable-scheme/internal/request"
	"github.com/litetable/litetable-scheme/internal/rowstore"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"sort"
	"time"
)

//go:generate mockgen -destination=client_mock.go -package=litetable -source=client.go

// litetableService is the part of the LiteTable gRPC service the row store uses.
type litetableService interface {
	Read(ctx context.Context, in *proto.ReadRequest, opts ...grpc.CallOption) (*proto.LitetableData,
		error)
	Write(ctx context.Context, in *proto.WriteRequest, opts ...grpc.CallOption) (*proto.LitetableData,
		error)
	CreateFamily(ctx context.Context, in *proto.CreateFamilyRequest,
		opts ...grpc.CallOption) (*proto.Empty, error)
}

// cdcService opens CDC subscriptions.
type cdcService interface {
	CDCStream(ctx context.Context, in *cdc.CDCSubscriptionRequest,
		opts ...grpc.CallOption) (cdc.CDCService_CDCStreamClient, error)
}

const defaultRetries = 5

// Client implements the app.Dependency interface for a LiteTable connection.
type Client struct {
	address string
	port    int

	conn    *grpc.ClientConn
	cdcConn *grpc.ClientConn

	service litetableService
	cdc     cdcService
}

type Config struct {
	Address string
	Port    int

	// CDCAddress and CDCPort locate the change feed. A zero CDCPort disables it.
	CDCAddress string
	CDCPort    int

	// Retries bounds retries of a failed unary call. Zero means 5; a negative value disables
	// retries.
	Retries int
}

func (c *Config) validate() error {
	var errGrp []error
	if c.Address == "" {
		errGrp = append(errGrp, fmt.Errorf("address required"))
	}
	if c.Port == 0 {
		errGrp = append(errGrp, fmt.Errorf("port required"))
	}
	if c.CDCPort != 0 && c.CDCAddress == "" {
		errGrp = append(errGrp, fmt.Errorf("cdc address required when cdc port is set"))
	}
	return errors.Join(errGrp...)
}

func (c *Config) retries() uint64 {
	switch {
	case c.Retries < 0:
		return 0
	case c.Retries == 0:
		return defaultRetries
	default:
		return uint64(c.Retries)
	}
}

// New creates a client. No connection is made until the first call.
func New(cfg *Config) (*Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	conn, err := grpc.NewClient(fmt.Sprintf("%s:%d", cfg.Address, cfg.Port),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(retryingUnaryClientInterceptor(cfg.retries())),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create litetable client: %w", err)
	}

	c := &Client{
		address: cfg.Address,
		port:    cfg.Port,
		conn:    conn,
		service: proto.NewLitetableServiceClient(conn),
	}

	if cfg.CDCPort != 0 {
		cdcConn, err := grpc.NewClient(fmt.Sprintf("%s:%d", cfg.CDCAddress, cfg.CDCPort),
			grpc.WithTransportCredentials(insecure.NewCredentials()),
		)
		if err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to create cdc client: %w", err)
		}
		c.cdcConn = cdcConn
		c.cdc = cdc.NewCDCServiceClient(cdcConn)
	}

	return c, nil
}

func (c *Client) Start() error {
	log.Info().Msgf("LiteTable client targeting %s:%d", c.address, c.port)
	return nil
}

func (c *Client) Stop() error {
	var errGrp []error
	if c.conn != nil {
		errGrp = append(errGrp, c.conn.Close())
	}
	if c.cdcConn != nil {
		errGrp = append(errGrp, c.cdcConn.Close())
	}
	return errors.Join(errGrp...)
}

func (c *Client) Name() string {
	return "LiteTable Client"
}

// CreateFamilies registers column families on the server.
func (c *Client) CreateFamilies(ctx context.Context, families ...string) error {
	if len(families) == 0 {
		return nil
	}
	start := time.Now()
	if _, err := c.service.CreateFamily(ctx, &proto.CreateFamilyRequest{Family: families}); err != nil {
		return fmt.Errorf("failed to create families %v: %w", families, err)
	}
	log.Debug().Msgf("CreateFamily successful: %v", time.Since(start))
	return nil
}

// Scan reads the partition one family at a time and merges the results per row. Version
// selection happens here, after the read, so filters and time ranges behave exactly as they do
// against the in-memory store.
func (c *Client) Scan(ctx context.Context, req *request.DataRequest,
	p rowstore.Partition) (rowstore.RowIterator, error) {
	merged := make(map[string]*lt.Row)

	for _, family := range req.Families() {
		msg := readRequest(req, family, p)

		data, err := c.service.Read(ctx, msg)
		if err != nil {
			return nil, fmt.Errorf("failed to read family %s: %w", family, err)
		}
		mergeRows(merged, data)
	}

	rows := make([]*lt.Row, 0, len(merged))
	for _, raw := range merged {
		rows = append(rows, req.Select(raw))
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Key < rows[j].Key
	})

	log.Debug().Msgf("scanned %d rows with prefix %q", len(rows), p.Prefix)
	return rowstore.NewSliceIterator(rows), nil
}

// readRequest builds the Read call for one family. The server needs a row key, so an empty
// partition reads every row through a match-all regex.
func readRequest(req *request.DataRequest, family string, p rowstore.Partition) *proto.ReadRequest {
	msg := &proto.ReadRequest{
		RowKey:    p.Prefix,
		Family:    family,
		QueryType: proto.QueryType_PREFIX,
	}
	if p.Prefix == "" {
		msg.RowKey = ".*"
		msg.QueryType = proto.QueryType_REGEX
	}

	var qualifiers []string
	for _, col := range req.Columns {
		if col.Family != family {
			continue
		}
		if col.IsFamily() {
			// the whole family is needed
			return msg
		}
		qualifiers = append(qualifiers, col.Qualifier)
	}
	msg.Qualifiers = qualifiers
	return msg
}

// OpenWriter returns a writer over this connection.
func (c *Client) OpenWriter(_ context.Context) (rowstore.Writer, error) {
	return &writer{service: c.service}, nil
}

// writer sends one Write per cell. LiteTable stamps writes with its own clock, so the
// timestamp passed to Put is not transmitted. Configurations that need written timestamps to
// be honored are rejected by the config package.
type writer struct {
	service litetableService
	closed  bool
	warned  bool
}

func (w *writer) Put(ctx context.Context, key lt.EntityID, family, qualifier string,
	timestamp int64, value []byte) error {
	if w.closed {
		return errors.New("writer is closed")
	}

	if !w.warned {
		log.Warn().Int64("timestamp", timestamp).
			Msg("LiteTable assigns write timestamps, requested timestamps are ignored")
		w.warned = true
	}

	_, err := w.service.Write(ctx, &proto.WriteRequest{
		RowKey: string(key),
		Family: family,
		Qualifiers: []*proto.ColumnQualifier{
			{Name: qualifier, Value: value},
		},
	})
	return err
}

func (w *writer) Close() error {
	w.closed = true
	return nil
}
