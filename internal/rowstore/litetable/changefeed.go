package litetable

import (
	"context"
	"errors"
	"fmt"
	"github.com/google/uuid"
	cdc "github.com/litetable/litetable-cdc/go/v1"
	lt "github.com/litetable/litetable-scheme/internal/litetable"
	"github.com/litetable/litetable-scheme/internal/request"
	"github.com/litetable/litetable-scheme/internal/rowstore"
	"github.com/rs/zerolog/log"
	"strings"
)

var errNoChangeFeed = errors.New("change feed is not configured")

type cdcStream interface {
	Recv() (*cdc.CDCEvent, error)
}

// ChangeFeed is a RowIterator over writes as they happen on the server. Every write event
// becomes a single-cell row which is then shaped by the data request; events outside the
// partition or the request are dropped. The feed ends when the server closes the stream.
type ChangeFeed struct {
	clientID string
	req      *request.DataRequest
	prefix   string

	stream cdcStream
	cancel context.CancelFunc
}

// Follow subscribes to the change feed. The subscription lives until Close is called or ctx
// is canceled.
func (c *Client) Follow(ctx context.Context, req *request.DataRequest,
	p rowstore.Partition) (*ChangeFeed, error) {
	if c.cdc == nil {
		return nil, errNoChangeFeed
	}

	streamCtx, cancel := context.WithCancel(ctx)
	clientID := uuid.NewString()

	stream, err := c.cdc.CDCStream(streamCtx, &cdc.CDCSubscriptionRequest{ClientId: clientID})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to subscribe to change feed: %w", err)
	}

	log.Info().Str("client", clientID).Msgf("following changes with prefix %q", p.Prefix)
	return &ChangeFeed{
		clientID: clientID,
		req:      req,
		prefix:   p.Prefix,
		stream:   stream,
		cancel:   cancel,
	}, nil
}

func (f *ChangeFeed) Next(ctx context.Context) (*lt.Row, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		evt, err := f.stream.Recv()
		if err != nil {
			return nil, err
		}

		if row, ok := f.rowFrom(evt); ok {
			return row, nil
		}
	}
}

// rowFrom turns one write event into a one-cell row. Events are not merged per row key.
func (f *ChangeFeed) rowFrom(evt *cdc.CDCEvent) (*lt.Row, bool) {
	if evt.GetOperation() != cdc.LitetableOperation_WRITE || evt.GetTombstone() {
		return nil, false
	}
	if !strings.HasPrefix(evt.GetRowKey(), f.prefix) {
		return nil, false
	}

	raw := lt.NewRow(lt.EntityID(evt.GetRowKey()))
	raw.Add(evt.GetFamily(), evt.GetQualifier(), lt.TimestampedValue{
		Value:     evt.GetValue(),
		Timestamp: evt.GetTimestampUnix(),
	})

	row := f.req.Select(raw)
	if len(row.Columns) == 0 {
		return nil, false
	}
	return row, true
}

// ClientID is the subscriber id the server knows this feed by.
func (f *ChangeFeed) ClientID() string {
	return f.clientID
}

func (f *ChangeFeed) Close() error {
	f.cancel()
	return nil
}

// ChangeFeedReader adapts Follow to rowstore.Reader so a scheme source can read live changes.
func (c *Client) ChangeFeedReader() rowstore.Reader {
	return feedReader{client: c}
}

type feedReader struct {
	client *Client
}

func (r feedReader) Scan(ctx context.Context, req *request.DataRequest,
	p rowstore.Partition) (rowstore.RowIterator, error) {
	feed, err := r.client.Follow(ctx, req, p)
	if err != nil {
		return nil, err
	}
	return feed, nil
}
