// Package scheme translates between LiteTable rows and tuples for a batch pipeline. A Scheme is
// immutable job configuration shared by every task; each task opens its own Source or Sink.
package scheme

import (
	"errors"
	"fmt"
	"github.com/litetable/litetable-scheme/internal/column"
	"github.com/litetable/litetable-scheme/internal/request"
	"github.com/litetable/litetable-scheme/internal/tuple"
	"github.com/zeebo/xxh3"
	"strconv"
	"strings"
	"time"
)

const defaultLoggingInterval = 1000

// JobConf is the string-keyed job configuration visible to every task.
type JobConf interface {
	Get(key string) (string, bool)
	Set(key, value string)
}

// Scheme maps tuple fields to LiteTable columns.
type Scheme struct {
	mapping         *column.Mapping
	timeRange       request.TimeRange
	timestampField  string
	loggingInterval int
	clock           func() time.Time

	dataRequest *request.DataRequest
}

type Config struct {
	// Mapping binds every column field to its column request.
	Mapping *column.Mapping
	// TimeRange bounds the cell versions visible to the source. The zero value means all time.
	TimeRange request.TimeRange
	// TimestampField optionally names the sink field that carries the write timestamp.
	TimestampField string
	// LoggingInterval logs one warning for every LoggingInterval skipped rows. Defaults to 1000.
	LoggingInterval int
	// Clock is read once per written tuple when there is no TimestampField. Defaults to time.Now.
	Clock func() time.Time
}

func (c *Config) validate() error {
	var errGrp []error
	if c.Mapping == nil {
		errGrp = append(errGrp, errors.New("mapping is required"))
	}
	if err := c.TimeRange.Validate(); err != nil {
		errGrp = append(errGrp, err)
	}
	if c.TimestampField == column.EntityIDField {
		errGrp = append(errGrp, fmt.Errorf("timestamp field cannot be %s", column.EntityIDField))
	}
	if c.Mapping != nil && c.TimestampField != "" && c.Mapping.Contains(c.TimestampField) {
		errGrp = append(errGrp, fmt.Errorf("timestamp field %s is also mapped to a column",
			c.TimestampField))
	}
	if c.LoggingInterval < 0 {
		errGrp = append(errGrp, errors.New("logging interval cannot be negative"))
	}
	if err := errors.Join(errGrp...); err != nil {
		return newError(ErrInvalidConfig, "%v", err)
	}
	return nil
}

// New validates the configuration and builds the data request up front, so a malformed
// configuration fails before any task starts.
func New(cfg *Config) (*Scheme, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	timeRange := cfg.TimeRange
	if timeRange == (request.TimeRange{}) {
		timeRange = request.AllTime()
	}

	requests := make([]column.Request, 0, cfg.Mapping.Len())
	for _, f := range cfg.Mapping.Fields() {
		requests = append(requests, f.Request)
	}
	dr, err := request.Build(timeRange, requests)
	if err != nil {
		return nil, fmt.Errorf("failed to build data request: %w", err)
	}

	interval := cfg.LoggingInterval
	if interval == 0 {
		interval = defaultLoggingInterval
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	return &Scheme{
		mapping:         cfg.Mapping,
		timeRange:       timeRange,
		timestampField:  cfg.TimestampField,
		loggingInterval: interval,
		clock:           clock,
		dataRequest:     dr,
	}, nil
}

// Mapping returns the column mapping.
func (s *Scheme) Mapping() *column.Mapping {
	return s.mapping
}

// TimestampField returns the sink timestamp field, or "".
func (s *Scheme) TimestampField() string {
	return s.timestampField
}

// DataRequest returns the request built from the mapping and time range.
func (s *Scheme) DataRequest() *request.DataRequest {
	return s.dataRequest
}

// SourceFields is [entityId] ++ column fields.
func (s *Scheme) SourceFields() tuple.Fields {
	fields := tuple.Fields{column.EntityIDField}
	return append(fields, s.mapping.Names()...)
}

// SinkFields is [entityId] ++ [timestampField] ++ column fields.
func (s *Scheme) SinkFields() tuple.Fields {
	fields := tuple.Fields{column.EntityIDField}
	if s.timestampField != "" {
		fields = append(fields, s.timestampField)
	}
	return append(fields, s.mapping.Names()...)
}

// SourceConfInit stores the encoded data request in the job configuration.
func (s *Scheme) SourceConfInit(conf JobConf) error {
	encoded, err := request.Encode(s.dataRequest)
	if err != nil {
		return err
	}
	conf.Set(request.ConfKey, encoded)
	return nil
}

// Equal reports whether two schemes share the same mapping, time range and timestamp field.
// The logging interval does not take part.
func (s *Scheme) Equal(o *Scheme) bool {
	if s == nil || o == nil {
		return s == o
	}
	return s.timeRange == o.timeRange &&
		s.timestampField == o.timestampField &&
		s.mapping.Equal(o.mapping)
}

// Hash is consistent with Equal. Replacement values are left out.
func (s *Scheme) Hash() uint64 {
	var b strings.Builder
	b.WriteString(s.timestampField)
	b.WriteByte(0)
	b.WriteString(strconv.FormatInt(s.timeRange.Begin, 10))
	b.WriteByte(0)
	b.WriteString(strconv.FormatInt(s.timeRange.End, 10))

	for _, f := range s.mapping.Fields() {
		opts := column.OptionsOf(f.Request)
		filter, _ := column.MarshalFilter(opts.Filter)

		b.WriteByte(0)
		b.WriteString(f.Name)
		b.WriteByte(0)
		switch f.Request.(type) {
		case column.Family:
			b.WriteString("family:")
		case column.Qualified:
			b.WriteString("column:")
		}
		b.WriteString(f.Request.String())
		b.WriteByte(0)
		b.WriteString(strconv.Itoa(opts.MaxVersions))
		b.WriteByte(0)
		b.Write(filter)
	}

	return xxh3.HashString(b.String())
}
