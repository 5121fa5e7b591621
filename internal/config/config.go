package config

import (
	"bufio"
	"errors"
	"fmt"
	"github.com/litetable/litetable-scheme/internal/column"
	"github.com/litetable/litetable-scheme/internal/litetable"
	"github.com/litetable/litetable-scheme/internal/request"
	"github.com/litetable/litetable-scheme/internal/rowstore"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	configFileName = "scheme.conf"

	// BackendLiteTable reads and writes through a LiteTable server.
	BackendLiteTable = "litetable"
	// BackendMemory keeps rows in process, optionally loaded from and saved to a data file.
	BackendMemory = "memory"

	sourceColumnPrefix = "column."
	sinkColumnPrefix   = "sink.column."
)

type Config struct {
	// Backend is BackendLiteTable unless set.
	Backend        string
	MemoryDataFile string

	ServerAddress string
	ServerPort    int
	CDCAddress    string
	CDCPort       int
	Retries       int
	Debug         bool
	// Follow reads the change feed instead of scanning the table. Every change event is one
	// cell, so a followed row only becomes a tuple when each column field is either satisfied by
	// that cell or has a default.
	Follow bool

	TimestampField     string
	SinkTimestampField string
	TimeRange          request.TimeRange
	LoggingInterval    int
	Partitions         []rowstore.Partition
	Parallelism        int

	columns     []columnLine
	sinkColumns []columnLine
}

// columnLine is a column definition as it appears in the file.
type columnLine struct {
	field string
	spec  string
	line  int
}

// NewConfig reads the configuration at path, or scheme.conf in the LiteTable directory when
// path is empty.
func NewConfig(path string) (*Config, error) {
	if path == "" {
		liteTableDir, err := litetable.GetLitetableDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get LiteTable directory: %w", err)
		}
		path = filepath.Join(liteTableDir, configFileName)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	return parse(file)
}

func parse(r io.Reader) (*Config, error) {
	config := &Config{}
	scanner := bufio.NewScanner(r)

	var (
		begin, end       int64
		hasBegin, hasEnd bool
		err              error
		lineNo           int
	)

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		// Skip comments and empty lines
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		switch {
		case strings.HasPrefix(key, sinkColumnPrefix):
			config.sinkColumns = append(config.sinkColumns, columnLine{
				field: strings.TrimPrefix(key, sinkColumnPrefix), spec: value, line: lineNo,
			})
			continue
		case strings.HasPrefix(key, sourceColumnPrefix):
			config.columns = append(config.columns, columnLine{
				field: strings.TrimPrefix(key, sourceColumnPrefix), spec: value, line: lineNo,
			})
			continue
		}

		switch key {
		case "backend":
			config.Backend = value
		case "memory_data_file":
			config.MemoryDataFile = value
		case "server_address":
			config.ServerAddress = value
		case "server_port":
			config.ServerPort, err = strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("invalid server port value: %w", err)
			}
		case "cdc_address":
			config.CDCAddress = value
		case "cdc_port":
			config.CDCPort, err = strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("invalid cdc port value: %w", err)
			}
		case "retries":
			config.Retries, err = strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("invalid retries value: %w", err)
			}
		case "debug":
			config.Debug = value == "true"
		case "follow":
			config.Follow = value == "true"
		case "timestamp_field":
			config.TimestampField = value
		case "sink_timestamp_field":
			config.SinkTimestampField = value
		case "time_range_begin":
			begin, err = parseTime(value)
			if err != nil {
				return nil, fmt.Errorf("invalid time range begin: %w", err)
			}
			hasBegin = true
		case "time_range_end":
			end, err = parseTime(value)
			if err != nil {
				return nil, fmt.Errorf("invalid time range end: %w", err)
			}
			hasEnd = true
		case "logging_interval":
			config.LoggingInterval, err = strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("invalid logging interval value: %w", err)
			}
		case "partitions":
			for _, prefix := range strings.Split(value, ",") {
				config.Partitions = append(config.Partitions,
					rowstore.Partition{Prefix: strings.TrimSpace(prefix)})
			}
		case "parallelism":
			config.Parallelism, err = strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("invalid parallelism value: %w", err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if config.Backend == "" {
		config.Backend = BackendLiteTable
	}
	if err := config.validate(); err != nil {
		return nil, err
	}

	if hasBegin || hasEnd {
		if !hasEnd {
			end = math.MaxInt64
		}
		config.TimeRange, err = request.NewTimeRange(begin, end)
		if err != nil {
			return nil, err
		}
	}

	return config, nil
}

func (c *Config) validate() error {
	var errGrp []error
	switch c.Backend {
	case BackendLiteTable:
		// the server stamps every write itself
		if c.SinkTimestampField != "" {
			errGrp = append(errGrp, fmt.Errorf("sink_timestamp_field is not supported by the %s "+
				"backend", c.Backend))
		}
		if c.MemoryDataFile != "" {
			errGrp = append(errGrp, fmt.Errorf("memory_data_file requires the %s backend",
				BackendMemory))
		}
	case BackendMemory:
		if c.Follow {
			errGrp = append(errGrp, fmt.Errorf("follow requires the %s backend", BackendLiteTable))
		}
	default:
		errGrp = append(errGrp, fmt.Errorf("unknown backend %q", c.Backend))
	}
	return errors.Join(errGrp...)
}

// parseTime accepts RFC3339 or unix nanoseconds.
func parseTime(value string) (int64, error) {
	if ts, err := strconv.ParseInt(value, 10, 64); err == nil {
		return ts, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return 0, fmt.Errorf("expected RFC3339 or unix nanoseconds, got %q", value)
	}
	return t.UnixNano(), nil
}

// Mapping builds the source column mapping in file order.
func (c *Config) Mapping() (*column.Mapping, error) {
	return buildMapping(c.columns)
}

// SinkMapping builds the sink column mapping. Without sink.column keys the sink writes back to
// the source columns.
func (c *Config) SinkMapping() (*column.Mapping, error) {
	if len(c.sinkColumns) == 0 {
		return c.Mapping()
	}
	return buildMapping(c.sinkColumns)
}

func buildMapping(lines []columnLine) (*column.Mapping, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("no column fields configured")
	}

	fields := make([]column.Field, 0, len(lines))
	for _, l := range lines {
		f, err := parseColumn(l.field, l.spec)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", l.line, err)
		}
		fields = append(fields, f)
	}
	return column.NewMapping(fields...)
}

// parseColumn reads "<family>[:<qualifier>] [max_versions=N] [default=V] [qualifier_regex=R]
// [value_prefix=P]".
func parseColumn(field, spec string) (column.Field, error) {
	tokens := strings.Fields(spec)
	if len(tokens) == 0 {
		return column.Field{}, fmt.Errorf("column %s has no family", field)
	}

	var (
		opts    column.Options
		filters []column.Filter
	)
	for _, token := range tokens[1:] {
		parts := strings.SplitN(token, "=", 2)
		if len(parts) != 2 {
			return column.Field{}, fmt.Errorf("column %s: malformed option %q", field, token)
		}

		switch parts[0] {
		case "max_versions":
			n, err := strconv.Atoi(parts[1])
			if err != nil {
				return column.Field{}, fmt.Errorf("column %s: invalid max versions: %w", field, err)
			}
			opts.MaxVersions = n
		case "default":
			opts.Replacement = parts[1]
		case "qualifier_regex":
			f, err := column.NewQualifierRegex(parts[1])
			if err != nil {
				return column.Field{}, fmt.Errorf("column %s: %w", field, err)
			}
			filters = append(filters, f)
		case "value_prefix":
			filters = append(filters, &column.ValuePrefix{Prefix: []byte(parts[1])})
		default:
			return column.Field{}, fmt.Errorf("column %s: unknown option %q", field, parts[0])
		}
	}

	switch len(filters) {
	case 0:
	case 1:
		opts.Filter = filters[0]
	default:
		opts.Filter = &column.And{Filters: filters}
	}

	family, qualifier, qualified := strings.Cut(tokens[0], ":")
	if family == "" || (qualified && qualifier == "") {
		return column.Field{}, fmt.Errorf("column %s: malformed column %q", field, tokens[0])
	}

	if qualified {
		return column.Field{Name: field, Request: column.Qualified{
			Family: family, Qualifier: qualifier, Options: opts,
		}}, nil
	}
	return column.Field{Name: field, Request: column.Family{Family: family, Options: opts}}, nil
}
