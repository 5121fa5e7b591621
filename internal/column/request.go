// Package column models what a single tuple field asks of a LiteTable row: either a whole column
// family or one family:qualifier column, each with its own version, filter and default options.
package column

import (
	"fmt"
)

const (
	// EntityIDField is the reserved tuple field that always carries the row key.
	EntityIDField = "entityId"

	defaultMaxVersions = 1
)

// Request describes what to fetch for one tuple field. The only implementations are Family and
// Qualified; consumers switch over both.
type Request interface {
	fmt.Stringer
	options() Options
	isRequest()
}

// Options are shared by both request variants.
type Options struct {
	// MaxVersions is the number of most recent versions to retrieve. Zero means the default of 1.
	MaxVersions int
	// Filter is applied by the row store to each cell. Nil means no filtering.
	Filter Filter
	// Replacement is used as the field value when the row has no data for the column.
	// Nil means the row cannot be converted without the column.
	Replacement any
}

// HasReplacement reports whether a default value was configured.
func (o Options) HasReplacement() bool {
	return o.Replacement != nil
}

func (o Options) normalize() (Options, error) {
	if o.MaxVersions == 0 {
		o.MaxVersions = defaultMaxVersions
	}
	if o.MaxVersions < 0 {
		return o, newError(ErrInvalidOptions, "max versions must be positive, got %d",
			o.MaxVersions)
	}
	return o, nil
}

// Family requests every qualifier in a column family as a single field.
type Family struct {
	Family  string
	Options Options
}

func (f Family) String() string { return f.Family }
func (f Family) options() Options { return f.Options }
func (Family) isRequest() {}

// Qualified requests exactly one column as a field.
type Qualified struct {
	Family    string
	Qualifier string
	Options   Options
}

func (q Qualified) String() string { return q.Family + ":" + q.Qualifier }
func (q Qualified) options() Options { return q.Options }
func (Qualified) isRequest() {}

// OptionsOf returns the options carried by a request.
func OptionsOf(r Request) Options {
	return r.options()
}

// normalizeRequest applies option defaults and validates the request.
func normalizeRequest(r Request) (Request, error) {
	switch req := r.(type) {
	case Family:
		opts, err := req.Options.normalize()
		if err != nil {
			return nil, err
		}
		req.Options = opts
		return req, nil
	case Qualified:
		opts, err := req.Options.normalize()
		if err != nil {
			return nil, err
		}
		req.Options = opts
		return req, nil
	case nil:
		return nil, newError(ErrInvalidField, "column request is nil")
	default:
		return nil, newError(ErrInvalidField, "unsupported column request %T", r)
	}
}
