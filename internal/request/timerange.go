package request

import (
	"math"
	"time"
)

// TimeRange bounds which cell versions are visible to a read: Begin is inclusive, End is
// exclusive. Both are unix nanoseconds.
type TimeRange struct {
	Begin int64 `json:"begin"`
	End   int64 `json:"end"`
}

// AllTime covers every representable non-negative timestamp.
func AllTime() TimeRange {
	return TimeRange{Begin: 0, End: math.MaxInt64}
}

// Until returns [0, t).
func Until(t time.Time) TimeRange {
	return TimeRange{Begin: 0, End: t.UnixNano()}
}

// NewTimeRange validates and returns [begin, end).
func NewTimeRange(begin, end int64) (TimeRange, error) {
	tr := TimeRange{Begin: begin, End: end}
	if err := tr.Validate(); err != nil {
		return TimeRange{}, err
	}
	return tr, nil
}

// Validate enforces Begin <= End.
func (t TimeRange) Validate() error {
	if t.Begin > t.End {
		return newError(ErrInvalidTimeRange, "begin %d is after end %d", t.Begin, t.End)
	}
	return nil
}

// Contains reports whether ts falls inside the range.
func (t TimeRange) Contains(ts int64) bool {
	return ts >= t.Begin && ts < t.End
}
