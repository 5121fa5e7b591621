package scheme

const (
	// CounterGroup groups every counter the scheme increments.
	CounterGroup = "litetable.scheme"

	CounterRowsRead    = "ROWS_READ"
	CounterRowsSkipped = "ROWS_SKIPPED"
	CounterRowsWritten = "ROWS_WRITTEN"
)

// Counters is provided by the hosting framework, which aggregates increments across tasks.
type Counters interface {
	Increment(group, name string, delta int64)
}

type nopCounters struct{}

func (nopCounters) Increment(string, string, int64) {}

func countersOrNop(c Counters) Counters {
	if c == nil {
		return nopCounters{}
	}
	return c
}
