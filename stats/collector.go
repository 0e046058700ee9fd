// Package stats holds request statistics of a server instance and the registry the reporting
// side reads them from.
package stats

import "go.uber.org/atomic"

// Counter names, as they appear in snapshots.
const (
	TotalRequests  = "totalHttpRequests"
	TotalErrors    = "totalExceptions"
	ActiveRequests = "activeHttpRequests"
)

// Snapshot is a point-in-time copy of the counters, keyed by counter name.
type Snapshot map[string]int64

// Source is anything that is able to report its statistics.
type Source interface {
	Snapshot() Snapshot
	// Displayed tells the reporter whether to include the source into its output.
	Displayed() bool
}

var _ Source = new(Collector)

// Collector keeps request counters. All the operations are lock-free and safe for concurrent
// use. The counters are independent: a snapshot gives no cross-counter consistency.
type Collector struct {
	total, errors, active atomic.Int64
}

func NewCollector() *Collector {
	return new(Collector)
}

// RequestStarted counts a newly dispatched request.
func (c *Collector) RequestStarted() {
	c.total.Inc()
	c.active.Inc()
}

// RequestFinished marks a dispatched request as no more in flight, regardless of its outcome.
func (c *Collector) RequestFinished() {
	c.active.Dec()
}

// ErrorOccurred counts a failure: either an unexpected inbound message or a failed request.
func (c *Collector) ErrorOccurred() {
	c.errors.Inc()
}

func (c *Collector) Total() int64 {
	return c.total.Load()
}

func (c *Collector) Errors() int64 {
	return c.errors.Load()
}

func (c *Collector) Active() int64 {
	return c.active.Load()
}

// Snapshot reads the counters. It's never cached, so every call returns the actual values.
func (c *Collector) Snapshot() Snapshot {
	return Snapshot{
		TotalRequests:  c.total.Load(),
		TotalErrors:    c.errors.Load(),
		ActiveRequests: c.active.Load(),
	}
}

// Statistics is an alias to Snapshot.
func (c *Collector) Statistics() Snapshot {
	return c.Snapshot()
}

// Displayed always returns true.
func (*Collector) Displayed() bool {
	return true
}
