package resource

import "sync/atomic"

// Counter issues monotonically increasing ids starting at 1.
// Counter is safe for concurrent use. It must not be copied after first use.
type Counter struct {
	next atomic.Uint64
}

// NewCounter returns a counter whose first id is 1.
func NewCounter() *Counter {
	c := &Counter{}
	c.next.Store(1)
	return c
}

// Next returns a fresh id.
func (c *Counter) Next() ID {
	return ID(c.next.Add(1) - 1)
}

// Peek returns the id the next call to Next will issue.
func (c *Counter) Peek() ID {
	return ID(c.next.Load())
}

var defaultCounter = NewCounter()

// DefaultCounter returns the process-wide counter used by managers created
// without WithCounter. Ids drawn from it are unique for the process lifetime.
func DefaultCounter() *Counter { return defaultCounter }
