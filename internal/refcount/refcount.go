// Package refcount provides the atomic lifecycle counter embedded in every
// managed object.
package refcount

import (
	"errors"
	"sync/atomic"

	"github.com/GriffinCanCode/AgentOS/objmgr/internal/debug"
)

var (
	ErrNegative = errors.New("refcount: released below zero")
	ErrRevived  = errors.New("refcount: retained after reaching zero")
)

// Count is a lock-free reference counter. The zero value holds zero
// references; owners call Init before publishing the value.
type Count struct {
	n atomic.Int32
}

// Init sets the starting count. It must not race with other operations.
func (c *Count) Init(n int32) {
	c.n.Store(n)
}

// Inc adds one reference and returns the new count. Incrementing from zero
// is allowed here; callers decide whether that is a legal resurrection.
func (c *Count) Inc() int32 {
	return c.n.Add(1)
}

// Retain adds one reference to a count that must already be live.
func (c *Count) Retain() int32 {
	n := c.n.Add(1)
	debug.Assert(n > 1, ErrRevived)
	return n
}

// TryRetain adds one reference only if the count is above zero.
func (c *Count) TryRetain() (int32, bool) {
	for n := c.n.Load(); n > 0; n = c.n.Load() {
		if c.n.CompareAndSwap(n, n+1) {
			return n + 1, true
		}
	}
	return 0, false
}

// Dec removes one reference and returns the new count. The caller that
// observes zero is the one responsible for teardown.
func (c *Count) Dec() int32 {
	n := c.n.Add(-1)
	debug.Assert(n >= 0, ErrNegative)
	return n
}

// Load returns the current count. Diagnostic only.
func (c *Count) Load() int32 {
	return c.n.Load()
}
