package object

import (
	"fmt"
	"sync/atomic"

	"github.com/GriffinCanCode/AgentOS/objmgr/internal/debug"
)

// Ref is a strong handle. A non-empty Ref owns exactly one count on its
// target. Ref values must be duplicated with Clone and given up with Drop;
// a plain Go copy does not add a count.
type Ref[T Managed] struct {
	v T
}

// Adopt takes over an existing count on v without incrementing it, usually
// the implicit reference handed out by Alloc.
func Adopt[T Managed](v T) Ref[T] {
	return Ref[T]{v: v}
}

// NewRef retains v and returns a handle owning the new count.
func NewRef[T Managed](v T) Ref[T] {
	if !isZero(v) {
		v.Retain()
	}
	return Ref[T]{v: v}
}

// FromPending adopts the count carried by p. A pending reference can be
// adopted once; checked builds panic on a second adoption.
func FromPending[T Managed](p Pending[T]) Ref[T] {
	if p.claimed == nil {
		return Ref[T]{}
	}
	if !p.claimed.CompareAndSwap(false, true) {
		debug.Assert(false, fmt.Errorf("%w: %s", ErrPendingReused, p.v.ID()))
		return Ref[T]{}
	}
	return Ref[T]{v: p.v}
}

// Get returns the target without transferring ownership.
func (r Ref[T]) Get() T {
	return r.v
}

// IsNil reports whether the handle is empty.
func (r Ref[T]) IsNil() bool {
	return isZero(r.v)
}

// Clone returns a second handle to the same target.
func (r Ref[T]) Clone() Ref[T] {
	return NewRef(r.v)
}

// Drop gives up the handle's count and empties it. Dropping the last
// reference destroys the target before Drop returns.
func (r *Ref[T]) Drop() {
	if r.IsNil() {
		return
	}
	v := r.v
	var zero T
	r.v = zero
	v.Release()
}

// Assign makes r refer to other's target, retaining it before the old
// target is released.
func (r *Ref[T]) Assign(other Ref[T]) {
	next := other.Clone()
	r.Drop()
	*r = next
}

// Take moves the count out of r into a pending reference and empties r.
func (r *Ref[T]) Take() Pending[T] {
	if r.IsNil() {
		return Pending[T]{}
	}
	p := pendingOf(r.v)
	var zero T
	r.v = zero
	return p
}

// Downgrade returns a weak handle to the target.
func (r Ref[T]) Downgrade() Weak[T] {
	return WeakOf(r.v)
}

// Equal compares target identity.
func (r Ref[T]) Equal(other Ref[T]) bool {
	if r.IsNil() || other.IsNil() {
		return r.IsNil() == other.IsNil()
	}
	return r.v.managed() == other.v.managed()
}

// Compare orders handles by target identity (allocation order). Empty
// handles sort first.
func (r Ref[T]) Compare(other Ref[T]) int {
	switch {
	case r.IsNil() && other.IsNil():
		return 0
	case r.IsNil():
		return -1
	case other.IsNil():
		return 1
	}
	return r.v.ID().Compare(other.v.ID())
}

func (r Ref[T]) String() string {
	if r.IsNil() {
		return "ref(nil)"
	}
	return fmt.Sprintf("ref(%s)", r.v.ID())
}

// Pending carries a count that has been taken on behalf of a future strong
// handle. Convert it with FromPending, or give it back with Discard.
type Pending[T Managed] struct {
	v       T
	claimed *atomic.Bool
}

// Retained retains v and returns the count as a pending reference.
func Retained[T Managed](v T) Pending[T] {
	if isZero(v) {
		return Pending[T]{}
	}
	v.Retain()
	return pendingOf(v)
}

func pendingOf[T Managed](v T) Pending[T] {
	return Pending[T]{v: v, claimed: new(atomic.Bool)}
}

// Get returns the target without transferring ownership.
func (p Pending[T]) Get() T {
	return p.v
}

// IsNil reports whether p carries no reference.
func (p Pending[T]) IsNil() bool {
	return p.claimed == nil
}

// Discard releases the count if it has not been adopted.
func (p Pending[T]) Discard() {
	if p.claimed == nil {
		return
	}
	if p.claimed.CompareAndSwap(false, true) {
		p.v.Release()
	}
}
