package object

import (
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/objmgr/internal/debug"
	"github.com/GriffinCanCode/AgentOS/objmgr/internal/refcount"
	"github.com/GriffinCanCode/AgentOS/objmgr/internal/shared/id"
)

// Managed is implemented by every type that embeds Object. The unexported
// methods seal the interface: only embedders of Object satisfy it.
type Managed interface {
	Retain() int32
	Release() int32
	ReferenceCount() int32
	ID() id.ObjectID

	managed() *Object
	executeSystem(cmd sysCommand, probe *cycleProbe) bool
}

// Destroyer is implemented by managed types that release resources, handles
// or client registrations when their last strong reference goes away.
type Destroyer interface {
	Destroy()
}

// Object is the embeddable base of every managed type.
type Object struct {
	count     refcount.Count
	id        id.ObjectID
	self      Managed
	allocated bool
	destroyed atomic.Bool

	extMu sync.Mutex // serializes lazy creation of ext
	ext   atomic.Pointer[weakExtension]
}

// Alloc is the designated allocation path. It binds the embedded Object to
// v, assigns an identity and returns v holding one implicit strong
// reference owned by the caller.
func Alloc[T Managed](v T) T {
	if isZero(v) {
		panic(ErrNilObject)
	}

	o := v.managed()
	debug.Assert(!o.allocated, ErrAlreadyAllocated)

	o.self = v
	o.id = id.NewObjectID()
	o.count.Init(1)
	o.allocated = true

	counters.allocated.Add(1)
	counters.live.Add(1)
	currentObserver().ObjectAllocated(o.id)

	return v
}

func (o *Object) managed() *Object {
	return o
}

// ID returns the identity assigned at allocation.
func (o *Object) ID() id.ObjectID {
	return o.id
}

// ReferenceCount returns the current strong count. Diagnostic only: callers
// must not branch on it.
func (o *Object) ReferenceCount() int32 {
	return o.count.Load()
}

// Destroyed reports whether the object has been torn down. Diagnostic only.
func (o *Object) Destroyed() bool {
	return o.destroyed.Load()
}

// Retain adds a strong reference and returns the new count.
func (o *Object) Retain() int32 {
	o.checkUsable()
	return o.count.Retain()
}

// Release drops a strong reference and returns the new count. The call that
// takes the count to zero destroys the object before returning, unless a
// concurrent weak upgrade revived it first.
func (o *Object) Release() int32 {
	o.checkUsable()

	n := o.count.Dec()
	if n > 0 {
		return n
	}

	if ext := o.ext.Load(); ext != nil {
		switch ext.detach(o) {
		case detachResurrected:
			counters.resurrected.Add(1)
			currentObserver().ObjectResurrected(o.id)
			if ce := logger().Check(zap.DebugLevel, "object resurrected by weak upgrade"); ce != nil {
				ce.Write(zap.String("object_id", o.id.String()))
			}
			return o.count.Load()
		case detachLost:
			return 0
		}
	}

	o.destroy()
	return 0
}

// tryRetain adds a reference only while the object is live.
func (o *Object) tryRetain() bool {
	_, ok := o.count.TryRetain()
	return ok
}

func (o *Object) executeSystem(sysCommand, *cycleProbe) bool {
	return false
}

func (o *Object) destroy() {
	if !o.destroyed.CompareAndSwap(false, true) {
		debug.Assert(false, fmt.Errorf("%w: %s", ErrDoubleDestroy, o.id))
		return
	}

	if d, ok := o.self.(Destroyer); ok {
		d.Destroy()
	}
	if s, ok := o.self.(Service); ok {
		s.registry().assertNoClients()
	}

	counters.destroyed.Add(1)
	counters.live.Add(-1)
	currentObserver().ObjectDestroyed(o.id)
	if ce := logger().Check(zap.DebugLevel, "object destroyed"); ce != nil {
		ce.Write(zap.String("object_id", o.id.String()))
	}
}

func (o *Object) checkUsable() {
	if !debug.Enabled {
		return
	}
	if !o.allocated {
		panic(ErrNotAllocated)
	}
	if o.destroyed.Load() {
		panic(fmt.Errorf("%w: %s", ErrReleased, o.id))
	}
}

func isZero[T Managed](v T) bool {
	var zero T
	return any(v) == any(zero)
}

// ============================================================================
// Diagnostics
// ============================================================================

// Stats is a point-in-time view of the runtime counters.
type Stats struct {
	LiveObjects        int64 `json:"live_objects"`
	Allocated          int64 `json:"allocated"`
	Destroyed          int64 `json:"destroyed"`
	Resurrected        int64 `json:"resurrected"`
	LiveWeakExtensions int64 `json:"live_weak_extensions"`
}

var counters struct {
	live        atomic.Int64
	allocated   atomic.Int64
	destroyed   atomic.Int64
	resurrected atomic.Int64
	liveWeak    atomic.Int64
}

// ReadStats returns the process-wide counters.
func ReadStats() Stats {
	return Stats{
		LiveObjects:        counters.live.Load(),
		Allocated:          counters.allocated.Load(),
		Destroyed:          counters.destroyed.Load(),
		Resurrected:        counters.resurrected.Load(),
		LiveWeakExtensions: counters.liveWeak.Load(),
	}
}
