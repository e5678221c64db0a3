package object

import (
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/objmgr/internal/debug"
	"github.com/GriffinCanCode/AgentOS/objmgr/internal/shared/id"
)

// WeakState is the lifecycle state of a weak extension.
type WeakState int32

const (
	WeakAlive WeakState = iota
	WeakDetached
)

// String returns the string representation of the state
func (s WeakState) String() string {
	switch s {
	case WeakAlive:
		return "alive"
	case WeakDetached:
		return "detached"
	default:
		return "unknown"
	}
}

type detachResult int

const (
	detachDone        detachResult = iota // object may be destroyed
	detachResurrected                     // an upgrade revived the object
	detachLost                            // another release already detached it
)

// weakExtension is the side object weak handles point at. It outlives its
// owner until the last weak handle is dropped.
type weakExtension struct {
	owner id.ObjectID

	mu       sync.Mutex
	detached atomic.Bool // written under mu, read lock-free on the fast path
	weak     int32       // guarded by mu
	target   Managed     // guarded by mu, nil once detached
	freed    bool        // guarded by mu
}

// weakExt returns o's extension, creating it under o's lock on first
// use. Once created it stays attached for the rest of o's life.
func (o *Object) weakExt() *weakExtension {
	if ext := o.ext.Load(); ext != nil {
		return ext
	}

	o.extMu.Lock()
	defer o.extMu.Unlock()

	if ext := o.ext.Load(); ext != nil {
		return ext
	}

	ext := &weakExtension{owner: o.id, target: o.self}
	o.ext.Store(ext)

	counters.liveWeak.Add(1)
	currentObserver().WeakExtensionCreated(o.id)
	return ext
}

func (e *weakExtension) acquire() {
	e.mu.Lock()
	e.weak++
	e.mu.Unlock()
}

func (e *weakExtension) release() {
	if e.dropLocked() {
		e.notifyFreed()
	}
}

// dropLocked gives up one weak count and reports whether the extension was
// freed. Assertions fire with e.mu held, so the unlock is deferred.
func (e *weakExtension) dropLocked() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	debug.Assert(e.weak > 0, fmt.Errorf("%w: %s", ErrWeakOverRelease, e.owner))
	e.weak--
	if e.weak != 0 || !e.detached.Load() {
		return false
	}
	e.markFreedLocked()
	return true
}

// upgrade takes a strong count on the target if it has not been detached.
func (e *weakExtension) upgrade() (Managed, bool) {
	if e.detached.Load() {
		return nil, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.detached.Load() {
		return nil, false
	}
	// The count may be zero here: the owner's last Release has not reached
	// detach yet. detach will observe this increment and back off.
	e.target.managed().count.Inc()
	return e.target, true
}

// detach runs when o's count has reached zero. It serializes with upgrade
// on e.mu so exactly one of teardown and upgrade wins.
func (e *weakExtension) detach(o *Object) detachResult {
	result, free := e.detachLocked(o)
	if free {
		e.notifyFreed()
	}
	return result
}

func (e *weakExtension) detachLocked(o *Object) (detachResult, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.detached.Load() {
		return detachLost, false
	}
	if o.count.Load() != 0 {
		return detachResurrected, false
	}

	e.detached.Store(true)
	e.target = nil
	if e.weak != 0 {
		return detachDone, false
	}
	e.markFreedLocked()
	return detachDone, true
}

func (e *weakExtension) markFreedLocked() {
	debug.Assert(!e.freed, fmt.Errorf("%w: weak extension of %s", ErrDoubleDestroy, e.owner))
	e.freed = true
}

func (e *weakExtension) notifyFreed() {
	counters.liveWeak.Add(-1)
	currentObserver().WeakExtensionFreed(e.owner)
	if ce := logger().Check(zap.DebugLevel, "weak extension freed"); ce != nil {
		ce.Write(zap.String("owner_id", e.owner.String()))
	}
}

func (e *weakExtension) state() WeakState {
	if e.detached.Load() {
		return WeakDetached
	}
	return WeakAlive
}

// Weak is a handle that does not keep its target alive. Like Ref, copies
// must be made with Clone and given up with Drop.
type Weak[T Managed] struct {
	ext *weakExtension
}

// WeakOf returns a weak handle to v. The caller must hold a strong
// reference to v.
func WeakOf[T Managed](v T) Weak[T] {
	if isZero(v) {
		return Weak[T]{}
	}
	o := v.managed()
	o.checkUsable()

	ext := o.weakExt()
	ext.acquire()
	return Weak[T]{ext: ext}
}

// Upgrade returns a strong handle, or an empty one if the target is gone.
func (w Weak[T]) Upgrade() Ref[T] {
	if w.ext == nil {
		return Ref[T]{}
	}

	target, ok := w.ext.upgrade()
	currentObserver().WeakUpgrade(w.ext.owner, ok)
	if !ok {
		return Ref[T]{}
	}
	return Ref[T]{v: target.(T)}
}

// Clone returns a second weak handle to the same target.
func (w Weak[T]) Clone() Weak[T] {
	if w.ext == nil {
		return Weak[T]{}
	}
	w.ext.acquire()
	return Weak[T]{ext: w.ext}
}

// Drop gives up the handle and empties it.
func (w *Weak[T]) Drop() {
	if w.ext == nil {
		return
	}
	ext := w.ext
	w.ext = nil
	ext.release()
}

// IsNil reports whether the handle is empty.
func (w Weak[T]) IsNil() bool {
	return w.ext == nil
}

// Expired reports whether the target has been torn down. A false result may
// be stale by the time the caller acts on it; use Upgrade.
func (w Weak[T]) Expired() bool {
	return w.ext == nil || w.ext.state() == WeakDetached
}

// Owner returns the identity of the target, which remains valid after the
// target is gone.
func (w Weak[T]) Owner() id.ObjectID {
	if w.ext == nil {
		return ""
	}
	return w.ext.owner
}
