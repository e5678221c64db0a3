package object

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/objmgr/internal/shared/id"
)

// Observer receives lifecycle events from the runtime. Hooks run
// synchronously on the goroutine that caused the event and must not call
// back into the object being observed.
type Observer interface {
	ObjectAllocated(obj id.ObjectID)
	ObjectDestroyed(obj id.ObjectID)
	ObjectResurrected(obj id.ObjectID)
	WeakExtensionCreated(owner id.ObjectID)
	WeakExtensionFreed(owner id.ObjectID)
	WeakUpgrade(owner id.ObjectID, ok bool)
	ClientRegistered(service, client id.ObjectID)
	ClientDeregistered(service, client id.ObjectID)
	CycleRejected(owner, target id.ObjectID)
	BroadcastFinished(ctx context.Context, ev BroadcastEvent)
}

// BroadcastEvent describes one completed Broadcast call.
type BroadcastEvent struct {
	Service  id.ObjectID
	Command  Command
	Clients  int
	Invoked  int
	Failures int
	Duration time.Duration
	Err      error
}

// NopObserver ignores every event. Embed it to implement a subset of hooks.
type NopObserver struct{}

func (NopObserver) ObjectAllocated(id.ObjectID)                      {}
func (NopObserver) ObjectDestroyed(id.ObjectID)                      {}
func (NopObserver) ObjectResurrected(id.ObjectID)                    {}
func (NopObserver) WeakExtensionCreated(id.ObjectID)                 {}
func (NopObserver) WeakExtensionFreed(id.ObjectID)                   {}
func (NopObserver) WeakUpgrade(id.ObjectID, bool)                    {}
func (NopObserver) ClientRegistered(id.ObjectID, id.ObjectID)        {}
func (NopObserver) ClientDeregistered(id.ObjectID, id.ObjectID)      {}
func (NopObserver) CycleRejected(id.ObjectID, id.ObjectID)           {}
func (NopObserver) BroadcastFinished(context.Context, BroadcastEvent) {}

type multiObserver []Observer

// MultiObserver fans every event out to obs in order.
func MultiObserver(obs ...Observer) Observer {
	out := make(multiObserver, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			out = append(out, o)
		}
	}
	return out
}

func (m multiObserver) ObjectAllocated(obj id.ObjectID) {
	for _, o := range m {
		o.ObjectAllocated(obj)
	}
}

func (m multiObserver) ObjectDestroyed(obj id.ObjectID) {
	for _, o := range m {
		o.ObjectDestroyed(obj)
	}
}

func (m multiObserver) ObjectResurrected(obj id.ObjectID) {
	for _, o := range m {
		o.ObjectResurrected(obj)
	}
}

func (m multiObserver) WeakExtensionCreated(owner id.ObjectID) {
	for _, o := range m {
		o.WeakExtensionCreated(owner)
	}
}

func (m multiObserver) WeakExtensionFreed(owner id.ObjectID) {
	for _, o := range m {
		o.WeakExtensionFreed(owner)
	}
}

func (m multiObserver) WeakUpgrade(owner id.ObjectID, ok bool) {
	for _, o := range m {
		o.WeakUpgrade(owner, ok)
	}
}

func (m multiObserver) ClientRegistered(service, client id.ObjectID) {
	for _, o := range m {
		o.ClientRegistered(service, client)
	}
}

func (m multiObserver) ClientDeregistered(service, client id.ObjectID) {
	for _, o := range m {
		o.ClientDeregistered(service, client)
	}
}

func (m multiObserver) CycleRejected(owner, target id.ObjectID) {
	for _, o := range m {
		o.CycleRejected(owner, target)
	}
}

func (m multiObserver) BroadcastFinished(ctx context.Context, ev BroadcastEvent) {
	for _, o := range m {
		o.BroadcastFinished(ctx, ev)
	}
}

type observerHolder struct {
	Observer
}

type loggerHolder struct {
	*zap.Logger
}

var (
	observerBox atomic.Pointer[observerHolder]
	loggerBox   atomic.Pointer[loggerHolder]

	nopObserver = &observerHolder{Observer: NopObserver{}}
	nopLogger   = &loggerHolder{Logger: zap.NewNop()}
)

// SetObserver installs the process-wide observer. nil restores the no-op
// observer.
func SetObserver(obs Observer) {
	if obs == nil {
		observerBox.Store(nil)
		return
	}
	observerBox.Store(&observerHolder{Observer: obs})
}

// SetLogger installs the logger used for runtime diagnostics. nil restores
// the no-op logger.
func SetLogger(l *zap.Logger) {
	if l == nil {
		loggerBox.Store(nil)
		return
	}
	loggerBox.Store(&loggerHolder{Logger: l.Named("objmgr")})
}

func currentObserver() Observer {
	if h := observerBox.Load(); h != nil {
		return h.Observer
	}
	return nopObserver.Observer
}

func logger() *zap.Logger {
	if h := loggerBox.Load(); h != nil {
		return h.Logger
	}
	return nopLogger.Logger
}
