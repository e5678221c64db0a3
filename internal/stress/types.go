package stress

import (
	"context"
	"sync/atomic"

	"github.com/GriffinCanCode/AgentOS/objmgr/internal/object"
)

var (
	cmdPing  = object.MustRegisterCommand(0x5301, "stress.ping")
	cmdTouch = object.MustRegisterCommand(0x5302, "stress.touch")
)

// probe is the short-lived object raced in weak-race.
type probe struct {
	object.Object
	destroyed atomic.Int32
}

func (p *probe) Destroy() {
	p.destroyed.Add(1)
}

// hub is the broadcasting service of broadcast-storm.
type hub struct {
	object.Registry
}

// listener depends on a hub for its whole life and counts pings.
type listener struct {
	object.Registry
	hub   *object.ServiceRef[*hub]
	pings atomic.Int64
}

func newListener(h *hub) *listener {
	l := object.Alloc(&listener{})
	l.hub = object.NewServiceRef(l, h)
	return l
}

func (l *listener) Destroy() {
	l.hub.Reset()
}

func (l *listener) ExecuteCommand(_ context.Context, _ object.Managed, cmd object.Command, _ ...any) error {
	if cmd != cmdPing {
		return object.ErrUnsupported
	}
	l.pings.Add(1)
	return nil
}

// device is the element type of collection-churn.
type device struct {
	object.Registry
	touches atomic.Int64
}

func (d *device) ExecuteCommand(_ context.Context, _ object.Managed, cmd object.Command, _ ...any) error {
	if cmd != cmdTouch {
		return object.ErrUnsupported
	}
	d.touches.Add(1)
	return nil
}
