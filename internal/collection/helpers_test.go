package collection

import (
	"context"
	"sync/atomic"

	"github.com/GriffinCanCode/AgentOS/objmgr/internal/object"
)

var cmdPoll = object.MustRegisterCommand(0x200, "poll")

type device struct {
	object.Registry
	name      string
	destroyed atomic.Int32
	polls     atomic.Int32
	callers   []object.Managed
}

func newDevice(name string) *device {
	return object.Alloc(&device{name: name})
}

func (d *device) Destroy() {
	d.destroyed.Add(1)
}

func (d *device) ExecuteCommand(_ context.Context, caller object.Managed, cmd object.Command, _ ...any) error {
	if cmd != cmdPoll {
		return object.ErrUnsupported
	}
	d.polls.Add(1)
	d.callers = append(d.callers, caller)
	return nil
}
