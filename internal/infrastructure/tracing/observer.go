package tracing

import (
	"context"
	"strconv"
	"time"

	"github.com/GriffinCanCode/AgentOS/objmgr/internal/object"
	"github.com/GriffinCanCode/AgentOS/objmgr/internal/shared/id"
)

// BroadcastObserver turns every completed broadcast into a span. Install it
// with object.SetObserver, usually combined with other observers through
// object.MultiObserver.
type BroadcastObserver struct {
	object.NopObserver
	tracer *Tracer
}

// NewBroadcastObserver returns an observer submitting spans to tracer.
func NewBroadcastObserver(tracer *Tracer) *BroadcastObserver {
	return &BroadcastObserver{tracer: tracer}
}

func (o *BroadcastObserver) BroadcastFinished(ctx context.Context, ev object.BroadcastEvent) {
	span, _ := o.tracer.StartSpan(ctx, "broadcast "+ev.Command.String())
	span.EndTime = time.Now()
	span.StartTime = span.EndTime.Add(-ev.Duration)
	span.Duration = ev.Duration

	span.SetTag("service_id", ev.Service.String())
	span.SetTag("command", ev.Command.String())
	span.SetTag("clients", strconv.Itoa(ev.Clients))
	span.SetTag("invoked", strconv.Itoa(ev.Invoked))
	if ev.Err != nil {
		span.SetTag("failures", strconv.Itoa(ev.Failures))
		span.SetError(ev.Err)
	}

	o.tracer.Submit(span)
}

func (o *BroadcastObserver) CycleRejected(owner, target id.ObjectID) {
	span, _ := o.tracer.StartSpan(context.Background(), "cycle rejected")
	span.SetTag("owner_id", owner.String())
	span.SetTag("target_id", target.String())
	span.Finish()

	o.tracer.Submit(span)
}
