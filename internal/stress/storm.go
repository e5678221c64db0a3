package stress

import (
	"context"
	"errors"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/GriffinCanCode/AgentOS/objmgr/internal/object"
)

// BroadcastStorm broadcasts from several goroutines while others keep
// attaching and detaching listeners. Every broadcast must succeed and the
// hub's count must match its registrations once the storm settles.
type BroadcastStorm struct{}

func (BroadcastStorm) Name() string { return "broadcast-storm" }

func (BroadcastStorm) Run(ctx context.Context, cfg Config) (Report, error) {
	h := object.Alloc(&hub{})
	defer h.Release()

	listeners := make([]*listener, cfg.Clients)
	for i := range listeners {
		listeners[i] = newListener(h)
	}

	limit := rate.Inf
	if cfg.BroadcastRPS > 0 {
		limit = rate.Limit(cfg.BroadcastRPS)
	}
	limiter := rate.NewLimiter(limit, max(cfg.Workers, 1))

	var broadcasts, churns atomic.Int64
	workers := split(cfg.Iterations, cfg.Workers)

	g, gctx := errgroup.WithContext(ctx)
	for w, n := range workers {
		g.Go(func() error {
			for i := 0; i < n; i++ {
				if err := limiter.Wait(gctx); err != nil {
					return err
				}
				if err := h.Broadcast(gctx, cmdPing, object.BroadcastOptions{StopOnError: true}); err != nil {
					return err
				}
				broadcasts.Add(1)
			}
			return nil
		})

		// Churn: drop a listener and attach a replacement.
		g.Go(func() error {
			for i := 0; i < n; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				l := newListener(h)
				extra := listeners[(w+i)%len(listeners)]
				extra.Retain()
				extra.hub.Reset()
				extra.hub.Assign(h)
				extra.Release()
				l.Release()
				churns.Add(1)
			}
			return nil
		})
	}
	err := g.Wait()

	var pings int64
	for _, l := range listeners {
		pings += l.pings.Load()
	}

	rep := Report{
		Ops: broadcasts.Load() + churns.Load(),
		Counters: map[string]int64{
			"broadcasts": broadcasts.Load(),
			"churns":     churns.Load(),
			"pings":      pings,
		},
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		for _, l := range listeners {
			l.Release()
		}
		return rep, err
	}

	if got, want := h.ClientCount(), len(listeners); got != want {
		err = violation("hub has %d clients, want %d", got, want)
	} else if got, want := h.ReferenceCount(), int32(1+len(listeners)); got != want {
		err = violation("hub count %d, want %d", got, want)
	}

	for _, l := range listeners {
		l.Release()
	}
	if err == nil && h.ReferenceCount() != 1 {
		err = violation("hub count %d after listeners released, want 1", h.ReferenceCount())
	}
	return rep, err
}
