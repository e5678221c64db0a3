package stress

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/GriffinCanCode/AgentOS/objmgr/internal/collection"
	"github.com/GriffinCanCode/AgentOS/objmgr/internal/object"
)

// CollectionChurn hammers one shared list with inserts, removals, detaches,
// iteration and dispatch. When it settles every device must be back to its
// creator's reference with no registration left behind.
type CollectionChurn struct{}

func (CollectionChurn) Name() string { return "collection-churn" }

func (CollectionChurn) Run(ctx context.Context, cfg Config) (Report, error) {
	devices := make([]*device, max(cfg.Clients, 1))
	for i := range devices {
		devices[i] = object.Alloc(&device{})
	}
	defer func() {
		for _, d := range devices {
			d.Release()
		}
	}()

	list := collection.NewList[*device]()
	var ops, dispatched atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	for w, n := range split(cfg.Iterations, cfg.Workers) {
		g.Go(func() error {
			for i := 0; i < n; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				d := devices[(w+i)%len(devices)]

				switch i % 4 {
				case 0:
					list.PushBack(d)
				case 1:
					list.PushFront(d)
					list.RemoveValue(d)
				case 2:
					if p, err := list.Detach(0); err == nil {
						ref := object.FromPending(p)
						ref.Drop()
					}
				case 3:
					count, err := list.Dispatch(gctx, cmdTouch, object.BroadcastOptions{})
					if err != nil {
						return err
					}
					dispatched.Add(int64(count))
					for range list.All() {
					}
				}
				ops.Add(1)
			}
			return nil
		})
	}
	err := g.Wait()

	list.Release()

	rep := Report{
		Ops: ops.Load(),
		Counters: map[string]int64{
			"dispatched": dispatched.Load(),
		},
	}
	if err != nil {
		return rep, err
	}

	for _, d := range devices {
		if n := d.ReferenceCount(); n != 1 {
			return rep, violation("device %s count %d after list destroyed, want 1", d.ID(), n)
		}
		if d.ClientCount() != 0 {
			return rep, violation("device %s still has %d clients", d.ID(), d.ClientCount())
		}
	}
	return rep, nil
}
