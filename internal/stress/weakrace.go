package stress

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/GriffinCanCode/AgentOS/objmgr/internal/object"
)

// WeakRace races the final Release of fresh objects against Weak.Upgrade.
// Each round must end with exactly one winner and with the object destroyed
// once after every handle is gone.
type WeakRace struct{}

func (WeakRace) Name() string { return "weak-race" }

func (WeakRace) Run(ctx context.Context, cfg Config) (Report, error) {
	var won, lost atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	for _, n := range split(cfg.Iterations, cfg.Workers) {
		g.Go(func() error {
			for i := 0; i < n; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				upgraded, err := raceOnce()
				if err != nil {
					return err
				}
				if upgraded {
					won.Add(1)
				} else {
					lost.Add(1)
				}
			}
			return nil
		})
	}
	err := g.Wait()

	return Report{
		Ops: won.Load() + lost.Load(),
		Counters: map[string]int64{
			"upgrade_won":  won.Load(),
			"upgrade_lost": lost.Load(),
		},
	}, err
}

func raceOnce() (bool, error) {
	p := object.Alloc(&probe{})
	w := object.WeakOf(p)
	defer w.Drop()

	var (
		wg       sync.WaitGroup
		upgraded object.Ref[*probe]
		start    = make(chan struct{})
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		<-start
		p.Release()
	}()
	go func() {
		defer wg.Done()
		<-start
		upgraded = w.Upgrade()
	}()
	close(start)
	wg.Wait()

	if upgraded.IsNil() {
		if p.destroyed.Load() != 1 {
			return false, violation("upgrade failed on live object %s", p.ID())
		}
		return false, nil
	}

	if p.destroyed.Load() != 0 {
		return true, violation("upgrade succeeded on destroyed object %s", p.ID())
	}
	upgraded.Drop()
	if p.destroyed.Load() != 1 {
		return true, violation("object %s not destroyed after last handle dropped", p.ID())
	}
	return true, nil
}
