package object

import (
	"go.uber.org/zap"
)

// sysCommand codes travel over executeSystem, which only this package can
// implement or call. They never reach Handler.ExecuteCommand.
type sysCommand uint8

const (
	sysFindClient sysCommand = iota + 1
)

type cycleProbe struct {
	target  *Object
	visited map[*Object]struct{}
}

func (r *Registry) executeSystem(cmd sysCommand, probe *cycleProbe) bool {
	switch cmd {
	case sysFindClient:
		return r.findClient(probe)
	default:
		return false
	}
}

// findClient walks r's clients, their clients and so on, looking for the
// probe target. The registry lock is held only while copying the client set.
func (r *Registry) findClient(probe *cycleProbe) bool {
	r.mu.Lock()
	snapshot := make([]Managed, len(r.clients))
	for i, e := range r.clients {
		snapshot[i] = e.client
	}
	r.mu.Unlock()

	for _, c := range snapshot {
		base := c.managed()
		if base == probe.target {
			return true
		}
		if _, seen := probe.visited[base]; seen {
			continue
		}
		probe.visited[base] = struct{}{}

		if c.executeSystem(sysFindClient, probe) {
			return true
		}
	}
	return false
}

// guardCycle panics if target already depends on owner. The check and the
// following insertion are not atomic: two goroutines closing the same cycle
// from both ends at once can both pass.
func guardCycle(owner Managed, target *Registry) {
	ownerBase := owner.managed()

	cycle := ownerBase == &target.Object
	if !cycle {
		probe := &cycleProbe{
			target:  &target.Object,
			visited: map[*Object]struct{}{ownerBase: {}},
		}
		cycle = owner.executeSystem(sysFindClient, probe)
	}
	if !cycle {
		return
	}

	err := &CycleError{Owner: owner.ID(), Target: target.ID()}
	currentObserver().CycleRejected(err.Owner, err.Target)
	logger().Warn("client registration rejected",
		zap.String("owner_id", err.Owner.String()),
		zap.String("target_id", err.Target.String()),
		zap.Error(err),
	)
	panic(err)
}
