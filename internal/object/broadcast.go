package object

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/objmgr/internal/shared/id"
)

// BroadcastOptions controls how client failures are treated.
type BroadcastOptions struct {
	// StopOnError aborts at the first failure; later clients are not invoked.
	// Without it every client runs and failures are combined.
	StopOnError bool
	// IgnoreUnsupported treats ErrUnsupported as success. Clients that do not
	// implement Handler report ErrUnsupported.
	IgnoreUnsupported bool
}

type chainKey struct{}

type broadcastChain struct {
	registry *Registry
	parent   *broadcastChain
}

func (c *broadcastChain) contains(r *Registry) bool {
	for ; c != nil; c = c.parent {
		if c.registry == r {
			return true
		}
	}
	return false
}

// Broadcast invokes cmd on every registered client in registration order,
// with the service as caller. The client set is snapshotted under the lock
// and the lock is released before any handler runs, so handlers may register
// and deregister freely. A handler that broadcasts again on the same
// registry, using the ctx it was handed, gets ErrReentrantBroadcast.
func (r *Registry) Broadcast(ctx context.Context, cmd Command, opts BroadcastOptions, params ...any) error {
	r.checkUsable()

	chain, _ := ctx.Value(chainKey{}).(*broadcastChain)
	if chain.contains(r) {
		return fmt.Errorf("%w: %s on %s", ErrReentrantBroadcast, cmd, r.id)
	}
	ctx = context.WithValue(ctx, chainKey{}, &broadcastChain{registry: r, parent: chain})

	start := time.Now()
	clients := r.retainedClients()
	defer func() {
		for _, c := range clients {
			c.Release()
		}
	}()

	invoked, err := dispatch(ctx, r.id, r.self, clients, cmd, opts, params)

	failures := len(multierr.Errors(err))
	currentObserver().BroadcastFinished(ctx, BroadcastEvent{
		Service:  r.id,
		Command:  cmd,
		Clients:  len(clients),
		Invoked:  invoked,
		Failures: failures,
		Duration: time.Since(start),
		Err:      err,
	})
	if err != nil {
		if ce := logger().Check(zap.DebugLevel, "broadcast failed"); ce != nil {
			ce.Write(
				zap.String("service_id", r.id.String()),
				zap.Stringer("command", cmd),
				zap.Int("failures", failures),
				zap.Error(err),
			)
		}
	}

	return err
}

// Dispatch invokes cmd on each target in order with Broadcast's failure
// semantics and returns how many handlers ran. Failures are wrapped in
// *BroadcastError attributed to caller. The caller must keep every target
// alive for the duration of the call.
func Dispatch(ctx context.Context, caller Managed, targets []Managed, cmd Command, opts BroadcastOptions, params ...any) (int, error) {
	return dispatch(ctx, caller.ID(), caller, targets, cmd, opts, params)
}

func dispatch(ctx context.Context, service id.ObjectID, caller Managed, targets []Managed, cmd Command, opts BroadcastOptions, params []any) (int, error) {
	var errs error
	invoked := 0

	for _, target := range targets {
		invoked++
		err := Invoke(ctx, caller, target, cmd, params...)
		if err == nil {
			continue
		}
		if opts.IgnoreUnsupported && errors.Is(err, ErrUnsupported) {
			continue
		}

		err = &BroadcastError{
			Service: service,
			Client:  target.ID(),
			Command: cmd,
			Err:     err,
		}
		if opts.StopOnError {
			return invoked, err
		}
		errs = multierr.Append(errs, err)
	}

	return invoked, errs
}

// Invoke runs cmd on a single target. Targets that do not implement Handler
// report ErrUnsupported.
func Invoke(ctx context.Context, caller, target Managed, cmd Command, params ...any) error {
	h, ok := target.(Handler)
	if !ok {
		return fmt.Errorf("%w: %s does not handle commands", ErrUnsupported, target.ID())
	}
	return h.ExecuteCommand(ctx, caller, cmd, params...)
}
