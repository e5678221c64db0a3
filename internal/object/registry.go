package object

import (
	"fmt"
	"sync"

	"github.com/GriffinCanCode/AgentOS/objmgr/internal/debug"
)

// Service is a managed object that tracks which objects depend on it.
// Types become services by embedding Registry.
type Service interface {
	Managed
	RegisterClient(client Managed)
	DeregisterClient(client Managed)

	registry() *Registry
}

type clientEntry struct {
	client Managed
	n      int // registrations held by this client
}

// Registry is the embeddable base of services. Every registration holds one
// strong reference on the registry itself.
type Registry struct {
	Object

	mu      sync.Mutex
	clients []clientEntry // registration order
}

func (r *Registry) registry() *Registry {
	return r
}

// RegisterClient records client as depending on r and retains r. Checked
// builds first verify that r does not already depend on client, directly or
// transitively, and panic with a *CycleError if it does.
func (r *Registry) RegisterClient(client Managed) {
	if isZero(client) {
		panic(ErrNilObject)
	}
	r.checkUsable()
	client.managed().checkUsable()

	if debug.Enabled {
		guardCycle(client, r)
	}

	r.mu.Lock()
	r.insertLocked(client)
	r.mu.Unlock()

	r.Retain()
	currentObserver().ClientRegistered(r.id, client.ID())
}

// DeregisterClient removes one registration of client and releases r, which
// may destroy r.
func (r *Registry) DeregisterClient(client Managed) {
	if isZero(client) {
		panic(ErrNilObject)
	}

	r.mu.Lock()
	removed := r.removeLocked(client.managed())
	r.mu.Unlock()

	if !removed {
		debug.Assert(false, fmt.Errorf("%w: %s is not a client of %s", ErrUnknownClient, client.ID(), r.id))
		return
	}

	currentObserver().ClientDeregistered(r.id, client.ID())
	r.Release()
}

// Clients returns the distinct registered clients in registration order.
// The result holds no references and is meant for diagnostics.
func (r *Registry) Clients() []Managed {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Managed, len(r.clients))
	for i, e := range r.clients {
		out[i] = e.client
	}
	return out
}

// ClientCount returns the number of distinct registered clients.
func (r *Registry) ClientCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

// HasClient reports whether client is registered with r.
func (r *Registry) HasClient(client Managed) bool {
	if isZero(client) {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.indexLocked(client.managed()) >= 0
}

func (r *Registry) insertLocked(client Managed) {
	if i := r.indexLocked(client.managed()); i >= 0 {
		r.clients[i].n++
		return
	}
	r.clients = append(r.clients, clientEntry{client: client, n: 1})
}

func (r *Registry) removeLocked(base *Object) bool {
	i := r.indexLocked(base)
	if i < 0 {
		return false
	}

	r.clients[i].n--
	if r.clients[i].n == 0 {
		r.clients = append(r.clients[:i], r.clients[i+1:]...)
	}
	return true
}

func (r *Registry) indexLocked(base *Object) int {
	for i, e := range r.clients {
		if e.client.managed() == base {
			return i
		}
	}
	return -1
}

// retainedClients snapshots the client set, holding a strong reference on
// each live client. Clients already on their way to destruction are skipped.
func (r *Registry) retainedClients() []Managed {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Managed, 0, len(r.clients))
	for _, e := range r.clients {
		if e.client.managed().tryRetain() {
			out = append(out, e.client)
		}
	}
	return out
}

func (r *Registry) assertNoClients() {
	if !debug.Enabled {
		return
	}

	r.mu.Lock()
	n := len(r.clients)
	r.mu.Unlock()

	debug.Assert(n == 0, fmt.Errorf("%w: %s has %d", ErrClientsOutstanding, r.id, n))
}
