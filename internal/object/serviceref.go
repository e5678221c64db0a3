package object

import "sync"

// ServiceRef is a client registration owned by a managed object: while it
// points at a service, the owner is registered as one of the service's
// clients and the service holds a count for it. Owners typically create it
// after Alloc and Reset it from Destroy.
type ServiceRef[T Service] struct {
	mu     sync.Mutex
	owner  Managed
	target T
}

// NewServiceRef registers owner with target. A zero target leaves the
// reference unbound.
func NewServiceRef[T Service](owner Managed, target T) *ServiceRef[T] {
	if isZero(owner) {
		panic(ErrNilObject)
	}
	s := &ServiceRef[T]{owner: owner}
	s.Assign(target)
	return s
}

// Get returns the current target, or the zero value when unbound.
func (s *ServiceRef[T]) Get() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.target
}

// Owner returns the registered client.
func (s *ServiceRef[T]) Owner() Managed {
	return s.owner
}

// Assign moves the registration to target: the owner is deregistered from
// the old target before it registers with the new one. Assigning the
// current target is a no-op.
func (s *ServiceRef[T]) Assign(target T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.target
	if !isZero(old) && !isZero(target) && old.managed() == target.managed() {
		return
	}

	var zero T
	s.target = zero
	if !isZero(old) {
		old.DeregisterClient(s.owner)
	}
	if !isZero(target) {
		target.RegisterClient(s.owner)
		s.target = target
	}
}

// Reset deregisters the owner from the current target, if any.
func (s *ServiceRef[T]) Reset() {
	var zero T
	s.Assign(zero)
}

// Acquire returns a pending strong reference to the current target.
func (s *ServiceRef[T]) Acquire() Pending[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Retained(s.target)
}
