package collection

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sync"

	"github.com/GriffinCanCode/AgentOS/objmgr/internal/object"
)

var ErrIndexOutOfRange = errors.New("collection: index out of range")

// List is an ordered collection of services. The same service may appear
// more than once; each slot carries its own reference and registration.
type List[T object.Service] struct {
	object.Registry

	mu    sync.Mutex
	items []object.Ref[T]
}

// NewList allocates an empty list. The caller owns the returned reference.
func NewList[T object.Service]() *List[T] {
	return object.Alloc(&List[T]{})
}

// Destroy runs when the last reference to the list goes away.
func (l *List[T]) Destroy() {
	l.Clear()
}

// PushBack appends v.
func (l *List[T]) PushBack(v T) {
	ref := l.adopt(v)

	l.mu.Lock()
	l.items = append(l.items, ref)
	l.mu.Unlock()
}

// PushFront prepends v.
func (l *List[T]) PushFront(v T) {
	ref := l.adopt(v)

	l.mu.Lock()
	l.items = append([]object.Ref[T]{ref}, l.items...)
	l.mu.Unlock()
}

// Insert places v at index i, shifting later elements back. i may equal Len.
func (l *List[T]) Insert(i int, v T) error {
	ref := l.adopt(v)

	l.mu.Lock()
	if i < 0 || i > len(l.items) {
		n := len(l.items)
		l.mu.Unlock()
		l.abandon(ref)
		return fmt.Errorf("%w: insert at %d, length %d", ErrIndexOutOfRange, i, n)
	}
	l.items = append(l.items, object.Ref[T]{})
	copy(l.items[i+1:], l.items[i:])
	l.items[i] = ref
	l.mu.Unlock()

	return nil
}

// At returns the element at index i without retaining it.
func (l *List[T]) At(i int) (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if i < 0 || i >= len(l.items) {
		var zero T
		return zero, false
	}
	return l.items[i].Get(), true
}

// RefAt returns a new strong handle to the element at index i, or an empty
// handle when i is out of range. The caller drops it.
func (l *List[T]) RefAt(i int) object.Ref[T] {
	l.mu.Lock()
	defer l.mu.Unlock()

	if i < 0 || i >= len(l.items) {
		return object.Ref[T]{}
	}
	return l.items[i].Clone()
}

// Len returns the number of slots.
func (l *List[T]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

// Index returns the first index holding v, or -1.
func (l *List[T]) Index(v T) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.indexLocked(v)
}

// Contains reports whether v occupies any slot.
func (l *List[T]) Contains(v T) bool {
	return l.Index(v) >= 0
}

// Remove deletes the element at index i.
func (l *List[T]) Remove(i int) error {
	ref, err := l.take(i)
	if err != nil {
		return err
	}
	l.abandon(ref)
	return nil
}

// RemoveValue deletes the first slot holding v and reports whether one was
// found.
func (l *List[T]) RemoveValue(v T) bool {
	l.mu.Lock()
	i := l.indexLocked(v)
	if i < 0 {
		l.mu.Unlock()
		return false
	}
	ref := l.cutLocked(i)
	l.mu.Unlock()

	l.abandon(ref)
	return true
}

// Detach removes the element at index i and hands its reference to the
// caller instead of dropping it. The list's registration is withdrawn.
func (l *List[T]) Detach(i int) (object.Pending[T], error) {
	ref, err := l.take(i)
	if err != nil {
		return object.Pending[T]{}, err
	}
	ref.Get().DeregisterClient(l)
	return ref.Take(), nil
}

// Clear empties the list.
func (l *List[T]) Clear() {
	l.mu.Lock()
	items := l.items
	l.items = nil
	l.mu.Unlock()

	for _, ref := range items {
		l.abandon(ref)
	}
}

// Snapshot returns a strong handle per slot. The caller drops every handle.
func (l *List[T]) Snapshot() []object.Ref[T] {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]object.Ref[T], len(l.items))
	for i, ref := range l.items {
		out[i] = ref.Clone()
	}
	return out
}

// All iterates over a snapshot of the list. Elements stay alive for the
// whole iteration even if they are removed concurrently.
func (l *List[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		refs := l.Snapshot()
		defer dropAll(refs)

		for i, ref := range refs {
			if !yield(i, ref.Get()) {
				return
			}
		}
	}
}

// Dispatch runs cmd on every element in order with the list as caller and
// returns how many handlers ran.
func (l *List[T]) Dispatch(ctx context.Context, cmd object.Command, opts object.BroadcastOptions, params ...any) (int, error) {
	refs := l.Snapshot()
	defer dropAll(refs)

	targets := make([]object.Managed, len(refs))
	for i, ref := range refs {
		targets[i] = ref.Get()
	}
	return object.Dispatch(ctx, l, targets, cmd, opts, params...)
}

// adopt registers l with v and takes the slot's reference. Registration
// comes first so a rejected registration leaves nothing to undo.
func (l *List[T]) adopt(v T) object.Ref[T] {
	mustElement(v)
	v.RegisterClient(l)
	return object.NewRef(v)
}

func (l *List[T]) abandon(ref object.Ref[T]) {
	ref.Get().DeregisterClient(l)
	ref.Drop()
}

func (l *List[T]) take(i int) (object.Ref[T], error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if i < 0 || i >= len(l.items) {
		return object.Ref[T]{}, fmt.Errorf("%w: index %d, length %d", ErrIndexOutOfRange, i, len(l.items))
	}
	return l.cutLocked(i), nil
}

func (l *List[T]) cutLocked(i int) object.Ref[T] {
	ref := l.items[i]
	l.items = append(l.items[:i], l.items[i+1:]...)
	return ref
}

func (l *List[T]) indexLocked(v T) int {
	want := object.Adopt(v) // identity only, owns nothing
	for i, ref := range l.items {
		if ref.Equal(want) {
			return i
		}
	}
	return -1
}

// mustElement rejects the zero element up front; a nil service would
// otherwise fault inside RegisterClient.
func mustElement[T object.Managed](v T) {
	var zero T
	if any(v) == any(zero) {
		panic(object.ErrNilObject)
	}
}

func dropAll[T object.Managed](refs []object.Ref[T]) {
	for i := range refs {
		refs[i].Drop()
	}
}
