package object

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AgentOS/objmgr/internal/shared/id"
)

type node struct {
	Registry
	name      string
	destroyed atomic.Int32
	onDestroy func()
}

func newNode(name string) *node {
	return Alloc(&node{name: name})
}

func (n *node) Destroy() {
	n.destroyed.Add(1)
	if n.onDestroy != nil {
		n.onDestroy()
	}
}

type leaf struct {
	Object
	destroyed atomic.Int32
}

func newLeaf() *leaf {
	return Alloc(&leaf{})
}

func (l *leaf) Destroy() {
	l.destroyed.Add(1)
}

// dependent is a client that holds a registration on a node for its whole
// life and releases it from Destroy.
type dependent struct {
	Registry
	svc       *ServiceRef[*node]
	destroyed atomic.Int32
}

func newDependent(svc *node) *dependent {
	d := Alloc(&dependent{})
	d.svc = NewServiceRef(d, svc)
	return d
}

func (d *dependent) Destroy() {
	d.destroyed.Add(1)
	d.svc.Reset()
}

type mockClient struct {
	Object
	mock.Mock
}

func newMockClient() *mockClient {
	return Alloc(&mockClient{})
}

func (m *mockClient) ExecuteCommand(ctx context.Context, caller Managed, cmd Command, params ...any) error {
	args := m.Called(cmd, params)
	return args.Error(0)
}

type funcClient struct {
	Object
	fn func(ctx context.Context, caller Managed, cmd Command, params ...any) error
}

func newFuncClient(fn func(ctx context.Context, caller Managed, cmd Command, params ...any) error) *funcClient {
	return Alloc(&funcClient{fn: fn})
}

func (f *funcClient) ExecuteCommand(ctx context.Context, caller Managed, cmd Command, params ...any) error {
	return f.fn(ctx, caller, cmd, params...)
}

type recorder struct {
	NopObserver

	mu          sync.Mutex
	destroyed   map[id.ObjectID]int
	freed       map[id.ObjectID]int
	resurrected int
	upgrades    map[bool]int
	cycles      int
	broadcasts  []BroadcastEvent
}

func newRecorder(t *testing.T) *recorder {
	t.Helper()
	r := &recorder{
		destroyed: make(map[id.ObjectID]int),
		freed:     make(map[id.ObjectID]int),
		upgrades:  make(map[bool]int),
	}
	SetObserver(r)
	t.Cleanup(func() { SetObserver(nil) })
	return r
}

func (r *recorder) ObjectDestroyed(obj id.ObjectID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.destroyed[obj]++
}

func (r *recorder) ObjectResurrected(id.ObjectID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resurrected++
}

func (r *recorder) WeakExtensionFreed(owner id.ObjectID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.freed[owner]++
}

func (r *recorder) WeakUpgrade(_ id.ObjectID, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upgrades[ok]++
}

func (r *recorder) CycleRejected(id.ObjectID, id.ObjectID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cycles++
}

func (r *recorder) BroadcastFinished(_ context.Context, ev BroadcastEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.broadcasts = append(r.broadcasts, ev)
}

func (r *recorder) destroyedCount(obj id.ObjectID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.destroyed[obj]
}

func (r *recorder) freedCount(owner id.ObjectID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.freed[owner]
}

// panicError runs fn and returns the error it panicked with.
func panicError(t *testing.T, fn func()) error {
	t.Helper()

	var got any
	func() {
		defer func() { got = recover() }()
		fn()
	}()

	require.NotNil(t, got, "expected a panic")
	err, ok := got.(error)
	require.True(t, ok, "panic value should be an error: %v", got)
	return err
}
