package object

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AgentOS/objmgr/internal/debug"
)

func requireCycle(t *testing.T, fn func()) *CycleError {
	t.Helper()

	err := panicError(t, fn)

	var cycleErr *CycleError
	require.True(t, errors.As(err, &cycleErr))
	assert.ErrorIs(t, err, ErrCycle)
	return cycleErr
}

func TestCycleRejection(t *testing.T) {
	if !debug.Enabled {
		t.Skip("cycle guard disabled in release builds")
	}
	rec := newRecorder(t)

	a := newNode("a")
	b := newNode("b")

	// a depends on b
	b.RegisterClient(a)
	countA, countB := a.ReferenceCount(), b.ReferenceCount()

	// b depending on a would close the loop
	cycleErr := requireCycle(t, func() { a.RegisterClient(b) })
	assert.Equal(t, b.ID(), cycleErr.Owner)
	assert.Equal(t, a.ID(), cycleErr.Target)

	assert.Equal(t, countA, a.ReferenceCount())
	assert.Equal(t, countB, b.ReferenceCount())
	assert.Zero(t, a.ClientCount(), "a's client set untouched")
	assert.True(t, b.HasClient(a))
	assert.Equal(t, 1, b.ClientCount())
	assert.Equal(t, 1, rec.cycles)

	b.DeregisterClient(a)
	a.Release()
	b.Release()
	assert.Equal(t, int32(1), a.destroyed.Load())
	assert.Equal(t, int32(1), b.destroyed.Load())
}

func TestTransitiveCycleRejection(t *testing.T) {
	if !debug.Enabled {
		t.Skip("cycle guard disabled in release builds")
	}

	a, b, c, d := newNode("a"), newNode("b"), newNode("c"), newNode("d")

	// d -> c -> b -> a (x -> y: x depends on y)
	a.RegisterClient(b)
	b.RegisterClient(c)
	c.RegisterClient(d)

	requireCycle(t, func() { d.RegisterClient(a) })
	requireCycle(t, func() { c.RegisterClient(a) })

	// unrelated edges are still accepted
	e := newNode("e")
	assert.NotPanics(t, func() { e.RegisterClient(a) })
	assert.NotPanics(t, func() { e.RegisterClient(d) })

	e.DeregisterClient(a)
	e.DeregisterClient(d)
	c.DeregisterClient(d)
	b.DeregisterClient(c)
	a.DeregisterClient(b)
	for _, n := range []*node{a, b, c, d, e} {
		n.Release()
		assert.Equal(t, int32(1), n.destroyed.Load(), n.name)
	}
}

func TestSelfRegistrationIsACycle(t *testing.T) {
	if !debug.Enabled {
		t.Skip("cycle guard disabled in release builds")
	}

	a := newNode("a")
	requireCycle(t, func() { a.RegisterClient(a) })
	assert.Equal(t, int32(1), a.ReferenceCount())
	a.Release()
}

func TestDiamondIsNotACycle(t *testing.T) {
	top, left, right, bottom := newNode("top"), newNode("left"), newNode("right"), newNode("bottom")

	top.RegisterClient(left)
	top.RegisterClient(right)
	left.RegisterClient(bottom)
	right.RegisterClient(bottom)

	assert.Equal(t, int32(3), top.ReferenceCount())

	right.DeregisterClient(bottom)
	left.DeregisterClient(bottom)
	top.DeregisterClient(right)
	top.DeregisterClient(left)
	for _, n := range []*node{top, left, right, bottom} {
		n.Release()
	}
}

func TestCycleProbeNeverReachesHandlers(t *testing.T) {
	if !debug.Enabled {
		t.Skip("cycle guard disabled in release builds")
	}

	var seen []Command
	spy := newFuncClient(func(_ context.Context, _ Managed, cmd Command, _ ...any) error {
		seen = append(seen, cmd)
		return nil
	})

	a := newNode("a")
	b := newNode("b")
	a.RegisterClient(spy)
	b.RegisterClient(a)

	requireCycle(t, func() { a.RegisterClient(b) })
	assert.Empty(t, seen)

	b.DeregisterClient(a)
	a.DeregisterClient(spy)
	spy.Release()
	a.Release()
	b.Release()
}
