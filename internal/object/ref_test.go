package object

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AgentOS/objmgr/internal/debug"
)

func TestAdoptDoesNotIncrement(t *testing.T) {
	l := newLeaf()
	r := Adopt(l)

	assert.Equal(t, int32(1), l.ReferenceCount())
	assert.Same(t, l, r.Get())

	r.Drop()
	assert.True(t, r.IsNil())
	assert.Equal(t, int32(1), l.destroyed.Load())
}

func TestCloneAndDrop(t *testing.T) {
	r1 := Adopt(newLeaf())
	l := r1.Get()

	r2 := r1.Clone()
	r3 := NewRef(l)
	assert.Equal(t, int32(3), l.ReferenceCount())
	assert.True(t, r1.Equal(r2))
	assert.True(t, r2.Equal(r3))

	r1.Drop()
	r2.Drop()
	r2.Drop() // empty handle, no-op
	assert.Zero(t, l.destroyed.Load())

	r3.Drop()
	assert.Equal(t, int32(1), l.destroyed.Load())
}

func TestAssign(t *testing.T) {
	a := Adopt(newLeaf())
	b := Adopt(newLeaf())
	la, lb := a.Get(), b.Get()

	a.Assign(b)
	assert.Equal(t, int32(1), la.destroyed.Load(), "old target released")
	assert.Equal(t, int32(2), lb.ReferenceCount())
	assert.True(t, a.Equal(b))

	a.Assign(a) // self assignment keeps the target alive
	assert.Equal(t, int32(2), lb.ReferenceCount())

	a.Assign(Ref[*leaf]{})
	assert.True(t, a.IsNil())
	assert.Equal(t, int32(1), lb.ReferenceCount())

	b.Drop()
	assert.Equal(t, int32(1), lb.destroyed.Load())
}

func TestPendingAdoptedExactlyOnce(t *testing.T) {
	l := newLeaf()
	p := Retained(l)
	assert.Equal(t, int32(2), l.ReferenceCount())

	r := FromPending(p)
	assert.Equal(t, int32(2), l.ReferenceCount(), "adoption does not double count")

	if debug.Enabled {
		assert.Panics(t, func() { FromPending(p) })
	}
	p.Discard() // already adopted, no effect
	assert.Equal(t, int32(2), l.ReferenceCount())

	r.Drop()
	l.Release()
	assert.Equal(t, int32(1), l.destroyed.Load())
}

func TestPendingDiscard(t *testing.T) {
	l := newLeaf()
	p := Retained(l)

	p.Discard()
	p.Discard()
	assert.Equal(t, int32(1), l.ReferenceCount())

	l.Release()
	assert.Equal(t, int32(1), l.destroyed.Load())
}

func TestTakeMovesOwnership(t *testing.T) {
	r := Adopt(newLeaf())
	l := r.Get()

	p := r.Take()
	assert.True(t, r.IsNil())
	assert.Equal(t, int32(1), l.ReferenceCount())

	moved := FromPending(p)
	assert.Equal(t, int32(1), l.ReferenceCount())
	moved.Drop()
	assert.Equal(t, int32(1), l.destroyed.Load())

	var empty Ref[*leaf]
	assert.True(t, empty.Take().IsNil())
	assert.True(t, FromPending(empty.Take()).IsNil())
}

func TestRefOrderingByIdentity(t *testing.T) {
	refs := []Ref[*leaf]{Adopt(newLeaf()), Adopt(newLeaf()), Adopt(newLeaf()), {}}
	want := []Ref[*leaf]{refs[3], refs[0], refs[1], refs[2]}

	got := slices.Clone(refs)
	slices.SortFunc(got, func(a, b Ref[*leaf]) int { return a.Compare(b) })

	require.Len(t, got, len(want))
	for i := range want {
		assert.True(t, want[i].Equal(got[i]), "position %d", i)
	}
	assert.Equal(t, "ref(nil)", refs[3].String())
	assert.Contains(t, refs[0].String(), refs[0].Get().ID().String())

	for i := range refs {
		refs[i].Drop()
	}
}

// create O (1) -> H1 from O (2) -> client A against O (3) -> drop H1 (2)
// -> deregister A (1) -> drop the creator handle (0, destroyed)
func TestHandleAndRegistrationScenario(t *testing.T) {
	o := newNode("o")
	creator := Adopt(o)
	assert.Equal(t, int32(1), o.ReferenceCount())

	h1 := NewRef(o)
	assert.Equal(t, int32(2), o.ReferenceCount())

	a := newLeaf()
	o.RegisterClient(a)
	assert.Equal(t, int32(3), o.ReferenceCount())

	h1.Drop()
	assert.Equal(t, int32(2), o.ReferenceCount())

	o.DeregisterClient(a)
	assert.Equal(t, int32(1), o.ReferenceCount())
	assert.Zero(t, o.destroyed.Load())

	creator.Drop()
	assert.Equal(t, int32(1), o.destroyed.Load())

	a.Release()
}
