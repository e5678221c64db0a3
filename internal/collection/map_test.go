package collection

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AgentOS/objmgr/internal/object"
)

func TestMapSetGetDelete(t *testing.T) {
	m := NewMap[string, *device]()
	a, b := newDevice("a"), newDevice("b")

	m.Set("x", a)
	assert.Equal(t, int32(3), a.ReferenceCount())
	assert.True(t, a.HasClient(m))

	m.Set("x", a)
	assert.Equal(t, int32(3), a.ReferenceCount(), "same element is a no-op")

	m.Set("x", b)
	assert.Equal(t, int32(1), a.ReferenceCount())
	assert.False(t, a.HasClient(m))
	assert.True(t, b.HasClient(m))

	got, ok := m.Get("x")
	require.True(t, ok)
	assert.Same(t, b, got)
	_, ok = m.Get("y")
	assert.False(t, ok)

	assert.True(t, m.Delete("x"))
	assert.False(t, m.Delete("x"))
	assert.Equal(t, int32(1), b.ReferenceCount())

	a.Release()
	b.Release()
	m.Release()
	assert.Equal(t, int32(1), a.destroyed.Load())
	assert.Equal(t, int32(1), b.destroyed.Load())
}

func TestMapKeysAndRange(t *testing.T) {
	m := NewMap[int, *device]()
	for _, k := range []int{3, 1, 2} {
		d := newDevice(fmt.Sprint(k))
		m.Set(k, d)
		d.Release()
	}

	assert.Equal(t, []int{1, 2, 3}, m.Keys())
	assert.Equal(t, 3, m.Len())

	var seen []string
	m.Range(func(k int, d *device) bool {
		seen = append(seen, d.name)
		return k < 2
	})
	assert.Equal(t, []string{"1", "2"}, seen)

	m.Clear()
	assert.Zero(t, m.Len())
	m.Release()
}

func TestMapDestructionReleasesElements(t *testing.T) {
	m := NewMap[string, *device]()
	d := newDevice("d")
	m.Set("a", d)
	m.Set("b", d)
	d.Release()

	assert.Equal(t, 1, d.ClientCount())
	m.Release()
	assert.Equal(t, int32(1), d.destroyed.Load())
}

func TestMapConcurrentSet(t *testing.T) {
	m := NewMap[int, *device]()
	devs := []*device{newDevice("a"), newDevice("b")}

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				m.Set(i%4, devs[(w+i)%2])
				if i%7 == 0 {
					m.Delete(i % 4)
				}
			}
		}(w)
	}
	wg.Wait()

	m.Clear()
	for _, d := range devs {
		assert.Equal(t, int32(1), d.ReferenceCount())
		d.Release()
	}
	m.Release()
}

func TestMapRejectsNilElement(t *testing.T) {
	m := NewMap[string, *device]()

	assert.PanicsWithValue(t, object.ErrNilObject, func() { m.Set("x", nil) })
	assert.Zero(t, m.Len())

	m.Release()
}
