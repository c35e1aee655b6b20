package handle

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArena_InsertGetRemove(t *testing.T) {
	a := NewArena[string]()

	id := a.Insert("x")
	require.False(t, id.IsNull())
	assert.Equal(t, 1, a.Len())

	v, err := a.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "x", v)

	v, err = a.Remove(id)
	require.NoError(t, err)
	assert.Equal(t, "x", v)
	assert.Equal(t, 0, a.Len())
}

func TestArena_NullAndUnknown(t *testing.T) {
	a := NewArena[int]()

	_, err := a.Get(0)
	require.ErrorIs(t, err, ErrInvalid)

	_, err = a.Get(makeID(41, 1))
	require.ErrorIs(t, err, ErrInvalid)
}

func TestArena_StaleAfterRemove(t *testing.T) {
	a := NewArena[int]()

	id := a.Insert(1)
	_, err := a.Remove(id)
	require.NoError(t, err)

	_, err = a.Get(id)
	require.ErrorIs(t, err, ErrStale)

	_, err = a.Remove(id)
	require.ErrorIs(t, err, ErrStale, "double remove")

	// The slot is reused under a new generation; the old handle stays stale.
	id2 := a.Insert(2)
	assert.NotEqual(t, id, id2)
	assert.Equal(t, id.index(), id2.index())

	_, err = a.Get(id)
	require.ErrorIs(t, err, ErrStale)
	v, err := a.Get(id2)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestArena_Concurrent(t *testing.T) {
	a := NewArena[int]()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				id := a.Insert(g*1000 + i)
				v, err := a.Get(id)
				if err != nil || v != g*1000+i {
					t.Errorf("Get(%s) = %d, %v", id, v, err)
					return
				}
				if _, err := a.Remove(id); err != nil {
					t.Errorf("Remove(%s): %v", id, err)
					return
				}
			}
		}(g)
	}
	wg.Wait()
	assert.Equal(t, 0, a.Len())
}

func TestID_String(t *testing.T) {
	assert.Equal(t, "null", ID(0).String())
	assert.Equal(t, "3@1", makeID(2, 1).String())
}
