package storage

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapPutGetDelete(t *testing.T) {
	m := NewMap()

	_, ok := m.Get("missing")
	assert.False(t, ok)

	m.Put("k", "v1")
	v, ok := m.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v1", v)

	m.Put("k", "v2")
	v, ok = m.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v2", v)

	assert.True(t, m.Delete("k"))
	assert.False(t, m.Delete("k"))
	_, ok = m.Get("k")
	assert.False(t, ok)
}

func TestMapSnapshotIsIndependentCopy(t *testing.T) {
	m := NewMap()
	m.Put("a", "1")

	snap := m.Snapshot()
	assert.Equal(t, map[string]string{"a": "1"}, snap)

	m.Put("b", "2")
	assert.Len(t, snap, 1, "snapshot must not observe later writes")
	assert.Equal(t, 2, m.Len())
}

func TestMapConcurrentAccess(t *testing.T) {
	m := NewMap()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m.Put("key", "v")
			m.Get("key")
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1, m.Len())
}
