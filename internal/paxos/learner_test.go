package paxos

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rverma-dev/paxkv/internal/storage"
)

func TestLearnAppliesPutAndDelete(t *testing.T) {
	store := storage.NewMap()
	l := NewLearner(store, silentLogger())

	var empty Empty
	require.NoError(t, l.Learn(&LearnArgs{Value: "PUT color blue"}, &empty))
	v, ok := store.Get("color")
	require.True(t, ok)
	assert.Equal(t, "blue", v)

	require.NoError(t, l.Learn(&LearnArgs{Value: "DELETE color"}, &empty))
	_, ok = store.Get("color")
	assert.False(t, ok)
}

func TestLearnPreservesMultiWordValue(t *testing.T) {
	store := storage.NewMap()
	l := NewLearner(store, silentLogger())

	var empty Empty
	require.NoError(t, l.Learn(&LearnArgs{Value: "PUT weakness leg spin"}, &empty))
	v, ok := store.Get("weakness")
	require.True(t, ok)
	assert.Equal(t, "leg spin", v)
}

func TestLearnDeleteOfAbsentKeyIsNotFatal(t *testing.T) {
	store := storage.NewMap()
	l := NewLearner(store, silentLogger())

	var empty Empty
	err := l.Learn(&LearnArgs{Value: "DELETE missing"}, &empty)
	assert.NoError(t, err)
}

func TestLearnMalformedCommandIsIgnored(t *testing.T) {
	store := storage.NewMap()
	l := NewLearner(store, silentLogger())

	var empty Empty
	require.NoError(t, l.Learn(&LearnArgs{Value: "FOO"}, &empty))
	assert.Equal(t, 0, store.Len())
}
