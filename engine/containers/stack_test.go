package containers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStackLIFO(t *testing.T) {
	s := NewStack[int](4)
	s.Push(1)
	s.PushAll(2, 3)
	require.Equal(t, 3, s.Len())

	top, err := s.Peek()
	require.NoError(t, err)
	assert.Equal(t, 3, top)

	for _, want := range []int{3, 2, 1} {
		got, err := s.Pop()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	assert.True(t, s.IsEmpty())
}

func TestStackEmpty(t *testing.T) {
	s := NewStack[string](0)

	_, err := s.Pop()
	assert.ErrorIs(t, err, ErrStackEmpty)
	_, err = s.Peek()
	assert.ErrorIs(t, err, ErrStackEmpty)

	s.Push("a")
	s.Clear()
	assert.Equal(t, 0, s.Len())
}
