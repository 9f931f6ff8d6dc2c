package systems

import (
	"sync/atomic"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/anima-dx12/engine/core"
	"github.com/spaghettifunk/anima-dx12/engine/renderer/metadata"
)

func TestNewJobSystemValidatesArguments(t *testing.T) {
	_, err := NewJobSystem(0, 1)
	assert.ErrorIs(t, err, ErrNoWorkers)
	_, err = NewJobSystem(1, -1)
	assert.ErrorIs(t, err, ErrNegativeChannelSize)
}

func TestJobSystemRunsCallbacksOnOwner(t *testing.T) {
	// an unbuffered queue and more jobs than workers exercise the
	// dispatch-while-submitting path
	js, err := NewJobSystem(2, 0)
	require.NoError(t, err)

	var started atomic.Int32
	sum, failures := 0, 0
	for i := 1; i <= 20; i++ {
		require.NoError(t, js.Submit(metadata.JobTask{
			Name:        "square",
			InputParams: i,
			OnStart: func(params interface{}) (interface{}, error) {
				started.Add(1)
				n := params.(int)
				if n%5 == 0 {
					return nil, errors.Newf("%d is a multiple of five", n)
				}
				return n * n, nil
			},
			OnComplete: func(result interface{}) { sum += result.(int) },
			OnFailure:  func(error) { failures++ },
		}))
	}
	js.Flush()

	assert.Zero(t, js.Pending())
	assert.Equal(t, int32(20), started.Load())
	assert.Equal(t, 4, failures)
	// 1..20 squared, minus 5, 10, 15 and 20 squared
	assert.Equal(t, 2870-750, sum)

	require.NoError(t, js.Shutdown())
	require.NoError(t, js.Shutdown())
	err = js.Submit(metadata.JobTask{Name: "late", OnStart: func(interface{}) (interface{}, error) { return nil, nil }})
	assert.ErrorIs(t, err, core.ErrShuttingDown)
}

func TestJobSystemUpdateDoesNotBlock(t *testing.T) {
	js, err := NewJobSystem(1, 4)
	require.NoError(t, err)
	defer js.Shutdown()

	release := make(chan struct{})
	done := false
	require.NoError(t, js.Submit(metadata.JobTask{
		Name: "blocked",
		OnStart: func(interface{}) (interface{}, error) {
			<-release
			return nil, nil
		},
		OnComplete: func(interface{}) { done = true },
	}))

	js.Update()
	assert.False(t, done)
	assert.Equal(t, 1, js.Pending())

	close(release)
	js.Flush()
	assert.True(t, done)

	assert.Error(t, js.Submit(metadata.JobTask{Name: "empty"}))
	assert.Zero(t, js.Pending())
}
