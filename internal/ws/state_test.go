package ws

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestState_AdvancesForwardOnly(t *testing.T) {
	var s State
	assert.Equal(t, StateIdle, s.Load())

	assert.True(t, s.Advance(StateConnecting))
	assert.True(t, s.Advance(StateConnected))
	assert.False(t, s.Advance(StateConnecting))
	assert.Equal(t, StateConnected, s.Load())

	assert.True(t, s.Advance(StateClosed))
	assert.False(t, s.Advance(StateConnected))
	assert.False(t, s.Advance(StateClosed))
	assert.Equal(t, StateClosed, s.Load())
}

func TestState_ConcurrentClose(t *testing.T) {
	var s State
	s.Advance(StateConnected)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		changed int
	)
	for i := 0; i < 50; i++ {
		wg.Go(func() {
			if s.Advance(StateClosed) {
				mu.Lock()
				changed++
				mu.Unlock()
			}
		})
	}
	wg.Wait()

	assert.Equal(t, 1, changed)
	assert.Equal(t, StateClosed, s.Load())
}

func TestConnState_String(t *testing.T) {
	tests := map[ConnState]string{
		StateIdle:       "idle",
		StateConnecting: "connecting",
		StateConnected:  "connected",
		StateClosed:     "closed",
		ConnState(9):    "unknown",
	}
	for state, want := range tests {
		assert.Equal(t, want, state.String())
	}
}
