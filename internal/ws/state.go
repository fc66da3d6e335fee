package ws

import "sync/atomic"

// ConnState is a stage in the life of one connection. Stages only move
// forward: idle, connecting, connected, closed.
type ConnState int32

const (
	StateIdle ConnState = iota
	StateConnecting
	StateConnected
	// StateClosed is terminal. It is reached from any stage by Close, by the
	// peer, by a handler error or by a failed dial.
	StateClosed
)

var stateNames = [...]string{"idle", "connecting", "connected", "closed"}

func (s ConnState) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// State holds a ConnState that can be read and advanced concurrently.
type State struct {
	v atomic.Int32
}

// Load returns the current stage.
func (s *State) Load() ConnState {
	return ConnState(s.v.Load())
}

// Advance moves to next unless the current stage is already at or past it.
// It reports whether the stage changed.
func (s *State) Advance(next ConnState) bool {
	for {
		cur := s.v.Load()
		if ConnState(cur) >= next {
			return false
		}
		if s.v.CompareAndSwap(cur, int32(next)) {
			return true
		}
	}
}
