// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package reactive

import (
	"sync/atomic"
)

// LoopState represents the lifecycle state of an [EventLoopScheduler].
//
// State Machine:
//
//	StateAwake → StateRunning             [first Schedule]
//	StateAwake → StateTerminated          [Shutdown or Close, never started]
//	StateRunning → StateTerminating       [Shutdown or Close]
//	StateTerminating → StateTerminated    [loop goroutine exited]
//	StateTerminated → (terminal)
//
// Use TryTransition (CAS) for all transitions except to StateTerminated,
// which is irreversible, and may be stored directly.
type LoopState uint64

const (
	// StateAwake indicates the scheduler has been created, but its
	// goroutine has not been started.
	StateAwake LoopState = iota
	// StateRunning indicates the loop goroutine is running.
	StateRunning
	// StateTerminating indicates shutdown has been requested, but not
	// completed.
	StateTerminating
	// StateTerminated indicates the loop goroutine has exited, or was
	// never started.
	StateTerminated
)

// String returns a human-readable representation of the state.
func (s LoopState) String() string {
	switch s {
	case StateAwake:
		return "Awake"
	case StateRunning:
		return "Running"
	case StateTerminating:
		return "Terminating"
	case StateTerminated:
		return "Terminated"
	default:
		return "Unknown"
	}
}

// fastState is a lock-free state machine, padded to avoid false sharing
// with the fields of the owning struct.
type fastState struct { // betteralign:ignore
	_ [64]byte      // Cache line padding (before value) //nolint:unused
	v atomic.Uint64 // State value
	_ [56]byte      // Pad to complete cache line (64 - 8 = 56) //nolint:unused
}

// Load returns the current state atomically.
func (s *fastState) Load() LoopState {
	return LoopState(s.v.Load())
}

// Store atomically stores a new state, without validation.
func (s *fastState) Store(state LoopState) {
	s.v.Store(uint64(state))
}

// TryTransition attempts to atomically transition from one state to another.
// Returns true if the transition was successful.
func (s *fastState) TryTransition(from, to LoopState) bool {
	return s.v.CompareAndSwap(uint64(from), uint64(to))
}

// CanAcceptWork returns true if the scheduler may accept new work.
func (s *fastState) CanAcceptWork() bool {
	state := s.Load()
	return state == StateAwake || state == StateRunning
}
