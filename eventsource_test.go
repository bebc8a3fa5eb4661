// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package reactive

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventSource_raiseInRegistrationOrder(t *testing.T) {
	source := NewEventSource[string, int]()
	var got []string
	source.AddHandler(func(sender string, args int) { got = append(got, "first") })
	source.AddHandler(func(sender string, args int) { got = append(got, "second") })
	source.Raise("sender", 1)
	assert.Equal(t, []string{"first", "second"}, got)
	assert.Equal(t, 2, source.HandlerCount())
}

func TestEventSource_removeHandler(t *testing.T) {
	source := NewEventSource[string, int]()
	var calls int
	token := source.AddHandler(func(string, int) { calls++ })
	other := source.AddHandler(func(string, int) {})
	assert.NotEqual(t, token, other)

	assert.True(t, source.RemoveHandler(token))
	assert.False(t, source.RemoveHandler(token))
	source.Raise("", 0)
	assert.Equal(t, 0, calls)
	assert.Equal(t, 1, source.HandlerCount())
}

func TestEventSource_nilHandler(t *testing.T) {
	source := NewEventSource[string, int]()
	assert.Equal(t, HandlerToken(0), source.AddHandler(nil))
	assert.Equal(t, 0, source.HandlerCount())
	assert.False(t, source.RemoveHandler(0))
}

func TestEventSource_removeDuringRaise(t *testing.T) {
	source := NewEventSource[string, int]()
	var (
		calls  int
		second HandlerToken
	)
	source.AddHandler(func(string, int) { source.RemoveHandler(second) })
	second = source.AddHandler(func(string, int) { calls++ })
	// handlers registered at the time of the call are all invoked
	source.Raise("", 0)
	assert.Equal(t, 1, calls)
	source.Raise("", 0)
	assert.Equal(t, 1, calls)
}

func TestEventSource_concurrent(t *testing.T) {
	source := NewEventSource[int, int]()
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				token := source.AddHandler(func(int, int) {})
				source.Raise(i, 0)
				source.RemoveHandler(token)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, source.HandlerCount())
}
