// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package reactive

import (
	"context"
	"runtime"
	"sync"
	"testing"
	"time"

	eventloop "github.com/joeycumines/go-eventloop"
)

// newTestLoop creates a new event loop, starts it, and registers cleanup.
func newTestLoop(t testing.TB) *eventloop.Loop {
	t.Helper()
	loop, err := eventloop.New()
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = loop.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return loop
}

// onLoop runs fn on loop, and waits for it to return.
func onLoop(t testing.TB, loop *eventloop.Loop, fn func()) {
	t.Helper()
	done := make(chan struct{})
	if err := loop.Submit(func() {
		defer close(done)
		fn()
	}); err != nil {
		t.Fatal(err)
	}
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for loop")
	}
}

// recorder is an Observer that records every signal.
type recorder[T any] struct {
	values    []T
	err       error
	done      chan struct{}
	mu        sync.Mutex
	completed bool
	terminals int
}

func newRecorder[T any]() *recorder[T] {
	return &recorder[T]{done: make(chan struct{})}
}

func (x *recorder[T]) OnNext(value T) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.values = append(x.values, value)
}

func (x *recorder[T]) OnError(err error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.err = err
	x.terminate()
}

func (x *recorder[T]) OnCompleted() {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.completed = true
	x.terminate()
}

func (x *recorder[T]) terminate() {
	x.terminals++
	if x.terminals == 1 {
		close(x.done)
	}
}

func (x *recorder[T]) Values() []T {
	x.mu.Lock()
	defer x.mu.Unlock()
	return append([]T(nil), x.values...)
}

func (x *recorder[T]) Err() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.err
}

func (x *recorder[T]) Completed() bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.completed
}

func (x *recorder[T]) Terminals() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.terminals
}

// wait blocks until the recorder receives a terminal signal.
func (x *recorder[T]) wait(t testing.TB) {
	t.Helper()
	select {
	case <-x.done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for terminal signal")
	}
}

// checkNumGoroutines fails the test if, after cleanup, the number of
// goroutines hasn't returned to (at most) the starting count.
func checkNumGoroutines(t testing.TB) {
	t.Helper()
	start := runtime.NumGoroutine()
	t.Cleanup(func() {
		deadline := time.Now().Add(2 * time.Second)
		for {
			n := runtime.NumGoroutine()
			if n <= start {
				return
			}
			if time.Now().After(deadline) {
				t.Errorf("goroutine leak: started with %d, ended with %d", start, n)
				return
			}
			time.Sleep(10 * time.Millisecond)
		}
	})
}
