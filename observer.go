// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package reactive

import (
	"sync/atomic"
)

// Observer receives the signals of an [Observable].
//
// The runtime guarantees, for observers subscribed via [Create] based
// observables, and subjects, that calls are never concurrent, that
// OnError and OnCompleted are mutually exclusive, and that no call follows
// either of them.
type Observer[T any] interface {
	OnNext(value T)
	OnError(err error)
	OnCompleted()
}

type funcObserver[T any] struct {
	next      func(T)
	err       func(error)
	completed func()
}

// NewObserver returns an [Observer] implemented by the given callbacks, any
// of which may be nil. If err is nil, errors are logged, via the
// package-level logger, rather than silently dropped.
func NewObserver[T any](next func(value T), err func(err error), completed func()) Observer[T] {
	return &funcObserver[T]{next: next, err: err, completed: completed}
}

func (x *funcObserver[T]) OnNext(value T) {
	if x.next != nil {
		x.next(value)
	}
}

func (x *funcObserver[T]) OnError(err error) {
	if x.err != nil {
		x.err(err)
		return
	}
	getLogger().Err().
		Str(`category`, categoryObserver).
		Err(err).
		Log(`reactive: unhandled error`)
}

func (x *funcObserver[T]) OnCompleted() {
	if x.completed != nil {
		x.completed()
	}
}

// chainObserver is used by operators to subscribe upstream, and allows
// synchronous producers to detect that the downstream has stopped.
type chainObserver[T, R any] struct {
	funcObserver[T]
	downstream Observer[R]
}

func chain[T, R any](downstream Observer[R], next func(value T), err func(err error), completed func()) Observer[T] {
	return &chainObserver[T, R]{
		funcObserver: funcObserver[T]{next: next, err: err, completed: completed},
		downstream:   downstream,
	}
}

func (x *chainObserver[T, R]) IsDisposed() bool {
	return isStopped(x.downstream)
}

// sink wraps the observer of each subscription made via [Create]. It
// serializes delivery, enforces the terminal contract, and disposes the
// upstream resources once a terminal signal has been delivered, or the
// subscription is disposed.
type sink[T any] struct {
	observer Observer[T]
	upstream SerialDisposable
	gate     serializer
	stopped  atomic.Bool
}

var (
	_ Observer[any] = (*sink[any])(nil)
	_ Disposable    = (*sink[any])(nil)
)

func newSink[T any](observer Observer[T]) *sink[T] {
	return &sink[T]{observer: observer}
}

func (x *sink[T]) OnNext(value T) {
	if x.stopped.Load() {
		return
	}
	x.gate.run(func() {
		if !x.stopped.Load() {
			x.observer.OnNext(value)
		}
	})
}

func (x *sink[T]) OnError(err error) {
	if x.stopped.Load() {
		return
	}
	x.gate.run(func() {
		if x.stopped.CompareAndSwap(false, true) {
			defer x.upstream.Dispose()
			x.observer.OnError(err)
		}
	})
}

func (x *sink[T]) OnCompleted() {
	if x.stopped.Load() {
		return
	}
	x.gate.run(func() {
		if x.stopped.CompareAndSwap(false, true) {
			defer x.upstream.Dispose()
			x.observer.OnCompleted()
		}
	})
}

// Dispose stops delivery, and releases the upstream resources. If a
// delivery is in progress on another goroutine, Dispose waits for it to
// return, such that no delivery starts after Dispose returns. Disposal from
// within a delivery does not wait, as the downstream is already guarded by
// its own sink.
func (x *sink[T]) Dispose() {
	x.gate.barrier(func() { x.stopped.Store(true) })
	x.upstream.Dispose()
}

// IsDisposed reports whether the subscription has been stopped, either via
// Dispose, or a terminal signal.
func (x *sink[T]) IsDisposed() bool {
	return x.stopped.Load() || isStopped(x.observer)
}

// isStopped reports whether observer is known to no longer accept signals,
// allowing producers to exit early.
func isStopped(observer any) bool {
	if v, ok := observer.(interface{ IsDisposed() bool }); ok {
		return v.IsDisposed()
	}
	return false
}
