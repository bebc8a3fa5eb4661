// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package reactive

import (
	"slices"
	"sync"
	"sync/atomic"
)

// subjectEntry is a single subscription to a subject. The active flag is
// checked immediately prior to each delivery.
type subjectEntry[T any] struct {
	observer Observer[T]
	active   atomic.Bool
}

// subjectTerminal records the terminal signal of a subject.
type subjectTerminal struct {
	err  error
	done bool
}

// hub implements the shared fan-out behavior of [Subject] and
// [BehaviorSubject].
type hub[T any] struct {
	entries []*subjectEntry[T]
	// gate serializes emissions, and subscriptions that must observe a
	// consistent emission state
	gate     serializer
	terminal subjectTerminal
	// mu guards entries and terminal
	mu sync.Mutex
}

func (x *hub[T]) snapshot() []*subjectEntry[T] {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.terminal.done {
		return nil
	}
	return slices.Clone(x.entries)
}

// add registers observer, unless the hub has terminated, in which case the
// terminal signal is returned.
func (x *hub[T]) add(observer Observer[T]) (*subjectEntry[T], subjectTerminal) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.terminal.done {
		return nil, x.terminal
	}
	entry := &subjectEntry[T]{observer: observer}
	entry.active.Store(true)
	x.entries = append(x.entries, entry)
	return entry, subjectTerminal{}
}

// remove deactivates entry, waiting for any emission in progress on
// another goroutine (see serializer.barrier), then unregisters it.
func (x *hub[T]) remove(entry *subjectEntry[T]) {
	x.gate.barrier(func() { entry.active.Store(false) })
	x.mu.Lock()
	defer x.mu.Unlock()
	if i := slices.Index(x.entries, entry); i >= 0 {
		x.entries = slices.Delete(x.entries, i, i+1)
	}
}

// terminate records the terminal signal, returning the entries to notify,
// or false if already terminated.
func (x *hub[T]) terminate(err error) ([]*subjectEntry[T], bool) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.terminal.done {
		return nil, false
	}
	x.terminal = subjectTerminal{err: err, done: true}
	entries := x.entries
	x.entries = nil
	return entries, true
}

func (x *hub[T]) count() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return len(x.entries)
}

func (x *hub[T]) next(value T) {
	for _, entry := range x.snapshot() {
		if entry.active.Load() {
			entry.observer.OnNext(value)
		}
	}
}

func (x *hub[T]) fail(err error) {
	entries, ok := x.terminate(err)
	if !ok {
		return
	}
	for _, entry := range entries {
		if entry.active.Swap(false) {
			entry.observer.OnError(err)
		}
	}
}

func (x *hub[T]) complete() {
	entries, ok := x.terminate(nil)
	if !ok {
		return
	}
	for _, entry := range entries {
		if entry.active.Swap(false) {
			entry.observer.OnCompleted()
		}
	}
}

func (x *hub[T]) subscription(entry *subjectEntry[T]) Disposable {
	return NewDisposable(func() { x.remove(entry) })
}

func replayTerminal[T any](observer Observer[T], terminal subjectTerminal) {
	if terminal.err != nil {
		observer.OnError(terminal.err)
	} else {
		observer.OnCompleted()
	}
}

// Subject is both an [Observer] and a hot [Observable], which multicasts
// each signal it receives to all current subscribers, synchronously, in
// subscription order, on the calling goroutine.
//
// Concurrent calls to OnNext, OnError, and OnCompleted never interleave.
// A call made re-entrantly (i.e. by a subscriber, during delivery) is queued
// until the in-flight delivery completes.
//
// Once terminated, late subscribers receive only the terminal signal.
type Subject[T any] struct {
	hub hub[T]
}

var (
	_ Observer[any]   = (*Subject[any])(nil)
	_ Observable[any] = (*Subject[any])(nil)
)

// NewSubject returns a new [Subject].
func NewSubject[T any]() *Subject[T] {
	return new(Subject[T])
}

// OnNext delivers value to all current subscribers.
func (x *Subject[T]) OnNext(value T) {
	x.hub.gate.run(func() { x.hub.next(value) })
}

// OnError terminates the subject, delivering err to all current
// subscribers.
func (x *Subject[T]) OnError(err error) {
	if err == nil {
		panic(`reactive: error must not be nil`)
	}
	x.hub.gate.run(func() { x.hub.fail(err) })
}

// OnCompleted terminates the subject, notifying all current subscribers.
func (x *Subject[T]) OnCompleted() {
	x.hub.gate.run(x.hub.complete)
}

// Subscribe registers observer. The returned [Disposable] removes it.
func (x *Subject[T]) Subscribe(observer Observer[T]) Disposable {
	if observer == nil {
		panic(`reactive: observer must not be nil`)
	}
	entry, terminal := x.hub.add(observer)
	if entry == nil {
		replayTerminal(observer, terminal)
		return Empty()
	}
	return x.hub.subscription(entry)
}

// HasObservers reports whether the subject has any subscribers.
func (x *Subject[T]) HasObservers() bool {
	return x.hub.count() != 0
}

// ObserverCount returns the number of current subscribers.
func (x *Subject[T]) ObserverCount() int {
	return x.hub.count()
}

// AsObservable hides the [Observer] side of the subject.
func (x *Subject[T]) AsObservable() Observable[T] {
	return ObservableFunc[T](x.Subscribe)
}
