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

type (
	// Disposable releases a resource, e.g. stops delivery to a subscription.
	// Dispose must be safe to call multiple times, and concurrently, and it
	// must not panic.
	//
	// Implementations used with [CompositeDisposable.Remove] or
	// [CompositeDisposable.Delete] must be comparable.
	Disposable interface {
		Dispose()
	}

	// ActionDisposable runs a teardown action at most once.
	ActionDisposable struct {
		action   func()
		disposed atomic.Bool
	}

	// CompositeDisposable aggregates any number of disposables, which are
	// disposed together. Disposables added after disposal are disposed
	// immediately.
	CompositeDisposable struct {
		items    []Disposable
		mu       sync.Mutex
		disposed bool
	}

	// SerialDisposable holds a single, replaceable disposable. Replacing the
	// value disposes the previous value. Values set after disposal are
	// disposed immediately.
	SerialDisposable struct {
		current  Disposable
		mu       sync.Mutex
		disposed bool
	}

	emptyDisposable struct{}
)

var (
	// compile time assertions

	_ Disposable = emptyDisposable{}
	_ Disposable = (*ActionDisposable)(nil)
	_ Disposable = (*CompositeDisposable)(nil)
	_ Disposable = (*SerialDisposable)(nil)
)

// Empty returns a disposable that does nothing.
func Empty() Disposable { return emptyDisposable{} }

func (emptyDisposable) Dispose() {}

// NewDisposable returns a disposable that calls action on the first call to
// Dispose. A nil action is permitted. Panics raised by action are recovered,
// and logged.
func NewDisposable(action func()) *ActionDisposable {
	return &ActionDisposable{action: action}
}

// Dispose runs the teardown action, if this is the first call.
func (x *ActionDisposable) Dispose() {
	if x == nil || !x.disposed.CompareAndSwap(false, true) {
		return
	}
	action := x.action
	x.action = nil
	if action != nil {
		runSafely(nil, categoryDisposable, action)
	}
}

// IsDisposed reports whether Dispose has been called.
func (x *ActionDisposable) IsDisposed() bool {
	return x != nil && x.disposed.Load()
}

// NewCompositeDisposable returns a composite disposable, initialised with
// the given items (nil values are ignored).
func NewCompositeDisposable(items ...Disposable) *CompositeDisposable {
	x := &CompositeDisposable{items: make([]Disposable, 0, len(items))}
	for _, item := range items {
		if item != nil {
			x.items = append(x.items, item)
		}
	}
	return x
}

// Add adds a disposable to the composite, or disposes it immediately, if
// the composite has already been disposed.
func (x *CompositeDisposable) Add(item Disposable) {
	if item == nil {
		return
	}
	x.mu.Lock()
	if x.disposed {
		x.mu.Unlock()
		disposeSafely(item)
		return
	}
	x.items = append(x.items, item)
	x.mu.Unlock()
}

// Remove removes the first occurrence of item, disposing it, and reports
// whether it was found.
func (x *CompositeDisposable) Remove(item Disposable) bool {
	if !x.Delete(item) {
		return false
	}
	disposeSafely(item)
	return true
}

// Delete removes the first occurrence of item, without disposing it, and
// reports whether it was found.
func (x *CompositeDisposable) Delete(item Disposable) bool {
	if item == nil {
		return false
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	if i := slices.Index(x.items, item); i >= 0 {
		x.items = slices.Delete(x.items, i, i+1)
		return true
	}
	return false
}

// Len returns the number of disposables currently held.
func (x *CompositeDisposable) Len() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return len(x.items)
}

// Dispose disposes all held disposables, in the order they were added.
func (x *CompositeDisposable) Dispose() {
	x.mu.Lock()
	if x.disposed {
		x.mu.Unlock()
		return
	}
	x.disposed = true
	items := x.items
	x.items = nil
	x.mu.Unlock()
	for _, item := range items {
		disposeSafely(item)
	}
}

// IsDisposed reports whether Dispose has been called.
func (x *CompositeDisposable) IsDisposed() bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.disposed
}

// NewSerialDisposable returns an empty serial disposable.
func NewSerialDisposable() *SerialDisposable {
	return new(SerialDisposable)
}

// Set replaces the current value, disposing the previous value. If the
// serial disposable has been disposed, value is disposed immediately.
func (x *SerialDisposable) Set(value Disposable) {
	x.mu.Lock()
	if x.disposed {
		x.mu.Unlock()
		if value != nil {
			disposeSafely(value)
		}
		return
	}
	previous := x.current
	x.current = value
	x.mu.Unlock()
	if previous != nil {
		disposeSafely(previous)
	}
}

// Get returns the current value, which may be nil.
func (x *SerialDisposable) Get() Disposable {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.current
}

// Dispose disposes the current value, and any set thereafter.
func (x *SerialDisposable) Dispose() {
	x.mu.Lock()
	if x.disposed {
		x.mu.Unlock()
		return
	}
	x.disposed = true
	current := x.current
	x.current = nil
	x.mu.Unlock()
	if current != nil {
		disposeSafely(current)
	}
}

// IsDisposed reports whether Dispose has been called.
func (x *SerialDisposable) IsDisposed() bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.disposed
}

func disposeSafely(d Disposable) {
	runSafely(nil, categoryDisposable, d.Dispose)
}
