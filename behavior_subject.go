// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package reactive

// BehaviorSubject is a [Subject] that holds the latest value, starting with
// a seed value. Each new subscriber receives the current value,
// synchronously, before any subsequent value.
//
// Once terminated, late subscribers receive only the terminal signal.
type BehaviorSubject[T any] struct {
	value T
	hub   hub[T]
}

var (
	_ Observer[any]   = (*BehaviorSubject[any])(nil)
	_ Observable[any] = (*BehaviorSubject[any])(nil)
)

// NewBehaviorSubject returns a new [BehaviorSubject], holding seed.
func NewBehaviorSubject[T any](seed T) *BehaviorSubject[T] {
	return &BehaviorSubject[T]{value: seed}
}

// Value returns the latest value. After termination, it returns the last
// value received prior to termination.
func (x *BehaviorSubject[T]) Value() T {
	x.hub.mu.Lock()
	defer x.hub.mu.Unlock()
	return x.value
}

// OnNext stores value, and delivers it to all current subscribers.
func (x *BehaviorSubject[T]) OnNext(value T) {
	x.hub.gate.run(func() {
		x.hub.mu.Lock()
		if x.hub.terminal.done {
			x.hub.mu.Unlock()
			return
		}
		x.value = value
		x.hub.mu.Unlock()
		x.hub.next(value)
	})
}

// OnError terminates the subject, delivering err to all current
// subscribers.
func (x *BehaviorSubject[T]) OnError(err error) {
	if err == nil {
		panic(`reactive: error must not be nil`)
	}
	x.hub.gate.run(func() { x.hub.fail(err) })
}

// OnCompleted terminates the subject, notifying all current subscribers.
func (x *BehaviorSubject[T]) OnCompleted() {
	x.hub.gate.run(x.hub.complete)
}

// Subscribe registers observer, delivering the current value before
// returning. The returned [Disposable] removes it.
func (x *BehaviorSubject[T]) Subscribe(observer Observer[T]) Disposable {
	if observer == nil {
		panic(`reactive: observer must not be nil`)
	}
	var result Disposable = Empty()
	x.hub.gate.with(func() {
		entry, terminal := x.hub.add(observer)
		if entry == nil {
			replayTerminal(observer, terminal)
			return
		}
		result = x.hub.subscription(entry)
		x.hub.mu.Lock()
		value := x.value
		x.hub.mu.Unlock()
		if entry.active.Load() {
			observer.OnNext(value)
		}
	})
	return result
}

// HasObservers reports whether the subject has any subscribers.
func (x *BehaviorSubject[T]) HasObservers() bool {
	return x.hub.count() != 0
}

// ObserverCount returns the number of current subscribers.
func (x *BehaviorSubject[T]) ObserverCount() int {
	return x.hub.count()
}

// AsObservable hides the [Observer] side of the subject.
func (x *BehaviorSubject[T]) AsObservable() Observable[T] {
	return ObservableFunc[T](x.Subscribe)
}
