// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package reactive

import (
	"sync/atomic"
	"weak"
)

// EventPattern is the value emitted by [FromEventPattern], for each
// invocation of the registered handler.
type EventPattern[S, A any] struct {
	sender S
	args   A
}

// EventHandler is the callback registered with an event source.
type EventHandler[S, A any] func(sender S, args A)

// NewEventPattern returns a new [EventPattern].
func NewEventPattern[S, A any](sender S, args A) EventPattern[S, A] {
	return EventPattern[S, A]{sender: sender, args: args}
}

// Sender returns the object that raised the event.
func (x EventPattern[S, A]) Sender() S { return x.sender }

// EventArgs returns the event arguments.
func (x EventPattern[S, A]) EventArgs() A { return x.args }

// FromEventPattern adapts a host event source, which supports registering
// and unregistering a handler, into an [Observable].
//
// On each subscription, resolve is called to obtain the target. If the
// target cannot be resolved (e.g. it was garbage collected), the sequence
// completes immediately, and nothing is registered. Otherwise, add is called
// exactly once, to register a handler, which emits an [EventPattern] for
// each invocation. Invocations made after the target can no longer be
// resolved are dropped. Concurrent invocations are serialized.
//
// Disposing the subscription calls remove exactly once, with the token
// returned by add, unless the target can no longer be resolved. The target
// is not retained by the subscription, beyond the calls to resolve.
func FromEventPattern[Target, S, A, Token any](
	resolve func() (Target, bool),
	add func(target Target, handler EventHandler[S, A]) Token,
	remove func(target Target, token Token),
) Observable[EventPattern[S, A]] {
	if resolve == nil || add == nil || remove == nil {
		panic(`reactive: resolve, add, and remove must not be nil`)
	}
	return Create(func(observer Observer[EventPattern[S, A]]) Disposable {
		var closed atomic.Bool

		var handler EventHandler[S, A] = func(sender S, args A) {
			if closed.Load() {
				return
			}
			if _, ok := resolve(); !ok {
				return
			}
			observer.OnNext(NewEventPattern(sender, args))
		}

		token, ok := register(resolve, add, handler)
		if !ok {
			observer.OnCompleted()
			return nil
		}

		return NewDisposable(func() {
			closed.Store(true)
			if target, ok := resolve(); ok {
				remove(target, token)
			}
		})
	})
}

// register resolves the target, and registers handler, without the target
// escaping into the caller's closure.
func register[Target, S, A, Token any](
	resolve func() (Target, bool),
	add func(target Target, handler EventHandler[S, A]) Token,
	handler EventHandler[S, A],
) (token Token, ok bool) {
	target, ok := resolve()
	if !ok {
		return
	}
	return add(target, handler), true
}

// FromEventPatternWeak is [FromEventPattern], for a target that is only
// weakly referenced, see [WeakTarget].
func FromEventPatternWeak[T, S, A, Token any](
	target *T,
	add func(target *T, handler EventHandler[S, A]) Token,
	remove func(target *T, token Token),
) Observable[EventPattern[S, A]] {
	return FromEventPattern(WeakTarget(target), add, remove)
}

// WeakTarget returns a resolve function, for [FromEventPattern], that holds
// only a weak reference to target.
func WeakTarget[T any](target *T) func() (*T, bool) {
	ref := weak.Make(target)
	return func() (*T, bool) {
		value := ref.Value()
		return value, value != nil
	}
}

// StrongTarget returns a resolve function, for [FromEventPattern], that
// always resolves target.
func StrongTarget[T any](target T) func() (T, bool) {
	return func() (T, bool) {
		return target, true
	}
}
