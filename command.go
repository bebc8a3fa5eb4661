// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package reactive

import (
	"sync/atomic"
)

// ReactiveCommand models a user-invocable action (e.g. a button), gated by
// an observable condition. Executed values are emitted to the command's
// subscribers.
//
// A command may be executed only while the latest value of its canExecute
// sequence is true, and it is not already executing.
type ReactiveCommand[T any] struct {
	canExecute   *BehaviorSubject[bool]
	isExecuting  *BehaviorSubject[bool]
	executed     *Subject[T]
	subscription Disposable
	executing    atomic.Bool
	disposed     atomic.Bool
}

var _ Observable[any] = (*ReactiveCommand[any])(nil)

// NewReactiveCommand returns a new [ReactiveCommand], gated by canExecute.
// The command is not executable until canExecute emits true. A nil
// canExecute means the command is always executable (while not executing).
//
// An error from canExecute is forwarded to the command's subscribers,
// terminating the command.
func NewReactiveCommand[T any](canExecute Observable[bool]) *ReactiveCommand[T] {
	x := &ReactiveCommand[T]{
		canExecute:  NewBehaviorSubject(canExecute == nil),
		isExecuting: NewBehaviorSubject(false),
		executed:    NewSubject[T](),
	}
	if canExecute != nil {
		x.subscription = canExecute.Subscribe(NewObserver(
			x.canExecute.OnNext,
			func(err error) {
				x.canExecute.OnNext(false)
				x.executed.OnError(err)
			},
			nil,
		))
	}
	return x
}

// CanExecute reports whether Execute would currently execute.
func (x *ReactiveCommand[T]) CanExecute() bool {
	return !x.disposed.Load() && !x.executing.Load() && x.canExecute.Value()
}

// CanExecuteObservable returns the sequence of canExecute values, starting
// with the current value.
func (x *ReactiveCommand[T]) CanExecuteObservable() Observable[bool] {
	return DistinctUntilChanged[bool](x.canExecute)
}

// IsExecuting returns a sequence that is true while Execute is in progress,
// starting with the current value.
func (x *ReactiveCommand[T]) IsExecuting() Observable[bool] {
	return x.isExecuting.AsObservable()
}

// Execute emits value to all subscribers, if the command can execute, and
// reports whether it did. Re-entrant calls (made by a subscriber, during
// execution) are rejected.
func (x *ReactiveCommand[T]) Execute(value T) bool {
	if x.disposed.Load() || !x.canExecute.Value() || !x.executing.CompareAndSwap(false, true) {
		return false
	}
	defer func() {
		x.executing.Store(false)
		x.isExecuting.OnNext(false)
	}()
	x.isExecuting.OnNext(true)
	x.executed.OnNext(value)
	return true
}

// Subscribe registers observer, to receive each executed value.
func (x *ReactiveCommand[T]) Subscribe(observer Observer[T]) Disposable {
	return x.executed.Subscribe(observer)
}

// Dispose releases the canExecute subscription, and completes the command,
// and its IsExecuting sequence.
func (x *ReactiveCommand[T]) Dispose() {
	if !x.disposed.CompareAndSwap(false, true) {
		return
	}
	if x.subscription != nil {
		x.subscription.Dispose()
	}
	x.executed.OnCompleted()
	x.isExecuting.OnCompleted()
	x.canExecute.OnCompleted()
}
