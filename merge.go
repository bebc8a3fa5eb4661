// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package reactive

import (
	"sync/atomic"
)

// Merge subscribes to all sources, forwarding their values as they arrive.
// The order of each source is preserved, but there is no ordering between
// sources. It completes once all sources have completed. An error from any
// source is forwarded, and disposes all other sources.
func Merge[T any](sources ...Observable[T]) Observable[T] {
	return Create(func(observer Observer[T]) Disposable {
		if len(sources) == 0 {
			observer.OnCompleted()
			return nil
		}
		group := NewCompositeDisposable()
		var active atomic.Int64
		active.Store(int64(len(sources)))
		for _, source := range sources {
			if isStopped(observer) {
				break
			}
			group.Add(source.Subscribe(chain[T](observer,
				observer.OnNext,
				observer.OnError,
				func() {
					if active.Add(-1) == 0 {
						observer.OnCompleted()
					}
				},
			)))
		}
		return group
	})
}

// FlatMap projects each value to an inner [Observable], using fn, and merges
// the values of all inner sequences. It completes once the source, and all
// inner sequences, have completed. Each inner subscription is released as
// soon as it terminates, and disposing the result disposes all of them.
func FlatMap[T, R any](source Observable[T], fn func(value T) Observable[R]) Observable[R] {
	if fn == nil {
		panic(`reactive: flat map function must not be nil`)
	}
	return Create(func(observer Observer[R]) Disposable {
		group := NewCompositeDisposable()
		var active atomic.Int64
		active.Store(1)
		done := func() {
			if active.Add(-1) == 0 {
				observer.OnCompleted()
			}
		}
		group.Add(source.Subscribe(chain[T](observer,
			func(value T) {
				inner, err := catchPanic(func() Observable[R] { return fn(value) })
				if err != nil {
					observer.OnError(err)
					return
				}
				active.Add(1)
				slot := NewSerialDisposable()
				group.Add(slot)
				slot.Set(inner.Subscribe(chain[R](observer,
					observer.OnNext,
					observer.OnError,
					func() {
						group.Remove(slot)
						done()
					},
				)))
			},
			observer.OnError,
			done,
		)))
		return group
	})
}

// SelectMany is an alias for [FlatMap].
func SelectMany[T, R any](source Observable[T], fn func(value T) Observable[R]) Observable[R] {
	return FlatMap(source, fn)
}
