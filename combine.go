// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package reactive

import (
	"slices"
)

// CombineLatest emits a snapshot of the latest value of every source, each
// time any source emits, once all sources have emitted at least once.
//
// It completes once all sources have completed, or as soon as any source
// completes without having emitted (as no snapshot can follow). An error
// from any source is forwarded, and disposes all other sources.
func CombineLatest[T any](sources ...Observable[T]) Observable[[]T] {
	return Create(func(observer Observer[[]T]) Disposable {
		n := len(sources)
		if n == 0 {
			observer.OnCompleted()
			return nil
		}

		var (
			gate      serializer
			values    = make([]T, n)
			has       = make([]bool, n)
			hasCount  int
			doneCount int
		)

		group := NewCompositeDisposable()
		for i, source := range sources {
			if isStopped(observer) {
				break
			}
			group.Add(source.Subscribe(chain[T](observer,
				func(value T) {
					gate.run(func() {
						values[i] = value
						if !has[i] {
							has[i] = true
							hasCount++
						}
						if hasCount == n {
							observer.OnNext(slices.Clone(values))
						}
					})
				},
				observer.OnError,
				func() {
					gate.run(func() {
						doneCount++
						if doneCount == n || !has[i] {
							observer.OnCompleted()
						}
					})
				},
			)))
		}
		return group
	})
}

// CombineLatest2 combines the latest values of two sources, of different
// types, using fn. See [CombineLatest].
func CombineLatest2[A, B, R any](a Observable[A], b Observable[B], fn func(a A, b B) R) Observable[R] {
	if fn == nil {
		panic(`reactive: combine function must not be nil`)
	}
	return Create(func(observer Observer[R]) Disposable {
		var (
			gate      serializer
			latestA   A
			latestB   B
			hasA      bool
			hasB      bool
			doneCount int
		)

		emit := func() {
			if !hasA || !hasB {
				return
			}
			result, err := catchPanic(func() R { return fn(latestA, latestB) })
			if err != nil {
				observer.OnError(err)
				return
			}
			observer.OnNext(result)
		}

		complete := func(has *bool) func() {
			return func() {
				gate.run(func() {
					doneCount++
					if doneCount == 2 || !*has {
						observer.OnCompleted()
					}
				})
			}
		}

		group := NewCompositeDisposable()
		group.Add(a.Subscribe(chain[A](observer,
			func(value A) {
				gate.run(func() {
					latestA, hasA = value, true
					emit()
				})
			},
			observer.OnError,
			complete(&hasA),
		)))
		if isStopped(observer) {
			return group
		}
		group.Add(b.Subscribe(chain[B](observer,
			func(value B) {
				gate.run(func() {
					latestB, hasB = value, true
					emit()
				})
			},
			observer.OnError,
			complete(&hasB),
		)))
		return group
	})
}
