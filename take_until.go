// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package reactive

import (
	"time"
)

// TakeUntil forwards values from source until notifier emits its first
// value, or completes, at which point the result completes, and both
// subscriptions are disposed. An error from notifier is forwarded.
//
// The notifier is subscribed first, so a notifier that fires synchronously
// prevents the source from being subscribed at all.
func TakeUntil[T, U any](source Observable[T], notifier Observable[U]) Observable[T] {
	return Create(func(observer Observer[T]) Disposable {
		group := NewCompositeDisposable()
		group.Add(notifier.Subscribe(chain[U](observer,
			func(U) { observer.OnCompleted() },
			observer.OnError,
			observer.OnCompleted,
		)))
		if isStopped(observer) {
			return group
		}
		group.Add(source.Subscribe(observer))
		return group
	})
}

// TakeFor forwards values from source until duration has elapsed, per
// scheduler, i.e. it expires the subscription.
func TakeFor[T any](source Observable[T], duration time.Duration, scheduler Scheduler) Observable[T] {
	return TakeUntil(source, Timer(duration, scheduler))
}
