// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package reactive

import (
	"sync"
)

// ObserveOn re-delivers every signal from source via scheduler, preserving
// order. Signals are queued, and drained by a single scheduled work item at
// a time, such that delivery is never concurrent.
func ObserveOn[T any](source Observable[T], scheduler Scheduler) Observable[T] {
	if scheduler == nil {
		panic(`reactive: scheduler must not be nil`)
	}
	return Create(func(observer Observer[T]) Disposable {
		q := &observeOnQueue{
			scheduler: scheduler,
			stopped:   func() bool { return isStopped(observer) },
		}
		upstream := source.Subscribe(chain[T](observer,
			func(value T) { q.enqueue(func() { observer.OnNext(value) }) },
			func(err error) { q.enqueue(func() { observer.OnError(err) }) },
			func() { q.enqueue(observer.OnCompleted) },
		))
		return NewCompositeDisposable(upstream, q)
	})
}

// observeOnQueue holds the signals pending delivery, by ObserveOn.
type observeOnQueue struct {
	scheduler Scheduler
	stopped   func() bool
	pending   Disposable
	items     []func()
	mu        sync.Mutex
	running   bool
	disposed  bool
}

func (x *observeOnQueue) enqueue(signal func()) {
	x.mu.Lock()
	if x.disposed {
		x.mu.Unlock()
		return
	}
	x.items = append(x.items, signal)
	if x.running {
		x.mu.Unlock()
		return
	}
	x.running = true
	x.mu.Unlock()

	d := ScheduleNow(x.scheduler, x.drain)

	x.mu.Lock()
	if x.disposed {
		x.mu.Unlock()
		d.Dispose()
		return
	}
	if x.running {
		x.pending = d
	}
	x.mu.Unlock()
}

func (x *observeOnQueue) drain(Scheduler) {
	for {
		x.mu.Lock()
		if x.disposed || len(x.items) == 0 {
			x.running = false
			x.pending = nil
			x.mu.Unlock()
			return
		}
		signal := x.items[0]
		x.items[0] = nil
		x.items = x.items[1:]
		x.mu.Unlock()

		if x.stopped() {
			continue
		}
		signal()
	}
}

func (x *observeOnQueue) Dispose() {
	x.mu.Lock()
	x.disposed = true
	x.items = nil
	pending := x.pending
	x.pending = nil
	x.mu.Unlock()
	if pending != nil {
		pending.Dispose()
	}
}

// SubscribeOn performs the subscription to source (and its disposal, if the
// subscription has already been made) via scheduler.
func SubscribeOn[T any](source Observable[T], scheduler Scheduler) Observable[T] {
	if scheduler == nil {
		panic(`reactive: scheduler must not be nil`)
	}
	return Create(func(observer Observer[T]) Disposable {
		subscription := NewSerialDisposable()
		scheduled := ScheduleNow(scheduler, func(Scheduler) {
			subscription.Set(source.Subscribe(observer))
		})
		return NewDisposable(func() {
			scheduled.Dispose()
			if subscription.Get() == nil {
				subscription.Dispose()
				return
			}
			ScheduleNow(scheduler, func(Scheduler) {
				subscription.Dispose()
			})
		})
	})
}
