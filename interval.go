// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package reactive

import (
	"time"
)

// Interval emits 0, 1, 2, ... every period, via scheduler, until disposed.
// Each tick is scheduled relative to the start time, so the period doesn't
// drift with the time taken to deliver each value.
//
// With a [DispatcherScheduler], values are delivered on the dispatcher.
func Interval(period time.Duration, scheduler Scheduler) Observable[int64] {
	if scheduler == nil {
		panic(`reactive: scheduler must not be nil`)
	}
	if period <= 0 {
		panic(`reactive: interval period must be positive`)
	}
	return Create(func(observer Observer[int64]) Disposable {
		start := scheduler.Now()
		var tick int64
		return ScheduleRecursive(scheduler, period, func(reschedule func(time.Duration)) {
			if isStopped(observer) {
				return
			}
			observer.OnNext(tick)
			tick++
			next := start.Add(time.Duration(tick+1) * period)
			reschedule(next.Sub(scheduler.Now()))
		})
	})
}

// Timer emits 0 after delay, via scheduler, then completes.
func Timer(delay time.Duration, scheduler Scheduler) Observable[int64] {
	if scheduler == nil {
		panic(`reactive: scheduler must not be nil`)
	}
	return Create(func(observer Observer[int64]) Disposable {
		return ScheduleAfter(scheduler, delay, func(Scheduler) {
			observer.OnNext(0)
			observer.OnCompleted()
		})
	})
}
