// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package reactive

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/joeycumines/logiface"
)

type (
	// Work is a unit of scheduled work. The scheduler executing the work is
	// provided, for the purposes of scheduling further work.
	Work func(scheduler Scheduler)

	// Scheduler executes work at (or after) a due time, according to its
	// own clock, and its own concurrency model.
	//
	// Schedule returns a [Disposable] that cancels the work, if it has not
	// yet started. A zero due time means "now". Schedule never blocks on
	// the completion of other work, except for schedulers documented as
	// executing work synchronously, on the calling goroutine.
	Scheduler interface {
		Now() time.Time
		Schedule(due time.Time, work Work) Disposable
	}
)

// ScheduleNow schedules work to run as soon as possible.
func ScheduleNow(scheduler Scheduler, work Work) Disposable {
	return scheduler.Schedule(time.Time{}, work)
}

// ScheduleAfter schedules work to run after delay, relative to the
// scheduler's clock.
func ScheduleAfter(scheduler Scheduler, delay time.Duration, work Work) Disposable {
	if delay <= 0 {
		return scheduler.Schedule(time.Time{}, work)
	}
	return scheduler.Schedule(scheduler.Now().Add(delay), work)
}

// ScheduleRecursive schedules action to run after delay. Each run may call
// reschedule (at most once) to run action again, after a further delay.
// Disposing the result cancels any pending run, and prevents further
// rescheduling.
//
// On trampolined schedulers, recursion doesn't grow the stack.
func ScheduleRecursive(scheduler Scheduler, delay time.Duration, action func(reschedule func(delay time.Duration))) Disposable {
	group := NewCompositeDisposable()
	var work Work
	work = func(scheduler Scheduler) {
		action(func(delay time.Duration) {
			if !group.IsDisposed() {
				scheduleTracked(group, scheduler, delay, work)
			}
		})
	}
	scheduleTracked(group, scheduler, delay, work)
	return group
}

// scheduleTracked schedules work, holding the result in group until the
// work starts, which may happen before Schedule returns.
func scheduleTracked(group *CompositeDisposable, scheduler Scheduler, delay time.Duration, work Work) {
	var (
		mu    sync.Mutex
		item  Disposable
		added bool
		done  bool
	)
	item = ScheduleAfter(scheduler, delay, func(scheduler Scheduler) {
		mu.Lock()
		if added {
			group.Delete(item)
		} else {
			done = true
		}
		mu.Unlock()
		work(scheduler)
	})
	mu.Lock()
	if !done {
		group.Add(item)
		added = true
	}
	mu.Unlock()
}

// scheduledItem is a unit of work queued by a scheduler. It is also the
// [Disposable] returned to the caller, which cancels it.
type scheduledItem struct {
	due  time.Time
	work Work
	// remove is optional, and releases the item from its queue on dispose
	remove    func(item *scheduledItem)
	seq       uint64
	index     int
	cancelled atomic.Bool
}

func (x *scheduledItem) Dispose() {
	if x.cancelled.CompareAndSwap(false, true) && x.remove != nil {
		x.remove(x)
	}
}

func (x *scheduledItem) run(logger *logiface.Logger[logiface.Event], scheduler Scheduler) {
	if x.cancelled.Swap(true) {
		return
	}
	runSafely(logger, categoryScheduler, func() { x.work(scheduler) })
}

// workHeap is a min-heap of scheduled items, ordered by due time, then
// submission order.
type workHeap []*scheduledItem

// Implement heap.Interface for workHeap
func (h workHeap) Len() int { return len(h) }
func (h workHeap) Less(i, j int) bool {
	if h[i].due.Equal(h[j].due) {
		return h[i].seq < h[j].seq
	}
	return h[i].due.Before(h[j].due)
}
func (h workHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *workHeap) Push(x any) {
	item := x.(*scheduledItem)
	item.index = len(*h)
	*h = append(*h, item)
}

func (h *workHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*h = old[:n-1]
	return item
}

// waitUntil blocks until due, per the wall clock, returning immediately for
// the zero value.
func waitUntil(due time.Time) {
	if due.IsZero() {
		return
	}
	if d := time.Until(due); d > 0 {
		time.Sleep(d)
	}
}

// ImmediateScheduler executes work synchronously, on the calling goroutine,
// after waiting out any delay.
type ImmediateScheduler struct {
	logger *logiface.Logger[logiface.Event]
}

var _ Scheduler = (*ImmediateScheduler)(nil)

// Immediate is the default [ImmediateScheduler].
var Immediate = &ImmediateScheduler{}

// NewImmediateScheduler returns a new [ImmediateScheduler]. Only
// [WithLogger] applies.
func NewImmediateScheduler(opts ...Option) (*ImmediateScheduler, error) {
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	return &ImmediateScheduler{logger: cfg.logger}, nil
}

// Now returns the current time.
func (x *ImmediateScheduler) Now() time.Time { return time.Now() }

// Schedule blocks until due, then runs work, returning an already-disposed
// [Disposable]. Panics raised by work are recovered and logged.
func (x *ImmediateScheduler) Schedule(due time.Time, work Work) Disposable {
	if work == nil {
		return Empty()
	}
	waitUntil(due)
	runSafely(x.logger, categoryScheduler, func() { work(x) })
	return Empty()
}
