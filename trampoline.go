// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package reactive

import (
	"container/heap"
	"sync"
	"time"

	"github.com/joeycumines/logiface"
)

// CurrentThreadScheduler is a trampoline: work scheduled on a goroutine
// with no active trampoline runs inline, on the calling goroutine, and any
// work scheduled (by that goroutine) while it runs is queued, then drained
// iteratively, in due time order, before the outermost Schedule returns.
//
// Each goroutine has its own queue. Recursive scheduling therefore never
// grows the stack.
type CurrentThreadScheduler struct {
	logger *logiface.Logger[logiface.Event]
	// queues maps goroutine ID to an active trampoline
	queues map[uint64]*trampolineQueue
	mu     sync.Mutex
}

// trampolineQueue is only accessed by the goroutine that owns it.
type trampolineQueue struct {
	items workHeap
	seq   uint64
}

var _ Scheduler = (*CurrentThreadScheduler)(nil)

// CurrentThread is the default [CurrentThreadScheduler].
var CurrentThread = &CurrentThreadScheduler{}

// NewCurrentThreadScheduler returns a new [CurrentThreadScheduler]. Only
// [WithLogger] applies.
func NewCurrentThreadScheduler(opts ...Option) (*CurrentThreadScheduler, error) {
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	return &CurrentThreadScheduler{logger: cfg.logger}, nil
}

// Now returns the current time.
func (x *CurrentThreadScheduler) Now() time.Time { return time.Now() }

// IsScheduleRequired reports whether the calling goroutine has no active
// trampoline, i.e. whether a call to Schedule would run work inline.
func (x *CurrentThreadScheduler) IsScheduleRequired() bool {
	return x.queue(getGoroutineID()) == nil
}

// Schedule queues work on the calling goroutine's trampoline. If there is no
// active trampoline, one is started, and drained before Schedule returns.
func (x *CurrentThreadScheduler) Schedule(due time.Time, work Work) Disposable {
	if work == nil {
		return Empty()
	}

	item := &scheduledItem{due: due, work: work}
	gid := getGoroutineID()

	if q := x.queue(gid); q != nil {
		q.push(item)
		return item
	}

	q := new(trampolineQueue)
	x.mu.Lock()
	if x.queues == nil {
		x.queues = make(map[uint64]*trampolineQueue)
	}
	x.queues[gid] = q
	x.mu.Unlock()

	defer func() {
		x.mu.Lock()
		delete(x.queues, gid)
		x.mu.Unlock()
	}()

	q.push(item)
	x.drain(q)

	return item
}

func (x *CurrentThreadScheduler) queue(gid uint64) *trampolineQueue {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.queues[gid]
}

func (x *CurrentThreadScheduler) drain(q *trampolineQueue) {
	for q.items.Len() != 0 {
		item := heap.Pop(&q.items).(*scheduledItem)
		if item.cancelled.Load() {
			continue
		}
		waitUntil(item.due)
		item.run(x.logger, x)
	}
}

func (x *trampolineQueue) push(item *scheduledItem) {
	item.seq = x.seq
	x.seq++
	heap.Push(&x.items, item)
}
