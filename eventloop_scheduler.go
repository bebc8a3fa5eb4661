// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package reactive

import (
	"container/heap"
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/joeycumines/logiface"
)

var loopIDCounter atomic.Uint64

// EventLoopScheduler runs work on a single, dedicated goroutine, which is
// locked to an OS thread. Work runs in due time order, then submission
// order. The goroutine is started on first use.
//
// Scheduling work on a terminated (or terminating) scheduler is a silent
// no-op.
type EventLoopScheduler struct {
	logger *logiface.Logger[logiface.Event]
	// wake is signalled when the earliest due time changes, or on shutdown
	wake chan struct{}
	// done is closed when the loop goroutine exits
	done            chan struct{}
	name            string
	timers          workHeap
	state           fastState
	id              uint64
	seq             uint64
	loopGoroutineID atomic.Uint64
	mu              sync.Mutex
	stopOnce        sync.Once
	// abandon indicates pending work should be dropped, rather than drained
	abandon atomic.Bool
}

var _ Scheduler = (*EventLoopScheduler)(nil)

// NewEventLoopScheduler returns a new [EventLoopScheduler]. [WithLogger] and
// [WithName] apply.
func NewEventLoopScheduler(opts ...Option) (*EventLoopScheduler, error) {
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	return &EventLoopScheduler{
		logger: cfg.logger,
		name:   cfg.name,
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
		id:     loopIDCounter.Add(1),
	}, nil
}

// Now returns the current time.
func (x *EventLoopScheduler) Now() time.Time { return time.Now() }

// State returns the current lifecycle state.
func (x *EventLoopScheduler) State() LoopState { return x.state.Load() }

// InLoop reports whether the caller is running on the loop goroutine.
func (x *EventLoopScheduler) InLoop() bool {
	id := x.loopGoroutineID.Load()
	return id != 0 && id == getGoroutineID()
}

// Len returns the number of pending (queued and not cancelled) work items.
func (x *EventLoopScheduler) Len() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return len(x.timers)
}

// Done returns a channel that is closed once the scheduler has terminated.
func (x *EventLoopScheduler) Done() <-chan struct{} {
	return x.done
}

// Schedule queues work on the loop goroutine, starting it if necessary.
func (x *EventLoopScheduler) Schedule(due time.Time, work Work) Disposable {
	if work == nil {
		return Empty()
	}

	if x.state.TryTransition(StateAwake, StateRunning) {
		go x.run()
	}

	if !x.state.CanAcceptWork() {
		x.log().Debug().
			Str(`category`, categoryScheduler).
			Uint64(`loop_id`, x.id).
			Log(`reactive: dropped work scheduled on terminated event loop`)
		return Empty()
	}

	item := &scheduledItem{due: due, work: work, remove: x.remove}

	x.mu.Lock()
	item.seq = x.seq
	x.seq++
	heap.Push(&x.timers, item)
	earliest := x.timers[0] == item
	x.mu.Unlock()

	if earliest && !x.InLoop() {
		x.wakeup()
	}

	return item
}

// Shutdown gracefully stops the scheduler. Work that is already due (at the
// time it is checked) is run, and work that is due later is dropped.
// Shutdown blocks until the loop goroutine exits, or ctx is done, unless
// called from the loop goroutine itself.
//
// Returns [ErrSchedulerTerminated] if the scheduler has already been stopped.
func (x *EventLoopScheduler) Shutdown(ctx context.Context) error {
	return x.stop(ctx, false)
}

// Close immediately stops the scheduler, dropping all pending work. Work
// that is running is allowed to finish. Close blocks until the loop
// goroutine exits, unless called from the loop goroutine itself.
//
// Returns [ErrSchedulerTerminated] if the scheduler has already been stopped.
func (x *EventLoopScheduler) Close() error {
	return x.stop(context.Background(), true)
}

func (x *EventLoopScheduler) stop(ctx context.Context, abandon bool) error {
	err := ErrSchedulerTerminated
	x.stopOnce.Do(func() {
		err = nil
		if abandon {
			x.abandon.Store(true)
		}
		for {
			current := x.state.Load()
			if x.state.TryTransition(current, StateTerminating) {
				if current == StateAwake {
					x.state.Store(StateTerminated)
					x.dropPending()
					close(x.done)
					return
				}
				break
			}
		}
		x.wakeup()
	})
	if err != nil {
		return err
	}

	if x.InLoop() {
		return nil
	}

	select {
	case <-x.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run is the loop goroutine.
func (x *EventLoopScheduler) run() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	x.loopGoroutineID.Store(getGoroutineID())
	defer x.loopGoroutineID.Store(0)

	defer func() {
		x.state.Store(StateTerminated)
		x.dropPending()
		close(x.done)
		x.log().Debug().
			Str(`category`, categoryScheduler).
			Str(`scheduler`, x.name).
			Uint64(`loop_id`, x.id).
			Log(`reactive: event loop stopped`)
	}()

	x.log().Debug().
		Str(`category`, categoryScheduler).
		Str(`scheduler`, x.name).
		Uint64(`loop_id`, x.id).
		Log(`reactive: event loop started`)

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		terminating := x.state.Load() == StateTerminating
		if terminating && x.abandon.Load() {
			return
		}

		item, wait := x.next(time.Now())
		if item != nil {
			item.run(x.logger, x)
			continue
		}

		if terminating {
			return
		}

		if wait < 0 {
			<-x.wake
			continue
		}

		timer.Reset(wait)
		select {
		case <-x.wake:
		case <-timer.C:
		}
		timer.Stop()
	}
}

// next pops the earliest item, if it is due, otherwise it returns the
// duration until the earliest item is due, or -1 if there are none.
func (x *EventLoopScheduler) next(now time.Time) (*scheduledItem, time.Duration) {
	x.mu.Lock()
	defer x.mu.Unlock()
	for len(x.timers) != 0 {
		item := x.timers[0]
		if item.cancelled.Load() {
			heap.Pop(&x.timers)
			continue
		}
		if item.due.IsZero() || !item.due.After(now) {
			heap.Pop(&x.timers)
			return item, 0
		}
		return nil, item.due.Sub(now)
	}
	return nil, -1
}

// remove releases a disposed item from the queue.
func (x *EventLoopScheduler) remove(item *scheduledItem) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if i := item.index; i >= 0 && i < len(x.timers) && x.timers[i] == item {
		heap.Remove(&x.timers, i)
	}
}

func (x *EventLoopScheduler) dropPending() {
	x.mu.Lock()
	defer x.mu.Unlock()
	for _, item := range x.timers {
		item.index = -1
		item.cancelled.Store(true)
	}
	x.timers = nil
}

func (x *EventLoopScheduler) wakeup() {
	select {
	case x.wake <- struct{}{}:
	default:
	}
}

func (x *EventLoopScheduler) log() *logiface.Logger[logiface.Event] {
	return loggerOrDefault(x.logger)
}
