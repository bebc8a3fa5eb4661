// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package reactive

import (
	"sync"
	"time"

	eventloop "github.com/joeycumines/go-eventloop"
	"github.com/joeycumines/logiface"
)

type (
	// Dispatcher runs callbacks on a host-owned goroutine, e.g. a UI
	// thread. See [LoopDispatcher], for github.com/joeycumines/go-eventloop.
	//
	// Submit must return an error once the dispatcher is no longer able to
	// run callbacks (e.g. it has been shut down).
	Dispatcher interface {
		Submit(task func()) error
	}

	// PriorityDispatcher is a [Dispatcher] with a second, higher priority
	// queue, used by [PriorityHigh].
	PriorityDispatcher interface {
		Dispatcher
		SubmitInternal(task func()) error
	}
)

// DispatcherFunc adapts a function to [Dispatcher].
type DispatcherFunc func(task func()) error

// Submit calls f(task).
func (f DispatcherFunc) Submit(task func()) error { return f(task) }

// LoopDispatcher adapts an [eventloop.Loop] to [PriorityDispatcher]. The
// loop's internal queue serves [PriorityHigh].
type LoopDispatcher struct {
	Loop *eventloop.Loop
}

var _ PriorityDispatcher = LoopDispatcher{}

func (x LoopDispatcher) Submit(task func()) error {
	return x.Loop.Submit(task)
}

func (x LoopDispatcher) SubmitInternal(task func()) error {
	return x.Loop.SubmitInternal(task)
}

// DispatcherScheduler marshals work onto a [Dispatcher], such that all work
// runs on the dispatcher's goroutine.
//
// The delay until each due time is waited out according to the following
// policy:
//
//   - If the calling goroutine is draining the configured trampoline (see
//     [WithTrampoline]), the submission is queued on that trampoline
//   - If the work is already due, or due within the immediate threshold
//     (see [WithImmediateThreshold]), the remaining delay is waited out on
//     the calling goroutine, then the work is submitted
//   - Otherwise, the delay is waited out on the delay scheduler (see
//     [WithDelayScheduler]), then the work is submitted
//
// If the dispatcher rejects a submission, the work is dropped, as the target
// is assumed to no longer exist.
type DispatcherScheduler struct {
	dispatcher Dispatcher
	submit     func(task func()) error
	logger     *logiface.Logger[logiface.Event]
	trampoline *CurrentThreadScheduler
	// delay is the configured, or lazily created delay scheduler
	delay Scheduler
	// owned is set if delay was created by this scheduler
	owned     *EventLoopScheduler
	name      string
	threshold time.Duration
	mu        sync.Mutex
	closed    bool
}

var _ Scheduler = (*DispatcherScheduler)(nil)

// NewDispatcherScheduler returns a new [DispatcherScheduler], marshalling
// work onto dispatcher. All options apply.
func NewDispatcherScheduler(dispatcher Dispatcher, opts ...Option) (*DispatcherScheduler, error) {
	if dispatcher == nil {
		return nil, ErrNilDispatcher
	}

	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}

	x := &DispatcherScheduler{
		dispatcher: dispatcher,
		submit:     dispatcher.Submit,
		logger:     cfg.logger,
		trampoline: cfg.trampoline,
		delay:      cfg.delay,
		name:       cfg.name,
		threshold:  cfg.threshold,
	}

	if cfg.priority == PriorityHigh {
		priorityDispatcher, ok := dispatcher.(PriorityDispatcher)
		if !ok {
			return nil, ErrPriorityUnsupported
		}
		x.submit = priorityDispatcher.SubmitInternal
	}

	if x.trampoline == nil {
		x.trampoline = CurrentThread
	}

	return x, nil
}

// Now returns the current time.
func (x *DispatcherScheduler) Now() time.Time { return time.Now() }

// Dispatcher returns the underlying dispatcher.
func (x *DispatcherScheduler) Dispatcher() Dispatcher { return x.dispatcher }

// Schedule submits work to the dispatcher, once due. See
// [DispatcherScheduler] for details.
func (x *DispatcherScheduler) Schedule(due time.Time, work Work) Disposable {
	if work == nil {
		return Empty()
	}

	item := NewDisposable(nil)
	marshal := func(Scheduler) {
		if item.IsDisposed() {
			return
		}
		err := x.submit(func() {
			if item.IsDisposed() {
				return
			}
			runSafely(x.logger, categoryDispatcher, func() { work(x) })
		})
		if err != nil {
			x.log().Debug().
				Str(`category`, categoryDispatcher).
				Str(`scheduler`, x.name).
				Err(err).
				Log(`reactive: dispatcher rejected work`)
		}
	}

	if !x.trampoline.IsScheduleRequired() {
		return NewCompositeDisposable(item, x.trampoline.Schedule(due, marshal))
	}

	if x.isImmediate(due) {
		waitUntil(due)
		marshal(x)
		return item
	}

	delay := x.delayScheduler()
	if delay == nil {
		x.log().Debug().
			Str(`category`, categoryDispatcher).
			Str(`scheduler`, x.name).
			Log(`reactive: dropped work scheduled on closed dispatcher scheduler`)
		return Empty()
	}

	return NewCompositeDisposable(item, delay.Schedule(due, marshal))
}

// Close releases the delay scheduler, if it was created by this scheduler.
// Pending delayed work is dropped. Work may still be scheduled, within the
// immediate threshold.
func (x *DispatcherScheduler) Close() error {
	x.mu.Lock()
	if x.closed {
		x.mu.Unlock()
		return ErrSchedulerTerminated
	}
	x.closed = true
	owned := x.owned
	if owned != nil {
		x.owned = nil
		x.delay = nil
	}
	x.mu.Unlock()
	if owned != nil {
		return owned.Close()
	}
	return nil
}

func (x *DispatcherScheduler) isImmediate(due time.Time) bool {
	if due.IsZero() {
		return true
	}
	remaining := due.Sub(x.Now())
	return remaining <= 0 || remaining < x.threshold
}

func (x *DispatcherScheduler) delayScheduler() Scheduler {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.delay != nil && x.owned == nil {
		// configured via WithDelayScheduler
		return x.delay
	}
	if x.closed {
		return nil
	}
	if x.owned == nil {
		// cannot fail, it has no options that validate
		x.owned, _ = NewEventLoopScheduler(WithLogger(x.logger), WithName(x.name+`-delay`))
		x.delay = x.owned
	}
	return x.owned
}

func (x *DispatcherScheduler) log() *logiface.Logger[logiface.Event] {
	return loggerOrDefault(x.logger)
}
