// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package reactive

import (
	"errors"
	"time"

	"github.com/joeycumines/logiface"
)

// DefaultImmediateThreshold is the default for [WithImmediateThreshold].
const DefaultImmediateThreshold = 500 * time.Millisecond

// Priority selects the dispatcher queue used by a [DispatcherScheduler].
type Priority int

const (
	// PriorityNormal submits work via [Dispatcher.Submit].
	PriorityNormal Priority = iota
	// PriorityHigh submits work via [PriorityDispatcher.SubmitInternal].
	PriorityHigh
)

// String returns a human-readable representation of the priority.
func (p Priority) String() string {
	switch p {
	case PriorityNormal:
		return "Normal"
	case PriorityHigh:
		return "High"
	default:
		return "Unknown"
	}
}

// schedulerOptions holds configuration for all scheduler implementations.
// Options that don't apply to a given scheduler are ignored.
type schedulerOptions struct {
	logger     *logiface.Logger[logiface.Event]
	delay      Scheduler
	trampoline *CurrentThreadScheduler
	name       string
	threshold  time.Duration
	priority   Priority
}

// Option configures a scheduler. Options are applied during construction.
type Option interface {
	applyOption(*schedulerOptions) error
}

// schedulerOptionImpl implements [Option] via a closure.
type schedulerOptionImpl struct {
	fn func(*schedulerOptions) error
}

func (o *schedulerOptionImpl) applyOption(opts *schedulerOptions) error {
	return o.fn(opts)
}

// WithLogger configures the logger used by the scheduler, overriding the
// package-level logger (see [SetLogger]).
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return &schedulerOptionImpl{fn: func(opts *schedulerOptions) error {
		opts.logger = logger
		return nil
	}}
}

// WithName sets a name for the scheduler, which is included in log output.
func WithName(name string) Option {
	return &schedulerOptionImpl{fn: func(opts *schedulerOptions) error {
		opts.name = name
		return nil
	}}
}

// WithImmediateThreshold configures the delay under which a
// [DispatcherScheduler] waits out the due time on the calling goroutine,
// rather than via its delay scheduler. Defaults to
// [DefaultImmediateThreshold]. Zero disables the threshold, such that only
// work that is already due is submitted immediately.
func WithImmediateThreshold(threshold time.Duration) Option {
	return &schedulerOptionImpl{fn: func(opts *schedulerOptions) error {
		if threshold < 0 {
			return ErrInvalidThreshold
		}
		opts.threshold = threshold
		return nil
	}}
}

// WithPriority configures the priority a [DispatcherScheduler] submits work
// at. [PriorityHigh] requires a [PriorityDispatcher].
func WithPriority(priority Priority) Option {
	return &schedulerOptionImpl{fn: func(opts *schedulerOptions) error {
		switch priority {
		case PriorityNormal, PriorityHigh:
		default:
			return ErrInvalidPriority
		}
		opts.priority = priority
		return nil
	}}
}

// WithDelayScheduler configures the scheduler a [DispatcherScheduler] uses
// to wait out due times beyond the immediate threshold. If not set, an
// [EventLoopScheduler] is created on first use, and released by
// [DispatcherScheduler.Close].
func WithDelayScheduler(scheduler Scheduler) Option {
	return &schedulerOptionImpl{fn: func(opts *schedulerOptions) error {
		if scheduler == nil {
			return errors.New(`reactive: delay scheduler must not be nil`)
		}
		opts.delay = scheduler
		return nil
	}}
}

// WithTrampoline configures the trampoline a [DispatcherScheduler] defers to,
// when scheduling from within an active drain of that trampoline. Defaults
// to [CurrentThread].
func WithTrampoline(trampoline *CurrentThreadScheduler) Option {
	return &schedulerOptionImpl{fn: func(opts *schedulerOptions) error {
		if trampoline == nil {
			return errors.New(`reactive: trampoline must not be nil`)
		}
		opts.trampoline = trampoline
		return nil
	}}
}

// resolveOptions applies the given options to a default [schedulerOptions].
func resolveOptions(opts []Option) (*schedulerOptions, error) {
	cfg := &schedulerOptions{
		threshold: DefaultImmediateThreshold,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyOption(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// loggerOrDefault falls back to the package-level logger, at call time, so
// that [SetLogger] applies to schedulers constructed before it was called.
func loggerOrDefault(logger *logiface.Logger[logiface.Event]) *logiface.Logger[logiface.Event] {
	if logger != nil {
		return logger
	}
	return getLogger()
}
