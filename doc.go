// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

// Package reactive implements push-based, composable asynchronous streams,
// with explicit lifetime management, and explicit control over which
// goroutine delivers each signal.
//
// # Architecture
//
// The runtime is layered, leaves first:
//
//   - [Disposable]: idempotent teardown, plus [CompositeDisposable] and
//     [SerialDisposable] aggregates
//   - [Observer]: the OnNext / OnError / OnCompleted contract
//   - [Observable]: lazy, cold by default, created via [Create]
//   - [Subject] and [BehaviorSubject]: hot, multicast hubs
//   - [Scheduler]: [ImmediateScheduler], [CurrentThreadScheduler] (a
//     per-goroutine trampoline), [EventLoopScheduler] (a dedicated,
//     OS-thread-locked goroutine), and [DispatcherScheduler] (marshals work
//     onto a host dispatcher, e.g. a go-eventloop Loop)
//   - Operators: [Map], [Filter], [Merge], [CombineLatest], [Publish] with
//     [RefCount], [TakeUntil], [FlatMap], [ObserveOn], [DistinctUntilChanged],
//     [Take], [Skip], and friends
//   - [FromEventPattern]: adapts (add handler, remove handler) pairs, with
//     optional weak targets
//
// Operators are package-level functions, as Go methods may not declare type
// parameters.
//
// # Delivery Guarantees
//
// Signals to any single observer are totally ordered, and never concurrent.
// Emissions from other goroutines block until the in-flight delivery
// completes. Emissions made re-entrantly, from within a delivery, on the
// delivering goroutine, are queued and delivered after it, in order.
// At most one terminal signal (OnError or OnCompleted) is delivered, and it
// is always last.
//
// Disposing a subscription from another goroutine waits for any in-flight
// delivery to that subscription, after which no further signal is
// delivered. Disposing from within a delivery never waits.
//
// # Usage
//
//	loop, err := eventloop.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	go loop.Run(ctx)
//
//	ui, err := reactive.NewDispatcherScheduler(reactive.LoopDispatcher{Loop: loop})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ui.Close()
//
//	readings := reactive.ObserveOn(
//	    reactive.Map(sensorReadings, formatReading),
//	    ui,
//	)
//	subscription := reactive.Subscribe(readings, render, nil, nil)
//	defer subscription.Dispose()
//
// # Logging
//
// Recovered panics, unhandled errors, and scheduler lifecycle events are
// logged via [logiface], see [SetLogger], and [WithLogger].
//
// [logiface]: https://github.com/joeycumines/logiface
package reactive
