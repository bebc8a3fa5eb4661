// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package reactive

import (
	"sync"

	"github.com/joeycumines/logiface"
)

// Log categories, used as the value of the "category" field.
const (
	categoryScheduler  = `scheduler`
	categoryDisposable = `disposable`
	categoryObserver   = `observer`
	categoryDispatcher = `dispatcher`
)

var (
	// package-level logger, used by anything that hasn't been configured
	// with its own logger
	globalLogger struct {
		sync.RWMutex
		logger *logiface.Logger[logiface.Event]
	}
)

// SetLogger sets the package-level logger. A nil logger disables logging,
// and is the default.
//
// Schedulers may be configured with their own logger, see [WithLogger].
func SetLogger(logger *logiface.Logger[logiface.Event]) {
	globalLogger.Lock()
	defer globalLogger.Unlock()
	globalLogger.logger = logger
}

// getLogger returns the package-level logger, which may be nil. All the
// logiface builder methods are nil-safe.
func getLogger() *logiface.Logger[logiface.Event] {
	globalLogger.RLock()
	defer globalLogger.RUnlock()
	return globalLogger.logger
}

// runSafely calls fn, recovering and logging any panic.
func runSafely(logger *logiface.Logger[logiface.Event], category string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			loggerOrDefault(logger).Err().
				Str(`category`, category).
				Any(`panic`, r).
				Log(`reactive: recovered panic`)
		}
	}()
	fn()
}
