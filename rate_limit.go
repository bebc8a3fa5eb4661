// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package reactive

import (
	"time"

	"github.com/joeycumines/go-catrate"
)

// RateLimit forwards values only while the limiter allows another event for
// the value's category (as returned by category), dropping the rest.
//
// The limiter may be shared, e.g. between multiple subscriptions, or
// multiple sequences, in which case the limits apply across all of them. A
// nil category function places every value in the same category.
func RateLimit[T any](source Observable[T], limiter *catrate.Limiter, category func(value T) any) Observable[T] {
	if limiter == nil {
		panic(`reactive: limiter must not be nil`)
	}
	if category == nil {
		category = func(T) any { return rateLimitCategory{} }
	}
	return Filter(source, func(value T) bool {
		_, ok := limiter.Allow(category(value))
		return ok
	})
}

// RateLimitPerWindow is shorthand for [RateLimit], with a new limiter for
// the given rates, e.g. map[time.Duration]int{time.Second: 5}. It panics if
// the rates are invalid, see [catrate.NewLimiter].
func RateLimitPerWindow[T any](source Observable[T], rates map[time.Duration]int, category func(value T) any) Observable[T] {
	return RateLimit(source, catrate.NewLimiter(rates), category)
}

type rateLimitCategory struct{}
