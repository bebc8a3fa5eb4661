// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package reactive

// Map transforms each value using fn. A panic raised by fn terminates the
// sequence with a [*PanicError].
func Map[T, R any](source Observable[T], fn func(value T) R) Observable[R] {
	if fn == nil {
		panic(`reactive: map function must not be nil`)
	}
	return TryMap(source, func(value T) (R, error) {
		return fn(value), nil
	})
}

// TryMap transforms each value using fn. An error returned by fn (or a
// panic) terminates the sequence with that error.
func TryMap[T, R any](source Observable[T], fn func(value T) (R, error)) Observable[R] {
	if fn == nil {
		panic(`reactive: map function must not be nil`)
	}
	return Create(func(observer Observer[R]) Disposable {
		return source.Subscribe(chain[T](observer,
			func(value T) {
				var fnErr error
				result, err := catchPanic(func() (v R) {
					v, fnErr = fn(value)
					return
				})
				if err == nil {
					err = fnErr
				}
				if err != nil {
					observer.OnError(err)
					return
				}
				observer.OnNext(result)
			},
			observer.OnError,
			observer.OnCompleted,
		))
	})
}

// Filter forwards only the values for which predicate returns true.
func Filter[T any](source Observable[T], predicate func(value T) bool) Observable[T] {
	if predicate == nil {
		panic(`reactive: predicate must not be nil`)
	}
	return Create(func(observer Observer[T]) Disposable {
		return source.Subscribe(chain[T](observer,
			func(value T) {
				ok, err := catchPanic(func() bool { return predicate(value) })
				if err != nil {
					observer.OnError(err)
					return
				}
				if ok {
					observer.OnNext(value)
				}
			},
			observer.OnError,
			observer.OnCompleted,
		))
	})
}

// DistinctUntilChanged suppresses values equal to the previous value.
func DistinctUntilChanged[T comparable](source Observable[T]) Observable[T] {
	return DistinctUntilChangedFunc(source, func(a, b T) bool { return a == b })
}

// DistinctUntilChangedFunc suppresses values that equal reports as equal to
// the previous value.
func DistinctUntilChangedFunc[T any](source Observable[T], equal func(a, b T) bool) Observable[T] {
	if equal == nil {
		panic(`reactive: equal function must not be nil`)
	}
	return Create(func(observer Observer[T]) Disposable {
		var (
			last    T
			hasLast bool
		)
		return source.Subscribe(chain[T](observer,
			func(value T) {
				if hasLast {
					same, err := catchPanic(func() bool { return equal(last, value) })
					if err != nil {
						observer.OnError(err)
						return
					}
					if same {
						return
					}
				}
				last, hasLast = value, true
				observer.OnNext(value)
			},
			observer.OnError,
			observer.OnCompleted,
		))
	})
}

// Take forwards the first n values, then completes, and unsubscribes from
// source. If n is not positive, it completes without subscribing.
func Take[T any](source Observable[T], n int) Observable[T] {
	return Create(func(observer Observer[T]) Disposable {
		if n <= 0 {
			observer.OnCompleted()
			return nil
		}
		remaining := n
		return source.Subscribe(chain[T](observer,
			func(value T) {
				if remaining <= 0 {
					return
				}
				remaining--
				observer.OnNext(value)
				if remaining == 0 {
					observer.OnCompleted()
				}
			},
			observer.OnError,
			observer.OnCompleted,
		))
	})
}

// Skip discards the first n values.
func Skip[T any](source Observable[T], n int) Observable[T] {
	return Create(func(observer Observer[T]) Disposable {
		remaining := n
		return source.Subscribe(chain[T](observer,
			func(value T) {
				if remaining > 0 {
					remaining--
					return
				}
				observer.OnNext(value)
			},
			observer.OnError,
			observer.OnCompleted,
		))
	})
}

// StartWith emits values, before subscribing to source.
func StartWith[T any](source Observable[T], values ...T) Observable[T] {
	return Create(func(observer Observer[T]) Disposable {
		for _, v := range values {
			if isStopped(observer) {
				return nil
			}
			observer.OnNext(v)
		}
		if isStopped(observer) {
			return nil
		}
		return source.Subscribe(observer)
	})
}

// Do calls the given callbacks (any of which may be nil) for each signal,
// before forwarding it.
func Do[T any](source Observable[T], next func(value T), err func(err error), completed func()) Observable[T] {
	return Create(func(observer Observer[T]) Disposable {
		return source.Subscribe(chain[T](observer,
			func(value T) {
				if next != nil {
					next(value)
				}
				observer.OnNext(value)
			},
			func(e error) {
				if err != nil {
					err(e)
				}
				observer.OnError(e)
			},
			func() {
				if completed != nil {
					completed()
				}
				observer.OnCompleted()
			},
		))
	})
}
