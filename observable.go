// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package reactive

// Observable is a lazy, push-based sequence. Unless documented otherwise,
// each call to Subscribe is independent, and re-runs the production of the
// sequence.
type Observable[T any] interface {
	// Subscribe starts delivery to observer, returning a [Disposable] that
	// stops delivery, and releases any resources.
	Subscribe(observer Observer[T]) Disposable
}

// ObservableFunc implements [Observable] as a function. Unlike [Create], it
// provides none of the delivery guarantees.
type ObservableFunc[T any] func(observer Observer[T]) Disposable

// Subscribe calls f.
func (f ObservableFunc[T]) Subscribe(observer Observer[T]) Disposable {
	return f(observer)
}

// Create returns an [Observable] which calls produce on each subscription.
//
// The observer passed to produce is safe for concurrent use, and discards
// signals following a terminal signal, or disposal. The [Disposable] returned
// by produce (which may be nil) is disposed after the first terminal signal,
// or when the subscription is disposed, whichever comes first.
//
// A panic raised by produce is recovered, and delivered as a [*PanicError].
func Create[T any](produce func(observer Observer[T]) Disposable) Observable[T] {
	if produce == nil {
		panic(`reactive: produce must not be nil`)
	}
	return ObservableFunc[T](func(observer Observer[T]) Disposable {
		if observer == nil {
			panic(`reactive: observer must not be nil`)
		}
		s := newSink(observer)
		var upstream Disposable
		func() {
			defer func() {
				if r := recover(); r != nil {
					s.OnError(&PanicError{Value: r})
				}
			}()
			upstream = produce(s)
		}()
		if upstream != nil {
			s.upstream.Set(upstream)
		}
		return s
	})
}

// Subscribe subscribes to source using the given callbacks, any of which
// may be nil. See also [NewObserver].
func Subscribe[T any](source Observable[T], next func(value T), err func(err error), completed func()) Disposable {
	return source.Subscribe(NewObserver(next, err, completed))
}

// Just returns an [Observable] that emits the given values, then completes.
func Just[T any](values ...T) Observable[T] {
	return FromSlice(values)
}

// FromSlice returns an [Observable] that emits each element of values, then
// completes. The slice is not copied.
func FromSlice[T any](values []T) Observable[T] {
	return Create(func(observer Observer[T]) Disposable {
		for _, v := range values {
			if isStopped(observer) {
				return nil
			}
			observer.OnNext(v)
		}
		observer.OnCompleted()
		return nil
	})
}

// EmptyOf returns an [Observable] that completes immediately.
func EmptyOf[T any]() Observable[T] {
	return Create(func(observer Observer[T]) Disposable {
		observer.OnCompleted()
		return nil
	})
}

// Never returns an [Observable] that never emits.
func Never[T any]() Observable[T] {
	return ObservableFunc[T](func(Observer[T]) Disposable {
		return Empty()
	})
}

// Throw returns an [Observable] that fails immediately, with err.
func Throw[T any](err error) Observable[T] {
	return Create(func(observer Observer[T]) Disposable {
		observer.OnError(err)
		return nil
	})
}

// Defer returns an [Observable] that calls factory on each subscription,
// and subscribes to the result.
func Defer[T any](factory func() Observable[T]) Observable[T] {
	return Create(func(observer Observer[T]) Disposable {
		source, err := catchPanic(factory)
		if err != nil {
			observer.OnError(err)
			return nil
		}
		return source.Subscribe(observer)
	})
}
