// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package reactive

import (
	"sync"
)

// ConnectableObservable multicasts a single subscription to its source,
// established by Connect, to all of its subscribers, via a [Subject].
type ConnectableObservable[T any] struct {
	source     Observable[T]
	subject    *Subject[T]
	connection *connection[T]
	mu         sync.Mutex
}

// connection is the Disposable returned by ConnectableObservable.Connect.
type connection[T any] struct {
	parent   *ConnectableObservable[T]
	upstream SerialDisposable
	once     sync.Once
}

var _ Observable[any] = (*ConnectableObservable[any])(nil)

// Publish returns a [ConnectableObservable], sharing a single subscription
// to source, once connected.
func Publish[T any](source Observable[T]) *ConnectableObservable[T] {
	return &ConnectableObservable[T]{
		source:  source,
		subject: NewSubject[T](),
	}
}

// Subscribe registers observer with the current subject. Nothing is
// delivered until Connect is called.
func (x *ConnectableObservable[T]) Subscribe(observer Observer[T]) Disposable {
	x.mu.Lock()
	subject := x.subject
	x.mu.Unlock()
	return subject.Subscribe(observer)
}

// Connect subscribes the subject to the source, if not already connected,
// returning a [Disposable] that disconnects. Calling Connect while connected
// returns the existing connection.
//
// After disconnecting, the next Connect uses a new subject, so subscribers
// registered after disconnect observe only the new connection.
func (x *ConnectableObservable[T]) Connect() Disposable {
	return x.connect()
}

func (x *ConnectableObservable[T]) connect() *connection[T] {
	x.mu.Lock()
	if x.connection != nil {
		c := x.connection
		x.mu.Unlock()
		return c
	}
	c := &connection[T]{parent: x}
	x.connection = c
	subject := x.subject
	x.mu.Unlock()

	c.upstream.Set(x.source.Subscribe(subject))

	return c
}

// IsConnected reports whether there is an active connection.
func (x *ConnectableObservable[T]) IsConnected() bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.connection != nil
}

func (c *connection[T]) Dispose() {
	c.once.Do(func() {
		c.detach()
		c.upstream.Dispose()
	})
}

// detach disconnects the parent, such that the next Connect uses a new
// subject, without releasing the upstream subscription.
func (c *connection[T]) detach() {
	parent := c.parent
	parent.mu.Lock()
	defer parent.mu.Unlock()
	if parent.connection == c {
		parent.connection = nil
		parent.subject = NewSubject[T]()
	}
}

// refCountObservable is returned by RefCount.
type refCountObservable[T any] struct {
	source     *ConnectableObservable[T]
	connection *connection[T]
	gate       serializer
	count      int
}

// RefCount returns an [Observable] that connects source when the number of
// subscribers goes from zero to one, and disconnects when it returns to
// zero. Subscribing again, after disconnecting, reconnects.
func RefCount[T any](source *ConnectableObservable[T]) Observable[T] {
	x := &refCountObservable[T]{source: source}
	return Create(x.subscribe)
}

func (x *refCountObservable[T]) subscribe(observer Observer[T]) Disposable {
	var subscription Disposable
	x.gate.with(func() {
		// attaching under the gate ensures the observer shares a subject
		// with the connection it counts towards
		subscription = x.source.Subscribe(observer)
		x.count++
		if x.count == 1 {
			x.connection = x.source.connect()
		}
	})
	return NewDisposable(func() {
		subscription.Dispose()
		var disconnect *connection[T]
		x.gate.with(func() {
			x.count--
			if x.count == 0 && x.connection != nil {
				disconnect = x.connection
				x.connection = nil
				disconnect.detach()
			}
		})
		// the upstream may be mid delivery, so it is released outside the
		// gate
		if disconnect != nil {
			disconnect.Dispose()
		}
	})
}

// Share is shorthand for RefCount(Publish(source)).
func Share[T any](source Observable[T]) Observable[T] {
	return RefCount(Publish(source))
}
