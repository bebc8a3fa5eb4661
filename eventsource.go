// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package reactive

import (
	"sync"
)

// HandlerToken uniquely identifies a handler registered with an
// [EventSource], for removal purposes. Go functions cannot be compared for
// equality, so each registration is assigned a token instead.
type HandlerToken uint64

// handlerEntry pairs a handler with its token.
type handlerEntry[S, A any] struct {
	handler EventHandler[S, A]
	token   HandlerToken
}

// EventSource is a host-side event, supporting any number of handlers,
// which are invoked synchronously, in registration order, by Raise.
//
// Its AddHandler and RemoveHandler methods have the shape expected by
// [FromEventPattern], e.g.
//
//	changed := reactive.FromEventPattern(
//	    reactive.StrongTarget(source),
//	    (*reactive.EventSource[*Widget, Args]).AddHandler,
//	    func(s *reactive.EventSource[*Widget, Args], token reactive.HandlerToken) {
//	        s.RemoveHandler(token)
//	    },
//	)
//
// EventSource is safe for concurrent use.
type EventSource[S, A any] struct {
	handlers []handlerEntry[S, A]
	next     HandlerToken
	mu       sync.RWMutex
}

// NewEventSource returns a new [EventSource], with no handlers.
func NewEventSource[S, A any]() *EventSource[S, A] {
	return &EventSource[S, A]{next: 1}
}

// AddHandler registers handler, returning a token that may be passed to
// RemoveHandler. A nil handler is ignored, and the zero token returned.
func (x *EventSource[S, A]) AddHandler(handler EventHandler[S, A]) HandlerToken {
	if handler == nil {
		return 0
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.next == 0 {
		x.next = 1
	}
	token := x.next
	x.next++
	x.handlers = append(x.handlers, handlerEntry[S, A]{handler: handler, token: token})
	return token
}

// RemoveHandler removes the handler registered with token, and reports
// whether it was found.
func (x *EventSource[S, A]) RemoveHandler(token HandlerToken) bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	for i, entry := range x.handlers {
		if entry.token == token {
			// copy on write, Raise may be iterating the old slice
			handlers := make([]handlerEntry[S, A], 0, len(x.handlers)-1)
			handlers = append(handlers, x.handlers[:i]...)
			x.handlers = append(handlers, x.handlers[i+1:]...)
			return true
		}
	}
	return false
}

// Raise invokes all handlers registered at the time of the call.
func (x *EventSource[S, A]) Raise(sender S, args A) {
	x.mu.RLock()
	handlers := x.handlers
	x.mu.RUnlock()
	for _, entry := range handlers {
		entry.handler(sender, args)
	}
}

// HandlerCount returns the number of registered handlers.
func (x *EventSource[S, A]) HandlerCount() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.handlers)
}
