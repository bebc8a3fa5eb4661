// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package reactive

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// serializer provides mutual exclusion that is aware of re-entrancy, from
// the owning goroutine. It guards every delivery to an observer, and the
// shared state of the multi-source operators.
//
// The zero value is ready to use.
type serializer struct {
	// queue is only accessed by the goroutine holding mu
	queue []func()
	owner atomic.Uint64
	mu    sync.Mutex
}

// run calls fn exclusively. If the calling goroutine already holds the
// serializer (i.e. re-entrant call), fn is queued, and will be called after
// the current call returns, prior to releasing the serializer.
func (x *serializer) run(fn func()) {
	gid := getGoroutineID()
	if x.owner.Load() == gid {
		x.queue = append(x.queue, fn)
		return
	}
	x.acquire(gid, fn)
}

// with calls fn exclusively, like run, except re-entrant calls are made
// immediately, inline.
func (x *serializer) with(fn func()) {
	gid := getGoroutineID()
	if x.owner.Load() == gid {
		fn()
		return
	}
	x.acquire(gid, fn)
}

// barrier calls fn exclusively, like with, unless the calling goroutine is
// already within a serialized call, of any serializer. In that case fn is
// called immediately, without waiting for another goroutine, which could be
// waiting on a serializer held by the caller.
func (x *serializer) barrier(fn func()) {
	gid := getGoroutineID()
	if x.owner.Load() == gid || holding(gid) {
		fn()
		return
	}
	x.acquire(gid, fn)
}

func (x *serializer) acquire(gid uint64, fn func()) {
	x.mu.Lock()
	x.owner.Store(gid)
	hold(gid)
	defer x.release(gid)
	fn()
	for len(x.queue) != 0 {
		fn = x.queue[0]
		x.queue[0] = nil
		x.queue = x.queue[1:]
		fn()
	}
}

func (x *serializer) release(gid uint64) {
	// a panic may have left queued calls behind
	x.queue = nil
	x.owner.Store(0)
	unhold(gid)
	x.mu.Unlock()
}

// holders maps the ID of each goroutine within a serialized call to the
// number of serializers it holds. Entries are only modified by the goroutine
// they belong to.
var holders sync.Map

func holding(gid uint64) bool {
	_, ok := holders.Load(gid)
	return ok
}

func hold(gid uint64) {
	n := 1
	if v, ok := holders.Load(gid); ok {
		n += v.(int)
	}
	holders.Store(gid, n)
}

func unhold(gid uint64) {
	v, ok := holders.Load(gid)
	if !ok {
		return
	}
	if n := v.(int) - 1; n > 0 {
		holders.Store(gid, n)
	} else {
		holders.Delete(gid)
	}
}

// getGoroutineID returns the current goroutine's ID, parsed from the
// "goroutine N [...]" header of the stack trace.
func getGoroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	var id uint64
	for i := len("goroutine "); i < n; i++ {
		if buf[i] >= '0' && buf[i] <= '9' {
			id = id*10 + uint64(buf[i]-'0')
		} else {
			break
		}
	}
	return id
}
