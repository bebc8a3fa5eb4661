// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package reactive

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer is a bytes.Buffer that is safe for concurrent use.
type syncBuffer struct {
	buf bytes.Buffer
	mu  sync.Mutex
}

func (x *syncBuffer) Write(p []byte) (int, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.buf.Write(p)
}

func (x *syncBuffer) String() string {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.buf.String()
}

func newTestLogger(w *syncBuffer) *logiface.Logger[logiface.Event] {
	return stumpy.L.New(
		stumpy.L.WithStumpy(stumpy.WithWriter(w), stumpy.WithTimeField(``)),
		stumpy.L.WithLevel(logiface.LevelTrace),
	).Logger()
}

func TestRunSafely(t *testing.T) {
	var buf syncBuffer
	logger := newTestLogger(&buf)

	var called bool
	runSafely(logger, categoryScheduler, func() { called = true })
	assert.True(t, called)
	assert.Empty(t, buf.String())

	assert.NotPanics(t, func() {
		runSafely(logger, categoryScheduler, func() { panic("boom") })
	})
	out := buf.String()
	assert.Contains(t, out, `"lvl":"err"`)
	assert.Contains(t, out, `"category":"scheduler"`)
	assert.Contains(t, out, `boom`)
	assert.Contains(t, out, `"msg":"reactive: recovered panic"`)
}

func TestRunSafely_nilLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		runSafely(nil, categoryScheduler, func() { panic("boom") })
	})
}

func TestSetLogger(t *testing.T) {
	var buf syncBuffer
	SetLogger(newTestLogger(&buf))
	t.Cleanup(func() { SetLogger(nil) })

	require.NotNil(t, getLogger())
	NewDisposable(func() { panic("dispose failed") }).Dispose()
	assert.Contains(t, buf.String(), `"category":"disposable"`)
	assert.Contains(t, buf.String(), `dispose failed`)
}

func TestNewObserver_unhandledErrorLogged(t *testing.T) {
	var buf syncBuffer
	SetLogger(newTestLogger(&buf))
	t.Cleanup(func() { SetLogger(nil) })

	Subscribe(Throw[int](errors.New("nobody listening")), nil, nil, nil)
	assert.Contains(t, buf.String(), `"category":"observer"`)
	assert.Contains(t, buf.String(), `nobody listening`)
}

func TestWithLogger_schedulerLifecycle(t *testing.T) {
	var buf syncBuffer
	scheduler, err := NewEventLoopScheduler(WithLogger(newTestLogger(&buf)), WithName(`sensor`))
	require.NoError(t, err)
	done := make(chan struct{})
	ScheduleNow(scheduler, func(Scheduler) { close(done) })
	<-done
	require.NoError(t, scheduler.Shutdown(context.Background()))

	out := buf.String()
	assert.Contains(t, out, `"msg":"reactive: event loop started"`)
	assert.Contains(t, out, `"msg":"reactive: event loop stopped"`)
	assert.Contains(t, out, `"scheduler":"sensor"`)
}

func TestPanicError(t *testing.T) {
	cause := errors.New("cause")
	err := error(&PanicError{Value: cause})
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, &PanicError{})
	assert.Equal(t, `reactive: recovered panic: cause`, err.Error())

	err = &PanicError{Value: "text"}
	assert.Nil(t, errors.Unwrap(err))
	assert.False(t, errors.Is(err, cause))
}
