// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package reactive

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestSubject_fanOutInSubscriptionOrder(t *testing.T) {
	subject := NewSubject[int]()
	var order []string
	subject.Subscribe(NewObserver(func(v int) { order = append(order, "a") }, nil, nil))
	subject.Subscribe(NewObserver(func(v int) { order = append(order, "b") }, nil, nil))
	subject.Subscribe(NewObserver(func(v int) { order = append(order, "c") }, nil, nil))
	subject.OnNext(1)
	assert.Equal(t, []string{"a", "b", "c"}, order)
	assert.Equal(t, 3, subject.ObserverCount())
	assert.True(t, subject.HasObservers())
}

func TestSubject_dispose(t *testing.T) {
	subject := NewSubject[int]()
	r := newRecorder[int]()
	subscription := subject.Subscribe(r)
	subject.OnNext(1)
	subscription.Dispose()
	subject.OnNext(2)
	assert.Equal(t, []int{1}, r.Values())
	assert.False(t, subject.HasObservers())
}

func TestSubject_disposeDuringFanOut(t *testing.T) {
	subject := NewSubject[int]()
	second := newRecorder[int]()
	var secondSubscription Disposable
	subject.Subscribe(NewObserver(func(int) { secondSubscription.Dispose() }, nil, nil))
	secondSubscription = subject.Subscribe(second)
	subject.OnNext(1)
	assert.Empty(t, second.Values(), "a subscriber disposed mid fan-out must not receive the value")
}

func TestSubject_disposeWaitsForInFlightEmission(t *testing.T) {
	subject := NewSubject[int]()
	var (
		disposeReturned atomic.Bool
		late            atomic.Int32
		entered         = make(chan struct{})
		release         = make(chan struct{})
	)
	subject.Subscribe(NewObserver(func(v int) {
		if v == 1 {
			close(entered)
			<-release
		}
	}, nil, nil))
	second := newRecorder[int]()
	secondSubscription := subject.Subscribe(NewObserver(func(v int) {
		if disposeReturned.Load() {
			late.Add(1)
		}
		second.OnNext(v)
	}, nil, nil))

	emitted := make(chan struct{})
	go func() {
		defer close(emitted)
		subject.OnNext(1)
	}()
	<-entered

	disposed := make(chan struct{})
	go func() {
		defer close(disposed)
		secondSubscription.Dispose()
		disposeReturned.Store(true)
	}()
	select {
	case <-disposed:
		t.Fatal("dispose returned while an emission was in progress")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	<-emitted
	<-disposed
	subject.OnNext(2)

	assert.Equal(t, int32(0), late.Load())
	assert.Equal(t, []int{1}, second.Values())
	assert.Equal(t, 1, subject.ObserverCount())
}

func TestSubject_nilErrorPanics(t *testing.T) {
	subject := NewSubject[int]()
	r := newRecorder[int]()
	subject.Subscribe(r)
	assert.PanicsWithValue(t, `reactive: error must not be nil`, func() { subject.OnError(nil) })
	assert.Equal(t, 0, r.Terminals())

	behavior := NewBehaviorSubject(0)
	assert.PanicsWithValue(t, `reactive: error must not be nil`, func() { behavior.OnError(nil) })
}

func TestSubject_terminal(t *testing.T) {
	subject := NewSubject[int]()
	early := newRecorder[int]()
	subject.Subscribe(early)
	subject.OnNext(1)
	subject.OnError(errTest)
	subject.OnNext(2)
	subject.OnCompleted()

	assert.Equal(t, []int{1}, early.Values())
	assert.Equal(t, errTest, early.Err())
	assert.Equal(t, 1, early.Terminals())
	assert.False(t, subject.HasObservers())

	late := newRecorder[int]()
	subject.Subscribe(late).Dispose()
	assert.Equal(t, errTest, late.Err())
	assert.Empty(t, late.Values())
}

func TestSubject_concurrentPushesDoNotInterleave(t *testing.T) {
	subject := NewSubject[int]()
	var (
		active   atomic.Int32
		overlaps atomic.Int32
		total    int
	)
	for range 3 {
		subject.Subscribe(NewObserver(func(int) {
			if active.Add(1) != 1 {
				overlaps.Add(1)
			}
			total++
			active.Add(-1)
		}, nil, nil))
	}

	var g errgroup.Group
	for range 8 {
		g.Go(func() error {
			for i := range 200 {
				subject.OnNext(i)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, int32(0), overlaps.Load())
	assert.Equal(t, 3*8*200, total)
}

func TestSubject_reentrantPushQueued(t *testing.T) {
	subject := NewSubject[int]()
	var first, second []int
	subject.Subscribe(NewObserver(func(v int) {
		first = append(first, v)
		if v == 1 {
			subject.OnNext(2)
		}
	}, nil, nil))
	subject.Subscribe(NewObserver(func(v int) { second = append(second, v) }, nil, nil))
	subject.OnNext(1)
	// both subscribers see 1 before either sees 2
	assert.Equal(t, []int{1, 2}, first)
	assert.Equal(t, []int{1, 2}, second)
}

func TestSubject_asObservable(t *testing.T) {
	subject := NewSubject[string]()
	observable := subject.AsObservable()
	_, isSubject := observable.(*Subject[string])
	assert.False(t, isSubject)
	r := newRecorder[string]()
	observable.Subscribe(r)
	subject.OnNext("x")
	subject.OnCompleted()
	assert.Equal(t, []string{"x"}, r.Values())
	assert.True(t, r.Completed())
}

func TestBehaviorSubject_replaysCurrentValue(t *testing.T) {
	subject := NewBehaviorSubject(false)
	early := newRecorder[bool]()
	subject.Subscribe(early)
	subject.OnNext(true)

	late := newRecorder[bool]()
	subject.Subscribe(late)
	assert.Equal(t, []bool{false, true}, early.Values())
	assert.Equal(t, []bool{true}, late.Values())
	assert.True(t, subject.Value())
}

func TestBehaviorSubject_afterCompletion(t *testing.T) {
	subject := NewBehaviorSubject(1)
	subject.OnNext(2)
	subject.OnCompleted()
	subject.OnNext(3)
	assert.Equal(t, 2, subject.Value())

	r := newRecorder[int]()
	subject.Subscribe(r)
	assert.Empty(t, r.Values())
	assert.True(t, r.Completed())
}

func TestBehaviorSubject_afterError(t *testing.T) {
	subject := NewBehaviorSubject("a")
	subject.OnError(errTest)
	r := newRecorder[string]()
	subject.Subscribe(r)
	assert.Empty(t, r.Values())
	assert.Equal(t, errTest, r.Err())
}

func TestBehaviorSubject_subscribeDuringDelivery(t *testing.T) {
	subject := NewBehaviorSubject(0)
	inner := newRecorder[int]()
	var once sync.Once
	subject.Subscribe(NewObserver(func(v int) {
		if v == 1 {
			once.Do(func() { subject.Subscribe(inner) })
		}
	}, nil, nil))
	subject.OnNext(1)
	subject.OnNext(2)
	assert.Equal(t, []int{1, 2}, inner.Values())
}

func TestBehaviorSubject_concurrentSubscribeSeesOrderedValues(t *testing.T) {
	subject := NewBehaviorSubject(0)
	const n = 1000

	var g errgroup.Group
	g.Go(func() error {
		for i := 1; i <= n; i++ {
			subject.OnNext(i)
		}
		return nil
	})

	recorders := make([]*recorder[int], 16)
	for i := range recorders {
		recorders[i] = newRecorder[int]()
		subject.Subscribe(recorders[i])
	}
	require.NoError(t, g.Wait())
	subject.OnCompleted()

	for _, r := range recorders {
		values := r.Values()
		require.NotEmpty(t, values)
		for i := 1; i < len(values); i++ {
			require.Equal(t, values[i-1]+1, values[i], "values must be contiguous, starting with the current value")
		}
		assert.Equal(t, n, values[len(values)-1])
	}
}
