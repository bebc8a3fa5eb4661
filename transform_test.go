// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package reactive

import (
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMap(t *testing.T) {
	r := newRecorder[string]()
	Map(Just(1, 2, 3), strconv.Itoa).Subscribe(r)
	assert.Equal(t, []string{"1", "2", "3"}, r.Values())
	assert.True(t, r.Completed())
}

func TestMap_panic(t *testing.T) {
	r := newRecorder[int]()
	Map(Just(1, 2, 3), func(v int) int {
		if v == 2 {
			panic("bad value")
		}
		return v
	}).Subscribe(r)
	assert.Equal(t, []int{1}, r.Values())
	var panicErr *PanicError
	assert.ErrorAs(t, r.Err(), &panicErr)
	assert.Equal(t, 1, r.Terminals())
}

func TestTryMap(t *testing.T) {
	r := newRecorder[int]()
	TryMap(Just("1", "x", "3"), strconv.Atoi).Subscribe(r)
	assert.Equal(t, []int{1}, r.Values())
	var numErr *strconv.NumError
	assert.ErrorAs(t, r.Err(), &numErr)
}

func TestFilter(t *testing.T) {
	r := newRecorder[int]()
	Filter(Just(1, 2, 3, 4, 5), func(v int) bool { return v%2 == 1 }).Subscribe(r)
	assert.Equal(t, []int{1, 3, 5}, r.Values())
	assert.True(t, r.Completed())
}

func TestFilter_forwardsError(t *testing.T) {
	r := newRecorder[int]()
	Filter(Throw[int](errTest), func(int) bool { return true }).Subscribe(r)
	assert.Equal(t, errTest, r.Err())
}

func TestOperators_nilFunctionsPanic(t *testing.T) {
	assert.Panics(t, func() { Map[int, int](Just(1), nil) })
	assert.Panics(t, func() { TryMap[int, int](Just(1), nil) })
	assert.Panics(t, func() { Filter(Just(1), nil) })
	assert.Panics(t, func() { DistinctUntilChangedFunc(Just(1), nil) })
	assert.Panics(t, func() { FlatMap[int, int](Just(1), nil) })
	assert.Panics(t, func() { CombineLatest2[int, int, int](Just(1), Just(2), nil) })
}

func TestDistinctUntilChanged(t *testing.T) {
	r := newRecorder[bool]()
	DistinctUntilChanged(Just(false, false, true, true, false)).Subscribe(r)
	assert.Equal(t, []bool{false, true, false}, r.Values())
}

func TestDistinctUntilChangedFunc(t *testing.T) {
	r := newRecorder[string]()
	DistinctUntilChangedFunc(Just("a", "A", "b", "B", "a"), strings.EqualFold).Subscribe(r)
	assert.Equal(t, []string{"a", "b", "a"}, r.Values())
}

func TestTake(t *testing.T) {
	for _, tc := range [...]struct {
		Name   string
		N      int
		Values []int
	}{
		{Name: `zero`, N: 0},
		{Name: `negative`, N: -1},
		{Name: `fewer`, N: 2, Values: []int{1, 2}},
		{Name: `exact`, N: 3, Values: []int{1, 2, 3}},
		{Name: `more`, N: 10, Values: []int{1, 2, 3}},
	} {
		t.Run(tc.Name, func(t *testing.T) {
			r := newRecorder[int]()
			Take(Just(1, 2, 3), tc.N).Subscribe(r)
			assert.Equal(t, tc.Values, r.Values())
			assert.True(t, r.Completed())
			assert.Equal(t, 1, r.Terminals())
		})
	}
}

func TestTake_unsubscribesFromSource(t *testing.T) {
	subject := NewSubject[int]()
	r := newRecorder[int]()
	Take[int](subject, 1).Subscribe(r)
	require.True(t, subject.HasObservers())
	subject.OnNext(1)
	assert.False(t, subject.HasObservers())
	assert.Equal(t, []int{1}, r.Values())
	assert.True(t, r.Completed())
}

func TestTake_stopsSynchronousSource(t *testing.T) {
	var produced int
	source := Create(func(observer Observer[int]) Disposable {
		for i := 0; i < 1000 && !isStopped(observer); i++ {
			produced++
			observer.OnNext(i)
		}
		observer.OnCompleted()
		return nil
	})
	r := newRecorder[int]()
	Take(source, 3).Subscribe(r)
	assert.Equal(t, []int{0, 1, 2}, r.Values())
	assert.Equal(t, 3, produced)
}

func TestSkip(t *testing.T) {
	r := newRecorder[int]()
	Skip(Just(1, 2, 3, 4), 2).Subscribe(r)
	assert.Equal(t, []int{3, 4}, r.Values())
	assert.True(t, r.Completed())
}

func TestStartWith(t *testing.T) {
	r := newRecorder[int]()
	StartWith(Just(3, 4), 1, 2).Subscribe(r)
	assert.Equal(t, []int{1, 2, 3, 4}, r.Values())
	assert.True(t, r.Completed())
}

func TestDo(t *testing.T) {
	var events []string
	r := newRecorder[int]()
	Do(Just(1, 2),
		func(v int) { events = append(events, "next "+strconv.Itoa(v)) },
		nil,
		func() { events = append(events, "completed") },
	).Subscribe(r)
	assert.Equal(t, []string{"next 1", "next 2", "completed"}, events)
	assert.Equal(t, []int{1, 2}, r.Values())

	var seen error
	r = newRecorder[int]()
	Do(Throw[int](errTest), nil, func(err error) { seen = err }, nil).Subscribe(r)
	assert.True(t, errors.Is(seen, errTest))
	assert.Equal(t, errTest, r.Err())
}
