package watch

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive[T any](t *testing.T, f *Feed[T]) T {
	t.Helper()
	select {
	case v, ok := <-f.C:
		require.True(t, ok, "feed closed unexpectedly")
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
	}
	var zero T
	return zero
}

func TestWatchSnapshotThenOnePerMutation(t *testing.T) {
	h := NewHub()
	var counter atomic.Int64

	f, err := Watch(context.Background(), h, TopicCategories, func(context.Context) (int64, error) {
		return counter.Load(), nil
	})
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, int64(0), receive(t, f))

	// Three mutations before the reader catches up still yield three snapshots.
	for i := 0; i < 3; i++ {
		counter.Add(1)
		h.Notify(TopicCategories)
	}
	for i := 0; i < 3; i++ {
		assert.Equal(t, int64(3), receive(t, f))
	}

	select {
	case v := <-f.C:
		t.Fatalf("unexpected extra snapshot %d", v)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestWatchIgnoresOtherTopics(t *testing.T) {
	h := NewHub()
	f, err := Watch(context.Background(), h, TopicExpenses, func(context.Context) (string, error) {
		return "snap", nil
	})
	require.NoError(t, err)
	defer f.Close()

	receive(t, f)
	h.Notify(TopicCategories)

	select {
	case <-f.C:
		t.Fatal("expenses feed reacted to a categories mutation")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestWatchMultipleSubscribers(t *testing.T) {
	h := NewHub()
	load := func(context.Context) (int, error) { return 1, nil }

	a, err := Watch(context.Background(), h, TopicExpenses, load)
	require.NoError(t, err)
	defer a.Close()
	b, err := Watch(context.Background(), h, TopicExpenses, load)
	require.NoError(t, err)
	defer b.Close()

	receive(t, a)
	receive(t, b)
	assert.Equal(t, 2, h.Subscribers(TopicExpenses))

	h.Notify(TopicExpenses)
	receive(t, a)
	receive(t, b)
}

func TestWatchInitialLoadError(t *testing.T) {
	h := NewHub()
	_, err := Watch(context.Background(), h, TopicExpenses, func(context.Context) (int, error) {
		return 0, errors.New("disk on fire")
	})
	require.Error(t, err)
	assert.Equal(t, 0, h.Subscribers(TopicExpenses))
}

func TestWatchLoadErrorClosesFeed(t *testing.T) {
	h := NewHub()
	var calls atomic.Int64
	f, err := Watch(context.Background(), h, TopicExpenses, func(context.Context) (int, error) {
		if calls.Add(1) > 1 {
			return 0, errors.New("query failed")
		}
		return 1, nil
	})
	require.NoError(t, err)

	receive(t, f)
	h.Notify(TopicExpenses)

	select {
	case _, ok := <-f.C:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("feed did not close")
	}
	f.Close()
	assert.EqualError(t, f.Err(), "query failed")
}

func TestCloseUnsubscribes(t *testing.T) {
	h := NewHub()
	f, err := Watch(context.Background(), h, TopicCategories, func(context.Context) (int, error) { return 0, nil })
	require.NoError(t, err)

	f.Close()
	assert.Equal(t, 0, h.Subscribers(TopicCategories))

	_, ok := <-f.C
	assert.False(t, ok)
}
