package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock steps time manually so TTL windows need no sleeping.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func counting(value string) (*atomic.Int64, func(context.Context) (string, error)) {
	var calls atomic.Int64
	return &calls, func(context.Context) (string, error) {
		calls.Add(1)
		return value, nil
	}
}

func TestMemoize_ComputesOnce(t *testing.T) {
	s := New()
	calls, producer := counting("v")

	for i := 0; i < 3; i++ {
		v, err := Memoize(context.Background(), s, "k", time.Minute, []string{"posts"}, producer)
		require.NoError(t, err)
		assert.Equal(t, "v", v)
	}
	assert.Equal(t, int64(1), calls.Load())

	st := s.Stats()
	assert.Equal(t, int64(2), st.Hits)
	assert.Equal(t, int64(1), st.Misses)
	assert.Equal(t, 1, st.Entries)
}

func TestMemoize_TTLExpiry(t *testing.T) {
	clock := newFakeClock()
	s := NewWithClock(clock.Now)
	calls, producer := counting("v")

	_, err := Memoize(context.Background(), s, "k", time.Minute, nil, producer)
	require.NoError(t, err)

	clock.Advance(59 * time.Second)
	_, err = Memoize(context.Background(), s, "k", time.Minute, nil, producer)
	require.NoError(t, err)
	assert.Equal(t, int64(1), calls.Load(), "still within the window")

	clock.Advance(2 * time.Second)
	_, err = Memoize(context.Background(), s, "k", time.Minute, nil, producer)
	require.NoError(t, err)
	assert.Equal(t, int64(2), calls.Load(), "expired entry recomputes")
}

func TestMemoize_ZeroTTLAlwaysRecomputes(t *testing.T) {
	s := New()
	calls, producer := counting("v")

	for i := 0; i < 3; i++ {
		_, err := Memoize(context.Background(), s, "k", 0, nil, producer)
		require.NoError(t, err)
	}
	assert.Equal(t, int64(3), calls.Load())
	assert.Equal(t, 0, s.Stats().Entries)
}

func TestInvalidate_ByTag(t *testing.T) {
	s := New()
	postCalls, posts := counting("posts")
	tagCalls, tags := counting("tags")

	_, err := Memoize(context.Background(), s, "corpus", time.Hour, []string{"posts"}, posts)
	require.NoError(t, err)
	_, err = Memoize(context.Background(), s, "tags", time.Hour, []string{"tags"}, tags)
	require.NoError(t, err)

	s.Invalidate("posts")

	_, err = Memoize(context.Background(), s, "corpus", time.Hour, []string{"posts"}, posts)
	require.NoError(t, err)
	assert.Equal(t, int64(2), postCalls.Load(), "invalidated entry recomputes despite TTL")

	_, err = Memoize(context.Background(), s, "tags", time.Hour, []string{"tags"}, tags)
	require.NoError(t, err)
	assert.Equal(t, int64(1), tagCalls.Load(), "unrelated tag untouched")
}

func TestInvalidate_IntersectsAnyTag(t *testing.T) {
	s := New()
	calls, producer := counting("v")

	_, err := Memoize(context.Background(), s, "featured", time.Hour, []string{"posts", "featured"}, producer)
	require.NoError(t, err)

	s.Invalidate("featured")

	_, err = Memoize(context.Background(), s, "featured", time.Hour, []string{"posts", "featured"}, producer)
	require.NoError(t, err)
	assert.Equal(t, int64(2), calls.Load())
}

func TestMemoize_ErrorsNotCached(t *testing.T) {
	s := New()
	var calls atomic.Int64
	boom := errors.New("boom")
	producer := func(context.Context) (string, error) {
		if calls.Add(1) == 1 {
			return "", boom
		}
		return "ok", nil
	}

	_, err := Memoize(context.Background(), s, "k", time.Hour, nil, producer)
	require.ErrorIs(t, err, boom)

	v, err := Memoize(context.Background(), s, "k", time.Hour, nil, producer)
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}

func TestDo_CollapsesConcurrentProducers(t *testing.T) {
	s := New()
	var calls atomic.Int64
	gate := make(chan struct{})
	producer := func(context.Context) (any, error) {
		calls.Add(1)
		<-gate
		return "v", nil
	}

	const n = 16
	var wg sync.WaitGroup
	results := make([]any, n)
	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := s.Do(context.Background(), "k", time.Hour, nil, producer)
			assert.NoError(t, err)
			results[i] = v
		}()
	}

	// Give every goroutine time to reach the flight group, then release.
	time.Sleep(50 * time.Millisecond)
	close(gate)
	wg.Wait()

	assert.Equal(t, int64(1), calls.Load(), "concurrent same-key calls share one producer")
	for i := 0; i < n; i++ {
		assert.Equal(t, "v", results[i])
	}
}

func TestInvalidate_VoidsInFlightProduction(t *testing.T) {
	clock := newFakeClock()
	s := NewWithClock(clock.Now)

	started := make(chan struct{})
	finish := make(chan struct{})
	go func() {
		_, _ = s.Do(context.Background(), "k", time.Hour, []string{"posts"}, func(context.Context) (any, error) {
			close(started)
			<-finish
			return "stale", nil
		})
	}()

	<-started
	clock.Advance(time.Second)
	s.Invalidate("posts")
	close(finish)

	// The producer that started before the invalidation must not leave a
	// valid entry behind.
	assert.Eventually(t, func() bool {
		var calls atomic.Int64
		v, err := s.Do(context.Background(), "k", time.Hour, []string{"posts"}, func(context.Context) (any, error) {
			calls.Add(1)
			return "fresh", nil
		})
		return err == nil && v == "fresh" && calls.Load() == 1
	}, time.Second, 10*time.Millisecond)
}
