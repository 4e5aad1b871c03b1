package jobs

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

type recordingObserver struct {
	mu   sync.Mutex
	done []string
	errs []error
}

func (o *recordingObserver) OnJobDone(name string, _ time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.done = append(o.done, name)
	o.errs = append(o.errs, err)
}

func TestPool_RunsJobs(t *testing.T) {
	obs := &recordingObserver{}
	p := NewPool(2, 10, nil, obs)
	p.Start(context.Background())

	var ran atomic.Int32
	for i := 0; i < 5; i++ {
		require.NoError(t, p.Submit(Job{Name: "count", Run: func(context.Context) error {
			ran.Add(1)
			return nil
		}}))
	}
	p.Stop()

	assert.Equal(t, int32(5), ran.Load())
	assert.Len(t, obs.done, 5)
}

func TestPool_FailCallbackOnError(t *testing.T) {
	p := NewPool(1, 1, nil, nil)
	p.Start(context.Background())

	boom := errors.New("boom")
	var got error
	require.NoError(t, p.Submit(Job{
		Name: "failing",
		Run:  func(context.Context) error { return boom },
		Fail: func(_ context.Context, err error, stack string) {
			got = err
			assert.Empty(t, stack)
		},
	}))
	p.Stop()

	assert.ErrorIs(t, got, boom)
}

func TestPool_PanicBecomesFailure(t *testing.T) {
	obs := &recordingObserver{}
	p := NewPool(1, 1, nil, obs)
	p.Start(context.Background())

	var got error
	var gotStack string
	require.NoError(t, p.Submit(Job{
		Name: "panicky",
		Run:  func(context.Context) error { panic("nil map") },
		Fail: func(_ context.Context, err error, stack string) {
			got = err
			gotStack = stack
		},
	}))

	var ran atomic.Bool
	require.NoError(t, p.Submit(Job{Name: "after", Run: func(context.Context) error {
		ran.Store(true)
		return nil
	}}))
	p.Stop()

	var pe *PanicError
	require.ErrorAs(t, got, &pe)
	assert.Equal(t, "nil map", pe.Value)
	assert.Contains(t, gotStack, "goroutine")
	assert.True(t, ran.Load(), "worker survives a panic")
	require.Len(t, obs.errs, 2)
	assert.Error(t, obs.errs[0])
	assert.NoError(t, obs.errs[1])
}

func TestPool_QueueFull(t *testing.T) {
	p := NewPool(1, 1, nil, nil)
	// Not started: nothing drains the queue.
	require.NoError(t, p.Submit(Job{Name: "a", Run: func(context.Context) error { return nil }}))
	assert.ErrorIs(t, p.Submit(Job{Name: "b", Run: func(context.Context) error { return nil }}), ErrQueueFull)
	assert.Equal(t, 1, p.Pending())

	p.Start(context.Background())
	p.Stop()
	assert.Equal(t, 0, p.Pending())
}

func TestPool_SubmitAfterStop(t *testing.T) {
	p := NewPool(1, 1, nil, nil)
	p.Start(context.Background())
	p.Stop()
	p.Stop()

	err := p.Submit(Job{Name: "late", Run: func(context.Context) error { return nil }})
	assert.ErrorIs(t, err, ErrStopped)
}

func TestPool_RejectsJobWithoutRun(t *testing.T) {
	p := NewPool(1, 1, nil, nil)
	assert.Error(t, p.Submit(Job{Name: "empty"}))
}

func TestPool_ContextCancelStopsWorkers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := NewPool(2, 1, nil, nil)
	p.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("workers did not exit after cancel")
	}
}
