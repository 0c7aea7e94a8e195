package executor

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSubmitRunsJobAndResolvesInnerFuture(t *testing.T) {
	e := New[int](2, 1)
	outer := e.Submit(context.Background(), func(context.Context) (int, error) {
		return 42, nil
	})
	inner := <-outer
	res := <-inner
	require.NoError(t, res.Err)
	require.Equal(t, 42, res.Value)
}

func TestInFlightNeverExceedsParallelism(t *testing.T) {
	e := New[int](2, 1)
	release := make(chan struct{})
	var maxInFlight int64
	job := func(context.Context) (int, error) {
		<-release
		return 0, nil
	}
	var outers []Future[Future[Result[int]]]
	for i := 0; i < 5; i++ {
		outers = append(outers, e.Submit(context.Background(), job))
	}
	// Wait for admissions to settle; poll InFlight for a bound.
	deadline := time.After(time.Second)
	for {
		if e.InFlight() == 2 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for in-flight to reach limit")
		default:
			time.Sleep(time.Millisecond)
		}
	}
	if v := int64(e.InFlight()); v > maxInFlight {
		atomic.StoreInt64(&maxInFlight, v)
	}
	require.LessOrEqual(t, atomic.LoadInt64(&maxInFlight), int64(2))
	close(release)
	for _, o := range outers {
		inner := <-o
		<-inner
	}
	e.Wait()
}

func TestDecrementParallelismRespectsFloor(t *testing.T) {
	e := New[int](3, 2)
	e.DecrementParallelism()
	require.Equal(t, 2, e.Parallelism())
	e.DecrementParallelism()
	require.Equal(t, 2, e.Parallelism(), "must not shrink below floor")
}

func TestIncrementParallelismAdmitsWaiter(t *testing.T) {
	e := New[int](1, 1)
	release := make(chan struct{})
	first := e.Submit(context.Background(), func(context.Context) (int, error) {
		<-release
		return 1, nil
	})
	<-first // admitted immediately, consumes the only slot

	second := e.Submit(context.Background(), func(context.Context) (int, error) {
		return 2, nil
	})

	select {
	case <-second:
		t.Fatal("second job should not be admitted while at capacity")
	case <-time.After(20 * time.Millisecond):
	}

	e.IncrementParallelism()
	select {
	case <-second:
	case <-time.After(time.Second):
		t.Fatal("expected second job to be admitted after increment")
	}
	close(release)
	e.Wait()
}

func TestSubmitCancelledBeforeAdmissionReturnsErrorInner(t *testing.T) {
	e := New[int](1, 1)
	release := make(chan struct{})
	defer close(release)
	_ = e.Submit(context.Background(), func(context.Context) (int, error) {
		<-release
		return 0, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	outer := e.Submit(ctx, func(context.Context) (int, error) { return 0, nil })
	inner := <-outer
	res := <-inner
	require.Error(t, res.Err)
}
