// Package executor implements the managed executor: a bounded worker pool
// exposing two-level futures (a Future<Future<T>>, modeled in Go as a
// channel of channels) so a caller can observe admission/backpressure
// separately from job completion, and whose parallelism can be resized
// live by the adaptive tuner.
//
// The concurrency idiom — a single mutex guarding a small integer state
// machine, FIFO waiters woken by closing a channel, goroutines handed off
// work rather than polling — is grounded on the teacher's
// internal/pipeline/resources.go ResourceManager/AcquireGoroutine and
// internal/pipeline/parallel.go worker fan-out, generalized from a fixed
// semaphore to one whose capacity can grow and shrink while jobs are in
// flight.
package executor

import (
	"context"
	"sync"

	"github.com/speedreader/speedreader/internal/faults"
)

// Job is a unit of work submitted to the executor.
type Job[T any] func(ctx context.Context) (T, error)

// Result is a completed job's outcome.
type Result[T any] struct {
	Value T
	Err   error
}

// Future is a channel that receives exactly one value.
type Future[T any] <-chan T

// Executor is a resizable bounded worker pool. The zero value is not
// usable; construct with New.
type Executor[T any] struct {
	mu      sync.Mutex
	limit   int
	floor   int
	active  int
	waiters []chan struct{}
	wg      sync.WaitGroup
}

// New builds an Executor admitting up to parallelism concurrent jobs, never
// shrinking below floor (the spec's decrement floor, minimum 1).
func New[T any](parallelism, floor int) *Executor[T] {
	if floor < 1 {
		floor = 1
	}
	if parallelism < floor {
		parallelism = floor
	}
	return &Executor[T]{limit: parallelism, floor: floor}
}

// Submit enqueues a job and returns the outer future: it resolves as soon
// as an admission decision is made (the job acquired a slot, or ctx was
// cancelled while waiting), carrying the inner future that resolves when
// the job itself completes.
func (e *Executor[T]) Submit(ctx context.Context, job Job[T]) Future[Future[Result[T]]] {
	outer := make(chan Future[Result[T]], 1)
	go func() {
		defer close(outer)
		if err := e.acquire(ctx); err != nil {
			inner := make(chan Result[T], 1)
			inner <- Result[T]{Err: err}
			close(inner)
			outer <- inner
			return
		}
		inner := make(chan Result[T], 1)
		outer <- inner

		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			defer e.release()
			v, err := job(ctx)
			inner <- Result[T]{Value: v, Err: err}
			close(inner)
		}()
	}()
	return outer
}

// acquire blocks, FIFO, until a slot is available under the current limit
// or ctx is done.
func (e *Executor[T]) acquire(ctx context.Context) error {
	e.mu.Lock()
	if e.active < e.limit {
		e.active++
		e.mu.Unlock()
		return nil
	}
	wait := make(chan struct{})
	e.waiters = append(e.waiters, wait)
	e.mu.Unlock()

	select {
	case <-wait:
		return nil
	case <-ctx.Done():
		e.mu.Lock()
		for i, w := range e.waiters {
			if w == wait {
				e.waiters = append(e.waiters[:i], e.waiters[i+1:]...)
				break
			}
		}
		e.mu.Unlock()
		return faults.New(faults.KindCancelled, "executor.acquire", ctx.Err())
	}
}

// release hands the freed slot to the oldest waiter, if the current limit
// still has room for one (it may not, if the limit was just decremented),
// otherwise shrinks the active count.
func (e *Executor[T]) release() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.active--
	if len(e.waiters) > 0 && e.active < e.limit {
		w := e.waiters[0]
		e.waiters = e.waiters[1:]
		e.active++
		close(w)
	}
}

// IncrementParallelism raises the admission limit by one and, if a waiter
// is queued, immediately admits it.
func (e *Executor[T]) IncrementParallelism() {
	e.mu.Lock()
	e.limit++
	if len(e.waiters) > 0 && e.active < e.limit {
		w := e.waiters[0]
		e.waiters = e.waiters[1:]
		e.active++
		close(w)
	}
	e.mu.Unlock()
}

// DecrementParallelism lowers the admission limit by one, never below
// floor. The effect is gradual: in-flight jobs run to completion; the
// reduced limit only throttles future admissions.
func (e *Executor[T]) DecrementParallelism() {
	e.mu.Lock()
	if e.limit > e.floor {
		e.limit--
	}
	e.mu.Unlock()
}

// Parallelism returns the current admission limit.
func (e *Executor[T]) Parallelism() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.limit
}

// InFlight returns the number of jobs currently holding a slot.
func (e *Executor[T]) InFlight() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

// Wait blocks until every submitted job that has been admitted has
// completed. It does not stop accepting new Submit calls; callers should
// stop submitting before calling Wait if they want a clean drain.
func (e *Executor[T]) Wait() {
	e.wg.Wait()
}
