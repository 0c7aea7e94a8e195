// Package tuner implements the adaptive tuner: a single background
// goroutine that hill-climbs the executor's parallelism by watching the
// throughput sensor, grounded on the teacher's
// internal/pipeline/resources.go AdaptiveWorkerPool.scaleWorkers — a
// ticker-driven loop reading a resource summary and nudging a worker
// count under a mutex, generalized from memory-pressure-triggered halving
// to throughput-based hill-climbing with two-step direction memory so it
// doesn't oscillate between Increment and Decrement every tick.
package tuner

import (
	"context"
	"time"
)

// Action is the last adjustment the tuner made, remembered so the next
// decision can tell whether that adjustment helped.
type Action int

const (
	None Action = iota
	Increment
	Decrement
)

// Sensor is the subset of *sensor.Sensor the tuner depends on.
type Sensor interface {
	Summarize(windowStart, windowEnd time.Time) SummaryLike
}

// SummaryLike avoids importing the sensor package's concrete Summary type
// so the tuner can be tested against a stub; callers adapt their sensor's
// summary into it through the summarize function passed to New.
type SummaryLike struct {
	AvgParallelism float64
	AvgDurationSec float64
	Throughput     float64
	Count          int
}

// Executor is the subset of *executor.Executor[T] the tuner depends on.
type Executor interface {
	IncrementParallelism()
	DecrementParallelism()
	Parallelism() int
}

// Config holds the tuner's hill-climbing constants.
type Config struct {
	// K multiplies the average job duration to size the lookback window
	// and the poll interval, so the tuner reacts on a timescale matched
	// to how long jobs actually take.
	K float64
	// Threshold is the minimum relative throughput change (fraction)
	// required to call a direction "improved" vs. "noise".
	Threshold float64
	// PollInterval bounds how often the tuner wakes when there is no
	// duration signal yet (i.e. before any job has completed).
	PollInterval time.Duration
	// MinParallelism is the floor the executor itself also enforces;
	// kept here too so the tuner skips a Decrement once parallelism is
	// already at the floor.
	MinParallelism int
}

// DefaultConfig returns the spec's default hill-climbing constants.
func DefaultConfig() Config {
	return Config{
		K:              8,
		Threshold:      0.05,
		PollInterval:   20 * time.Millisecond,
		MinParallelism: 1,
	}
}

// nowFunc is the tuner's clock; a variable so tests can replace it.
var nowFunc = time.Now

// Tuner runs the hill-climbing loop against a sensor and an executor.
type Tuner struct {
	cfg      Config
	sensor   func(start, end time.Time) SummaryLike
	executor Executor

	lastAction     Action
	lastThroughput float64
}

// New builds a Tuner. summarize lets the caller adapt any sensor type
// (notably *sensor.Sensor) into the tuner's minimal SummaryLike shape.
func New(cfg Config, summarize func(start, end time.Time) SummaryLike, exec Executor) *Tuner {
	return &Tuner{cfg: cfg, sensor: summarize, executor: exec}
}

// Run blocks, hill-climbing parallelism until ctx is cancelled.
func (t *Tuner) Run(ctx context.Context) {
	interval := t.cfg.PollInterval
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
		}

		now := nowFunc()
		summary := t.sensor(now.Add(-interval), now)

		if summary.AvgDurationSec > 0 {
			interval = time.Duration(t.cfg.K * summary.AvgDurationSec * float64(time.Second))
			if interval < t.cfg.PollInterval {
				interval = t.cfg.PollInterval
			}
		} else {
			interval = t.cfg.PollInterval
		}

		t.step(summary)
	}
}

// step applies one hill-climbing decision. With no prior action, it tries
// Increment first (probing for headroom). After an action, if throughput
// improved by more than Threshold (relative), the same direction repeats;
// if it got worse (or didn't improve enough), the tuner reverses
// direction — the "two-step memory" that prevents oscillation between
// Increment and Decrement on noisy measurements.
func (t *Tuner) step(summary SummaryLike) {
	defer func() { t.lastThroughput = summary.Throughput }()

	if summary.AvgParallelism < float64(t.executor.Parallelism())-2 {
		t.apply(Decrement)
		return
	}

	if t.lastAction == None {
		t.apply(Increment)
		return
	}

	improved := relativeChange(summary.Throughput, t.lastThroughput) > t.cfg.Threshold
	if improved {
		t.apply(t.lastAction)
		return
	}

	switch t.lastAction {
	case Increment:
		t.apply(Decrement)
	case Decrement:
		t.apply(Increment)
	}
}

func (t *Tuner) apply(a Action) {
	switch a {
	case Increment:
		t.executor.IncrementParallelism()
	case Decrement:
		if t.executor.Parallelism() > t.cfg.MinParallelism {
			t.executor.DecrementParallelism()
		}
	}
	t.lastAction = a
}

func relativeChange(current, previous float64) float64 {
	if previous == 0 {
		if current == 0 {
			return 0
		}
		return 1
	}
	return (current - previous) / previous
}
