// Package engine composes the kernel, managed executor, throughput
// sensor, and adaptive tuner into the single entry point the detection
// and recognition stages call to run a forward pass, grounded on the
// teacher's internal/detector/detector.go RunInference /
// internal/recognizer/recognizer.go equivalents, which similarly own a
// session and expose one RunInference method while hiding session
// lifetime management from callers.
package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/speedreader/speedreader/internal/executor"
	"github.com/speedreader/speedreader/internal/kernel"
	"github.com/speedreader/speedreader/internal/sensor"
	"github.com/speedreader/speedreader/internal/tuner"
)

// Config controls engine construction.
type Config struct {
	InitialParallelism int
	MinParallelism     int
	Tuner              tuner.Config
	// Metrics is optional; a nil Metrics disables instrumentation without
	// changing behavior, per the spec's "missing metrics must not change
	// behavior" contract.
	Metrics *Metrics
	Logger  *slog.Logger
}

// Engine runs Buffer->Buffer inference jobs through a managed executor,
// recording throughput and adaptively tuning parallelism.
type Engine struct {
	kernel  kernel.Kernel
	exec    *executor.Executor[kernel.Buffer]
	sensor  *sensor.Sensor
	tuner   *tuner.Tuner
	cancel  context.CancelFunc
	logger  *slog.Logger
	metrics *Metrics
}

// New builds an Engine around an already-constructed kernel.Kernel.
func New(k kernel.Kernel, cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	floor := cfg.MinParallelism
	if floor < 1 {
		floor = 1
	}
	initial := cfg.InitialParallelism
	if initial < floor {
		initial = floor
	}

	s := sensor.New()
	exec := executor.New[kernel.Buffer](initial, floor)
	tunerCfg := cfg.Tuner
	if tunerCfg.K == 0 {
		tunerCfg = tuner.DefaultConfig()
	}
	tunerCfg.MinParallelism = floor

	tn := tuner.New(tunerCfg, func(start, end time.Time) tuner.SummaryLike {
		sum := s.Summarize(start, end)
		s.Prune(start.Add(-end.Sub(start)))
		return tuner.SummaryLike{
			AvgParallelism: sum.AvgParallelism,
			AvgDurationSec: sum.AvgDurationSec,
			Throughput:     sum.Throughput,
			Count:          sum.Count,
		}
	}, exec)

	return &Engine{
		kernel:  k,
		exec:    exec,
		sensor:  s,
		tuner:   tn,
		logger:  logger,
		metrics: cfg.Metrics,
	}
}

// Start launches the adaptive tuner's background goroutine. Call Close to
// stop it.
func (e *Engine) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	go e.tuner.Run(ctx)
	e.logger.Debug("engine started", "parallelism", e.exec.Parallelism())
}

// Close stops the tuner and releases the kernel's native session.
func (e *Engine) Close() error {
	if e.cancel != nil {
		e.cancel()
	}
	return e.kernel.Close()
}

// Inner is the per-job result future: exactly one executor.Result is sent
// then the channel is closed.
type Inner <-chan executor.Result[kernel.Buffer]

// Outer is the admission future Infer returns: exactly one Inner is sent,
// as soon as the job clears the executor's admission decision, then the
// channel is closed. Preserving this two-level shape (rather than
// blocking inside Infer for the full round trip) is load-bearing: it lets
// callers measure queue wait separately from execution time, and lets
// independent jobs be submitted without waiting on each other's
// completion, per spec §4.8/§9's "a naive flattening breaks backpressure
// semantics."
type Outer <-chan Inner

// Infer submits one forward pass through the managed executor and
// returns immediately with the outer admission future; the caller reads
// it (then its inner future) to get the result, exactly mirroring
// executor.Executor.Submit's own two-level shape. Completion is recorded
// into the throughput sensor and, if configured, Prometheus
// histograms/gauges from a goroutine that doesn't block the submitter.
func (e *Engine) Infer(ctx context.Context, input kernel.Buffer) Outer {
	start := time.Now()
	subOuter := e.exec.Submit(ctx, func(ctx context.Context) (kernel.Buffer, error) {
		return e.kernel.Execute(ctx, input)
	})

	outer := make(chan Inner, 1)
	go func() {
		defer close(outer)
		subInner := <-subOuter
		inner := make(chan executor.Result[kernel.Buffer], 1)
		outer <- inner
		go func() {
			defer close(inner)
			res := <-subInner
			end := time.Now()

			if res.Err == nil {
				e.sensor.Record(start, end)
			}
			if e.metrics != nil {
				e.metrics.observe(end.Sub(start), e.exec.Parallelism(), e.exec.InFlight(), res.Err == nil)
			}
			inner <- res
		}()
	}()
	return outer
}

// Await blocks on both levels of a future returned by Infer, for callers
// that have no use for submitting several jobs before waiting on any of
// them.
func Await(outer Outer) (kernel.Buffer, error) {
	inner := <-outer
	res := <-inner
	return res.Value, res.Err
}

// Parallelism reports the executor's current admission limit, exposed for
// tests and the CLI's diagnostic output.
func (e *Engine) Parallelism() int { return e.exec.Parallelism() }

// InFlight reports the number of jobs currently holding an executor slot.
func (e *Engine) InFlight() int { return e.exec.InFlight() }
