// =============================
// File: internal/estimate/aggregator.go
// =============================
package estimate

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rovshanmuradov/montecarlo/internal/sampler"
)

// Trial runs one estimation using the given sampler.
type Trial func(s sampler.Sampler) (Result, error)

// Aggregator repeats a trial and summarizes the results.
//
// With one worker every trial draws from the configured sampler in order.
// With more workers trial i draws from stream i of the configured seed, so the
// series is identical for any worker count above one.
type Aggregator struct {
	sampler  sampler.Sampler
	workers  int
	seed     uint64
	progress Progress
	logger   *zap.Logger
}

// Progress is told how many units of work are done out of total. It may be
// called from several goroutines.
type Progress func(done, total int)

// NewAggregator creates a sequential aggregator drawing from s.
func NewAggregator(s sampler.Sampler, logger *zap.Logger) *Aggregator {
	if s == nil {
		s = sampler.Global()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{
		sampler: s,
		workers: 1,
		logger:  logger,
	}
}

// SetParallelism enables parallel trials on workers goroutines, each trial
// seeded from its own stream derived from seed.
func (a *Aggregator) SetParallelism(workers int, seed uint64) *Aggregator {
	if workers < 1 {
		workers = 1
	}
	a.workers = workers
	a.seed = seed
	return a
}

// SetProgress installs fn to be called after every finished trial of Repeat
// and every finished iteration of Sweep.
func (a *Aggregator) SetProgress(fn Progress) *Aggregator {
	a.progress = fn
	return a
}

// Repeat runs trial tests times and returns every result together with the mean.
func (a *Aggregator) Repeat(ctx context.Context, tests int, trial Trial) (Aggregate, error) {
	return a.repeat(ctx, tests, trial, a.progress)
}

func (a *Aggregator) repeat(ctx context.Context, tests int, trial Trial, progress Progress) (Aggregate, error) {
	if tests <= 0 {
		return Aggregate{}, InvalidArgument("tests must be positive, got %d", tests)
	}
	if trial == nil {
		return Aggregate{}, InvalidArgument("trial must not be nil")
	}

	var (
		series TrialSeries
		err    error
	)
	if a.workers <= 1 {
		series, err = a.repeatSequential(ctx, tests, trial, progress)
	} else {
		series, err = a.repeatParallel(ctx, tests, trial, progress)
	}
	if err != nil {
		return Aggregate{}, err
	}

	agg := Aggregate{
		Trials: series,
		Mean:   series.Mean(),
	}

	a.logger.Debug("Trials aggregated",
		zap.Int("tests", tests),
		zap.Int("workers", a.workers),
		zap.Float64("mean", agg.Mean))

	return agg, nil
}

func (a *Aggregator) repeatSequential(ctx context.Context, tests int, trial Trial, progress Progress) (TrialSeries, error) {
	series := make(TrialSeries, 0, tests)
	for i := 0; i < tests; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r, err := trial(a.sampler)
		if err != nil {
			return nil, fmt.Errorf("trial %d failed: %w", i, err)
		}
		series = append(series, r)
		if progress != nil {
			progress(i+1, tests)
		}
	}
	return series, nil
}

func (a *Aggregator) repeatParallel(ctx context.Context, tests int, trial Trial, progress Progress) (TrialSeries, error) {
	series := make(TrialSeries, tests)
	streams := sampler.NewStreams(a.seed)
	var done atomic.Int64

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)

	for i := 0; i < tests; i++ {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			r, err := trial(streams.Stream(i))
			if err != nil {
				return fmt.Errorf("trial %d failed: %w", i, err)
			}
			series[i] = r
			if progress != nil {
				progress(int(done.Add(1)), tests)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return series, nil
}
