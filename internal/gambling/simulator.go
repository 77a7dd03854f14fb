// =============================
// File: internal/gambling/simulator.go
// =============================
package gambling

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rovshanmuradov/montecarlo/internal/estimate"
	"github.com/rovshanmuradov/montecarlo/internal/sampler"
)

// Simulator runs gamblers.
type Simulator struct {
	sampler   sampler.Sampler
	workers   int
	seed      uint64
	keepPaths bool
	logger    *zap.Logger
}

// NewSimulator creates a sequential simulator drawing from s. A nil sampler
// means the process-wide one.
func NewSimulator(s sampler.Sampler, logger *zap.Logger) *Simulator {
	if s == nil {
		s = sampler.Global()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Simulator{
		sampler: s,
		workers: 1,
		logger:  logger,
	}
}

// SetParallelism runs batch actors on workers goroutines. Actor i draws from
// stream i of seed, so the batch is identical for any worker count above one.
func (sim *Simulator) SetParallelism(workers int, seed uint64) *Simulator {
	if workers < 1 {
		workers = 1
	}
	sim.workers = workers
	sim.seed = seed
	return sim
}

// KeepPaths makes Batch return every actor's path.
func (sim *Simulator) KeepPaths(keep bool) *Simulator {
	sim.keepPaths = keep
	return sim
}

// Run simulates a single gambler.
func (sim *Simulator) Run(params Params) (Run, error) {
	if err := params.Validate(); err != nil {
		return Run{}, err
	}

	run := simulate(sim.sampler, params, true)

	sim.logger.Debug("Gambler simulated",
		zap.Stringer("policy", params.Policy),
		zap.Int("periods", params.Periods),
		zap.Float64("final_funds", run.Final.Funds),
		zap.Bool("gained", run.Outcome.GainedOverall),
		zap.Bool("broke", run.Outcome.WentBroke))

	return run, nil
}

// BatchResult aggregates the outcomes of many gamblers.
type BatchResult struct {
	Params         Params  `json:"params"`
	Actors         int     `json:"actors"`
	Gains          int     `json:"gains"`
	Brokes         int     `json:"brokes"`
	GainPercent    float64 `json:"gain_percent"`
	LossPercent    float64 `json:"loss_percent"`
	BrokePercent   float64 `json:"broke_percent"`
	MeanFinalFunds float64 `json:"mean_final_funds"`
	Paths          []Path  `json:"paths,omitempty"`
}

// Batch simulates actors independent gamblers with identical parameters.
func (sim *Simulator) Batch(ctx context.Context, actors int, params Params) (BatchResult, error) {
	if actors <= 0 {
		return BatchResult{}, estimate.InvalidArgument("actors must be positive, got %d", actors)
	}
	if err := params.Validate(); err != nil {
		return BatchResult{}, err
	}

	var (
		runs []Run
		err  error
	)
	if sim.workers <= 1 {
		runs, err = sim.batchSequential(ctx, actors, params)
	} else {
		runs, err = sim.batchParallel(ctx, actors, params)
	}
	if err != nil {
		return BatchResult{}, err
	}

	res := summarize(params, runs, sim.keepPaths)

	sim.logger.Debug("Gambling batch simulated",
		zap.Stringer("policy", params.Policy),
		zap.Int("actors", actors),
		zap.Float64("gain_percent", res.GainPercent),
		zap.Float64("broke_percent", res.BrokePercent),
		zap.Float64("mean_final_funds", res.MeanFinalFunds))

	return res, nil
}

func (sim *Simulator) batchSequential(ctx context.Context, actors int, params Params) ([]Run, error) {
	runs := make([]Run, 0, actors)
	for i := 0; i < actors; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		runs = append(runs, simulate(sim.sampler, params, sim.keepPaths))
	}
	return runs, nil
}

func (sim *Simulator) batchParallel(ctx context.Context, actors int, params Params) ([]Run, error) {
	runs := make([]Run, actors)
	streams := sampler.NewStreams(sim.seed)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(sim.workers)

	for i := 0; i < actors; i++ {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return fmt.Errorf("actor %d: %w", i, err)
			}
			runs[i] = simulate(streams.Stream(i), params, sim.keepPaths)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return runs, nil
}

func summarize(params Params, runs []Run, keepPaths bool) BatchResult {
	res := BatchResult{
		Params: params,
		Actors: len(runs),
	}

	mean := 0.0
	for i, r := range runs {
		if r.Outcome.GainedOverall {
			res.Gains++
		}
		if r.Outcome.WentBroke {
			res.Brokes++
		}
		mean += (r.Final.Funds - mean) / float64(i+1)
		if keepPaths {
			res.Paths = append(res.Paths, r.Path)
		}
	}

	n := float64(len(runs))
	res.GainPercent = 100 * float64(res.Gains) / n
	res.LossPercent = 100 - res.GainPercent
	res.BrokePercent = 100 * float64(res.Brokes) / n
	res.MeanFinalFunds = mean
	return res
}
