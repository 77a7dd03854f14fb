// Package gambling simulates a gambler's funds over repeated wagers.
//
// A run starts with StartingFunds and plays Periods wagers. Each wager is won
// with probability WinProbability. The stake is either flat or doubled after
// every consecutive loss, and funds may optionally be absorbed at zero: once
// a wager leaves the gambler with nothing, the run freezes at 0 for the rest
// of the horizon.
package gambling

import (
	"fmt"
	"math"

	"github.com/rovshanmuradov/montecarlo/internal/estimate"
	"github.com/rovshanmuradov/montecarlo/internal/sampler"
)

const (
	DefaultStartingFunds         = 1000.0
	DefaultDoublingStartingFunds = 10000.0
	DefaultStake                 = 100.0
	DefaultWinProbability        = 0.5
	DefaultPeriods               = 100
	DefaultActors                = 1000
)

// MinFunds is the floor for funds that have run past the float64 range. A
// doubling run that reaches it stops wagering for the rest of the horizon.
const MinFunds = -math.MaxFloat64

// StakePolicy decides how much is wagered each period.
type StakePolicy int

const (
	// Flat wagers the same stake every period.
	Flat StakePolicy = iota
	// Doubling wagers stake * 2^lostStreak.
	Doubling
)

func (p StakePolicy) String() string {
	switch p {
	case Flat:
		return "flat"
	case Doubling:
		return "doubling"
	default:
		return fmt.Sprintf("StakePolicy(%d)", int(p))
	}
}

// Policy combines a stake policy with the absorbing-at-zero rule.
type Policy struct {
	Stake     StakePolicy `json:"stake"`
	Absorbing bool        `json:"absorbing"`
}

func (p Policy) String() string {
	if p.Absorbing {
		return p.Stake.String() + "/absorbing"
	}
	return p.Stake.String()
}

// Params configures a run.
type Params struct {
	StartingFunds  float64 `json:"starting_funds"`
	Stake          float64 `json:"stake"`
	WinProbability float64 `json:"win_probability"`
	Periods        int     `json:"periods"`
	Policy         Policy  `json:"policy"`
}

// DefaultParams returns the classic parameters for the given policy.
func DefaultParams(policy Policy) Params {
	funds := DefaultStartingFunds
	if policy.Stake == Doubling {
		funds = DefaultDoublingStartingFunds
	}
	return Params{
		StartingFunds:  funds,
		Stake:          DefaultStake,
		WinProbability: DefaultWinProbability,
		Periods:        DefaultPeriods,
		Policy:         policy,
	}
}

// Validate checks the parameters. Win probabilities of exactly 0 and 1 are
// accepted and produce deterministic runs.
func (p Params) Validate() error {
	switch {
	case !(p.StartingFunds > 0) || math.IsInf(p.StartingFunds, 0):
		return estimate.InvalidArgument("starting funds must be positive, got %g", p.StartingFunds)
	case !(p.Stake > 0) || math.IsInf(p.Stake, 0):
		return estimate.InvalidArgument("stake must be positive, got %g", p.Stake)
	case !(p.WinProbability >= 0 && p.WinProbability <= 1):
		return estimate.InvalidArgument("win probability must be within [0, 1], got %g", p.WinProbability)
	case p.Periods < 0:
		return estimate.InvalidArgument("periods must not be negative, got %d", p.Periods)
	case p.Policy.Stake != Flat && p.Policy.Stake != Doubling:
		return estimate.InvalidArgument("unknown stake policy %s", p.Policy.Stake)
	}
	return nil
}

// State is the mutable state of a single run.
type State struct {
	Funds      float64 `json:"funds"`
	Period     int     `json:"period"`
	LostStreak int     `json:"lost_streak"`
}

// PathPoint is the funds at the end of a period. Period 0 is the initial state.
type PathPoint struct {
	Period int     `json:"period"`
	Funds  float64 `json:"funds"`
}

// Path is the funds-vs-period series of a run.
type Path []PathPoint

// Funds returns the funds column of the path.
func (p Path) Funds() []float64 {
	funds := make([]float64, len(p))
	for i, pt := range p {
		funds[i] = pt.Funds
	}
	return funds
}

// Outcome summarizes a finished run.
type Outcome struct {
	GainedOverall bool `json:"gained_overall"`
	WentBroke     bool `json:"went_broke"`
}

// Run is the result of one simulated gambler.
type Run struct {
	Path    Path    `json:"path"`
	Final   State   `json:"final"`
	Outcome Outcome `json:"outcome"`
	// Absorbed is true when the run hit zero funds under the absorbing policy.
	Absorbed bool `json:"absorbed"`
	// AbsorbedAt is the period in which funds reached zero, 0 when not absorbed.
	AbsorbedAt int `json:"absorbed_at,omitempty"`
}

// Won reports the Bernoulli outcome of a uniform draw u against p.
func Won(u, p float64) bool {
	return u <= p
}

// simulate plays one run. params must be valid. The path is left nil when
// record is false.
func simulate(s sampler.Sampler, params Params, record bool) Run {
	state := State{Funds: params.StartingFunds}
	var path Path
	if record {
		path = make(Path, 0, params.Periods+1)
		path = append(path, PathPoint{Period: 0, Funds: state.Funds})
	}

	run := Run{}
	for state.Period < params.Periods {
		state.Period++

		if run.Absorbed {
			if record {
				path = append(path, PathPoint{Period: state.Period, Funds: 0})
			}
			continue
		}

		wager := params.Stake
		if params.Policy.Stake == Doubling {
			wager = math.Ldexp(params.Stake, state.LostStreak)
		}
		if state.Funds == MinFunds || math.IsInf(wager, 1) {
			state.Funds = MinFunds
			if record {
				path = append(path, PathPoint{Period: state.Period, Funds: state.Funds})
			}
			continue
		}

		if Won(s.Draw(sampler.Unit), params.WinProbability) {
			state.Funds += wager
			state.LostStreak = 0
		} else {
			state.Funds -= wager
			if params.Policy.Stake == Doubling {
				state.LostStreak++
			}
		}

		if state.Funds < MinFunds {
			state.Funds = MinFunds
		}

		if params.Policy.Absorbing && state.Funds <= 0 {
			state.Funds = 0
			run.Absorbed = true
			run.AbsorbedAt = state.Period
		}

		if record {
			path = append(path, PathPoint{Period: state.Period, Funds: state.Funds})
		}
	}

	run.Path = path
	run.Final = state
	run.Outcome = Outcome{
		GainedOverall: state.Funds > params.StartingFunds,
		WentBroke:     state.Funds <= 0,
	}
	return run
}
