package main

import (
	"math"
	"sync"

	"github.com/mcsky/twostream/rng"
	"github.com/mcsky/twostream/transport"
)

// Target is the observed energy budget the retrieval tries to match.
type Target struct {
	Reflectance   float64 `json:"reflectance"`
	Transmittance float64 `json:"transmittance"`
	Absorptance   float64 `json:"absorptance"`
}

// penaltyMisfit is returned when a candidate column cannot be built.
// Any real misfit is below 3, so this pushes the search away cleanly.
const penaltyMisfit = 10.0

// FitnessEvaluator scores candidate columns against the target budget.
type FitnessEvaluator struct {
	params          *ParamVector
	photons         int
	seeds           []int64
	weightThreshold float64
	target          Target

	// Best candidate tracking
	mu         sync.Mutex
	bestMisfit float64
	bestBudget Target
	lastBudget Target // budget from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, photons int, seeds []int64, weightThreshold float64, target Target) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:          params,
		photons:         photons,
		seeds:           seeds,
		weightThreshold: weightThreshold,
		target:          target,
		bestMisfit:      math.Inf(1),
	}
}

// BestBudget returns the budget achieved by the best candidate so far.
func (fe *FitnessEvaluator) BestBudget() Target {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestBudget
}

// LastBudget returns the budget from the most recent evaluation.
func (fe *FitnessEvaluator) LastBudget() Target {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastBudget
}

// Evaluate runs the candidate column once per seed, averages the energy
// budgets, and returns the squared misfit against the target (lower =
// better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	stack, err := fe.params.ToStack(x)
	if err != nil {
		return penaltyMisfit
	}

	// Run all seeds in parallel; the column is read-only during a run
	budgets := make([]Target, len(fe.seeds))
	failed := make([]bool, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			res, err := transport.Run(stack, fe.photons, fe.weightThreshold, rng.NewPCG(s))
			if err != nil {
				failed[idx] = true
				return
			}
			budgets[idx] = Target{
				Reflectance:   res.Reflectance,
				Transmittance: res.Transmittance,
				Absorptance:   res.Absorptance,
			}
		}(i, seed)
	}
	wg.Wait()

	var mean Target
	n := 0
	for i, b := range budgets {
		if failed[i] {
			continue
		}
		mean.Reflectance += b.Reflectance
		mean.Transmittance += b.Transmittance
		mean.Absorptance += b.Absorptance
		n++
	}
	if n == 0 {
		return penaltyMisfit
	}
	mean.Reflectance /= float64(n)
	mean.Transmittance /= float64(n)
	mean.Absorptance /= float64(n)

	misfit := fe.misfit(mean)

	fe.mu.Lock()
	fe.lastBudget = mean
	if misfit < fe.bestMisfit {
		fe.bestMisfit = misfit
		fe.bestBudget = mean
	}
	fe.mu.Unlock()

	return misfit
}

// misfit is the squared error between a budget and the target, summed
// over the three fate fractions.
func (fe *FitnessEvaluator) misfit(b Target) float64 {
	dr := b.Reflectance - fe.target.Reflectance
	dt := b.Transmittance - fe.target.Transmittance
	da := b.Absorptance - fe.target.Absorptance
	return dr*dr + dt*dt + da*da
}
