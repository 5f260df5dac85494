package transport

import (
	"fmt"

	"github.com/mcsky/twostream/atmosphere"
	"github.com/mcsky/twostream/rng"
)

// MaxSamplePaths caps how many full trajectories a batch run retains for
// display. The cap never biases the aggregate statistics.
const MaxSamplePaths = 50

// PathSample is one retained trajectory with its terminal classification.
type PathSample struct {
	Outcome   State
	Weight    float64
	Positions []float64
}

// Result is the aggregate energy budget of a batch run.
type Result struct {
	Reflectance   float64
	Transmittance float64
	Absorptance   float64

	EnergyReflected   float64
	EnergyTransmitted float64
	EnergyAbsorbed    float64
	TotalEnergy       float64

	NumPhotons  int
	SamplePaths []PathSample
}

// Run fires numPhotons independent packets through the stack and returns
// the aggregate energy budget plus up to MaxSamplePaths trajectories.
// Parameters are validated before any photon is simulated; the call fails
// atomically on invalid input.
func Run(stack *atmosphere.Stack, numPhotons int, weightThreshold float64, src rng.Source) (*Result, error) {
	if numPhotons <= 0 {
		return nil, fmt.Errorf("photon count %d must be positive: %w", numPhotons, atmosphere.ErrInvalidParam)
	}
	eng, err := NewEngine(stack, src, weightThreshold)
	if err != nil {
		return nil, err
	}

	res := &Result{NumPhotons: numPhotons}
	for i := 0; i < numPhotons; i++ {
		p := NewPhoton()
		eng.Simulate(p)

		switch p.State {
		case Reflected:
			res.EnergyReflected += p.Weight
		case Transmitted:
			res.EnergyTransmitted += p.Weight
		case Absorbed:
			// The lost weight, not the residual, is the absorbed energy.
			res.EnergyAbsorbed += 1 - p.Weight
		}

		if len(res.SamplePaths) < MaxSamplePaths {
			res.SamplePaths = append(res.SamplePaths, PathSample{
				Outcome:   p.State,
				Weight:    p.Weight,
				Positions: p.Trajectory,
			})
		}
	}

	// Each packet enters carrying unit energy, so the injected total is the
	// photon count and the three rates are energy fractions of it.
	res.TotalEnergy = float64(numPhotons)
	res.Reflectance = res.EnergyReflected / res.TotalEnergy
	res.Transmittance = res.EnergyTransmitted / res.TotalEnergy
	res.Absorptance = res.EnergyAbsorbed / res.TotalEnergy
	return res, nil
}
