package transport

import (
	"fmt"

	"github.com/mcsky/twostream/atmosphere"
	"github.com/mcsky/twostream/rng"
)

// Engine advances photons through propagation-interaction cycles against a
// layer stack. A single-layer scene is just a one-entry stack; the engine
// never special-cases it.
type Engine struct {
	stack           *atmosphere.Stack
	src             rng.Source
	weightThreshold float64
}

// NewEngine binds the engine to a stack and random source. The weight
// threshold is the Russian-roulette cutoff below which a packet is counted
// as absorbed.
func NewEngine(stack *atmosphere.Stack, src rng.Source, weightThreshold float64) (*Engine, error) {
	if stack == nil {
		return nil, fmt.Errorf("nil layer stack: %w", atmosphere.ErrInvalidParam)
	}
	if src == nil {
		return nil, fmt.Errorf("nil random source: %w", atmosphere.ErrInvalidParam)
	}
	if weightThreshold <= 0 || weightThreshold >= 1 {
		return nil, fmt.Errorf("weight threshold %g outside (0,1): %w", weightThreshold, atmosphere.ErrInvalidParam)
	}
	return &Engine{stack: stack, src: src, weightThreshold: weightThreshold}, nil
}

// Stack returns the layer stack the engine runs against.
func (e *Engine) Stack() *atmosphere.Stack { return e.stack }

// WeightThreshold returns the Russian-roulette cutoff.
func (e *Engine) WeightThreshold() float64 { return e.weightThreshold }

// Propagate jumps the photon to its next interaction site, or to whichever
// boundary it exits through first. Landing exactly on a boundary counts as
// reaching it, never as an in-medium interaction.
func (e *Engine) Propagate(p *Photon) Boundary {
	step := SampleFreePath(e.src)
	pos := p.Position + p.Direction.Sign()*step
	switch {
	case pos <= 0:
		p.Position = 0
		p.Trajectory = append(p.Trajectory, 0)
		return TopBoundary
	case pos >= e.stack.TauMax():
		p.Position = e.stack.TauMax()
		p.Trajectory = append(p.Trajectory, p.Position)
		return BottomBoundary
	default:
		p.Position = pos
		p.Trajectory = append(p.Trajectory, pos)
		return NoBoundary
	}
}

// Interact resolves one interaction against the given layer. The packet
// weight decays by the single scattering albedo on every interaction,
// scatter and absorb alike.
func (e *Engine) Interact(p *Photon, l atmosphere.Layer) Outcome {
	p.Weight *= l.Omega0
	if e.src.Float64() < l.Omega0 {
		e.scatter(p, l.G)
		return Scatter
	}
	p.State = Absorbed
	return Absorb
}

// scatter updates the travel direction for a scattering event.
func (e *Engine) scatter(p *Photon, g float64) {
	if g == 0 {
		// Isotropic two-stream scatter: a fresh coin flip, independent of
		// the prior direction.
		if e.src.Float64() < 0.5 {
			p.Direction = Down
		} else {
			p.Direction = Up
		}
		return
	}
	// Henyey-Greenstein reduced to two streams: continue forward with
	// probability (1+g)/2, otherwise reverse.
	pForward := (1 + g) / 2
	if e.src.Float64() >= pForward {
		p.Direction = p.Direction.Flip()
	}
}

// Simulate runs one photon to its terminal state. Termination is almost
// sure: every interaction multiplies the weight by omega_0, so the weight
// either exits through a boundary first or sinks below the threshold.
func (e *Engine) Simulate(p *Photon) {
	for p.State == Active {
		switch e.Propagate(p) {
		case TopBoundary:
			p.State = Reflected
		case BottomBoundary:
			if e.src.Float64() < e.stack.SurfaceAlbedo() {
				p.Direction = Up
			} else {
				p.State = Transmitted
			}
		default:
			if p.Weight < e.weightThreshold {
				p.State = Absorbed
				break
			}
			// A position exactly on a shared layer boundary belongs to no
			// layer; skip the interaction and let the next jump resolve it.
			if layer, ok := e.stack.LayerAt(p.Position); ok {
				e.Interact(p, layer)
			}
		}
	}
}
