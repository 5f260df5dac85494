package transport

import (
	"errors"
	"math"
	"testing"

	"github.com/mcsky/twostream/atmosphere"
	"github.com/mcsky/twostream/rng"
)

func uniformStack(t *testing.T, tauMax, omega0, g, albedo float64) *atmosphere.Stack {
	t.Helper()
	s, err := atmosphere.Uniform(tauMax, omega0, g, albedo)
	if err != nil {
		t.Fatalf("Uniform(%v, %v, %v, %v): %v", tauMax, omega0, g, albedo, err)
	}
	return s
}

func newEngine(t *testing.T, s *atmosphere.Stack, src rng.Source, threshold float64) *Engine {
	t.Helper()
	e, err := NewEngine(s, src, threshold)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func TestNewEngineValidation(t *testing.T) {
	stack := uniformStack(t, 1, 0.9, 0, 0)
	src := rng.NewPCG(1)

	for _, threshold := range []float64{0, 1, -0.1, 1.5} {
		if _, err := NewEngine(stack, src, threshold); !errors.Is(err, atmosphere.ErrInvalidParam) {
			t.Errorf("threshold %v: err = %v, want ErrInvalidParam", threshold, err)
		}
	}
	if _, err := NewEngine(nil, src, 0.01); !errors.Is(err, atmosphere.ErrInvalidParam) {
		t.Errorf("nil stack: err = %v, want ErrInvalidParam", err)
	}
	if _, err := NewEngine(stack, nil, 0.01); !errors.Is(err, atmosphere.ErrInvalidParam) {
		t.Errorf("nil source: err = %v, want ErrInvalidParam", err)
	}
}

func TestPropagateInterior(t *testing.T) {
	stack := uniformStack(t, 10, 0.9, 0, 0)
	eng := newEngine(t, stack, rng.NewScripted(math.Exp(-0.5)), 0.01)

	p := NewPhoton()
	if b := eng.Propagate(p); b != NoBoundary {
		t.Fatalf("boundary = %v, want NoBoundary", b)
	}
	if math.Abs(p.Position-0.5) > 1e-12 {
		t.Fatalf("position = %v, want 0.5", p.Position)
	}
	if len(p.Trajectory) != 2 || p.Trajectory[1] != p.Position {
		t.Fatalf("trajectory = %v, want [0 %v]", p.Trajectory, p.Position)
	}
}

func TestPropagateClampsBottom(t *testing.T) {
	stack := uniformStack(t, 1, 0.9, 0, 0)
	eng := newEngine(t, stack, rng.NewScripted(math.Exp(-5)), 0.01)

	p := NewPhoton()
	if b := eng.Propagate(p); b != BottomBoundary {
		t.Fatalf("boundary = %v, want BottomBoundary", b)
	}
	if p.Position != 1 {
		t.Fatalf("position = %v, want exactly tau_max", p.Position)
	}
}

func TestPropagateClampsTop(t *testing.T) {
	stack := uniformStack(t, 1, 0.9, 0, 0)
	eng := newEngine(t, stack, rng.NewScripted(math.Exp(-5)), 0.01)

	p := NewPhoton()
	p.Position = 0.5
	p.Direction = Up
	if b := eng.Propagate(p); b != TopBoundary {
		t.Fatalf("boundary = %v, want TopBoundary", b)
	}
	if p.Position != 0 {
		t.Fatalf("position = %v, want exactly 0", p.Position)
	}
}

func TestInteractDecisionBoundary(t *testing.T) {
	stack := uniformStack(t, 1, 0.5, 0, 0)
	layer := stack.Layer(0)

	// Draw just below omega scatters; a draw equal to omega absorbs.
	eng := newEngine(t, stack, rng.NewScripted(0.49, 0.3), 0.01)
	p := NewPhoton()
	if out := eng.Interact(p, layer); out != Scatter {
		t.Fatalf("draw 0.49 against omega 0.5: outcome = %v, want Scatter", out)
	}
	if p.State != Active {
		t.Fatalf("state after scatter = %v, want Active", p.State)
	}

	eng = newEngine(t, stack, rng.NewScripted(0.5), 0.01)
	p = NewPhoton()
	if out := eng.Interact(p, layer); out != Absorb {
		t.Fatalf("draw 0.50 against omega 0.5: outcome = %v, want Absorb", out)
	}
	if p.State != Absorbed {
		t.Fatalf("state after absorb = %v, want Absorbed", p.State)
	}
}

func TestWeightDecaysEveryInteraction(t *testing.T) {
	stack := uniformStack(t, 1, 0.8, 0, 0)
	layer := stack.Layer(0)
	eng := newEngine(t, stack, rng.NewScripted(0.1, 0.0, 0.9), 0.01)

	p := NewPhoton()
	if out := eng.Interact(p, layer); out != Scatter {
		t.Fatalf("first interaction: outcome = %v, want Scatter", out)
	}
	if math.Abs(p.Weight-0.8) > 1e-12 {
		t.Fatalf("weight after scatter = %v, want 0.8", p.Weight)
	}
	// The absorbing interaction decays the weight too.
	if out := eng.Interact(p, layer); out != Absorb {
		t.Fatalf("second interaction: outcome = %v, want Absorb", out)
	}
	if math.Abs(p.Weight-0.64) > 1e-12 {
		t.Fatalf("weight after absorb = %v, want 0.64", p.Weight)
	}
}

func TestWeightMonotoneNonIncreasing(t *testing.T) {
	stack := uniformStack(t, 1, 0.9, 0.5, 0)
	layer := stack.Layer(0)
	eng := newEngine(t, stack, rng.NewPCG(11), 0.01)

	p := NewPhoton()
	prev := p.Weight
	for i := 0; i < 200 && p.State == Active; i++ {
		eng.Interact(p, layer)
		if p.Weight > prev {
			t.Fatalf("weight rose from %v to %v at interaction %d", prev, p.Weight, i)
		}
		prev = p.Weight
	}
	if p.Weight < 0 || p.Weight > 1 {
		t.Fatalf("weight %v outside [0,1]", p.Weight)
	}
}

func TestIsotropicFreshCoin(t *testing.T) {
	stack := uniformStack(t, 1, 1, 0, 0)
	layer := stack.Layer(0)

	// The new direction comes from a fresh coin flip, independent of the
	// prior direction.
	eng := newEngine(t, stack, rng.NewScripted(0.3, 0.4), 0.01)
	p := NewPhoton()
	p.Direction = Up
	eng.Interact(p, layer)
	if p.Direction != Down {
		t.Fatalf("coin 0.4: direction = %v, want down", p.Direction)
	}

	eng = newEngine(t, stack, rng.NewScripted(0.3, 0.6), 0.01)
	p = NewPhoton()
	p.Direction = Up
	eng.Interact(p, layer)
	if p.Direction != Up {
		t.Fatalf("coin 0.6: direction = %v, want up", p.Direction)
	}
}

func TestIsotropicBalance(t *testing.T) {
	stack := uniformStack(t, 1, 1, 0, 0)
	layer := stack.Layer(0)
	eng := newEngine(t, stack, rng.NewPCG(2), 0.01)

	const trials = 10000
	up := 0
	for i := 0; i < trials; i++ {
		p := NewPhoton()
		eng.Interact(p, layer)
		if p.Direction == Up {
			up++
		}
	}
	frac := float64(up) / trials
	if math.Abs(frac-0.5) > 0.03 {
		t.Errorf("up fraction = %v, want 0.5 within 0.03", frac)
	}
}

func TestHenyeyGreensteinForwardFraction(t *testing.T) {
	tests := []struct {
		g    float64
		seed int64
	}{
		{0.5, 5},
		{0.85, 6},
		{-0.3, 7},
	}
	const trials = 20000
	for _, tt := range tests {
		stack := uniformStack(t, 1, 1, tt.g, 0)
		layer := stack.Layer(0)
		eng := newEngine(t, stack, rng.NewPCG(tt.seed), 0.01)

		forward := 0
		for i := 0; i < trials; i++ {
			p := NewPhoton()
			eng.Interact(p, layer)
			if p.Direction == Down {
				forward++
			}
		}
		frac := float64(forward) / trials
		want := (1 + tt.g) / 2
		if math.Abs(frac-want) > 0.02 {
			t.Errorf("g=%v: forward fraction = %v, want %v within 0.02", tt.g, frac, want)
		}
	}
}

func TestHenyeyGreensteinExtremes(t *testing.T) {
	// g=1 always continues, g=-1 always reverses, for any draw.
	stack := uniformStack(t, 1, 1, 1, 0)
	eng := newEngine(t, stack, rng.NewScripted(0.2, 0.999), 0.01)
	p := NewPhoton()
	eng.Interact(p, stack.Layer(0))
	if p.Direction != Down {
		t.Fatalf("g=1: direction = %v, want down", p.Direction)
	}

	stack = uniformStack(t, 1, 1, -1, 0)
	eng = newEngine(t, stack, rng.NewScripted(0.2, 0.0), 0.01)
	p = NewPhoton()
	eng.Interact(p, stack.Layer(0))
	if p.Direction != Up {
		t.Fatalf("g=-1: direction = %v, want up", p.Direction)
	}
}

func TestSimulateSurfaceReflectionWalk(t *testing.T) {
	// Scripted walk: overshoot to the surface, reflect off it, overshoot
	// back out the top. No in-medium interactions touch the weight.
	stack := uniformStack(t, 1, 1, 1, 1)
	eng := newEngine(t, stack, rng.NewScripted(math.Exp(-2), 0.0, math.Exp(-2)), 0.01)

	p := NewPhoton()
	eng.Simulate(p)

	if p.State != Reflected {
		t.Fatalf("state = %v, want Reflected", p.State)
	}
	if p.Weight != 1 {
		t.Fatalf("weight = %v, want 1", p.Weight)
	}
	if p.Position != 0 {
		t.Fatalf("position = %v, want 0", p.Position)
	}
	want := []float64{0, 1, 0}
	if len(p.Trajectory) != len(want) {
		t.Fatalf("trajectory = %v, want %v", p.Trajectory, want)
	}
	for i := range want {
		if p.Trajectory[i] != want[i] {
			t.Fatalf("trajectory = %v, want %v", p.Trajectory, want)
		}
	}
}

func TestSimulateThresholdTermination(t *testing.T) {
	// Forward-only scattering marches the photon down one optical depth per
	// jump while the weight halves per interaction. The third propagation
	// finds the weight below threshold and absorbs without interacting.
	stack := uniformStack(t, 10, 0.5, 1, 0)
	e1 := math.Exp(-1)
	eng := newEngine(t, stack, rng.NewScripted(e1, 0.4, 0.3, e1, 0.4, 0.3, e1), 0.3)

	p := NewPhoton()
	eng.Simulate(p)

	if p.State != Absorbed {
		t.Fatalf("state = %v, want Absorbed", p.State)
	}
	if math.Abs(p.Weight-0.25) > 1e-12 {
		t.Fatalf("weight = %v, want 0.25", p.Weight)
	}
	if math.Abs(p.Position-3) > 1e-9 {
		t.Fatalf("position = %v, want 3", p.Position)
	}
	if len(p.Trajectory) != 4 {
		t.Fatalf("trajectory has %d entries, want 4: %v", len(p.Trajectory), p.Trajectory)
	}
}

func TestSimulateMultiLayerTerminates(t *testing.T) {
	s, err := atmosphere.NewStack(0,
		atmosphere.Layer{Thickness: 1, Omega0: 1, G: 0},
		atmosphere.Layer{Thickness: 1, Omega0: 1, G: 0.85},
	)
	if err != nil {
		t.Fatalf("NewStack: %v", err)
	}
	eng := newEngine(t, s, rng.NewPCG(8), 0.01)

	for i := 0; i < 200; i++ {
		p := NewPhoton()
		eng.Simulate(p)
		if !p.State.Terminal() {
			t.Fatalf("photon %d ended non-terminal: %v", i, p.State)
		}
		if p.State == Absorbed {
			t.Fatalf("photon %d absorbed in a conservative stack", i)
		}
	}
}
