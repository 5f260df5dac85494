package atmosphere

import (
	"errors"
	"math"
	"testing"
)

func mustStack(t *testing.T, albedo float64, layers ...Layer) *Stack {
	t.Helper()
	s, err := NewStack(albedo, layers...)
	if err != nil {
		t.Fatalf("NewStack: %v", err)
	}
	return s
}

func TestBoundaryRebuild(t *testing.T) {
	s := mustStack(t, 0.0,
		Layer{Thickness: 0.5, Omega0: 0.9, G: 0.0},
		Layer{Thickness: 1.0, Omega0: 0.9, G: 0.0},
		Layer{Thickness: 2.0, Omega0: 0.9, G: 0.0},
	)

	wantTops := []float64{0, 0.5, 1.5}
	wantBottoms := []float64{0.5, 1.5, 3.5}
	for i, l := range s.Layers() {
		if math.Abs(l.Top-wantTops[i]) > 1e-12 {
			t.Errorf("layer %d top = %v, want %v", i, l.Top, wantTops[i])
		}
		if math.Abs(l.Bottom-wantBottoms[i]) > 1e-12 {
			t.Errorf("layer %d bottom = %v, want %v", i, l.Bottom, wantBottoms[i])
		}
	}
	if got := s.TauMax(); math.Abs(got-3.5) > 1e-12 {
		t.Errorf("TauMax = %v, want 3.5", got)
	}
}

func TestBoundsAfterEdits(t *testing.T) {
	s := mustStack(t, 0.2, Layer{Thickness: 1.0, Omega0: 0.9, G: 0.0})

	if err := s.AddLayer(Layer{Thickness: 2.0, Omega0: 0.99, G: 0.85}); err != nil {
		t.Fatalf("AddLayer: %v", err)
	}
	if got := s.TauMax(); got != 3.0 {
		t.Fatalf("TauMax after add = %v, want 3.0", got)
	}
	if got := s.Layer(1).Top; got != 1.0 {
		t.Fatalf("layer 1 top = %v, want 1.0", got)
	}

	// Thickening the top layer shifts everything below it.
	if err := s.SetLayer(0, Layer{Thickness: 1.5, Omega0: 0.9, G: 0.0}); err != nil {
		t.Fatalf("SetLayer: %v", err)
	}
	if got := s.Layer(1).Top; got != 1.5 {
		t.Fatalf("layer 1 top after thickening = %v, want 1.5", got)
	}
	if got := s.TauMax(); got != 3.5 {
		t.Fatalf("TauMax after thickening = %v, want 3.5", got)
	}

	if err := s.RemoveLayer(0); err != nil {
		t.Fatalf("RemoveLayer: %v", err)
	}
	if got := s.Layer(0).Top; got != 0 {
		t.Fatalf("surviving layer top = %v, want 0", got)
	}
	if got := s.TauMax(); got != 2.0 {
		t.Fatalf("TauMax after remove = %v, want 2.0", got)
	}
}

func TestValidation(t *testing.T) {
	valid := Layer{Thickness: 1.0, Omega0: 0.9, G: 0.0}
	tests := []struct {
		name   string
		albedo float64
		layer  Layer
	}{
		{"zero thickness", 0.2, Layer{Thickness: 0, Omega0: 0.9, G: 0}},
		{"negative thickness", 0.2, Layer{Thickness: -1, Omega0: 0.9, G: 0}},
		{"omega below range", 0.2, Layer{Thickness: 1, Omega0: -0.1, G: 0}},
		{"omega above range", 0.2, Layer{Thickness: 1, Omega0: 1.1, G: 0}},
		{"g below range", 0.2, Layer{Thickness: 1, Omega0: 0.9, G: -1.5}},
		{"g above range", 0.2, Layer{Thickness: 1, Omega0: 0.9, G: 1.5}},
		{"albedo below range", -0.1, valid},
		{"albedo above range", 1.1, valid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewStack(tt.albedo, tt.layer)
			if !errors.Is(err, ErrInvalidParam) {
				t.Fatalf("NewStack error = %v, want ErrInvalidParam", err)
			}
		})
	}
}

func TestValidationBoundsInclusive(t *testing.T) {
	// Domain endpoints are legal values.
	if _, err := NewStack(0.0, Layer{Thickness: 1, Omega0: 0, G: -1}); err != nil {
		t.Fatalf("lower endpoints rejected: %v", err)
	}
	if _, err := NewStack(1.0, Layer{Thickness: 1, Omega0: 1, G: 1}); err != nil {
		t.Fatalf("upper endpoints rejected: %v", err)
	}
}

func TestLayerLimits(t *testing.T) {
	s := mustStack(t, 0.0, Layer{Thickness: 1, Omega0: 0.9, G: 0})

	if err := s.RemoveLayer(0); !errors.Is(err, ErrLayerLimit) {
		t.Fatalf("removing last layer: err = %v, want ErrLayerLimit", err)
	}

	for s.Len() < MaxLayers {
		if err := s.AddLayer(Layer{Thickness: 1, Omega0: 0.9, G: 0}); err != nil {
			t.Fatalf("AddLayer at %d layers: %v", s.Len(), err)
		}
	}
	if err := s.AddLayer(Layer{Thickness: 1, Omega0: 0.9, G: 0}); !errors.Is(err, ErrLayerLimit) {
		t.Fatalf("adding beyond max: err = %v, want ErrLayerLimit", err)
	}
	if s.Len() != MaxLayers {
		t.Fatalf("Len = %d after rejected add, want %d", s.Len(), MaxLayers)
	}
}

func TestLayerAt(t *testing.T) {
	s := mustStack(t, 0.0,
		Layer{Thickness: 0.5, Omega0: 0.1, G: 0},
		Layer{Thickness: 1.0, Omega0: 0.2, G: 0},
		Layer{Thickness: 2.0, Omega0: 0.3, G: 0},
	)

	tests := []struct {
		tau       float64
		wantOmega float64
		wantOK    bool
	}{
		{0.25, 0.1, true},
		{1.0, 0.2, true},
		{3.4, 0.3, true},
		{0.0, 0, false},  // top of atmosphere
		{0.5, 0, false},  // shared boundary belongs to neither
		{1.5, 0, false},  // shared boundary
		{3.5, 0, false},  // surface
		{99.0, 0, false}, // outside the stack
	}
	for _, tt := range tests {
		l, ok := s.LayerAt(tt.tau)
		if ok != tt.wantOK {
			t.Errorf("LayerAt(%v) ok = %v, want %v", tt.tau, ok, tt.wantOK)
			continue
		}
		if ok && l.Omega0 != tt.wantOmega {
			t.Errorf("LayerAt(%v) omega = %v, want %v", tt.tau, l.Omega0, tt.wantOmega)
		}
	}
}

func TestUniform(t *testing.T) {
	s, err := Uniform(3.0, 0.9, 0.5, 0.2)
	if err != nil {
		t.Fatalf("Uniform: %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("Len = %d, want 1", s.Len())
	}
	if s.TauMax() != 3.0 || s.SurfaceAlbedo() != 0.2 {
		t.Fatalf("TauMax=%v albedo=%v, want 3.0 and 0.2", s.TauMax(), s.SurfaceAlbedo())
	}

	if _, err := Uniform(0, 0.9, 0, 0); !errors.Is(err, ErrInvalidParam) {
		t.Fatalf("Uniform with zero depth: err = %v, want ErrInvalidParam", err)
	}
	if _, err := Uniform(-2, 0.9, 0, 0); !errors.Is(err, ErrInvalidParam) {
		t.Fatalf("Uniform with negative depth: err = %v, want ErrInvalidParam", err)
	}
}

func TestPredicates(t *testing.T) {
	if !(Layer{Thickness: 1, Omega0: 0}).PureAbsorber() {
		t.Error("omega 0 should be a pure absorber")
	}
	if !(Layer{Thickness: 1, Omega0: 1}).Conservative() {
		t.Error("omega 1 should be conservative")
	}
	l := Layer{Thickness: 1, Omega0: 0.5}
	if l.PureAbsorber() || l.Conservative() {
		t.Error("omega 0.5 is neither pure absorber nor conservative")
	}
}
