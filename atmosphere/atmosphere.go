// Package atmosphere models the plane-parallel medium the transport engine
// runs against: an ordered stack of homogeneous layers in optical depth
// coordinates, plus the reflectance of the bottom boundary.
package atmosphere

import (
	"errors"
	"fmt"
)

// Structural bounds for layer editing.
const (
	MinLayers = 1
	MaxLayers = 5
)

// Sentinels for callers to match with errors.Is.
var (
	ErrInvalidParam = errors.New("invalid parameter")
	ErrLayerLimit   = errors.New("layer limit")
)

// Layer is one homogeneous slab. Thickness, Omega0 and G are caller-set;
// Top and Bottom are derived whenever the stack changes shape and must not
// be assigned directly.
type Layer struct {
	Thickness float64 // optical depth of the slab, > 0
	Omega0    float64 // single scattering albedo in [0,1]
	G         float64 // asymmetry parameter in [-1,1]

	Top    float64 // derived: optical depth of the upper boundary
	Bottom float64 // derived: Top + Thickness
}

func (l Layer) validate() error {
	if l.Thickness <= 0 {
		return fmt.Errorf("layer thickness %g must be positive: %w", l.Thickness, ErrInvalidParam)
	}
	if l.Omega0 < 0 || l.Omega0 > 1 {
		return fmt.Errorf("single scattering albedo %g outside [0,1]: %w", l.Omega0, ErrInvalidParam)
	}
	if l.G < -1 || l.G > 1 {
		return fmt.Errorf("asymmetry parameter %g outside [-1,1]: %w", l.G, ErrInvalidParam)
	}
	return nil
}

// PureAbsorber reports whether every interaction in the layer absorbs.
func (l Layer) PureAbsorber() bool { return l.Omega0 == 0 }

// Conservative reports whether the layer scatters without absorption.
func (l Layer) Conservative() bool { return l.Omega0 == 1 }

// Stack is an ordered, contiguous sequence of layers. Index 0 is the top of
// the atmosphere; optical depth grows downward to TauMax at the surface.
type Stack struct {
	layers        []Layer
	surfaceAlbedo float64
}

// NewStack builds a stack from top to bottom, validating every layer and the
// surface albedo. The whole call fails before any state is kept.
func NewStack(surfaceAlbedo float64, layers ...Layer) (*Stack, error) {
	if len(layers) < MinLayers {
		return nil, fmt.Errorf("stack needs at least %d layer: %w", MinLayers, ErrLayerLimit)
	}
	if len(layers) > MaxLayers {
		return nil, fmt.Errorf("stack of %d layers exceeds maximum %d: %w", len(layers), MaxLayers, ErrLayerLimit)
	}
	if surfaceAlbedo < 0 || surfaceAlbedo > 1 {
		return nil, fmt.Errorf("surface albedo %g outside [0,1]: %w", surfaceAlbedo, ErrInvalidParam)
	}
	for i, l := range layers {
		if err := l.validate(); err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
	}
	s := &Stack{layers: append([]Layer(nil), layers...), surfaceAlbedo: surfaceAlbedo}
	recomputeBounds(s.layers)
	return s, nil
}

// Uniform builds the degenerate single-layer stack used by the batch engine.
func Uniform(tauMax, omega0, g, surfaceAlbedo float64) (*Stack, error) {
	return NewStack(surfaceAlbedo, Layer{Thickness: tauMax, Omega0: omega0, G: g})
}

// recomputeBounds re-derives contiguous boundaries from the ordering: the
// first layer starts at zero and each layer starts where the one above ends.
func recomputeBounds(layers []Layer) {
	top := 0.0
	for i := range layers {
		layers[i].Top = top
		layers[i].Bottom = top + layers[i].Thickness
		top = layers[i].Bottom
	}
}

// TauMax returns the total optical depth of the stack.
func (s *Stack) TauMax() float64 {
	return s.layers[len(s.layers)-1].Bottom
}

// SurfaceAlbedo returns the bottom boundary reflectance.
func (s *Stack) SurfaceAlbedo() float64 { return s.surfaceAlbedo }

// SetSurfaceAlbedo replaces the bottom boundary reflectance.
func (s *Stack) SetSurfaceAlbedo(a float64) error {
	if a < 0 || a > 1 {
		return fmt.Errorf("surface albedo %g outside [0,1]: %w", a, ErrInvalidParam)
	}
	s.surfaceAlbedo = a
	return nil
}

// Len returns the number of layers.
func (s *Stack) Len() int { return len(s.layers) }

// Layer returns the layer at index i.
func (s *Stack) Layer(i int) Layer { return s.layers[i] }

// Layers returns a copy of the ordered layers.
func (s *Stack) Layers() []Layer {
	return append([]Layer(nil), s.layers...)
}

// LayerAt resolves which layer owns the given optical depth. A position
// sitting exactly on a boundary belongs to no layer; callers skip the
// interaction for that step since the next move resolves it.
func (s *Stack) LayerAt(tau float64) (Layer, bool) {
	for _, l := range s.layers {
		if l.Top < tau && tau < l.Bottom {
			return l, true
		}
	}
	return Layer{}, false
}

// AddLayer appends a layer at the bottom of the stack and re-derives the
// boundaries.
func (s *Stack) AddLayer(l Layer) error {
	if len(s.layers) >= MaxLayers {
		return fmt.Errorf("stack at maximum of %d layers: %w", MaxLayers, ErrLayerLimit)
	}
	if err := l.validate(); err != nil {
		return err
	}
	s.layers = append(s.layers, l)
	recomputeBounds(s.layers)
	return nil
}

// RemoveLayer deletes the layer at index i. The last remaining layer cannot
// be removed.
func (s *Stack) RemoveLayer(i int) error {
	if len(s.layers) <= MinLayers {
		return fmt.Errorf("stack cannot shrink below %d layer: %w", MinLayers, ErrLayerLimit)
	}
	if i < 0 || i >= len(s.layers) {
		return fmt.Errorf("layer index %d out of range: %w", i, ErrInvalidParam)
	}
	s.layers = append(s.layers[:i], s.layers[i+1:]...)
	recomputeBounds(s.layers)
	return nil
}

// SetLayer replaces the layer at index i and re-derives the boundaries.
func (s *Stack) SetLayer(i int, l Layer) error {
	if i < 0 || i >= len(s.layers) {
		return fmt.Errorf("layer index %d out of range: %w", i, ErrInvalidParam)
	}
	if err := l.validate(); err != nil {
		return err
	}
	s.layers[i] = l
	recomputeBounds(s.layers)
	return nil
}
