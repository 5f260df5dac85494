// Package main provides CMA-ES retrieval of column optical properties
// from a target energy budget.
package main

import (
	"github.com/mcsky/twostream/atmosphere"
	"github.com/mcsky/twostream/config"
)

// ParamSpec defines a single retrievable parameter.
type ParamSpec struct {
	Name    string  // CSV column name
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Search start value
}

// ParamVector holds the retrievable parameter set: a uniform column
// plus its surface.
type ParamVector struct {
	Specs []ParamSpec
}

// Parameter order is fixed: tau_max, omega_0, g, surface_albedo.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "tau_max", Min: 0.05, Max: 30.0, Default: 3.0},
			{Name: "omega_0", Min: 0.0, Max: 1.0, Default: 0.9},
			{Name: "g", Min: -0.9, Max: 0.95, Default: 0.5},
			{Name: "surface_albedo", Min: 0.0, Max: 1.0, Default: 0.2},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the search start values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val := v[i]
		if val < spec.Min {
			val = spec.Min
		}
		if val > spec.Max {
			val = spec.Max
		}
		clamped[i] = val
	}
	return clamped
}

// ToStack builds the uniform column a parameter vector describes.
func (pv *ParamVector) ToStack(values []float64) (*atmosphere.Stack, error) {
	v := pv.Clamp(values)
	return atmosphere.Uniform(v[0], v[1], v[2], v[3])
}

// ApplyToConfig writes a parameter vector into the scene config so the
// retrieved column can seed animated or batch runs.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	v := pv.Clamp(values)
	cfg.Scene = config.SceneConfig{
		Layers: []config.LayerConfig{
			{Preset: "Custom", TauThickness: v[0], Omega0: v[1], G: v[2]},
		},
		SurfaceAlbedo: v[3],
	}
}
