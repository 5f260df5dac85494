package telemetry

import (
	"github.com/mcsky/twostream/atmosphere"
	"github.com/mcsky/twostream/transport"
)

// RunRecord is one batch run summary flattened for CSV export.
type RunRecord struct {
	Seed            int64   `csv:"seed"`
	NumPhotons      int     `csv:"num_photons"`
	Layers          int     `csv:"layers"`
	TauMax          float64 `csv:"tau_max"`
	SurfaceAlbedo   float64 `csv:"surface_albedo"`
	WeightThreshold float64 `csv:"weight_threshold"`

	Reflectance   float64 `csv:"reflectance"`
	Transmittance float64 `csv:"transmittance"`
	Absorptance   float64 `csv:"absorptance"`

	EnergyReflected   float64 `csv:"energy_reflected"`
	EnergyTransmitted float64 `csv:"energy_transmitted"`
	EnergyAbsorbed    float64 `csv:"energy_absorbed"`
	TotalEnergy       float64 `csv:"total_energy"`

	// Irradiances in W/m^2 for the given incident flux
	FluxIncident    float64 `csv:"flux_incident"`
	FluxReflected   float64 `csv:"flux_reflected"`
	FluxTransmitted float64 `csv:"flux_transmitted"`
	FluxAbsorbed    float64 `csv:"flux_absorbed"`
}

// NewRunRecord flattens a batch result and its scene into a CSV row.
// incidentFlux is the top-of-atmosphere irradiance in W/m^2.
func NewRunRecord(seed int64, stack *atmosphere.Stack, weightThreshold float64, res *transport.Result, incidentFlux float64) RunRecord {
	return RunRecord{
		Seed:            seed,
		NumPhotons:      res.NumPhotons,
		Layers:          stack.Len(),
		TauMax:          stack.TauMax(),
		SurfaceAlbedo:   stack.SurfaceAlbedo(),
		WeightThreshold: weightThreshold,

		Reflectance:   res.Reflectance,
		Transmittance: res.Transmittance,
		Absorptance:   res.Absorptance,

		EnergyReflected:   res.EnergyReflected,
		EnergyTransmitted: res.EnergyTransmitted,
		EnergyAbsorbed:    res.EnergyAbsorbed,
		TotalEnergy:       res.TotalEnergy,

		FluxIncident:    incidentFlux,
		FluxReflected:   res.Reflectance * incidentFlux,
		FluxTransmitted: res.Transmittance * incidentFlux,
		FluxAbsorbed:    res.Absorptance * incidentFlux,
	}
}
