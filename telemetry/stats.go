// Package telemetry tracks photon transport statistics, windowed event
// rates, and CSV output of run results.
package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// NumDepthBins is the number of optical-depth bins in the event profiles.
const NumDepthBins = 30

// SimulationStats accumulates photon fates over the life of a run.
type SimulationStats struct {
	TotalLaunched  int `csv:"total_launched"`
	Reflected      int `csv:"reflected"`
	Transmitted    int `csv:"transmitted"`
	Absorbed       int `csv:"absorbed"`
	TotalScatters  int `csv:"total_scatters"`
	SurfaceBounces int `csv:"surface_bounces"`

	// Depth-resolved event counts, binned over [0, tauMax]
	AbsorptionProfile [NumDepthBins]int `csv:"-"`
	ScatteringProfile [NumDepthBins]int `csv:"-"`
}

// DepthBin maps an optical depth to a profile bin index. Depths at or
// beyond tauMax land in the last bin.
func DepthBin(tau, tauMax float64) int {
	if tauMax <= 0 {
		return 0
	}
	bin := int(tau / tauMax * NumDepthBins)
	if bin < 0 {
		return 0
	}
	if bin >= NumDepthBins {
		return NumDepthBins - 1
	}
	return bin
}

// RecordLaunch records a photon entering the atmosphere.
func (s *SimulationStats) RecordLaunch() {
	s.TotalLaunched++
}

// RecordScatter records a scattering event at the given depth.
func (s *SimulationStats) RecordScatter(tau, tauMax float64) {
	s.TotalScatters++
	s.ScatteringProfile[DepthBin(tau, tauMax)]++
}

// RecordAbsorption records a photon absorbed at the given depth.
func (s *SimulationStats) RecordAbsorption(tau, tauMax float64) {
	s.Absorbed++
	s.AbsorptionProfile[DepthBin(tau, tauMax)]++
}

// RecordReflection records a photon escaping the top of the atmosphere.
func (s *SimulationStats) RecordReflection() {
	s.Reflected++
}

// RecordTransmission records a photon absorbed by the surface.
func (s *SimulationStats) RecordTransmission() {
	s.Transmitted++
}

// RecordSurfaceBounce records a photon reflected back up by the surface.
func (s *SimulationStats) RecordSurfaceBounce() {
	s.SurfaceBounces++
}

// Completed returns the number of photons that reached a terminal fate.
func (s *SimulationStats) Completed() int {
	return s.Reflected + s.Transmitted + s.Absorbed
}

// Reflectance returns the fraction of launched photons reflected to space.
// Returns 0 before any photon has launched.
func (s *SimulationStats) Reflectance() float64 {
	if s.TotalLaunched == 0 {
		return 0
	}
	return float64(s.Reflected) / float64(s.TotalLaunched)
}

// Transmittance returns the fraction of launched photons absorbed by the surface.
func (s *SimulationStats) Transmittance() float64 {
	if s.TotalLaunched == 0 {
		return 0
	}
	return float64(s.Transmitted) / float64(s.TotalLaunched)
}

// Absorptance returns the fraction of launched photons absorbed in the atmosphere.
func (s *SimulationStats) Absorptance() float64 {
	if s.TotalLaunched == 0 {
		return 0
	}
	return float64(s.Absorbed) / float64(s.TotalLaunched)
}

// Reset zeroes all counters and profiles for a fresh run.
func (s *SimulationStats) Reset() {
	*s = SimulationStats{}
}

// ProfileRow is one depth bin of the event profiles in CSV form.
type ProfileRow struct {
	Bin       int     `csv:"bin"`
	TauMid    float64 `csv:"tau_mid"`
	Absorbed  int     `csv:"absorbed"`
	Scattered int     `csv:"scattered"`
}

// ProfileRows flattens the depth profiles for CSV export. tauMax sets the
// bin centers.
func (s *SimulationStats) ProfileRows(tauMax float64) []ProfileRow {
	binWidth := tauMax / NumDepthBins
	rows := make([]ProfileRow, NumDepthBins)
	for i := 0; i < NumDepthBins; i++ {
		rows[i] = ProfileRow{
			Bin:       i,
			TauMid:    (float64(i) + 0.5) * binWidth,
			Absorbed:  s.AbsorptionProfile[i],
			Scattered: s.ScatteringProfile[i],
		}
	}
	return rows
}

// LogValue implements slog.LogValuer for structured logging.
func (s *SimulationStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("total_launched", s.TotalLaunched),
		slog.Int("reflected", s.Reflected),
		slog.Int("transmitted", s.Transmitted),
		slog.Int("absorbed", s.Absorbed),
		slog.Int("total_scatters", s.TotalScatters),
		slog.Int("surface_bounces", s.SurfaceBounces),
		slog.Float64("reflectance", s.Reflectance()),
		slog.Float64("transmittance", s.Transmittance()),
		slog.Float64("absorptance", s.Absorptance()),
	)
}

// WindowStats holds aggregated transport activity for a time window.
type WindowStats struct {
	WindowStartFrame int32   `csv:"-"`
	WindowEndFrame   int32   `csv:"window_end"`
	SimTimeSec       float64 `csv:"sim_time"`

	// Population at window end
	InFlight int `csv:"in_flight"`

	// Events during window
	Launched       int `csv:"launched"`
	Scatters       int `csv:"scatters"`
	Absorptions    int `csv:"absorptions"`
	Reflections    int `csv:"reflections"`
	Transmissions  int `csv:"transmissions"`
	SurfaceBounces int `csv:"surface_bounces"`

	// Fraction of interactions that scattered rather than absorbed.
	// Converges on the effective single-scattering albedo of the scene.
	ScatterFraction float64 `csv:"scatter_fraction"`

	// Weight distribution of in-flight photons (sampled at window end)
	WeightMean float64 `csv:"weight_mean"`
	WeightStd  float64 `csv:"weight_std"`
	WeightP10  float64 `csv:"weight_p10"`
	WeightP50  float64 `csv:"weight_p50"`
	WeightP90  float64 `csv:"weight_p90"`

	// Completed flights during window
	FlightsCompleted   int     `csv:"flights_completed"`
	MeanFlightFrames   float64 `csv:"mean_flight_frames"`
	MeanFlightScatters float64 `csv:"mean_flight_scatters"`
}

// ComputeWeightStats calculates mean, std, and percentiles of a weight sample.
func ComputeWeightStats(weights []float64) (mean, std, p10, p50, p90 float64) {
	n := len(weights)
	if n == 0 {
		return 0, 0, 0, 0, 0
	}

	sorted := make([]float64, n)
	copy(sorted, weights)
	sort.Float64s(sorted)

	mean = stat.Mean(sorted, nil)
	if n > 1 {
		std = stat.StdDev(sorted, nil)
	}

	p10 = stat.Quantile(0.10, stat.Empirical, sorted, nil)
	p50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	p90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)

	return mean, std, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartFrame)),
		slog.Int("window_end", int(s.WindowEndFrame)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("in_flight", s.InFlight),
		slog.Int("launched", s.Launched),
		slog.Int("scatters", s.Scatters),
		slog.Int("absorptions", s.Absorptions),
		slog.Int("reflections", s.Reflections),
		slog.Int("transmissions", s.Transmissions),
		slog.Int("surface_bounces", s.SurfaceBounces),
		slog.Float64("scatter_fraction", s.ScatterFraction),
		slog.Float64("weight_mean", s.WeightMean),
		slog.Float64("weight_std", s.WeightStd),
		slog.Float64("weight_p10", s.WeightP10),
		slog.Float64("weight_p50", s.WeightP50),
		slog.Float64("weight_p90", s.WeightP90),
		slog.Int("flights_completed", s.FlightsCompleted),
		slog.Float64("mean_flight_frames", s.MeanFlightFrames),
		slog.Float64("mean_flight_scatters", s.MeanFlightScatters),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndFrame,
		"sim_time", s.SimTimeSec,
		"in_flight", s.InFlight,
		"launched", s.Launched,
		"scatters", s.Scatters,
		"absorptions", s.Absorptions,
		"reflections", s.Reflections,
		"transmissions", s.Transmissions,
		"surface_bounces", s.SurfaceBounces,
		"scatter_fraction", s.ScatterFraction,
		"weight_mean", s.WeightMean,
		"weight_p50", s.WeightP50,
		"flights_completed", s.FlightsCompleted,
		"mean_flight_frames", s.MeanFlightFrames,
	)
}
