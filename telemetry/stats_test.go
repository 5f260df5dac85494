package telemetry

import (
	"math"
	"testing"
)

func TestDepthBin(t *testing.T) {
	tests := []struct {
		name   string
		tau    float64
		tauMax float64
		want   int
	}{
		{"top", 0, 3, 0},
		{"first bin interior", 0.05, 3, 0},
		{"mid", 1.5, 3, 15},
		{"just below mid bin edge", 1.49, 3, 14},
		{"bottom clamps to last bin", 3, 3, 29},
		{"beyond bottom clamps", 3.2, 3, 29},
		{"negative clamps to first", -0.1, 3, 0},
		{"zero tauMax", 1, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DepthBin(tt.tau, tt.tauMax); got != tt.want {
				t.Errorf("DepthBin(%v, %v) = %d, want %d", tt.tau, tt.tauMax, got, tt.want)
			}
		})
	}
}

func TestSimulationStatsRates(t *testing.T) {
	var s SimulationStats

	if s.Reflectance() != 0 || s.Transmittance() != 0 || s.Absorptance() != 0 {
		t.Error("expected zero rates before any launch")
	}

	for i := 0; i < 4; i++ {
		s.RecordLaunch()
	}
	s.RecordReflection()
	s.RecordTransmission()
	s.RecordAbsorption(1.0, 3.0)
	s.RecordAbsorption(2.0, 3.0)

	if s.Completed() != 4 {
		t.Errorf("Completed() = %d, want 4", s.Completed())
	}
	if got := s.Reflectance(); math.Abs(got-0.25) > 1e-12 {
		t.Errorf("Reflectance() = %v, want 0.25", got)
	}
	if got := s.Transmittance(); math.Abs(got-0.25) > 1e-12 {
		t.Errorf("Transmittance() = %v, want 0.25", got)
	}
	if got := s.Absorptance(); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("Absorptance() = %v, want 0.5", got)
	}
}

func TestSimulationStatsProfiles(t *testing.T) {
	var s SimulationStats

	s.RecordScatter(0.05, 3.0)
	s.RecordScatter(2.99, 3.0)
	s.RecordAbsorption(2.99, 3.0)

	if s.ScatteringProfile[0] != 1 {
		t.Errorf("ScatteringProfile[0] = %d, want 1", s.ScatteringProfile[0])
	}
	if s.ScatteringProfile[29] != 1 {
		t.Errorf("ScatteringProfile[29] = %d, want 1", s.ScatteringProfile[29])
	}
	if s.AbsorptionProfile[29] != 1 {
		t.Errorf("AbsorptionProfile[29] = %d, want 1", s.AbsorptionProfile[29])
	}
	if s.TotalScatters != 2 {
		t.Errorf("TotalScatters = %d, want 2", s.TotalScatters)
	}

	rows := s.ProfileRows(3.0)
	if len(rows) != NumDepthBins {
		t.Fatalf("len(rows) = %d, want %d", len(rows), NumDepthBins)
	}
	if math.Abs(rows[0].TauMid-0.05) > 1e-12 {
		t.Errorf("rows[0].TauMid = %v, want 0.05", rows[0].TauMid)
	}
	if math.Abs(rows[29].TauMid-2.95) > 1e-12 {
		t.Errorf("rows[29].TauMid = %v, want 2.95", rows[29].TauMid)
	}
	if rows[29].Absorbed != 1 || rows[29].Scattered != 1 {
		t.Errorf("rows[29] = %+v, want one absorbed and one scattered", rows[29])
	}
}

func TestSimulationStatsReset(t *testing.T) {
	var s SimulationStats
	s.RecordLaunch()
	s.RecordScatter(1.0, 3.0)
	s.RecordAbsorption(1.0, 3.0)

	s.Reset()

	if s.TotalLaunched != 0 || s.TotalScatters != 0 || s.Absorbed != 0 {
		t.Errorf("expected zeroed counters after Reset, got %+v", s)
	}
	if s.ScatteringProfile[10] != 0 || s.AbsorptionProfile[10] != 0 {
		t.Error("expected zeroed profiles after Reset")
	}
}

func TestComputeWeightStats(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		mean, std, p10, p50, p90 := ComputeWeightStats(nil)
		if mean != 0 || std != 0 || p10 != 0 || p50 != 0 || p90 != 0 {
			t.Error("expected all zeros for empty input")
		}
	})

	t.Run("single element", func(t *testing.T) {
		mean, std, p10, p50, p90 := ComputeWeightStats([]float64{0.5})
		if mean != 0.5 || std != 0 {
			t.Errorf("mean = %v, std = %v, want 0.5 and 0", mean, std)
		}
		if p10 != 0.5 || p50 != 0.5 || p90 != 0.5 {
			t.Errorf("percentiles = %v, %v, %v, want all 0.5", p10, p50, p90)
		}
	})

	t.Run("known distribution", func(t *testing.T) {
		weights := []float64{0.3, 0.1, 0.5, 0.9, 0.7, 0.2, 0.4, 0.6, 0.8, 1.0}
		mean, std, p10, p50, p90 := ComputeWeightStats(weights)

		if math.Abs(mean-0.55) > 0.001 {
			t.Errorf("mean = %v, want 0.55", mean)
		}
		if math.Abs(std-0.30277) > 0.001 {
			t.Errorf("std = %v, want 0.30277", std)
		}
		if math.Abs(p10-0.1) > 0.001 {
			t.Errorf("p10 = %v, want 0.1", p10)
		}
		if math.Abs(p50-0.5) > 0.001 {
			t.Errorf("p50 = %v, want 0.5", p50)
		}
		if math.Abs(p90-0.9) > 0.001 {
			t.Errorf("p90 = %v, want 0.9", p90)
		}
	})
}
