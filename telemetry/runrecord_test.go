package telemetry

import (
	"math"
	"testing"

	"github.com/mcsky/twostream/atmosphere"
	"github.com/mcsky/twostream/transport"
)

func TestNewRunRecord(t *testing.T) {
	stack, err := atmosphere.Uniform(5.0, 0.9, 0.85, 0.2)
	if err != nil {
		t.Fatalf("building stack: %v", err)
	}

	res := &transport.Result{
		Reflectance:       0.3,
		Transmittance:     0.5,
		Absorptance:       0.15,
		EnergyReflected:   300,
		EnergyTransmitted: 500,
		EnergyAbsorbed:    150,
		TotalEnergy:       1000,
		NumPhotons:        1000,
	}

	rec := NewRunRecord(42, stack, 0.01, res, 1361.0)

	if rec.Seed != 42 || rec.NumPhotons != 1000 || rec.Layers != 1 {
		t.Errorf("identity fields = %+v", rec)
	}
	if rec.TauMax != 5.0 || rec.SurfaceAlbedo != 0.2 || rec.WeightThreshold != 0.01 {
		t.Errorf("scene fields = %+v", rec)
	}
	if rec.Reflectance != 0.3 || rec.EnergyAbsorbed != 150 {
		t.Errorf("result fields = %+v", rec)
	}
	if rec.FluxIncident != 1361.0 {
		t.Errorf("FluxIncident = %v, want 1361", rec.FluxIncident)
	}
	if math.Abs(rec.FluxReflected-0.3*1361.0) > 1e-9 {
		t.Errorf("FluxReflected = %v, want %v", rec.FluxReflected, 0.3*1361.0)
	}
	if math.Abs(rec.FluxAbsorbed-0.15*1361.0) > 1e-9 {
		t.Errorf("FluxAbsorbed = %v, want %v", rec.FluxAbsorbed, 0.15*1361.0)
	}
}
