package telemetry

import "testing"

func hasMilestone(ms []Milestone, typ MilestoneType) bool {
	for _, m := range ms {
		if m.Type == typ {
			return true
		}
	}
	return false
}

func TestMilestoneDetector_FirstTransmissionFiresOnce(t *testing.T) {
	md := NewMilestoneDetector(10)

	ms := md.Check(WindowStats{WindowEndFrame: 60, Transmissions: 0})
	if hasMilestone(ms, MilestoneFirstTransmission) {
		t.Error("first transmission fired with zero transmissions")
	}

	ms = md.Check(WindowStats{WindowEndFrame: 120, Transmissions: 3})
	if !hasMilestone(ms, MilestoneFirstTransmission) {
		t.Fatal("first transmission did not fire")
	}

	ms = md.Check(WindowStats{WindowEndFrame: 180, Transmissions: 7})
	if hasMilestone(ms, MilestoneFirstTransmission) {
		t.Error("first transmission fired twice")
	}
}

func TestMilestoneDetector_ReflectionSurge(t *testing.T) {
	md := NewMilestoneDetector(10)

	// Build a rolling baseline of 2 reflections per window
	for i := 0; i < 5; i++ {
		ms := md.Check(WindowStats{WindowEndFrame: int32((i + 1) * 60), Reflections: 2})
		if hasMilestone(ms, MilestoneReflectionSurge) {
			t.Fatalf("surge fired during baseline at window %d", i)
		}
	}

	// 8 reflections is 4x the baseline
	ms := md.Check(WindowStats{WindowEndFrame: 360, Reflections: 8})
	if !hasMilestone(ms, MilestoneReflectionSurge) {
		t.Error("expected reflection surge at 4x the rolling average")
	}
}

func TestMilestoneDetector_ReflectionSurgeNeedsMinimumCount(t *testing.T) {
	md := NewMilestoneDetector(10)

	for i := 0; i < 5; i++ {
		md.Check(WindowStats{WindowEndFrame: int32((i + 1) * 60), Reflections: 1})
	}

	// 4x the average but below the absolute floor of 5
	ms := md.Check(WindowStats{WindowEndFrame: 360, Reflections: 4})
	if hasMilestone(ms, MilestoneReflectionSurge) {
		t.Error("surge fired below the minimum reflection count")
	}
}

func TestMilestoneDetector_ScatterEquilibrium(t *testing.T) {
	md := NewMilestoneDetector(10)

	// Steady scatter fraction with plenty of interactions. The window
	// history needs 4 entries, then 5 consecutive settled windows.
	stats := WindowStats{Scatters: 90, Absorptions: 10, ScatterFraction: 0.9}

	fired := 0
	for i := 0; i < 12; i++ {
		stats.WindowEndFrame = int32((i + 1) * 60)
		ms := md.Check(stats)
		if hasMilestone(ms, MilestoneScatterEquilibrium) {
			fired++
		}
	}

	if fired != 1 {
		t.Errorf("equilibrium fired %d times over steady windows, want exactly 1", fired)
	}
}

func TestMilestoneDetector_ScatterEquilibriumResetsOnNoise(t *testing.T) {
	md := NewMilestoneDetector(10)

	// Alternate the fraction wildly; equilibrium must never fire
	for i := 0; i < 15; i++ {
		frac := 0.2
		if i%2 == 0 {
			frac = 0.9
		}
		ms := md.Check(WindowStats{
			WindowEndFrame:  int32((i + 1) * 60),
			Scatters:        50,
			Absorptions:     50,
			ScatterFraction: frac,
		})
		if hasMilestone(ms, MilestoneScatterEquilibrium) {
			t.Fatalf("equilibrium fired on a noisy scatter fraction at window %d", i)
		}
	}
}

func TestMilestoneDetector_WeightCollapse(t *testing.T) {
	md := NewMilestoneDetector(10)

	// Healthy median weight: no collapse
	ms := md.Check(WindowStats{WindowEndFrame: 60, InFlight: 50, WeightP50: 0.8})
	if hasMilestone(ms, MilestoneWeightCollapse) {
		t.Error("collapse fired at healthy median weight")
	}

	// Small field: no collapse even at low weight
	ms = md.Check(WindowStats{WindowEndFrame: 120, InFlight: 3, WeightP50: 0.05})
	if hasMilestone(ms, MilestoneWeightCollapse) {
		t.Error("collapse fired with too few photons in flight")
	}

	ms = md.Check(WindowStats{WindowEndFrame: 180, InFlight: 40, WeightP50: 0.1})
	if !hasMilestone(ms, MilestoneWeightCollapse) {
		t.Fatal("collapse did not fire at low median weight")
	}

	// One-shot
	ms = md.Check(WindowStats{WindowEndFrame: 240, InFlight: 40, WeightP50: 0.05})
	if hasMilestone(ms, MilestoneWeightCollapse) {
		t.Error("collapse fired twice")
	}
}

func TestMilestoneDetector_FieldDrained(t *testing.T) {
	md := NewMilestoneDetector(10)

	// Still flying: no drain
	ms := md.Check(WindowStats{WindowEndFrame: 60, InFlight: 5, FlightsCompleted: 10})
	if hasMilestone(ms, MilestoneFieldDrained) {
		t.Error("drained fired with photons in flight")
	}

	// Empty but nothing completed this window (e.g. before launch)
	ms = md.Check(WindowStats{WindowEndFrame: 120, InFlight: 0, FlightsCompleted: 0})
	if hasMilestone(ms, MilestoneFieldDrained) {
		t.Error("drained fired with no completed flights")
	}

	ms = md.Check(WindowStats{WindowEndFrame: 180, InFlight: 0, FlightsCompleted: 4})
	if !hasMilestone(ms, MilestoneFieldDrained) {
		t.Fatal("drained did not fire when the field emptied")
	}

	ms = md.Check(WindowStats{WindowEndFrame: 240, InFlight: 0, FlightsCompleted: 1})
	if hasMilestone(ms, MilestoneFieldDrained) {
		t.Error("drained fired twice")
	}
}
