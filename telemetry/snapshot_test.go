package telemetry

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSnapshotSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()

	stats := &SimulationStats{
		TotalLaunched: 40,
		Reflected:     10,
		Transmitted:   12,
		Absorbed:      8,
		TotalScatters: 55,
	}
	stats.ScatteringProfile[3] = 17
	stats.AbsorptionProfile[29] = 4

	snapshot := &Snapshot{
		Version:       SnapshotVersion,
		RNGSeed:       42,
		Frame:         1000,
		SurfaceAlbedo: 0.2,
		Layers: []LayerState{
			{Thickness: 1.0, Omega0: 0.9, G: 0.85},
			{Thickness: 2.0, Omega0: 0.99, G: 0.0},
		},
		TargetPhotons: 100,
		Photons: []PhotonState{
			{
				ID:              7,
				Tau:             1.25,
				X:               300,
				Direction:       1,
				Weight:          0.81,
				NextInteraction: 2.4,
				State:           0,
				Scatters:        3,
			},
			{
				ID:        9,
				Tau:       0.4,
				Weight:    0.005,
				State:     1,
				FadeTimer: 12,
			},
		},
		Stats: stats.ToJSON(),
	}

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("Snapshot file not created at %s", path)
	}
	expected := filepath.Join(tmpDir, "snapshot_1000.json")
	if path != expected {
		t.Errorf("Path mismatch: got %s, want %s", path, expected)
	}

	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}

	if loaded.RNGSeed != snapshot.RNGSeed {
		t.Errorf("RNGSeed mismatch: got %d, want %d", loaded.RNGSeed, snapshot.RNGSeed)
	}
	if loaded.Frame != snapshot.Frame {
		t.Errorf("Frame mismatch: got %d, want %d", loaded.Frame, snapshot.Frame)
	}
	if len(loaded.Layers) != 2 {
		t.Fatalf("Layers count mismatch: got %d, want 2", len(loaded.Layers))
	}
	if loaded.Layers[1].Thickness != 2.0 || loaded.Layers[1].Omega0 != 0.99 {
		t.Errorf("Layers[1] mismatch: got %+v", loaded.Layers[1])
	}
	if len(loaded.Photons) != 2 {
		t.Fatalf("Photons count mismatch: got %d, want 2", len(loaded.Photons))
	}
	if loaded.Photons[0] != snapshot.Photons[0] {
		t.Errorf("Photons[0] mismatch: got %+v, want %+v", loaded.Photons[0], snapshot.Photons[0])
	}
	if loaded.Photons[1].FadeTimer != 12 {
		t.Errorf("FadeTimer mismatch: got %d, want 12", loaded.Photons[1].FadeTimer)
	}

	if loaded.Stats == nil {
		t.Fatal("Stats not loaded")
	}
	restored := loaded.Stats.FromJSON()
	if restored.TotalLaunched != 40 || restored.TotalScatters != 55 {
		t.Errorf("restored stats mismatch: got %+v", restored)
	}
	if restored.ScatteringProfile[3] != 17 || restored.AbsorptionProfile[29] != 4 {
		t.Error("restored profiles mismatch")
	}
}

func TestLoadSnapshotRejectsUnknownVersion(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "snapshot_bad.json")

	if err := os.WriteFile(path, []byte(`{"version": 99}`), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	if _, err := LoadSnapshot(path); err == nil {
		t.Error("expected error for unsupported snapshot version")
	}
}

func TestStatsJSONRoundTrip(t *testing.T) {
	var s SimulationStats
	s.RecordLaunch()
	s.RecordLaunch()
	s.RecordScatter(0.5, 3.0)
	s.RecordAbsorption(2.9, 3.0)
	s.RecordReflection()
	s.RecordSurfaceBounce()

	restored := s.ToJSON().FromJSON()

	if *restored != s {
		t.Errorf("round trip mismatch:\ngot  %+v\nwant %+v", *restored, s)
	}
}
