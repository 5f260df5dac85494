package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds the complete animated simulation state for later resume.
type Snapshot struct {
	Version int   `json:"version"`
	RNGSeed int64 `json:"rng_seed"`

	Frame int32 `json:"frame"`

	// Scene parameters
	SurfaceAlbedo float64      `json:"surface_albedo"`
	Layers        []LayerState `json:"layers"`

	TargetPhotons int `json:"target_photons"`

	Photons []PhotonState `json:"photons"`

	Stats *StatsJSON `json:"stats,omitempty"`
}

// LayerState holds one atmospheric layer's parameters.
type LayerState struct {
	Thickness float64 `json:"thickness"`
	Omega0    float64 `json:"omega_0"`
	G         float64 `json:"g"`
}

// PhotonState holds one photon's complete state.
type PhotonState struct {
	ID uint32 `json:"id"`

	// Position in optical depth and screen column
	Tau float64 `json:"tau"`
	X   float64 `json:"x"`

	Direction uint8   `json:"direction"`
	Weight    float64 `json:"weight"`

	// Pre-sampled depth of the next interaction
	NextInteraction float64 `json:"next_interaction"`

	State      uint8 `json:"state"`
	FadeTimer  int32 `json:"fade_timer"`
	FlashTimer int32 `json:"flash_timer"`
	Scatters   int   `json:"scatters"`
}

// StatsJSON is the JSON-serializable form of SimulationStats.
type StatsJSON struct {
	TotalLaunched  int `json:"total_launched"`
	Reflected      int `json:"reflected"`
	Transmitted    int `json:"transmitted"`
	Absorbed       int `json:"absorbed"`
	TotalScatters  int `json:"total_scatters"`
	SurfaceBounces int `json:"surface_bounces"`

	AbsorptionProfile []int `json:"absorption_profile"`
	ScatteringProfile []int `json:"scattering_profile"`
}

// ToJSON converts SimulationStats to its JSON form.
func (s *SimulationStats) ToJSON() *StatsJSON {
	if s == nil {
		return nil
	}
	sj := &StatsJSON{
		TotalLaunched:     s.TotalLaunched,
		Reflected:         s.Reflected,
		Transmitted:       s.Transmitted,
		Absorbed:          s.Absorbed,
		TotalScatters:     s.TotalScatters,
		SurfaceBounces:    s.SurfaceBounces,
		AbsorptionProfile: make([]int, NumDepthBins),
		ScatteringProfile: make([]int, NumDepthBins),
	}
	copy(sj.AbsorptionProfile, s.AbsorptionProfile[:])
	copy(sj.ScatteringProfile, s.ScatteringProfile[:])
	return sj
}

// FromJSON converts the JSON form back to SimulationStats. Profiles longer
// than the current bin count are truncated.
func (sj *StatsJSON) FromJSON() *SimulationStats {
	if sj == nil {
		return nil
	}
	s := &SimulationStats{
		TotalLaunched:  sj.TotalLaunched,
		Reflected:      sj.Reflected,
		Transmitted:    sj.Transmitted,
		Absorbed:       sj.Absorbed,
		TotalScatters:  sj.TotalScatters,
		SurfaceBounces: sj.SurfaceBounces,
	}
	copy(s.AbsorptionProfile[:], sj.AbsorptionProfile)
	copy(s.ScatteringProfile[:], sj.ScatteringProfile)
	return s
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := fmt.Sprintf("snapshot_%d.json", snapshot.Frame)
	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}

	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", snapshot.Version)
	}

	return &snapshot, nil
}
