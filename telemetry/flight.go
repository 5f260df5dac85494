package telemetry

// FlightStats tracks a single photon's history from launch to terminal fate.
type FlightStats struct {
	LaunchFrame int32

	Scatters       int
	SurfaceBounces int

	// Deepest optical depth reached at an interaction site
	DeepestTau float64

	FinalWeight float64
}

// Frames returns the flight duration in frames as of currentFrame.
func (fs *FlightStats) Frames(currentFrame int32) int32 {
	return currentFrame - fs.LaunchFrame
}

// FlightTracker manages per-photon flight statistics keyed on entity ID.
type FlightTracker struct {
	stats map[uint32]*FlightStats
}

// NewFlightTracker creates a new flight tracker.
func NewFlightTracker() *FlightTracker {
	return &FlightTracker{
		stats: make(map[uint32]*FlightStats),
	}
}

// Register creates flight stats for a newly launched photon.
func (ft *FlightTracker) Register(photonID uint32, launchFrame int32) {
	ft.stats[photonID] = &FlightStats{
		LaunchFrame: launchFrame,
		FinalWeight: 1,
	}
}

// Get returns the flight stats for a photon, or nil if not found.
func (ft *FlightTracker) Get(photonID uint32) *FlightStats {
	return ft.stats[photonID]
}

// Remove removes a photon's stats and returns them (for window accounting).
func (ft *FlightTracker) Remove(photonID uint32) *FlightStats {
	stats := ft.stats[photonID]
	delete(ft.stats, photonID)
	return stats
}

// RecordScatter increments the scatter count.
func (ft *FlightTracker) RecordScatter(photonID uint32) {
	if s := ft.stats[photonID]; s != nil {
		s.Scatters++
	}
}

// RecordSurfaceBounce increments the surface bounce count.
func (ft *FlightTracker) RecordSurfaceBounce(photonID uint32) {
	if s := ft.stats[photonID]; s != nil {
		s.SurfaceBounces++
	}
}

// UpdateDepth tracks the deepest interaction depth.
func (ft *FlightTracker) UpdateDepth(photonID uint32, tau float64) {
	if s := ft.stats[photonID]; s != nil {
		if tau > s.DeepestTau {
			s.DeepestTau = tau
		}
	}
}

// UpdateWeight tracks the photon's current statistical weight.
func (ft *FlightTracker) UpdateWeight(photonID uint32, weight float64) {
	if s := ft.stats[photonID]; s != nil {
		s.FinalWeight = weight
	}
}

// Count returns the number of tracked photons.
func (ft *FlightTracker) Count() int {
	return len(ft.stats)
}
