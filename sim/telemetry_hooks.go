package sim

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/mcsky/twostream/atmosphere"
	"github.com/mcsky/twostream/components"
	"github.com/mcsky/twostream/telemetry"
	"github.com/mcsky/twostream/transport"
)

// flushTelemetry checks if the stats window should be flushed.
func (s *Sim) flushTelemetry() {
	if !s.collector.ShouldFlush(s.frame) {
		return
	}

	// Sample in-flight weights for the distribution stats
	weights := s.collectWeights()

	stats := s.collector.Flush(s.frame, s.inFlight, weights)
	perfStats := s.perf.Stats()

	milestones := s.milestones.Check(stats)
	for _, m := range milestones {
		m.LogMilestone()
	}
	if len(milestones) > 0 {
		s.saveSnapshot()
	}

	// Call stats callback if provided
	if s.statsCallback != nil {
		s.statsCallback(stats)
	}

	// Log stats if enabled (console output)
	if s.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	// Write to CSV if output manager is enabled
	if s.outputManager != nil {
		if err := s.outputManager.WriteWindow(stats); err != nil {
			slog.Error("failed to write window stats", "error", err)
		}
		if err := s.outputManager.WritePerf(perfStats, stats.WindowEndFrame); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}
}

// collectWeights samples the weights of photons still in flight.
func (s *Sim) collectWeights() []float64 {
	weights := make([]float64, 0, s.inFlight)

	query := s.photonFilter.Query()
	for query.Next() {
		_, _, pk, phase, _ := query.Get()
		if phase.State == transport.Active {
			weights = append(weights, pk.Weight)
		}
	}

	return weights
}

// finalizeRun logs the completed run once and writes the depth profiles.
func (s *Sim) finalizeRun() {
	if s.runLogged {
		return
	}
	s.runLogged = true

	slog.Info("run complete",
		"frame", s.frame,
		"seed", s.seed,
		"stats", s.stats,
	)

	if s.outputManager != nil {
		if err := s.outputManager.WriteProfile(s.stats.ProfileRows(s.stack.TauMax())); err != nil {
			slog.Error("failed to write depth profile", "error", err)
		}
		path := filepath.Join(s.outputManager.Dir(), "notable_flights.json")
		if err := s.notable.WriteFile(path); err != nil {
			slog.Error("failed to write notable flights", "error", err)
		}
	}
}

// saveSnapshot captures the full animated state to the snapshot directory.
func (s *Sim) saveSnapshot() {
	if s.snapshotDir == "" {
		return
	}

	path, err := telemetry.SaveSnapshot(s.createSnapshot(), s.snapshotDir)
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}

	slog.Info("snapshot saved", "path", path, "frame", s.frame)
}

// createSnapshot builds a snapshot from the current state.
func (s *Sim) createSnapshot() *telemetry.Snapshot {
	snapshot := &telemetry.Snapshot{
		Version:       telemetry.SnapshotVersion,
		RNGSeed:       s.seed,
		Frame:         s.frame,
		SurfaceAlbedo: s.stack.SurfaceAlbedo(),
		TargetPhotons: s.targetPhotons,
		Stats:         s.stats.ToJSON(),
	}

	for _, l := range s.stack.Layers() {
		snapshot.Layers = append(snapshot.Layers, telemetry.LayerState{
			Thickness: l.Thickness,
			Omega0:    l.Omega0,
			G:         l.G,
		})
	}

	query := s.photonFilter.Query()
	for query.Next() {
		entity := query.Entity()
		pos, trav, pk, phase, _ := query.Get()

		snapshot.Photons = append(snapshot.Photons, telemetry.PhotonState{
			ID:              uint32(entity.ID()),
			Tau:             pos.Tau,
			X:               float64(pos.X),
			Direction:       uint8(trav.Dir),
			Weight:          pk.Weight,
			NextInteraction: trav.NextInteraction,
			State:           uint8(phase.State),
			FadeTimer:       phase.FadeTimer,
			FlashTimer:      phase.FlashTimer,
			Scatters:        pk.Scatters,
		})
	}

	return snapshot
}

// loadLatestSnapshot restores the most recent snapshot from the snapshot
// directory, replacing the current run.
func (s *Sim) loadLatestSnapshot() {
	if s.snapshotDir == "" {
		return
	}

	matches, err := filepath.Glob(filepath.Join(s.snapshotDir, "snapshot_*.json"))
	if err != nil || len(matches) == 0 {
		slog.Warn("no snapshots found", "dir", s.snapshotDir)
		return
	}
	sort.Strings(matches)
	path := newestSnapshot(matches)

	snapshot, err := telemetry.LoadSnapshot(path)
	if err != nil {
		slog.Error("failed to load snapshot", "error", err, "path", path)
		return
	}

	if err := s.restoreSnapshot(snapshot); err != nil {
		slog.Error("failed to restore snapshot", "error", err, "path", path)
		return
	}

	slog.Info("snapshot restored", "path", path, "frame", s.frame)
}

// newestSnapshot picks the most recently modified file from the matches.
func newestSnapshot(paths []string) string {
	best := paths[0]
	var bestMod int64
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			continue
		}
		if mod := info.ModTime().UnixNano(); mod > bestMod {
			bestMod = mod
			best = p
		}
	}
	return best
}

// restoreSnapshot replaces the world, column, and stats with the snapshot.
func (s *Sim) restoreSnapshot(snapshot *telemetry.Snapshot) error {
	layers := make([]atmosphere.Layer, 0, len(snapshot.Layers))
	for _, ls := range snapshot.Layers {
		layers = append(layers, atmosphere.Layer{Thickness: ls.Thickness, Omega0: ls.Omega0, G: ls.G})
	}
	stack, err := atmosphere.NewStack(snapshot.SurfaceAlbedo, layers...)
	if err != nil {
		return err
	}

	// Drop every live photon before respawning the saved set
	s.clearPhotons()
	s.flights = telemetry.NewFlightTracker()
	s.setStack(stack)

	s.frame = snapshot.Frame
	s.targetPhotons = snapshot.TargetPhotons
	s.runLogged = false

	if restored := snapshot.Stats.FromJSON(); restored != nil {
		s.stats = restored
	} else {
		s.stats = &telemetry.SimulationStats{}
	}
	s.launched = s.stats.TotalLaunched

	for _, ps := range snapshot.Photons {
		pos := components.Position{Tau: ps.Tau, X: float32(ps.X)}
		trav := components.Travel{
			Dir:             transport.Direction(ps.Direction),
			NextInteraction: ps.NextInteraction,
		}
		pk := components.Packet{Weight: ps.Weight, Scatters: ps.Scatters}
		phase := components.Phase{
			State:      transport.State(ps.State),
			FadeTimer:  ps.FadeTimer,
			FlashTimer: ps.FlashTimer,
		}
		trail := components.Trail{}
		trail.Push(pos)

		entity := s.photonMapper.NewEntity(&pos, &trav, &pk, &phase, &trail)
		s.flights.Register(uint32(entity.ID()), snapshot.Frame)
		s.inFlight++
	}

	if s.controls != nil {
		s.controls.SyncScene(s.stack, s.targetPhotons, s.speed, s.sequential)
	}

	return nil
}
