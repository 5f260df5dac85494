package sim

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/mcsky/twostream/atmosphere"
	"github.com/mcsky/twostream/config"
	"github.com/mcsky/twostream/telemetry"
	"github.com/mcsky/twostream/transport"
)

// Params carries the settings for a fresh animated run.
type Params struct {
	Stack      *atmosphere.Stack
	NumPhotons int
	Sequential bool
	Speed      float64
}

// Reset clears the photon field and restarts the run on the given
// column. Counters and cumulative stats restart from zero; the RNG
// stream continues, so a repeat run samples fresh paths.
func (s *Sim) Reset(p Params) error {
	if p.Stack == nil {
		return fmt.Errorf("reset: nil stack")
	}
	if p.NumPhotons <= 0 {
		return fmt.Errorf("reset: num photons must be positive, got %d", p.NumPhotons)
	}

	cfg := config.Cfg()
	engine, err := transport.NewEngine(p.Stack, s.src, cfg.Physics.WeightThreshold)
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}

	s.clearPhotons()
	s.stack = p.Stack
	s.engine = engine
	if s.camera != nil {
		s.camera.SetTauMax(float32(p.Stack.TauMax()))
	}

	s.targetPhotons = p.NumPhotons
	s.sequential = p.Sequential
	if p.Speed > 0 {
		s.speed = p.Speed
	}

	s.frame = 0
	s.launched = 0
	s.paused = false
	s.runLogged = false
	s.stats.Reset()
	s.flights = telemetry.NewFlightTracker()
	s.milestones = telemetry.NewMilestoneDetector(milestoneHistory)
	s.notable = telemetry.NewNotableFlights(notableBoardSize)

	// A fresh collector so the first window of the new run carries no
	// counts from the old one.
	dt := float32(1.0) / float32(cfg.Screen.TargetFPS)
	s.collector = telemetry.NewCollector(s.windowSec, dt)

	if s.controls != nil {
		s.controls.SyncScene(s.stack, s.targetPhotons, s.speed, s.sequential)
	}
	return nil
}

// clearPhotons removes every photon entity from the world.
func (s *Sim) clearPhotons() {
	var doomed []ecs.Entity
	query := s.photonFilter.Query()
	for query.Next() {
		doomed = append(doomed, query.Entity())
	}
	for _, e := range doomed {
		s.photonMapper.Remove(e)
	}
	s.inFlight = 0
}

// restartFromControls rebuilds the column from the panel edits and
// restarts the run. Invalid edits keep the current column.
func (s *Sim) restartFromControls() {
	p := Params{
		Stack:      s.stack,
		NumPhotons: s.targetPhotons,
		Sequential: s.sequential,
		Speed:      s.speed,
	}
	if s.controls != nil {
		layers, albedo := s.controls.Scene()
		stack, err := atmosphere.NewStack(albedo, layers...)
		if err != nil {
			slog.Warn("invalid scene edit, keeping current column", "error", err)
		} else {
			p.Stack = stack
		}
		p.NumPhotons = s.controls.NumPhotons()
		p.Sequential = s.controls.Sequential()
		p.Speed = s.controls.Speed()
	}
	if err := s.Reset(p); err != nil {
		slog.Error("failed to restart run", "error", err)
	}
}

// exportScene writes the current column as a YAML config overlay, so a
// scene tuned in the panel can seed later batch or headless runs.
func (s *Sim) exportScene() {
	cfg := *config.Cfg()
	cfg.Scene = config.SceneConfig{
		Layers:        make([]config.LayerConfig, 0, s.stack.Len()),
		SurfaceAlbedo: s.stack.SurfaceAlbedo(),
	}
	for i, l := range s.stack.Layers() {
		lc := config.LayerConfig{
			TauThickness: l.Thickness,
			Omega0:       l.Omega0,
			G:            l.G,
		}
		if s.controls != nil {
			lc.Preset = s.controls.LayerPresetName(i)
		}
		cfg.Scene.Layers = append(cfg.Scene.Layers, lc)
	}

	dir := "."
	if s.outputManager != nil {
		dir = s.outputManager.Dir()
	}
	path := filepath.Join(dir, fmt.Sprintf("scene_%s.yaml", time.Now().Format("20060102_150405")))
	if err := cfg.WriteYAML(path); err != nil {
		slog.Error("failed to export scene", "error", err)
		return
	}
	slog.Info("exported scene", "path", path, "layers", s.stack.Len())
}
