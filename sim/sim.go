// Package sim runs the frame-stepped photon animation over an ECS world.
package sim

import (
	"log/slog"

	"github.com/mlange-42/ark/ecs"

	"github.com/mcsky/twostream/atmosphere"
	"github.com/mcsky/twostream/camera"
	"github.com/mcsky/twostream/components"
	"github.com/mcsky/twostream/config"
	"github.com/mcsky/twostream/renderer"
	"github.com/mcsky/twostream/rng"
	"github.com/mcsky/twostream/telemetry"
	"github.com/mcsky/twostream/transport"
	"github.com/mcsky/twostream/ui"
)

// Milestone detection and leaderboard sizing.
const (
	milestoneHistory = 8
	notableBoardSize = 10
)

// Options configures a simulation instance.
type Options struct {
	Seed           int64
	LogStats       bool
	StatsWindowSec float64
	SnapshotDir    string
	OutputDir      string
	Headless       bool
	StepsPerUpdate int
	StatsCallback  func(telemetry.WindowStats)
}

// Sim holds the complete animated simulation state.
type Sim struct {
	world *ecs.World
	src   rng.Source
	seed  int64

	stack  *atmosphere.Stack
	engine *transport.Engine

	// Entity mappers - the 5 photon components
	photonMapper *ecs.Map5[
		components.Position,
		components.Travel,
		components.Packet,
		components.Phase,
		components.Trail,
	]
	photonFilter *ecs.Filter5[
		components.Position,
		components.Travel,
		components.Packet,
		components.Phase,
		components.Trail,
	]

	// Telemetry
	stats         *telemetry.SimulationStats
	collector     *telemetry.Collector
	flights       *telemetry.FlightTracker
	milestones    *telemetry.MilestoneDetector
	notable       *telemetry.NotableFlights
	perf          *telemetry.PerfCollector
	outputManager *telemetry.OutputManager
	statsCallback func(telemetry.WindowStats)
	logStats      bool
	snapshotDir   string
	windowSec     float64

	// Rendering (nil in headless mode)
	layout       renderer.Layout
	scene        *renderer.Scene
	camera       *camera.Camera
	uiR          *ui.Renderer
	controls     *ui.Controls
	hud          *ui.HUD
	results      *ui.ResultsPanel
	overlays     *ui.OverlayRegistry
	overlayPanel *ui.OverlayPanel
	inspector    *ui.Inspector
	perfPanel    *ui.PerfPanel

	// Run state
	frame         int32
	paused        bool
	sequential    bool
	speed         float64
	targetPhotons int
	launched      int
	inFlight      int
	runLogged     bool

	stepsPerUpdate int
	headless       bool

	// Background batch run
	batchCh      chan batchOutcome
	batchRunning bool
	batchSeq     int64

	// Window dimensions
	screenWidth, screenHeight float32
}

// NewSim creates a simulation with default options and the given seed.
func NewSim(seed int64) *Sim {
	return NewSimWithOptions(Options{Seed: seed})
}

// NewSimWithOptions creates a simulation instance.
func NewSimWithOptions(opts Options) *Sim {
	cfg := config.Cfg()
	world := ecs.NewWorld()

	s := &Sim{
		world:         world,
		src:           rng.NewPCG(opts.Seed),
		seed:          opts.Seed,
		stats:         &telemetry.SimulationStats{},
		flights:       telemetry.NewFlightTracker(),
		milestones:    telemetry.NewMilestoneDetector(milestoneHistory),
		notable:       telemetry.NewNotableFlights(notableBoardSize),
		perf:          telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		statsCallback: opts.StatsCallback,
		logStats:      opts.LogStats,
		snapshotDir:   opts.SnapshotDir,
		headless:      opts.Headless,
		screenWidth:   cfg.Derived.ScreenW32,
		screenHeight:  cfg.Derived.ScreenH32,
		sequential:    cfg.Animation.Mode == "sequential",
		speed:         cfg.Animation.Speed,
		targetPhotons: cfg.Animation.NumPhotons,
		batchCh:       make(chan batchOutcome, 1),
		photonMapper: ecs.NewMap5[
			components.Position,
			components.Travel,
			components.Packet,
			components.Phase,
			components.Trail,
		](world),
		photonFilter: ecs.NewFilter5[
			components.Position,
			components.Travel,
			components.Packet,
			components.Phase,
			components.Trail,
		](world),
	}

	// Stats window from options, falling back to config
	windowSec := opts.StatsWindowSec
	if windowSec <= 0 {
		windowSec = cfg.Telemetry.StatsWindow
	}
	s.windowSec = windowSec
	dt := float32(1.0) / float32(cfg.Screen.TargetFPS)
	s.collector = telemetry.NewCollector(windowSec, dt)

	s.stepsPerUpdate = opts.StepsPerUpdate
	if s.stepsPerUpdate < 1 {
		s.stepsPerUpdate = 1
	}

	// Build the column from config
	stack, err := stackFromConfig(cfg)
	if err != nil {
		// Embedded defaults are known-good; a broken overlay falls back to them
		slog.Error("invalid scene config, using uniform default", "error", err)
		stack, _ = atmosphere.Uniform(3.0, 0.9, 0.0, 0.2)
	}
	s.setStack(stack)

	// CSV output
	if opts.OutputDir != "" {
		om, err := telemetry.NewOutputManager(opts.OutputDir)
		if err != nil {
			slog.Error("failed to create output manager", "error", err)
		} else {
			s.outputManager = om
			if err := om.WriteConfig(cfg); err != nil {
				slog.Error("failed to write config snapshot", "error", err)
			}
		}
	}

	// Rendering stack only in graphics mode
	if !opts.Headless {
		s.layout = renderer.NewLayout(cfg)
		s.scene = renderer.NewScene(opts.Seed)
		s.camera = camera.New(s.layout.AnimY, s.layout.AnimH, float32(stack.TauMax()))
		s.uiR = ui.NewRenderer(ui.DefaultTheme())
		s.controls = ui.NewControls(cfg)
		s.controls.SyncScene(stack, s.targetPhotons, s.speed, s.sequential)
		s.hud = ui.NewHUD(s.layout)
		s.results = ui.NewResultsPanel(s.layout)
		s.overlays = ui.NewOverlayRegistry()
		s.overlayPanel = ui.NewOverlayPanel(10, 180, 250)
		s.inspector = ui.NewInspector(s.layout)
		s.perfPanel = ui.NewPerfPanel(int32(s.layout.SceneW)-230, int32(s.layout.ScreenH)-140)
	}

	return s
}

// stackFromConfig builds the layer stack described by the scene config.
func stackFromConfig(cfg *config.Config) (*atmosphere.Stack, error) {
	layers := make([]atmosphere.Layer, 0, len(cfg.Scene.Layers))
	for _, lc := range cfg.Scene.Layers {
		layers = append(layers, atmosphere.Layer{
			Thickness: lc.TauThickness,
			Omega0:    lc.Omega0,
			G:         lc.G,
		})
	}
	return atmosphere.NewStack(cfg.Scene.SurfaceAlbedo, layers...)
}

// setStack installs a new column and rebuilds the transport engine on it.
func (s *Sim) setStack(stack *atmosphere.Stack) {
	cfg := config.Cfg()
	engine, err := transport.NewEngine(stack, s.src, cfg.Physics.WeightThreshold)
	if err != nil {
		slog.Error("failed to build transport engine", "error", err)
		return
	}
	s.stack = stack
	s.engine = engine
	if s.camera != nil {
		s.camera.SetTauMax(float32(stack.TauMax()))
	}
}

// Frame returns the current frame count.
func (s *Sim) Frame() int32 {
	return s.frame
}

// Stack returns the current layer stack.
func (s *Sim) Stack() *atmosphere.Stack {
	return s.stack
}

// Stats returns the cumulative run statistics.
func (s *Sim) Stats() *telemetry.SimulationStats {
	return s.stats
}

// InFlight returns the number of photons currently in the active set,
// including ones playing their absorption fade.
func (s *Sim) InFlight() int {
	return s.inFlight
}

// Launched returns how many photons have been launched this run.
func (s *Sim) Launched() int {
	return s.launched
}

// IsComplete reports whether every photon has launched and terminated.
func (s *Sim) IsComplete() bool {
	return s.launched >= s.targetPhotons && s.inFlight == 0
}

// Paused reports whether stepping is suspended.
func (s *Sim) Paused() bool {
	return s.paused
}

// Unload flushes output files and releases resources.
func (s *Sim) Unload() {
	if s.outputManager != nil {
		if err := s.outputManager.Close(); err != nil {
			slog.Error("failed to close output manager", "error", err)
		}
	}
}
