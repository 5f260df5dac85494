package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/mcsky/twostream/atmosphere"
	"github.com/mcsky/twostream/config"
	"github.com/mcsky/twostream/rng"
	"github.com/mcsky/twostream/sim"
	"github.com/mcsky/twostream/telemetry"
	"github.com/mcsky/twostream/transport"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	batch := flag.Bool("batch", false, "Run a jump-to-interaction batch and print the energy budget")
	headless := flag.Bool("headless", false, "Run the frame-stepped simulation without graphics")
	preset := flag.String("preset", "", "Scene preset name, overriding the configured column")
	photons := flag.Int("photons", 0, "Photon count override (0 = use config)")
	logStats := flag.Bool("log-stats", false, "Output window stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	snapshotDir := flag.String("snapshot-dir", "", "Directory for snapshot files")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxFrames := flag.Int("max-frames", 0, "Stop after N frames (0 = run to completion)")
	stepsPerUpdate := flag.Int("steps-per-update", 1, "Simulation steps per update call (higher = faster headless runs)")

	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Set up seed
	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	if *preset != "" {
		if err := applyScenePreset(cfg, *preset); err != nil {
			slog.Error("unknown scene preset", "preset", *preset, "error", err)
			os.Exit(1)
		}
	}

	if *batch {
		if err := runBatch(cfg, rngSeed, *photons, *outputDir); err != nil {
			slog.Error("batch run failed", "error", err)
			os.Exit(1)
		}
		return
	}

	// Use config stats window if not overridden by CLI
	statsWindowSec := cfg.Telemetry.StatsWindow
	if *statsWindow > 0 {
		statsWindowSec = *statsWindow
	}

	opts := sim.Options{
		Seed:           rngSeed,
		LogStats:       *logStats,
		StatsWindowSec: statsWindowSec,
		SnapshotDir:    *snapshotDir,
		OutputDir:      *outputDir,
		Headless:       *headless,
		StepsPerUpdate: *stepsPerUpdate,
	}

	if *photons > 0 {
		cfg.Animation.NumPhotons = *photons
	}

	if *headless {
		// Headless mode - pure CPU stepping, no raylib needed
		s := sim.NewSimWithOptions(opts)
		defer s.Unload()

		slog.Info("starting headless run",
			"seed", rngSeed,
			"photons", cfg.Animation.NumPhotons,
			"layers", s.Stack().Len(),
			"max_frames", *maxFrames,
			"steps_per_update", *stepsPerUpdate,
		)

		for {
			s.UpdateHeadless()

			if s.IsComplete() {
				slog.Info("run complete", "frame", s.Frame())
				return
			}
			if *maxFrames > 0 && int(s.Frame()) >= *maxFrames {
				slog.Info("max frames reached", "frame", s.Frame())
				return
			}
		}
	}

	// Graphical mode
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Two-Stream Photon Transport")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	s := sim.NewSimWithOptions(opts)
	defer s.Unload()

	for !rl.WindowShouldClose() {
		s.Update()
		s.Draw()

		if *maxFrames > 0 && int(s.Frame()) >= *maxFrames {
			break
		}
	}
}

// applyScenePreset replaces the configured column with a named preset.
func applyScenePreset(cfg *config.Config, name string) error {
	p, ok := cfg.ScenePresetByName(name)
	if !ok {
		return os.ErrNotExist
	}
	cfg.Scene = config.SceneConfig{
		Layers: []config.LayerConfig{
			{Preset: "Custom", TauThickness: p.TauMax, Omega0: p.Omega0, G: p.G},
		},
		SurfaceAlbedo: p.SurfaceAlbedo,
	}
	cfg.Batch.Preset = name
	return nil
}

// runBatch fires the configured photon count straight through the column
// and logs the energy budget. No ECS, no frames: each photon jumps from
// interaction to interaction until it exits or dies.
func runBatch(cfg *config.Config, seed int64, photonOverride int, outputDir string) error {
	layers := make([]atmosphere.Layer, 0, len(cfg.Scene.Layers))
	for _, lc := range cfg.Scene.Layers {
		layers = append(layers, atmosphere.Layer{
			Thickness: lc.TauThickness,
			Omega0:    lc.Omega0,
			G:         lc.G,
		})
	}
	stack, err := atmosphere.NewStack(cfg.Scene.SurfaceAlbedo, layers...)
	if err != nil {
		return err
	}

	numPhotons := cfg.Batch.NumPhotons
	if photonOverride > 0 {
		numPhotons = photonOverride
	}

	slog.Info("starting batch run",
		"seed", seed,
		"photons", numPhotons,
		"layers", stack.Len(),
		"tau_max", stack.TauMax(),
		"surface_albedo", stack.SurfaceAlbedo(),
	)

	start := time.Now()
	res, err := transport.Run(stack, numPhotons, cfg.Physics.WeightThreshold, rng.NewPCG(seed))
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	flux := cfg.Output.SolarConstant
	slog.Info("batch run complete",
		"elapsed", elapsed.Round(time.Millisecond),
		"reflectance", res.Reflectance,
		"transmittance", res.Transmittance,
		"absorptance", res.Absorptance,
		"flux_reflected", res.Reflectance*flux,
		"flux_transmitted", res.Transmittance*flux,
		"flux_absorbed", res.Absorptance*flux,
		"sample_paths", len(res.SamplePaths),
	)

	if outputDir != "" {
		om, err := telemetry.NewOutputManager(outputDir)
		if err != nil {
			return err
		}
		defer om.Close()
		if err := om.WriteConfig(cfg); err != nil {
			return err
		}
		rec := telemetry.NewRunRecord(seed, stack, cfg.Physics.WeightThreshold, res, flux)
		if err := om.WriteRun(rec); err != nil {
			return err
		}
		slog.Info("wrote run record", "dir", om.Dir())
	}
	return nil
}
