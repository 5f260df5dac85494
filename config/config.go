// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen       ScreenConfig    `yaml:"screen"`
	Scene        SceneConfig     `yaml:"scene"`
	Physics      PhysicsConfig   `yaml:"physics"`
	Animation    AnimationConfig `yaml:"animation"`
	Batch        BatchConfig     `yaml:"batch"`
	Output       OutputConfig    `yaml:"output"`
	Telemetry    TelemetryConfig `yaml:"telemetry"`
	LayerPresets []LayerPreset   `yaml:"layer_presets"`
	ScenePresets []ScenePreset   `yaml:"scene_presets"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width      int `yaml:"width"`
	Height     int `yaml:"height"`
	SceneWidth int `yaml:"scene_width"` // Left portion reserved for the scene; rest is the control panel
	TargetFPS  int `yaml:"target_fps"`
}

// SceneConfig holds the initial atmospheric column.
type SceneConfig struct {
	Layers        []LayerConfig `yaml:"layers"`
	SurfaceAlbedo float64       `yaml:"surface_albedo"`
}

// LayerConfig describes one atmospheric layer in the column, top to bottom.
// A layer that names a preset inherits any optical property left at zero.
type LayerConfig struct {
	Preset       string  `yaml:"preset"`
	TauThickness float64 `yaml:"tau_thickness"`
	Omega0       float64 `yaml:"omega_0"`
	G            float64 `yaml:"g"`
}

// PhysicsConfig holds transport parameters shared by both engines.
type PhysicsConfig struct {
	WeightThreshold float64 `yaml:"weight_threshold"` // Photons below this weight are terminated
}

// AnimationConfig holds frame-stepped viewer parameters.
type AnimationConfig struct {
	NumPhotons     int     `yaml:"num_photons"`
	MinPhotons     int     `yaml:"min_photons"`
	MaxPhotons     int     `yaml:"max_photons"`
	Speed          float64 `yaml:"speed"`           // Optical depth per frame = speed * step_scale
	StepScale      float64 `yaml:"step_scale"`      // Tau advanced per frame per unit of speed
	Mode           string  `yaml:"mode"`            // "sequential" or "parallel"
	LaunchInterval int     `yaml:"launch_interval"` // Frames between sequential launches
	FadeFrames     int     `yaml:"fade_frames"`     // Absorption fade-out duration
	FlashFrames    int     `yaml:"flash_frames"`    // Scatter flash duration
	PhotonRadius   float32 `yaml:"photon_radius"`   // Draw radius in pixels
}

// BatchConfig holds jump-to-interaction batch run parameters.
type BatchConfig struct {
	NumPhotons int    `yaml:"num_photons"`
	MaxPhotons int    `yaml:"max_photons"`
	Preset     string `yaml:"preset"` // Scene preset applied before a run
}

// OutputConfig holds result presentation parameters.
type OutputConfig struct {
	SolarConstant float64 `yaml:"solar_constant"` // Incident flux in W/m^2 for energy scaling
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// LayerPreset is a named set of layer optical properties plus display styling.
type LayerPreset struct {
	Name         string   `yaml:"name"`
	TauThickness float64  `yaml:"tau_thickness"`
	Omega0       float64  `yaml:"omega_0"`
	G            float64  `yaml:"g"`
	Description  string   `yaml:"description"`
	Color        [4]uint8 `yaml:"color"` // RGBA band tint
}

// ScenePreset is a named single-layer column for batch runs.
type ScenePreset struct {
	Name          string  `yaml:"name"`
	TauMax        float64 `yaml:"tau_max"`
	Omega0        float64 `yaml:"omega_0"`
	G             float64 `yaml:"g"`
	SurfaceAlbedo float64 `yaml:"surface_albedo"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	ScreenW32        float32        // Screen.Width as float32
	ScreenH32        float32        // Screen.Height as float32
	SceneW32         float32        // Screen.SceneWidth as float32
	PanelX32         float32        // Left edge of the control panel
	PanelW32         float32        // Control panel width
	LayerPresetIndex map[string]int // name -> index into LayerPresets
	ScenePresetIndex map[string]int // name -> index into ScenePresets
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	// Compute derived values
	cfg.computeDerived()

	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)

	// Scene width defaults to the full screen minus a 450px panel
	sceneW := c.Screen.SceneWidth
	if sceneW == 0 || sceneW > c.Screen.Width {
		sceneW = c.Screen.Width - 450
	}
	c.Derived.SceneW32 = float32(sceneW)
	c.Derived.PanelX32 = float32(sceneW)
	c.Derived.PanelW32 = float32(c.Screen.Width - sceneW)

	// Synthesize a default column if none specified
	if len(c.Scene.Layers) == 0 {
		c.Scene.Layers = []LayerConfig{
			{Preset: "Custom", TauThickness: 3.0, Omega0: 0.9, G: 0.0},
		}
	}

	// Build preset name indexes for fast lookup
	c.Derived.LayerPresetIndex = make(map[string]int, len(c.LayerPresets))
	for i, p := range c.LayerPresets {
		c.Derived.LayerPresetIndex[p.Name] = i
	}
	c.Derived.ScenePresetIndex = make(map[string]int, len(c.ScenePresets))
	for i, p := range c.ScenePresets {
		c.Derived.ScenePresetIndex[p.Name] = i
	}

	// Layers that name a preset inherit unset optical properties from it
	for i := range c.Scene.Layers {
		layer := &c.Scene.Layers[i]
		idx, ok := c.Derived.LayerPresetIndex[layer.Preset]
		if !ok {
			continue
		}
		preset := c.LayerPresets[idx]
		if layer.TauThickness == 0 {
			layer.TauThickness = preset.TauThickness
		}
		if layer.Omega0 == 0 {
			layer.Omega0 = preset.Omega0
		}
		if layer.G == 0 {
			layer.G = preset.G
		}
	}
}

// LayerPresetByName returns the layer preset with the given name.
func (c *Config) LayerPresetByName(name string) (LayerPreset, bool) {
	idx, ok := c.Derived.LayerPresetIndex[name]
	if !ok {
		return LayerPreset{}, false
	}
	return c.LayerPresets[idx], true
}

// ScenePresetByName returns the scene preset with the given name.
func (c *Config) ScenePresetByName(name string) (ScenePreset, bool) {
	idx, ok := c.Derived.ScenePresetIndex[name]
	if !ok {
		return ScenePreset{}, false
	}
	return c.ScenePresets[idx], true
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
