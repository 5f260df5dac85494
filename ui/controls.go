package ui

import (
	"fmt"
	"math"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/mcsky/twostream/atmosphere"
	"github.com/mcsky/twostream/config"
)

// LayerEdit holds the editable optical properties of one layer plus the
// preset its values currently match.
type LayerEdit struct {
	Preset    string
	Thickness float32
	Omega0    float32
	G         float32
}

// Actions reports what the user asked for during one panel draw.
type Actions struct {
	SceneChanged bool // physics parameter edited; rebuild column and restart
	RunChanged   bool // photon count or launch mode edited; restart
	SpeedChanged bool // pacing only, no restart
	TogglePause  bool
	Restart      bool
	RunBatch     bool
	ExportScene  bool
}

// ControlsState carries the run context the panel needs for its labels.
type ControlsState struct {
	Paused       bool
	Complete     bool
	BatchRunning bool
}

// Controls is the raygui parameter panel on the right edge of the window.
// Sliders edit a local copy of the scene; the caller rebuilds the column
// whenever Actions reports a change.
type Controls struct {
	cfg  *config.Config
	x, w float32

	layers        []LayerEdit
	surfaceAlbedo float32
	selected      int

	numPhotons float32
	speed      float32
	sequential bool

	batchPhotons   float32
	batchPresetIdx int
}

// NewControls creates the parameter panel from the loaded config.
func NewControls(cfg *config.Config) *Controls {
	c := &Controls{
		cfg:          cfg,
		x:            cfg.Derived.PanelX32,
		w:            cfg.Derived.PanelW32,
		batchPhotons: float32(cfg.Batch.NumPhotons),
	}
	if idx, ok := cfg.Derived.ScenePresetIndex[cfg.Batch.Preset]; ok {
		c.batchPresetIdx = idx
	}
	return c
}

// SyncScene replaces the edit state with the given column and run settings.
func (c *Controls) SyncScene(stack *atmosphere.Stack, targetPhotons int, speed float64, sequential bool) {
	c.layers = c.layers[:0]
	for _, l := range stack.Layers() {
		c.layers = append(c.layers, LayerEdit{
			Preset:    c.matchPreset(l.Thickness, l.Omega0, l.G),
			Thickness: float32(l.Thickness),
			Omega0:    float32(l.Omega0),
			G:         float32(l.G),
		})
	}
	c.surfaceAlbedo = float32(stack.SurfaceAlbedo())
	if c.selected >= len(c.layers) {
		c.selected = len(c.layers) - 1
	}
	if c.selected < 0 {
		c.selected = 0
	}
	c.numPhotons = float32(targetPhotons)
	c.speed = float32(speed)
	c.sequential = sequential
}

// SetPanelRect moves the panel after a window resize.
func (c *Controls) SetPanelRect(x, w float32) {
	c.x = x
	c.w = w
}

// Scene returns the edited column as layer values plus the surface albedo.
func (c *Controls) Scene() ([]atmosphere.Layer, float64) {
	layers := make([]atmosphere.Layer, 0, len(c.layers))
	for _, le := range c.layers {
		layers = append(layers, atmosphere.Layer{
			Thickness: float64(le.Thickness),
			Omega0:    float64(le.Omega0),
			G:         float64(le.G),
		})
	}
	return layers, float64(c.surfaceAlbedo)
}

// NumPhotons returns the edited animated photon count.
func (c *Controls) NumPhotons() int {
	return int(c.numPhotons)
}

// Speed returns the edited animation speed.
func (c *Controls) Speed() float64 {
	return float64(c.speed)
}

// Sequential returns the edited launch mode.
func (c *Controls) Sequential() bool {
	return c.sequential
}

// BatchPhotons returns the edited batch photon count.
func (c *Controls) BatchPhotons() int {
	return int(c.batchPhotons)
}

// LayerColor returns the display tint for a layer band, taken from the
// preset its values match.
func (c *Controls) LayerColor(i int) rl.Color {
	fallback := rl.Color{R: 135, G: 206, B: 235, A: 80}
	if i < 0 || i >= len(c.layers) {
		return fallback
	}
	preset, ok := c.cfg.LayerPresetByName(c.layers[i].Preset)
	if !ok {
		return fallback
	}
	return rl.Color{R: preset.Color[0], G: preset.Color[1], B: preset.Color[2], A: preset.Color[3]}
}

// LayerPresetName returns the preset label for a layer band.
func (c *Controls) LayerPresetName(i int) string {
	if i < 0 || i >= len(c.layers) {
		return ""
	}
	return c.layers[i].Preset
}

// matchPreset finds a preset whose optical properties match the values,
// or "Custom" when none does.
func (c *Controls) matchPreset(thickness, omega0, g float64) string {
	const eps = 1e-4
	for _, p := range c.cfg.LayerPresets {
		if p.Name == "Custom" {
			continue
		}
		if math.Abs(p.TauThickness-thickness) < eps &&
			math.Abs(p.Omega0-omega0) < eps &&
			math.Abs(p.G-g) < eps {
			return p.Name
		}
	}
	return "Custom"
}

// Draw renders the panel and returns the actions the user triggered.
func (c *Controls) Draw(r *Renderer, state ControlsState, screenH float32) Actions {
	var acts Actions

	r.DrawPanel(int32(c.x), 0, int32(c.w), int32(screenH))

	pad := float32(r.Theme.Padding) + 6
	x := c.x + pad
	w := c.w - pad*2
	y := float32(12)

	rl.DrawText("Two-Stream Controls", int32(x), int32(y), 18, rl.White)
	y += 30

	y = c.drawColumnSection(r, x, y, w, &acts)
	y = c.drawAnimationSection(r, x, y, w, state, &acts)
	y = c.drawBatchSection(r, x, y, w, state, &acts)
	c.drawOutputSection(r, x, y, w, &acts)

	return acts
}

// drawColumnSection edits the selected layer, the layer list, and the
// surface albedo.
func (c *Controls) drawColumnSection(r *Renderer, x, y, w float32, acts *Actions) float32 {
	y = float32(r.DrawSectionHeader(int32(x), int32(y), "Atmospheric Column"))
	y += 4

	if len(c.layers) == 0 {
		return y
	}
	sel := &c.layers[c.selected]

	// Layer selector row
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: 26, Height: 22}, "<") {
		if c.selected > 0 {
			c.selected--
		}
	}
	label := fmt.Sprintf("Layer %d / %d", c.selected+1, len(c.layers))
	rl.DrawText(label, int32(x+34), int32(y+4), 14, rl.White)
	if gui.Button(rl.Rectangle{X: x + 140, Y: y, Width: 26, Height: 22}, ">") {
		if c.selected < len(c.layers)-1 {
			c.selected++
		}
	}

	// Preset cycle button
	if gui.Button(rl.Rectangle{X: x + 178, Y: y, Width: w - 178, Height: 22}, sel.Preset) {
		c.cyclePreset(sel)
		acts.SceneChanged = true
	}
	y += 32

	y = c.paramSlider(x, y, w, "Optical thickness", "%.2f", &sel.Thickness, 0.1, 30.0, func() {
		sel.Preset = c.matchPreset(float64(sel.Thickness), float64(sel.Omega0), float64(sel.G))
		acts.SceneChanged = true
	})
	y = c.paramSlider(x, y, w, "Single-scatter albedo", "%.3f", &sel.Omega0, 0.0, 1.0, func() {
		sel.Preset = c.matchPreset(float64(sel.Thickness), float64(sel.Omega0), float64(sel.G))
		acts.SceneChanged = true
	})
	y = c.paramSlider(x, y, w, "Asymmetry g", "%.2f", &sel.G, -0.95, 0.95, func() {
		sel.Preset = c.matchPreset(float64(sel.Thickness), float64(sel.Omega0), float64(sel.G))
		acts.SceneChanged = true
	})

	// Layer list editing
	half := (w - 10) / 2
	canAdd := len(c.layers) < atmosphere.MaxLayers
	canRemove := len(c.layers) > atmosphere.MinLayers
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: half, Height: 24}, "Add Layer") && canAdd {
		c.insertLayerBelow(c.selected)
		acts.SceneChanged = true
	}
	if gui.Button(rl.Rectangle{X: x + half + 10, Y: y, Width: half, Height: 24}, "Remove Layer") && canRemove {
		c.layers = append(c.layers[:c.selected], c.layers[c.selected+1:]...)
		if c.selected >= len(c.layers) {
			c.selected = len(c.layers) - 1
		}
		acts.SceneChanged = true
	}
	y += 32

	y = c.paramSlider(x, y, w, "Surface albedo", "%.2f", &c.surfaceAlbedo, 0.0, 1.0, func() {
		acts.SceneChanged = true
	})

	return y + 6
}

// drawAnimationSection edits the animated run settings.
func (c *Controls) drawAnimationSection(r *Renderer, x, y, w float32, state ControlsState, acts *Actions) float32 {
	y = float32(r.DrawSectionHeader(int32(x), int32(y), "Animation"))
	y += 4

	minP := float32(c.cfg.Animation.MinPhotons)
	maxP := float32(c.cfg.Animation.MaxPhotons)
	y = c.paramSlider(x, y, w, "Photons", "%.0f", &c.numPhotons, minP, maxP, func() {
		acts.RunChanged = true
	})
	y = c.paramSlider(x, y, w, "Speed", "%.1f", &c.speed, 0.5, 10.0, func() {
		acts.SpeedChanged = true
	})

	third := (w - 20) / 3
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: third, Height: 24}, toggleText(c.sequential, "Sequential", "Parallel")) {
		c.sequential = !c.sequential
		acts.RunChanged = true
	}
	if gui.Button(rl.Rectangle{X: x + third + 10, Y: y, Width: third, Height: 24}, toggleText(state.Paused, "Resume", "Pause")) {
		acts.TogglePause = true
	}
	if gui.Button(rl.Rectangle{X: x + (third+10)*2, Y: y, Width: third, Height: 24}, toggleText(state.Complete, "Run Again", "Restart")) {
		acts.Restart = true
	}
	y += 32

	return y + 6
}

// drawBatchSection edits and fires the jump-to-interaction batch run on
// the current column.
func (c *Controls) drawBatchSection(r *Renderer, x, y, w float32, state ControlsState, acts *Actions) float32 {
	y = float32(r.DrawSectionHeader(int32(x), int32(y), "Batch Run"))
	y += 4

	y = c.paramSlider(x, y, w, "Batch photons", "%.0f", &c.batchPhotons, 100, float32(c.cfg.Batch.MaxPhotons), nil)

	// Preset loader: cycle the name, then load as a single-layer column
	if len(c.cfg.ScenePresets) > 0 {
		preset := c.cfg.ScenePresets[c.batchPresetIdx]
		if gui.Button(rl.Rectangle{X: x, Y: y, Width: w*0.55 - 5, Height: 24}, "Preset: "+preset.Name) {
			c.batchPresetIdx = (c.batchPresetIdx + 1) % len(c.cfg.ScenePresets)
		}
		if gui.Button(rl.Rectangle{X: x + w*0.55 + 5, Y: y, Width: w*0.45 - 5, Height: 24}, "Load") {
			c.applyScenePreset(preset)
			acts.SceneChanged = true
		}
		y += 32
	}

	if state.BatchRunning {
		rl.DrawText("Running...", int32(x), int32(y+4), 14, rl.Yellow)
	} else if gui.Button(rl.Rectangle{X: x, Y: y, Width: w, Height: 28}, "Run Batch") {
		acts.RunBatch = true
	}
	y += 36

	return y + 6
}

// drawOutputSection holds the export button.
func (c *Controls) drawOutputSection(r *Renderer, x, y, w float32, acts *Actions) float32 {
	y = float32(r.DrawSectionHeader(int32(x), int32(y), "Output"))
	y += 4

	if gui.Button(rl.Rectangle{X: x, Y: y, Width: w, Height: 24}, "Export Scene YAML") {
		acts.ExportScene = true
	}
	y += 32

	return y
}

// paramSlider draws one labelled slider row. onChange fires when the
// value moved this frame.
func (c *Controls) paramSlider(x, y, w float32, label, format string, value *float32, min, max float32, onChange func()) float32 {
	rl.DrawText(label, int32(x), int32(y), 13, rl.Gray)
	y += 17

	newVal := gui.SliderBar(
		rl.Rectangle{X: x, Y: y, Width: w - 64, Height: 18},
		"", "",
		*value, min, max,
	)
	rl.DrawText(fmt.Sprintf(format, *value), int32(x+w-58), int32(y+2), 14, rl.RayWhite)

	if newVal != *value {
		*value = newVal
		if onChange != nil {
			onChange()
		}
	}

	return y + 27
}

// cyclePreset advances a layer to the next preset in the table and
// applies its optical properties.
func (c *Controls) cyclePreset(le *LayerEdit) {
	presets := c.cfg.LayerPresets
	if len(presets) == 0 {
		return
	}
	idx := 0
	if cur, ok := c.cfg.Derived.LayerPresetIndex[le.Preset]; ok {
		idx = (cur + 1) % len(presets)
	}
	p := presets[idx]
	le.Preset = p.Name
	le.Thickness = float32(p.TauThickness)
	le.Omega0 = float32(p.Omega0)
	le.G = float32(p.G)
}

// insertLayerBelow adds a clear layer under the given index and selects it.
func (c *Controls) insertLayerBelow(idx int) {
	add := LayerEdit{Preset: "Clear Atmosphere", Thickness: 0.1, Omega0: 0.99, G: 0.1}
	if p, ok := c.cfg.LayerPresetByName("Clear Atmosphere"); ok {
		add.Thickness = float32(p.TauThickness)
		add.Omega0 = float32(p.Omega0)
		add.G = float32(p.G)
	}
	c.layers = append(c.layers, LayerEdit{})
	copy(c.layers[idx+2:], c.layers[idx+1:])
	c.layers[idx+1] = add
	c.selected = idx + 1
}

// applyScenePreset replaces the column with the preset's single layer.
func (c *Controls) applyScenePreset(p config.ScenePreset) {
	c.layers = c.layers[:0]
	c.layers = append(c.layers, LayerEdit{
		Preset:    c.matchPreset(p.TauMax, p.Omega0, p.G),
		Thickness: float32(p.TauMax),
		Omega0:    float32(p.Omega0),
		G:         float32(p.G),
	})
	c.surfaceAlbedo = float32(p.SurfaceAlbedo)
	c.selected = 0
}

// toggleText picks a label based on a boolean state.
func toggleText(state bool, whenTrue, whenFalse string) string {
	if state {
		return whenTrue
	}
	return whenFalse
}
