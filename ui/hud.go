package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/mcsky/twostream/atmosphere"
	"github.com/mcsky/twostream/camera"
	"github.com/mcsky/twostream/renderer"
	"github.com/mcsky/twostream/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Launched   int
	Target     int
	InFlight   int
	Completed  int
	Frame      int32
	Speed      float64
	StepsPer   int
	FPS        int32
	Paused     bool
	Complete   bool
	Sequential bool

	// Cumulative fate fractions of launched photons
	Reflectance   float64
	Transmittance float64
	Absorptance   float64
}

// HUD renders the heads-up display over the scene.
type HUD struct {
	layout renderer.Layout
}

// NewHUD creates a HUD for the given screen layout.
func NewHUD(layout renderer.Layout) *HUD {
	return &HUD{layout: layout}
}

// SetLayout updates the layout after a window resize.
func (h *HUD) SetLayout(layout renderer.Layout) {
	h.layout = layout
}

// Draw renders the counts, status, and the live energy budget.
func (h *HUD) Draw(r *Renderer, data HUDData) {
	// Header block
	rl.DrawText("Two-Stream Monte Carlo", 10, 8, 20, rl.White)

	mode := "parallel"
	if data.Sequential {
		mode = "sequential"
	}
	rl.DrawText(
		fmt.Sprintf("Photons: %d/%d | In flight: %d | Mode: %s", data.Launched, data.Target, data.InFlight, mode),
		10, 34, 14, rl.LightGray,
	)
	rl.DrawText(
		fmt.Sprintf("Frame: %d | Speed: %.1fx | Steps: %d | FPS: %d", data.Frame, data.Speed, data.StepsPer, data.FPS),
		10, 52, 14, rl.LightGray,
	)

	status := "Running"
	statusColor := rl.Yellow
	switch {
	case data.Complete:
		status = "COMPLETE"
		statusColor = rl.Green
	case data.Paused:
		status = "PAUSED"
		statusColor = rl.Orange
	}
	rl.DrawText(status, 10, 70, 14, statusColor)

	// Live budget block on a translucent card
	x := int32(10)
	y := int32(92)
	w := int32(230)
	r.DrawPanel(x, y, w, 76)

	inner := x + 8
	rowY := y + 6
	rl.DrawText(fmt.Sprintf("Completed: %d", data.Completed), inner, rowY, r.Theme.FontSize, r.Theme.LabelColor)
	rowY += r.Theme.LineHeight

	rowY = r.DrawRateBar(inner, rowY, "R", float32(data.Reflectance), rl.Color{R: 100, G: 150, B: 230, A: 255}, w-16)
	rowY = r.DrawRateBar(inner, rowY, "T", float32(data.Transmittance), rl.Color{R: 110, G: 200, B: 110, A: 255}, w-16)
	r.DrawRateBar(inner, rowY, "A", float32(data.Absorptance), rl.Color{R: 220, G: 120, B: 90, A: 255}, w-16)
}

// DrawProfiles renders the depth histograms at the right edge of the scene.
func (h *HUD) DrawProfiles(r *Renderer, stats *telemetry.SimulationStats) {
	const colW = int32(64)
	pad := r.Theme.Padding

	panelW := colW*2 + pad*3
	panelH := int32(h.layout.AnimH * 0.6)
	if panelH < 160 {
		panelH = 160
	}
	x := int32(h.layout.SceneW) - panelW - 10
	y := int32(h.layout.AnimY) + 10

	r.DrawPanel(x, y, panelW, panelH)

	histH := panelH - pad*2 - r.Theme.LineHeight - 14
	rl.DrawText("top", x+pad, y+pad, 10, rl.Gray)
	r.DrawHistogram(x+pad, y+pad+12, colW, histH, "absorb", stats.AbsorptionProfile[:], rl.Color{R: 220, G: 120, B: 90, A: 255})
	r.DrawHistogram(x+pad*2+colW, y+pad+12, colW, histH, "scatter", stats.ScatteringProfile[:], rl.Color{R: 100, G: 150, B: 230, A: 255})
	rl.DrawText("bottom", x+pad, y+panelH-14, 10, rl.Gray)
}

// DrawLegend renders the key binding line at the bottom of the scene.
func (h *HUD) DrawLegend() {
	legend := "[Space] pause  [,/.] step rate  [arrows/wheel] pan+zoom  [Home] reset view  [R] restart  [F1] overlays  [F5/F9] snapshot  [F11] fullscreen"
	rl.DrawText(legend, 10, int32(h.layout.ScreenH)-22, 12, rl.Gray)
}

// DrawSceneTooltip shows the optical depth and layer under the cursor.
func (h *HUD) DrawSceneTooltip(r *Renderer, cam *camera.Camera, stack *atmosphere.Stack, mouse rl.Vector2) {
	if mouse.X < 0 || mouse.X >= h.layout.SceneW {
		return
	}
	if mouse.Y < h.layout.AnimY || mouse.Y > h.layout.AnimY+h.layout.AnimH {
		return
	}

	tau := float64(cam.YToTau(mouse.Y))

	var lines []string
	switch {
	case tau < 0:
		lines = []string{"space"}
	case tau >= stack.TauMax():
		lines = []string{fmt.Sprintf("surface  albedo %.2f", stack.SurfaceAlbedo())}
	default:
		lines = []string{fmt.Sprintf("tau = %.2f", tau)}
		if layer, ok := stack.LayerAt(tau); ok {
			lines = append(lines,
				fmt.Sprintf("layer: %.2f to %.2f", layer.Top, layer.Bottom),
				fmt.Sprintf("w0=%.3f  g=%.2f", layer.Omega0, layer.G),
			)
		}
	}

	// Size the card to the widest line, then clamp to the scene
	maxW := int32(0)
	for _, line := range lines {
		if w := rl.MeasureText(line, r.Theme.FontSize); w > maxW {
			maxW = w
		}
	}
	cardW := maxW + 16
	cardH := int32(len(lines))*r.Theme.LineHeight + 10

	cx := int32(mouse.X) + 16
	cy := int32(mouse.Y) + 12
	if cx+cardW > int32(h.layout.SceneW) {
		cx = int32(mouse.X) - cardW - 8
	}
	if cy+cardH > int32(h.layout.ScreenH) {
		cy = int32(mouse.Y) - cardH - 8
	}

	r.DrawPanel(cx, cy, cardW, cardH)
	textY := cy + 5
	for _, line := range lines {
		rl.DrawText(line, cx+8, textY, r.Theme.FontSize, r.Theme.ValueColor)
		textY += r.Theme.LineHeight
	}
}

// PerfPanel renders the frame phase timings.
type PerfPanel struct {
	x, y int32
}

// NewPerfPanel creates a performance panel at the given position.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{x: x, y: y}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// phaseOrder fixes the row order; map iteration would shuffle it.
var phaseOrder = []string{
	telemetry.PhaseLaunch,
	telemetry.PhaseAdvance,
	telemetry.PhaseEvict,
	telemetry.PhaseTelemetry,
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(r *Renderer, stats telemetry.PerfStats) {
	x := p.x
	y := p.y

	r.DrawPanel(x-6, y-6, 210, int32(len(phaseOrder))*14+66)

	rl.DrawText("Step Performance", x, y, 16, rl.White)
	y += 20

	rl.DrawText(fmt.Sprintf("avg %s | %.0f steps/s", stats.AvgStepDuration.Round(time.Microsecond), stats.StepsPerSecond), x, y, 12, rl.Yellow)
	y += 16

	for _, phase := range phaseOrder {
		avg := stats.PhaseAvg[phase]
		pct := stats.PhasePct[phase]

		color := rl.LightGray
		if pct > 50 {
			color = rl.Red
		} else if pct > 25 {
			color = rl.Orange
		}

		rl.DrawText(
			fmt.Sprintf("%-10s %8s %5.1f%%", phase, avg.Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += 14
	}
}
