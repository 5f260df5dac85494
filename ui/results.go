package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/mcsky/twostream/renderer"
	"github.com/mcsky/twostream/transport"
)

// ResultsPanel shows the energy budget of the most recent batch run at
// the bottom of the control panel.
type ResultsPanel struct {
	layout renderer.Layout

	hasResult bool
	result    transport.Result
	seed      int64
	elapsed   time.Duration
	flux      float64
}

// NewResultsPanel creates the panel for the given screen layout.
func NewResultsPanel(layout renderer.Layout) *ResultsPanel {
	return &ResultsPanel{layout: layout}
}

// SetLayout updates the layout after a window resize.
func (p *ResultsPanel) SetLayout(layout renderer.Layout) {
	p.layout = layout
}

// SetResult installs a finished batch run for display.
func (p *ResultsPanel) SetResult(res transport.Result, seed int64, elapsed time.Duration, flux float64) {
	p.result = res
	p.seed = seed
	p.elapsed = elapsed
	p.flux = flux
	p.hasResult = true
}

// Result returns the displayed batch run, if any. The sample paths feed
// the batch paths overlay.
func (p *ResultsPanel) Result() (transport.Result, bool) {
	return p.result, p.hasResult
}

// Draw renders the panel. Nothing is drawn before the first batch run.
func (p *ResultsPanel) Draw(r *Renderer) {
	if !p.hasResult {
		return
	}

	pad := r.Theme.Padding
	w := int32(p.layout.PanelW) - 32
	h := int32(196)
	x := int32(p.layout.PanelX) + 16
	y := int32(p.layout.ScreenH) - h - 12

	r.DrawPanel(x, y, w, h)

	inner := x + pad
	innerW := w - pad*2
	rowY := y + pad

	rl.DrawText("Batch Result", inner, rowY, 16, rl.White)
	rowY += 22

	rl.DrawText(
		fmt.Sprintf("%d photons | seed %d | %s", p.result.NumPhotons, p.seed, p.elapsed.Round(time.Millisecond)),
		inner, rowY, r.Theme.FontSize, r.Theme.LabelColor,
	)
	rowY += r.Theme.LineHeight + 2

	rowY = r.DrawRateBar(inner, rowY, "R", float32(p.result.Reflectance), rl.Color{R: 100, G: 150, B: 230, A: 255}, innerW)
	rowY = r.DrawRateBar(inner, rowY, "T", float32(p.result.Transmittance), rl.Color{R: 110, G: 200, B: 110, A: 255}, innerW)
	rowY = r.DrawRateBar(inner, rowY, "A", float32(p.result.Absorptance), rl.Color{R: 220, G: 120, B: 90, A: 255}, innerW)
	rowY += 4

	rl.DrawText(
		fmt.Sprintf("energy  R %.1f  T %.1f  A %.1f  of %.0f",
			p.result.EnergyReflected, p.result.EnergyTransmitted, p.result.EnergyAbsorbed, p.result.TotalEnergy),
		inner, rowY, r.Theme.FontSize, r.Theme.ValueColor,
	)
	rowY += r.Theme.LineHeight

	rl.DrawText(
		fmt.Sprintf("flux    R %.0f  T %.0f  A %.0f  of %.0f W/m2",
			p.result.Reflectance*p.flux, p.result.Transmittance*p.flux, p.result.Absorptance*p.flux, p.flux),
		inner, rowY, r.Theme.FontSize, r.Theme.ValueColor,
	)
	rowY += r.Theme.LineHeight

	rl.DrawText(
		fmt.Sprintf("%d sample paths  [B] to draw", len(p.result.SamplePaths)),
		inner, rowY, r.Theme.FontSize, r.Theme.LabelColor,
	)
}
