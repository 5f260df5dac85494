package sim

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/mcsky/twostream/components"
	"github.com/mcsky/twostream/config"
	"github.com/mcsky/twostream/renderer"
	"github.com/mcsky/twostream/transport"
	"github.com/mcsky/twostream/ui"
)

// Draw renders one frame: scene, photon field, overlays, then panels.
func (s *Sim) Draw() {
	rl.BeginDrawing()

	showLabels := s.overlays.IsEnabled(ui.OverlayLayerLabels)
	s.scene.Draw(s.stack, s.bandStyles(), s.camera, s.layout, s.frame, showLabels)

	if s.overlays.IsEnabled(ui.OverlayBatchPaths) {
		s.drawBatchPaths()
	}
	s.drawPhotons()

	s.drawHUD()

	acts := s.controls.Draw(s.uiR, ui.ControlsState{
		Paused:       s.paused,
		Complete:     s.IsComplete(),
		BatchRunning: s.batchRunning,
	}, s.layout.ScreenH)
	s.applyActions(acts)

	s.results.Draw(s.uiR)
	s.overlayPanel.Draw(s.uiR, s.overlays)

	// Hover card for the photon under the cursor, else the depth tooltip
	mouse := rl.GetMousePosition()
	if data, ok := s.findPhotonAtMouse(mouse); ok {
		s.inspector.Draw(s.uiR, data)
	} else {
		s.hud.DrawSceneTooltip(s.uiR, s.camera, s.stack, mouse)
	}

	rl.EndDrawing()
}

// bandStyles pairs each layer with its preset tint and label text.
func (s *Sim) bandStyles() []renderer.BandStyle {
	styles := make([]renderer.BandStyle, s.stack.Len())
	for i := range styles {
		layer := s.stack.Layer(i)
		styles[i] = renderer.BandStyle{
			Color: s.controls.LayerColor(i),
			Label: fmt.Sprintf("%s  tau %.1f  w0 %.2f  g %.2f",
				s.controls.LayerPresetName(i), layer.Thickness, layer.Omega0, layer.G),
		}
	}
	return styles
}

// drawHUD draws the counters, the live energy budget, and the optional
// depth profile and perf panels.
func (s *Sim) drawHUD() {
	s.hud.Draw(s.uiR, ui.HUDData{
		Launched:      s.launched,
		Target:        s.targetPhotons,
		InFlight:      s.inFlight,
		Completed:     s.stats.Completed(),
		Frame:         s.frame,
		Speed:         s.speed,
		StepsPer:      s.stepsPerUpdate,
		FPS:           rl.GetFPS(),
		Paused:        s.paused,
		Complete:      s.IsComplete(),
		Sequential:    s.sequential,
		Reflectance:   s.stats.Reflectance(),
		Transmittance: s.stats.Transmittance(),
		Absorptance:   s.stats.Absorptance(),
	})

	if s.overlays.IsEnabled(ui.OverlayHistograms) {
		s.hud.DrawProfiles(s.uiR, s.stats)
	}
	if s.overlays.IsEnabled(ui.OverlayPerf) {
		s.perfPanel.Draw(s.uiR, s.perf.Stats())
	}
	s.hud.DrawLegend()
}

// applyActions carries the panel's edits into the run.
func (s *Sim) applyActions(acts ui.Actions) {
	if acts.SpeedChanged {
		s.speed = s.controls.Speed()
	}
	if acts.TogglePause {
		s.paused = !s.paused
	}
	if acts.SceneChanged || acts.RunChanged || acts.Restart {
		s.restartFromControls()
	}
	if acts.RunBatch {
		s.startBatch(s.controls.BatchPhotons())
	}
	if acts.ExportScene {
		s.exportScene()
	}
}

// drawPhotons renders every live photon with its motion trail.
func (s *Sim) drawPhotons() {
	cfg := config.Cfg()
	radius := cfg.Animation.PhotonRadius
	fadeFrames := float32(cfg.Animation.FadeFrames)
	flashFrames := float32(cfg.Animation.FlashFrames)

	showTrails := s.overlays.IsEnabled(ui.OverlayTrails)
	byWeight := s.overlays.IsEnabled(ui.OverlayWeightColors)
	byDirection := s.overlays.IsEnabled(ui.OverlayDirectionColors)

	query := s.photonFilter.Query()
	for query.Next() {
		pos, trav, pk, phase, trail := query.Get()

		if !s.camera.IsVisible(float32(pos.Tau), 24) {
			continue
		}

		// Position.X is a horizontal fraction; scale to the scene width
		x := pos.X * s.layout.SceneW
		color := photonColor(trav.Dir, pk.Weight, byWeight, byDirection)

		// Scatter flash brightens toward white, then decays
		if phase.FlashTimer > 0 {
			t := float32(phase.FlashTimer) / flashFrames
			color = blendToward(color, rl.White, t*0.8)
		}

		r := radius
		alpha := uint8(255)
		switch phase.State {
		case transport.Fading:
			// Ember fade-out at the absorption site
			t := float32(phase.FadeTimer) / fadeFrames
			color = blendToward(rl.Color{R: 230, G: 96, B: 50, A: 255}, color, t*0.4)
			alpha = uint8(55 + 200*t)
			r = radius * (0.6 + 0.4*t)
		case transport.Reflected:
			color = rl.Color{R: 130, G: 180, B: 255, A: 255}
		case transport.Transmitted:
			color = rl.Color{R: 120, G: 220, B: 120, A: 255}
		}
		color.A = alpha

		if showTrails {
			s.drawTrail(trail, color, r)
		}

		y := s.camera.TauToY(float32(pos.Tau))
		rl.DrawCircleV(rl.Vector2{X: x, Y: y}, r, color)
		if phase.FlashTimer > 0 {
			t := float32(phase.FlashTimer) / flashFrames
			halo := color
			halo.A = uint8(60 * t)
			rl.DrawCircleV(rl.Vector2{X: x, Y: y}, r+3*t, halo)
		}
	}
}

// drawTrail draws the recent path of a photon, newest segment widest,
// fading quadratically toward the tail.
func (s *Sim) drawTrail(trail *components.Trail, color rl.Color, radius float32) {
	if trail.Count < 2 {
		return
	}

	rl.BeginBlendMode(rl.BlendAdditive)
	n := int(trail.Count)
	for i := n - 1; i > 0; i-- {
		// i indexes oldest-first; age 0 is the newest segment
		age := float32(n-1-i) / float32(n)
		fade := (1 - age) * (1 - age)

		a := float32(color.A) * 0.45 * fade
		if a < 2 {
			continue
		}

		p0 := trail.At(i - 1)
		p1 := trail.At(i)
		seg := rl.Color{R: color.R, G: color.G, B: color.B, A: uint8(a)}
		rl.DrawLineEx(
			rl.Vector2{X: p0.X * s.layout.SceneW, Y: s.camera.TauToY(float32(p0.Tau))},
			rl.Vector2{X: p1.X * s.layout.SceneW, Y: s.camera.TauToY(float32(p1.Tau))},
			radius*0.7*fade+0.5,
			seg,
		)
	}
	rl.EndBlendMode()
}

// drawBatchPaths draws the sample trajectories kept by the last batch
// run as depth-vs-interaction sparklines spread across the scene.
func (s *Sim) drawBatchPaths() {
	res, ok := s.results.Result()
	if !ok || len(res.SamplePaths) == 0 {
		return
	}

	n := len(res.SamplePaths)
	span := s.layout.SceneW * 0.86
	baseX := s.layout.SceneW * 0.07
	colW := span / float32(n)

	for i, path := range res.SamplePaths {
		if len(path.Positions) < 2 {
			continue
		}
		x0 := baseX + colW*float32(i)
		stepX := colW * 0.9 / float32(len(path.Positions)-1)
		color := outcomeColor(path.Outcome)
		color.A = 160

		prev := rl.Vector2{X: x0, Y: s.camera.TauToY(float32(path.Positions[0]))}
		for j := 1; j < len(path.Positions); j++ {
			next := rl.Vector2{
				X: x0 + stepX*float32(j),
				Y: s.camera.TauToY(float32(path.Positions[j])),
			}
			rl.DrawLineEx(prev, next, 1, color)
			prev = next
		}
		rl.DrawCircleV(prev, 2, color)
	}
}

// findPhotonAtMouse returns inspector data for the photon nearest the
// cursor, within a small hit radius.
func (s *Sim) findPhotonAtMouse(mouse rl.Vector2) (ui.InspectorData, bool) {
	if mouse.X < 0 || mouse.X >= s.layout.SceneW {
		return ui.InspectorData{}, false
	}

	const hitRadius = float32(10)
	closestDist := hitRadius * hitRadius
	var data ui.InspectorData
	found := false

	query := s.photonFilter.Query()
	for query.Next() {
		entity := query.Entity()
		pos, trav, pk, phase, _ := query.Get()

		y := s.camera.TauToY(float32(pos.Tau))
		dx := mouse.X - pos.X*s.layout.SceneW
		dy := mouse.Y - y
		dist := dx*dx + dy*dy
		if dist >= closestDist {
			continue
		}

		closestDist = dist
		found = true
		id := uint32(entity.ID())
		data = ui.InspectorData{
			ID:              id,
			Tau:             pos.Tau,
			Weight:          pk.Weight,
			Scatters:        pk.Scatters,
			Direction:       trav.Dir,
			State:           phase.State,
			NextInteraction: trav.NextInteraction,
		}
		if fs := s.flights.Get(id); fs != nil {
			data.SurfaceBounces = fs.SurfaceBounces
			data.DeepestTau = fs.DeepestTau
			data.AgeFrames = fs.Frames(s.frame)
		}
	}
	return data, found
}

// photonColor picks the base dot color for the active overlay mode.
func photonColor(dir transport.Direction, weight float64, byWeight, byDirection bool) rl.Color {
	switch {
	case byWeight:
		// Full packets warm, roulette survivors cold
		t := float32(weight)
		if t > 1 {
			t = 1
		}
		return blendToward(rl.Color{R: 90, G: 110, B: 230, A: 255}, rl.Color{R: 255, G: 235, B: 170, A: 255}, t)
	case byDirection:
		if dir == transport.Up {
			return rl.Color{R: 130, G: 190, B: 255, A: 255}
		}
		return rl.Color{R: 255, G: 220, B: 120, A: 255}
	default:
		return rl.Color{R: 255, G: 235, B: 170, A: 255}
	}
}

// outcomeColor matches the fate colors used by the HUD rate bars.
func outcomeColor(state transport.State) rl.Color {
	switch state {
	case transport.Reflected:
		return rl.Color{R: 100, G: 150, B: 230, A: 255}
	case transport.Transmitted:
		return rl.Color{R: 110, G: 200, B: 110, A: 255}
	default:
		return rl.Color{R: 220, G: 120, B: 90, A: 255}
	}
}

// blendToward mixes a toward b by t in [0, 1].
func blendToward(a, b rl.Color, t float32) rl.Color {
	return rl.Color{
		R: uint8(float32(a.R) + (float32(b.R)-float32(a.R))*t),
		G: uint8(float32(a.G) + (float32(b.G)-float32(a.G))*t),
		B: uint8(float32(a.B) + (float32(b.B)-float32(a.B))*t),
		A: a.A,
	}
}
