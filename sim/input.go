package sim

import rl "github.com/gen2brain/raylib-go/raylib"

// handleInput processes keyboard and window input.
func (s *Sim) handleInput() {
	// Window resize propagation
	s.handleResize()

	// Fullscreen toggle
	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		s.paused = !s.paused
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && s.stepsPerUpdate > 1 {
		s.stepsPerUpdate--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && s.stepsPerUpdate < 10 {
		s.stepsPerUpdate++
	}

	// Restart with the current panel settings
	if rl.IsKeyPressed(rl.KeyR) {
		s.restartFromControls()
	}

	// Overlay panel and toggles
	if s.overlayPanel != nil && rl.IsKeyPressed(rl.KeyF1) {
		s.overlayPanel.Toggle()
	}
	if s.overlays != nil {
		for _, desc := range s.overlays.All() {
			if desc.Key != 0 && rl.IsKeyPressed(desc.Key) {
				s.overlays.Toggle(desc.ID)
			}
		}
	}

	// Snapshot save/load
	if rl.IsKeyPressed(rl.KeyF5) {
		s.saveSnapshot()
	}
	if rl.IsKeyPressed(rl.KeyF9) {
		s.loadLatestSnapshot()
	}

	// Camera controls
	s.handleCameraInput()
}

// handleResize checks for window resize and propagates new dimensions.
func (s *Sim) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == s.screenWidth && h == s.screenHeight {
		return
	}
	s.screenWidth = w
	s.screenHeight = h

	s.layout = s.layout.Resize(w, h)
	if s.camera != nil {
		s.camera.Resize(s.layout.AnimY, s.layout.AnimH)
	}
	if s.controls != nil {
		s.controls.SetPanelRect(s.layout.PanelX, s.layout.PanelW)
	}
	if s.hud != nil {
		s.hud.SetLayout(s.layout)
	}
	if s.results != nil {
		s.results.SetLayout(s.layout)
	}
	if s.inspector != nil {
		s.inspector.SetLayout(s.layout)
	}
	if s.perfPanel != nil {
		s.perfPanel.SetPosition(int32(s.layout.SceneW)-230, int32(s.layout.ScreenH)-140)
	}
}

// handleCameraInput processes camera pan/zoom controls.
func (s *Sim) handleCameraInput() {
	if s.camera == nil {
		return
	}

	// Pan speed scales inversely with zoom for natural feel
	panSpeed := float32(8.0) / s.camera.Zoom

	// Vertical panning; the column has no horizontal extent
	if rl.IsKeyDown(rl.KeyDown) {
		s.camera.Pan(-panSpeed)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		s.camera.Pan(panSpeed)
	}

	// Zoom controls: mouse wheel or +/- keys
	wheelMove := rl.GetMouseWheelMove()
	if wheelMove != 0 {
		zoomFactor := float32(1.0) + wheelMove*0.1
		s.camera.ZoomBy(zoomFactor)
	}

	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		s.camera.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		s.camera.ZoomBy(0.8)
	}

	// Home key to reset camera
	if rl.IsKeyPressed(rl.KeyHome) {
		s.camera.Reset()
	}
}
