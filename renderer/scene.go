package renderer

import (
	"fmt"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/mcsky/twostream/atmosphere"
	"github.com/mcsky/twostream/camera"
)

// BandStyle carries the display styling for one layer band. The caller
// resolves preset colors and label text; the scene only draws them.
type BandStyle struct {
	Color rl.Color
	Label string
}

// Scene renders the sky, layer bands, and surface. Wisp texture comes
// from a seeded noise field so the same seed always draws the same sky.
type Scene struct {
	noise opensimplex.Noise
}

// NewScene creates a scene renderer with its own noise field.
func NewScene(seed int64) *Scene {
	return &Scene{
		noise: opensimplex.New(seed),
	}
}

// wispCell is the sampling pitch of the cloud texture in pixels.
const wispCell = 26

// Draw renders the full scene background for the current camera view.
// styles must have one entry per layer in the stack; missing entries
// fall back to a neutral tint.
func (s *Scene) Draw(stack *atmosphere.Stack, styles []BandStyle, cam *camera.Camera, l Layout, frame int32, showLabels bool) {
	sceneW := int32(l.SceneW)
	screenH := int32(l.ScreenH)

	// Space-dark base; visible when the camera pans past the column
	rl.DrawRectangle(0, 0, sceneW, screenH, rl.Color{R: 8, G: 10, B: 18, A: 255})

	yTop := cam.TauToY(0)
	yBot := cam.TauToY(float32(stack.TauMax()))

	s.drawSky(sceneW, yTop)

	for i, layer := range stack.Layers() {
		style := BandStyle{Color: rl.Color{R: 120, G: 140, B: 170, A: 60}}
		if i < len(styles) {
			style = styles[i]
		}
		s.drawBand(layer, style, cam, l, frame, i)
	}

	s.drawBoundaries(stack, cam, l, showLabels)
	s.drawSurface(stack.SurfaceAlbedo(), sceneW, screenH, yBot, showLabels)
}

// drawSky fills everything above tau=0 with a dusk-to-horizon gradient
// and a sun glow near the top right.
func (s *Scene) drawSky(sceneW, yHorizon int32) {
	if yHorizon <= 0 {
		return
	}
	if yHorizon > 2000 {
		yHorizon = 2000
	}

	top := rl.Color{R: 12, G: 22, B: 52, A: 255}
	bottom := rl.Color{R: 96, G: 148, B: 210, A: 255}

	steps := int32(18)
	stripH := yHorizon/steps + 1
	for i := int32(0); i < steps; i++ {
		t := float32(i) / float32(steps-1)
		c := lerpColor(top, bottom, t)
		rl.DrawRectangle(0, i*stripH, sceneW, stripH+1, c)
	}

	// Sun glow: stepped falloff rings, same trick as a radial light
	sunX := int32(float32(sceneW) * 0.82)
	sunY := yHorizon * 2 / 5
	for i := 8; i >= 0; i-- {
		t := float32(i) / 8
		radius := 14 + t*46
		falloff := float32(math.Pow(float64(1-t), 2.0))
		rl.DrawCircle(sunX, sunY, radius, rl.Color{R: 255, G: 236, B: 180, A: uint8(8 + falloff*30)})
	}
	rl.DrawCircle(sunX, sunY, 13, rl.Color{R: 255, G: 244, B: 214, A: 230})
}

// drawBand fills one layer's band and overlays its cloud wisps.
func (s *Scene) drawBand(layer atmosphere.Layer, style BandStyle, cam *camera.Camera, l Layout, frame int32, idx int) {
	yTop := cam.TauToY(float32(layer.Top))
	yBot := cam.TauToY(float32(layer.Bottom))
	if yBot <= 0 || yTop >= l.ScreenH {
		return
	}
	yTopC := clampF(yTop, 0, l.ScreenH)
	yBotC := clampF(yBot, 0, l.ScreenH)
	if yBotC-yTopC < 1 {
		return
	}

	rl.DrawRectangle(0, int32(yTopC), int32(l.SceneW), int32(yBotC-yTopC), style.Color)
	s.drawWisps(layer, style, cam, l, frame, yTopC, yBotC, idx)

	if style.Label != "" {
		labelY := int32(yTopC) + 6
		if labelY < int32(l.AnimY)+2 {
			labelY = int32(l.AnimY) + 2
		}
		rl.DrawText(style.Label, 34, labelY, 12, rl.Color{R: 225, G: 230, B: 240, A: 200})
	}
}

// drawWisps scatters soft noise blobs through a band. Density follows
// the single-scattering albedo so conservative cloud reads denser than
// absorbing haze. Blobs live in tau space vertically, so they pan and
// zoom with the camera; the horizontal drift animates slowly.
func (s *Scene) drawWisps(layer atmosphere.Layer, style BandStyle, cam *camera.Camera, l Layout, frame int32, yTop, yBot float32, idx int) {
	if layer.Omega0 < 0.05 {
		return
	}

	drift := float64(frame) * 0.0045
	layerOffset := float64(idx) * 37.0
	maxAlpha := 26 + layer.Omega0*64

	for y := yTop + wispCell/2; y < yBot; y += wispCell {
		tau := float64(cam.YToTau(y))
		for x := float32(wispCell) / 2; x < l.SceneW; x += wispCell {
			n := s.noise.Eval2(float64(x)*0.017+drift, tau*2.3+layerOffset)
			if n < 0.12 {
				continue
			}
			alpha := uint8((n - 0.12) * maxAlpha)
			radius := wispCell * (0.45 + float32(n)*0.45)
			rl.DrawCircle(int32(x), int32(y), radius, rl.Color{
				R: style.Color.R,
				G: style.Color.G,
				B: style.Color.B,
				A: alpha,
			})
		}
	}
}

// drawBoundaries draws the shared layer interfaces and the depth ticks.
func (s *Scene) drawBoundaries(stack *atmosphere.Stack, cam *camera.Camera, l Layout, showLabels bool) {
	lineColor := rl.Color{R: 30, G: 40, B: 55, A: 200}

	for _, layer := range stack.Layers() {
		y := cam.TauToY(float32(layer.Top))
		if y < 0 || y > l.ScreenH {
			continue
		}
		rl.DrawLine(0, int32(y), int32(l.SceneW), int32(y), lineColor)
		if showLabels {
			rl.DrawText(fmt.Sprintf("%.1f", layer.Top), 4, int32(y)+2, 10, rl.Gray)
		}
	}

	yMax := cam.TauToY(float32(stack.TauMax()))
	if yMax >= 0 && yMax <= l.ScreenH {
		rl.DrawLine(0, int32(yMax), int32(l.SceneW), int32(yMax), lineColor)
		if showLabels {
			rl.DrawText(fmt.Sprintf("%.1f", stack.TauMax()), 4, int32(yMax)-12, 10, rl.Gray)
		}
	}
}

// drawSurface fills everything below tau=tauMax. Brightness follows the
// surface albedo: dark soil when absorbing, pale ground when reflective.
func (s *Scene) drawSurface(albedo float64, sceneW, screenH, ySurface int32, showLabels bool) {
	if ySurface >= screenH {
		return
	}
	if ySurface < 0 {
		ySurface = 0
	}

	dark := rl.Color{R: 52, G: 44, B: 36, A: 255}
	pale := rl.Color{R: 206, G: 196, B: 158, A: 255}
	base := lerpColor(dark, pale, float32(albedo))

	rl.DrawRectangle(0, ySurface, sceneW, screenH-ySurface, base)

	// Top edge highlight so the interface reads as a hard boundary
	edge := rl.Color{
		R: uint8(minI(int(base.R)+35, 255)),
		G: uint8(minI(int(base.G)+35, 255)),
		B: uint8(minI(int(base.B)+30, 255)),
		A: 255,
	}
	rl.DrawRectangle(0, ySurface, sceneW, 3, edge)

	// Noise spots give the ground a little texture
	spot := rl.Color{
		R: uint8(float32(base.R) * 0.8),
		G: uint8(float32(base.G) * 0.8),
		B: uint8(float32(base.B) * 0.8),
		A: 120,
	}
	for x := int32(10); x < sceneW; x += 34 {
		n := s.noise.Eval2(float64(x)*0.05, 512.7)
		if n < 0.1 {
			continue
		}
		y := ySurface + 8 + int32(n*float64(screenH-ySurface-16))
		if y >= screenH-4 {
			continue
		}
		rl.DrawCircle(x, y, 3+float32(n)*3, spot)
	}

	if showLabels {
		rl.DrawText(fmt.Sprintf("surface albedo %.2f", albedo), 8, ySurface+8, 12, rl.Color{R: 30, G: 26, B: 20, A: 220})
	}
}

func lerpColor(a, b rl.Color, t float32) rl.Color {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return rl.Color{
		R: uint8(float32(a.R) + (float32(b.R)-float32(a.R))*t),
		G: uint8(float32(a.G) + (float32(b.G)-float32(a.G))*t),
		B: uint8(float32(a.B) + (float32(b.B)-float32(a.B))*t),
		A: uint8(float32(a.A) + (float32(b.A)-float32(a.A))*t),
	}
}

func minI(a, b int) int {
	if a < b {
		return a
	}
	return b
}
