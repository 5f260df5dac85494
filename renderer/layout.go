// Package renderer draws the atmospheric scene: sky, layer bands with
// noise wisps, surface, and the depth axis. Photon dots are drawn by the
// sim package on top of the scene.
package renderer

import (
	"github.com/mcsky/twostream/config"
)

// Layout captures the screen regions of the viewer. The scene strip sits
// on the left with sky and surface bands framing the atmosphere; the
// control panel takes the right edge.
type Layout struct {
	ScreenW, ScreenH float32
	SceneW           float32
	PanelX, PanelW   float32

	// Sky band above tau=0 and surface band below tau=tauMax
	SkyH     float32
	SurfaceH float32

	// Vertical extent of the atmosphere strip (tau maps here)
	AnimY, AnimH float32
}

// NewLayout computes the viewer regions from the screen config.
func NewLayout(cfg *config.Config) Layout {
	return computeLayout(cfg.Derived.ScreenW32, cfg.Derived.ScreenH32, cfg.Derived.PanelW32)
}

// Resize recomputes the regions for a new window size. The panel keeps
// its width; the scene absorbs the difference.
func (l Layout) Resize(w, h float32) Layout {
	return computeLayout(w, h, l.PanelW)
}

func computeLayout(w, h, panelW float32) Layout {
	l := Layout{
		ScreenW: w,
		ScreenH: h,
		PanelW:  panelW,
	}
	l.SceneW = w - panelW
	if l.SceneW < 200 {
		l.SceneW = 200
	}
	l.PanelX = l.SceneW

	// Bands scale with the window but stay readable at small sizes
	l.SkyH = clampF(h*0.08, 40, 90)
	l.SurfaceH = clampF(h*0.10, 50, 110)
	l.AnimY = l.SkyH
	l.AnimH = h - l.SkyH - l.SurfaceH
	if l.AnimH < 100 {
		l.AnimH = 100
	}
	return l
}

func clampF(x, min, max float32) float32 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
