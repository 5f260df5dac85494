// Package camera provides viewport control for the atmospheric column view.
package camera

// Camera maps optical depth to screen pixels for the column view.
// Supports vertical pan and zoom, clamped so the view never leaves the
// column. Optical depth increases downward: tau 0 (top of atmosphere)
// is at the top of the view, tau max (surface) at the bottom.
type Camera struct {
	// ViewTop is the screen Y of the top edge of the column view
	ViewTop float32

	// ViewHeight is the pixel height of the column view
	ViewHeight float32

	// TauMax is the total optical depth of the column
	TauMax float32

	// CenterTau is the optical depth at the vertical center of the view
	CenterTau float32

	// Zoom level (1.0 = whole column fits the view)
	Zoom float32

	// Zoom constraints
	MinZoom, MaxZoom float32
}

// New creates a camera showing the whole column at 1:1 zoom.
func New(viewTop, viewHeight, tauMax float32) *Camera {
	return &Camera{
		ViewTop:    viewTop,
		ViewHeight: viewHeight,
		TauMax:     tauMax,
		CenterTau:  tauMax / 2,
		Zoom:       1.0,
		MinZoom:    1.0,
		MaxZoom:    16.0,
	}
}

// PixelsPerTau returns the current vertical scale.
func (c *Camera) PixelsPerTau() float32 {
	if c.TauMax <= 0 {
		return 0
	}
	return c.ViewHeight * c.Zoom / c.TauMax
}

// TauToY converts an optical depth to a screen Y coordinate.
func (c *Camera) TauToY(tau float32) float32 {
	viewCenter := c.ViewTop + c.ViewHeight/2
	return viewCenter + (tau-c.CenterTau)*c.PixelsPerTau()
}

// YToTau converts a screen Y coordinate to an optical depth.
func (c *Camera) YToTau(y float32) float32 {
	scale := c.PixelsPerTau()
	if scale == 0 {
		return 0
	}
	viewCenter := c.ViewTop + c.ViewHeight/2
	return c.CenterTau + (y-viewCenter)/scale
}

// VisibleTauRange returns the optical depth interval currently on screen.
func (c *Camera) VisibleTauRange() (minTau, maxTau float32) {
	half := c.TauMax / (2 * c.Zoom)
	return c.CenterTau - half, c.CenterTau + half
}

// IsVisible reports whether an optical depth could appear on screen,
// with a pixel margin for sprite radius (conservative check for culling).
func (c *Camera) IsVisible(tau, marginPx float32) bool {
	y := c.TauToY(tau)
	return y >= c.ViewTop-marginPx && y <= c.ViewTop+c.ViewHeight+marginPx
}

// Pan moves the view by the given screen-pixel delta. Positive dy drags
// the column down, revealing shallower depths. Clamped to the column.
func (c *Camera) Pan(dy float32) {
	scale := c.PixelsPerTau()
	if scale == 0 {
		return
	}
	c.CenterTau -= dy / scale
	c.clampCenter()
}

// SetZoom sets the zoom level, clamped to min/max, and re-clamps the center.
func (c *Camera) SetZoom(zoom float32) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
	c.clampCenter()
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float32) {
	c.SetZoom(c.Zoom * factor)
}

// SetTauMax updates the column extent after layer edits, keeping the
// view inside the new column.
func (c *Camera) SetTauMax(tauMax float32) {
	c.TauMax = tauMax
	c.clampCenter()
}

// Resize updates the view extent after a window resize.
func (c *Camera) Resize(viewTop, viewHeight float32) {
	c.ViewTop = viewTop
	c.ViewHeight = viewHeight
}

// Reset returns the camera to the full-column view.
func (c *Camera) Reset() {
	c.CenterTau = c.TauMax / 2
	c.Zoom = 1.0
}

// clampCenter keeps the visible interval within [0, TauMax].
func (c *Camera) clampCenter() {
	half := c.TauMax / (2 * c.Zoom)
	c.CenterTau = clamp(c.CenterTau, half, c.TauMax-half)
}

// clamp restricts a value to a range.
func clamp(x, min, max float32) float32 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
