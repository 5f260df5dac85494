package telemetry

// Collector accumulates transport events within time windows and produces
// WindowStats.
type Collector struct {
	windowDurationSec    float64
	windowDurationFrames int32
	dt                   float32

	// Current window tracking
	windowStartFrame int32

	// Event counters for current window
	launched       int
	scatters       int
	absorptions    int
	reflections    int
	transmissions  int
	surfaceBounces int

	// Completed flight accumulators
	flights       int
	flightFrames  int64
	flightScatter int64
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per frame (used for frame-to-time conversion)
func NewCollector(windowDurationSec float64, dt float32) *Collector {
	framesPerWindow := int32(windowDurationSec / float64(dt))
	if framesPerWindow < 1 {
		framesPerWindow = 1
	}

	return &Collector{
		windowDurationSec:    windowDurationSec,
		windowDurationFrames: framesPerWindow,
		dt:                   dt,
		windowStartFrame:     0,
	}
}

// RecordLaunch records a photon entering the atmosphere.
func (c *Collector) RecordLaunch() {
	c.launched++
}

// RecordScatter records a scattering event.
func (c *Collector) RecordScatter() {
	c.scatters++
}

// RecordAbsorption records an atmospheric absorption.
func (c *Collector) RecordAbsorption() {
	c.absorptions++
}

// RecordReflection records an escape through the top boundary.
func (c *Collector) RecordReflection() {
	c.reflections++
}

// RecordTransmission records a surface absorption.
func (c *Collector) RecordTransmission() {
	c.transmissions++
}

// RecordSurfaceBounce records a surface reflection back into the atmosphere.
func (c *Collector) RecordSurfaceBounce() {
	c.surfaceBounces++
}

// RecordFlight records a completed photon flight for duration averaging.
func (c *Collector) RecordFlight(frames int32, scatters int) {
	c.flights++
	c.flightFrames += int64(frames)
	c.flightScatter += int64(scatters)
}

// ShouldFlush returns true if enough frames have passed to flush the window.
func (c *Collector) ShouldFlush(currentFrame int32) bool {
	return currentFrame-c.windowStartFrame >= c.windowDurationFrames
}

// Flush produces a WindowStats and resets counters for the next window.
// The caller provides the current frame, the in-flight photon count, and
// the sampled weights of in-flight photons.
func (c *Collector) Flush(currentFrame int32, inFlight int, weights []float64) WindowStats {
	var scatterFraction float64
	if interactions := c.scatters + c.absorptions; interactions > 0 {
		scatterFraction = float64(c.scatters) / float64(interactions)
	}

	var meanFrames, meanScatters float64
	if c.flights > 0 {
		meanFrames = float64(c.flightFrames) / float64(c.flights)
		meanScatters = float64(c.flightScatter) / float64(c.flights)
	}

	mean, std, p10, p50, p90 := ComputeWeightStats(weights)

	stats := WindowStats{
		WindowStartFrame: c.windowStartFrame,
		WindowEndFrame:   currentFrame,
		SimTimeSec:       float64(currentFrame) * float64(c.dt),

		InFlight: inFlight,

		Launched:       c.launched,
		Scatters:       c.scatters,
		Absorptions:    c.absorptions,
		Reflections:    c.reflections,
		Transmissions:  c.transmissions,
		SurfaceBounces: c.surfaceBounces,

		ScatterFraction: scatterFraction,

		WeightMean: mean,
		WeightStd:  std,
		WeightP10:  p10,
		WeightP50:  p50,
		WeightP90:  p90,

		FlightsCompleted:   c.flights,
		MeanFlightFrames:   meanFrames,
		MeanFlightScatters: meanScatters,
	}

	// Reset for next window
	c.windowStartFrame = currentFrame
	c.launched = 0
	c.scatters = 0
	c.absorptions = 0
	c.reflections = 0
	c.transmissions = 0
	c.surfaceBounces = 0
	c.flights = 0
	c.flightFrames = 0
	c.flightScatter = 0

	return stats
}

// WindowDurationFrames returns the number of frames per window.
func (c *Collector) WindowDurationFrames() int32 {
	return c.windowDurationFrames
}
