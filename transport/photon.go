// Package transport implements the Monte Carlo photon transport engine in
// the two-stream approximation: free-path sampling, propagation against a
// layer stack, scatter/absorb interaction resolution, and the batch
// simulate-to-completion lifecycle.
package transport

// Direction is the two-stream travel direction in optical depth coordinates.
type Direction uint8

const (
	Down Direction = iota // toward the surface, increasing tau
	Up                    // toward space, decreasing tau
)

// Sign returns the optical depth increment sign for one step of travel.
func (d Direction) Sign() float64 {
	if d == Down {
		return 1
	}
	return -1
}

// Flip returns the opposite direction.
func (d Direction) Flip() Direction {
	if d == Down {
		return Up
	}
	return Down
}

func (d Direction) String() string {
	if d == Down {
		return "down"
	}
	return "up"
}

// State is the photon lifecycle state. Reflected, Transmitted and Absorbed
// are terminal; Fading is the animated engine's timed absorption fade-out.
type State uint8

const (
	Active State = iota
	Fading
	Reflected
	Transmitted
	Absorbed
)

// Terminal reports whether the photon has left the simulation for good.
func (s State) Terminal() bool {
	return s == Reflected || s == Transmitted || s == Absorbed
}

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Fading:
		return "fading"
	case Reflected:
		return "reflected"
	case Transmitted:
		return "transmitted"
	case Absorbed:
		return "absorbed"
	}
	return "unknown"
}

// Boundary identifies which edge a propagation step reached, if any.
type Boundary uint8

const (
	NoBoundary Boundary = iota
	TopBoundary
	BottomBoundary
)

// Outcome classifies one resolved interaction.
type Outcome uint8

const (
	Scatter Outcome = iota
	Absorb
)

// Photon is one Monte Carlo packet. Position is optical depth measured from
// the top of the atmosphere. The engine owns all mutation while the photon
// is active; once terminal it is immutable and kept only for reporting.
type Photon struct {
	Position  float64
	Direction Direction
	Weight    float64
	State     State

	// Trajectory records every position visited, in order. Visualization
	// only; physics decisions never read it.
	Trajectory []float64
}

// NewPhoton creates an active packet at the top of the atmosphere, heading
// down with unit weight.
func NewPhoton() *Photon {
	return &Photon{
		Position:   0,
		Direction:  Down,
		Weight:     1,
		State:      Active,
		Trajectory: []float64{0},
	}
}
