// Package components defines ECS components for the photon field.
package components

import "github.com/mcsky/twostream/transport"

// Position locates a photon in the scene: optical depth for the physics,
// screen column for drawing.
type Position struct {
	Tau float64
	X   float32
}

// Travel carries a photon's direction of flight and the pre-sampled optical
// depth at which its next interaction occurs.
type Travel struct {
	Dir             transport.Direction
	NextInteraction float64
}

// Packet holds the statistical weight of a photon packet and its
// interaction history.
type Packet struct {
	Weight   float64
	Scatters int
}

// Phase tracks a photon's display state and its timers.
// FadeTimer counts down the absorption fade-out; FlashTimer counts down
// the brief highlight after a scatter.
type Phase struct {
	State      transport.State
	FadeTimer  int32
	FlashTimer int32
}

// TrailLength is the number of recent positions kept for motion trails.
const TrailLength = 20

// Trail holds recent positions for drawing motion trails.
// Points form a ring buffer; Head indexes the oldest entry.
type Trail struct {
	Points [TrailLength]Position
	Head   uint8
	Count  uint8
}

// Push records a new trail position, evicting the oldest when full.
func (t *Trail) Push(p Position) {
	idx := (int(t.Head) + int(t.Count)) % TrailLength
	t.Points[idx] = p
	if t.Count < TrailLength {
		t.Count++
	} else {
		t.Head = uint8((int(t.Head) + 1) % TrailLength)
	}
}

// At returns the i-th oldest trail point. i must be in [0, Count).
func (t *Trail) At(i int) Position {
	return t.Points[(int(t.Head)+i)%TrailLength]
}
