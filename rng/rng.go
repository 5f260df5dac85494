// Package rng provides the uniform random source behind every sampling
// decision in the transport engine. All randomness routes through a Source so
// tests can substitute a scripted sequence and assert exact branch outcomes.
package rng

import "math/rand/v2"

// Source yields uniform variates in [0,1).
type Source interface {
	Float64() float64
}

// PCG is a deterministic Source seeded explicitly.
type PCG struct {
	r *rand.Rand
}

// NewPCG creates a deterministic Source using the provided seed.
func NewPCG(seed int64) *PCG {
	return &PCG{r: rand.New(rand.NewPCG(uint64(seed), 0))}
}

// Float64 returns a uniform variate in [0,1).
func (p *PCG) Float64() float64 { return p.r.Float64() }

// Scripted replays a fixed sequence of variates, cycling when exhausted.
// Intended for tests that need to force a particular branch.
type Scripted struct {
	vals []float64
	next int
}

// NewScripted creates a Source that plays back vals in order.
func NewScripted(vals ...float64) *Scripted {
	if len(vals) == 0 {
		panic("rng: scripted source needs at least one value")
	}
	return &Scripted{vals: vals}
}

// Float64 returns the next scripted variate.
func (s *Scripted) Float64() float64 {
	v := s.vals[s.next%len(s.vals)]
	s.next++
	return v
}
