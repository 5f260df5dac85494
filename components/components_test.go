package components

import "testing"

func TestTrailPush(t *testing.T) {
	var tr Trail

	tr.Push(Position{Tau: 0.1})
	tr.Push(Position{Tau: 0.2})

	if tr.Count != 2 {
		t.Fatalf("Count = %d, want 2", tr.Count)
	}
	if tr.At(0).Tau != 0.1 || tr.At(1).Tau != 0.2 {
		t.Errorf("order wrong: At(0).Tau = %v, At(1).Tau = %v", tr.At(0).Tau, tr.At(1).Tau)
	}
}

func TestTrailWraps(t *testing.T) {
	var tr Trail

	for i := 0; i < TrailLength+5; i++ {
		tr.Push(Position{Tau: float64(i)})
	}

	if tr.Count != TrailLength {
		t.Fatalf("Count = %d, want %d", tr.Count, TrailLength)
	}

	// Oldest surviving point is the 6th pushed (index 5)
	if got := tr.At(0).Tau; got != 5 {
		t.Errorf("At(0).Tau = %v, want 5", got)
	}
	if got := tr.At(TrailLength - 1).Tau; got != float64(TrailLength+4) {
		t.Errorf("newest = %v, want %v", got, TrailLength+4)
	}
}
