package telemetry

import "testing"

func TestNotableFlights_ConsiderRanksByScore(t *testing.T) {
	nf := NewNotableFlights(3)

	flights := []struct {
		id       uint32
		scatters int
	}{
		{1, 2}, {2, 8}, {3, 5}, {4, 1},
	}
	for _, f := range flights {
		fs := &FlightStats{Scatters: f.scatters, DeepestTau: 1, FinalWeight: 0.5}
		nf.Consider(f.id, "absorbed", 100, fs)
	}

	board := nf.Board(BoardMostScatters)
	if len(board) != 3 {
		t.Fatalf("board size = %d, want 3", len(board))
	}
	wantOrder := []uint32{2, 3, 1}
	for i, want := range wantOrder {
		if board[i].PhotonID != want {
			t.Errorf("board[%d].PhotonID = %d, want %d", i, board[i].PhotonID, want)
		}
	}

	// Photon 4 (1 scatter) ranked below a full board
	for _, e := range board {
		if e.PhotonID == 4 {
			t.Error("lowest-scoring flight should have been dropped from a full board")
		}
	}
}

func TestNotableFlights_EntryCriteria(t *testing.T) {
	nf := NewNotableFlights(5)

	// A straight-through transmission: no scatters, but it has depth
	// and duration
	fs := &FlightStats{LaunchFrame: 10, Scatters: 0, DeepestTau: 3.0, FinalWeight: 1}
	if !nf.Consider(7, "transmitted", 60, fs) {
		t.Fatal("flight with depth and duration should enter some board")
	}

	if nf.Size(BoardMostScatters) != 0 {
		t.Error("zero-scatter flight must not enter the scatter board")
	}
	if nf.Size(BoardDeepest) != 1 {
		t.Error("flight with DeepestTau > 0 should enter the deepest board")
	}
	if nf.Size(BoardLongest) != 1 {
		t.Error("flight with positive duration should enter the longest board")
	}
}

func TestNotableFlights_NilStatsIgnored(t *testing.T) {
	nf := NewNotableFlights(5)
	if nf.Consider(1, "reflected", 50, nil) {
		t.Error("nil flight stats must not enter any board")
	}
}

func TestNotableFlights_TopAndBoardScores(t *testing.T) {
	nf := NewNotableFlights(4)

	depths := []float64{0.5, 2.5, 1.0}
	for i, d := range depths {
		fs := &FlightStats{Scatters: 1, DeepestTau: d, FinalWeight: 0.9}
		nf.Consider(uint32(i+1), "absorbed", 30, fs)
	}

	top, ok := nf.Top(BoardDeepest)
	if !ok {
		t.Fatal("Top() found nothing on a populated board")
	}
	if top.PhotonID != 2 || top.Score != 2.5 {
		t.Errorf("Top() = id %d score %v, want id 2 score 2.5", top.PhotonID, top.Score)
	}

	if _, ok := nf.Top(NotableBoard("missing")); ok {
		t.Error("Top() on an unknown board should report nothing")
	}
}
