package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// NotableBoard identifies one flight leaderboard.
type NotableBoard string

const (
	BoardMostScatters NotableBoard = "most_scatters"
	BoardDeepest      NotableBoard = "deepest"
	BoardLongest      NotableBoard = "longest"
)

// notableBoards fixes the board order for export.
var notableBoards = []NotableBoard{BoardMostScatters, BoardDeepest, BoardLongest}

// NotableEntry records one completed flight worth remembering.
type NotableEntry struct {
	PhotonID       uint32  `json:"photon_id"`
	Fate           string  `json:"fate"`
	Frames         int32   `json:"frames"`
	Scatters       int     `json:"scatters"`
	SurfaceBounces int     `json:"surface_bounces"`
	DeepestTau     float64 `json:"deepest_tau"`
	FinalWeight    float64 `json:"final_weight"`
	Score          float64 `json:"score"` // board-specific ranking value
}

// NotableFlights keeps sorted leaderboards of completed flights: the
// most-scattered, the deepest-reaching, and the longest-lived.
type NotableFlights struct {
	boards  map[NotableBoard][]NotableEntry
	maxSize int
}

// NewNotableFlights creates empty leaderboards with the given capacity
// per board.
func NewNotableFlights(maxSize int) *NotableFlights {
	if maxSize < 1 {
		maxSize = 10
	}
	boards := make(map[NotableBoard][]NotableEntry, len(notableBoards))
	for _, b := range notableBoards {
		boards[b] = make([]NotableEntry, 0, maxSize)
	}
	return &NotableFlights{boards: boards, maxSize: maxSize}
}

// Consider evaluates a completed flight for every board. Returns true
// if the flight entered at least one.
func (nf *NotableFlights) Consider(photonID uint32, fate string, endFrame int32, fs *FlightStats) bool {
	if fs == nil {
		return false
	}

	entry := NotableEntry{
		PhotonID:       photonID,
		Fate:           fate,
		Frames:         fs.Frames(endFrame),
		Scatters:       fs.Scatters,
		SurfaceBounces: fs.SurfaceBounces,
		DeepestTau:     fs.DeepestTau,
		FinalWeight:    fs.FinalWeight,
	}

	entered := false
	if entry.Scatters > 0 {
		entry.Score = float64(entry.Scatters)
		if nf.insert(BoardMostScatters, entry) {
			entered = true
		}
	}
	if entry.DeepestTau > 0 {
		entry.Score = entry.DeepestTau
		if nf.insert(BoardDeepest, entry) {
			entered = true
		}
	}
	if entry.Frames > 0 {
		entry.Score = float64(entry.Frames)
		if nf.insert(BoardLongest, entry) {
			entered = true
		}
	}
	return entered
}

// insert adds an entry to a board, maintaining sorted order by score.
// If the board is full, the lowest-scoring entry is dropped.
func (nf *NotableFlights) insert(board NotableBoard, entry NotableEntry) bool {
	entries := nf.boards[board]

	// Find insertion point (sorted descending by score)
	idx := sort.Search(len(entries), func(i int) bool {
		return entries[i].Score < entry.Score
	})

	// Board full and the entry would rank below everything on it
	if len(entries) >= nf.maxSize && idx >= nf.maxSize {
		return false
	}

	entries = append(entries, NotableEntry{})
	copy(entries[idx+1:], entries[idx:])
	entries[idx] = entry

	if len(entries) > nf.maxSize {
		entries = entries[:nf.maxSize]
	}
	nf.boards[board] = entries
	return true
}

// Board returns a copy of one leaderboard, best first.
func (nf *NotableFlights) Board(board NotableBoard) []NotableEntry {
	entries := nf.boards[board]
	out := make([]NotableEntry, len(entries))
	copy(out, entries)
	return out
}

// Top returns the best entry on a board.
func (nf *NotableFlights) Top(board NotableBoard) (NotableEntry, bool) {
	entries := nf.boards[board]
	if len(entries) == 0 {
		return NotableEntry{}, false
	}
	return entries[0], true
}

// Size returns the number of entries on a board.
func (nf *NotableFlights) Size(board NotableBoard) int {
	return len(nf.boards[board])
}

// MarshalJSON serializes the leaderboards, keyed by board name.
func (nf *NotableFlights) MarshalJSON() ([]byte, error) {
	export := make(map[string][]NotableEntry, len(notableBoards))
	for _, b := range notableBoards {
		export[string(b)] = nf.boards[b]
	}
	return json.MarshalIndent(export, "", "  ")
}

// WriteFile dumps the leaderboards as JSON.
func (nf *NotableFlights) WriteFile(path string) error {
	data, err := json.Marshal(nf)
	if err != nil {
		return fmt.Errorf("marshaling notable flights: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing notable flights: %w", err)
	}
	return nil
}
