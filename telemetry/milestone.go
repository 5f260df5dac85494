package telemetry

import (
	"fmt"
	"log/slog"
)

// MilestoneType identifies the type of run milestone.
type MilestoneType string

const (
	MilestoneFirstTransmission  MilestoneType = "first_transmission"
	MilestoneReflectionSurge    MilestoneType = "reflection_surge"
	MilestoneScatterEquilibrium MilestoneType = "scatter_equilibrium"
	MilestoneWeightCollapse     MilestoneType = "weight_collapse"
	MilestoneFieldDrained       MilestoneType = "field_drained"
)

// Milestone represents an automatically detected moment in a run.
type Milestone struct {
	Type        MilestoneType
	Frame       int32
	Description string
}

// LogMilestone logs the milestone using slog.
func (m Milestone) LogMilestone() {
	slog.Info("milestone",
		"type", string(m.Type),
		"frame", m.Frame,
		"description", m.Description,
	)
}

// MilestoneDetector watches window stats for notable transport moments.
type MilestoneDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	// One-shot flags
	seenTransmission bool
	seenCollapse     bool
	seenDrained      bool

	// Consecutive windows with a settled scatter fraction
	settledWindows int
}

// NewMilestoneDetector creates a detector with the given history size.
func NewMilestoneDetector(historySize int) *MilestoneDetector {
	if historySize < 5 {
		historySize = 5 // minimum for equilibrium detection
	}
	return &MilestoneDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered milestones.
func (md *MilestoneDetector) Check(stats WindowStats) []Milestone {
	var milestones []Milestone

	if m := md.checkFirstTransmission(stats); m != nil {
		milestones = append(milestones, *m)
	}

	if md.historyFull || md.historyIdx > 0 {
		// Reflection surge: window reflections > 2x rolling average
		if m := md.checkReflectionSurge(stats); m != nil {
			milestones = append(milestones, *m)
		}

		// Scatter equilibrium: interaction mix settled over 5+ windows
		if m := md.checkScatterEquilibrium(stats); m != nil {
			milestones = append(milestones, *m)
		}
	}

	// Weight collapse: roulette has eaten most of the field's weight
	if m := md.checkWeightCollapse(stats); m != nil {
		milestones = append(milestones, *m)
	}

	// Field drained: the last flight of the run has completed
	if m := md.checkFieldDrained(stats); m != nil {
		milestones = append(milestones, *m)
	}

	md.addToHistory(stats)

	return milestones
}

func (md *MilestoneDetector) addToHistory(stats WindowStats) {
	md.history[md.historyIdx] = stats
	md.historyIdx = (md.historyIdx + 1) % md.historySize
	if md.historyIdx == 0 {
		md.historyFull = true
	}
}

func (md *MilestoneDetector) getHistory() []WindowStats {
	if md.historyFull {
		return md.history
	}
	return md.history[:md.historyIdx]
}

// checkFirstTransmission fires once, on the first window where a photon
// made it through the whole column to the ground.
func (md *MilestoneDetector) checkFirstTransmission(stats WindowStats) *Milestone {
	if md.seenTransmission || stats.Transmissions == 0 {
		return nil
	}
	md.seenTransmission = true
	return &Milestone{
		Type:        MilestoneFirstTransmission,
		Frame:       stats.WindowEndFrame,
		Description: fmt.Sprintf("First transmission: %d photon(s) reached the surface", stats.Transmissions),
	}
}

// checkReflectionSurge fires when a window's reflections run well above
// the rolling average, e.g. after a dense layer is added mid-run.
func (md *MilestoneDetector) checkReflectionSurge(stats WindowStats) *Milestone {
	history := md.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total int
	for _, h := range history {
		total += h.Reflections
	}
	avg := float64(total) / float64(len(history))
	if avg == 0 {
		return nil
	}

	current := float64(stats.Reflections)
	if current > avg*2.0 && stats.Reflections >= 5 {
		return &Milestone{
			Type:        MilestoneReflectionSurge,
			Frame:       stats.WindowEndFrame,
			Description: fmt.Sprintf("Reflections %d are %.1fx the rolling average (%.1f)", stats.Reflections, current/avg, avg),
		}
	}

	return nil
}

// checkScatterEquilibrium fires once the scatter fraction has settled:
// with enough interactions per window it converges on the effective
// single-scattering albedo of the scene.
func (md *MilestoneDetector) checkScatterEquilibrium(stats WindowStats) *Milestone {
	interactions := stats.Scatters + stats.Absorptions
	if interactions < 20 {
		md.settledWindows = 0
		return nil
	}

	history := md.getHistory()
	if len(history) < 4 {
		return nil
	}

	// Variance of the scatter fraction over the last 4 windows
	recent := history[len(history)-4:]
	var sum float64
	for _, h := range recent {
		sum += h.ScatterFraction
	}
	mean := sum / 4

	var variance float64
	for _, h := range recent {
		d := h.ScatterFraction - mean
		variance += d * d
	}
	variance /= 4

	if mean > 0 && variance/(mean*mean) < 0.0025 { // CV < 5%
		md.settledWindows++
	} else {
		md.settledWindows = 0
	}

	if md.settledWindows == 5 { // trigger exactly once at 5 windows
		return &Milestone{
			Type:        MilestoneScatterEquilibrium,
			Frame:       stats.WindowEndFrame,
			Description: fmt.Sprintf("Scatter fraction settled at %.3f over 5+ windows", mean),
		}
	}

	return nil
}

// checkWeightCollapse fires once, when the median in-flight weight has
// dropped far below unity while a real field is still flying.
func (md *MilestoneDetector) checkWeightCollapse(stats WindowStats) *Milestone {
	if md.seenCollapse {
		return nil
	}
	if stats.InFlight < 10 || stats.WeightP50 <= 0 {
		return nil
	}
	if stats.WeightP50 < 0.15 {
		md.seenCollapse = true
		return &Milestone{
			Type:        MilestoneWeightCollapse,
			Frame:       stats.WindowEndFrame,
			Description: fmt.Sprintf("Median weight fell to %.3f with %d photons in flight", stats.WeightP50, stats.InFlight),
		}
	}
	return nil
}

// checkFieldDrained fires once, on the window where the last flight of
// the run completed.
func (md *MilestoneDetector) checkFieldDrained(stats WindowStats) *Milestone {
	if md.seenDrained {
		return nil
	}
	if stats.InFlight == 0 && stats.FlightsCompleted > 0 {
		md.seenDrained = true
		return &Milestone{
			Type:        MilestoneFieldDrained,
			Frame:       stats.WindowEndFrame,
			Description: fmt.Sprintf("Field drained: last %d flight(s) completed", stats.FlightsCompleted),
		}
	}
	return nil
}
