package sim

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/mcsky/twostream/components"
	"github.com/mcsky/twostream/config"
	"github.com/mcsky/twostream/telemetry"
	"github.com/mcsky/twostream/transport"
)

// Update runs one or more simulation steps based on the speed setting.
func (s *Sim) Update() {
	s.handleInput()
	s.pollBatch()

	if s.paused {
		return
	}

	for i := 0; i < s.stepsPerUpdate; i++ {
		s.simulationStep()
	}
}

// UpdateHeadless runs simulation steps without any raylib input handling.
func (s *Sim) UpdateHeadless() {
	s.pollBatch()

	if s.paused {
		return
	}

	for i := 0; i < s.stepsPerUpdate; i++ {
		s.simulationStep()
	}
}

// simulationStep runs a single frame of the animated simulation.
func (s *Sim) simulationStep() {
	s.perf.StartStep()

	// 1. Launch scheduled photons
	s.perf.StartPhase(telemetry.PhaseLaunch)
	s.launchPhotons()

	// 2. Advance every photon by one optical depth increment
	s.perf.StartPhase(telemetry.PhaseAdvance)
	s.advancePhotons()

	// 3. Evict photons whose flight has fully played out
	s.perf.StartPhase(telemetry.PhaseEvict)
	s.evictTerminal()

	// 4. Flush windowed telemetry
	s.perf.StartPhase(telemetry.PhaseTelemetry)
	s.flushTelemetry()

	s.perf.EndStep()
	s.frame++

	if s.IsComplete() {
		s.finalizeRun()
	}
}

// launchPhotons applies the launch policy: parallel mode fires the whole
// quota at once, sequential mode fires one photon every launch interval.
func (s *Sim) launchPhotons() {
	if s.launched >= s.targetPhotons {
		return
	}

	if !s.sequential {
		for s.launched < s.targetPhotons {
			s.launchPhoton()
		}
		return
	}

	interval := int32(config.Cfg().Animation.LaunchInterval)
	if interval < 1 {
		interval = 1
	}
	if s.frame%interval == 0 {
		s.launchPhoton()
	}
}

// launchPhoton spawns one packet at the top of the atmosphere, heading
// down with unit weight. X is a horizontal fraction used only for display.
func (s *Sim) launchPhoton() {
	pos := components.Position{Tau: 0, X: float32(s.src.Float64())}
	trav := components.Travel{
		Dir:             transport.Down,
		NextInteraction: transport.SampleFreePath(s.src),
	}
	pk := components.Packet{Weight: 1}
	phase := components.Phase{State: transport.Active}
	trail := components.Trail{}
	trail.Push(pos)

	entity := s.photonMapper.NewEntity(&pos, &trav, &pk, &phase, &trail)

	s.flights.Register(uint32(entity.ID()), s.frame)
	s.stats.RecordLaunch()
	s.collector.RecordLaunch()
	s.launched++
	s.inFlight++
}

// advancePhotons moves every active photon one step and resolves boundary
// hits and interactions.
func (s *Sim) advancePhotons() {
	cfg := config.Cfg()
	dTau := s.speed * cfg.Animation.StepScale
	tauMax := s.stack.TauMax()
	fadeFrames := int32(cfg.Animation.FadeFrames)
	flashFrames := int32(cfg.Animation.FlashFrames)
	threshold := cfg.Physics.WeightThreshold

	query := s.photonFilter.Query()
	for query.Next() {
		entity := query.Entity()
		pos, trav, pk, phase, trail := query.Get()
		id := uint32(entity.ID())

		if phase.FlashTimer > 0 {
			phase.FlashTimer--
		}

		// Absorption fade plays out in place before the photon leaves
		// the set; the depth bin is recorded at the final position.
		if phase.State == transport.Fading {
			phase.FadeTimer--
			if phase.FadeTimer <= 0 {
				phase.State = transport.Absorbed
				s.stats.RecordAbsorption(pos.Tau, tauMax)
				s.collector.RecordAbsorption()
			}
			continue
		}
		if phase.State.Terminal() {
			continue
		}

		// Advance along the direction of travel
		pos.Tau += trav.Dir.Sign() * dTau
		trail.Push(*pos)

		// Top boundary: escaped to space
		if pos.Tau <= 0 {
			pos.Tau = 0
			phase.State = transport.Reflected
			s.stats.RecordReflection()
			s.collector.RecordReflection()
			continue
		}

		// Bottom boundary: surface coin decides bounce or transmission
		if pos.Tau >= tauMax {
			pos.Tau = tauMax
			if s.src.Float64() < s.stack.SurfaceAlbedo() {
				trav.Dir = transport.Up
				trav.NextInteraction = pos.Tau - transport.SampleFreePath(s.src)
				s.stats.RecordSurfaceBounce()
				s.collector.RecordSurfaceBounce()
				s.flights.RecordSurfaceBounce(id)
				s.flights.UpdateDepth(id, pos.Tau)
			} else {
				phase.State = transport.Transmitted
				s.stats.RecordTransmission()
				s.collector.RecordTransmission()
			}
			continue
		}

		// Interaction fires once the photon crosses its pre-sampled depth
		if !crossedInteraction(pos.Tau, trav.NextInteraction, trav.Dir) {
			continue
		}

		layer, ok := s.stack.LayerAt(pos.Tau)
		if !ok {
			// Sitting exactly on a shared layer boundary; the owning
			// layer resolves on the next step.
			continue
		}

		p := transport.Photon{
			Position:  pos.Tau,
			Direction: trav.Dir,
			Weight:    pk.Weight,
			State:     transport.Active,
		}
		outcome := s.engine.Interact(&p, layer)
		pk.Weight = p.Weight
		trav.Dir = p.Direction
		s.flights.UpdateWeight(id, pk.Weight)
		s.flights.UpdateDepth(id, pos.Tau)

		if outcome == transport.Scatter {
			pk.Scatters++
			phase.FlashTimer = flashFrames
			s.stats.RecordScatter(pos.Tau, tauMax)
			s.collector.RecordScatter()
			s.flights.RecordScatter(id)
			trav.NextInteraction = pos.Tau + trav.Dir.Sign()*transport.SampleFreePath(s.src)

			// Roulette: a packet scattered below the threshold is done
			if pk.Weight < threshold {
				phase.State = transport.Fading
				phase.FadeTimer = fadeFrames
			}
			continue
		}

		// Absorbed: hold the packet while the fade animation runs
		phase.State = transport.Fading
		phase.FadeTimer = fadeFrames
	}
}

// crossedInteraction reports whether a photon at tau has passed its
// pre-sampled interaction depth in its direction of travel.
func crossedInteraction(tau, next float64, dir transport.Direction) bool {
	if dir == transport.Down {
		return tau >= next
	}
	return tau <= next
}

// evictTerminal removes photons whose terminal state has fully displayed.
func (s *Sim) evictTerminal() {
	// First pass: collect finished entities (must complete before modifying)
	type doneInfo struct {
		entity ecs.Entity
		id     uint32
		fate   string
	}
	var toRemove []doneInfo

	query := s.photonFilter.Query()
	for query.Next() {
		_, _, _, phase, _ := query.Get()
		if phase.State.Terminal() {
			entity := query.Entity()
			toRemove = append(toRemove, doneInfo{
				entity: entity,
				id:     uint32(entity.ID()),
				fate:   phase.State.String(),
			})
		}
	}

	// Second pass: remove entities (query iteration complete)
	for _, done := range toRemove {
		if fs := s.flights.Remove(done.id); fs != nil {
			s.collector.RecordFlight(fs.Frames(s.frame), fs.Scatters)
			s.notable.Consider(done.id, done.fate, s.frame, fs)
		}
		s.photonMapper.Remove(done.entity)
		s.inFlight--
	}
}
