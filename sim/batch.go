package sim

import (
	"log/slog"
	"time"

	"github.com/mcsky/twostream/atmosphere"
	"github.com/mcsky/twostream/config"
	"github.com/mcsky/twostream/rng"
	"github.com/mcsky/twostream/telemetry"
	"github.com/mcsky/twostream/transport"
)

// batchOutcome carries a finished background batch run to the frame loop.
type batchOutcome struct {
	result  *transport.Result
	stack   *atmosphere.Stack
	seed    int64
	elapsed time.Duration
	err     error
}

// startBatch fires a jump-to-interaction run of the current column on a
// worker goroutine. The animated run keeps stepping while it computes;
// pollBatch picks up the outcome on a later frame.
func (s *Sim) startBatch(numPhotons int) {
	if s.batchRunning {
		return
	}

	// Clone the column so panel edits during the run cannot race it.
	stack, err := atmosphere.NewStack(s.stack.SurfaceAlbedo(), s.stack.Layers()...)
	if err != nil {
		slog.Error("failed to clone column for batch run", "error", err)
		return
	}

	s.batchRunning = true
	s.batchSeq++
	seed := s.seed + s.batchSeq
	threshold := config.Cfg().Physics.WeightThreshold

	slog.Info("starting batch run", "photons", numPhotons, "seed", seed, "layers", stack.Len())

	go func() {
		start := time.Now()
		res, err := transport.Run(stack, numPhotons, threshold, rng.NewPCG(seed))
		s.batchCh <- batchOutcome{
			result:  res,
			stack:   stack,
			seed:    seed,
			elapsed: time.Since(start),
			err:     err,
		}
	}()
}

// pollBatch receives a finished batch outcome, if any, without blocking.
func (s *Sim) pollBatch() {
	select {
	case out := <-s.batchCh:
		s.batchRunning = false
		if out.err != nil {
			slog.Error("batch run failed", "error", out.err)
			return
		}
		s.finishBatch(out)
	default:
	}
}

func (s *Sim) finishBatch(out batchOutcome) {
	res := out.result
	slog.Info("batch run complete",
		"photons", res.NumPhotons,
		"seed", out.seed,
		"elapsed", out.elapsed.Round(time.Millisecond),
		"reflectance", res.Reflectance,
		"transmittance", res.Transmittance,
		"absorptance", res.Absorptance,
	)

	cfg := config.Cfg()
	if s.results != nil {
		s.results.SetResult(*res, out.seed, out.elapsed, cfg.Output.SolarConstant)
	}
	if s.outputManager != nil {
		rec := telemetry.NewRunRecord(out.seed, out.stack, cfg.Physics.WeightThreshold, res, cfg.Output.SolarConstant)
		if err := s.outputManager.WriteRun(rec); err != nil {
			slog.Error("failed to write run record", "error", err)
		}
	}
}
