package cmd

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"gossipsim/internal/config"
	"gossipsim/internal/runid"
	"gossipsim/internal/simrun"
)

// runTrials runs several independent trials in one process: each trial
// gets its own independently-derived seed via runid.SubSeed, keyed by
// trial index, so --trials N is itself deterministic given the
// configured base seed.
func runTrials(cfg config.Config, log *zap.Logger) error {
	converged := 0
	radioSilence := 0
	var totalConvergenceMs int64

	for i := 0; i < flagTrials; i++ {
		trialCfg := cfg
		trialCfg.Seed = runid.SubSeed(cfg.Seed, fmt.Sprintf("trial-%d", i))

		report, err := simrun.New(trialCfg, log, os.Stderr, flagQuiet).Run()
		switch err {
		case nil:
			converged++
			totalConvergenceMs += int64(report.ConvergenceTimeMs)
		case simrun.ErrRadioSilence:
			radioSilence++
		default:
			if ie, ok := err.(*simrun.InvariantError); ok {
				log.Error("invariant violated", zap.Int("trial", i), zap.String("invariant", ie.Invariant), zap.String("detail", ie.Detail))
				return fatal(1, ie)
			}
			return fatal(1, err)
		}
	}

	mean := int64(0)
	if converged > 0 {
		mean = totalConvergenceMs / int64(converged)
	}
	fmt.Fprintf(os.Stderr, "Ran %d trials: %d converged, %d radio silence, mean %d ms\n", flagTrials, converged, radioSilence, mean)
	return nil
}
