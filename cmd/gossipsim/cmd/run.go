package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gossipsim/internal/config"
	"gossipsim/internal/runid"
	"gossipsim/internal/simrun"
	"gossipsim/internal/telemetry"
)

var (
	flagConfigPath       string
	flagSeed             int64
	flagSeedSet          bool
	flagNodes            int
	flagMalicious        int
	flagConsensusPercent int
	flagQuiet            bool
	flagTrials           int
	flagLogLevel         string
)

func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&flagConfigPath, "config", "", "path to a YAML config file overlaying the built-in defaults")
	flags.Int64Var(&flagSeed, "seed", 0, "override the RNG seed")
	flags.IntVar(&flagNodes, "nodes", 0, "override the node count")
	flags.IntVar(&flagMalicious, "malicious", -1, "override the malicious node count")
	flags.IntVar(&flagConsensusPercent, "consensus-percent", 0, "override the supermajority percentage")
	flags.BoolVar(&flagQuiet, "quiet", false, "suppress the periodic progress line")
	flags.IntVar(&flagTrials, "trials", 1, "number of independent trials to run")
	flags.StringVar(&flagLogLevel, "log-level", "info", "structured logger level (debug, info, warn, error)")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	flagSeedSet = cmd.Flags().Changed("seed")

	cfg, err := loadConfig()
	if err != nil {
		return fatal(1, err)
	}

	log, err := telemetryLogger()
	if err != nil {
		return fatal(1, fmt.Errorf("building logger: %w", err))
	}
	defer log.Sync()

	runID := runid.New()
	log.Info("starting run", zap.String("run_id", runID), zap.Int64("seed", cfg.Seed), zap.Int("nodes", cfg.Nodes), zap.Int("trials", flagTrials))

	if flagTrials <= 1 {
		report, runErr := simrun.New(cfg, log, os.Stderr, flagQuiet).Run()
		return classify(report, runErr, log)
	}
	return runTrials(cfg, log)
}

// loadConfig builds the base Config from defaults or --config, then applies
// any scalar overrides present on the command line.
func loadConfig() (config.Config, error) {
	cfg := config.Default()
	if flagConfigPath != "" {
		loaded, err := config.Load(flagConfigPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	if flagSeedSet {
		cfg.Seed = flagSeed
	}
	if flagNodes > 0 {
		cfg.Nodes = flagNodes
	}
	if flagMalicious >= 0 {
		cfg.MaliciousNodes = flagMalicious
	}
	if flagConsensusPercent > 0 {
		cfg.ConsensusPercent = flagConsensusPercent
	}

	if err := config.Validate(cfg); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func telemetryLogger() (*zap.Logger, error) {
	level := flagLogLevel
	if level == "" {
		level = "info"
	}
	return telemetry.New(level)
}

// classify maps a single trial's outcome onto the documented exit codes:
// radio silence is a normal, zero-exit outcome; an invariant violation is a
// fatal, exit-1 bug report.
func classify(report simrun.Report, err error, log *zap.Logger) error {
	if err == nil {
		return nil
	}
	if err == simrun.ErrRadioSilence {
		return nil
	}
	var ie *simrun.InvariantError
	if ok := asInvariantError(err, &ie); ok {
		log.Error("invariant violated", zap.String("invariant", ie.Invariant), zap.String("detail", ie.Detail))
		return fatal(1, ie)
	}
	return fatal(1, err)
}

func asInvariantError(err error, target **simrun.InvariantError) bool {
	ie, ok := err.(*simrun.InvariantError)
	if ok {
		*target = ie
	}
	return ok
}
