package cmd

import (
	"testing"

	"go.uber.org/zap"

	"gossipsim/internal/config"
	"gossipsim/internal/simrun"
)

func resetFlags() {
	flagConfigPath = ""
	flagSeed = 0
	flagSeedSet = false
	flagNodes = 0
	flagMalicious = -1
	flagConsensusPercent = 0
	flagQuiet = false
	flagTrials = 1
	flagLogLevel = "info"
}

func TestLoadConfigWithNoFlagsReturnsDefaults(t *testing.T) {
	resetFlags()
	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() returned %v, want nil", err)
	}
	if cfg != config.Default() {
		t.Fatalf("loadConfig() with no overrides = %+v, want config.Default()", cfg)
	}
}

func TestLoadConfigAppliesScalarOverrides(t *testing.T) {
	resetFlags()
	flagNodes = 50
	flagMalicious = 3
	flagConsensusPercent = 90
	flagSeed = 99
	flagSeedSet = true

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() returned %v", err)
	}
	if cfg.Nodes != 50 || cfg.MaliciousNodes != 3 || cfg.ConsensusPercent != 90 || cfg.Seed != 99 {
		t.Fatalf("overrides not applied, got %+v", cfg)
	}
}

func TestLoadConfigRejectsInvalidOverride(t *testing.T) {
	resetFlags()
	flagMalicious = 1_000_000
	flagNodes = 10

	if _, err := loadConfig(); err == nil {
		t.Fatalf("loadConfig() should reject malicious_nodes > nodes")
	}
}

func TestClassifyMapsRadioSilenceToNilError(t *testing.T) {
	log := zap.NewNop()
	if err := classify(simrun.Report{RadioSilence: true}, simrun.ErrRadioSilence, log); err != nil {
		t.Fatalf("classify(ErrRadioSilence) = %v, want nil (exit 0)", err)
	}
}

func TestClassifyMapsInvariantErrorToExitOne(t *testing.T) {
	log := zap.NewNop()
	ie := &simrun.InvariantError{Invariant: "test", Detail: "forced"}
	err := classify(simrun.Report{}, ie, log)
	if err == nil {
		t.Fatalf("classify(InvariantError) should return a non-nil error")
	}
	ce, ok := err.(*cliError)
	if !ok {
		t.Fatalf("classify(InvariantError) = %T, want *cliError", err)
	}
	if ce.code != 1 {
		t.Fatalf("invariant violation exit code = %d, want 1", ce.code)
	}
}
