package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultMatchesSpecConstants(t *testing.T) {
	cfg := Default()
	if err := Validate(cfg); err != nil {
		t.Fatalf("default config must validate, got %v", err)
	}
	if cfg.Nodes != 1000 || cfg.UNLThresh != 10 || cfg.PacketsOnWire != 3 {
		t.Fatalf("default config drifted from its documented constants: %+v", cfg)
	}
}

func TestValidateRejectsMaliciousNodesExceedingNodes(t *testing.T) {
	cfg := Default()
	cfg.Nodes = 10
	cfg.MaliciousNodes = 11
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected an error when malicious_nodes exceeds nodes")
	}
}

func TestValidateRejectsInvertedLatencyRange(t *testing.T) {
	cfg := Default()
	cfg.E2CLatencyMax = cfg.E2CLatencyMin - 1
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected an error when e2c_latency_max < e2c_latency_min")
	}
}

func TestValidateRejectsUNLThreshAboveUNLMin(t *testing.T) {
	cfg := Default()
	cfg.UNLThresh = cfg.UNLMin + 1
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected an error when unl_thresh exceeds unl_min")
	}
}

func TestLoadOverlaysYAMLOntoDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sim.yaml")
	if err := os.WriteFile(path, []byte("nodes: 100\nseed: 42\n"), 0o644); err != nil {
		t.Fatalf("write config fixture: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Nodes != 100 || cfg.Seed != 42 {
		t.Fatalf("expected overlay to change nodes/seed, got %+v", cfg)
	}
	if cfg.ConsensusPercent != Default().ConsensusPercent {
		t.Fatalf("fields absent from the YAML file should keep their default, got %d", cfg.ConsensusPercent)
	}
}

func TestLoadRejectsInvalidOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sim.yaml")
	if err := os.WriteFile(path, []byte("nodes: 5\nmalicious_nodes: 6\n"), 0o644); err != nil {
		t.Fatalf("write config fixture: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatalf("expected Load to reject an invalid overlay")
	}
}
