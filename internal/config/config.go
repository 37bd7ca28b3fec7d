// Package config carries the simulation's tunable constants, their
// defaults, struct-tag validation, and an optional YAML overlay.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is every tunable constant a run needs, validated before the run
// starts so that a bad configuration is a fail-fast startup error, never a
// partial simulation.
type Config struct {
	Nodes            int `yaml:"nodes" validate:"gte=2"`
	MaliciousNodes   int `yaml:"malicious_nodes" validate:"gte=0"`
	ConsensusPercent int `yaml:"consensus_percent" validate:"gte=1,lte=100"`

	E2CLatencyMin int `yaml:"e2c_latency_min" validate:"gte=1"`
	E2CLatencyMax int `yaml:"e2c_latency_max" validate:"gtefield=E2CLatencyMin"`
	C2CLatencyMin int `yaml:"c2c_latency_min" validate:"gte=1"`
	C2CLatencyMax int `yaml:"c2c_latency_max" validate:"gtefield=C2CLatencyMin"`

	OutboundLinks int `yaml:"outbound_links" validate:"gte=1"`
	UNLMin        int `yaml:"unl_min" validate:"gte=1"`
	UNLMax        int `yaml:"unl_max" validate:"gtefield=UNLMin"`
	UNLThresh     int `yaml:"unl_thresh" validate:"gte=1"`

	BaseDelay     int `yaml:"base_delay" validate:"gte=0"`
	SelfWeight    int `yaml:"self_weight" validate:"gte=0"`
	PacketsOnWire int `yaml:"packets_on_wire" validate:"gte=1"`

	Seed int64 `yaml:"seed"`
}

// Default returns the built-in constants - running with no flags and no
// config file reproduces this exactly.
func Default() Config {
	return Config{
		Nodes:            1000,
		MaliciousNodes:   15,
		ConsensusPercent: 80,

		E2CLatencyMin: 5,
		E2CLatencyMax: 50,
		C2CLatencyMin: 5,
		C2CLatencyMax: 200,

		OutboundLinks: 10,
		UNLMin:        20,
		UNLMax:        30,
		UNLThresh:     10,

		BaseDelay:     1,
		SelfWeight:    1,
		PacketsOnWire: 3,

		Seed: 1,
	}
}

// Load reads a YAML file at path, overlaying its fields onto Default(), and
// validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks every struct-tag constraint declared on Config and
// additionally enforces the cross-field bounds that only make sense against
// another field's runtime value, not a fixed constant a struct tag can name.
func Validate(cfg Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if cfg.MaliciousNodes > cfg.Nodes {
		return fmt.Errorf("config: malicious_nodes (%d) cannot exceed nodes (%d)", cfg.MaliciousNodes, cfg.Nodes)
	}
	if cfg.UNLMax > cfg.Nodes-1 {
		return fmt.Errorf("config: unl_max (%d) cannot exceed nodes-1 (%d)", cfg.UNLMax, cfg.Nodes-1)
	}
	if cfg.OutboundLinks > cfg.Nodes-1 {
		return fmt.Errorf("config: outbound_links (%d) cannot exceed nodes-1 (%d)", cfg.OutboundLinks, cfg.Nodes-1)
	}
	if cfg.UNLThresh > cfg.UNLMin {
		return fmt.Errorf("config: unl_thresh (%d) cannot exceed unl_min (%d)", cfg.UNLThresh, cfg.UNLMin)
	}
	return nil
}
