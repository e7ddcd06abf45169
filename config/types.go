package config

import (
	"github.com/mezonai/powchain/store"
)

// APIConfig configures the HTTP server
type APIConfig struct {
	ListenAddr          string `yaml:"listen_addr"`
	SubmitRatePerMinute int    `yaml:"submit_rate_per_minute"`
}

// MetricsConfig configures the Prometheus endpoint. When enabled with an
// empty ListenAddr the API server serves /metrics; when disabled nothing does.
type MetricsConfig struct {
	Enabled    bool   `yaml:"enabled"`
	ListenAddr string `yaml:"listen_addr"`
}

// ServedByAPI reports whether /metrics belongs on the API listener.
func (c MetricsConfig) ServedByAPI() bool {
	return c.Enabled && c.ListenAddr == ""
}

// MinerConfig controls the background miner started by `run`
type MinerConfig struct {
	Enabled bool   `yaml:"enabled"`
	Data    string `yaml:"data"`
	// Nil falls back to default_diff_bits; an explicit 0 mines at difficulty 0
	DiffBits   *uint32 `yaml:"diff_bits"`
	IntervalMs int     `yaml:"interval_ms"`
}

// NodeConfig holds the configuration from node.yml
type NodeConfig struct {
	Store   store.StoreConfig `yaml:"store"`
	API     APIConfig         `yaml:"api"`
	Metrics MetricsConfig     `yaml:"metrics"`
	Miner   MinerConfig       `yaml:"miner"`
}

// ConfigFile is the top-level structure for node.yml
type ConfigFile struct {
	Node NodeConfig `yaml:"node"`
}

type PowConfig struct {
	DefaultDiffBits       uint32 `ini:"default_diff_bits"`
	Workers               int    `ini:"workers"`
	MaxFutureDriftSeconds int    `ini:"max_future_drift_seconds"`
}
