package config

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"

	"github.com/mezonai/powchain/ledger"
	"github.com/mezonai/powchain/logx"
	"github.com/mezonai/powchain/store"
	"github.com/mezonai/powchain/validator"
)

// DefaultNodeConfig is used for every field node.yml leaves out.
func DefaultNodeConfig() NodeConfig {
	return NodeConfig{
		Store: store.StoreConfig{
			Type:      store.LevelDBStoreType,
			Directory: DefaultStoreDirectory,
		},
		API: APIConfig{
			ListenAddr: DefaultAPIListenAddr,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
		Miner: MinerConfig{
			IntervalMs: DefaultMinerInterval,
		},
	}
}

func DefaultPowConfig() PowConfig {
	return PowConfig{
		DefaultDiffBits:       DefaultDiffBits,
		Workers:               runtime.NumCPU(),
		MaxFutureDriftSeconds: DefaultMaxFutureDriftSeconds,
	}
}

// LoadNodeConfig reads and parses node.yml. A missing file yields the
// defaults.
func LoadNodeConfig(path string) (*NodeConfig, error) {
	cfgFile := ConfigFile{Node: DefaultNodeConfig()}

	file, err := os.Open(path)
	if os.IsNotExist(err) {
		logx.Info("CONFIG", fmt.Sprintf("No node config at %s, using defaults", path))
		return &cfgFile.Node, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to open node config")
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfgFile); err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s", path)
	}
	if err := cfgFile.Node.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid node config %s", path)
	}
	logx.Info("CONFIG", fmt.Sprintf("Loaded node config: store=%s api=%s miner=%v", cfgFile.Node.Store.Type, cfgFile.Node.API.ListenAddr, cfgFile.Node.Miner.Enabled))
	return &cfgFile.Node, nil
}

func (c *NodeConfig) Validate() error {
	if err := c.Store.Validate(); err != nil {
		return err
	}
	if c.API.SubmitRatePerMinute < 0 {
		return fmt.Errorf("submit_rate_per_minute cannot be negative")
	}
	if c.Miner.IntervalMs < 0 {
		return fmt.Errorf("miner interval_ms cannot be negative")
	}
	if c.Miner.DiffBits != nil && *c.Miner.DiffBits > ledger.MaxDiffBits {
		return fmt.Errorf("miner diff_bits %d above %d", *c.Miner.DiffBits, ledger.MaxDiffBits)
	}
	return nil
}

func (c MinerConfig) Interval() time.Duration {
	return time.Duration(c.IntervalMs) * time.Millisecond
}

// LoadPowConfig reads the [pow] section of an .ini file. A missing file
// yields the defaults.
func LoadPowConfig(path string) (*PowConfig, error) {
	powCfg := DefaultPowConfig()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		logx.Info("CONFIG", fmt.Sprintf("No pow config at %s, using defaults", path))
		return &powCfg, nil
	}

	cfg, err := ini.Load(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load pow config")
	}
	if err := cfg.Section("pow").MapTo(&powCfg); err != nil {
		return nil, errors.Wrap(err, "failed to map [pow] section")
	}
	if powCfg.DefaultDiffBits > ledger.MaxDiffBits {
		return nil, fmt.Errorf("default_diff_bits %d above %d", powCfg.DefaultDiffBits, ledger.MaxDiffBits)
	}
	if powCfg.Workers < 1 {
		powCfg.Workers = 1
	}
	if powCfg.MaxFutureDriftSeconds <= 0 {
		powCfg.MaxFutureDriftSeconds = DefaultMaxFutureDriftSeconds
	}
	return &powCfg, nil
}

// ValidatorConfig turns the PoW tuning into validator settings.
func (c *PowConfig) ValidatorConfig() validator.Config {
	cfg := validator.DefaultConfig()
	cfg.MaxFutureDrift = time.Duration(c.MaxFutureDriftSeconds) * time.Second
	return cfg
}
