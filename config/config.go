package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// AssetConfig declares one supported asset with its risk parameters in basis
// points.
type AssetConfig struct {
	ID                      string `toml:"ID"`
	Decimals                uint8  `toml:"Decimals"`
	CollateralFactorBps     uint64 `toml:"CollateralFactorBps"`
	LiquidationThresholdBps uint64 `toml:"LiquidationThresholdBps"`
	LiquidationBonusBps     uint64 `toml:"LiquidationBonusBps"`
}

// ExternalAssetConfig maps a source-chain asset identifier to a hub asset.
type ExternalAssetConfig struct {
	ChainID    uint64 `toml:"ChainID"`
	ExternalID string `toml:"ExternalID"`
	HubAssetID string `toml:"HubAssetID"`
}

type Config struct {
	RPCAddress          string                `toml:"RPCAddress"`
	DataDir             string                `toml:"DataDir"`
	HubChainID          uint64                `toml:"HubChainID"`
	OracleMaxStalenessS uint64                `toml:"OracleMaxStalenessSeconds"`
	PausedModules       []string              `toml:"PausedModules"`
	AllowedSourceChains []uint64              `toml:"AllowedSourceChains"`
	Assets              []AssetConfig         `toml:"Assets"`
	ExternalAssets      []ExternalAssetConfig `toml:"ExternalAssets"`
}

// Load reads the configuration from the given path, creating a default file
// when none exists. Unknown keys are rejected so typos do not silently run
// with defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		return nil, fmt.Errorf("config file %s has unknown keys: %s", path, strings.Join(keys, ", "))
	}

	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.RPCAddress) == "" {
		cfg.RPCAddress = "0.0.0.0:8545"
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = "./crosslend-data"
	}
	if cfg.HubChainID == 0 {
		cfg.HubChainID = 7000
	}
	if cfg.OracleMaxStalenessS == 0 {
		cfg.OracleMaxStalenessS = 300
	}
	if cfg.PausedModules == nil {
		cfg.PausedModules = []string{}
	}
	if cfg.AllowedSourceChains == nil {
		cfg.AllowedSourceChains = []uint64{}
	}
}

func createDefault(path string) (*Config, error) {
	cfg := &Config{}
	applyDefaults(cfg)
	if err := persist(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func persist(path string, cfg *Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// IsPaused satisfies the native module pause view.
func (c *Config) IsPaused(module string) bool {
	if c == nil {
		return false
	}
	for _, paused := range c.PausedModules {
		if paused == module {
			return true
		}
	}
	return false
}
