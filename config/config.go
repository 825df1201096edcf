package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config captures the daemon's runtime configuration.
type Config struct {
	ListenAddress   string `toml:"ListenAddress"`
	DataDir         string `toml:"DataDir"`
	StorageBackend  string `toml:"StorageBackend"`
	NetworkName     string `toml:"NetworkName"`
	ContractAddress string `toml:"ContractAddress"`
	LogFile         string `toml:"LogFile"`
	LogMaxSizeMB    int    `toml:"LogMaxSizeMB"`

	MinListingWindow     uint64 `toml:"MinListingWindow"`
	AcceptTimeoutBlocks  uint64 `toml:"AcceptTimeoutBlocks"`
	DisputeTimeoutBlocks uint64 `toml:"DisputeTimeoutBlocks"`

	FaucetDripAmount     string `toml:"FaucetDripAmount"`
	FaucetCooldownBlocks uint64 `toml:"FaucetCooldownBlocks"`

	EventHistorySize int `toml:"EventHistorySize"`
}

// Load loads the configuration from the given path, writing a default file
// when none exists yet.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("config file %s contains unknown field %s", path, undecoded[0].String())
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		ListenAddress:        ":8545",
		DataDir:              "./escrow-data",
		StorageBackend:       "leveldb",
		NetworkName:          "escrow-local",
		ContractAddress:      "0x00000000000000000000000000000000000e5c01",
		LogMaxSizeMB:         100,
		MinListingWindow:     10,
		AcceptTimeoutBlocks:  100,
		DisputeTimeoutBlocks: 1000,
		FaucetDripAmount:     "1000000000000000000",
		FaucetCooldownBlocks: 100,
		EventHistorySize:     1024,
	}
}

func createDefault(path string) (*Config, error) {
	cfg := defaultConfig()
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	if err := toml.NewEncoder(file).Encode(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
