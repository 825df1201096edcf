package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadCreatesDefaultWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":8545", cfg.ListenAddress)
	require.Equal(t, "leveldb", cfg.StorageBackend)
	require.Equal(t, uint64(10), cfg.MinListingWindow)
	require.FileExists(t, path)

	// The written file must round-trip.
	reloaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, reloaded)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
ListenAddress = ":9000"
StorageBackend = "memory"
MinListingWindow = 5
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":9000", cfg.ListenAddress)
	require.Equal(t, "memory", cfg.StorageBackend)
	require.Equal(t, uint64(5), cfg.MinListingWindow)
	require.Equal(t, uint64(100), cfg.AcceptTimeoutBlocks)
}

func TestLoadRejectsUnknownField(t *testing.T) {
	path := writeConfig(t, `
ListenAddress = ":9000"
NoSuchKnob = true
`)
	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "NoSuchKnob")
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty listen address", func(c *Config) { c.ListenAddress = " " }},
		{"unknown backend", func(c *Config) { c.StorageBackend = "postgres" }},
		{"missing data dir", func(c *Config) { c.DataDir = "" }},
		{"malformed contract", func(c *Config) { c.ContractAddress = "xyz" }},
		{"zero contract", func(c *Config) { c.ContractAddress = "0x" + "00" }},
		{"zero listing window", func(c *Config) { c.MinListingWindow = 0 }},
		{"zero accept timeout", func(c *Config) { c.AcceptTimeoutBlocks = 0 }},
		{"zero dispute timeout", func(c *Config) { c.DisputeTimeoutBlocks = 0 }},
		{"negative faucet drip", func(c *Config) { c.FaucetDripAmount = "-1" }},
		{"negative event history", func(c *Config) { c.EventHistorySize = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultConfig()
			tc.mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestMemoryBackendNeedsNoDataDir(t *testing.T) {
	cfg := defaultConfig()
	cfg.StorageBackend = "memory"
	cfg.DataDir = ""
	require.NoError(t, cfg.Validate())
}

func TestFaucetDripParses(t *testing.T) {
	cfg := defaultConfig()
	drip, err := cfg.FaucetDrip()
	require.NoError(t, err)
	require.Equal(t, "1000000000000000000", drip.String())

	cfg.FaucetDripAmount = ""
	drip, err = cfg.FaucetDrip()
	require.NoError(t, err)
	require.Zero(t, drip.Sign())
}
