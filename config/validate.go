package config

import (
	"fmt"
	"math/big"
	"strings"

	"escrowmarket/core/types"
)

var validBackends = map[string]bool{
	"leveldb": true,
	"bolt":    true,
	"memory":  true,
}

// Validate checks the configuration for values the daemon cannot start with.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config: nil configuration")
	}
	if strings.TrimSpace(c.ListenAddress) == "" {
		return fmt.Errorf("config: ListenAddress is required")
	}
	backend := strings.ToLower(strings.TrimSpace(c.StorageBackend))
	if !validBackends[backend] {
		return fmt.Errorf("config: StorageBackend must be one of leveldb, bolt, memory; got %q", c.StorageBackend)
	}
	if backend != "memory" && strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("config: DataDir is required for backend %q", backend)
	}
	addr, err := types.ParseAddress(c.ContractAddress)
	if err != nil {
		return fmt.Errorf("config: ContractAddress: %w", err)
	}
	if addr.IsZero() {
		return fmt.Errorf("config: ContractAddress must be non-zero")
	}
	if c.MinListingWindow == 0 {
		return fmt.Errorf("config: MinListingWindow must be positive")
	}
	if c.AcceptTimeoutBlocks == 0 {
		return fmt.Errorf("config: AcceptTimeoutBlocks must be positive")
	}
	if c.DisputeTimeoutBlocks == 0 {
		return fmt.Errorf("config: DisputeTimeoutBlocks must be positive")
	}
	if _, err := c.FaucetDrip(); err != nil {
		return err
	}
	if c.EventHistorySize < 0 {
		return fmt.Errorf("config: EventHistorySize cannot be negative")
	}
	return nil
}

// Contract returns the parsed contract address. Validate must have passed.
func (c *Config) Contract() (types.Address, error) {
	return types.ParseAddress(c.ContractAddress)
}

// FaucetDrip parses the configured faucet amount.
func (c *Config) FaucetDrip() (*big.Int, error) {
	trimmed := strings.TrimSpace(c.FaucetDripAmount)
	if trimmed == "" {
		return big.NewInt(0), nil
	}
	amount, ok := new(big.Int).SetString(trimmed, 10)
	if !ok || amount.Sign() < 0 {
		return nil, fmt.Errorf("config: FaucetDripAmount must be a non-negative base-10 integer")
	}
	return amount, nil
}
