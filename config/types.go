package config

import (
	"fmt"
	"math/big"
	"strings"

	"cinechain/core/types"
)

// Pauses controls which modules reject mutating operations at startup.
type Pauses struct {
	Fundraising bool
	Certificate bool
	Royalty     bool
}

// Modules returns the names of the paused modules.
func (p Pauses) Modules() []string {
	var modules []string
	if p.Fundraising {
		modules = append(modules, "fundraising")
	}
	if p.Certificate {
		modules = append(modules, "certificate")
	}
	if p.Royalty {
		modules = append(modules, "royalty")
	}
	return modules
}

// Admin parses the configured administrator address. An empty value yields
// the zero address, which disables administrative operations.
func (c *Config) Admin() (types.Address, error) {
	return parseOptionalAddress("AdminAddress", c.AdminAddress)
}

// Platform parses the configured platform fee wallet.
func (c *Config) Platform() (types.Address, error) {
	return parseOptionalAddress("PlatformWallet", c.PlatformWallet)
}

// Alloc parses the genesis allocation into runtime values.
func (c *Config) Alloc() (map[types.Address]*big.Int, error) {
	alloc := make(map[types.Address]*big.Int, len(c.GenesisAlloc))
	for raw, amount := range c.GenesisAlloc {
		addr, err := types.ParseAddress(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid genesis_alloc address %q: %w", raw, err)
		}
		value, ok := new(big.Int).SetString(strings.TrimSpace(amount), 10)
		if !ok || value.Sign() < 0 {
			return nil, fmt.Errorf("invalid genesis_alloc amount %q for %s", amount, raw)
		}
		alloc[addr] = value
	}
	return alloc, nil
}

func parseOptionalAddress(field, raw string) (types.Address, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return types.ZeroAddress, nil
	}
	addr, err := types.ParseAddress(trimmed)
	if err != nil {
		return types.ZeroAddress, fmt.Errorf("invalid %s: %w", field, err)
	}
	return addr, nil
}
