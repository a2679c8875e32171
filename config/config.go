package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config is the on-disk node configuration. Addresses are hex encoded and
// token amounts are decimal strings so the file stays editable by hand.
type Config struct {
	RPCAddress           string            `toml:"RPCAddress"`
	DataDir              string            `toml:"DataDir"`
	NetworkName          string            `toml:"NetworkName"`
	AdminAddress         string            `toml:"AdminAddress"`
	PlatformWallet       string            `toml:"PlatformWallet"`
	PlatformFeeBps       uint32            `toml:"PlatformFeeBps"`
	CertificateMaxSupply uint64            `toml:"CertificateMaxSupply"`
	RPCTokenEnv          string            `toml:"RPCTokenEnv"`
	LogFile              string            `toml:"LogFile"`
	LogMaxSizeMB         int               `toml:"LogMaxSizeMB"`
	LogMaxBackups        int               `toml:"LogMaxBackups"`
	EventReplay          int               `toml:"EventReplay"`
	Pauses               Pauses            `toml:"pauses"`
	GenesisAlloc         map[string]string `toml:"genesis_alloc"`
}

// Load reads the configuration from path, creating a default file when none
// exists yet.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.NetworkName) == "" {
		cfg.NetworkName = "cinechain-local"
	}
	if strings.TrimSpace(cfg.RPCTokenEnv) == "" {
		cfg.RPCTokenEnv = "CINECHAIN_RPC_TOKEN"
	}
	if cfg.EventReplay <= 0 {
		cfg.EventReplay = 1024
	}
	if cfg.GenesisAlloc == nil {
		cfg.GenesisAlloc = map[string]string{}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RPCToken resolves the bearer token guarding administrative RPC methods.
// An empty token disables the administrative surface entirely.
func (c *Config) RPCToken() string {
	return strings.TrimSpace(os.Getenv(c.RPCTokenEnv))
}

// createDefault creates and saves a default configuration file.
func createDefault(path string) (*Config, error) {
	cfg := &Config{
		RPCAddress:           ":8080",
		DataDir:              "./cinechain-data",
		NetworkName:          "cinechain-local",
		PlatformFeeBps:       300,
		CertificateMaxSupply: 0,
		RPCTokenEnv:          "CINECHAIN_RPC_TOKEN",
		LogMaxSizeMB:         100,
		LogMaxBackups:        5,
		EventReplay:          1024,
		GenesisAlloc:         map[string]string{},
	}

	if err := persist(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func persist(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
