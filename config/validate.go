package config

import (
	"fmt"
	"strings"
)

const maxPlatformFeeBps = 1_000

// Validate checks the parsed configuration for values the node would refuse
// at runtime.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.RPCAddress) == "" {
		return fmt.Errorf("config: RPCAddress must not be empty")
	}
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("config: DataDir must not be empty")
	}
	if c.PlatformFeeBps > maxPlatformFeeBps {
		return fmt.Errorf("config: PlatformFeeBps %d exceeds maximum %d", c.PlatformFeeBps, maxPlatformFeeBps)
	}
	if _, err := c.Admin(); err != nil {
		return err
	}
	if _, err := c.Platform(); err != nil {
		return err
	}
	if _, err := c.Alloc(); err != nil {
		return err
	}
	return nil
}
