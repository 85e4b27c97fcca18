package config

import "fmt"

func validate(c *Config) error {
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be > 0")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent must not be empty")
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("cache ttl must be > 0")
	}
	if c.CacheMaxEntries <= 0 {
		return fmt.Errorf("cache max entries must be > 0")
	}
	return nil
}
