package config

import (
	"strings"
	"time"
)

// CacheConfig defines settings for the response cache middleware.
// When Enabled is false or no Redis client is configured, caching is
// disabled. KeyStrategy determines which parts of the request contribute
// to the cache key.
type CacheConfig struct {
	Enabled      bool          `env:"CACHE_ENABLED, default=true"`
	Methods      []string      `env:"CACHE_METHODS, default=GET"`
	TTL          time.Duration `env:"CACHE_TTL, default=30s"`
	KeyStrategy  string        `env:"CACHE_KEY_STRATEGY, default=route_query"`
	Prefix       string        `env:"CACHE_PREFIX, default=cache"`
	MaxBodyBytes int           `env:"CACHE_MAX_BODY_BYTES, default=1048576"`
}

// MethodSet returns the cacheable methods upper-cased.
func (c CacheConfig) MethodSet() map[string]bool {
	m := make(map[string]bool, len(c.Methods))
	for _, p := range c.Methods {
		if p = strings.TrimSpace(strings.ToUpper(p)); p != "" {
			m[p] = true
		}
	}
	return m
}

func (c *CacheConfig) normalize() {
	if c.TTL <= 0 {
		c.TTL = 30 * time.Second
	}
	if c.Prefix == "" {
		c.Prefix = "cache"
	}
}
