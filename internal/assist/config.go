package assist

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Provider names.
const (
	ProviderNone      = ""
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

// Env maps environment variable names for assist configuration.
type Env struct {
	Provider  string
	Model     string
	APIKey    string
	MaxTokens string
	Timeout   string
}

// Config selects and tunes the language-model provider. An empty Provider
// disables assistance.
type Config struct {
	Provider  string `toml:"provider"`
	Model     string `toml:"model"`
	APIKey    string `toml:"api_key"`
	MaxTokens int    `toml:"max_tokens"`
	Timeout   string `toml:"timeout"`

	// MaxDocumentChars bounds extracted text sent to text-only providers.
	MaxDocumentChars int `toml:"max_document_chars"`
}

// TimeoutDuration returns the per-call timeout.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Finalize applies defaults, loads environment overrides, and validates the configuration.
func (c *Config) Finalize(env *Env) error {
	c.loadEnv(env)
	c.loadDefaults()
	return c.validate()
}

// Merge applies non-zero values from the overlay configuration.
func (c *Config) Merge(overlay *Config) {
	if overlay.Provider != "" {
		c.Provider = overlay.Provider
	}
	if overlay.Model != "" {
		c.Model = overlay.Model
	}
	if overlay.APIKey != "" {
		c.APIKey = overlay.APIKey
	}
	if overlay.MaxTokens != 0 {
		c.MaxTokens = overlay.MaxTokens
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.MaxDocumentChars != 0 {
		c.MaxDocumentChars = overlay.MaxDocumentChars
	}
}

func (c *Config) loadDefaults() {
	if c.Model == "" {
		switch c.Provider {
		case ProviderAnthropic:
			c.Model = "claude-sonnet-4-20250514"
		case ProviderOpenAI:
			c.Model = "gpt-4o-mini"
		}
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 1024
	}
	if c.Timeout == "" {
		c.Timeout = "60s"
	}
	if c.MaxDocumentChars == 0 {
		c.MaxDocumentChars = 100_000
	}
}

func (c *Config) loadEnv(env *Env) {
	if env == nil {
		return
	}
	if v := os.Getenv(env.Provider); v != "" {
		c.Provider = v
	}
	if v := os.Getenv(env.Model); v != "" {
		c.Model = v
	}
	if v := os.Getenv(env.APIKey); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv(env.MaxTokens); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxTokens = n
		}
	}
	if v := os.Getenv(env.Timeout); v != "" {
		c.Timeout = v
	}
}

func (c *Config) validate() error {
	switch c.Provider {
	case ProviderNone:
		return nil
	case ProviderAnthropic, ProviderOpenAI:
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}

	if c.APIKey == "" {
		return fmt.Errorf("api_key required for provider %s", c.Provider)
	}
	if c.MaxTokens < 1 {
		return fmt.Errorf("max_tokens must be positive")
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	return nil
}

// CacheEnv maps environment variable names for cache configuration.
type CacheEnv struct {
	Addr     string
	Password string
	DB       string
	TTL      string
}

// CacheConfig points at an optional Redis instance. An empty Addr disables caching.
type CacheConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	TTL      string `toml:"ttl"`
}

// TTLDuration returns how long cached responses live.
func (c *CacheConfig) TTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.TTL)
	return d
}

// Finalize applies defaults, loads environment overrides, and validates the configuration.
func (c *CacheConfig) Finalize(env *CacheEnv) error {
	if env != nil {
		if v := os.Getenv(env.Addr); v != "" {
			c.Addr = v
		}
		if v := os.Getenv(env.Password); v != "" {
			c.Password = v
		}
		if v := os.Getenv(env.DB); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.DB = n
			}
		}
		if v := os.Getenv(env.TTL); v != "" {
			c.TTL = v
		}
	}

	if c.TTL == "" {
		c.TTL = "24h"
	}
	if _, err := time.ParseDuration(c.TTL); err != nil {
		return fmt.Errorf("invalid ttl: %w", err)
	}
	return nil
}

// Merge applies non-zero values from the overlay configuration.
func (c *CacheConfig) Merge(overlay *CacheConfig) {
	if overlay.Addr != "" {
		c.Addr = overlay.Addr
	}
	if overlay.Password != "" {
		c.Password = overlay.Password
	}
	if overlay.DB != 0 {
		c.DB = overlay.DB
	}
	if overlay.TTL != "" {
		c.TTL = overlay.TTL
	}
}
