package thumbnail

import (
	"fmt"
	"os"
	"strconv"
)

// Config controls thumbnail rasterization.
type Config struct {
	// DPI is the render density of page 1 before scaling. Default: 72.
	DPI int `toml:"dpi"`
	// Scale shrinks the rendered page. Default: 0.5.
	Scale float64 `toml:"scale"`
	// MaxWidth caps the thumbnail width in pixels after scaling. 0 disables the cap.
	MaxWidth int `toml:"max_width"`
	// Background fills transparent regions. Default: "white".
	Background string `toml:"background"`
}

// Env maps environment variable names for thumbnail configuration.
type Env struct {
	DPI      string
	Scale    string
	MaxWidth string
}

// Finalize applies defaults, loads environment overrides, and validates the configuration.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge applies non-zero values from the overlay configuration.
func (c *Config) Merge(overlay *Config) {
	if overlay.DPI != 0 {
		c.DPI = overlay.DPI
	}
	if overlay.Scale != 0 {
		c.Scale = overlay.Scale
	}
	if overlay.MaxWidth != 0 {
		c.MaxWidth = overlay.MaxWidth
	}
	if overlay.Background != "" {
		c.Background = overlay.Background
	}
}

func (c *Config) loadDefaults() {
	if c.DPI == 0 {
		c.DPI = 72
	}
	if c.Scale == 0 {
		c.Scale = 0.5
	}
	if c.Background == "" {
		c.Background = "white"
	}
}

func (c *Config) loadEnv(env *Env) {
	if v := os.Getenv(env.DPI); env.DPI != "" && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.DPI = n
		}
	}
	if v := os.Getenv(env.Scale); env.Scale != "" && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Scale = f
		}
	}
	if v := os.Getenv(env.MaxWidth); env.MaxWidth != "" && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxWidth = n
		}
	}
}

func (c *Config) validate() error {
	if c.DPI < 72 || c.DPI > 600 {
		return fmt.Errorf("dpi must be between 72 and 600")
	}
	if c.Scale <= 0 || c.Scale > 1 {
		return fmt.Errorf("scale must be in (0, 1]")
	}
	if c.MaxWidth < 0 {
		return fmt.Errorf("max_width must not be negative")
	}
	return nil
}
