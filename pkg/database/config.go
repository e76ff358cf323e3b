package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Dialect identifies the SQL backend behind a connection.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
	// None disables the database; the document store reports itself unavailable.
	None Dialect = "none"
)

// Validate checks that d names a supported backend.
func (d Dialect) Validate() error {
	switch d {
	case SQLite, Postgres, None:
		return nil
	default:
		return fmt.Errorf("invalid driver: %s (must be sqlite, postgres, or none)", d)
	}
}

// Config contains database connection configuration.
type Config struct {
	Driver          Dialect `toml:"driver"`
	Path            string  `toml:"path"`
	Host            string  `toml:"host"`
	Port            int     `toml:"port"`
	Name            string  `toml:"name"`
	User            string  `toml:"user"`
	Password        string  `toml:"password"`
	MaxOpenConns    int     `toml:"max_open_conns"`
	MaxIdleConns    int     `toml:"max_idle_conns"`
	ConnMaxLifetime string  `toml:"conn_max_lifetime"`
	ConnTimeout     string  `toml:"conn_timeout"`
}

// Env maps environment variable names for database configuration.
type Env struct {
	Driver          string
	Path            string
	Host            string
	Port            string
	Name            string
	User            string
	Password        string
	MaxOpenConns    string
	MaxIdleConns    string
	ConnMaxLifetime string
	ConnTimeout     string
}

// ConnMaxLifetimeDuration parses and returns the connection max lifetime as a time.Duration.
func (c *Config) ConnMaxLifetimeDuration() time.Duration {
	d, _ := time.ParseDuration(c.ConnMaxLifetime)
	return d
}

// ConnTimeoutDuration parses and returns the connection timeout as a time.Duration.
func (c *Config) ConnTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ConnTimeout)
	return d
}

// DriverName returns the database/sql driver registered for the dialect.
func (c *Config) DriverName() string {
	if c.Driver == Postgres {
		return "pgx"
	}
	return "sqlite3"
}

// Dsn returns the connection string for the configured driver.
func (c *Config) Dsn() string {
	if c.Driver == Postgres {
		return fmt.Sprintf(
			"host=%s port=%d dbname=%s user=%s password=%s sslmode=disable",
			c.Host, c.Port, c.Name, c.User, c.Password,
		)
	}
	return fmt.Sprintf(
		"file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(wal)&_pragma=foreign_keys(1)",
		filepath.ToSlash(c.Path),
	)
}

// Finalize applies defaults, loads environment overrides, and validates the database configuration.
func (c *Config) Finalize(env *Env) error {
	if env != nil {
		c.loadEnv(env)
	}
	c.loadDefaults()
	return c.validate()
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *Config) Merge(overlay *Config) {
	if overlay.Driver != "" {
		c.Driver = overlay.Driver
	}
	if overlay.Path != "" {
		c.Path = overlay.Path
	}
	if overlay.Host != "" {
		c.Host = overlay.Host
	}
	if overlay.Port != 0 {
		c.Port = overlay.Port
	}
	if overlay.Name != "" {
		c.Name = overlay.Name
	}
	if overlay.User != "" {
		c.User = overlay.User
	}
	if overlay.Password != "" {
		c.Password = overlay.Password
	}
	if overlay.MaxOpenConns != 0 {
		c.MaxOpenConns = overlay.MaxOpenConns
	}
	if overlay.MaxIdleConns != 0 {
		c.MaxIdleConns = overlay.MaxIdleConns
	}
	if overlay.ConnMaxLifetime != "" {
		c.ConnMaxLifetime = overlay.ConnMaxLifetime
	}
	if overlay.ConnTimeout != "" {
		c.ConnTimeout = overlay.ConnTimeout
	}
}

// loadDefaults runs after loadEnv so pool sizes follow an env-selected driver.
func (c *Config) loadDefaults() {
	if c.Driver == "" {
		c.Driver = SQLite
	}
	if c.Path == "" {
		c.Path = ".data/flipbook.db"
	}
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 5432
	}
	if c.MaxOpenConns == 0 {
		if c.Driver == SQLite {
			c.MaxOpenConns = 1
		} else {
			c.MaxOpenConns = 25
		}
	}
	if c.MaxIdleConns == 0 {
		if c.Driver == SQLite {
			c.MaxIdleConns = 1
		} else {
			c.MaxIdleConns = 5
		}
	}
	if c.ConnMaxLifetime == "" {
		c.ConnMaxLifetime = "15m"
	}
	if c.ConnTimeout == "" {
		c.ConnTimeout = "5s"
	}
}

func (c *Config) loadEnv(env *Env) {
	setString := func(name string, dst *string) {
		if name == "" {
			return
		}
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}
	setInt := func(name string, dst *int) {
		if name == "" {
			return
		}
		if v := os.Getenv(name); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	if env.Driver != "" {
		if v := os.Getenv(env.Driver); v != "" {
			c.Driver = Dialect(v)
		}
	}
	setString(env.Path, &c.Path)
	setString(env.Host, &c.Host)
	setInt(env.Port, &c.Port)
	setString(env.Name, &c.Name)
	setString(env.User, &c.User)
	setString(env.Password, &c.Password)
	setInt(env.MaxOpenConns, &c.MaxOpenConns)
	setInt(env.MaxIdleConns, &c.MaxIdleConns)
	setString(env.ConnMaxLifetime, &c.ConnMaxLifetime)
	setString(env.ConnTimeout, &c.ConnTimeout)
}

func (c *Config) validate() error {
	if err := c.Driver.Validate(); err != nil {
		return err
	}
	if c.Driver == Postgres {
		if c.Name == "" {
			return fmt.Errorf("name required")
		}
		if c.User == "" {
			return fmt.Errorf("user required")
		}
	}
	if _, err := time.ParseDuration(c.ConnMaxLifetime); err != nil {
		return fmt.Errorf("invalid conn_max_lifetime: %w", err)
	}
	if _, err := time.ParseDuration(c.ConnTimeout); err != nil {
		return fmt.Errorf("invalid conn_timeout: %w", err)
	}
	return nil
}
