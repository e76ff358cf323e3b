package config_test

import (
	"os"
	"testing"

	"github.com/JaimeStill/flipbook/internal/assist"
	"github.com/JaimeStill/flipbook/internal/config"
	"github.com/JaimeStill/flipbook/pkg/database"
)

func TestLoad_BaseConfig(t *testing.T) {
	t.Setenv(config.EnvServiceEnv, "")
	t.Chdir("../..")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Driver != database.SQLite {
		t.Errorf("Database.Driver = %q, want sqlite", cfg.Database.Driver)
	}
	if cfg.Storage.MaxUploadSizeBytes() != 50_000_000 {
		t.Errorf("MaxUploadSizeBytes() = %d, want 50MB", cfg.Storage.MaxUploadSizeBytes())
	}
	if cfg.API.BasePath != "/api" {
		t.Errorf("API.BasePath = %q, want /api", cfg.API.BasePath)
	}
	if cfg.Assist.Provider != "" {
		t.Errorf("Assist.Provider = %q, want disabled", cfg.Assist.Provider)
	}
}

func TestLoad_WithOverlay(t *testing.T) {
	t.Chdir("../..")

	overlay := `shutdown_timeout = "60s"

[server]
port = 9090

[database]
driver = "none"
`
	if err := os.WriteFile("config.overlaytest.toml", []byte(overlay), 0644); err != nil {
		t.Fatalf("write overlay: %v", err)
	}
	t.Cleanup(func() { os.Remove("config.overlaytest.toml") })
	t.Setenv(config.EnvServiceEnv, "overlaytest")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ShutdownTimeout != "60s" {
		t.Errorf("ShutdownTimeout = %q, want 60s", cfg.ShutdownTimeout)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Database.Driver != database.None {
		t.Errorf("Database.Driver = %q, want none", cfg.Database.Driver)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want base value kept", cfg.Server.Host)
	}
}

func TestConfig_Finalize_Defaults(t *testing.T) {
	cfg := &config.Config{}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	if cfg.ShutdownTimeoutDuration().Seconds() != 30 {
		t.Errorf("ShutdownTimeoutDuration() = %v, want 30s", cfg.ShutdownTimeoutDuration())
	}
	if cfg.Server.Addr() != "0.0.0.0:8080" {
		t.Errorf("Addr() = %q", cfg.Server.Addr())
	}
	if cfg.Thumbnail.DPI != 72 || cfg.Thumbnail.Scale != 0.5 {
		t.Errorf("Thumbnail = %+v, want 72 dpi at 0.5 scale", cfg.Thumbnail)
	}
	if cfg.Cache.TTL != "24h" {
		t.Errorf("Cache.TTL = %q, want 24h", cfg.Cache.TTL)
	}
	if len(cfg.API.CORS.AllowedMethods) == 0 {
		t.Error("CORS defaults not applied")
	}
}

func TestConfig_Finalize_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "3000")
	t.Setenv("DATABASE_DRIVER", "none")
	t.Setenv("STORAGE_MAX_UPLOAD_SIZE", "5MB")
	t.Setenv("ASSIST_PROVIDER", "anthropic")
	t.Setenv("ASSIST_API_KEY", "key")
	t.Setenv("CACHE_ADDR", "localhost:6379")
	t.Setenv("API_CORS_ORIGINS", "http://localhost:5173")

	cfg := &config.Config{}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	if cfg.Server.Port != 3000 {
		t.Errorf("Server.Port = %d, want 3000", cfg.Server.Port)
	}
	if cfg.Database.Driver != database.None {
		t.Errorf("Database.Driver = %q, want none", cfg.Database.Driver)
	}
	if cfg.Storage.MaxUploadSizeBytes() != 5_000_000 {
		t.Errorf("MaxUploadSizeBytes() = %d, want 5MB", cfg.Storage.MaxUploadSizeBytes())
	}
	if cfg.Assist.Model == "" {
		t.Error("Assist.Model should default for the provider")
	}
	if cfg.Cache.Addr != "localhost:6379" {
		t.Errorf("Cache.Addr = %q", cfg.Cache.Addr)
	}
	if len(cfg.API.CORS.Origins) != 1 {
		t.Errorf("CORS.Origins = %q", cfg.API.CORS.Origins)
	}
}

func TestConfig_Finalize_Invalid(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
	}{
		{"shutdown timeout", config.Config{ShutdownTimeout: "soon"}},
		{"port", config.Config{Server: config.ServerConfig{Port: 70000}}},
		{"base path", config.Config{API: config.APIConfig{BasePath: "/api/v1"}}},
		{"assist without key", config.Config{Assist: assist.Config{Provider: assist.ProviderOpenAI}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			if err := cfg.Finalize(); err == nil {
				t.Error("Finalize() error = nil, want error")
			}
		})
	}
}
