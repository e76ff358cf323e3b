// Package api assembles the JSON API module mounted under the configured base path.
package api

import (
	"net/http"

	"github.com/JaimeStill/flipbook/internal/config"
	"github.com/JaimeStill/flipbook/internal/infrastructure"
	"github.com/JaimeStill/flipbook/pkg/middleware"
	"github.com/JaimeStill/flipbook/pkg/module"
)

// NewModule wires the domain systems into a module with request logging,
// CORS, and trailing-slash normalization.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, *Domain, error) {
	runtime := NewRuntime(cfg, infra)

	domain, err := NewDomain(cfg, runtime)
	if err != nil {
		return nil, nil, err
	}
	if err := domain.Start(runtime); err != nil {
		return nil, nil, err
	}

	mux := http.NewServeMux()
	registerRoutes(mux, runtime, domain)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.TrimSlash())
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))

	return m, domain, nil
}
