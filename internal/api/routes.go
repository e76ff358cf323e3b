package api

import (
	"context"
	"net/http"

	"github.com/JaimeStill/flipbook/internal/assist"
	"github.com/JaimeStill/flipbook/internal/documents"
	"github.com/JaimeStill/flipbook/internal/search"
	"github.com/JaimeStill/flipbook/pkg/routes"
)

// expander adapts the assistant to search, which expands only when a provider exists.
type expander struct {
	assist.System
}

func (e expander) SuggestRelatedTerms(ctx context.Context, term string) ([]string, error) {
	if !e.Available() {
		return nil, nil
	}
	return e.System.SuggestRelatedTerms(ctx, term)
}

func registerRoutes(mux *http.ServeMux, runtime *Runtime, domain *Domain) {
	documentsHandler := documents.NewHandler(domain.Documents, runtime.Logger, runtime.MaxUploadSize)
	searchHandler := search.NewHandler(domain.Documents, expander{domain.Assist}, runtime.Logger)
	assistHandler := assist.NewHandler(domain.Assist, domain.Documents, runtime.Logger)

	routes.Register(
		mux,
		documentsHandler.Routes(),
		searchHandler.Routes(),
		assistHandler.Routes(),
	)
}
