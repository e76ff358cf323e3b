package assist

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/flipbook/internal/content"
	"github.com/JaimeStill/flipbook/internal/documents"
	"github.com/JaimeStill/flipbook/pkg/handlers"
	"github.com/JaimeStill/flipbook/pkg/routes"
)

// SuggestRequest is the body of a suggestion request.
type SuggestRequest struct {
	Term string `json:"term"`
}

// SuggestResponse lists terms related to the requested one.
type SuggestResponse struct {
	RelatedTerms []string `json:"related_terms"`
}

// SummaryResponse carries a document summary.
type SummaryResponse struct {
	Summary string `json:"summary"`
}

// Handler provides HTTP endpoints for the assistant.
type Handler struct {
	sys    System
	docs   documents.System
	logger *slog.Logger
}

// NewHandler creates an assistant handler reading documents from docs.
func NewHandler(sys System, docs documents.System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		docs:   docs,
		logger: logger.With("handler", "assist"),
	}
}

// Routes returns the assistant route group.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Description: "Language-model assistance",
		Children: []routes.Group{
			{
				Prefix: "/assist",
				Routes: []routes.Route{
					{Method: "POST", Pattern: "/suggestions", Handler: h.Suggest},
				},
			},
			{
				Prefix: "/documents",
				Routes: []routes.Route{
					{Method: "POST", Pattern: "/{id}/summary", Handler: h.Summarize},
				},
			},
		},
	}
}

func (h *Handler) Suggest(w http.ResponseWriter, r *http.Request) {
	var req SuggestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, fmt.Errorf("%w: %v", ErrInvalidInput, err))
		return
	}

	terms, err := h.sys.SuggestRelatedTerms(r.Context(), req.Term)
	if err != nil {
		h.respondError(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, SuggestResponse{RelatedTerms: terms})
}

func (h *Handler) Summarize(w http.ResponseWriter, r *http.Request) {
	id, err := documents.PathID(r)
	if err != nil {
		h.respondError(w, err)
		return
	}

	if !h.sys.Available() {
		h.respondError(w, ErrUnavailable)
		return
	}

	doc, err := h.docs.GetByID(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}

	uri, err := content.ToDataURI(r.Context(), doc.Data)
	if err != nil {
		h.respondError(w, err)
		return
	}

	summary, err := h.sys.SummarizeDocument(r.Context(), uri)
	if err != nil {
		h.respondError(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, SummaryResponse{Summary: summary})
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	if documents.IsAborted(err) {
		h.logger.Debug("request aborted", "error", err)
		return
	}

	status := MapHTTPStatus(err)
	if status == http.StatusInternalServerError {
		status = documents.MapHTTPStatus(err)
	}
	handlers.RespondError(w, h.logger, status, err)
}
