package search

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/JaimeStill/flipbook/internal/documents"
	"github.com/JaimeStill/flipbook/pkg/handlers"
	"github.com/JaimeStill/flipbook/pkg/routes"
)

// Expander supplies related terms for a search term.
type Expander interface {
	SuggestRelatedTerms(ctx context.Context, term string) ([]string, error)
}

// Result is the response of a document search.
type Result struct {
	Terms []string `json:"terms"`
	Pages int      `json:"pages"`
	Hits  []Hit    `json:"hits"`
}

// Handler serves in-document search.
type Handler struct {
	docs     documents.System
	expander Expander
	logger   *slog.Logger
}

// NewHandler creates a search handler. expander may be nil.
func NewHandler(docs documents.System, expander Expander, logger *slog.Logger) *Handler {
	return &Handler{
		docs:     docs,
		expander: expander,
		logger:   logger.With("handler", "search"),
	}
}

// Routes returns the search route group.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:      "/documents",
		Description: "In-document search",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{id}/search", Handler: h.Search},
		},
	}
}

// Search matches ?q= terms (repeatable) against the document text. With
// expand=true the first term is widened with related terms; expansion failures
// fall back to the literal terms.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	id, err := documents.PathID(r)
	if err != nil {
		h.respondError(w, err)
		return
	}

	query := r.URL.Query()
	terms := Normalize(query["q"])
	if len(terms) == 0 {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, errors.New("q is required"))
		return
	}

	if expand, _ := strconv.ParseBool(query.Get("expand")); expand && h.expander != nil {
		related, err := h.expander.SuggestRelatedTerms(r.Context(), terms[0])
		if err != nil {
			h.logger.Warn("term expansion failed", "term", terms[0], "error", err)
		} else {
			terms = Normalize(append(terms, related...))
		}
	}

	doc, err := h.docs.GetByID(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}

	ix, err := NewIndex(doc.Data)
	if err != nil {
		h.respondError(w, err)
		return
	}

	hits, err := ix.Find(terms)
	if err != nil {
		h.respondError(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, Result{Terms: terms, Pages: ix.Pages(), Hits: hits})
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	if documents.IsAborted(err) {
		h.logger.Debug("request aborted", "error", err)
		return
	}
	status := documents.MapHTTPStatus(err)
	if errors.Is(err, ErrUnreadable) {
		status = http.StatusUnprocessableEntity
	}
	handlers.RespondError(w, h.logger, status, err)
}
