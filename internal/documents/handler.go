package documents

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/JaimeStill/flipbook/internal/content"
	"github.com/JaimeStill/flipbook/pkg/handlers"
	"github.com/JaimeStill/flipbook/pkg/routes"
)

// multipart framing allowance on top of the file itself
const formOverhead = 1 << 20

// Handler provides HTTP endpoints for document operations.
type Handler struct {
	sys           System
	logger        *slog.Logger
	maxUploadSize int64
}

// NewHandler creates a document handler with the specified upload limit.
func NewHandler(sys System, logger *slog.Logger, maxUploadSize int64) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "documents"),
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the document endpoint route group.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:      "/documents",
		Description: "Document library",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "POST", Pattern: "", Handler: h.Upload},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "GET", Pattern: "/{id}/file", Handler: h.File},
			{Method: "GET", Pattern: "/{id}/content", Handler: h.Content},
			{Method: "PATCH", Pattern: "/{id}", Handler: h.Update},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete},
		},
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, h.sys.List())
}

func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := PathID(r)
	if err != nil {
		h.respondError(w, err)
		return
	}

	doc, err := h.lookup(id)
	if err != nil {
		h.respondError(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, doc)
}

func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+formOverhead)

	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.respondError(w, ErrFileTooLarge)
			return
		}
		h.respondError(w, fmt.Errorf("%w: %v", ErrInvalidFile, err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		h.respondError(w, fmt.Errorf("%w: %v", ErrInvalidFile, err))
		return
	}
	defer file.Close()

	if header.Size > h.maxUploadSize {
		h.respondError(w, ErrFileTooLarge)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		h.respondError(w, fmt.Errorf("%w: %v", ErrInvalidFile, err))
		return
	}

	if !content.IsPDF(data) {
		h.respondError(w, fmt.Errorf("%w: %s is not a pdf", ErrInvalidFile, header.Filename))
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		name = displayName(header.Filename)
	}

	doc, err := h.sys.Create(r.Context(), CreateCommand{Name: name, Data: data})
	if err != nil {
		h.respondError(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, doc)
}

func (h *Handler) File(w http.ResponseWriter, r *http.Request) {
	id, err := PathID(r)
	if err != nil {
		h.respondError(w, err)
		return
	}

	doc, err := h.sys.GetByID(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", content.MediaTypePDF)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{
		"filename": doc.Name + ".pdf",
	}))
	http.ServeContent(w, r, "", doc.UpdatedAt, bytes.NewReader(doc.Data))
}

func (h *Handler) Content(w http.ResponseWriter, r *http.Request) {
	id, err := PathID(r)
	if err != nil {
		h.respondError(w, err)
		return
	}

	doc, err := h.sys.GetByID(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}

	uri, err := content.ToDataURI(r.Context(), doc.Data)
	if err != nil {
		h.respondError(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, map[string]string{"data_uri": uri})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := PathID(r)
	if err != nil {
		h.respondError(w, err)
		return
	}

	var cmd UpdateCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		h.respondError(w, fmt.Errorf("%w: %v", ErrInvalidDocument, err))
		return
	}

	if page := cmd.BookmarkedPage.Value(); page != nil {
		current, err := h.lookup(id)
		if err != nil {
			h.respondError(w, err)
			return
		}
		if current.PageCount > 0 && *page > current.PageCount {
			h.respondError(w, fmt.Errorf("%w: page %d of %d", ErrBookmarkOutOfRange, *page, current.PageCount))
			return
		}
	}

	doc, err := h.sys.Update(r.Context(), id, cmd)
	if err != nil {
		h.respondError(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, doc)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := PathID(r)
	if err != nil {
		h.respondError(w, err)
		return
	}

	if err := h.sys.Delete(r.Context(), id); err != nil {
		h.respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	if IsAborted(err) {
		h.logger.Debug("request aborted", "error", err)
		return
	}
	handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
}

// PathID parses the {id} path value.
func PathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%w: invalid id %q", ErrInvalidDocument, r.PathValue("id"))
	}
	return id, nil
}

func displayName(filename string) string {
	base := filepath.Base(filename)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if name == "" || name == "." {
		return "Untitled"
	}
	return name
}

// lookup reads a document from the mirror.
func (h *Handler) lookup(id int64) (*Document, error) {
	if !h.sys.List().Available {
		return nil, ErrStoreUnavailable
	}
	doc, ok := h.sys.Find(id)
	if !ok {
		return nil, ErrNotFound
	}
	return doc, nil
}
