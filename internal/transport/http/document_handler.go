package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "nabii/internal/errors"
	"nabii/internal/services"
)

// DocumentServiceInterface is what the document handler needs from the service layer
type DocumentServiceInterface interface {
	List(ctx context.Context) ([]services.DocumentInfo, error)
	Get(ctx context.Context, name string) ([]byte, services.DocumentInfo, error)
}

// DocumentHandler serves the dashboard documents
type DocumentHandler struct {
	service DocumentServiceInterface
	logger  *slog.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(service DocumentServiceInterface, logger *slog.Logger) *DocumentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DocumentHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "documents")),
	}
}

// Routes returns the document routes
func (h *DocumentHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListDocuments)
	r.Get("/{name}", h.GetDocument)
	return r
}

// ListDocuments handles GET /api/documents
func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.service.List(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"documents": docs,
	})
}

// GetDocument handles GET /api/documents/{name}. The stored JSON is sent as is.
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	data, info, err := h.service.Get(r.Context(), name)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	if info.Modified != nil {
		w.Header().Set("Last-Modified", info.Modified.UTC().Format(http.TimeFormat))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to write document",
			slog.String("document", name),
			slog.String("error", err.Error()))
	}
}

func (h *DocumentHandler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := apierrors.FromError(err)
	if apiErr.StatusCode >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "Document request failed",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))
	}
	_ = render.Render(w, r, apierrors.NewErrorResponse(apiErr))
}
