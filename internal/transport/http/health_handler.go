package http

import (
	"context"
	"net/http"

	"github.com/go-chi/render"

	"nabii/internal/services"
)

// HealthServiceInterface is what the health handler needs from the service layer
type HealthServiceInterface interface {
	HealthCheck(ctx context.Context) services.HealthStatus
}

// HealthHandler handles health-related HTTP requests
type HealthHandler struct {
	service HealthServiceInterface
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(service HealthServiceInterface) *HealthHandler {
	return &HealthHandler{service: service}
}

// HealthCheck handles GET /api/health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.HealthCheck(r.Context()))
}
