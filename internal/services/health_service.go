package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"nabii/pkg/contracts/domain"
)

// HealthService provides health check functionality
type HealthService struct {
	version   string
	documents *DocumentService
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewHealthService creates a health service reporting on documents
func NewHealthService(version string, documents *DocumentService, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   version,
		documents: documents,
		startTime: time.Now(),
		logger:    logger.With(slog.String("service", "health")),
	}
}

// HealthCheck returns overall health status. The server is healthy as soon
// as it runs; missing documents only degrade the data service entry.
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime_seconds": time.Since(hs.startTime).Seconds(),
			"go_version":     runtime.Version(),
			"goroutines":     runtime.NumGoroutine(),
		},
		Services: map[string]interface{}{
			"data": hs.checkDataHealth(ctx),
		},
	}

	hs.logger.DebugContext(ctx, "Health check completed", slog.String("status", status.Status))
	return status
}

func (hs *HealthService) checkDataHealth(ctx context.Context) ServiceHealth {
	if hs.documents == nil {
		return ServiceHealth{Status: "unknown", Message: "no output directory configured"}
	}

	available, err := hs.documents.Available(ctx)
	if err != nil {
		return ServiceHealth{Status: "error", Message: err.Error()}
	}

	total := len(domain.Documents())
	switch available {
	case total:
		return ServiceHealth{Status: "ready"}
	case 0:
		return ServiceHealth{Status: "empty", Message: "run the processor to generate the dashboard documents"}
	default:
		return ServiceHealth{Status: "partial", Message: "some dashboard documents are missing"}
	}
}
