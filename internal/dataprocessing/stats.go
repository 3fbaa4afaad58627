package dataprocessing

import (
	"context"
	"log/slog"

	"nabii/pkg/contracts/domain"
)

// Stats summarises an enriched dataset
type Stats struct {
	Total          int `json:"total"`
	Anonymized     int `json:"anonymized"`
	Disclosed      int `json:"disclosed"`
	ShowIndividual int `json:"show_individual"`
	WithTicket     int `json:"with_ticket"`
	WithSDG        int `json:"with_sdg"`
}

// ComputeStats counts the flags of every deal
func ComputeStats(deals []domain.Deal) Stats {
	stats := Stats{Total: len(deals)}
	for _, d := range deals {
		if d.Anonymized {
			stats.Anonymized++
		}
		if d.HasDisclosedAmount {
			stats.Disclosed++
		}
		if d.ShowIndividual() {
			stats.ShowIndividual++
		}
		if d.HasTicket() {
			stats.WithTicket++
		}
		if len(d.SDGTags) > 0 {
			stats.WithSDG++
		}
	}
	return stats
}

// Log writes the statistics at Info level
func (s Stats) Log(ctx context.Context, logger *slog.Logger) {
	logger.InfoContext(ctx, "Dataset statistics",
		slog.Int("total_records", s.Total),
		slog.Int("anonymized", s.Anonymized),
		slog.Int("disclosed_amounts", s.Disclosed),
		slog.Int("individually_displayable", s.ShowIndividual),
		slog.Int("with_ticket", s.WithTicket),
		slog.Int("with_sdg", s.WithSDG))
}
