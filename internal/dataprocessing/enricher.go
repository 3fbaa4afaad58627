package dataprocessing

import (
	"context"
	"log/slog"
	"strings"

	"nabii/pkg/contracts/domain"
)

// Enricher derives the computed fields of a deal
type Enricher struct {
	homeCountry string
	logger      *slog.Logger
}

// NewEnricher creates an Enricher classifying capital against homeCountry
func NewEnricher(homeCountry string, logger *slog.Logger) *Enricher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Enricher{
		homeCountry: strings.TrimSpace(homeCountry),
		logger:      logger.With(slog.String("component", "enricher")),
	}
}

// Enrich builds the enriched deal for one raw row
func (e *Enricher) Enrich(raw domain.RawDeal) domain.Deal {
	disclosed := IsDisclosed(raw.TicketRaw)

	return domain.Deal{
		Row:                   raw.Row,
		DealName:              raw.DealName,
		Investor:              raw.Investor,
		Segment:               raw.Segment,
		RawSector:             raw.RawSector,
		MappedSector:          NormalizeSector(raw.MappedSector, raw.RawSector),
		TicketSizeRaw:         raw.TicketRaw,
		TicketSizeUSDMillions: ticketValue(raw, disclosed),
		HasDisclosedAmount:    disclosed,
		Anonymized:            raw.Anonymized,
		SDGTags:               ExtractSDGs(raw.SDGText),
		CountryOfOrigin:       raw.Country,
		CapitalSource:         ClassifyCapitalSource(raw.Country, e.homeCountry),
		InstrumentType:        raw.InstrumentType,
		Year:                  raw.Year,
		Details:               raw.Details,
	}
}

// EnrichAll enriches every row, keeping input order
func (e *Enricher) EnrichAll(ctx context.Context, raws []domain.RawDeal) []domain.Deal {
	deals := make([]domain.Deal, 0, len(raws))
	for _, raw := range raws {
		deal := e.Enrich(raw)
		if deal.HasDisclosedAmount && !deal.HasTicket() {
			e.logger.DebugContext(ctx, "Disclosed ticket without a readable amount",
				slog.Int("row", raw.Row),
				slog.String("ticket", raw.TicketRaw))
		}
		deals = append(deals, deal)
	}
	return deals
}

// ticketValue prefers the numeric USD column and falls back to parsing the
// ticket text. Undisclosed amounts have no value.
func ticketValue(raw domain.RawDeal, disclosed bool) *float64 {
	if !disclosed {
		return nil
	}
	if v, ok := parseAmount(raw.TicketUSD); ok && v >= 0 {
		return domain.Float64Ptr(v)
	}
	if v, ok := ParseTicketSize(raw.TicketRaw); ok {
		return domain.Float64Ptr(v)
	}
	return nil
}
