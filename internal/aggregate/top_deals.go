package aggregate

import (
	"cmp"
	"slices"

	"nabii/pkg/contracts/domain"
)

// TopDeals lists the n largest individually displayable deals by ticket size.
// Equal tickets keep input order. Anonymized and undisclosed deals never
// appear, and neither do deals without a known ticket.
func TopDeals(deals []domain.Deal, n int) []domain.TopDeal {
	if n <= 0 {
		return []domain.TopDeal{}
	}

	eligible := make([]domain.Deal, 0, len(deals))
	for _, d := range deals {
		if d.ShowIndividual() && d.HasTicket() {
			eligible = append(eligible, d)
		}
	}

	slices.SortStableFunc(eligible, func(a, b domain.Deal) int {
		return cmp.Compare(b.Ticket(), a.Ticket())
	})
	if len(eligible) > n {
		eligible = eligible[:n]
	}

	top := make([]domain.TopDeal, 0, len(eligible))
	for _, d := range eligible {
		sdgs := make([]int, len(d.SDGTags))
		copy(sdgs, d.SDGTags)
		top = append(top, domain.TopDeal{
			Name:       d.DealName,
			Investor:   d.Investor,
			Sector:     d.MappedSector,
			Year:       d.Year,
			TicketSize: d.Ticket(),
			Instrument: d.InstrumentType,
			SDGs:       sdgs,
			Details:    d.Details,
			Segment:    d.Segment,
		})
	}
	return top
}
