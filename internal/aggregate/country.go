package aggregate

import (
	"cmp"
	"slices"

	"nabii/pkg/contracts/domain"
)

// CountryTotals totals deals per country of origin, largest first. Countries
// with equal totals stay in alphabetical order.
func CountryTotals(deals []domain.Deal) []domain.CountryTotal {
	countries := newGroups[string]()
	for _, d := range deals {
		if d.CountryOfOrigin == "" {
			continue
		}
		countries.add(d.CountryOfOrigin, d)
	}

	totals := []domain.CountryTotal{}
	for _, country := range countries.sorted(cmp.Compare[string]) {
		t := countries.get(country)
		totals = append(totals, domain.CountryTotal{
			Country:         country,
			TotalInvestment: t.value(),
			DealCount:       t.count,
		})
	}

	slices.SortStableFunc(totals, func(a, b domain.CountryTotal) int {
		return cmp.Compare(b.TotalInvestment, a.TotalInvestment)
	})
	return totals
}
