package aggregate

import (
	"cmp"
	"fmt"

	"nabii/internal/config"
	"nabii/pkg/contracts/domain"
)

// SDGAlignment attributes each deal's full ticket to every goal it is tagged
// with. A deal tagged twice with the same goal counts twice. The result is
// ordered by goal number.
func SDGAlignment(deals []domain.Deal) []domain.SDGTotal {
	goals := newGroups[int]()
	for _, d := range deals {
		for _, sdg := range d.SDGTags {
			goals.add(sdg, d)
		}
	}

	totals := []domain.SDGTotal{}
	for _, sdg := range goals.sorted(cmp.Compare[int]) {
		t := goals.get(sdg)
		totals = append(totals, domain.SDGTotal{
			SDG:             sdg,
			TotalInvestment: t.value(),
			DealCount:       t.count,
			Name:            SDGLabel(sdg),
		})
	}
	return totals
}

// SDGLabel formats the display name of a goal
func SDGLabel(sdg int) string {
	return fmt.Sprintf("SDG %d: %s", sdg, config.SDGName(sdg))
}
