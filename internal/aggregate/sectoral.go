package aggregate

import (
	"nabii/pkg/contracts/domain"
)

// SectoralBreakdown totals deals per year and sector. Deals without a year
// are left out.
func SectoralBreakdown(deals []domain.Deal) domain.SectoralBreakdown {
	cells := newGroups[yearKey]()
	for _, d := range deals {
		if !d.HasYear() {
			continue
		}
		cells.add(yearKey{year: d.Year, label: d.MappedSector}, d)
	}

	breakdown := make(domain.SectoralBreakdown)
	for _, k := range cells.sorted(compareYearKeys) {
		t := cells.get(k)
		entry := breakdown[k.year]
		entry.Sectors = append(entry.Sectors, k.label)
		entry.Values = append(entry.Values, t.value())
		entry.Counts = append(entry.Counts, t.count)
		breakdown[k.year] = entry
	}
	return breakdown
}
