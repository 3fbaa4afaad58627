package aggregate

import (
	"nabii/pkg/contracts/domain"
)

// InstrumentTimeline totals deals per (year, instrument) ordered by year then
// instrument. Deals missing either key are left out.
func InstrumentTimeline(deals []domain.Deal) []domain.InstrumentPoint {
	points := newGroups[yearKey]()
	for _, d := range deals {
		if !d.HasYear() || d.InstrumentType == "" {
			continue
		}
		points.add(yearKey{year: d.Year, label: d.InstrumentType}, d)
	}

	timeline := []domain.InstrumentPoint{}
	for _, k := range points.sorted(compareYearKeys) {
		t := points.get(k)
		timeline = append(timeline, domain.InstrumentPoint{
			Year:       k.year,
			Instrument: k.label,
			Value:      t.value(),
			Count:      t.count,
		})
	}
	return timeline
}
