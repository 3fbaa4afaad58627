package aggregate

import (
	"cmp"

	"nabii/pkg/contracts/domain"
)

// CapitalSourceComparison totals deals per capital source, and per source and
// segment.
func CapitalSourceComparison(deals []domain.Deal) domain.CapitalSourceData {
	sources := newGroups[domain.CapitalSource]()
	bySegment := newGroups[pair]()
	for _, d := range deals {
		sources.add(d.CapitalSource, d)
		if d.Segment != "" {
			bySegment.add(pair{first: string(d.CapitalSource), second: d.Segment}, d)
		}
	}

	data := domain.CapitalSourceData{
		Summary: []domain.CapitalSourceSummary{},
		ByType:  []domain.CapitalSourceByType{},
	}
	for _, source := range sources.sorted(cmp.Compare[domain.CapitalSource]) {
		t := sources.get(source)
		data.Summary = append(data.Summary, domain.CapitalSourceSummary{
			Source:     source,
			TotalValue: t.value(),
			DealCount:  t.count,
		})
	}
	for _, k := range bySegment.sorted(comparePairs) {
		data.ByType = append(data.ByType, domain.CapitalSourceByType{
			Source:    domain.CapitalSource(k.first),
			Segment:   k.second,
			TicketSum: bySegment.get(k).value(),
		})
	}
	return data
}
