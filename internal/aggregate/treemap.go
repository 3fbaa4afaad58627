package aggregate

import (
	"nabii/pkg/contracts/domain"
)

// MarketSizeHierarchy builds the root -> segment -> investor -> sector tree.
// Children keep the order in which they first appear in deals.
func MarketSizeHierarchy(deals []domain.Deal, rootLabel string) domain.TreemapData {
	var segments []string
	investors := make(map[string][]string)
	sectors := make(map[pair][]string)
	leaves := newGroups[[3]string]()

	for _, d := range deals {
		if d.Segment == "" || d.Investor == "" {
			continue
		}

		if _, ok := investors[d.Segment]; !ok {
			segments = append(segments, d.Segment)
			investors[d.Segment] = nil
		}
		si := pair{first: d.Segment, second: d.Investor}
		if _, ok := sectors[si]; !ok {
			investors[d.Segment] = append(investors[d.Segment], d.Investor)
			sectors[si] = nil
		}
		leaf := [3]string{d.Segment, d.Investor, d.MappedSector}
		if leaves.get(leaf) == nil {
			sectors[si] = append(sectors[si], d.MappedSector)
		}
		leaves.add(leaf, d)
	}

	root := domain.TreemapData{Name: rootLabel, Children: []domain.TreemapSegment{}}
	for _, segment := range segments {
		node := domain.TreemapSegment{Name: segment, Children: []domain.TreemapInvestor{}}
		for _, investor := range investors[segment] {
			inv := domain.TreemapInvestor{Name: investor, Children: []domain.TreemapLeaf{}}
			for _, sector := range sectors[pair{first: segment, second: investor}] {
				t := leaves.get([3]string{segment, investor, sector})
				inv.Children = append(inv.Children, domain.TreemapLeaf{
					Name:      sector,
					Value:     t.value(),
					DealCount: t.count,
				})
			}
			node.Children = append(node.Children, inv)
		}
		root.Children = append(root.Children, node)
	}

	return root
}
