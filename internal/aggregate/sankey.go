package aggregate

import (
	"fmt"

	"nabii/pkg/contracts/domain"
)

// CapitalFlow builds the segment -> sector flow diagram. Nodes list every
// source segment in flow order followed by the sectors not already present.
func CapitalFlow(deals []domain.Deal) domain.SankeyData {
	flows := newGroups[pair]()
	for _, d := range deals {
		if d.Segment == "" {
			continue
		}
		flows.add(pair{first: d.Segment, second: d.MappedSector}, d)
	}
	keys := flows.sorted(comparePairs)

	index := make(map[string]int)
	nodes := []domain.SankeyNode{}
	addNode := func(name string) {
		if _, ok := index[name]; ok {
			return
		}
		index[name] = len(nodes)
		nodes = append(nodes, domain.SankeyNode{Name: name})
	}
	for _, k := range keys {
		addNode(k.first)
	}
	for _, k := range keys {
		addNode(k.second)
	}

	links := make([]domain.SankeyLink, 0, len(keys))
	for _, k := range keys {
		t := flows.get(k)
		links = append(links, domain.SankeyLink{
			Source:    index[k.first],
			Target:    index[k.second],
			Value:     t.value(),
			DealCount: t.count,
		})
	}

	return domain.SankeyData{Nodes: nodes, Links: links}
}

// ValidateSankey checks that every link references an existing node
func ValidateSankey(data domain.SankeyData) error {
	for i, link := range data.Links {
		if link.Source < 0 || link.Source >= len(data.Nodes) {
			return fmt.Errorf("link %d: source index %d out of range", i, link.Source)
		}
		if link.Target < 0 || link.Target >= len(data.Nodes) {
			return fmt.Errorf("link %d: target index %d out of range", i, link.Target)
		}
	}
	return nil
}
