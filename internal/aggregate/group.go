package aggregate

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"

	"nabii/pkg/contracts/domain"
)

// tally accumulates the ticket total and deal count of one group
type tally struct {
	total decimal.Decimal
	count int
}

func (t *tally) add(d domain.Deal) {
	t.count++
	if d.TicketSizeUSDMillions != nil {
		t.total = t.total.Add(decimal.NewFromFloat(*d.TicketSizeUSDMillions))
	}
}

func (t *tally) value() float64 {
	f, _ := t.total.Float64()
	return f
}

// groups tallies deals by key and remembers first-appearance order
type groups[K comparable] struct {
	order   []K
	tallies map[K]*tally
}

func newGroups[K comparable]() *groups[K] {
	return &groups[K]{tallies: make(map[K]*tally)}
}

func (g *groups[K]) add(key K, d domain.Deal) {
	t, ok := g.tallies[key]
	if !ok {
		t = &tally{}
		g.tallies[key] = t
		g.order = append(g.order, key)
	}
	t.add(d)
}

func (g *groups[K]) get(key K) *tally {
	return g.tallies[key]
}

// sorted returns the keys ordered by compare
func (g *groups[K]) sorted(compare func(a, b K) int) []K {
	keys := slices.Clone(g.order)
	slices.SortFunc(keys, compare)
	return keys
}

// pair is a two-level grouping key
type pair struct {
	first  string
	second string
}

func comparePairs(a, b pair) int {
	if c := cmp.Compare(a.first, b.first); c != 0 {
		return c
	}
	return cmp.Compare(a.second, b.second)
}

// yearKey groups by year and a label
type yearKey struct {
	year  int
	label string
}

func compareYearKeys(a, b yearKey) int {
	if c := cmp.Compare(a.year, b.year); c != 0 {
		return c
	}
	return cmp.Compare(a.label, b.label)
}
