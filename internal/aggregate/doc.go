// Package aggregate derives the dashboard documents from enriched deals.
//
// Every aggregator is a pure function of its input: it never mutates the deals,
// its output depends only on their content and order, and running it twice
// yields identical documents. Ticket values are summed with shopspring/decimal
// so totals do not depend on summation order. Deals without a known ticket
// count towards deal counts but add nothing to totals.
//
// Groups are emitted in sorted key order (years ascending, strings
// lexicographic) except for the market size hierarchy, which keeps the order
// in which segments, investors and sectors first appear.
package aggregate
