// Package shared holds code used by several packages that belongs to none
// of them.
//
// testutil carries the test helpers: a slog handler that captures records
// for assertions, and builders for deal workbooks.
package shared
