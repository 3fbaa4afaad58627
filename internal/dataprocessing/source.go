package dataprocessing

import (
	"context"

	"nabii/pkg/contracts/domain"
)

// RowSource yields the raw rows of a deal dataset
type RowSource interface {
	Rows(ctx context.Context) ([]domain.RawDeal, error)
}

// SliceSource serves rows that are already in memory
type SliceSource []domain.RawDeal

// Rows implements RowSource
func (s SliceSource) Rows(ctx context.Context) ([]domain.RawDeal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows := make([]domain.RawDeal, len(s))
	copy(rows, s)
	return rows, nil
}
