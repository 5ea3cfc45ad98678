package sale

import (
	"context"

	"smallbiz-crm/internal/domain"
)

// Repository persists sales and orders together with their line items.
type Repository interface {
	// Create stores the sale and its line items in one transaction.
	Create(ctx context.Context, s domain.Sale) (*domain.Sale, error)
	GetByID(ctx context.Context, id string) (*domain.Sale, error)
	// List returns sales of kind, or of every kind when kind is empty,
	// ordered by sold_at.
	List(ctx context.Context, kind string, f domain.Filter) ([]domain.Sale, error)
}
