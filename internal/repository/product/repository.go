package product

import (
	"context"

	"smallbiz-crm/internal/domain"
)

type Repository interface {
	// List returns parent and simple products; variations are listed per parent.
	List(ctx context.Context, f domain.Filter) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, p domain.Product) (*domain.Product, error)
	ListVariations(ctx context.Context, parentID string) ([]domain.Product, error)
}
