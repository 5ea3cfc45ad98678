package customer

import (
	"context"

	"smallbiz-crm/internal/domain"
)

// Repository persists and fetches customers.
type Repository interface {
	Create(ctx context.Context, c domain.Customer) (*domain.Customer, error)
	Update(ctx context.Context, c domain.Customer) (*domain.Customer, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
	// FindByName matches the exact, case-sensitive name pair. With duplicates
	// the oldest customer wins.
	FindByName(ctx context.Context, firstName, lastName string) (*domain.Customer, error)
	List(ctx context.Context, f domain.Filter) ([]domain.Customer, error)
}
