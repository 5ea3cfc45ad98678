package lead

import (
	"context"

	"smallbiz-crm/internal/domain"
)

// Repository persists and fetches leads.
type Repository interface {
	Create(ctx context.Context, l domain.Lead) (*domain.Lead, error)
	Update(ctx context.Context, l domain.Lead) (*domain.Lead, error)
	GetByID(ctx context.Context, id string) (*domain.Lead, error)
	FindByName(ctx context.Context, firstName, lastName string) (*domain.Lead, error)
	List(ctx context.Context, f domain.Filter) ([]domain.Lead, error)
}
