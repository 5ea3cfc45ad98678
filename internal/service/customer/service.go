package customer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"smallbiz-crm/internal/domain"
	"smallbiz-crm/internal/logging"
	custrepo "smallbiz-crm/internal/repository/customer"
	"smallbiz-crm/internal/webhook"
)

// Notifier receives creation events. *webhook.Notifier satisfies it.
type Notifier interface {
	Notify(ctx context.Context, event string, data any)
}

// Service handles customer CRUD and conversion from won leads.
type Service struct {
	repo     custrepo.Repository
	notifier Notifier
	logger   *slog.Logger
}

// New creates a Service. notifier may be nil.
func New(repo custrepo.Repository, notifier Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Service{repo: repo, notifier: notifier, logger: logger}
}

func (s *Service) List(ctx context.Context, f domain.Filter) ([]domain.Customer, error) {
	return s.repo.List(ctx, f)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Customer, error) {
	return s.repo.GetByID(ctx, id)
}

// Create stores a new customer and announces it.
func (s *Service) Create(ctx context.Context, in domain.Contact) (*domain.Customer, error) {
	in = in.Trimmed()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	c, err := s.repo.Create(ctx, domain.Customer{Contact: in})
	if err != nil {
		return nil, err
	}
	s.logger.Info("customer created", "id", c.ID)
	s.notify(ctx, c)
	return c, nil
}

// Update replaces every contact field of the customer.
func (s *Service) Update(ctx context.Context, id string, in domain.Contact) (*domain.Customer, error) {
	in = in.Trimmed()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	existing.Contact = in
	return s.repo.Update(ctx, *existing)
}

// Delete removes a customer. Customers with sales cannot be deleted.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrInUse) {
			return fmt.Errorf("customer %s has sales: %w", id, err)
		}
		return err
	}
	s.logger.Info("customer deleted", "id", id)
	return nil
}

// EnsureByName returns the customer with the contact's exact name pair,
// creating it when missing. An existing customer only gains the fields it
// lacks. created reports whether a new customer was stored.
func (s *Service) EnsureByName(ctx context.Context, in domain.Contact) (c *domain.Customer, created bool, err error) {
	in = in.Trimmed()
	if err := in.Validate(); err != nil {
		return nil, false, err
	}
	existing, err := s.repo.FindByName(ctx, in.FirstName, in.LastName)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c, err = s.Create(ctx, in)
		return c, err == nil, err
	case err != nil:
		return nil, false, err
	}

	before := existing.Contact
	existing.Contact.FillEmpty(in)
	if existing.Contact == before {
		return existing, false, nil
	}
	c, err = s.repo.Update(ctx, *existing)
	return c, false, err
}

func (s *Service) notify(ctx context.Context, c *domain.Customer) {
	if s.notifier != nil {
		s.notifier.Notify(ctx, webhook.CustomerCreated, c)
	}
}
