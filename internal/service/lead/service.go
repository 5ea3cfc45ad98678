package lead

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"smallbiz-crm/internal/domain"
	"smallbiz-crm/internal/logging"
	leadrepo "smallbiz-crm/internal/repository/lead"
)

// CustomerEnsurer creates the customer a won lead converts into.
// The customer service satisfies it.
type CustomerEnsurer interface {
	EnsureByName(ctx context.Context, in domain.Contact) (*domain.Customer, bool, error)
}

// Input is the create/update payload for a lead.
type Input struct {
	domain.Contact
	Status         string     `json:"status"`
	LastContactAt  *time.Time `json:"lastContactAt"`
	NextFollowUpAt *time.Time `json:"nextFollowUpAt"`
}

// Service handles lead CRUD and conversion of won leads.
type Service struct {
	repo      leadrepo.Repository
	customers CustomerEnsurer
	logger    *slog.Logger
}

func New(repo leadrepo.Repository, customers CustomerEnsurer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Service{repo: repo, customers: customers, logger: logger}
}

func (s *Service) List(ctx context.Context, f domain.Filter) ([]domain.Lead, error) {
	if f.Status != "" {
		status, ok := domain.NormalizeLeadStatus(f.Status)
		if !ok {
			return nil, fmt.Errorf("%w: unknown lead status %q", domain.ErrInvalidInput, f.Status)
		}
		f.Status = status
	}
	return s.repo.List(ctx, f)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Lead, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, in Input) (*domain.Lead, error) {
	l, err := build(domain.Lead{}, in)
	if err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, l)
	if err != nil {
		return nil, err
	}
	s.logger.Info("lead created", "id", created.ID, "status", created.Status)
	if created.Status == domain.LeadStatusWon {
		s.convert(ctx, created)
	}
	return created, nil
}

// Update replaces the lead's fields. Moving a lead to won makes sure a
// customer with the same name exists.
func (s *Service) Update(ctx context.Context, id string, in Input) (*domain.Lead, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := existing.Status
	l, err := build(*existing, in)
	if err != nil {
		return nil, err
	}
	updated, err := s.repo.Update(ctx, l)
	if err != nil {
		return nil, err
	}
	if updated.Status == domain.LeadStatusWon && previous != domain.LeadStatusWon {
		s.convert(ctx, updated)
	}
	return updated, nil
}

// convert ensures the customer for a won lead. The lead is already stored,
// so a failure is logged and the lead stays won without a customer.
func (s *Service) convert(ctx context.Context, l *domain.Lead) {
	if s.customers == nil {
		return
	}
	c, created, err := s.customers.EnsureByName(ctx, l.Contact)
	if err != nil {
		s.logger.Error("lead conversion failed", "lead_id", l.ID, "error", err)
		return
	}
	s.logger.Info("lead converted", "lead_id", l.ID, "customer_id", c.ID, "customer_created", created)
}

func build(base domain.Lead, in Input) (domain.Lead, error) {
	contact := in.Contact.Trimmed()
	if err := contact.Validate(); err != nil {
		return domain.Lead{}, err
	}
	status, ok := domain.NormalizeLeadStatus(in.Status)
	if !ok {
		return domain.Lead{}, fmt.Errorf("%w: unknown lead status %q", domain.ErrInvalidInput, in.Status)
	}
	base.Contact = contact
	base.Status = status
	base.LastContactAt = in.LastContactAt
	base.NextFollowUpAt = in.NextFollowUpAt
	return base, nil
}
