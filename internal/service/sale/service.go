package sale

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"smallbiz-crm/internal/domain"
	"smallbiz-crm/internal/logging"
	salerepo "smallbiz-crm/internal/repository/sale"
	"smallbiz-crm/internal/webhook"
)

// CustomerGetter checks that the buyer exists.
type CustomerGetter interface {
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
}

// Notifier receives creation events.
type Notifier interface {
	Notify(ctx context.Context, event string, data any)
}

// LineItemInput is one item of a create request. UnitPrice accepts a JSON
// number or string such as "12.50".
type LineItemInput struct {
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	Brand     string          `json:"brand"`
}

// Input is the create payload for sales and orders. LineItemsText is the
// legacy one-item-per-line form, used only when LineItems is empty.
type Input struct {
	CustomerID    string          `json:"customerId"`
	Brand         string          `json:"brand"`
	Source        string          `json:"source"`
	Status        string          `json:"status"`
	PaymentMethod string          `json:"paymentMethod"`
	Notes         string          `json:"notes"`
	SoldAt        *time.Time      `json:"soldAt"`
	LineItems     []LineItemInput `json:"lineItems"`
	LineItemsText string          `json:"lineItemsText"`
}

// Service records sales and orders. Both kinds share storage and rules.
type Service struct {
	repo      salerepo.Repository
	customers CustomerGetter
	notifier  Notifier
	logger    *slog.Logger
}

func New(repo salerepo.Repository, customers CustomerGetter, notifier Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Service{repo: repo, customers: customers, notifier: notifier, logger: logger}
}

func (s *Service) List(ctx context.Context, kind string, f domain.Filter) ([]domain.Sale, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, kind, f)
}

// Get returns the sale only when it has the requested kind.
func (s *Service) Get(ctx context.Context, kind, id string) (*domain.Sale, error) {
	sale, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale.Kind != kind {
		return nil, domain.ErrNotFound
	}
	return sale, nil
}

func (s *Service) Create(ctx context.Context, kind string, in Input) (*domain.Sale, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	items, err := lineItems(in)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.CustomerID) == "" {
		return nil, fmt.Errorf("%w: customerId required", domain.ErrInvalidInput)
	}
	if _, err := s.customers.GetByID(ctx, in.CustomerID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: customer %s does not exist", domain.ErrInvalidInput, in.CustomerID)
		}
		return nil, err
	}

	sale := domain.Sale{
		Kind:          kind,
		CustomerID:    in.CustomerID,
		Brand:         strings.TrimSpace(in.Brand),
		Source:        strings.TrimSpace(in.Source),
		Status:        strings.TrimSpace(in.Status),
		PaymentMethod: strings.TrimSpace(in.PaymentMethod),
		Notes:         in.Notes,
		LineItems:     items,
	}
	if in.SoldAt != nil {
		sale.SoldAt = in.SoldAt.UTC()
	}
	sale.TotalCents = sale.ComputeTotal()

	created, err := s.repo.Create(ctx, sale)
	if err != nil {
		return nil, err
	}
	s.logger.Info("sale created", "id", created.ID, "kind", kind, "total_cents", created.TotalCents)
	if s.notifier != nil {
		event := webhook.SaleCreated
		if kind == domain.KindOrder {
			event = webhook.OrderCreated
		}
		s.notifier.Notify(ctx, event, created)
	}
	return created, nil
}

func checkKind(kind string) error {
	if kind != domain.KindSale && kind != domain.KindOrder {
		return fmt.Errorf("%w: kind %q", domain.ErrInvalidInput, kind)
	}
	return nil
}

func lineItems(in Input) ([]domain.LineItem, error) {
	if len(in.LineItems) == 0 {
		items := domain.DecodeLineItems(in.LineItemsText)
		if len(items) == 0 {
			return nil, fmt.Errorf("%w: at least one line item required", domain.ErrInvalidInput)
		}
		return items, nil
	}
	items := make([]domain.LineItem, 0, len(in.LineItems))
	for i, li := range in.LineItems {
		name := strings.TrimSpace(li.Name)
		switch {
		case name == "":
			return nil, fmt.Errorf("%w: line item %d: name required", domain.ErrInvalidInput, i+1)
		case li.Quantity <= 0:
			return nil, fmt.Errorf("%w: line item %d: quantity must be positive", domain.ErrInvalidInput, i+1)
		case li.UnitPrice.IsNegative():
			return nil, fmt.Errorf("%w: line item %d: negative price", domain.ErrInvalidInput, i+1)
		}
		items = append(items, domain.LineItem{
			Name:           name,
			Category:       strings.TrimSpace(li.Category),
			UnitPriceCents: domain.DecimalToCents(li.UnitPrice),
			Quantity:       li.Quantity,
			Brand:          strings.TrimSpace(li.Brand),
		})
	}
	return items, nil
}
