package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"smallbiz-crm/internal/domain"
	productrepo "smallbiz-crm/internal/repository/product"
)

type Service struct {
	repo productrepo.Repository
}

func New(repo productrepo.Repository) *Service {
	return &Service{repo: repo}
}

// Input is the create payload for a product.
type Input struct {
	SKU        string          `json:"sku"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Stock      int             `json:"stock"`
	Brand      string          `json:"brand"`
	Category   string          `json:"category"`
	Type       string          `json:"type"`
	ParentID   string          `json:"parentId"`
	Attributes map[string]any  `json:"attributes"`
}

// Variation is a child product with its parsed variant dimensions.
type Variation struct {
	domain.Product
	Variant domain.VariantAttributes `json:"variant"`
}

func (s *Service) List(ctx context.Context, f domain.Filter) ([]domain.Product, error) {
	return s.repo.List(ctx, f)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, in Input) (*domain.Product, error) {
	p := domain.Product{
		SKU:        strings.TrimSpace(in.SKU),
		Name:       strings.TrimSpace(in.Name),
		PriceCents: domain.DecimalToCents(in.Price),
		Stock:      in.Stock,
		Brand:      strings.TrimSpace(in.Brand),
		Category:   strings.TrimSpace(in.Category),
		Type:       strings.ToLower(strings.TrimSpace(in.Type)),
		Attributes: in.Attributes,
	}
	if p.Type == "" {
		p.Type = domain.ProductSimple
	}
	switch {
	case p.Name == "":
		return nil, fmt.Errorf("%w: name required", domain.ErrInvalidInput)
	case in.Price.IsNegative():
		return nil, fmt.Errorf("%w: negative price", domain.ErrInvalidInput)
	case p.Stock < 0:
		return nil, fmt.Errorf("%w: negative stock", domain.ErrInvalidInput)
	}

	switch p.Type {
	case domain.ProductSimple, domain.ProductVariable:
		if in.ParentID != "" {
			return nil, fmt.Errorf("%w: only variations have a parent", domain.ErrInvalidInput)
		}
	case domain.ProductVariation:
		parent, err := s.repo.GetByID(ctx, in.ParentID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("%w: parent %q not found", domain.ErrInvalidInput, in.ParentID)
			}
			return nil, err
		}
		if parent.Type != domain.ProductVariable {
			return nil, fmt.Errorf("%w: parent %s is not a variable product", domain.ErrInvalidInput, parent.ID)
		}
		p.ParentID = &parent.ID
		if p.Brand == "" {
			p.Brand = parent.Brand
		}
		if p.Category == "" {
			p.Category = parent.Category
		}
	default:
		return nil, fmt.Errorf("%w: product type %q", domain.ErrInvalidInput, in.Type)
	}
	return s.repo.Create(ctx, p)
}

// Variations lists the children of a variable product.
func (s *Service) Variations(ctx context.Context, id string) ([]Variation, error) {
	parent, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	children, err := s.repo.ListVariations(ctx, parent.ID)
	if err != nil {
		return nil, err
	}
	out := make([]Variation, 0, len(children))
	for _, c := range children {
		out = append(out, Variation{Product: c, Variant: c.VariantAttributes()})
	}
	return out, nil
}
