package export

import (
	"context"
	"fmt"
	"strings"

	"smallbiz-crm/internal/domain"
	"smallbiz-crm/internal/exporter"
)

// Entities that can be exported.
const (
	Customers = "customers"
	Leads     = "leads"
	Sales     = "sales"
	Orders    = "orders"
	All       = "all"
)

// Source lists the filtered entities to export.
type Source interface {
	ListCustomers(ctx context.Context, f domain.Filter) ([]domain.Customer, error)
	ListLeads(ctx context.Context, f domain.Filter) ([]domain.Lead, error)
	ListSales(ctx context.Context, kind string, f domain.Filter) ([]domain.Sale, error)
}

// CustomRequest describes a filtered export with an optional field list.
type CustomRequest struct {
	Type   string
	Fields []string
	Filter domain.Filter
}

// Service turns filtered entity lists into export sheets.
type Service struct {
	src Source
}

func New(src Source) *Service {
	return &Service{src: src}
}

// Bulk builds the sheets for an entity, or one sheet per entity for "all".
// Empty results still produce sheets with only the header row.
func (s *Service) Bulk(ctx context.Context, entity string, f domain.Filter) ([]exporter.Sheet, error) {
	entity = strings.ToLower(strings.TrimSpace(entity))
	if entity == All {
		var sheets []exporter.Sheet
		for _, e := range []string{Customers, Leads, Sales, Orders} {
			sheet, err := s.sheet(ctx, e, f)
			if err != nil {
				return nil, err
			}
			sheets = append(sheets, sheet)
		}
		return sheets, nil
	}
	sheet, err := s.sheet(ctx, entity, f)
	if err != nil {
		return nil, err
	}
	return []exporter.Sheet{sheet}, nil
}

// Custom builds a single sheet restricted to the requested fields. It fails
// with ErrNotFound when no row matches.
func (s *Service) Custom(ctx context.Context, req CustomRequest) (exporter.Sheet, error) {
	entity := strings.ToLower(strings.TrimSpace(req.Type))
	if entity == All {
		return exporter.Sheet{}, fmt.Errorf("%w: custom export needs a single type", domain.ErrInvalidInput)
	}
	sheet, err := s.sheet(ctx, entity, req.Filter)
	if err != nil {
		return exporter.Sheet{}, err
	}
	if len(sheet.Rows) == 0 {
		return exporter.Sheet{}, fmt.Errorf("no %s match the filters: %w", entity, domain.ErrNotFound)
	}
	sheet.Columns = exporter.Select(sheet.Columns, req.Fields)
	if len(sheet.Columns) == 0 {
		return exporter.Sheet{}, fmt.Errorf("%w: none of the requested fields exist for %s", domain.ErrInvalidInput, entity)
	}
	return sheet, nil
}

func (s *Service) sheet(ctx context.Context, entity string, f domain.Filter) (exporter.Sheet, error) {
	switch entity {
	case Customers:
		list, err := s.src.ListCustomers(ctx, f)
		if err != nil {
			return exporter.Sheet{}, err
		}
		return exporter.Sheet{Name: "Clientes", Columns: exporter.CustomerColumns, Rows: exporter.CustomerRows(list)}, nil
	case Leads:
		list, err := s.src.ListLeads(ctx, f)
		if err != nil {
			return exporter.Sheet{}, err
		}
		return exporter.Sheet{Name: "Leads", Columns: exporter.LeadColumns, Rows: exporter.LeadRows(list)}, nil
	case Sales, Orders:
		kind, name := domain.KindSale, "Ventas"
		if entity == Orders {
			kind, name = domain.KindOrder, "Pedidos"
		}
		list, err := s.src.ListSales(ctx, kind, f)
		if err != nil {
			return exporter.Sheet{}, err
		}
		return exporter.Sheet{Name: name, Columns: exporter.SaleColumns, Rows: exporter.SaleRows(list)}, nil
	default:
		return exporter.Sheet{}, fmt.Errorf("%w: unknown export type %q", domain.ErrInvalidInput, entity)
	}
}
