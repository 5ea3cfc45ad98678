package report

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"smallbiz-crm/internal/domain"
)

// Data is the filtered collection a report runs over. Only the slices a
// report needs are loaded.
type Data struct {
	Customers []domain.Customer
	Leads     []domain.Lead
	Sales     []domain.Sale
}

type source int

const (
	fromCustomers source = iota
	fromLeads
	fromSales
)

type definition struct {
	source source
	build  func(Data) []Group
}

func saleRevenue(s domain.Sale) decimal.Decimal {
	if s.TotalCents == 0 {
		return domain.CentsToDecimal(s.ComputeTotal())
	}
	return domain.CentsToDecimal(s.TotalCents)
}

type soldItem struct {
	domain.LineItem
	saleBrand string
}

func soldItems(sales []domain.Sale) []soldItem {
	var out []soldItem
	for _, s := range sales {
		for _, li := range s.LineItems {
			out = append(out, soldItem{LineItem: li, saleBrand: s.Brand})
		}
	}
	return out
}

var definitions = map[string]definition{
	"customers-by-source": {fromCustomers, func(d Data) []Group {
		return Aggregate(d.Customers, Spec[domain.Customer]{Key: func(c domain.Customer) string { return c.Source }})
	}},
	"customers-by-province": {fromCustomers, func(d Data) []Group {
		return Aggregate(d.Customers, Spec[domain.Customer]{Key: func(c domain.Customer) string { return c.Province }})
	}},
	"customers-by-brand": {fromCustomers, func(d Data) []Group {
		return Aggregate(d.Customers, Spec[domain.Customer]{Key: func(c domain.Customer) string { return c.Brand }})
	}},
	"leads-by-status": {fromLeads, func(d Data) []Group {
		return Aggregate(d.Leads, Spec[domain.Lead]{Key: func(l domain.Lead) string { return l.Status }})
	}},
	"leads-by-source": {fromLeads, func(d Data) []Group {
		return Aggregate(d.Leads, Spec[domain.Lead]{Key: func(l domain.Lead) string { return l.Source }})
	}},
	"sales-by-brand": {fromSales, func(d Data) []Group {
		return Aggregate(d.Sales, Spec[domain.Sale]{
			Key:     func(s domain.Sale) string { return s.Brand },
			Revenue: saleRevenue,
			Order:   ByRevenue,
		})
	}},
	"sales-by-source": {fromSales, func(d Data) []Group {
		return Aggregate(d.Sales, Spec[domain.Sale]{
			Key:     func(s domain.Sale) string { return s.Source },
			Revenue: saleRevenue,
			Order:   ByRevenue,
		})
	}},
	"sales-by-province": {fromSales, func(d Data) []Group {
		return Aggregate(d.Sales, Spec[domain.Sale]{
			Key:     func(s domain.Sale) string { return s.Province },
			Revenue: saleRevenue,
			Order:   ByRevenue,
		})
	}},
	"sales-by-month": {fromSales, func(d Data) []Group {
		return Aggregate(d.Sales, Spec[domain.Sale]{
			Key: func(s domain.Sale) string {
				if s.SoldAt.IsZero() {
					return ""
				}
				return s.SoldAt.UTC().Format("2006-01")
			},
			Revenue: saleRevenue,
			Order:   ByKey,
		})
	}},
	"top-products": {fromSales, func(d Data) []Group {
		return Aggregate(soldItems(d.Sales), Spec[soldItem]{
			Key:     func(i soldItem) string { return i.Name },
			Count:   func(i soldItem) int { return i.Quantity },
			Revenue: func(i soldItem) decimal.Decimal { return domain.CentsToDecimal(i.TotalCents()) },
			Order:   ByRevenue,
		})
	}},
	"top-categories": {fromSales, func(d Data) []Group {
		return Aggregate(soldItems(d.Sales), Spec[soldItem]{
			Key:     func(i soldItem) string { return i.Category },
			Count:   func(i soldItem) int { return i.Quantity },
			Revenue: func(i soldItem) decimal.Decimal { return domain.CentsToDecimal(i.TotalCents()) },
			Order:   ByRevenue,
		})
	}},
}

// Names lists the available reports in alphabetical order.
func Names() []string {
	names := make([]string, 0, len(definitions))
	for n := range definitions {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Build runs the named report over already-loaded data.
func Build(name string, d Data) ([]Group, error) {
	def, ok := definitions[name]
	if !ok {
		return nil, fmt.Errorf("report %q: %w", name, domain.ErrNotFound)
	}
	return def.build(d), nil
}

// Loader fetches the filtered collections reports run over.
type Loader interface {
	ListCustomers(ctx context.Context, f domain.Filter) ([]domain.Customer, error)
	ListLeads(ctx context.Context, f domain.Filter) ([]domain.Lead, error)
	ListSales(ctx context.Context, kind string, f domain.Filter) ([]domain.Sale, error)
}

// Result is the response body of a report request.
type Result struct {
	Report string  `json:"report"`
	Groups []Group `json:"groups"`
}

// Service loads only the collection a report needs and aggregates it.
type Service struct {
	loader Loader
}

func NewService(loader Loader) *Service {
	return &Service{loader: loader}
}

// Run recomputes the named report from the current data.
func (s *Service) Run(ctx context.Context, name string, f domain.Filter) (Result, error) {
	def, ok := definitions[name]
	if !ok {
		return Result{}, fmt.Errorf("report %q: %w", name, domain.ErrNotFound)
	}
	var (
		d   Data
		err error
	)
	switch def.source {
	case fromCustomers:
		d.Customers, err = s.loader.ListCustomers(ctx, f)
	case fromLeads:
		d.Leads, err = s.loader.ListLeads(ctx, f)
	case fromSales:
		d.Sales, err = s.loader.ListSales(ctx, domain.KindSale, f)
	}
	if err != nil {
		return Result{}, fmt.Errorf("load %s: %w", name, err)
	}
	return Result{Report: name, Groups: def.build(d)}, nil
}
