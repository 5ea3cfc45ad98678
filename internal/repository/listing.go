// Package repository holds the per-entity Postgres repositories in its
// subpackages and a read-side view combining them.
package repository

import (
	"context"

	"smallbiz-crm/internal/domain"
	"smallbiz-crm/internal/repository/customer"
	"smallbiz-crm/internal/repository/lead"
	"smallbiz-crm/internal/repository/sale"
)

// Listing lists filtered customers, leads and sales for exports and reports.
type Listing struct {
	Customers customer.Repository
	Leads     lead.Repository
	Sales     sale.Repository
}

func (l Listing) ListCustomers(ctx context.Context, f domain.Filter) ([]domain.Customer, error) {
	return l.Customers.List(ctx, f)
}

func (l Listing) ListLeads(ctx context.Context, f domain.Filter) ([]domain.Lead, error) {
	return l.Leads.List(ctx, f)
}

func (l Listing) ListSales(ctx context.Context, kind string, f domain.Filter) ([]domain.Sale, error) {
	return l.Sales.List(ctx, kind, f)
}
