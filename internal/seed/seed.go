package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"smallbiz-crm/internal/domain"
	"smallbiz-crm/internal/importer"
	"smallbiz-crm/internal/repository/customer"
	"smallbiz-crm/internal/repository/lead"
	"smallbiz-crm/internal/repository/sale"
	customersvc "smallbiz-crm/internal/service/customer"
)

type productSeed struct {
	SKU        string
	Name       string
	PriceCents int64
	Stock      int
	Brand      string
	Category   string
	Type       string
	ParentSKU  string
	Attributes string
}

type saleSeed struct {
	// Key marks the sale in its notes so a rerun can skip it.
	Key       string
	Kind      string
	FirstName string
	LastName  string
	Brand     string
	Source    string
	Payment   string
	SoldAt    time.Time
	Items     []domain.LineItem
}

var customerRecords = []importer.Record{
	{"firstName": "Ana", "lastName": "Díaz", "email": "ana@example.com", "phone": "+59899123456",
		"city": "Montevideo", "province": "Montevideo", "source": "Instagram", "brand": "Kala"},
	{"firstName": "Bruno", "lastName": "Pérez", "email": "bruno@example.com", "phone": "+59898111222",
		"city": "Salto", "province": "Salto", "source": "Feria", "brand": "Mora"},
	{"firstName": "Carla", "lastName": "Suárez", "city": "Maldonado", "province": "Maldonado",
		"source": "Recomendación", "brand": "Kala"},
}

var leadRecords = []importer.Record{
	{"firstName": "Diego", "lastName": "Rosas", "email": "diego@example.com", "source": "Instagram",
		"brand": "Mora", "status": domain.LeadStatusContacted},
	{"firstName": "Elena", "lastName": "Vidal", "source": "Web", "brand": "Kala",
		"status": domain.LeadStatusProposal},
}

var products = []productSeed{
	{SKU: "KALA-VELA-01", Name: "Vela de soja", PriceCents: 45000, Stock: 20, Brand: "Kala", Category: "Velas", Type: domain.ProductSimple},
	{SKU: "MORA-REM", Name: "Remera básica", PriceCents: 99000, Brand: "Mora", Category: "Remeras", Type: domain.ProductVariable},
	{SKU: "MORA-REM-M-NEG", Name: "Remera básica M negra", PriceCents: 99000, Stock: 5, Brand: "Mora", Category: "Remeras",
		Type: domain.ProductVariation, ParentSKU: "MORA-REM", Attributes: `{"attribute_pa_size":"M","attribute_pa_color":"negro"}`},
	{SKU: "MORA-REM-L-BLA", Name: "Remera básica L blanca", PriceCents: 99000, Stock: 3, Brand: "Mora", Category: "Remeras",
		Type: domain.ProductVariation, ParentSKU: "MORA-REM", Attributes: `{"talla":"L","color":"blanco"}`},
}

var sales = []saleSeed{
	{Key: "demo-sale-1", Kind: domain.KindSale, FirstName: "Ana", LastName: "Díaz", Brand: "Kala", Source: "Instagram",
		Payment: "Transferencia", SoldAt: time.Date(2025, 1, 12, 15, 0, 0, 0, time.UTC),
		Items: []domain.LineItem{{Name: "Vela de soja", Category: "Velas", UnitPriceCents: 45000, Quantity: 2, Brand: "Kala"}}},
	{Key: "demo-sale-2", Kind: domain.KindSale, FirstName: "Bruno", LastName: "Pérez", Brand: "Mora", Source: "Feria",
		Payment: "Efectivo", SoldAt: time.Date(2025, 2, 3, 11, 30, 0, 0, time.UTC),
		Items: []domain.LineItem{
			{Name: "Remera básica M negra", Category: "Remeras", UnitPriceCents: 99000, Quantity: 1, Brand: "Mora"},
			{Name: "Vela de soja", Category: "Velas", UnitPriceCents: 45000, Quantity: 1, Brand: "Kala"},
		}},
	{Key: "demo-order-1", Kind: domain.KindOrder, FirstName: "Carla", LastName: "Suárez", Brand: "Kala", Source: "Recomendación",
		Payment: "Mercado Pago", SoldAt: time.Date(2025, 2, 20, 9, 0, 0, 0, time.UTC),
		Items: []domain.LineItem{{Name: "Vela de soja", Category: "Velas", UnitPriceCents: 45000, Quantity: 3, Brand: "Kala"}}},
}

// Apply inserts demo data for manual testing. Reruns update instead of
// duplicating: contacts match by name, products by SKU and sales by key.
func Apply(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) error {
	customers := customer.NewPostgres(pool, logger)
	imp := importer.New(customers, lead.NewPostgres(pool, logger), customersvc.New(customers, nil, logger), logger)

	for entity, records := range map[importer.Entity][]importer.Record{
		importer.EntityCustomers: customerRecords,
		importer.EntityLeads:     leadRecords,
	} {
		if sum := imp.Import(ctx, entity, records); len(sum.Errors) > 0 {
			return fmt.Errorf("seed %s: %s", entity, sum.Errors[0])
		}
	}

	for _, p := range products {
		if err := upsertProduct(ctx, pool, p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.SKU, err)
		}
	}

	saleRepo := sale.NewPostgres(pool, logger)
	for _, s := range sales {
		if err := ensureSale(ctx, pool, customers, saleRepo, s); err != nil {
			return fmt.Errorf("seed sale %s: %w", s.Key, err)
		}
	}
	return nil
}

func upsertProduct(ctx context.Context, pool *pgxpool.Pool, p productSeed) error {
	const q = `
INSERT INTO products (sku, name, price_cents, stock, brand, category, type, parent_id, attributes)
VALUES ($1, $2, $3, $4, $5, $6, $7,
        (SELECT id FROM products WHERE sku = NULLIF($8, '')),
        COALESCE(NULLIF($9, '')::jsonb, '{}'::jsonb))
ON CONFLICT (sku) DO UPDATE
SET name = EXCLUDED.name,
    price_cents = EXCLUDED.price_cents,
    stock = EXCLUDED.stock,
    brand = EXCLUDED.brand,
    category = EXCLUDED.category,
    type = EXCLUDED.type,
    parent_id = EXCLUDED.parent_id,
    attributes = EXCLUDED.attributes
`
	_, err := pool.Exec(ctx, q, p.SKU, p.Name, p.PriceCents, p.Stock, p.Brand, p.Category, p.Type, p.ParentSKU, p.Attributes)
	return err
}

func ensureSale(ctx context.Context, pool *pgxpool.Pool, customers customer.Repository, repo sale.Repository, s saleSeed) error {
	var exists bool
	if err := pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM sales WHERE notes = $1)`, s.Key).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return nil
	}
	c, err := customers.FindByName(ctx, s.FirstName, s.LastName)
	if err != nil {
		return fmt.Errorf("find customer %s %s: %w", s.FirstName, s.LastName, err)
	}
	_, err = repo.Create(ctx, domain.Sale{
		Kind:          s.Kind,
		CustomerID:    c.ID,
		Brand:         s.Brand,
		Source:        s.Source,
		Status:        "Entregado",
		PaymentMethod: s.Payment,
		Notes:         s.Key,
		LineItems:     append([]domain.LineItem(nil), s.Items...),
		SoldAt:        s.SoldAt,
	})
	return err
}
