package sale

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"smallbiz-crm/internal/db"
	"smallbiz-crm/internal/domain"
	"smallbiz-crm/internal/logging"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool, logger *slog.Logger) Repository {
	if logger == nil {
		logger = logging.Discard()
	}
	return &postgresRepo{pool: pool, logger: logger.With("repo", "sale")}
}

const selectSales = `
SELECT s.id::text, s.kind, s.customer_id::text,
       trim(c.first_name || ' ' || c.last_name), c.province,
       s.brand, s.source, s.status, s.payment_method, s.notes,
       s.total_cents, s.sold_at, s.created_at
FROM sales s
JOIN customers c ON c.id = s.customer_id`

func (r *postgresRepo) Create(ctx context.Context, s domain.Sale) (*domain.Sale, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if s.Kind == "" {
		s.Kind = domain.KindSale
	}
	s.TotalCents = s.ComputeTotal()

	const insertSale = `
INSERT INTO sales (kind, customer_id, brand, source, status, payment_method, notes, total_cents, sold_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, COALESCE($9, now()))
RETURNING id::text, sold_at, created_at
`
	var soldAt any
	if !s.SoldAt.IsZero() {
		soldAt = s.SoldAt
	}
	err = tx.QueryRow(ctx, insertSale,
		s.Kind, s.CustomerID, s.Brand, s.Source, s.Status, s.PaymentMethod, s.Notes, s.TotalCents, soldAt,
	).Scan(&s.ID, &s.SoldAt, &s.CreatedAt)
	if err != nil {
		if err = db.Translate(err); !db.IsDomain(err) {
			r.logger.Error("insert sale failed", "error", err)
		}
		return nil, err
	}

	const insertItem = `
INSERT INTO sale_line_items (sale_id, position, name, category, unit_price_cents, quantity, brand)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id::text
`
	batch := &pgx.Batch{}
	for i, li := range s.LineItems {
		batch.Queue(insertItem, s.ID, i, li.Name, li.Category, li.UnitPriceCents, li.Quantity, li.Brand)
	}
	br := tx.SendBatch(ctx, batch)
	for i := range s.LineItems {
		if err := br.QueryRow().Scan(&s.LineItems[i].ID); err != nil {
			br.Close()
			r.logger.Error("insert line item failed", "sale_id", s.ID, "position", i, "error", err)
			return nil, fmt.Errorf("line item %d: %w", i+1, db.Translate(err))
		}
	}
	if err := br.Close(); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.Debug("created", "id", s.ID, "kind", s.Kind, "items", len(s.LineItems))
	return r.GetByID(ctx, s.ID)
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Sale, error) {
	s, err := scanSale(r.pool.QueryRow(ctx, selectSales+` WHERE s.id = $1`, id))
	if err != nil {
		if err = db.Translate(err); !db.IsDomain(err) {
			r.logger.Error("get failed", "id", id, "error", err)
		}
		return nil, err
	}
	sales := []domain.Sale{*s}
	if err := r.loadLineItems(ctx, sales); err != nil {
		return nil, err
	}
	return &sales[0], nil
}

func (r *postgresRepo) List(ctx context.Context, kind string, f domain.Filter) ([]domain.Sale, error) {
	var w db.Where
	w.AddIf(kind != "", "s.kind = ?", kind)
	w.AddIf(f.DateStart != nil, "s.sold_at >= ?", f.DateStart)
	w.AddIf(f.DateEnd != nil, "s.sold_at <= ?", f.DateEnd)
	w.AddIf(f.Brand != "", "s.brand = ?", f.Brand)
	w.AddIf(f.Province != "", "c.province = ?", f.Province)
	w.AddIf(f.City != "", "c.city = ?", f.City)
	w.AddIf(f.Source != "", "s.source = ?", f.Source)
	w.AddIf(f.Status != "", "s.status = ?", f.Status)

	rows, err := r.pool.Query(ctx, selectSales+w.SQL()+` ORDER BY s.sold_at, s.id`, w.Args()...)
	if err != nil {
		r.logger.Error("list failed", "error", err)
		return nil, err
	}
	defer rows.Close()

	result := []domain.Sale{}
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("list rows failed", "error", err)
		return nil, err
	}
	rows.Close()

	if err := r.loadLineItems(ctx, result); err != nil {
		return nil, err
	}
	return result, nil
}

// loadLineItems fills LineItems for every sale with a single query.
func (r *postgresRepo) loadLineItems(ctx context.Context, sales []domain.Sale) error {
	if len(sales) == 0 {
		return nil
	}
	ids := make([]string, len(sales))
	index := make(map[string]int, len(sales))
	for i := range sales {
		ids[i] = sales[i].ID
		index[sales[i].ID] = i
		sales[i].LineItems = []domain.LineItem{}
	}

	const q = `
SELECT sale_id::text, id::text, name, category, unit_price_cents, quantity, brand
FROM sale_line_items
WHERE sale_id::text = ANY($1::text[])
ORDER BY sale_id, position
`
	rows, err := r.pool.Query(ctx, q, ids)
	if err != nil {
		r.logger.Error("load line items failed", "error", err)
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var saleID string
		var li domain.LineItem
		if err := rows.Scan(&saleID, &li.ID, &li.Name, &li.Category, &li.UnitPriceCents, &li.Quantity, &li.Brand); err != nil {
			return err
		}
		if i, ok := index[saleID]; ok {
			sales[i].LineItems = append(sales[i].LineItems, li)
		}
	}
	return rows.Err()
}

func scanSale(row pgx.Row) (*domain.Sale, error) {
	var s domain.Sale
	err := row.Scan(
		&s.ID,
		&s.Kind,
		&s.CustomerID,
		&s.CustomerName,
		&s.Province,
		&s.Brand,
		&s.Source,
		&s.Status,
		&s.PaymentMethod,
		&s.Notes,
		&s.TotalCents,
		&s.SoldAt,
		&s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
