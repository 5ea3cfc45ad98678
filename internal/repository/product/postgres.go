package product

import (
	"context"
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

func NewPostgres(pool *pgxpool.Pool, logger *slog.Logger) Repository {
	if logger == nil {
		logger = logging.Discard()
	}
	return &postgresRepo{pool: pool, logger: logger.With("repo", "product")}
}

const selectProducts = `
SELECT id::text, COALESCE(sku, ''), name, price_cents, stock, brand, category, type,
       parent_id::text, attributes, created_at
FROM products`

func (r *postgresRepo) List(ctx context.Context, f domain.Filter) ([]domain.Product, error) {
	w := db.Where{}
	w.Add("type <> ?", domain.ProductVariation)
	w.AddIf(f.Brand != "", "brand = ?", f.Brand)
	return r.query(ctx, selectProducts+w.SQL()+` ORDER BY created_at DESC, id`, w.Args()...)
}

func (r *postgresRepo) ListVariations(ctx context.Context, parentID string) ([]domain.Product, error) {
	return r.query(ctx, selectProducts+` WHERE parent_id = $1 ORDER BY created_at, id`, parentID)
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, selectProducts+` WHERE id = $1`, id))
	if err != nil {
		if err = db.Translate(err); !db.IsDomain(err) {
			r.logger.Error("get failed", "id", id, "error", err)
		}
		return nil, err
	}
	return p, nil
}

func (r *postgresRepo) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (sku, name, price_cents, stock, brand, category, type, parent_id, attributes)
VALUES (NULLIF($1, ''), $2, $3, $4, $5, $6, $7, $8, COALESCE($9, '{}'::jsonb))
RETURNING id::text, COALESCE(sku, ''), name, price_cents, stock, brand, category, type,
          parent_id::text, attributes, created_at
`
	if p.Type == "" {
		p.Type = domain.ProductSimple
	}
	created, err := scanProduct(r.pool.QueryRow(ctx, q,
		p.SKU, p.Name, p.PriceCents, p.Stock, p.Brand, p.Category, p.Type, p.ParentID, p.Attributes,
	))
	if err != nil {
		if err = db.Translate(err); !db.IsDomain(err) {
			r.logger.Error("create failed", "sku", p.SKU, "error", err)
		}
		return nil, err
	}
	r.logger.Debug("created", "id", created.ID, "sku", created.SKU)
	return created, nil
}

func (r *postgresRepo) query(ctx context.Context, q string, args ...any) ([]domain.Product, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Error("query failed", "error", err)
		return nil, err
	}
	defer rows.Close()

	result := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("rows failed", "error", err)
		return nil, err
	}
	return result, nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.SKU, &p.Name, &p.PriceCents, &p.Stock, &p.Brand, &p.Category, &p.Type,
		&p.ParentID, &p.Attributes, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
