package customer

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

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool, logger *slog.Logger) Repository {
	if logger == nil {
		logger = logging.Discard()
	}
	return &postgresRepo{pool: pool, logger: logger.With("repo", "customer")}
}

const selectColumns = `
SELECT id::text, first_name, last_name, email, phone, street, city, province,
       delivery_instructions, source, brand, notes, created_at, updated_at
FROM customers`

func (r *postgresRepo) Create(ctx context.Context, c domain.Customer) (*domain.Customer, error) {
	const q = `
INSERT INTO customers (
    first_name, last_name, email, phone, street, city, province,
    delivery_instructions, source, brand, notes
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING id::text, first_name, last_name, email, phone, street, city, province,
          delivery_instructions, source, brand, notes, created_at, updated_at
`
	return r.scanCustomer(r.pool.QueryRow(ctx, q, contactArgs(c.Contact)...))
}

func (r *postgresRepo) Update(ctx context.Context, c domain.Customer) (*domain.Customer, error) {
	const q = `
UPDATE customers SET
    first_name = $2, last_name = $3, email = $4, phone = $5, street = $6, city = $7,
    province = $8, delivery_instructions = $9, source = $10, brand = $11, notes = $12,
    updated_at = now()
WHERE id = $1
RETURNING id::text, first_name, last_name, email, phone, street, city, province,
          delivery_instructions, source, brand, notes, created_at, updated_at
`
	args := append([]any{c.ID}, contactArgs(c.Contact)...)
	return r.scanCustomer(r.pool.QueryRow(ctx, q, args...))
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		if err = db.Translate(err); !db.IsDomain(err) {
			r.logger.Error("delete failed", "id", id, "error", err)
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	return r.scanCustomer(r.pool.QueryRow(ctx, selectColumns+` WHERE id = $1`, id))
}

func (r *postgresRepo) FindByName(ctx context.Context, firstName, lastName string) (*domain.Customer, error) {
	const q = selectColumns + `
WHERE first_name = $1 AND last_name = $2
ORDER BY created_at, id
LIMIT 1`
	return r.scanCustomer(r.pool.QueryRow(ctx, q, firstName, lastName))
}

func (r *postgresRepo) List(ctx context.Context, f domain.Filter) ([]domain.Customer, error) {
	var w db.Where
	w.AddIf(f.DateStart != nil, "created_at >= ?", f.DateStart)
	w.AddIf(f.DateEnd != nil, "created_at <= ?", f.DateEnd)
	w.AddIf(f.Brand != "", "brand = ?", f.Brand)
	w.AddIf(f.Province != "", "province = ?", f.Province)
	w.AddIf(f.City != "", "city = ?", f.City)
	w.AddIf(f.Source != "", "source = ?", f.Source)

	rows, err := r.pool.Query(ctx, selectColumns+w.SQL()+` ORDER BY created_at, id`, w.Args()...)
	if err != nil {
		r.logger.Error("list failed", "error", err)
		return nil, err
	}
	defer rows.Close()

	result := []domain.Customer{}
	for rows.Next() {
		c, err := r.scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *c)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("list rows failed", "error", err)
		return nil, err
	}
	r.logger.Debug("listed", "count", len(result))
	return result, nil
}

func contactArgs(c domain.Contact) []any {
	return []any{
		c.FirstName, c.LastName, c.Email, c.Phone, c.Street, c.City, c.Province,
		c.DeliveryInstructions, c.Source, c.Brand, c.Notes,
	}
}

func (r *postgresRepo) scanCustomer(row pgx.Row) (*domain.Customer, error) {
	var c domain.Customer
	err := row.Scan(
		&c.ID,
		&c.FirstName,
		&c.LastName,
		&c.Email,
		&c.Phone,
		&c.Street,
		&c.City,
		&c.Province,
		&c.DeliveryInstructions,
		&c.Source,
		&c.Brand,
		&c.Notes,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if err = db.Translate(err); !db.IsDomain(err) {
			r.logger.Error("scan failed", "error", err)
		}
		return nil, err
	}
	return &c, nil
}
