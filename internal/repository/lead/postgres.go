package lead

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
	return &postgresRepo{pool: pool, logger: logger.With("repo", "lead")}
}

const returning = `id::text, first_name, last_name, email, phone, street, city, province,
       delivery_instructions, source, brand, notes, status, last_contact_at,
       next_follow_up_at, created_at, updated_at`

func (r *postgresRepo) Create(ctx context.Context, l domain.Lead) (*domain.Lead, error) {
	q := `
INSERT INTO leads (
    first_name, last_name, email, phone, street, city, province,
    delivery_instructions, source, brand, notes, status, last_contact_at, next_follow_up_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
RETURNING ` + returning
	return r.scanLead(r.pool.QueryRow(ctx, q, leadArgs(l)...))
}

func (r *postgresRepo) Update(ctx context.Context, l domain.Lead) (*domain.Lead, error) {
	q := `
UPDATE leads SET
    first_name = $1, last_name = $2, email = $3, phone = $4, street = $5, city = $6,
    province = $7, delivery_instructions = $8, source = $9, brand = $10, notes = $11,
    status = $12, last_contact_at = $13, next_follow_up_at = $14, updated_at = now()
WHERE id = $15
RETURNING ` + returning
	args := append(leadArgs(l), l.ID)
	return r.scanLead(r.pool.QueryRow(ctx, q, args...))
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Lead, error) {
	return r.scanLead(r.pool.QueryRow(ctx, `SELECT `+returning+` FROM leads WHERE id = $1`, id))
}

func (r *postgresRepo) FindByName(ctx context.Context, firstName, lastName string) (*domain.Lead, error) {
	q := `SELECT ` + returning + ` FROM leads
WHERE first_name = $1 AND last_name = $2
ORDER BY created_at, id
LIMIT 1`
	return r.scanLead(r.pool.QueryRow(ctx, q, firstName, lastName))
}

func (r *postgresRepo) List(ctx context.Context, f domain.Filter) ([]domain.Lead, error) {
	var w db.Where
	w.AddIf(f.DateStart != nil, "created_at >= ?", f.DateStart)
	w.AddIf(f.DateEnd != nil, "created_at <= ?", f.DateEnd)
	w.AddIf(f.Brand != "", "brand = ?", f.Brand)
	w.AddIf(f.Province != "", "province = ?", f.Province)
	w.AddIf(f.City != "", "city = ?", f.City)
	w.AddIf(f.Source != "", "source = ?", f.Source)
	w.AddIf(f.Status != "", "status = ?", f.Status)

	rows, err := r.pool.Query(ctx, `SELECT `+returning+` FROM leads`+w.SQL()+` ORDER BY created_at, id`, w.Args()...)
	if err != nil {
		r.logger.Error("list failed", "error", err)
		return nil, err
	}
	defer rows.Close()

	result := []domain.Lead{}
	for rows.Next() {
		l, err := r.scanLead(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *l)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("list rows failed", "error", err)
		return nil, err
	}
	return result, nil
}

func leadArgs(l domain.Lead) []any {
	status := l.Status
	if status == "" {
		status = domain.LeadStatusNew
	}
	return []any{
		l.FirstName, l.LastName, l.Email, l.Phone, l.Street, l.City, l.Province,
		l.DeliveryInstructions, l.Source, l.Brand, l.Notes,
		status, l.LastContactAt, l.NextFollowUpAt,
	}
}

func (r *postgresRepo) scanLead(row pgx.Row) (*domain.Lead, error) {
	var l domain.Lead
	err := row.Scan(
		&l.ID,
		&l.FirstName,
		&l.LastName,
		&l.Email,
		&l.Phone,
		&l.Street,
		&l.City,
		&l.Province,
		&l.DeliveryInstructions,
		&l.Source,
		&l.Brand,
		&l.Notes,
		&l.Status,
		&l.LastContactAt,
		&l.NextFollowUpAt,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		if err = db.Translate(err); !db.IsDomain(err) {
			r.logger.Error("scan failed", "error", err)
		}
		return nil, err
	}
	return &l, nil
}
