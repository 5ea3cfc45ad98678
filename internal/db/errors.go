package db

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"smallbiz-crm/internal/domain"
)

// Translate maps pgx and Postgres errors to domain sentinels. Other errors
// are returned unchanged.
func Translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return domain.ErrAlreadyExists
		case "23503", "23001":
			return domain.ErrInUse
		case "22P02":
			// malformed uuid in a lookup
			return domain.ErrNotFound
		}
	}
	return err
}

// IsDomain reports whether err is one of the translated sentinels.
func IsDomain(err error) bool {
	return errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrAlreadyExists) ||
		errors.Is(err, domain.ErrInUse)
}
