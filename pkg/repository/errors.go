package repository

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgDuplicateKeyCode     = "23505"
	pgReadOnlySQLTxnCode   = "25006"
	pgInsufficientPrivCode = "42501"
)

// ErrReadOnly indicates a statement attempted to write inside a read-only transaction.
var ErrReadOnly = errors.New("statement not permitted in read-only transaction")

// MapError translates database errors to domain errors.
// sql.ErrNoRows maps to notFoundErr, unique violations (23505) to
// duplicateErr, and read-only or privilege violations to ErrReadOnly.
// Other errors are returned unchanged.
func MapError(err error, notFoundErr, duplicateErr error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return notFoundErr
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgDuplicateKeyCode:
			return duplicateErr
		case pgReadOnlySQLTxnCode, pgInsufficientPrivCode:
			return ErrReadOnly
		}
	}

	return err
}
