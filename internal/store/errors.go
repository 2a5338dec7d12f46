package store

import (
	"errors"

	"invoice-ledger/internal/apperr"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgNumericOutOfRange   = "22003"
	pgStringTooLong       = "22001"
)

// scanner 同時涵蓋 pgx.Row 與 pgx.Rows
type scanner interface {
	Scan(dest ...any) error
}

// classify 將 driver 錯誤轉為 apperr 分類；無法分類者原樣回傳
func classify(err error, notFound string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.Wrap(apperr.KindNotFound, notFound, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return apperr.Wrap(apperr.KindConflict, "already exists", err)
		case pgForeignKeyViolation:
			return apperr.Wrap(apperr.KindNotFound, "referenced record not found", err)
		case pgNumericOutOfRange:
			return apperr.Wrap(apperr.KindValidation, "numeric value out of range", err)
		case pgStringTooLong:
			return apperr.Wrap(apperr.KindValidation, "value too long", err)
		}
	}
	return err
}
