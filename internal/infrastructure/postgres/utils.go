package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

func pgErrCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUniqueViolation violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	return pgErrCode(err) == "23505"
}

// isForeignKeyViolation violación de clave foránea (23503), típicamente un
// product_id que ya no existe.
func isForeignKeyViolation(err error) bool {
	return pgErrCode(err) == "23503"
}
