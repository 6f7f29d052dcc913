package profilesql

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/openkcm/profile-session/internal/serviceerr"
)

const checkViolation = "23514"

func handlePgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == checkViolation {
		return errors.Join(serviceerr.ErrInvalidProfile, err)
	}

	return err
}
