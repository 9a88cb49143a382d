// Sentinel errors shared across repositories so higher layers can
// distinguish failure scenarios without string matching.
package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrActiveCheckInExists is returned when the database rejects a write
	// because the user already has an active check-in. The partial unique
	// index on check_ins(user_id) WHERE active is the durable arbiter of
	// the one-active-check-in rule; this error is the race signal.
	ErrActiveCheckInExists = errors.New("active check-in already exists for user")

	// ErrDuplicate is returned on any other unique-constraint violation,
	// e.g. registering an email twice.
	ErrDuplicate = errors.New("duplicate record")
)

const uniqueViolationCode = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

func uniqueConstraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}
