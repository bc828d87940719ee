package repository

import (
	"errors"

	"github.com/lib/pq"
)

// ErrUniqueViolation is returned when an insert collides with a unique constraint.
var ErrUniqueViolation = errors.New("unique constraint violation")

const uniqueViolationCode = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolationCode
}

type scanner interface {
	Scan(dest ...any) error
}
