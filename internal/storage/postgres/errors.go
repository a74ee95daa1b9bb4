package postgres

import (
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// validID reports whether id can be compared against a UUID column.
// Malformed ids cannot match any row.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
