package repository

import (
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// validID reports whether id can match a UUID primary key. Anything else
// would be rejected by Postgres with invalid_text_representation.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// isInvalidText reports a Postgres invalid_text_representation error, raised
// when a malformed id reaches a UUID column.
func isInvalidText(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "22P02"
}
