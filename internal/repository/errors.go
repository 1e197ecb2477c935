package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = sql.ErrNoRows

const uniqueViolation = "23505"

// constraintFields maps unique constraints to the API field they protect.
var constraintFields = map[string]string{
	"users_email_key":               "email",
	"users_student_id_key":          "studentId",
	"attendance_records_triple_key": "date",
}

// DuplicateError reports a unique constraint violation on Field.
type DuplicateError struct {
	Field string
	Err   error
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate value for field: %s", e.Field)
}

func (e *DuplicateError) Unwrap() error { return e.Err }

// translate converts driver level uniqueness failures into DuplicateError.
func translate(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
		field, ok := constraintFields[pqErr.Constraint]
		if !ok {
			field = pqErr.Constraint
		}
		return &DuplicateError{Field: field, Err: err}
	}
	return err
}
