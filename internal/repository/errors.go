package repository

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

// ErrDuplicate is returned when an insert or update violates a unique constraint.
var ErrDuplicate = errors.New("duplicate record")

const (
	uniqueViolation           = pq.ErrorCode("23505")
	invalidTextRepresentation = pq.ErrorCode("22P02")
)

// translate maps driver errors onto repository sentinels. A malformed uuid
// can never match a row, so it reads as sql.ErrNoRows.
func translate(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case uniqueViolation:
		return &duplicateError{constraint: pqErr.Constraint, err: err}
	case invalidTextRepresentation:
		return sql.ErrNoRows
	}
	return err
}

type duplicateError struct {
	constraint string
	err        error
}

func (e *duplicateError) Error() string {
	if e.constraint == "" {
		return ErrDuplicate.Error()
	}
	return ErrDuplicate.Error() + ": " + e.constraint
}

func (e *duplicateError) Is(target error) bool { return target == ErrDuplicate }

func (e *duplicateError) Unwrap() error { return e.err }

// Constraint returns the violated constraint name when err is a duplicate.
func Constraint(err error) string {
	var dup *duplicateError
	if errors.As(err, &dup) {
		return dup.constraint
	}
	return ""
}
