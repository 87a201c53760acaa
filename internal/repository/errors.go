// Package repository contains the plain-SQL data access layer.  This
// file defines sentinel errors shared across repositories and the
// translation of Postgres constraint violations into domain errors.
// Higher layers match on these values with errors.Is to pick HTTP
// status codes.
package repository

import (
	"errors"

	"github.com/lib/pq"
)

// ErrConflict is returned when an insert or update violates a unique
// constraint, e.g. a duplicate genre name or hall number.  Handlers
// translate it into HTTP 409.
var ErrConflict = errors.New("conflict")

// Postgres error code for unique_violation.
const uniqueViolationCode = "23505"

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation, optionally restricted to a named constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != uniqueViolationCode {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}

// translateUnique maps unique violations to ErrConflict and passes any
// other error through unchanged.
func translateUnique(err error) error {
	if isUniqueViolation(err, "") {
		return ErrConflict
	}
	return err
}

// int64Array adapts a slice of IDs for use with ANY($n) placeholders.
func int64Array(ids []uint64) interface{} {
	arr := make([]int64, len(ids))
	for i, id := range ids {
		arr[i] = int64(id)
	}
	return pq.Array(arr)
}
