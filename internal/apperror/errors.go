// Package apperror defines the error taxonomy shared by repositories,
// services and the HTTP layer.
//
// Repositories turn driver errors into these types; the response package maps
// them to fixed status codes and bodies. Only DataAccessError carries the raw
// driver error, and it is logged server-side rather than sent to clients.
package apperror

import (
	"errors"
	"fmt"
)

// Resource names used in not-found and conflict errors.
const (
	ResourceCohort  = "cohort"
	ResourceStudent = "student"
)

// Sentinels for errors.Is checks that do not care about the details.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("resource not found")
	ErrConflict   = errors.New("resource already exists")
	ErrDataAccess = errors.New("data access failed")
)

// ValidationError reports client input that failed a business rule.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %v", e.Fields)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NotFoundError reports a lookup or mutation that matched no row.
type NotFoundError struct {
	Resource string
	ID       int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ConflictError reports a unique constraint violation.
type ConflictError struct {
	Resource string
	Field    string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s with this %s already exists", e.Resource, e.Field)
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// DataAccessError wraps any other failure from the database or cache.
type DataAccessError struct {
	Op  string
	Err error
}

func (e *DataAccessError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *DataAccessError) Unwrap() error { return e.Err }

func (e *DataAccessError) Is(target error) bool { return target == ErrDataAccess }

// Validation creates a ValidationError for a single field.
func Validation(field, message string) error {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// NotFound creates a NotFoundError.
func NotFound(resource string, id int) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// Conflict creates a ConflictError.
func Conflict(resource, field string) error {
	return &ConflictError{Resource: resource, Field: field}
}

// DataAccess wraps err unless it already belongs to the taxonomy.
func DataAccess(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsKnown(err) {
		return err
	}
	return &DataAccessError{Op: op, Err: err}
}

// IsKnown reports whether err is one of the taxonomy types.
func IsKnown(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrDataAccess)
}
