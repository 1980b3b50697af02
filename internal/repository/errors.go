package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stemsi/cohorts-backend/internal/apperror"
	"github.com/stemsi/cohorts-backend/internal/model"
)

// PostgreSQL SQLSTATE codes the repositories react to.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// storableID reports whether id fits the INTEGER key columns. Other ids cannot
// match a row and would fail to encode, so callers answer without a query.
func storableID(id int) bool {
	return id >= 1 && id <= model.MaxID
}

// translateCohortErr maps driver errors from cohort queries into the taxonomy.
func translateCohortErr(op string, id int, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperror.NotFound(apperror.ResourceCohort, id)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return apperror.Conflict(apperror.ResourceCohort, "name")
	}
	return apperror.DataAccess(op, err)
}

// translateStudentErr maps driver errors from student queries. A foreign key
// violation means the referenced cohort does not exist.
func translateStudentErr(op string, id, cohortID int, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperror.NotFound(apperror.ResourceStudent, id)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		return apperror.NotFound(apperror.ResourceCohort, cohortID)
	}
	return apperror.DataAccess(op, err)
}
