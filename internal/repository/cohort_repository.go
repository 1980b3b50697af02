package repository

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/stemsi/cohorts-backend/internal/apperror"
	"github.com/stemsi/cohorts-backend/internal/model"
)

// CohortRepository persists cohorts.
type CohortRepository interface {
	List(ctx context.Context) ([]model.Cohort, error)
	GetByID(ctx context.Context, id int) (*model.Cohort, error)
	Create(ctx context.Context, cohort *model.Cohort) error
	// Ensure inserts a cohort by name, or returns the existing one.
	Ensure(ctx context.Context, name string) (*model.Cohort, error)
	Update(ctx context.Context, cohort *model.Cohort) error
	Delete(ctx context.Context, id int) error
	// LockShared takes a FOR SHARE lock on the cohort row so it cannot be
	// deleted or re-keyed until the surrounding transaction ends.
	LockShared(ctx context.Context, id int) error
}

type cohortRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

var cohortColumns = []string{"id", "name"}

func (r *cohortRepository) listQuery() squirrel.SelectBuilder {
	return r.sb.Select(cohortColumns...).From("cohorts").OrderBy("id ASC")
}

func (r *cohortRepository) getQuery(id int) squirrel.SelectBuilder {
	return r.sb.Select(cohortColumns...).From("cohorts").Where(squirrel.Eq{"id": id}).Limit(1)
}

func (r *cohortRepository) insertQuery(name string) squirrel.InsertBuilder {
	return r.sb.Insert("cohorts").Columns("name").Values(name).Suffix("RETURNING id, name")
}

func (r *cohortRepository) ensureQuery(name string) squirrel.InsertBuilder {
	return r.sb.Insert("cohorts").Columns("name").Values(name).
		Suffix("ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name RETURNING id, name")
}

func (r *cohortRepository) updateQuery(c *model.Cohort) squirrel.UpdateBuilder {
	return r.sb.Update("cohorts").Set("name", c.Name).Where(squirrel.Eq{"id": c.ID}).Suffix("RETURNING id, name")
}

func (r *cohortRepository) deleteQuery(id int) squirrel.DeleteBuilder {
	return r.sb.Delete("cohorts").Where(squirrel.Eq{"id": id})
}

func (r *cohortRepository) lockQuery(id int) squirrel.SelectBuilder {
	return r.sb.Select("id").From("cohorts").Where(squirrel.Eq{"id": id}).Suffix("FOR SHARE")
}

func (r *cohortRepository) List(ctx context.Context) ([]model.Cohort, error) {
	query, args, err := r.listQuery().ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list cohorts query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperror.DataAccess("list cohorts", err)
	}
	defer rows.Close()

	cohorts := []model.Cohort{}
	for rows.Next() {
		var c model.Cohort
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, apperror.DataAccess("scan cohort", err)
		}
		cohorts = append(cohorts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.DataAccess("list cohorts", err)
	}
	return cohorts, nil
}

func (r *cohortRepository) GetByID(ctx context.Context, id int) (*model.Cohort, error) {
	if !storableID(id) {
		return nil, apperror.NotFound(apperror.ResourceCohort, id)
	}
	query, args, err := r.getQuery(id).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get cohort query: %w", err)
	}

	c := &model.Cohort{}
	if err := r.db.QueryRow(ctx, query, args...).Scan(&c.ID, &c.Name); err != nil {
		return nil, translateCohortErr("get cohort", id, err)
	}
	return c, nil
}

func (r *cohortRepository) Create(ctx context.Context, cohort *model.Cohort) error {
	query, args, err := r.insertQuery(cohort.Name).ToSql()
	if err != nil {
		return fmt.Errorf("build create cohort query: %w", err)
	}

	err = r.db.QueryRow(ctx, query, args...).Scan(&cohort.ID, &cohort.Name)
	return translateCohortErr("create cohort", 0, err)
}

func (r *cohortRepository) Ensure(ctx context.Context, name string) (*model.Cohort, error) {
	query, args, err := r.ensureQuery(name).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build ensure cohort query: %w", err)
	}

	c := &model.Cohort{}
	if err := r.db.QueryRow(ctx, query, args...).Scan(&c.ID, &c.Name); err != nil {
		return nil, translateCohortErr("ensure cohort", 0, err)
	}
	return c, nil
}

func (r *cohortRepository) Update(ctx context.Context, cohort *model.Cohort) error {
	if !storableID(cohort.ID) {
		return apperror.NotFound(apperror.ResourceCohort, cohort.ID)
	}
	query, args, err := r.updateQuery(cohort).ToSql()
	if err != nil {
		return fmt.Errorf("build update cohort query: %w", err)
	}

	err = r.db.QueryRow(ctx, query, args...).Scan(&cohort.ID, &cohort.Name)
	return translateCohortErr("update cohort", cohort.ID, err)
}

func (r *cohortRepository) Delete(ctx context.Context, id int) error {
	if !storableID(id) {
		return apperror.NotFound(apperror.ResourceCohort, id)
	}
	query, args, err := r.deleteQuery(id).ToSql()
	if err != nil {
		return fmt.Errorf("build delete cohort query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return apperror.DataAccess("delete cohort", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound(apperror.ResourceCohort, id)
	}
	return nil
}

func (r *cohortRepository) LockShared(ctx context.Context, id int) error {
	if !storableID(id) {
		return apperror.NotFound(apperror.ResourceCohort, id)
	}
	query, args, err := r.lockQuery(id).ToSql()
	if err != nil {
		return fmt.Errorf("build lock cohort query: %w", err)
	}

	var locked int
	err = r.db.QueryRow(ctx, query, args...).Scan(&locked)
	return translateCohortErr("lock cohort", id, err)
}
