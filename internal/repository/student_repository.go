package repository

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/stemsi/cohorts-backend/internal/apperror"
	"github.com/stemsi/cohorts-backend/internal/model"
)

// StudentRepository persists students.
type StudentRepository interface {
	List(ctx context.Context) ([]model.Student, error)
	ListByCohort(ctx context.Context, cohortID int) ([]model.Student, error)
	GetByID(ctx context.Context, id int) (*model.Student, error)
	// GetDetail returns the student joined with its cohort's name.
	GetDetail(ctx context.Context, id int) (*model.StudentDetail, error)
	Create(ctx context.Context, student *model.Student) error
	Update(ctx context.Context, id int, patch model.StudentPatch) (*model.Student, error)
	Delete(ctx context.Context, id int) error
}

type studentRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

var studentColumns = []string{"id", "name", "cohort_id"}

func (r *studentRepository) listQuery() squirrel.SelectBuilder {
	return r.sb.Select(studentColumns...).From("students").OrderBy("id ASC")
}

func (r *studentRepository) listByCohortQuery(cohortID int) squirrel.SelectBuilder {
	return r.listQuery().Where(squirrel.Eq{"cohort_id": cohortID})
}

func (r *studentRepository) getQuery(id int) squirrel.SelectBuilder {
	return r.sb.Select(studentColumns...).From("students").Where(squirrel.Eq{"id": id}).Limit(1)
}

func (r *studentRepository) detailQuery(id int) squirrel.SelectBuilder {
	return r.sb.Select("s.id", "s.name", "c.name AS cohort").
		From("students s").
		Join("cohorts c ON c.id = s.cohort_id").
		Where(squirrel.Eq{"s.id": id}).
		Limit(1)
}

func (r *studentRepository) insertQuery(s *model.Student) squirrel.InsertBuilder {
	return r.sb.Insert("students").
		Columns("name", "cohort_id").
		Values(s.Name, s.CohortID).
		Suffix("RETURNING id, name, cohort_id")
}

func (r *studentRepository) updateQuery(id int, patch model.StudentPatch) squirrel.UpdateBuilder {
	q := r.sb.Update("students").Where(squirrel.Eq{"id": id})
	if patch.Name != nil {
		q = q.Set("name", *patch.Name)
	}
	if patch.CohortID != nil {
		q = q.Set("cohort_id", *patch.CohortID)
	}
	return q.Suffix("RETURNING id, name, cohort_id")
}

func (r *studentRepository) deleteQuery(id int) squirrel.DeleteBuilder {
	return r.sb.Delete("students").Where(squirrel.Eq{"id": id})
}

func (r *studentRepository) List(ctx context.Context) ([]model.Student, error) {
	return r.list(ctx, "list students", r.listQuery())
}

func (r *studentRepository) ListByCohort(ctx context.Context, cohortID int) ([]model.Student, error) {
	if !storableID(cohortID) {
		return []model.Student{}, nil
	}
	return r.list(ctx, "list cohort students", r.listByCohortQuery(cohortID))
}

func (r *studentRepository) list(ctx context.Context, op string, q squirrel.SelectBuilder) ([]model.Student, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperror.DataAccess(op, err)
	}

	students, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Student, error) {
		var s model.Student
		err := row.Scan(&s.ID, &s.Name, &s.CohortID)
		return s, err
	})
	if err != nil {
		return nil, apperror.DataAccess(op, err)
	}
	if students == nil {
		students = []model.Student{}
	}
	return students, nil
}

func (r *studentRepository) GetByID(ctx context.Context, id int) (*model.Student, error) {
	if !storableID(id) {
		return nil, apperror.NotFound(apperror.ResourceStudent, id)
	}
	query, args, err := r.getQuery(id).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get student query: %w", err)
	}

	s := &model.Student{}
	if err := r.db.QueryRow(ctx, query, args...).Scan(&s.ID, &s.Name, &s.CohortID); err != nil {
		return nil, translateStudentErr("get student", id, 0, err)
	}
	return s, nil
}

func (r *studentRepository) GetDetail(ctx context.Context, id int) (*model.StudentDetail, error) {
	if !storableID(id) {
		return nil, apperror.NotFound(apperror.ResourceStudent, id)
	}
	query, args, err := r.detailQuery(id).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get student detail query: %w", err)
	}

	d := &model.StudentDetail{}
	if err := r.db.QueryRow(ctx, query, args...).Scan(&d.ID, &d.Name, &d.Cohort); err != nil {
		return nil, translateStudentErr("get student detail", id, 0, err)
	}
	return d, nil
}

func (r *studentRepository) Create(ctx context.Context, student *model.Student) error {
	query, args, err := r.insertQuery(student).ToSql()
	if err != nil {
		return fmt.Errorf("build create student query: %w", err)
	}

	err = r.db.QueryRow(ctx, query, args...).Scan(&student.ID, &student.Name, &student.CohortID)
	return translateStudentErr("create student", 0, student.CohortID, err)
}

func (r *studentRepository) Update(ctx context.Context, id int, patch model.StudentPatch) (*model.Student, error) {
	if !storableID(id) {
		return nil, apperror.NotFound(apperror.ResourceStudent, id)
	}
	query, args, err := r.updateQuery(id, patch).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update student query: %w", err)
	}

	var cohortID int
	if patch.CohortID != nil {
		cohortID = *patch.CohortID
	}

	s := &model.Student{}
	if err := r.db.QueryRow(ctx, query, args...).Scan(&s.ID, &s.Name, &s.CohortID); err != nil {
		return nil, translateStudentErr("update student", id, cohortID, err)
	}
	return s, nil
}

func (r *studentRepository) Delete(ctx context.Context, id int) error {
	if !storableID(id) {
		return apperror.NotFound(apperror.ResourceStudent, id)
	}
	query, args, err := r.deleteQuery(id).ToSql()
	if err != nil {
		return fmt.Errorf("build delete student query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return apperror.DataAccess("delete student", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound(apperror.ResourceStudent, id)
	}
	return nil
}
