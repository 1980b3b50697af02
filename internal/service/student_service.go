package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/stemsi/cohorts-backend/internal/apperror"
	"github.com/stemsi/cohorts-backend/internal/model"
	"github.com/stemsi/cohorts-backend/internal/repository"
)

// StudentService handles student business logic.
type StudentService interface {
	List(ctx context.Context) ([]model.Student, error)
	Get(ctx context.Context, id int) (*model.StudentDetail, error)
	Create(ctx context.Context, name string, cohortID int) (*model.Student, error)
	Update(ctx context.Context, id int, patch model.StudentPatch) (*model.Student, error)
	Delete(ctx context.Context, id int) error
}

type studentService struct {
	store repository.Store
}

// NewStudentService creates a new StudentService.
func NewStudentService(store repository.Store) StudentService {
	return &studentService{store: store}
}

func (s *studentService) List(ctx context.Context) ([]model.Student, error) {
	return s.store.Students().List(ctx)
}

func (s *studentService) Get(ctx context.Context, id int) (*model.StudentDetail, error) {
	return s.store.Students().GetDetail(ctx, id)
}

func (s *studentService) Create(ctx context.Context, name string, cohortID int) (*model.Student, error) {
	name, err := studentName(name)
	if err != nil {
		return nil, err
	}
	if cohortID < 1 || cohortID > model.MaxID {
		return nil, apperror.Validation("cohort_id", "cohort_id must be a valid cohort id")
	}

	// A missing cohort surfaces as a foreign key violation from the insert.
	student := &model.Student{Name: name, CohortID: cohortID}
	if err := s.store.Students().Create(ctx, student); err != nil {
		return nil, err
	}
	return student, nil
}

// Update applies a partial update. When the cohort changes, the target cohort
// is locked and the student written in one transaction, so the cohort cannot
// disappear between the check and the write.
func (s *studentService) Update(ctx context.Context, id int, patch model.StudentPatch) (*model.Student, error) {
	if patch.Empty() {
		return nil, &apperror.ValidationError{Fields: map[string]string{
			"name":      "name or cohort_id is required",
			"cohort_id": "name or cohort_id is required",
		}}
	}
	if patch.Name != nil {
		trimmed, err := studentName(*patch.Name)
		if err != nil {
			return nil, err
		}
		patch.Name = &trimmed
	}
	if patch.CohortID != nil && (*patch.CohortID < 1 || *patch.CohortID > model.MaxID) {
		return nil, apperror.Validation("cohort_id", "cohort_id must be a valid cohort id")
	}

	if patch.CohortID == nil {
		return s.store.Students().Update(ctx, id, patch)
	}

	var updated *model.Student
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		if err := tx.Cohorts().LockShared(ctx, *patch.CohortID); err != nil {
			return err
		}
		student, err := tx.Students().Update(ctx, id, patch)
		if err != nil {
			return err
		}
		updated = student
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *studentService) Delete(ctx context.Context, id int) error {
	return s.store.Students().Delete(ctx, id)
}

func studentName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperror.Validation("name", "name is a required field")
	}
	if utf8.RuneCountInString(name) > model.MaxStudentNameLen {
		return "", apperror.Validation("name", fmt.Sprintf("name must be a maximum of %d characters in length", model.MaxStudentNameLen))
	}
	return name, nil
}
