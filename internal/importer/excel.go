// Package importer loads students from spreadsheets exported by school
// administration tools.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/stemsi/cohorts-backend/internal/model"
	"github.com/xuri/excelize/v2"
)

// CohortEnsurer returns the cohort with a given name, creating it if needed.
type CohortEnsurer interface {
	Ensure(ctx context.Context, name string) (*model.Cohort, error)
}

// StudentCreator inserts a student into an existing cohort.
type StudentCreator interface {
	Create(ctx context.Context, name string, cohortID int) (*model.Student, error)
}

// RowError describes a spreadsheet row that was not imported. Row is 1-based
// as shown by spreadsheet applications.
type RowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// Report summarises an import run.
type Report struct {
	Rows     int        `json:"rows"`
	Imported int        `json:"imported"`
	Cohorts  int        `json:"cohorts"`
	Skipped  []RowError `json:"skipped"`
}

// ExcelImporter reads "cohort, name" rows from the first sheet of a workbook.
// The first row is a header and is ignored.
type ExcelImporter struct {
	cohorts  CohortEnsurer
	students StudentCreator
	log      zerolog.Logger
}

func NewExcelImporter(cohorts CohortEnsurer, students StudentCreator, log zerolog.Logger) *ExcelImporter {
	return &ExcelImporter{
		cohorts:  cohorts,
		students: students,
		log:      log.With().Str("component", "excel_importer").Logger(),
	}
}

// Import reads the workbook from r. Row-level failures are collected in the
// report; an error is returned only when the workbook itself is unreadable or
// ctx is cancelled.
func (im *ExcelImporter) Import(ctx context.Context, r io.Reader) (*Report, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			im.log.Warn().Err(err).Msg("close workbook")
		}
	}()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}

	report := &Report{Skipped: []RowError{}}
	cohortIDs := make(map[string]int)

	for i, row := range rows {
		if i == 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}

		cohortName, studentName := cell(row, 0), cell(row, 1)
		if cohortName == "" && studentName == "" {
			continue
		}
		report.Rows++

		if err := im.importRow(ctx, cohortIDs, cohortName, studentName); err != nil {
			im.log.Warn().Err(err).Int("row", i+1).Msg("row skipped")
			report.Skipped = append(report.Skipped, RowError{Row: i + 1, Reason: err.Error()})
			continue
		}
		report.Imported++
	}

	report.Cohorts = len(cohortIDs)
	im.log.Info().
		Str("sheet", sheet).
		Int("rows", report.Rows).
		Int("imported", report.Imported).
		Int("skipped", len(report.Skipped)).
		Msg("import finished")
	return report, nil
}

func (im *ExcelImporter) importRow(ctx context.Context, cohortIDs map[string]int, cohortName, studentName string) error {
	if cohortName == "" {
		return errors.New("cohort is empty")
	}
	if studentName == "" {
		return errors.New("name is empty")
	}

	cohortID, ok := cohortIDs[cohortName]
	if !ok {
		cohort, err := im.cohorts.Ensure(ctx, cohortName)
		if err != nil {
			return fmt.Errorf("ensure cohort %q: %w", cohortName, err)
		}
		cohortID = cohort.ID
		cohortIDs[cohortName] = cohortID
	}

	if _, err := im.students.Create(ctx, studentName, cohortID); err != nil {
		return fmt.Errorf("create student %q: %w", studentName, err)
	}
	return nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
