package importer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stemsi/cohorts-backend/internal/apperror"
	"github.com/stemsi/cohorts-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type fakeDirectory struct {
	cohorts  map[string]int
	students []model.Student
	ensures  int
}

func (d *fakeDirectory) Ensure(ctx context.Context, name string) (*model.Cohort, error) {
	d.ensures++
	if name == "Broken" {
		return nil, apperror.DataAccess("ensure cohort", errors.New("db down"))
	}
	id, ok := d.cohorts[name]
	if !ok {
		id = len(d.cohorts) + 1
		d.cohorts[name] = id
	}
	return &model.Cohort{ID: id, Name: name}, nil
}

func (d *fakeDirectory) Create(ctx context.Context, name string, cohortID int) (*model.Student, error) {
	s := model.Student{ID: len(d.students) + 1, Name: name, CohortID: cohortID}
	d.students = append(d.students, s)
	return &s, nil
}

func workbook(t *testing.T, rows [][]string) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		for j, v := range row {
			ref, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, ref, v))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestImport(t *testing.T) {
	dir := &fakeDirectory{cohorts: map[string]int{}}
	im := NewExcelImporter(dir, dir, zerolog.Nop())

	report, err := im.Import(context.Background(), workbook(t, [][]string{
		{"cohort", "name"},
		{"Web 1", "Ada"},
		{"Web 1", " Bob "},
		{"Data 2", "Cy"},
		{"Web 1", ""},
		{"", ""},
		{"Broken", "Dee"},
	}))
	require.NoError(t, err)

	assert.Equal(t, 5, report.Rows)
	assert.Equal(t, 3, report.Imported)
	assert.Equal(t, 2, report.Cohorts)
	require.Len(t, report.Skipped, 2)
	assert.Equal(t, RowError{Row: 5, Reason: "name is empty"}, report.Skipped[0])
	assert.Equal(t, 7, report.Skipped[1].Row)
	assert.True(t, strings.HasPrefix(report.Skipped[1].Reason, `ensure cohort "Broken"`))

	assert.Equal(t, []model.Student{
		{ID: 1, Name: "Ada", CohortID: 1},
		{ID: 2, Name: "Bob", CohortID: 1},
		{ID: 3, Name: "Cy", CohortID: 2},
	}, dir.students)
	assert.Equal(t, 3, dir.ensures, "cohort lookups are memoised per import")
}

func TestImportRejectsNonWorkbook(t *testing.T) {
	im := NewExcelImporter(&fakeDirectory{cohorts: map[string]int{}}, &fakeDirectory{}, zerolog.Nop())

	_, err := im.Import(context.Background(), strings.NewReader("cohort,name\nA,Ada\n"))
	assert.ErrorContains(t, err, "open workbook")
}

func TestImportStopsOnCancel(t *testing.T) {
	dir := &fakeDirectory{cohorts: map[string]int{}}
	im := NewExcelImporter(dir, dir, zerolog.Nop())

	rows := [][]string{{"cohort", "name"}}
	for i := range 10 {
		rows = append(rows, []string{"A", fmt.Sprintf("student %d", i)})
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := im.Import(ctx, workbook(t, rows))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, report.Imported)
}
