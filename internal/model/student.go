package model

// Student represents an individual belonging to exactly one cohort.
type Student struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	CohortID int    `json:"cohort_id"`
}

// StudentDetail is the denormalized read view of a student, carrying the
// cohort's name instead of its ID.
type StudentDetail struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Cohort string `json:"cohort"`
}

// StudentPatch lists the fields of a partial student update. Nil means unchanged.
type StudentPatch struct {
	Name     *string
	CohortID *int
}

// Empty reports whether the patch changes nothing.
func (p StudentPatch) Empty() bool {
	return p.Name == nil && p.CohortID == nil
}

// CreateStudentRequest is the payload for creating a new student.
// Name length is checked by the service after trimming.
type CreateStudentRequest struct {
	Name     string `json:"name" binding:"required"`
	CohortID int    `json:"cohort_id" binding:"required,min=1,max=2147483647"`
}

// UpdateStudentRequest is the payload for updating an existing student.
// At least one field must be present; name length is checked after trimming.
type UpdateStudentRequest struct {
	Name     *string `json:"name" binding:"omitempty,min=1"`
	CohortID *int    `json:"cohort_id" binding:"omitempty,min=1,max=2147483647"`
}

// Patch converts the request into a StudentPatch.
func (r UpdateStudentRequest) Patch() StudentPatch {
	return StudentPatch{Name: r.Name, CohortID: r.CohortID}
}
