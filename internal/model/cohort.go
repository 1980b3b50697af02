package model

// Limits of the SQL schema: INTEGER keys and VARCHAR name columns.
const (
	MaxID             = 1<<31 - 1
	MaxCohortNameLen  = 255
	MaxStudentNameLen = 128
)

// Cohort represents a named group that students belong to.
type Cohort struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// CohortRequest is the payload for creating or renaming a cohort.
// Length is checked by the service after trimming.
type CohortRequest struct {
	Name string `json:"name" binding:"required"`
}
