package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/cohorts-backend/internal/model"
	"github.com/stemsi/cohorts-backend/internal/response"
	"github.com/stemsi/cohorts-backend/internal/service"
)

// CohortHandler exposes cohort CRUD and the per-cohort student listing.
type CohortHandler struct {
	cohortService service.CohortService
	log           zerolog.Logger
}

// NewCohortHandler creates a new CohortHandler.
func NewCohortHandler(cohortService service.CohortService, log zerolog.Logger) *CohortHandler {
	return &CohortHandler{
		cohortService: cohortService,
		log:           log.With().Str("component", "cohort_handler").Logger(),
	}
}

// CreateCohort godoc
// POST /api/cohorts
func (h *CohortHandler) CreateCohort(c *gin.Context) {
	var req model.CohortRequest
	if !bindJSON(c, &req) {
		return
	}

	cohort, err := h.cohortService.Create(c.Request.Context(), req.Name)
	if err != nil {
		response.FailFromError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"cohort": cohort})
}

// ListCohorts godoc
// GET /api/cohorts
func (h *CohortHandler) ListCohorts(c *gin.Context) {
	cohorts, err := h.cohortService.List(c.Request.Context())
	if err != nil {
		response.FailFromError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"cohorts": cohorts})
}

// GetCohort godoc
// GET /api/cohorts/:id
func (h *CohortHandler) GetCohort(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	cohort, err := h.cohortService.Get(c.Request.Context(), id)
	if err != nil {
		response.FailFromError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"cohort": cohort})
}

// ListCohortStudents godoc
// GET /api/cohorts/:id/students
// An unknown cohort yields an empty list.
func (h *CohortHandler) ListCohortStudents(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	students, err := h.cohortService.ListStudents(c.Request.Context(), id)
	if err != nil {
		response.FailFromError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"students": students})
}

// UpdateCohort godoc
// PUT /api/cohorts/:id
// Responds 201 with the stored record.
func (h *CohortHandler) UpdateCohort(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req model.CohortRequest
	if !bindJSON(c, &req) {
		return
	}

	cohort, err := h.cohortService.Update(c.Request.Context(), id, req.Name)
	if err != nil {
		response.FailFromError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"cohort": cohort})
}

// DeleteCohort godoc
// DELETE /api/cohorts/:id
// Students of the cohort are removed with it.
func (h *CohortHandler) DeleteCohort(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.cohortService.Delete(c.Request.Context(), id); err != nil {
		response.FailFromError(c, h.log, err)
		return
	}

	response.NoContent(c)
}
