package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/cohorts-backend/internal/model"
	"github.com/stemsi/cohorts-backend/internal/response"
	"github.com/stemsi/cohorts-backend/internal/service"
)

// StudentHandler exposes student CRUD.
type StudentHandler struct {
	studentService service.StudentService
	log            zerolog.Logger
}

// NewStudentHandler creates a new StudentHandler.
func NewStudentHandler(studentService service.StudentService, log zerolog.Logger) *StudentHandler {
	return &StudentHandler{
		studentService: studentService,
		log:            log.With().Str("component", "student_handler").Logger(),
	}
}

// CreateStudent godoc
// POST /students
func (h *StudentHandler) CreateStudent(c *gin.Context) {
	var req model.CreateStudentRequest
	if !bindJSON(c, &req) {
		return
	}

	student, err := h.studentService.Create(c.Request.Context(), req.Name, req.CohortID)
	if err != nil {
		response.FailFromError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"student": student})
}

// ListStudents godoc
// GET /students
func (h *StudentHandler) ListStudents(c *gin.Context) {
	students, err := h.studentService.List(c.Request.Context())
	if err != nil {
		response.FailFromError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"students": students})
}

// GetStudent godoc
// GET /students/:id
// The cohort is reported by name.
func (h *StudentHandler) GetStudent(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	student, err := h.studentService.Get(c.Request.Context(), id)
	if err != nil {
		response.FailFromError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"student": student})
}

// UpdateStudent godoc
// PUT /students/:id
// Accepts any subset of name and cohort_id. Responds 201 with the stored record.
func (h *StudentHandler) UpdateStudent(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req model.UpdateStudentRequest
	if !bindJSON(c, &req) {
		return
	}

	student, err := h.studentService.Update(c.Request.Context(), id, req.Patch())
	if err != nil {
		response.FailFromError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"student": student})
}

// DeleteStudent godoc
// DELETE /students/:id
func (h *StudentHandler) DeleteStudent(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.studentService.Delete(c.Request.Context(), id); err != nil {
		response.FailFromError(c, h.log, err)
		return
	}

	response.NoContent(c)
}
