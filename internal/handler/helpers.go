package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/cohorts-backend/internal/response"
	"github.com/stemsi/cohorts-backend/internal/validator"
)

// pathID parses an integer path parameter, writing a 400 INVALID_ID response
// when it is not one. Zero and negative ids parse; no row has them, so the
// lookup answers 404.
func pathID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return 0, false
	}
	return id, true
}

// bindJSON decodes and validates the body into dst. Undecodable bodies are
// reported as INVALID_PAYLOAD, rule violations as VALIDATION_ERROR.
func bindJSON(c *gin.Context, dst interface{}) bool {
	fields := validator.Bind(c, dst)
	if fields == nil {
		return true
	}

	code := response.ErrValidation
	if _, ok := fields["detail"]; ok {
		code = response.ErrInvalidPayload
	}
	response.FailWithFields(c, http.StatusBadRequest, code, fields)
	return false
}
