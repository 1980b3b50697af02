package validator

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/cohorts-backend/internal/model"
	"github.com/stretchr/testify/assert"
)

func bindBody(t *testing.T, body string, dst interface{}) map[string]string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	Setup()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return Bind(c, dst)
}

func TestBindCohortRequest(t *testing.T) {
	var ok model.CohortRequest
	assert.Nil(t, bindBody(t, `{"name":"Cohort A"}`, &ok))
	assert.Equal(t, "Cohort A", ok.Name)

	var missing model.CohortRequest
	fields := bindBody(t, `{}`, &missing)
	assert.Equal(t, map[string]string{"name": "name is a required field"}, fields)

	// Length is checked by the service once the name is trimmed.
	var long model.CohortRequest
	assert.Nil(t, bindBody(t, `{"name":"`+strings.Repeat("x", 256)+`"}`, &long))
}

func TestBindCreateStudentRequest(t *testing.T) {
	var req model.CreateStudentRequest
	fields := bindBody(t, `{"name":"Ada"}`, &req)
	assert.Contains(t, fields, "cohort_id")
	assert.NotContains(t, fields, "name")

	var tooLong model.CreateStudentRequest
	assert.Nil(t, bindBody(t, `{"name":"`+strings.Repeat("n", 129)+`","cohort_id":1}`, &tooLong))
}

func TestBindUpdateStudentRequest(t *testing.T) {
	var empty model.UpdateStudentRequest
	assert.Nil(t, bindBody(t, `{}`, &empty), "presence of at least one field is a service rule")
	assert.True(t, empty.Patch().Empty())

	var blank model.UpdateStudentRequest
	assert.Contains(t, bindBody(t, `{"name":""}`, &blank), "name")

	var negative model.UpdateStudentRequest
	assert.Contains(t, bindBody(t, `{"cohort_id":-2}`, &negative), "cohort_id")

	var both model.UpdateStudentRequest
	assert.Nil(t, bindBody(t, `{"name":"Ada","cohort_id":2}`, &both))
	assert.Equal(t, "Ada", *both.Name)
	assert.Equal(t, 2, *both.CohortID)
}

func TestBindMalformedBodies(t *testing.T) {
	var req model.CreateStudentRequest
	assert.Equal(t, map[string]string{"detail": "request body is not valid JSON"}, bindBody(t, `{"name":`, &req))

	var typed model.CreateStudentRequest
	assert.Equal(t, map[string]string{"cohort_id": "must be a int"}, bindBody(t, `{"name":"Ada","cohort_id":"one"}`, &typed))

	var none model.CohortRequest
	assert.Equal(t, map[string]string{"detail": "request body is empty"}, bindBody(t, ``, &none))
}
