package observation

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mjescario/csafk-backend/model"
)

func TestParseFieldData(t *testing.T) {
	values, err := parseFieldData(json.RawMessage(`{"101":"robin","102":"3"}`))
	require.NoError(t, err)
	assert.Equal(t, map[int]string{101: "robin", 102: "3"}, values)
}

func TestParseFieldDataNonStringValues(t *testing.T) {
	values, err := parseFieldData(json.RawMessage(`{"1":3,"2":true,"3":null,"4":["a","b"]}`))
	require.NoError(t, err)
	assert.Equal(t, "3", values[1])
	assert.Equal(t, "true", values[2])
	assert.Equal(t, "", values[3])
	assert.Equal(t, `["a","b"]`, values[4])
}

func TestParseFieldDataRejectsNonObject(t *testing.T) {
	for _, raw := range []string{`[1,2]`, `"text"`, `42`, `null`, `not json`} {
		_, err := parseFieldData(json.RawMessage(raw))
		assert.Error(t, err, "input %s should be rejected", raw)
	}
}

func TestParseFieldDataRejectsNonNumericKeys(t *testing.T) {
	_, err := parseFieldData(json.RawMessage(`{"species":"robin"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "species")
}

func newPublicRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/api/projects/:projectId/observations", CreateObservationHandler)
	return router
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateObservationHandlerPublic(t *testing.T) {
	origService := observationService
	defer func() { observationService = origService }()
	repo := newFakeRepository()
	seedProject(repo)
	observationService = NewService(repo)

	router := newPublicRouter()
	w := postJSON(router, "/api/projects/1/observations",
		`{"student_name":"Alex","field_data":{"101":"robin"}}`)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp model.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "Observation recorded successfully!", resp.Message)
}

func TestCreateObservationHandlerMissingFieldData(t *testing.T) {
	origService := observationService
	defer func() { observationService = origService }()
	repo := newFakeRepository()
	seedProject(repo)
	observationService = NewService(repo)

	router := newPublicRouter()
	w := postJSON(router, "/api/projects/1/observations", `{"student_name":"Alex"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp model.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "field_data is required.", resp.Message)
}

func TestCreateObservationHandlerNonObjectFieldData(t *testing.T) {
	origService := observationService
	defer func() { observationService = origService }()
	repo := newFakeRepository()
	seedProject(repo)
	observationService = NewService(repo)

	router := newPublicRouter()
	w := postJSON(router, "/api/projects/1/observations",
		`{"field_data":["robin","3"]}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateObservationHandlerNullFieldData(t *testing.T) {
	origService := observationService
	defer func() { observationService = origService }()
	repo := newFakeRepository()
	seedProject(repo)
	observationService = NewService(repo)

	router := newPublicRouter()
	w := postJSON(router, "/api/projects/1/observations",
		`{"student_name":"Alex","field_data":null}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp model.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
}

func TestCreateObservationHandlerForeignField(t *testing.T) {
	origService := observationService
	defer func() { observationService = origService }()
	repo := newFakeRepository()
	seedProject(repo)
	observationService = NewService(repo)

	router := newPublicRouter()
	w := postJSON(router, "/api/projects/1/observations",
		`{"field_data":{"999":"x"}}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp model.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Message, "do not belong to this project")
}

func TestCreateObservationHandlerRejectsDangerousName(t *testing.T) {
	origService := observationService
	defer func() { observationService = origService }()
	repo := newFakeRepository()
	seedProject(repo)
	observationService = NewService(repo)

	router := newPublicRouter()
	w := postJSON(router, "/api/projects/1/observations",
		`{"student_name":"<script>alert(1)</script>","field_data":{"101":"robin"}}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateObservationHandlerUnknownProject(t *testing.T) {
	origService := observationService
	defer func() { observationService = origService }()
	observationService = NewService(newFakeRepository())

	router := newPublicRouter()
	w := postJSON(router, "/api/projects/42/observations", `{"field_data":{"1":"x"}}`)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp model.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "No project with ID 42 exists.", resp.Message)
}
