package student

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mjescario/csafk-backend/model"
)

type fakeRepository struct {
	projects map[string]*model.StudentProject
	fields   map[int][]model.Field
}

func (f *fakeRepository) GetByCode(projectCode string) (*model.StudentProject, error) {
	p, ok := f.projects[projectCode]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return p, nil
}

func (f *fakeRepository) ListFields(projectID int) ([]model.Field, error) {
	return f.fields[projectID], nil
}

func newStudentRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/api/student/projects/:projectCode", GetProjectByCodeHandler)
	return router
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGetProjectByCode(t *testing.T) {
	origRepo := studentRepository
	defer func() { studentRepository = origRepo }()
	studentRepository = &fakeRepository{
		projects: map[string]*model.StudentProject{
			"AB12CD34": {ProjectID: 1, ProjectCode: "AB12CD34", ProjectTitle: "Pond Study"},
		},
		fields: map[int][]model.Field{
			1: {{FieldID: 101, ProjectID: 1, FieldName: "ph", FieldType: model.FieldTypeNumber}},
		},
	}

	router := newStudentRouter()
	w := get(router, "/api/student/projects/AB12CD34")

	assert.Equal(t, http.StatusOK, w.Code)

	var resp model.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	project, ok := data["project"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Pond Study", project["project_title"])
	fields, ok := data["fields"].([]interface{})
	require.True(t, ok)
	assert.Len(t, fields, 1)
}

func TestGetProjectByCodeNormalizesInput(t *testing.T) {
	origRepo := studentRepository
	defer func() { studentRepository = origRepo }()
	studentRepository = &fakeRepository{
		projects: map[string]*model.StudentProject{
			"AB12CD34": {ProjectID: 1, ProjectCode: "AB12CD34"},
		},
		fields: map[int][]model.Field{},
	}

	router := newStudentRouter()
	// 小写与首尾空白都接受
	w := get(router, "/api/student/projects/%20ab12cd34%20")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetProjectByCodeNotFound(t *testing.T) {
	origRepo := studentRepository
	defer func() { studentRepository = origRepo }()
	studentRepository = &fakeRepository{projects: map[string]*model.StudentProject{}}

	router := newStudentRouter()
	w := get(router, "/api/student/projects/ZZZZZZZZ")

	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp model.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "No project with code ZZZZZZZZ exists.", resp.Message)
}

func TestGetProjectByCodeHidesTeacherID(t *testing.T) {
	origRepo := studentRepository
	defer func() { studentRepository = origRepo }()
	studentRepository = &fakeRepository{
		projects: map[string]*model.StudentProject{
			"AB12CD34": {ProjectID: 1, ProjectCode: "AB12CD34", ProjectTitle: "Pond Study"},
		},
		fields: map[int][]model.Field{},
	}

	router := newStudentRouter()
	w := get(router, "/api/student/projects/AB12CD34")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "teacher_id")
}
