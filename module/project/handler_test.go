package project

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

func newTestRouter(teacherID int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("teacher_id", teacherID)
	})
	router.POST("/api/projects", CreateProjectHandler)
	router.GET("/api/projects/:projectId", GetProjectHandler)
	router.PUT("/api/projects/:projectId", UpdateProjectHandler)
	router.GET("/api/users/:teacherId/projects", ListTeacherProjectsHandler)
	return router
}

func doJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) model.APIResponse {
	t.Helper()
	var resp model.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestCreateProjectMissingFields(t *testing.T) {
	origService := projectService
	defer func() { projectService = origService }()
	projectService = NewService(newFakeRepository())

	router := newTestRouter(1)

	tests := []struct {
		name    string
		body    gin.H
		message string
	}{
		{
			"缺teacher_id",
			gin.H{"project_title": "t", "project_description": "d", "project_instructions": "i"},
			"teacher_id is required.",
		},
		{
			"缺project_title",
			gin.H{"teacher_id": 1, "project_description": "d", "project_instructions": "i"},
			"project_title is required.",
		},
		{
			"缺project_description",
			gin.H{"teacher_id": 1, "project_title": "t", "project_instructions": "i"},
			"project_description is required.",
		},
		{
			"缺project_instructions",
			gin.H{"teacher_id": 1, "project_title": "t", "project_description": "d"},
			"project_instructions is required.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(router, http.MethodPost, "/api/projects", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.message, resp.Message)
		})
	}
}

func TestCreateProjectSuccess(t *testing.T) {
	origService := projectService
	defer func() { projectService = origService }()
	repo := newFakeRepository()
	projectService = NewService(repo)

	router := newTestRouter(1)
	w := doJSON(router, http.MethodPost, "/api/projects", gin.H{
		"teacher_id":           1,
		"project_title":        "Pond Water Quality",
		"project_description":  "Weekly pH readings",
		"project_instructions": "Use the provided strips",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, "Project created successfully!", resp.Message)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Len(t, data["project_code"], model.ProjectCodeLength)
	assert.Equal(t, "Pond Water Quality", data["project_title"])
}

func TestCreateProjectForAnotherTeacher(t *testing.T) {
	origService := projectService
	defer func() { projectService = origService }()
	projectService = NewService(newFakeRepository())

	router := newTestRouter(1)
	w := doJSON(router, http.MethodPost, "/api/projects", gin.H{
		"teacher_id":           2,
		"project_title":        "t",
		"project_description":  "d",
		"project_instructions": "i",
	})

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCreateProjectRejectsDangerousTitle(t *testing.T) {
	origService := projectService
	defer func() { projectService = origService }()
	projectService = NewService(newFakeRepository())

	router := newTestRouter(1)
	w := doJSON(router, http.MethodPost, "/api/projects", gin.H{
		"teacher_id":           1,
		"project_title":        "<script>alert(1)</script>",
		"project_description":  "d",
		"project_instructions": "i",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetProjectNotFound(t *testing.T) {
	origService := projectService
	defer func() { projectService = origService }()
	projectService = NewService(newFakeRepository())

	router := newTestRouter(1)
	w := doJSON(router, http.MethodGet, "/api/projects/99", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, "No project with ID #99 exists.", resp.Message)
}

func TestListProjectsOnlyOwn(t *testing.T) {
	origService := projectService
	defer func() { projectService = origService }()
	repo := newFakeRepository()
	repo.projects[1] = &model.Project{ProjectID: 1, TeacherID: 1, ProjectTitle: "mine"}
	repo.projects[2] = &model.Project{ProjectID: 2, TeacherID: 2, ProjectTitle: "theirs"}
	projectService = NewService(repo)

	router := newTestRouter(1)

	w := doJSON(router, http.MethodGet, "/api/users/2/projects", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(router, http.MethodGet, "/api/users/1/projects", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	list, ok := resp.Data.([]interface{})
	require.True(t, ok)
	assert.Len(t, list, 1)
}

func TestUpdateProjectNotFoundMessage(t *testing.T) {
	origService := projectService
	defer func() { projectService = origService }()
	projectService = NewService(newFakeRepository())

	router := newTestRouter(1)
	w := doJSON(router, http.MethodPut, "/api/projects/7", gin.H{"project_title": "new"})

	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, "No project with ID 7 exists.", resp.Message)
}

func TestUpdateProjectEmptyPatch(t *testing.T) {
	origService := projectService
	defer func() { projectService = origService }()
	repo := newFakeRepository()
	repo.projects[7] = &model.Project{ProjectID: 7, TeacherID: 1}
	projectService = NewService(repo)

	router := newTestRouter(1)
	w := doJSON(router, http.MethodPut, "/api/projects/7", gin.H{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, "No valid fields to update.", resp.Message)
}
