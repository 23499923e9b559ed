package project

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/mjescario/csafk-backend/config"
	"github.com/mjescario/csafk-backend/model"
	"github.com/mjescario/csafk-backend/utils"

	"github.com/gin-gonic/gin"
)

// 依赖注入：默认使用真实实现；也可在测试中替换
var projectService Service = NewService(NewProjectRepository())

// POST /api/projects
// 创建项目，项目码由服务端生成
func CreateProjectHandler(c *gin.Context) {
	var req model.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendError(c, http.StatusBadRequest, "Invalid request body", "No data provided.")
		return
	}

	// 逐个校验必填字段，缺哪个报哪个
	switch {
	case req.TeacherID == nil:
		utils.SendError(c, http.StatusBadRequest, "Validation error", "teacher_id is required.")
		return
	case req.ProjectTitle == nil:
		utils.SendError(c, http.StatusBadRequest, "Validation error", "project_title is required.")
		return
	case req.ProjectDescription == nil:
		utils.SendError(c, http.StatusBadRequest, "Validation error", "project_description is required.")
		return
	case req.ProjectInstructions == nil:
		utils.SendError(c, http.StatusBadRequest, "Validation error", "project_instructions is required.")
		return
	}

	teacherID := c.MustGet("teacher_id").(int)
	if *req.TeacherID != teacherID {
		utils.SendError(c, http.StatusForbidden, "Permission denied", "You cannot create projects for another teacher.")
		return
	}

	if utils.ContainsDangerousChars(*req.ProjectTitle) || utils.ContainsDangerousChars(*req.ProjectDescription) ||
		utils.ContainsDangerousChars(*req.ProjectInstructions) {
		utils.SendError(c, http.StatusBadRequest, "Validation error", "Project text contains disallowed characters.")
		return
	}

	*req.ProjectTitle = utils.SanitizeInput(*req.ProjectTitle)
	*req.ProjectDescription = utils.SanitizeInput(*req.ProjectDescription)
	*req.ProjectInstructions = utils.SanitizeInput(*req.ProjectInstructions)

	if *req.ProjectTitle == "" {
		utils.SendError(c, http.StatusBadRequest, "Validation error", "project_title must not be empty.")
		return
	}

	created, err := projectService.Create(&req)
	if err != nil {
		utils.InternalError(c, "Failed to create project", err)
		return
	}

	c.JSON(http.StatusCreated, model.APIResponse{
		Success: true,
		Message: "Project created successfully!",
		Data:    created,
	})
}

// GET /api/projects/:projectId
func GetProjectHandler(c *gin.Context) {
	projectID, err := strconv.Atoi(c.Param("projectId"))
	if err != nil {
		utils.SendError(c, http.StatusBadRequest, "Validation error", "Invalid project ID.")
		return
	}

	p, err := projectService.Get(projectID)
	if err != nil {
		if err == ErrProjectNotFound {
			utils.SendError(c, http.StatusNotFound, "Project not found.",
				fmt.Sprintf("No project with ID #%d exists.", projectID))
			return
		}
		utils.InternalError(c, "Failed to fetch project", err)
		return
	}

	c.JSON(http.StatusOK, model.APIResponse{Success: true, Data: p})
}

// GET /api/users/:teacherId/projects
// 只允许教师查看自己的项目列表
func ListTeacherProjectsHandler(c *gin.Context) {
	teacherID, err := strconv.Atoi(c.Param("teacherId"))
	if err != nil {
		utils.SendError(c, http.StatusBadRequest, "Validation error", "Invalid teacher ID.")
		return
	}

	sessionTeacherID := c.MustGet("teacher_id").(int)
	if teacherID != sessionTeacherID {
		utils.SendError(c, http.StatusForbidden, "Permission denied", "You can only list your own projects.")
		return
	}

	projects, err := projectService.ListByTeacher(teacherID)
	if err != nil {
		utils.InternalError(c, "Failed to list projects", err)
		return
	}

	c.JSON(http.StatusOK, model.APIResponse{Success: true, Data: projects})
}

// PUT /api/projects/:projectId
// 部分更新标题/描述/说明
func UpdateProjectHandler(c *gin.Context) {
	projectID, err := strconv.Atoi(c.Param("projectId"))
	if err != nil {
		utils.SendError(c, http.StatusBadRequest, "Validation error", "Invalid project ID.")
		return
	}

	var upd model.ProjectUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		utils.SendError(c, http.StatusBadRequest, "Invalid request body", "No data provided.")
		return
	}

	for _, field := range []*string{upd.ProjectTitle, upd.ProjectDescription, upd.ProjectInstructions} {
		if field == nil {
			continue
		}
		if utils.ContainsDangerousChars(*field) {
			utils.SendError(c, http.StatusBadRequest, "Validation error", "Project text contains disallowed characters.")
			return
		}
		*field = utils.SanitizeInput(*field)
	}

	teacherID := c.MustGet("teacher_id").(int)
	updated, err := projectService.Update(projectID, teacherID, &upd)
	if err != nil {
		switch err {
		case ErrProjectNotFound:
			utils.SendError(c, http.StatusNotFound, "Project not found",
				fmt.Sprintf("No project with ID %d exists.", projectID))
		case ErrPermissionDenied:
			utils.SendError(c, http.StatusForbidden, "Permission denied", "You do not own this project.")
		case ErrNoUpdateFields:
			utils.SendError(c, http.StatusBadRequest, "Validation error", "No valid fields to update.")
		default:
			utils.InternalError(c, "Failed to update project", err)
		}
		return
	}

	c.JSON(http.StatusOK, model.APIResponse{
		Success: true,
		Message: fmt.Sprintf("Project ID:%d updated successfully.", projectID),
		Data:    updated,
	})
}

// DELETE /api/projects/:projectId
// 级联删除项目与其字段、观测记录
func DeleteProjectHandler(c *gin.Context) {
	projectID, err := strconv.Atoi(c.Param("projectId"))
	if err != nil {
		utils.SendError(c, http.StatusBadRequest, "Validation error", "Invalid project ID.")
		return
	}

	teacherID := c.MustGet("teacher_id").(int)

	tx, err := config.DB.Begin()
	if err != nil {
		utils.InternalError(c, "Failed to delete project", err)
		return
	}
	defer tx.Rollback()

	if err := projectService.Delete(tx, projectID, teacherID); err != nil {
		switch err {
		case ErrProjectNotFound:
			utils.SendError(c, http.StatusNotFound, "Project not found",
				fmt.Sprintf("No project with ID %d exists.", projectID))
		case ErrPermissionDenied:
			utils.SendError(c, http.StatusForbidden, "Permission denied", "You do not own this project.")
		default:
			utils.InternalError(c, "Failed to delete project", err)
		}
		return
	}

	if err := tx.Commit(); err != nil {
		utils.InternalError(c, "Failed to delete project", err)
		return
	}

	c.JSON(http.StatusOK, model.APIResponse{
		Success: true,
		Message: fmt.Sprintf("Project ID:%d deleted successfully.", projectID),
	})
}
