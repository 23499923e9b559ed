package field

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
var fieldService Service = NewService(NewFieldRepository())

func parseProjectID(c *gin.Context) (int, bool) {
	projectID, err := strconv.Atoi(c.Param("projectId"))
	if err != nil {
		utils.SendError(c, http.StatusBadRequest, "Validation error", "Invalid project ID.")
		return 0, false
	}
	return projectID, true
}

// sendFieldError 字段操作共用的错误映射
func sendFieldError(c *gin.Context, projectID, fieldID int, action string, err error) {
	switch err {
	case ErrProjectNotFound:
		utils.SendError(c, http.StatusNotFound, "Project not found",
			fmt.Sprintf("No project with ID %d exists.", projectID))
	case ErrFieldNotFound:
		utils.SendError(c, http.StatusNotFound, "Field not found",
			fmt.Sprintf("No field with ID %d exists.", fieldID))
	case ErrFieldNotInProject:
		utils.SendError(c, http.StatusBadRequest, "Validation error",
			fmt.Sprintf("Field %d does not belong to this project.", fieldID))
	case ErrPermissionDenied:
		utils.SendError(c, http.StatusForbidden, "Permission denied", "You do not own this project.")
	case ErrInvalidFieldType:
		utils.SendError(c, http.StatusBadRequest, "Validation error",
			"field_type must be one of: text, textarea, number, date, time, checkbox, dropdown, radio.")
	case ErrOptionsNotAllowed:
		utils.SendError(c, http.StatusBadRequest, "Validation error",
			"field_options is only valid for checkbox, dropdown and radio fields.")
	default:
		utils.InternalError(c, "Failed to "+action+" field", err)
	}
}

// POST /api/projects/:projectId/fields
func CreateFieldHandler(c *gin.Context) {
	projectID, ok := parseProjectID(c)
	if !ok {
		return
	}

	var req model.CreateFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendError(c, http.StatusBadRequest, "Invalid request body", "No data provided.")
		return
	}

	if req.FieldName == nil {
		utils.SendError(c, http.StatusBadRequest, "Validation error", "field_name is required.")
		return
	}
	if req.FieldType == nil {
		utils.SendError(c, http.StatusBadRequest, "Validation error", "field_type is required.")
		return
	}

	*req.FieldName = utils.SanitizeInput(*req.FieldName)
	req.FieldLabel = utils.SanitizeInput(req.FieldLabel)
	if *req.FieldName == "" {
		utils.SendError(c, http.StatusBadRequest, "Validation error", "field_name must not be empty.")
		return
	}

	teacherID := c.MustGet("teacher_id").(int)
	created, err := fieldService.Create(projectID, teacherID, &req)
	if err != nil {
		sendFieldError(c, projectID, 0, "create", err)
		return
	}

	c.JSON(http.StatusCreated, model.APIResponse{
		Success: true,
		Message: "Field created successfully!",
		Data:    created,
	})
}

// GET /api/projects/:projectId/fields
func ListFieldsHandler(c *gin.Context) {
	projectID, ok := parseProjectID(c)
	if !ok {
		return
	}

	teacherID := c.MustGet("teacher_id").(int)
	fields, err := fieldService.List(projectID, teacherID)
	if err != nil {
		sendFieldError(c, projectID, 0, "list", err)
		return
	}

	c.JSON(http.StatusOK, model.APIResponse{Success: true, Data: fields})
}

// PUT /api/projects/:projectId/fields/:fieldId
func UpdateFieldHandler(c *gin.Context) {
	projectID, ok := parseProjectID(c)
	if !ok {
		return
	}
	fieldID, err := strconv.Atoi(c.Param("fieldId"))
	if err != nil {
		utils.SendError(c, http.StatusBadRequest, "Validation error", "Invalid field ID.")
		return
	}

	var upd model.FieldUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		utils.SendError(c, http.StatusBadRequest, "Invalid request body", "No data provided.")
		return
	}

	if upd.FieldName != nil {
		*upd.FieldName = utils.SanitizeInput(*upd.FieldName)
	}
	if upd.FieldLabel != nil {
		*upd.FieldLabel = utils.SanitizeInput(*upd.FieldLabel)
	}

	teacherID := c.MustGet("teacher_id").(int)
	updated, err := fieldService.Update(projectID, fieldID, teacherID, &upd)
	if err != nil {
		sendFieldError(c, projectID, fieldID, "update", err)
		return
	}

	c.JSON(http.StatusOK, model.APIResponse{
		Success: true,
		Message: fmt.Sprintf("Field ID:%d updated successfully.", fieldID),
		Data:    updated,
	})
}

// DELETE /api/projects/:projectId/fields/:fieldId
func DeleteFieldHandler(c *gin.Context) {
	projectID, ok := parseProjectID(c)
	if !ok {
		return
	}
	fieldID, err := strconv.Atoi(c.Param("fieldId"))
	if err != nil {
		utils.SendError(c, http.StatusBadRequest, "Validation error", "Invalid field ID.")
		return
	}

	teacherID := c.MustGet("teacher_id").(int)

	tx, err := config.DB.Begin()
	if err != nil {
		utils.InternalError(c, "Failed to delete field", err)
		return
	}
	defer tx.Rollback()

	if err := fieldService.Delete(tx, projectID, fieldID, teacherID); err != nil {
		sendFieldError(c, projectID, fieldID, "delete", err)
		return
	}

	if err := tx.Commit(); err != nil {
		utils.InternalError(c, "Failed to delete field", err)
		return
	}

	c.JSON(http.StatusOK, model.APIResponse{
		Success: true,
		Message: fmt.Sprintf("Field ID:%d deleted successfully.", fieldID),
	})
}
