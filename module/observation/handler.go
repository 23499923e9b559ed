package observation

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mjescario/csafk-backend/config"
	"github.com/mjescario/csafk-backend/model"
	"github.com/mjescario/csafk-backend/utils"
)

var observationService Service = NewService(NewRepository())

type submitRequest struct {
	StudentName string          `json:"student_name"`
	FieldData   json.RawMessage `json:"field_data"`
}

// parseFieldData 把 JSON 对象转成 field_id → 字符串值
// 非字符串值按 JSON 文本存储
func parseFieldData(raw json.RawMessage) (map[int]string, error) {
	var object map[string]interface{}
	// null 也能解组成功但得到 nil map,同样按非对象拒绝
	if err := json.Unmarshal(raw, &object); err != nil || object == nil {
		return nil, fmt.Errorf("field_data must be a JSON object mapping field_id to value")
	}

	values := make(map[int]string, len(object))
	for key, value := range object {
		fieldID, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("field_data keys must be numeric field_ids, got '%s'", key)
		}
		switch v := value.(type) {
		case string:
			values[fieldID] = v
		case nil:
			values[fieldID] = ""
		default:
			encoded, _ := json.Marshal(v)
			values[fieldID] = string(encoded)
		}
	}
	return values, nil
}

func parseProjectID(c *gin.Context) (int, bool) {
	projectID, err := strconv.Atoi(c.Param("projectId"))
	if err != nil {
		utils.SendError(c, http.StatusBadRequest, "Invalid project ID", "Project ID must be a number.")
		return 0, false
	}
	return projectID, true
}

func parseObservationID(c *gin.Context) (int, bool) {
	observationID, err := strconv.Atoi(c.Param("observationId"))
	if err != nil {
		utils.SendError(c, http.StatusBadRequest, "Invalid observation ID", "Observation ID must be a number.")
		return 0, false
	}
	return observationID, true
}

// sendObservationError 按校验链结果统一回应
func sendObservationError(c *gin.Context, projectID, observationID int, err error) {
	switch err {
	case ErrProjectNotFound:
		utils.SendError(c, http.StatusNotFound, "Project not found",
			fmt.Sprintf("No project with ID %d exists.", projectID))
	case ErrObservationNotFound:
		utils.SendError(c, http.StatusNotFound, "Observation not found",
			fmt.Sprintf("No observation with ID %d exists.", observationID))
	case ErrObservationNotInProject:
		utils.SendError(c, http.StatusBadRequest, "Observation mismatch",
			fmt.Sprintf("Observation %d does not belong to this project.", observationID))
	case ErrFieldNotInProject:
		utils.SendError(c, http.StatusBadRequest, "Invalid field_data",
			"One or more field_ids in field_data do not belong to this project.")
	case ErrPermissionDenied:
		utils.SendError(c, http.StatusForbidden, "Permission denied",
			"You do not own this project.")
	default:
		utils.InternalError(c, "Database error", err)
	}
}

// CreateObservationHandler 公开提交入口,无需登录
func CreateObservationHandler(c *gin.Context) {
	projectID, ok := parseProjectID(c)
	if !ok {
		return
	}

	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendError(c, http.StatusBadRequest, "Invalid request", "Request body must be valid JSON.")
		return
	}
	if len(req.FieldData) == 0 {
		utils.SendError(c, http.StatusBadRequest, "Missing field", "field_data is required.")
		return
	}

	fieldData, err := parseFieldData(req.FieldData)
	if err != nil {
		utils.SendError(c, http.StatusBadRequest, "Invalid field_data", err.Error())
		return
	}

	if utils.ContainsDangerousChars(req.StudentName) {
		utils.SendError(c, http.StatusBadRequest, "Invalid input", "student_name contains disallowed content.")
		return
	}
	studentName := utils.SanitizeInput(req.StudentName)

	obs, err := observationService.Create(projectID, studentName, fieldData)
	if err != nil {
		sendObservationError(c, projectID, 0, err)
		return
	}

	c.JSON(http.StatusCreated, model.APIResponse{
		Success: true,
		Data:    obs,
		Message: "Observation recorded successfully!",
	})
}

func ListObservationsHandler(c *gin.Context) {
	projectID, ok := parseProjectID(c)
	if !ok {
		return
	}
	teacherID := c.GetInt("teacher_id")

	observations, err := observationService.List(projectID, teacherID)
	if err != nil {
		sendObservationError(c, projectID, 0, err)
		return
	}

	c.JSON(http.StatusOK, model.APIResponse{Success: true, Data: observations})
}

func GetObservationHandler(c *gin.Context) {
	projectID, ok := parseProjectID(c)
	if !ok {
		return
	}
	observationID, ok := parseObservationID(c)
	if !ok {
		return
	}
	teacherID := c.GetInt("teacher_id")

	obs, err := observationService.Get(projectID, observationID, teacherID)
	if err != nil {
		sendObservationError(c, projectID, observationID, err)
		return
	}

	c.JSON(http.StatusOK, model.APIResponse{Success: true, Data: obs})
}

func UpdateObservationHandler(c *gin.Context) {
	projectID, ok := parseProjectID(c)
	if !ok {
		return
	}
	observationID, ok := parseObservationID(c)
	if !ok {
		return
	}
	teacherID := c.GetInt("teacher_id")

	var body struct {
		StudentName *string         `json:"student_name"`
		FieldData   json.RawMessage `json:"field_data"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.SendError(c, http.StatusBadRequest, "Invalid request", "Request body must be valid JSON.")
		return
	}

	upd := &model.ObservationUpdate{StudentName: body.StudentName}
	if len(body.FieldData) > 0 {
		fieldData, err := parseFieldData(body.FieldData)
		if err != nil {
			utils.SendError(c, http.StatusBadRequest, "Invalid field_data", err.Error())
			return
		}
		upd.FieldData = fieldData
	}

	if upd.StudentName == nil && len(upd.FieldData) == 0 {
		utils.SendError(c, http.StatusBadRequest, "No update fields", "No valid fields to update.")
		return
	}
	if upd.StudentName != nil {
		if utils.ContainsDangerousChars(*upd.StudentName) {
			utils.SendError(c, http.StatusBadRequest, "Invalid input", "student_name contains disallowed content.")
			return
		}
		sanitized := utils.SanitizeInput(*upd.StudentName)
		upd.StudentName = &sanitized
	}

	obs, err := observationService.Update(projectID, observationID, teacherID, upd)
	if err != nil {
		sendObservationError(c, projectID, observationID, err)
		return
	}

	c.JSON(http.StatusOK, model.APIResponse{
		Success: true,
		Data:    obs,
		Message: fmt.Sprintf("Observation ID:%d updated successfully.", observationID),
	})
}

func DeleteObservationHandler(c *gin.Context) {
	projectID, ok := parseProjectID(c)
	if !ok {
		return
	}
	observationID, ok := parseObservationID(c)
	if !ok {
		return
	}
	teacherID := c.GetInt("teacher_id")

	tx, err := config.DB.Begin()
	if err != nil {
		utils.InternalError(c, "Database error", err)
		return
	}
	defer tx.Rollback()

	if err := observationService.Delete(tx, projectID, observationID, teacherID); err != nil {
		sendObservationError(c, projectID, observationID, err)
		return
	}
	if err := tx.Commit(); err != nil {
		utils.InternalError(c, "Database error", err)
		return
	}

	c.JSON(http.StatusOK, model.APIResponse{
		Success: true,
		Message: fmt.Sprintf("Observation ID:%d deleted successfully.", observationID),
	})
}
