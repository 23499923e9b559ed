package student

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mjescario/csafk-backend/config"
	"github.com/mjescario/csafk-backend/model"
	"github.com/mjescario/csafk-backend/utils"
)

// Repository 学生侧只读访问,按项目代码取项目与字段
type Repository interface {
	GetByCode(projectCode string) (*model.StudentProject, error)
	ListFields(projectID int) ([]model.Field, error)
}

type repositoryImpl struct{}

func NewRepository() Repository { return &repositoryImpl{} }

func (r *repositoryImpl) GetByCode(projectCode string) (*model.StudentProject, error) {
	var p model.StudentProject
	err := config.DB.QueryRow(`
		SELECT project_id, project_code, project_title, project_description, project_instructions
		FROM projects
		WHERE project_code = ?`, projectCode).
		Scan(&p.ProjectID, &p.ProjectCode, &p.ProjectTitle, &p.ProjectDescription, &p.ProjectInstructions)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repositoryImpl) ListFields(projectID int) ([]model.Field, error) {
	rows, err := config.DB.Query(`
		SELECT field_id, project_id, field_name, field_label, field_type, field_options, field_required, field_order
		FROM fields
		WHERE project_id = ?
		ORDER BY field_order ASC`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := make([]model.Field, 0)
	for rows.Next() {
		var f model.Field
		var options sql.NullString
		if err := rows.Scan(&f.FieldID, &f.ProjectID, &f.FieldName, &f.FieldLabel,
			&f.FieldType, &options, &f.FieldRequired, &f.FieldOrder); err != nil {
			return nil, err
		}
		if options.Valid && options.String != "" {
			if err := json.Unmarshal([]byte(options.String), &f.FieldOptions); err != nil {
				return nil, err
			}
		}
		fields = append(fields, f)
	}
	return fields, rows.Err()
}

var studentRepository Repository = NewRepository()

// GetProjectByCodeHandler 公开入口,学生凭项目代码获取项目与字段定义
// 响应不含 teacher_id
func GetProjectByCodeHandler(c *gin.Context) {
	projectCode := strings.ToUpper(strings.TrimSpace(c.Param("projectCode")))
	if projectCode == "" {
		utils.SendError(c, http.StatusBadRequest, "Invalid project code", "Project code is required.")
		return
	}

	project, err := studentRepository.GetByCode(projectCode)
	if err != nil {
		if err == sql.ErrNoRows {
			utils.SendError(c, http.StatusNotFound, "Project not found",
				fmt.Sprintf("No project with code %s exists.", projectCode))
			return
		}
		utils.InternalError(c, "Database error", err)
		return
	}

	fields, err := studentRepository.ListFields(project.ProjectID)
	if err != nil {
		utils.InternalError(c, "Database error", err)
		return
	}

	c.JSON(http.StatusOK, model.APIResponse{
		Success: true,
		Data: gin.H{
			"project": project,
			"fields":  fields,
		},
	})
}
