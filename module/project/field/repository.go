package field

import (
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/mjescario/csafk-backend/config"
	"github.com/mjescario/csafk-backend/model"
)

var (
	ErrProjectNotFound   = errors.New("project not found")
	ErrFieldNotFound     = errors.New("field not found")
	ErrFieldNotInProject = errors.New("field does not belong to this project")
	ErrPermissionDenied  = errors.New("permission denied")
)

type Repository interface {
	// 归属校验
	ProjectOwner(projectID int) (int, error)

	// 创建/查询
	Create(f *model.Field) (*model.Field, error)
	ListByProject(projectID int) ([]model.Field, error)
	GetByID(fieldID int) (*model.Field, error)
	NextOrder(projectID int) (int, error)

	// 变更
	Update(fieldID int, f *model.Field) error
	DeleteTx(tx *sql.Tx, fieldID int) error
}

type fieldRepository struct{}

func NewFieldRepository() Repository { return &fieldRepository{} }

func (r *fieldRepository) ProjectOwner(projectID int) (int, error) {
	var ownerID int
	err := config.DB.QueryRow("SELECT teacher_id FROM projects WHERE project_id = ?", projectID).Scan(&ownerID)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, ErrProjectNotFound
		}
		return 0, err
	}
	return ownerID, nil
}

// 选项列表序列化为 JSON 存 field_options 列，空列表存 NULL
func marshalOptions(options []string) (interface{}, error) {
	if len(options) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(options)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func unmarshalOptions(raw sql.NullString) []string {
	if !raw.Valid || raw.String == "" {
		return nil
	}
	var options []string
	if err := json.Unmarshal([]byte(raw.String), &options); err != nil {
		return nil
	}
	return options
}

func (r *fieldRepository) Create(f *model.Field) (*model.Field, error) {
	optionsJSON, err := marshalOptions(f.FieldOptions)
	if err != nil {
		return nil, err
	}

	res, err := config.DB.Exec(`
		INSERT INTO fields (project_id, field_name, field_label, field_type, field_options, field_required, field_order)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, f.ProjectID, f.FieldName, f.FieldLabel, f.FieldType, optionsJSON, f.FieldRequired, f.FieldOrder)
	if err != nil {
		return nil, err
	}
	id, _ := res.LastInsertId()
	f.FieldID = int(id)
	return f, nil
}

func (r *fieldRepository) ListByProject(projectID int) ([]model.Field, error) {
	rows, err := config.DB.Query(`
		SELECT field_id, project_id, field_name, field_label, field_type, field_options, field_required, field_order
		FROM fields
		WHERE project_id = ?
		ORDER BY field_order ASC`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Field, 0)
	for rows.Next() {
		var f model.Field
		var options sql.NullString
		if err := rows.Scan(&f.FieldID, &f.ProjectID, &f.FieldName, &f.FieldLabel,
			&f.FieldType, &options, &f.FieldRequired, &f.FieldOrder); err != nil {
			return nil, err
		}
		f.FieldOptions = unmarshalOptions(options)
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *fieldRepository) GetByID(fieldID int) (*model.Field, error) {
	var f model.Field
	var options sql.NullString
	err := config.DB.QueryRow(`
		SELECT field_id, project_id, field_name, field_label, field_type, field_options, field_required, field_order
		FROM fields
		WHERE field_id = ?`, fieldID).
		Scan(&f.FieldID, &f.ProjectID, &f.FieldName, &f.FieldLabel,
			&f.FieldType, &options, &f.FieldRequired, &f.FieldOrder)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrFieldNotFound
		}
		return nil, err
	}
	f.FieldOptions = unmarshalOptions(options)
	return &f, nil
}

func (r *fieldRepository) NextOrder(projectID int) (int, error) {
	var maxOrder int
	err := config.DB.QueryRow("SELECT COALESCE(MAX(field_order), 0) FROM fields WHERE project_id = ?", projectID).Scan(&maxOrder)
	if err != nil {
		return 0, err
	}
	return maxOrder + 1, nil
}

func (r *fieldRepository) Update(fieldID int, f *model.Field) error {
	optionsJSON, err := marshalOptions(f.FieldOptions)
	if err != nil {
		return err
	}

	_, err = config.DB.Exec(`
		UPDATE fields
		SET field_name = ?, field_label = ?, field_type = ?, field_options = ?, field_required = ?
		WHERE field_id = ?
	`, f.FieldName, f.FieldLabel, f.FieldType, optionsJSON, f.FieldRequired, fieldID)
	return err
}

func (r *fieldRepository) DeleteTx(tx *sql.Tx, fieldID int) error {
	// 先清该字段下的观测值，再删字段本身
	if _, err := tx.Exec("DELETE FROM observation_data WHERE field_id = ?", fieldID); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM fields WHERE field_id = ?", fieldID); err != nil {
		return err
	}
	return nil
}
