package observation

import (
	"database/sql"
	"errors"
	"sort"

	"github.com/mjescario/csafk-backend/config"
	"github.com/mjescario/csafk-backend/model"
)

var (
	ErrProjectNotFound         = errors.New("project not found")
	ErrObservationNotFound     = errors.New("observation not found")
	ErrObservationNotInProject = errors.New("observation does not belong to this project")
	ErrFieldNotInProject       = errors.New("field does not belong to this project")
	ErrPermissionDenied        = errors.New("permission denied")
)

// Repository 定义观测记录数据访问接口
type Repository interface {
	// 项目归属
	ProjectOwner(projectID int) (int, error)

	// 项目字段表，按 field_id 索引，用于提交校验与元数据回显
	ProjectFields(projectID int) (map[int]model.Field, error)

	// 保存观测记录与逐字段的值
	Save(obs *model.Observation, values map[int]string) (int, error)

	// 查询，值带字段元数据
	ListByProject(projectID int) ([]model.Observation, error)
	GetByID(observationID int) (*model.Observation, error)

	// 变更
	Update(observationID int, studentName *string, values map[int]string) error
	DeleteTx(tx *sql.Tx, observationID int) error
}

type repositoryImpl struct{}

func NewRepository() Repository { return &repositoryImpl{} }

func (r *repositoryImpl) ProjectOwner(projectID int) (int, error) {
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

func (r *repositoryImpl) ProjectFields(projectID int) (map[int]model.Field, error) {
	rows, err := config.DB.Query(`
		SELECT field_id, field_name, field_label, field_type, field_required
		FROM fields
		WHERE project_id = ?`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := make(map[int]model.Field)
	for rows.Next() {
		var f model.Field
		if err := rows.Scan(&f.FieldID, &f.FieldName, &f.FieldLabel, &f.FieldType, &f.FieldRequired); err != nil {
			return nil, err
		}
		f.ProjectID = projectID
		fields[f.FieldID] = f
	}
	return fields, rows.Err()
}

// sortedFieldIDs 固定插入顺序，便于测试与回显稳定
func sortedFieldIDs(values map[int]string) []int {
	ids := make([]int, 0, len(values))
	for id := range values {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (r *repositoryImpl) Save(obs *model.Observation, values map[int]string) (int, error) {
	db := config.DB

	tx, err := db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var studentName interface{}
	if obs.StudentName != "" {
		studentName = obs.StudentName
	}

	result, err := tx.Exec(`
		INSERT INTO observations (project_id, student_name)
		VALUES (?, ?)`, obs.ProjectID, studentName)
	if err != nil {
		return 0, err
	}
	observationID, _ := result.LastInsertId()

	// 每个提交的字段存一行
	for _, fieldID := range sortedFieldIDs(values) {
		if _, err := tx.Exec(`
			INSERT INTO observation_data (observation_id, field_id, field_value)
			VALUES (?, ?, ?)`, observationID, fieldID, values[fieldID]); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return int(observationID), nil
}

// getValues 取一条观测记录的全部值，JOIN 字段元数据
func (r *repositoryImpl) getValues(observationID int) ([]model.ObservationValue, error) {
	rows, err := config.DB.Query(`
		SELECT d.data_id, d.field_id, f.field_name, f.field_label, d.field_value
		FROM observation_data d
		JOIN fields f ON d.field_id = f.field_id
		WHERE d.observation_id = ?
		ORDER BY f.field_order ASC, d.data_id ASC`, observationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	values := make([]model.ObservationValue, 0)
	for rows.Next() {
		var v model.ObservationValue
		if err := rows.Scan(&v.DataID, &v.FieldID, &v.FieldName, &v.FieldLabel, &v.FieldValue); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

func scanObservation(row interface{ Scan(...interface{}) error }) (*model.Observation, error) {
	var obs model.Observation
	var studentName sql.NullString
	var createTime sql.NullTime
	if err := row.Scan(&obs.ObservationID, &obs.ProjectID, &studentName, &createTime); err != nil {
		return nil, err
	}
	obs.StudentName = studentName.String
	if createTime.Valid {
		obs.CreateTime = createTime.Time.Format("2006-01-02 15:04:05")
	}
	return &obs, nil
}

func (r *repositoryImpl) ListByProject(projectID int) ([]model.Observation, error) {
	rows, err := config.DB.Query(`
		SELECT observation_id, project_id, student_name, create_time
		FROM observations
		WHERE project_id = ?
		ORDER BY observation_id ASC`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	observations := make([]model.Observation, 0)
	for rows.Next() {
		obs, err := scanObservation(rows)
		if err != nil {
			return nil, err
		}
		observations = append(observations, *obs)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range observations {
		values, err := r.getValues(observations[i].ObservationID)
		if err != nil {
			return nil, err
		}
		observations[i].FieldValues = values
	}
	return observations, nil
}

func (r *repositoryImpl) GetByID(observationID int) (*model.Observation, error) {
	obs, err := scanObservation(config.DB.QueryRow(`
		SELECT observation_id, project_id, student_name, create_time
		FROM observations
		WHERE observation_id = ?`, observationID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrObservationNotFound
		}
		return nil, err
	}

	values, err := r.getValues(observationID)
	if err != nil {
		return nil, err
	}
	obs.FieldValues = values
	return obs, nil
}

func (r *repositoryImpl) Update(observationID int, studentName *string, values map[int]string) error {
	db := config.DB

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if studentName != nil {
		if _, err := tx.Exec("UPDATE observations SET student_name = ? WHERE observation_id = ?",
			*studentName, observationID); err != nil {
			return err
		}
	}

	// 提交的字段按 field_id 覆盖，未提及的保持原值
	for _, fieldID := range sortedFieldIDs(values) {
		if _, err := tx.Exec("DELETE FROM observation_data WHERE observation_id = ? AND field_id = ?",
			observationID, fieldID); err != nil {
			return err
		}
		if _, err := tx.Exec(`
			INSERT INTO observation_data (observation_id, field_id, field_value)
			VALUES (?, ?, ?)`, observationID, fieldID, values[fieldID]); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *repositoryImpl) DeleteTx(tx *sql.Tx, observationID int) error {
	if _, err := tx.Exec("DELETE FROM observation_data WHERE observation_id = ?", observationID); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM observations WHERE observation_id = ?", observationID); err != nil {
		return err
	}
	return nil
}
