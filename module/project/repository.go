package project

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/mjescario/csafk-backend/config"
	"github.com/mjescario/csafk-backend/model"
)

var (
	ErrProjectNotFound  = errors.New("project not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrNoUpdateFields   = errors.New("no valid fields to update")
)

type Repository interface {
	// 项目码查重
	CodeExists(code string) (bool, error)

	// 创建/查询
	Create(p *model.Project) (*model.Project, error)
	GetByID(projectID int) (*model.Project, error)
	ListByTeacher(teacherID int) ([]model.Project, error)

	// 归属校验
	OwnerID(projectID int) (int, error)

	// 部分更新
	Update(projectID int, upd *model.ProjectUpdate) error

	// 级联删除，在事务中执行
	DeleteCascadeTx(tx *sql.Tx, projectID int) error
}

type projectRepository struct{}

func NewProjectRepository() Repository { return &projectRepository{} }

func (r *projectRepository) CodeExists(code string) (bool, error) {
	var count int
	err := config.DB.QueryRow("SELECT COUNT(*) FROM projects WHERE project_code = ?", code).Scan(&count)
	return count > 0, err
}

func (r *projectRepository) Create(p *model.Project) (*model.Project, error) {
	res, err := config.DB.Exec(`
		INSERT INTO projects (teacher_id, project_code, project_title, project_description, project_instructions)
		VALUES (?, ?, ?, ?, ?)
	`, p.TeacherID, p.ProjectCode, p.ProjectTitle, p.ProjectDescription, p.ProjectInstructions)
	if err != nil {
		return nil, err
	}
	id, _ := res.LastInsertId()
	p.ProjectID = int(id)
	return p, nil
}

func scanProject(row interface{ Scan(...interface{}) error }) (*model.Project, error) {
	var p model.Project
	var createTime sql.NullTime
	err := row.Scan(&p.ProjectID, &p.TeacherID, &p.ProjectCode,
		&p.ProjectTitle, &p.ProjectDescription, &p.ProjectInstructions, &createTime)
	if err != nil {
		return nil, err
	}
	if createTime.Valid {
		p.CreateTime = createTime.Time.Format("2006-01-02 15:04:05")
	}
	return &p, nil
}

func (r *projectRepository) GetByID(projectID int) (*model.Project, error) {
	p, err := scanProject(config.DB.QueryRow(`
		SELECT project_id, teacher_id, project_code, project_title, project_description, project_instructions, create_time
		FROM projects
		WHERE project_id = ?`, projectID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *projectRepository) ListByTeacher(teacherID int) ([]model.Project, error) {
	// 按插入顺序返回
	rows, err := config.DB.Query(`
		SELECT project_id, teacher_id, project_code, project_title, project_description, project_instructions, create_time
		FROM projects
		WHERE teacher_id = ?
		ORDER BY project_id ASC`, teacherID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *projectRepository) OwnerID(projectID int) (int, error) {
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

func (r *projectRepository) Update(projectID int, upd *model.ProjectUpdate) error {
	setClauses := make([]string, 0, 3)
	args := make([]interface{}, 0, 4)

	if upd.ProjectTitle != nil {
		setClauses = append(setClauses, "project_title = ?")
		args = append(args, *upd.ProjectTitle)
	}
	if upd.ProjectDescription != nil {
		setClauses = append(setClauses, "project_description = ?")
		args = append(args, *upd.ProjectDescription)
	}
	if upd.ProjectInstructions != nil {
		setClauses = append(setClauses, "project_instructions = ?")
		args = append(args, *upd.ProjectInstructions)
	}
	if len(setClauses) == 0 {
		return ErrNoUpdateFields
	}

	args = append(args, projectID)
	_, err := config.DB.Exec(
		"UPDATE projects SET "+strings.Join(setClauses, ", ")+" WHERE project_id = ?", args...)
	return err
}

func (r *projectRepository) DeleteCascadeTx(tx *sql.Tx, projectID int) error {
	// 自底向上清理，保证不留孤儿行
	if _, err := tx.Exec("DELETE FROM observation_data WHERE observation_id IN (SELECT observation_id FROM observations WHERE project_id = ?)", projectID); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM observations WHERE project_id = ?", projectID); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM fields WHERE project_id = ?", projectID); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM projects WHERE project_id = ?", projectID); err != nil {
		return err
	}
	return nil
}
