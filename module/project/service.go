package project

import (
	"database/sql"
	"errors"

	"github.com/mjescario/csafk-backend/model"
	"github.com/mjescario/csafk-backend/utils"
)

type Service interface {
	// 创建时生成唯一项目码
	Create(req *model.CreateProjectRequest) (*model.Project, error)

	// 查询
	Get(projectID int) (*model.Project, error)
	ListByTeacher(teacherID int) ([]model.Project, error)

	// 变更，带归属校验
	Update(projectID, teacherID int, upd *model.ProjectUpdate) (*model.Project, error)
	Delete(tx *sql.Tx, projectID, teacherID int) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// generateUniqueCode 随机生成项目码，对库查重直到唯一
func (s *service) generateUniqueCode() (string, error) {
	for {
		code := utils.GenerateProjectCode(model.ProjectCodeLength)
		exists, err := s.repo.CodeExists(code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
}

func (s *service) Create(req *model.CreateProjectRequest) (*model.Project, error) {
	if req == nil {
		return nil, errors.New("nil request")
	}

	code, err := s.generateUniqueCode()
	if err != nil {
		return nil, err
	}

	p := &model.Project{
		TeacherID:           *req.TeacherID,
		ProjectCode:         code,
		ProjectTitle:        *req.ProjectTitle,
		ProjectDescription:  *req.ProjectDescription,
		ProjectInstructions: *req.ProjectInstructions,
	}
	return s.repo.Create(p)
}

func (s *service) Get(projectID int) (*model.Project, error) {
	return s.repo.GetByID(projectID)
}

func (s *service) ListByTeacher(teacherID int) ([]model.Project, error) {
	return s.repo.ListByTeacher(teacherID)
}

func (s *service) Update(projectID, teacherID int, upd *model.ProjectUpdate) (*model.Project, error) {
	ownerID, err := s.repo.OwnerID(projectID)
	if err != nil {
		return nil, err
	}
	if ownerID != teacherID {
		return nil, ErrPermissionDenied
	}

	if err := s.repo.Update(projectID, upd); err != nil {
		return nil, err
	}
	return s.repo.GetByID(projectID)
}

func (s *service) Delete(tx *sql.Tx, projectID, teacherID int) error {
	ownerID, err := s.repo.OwnerID(projectID)
	if err != nil {
		return err
	}
	if ownerID != teacherID {
		return ErrPermissionDenied
	}
	return s.repo.DeleteCascadeTx(tx, projectID)
}
