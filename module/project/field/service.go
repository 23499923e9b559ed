package field

import (
	"database/sql"
	"errors"

	"github.com/mjescario/csafk-backend/model"
)

var (
	ErrInvalidFieldType  = errors.New("invalid field type")
	ErrOptionsNotAllowed = errors.New("field_options only valid for choice field types")
)

type Service interface {
	Create(projectID, teacherID int, req *model.CreateFieldRequest) (*model.Field, error)
	List(projectID, teacherID int) ([]model.Field, error)
	Update(projectID, fieldID, teacherID int, upd *model.FieldUpdate) (*model.Field, error)
	Delete(tx *sql.Tx, projectID, fieldID, teacherID int) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(projectID, teacherID int, req *model.CreateFieldRequest) (*model.Field, error) {
	ownerID, err := s.repo.ProjectOwner(projectID)
	if err != nil {
		return nil, err
	}
	if ownerID != teacherID {
		return nil, ErrPermissionDenied
	}

	if !model.IsValidFieldType(*req.FieldType) {
		return nil, ErrInvalidFieldType
	}
	if len(req.FieldOptions) > 0 && !model.IsChoiceFieldType(*req.FieldType) {
		return nil, ErrOptionsNotAllowed
	}

	order, err := s.repo.NextOrder(projectID)
	if err != nil {
		return nil, err
	}

	f := &model.Field{
		ProjectID:     projectID,
		FieldName:     *req.FieldName,
		FieldLabel:    req.FieldLabel,
		FieldType:     *req.FieldType,
		FieldOptions:  req.FieldOptions,
		FieldRequired: req.FieldRequired,
		FieldOrder:    order,
	}
	return s.repo.Create(f)
}

func (s *service) List(projectID, teacherID int) ([]model.Field, error) {
	ownerID, err := s.repo.ProjectOwner(projectID)
	if err != nil {
		return nil, err
	}
	if ownerID != teacherID {
		return nil, ErrPermissionDenied
	}
	return s.repo.ListByProject(projectID)
}

// checkField 校验链：项目存在 → 字段存在 → 字段属于该项目 → 请求者拥有该项目
// 归属错误（400）先于权限错误（403），避免用 403 暴露字段归属
func (s *service) checkField(projectID, fieldID, teacherID int) (*model.Field, error) {
	ownerID, err := s.repo.ProjectOwner(projectID)
	if err != nil {
		return nil, err
	}

	f, err := s.repo.GetByID(fieldID)
	if err != nil {
		return nil, err
	}
	if f.ProjectID != projectID {
		return nil, ErrFieldNotInProject
	}

	if ownerID != teacherID {
		return nil, ErrPermissionDenied
	}
	return f, nil
}

func (s *service) Update(projectID, fieldID, teacherID int, upd *model.FieldUpdate) (*model.Field, error) {
	f, err := s.checkField(projectID, fieldID, teacherID)
	if err != nil {
		return nil, err
	}

	if upd.FieldName != nil {
		f.FieldName = *upd.FieldName
	}
	if upd.FieldLabel != nil {
		f.FieldLabel = *upd.FieldLabel
	}
	if upd.FieldType != nil {
		if !model.IsValidFieldType(*upd.FieldType) {
			return nil, ErrInvalidFieldType
		}
		f.FieldType = *upd.FieldType
	}
	if upd.FieldOptions != nil {
		f.FieldOptions = *upd.FieldOptions
	}
	if upd.FieldRequired != nil {
		f.FieldRequired = *upd.FieldRequired
	}

	// 更新后的类型与选项要自洽
	if len(f.FieldOptions) > 0 && !model.IsChoiceFieldType(f.FieldType) {
		return nil, ErrOptionsNotAllowed
	}

	if err := s.repo.Update(fieldID, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *service) Delete(tx *sql.Tx, projectID, fieldID, teacherID int) error {
	if _, err := s.checkField(projectID, fieldID, teacherID); err != nil {
		return err
	}
	return s.repo.DeleteTx(tx, fieldID)
}
