package observation

import (
	"database/sql"

	"github.com/mjescario/csafk-backend/model"
)

// Service 定义观测记录业务接口
type Service interface {
	Create(projectID int, studentName string, fieldData map[int]string) (*model.Observation, error)
	List(projectID, teacherID int) ([]model.Observation, error)
	Get(projectID, observationID, teacherID int) (*model.Observation, error)
	Update(projectID, observationID, teacherID int, upd *model.ObservationUpdate) (*model.Observation, error)
	Delete(tx *sql.Tx, projectID, observationID, teacherID int) error
}

type serviceImpl struct {
	repo Repository
}

func NewService(repo Repository) Service { return &serviceImpl{repo: repo} }

// validateFieldData 校验所有提交的 field_id 都属于该项目
func (s *serviceImpl) validateFieldData(projectID int, fieldData map[int]string) error {
	if len(fieldData) == 0 {
		return nil
	}
	fields, err := s.repo.ProjectFields(projectID)
	if err != nil {
		return err
	}
	for fieldID := range fieldData {
		if _, ok := fields[fieldID]; !ok {
			return ErrFieldNotInProject
		}
	}
	return nil
}

// Create 公开提交，不要求登录，只要求项目存在
func (s *serviceImpl) Create(projectID int, studentName string, fieldData map[int]string) (*model.Observation, error) {
	if _, err := s.repo.ProjectOwner(projectID); err != nil {
		return nil, err
	}
	if err := s.validateFieldData(projectID, fieldData); err != nil {
		return nil, err
	}

	obs := &model.Observation{ProjectID: projectID, StudentName: studentName}
	observationID, err := s.repo.Save(obs, fieldData)
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(observationID)
}

func (s *serviceImpl) List(projectID, teacherID int) ([]model.Observation, error) {
	ownerID, err := s.repo.ProjectOwner(projectID)
	if err != nil {
		return nil, err
	}
	if ownerID != teacherID {
		return nil, ErrPermissionDenied
	}
	return s.repo.ListByProject(projectID)
}

// checkObservation 统一校验链:项目存在 → 记录存在 → 归属 → 权限
// 归属错误(400)先于权限错误(403),与登录状态无关
func (s *serviceImpl) checkObservation(projectID, observationID, teacherID int) (*model.Observation, error) {
	ownerID, err := s.repo.ProjectOwner(projectID)
	if err != nil {
		return nil, err
	}
	obs, err := s.repo.GetByID(observationID)
	if err != nil {
		return nil, err
	}
	if obs.ProjectID != projectID {
		return nil, ErrObservationNotInProject
	}
	if ownerID != teacherID {
		return nil, ErrPermissionDenied
	}
	return obs, nil
}

func (s *serviceImpl) Get(projectID, observationID, teacherID int) (*model.Observation, error) {
	return s.checkObservation(projectID, observationID, teacherID)
}

func (s *serviceImpl) Update(projectID, observationID, teacherID int, upd *model.ObservationUpdate) (*model.Observation, error) {
	if _, err := s.checkObservation(projectID, observationID, teacherID); err != nil {
		return nil, err
	}
	if err := s.validateFieldData(projectID, upd.FieldData); err != nil {
		return nil, err
	}
	if err := s.repo.Update(observationID, upd.StudentName, upd.FieldData); err != nil {
		return nil, err
	}
	return s.repo.GetByID(observationID)
}

func (s *serviceImpl) Delete(tx *sql.Tx, projectID, observationID, teacherID int) error {
	if _, err := s.checkObservation(projectID, observationID, teacherID); err != nil {
		return err
	}
	return s.repo.DeleteTx(tx, observationID)
}
