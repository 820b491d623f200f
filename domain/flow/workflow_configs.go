package flow

import (
	"errors"
	"voltflow/bizerror"
	"voltflow/domain"
	"voltflow/idgen"
	"voltflow/persistence"
	"voltflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	configIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateConfigFunc     = CreateConfig
	DisableConfigFunc    = DisableConfig
	QueryConfigsFunc     = QueryConfigs
	ValidateDeadlineFunc = ValidateDeadline

	findActiveConfigFunc = findActiveConfig
)

func CreateConfig(c *domain.WorkflowConfigCreating, s *session.Session) (*domain.WorkflowConfig, error) {
	if !s.Perms.HasAdminRole() {
		return nil, bizerror.ErrForbidden
	}

	record := domain.WorkflowConfig{
		ID:       idgen.NextID(configIdWorker),
		WorkType: c.WorkType,
		Stage:    c.Stage,
		StepName: c.StepName,

		DefaultDeadlineDays: c.DefaultDeadlineDays,
		MinDeadlineDays:     c.MinDeadlineDays,
		MaxDeadlineDays:     c.MaxDeadlineDays,

		RequiresApproval:       c.RequiresApproval,
		RequiresClientApproval: c.RequiresClientApproval,

		Order:      c.Order,
		IsActive:   true,
		CreateTime: types.CurrentTimestamp(),
	}

	err := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		existing := domain.WorkflowConfig{}
		err := tx.Where(&domain.WorkflowConfig{WorkType: c.WorkType, Stage: c.Stage, StepName: c.StepName, IsActive: true}).
			First(&existing).Error
		if err == nil {
			return bizerror.ErrConfigExisted
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Create(&record).Error
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// DisableConfig soft-disables a template row, hard delete is never done.
func DisableConfig(id types.ID, s *session.Session) error {
	if !s.Perms.HasAdminRole() {
		return bizerror.ErrForbidden
	}

	return persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		record := domain.WorkflowConfig{}
		if err := tx.Where(&domain.WorkflowConfig{ID: id}).First(&record).Error; err != nil {
			return err
		}
		return tx.Model(&domain.WorkflowConfig{}).Where(&domain.WorkflowConfig{ID: id}).
			Update("is_active", false).Error
	})
}

func QueryConfigs(query *domain.WorkflowConfigQuery, s *session.Session) (*[]domain.WorkflowConfig, error) {
	if !s.Perms.HasStaffRole() {
		return nil, bizerror.ErrForbidden
	}

	var records []domain.WorkflowConfig
	q := persistence.ActiveDataSourceManager.GormDB(s.Context).Model(&domain.WorkflowConfig{})
	if query.WorkType != "" {
		q = q.Where("work_type = ?", query.WorkType)
	}
	if query.Stage != "" {
		q = q.Where("stage = ?", query.Stage)
	}
	if query.ActiveState == domain.StatusAll {
		// is_active not in where clause
	} else {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Order("`order` ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return &records, nil
}

// CheckDeadline is the pure bound check over one config row.
func CheckDeadline(cfg *domain.WorkflowConfig, proposedDays int) domain.DeadlineValidationResult {
	if cfg == nil {
		return domain.DeadlineValidationResult{Valid: true}
	}
	if (cfg.MinDeadlineDays > 0 && proposedDays < cfg.MinDeadlineDays) ||
		(cfg.MaxDeadlineDays > 0 && proposedDays > cfg.MaxDeadlineDays) {
		return domain.DeadlineValidationResult{
			Valid:   false,
			Min:     cfg.MinDeadlineDays,
			Max:     cfg.MaxDeadlineDays,
			Default: cfg.DefaultDeadlineDays,
		}
	}
	return domain.DeadlineValidationResult{Valid: true}
}

// ValidateDeadline reports whether proposedDays falls inside the bounds of the
// active config of the (workType, stage, stepName) tuple. A missing config
// means unconstrained. Invalidity is a result, not an error.
func ValidateDeadline(req *domain.DeadlineValidationRequest, s *session.Session) (*domain.DeadlineValidationResult, error) {
	if !s.Perms.HasStaffRole() {
		return nil, bizerror.ErrForbidden
	}

	cfg, err := findActiveConfigFunc(req.WorkType, req.Stage, req.StepName, s)
	if err != nil {
		return nil, err
	}
	result := CheckDeadline(cfg, req.ProposedDays)
	return &result, nil
}

func findActiveConfig(workType, stage, stepName string, s *session.Session) (*domain.WorkflowConfig, error) {
	return FindActiveConfigInTx(persistence.ActiveDataSourceManager.GormDB(s.Context), workType, stage, stepName)
}

// FindActiveConfigInTx resolves the active config of a workflow step inside an
// already open transaction. A missing row is not an error.
func FindActiveConfigInTx(db *gorm.DB, workType, stage, stepName string) (*domain.WorkflowConfig, error) {
	record := domain.WorkflowConfig{}
	err := db.Where(&domain.WorkflowConfig{WorkType: workType, Stage: stage, StepName: stepName, IsActive: true}).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}
