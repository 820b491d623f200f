package task

import (
	"errors"
	"voltflow/bizerror"
	"voltflow/domain"
	"voltflow/domain/status"
	"voltflow/domain/task/checklist"
	"voltflow/event"
	"voltflow/idgen"
	"voltflow/persistence"
	"voltflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	taskIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateTaskFunc     = CreateTask
	DetailTaskFunc     = DetailTask
	QueryTasksFunc     = QueryTasks
	UpdateTaskFunc     = UpdateTask
	DeleteTaskFunc     = DeleteTask
	UpdateProgressFunc = UpdateProgress
)

func CreateTask(c *domain.TaskCreation, s *session.Session) (*domain.Task, error) {
	if !s.Perms.HasStaffRole() {
		return nil, bizerror.ErrForbidden
	}

	var record *domain.Task
	var ev *event.EventRecord
	err1 := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		work := domain.Work{}
		if err := tx.Where(&domain.Work{ID: c.WorkID}).First(&work).Error; err != nil {
			return err
		}
		if !work.ArchiveTime.IsZero() {
			return bizerror.ErrArchiveStatusInvalid
		}

		now := types.CurrentTimestamp()
		record = &domain.Task{
			ID:     idgen.NextID(taskIdWorker),
			WorkID: work.ID,
			Name:   c.Name,

			AssigneeID: c.AssigneeID,
			Status:     status.TaskPending,
			Progress:   0,

			Stage:    c.Stage,
			StepName: c.StepName,

			StartDate: c.StartDate,
			DueDate:   c.DueDate,

			CreateTime: now,
		}
		if err := tx.Create(record).Error; err != nil {
			return err
		}

		var err error
		ev, err = CreateTaskCreatedEvent(record, &s.Identity, now, tx)
		return err
	})
	if err1 != nil {
		return nil, err1
	}

	if event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}
	return record, nil
}

func DetailTask(id types.ID, s *session.Session) (*domain.Task, error) {
	record := domain.Task{}
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	if err := db.Where(&domain.Task{ID: id}).First(&record).Error; err != nil {
		return nil, err
	}

	if !s.Perms.HasStaffRole() {
		work := domain.Work{}
		if err := db.Where(&domain.Work{ID: record.WorkID}).First(&work).Error; err != nil {
			return nil, err
		}
		if !s.Perms.HasClientPerm(work.ClientID) {
			return nil, bizerror.ErrForbidden
		}
	}
	return &record, nil
}

func QueryTasks(query *domain.TaskQuery, s *session.Session) (*[]domain.Task, error) {
	if !s.Perms.HasStaffRole() {
		return nil, bizerror.ErrForbidden
	}

	var records []domain.Task
	q := persistence.ActiveDataSourceManager.GormDB(s.Context).Model(&domain.Task{})
	if query.WorkID != 0 {
		q = q.Where("work_id = ?", query.WorkID)
	}
	if query.AssigneeID != 0 {
		q = q.Where("assignee_id = ?", query.AssigneeID)
	}
	if query.Status != "" {
		q = q.Where("status = ?", query.Status)
	}
	if err := q.Order("create_time ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return &records, nil
}

func UpdateTask(id types.ID, u *domain.TaskUpdating, s *session.Session) (*domain.Task, error) {
	if !s.Perms.HasStaffRole() {
		return nil, bizerror.ErrForbidden
	}

	var updated domain.Task
	err := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		record := domain.Task{}
		if err := tx.Where(&domain.Task{ID: id}).First(&record).Error; err != nil {
			return err
		}
		if err := tx.Model(&domain.Task{}).Where(&domain.Task{ID: id}).Update(u).Error; err != nil {
			return err
		}
		return tx.Where(&domain.Task{ID: id}).First(&updated).Error
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func DeleteTask(id types.ID, s *session.Session) error {
	if !s.Perms.HasStaffRole() {
		return bizerror.ErrForbidden
	}

	var ev *event.EventRecord
	err1 := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		record := domain.Task{}
		if err := tx.Where(&domain.Task{ID: id}).First(&record).Error; errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		} else if err != nil {
			return err
		}

		var err error
		ev, err = CreateTaskDeletedEvent(&record, &s.Identity, types.CurrentTimestamp(), tx)
		if err != nil {
			return err
		}

		if err := checklist.CleanTaskCheckItemsDirectly(id, tx); err != nil {
			return err
		}
		if err := tx.Delete(domain.DeadlineApproval{}, "task_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(domain.Task{}, "id = ?", id).Error
	})
	if err1 != nil {
		return err1
	}
	if event.InvokeHandlersFunc != nil && ev != nil {
		event.InvokeHandlersFunc(ev)
	}
	return nil
}
