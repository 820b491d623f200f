package task

import (
	"strconv"
	"voltflow/bizerror"
	"voltflow/domain"
	"voltflow/domain/status"
	"voltflow/event"
	"voltflow/persistence"
	"voltflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

// UpdateProgress derives status from progress one way only:
// 100 completes the task, the first nonzero progress starts a pending one.
// A completed task is never reverted when progress is lowered afterwards.
func UpdateProgress(id types.ID, u *domain.TaskProgressUpdating, s *session.Session) (*domain.Task, error) {
	if !s.Perms.HasStaffRole() {
		return nil, bizerror.ErrForbidden
	}
	if u.Progress < 0 || u.Progress > 100 {
		return nil, bizerror.ErrProgressOutOfRange
	}

	var updated domain.Task
	var ev *event.EventRecord
	err1 := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		record := domain.Task{}
		if err := tx.Where(&domain.Task{ID: id}).First(&record).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{"progress": u.Progress}
		if u.Progress == 100 && record.Status != status.TaskCompleted {
			updates["status"] = status.TaskCompleted
			updates["completed_at"] = types.CurrentTimestamp()
		} else if u.Progress > 0 && record.Status == status.TaskPending {
			updates["status"] = status.TaskInProgress
		}

		if err := tx.Model(&domain.Task{}).Where(&domain.Task{ID: id}).Updates(updates).Error; err != nil {
			return err
		}

		var err error
		ev, err = CreateTaskPropertyUpdatedEvent(&record,
			[]event.UpdatedProperty{{
				PropertyName: "Progress", PropertyDesc: "Progress",
				OldValue: strconv.Itoa(record.Progress), OldValueDesc: strconv.Itoa(record.Progress),
				NewValue: strconv.Itoa(u.Progress), NewValueDesc: strconv.Itoa(u.Progress),
			}},
			&s.Identity, types.CurrentTimestamp(), tx)
		if err != nil {
			return err
		}

		return tx.Where(&domain.Task{ID: id}).First(&updated).Error
	})
	if err1 != nil {
		return nil, err1
	}

	if event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}
	return &updated, nil
}
