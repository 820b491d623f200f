package checklist

import (
	"errors"
	"voltflow/bizerror"
	"voltflow/domain"
	"voltflow/event"
	"voltflow/idgen"
	"voltflow/persistence"
	"voltflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	checkitemIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateCheckItemFunc     = CreateCheckItem
	ListCheckItemsFunc      = ListCheckItems
	UpdateCheckItemFunc     = UpdateCheckItem
	DeleteCheckItemFunc     = DeleteCheckItem
	CleanTaskCheckItemsFunc = CleanTaskCheckItems
)

type CheckItemState string

const (
	CheckItemStatePending = CheckItemState("PENDING")
	CheckItemStateDone    = CheckItemState("DONE")
)

type CheckItem struct {
	ID     types.ID `json:"id" gorm:"primary_key"`
	Name   string   `json:"name"`
	TaskId types.ID `json:"taskId"`

	State CheckItemState `json:"state"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

type CheckItemCreation struct {
	Name   string   `json:"name" binding:"required"`
	TaskId types.ID `json:"taskId" binding:"required"`
}

type CheckItemUpdating struct {
	State CheckItemState `json:"state" binding:"required,oneof=PENDING DONE"`
}

func CreateCheckItem(req CheckItemCreation, s *session.Session) (*CheckItem, error) {
	var r *CheckItem
	var ev *event.EventRecord
	txErr := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		t, err := findTaskAndCheckPerms(tx, req.TaskId, s)
		if err != nil {
			return err
		}
		i := CheckItem{
			ID:         idgen.NextID(checkitemIdWorker),
			Name:       req.Name,
			TaskId:     t.ID,
			CreateTime: types.CurrentTimestamp(),
			State:      CheckItemStatePending,
		}
		if err := tx.Save(&i).Error; err != nil {
			return err
		}
		r = &i

		ev, err = event.CreateEvent(event.SourceTypeTask, t.ID, t.Name, event.EventCategoryExtensionUpdated,
			[]event.UpdatedProperty{{
				PropertyName: "Checklist", PropertyDesc: "Checklist",
				NewValue: req.Name, NewValueDesc: req.Name,
			}}, &s.Identity, i.CreateTime, tx)
		return err
	})

	if txErr != nil {
		return nil, txErr
	}

	if event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}

	return r, nil
}

func ListCheckItems(taskId types.ID, s *session.Session) ([]CheckItem, error) {
	var r []CheckItem
	txErr := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		t, err := findTaskAndCheckPerms(tx, taskId, s)
		if err != nil {
			return err
		}
		return tx.Where("task_id = ?", t.ID).Order("create_time ASC").Find(&r).Error
	})
	if txErr != nil {
		return nil, txErr
	}
	return r, nil
}

func UpdateCheckItem(id types.ID, req CheckItemUpdating, s *session.Session) error {
	return persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		ci := CheckItem{}
		if err := tx.Where("id = ?", id).First(&ci).Error; err != nil {
			return err
		}
		if _, err := findTaskAndCheckPerms(tx, ci.TaskId, s); err != nil {
			return err
		}
		return tx.Model(&CheckItem{}).Where("id = ?", id).Update("state", req.State).Error
	})
}

func DeleteCheckItem(id types.ID, s *session.Session) error {
	var ev *event.EventRecord
	txErr := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		ci := CheckItem{}
		if err := tx.Where("id = ?", id).First(&ci).Error; errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		} else if err != nil {
			return err
		}
		t, err := findTaskAndCheckPerms(tx, ci.TaskId, s)
		if err != nil {
			return err
		}

		if err := tx.Delete(&CheckItem{}, "id = ?", id).Error; err != nil {
			return err
		}

		ev, err = event.CreateEvent(event.SourceTypeTask, t.ID, t.Name, event.EventCategoryExtensionUpdated,
			[]event.UpdatedProperty{{
				PropertyName: "Checklist", PropertyDesc: "Checklist",
				OldValue: ci.Name, OldValueDesc: ci.Name,
			}}, &s.Identity, types.CurrentTimestamp(), tx)
		return err
	})
	if txErr != nil {
		return txErr
	}

	if event.InvokeHandlersFunc != nil && ev != nil {
		event.InvokeHandlersFunc(ev)
	}

	return nil
}

func CleanTaskCheckItems(taskId types.ID, s *session.Session) error {
	return persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		if _, err := findTaskAndCheckPerms(tx, taskId, s); err != nil {
			return err
		}
		return CleanTaskCheckItemsDirectly(taskId, tx)
	})
}

func CleanTaskCheckItemsDirectly(taskId types.ID, tx *gorm.DB) error {
	return tx.Delete(&CheckItem{}, "task_id = ?", taskId).Error
}

func findTaskAndCheckPerms(db *gorm.DB, id types.ID, s *session.Session) (*domain.Task, error) {
	var t domain.Task
	if err := db.Where("id = ?", id).First(&t).Error; err != nil {
		return nil, err
	}

	if s == nil || !s.Perms.HasStaffRole() {
		return nil, bizerror.ErrForbidden
	}
	return &t, nil
}
