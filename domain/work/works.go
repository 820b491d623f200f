package work

import (
	"context"
	"errors"
	"strconv"
	"voltflow/bizerror"
	"voltflow/domain"
	"voltflow/domain/client"
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
	workIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateWorkFunc   = CreateWork
	DetailWorkFunc   = DetailWork
	QueryWorksFunc   = QueryWorks
	LoadWorksFunc    = LoadWorks
	UpdateWorkFunc   = UpdateWork
	ArchiveWorksFunc = ArchiveWorks
	DeleteWorkFunc   = DeleteWork
)

func CreateWork(c *domain.WorkCreation, s *session.Session) (*domain.Work, error) {
	if !s.Perms.HasStaffRole() {
		return nil, bizerror.ErrForbidden
	}

	var record *domain.Work
	var ev *event.EventRecord

	err1 := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		clientRecord := domain.Client{}
		if err := tx.Where(&domain.Client{ID: c.ClientID}).First(&clientRecord).Error; err != nil {
			return err
		}

		now := types.CurrentTimestamp()
		record = &domain.Work{
			ID:       idgen.NextID(workIdWorker),
			Name:     c.Name,
			ClientID: c.ClientID,

			WorkType:     c.WorkType,
			CurrentStage: domain.StageProposal,

			CreateTime: now,
		}

		identifier, err := client.NextWorkIdentifier(c.ClientID, tx)
		if err != nil {
			return err
		}
		record.Identifier = identifier

		if err := tx.Create(record).Error; err != nil {
			return err
		}

		ev, err = CreateWorkCreatedEvent(record, &s.Identity, now, tx)
		if err != nil {
			return err
		}
		return nil
	})
	if err1 != nil {
		return nil, err1
	}

	if event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}

	return record, nil
}

func DetailWork(identifier string, s *session.Session) (*domain.Work, error) {
	id, _ := types.ParseID(identifier)
	record := domain.Work{}
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	if err := db.Where("id = ? OR identifier LIKE ?", id, identifier).First(&record).Error; err != nil {
		return nil, err
	}

	if !s.Perms.HasStaffRole() && !s.Perms.HasClientPerm(record.ClientID) {
		return nil, bizerror.ErrForbidden
	}

	return &record, nil
}

func QueryWorks(query *domain.WorkQuery, s *session.Session) (*[]domain.Work, error) {
	var records []domain.Work
	q := persistence.ActiveDataSourceManager.GormDB(s.Context).Model(&domain.Work{})

	if query.Name != "" {
		q = q.Where("name like ?", "%"+query.Name+"%")
	}
	if query.ClientID != 0 {
		q = q.Where("client_id = ?", query.ClientID)
	}
	if query.WorkType != "" {
		q = q.Where("work_type = ?", query.WorkType)
	}

	if query.ArchiveState == domain.StatusOn {
		q = q.Where("archive_time != ?", types.Timestamp{})
	} else if query.ArchiveState == domain.StatusAll {
		// archive_time not in where clause
	} else {
		q = q.Where("archive_time = ?", types.Timestamp{})
	}

	// client users only see their own works
	if !s.Perms.HasStaffRole() {
		clientId := s.Perms.ClientID()
		if clientId == 0 {
			return &[]domain.Work{}, nil
		}
		q = q.Where("client_id = ?", clientId)
	}

	if err := q.Order("create_time DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return &records, nil
}

// LoadWorks pages through all works without permission filtering, for the
// index synchronizer only.
func LoadWorks(page, size int) ([]domain.Work, error) {
	if page < 1 {
		page = 1
	}
	var records []domain.Work
	err := persistence.ActiveDataSourceManager.GormDB(context.Background()).Model(&domain.Work{}).
		Order("id ASC").Offset((page - 1) * size).Limit(size).Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func UpdateWork(id types.ID, u *domain.WorkUpdating, s *session.Session) (*domain.Work, error) {
	var updatedWork domain.Work
	var ev *event.EventRecord
	err1 := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		originWork, err := findWorkAndCheckPerms(tx, id, s)
		if err != nil {
			return err
		}

		if !originWork.ArchiveTime.IsZero() {
			return bizerror.ErrArchiveStatusInvalid
		}

		db := tx.Model(&domain.Work{}).Where(&domain.Work{ID: id}).Update(u)
		if err := db.Error; err != nil {
			return err
		}
		if db.RowsAffected != 1 {
			return errors.New("expected affected row is 1, but actual is " + strconv.FormatInt(db.RowsAffected, 10))
		}

		ev, err = CreateWorkPropertyUpdatedEvent(originWork,
			[]event.UpdatedProperty{{
				PropertyName: "Name", PropertyDesc: "Name",
				OldValue: originWork.Name, OldValueDesc: originWork.Name,
				NewValue: u.Name, NewValueDesc: u.Name,
			}},
			&s.Identity, types.CurrentTimestamp(), tx)
		if err != nil {
			return err
		}

		return tx.Where(&domain.Work{ID: id}).First(&updatedWork).Error
	})
	if err1 != nil {
		return nil, err1
	}

	if event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}

	return &updatedWork, nil
}

// ArchiveWorks archives works whose tasks are all settled.
func ArchiveWorks(ids []types.ID, s *session.Session) error {
	var events []*event.EventRecord
	now := types.CurrentTimestamp()
	err1 := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		for _, id := range ids {
			work, err := findWorkAndCheckPerms(tx, id, s)
			if err != nil {
				return err
			}
			if !work.ArchiveTime.IsZero() {
				continue
			}

			var unsettled int
			if err := tx.Model(&domain.Task{}).Where("work_id = ?", id).
				Where("status NOT IN (?)", []status.TaskStatus{status.TaskCompleted, status.TaskCancelled}).
				Count(&unsettled).Error; err != nil {
				return err
			}
			if unsettled > 0 {
				return bizerror.ErrArchiveStatusInvalid
			}

			ev, err := CreateWorkPropertyUpdatedEvent(work,
				[]event.UpdatedProperty{{
					PropertyName: "ArchiveTime", PropertyDesc: "ArchiveTime",
					OldValue: work.ArchiveTime.String(), OldValueDesc: work.ArchiveTime.String(),
					NewValue: now.String(), NewValueDesc: now.String(),
				}},
				&s.Identity, now, tx)
			if err != nil {
				return err
			}
			events = append(events, ev)

			if err := tx.Model(&domain.Work{ID: id}).Updates(&domain.Work{ArchiveTime: now}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err1 != nil {
		return err1
	}

	if event.InvokeHandlersFunc != nil {
		for _, ev := range events {
			event.InvokeHandlersFunc(ev)
		}
	}

	return nil
}

func DeleteWork(id types.ID, s *session.Session) error {
	var ev *event.EventRecord
	err1 := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		work, err := findWorkAndCheckPerms(tx, id, s)
		if err != nil {
			return err
		}

		ev, err = CreateWorkDeletedEvent(work, &s.Identity, types.CurrentTimestamp(), tx)
		if err != nil {
			return err
		}

		var taskIds []types.ID
		if err := tx.Model(&domain.Task{}).Where("work_id = ?", id).Pluck("id", &taskIds).Error; err != nil {
			return err
		}
		if len(taskIds) > 0 {
			if err := tx.Delete(checklist.CheckItem{}, "task_id IN (?)", taskIds).Error; err != nil {
				return err
			}
		}
		if err := tx.Delete(domain.Task{}, "work_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(domain.DeadlineApproval{}, "work_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(domain.Work{}, "id = ?", id).Error
	})
	if err1 != nil {
		return err1
	}
	if event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}
	return nil
}

func findWorkAndCheckPerms(db *gorm.DB, id types.ID, s *session.Session) (*domain.Work, error) {
	var work domain.Work
	if err := db.Where(&domain.Work{ID: id}).First(&work).Error; err != nil {
		return nil, err
	}
	if s == nil || !s.Perms.HasStaffRole() {
		return nil, bizerror.ErrForbidden
	}
	return &work, nil
}
