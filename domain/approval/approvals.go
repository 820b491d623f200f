package approval

import (
	"errors"
	"voltflow/bizerror"
	"voltflow/domain"
	"voltflow/domain/flow"
	"voltflow/domain/status"
	"voltflow/event"
	"voltflow/idgen"
	"voltflow/persistence"
	"voltflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	approvalIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateApprovalFunc     = CreateApproval
	DetailApprovalFunc     = DetailApproval
	QueryApprovalsFunc     = QueryApprovals
	QueryPendingAdminFunc  = QueryPendingAdmin
	QueryPendingClientFunc = QueryPendingClient
	QueryMyRequestsFunc    = QueryMyRequests
	QueryApprovalStatsFunc = QueryApprovalStats
	AdminDecideFunc        = AdminDecide
	ClientDecideFunc       = ClientDecide
	CancelApprovalFunc     = CancelApproval
)

func CreateApproval(c *domain.DeadlineApprovalCreating, s *session.Session) (*domain.DeadlineApproval, error) {
	if !s.Perms.HasStaffRole() {
		return nil, bizerror.ErrForbidden
	}

	var record *domain.DeadlineApproval
	var ev *event.EventRecord
	err1 := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		task := domain.Task{}
		if err := tx.Where(&domain.Task{ID: c.TaskID}).First(&task).Error; errors.Is(err, gorm.ErrRecordNotFound) {
			return bizerror.ErrNotFound
		} else if err != nil {
			return err
		}

		workId := c.WorkID
		if workId == 0 {
			workId = task.WorkID
		}
		if workId != 0 {
			work := domain.Work{}
			if err := tx.Where(&domain.Work{ID: workId}).First(&work).Error; errors.Is(err, gorm.ErrRecordNotFound) {
				return bizerror.ErrNotFound
			} else if err != nil {
				return err
			}
		}

		now := types.CurrentTimestamp()
		record = &domain.DeadlineApproval{
			ID:   idgen.NextID(approvalIdWorker),
			Type: c.Type,

			TaskID: task.ID,
			WorkID: workId,

			ProposedStartDate:    c.ProposedStartDate,
			ProposedEndDate:      c.ProposedEndDate,
			ProposedDeadlineDays: c.ProposedDeadlineDays,
			Justification:        c.Justification,

			Status:      status.ApprovalPending,
			RequestedBy: s.Identity.ID,

			CreateTime: now,
		}
		if err := tx.Create(record).Error; err != nil {
			return err
		}

		var err error
		ev, err = CreateApprovalRequestedEvent(record, &task, &s.Identity, now, tx)
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

func DetailApproval(id types.ID, s *session.Session) (*domain.DeadlineApproval, error) {
	record := domain.DeadlineApproval{}
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	if err := db.Where(&domain.DeadlineApproval{ID: id}).First(&record).Error; err != nil {
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

func QueryApprovals(query *domain.DeadlineApprovalQuery, s *session.Session) (*[]domain.DeadlineApproval, error) {
	if !s.Perms.HasStaffRole() {
		return nil, bizerror.ErrForbidden
	}

	var records []domain.DeadlineApproval
	q := persistence.ActiveDataSourceManager.GormDB(s.Context).Model(&domain.DeadlineApproval{})
	if query.TaskID != 0 {
		q = q.Where("task_id = ?", query.TaskID)
	}
	if query.WorkID != 0 {
		q = q.Where("work_id = ?", query.WorkID)
	}
	if query.Status != "" {
		q = q.Where("status = ?", query.Status)
	}
	if err := q.Order("create_time ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return &records, nil
}

// QueryPendingAdmin lists records waiting on the internal gate.
func QueryPendingAdmin(s *session.Session) (*[]domain.DeadlineApproval, error) {
	if !s.Perms.HasAdminRole() {
		return nil, bizerror.ErrForbidden
	}

	var records []domain.DeadlineApproval
	err := persistence.ActiveDataSourceManager.GormDB(s.Context).
		Where("status = ?", status.ApprovalPending).
		Order("create_time ASC").Find(&records).Error
	if err != nil {
		return nil, err
	}
	return &records, nil
}

// QueryPendingClient lists admin-approved records on works of the session's
// client, waiting on the client gate.
func QueryPendingClient(s *session.Session) (*[]domain.DeadlineApproval, error) {
	if !s.Perms.HasClientRole() {
		return nil, bizerror.ErrForbidden
	}

	var records []domain.DeadlineApproval
	err := persistence.ActiveDataSourceManager.GormDB(s.Context).
		Where("status = ? AND work_id IN (SELECT id FROM works WHERE client_id = ?)",
			status.ApprovalApproved, s.Perms.ClientID()).
		Order("create_time ASC").Find(&records).Error
	if err != nil {
		return nil, err
	}
	return &records, nil
}

func QueryMyRequests(s *session.Session) (*[]domain.DeadlineApproval, error) {
	var records []domain.DeadlineApproval
	err := persistence.ActiveDataSourceManager.GormDB(s.Context).
		Where("requested_by = ?", s.Identity.ID).
		Order("create_time ASC").Find(&records).Error
	if err != nil {
		return nil, err
	}
	return &records, nil
}

func QueryApprovalStats(s *session.Session) (*domain.ApprovalStats, error) {
	if !s.Perms.HasStaffRole() {
		return nil, bizerror.ErrForbidden
	}

	var rows []struct {
		Status status.ApprovalStatus
		Num    int
	}
	err := persistence.ActiveDataSourceManager.GormDB(s.Context).Model(&domain.DeadlineApproval{}).
		Select("status, count(*) as num").Group("status").Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	stats := domain.ApprovalStats{}
	for _, row := range rows {
		switch row.Status {
		case status.ApprovalPending:
			stats.Pending = row.Num
		case status.ApprovalApproved:
			stats.Approved = row.Num
		case status.ApprovalRejected:
			stats.Rejected = row.Num
		case status.ApprovalCancelled:
			stats.Cancelled = row.Num
		case status.ApprovalClientApproved:
			stats.ClientApproved = row.Num
		}
		stats.Total += row.Num
	}
	return &stats, nil
}

// AdminDecide settles the internal gate. The status guard sits in the WHERE
// clause of the UPDATE, so two concurrent decisions on the same record can
// never both win. Approval record and task land in one transaction.
func AdminDecide(id types.ID, d *domain.AdminDecision, s *session.Session) (*domain.DeadlineApproval, error) {
	if !s.Perms.HasAdminRole() {
		return nil, bizerror.ErrForbidden
	}
	if !status.CanTransitApproval(status.ApprovalPending, d.Status) {
		return nil, bizerror.ErrStatusTransitionInvalid
	}

	var updated domain.DeadlineApproval
	var ev *event.EventRecord
	err1 := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		record := domain.DeadlineApproval{}
		if err := tx.Where(&domain.DeadlineApproval{ID: id}).First(&record).Error; err != nil {
			return err
		}

		now := types.CurrentTimestamp()
		db := tx.Model(&domain.DeadlineApproval{}).
			Where("id = ? AND status = ?", id, status.ApprovalPending).
			Updates(map[string]interface{}{
				"status":            d.Status,
				"approved_by":       s.Identity.ID,
				"admin_notes":       d.AdminNotes,
				"admin_approved_at": now,
			})
		if db.Error != nil {
			return db.Error
		}
		if db.RowsAffected == 0 {
			return bizerror.ErrApprovalAlreadyProcessed
		}

		if d.Status == status.ApprovalApproved && record.TaskID != 0 {
			if err := applyApprovedSchedule(tx, &record, s); err != nil {
				return err
			}
		}

		var err error
		ev, err = CreateApprovalDecidedEvent(&record, d.Status, &s.Identity, now, tx)
		if err != nil {
			return err
		}

		return tx.Where(&domain.DeadlineApproval{ID: id}).First(&updated).Error
	})
	if err1 != nil {
		return nil, err1
	}

	if event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}
	return &updated, nil
}

// applyApprovedSchedule pushes the proposed dates onto the task and moves it
// into the stage the governing workflow step asks for: a step with a client
// gate parks the task in under_review until the client decides, otherwise the
// task starts right away.
func applyApprovedSchedule(tx *gorm.DB, record *domain.DeadlineApproval, s *session.Session) error {
	task := domain.Task{}
	if err := tx.Where(&domain.Task{ID: record.TaskID}).First(&task).Error; err != nil {
		return err
	}
	work := domain.Work{}
	if err := tx.Where(&domain.Work{ID: task.WorkID}).First(&work).Error; err != nil {
		return err
	}

	cfg, err := flow.FindActiveConfigInTx(tx, work.WorkType, task.Stage, task.StepName)
	if err != nil {
		return err
	}

	nextStatus := status.TaskInProgress
	if cfg != nil && cfg.RequiresClientApproval {
		nextStatus = status.TaskUnderReview
	}

	updates := map[string]interface{}{"status": nextStatus}
	if !record.ProposedStartDate.IsZero() {
		updates["start_date"] = record.ProposedStartDate
	}
	if !record.ProposedEndDate.IsZero() {
		updates["due_date"] = record.ProposedEndDate
	}
	return tx.Model(&domain.Task{}).Where(&domain.Task{ID: task.ID}).Updates(updates).Error
}

// ClientDecide settles the client gate on a record the admin already let
// through.
func ClientDecide(id types.ID, d *domain.ClientDecision, s *session.Session) (*domain.DeadlineApproval, error) {
	if !s.Perms.HasClientRole() {
		return nil, bizerror.ErrForbidden
	}

	nextStatus := status.ApprovalClientApproved
	if !*d.Approved {
		nextStatus = status.ApprovalRejected
	}

	var updated domain.DeadlineApproval
	var ev *event.EventRecord
	err1 := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		record := domain.DeadlineApproval{}
		if err := tx.Where(&domain.DeadlineApproval{ID: id}).First(&record).Error; err != nil {
			return err
		}

		work := domain.Work{}
		if err := tx.Where(&domain.Work{ID: record.WorkID}).First(&work).Error; err != nil {
			return err
		}
		if !s.Perms.HasClientPerm(work.ClientID) {
			return bizerror.ErrForbidden
		}

		now := types.CurrentTimestamp()
		db := tx.Model(&domain.DeadlineApproval{}).
			Where("id = ? AND status = ?", id, status.ApprovalApproved).
			Updates(map[string]interface{}{
				"status":             nextStatus,
				"client_id":          work.ClientID,
				"client_notes":       d.ClientNotes,
				"client_approved_at": now,
			})
		if db.Error != nil {
			return db.Error
		}
		if db.RowsAffected == 0 {
			return bizerror.ErrApprovalNotYetApproved
		}

		if nextStatus == status.ApprovalClientApproved && record.TaskID != 0 {
			err := tx.Model(&domain.Task{}).Where(&domain.Task{ID: record.TaskID}).
				Update("status", status.TaskInProgress).Error
			if err != nil {
				return err
			}
		}

		var err error
		ev, err = CreateApprovalDecidedEvent(&record, nextStatus, &s.Identity, now, tx)
		if err != nil {
			return err
		}

		return tx.Where(&domain.DeadlineApproval{ID: id}).First(&updated).Error
	})
	if err1 != nil {
		return nil, err1
	}

	if event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}
	return &updated, nil
}

// CancelApproval withdraws a still pending request. Only the requester may do
// it.
func CancelApproval(id types.ID, s *session.Session) error {
	var ev *event.EventRecord
	err1 := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		record := domain.DeadlineApproval{}
		if err := tx.Where(&domain.DeadlineApproval{ID: id}).First(&record).Error; err != nil {
			return err
		}
		if record.RequestedBy != s.Identity.ID {
			return bizerror.ErrForbidden
		}

		db := tx.Model(&domain.DeadlineApproval{}).
			Where("id = ? AND status = ?", id, status.ApprovalPending).
			Update("status", status.ApprovalCancelled)
		if db.Error != nil {
			return db.Error
		}
		if db.RowsAffected == 0 {
			return bizerror.ErrApprovalAlreadyProcessed
		}

		var err error
		ev, err = CreateApprovalDecidedEvent(&record, status.ApprovalCancelled, &s.Identity, types.CurrentTimestamp(), tx)
		return err
	})
	if err1 != nil {
		return err1
	}

	if event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}
	return nil
}
