package task_test

import (
	"context"
	"testing"
	"voltflow/authority"
	"voltflow/bizerror"
	"voltflow/domain"
	"voltflow/domain/client"
	"voltflow/domain/status"
	"voltflow/domain/task"
	"voltflow/domain/work"
	"voltflow/event"
	"voltflow/persistence"
	"voltflow/session"
	"voltflow/testinfra"

	"github.com/jinzhu/gorm"
	. "github.com/onsi/gomega"
)

func tasksTestSetup(t *testing.T, testDatabase **testinfra.TestDatabase) (*domain.Task, *session.Session, *session.Session) {
	db := testinfra.StartMysqlTestDatabase("voltflow")
	*testDatabase = db
	Expect(db.DS.GormDB(nil).AutoMigrate(&domain.Client{}, &domain.Work{}, &domain.Task{},
		&domain.DeadlineApproval{}).Error).To(BeNil())
	persistence.ActiveDataSourceManager = db.DS

	event.EventPersistCreateFunc = func(record *event.EventRecord, db *gorm.DB) error {
		return nil
	}
	event.InvokeHandlersFunc = func(record *event.EventRecord) []event.EventHandleResult {
		return nil
	}

	admin := testinfra.BuildSession(1, authority.SystemAdminRole)
	staff := testinfra.BuildSession(20, authority.StaffRole)

	c, err := client.CreateClient(&domain.ClientCreating{Name: "acme power", Identifier: "ACME"}, admin)
	Expect(err).To(BeNil())
	w, err := work.CreateWork(&domain.WorkCreation{Name: "rooftop pv", ClientID: c.ID,
		WorkType: domain.WorkTypeSolar}, staff)
	Expect(err).To(BeNil())
	tk, err := task.CreateTask(&domain.TaskCreation{WorkID: w.ID, Name: "panel layout"}, staff)
	Expect(err).To(BeNil())

	clientUser := testinfra.BuildSession(30, "client_"+c.ID.String())
	return tk, staff, clientUser
}

func tasksTestTeardown(t *testing.T, testDatabase *testinfra.TestDatabase) {
	if testDatabase != nil {
		testinfra.StopMysqlTestDatabase(testDatabase)
	}
}

func TestUpdateProgress(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("first nonzero progress starts a pending task", func(t *testing.T) {
		defer tasksTestTeardown(t, testDatabase)
		tk, staff, _ := tasksTestSetup(t, &testDatabase)

		updated, err := task.UpdateProgress(tk.ID, &domain.TaskProgressUpdating{Progress: 30}, staff)
		Expect(err).To(BeNil())
		Expect(updated.Progress).To(Equal(30))
		Expect(updated.Status).To(Equal(status.TaskInProgress))
		Expect(updated.CompletedAt.IsZero()).To(BeTrue())
	})

	t.Run("progress 100 completes the task and stamps completion", func(t *testing.T) {
		defer tasksTestTeardown(t, testDatabase)
		tk, staff, _ := tasksTestSetup(t, &testDatabase)

		updated, err := task.UpdateProgress(tk.ID, &domain.TaskProgressUpdating{Progress: 100}, staff)
		Expect(err).To(BeNil())
		Expect(updated.Status).To(Equal(status.TaskCompleted))
		Expect(updated.CompletedAt.IsZero()).To(BeFalse())
	})

	t.Run("lowering progress never reverts a completed task", func(t *testing.T) {
		defer tasksTestTeardown(t, testDatabase)
		tk, staff, _ := tasksTestSetup(t, &testDatabase)

		_, err := task.UpdateProgress(tk.ID, &domain.TaskProgressUpdating{Progress: 100}, staff)
		Expect(err).To(BeNil())

		updated, err := task.UpdateProgress(tk.ID, &domain.TaskProgressUpdating{Progress: 40}, staff)
		Expect(err).To(BeNil())
		Expect(updated.Progress).To(Equal(40))
		Expect(updated.Status).To(Equal(status.TaskCompleted))
	})

	t.Run("progress outside 0..100 is refused", func(t *testing.T) {
		defer tasksTestTeardown(t, testDatabase)
		tk, staff, _ := tasksTestSetup(t, &testDatabase)

		_, err := task.UpdateProgress(tk.ID, &domain.TaskProgressUpdating{Progress: -1}, staff)
		Expect(err).To(Equal(bizerror.ErrProgressOutOfRange))
		_, err = task.UpdateProgress(tk.ID, &domain.TaskProgressUpdating{Progress: 101}, staff)
		Expect(err).To(Equal(bizerror.ErrProgressOutOfRange))

		stored := domain.Task{}
		Expect(persistence.ActiveDataSourceManager.GormDB(context.Background()).
			Where(&domain.Task{ID: tk.ID}).First(&stored).Error).To(BeNil())
		Expect(stored.Progress).To(Equal(0))
		Expect(stored.Status).To(Equal(status.TaskPending))
	})

	t.Run("client users cannot report progress", func(t *testing.T) {
		defer tasksTestTeardown(t, testDatabase)
		tk, _, clientUser := tasksTestSetup(t, &testDatabase)

		_, err := task.UpdateProgress(tk.ID, &domain.TaskProgressUpdating{Progress: 10}, clientUser)
		Expect(err).To(Equal(bizerror.ErrForbidden))
	})
}
