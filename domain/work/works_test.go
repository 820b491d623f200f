package work_test

import (
	"context"
	"testing"
	"voltflow/authority"
	"voltflow/bizerror"
	"voltflow/domain"
	"voltflow/domain/client"
	"voltflow/domain/status"
	"voltflow/domain/task"
	"voltflow/domain/task/checklist"
	"voltflow/domain/work"
	"voltflow/event"
	"voltflow/persistence"
	"voltflow/session"
	"voltflow/testinfra"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	. "github.com/onsi/gomega"
)

func worksTestSetup(t *testing.T, testDatabase **testinfra.TestDatabase) (*domain.Client, *session.Session, *session.Session) {
	db := testinfra.StartMysqlTestDatabase("voltflow")
	*testDatabase = db
	Expect(db.DS.GormDB(nil).AutoMigrate(&domain.Client{}, &domain.Work{}, &domain.Task{},
		&domain.DeadlineApproval{}, &checklist.CheckItem{}).Error).To(BeNil())
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
	return c, admin, staff
}

func worksTestTeardown(t *testing.T, testDatabase *testinfra.TestDatabase) {
	if testDatabase != nil {
		testinfra.StopMysqlTestDatabase(testDatabase)
	}
}

func TestCreateWork(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("identifiers run per client from its own sequence", func(t *testing.T) {
		defer worksTestTeardown(t, testDatabase)
		c, admin, staff := worksTestSetup(t, &testDatabase)

		w1, err := work.CreateWork(&domain.WorkCreation{Name: "rooftop pv", ClientID: c.ID,
			WorkType: domain.WorkTypeSolar}, staff)
		Expect(err).To(BeNil())
		Expect(w1.Identifier).To(Equal("ACME-1"))
		Expect(w1.CurrentStage).To(Equal(domain.StageProposal))

		w2, err := work.CreateWork(&domain.WorkCreation{Name: "carport pv", ClientID: c.ID,
			WorkType: domain.WorkTypeSolar}, staff)
		Expect(err).To(BeNil())
		Expect(w2.Identifier).To(Equal("ACME-2"))

		c2, err := client.CreateClient(&domain.ClientCreating{Name: "beta grid", Identifier: "BETA"}, admin)
		Expect(err).To(BeNil())
		w3, err := work.CreateWork(&domain.WorkCreation{Name: "switchyard", ClientID: c2.ID,
			WorkType: domain.WorkTypeIndustrial}, staff)
		Expect(err).To(BeNil())
		Expect(w3.Identifier).To(Equal("BETA-1"))
	})

	t.Run("client users cannot create works", func(t *testing.T) {
		defer worksTestTeardown(t, testDatabase)
		c, _, _ := worksTestSetup(t, &testDatabase)

		_, err := work.CreateWork(&domain.WorkCreation{Name: "rooftop pv", ClientID: c.ID,
			WorkType: domain.WorkTypeSolar}, testinfra.BuildSession(30, "client_"+c.ID.String()))
		Expect(err).To(Equal(bizerror.ErrForbidden))
	})
}

func TestQueryWorks(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("client users only see their own works", func(t *testing.T) {
		defer worksTestTeardown(t, testDatabase)
		c, admin, staff := worksTestSetup(t, &testDatabase)

		c2, err := client.CreateClient(&domain.ClientCreating{Name: "beta grid", Identifier: "BETA"}, admin)
		Expect(err).To(BeNil())

		_, err = work.CreateWork(&domain.WorkCreation{Name: "rooftop pv", ClientID: c.ID, WorkType: domain.WorkTypeSolar}, staff)
		Expect(err).To(BeNil())
		_, err = work.CreateWork(&domain.WorkCreation{Name: "switchyard", ClientID: c2.ID, WorkType: domain.WorkTypeIndustrial}, staff)
		Expect(err).To(BeNil())

		all, err := work.QueryWorks(&domain.WorkQuery{}, staff)
		Expect(err).To(BeNil())
		Expect(len(*all)).To(Equal(2))

		own, err := work.QueryWorks(&domain.WorkQuery{}, testinfra.BuildSession(30, "client_"+c.ID.String()))
		Expect(err).To(BeNil())
		Expect(len(*own)).To(Equal(1))
		Expect((*own)[0].ClientID).To(Equal(c.ID))
	})
}

func TestArchiveWorks(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("archiving is refused while tasks are still open", func(t *testing.T) {
		defer worksTestTeardown(t, testDatabase)
		c, _, staff := worksTestSetup(t, &testDatabase)

		w, err := work.CreateWork(&domain.WorkCreation{Name: "rooftop pv", ClientID: c.ID, WorkType: domain.WorkTypeSolar}, staff)
		Expect(err).To(BeNil())
		tk, err := task.CreateTask(&domain.TaskCreation{WorkID: w.ID, Name: "panel layout"}, staff)
		Expect(err).To(BeNil())

		Expect(work.ArchiveWorks([]types.ID{w.ID}, staff)).To(Equal(bizerror.ErrArchiveStatusInvalid))

		_, err = task.UpdateProgress(tk.ID, &domain.TaskProgressUpdating{Progress: 100}, staff)
		Expect(err).To(BeNil())
		Expect(work.ArchiveWorks([]types.ID{w.ID}, staff)).To(BeNil())

		stored := domain.Work{}
		Expect(persistence.ActiveDataSourceManager.GormDB(context.Background()).
			Where(&domain.Work{ID: w.ID}).First(&stored).Error).To(BeNil())
		Expect(stored.ArchiveTime.IsZero()).To(BeFalse())

		// no new tasks on an archived work
		_, err = task.CreateTask(&domain.TaskCreation{WorkID: w.ID, Name: "late task"}, staff)
		Expect(err).To(Equal(bizerror.ErrArchiveStatusInvalid))
	})
}

func TestDeleteWork(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("delete cascades to tasks, checklist items and approvals", func(t *testing.T) {
		defer worksTestTeardown(t, testDatabase)
		c, _, staff := worksTestSetup(t, &testDatabase)

		w, err := work.CreateWork(&domain.WorkCreation{Name: "rooftop pv", ClientID: c.ID, WorkType: domain.WorkTypeSolar}, staff)
		Expect(err).To(BeNil())
		tk, err := task.CreateTask(&domain.TaskCreation{WorkID: w.ID, Name: "panel layout"}, staff)
		Expect(err).To(BeNil())
		_, err = checklist.CreateCheckItem(checklist.CheckItemCreation{TaskId: tk.ID, Name: "cable sizing"}, staff)
		Expect(err).To(BeNil())

		db := persistence.ActiveDataSourceManager.GormDB(context.Background())
		Expect(db.Create(&domain.DeadlineApproval{ID: 999, TaskID: tk.ID, WorkID: w.ID,
			Status: status.ApprovalPending, CreateTime: types.CurrentTimestamp()}).Error).To(BeNil())

		Expect(work.DeleteWork(w.ID, staff)).To(BeNil())

		var workCount, taskCount, itemCount, approvalCount int
		Expect(db.Model(&domain.Work{}).Count(&workCount).Error).To(BeNil())
		Expect(db.Model(&domain.Task{}).Count(&taskCount).Error).To(BeNil())
		Expect(db.Model(&checklist.CheckItem{}).Count(&itemCount).Error).To(BeNil())
		Expect(db.Model(&domain.DeadlineApproval{}).Count(&approvalCount).Error).To(BeNil())
		Expect(workCount).To(BeZero())
		Expect(taskCount).To(BeZero())
		Expect(itemCount).To(BeZero())
		Expect(approvalCount).To(BeZero())
	})
}
