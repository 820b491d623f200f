package client_test

import (
	"context"
	"testing"
	"voltflow/authority"
	"voltflow/bizerror"
	"voltflow/domain"
	"voltflow/domain/client"
	"voltflow/persistence"
	"voltflow/testinfra"

	. "github.com/onsi/gomega"
)

func clientsTestSetup(t *testing.T, testDatabase **testinfra.TestDatabase) {
	db := testinfra.StartMysqlTestDatabase("voltflow")
	*testDatabase = db
	Expect(db.DS.GormDB(nil).AutoMigrate(&domain.Client{}).Error).To(BeNil())
	persistence.ActiveDataSourceManager = db.DS
}

func clientsTestTeardown(t *testing.T, testDatabase *testinfra.TestDatabase) {
	if testDatabase != nil {
		testinfra.StopMysqlTestDatabase(testDatabase)
	}
}

func TestCreateClient(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("identifier must be unique", func(t *testing.T) {
		defer clientsTestTeardown(t, testDatabase)
		clientsTestSetup(t, &testDatabase)

		admin := testinfra.BuildSession(1, authority.SystemAdminRole)
		c, err := client.CreateClient(&domain.ClientCreating{Name: "acme power", Identifier: "ACME",
			ContactEmail: "ops@acme.example"}, admin)
		Expect(err).To(BeNil())
		Expect(c.ID).ToNot(BeZero())
		Expect(c.NextWorkSeq).To(Equal(1))

		_, err = client.CreateClient(&domain.ClientCreating{Name: "acme clone", Identifier: "ACME"}, admin)
		Expect(err).To(Equal(bizerror.ErrClientIdentifierExisted))
	})

	t.Run("only admin can manage clients", func(t *testing.T) {
		defer clientsTestTeardown(t, testDatabase)
		clientsTestSetup(t, &testDatabase)

		staff := testinfra.BuildSession(20, authority.StaffRole)
		_, err := client.CreateClient(&domain.ClientCreating{Name: "acme power", Identifier: "ACME"}, staff)
		Expect(err).To(Equal(bizerror.ErrForbidden))
	})
}

func TestDetailClient(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("a client user sees itself and nothing else", func(t *testing.T) {
		defer clientsTestTeardown(t, testDatabase)
		clientsTestSetup(t, &testDatabase)

		admin := testinfra.BuildSession(1, authority.SystemAdminRole)
		c1, err := client.CreateClient(&domain.ClientCreating{Name: "acme power", Identifier: "ACME"}, admin)
		Expect(err).To(BeNil())
		c2, err := client.CreateClient(&domain.ClientCreating{Name: "beta grid", Identifier: "BETA"}, admin)
		Expect(err).To(BeNil())

		own := testinfra.BuildSession(30, "client_"+c1.ID.String())
		detail, err := client.DetailClient(c1.ID, own)
		Expect(err).To(BeNil())
		Expect(detail.Name).To(Equal("acme power"))

		_, err = client.DetailClient(c2.ID, own)
		Expect(err).To(Equal(bizerror.ErrForbidden))
	})
}

func TestArchiveClient(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("archive stamps the client once", func(t *testing.T) {
		defer clientsTestTeardown(t, testDatabase)
		clientsTestSetup(t, &testDatabase)

		admin := testinfra.BuildSession(1, authority.SystemAdminRole)
		c, err := client.CreateClient(&domain.ClientCreating{Name: "acme power", Identifier: "ACME"}, admin)
		Expect(err).To(BeNil())

		Expect(client.ArchiveClient(c.ID, admin)).To(BeNil())

		stored := domain.Client{}
		Expect(persistence.ActiveDataSourceManager.GormDB(context.Background()).
			Where(&domain.Client{ID: c.ID}).First(&stored).Error).To(BeNil())
		Expect(stored.ArchiveTime.IsZero()).To(BeFalse())
		first := stored.ArchiveTime

		// idempotent
		Expect(client.ArchiveClient(c.ID, admin)).To(BeNil())
		Expect(persistence.ActiveDataSourceManager.GormDB(context.Background()).
			Where(&domain.Client{ID: c.ID}).First(&stored).Error).To(BeNil())
		Expect(stored.ArchiveTime).To(Equal(first))
	})
}
