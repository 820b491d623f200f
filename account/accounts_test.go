package account_test

import (
	"context"
	"testing"
	"voltflow/account"
	"voltflow/authority"
	"voltflow/bizerror"
	"voltflow/persistence"
	"voltflow/testinfra"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/gomega"
)

func accountsTestSetup(t *testing.T, testDatabase **testinfra.TestDatabase) {
	db := testinfra.StartMysqlTestDatabase("voltflow")
	*testDatabase = db
	Expect(db.DS.GormDB(nil).AutoMigrate(&account.User{}).Error).To(BeNil())
	persistence.ActiveDataSourceManager = db.DS
	account.LoadPermFuncReset()
}

func accountsTestTeardown(t *testing.T, testDatabase *testinfra.TestDatabase) {
	if testDatabase != nil {
		testinfra.StopMysqlTestDatabase(testDatabase)
	}
}

func TestDefaultSecurityConfiguration(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should seed the initial admin once", func(t *testing.T) {
		defer accountsTestTeardown(t, testDatabase)
		accountsTestSetup(t, &testDatabase)

		Expect(account.DefaultSecurityConfiguration()).To(BeNil())

		admin := account.User{}
		Expect(persistence.ActiveDataSourceManager.GormDB(context.Background()).
			Where(&account.User{ID: 1}).First(&admin).Error).To(BeNil())
		Expect(admin.Name).To(Equal("admin"))
		Expect(admin.Type).To(Equal(account.UserTypeAdmin))
		Expect(admin.Secret).To(Equal(account.HashSha256("admin123")))

		// second run must not overwrite
		Expect(account.DefaultSecurityConfiguration()).To(BeNil())
		var count int
		Expect(persistence.ActiveDataSourceManager.GormDB(context.Background()).
			Model(&account.User{}).Count(&count).Error).To(BeNil())
		Expect(count).To(Equal(1))
	})
}

func TestCreateUser(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("admin creates users of each type, perms follow the type", func(t *testing.T) {
		defer accountsTestTeardown(t, testDatabase)
		accountsTestSetup(t, &testDatabase)

		admin := testinfra.BuildSession(1, authority.SystemAdminRole)

		staffUser, err := account.CreateUser(&account.UserCreation{Name: "ana", Secret: "abc123",
			Type: account.UserTypeStaff}, admin)
		Expect(err).To(BeNil())
		Expect(account.LoadPermFunc(staffUser.ID)).To(Equal(authority.Permissions{authority.StaffRole}))

		clientUser, err := account.CreateUser(&account.UserCreation{Name: "acme-portal", Secret: "abc123",
			Type: account.UserTypeClient, ClientID: types.ID(77)}, admin)
		Expect(err).To(BeNil())
		Expect(account.LoadPermFunc(clientUser.ID)).To(Equal(authority.Permissions{"client_77"}))

		adminUser, err := account.CreateUser(&account.UserCreation{Name: "root2", Secret: "abc123",
			Type: account.UserTypeAdmin}, admin)
		Expect(err).To(BeNil())
		Expect(account.LoadPermFunc(adminUser.ID)).To(Equal(authority.Permissions{authority.SystemAdminRole, authority.StaffRole}))
	})

	t.Run("non-admin cannot create users", func(t *testing.T) {
		defer accountsTestTeardown(t, testDatabase)
		accountsTestSetup(t, &testDatabase)

		_, err := account.CreateUser(&account.UserCreation{Name: "ana", Secret: "abc123",
			Type: account.UserTypeStaff}, testinfra.BuildSession(20, authority.StaffRole))
		Expect(err).To(Equal(bizerror.ErrForbidden))
	})
}

func TestUpdateBasicAuthSecret(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should refuse a wrong original secret", func(t *testing.T) {
		defer accountsTestTeardown(t, testDatabase)
		accountsTestSetup(t, &testDatabase)

		admin := testinfra.BuildSession(1, authority.SystemAdminRole)
		u, err := account.CreateUser(&account.UserCreation{Name: "ana", Secret: "abc123",
			Type: account.UserTypeStaff}, admin)
		Expect(err).To(BeNil())

		self := testinfra.BuildSession(u.ID, authority.StaffRole)
		Expect(account.UpdateBasicAuthSecret(&account.BasicAuthUpdating{
			OriginalSecret: "wrong", NewSecret: "new123"}, self)).To(Equal(bizerror.ErrInvalidPassword))

		Expect(account.UpdateBasicAuthSecret(&account.BasicAuthUpdating{
			OriginalSecret: "abc123", NewSecret: "new123"}, self)).To(BeNil())

		stored := account.User{}
		Expect(persistence.ActiveDataSourceManager.GormDB(context.Background()).
			Where(&account.User{ID: u.ID}).First(&stored).Error).To(BeNil())
		Expect(stored.Secret).To(Equal(account.HashSha256("new123")))
	})
}
