package client

import (
	"errors"
	"strconv"
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
	clientIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateClientFunc  = CreateClient
	QueryClientsFunc  = QueryClients
	DetailClientFunc  = DetailClient
	UpdateClientFunc  = UpdateClient
	ArchiveClientFunc = ArchiveClient
)

func CreateClient(c *domain.ClientCreating, s *session.Session) (*domain.Client, error) {
	if !s.Perms.HasAdminRole() {
		return nil, bizerror.ErrForbidden
	}

	record := domain.Client{
		ID:         idgen.NextID(clientIdWorker),
		Name:       c.Name,
		Identifier: c.Identifier,

		ContactEmail: c.ContactEmail,
		ContactPhone: c.ContactPhone,

		CreateTime:  types.CurrentTimestamp(),
		NextWorkSeq: 1,
	}

	err := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		existing := domain.Client{}
		err := tx.Where(&domain.Client{Identifier: c.Identifier}).First(&existing).Error
		if err == nil {
			return bizerror.ErrClientIdentifierExisted
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

func QueryClients(query *domain.ClientQuery, s *session.Session) (*[]domain.Client, error) {
	if !s.Perms.HasStaffRole() {
		return nil, bizerror.ErrForbidden
	}

	var records []domain.Client
	q := persistence.ActiveDataSourceManager.GormDB(s.Context).Model(&domain.Client{})
	if query.Name != "" {
		q = q.Where("name like ?", "%"+query.Name+"%")
	}
	if err := q.Order("name ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return &records, nil
}

func DetailClient(id types.ID, s *session.Session) (*domain.Client, error) {
	if !s.Perms.HasStaffRole() && !s.Perms.HasClientPerm(id) {
		return nil, bizerror.ErrForbidden
	}

	record := domain.Client{}
	if err := persistence.ActiveDataSourceManager.GormDB(s.Context).
		Where(&domain.Client{ID: id}).First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func UpdateClient(id types.ID, u *domain.ClientUpdating, s *session.Session) (*domain.Client, error) {
	if !s.Perms.HasAdminRole() {
		return nil, bizerror.ErrForbidden
	}

	var record domain.Client
	err := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(&domain.Client{ID: id}).First(&record).Error; err != nil {
			return err
		}
		if err := tx.Model(&domain.Client{}).Where(&domain.Client{ID: id}).
			Update(&domain.Client{Name: u.Name, ContactEmail: u.ContactEmail, ContactPhone: u.ContactPhone}).Error; err != nil {
			return err
		}
		return tx.Where(&domain.Client{ID: id}).First(&record).Error
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func ArchiveClient(id types.ID, s *session.Session) error {
	if !s.Perms.HasAdminRole() {
		return bizerror.ErrForbidden
	}

	now := types.CurrentTimestamp()
	return persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		record := domain.Client{}
		if err := tx.Where(&domain.Client{ID: id}).First(&record).Error; err != nil {
			return err
		}
		if !record.ArchiveTime.IsZero() {
			return nil
		}
		return tx.Model(&domain.Client{}).Where(&domain.Client{ID: id}).
			Update(&domain.Client{ArchiveTime: now}).Error
	})
}

// NextWorkIdentifier allocates "IDENT-N" under the client, bumping the
// sequence in the same transaction as the caller's work insert.
func NextWorkIdentifier(clientId types.ID, tx *gorm.DB) (string, error) {
	record := domain.Client{}
	if err := tx.Where(&domain.Client{ID: clientId}).First(&record).Error; err != nil {
		return "", err
	}

	q := tx.Model(&domain.Client{}).Where(&domain.Client{ID: clientId, NextWorkSeq: record.NextWorkSeq}).
		Update("next_work_seq", record.NextWorkSeq+1)
	if err := q.Error; err != nil {
		return "", err
	}
	if q.RowsAffected != 1 {
		return "", errors.New("concurrent work identifier allocation for client " + clientId.String())
	}
	return record.Identifier + "-" + strconv.Itoa(record.NextWorkSeq), nil
}
