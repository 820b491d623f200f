package task

import (
	"voltflow/domain"
	"voltflow/event"
	"voltflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

func CreateTaskCreatedEvent(t *domain.Task, identity *session.Identity, timestamp types.Timestamp, db *gorm.DB) (*event.EventRecord, error) {
	return event.CreateEvent(event.SourceTypeTask, t.ID, t.Name, event.EventCategoryCreated, nil, identity, timestamp, db)
}
func CreateTaskDeletedEvent(t *domain.Task, identity *session.Identity, timestamp types.Timestamp, db *gorm.DB) (*event.EventRecord, error) {
	return event.CreateEvent(event.SourceTypeTask, t.ID, t.Name, event.EventCategoryDeleted, nil, identity, timestamp, db)
}
func CreateTaskPropertyUpdatedEvent(t *domain.Task, updates []event.UpdatedProperty, identity *session.Identity, timestamp types.Timestamp, db *gorm.DB) (*event.EventRecord, error) {
	return event.CreateEvent(event.SourceTypeTask, t.ID, t.Name, event.EventCategoryPropertyUpdated, updates, identity, timestamp, db)
}
