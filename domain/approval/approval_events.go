package approval

import (
	"voltflow/domain"
	"voltflow/domain/status"
	"voltflow/event"
	"voltflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

func CreateApprovalRequestedEvent(r *domain.DeadlineApproval, t *domain.Task, identity *session.Identity,
	timestamp types.Timestamp, db *gorm.DB) (*event.EventRecord, error) {
	return event.CreateEvent(event.SourceTypeApproval, r.ID, t.Name, event.EventCategoryCreated, nil, identity, timestamp, db)
}

func CreateApprovalDecidedEvent(r *domain.DeadlineApproval, to status.ApprovalStatus, identity *session.Identity,
	timestamp types.Timestamp, db *gorm.DB) (*event.EventRecord, error) {
	return event.CreateEvent(event.SourceTypeApproval, r.ID, "", event.EventCategoryPropertyUpdated,
		[]event.UpdatedProperty{{
			PropertyName: "Status", PropertyDesc: "Status",
			OldValue: string(r.Status), OldValueDesc: string(r.Status),
			NewValue: string(to), NewValueDesc: string(to),
		}}, identity, timestamp, db)
}
