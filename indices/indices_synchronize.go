package indices

import (
	"context"
	"fmt"
	"sync"
	"voltflow/authority"
	"voltflow/bizerror"
	"voltflow/client/es"
	"voltflow/domain"
	"voltflow/domain/work"
	"voltflow/event"
	"voltflow/session"

	"github.com/sirupsen/logrus"
)

var (
	WorkIndexEventHandlerName = "workIndexer"
	indexRobot                = &session.Session{
		Identity: session.Identity{ID: 10, Name: "index-robot"},
		Perms:    authority.Permissions{authority.SystemAdminRole},
		Context:  context.Background(),
	}

	lock    sync.Mutex
	running bool

	IndicesFullSyncFunc    = IndicesFullSync
	ScheduleNewSyncRunFunc = ScheduleNewSyncRun
)

// ScheduleNewSyncRun kicks off one full index rebuild in the background.
// A second request while one is running is a no-op.
func ScheduleNewSyncRun(s *session.Session) (bool, error) {
	if !s.Perms.HasAdminRole() {
		return false, bizerror.ErrForbidden
	}

	lock.Lock()
	if running {
		lock.Unlock()
		return false, nil
	}
	running = true
	lock.Unlock()

	waitRunning := sync.WaitGroup{}
	waitRunning.Add(1)
	go func() {
		waitRunning.Done()
		defer func() {
			lock.Lock()
			running = false
			lock.Unlock()
		}()
		IndicesFullSyncFunc()
	}()
	waitRunning.Wait()
	return true, nil
}

var (
	SyncBatchSize = 500
)

func IndicesFullSync() (err error) {
	defer func() {
		if ret := recover(); ret != nil {
			e, ok := ret.(error)
			if ok {
				err = e
			} else {
				err = fmt.Errorf("error on indices full sync: %v", ret)
			}
		}
	}()

	page := 1
	for {
		works, err := work.LoadWorksFunc(page, SyncBatchSize)
		if err != nil {
			logrus.Warnf("indices fully sync: error on retrieve works(page = %d, pageSize = %d): %v", page, SyncBatchSize, err)
			page++
			continue
		}

		if len(works) == 0 {
			logrus.Infof("indices fully sync: there are no more work to index")
			return nil // loop exit
		}

		if err := IndexWorks(works, indexRobot); err != nil {
			logrus.Warnf("indices fully sync: error on index works(page = %d, pageSize = %d): %v", page, SyncBatchSize, err)
		}
		page++
	}
}

func IndexWorkEventHandle(e *event.EventRecord) *event.EventHandleResult {
	if e.SourceType != event.SourceTypeWork {
		return nil
	}

	if e.EventCategory == event.EventCategoryDeleted {
		err := es.DeleteDocumentByIdFunc(WorkIndexName, e.Event.SourceId, indexRobot)
		if err != nil {
			return &event.EventHandleResult{
				Message:           fmt.Sprintf("delete work index %d, %v", e.Event.SourceId, err),
				HandlerIdentifier: WorkIndexEventHandlerName,
			}
		}
		return &event.EventHandleResult{Success: true, HandlerIdentifier: WorkIndexEventHandlerName}
	}

	w, err := work.DetailWorkFunc(e.Event.SourceId.String(), indexRobot)
	if err != nil {
		return &event.EventHandleResult{
			Message:           fmt.Sprintf("detail work when index work %d, %v", e.Event.SourceId, err),
			HandlerIdentifier: WorkIndexEventHandlerName,
		}
	}
	if err := IndexWorks([]domain.Work{*w}, indexRobot); err != nil {
		return &event.EventHandleResult{
			Message:           fmt.Sprintf("index work %d, %v", e.Event.SourceId, err),
			HandlerIdentifier: WorkIndexEventHandlerName,
		}
	}
	return &event.EventHandleResult{Success: true, HandlerIdentifier: WorkIndexEventHandlerName}
}
