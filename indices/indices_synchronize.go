package indices

import (
	"context"
	"fmt"
	"sync"

	"fabline/authority"
	"fabline/bizerror"
	"fabline/client/es"
	"fabline/domain"
	"fabline/domain/order"
	"fabline/event"
	"fabline/session"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

var (
	OrderIndexEventHandlerName = "orderIndexer"
	indexRobot                 = &session.Session{
		Identity: session.Identity{ID: 10, Name: "index-robot", Nickname: "index robot"},
		Perms:    authority.Permissions{authority.RoleAdmin},
		Context:  context.Background(),
	}

	lock    sync.Mutex
	running bool

	IndicesFullSyncFunc    = IndicesFullSync
	ScheduleNewSyncRunFunc = ScheduleNewSyncRun
)

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

	// at most one batch per second, the sync walks the whole orders table
	syncBatchLimiter = rate.NewLimiter(rate.Limit(1), 1)
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
		if err := syncBatchLimiter.Wait(indexRobot.Context); err != nil {
			return err
		}

		orders, err := order.LoadOrdersFunc(page, SyncBatchSize)
		if err != nil {
			logrus.Warnf("indices full sync: error on retrieve orders(page = %d, pageSize = %d): %v", page, SyncBatchSize, err)
			page++
			continue
		}

		if len(orders) == 0 {
			logrus.Infof("indices full sync: there are no more orders to index")
			return nil // loop exit
		}

		if err := IndexOrders(orders, indexRobot); err != nil {
			logrus.Warnf("indices full sync: error on index orders(page = %d, pageSize = %d): %v", page, SyncBatchSize, err)
		}
		page++
	}
}

func IndexOrderEventHandle(e *event.EventRecord) *event.EventHandleResult {
	if e.SourceType != event.SourceTypeOrder {
		return nil
	}

	if e.EventCategory == event.EventCategoryDeleted {
		err := es.DeleteDocumentByIdFunc(OrderIndexName, e.Event.SourceId, indexRobot)
		if err != nil {
			return &event.EventHandleResult{
				Message:           fmt.Sprintf("delete order index %d, %v", e.Event.SourceId, err),
				HandlerIdentifier: OrderIndexEventHandlerName,
			}
		}
		return &event.EventHandleResult{Success: true, HandlerIdentifier: OrderIndexEventHandlerName}
	}

	detail, err := order.DetailOrderFunc(e.Event.SourceId.String(), indexRobot)
	if err != nil {
		return &event.EventHandleResult{
			Message:           fmt.Sprintf("detail order when index order %d, %v", e.Event.SourceId, err),
			HandlerIdentifier: OrderIndexEventHandlerName,
		}
	}
	if err := IndexOrders([]domain.OrderDetail{*detail}, indexRobot); err != nil {
		return &event.EventHandleResult{
			Message:           fmt.Sprintf("index order %d, %v", e.Event.SourceId, err),
			HandlerIdentifier: OrderIndexEventHandlerName,
		}
	}
	return &event.EventHandleResult{Success: true, HandlerIdentifier: OrderIndexEventHandlerName}
}
