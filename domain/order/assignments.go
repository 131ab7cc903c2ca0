package order

import (
	"errors"
	"strconv"

	"fabline/domain"
	"fabline/domain/flow"
	"fabline/event"
	"fabline/idgen"
	"fabline/persistence"
	"fabline/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

var (
	AssignEngineerFunc = AssignEngineer
	ClearEngineerFunc  = ClearEngineer
	AssignManagerFunc  = AssignManager
	ClearManagerFunc   = ClearManager
	TakeOrderFunc      = TakeOrder
	ReturnToQueueFunc  = ReturnToQueue
)

func AssignEngineer(u *domain.AssignmentUpdating, s *session.Session) (*domain.OrderDetail, error) {
	return applyAssignment(u.OrderID, s, "AssignedEngineer", func(detail *domain.OrderDetail, now types.Timestamp) (*domain.OrderDetail, *domain.OrderStatusRecord, error) {
		next, err := flow.AssignEngineer(detail, u.UserID, u.UserName, s, now)
		return next, nil, err
	})
}

func ClearEngineer(orderId types.ID, s *session.Session) (*domain.OrderDetail, error) {
	return applyAssignment(orderId, s, "AssignedEngineer", func(detail *domain.OrderDetail, now types.Timestamp) (*domain.OrderDetail, *domain.OrderStatusRecord, error) {
		next, err := flow.ClearEngineer(detail, s)
		return next, nil, err
	})
}

func AssignManager(u *domain.AssignmentUpdating, s *session.Session) (*domain.OrderDetail, error) {
	return applyAssignment(u.OrderID, s, "AssignedManager", func(detail *domain.OrderDetail, now types.Timestamp) (*domain.OrderDetail, *domain.OrderStatusRecord, error) {
		next, err := flow.AssignManager(detail, u.UserID, u.UserName, s, now)
		return next, nil, err
	})
}

func ClearManager(orderId types.ID, s *session.Session) (*domain.OrderDetail, error) {
	return applyAssignment(orderId, s, "AssignedManager", func(detail *domain.OrderDetail, now types.Timestamp) (*domain.OrderDetail, *domain.OrderStatusRecord, error) {
		next, err := flow.ClearManager(detail, s)
		return next, nil, err
	})
}

// TakeOrder claims an unassigned order from the engineering queue
func TakeOrder(orderId types.ID, s *session.Session) (*domain.OrderDetail, error) {
	return applyAssignment(orderId, s, "AssignedEngineer", func(detail *domain.OrderDetail, now types.Timestamp) (*domain.OrderDetail, *domain.OrderStatusRecord, error) {
		next, err := flow.TakeOrder(detail, s, now)
		return next, nil, err
	})
}

// ReturnToQueue un-assigns the acting engineer, possibly forcing the status
// back to READY_FOR_ENGINEERING with a history record
func ReturnToQueue(orderId types.ID, s *session.Session) (*domain.OrderDetail, error) {
	return applyAssignment(orderId, s, "AssignedEngineer", func(detail *domain.OrderDetail, now types.Timestamp) (*domain.OrderDetail, *domain.OrderStatusRecord, error) {
		return flow.ReturnToQueue(detail, s, now, idgen.NextID(statusRecordIdWorker))
	})
}

func applyAssignment(orderId types.ID, s *session.Session, propertyName string,
	apply func(*domain.OrderDetail, types.Timestamp) (*domain.OrderDetail, *domain.OrderStatusRecord, error)) (*domain.OrderDetail, error) {

	var next *domain.OrderDetail
	var ev *event.EventRecord

	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	txErr := db.Transaction(func(tx *gorm.DB) error {
		detail, err := loadOrderDetail(tx, orderId)
		if err != nil {
			return err
		}

		now := types.CurrentTimestamp()
		applied, record, err := apply(detail, now)
		if err != nil {
			return err
		}

		query := tx.Model(&domain.Order{}).Where(&domain.Order{ID: detail.ID, Status: detail.Status}).
			Update(map[string]interface{}{
				"status":                 applied.Status,
				"status_changed_by":      applied.StatusChangedBy,
				"status_changed_by_name": applied.StatusChangedByName,
				"status_changed_by_role": applied.StatusChangedByRole,
				"status_change_time":     applied.StatusChangeTime,
				"assigned_engineer_id":   applied.AssignedEngineerID,
				"assigned_engineer_name": applied.AssignedEngineerName,
				"engineer_assign_time":   applied.EngineerAssignTime,
				"assigned_manager_id":    applied.AssignedManagerID,
				"assigned_manager_name":  applied.AssignedManagerName,
				"manager_assign_time":    applied.ManagerAssignTime,
			})
		if err := query.Error; err != nil {
			return err
		}
		if query.RowsAffected != 1 {
			return errors.New("expected affected row is 1, but actual is " + strconv.FormatInt(query.RowsAffected, 10))
		}

		if record != nil {
			if err := tx.Create(record).Error; err != nil {
				return err
			}
		}

		oldValue, newValue := detail.AssignedEngineerName, applied.AssignedEngineerName
		if propertyName == "AssignedManager" {
			oldValue, newValue = detail.AssignedManagerName, applied.AssignedManagerName
		}
		ev, err = CreateOrderPropertyUpdatedEvent(&detail.Order,
			[]event.UpdatedProperty{{
				PropertyName: propertyName, PropertyDesc: propertyName,
				OldValue: oldValue, OldValueDesc: oldValue,
				NewValue: newValue, NewValueDesc: newValue,
			}},
			&s.Identity, now, tx)
		if err != nil {
			return err
		}

		next = applied
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	if event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}

	return next, nil
}
