package order

import (
	"errors"
	"strconv"

	"fabline/domain"
	"fabline/domain/flow"
	"fabline/domain/rules"
	"fabline/event"
	"fabline/idgen"
	"fabline/persistence"
	"fabline/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	statusRecordIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	TransitOrderStatusFunc    = TransitOrderStatus
	QueryStatusHistoryFunc    = QueryStatusHistory
	AvailableActionsFunc      = AvailableActions
	EvaluateGateReadinessFunc = EvaluateGateReadiness
)

// TransitOrderStatus runs the lifecycle engine over the current snapshot and
// persists the outcome. The status update is guarded by the origin status so
// a concurrent mutation makes the transaction fail instead of branching
// history.
func TransitOrderStatus(u *domain.OrderStatusUpdating, s *session.Session) (*domain.OrderDetail, error) {
	var next *domain.OrderDetail
	var ev *event.EventRecord

	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	txErr := db.Transaction(func(tx *gorm.DB) error {
		detail, err := loadOrderDetail(tx, u.OrderID)
		if err != nil {
			return err
		}
		ruleset, err := rules.ActiveRulesetInTx(tx)
		if err != nil {
			return err
		}

		now := types.CurrentTimestamp()
		applied, record, err := flow.ApplyTransition(detail, u.Status, ruleset, s, now, idgen.NextID(statusRecordIdWorker))
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
			})
		if err := query.Error; err != nil {
			return err
		}
		if query.RowsAffected != 1 {
			return errors.New("expected affected row is 1, but actual is " + strconv.FormatInt(query.RowsAffected, 10))
		}

		// the history append commits or rolls back together with the
		// status change
		if err := tx.Create(record).Error; err != nil {
			return err
		}

		ev, err = CreateOrderPropertyUpdatedEvent(&detail.Order,
			[]event.UpdatedProperty{{
				PropertyName: "Status", PropertyDesc: "Status",
				OldValue: string(detail.Status), OldValueDesc: string(detail.Status),
				NewValue: string(applied.Status), NewValueDesc: string(applied.Status),
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

func QueryStatusHistory(orderId types.ID, s *session.Session) (*[]domain.OrderStatusRecord, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	if _, err := findOrder(db, orderId); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &[]domain.OrderStatusRecord{}, nil
		}
		return nil, err
	}

	var records []domain.OrderStatusRecord
	if err := db.Where(&domain.OrderStatusRecord{OrderID: orderId}).
		Order("change_time ASC, id ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return &records, nil
}

// AvailableActions derives the full permitted action set for one order and
// the acting user, the single source UI surfaces render from
func AvailableActions(orderId types.ID, s *session.Session) (*flow.ActionSet, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	detail, err := loadOrderDetail(db, orderId)
	if err != nil {
		return nil, err
	}
	ruleset, err := rules.ActiveRulesetFunc(s)
	if err != nil {
		return nil, err
	}
	actions := flow.AvailableActions(detail, ruleset, s)
	return &actions, nil
}

// EvaluateGateReadiness is the speculative preview endpoint backing
// "next-step readiness" rendering, it never touches order state
func EvaluateGateReadiness(orderId types.ID, gate string, s *session.Session) (*flow.GateReadiness, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	detail, err := loadOrderDetail(db, orderId)
	if err != nil {
		return nil, err
	}
	ruleset, err := rules.ActiveRulesetFunc(s)
	if err != nil {
		return nil, err
	}
	return flow.EvaluateGateByName(detail, ruleset, gate)
}
