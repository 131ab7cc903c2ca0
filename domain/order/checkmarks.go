package order

import (
	"fabline/bizerror"
	"fabline/domain"
	"fabline/domain/rules"
	"fabline/event"
	"fabline/persistence"
	"fabline/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

var (
	SetChecklistMarkFunc = SetChecklistMark
)

// SetChecklistMark records the done state of one checklist item on an order.
// The item must exist in the currently active ruleset.
func SetChecklistMark(u *domain.ChecklistMarkUpdating, s *session.Session) error {
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
		item, found := ruleset.FindChecklistItem(u.ItemID)
		if !found {
			return bizerror.ErrNotFound
		}

		now := types.CurrentTimestamp()
		mark := domain.ChecklistMark{
			OrderID: u.OrderID, ItemID: u.ItemID, Done: *u.Done,
			UpdaterID: s.Identity.ID, UpdateTime: now,
		}
		existed := domain.ChecklistMark{}
		err = tx.Where(&domain.ChecklistMark{OrderID: u.OrderID, ItemID: u.ItemID}).First(&existed).Error
		if err == nil {
			if err := tx.Model(&domain.ChecklistMark{}).
				Where(&domain.ChecklistMark{OrderID: u.OrderID, ItemID: u.ItemID}).
				Update(map[string]interface{}{"done": mark.Done, "updater_id": mark.UpdaterID, "update_time": mark.UpdateTime}).Error; err != nil {
				return err
			}
		} else if gorm.IsRecordNotFoundError(err) {
			if err := tx.Create(&mark).Error; err != nil {
				return err
			}
		} else {
			return err
		}

		oldValue := "false"
		if existed.Done {
			oldValue = "true"
		}
		newValue := "false"
		if mark.Done {
			newValue = "true"
		}
		ev, err = CreateOrderExtensionUpdatedEvent(&detail.Order,
			[]event.UpdatedProperty{{
				PropertyName: "Checklist", PropertyDesc: item.Label,
				OldValue: oldValue, OldValueDesc: oldValue,
				NewValue: newValue, NewValueDesc: newValue,
			}},
			&s.Identity, now, tx)
		return err
	})
	if txErr != nil {
		return txErr
	}

	if event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}
	return nil
}
