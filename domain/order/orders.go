package order

import (
	"errors"
	"strconv"

	"fabline/authority"
	"fabline/bizerror"
	"fabline/domain"
	"fabline/domain/state"
	"fabline/event"
	"fabline/idgen"
	"fabline/persistence"
	"fabline/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	orderIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateOrderFunc = CreateOrder
	DetailOrderFunc = DetailOrder
	QueryOrdersFunc = QueryOrders
	UpdateOrderFunc = UpdateOrder
	DeleteOrderFunc = DeleteOrder

	LoadOrdersFunc = LoadOrders
)

func CreateOrder(c *domain.OrderCreation, s *session.Session) (*domain.OrderDetail, error) {
	if !s.Perms.HasAnyRole(authority.RoleSales, authority.RoleAdmin) {
		return nil, bizerror.ErrForbidden
	}

	now := types.CurrentTimestamp()
	priority := c.Priority
	if priority == "" {
		priority = state.PriorityNormal
	}
	detail := &domain.OrderDetail{
		Order: domain.Order{
			ID:          idgen.NextID(orderIdWorker),
			OrderNumber: c.OrderNumber,
			Name:        c.Name,
			Status:      state.StatusDraft,
			Priority:    priority,

			CreatorID:   s.Identity.ID,
			CreatorName: s.Identity.Nickname,
			CreateTime:  now,
		},
		ChecklistMarks: []domain.ChecklistMark{},
		Attachments:    []domain.Attachment{},
		Comments:       []domain.Comment{},
		StatusHistory:  []domain.OrderStatusRecord{},
		ExternalJobs:   []domain.ExternalJob{},
	}

	var ev *event.EventRecord
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	txErr := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&detail.Order).Error; err != nil {
			return err
		}
		var err error
		ev, err = CreateOrderCreatedEvent(&detail.Order, &s.Identity, now, tx)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	if event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}

	return detail, nil
}

func DetailOrder(identifier string, s *session.Session) (*domain.OrderDetail, error) {
	id, _ := types.ParseID(identifier)
	detail := domain.OrderDetail{}
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	if err := db.Where("id = ? OR order_number LIKE ?", id, identifier).First(&detail.Order).Error; err != nil {
		return nil, err
	}
	if err := extendOrderDetail(db, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

func QueryOrders(query *domain.OrderQuery, s *session.Session) (*[]domain.Order, error) {
	var orders []domain.Order
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)

	q := db.Model(&domain.Order{})
	if query.Name != "" {
		q = q.Where("name like ?", "%"+query.Name+"%")
	}
	if len(query.Statuses) > 0 {
		q = q.Where("status in (?)", query.Statuses)
	}
	if err := q.Order("create_time ASC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return &orders, nil
}

func UpdateOrder(id types.ID, u *domain.OrderUpdating, s *session.Session) (*domain.Order, error) {
	if !s.Perms.HasAnyRole(authority.RoleSales, authority.RoleAdmin) {
		return nil, bizerror.ErrForbidden
	}

	var updated domain.Order
	var ev *event.EventRecord
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	txErr := db.Transaction(func(tx *gorm.DB) error {
		origin := domain.Order{}
		if err := tx.Where(&domain.Order{ID: id}).First(&origin).Error; err != nil {
			return err
		}

		query := tx.Model(&domain.Order{}).Where(&domain.Order{ID: id}).
			Update(map[string]interface{}{"name": u.Name, "priority": u.Priority})
		if err := query.Error; err != nil {
			return err
		}
		if query.RowsAffected != 1 {
			return errors.New("expected affected row is 1, but actual is " + strconv.FormatInt(query.RowsAffected, 10))
		}

		var err error
		ev, err = CreateOrderPropertyUpdatedEvent(&origin,
			[]event.UpdatedProperty{{
				PropertyName: "Name", PropertyDesc: "Name",
				OldValue: origin.Name, OldValueDesc: origin.Name,
				NewValue: u.Name, NewValueDesc: u.Name,
			}, {
				PropertyName: "Priority", PropertyDesc: "Priority",
				OldValue: string(origin.Priority), OldValueDesc: string(origin.Priority),
				NewValue: string(u.Priority), NewValueDesc: string(u.Priority),
			}},
			&s.Identity, types.CurrentTimestamp(), tx)
		if err != nil {
			return err
		}

		return tx.Where(&domain.Order{ID: id}).First(&updated).Error
	})
	if txErr != nil {
		return nil, txErr
	}

	if event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}

	return &updated, nil
}

func DeleteOrder(id types.ID, s *session.Session) error {
	if !s.Perms.HasAdminRole() {
		return bizerror.ErrForbidden
	}

	var ev *event.EventRecord
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	txErr := db.Transaction(func(tx *gorm.DB) error {
		o := domain.Order{}
		err := tx.Where(&domain.Order{ID: id}).First(&o).Error
		if err == nil {
			ev, err = CreateOrderDeletedEvent(&o, &s.Identity, types.CurrentTimestamp(), tx)
			if err != nil {
				return err
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := tx.Delete(domain.Order{}, "id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(domain.OrderStatusRecord{}, "order_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(domain.ChecklistMark{}, "order_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(domain.Comment{}, "order_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(domain.ExternalJobStatusRecord{}, "external_job_id IN (?)",
			tx.Model(&domain.ExternalJob{}).Select("id").Where("order_id = ?", id).QueryExpr()).Error; err != nil {
			return err
		}
		if err := tx.Delete(domain.ExternalJob{}, "order_id = ?", id).Error; err != nil {
			return err
		}
		// attachment rows go with the order, objects stay in the bucket
		if err := tx.Delete(domain.Attachment{}, "owner_type = ? AND owner_id = ?",
			domain.AttachmentOwnerOrder, id).Error; err != nil {
			return err
		}
		return nil
	})
	if txErr != nil {
		return txErr
	}

	if event.InvokeHandlersFunc != nil && ev != nil {
		event.InvokeHandlersFunc(ev)
	}
	return nil
}

// LoadOrders pages over all orders for index full sync
func LoadOrders(page, size int) ([]domain.OrderDetail, error) {
	orders := []domain.Order{}
	db := persistence.ActiveDataSourceManager.GormDB(nil)
	offset := (page - 1) * size
	if offset < 0 {
		offset = 0
	}
	if err := db.Order("ID ASC").Offset(offset).Limit(size).Find(&orders).Error; err != nil {
		return nil, err
	}

	details := make([]domain.OrderDetail, 0, len(orders))
	for _, o := range orders {
		detail := domain.OrderDetail{Order: o}
		if err := extendOrderDetail(db, &detail); err != nil {
			return nil, err
		}
		details = append(details, detail)
	}
	return details, nil
}

func findOrder(tx *gorm.DB, id types.ID) (*domain.Order, error) {
	var o domain.Order
	if err := tx.Where(&domain.Order{ID: id}).First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

// loadOrderDetail reads the full snapshot the lifecycle engine computes over
func loadOrderDetail(tx *gorm.DB, id types.ID) (*domain.OrderDetail, error) {
	detail := domain.OrderDetail{}
	if err := tx.Where(&domain.Order{ID: id}).First(&detail.Order).Error; err != nil {
		return nil, err
	}
	if err := extendOrderDetail(tx, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

func extendOrderDetail(tx *gorm.DB, detail *domain.OrderDetail) error {
	detail.ChecklistMarks = []domain.ChecklistMark{}
	detail.Attachments = []domain.Attachment{}
	detail.Comments = []domain.Comment{}
	detail.StatusHistory = []domain.OrderStatusRecord{}
	detail.ExternalJobs = []domain.ExternalJob{}

	if err := tx.Where(&domain.ChecklistMark{OrderID: detail.ID}).Find(&detail.ChecklistMarks).Error; err != nil {
		return err
	}
	if err := tx.Where(&domain.Attachment{OwnerType: domain.AttachmentOwnerOrder, OwnerID: detail.ID}).
		Order("create_time ASC").Find(&detail.Attachments).Error; err != nil {
		return err
	}
	if err := tx.Where(&domain.Comment{OrderID: detail.ID}).Order("create_time ASC").
		Find(&detail.Comments).Error; err != nil {
		return err
	}
	if err := tx.Where(&domain.OrderStatusRecord{OrderID: detail.ID}).Order("change_time ASC, id ASC").
		Find(&detail.StatusHistory).Error; err != nil {
		return err
	}
	if err := tx.Where(&domain.ExternalJob{OrderID: detail.ID}).Order("create_time ASC").
		Find(&detail.ExternalJobs).Error; err != nil {
		return err
	}
	return nil
}
