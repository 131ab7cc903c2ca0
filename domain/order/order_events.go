package order

import (
	"fabline/domain"
	"fabline/event"
	"fabline/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

func CreateOrderCreatedEvent(o *domain.Order, identity *session.Identity, timestamp types.Timestamp, db *gorm.DB) (*event.EventRecord, error) {
	return event.CreateEvent(event.SourceTypeOrder, o.ID, o.OrderNumber, event.EventCategoryCreated, nil, identity, timestamp, db)
}
func CreateOrderDeletedEvent(o *domain.Order, identity *session.Identity, timestamp types.Timestamp, db *gorm.DB) (*event.EventRecord, error) {
	return event.CreateEvent(event.SourceTypeOrder, o.ID, o.OrderNumber, event.EventCategoryDeleted, nil, identity, timestamp, db)
}
func CreateOrderPropertyUpdatedEvent(o *domain.Order, updates []event.UpdatedProperty, identity *session.Identity, timestamp types.Timestamp, db *gorm.DB) (*event.EventRecord, error) {
	return event.CreateEvent(event.SourceTypeOrder, o.ID, o.OrderNumber, event.EventCategoryPropertyUpdated, updates, identity, timestamp, db)
}
func CreateOrderExtensionUpdatedEvent(o *domain.Order, updates []event.UpdatedProperty, identity *session.Identity, timestamp types.Timestamp, db *gorm.DB) (*event.EventRecord, error) {
	return event.CreateEvent(event.SourceTypeOrder, o.ID, o.OrderNumber, event.EventCategoryExtensionUpdated, updates, identity, timestamp, db)
}
