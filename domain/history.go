package domain

import (
	"fabline/authority"
	"fabline/domain/state"

	"github.com/fundwit/go-commons/types"
)

// OrderStatusRecord is an append-only audit entry, entries are never
// mutated or removed and the newest entry always equals the order status
type OrderStatusRecord struct {
	ID      types.ID          `json:"id" gorm:"primary_key"`
	OrderID types.ID          `json:"orderId"`
	Status  state.OrderStatus `json:"status"`

	ChangedBy     types.ID        `json:"changedBy"`
	ChangedByName string          `json:"changedByName"`
	ChangedByRole authority.Role  `json:"changedByRole"`
	ChangeTime    types.Timestamp `json:"changeTime" sql:"type:DATETIME(6) NOT NULL"`
}

type ExternalJobStatusRecord struct {
	ID            types.ID                `json:"id" gorm:"primary_key"`
	ExternalJobID types.ID                `json:"externalJobId"`
	Status        state.ExternalJobStatus `json:"status"`

	ChangedBy     types.ID        `json:"changedBy"`
	ChangedByName string          `json:"changedByName"`
	ChangedByRole authority.Role  `json:"changedByRole"`
	ChangeTime    types.Timestamp `json:"changeTime" sql:"type:DATETIME(6) NOT NULL"`
}
