package domain

import (
	"fabline/authority"
	"fabline/domain/state"

	"github.com/fundwit/go-commons/types"
)

// ExternalJob is a per-partner fabrication job nested under an order, with
// its own status machine independent of the parent order status
type ExternalJob struct {
	ID      types.ID `json:"id" gorm:"primary_key"`
	OrderID types.ID `json:"orderId"`

	PartnerID           types.ID `json:"partnerId"`
	PartnerName         string   `json:"partnerName"`
	ExternalOrderNumber string   `json:"externalOrderNumber"`
	Quantity            int      `json:"quantity"`

	DueDate types.Timestamp `json:"dueDate" sql:"type:DATETIME(6)"`

	Status state.ExternalJobStatus `json:"status"`

	StatusChangedBy     types.ID        `json:"statusChangedBy"`
	StatusChangedByName string          `json:"statusChangedByName"`
	StatusChangedByRole authority.Role  `json:"statusChangedByRole"`
	StatusChangeTime    types.Timestamp `json:"statusChangeTime" sql:"type:DATETIME(6)"`

	CreatorID   types.ID        `json:"creatorId"`
	CreatorName string          `json:"creatorName"`
	CreateTime  types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

type ExternalJobDetail struct {
	ExternalJob

	Attachments   []Attachment              `json:"attachments" gorm:"-"`
	StatusHistory []ExternalJobStatusRecord `json:"statusHistory" gorm:"-"`
}

func (d *ExternalJobDetail) Clone() ExternalJobDetail {
	c := *d
	c.Attachments = append([]Attachment{}, d.Attachments...)
	c.StatusHistory = append([]ExternalJobStatusRecord{}, d.StatusHistory...)
	return c
}

type ExternalJobCreation struct {
	OrderID types.ID `json:"orderId" binding:"required"`

	PartnerID           types.ID        `json:"partnerId" binding:"required"`
	PartnerName         string          `json:"partnerName" binding:"required,lte=128"`
	ExternalOrderNumber string          `json:"externalOrderNumber" binding:"omitempty,lte=64"`
	Quantity            int             `json:"quantity" binding:"omitempty,gte=0"`
	DueDate             types.Timestamp `json:"dueDate"`
}

type ExternalJobUpdating struct {
	PartnerName         string          `json:"partnerName" binding:"required,lte=128"`
	ExternalOrderNumber string          `json:"externalOrderNumber" binding:"omitempty,lte=64"`
	Quantity            int             `json:"quantity" binding:"omitempty,gte=0"`
	DueDate             types.Timestamp `json:"dueDate"`
}

type ExternalJobStatusUpdating struct {
	ExternalJobID types.ID                `json:"externalJobId" binding:"required"`
	Status        state.ExternalJobStatus `json:"status" binding:"required"`
}
