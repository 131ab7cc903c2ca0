package domain

import (
	"fabline/authority"
	"fabline/domain/state"

	"github.com/fundwit/go-commons/types"
)

type Order struct {
	ID          types.ID `json:"id" gorm:"primary_key"`
	OrderNumber string   `json:"orderNumber" gorm:"unique_index"`
	Name        string   `json:"name"`

	Status   state.OrderStatus `json:"status"`
	Priority state.Priority    `json:"priority"`

	CreatorID   types.ID        `json:"creatorId"`
	CreatorName string          `json:"creatorName"`
	CreateTime  types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`

	StatusChangedBy     types.ID        `json:"statusChangedBy"`
	StatusChangedByName string          `json:"statusChangedByName"`
	StatusChangedByRole authority.Role  `json:"statusChangedByRole"`
	StatusChangeTime    types.Timestamp `json:"statusChangeTime" sql:"type:DATETIME(6)"`

	AssignedEngineerID   types.ID        `json:"assignedEngineerId"`
	AssignedEngineerName string          `json:"assignedEngineerName"`
	EngineerAssignTime   types.Timestamp `json:"engineerAssignTime" sql:"type:DATETIME(6)"`

	AssignedManagerID   types.ID        `json:"assignedManagerId"`
	AssignedManagerName string          `json:"assignedManagerName"`
	ManagerAssignTime   types.Timestamp `json:"managerAssignTime" sql:"type:DATETIME(6)"`
}

// OrderDetail is the full snapshot the lifecycle engine computes over
type OrderDetail struct {
	Order

	ChecklistMarks []ChecklistMark     `json:"checklistMarks" gorm:"-"`
	Attachments    []Attachment        `json:"attachments" gorm:"-"`
	Comments       []Comment           `json:"comments" gorm:"-"`
	StatusHistory  []OrderStatusRecord `json:"statusHistory" gorm:"-"`
	ExternalJobs   []ExternalJob       `json:"externalJobs" gorm:"-"`
}

func (d *OrderDetail) MarksAsMap() map[types.ID]bool {
	marks := map[types.ID]bool{}
	for _, m := range d.ChecklistMarks {
		marks[m.ItemID] = m.Done
	}
	return marks
}

// Clone returns a deep copy, the engine never mutates a passed-in snapshot
func (d *OrderDetail) Clone() OrderDetail {
	c := *d
	c.ChecklistMarks = append([]ChecklistMark{}, d.ChecklistMarks...)
	c.Attachments = append([]Attachment{}, d.Attachments...)
	c.Comments = append([]Comment{}, d.Comments...)
	c.StatusHistory = append([]OrderStatusRecord{}, d.StatusHistory...)
	c.ExternalJobs = append([]ExternalJob{}, d.ExternalJobs...)
	return c
}

type OrderCreation struct {
	OrderNumber string         `json:"orderNumber" binding:"required,lte=32"`
	Name        string         `json:"name" binding:"required,lte=128"`
	Priority    state.Priority `json:"priority" binding:"omitempty,oneof=LOW NORMAL HIGH URGENT"`
}

type OrderUpdating struct {
	Name     string         `json:"name" binding:"required,lte=128"`
	Priority state.Priority `json:"priority" binding:"required,oneof=LOW NORMAL HIGH URGENT"`
}

type OrderQuery struct {
	Name     string              `json:"name" form:"name"`
	Statuses []state.OrderStatus `json:"statuses" form:"status"`
}

type OrderStatusUpdating struct {
	OrderID types.ID          `json:"orderId" binding:"required"`
	Status  state.OrderStatus `json:"status" binding:"required"`
}

type AssignmentUpdating struct {
	OrderID  types.ID `json:"orderId" binding:"required"`
	UserID   types.ID `json:"userId" binding:"required"`
	UserName string   `json:"userName" binding:"required"`
}
