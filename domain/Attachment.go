package domain

import (
	"fabline/authority"

	"github.com/fundwit/go-commons/types"
)

const (
	AttachmentOwnerOrder       = "ORDER"
	AttachmentOwnerExternalJob = "EXTERNAL_JOB"
)

// Attachment is the record of an uploaded file, the lifecycle engine only
// counts and filters these records, file bytes live in object storage
type Attachment struct {
	ID        types.ID `json:"id" gorm:"primary_key"`
	OwnerType string   `json:"ownerType"`
	OwnerID   types.ID `json:"ownerId"`

	Category  string `json:"category"`
	FileName  string `json:"fileName"`
	ObjectKey string `json:"-"`

	CreatorID   types.ID        `json:"creatorId"`
	CreatorName string          `json:"creatorName"`
	CreatorRole authority.Role  `json:"creatorRole"`
	CreateTime  types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

type Comment struct {
	ID      types.ID `json:"id" gorm:"primary_key"`
	OrderID types.ID `json:"orderId"`
	Content string   `json:"content" sql:"type:TEXT"`

	CreatorID   types.ID        `json:"creatorId"`
	CreatorName string          `json:"creatorName"`
	CreatorRole authority.Role  `json:"creatorRole"`
	CreateTime  types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

type CommentCreation struct {
	OrderID types.ID `json:"orderId" binding:"required"`
	Content string   `json:"content" binding:"required"`
}

// ChecklistMark records the completion of one ruleset checklist item on one
// order, marks are set by user action and never cleared by the engine
type ChecklistMark struct {
	OrderID types.ID `json:"orderId" gorm:"primary_key;auto_increment:false"`
	ItemID  types.ID `json:"itemId" gorm:"primary_key;auto_increment:false"`
	Done    bool     `json:"done"`

	UpdaterID  types.ID        `json:"updaterId"`
	UpdateTime types.Timestamp `json:"updateTime" sql:"type:DATETIME(6)"`
}

type ChecklistMarkUpdating struct {
	OrderID types.ID `json:"orderId" binding:"required"`
	ItemID  types.ID `json:"itemId" binding:"required"`
	Done    *bool    `json:"done" binding:"required"`
}
