package rules

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"fabline/domain/readiness"
	"fabline/domain/state"

	"github.com/fundwit/go-commons/types"
)

// Ruleset is the tenant-configurable workflow policy. The lifecycle engine
// receives it as an immutable value, it never reads it from a global.
type Ruleset struct {
	ID     types.ID `json:"id" gorm:"primary_key"`
	Name   string   `json:"name"`
	Active bool     `json:"active"`

	ChecklistItems ChecklistItems `json:"checklistItems" sql:"type:TEXT"`

	MinAttachmentsForEngineering int  `json:"minAttachmentsForEngineering"`
	MinAttachmentsForProduction  int  `json:"minAttachmentsForProduction"`
	RequireCommentForEngineering bool `json:"requireCommentForEngineering"`
	RequireCommentForProduction  bool `json:"requireCommentForProduction"`

	ExternalJobRules ExternalJobRules `json:"externalJobRules" sql:"type:TEXT"`
	ReturnReasons    ReturnReasons    `json:"returnReasons" sql:"type:TEXT"`

	CreatorID   types.ID        `json:"creatorId"`
	CreatorName string          `json:"creatorName"`
	CreateTime  types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

func (r *Ruleset) TableName() string {
	return "rulesets"
}

type ExternalJobRule struct {
	MinAttachments int `json:"minAttachments"`
}

func (r *Ruleset) CriteriaFor(gate state.Gate) readiness.GateCriteria {
	criteria := readiness.GateCriteria{Gate: gate, ChecklistItems: r.ChecklistItems}
	if gate == state.GateEngineering {
		criteria.MinAttachments = r.MinAttachmentsForEngineering
		criteria.RequireComment = r.RequireCommentForEngineering
	} else if gate == state.GateProduction {
		criteria.MinAttachments = r.MinAttachmentsForProduction
		criteria.RequireComment = r.RequireCommentForProduction
	}
	return criteria
}

func (r *Ruleset) MinAttachmentsFor(status state.ExternalJobStatus) int {
	return r.ExternalJobRules[status].MinAttachments
}

func (r *Ruleset) FindChecklistItem(id types.ID) (readiness.ChecklistItem, bool) {
	for _, item := range r.ChecklistItems {
		if item.ID == id {
			return item, true
		}
	}
	return readiness.ChecklistItem{}, false
}

type ChecklistItems []readiness.ChecklistItem

type ExternalJobRules map[state.ExternalJobStatus]ExternalJobRule

type ReturnReasons []string

func (t ChecklistItems) Value() (driver.Value, error) {
	return jsonColumnValue(&t)
}
func (c *ChecklistItems) Scan(v interface{}) error {
	return jsonColumnScan(v, c)
}

func (t ExternalJobRules) Value() (driver.Value, error) {
	return jsonColumnValue(&t)
}
func (c *ExternalJobRules) Scan(v interface{}) error {
	return jsonColumnScan(v, c)
}

func (t ReturnReasons) Value() (driver.Value, error) {
	return jsonColumnValue(&t)
}
func (c *ReturnReasons) Scan(v interface{}) error {
	return jsonColumnScan(v, c)
}

func jsonColumnValue(t interface{}) (driver.Value, error) {
	jsonBytes, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	return string(jsonBytes), nil
}

func jsonColumnScan(v interface{}, target interface{}) error {
	jsonString, ok := v.(string)
	if !ok {
		jsonByte, ok := v.([]byte)
		if !ok {
			return fmt.Errorf("type is neither string nor []byte: %T %v", v, v)
		}
		jsonString = string(jsonByte)
	}
	return json.Unmarshal([]byte(jsonString), target)
}

type RulesetCreation struct {
	Name string `json:"name" binding:"required,lte=64"`

	ChecklistItems []ChecklistItemCreation `json:"checklistItems" binding:"dive"`

	MinAttachmentsForEngineering int  `json:"minAttachmentsForEngineering" binding:"gte=0"`
	MinAttachmentsForProduction  int  `json:"minAttachmentsForProduction" binding:"gte=0"`
	RequireCommentForEngineering bool `json:"requireCommentForEngineering"`
	RequireCommentForProduction  bool `json:"requireCommentForProduction"`

	ExternalJobRules ExternalJobRules `json:"externalJobRules"`
	ReturnReasons    []string         `json:"returnReasons"`
}

type ChecklistItemCreation struct {
	Label       string              `json:"label" binding:"required,lte=128"`
	Active      bool                `json:"active"`
	RequiredFor []state.OrderStatus `json:"requiredFor" binding:"dive,oneof=READY_FOR_ENGINEERING READY_FOR_PRODUCTION"`
}
