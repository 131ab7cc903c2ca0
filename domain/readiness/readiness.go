package readiness

import (
	"fabline/domain/state"

	"github.com/fundwit/go-commons/types"
)

type ChecklistItem struct {
	ID     types.ID `json:"id"`
	Label  string   `json:"label"`
	Active bool     `json:"active"`

	RequiredFor []state.OrderStatus `json:"requiredFor"`
}

func (i ChecklistItem) IsRequiredFor(status state.OrderStatus) bool {
	if !i.Active {
		return false
	}
	for _, s := range i.RequiredFor {
		if s == status {
			return true
		}
	}
	return false
}

// GateCriteria is the policy slice of a ruleset relevant to one gate
type GateCriteria struct {
	Gate           state.Gate      `json:"gate"`
	ChecklistItems []ChecklistItem `json:"checklistItems"`
	MinAttachments int             `json:"minAttachments"`
	RequireComment bool            `json:"requireComment"`
}

type Missing struct {
	Checklist        []types.ID `json:"checklist"`
	AttachmentsShort int        `json:"attachmentsShort"`
	CommentMissing   bool       `json:"commentMissing"`
}

type Readiness struct {
	Ready   bool    `json:"ready"`
	Missing Missing `json:"missing"`
}

// Evaluate answers whether the gate is satisfied for the given order state.
// It is a pure function, safe to call speculatively for previews.
func Evaluate(criteria GateCriteria, marks map[types.ID]bool, attachmentCount, commentCount int) Readiness {
	missing := Missing{Checklist: []types.ID{}}

	target := criteria.Gate.TargetStatus()
	for _, item := range criteria.ChecklistItems {
		if item.IsRequiredFor(target) && !marks[item.ID] {
			missing.Checklist = append(missing.Checklist, item.ID)
		}
	}
	if attachmentCount < criteria.MinAttachments {
		missing.AttachmentsShort = criteria.MinAttachments - attachmentCount
	}
	if criteria.RequireComment && commentCount == 0 {
		missing.CommentMissing = true
	}

	ready := len(missing.Checklist) == 0 && missing.AttachmentsShort == 0 && !missing.CommentMissing
	return Readiness{Ready: ready, Missing: missing}
}
