package flow

import (
	"fabline/bizerror"
	"fabline/domain"
	"fabline/domain/rules"
	"fabline/domain/state"
	"fabline/session"

	"github.com/fundwit/go-commons/types"
)

// ApplyExternalJobTransition moves an external job to the target status.
// Any status is reachable from any other and no role is restricted, the only
// gate is the per-target-status attachment minimum of the ruleset. History
// semantics match the order lifecycle: append-only, computed together with
// the status change, input snapshot untouched.
func ApplyExternalJobTransition(d *domain.ExternalJobDetail, target state.ExternalJobStatus,
	ruleset *rules.Ruleset, s *session.Session,
	now types.Timestamp, recordID types.ID) (*domain.ExternalJobDetail, *domain.ExternalJobStatusRecord, error) {

	if !state.IsValidExternalJobStatus(target) {
		return nil, nil, bizerror.ErrUnknownStatus
	}

	required := ruleset.MinAttachmentsFor(target)
	if len(d.Attachments) < required {
		return nil, nil, &bizerror.ErrInsufficientAttachments{
			Status: target, Shortfall: required - len(d.Attachments),
		}
	}

	next := d.Clone()
	next.Status = target
	next.StatusChangedBy = s.Identity.ID
	next.StatusChangedByName = s.Identity.Nickname
	next.StatusChangedByRole = s.Role()
	next.StatusChangeTime = now

	record := domain.ExternalJobStatusRecord{
		ID: recordID, ExternalJobID: d.ID, Status: target,
		ChangedBy: s.Identity.ID, ChangedByName: s.Identity.Nickname, ChangedByRole: s.Role(),
		ChangeTime: now,
	}
	next.StatusHistory = append(next.StatusHistory, record)

	return &next, &record, nil
}
