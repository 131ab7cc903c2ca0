package flow_test

import (
	"testing"
	"time"

	"fabline/authority"
	"fabline/bizerror"
	"fabline/domain"
	"fabline/domain/flow"
	"fabline/domain/state"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/gomega"
)

func buildExternalJobDetail(status state.ExternalJobStatus) *domain.ExternalJobDetail {
	return &domain.ExternalJobDetail{
		ExternalJob: domain.ExternalJob{ID: 500, OrderID: 100, PartnerID: 60, PartnerName: "Acme Anodizing",
			Status: status},
		Attachments:   []domain.Attachment{},
		StatusHistory: []domain.ExternalJobStatusRecord{},
	}
}

func TestApplyExternalJobTransition(t *testing.T) {
	RegisterTestingT(t)

	now := types.TimestampOfDate(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("should reject unknown target status", func(t *testing.T) {
		d := buildExternalJobDetail(state.ExternalJobRequested)
		_, _, err := flow.ApplyExternalJobTransition(d, "DONE", buildRuleset(), buildSession(3, authority.RoleProduction), now, 910)
		Expect(err).To(Equal(bizerror.ErrUnknownStatus))
	})

	t.Run("any status may reach any other when the attachment minimum holds", func(t *testing.T) {
		d := buildExternalJobDetail(state.ExternalJobApproved)
		next, record, err := flow.ApplyExternalJobTransition(d, state.ExternalJobRequested, buildRuleset(), buildSession(3, authority.RoleProduction), now, 910)
		Expect(err).To(BeNil())
		Expect(next.Status).To(Equal(state.ExternalJobRequested))
		Expect(record.Status).To(Equal(state.ExternalJobRequested))
	})

	t.Run("should block a target short of attachments with the exact shortfall", func(t *testing.T) {
		d := buildExternalJobDetail(state.ExternalJobInProgress)
		_, _, err := flow.ApplyExternalJobTransition(d, state.ExternalJobDelivered, buildRuleset(), buildSession(3, authority.RoleProduction), now, 910)

		short, ok := err.(*bizerror.ErrInsufficientAttachments)
		Expect(ok).To(BeTrue())
		Expect(short.Status).To(Equal(state.ExternalJobDelivered))
		Expect(short.Shortfall).To(Equal(1))

		// input snapshot untouched
		Expect(d.Status).To(Equal(state.ExternalJobInProgress))
		Expect(d.StatusHistory).To(BeEmpty())
	})

	t.Run("should pass once the attachments are uploaded", func(t *testing.T) {
		d := buildExternalJobDetail(state.ExternalJobInProgress)
		d.Attachments = []domain.Attachment{{ID: 71, OwnerType: domain.AttachmentOwnerExternalJob, OwnerID: 500}}

		s := buildSession(3, authority.RoleProduction)
		next, record, err := flow.ApplyExternalJobTransition(d, state.ExternalJobDelivered, buildRuleset(), s, now, 910)
		Expect(err).To(BeNil())
		Expect(next.Status).To(Equal(state.ExternalJobDelivered))
		Expect(next.StatusChangedBy).To(Equal(types.ID(3)))
		Expect(next.StatusChangeTime).To(Equal(now))

		Expect(*record).To(Equal(domain.ExternalJobStatusRecord{
			ID: 910, ExternalJobID: 500, Status: state.ExternalJobDelivered,
			ChangedBy: 3, ChangedByName: "User", ChangedByRole: authority.RoleProduction, ChangeTime: now,
		}))
		Expect(next.StatusHistory).To(Equal([]domain.ExternalJobStatusRecord{*record}))
	})

	t.Run("statuses without a configured minimum need no attachments", func(t *testing.T) {
		d := buildExternalJobDetail(state.ExternalJobRequested)
		next, _, err := flow.ApplyExternalJobTransition(d, state.ExternalJobCancelled, buildRuleset(), buildSession(1, authority.RoleSales), now, 911)
		Expect(err).To(BeNil())
		Expect(next.Status).To(Equal(state.ExternalJobCancelled))
	})
}
