package state_test

import (
	"fabline/authority"
	"fabline/domain/state"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Transitions", func() {
	Describe("FindTransitions", func() {
		It("should find transitions by from and to status", func() {
			found := state.FindTransitions(state.StatusDraft, state.StatusReadyForEngineering)
			Expect(len(found)).To(Equal(1))
			Expect(found[0].Name).To(Equal(state.ActionSendToEngineering))
			Expect(found[0].Gate).To(Equal(state.GateEngineering))
			Expect(found[0].Roles).To(Equal([]authority.Role{authority.RoleSales}))

			Expect(state.FindTransitions(state.StatusDraft, state.StatusInProduction)).To(BeEmpty())
			Expect(state.FindTransitions(state.StatusInProduction, "")).To(BeEmpty())
		})

		It("should match any value for an empty status", func() {
			leaving := state.FindTransitions(state.StatusInEngineering, "")
			Expect(len(leaving)).To(Equal(4))

			entering := state.FindTransitions("", state.StatusDraft)
			Expect(len(entering)).To(Equal(3))
			for _, t := range entering {
				Expect(t.Name).To(Equal(state.ActionSendBack))
				Expect(t.Roles).To(Equal([]authority.Role{authority.RoleSales}))
			}
		})
	})

	Describe("IsRoleAllowed", func() {
		It("should only allow the roles listed on the transition", func() {
			t := state.FindTransitions(state.StatusReadyForEngineering, state.StatusInEngineering)[0]
			Expect(t.IsRoleAllowed(authority.Permissions{authority.RoleEngineering})).To(BeTrue())
			Expect(t.IsRoleAllowed(authority.Permissions{authority.RoleSales})).To(BeFalse())
			Expect(t.IsRoleAllowed(authority.Permissions{authority.RoleAdmin})).To(BeFalse())
			Expect(t.IsRoleAllowed(authority.Permissions{})).To(BeFalse())
		})
	})

	Describe("AvailableTransitions", func() {
		It("should filter by from status and acting role", func() {
			available := state.AvailableTransitions(state.StatusInEngineering, authority.Permissions{authority.RoleEngineering})
			Expect(len(available)).To(Equal(3))
			names := []state.Action{}
			for _, t := range available {
				names = append(names, t.Name)
			}
			Expect(names).To(ConsistOf(state.ActionBlockEngineering, state.ActionSendToProduction, state.ActionSendBack))

			available = state.AvailableTransitions(state.StatusInEngineering, authority.Permissions{authority.RoleSales})
			Expect(len(available)).To(Equal(1))
			Expect(available[0].Name).To(Equal(state.ActionSendBack))
			Expect(available[0].To).To(Equal(state.StatusDraft))

			Expect(state.AvailableTransitions(state.StatusDraft, authority.Permissions{authority.RoleProduction})).To(BeEmpty())
		})
	})

	Describe("SendBackTarget", func() {
		It("should step engineering back exactly one stage", func() {
			target, ok := state.SendBackTarget(state.StatusReadyForProduction, authority.Permissions{authority.RoleEngineering})
			Expect(ok).To(BeTrue())
			Expect(target).To(Equal(state.StatusInEngineering))

			target, ok = state.SendBackTarget(state.StatusEngineeringBlocked, authority.Permissions{authority.RoleEngineering})
			Expect(ok).To(BeTrue())
			Expect(target).To(Equal(state.StatusReadyForEngineering))
		})

		It("should reset to draft for sales", func() {
			target, ok := state.SendBackTarget(state.StatusInEngineering, authority.Permissions{authority.RoleSales})
			Expect(ok).To(BeTrue())
			Expect(target).To(Equal(state.StatusDraft))
		})

		It("should resolve nothing when no send-back leaves the status for the role", func() {
			_, ok := state.SendBackTarget(state.StatusDraft, authority.Permissions{authority.RoleSales})
			Expect(ok).To(BeFalse())

			_, ok = state.SendBackTarget(state.StatusReadyForProduction, authority.Permissions{authority.RoleSales})
			Expect(ok).To(BeFalse())
		})
	})

	Describe("Gate", func() {
		It("should guard the ready statuses", func() {
			Expect(state.GateEngineering.TargetStatus()).To(Equal(state.StatusReadyForEngineering))
			Expect(state.GateProduction.TargetStatus()).To(Equal(state.StatusReadyForProduction))
			Expect(state.GateNone.TargetStatus()).To(Equal(state.OrderStatus("")))
		})
	})
})
