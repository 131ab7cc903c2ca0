package flow

import (
	"errors"

	"fabline/authority"
	"fabline/bizerror"
	"fabline/domain"
	"fabline/domain/readiness"
	"fabline/domain/rules"
	"fabline/domain/state"
	"fabline/session"

	"github.com/fundwit/go-commons/types"
)

// ApplyTransition validates and applies an order status transition on the
// given snapshot. The snapshot is never mutated: on success a new snapshot is
// returned together with the history record appended to it, so a caller can
// never observe a status change without its history entry. The caller
// supplies now and the record id to keep the engine deterministic.
func ApplyTransition(d *domain.OrderDetail, target state.OrderStatus, ruleset *rules.Ruleset,
	s *session.Session, now types.Timestamp, recordID types.ID) (*domain.OrderDetail, *domain.OrderStatusRecord, error) {

	if !state.IsValidOrderStatus(target) {
		return nil, nil, bizerror.ErrUnknownStatus
	}

	candidates := state.FindTransitions(d.Status, target)
	if len(candidates) == 0 {
		return nil, nil, bizerror.ErrInvalidState
	}

	var transition *state.Transition
	for i := range candidates {
		if candidates[i].IsRoleAllowed(s.Perms) {
			transition = &candidates[i]
			break
		}
	}
	if transition == nil {
		return nil, nil, bizerror.ErrForbidden
	}

	if transition.Gate != state.GateNone {
		r := EvaluateGate(d, ruleset, transition.Gate)
		if !r.Ready {
			return nil, nil, &bizerror.ErrNotReady{Gate: transition.Gate, Missing: r.Missing}
		}
	}

	next := d.Clone()
	next.Status = target
	next.StatusChangedBy = s.Identity.ID
	next.StatusChangedByName = s.Identity.Nickname
	next.StatusChangedByRole = s.Role()
	next.StatusChangeTime = now

	record := domain.OrderStatusRecord{
		ID: recordID, OrderID: d.ID, Status: target,
		ChangedBy: s.Identity.ID, ChangedByName: s.Identity.Nickname, ChangedByRole: s.Role(),
		ChangeTime: now,
	}
	next.StatusHistory = append(next.StatusHistory, record)

	return &next, &record, nil
}

// EvaluateGate answers gate readiness for the snapshot without touching it,
// safe for speculative next-step previews
func EvaluateGate(d *domain.OrderDetail, ruleset *rules.Ruleset, gate state.Gate) readiness.Readiness {
	return readiness.Evaluate(ruleset.CriteriaFor(gate), d.MarksAsMap(), len(d.Attachments), len(d.Comments))
}

type GateReadiness struct {
	Gate state.Gate `json:"gate"`

	readiness.Readiness
}

func EvaluateGateByName(d *domain.OrderDetail, ruleset *rules.Ruleset, name string) (*GateReadiness, error) {
	gate := state.Gate(name)
	if gate != state.GateEngineering && gate != state.GateProduction {
		return nil, &bizerror.ErrBadParam{Cause: errors.New("unknown gate '" + name + "'")}
	}
	return &GateReadiness{Gate: gate, Readiness: EvaluateGate(d, ruleset, gate)}, nil
}

// ActionSet is the single derivation of every action the acting user may
// request on the order, surfaces render from this instead of re-deriving
// permission checks per screen
type ActionSet struct {
	Transitions []state.Transition `json:"transitions"`

	CanTakeOrder     bool `json:"canTakeOrder"`
	CanReturnToQueue bool `json:"canReturnToQueue"`
	CanAssign        bool `json:"canAssign"`

	EngineeringReadiness readiness.Readiness `json:"engineeringReadiness"`
	ProductionReadiness  readiness.Readiness `json:"productionReadiness"`
}

func AvailableActions(d *domain.OrderDetail, ruleset *rules.Ruleset, s *session.Session) ActionSet {
	actions := ActionSet{
		Transitions: state.AvailableTransitions(d.Status, s.Perms),

		CanTakeOrder: s.Perms.HasRole(authority.RoleEngineering) &&
			d.AssignedEngineerID == 0 && d.Status == state.StatusReadyForEngineering,
		CanReturnToQueue: s.Perms.HasRole(authority.RoleEngineering) &&
			d.AssignedEngineerID == s.Identity.ID && isEngineeringStageStatus(d.Status),
		CanAssign: s.Perms.HasAnyRole(authority.RoleSales, authority.RoleAdmin),

		EngineeringReadiness: EvaluateGate(d, ruleset, state.GateEngineering),
		ProductionReadiness:  EvaluateGate(d, ruleset, state.GateProduction),
	}
	return actions
}

func isEngineeringStageStatus(s state.OrderStatus) bool {
	return s == state.StatusReadyForEngineering || s == state.StatusInEngineering || s == state.StatusEngineeringBlocked
}
