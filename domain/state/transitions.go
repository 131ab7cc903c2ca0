package state

import "fabline/authority"

type Action string

const (
	ActionSendToEngineering = Action("send-to-engineering")
	ActionStartEngineering  = Action("start-engineering")
	ActionBlockEngineering  = Action("block-engineering")
	ActionResumeEngineering = Action("resume-engineering")
	ActionSendToProduction  = Action("send-to-production")
	ActionStartProduction   = Action("start-production")
	ActionSendBack          = Action("send-back")
)

type Transition struct {
	Name Action      `json:"name"`
	From OrderStatus `json:"from"`
	To   OrderStatus `json:"to"`

	Roles []authority.Role `json:"roles"`
	Gate  Gate             `json:"gate"`
}

// Transitions is the authoritative transition table of the order lifecycle.
// Every surface derives permitted actions from this table instead of
// re-deriving permission checks on its own.
var Transitions = []Transition{
	{Name: ActionSendToEngineering, From: StatusDraft, To: StatusReadyForEngineering,
		Roles: []authority.Role{authority.RoleSales}, Gate: GateEngineering},

	{Name: ActionStartEngineering, From: StatusReadyForEngineering, To: StatusInEngineering,
		Roles: []authority.Role{authority.RoleEngineering}},

	{Name: ActionBlockEngineering, From: StatusInEngineering, To: StatusEngineeringBlocked,
		Roles: []authority.Role{authority.RoleEngineering}},
	{Name: ActionResumeEngineering, From: StatusEngineeringBlocked, To: StatusInEngineering,
		Roles: []authority.Role{authority.RoleEngineering}},

	{Name: ActionSendToProduction, From: StatusInEngineering, To: StatusReadyForProduction,
		Roles: []authority.Role{authority.RoleEngineering}, Gate: GateProduction},

	{Name: ActionStartProduction, From: StatusReadyForProduction, To: StatusInProduction,
		Roles: []authority.Role{authority.RoleProduction}},

	// send back: sales always resets one stage group back to draft,
	// engineering steps back exactly one workflow stage
	{Name: ActionSendBack, From: StatusReadyForEngineering, To: StatusDraft,
		Roles: []authority.Role{authority.RoleSales}},
	{Name: ActionSendBack, From: StatusInEngineering, To: StatusDraft,
		Roles: []authority.Role{authority.RoleSales}},
	{Name: ActionSendBack, From: StatusEngineeringBlocked, To: StatusDraft,
		Roles: []authority.Role{authority.RoleSales}},
	{Name: ActionSendBack, From: StatusInEngineering, To: StatusReadyForEngineering,
		Roles: []authority.Role{authority.RoleEngineering}},
	{Name: ActionSendBack, From: StatusEngineeringBlocked, To: StatusReadyForEngineering,
		Roles: []authority.Role{authority.RoleEngineering}},
	{Name: ActionSendBack, From: StatusReadyForProduction, To: StatusInEngineering,
		Roles: []authority.Role{authority.RoleEngineering}},
}

func (t Transition) IsRoleAllowed(perms authority.Permissions) bool {
	for _, role := range t.Roles {
		if perms.HasRole(role) {
			return true
		}
	}
	return false
}

// FindTransitions returns the table entries matching the given from and to
// status, an empty string matches any value
func FindTransitions(fromStatus, toStatus OrderStatus) []Transition {
	r := []Transition{}
	for _, transition := range Transitions {
		if (fromStatus == "" || fromStatus == transition.From) && (toStatus == "" || toStatus == transition.To) {
			r = append(r, transition)
		}
	}
	return r
}

// AvailableTransitions returns the table entries leaving the given status
// which the given permissions are allowed to request
func AvailableTransitions(fromStatus OrderStatus, perms authority.Permissions) []Transition {
	r := []Transition{}
	for _, transition := range Transitions {
		if transition.From == fromStatus && transition.IsRoleAllowed(perms) {
			r = append(r, transition)
		}
	}
	return r
}

// SendBackTarget resolves the target status of a send-back request for the
// acting role: undo one workflow stage, not reset to start
func SendBackTarget(current OrderStatus, perms authority.Permissions) (OrderStatus, bool) {
	for _, transition := range Transitions {
		if transition.Name == ActionSendBack && transition.From == current && transition.IsRoleAllowed(perms) {
			return transition.To, true
		}
	}
	return "", false
}
