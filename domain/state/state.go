package state

type OrderStatus string

const (
	StatusDraft               = OrderStatus("DRAFT")
	StatusReadyForEngineering = OrderStatus("READY_FOR_ENGINEERING")
	StatusInEngineering       = OrderStatus("IN_ENGINEERING")
	StatusEngineeringBlocked  = OrderStatus("ENGINEERING_BLOCKED")
	StatusReadyForProduction  = OrderStatus("READY_FOR_PRODUCTION")
	StatusInProduction        = OrderStatus("IN_PRODUCTION")
)

var OrderStatuses = []OrderStatus{
	StatusDraft, StatusReadyForEngineering, StatusInEngineering,
	StatusEngineeringBlocked, StatusReadyForProduction, StatusInProduction,
}

func IsValidOrderStatus(s OrderStatus) bool {
	for _, v := range OrderStatuses {
		if v == s {
			return true
		}
	}
	return false
}

type Priority string

const (
	PriorityLow    = Priority("LOW")
	PriorityNormal = Priority("NORMAL")
	PriorityHigh   = Priority("HIGH")
	PriorityUrgent = Priority("URGENT")
)

type ExternalJobStatus string

const (
	ExternalJobRequested  = ExternalJobStatus("REQUESTED")
	ExternalJobOrdered    = ExternalJobStatus("ORDERED")
	ExternalJobInProgress = ExternalJobStatus("IN_PROGRESS")
	ExternalJobDelivered  = ExternalJobStatus("DELIVERED")
	ExternalJobApproved   = ExternalJobStatus("APPROVED")
	ExternalJobCancelled  = ExternalJobStatus("CANCELLED")
)

var ExternalJobStatuses = []ExternalJobStatus{
	ExternalJobRequested, ExternalJobOrdered, ExternalJobInProgress,
	ExternalJobDelivered, ExternalJobApproved, ExternalJobCancelled,
}

func IsValidExternalJobStatus(s ExternalJobStatus) bool {
	for _, v := range ExternalJobStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// external job statuses which end the job from the overdue point of view
func IsSettledExternalJobStatus(s ExternalJobStatus) bool {
	return s == ExternalJobDelivered || s == ExternalJobApproved || s == ExternalJobCancelled
}

type Gate string

const (
	GateNone        = Gate("")
	GateEngineering = Gate("engineering")
	GateProduction  = Gate("production")
)

// TargetStatus is the order status guarded by the gate
func (g Gate) TargetStatus() OrderStatus {
	if g == GateEngineering {
		return StatusReadyForEngineering
	}
	if g == GateProduction {
		return StatusReadyForProduction
	}
	return ""
}
