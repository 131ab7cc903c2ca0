package flow

import (
	"fabline/authority"
	"fabline/bizerror"
	"fabline/domain"
	"fabline/domain/state"
	"fabline/session"

	"github.com/fundwit/go-commons/types"
)

// Manual assignment of either slot is a sales or admin action with no
// status side effect, permitted at any status.

func AssignEngineer(d *domain.OrderDetail, userID types.ID, userName string,
	s *session.Session, now types.Timestamp) (*domain.OrderDetail, error) {

	if !s.Perms.HasAnyRole(authority.RoleSales, authority.RoleAdmin) {
		return nil, bizerror.ErrForbidden
	}
	next := d.Clone()
	next.AssignedEngineerID = userID
	next.AssignedEngineerName = userName
	next.EngineerAssignTime = now
	return &next, nil
}

func ClearEngineer(d *domain.OrderDetail, s *session.Session) (*domain.OrderDetail, error) {
	if !s.Perms.HasAnyRole(authority.RoleSales, authority.RoleAdmin) {
		return nil, bizerror.ErrForbidden
	}
	next := d.Clone()
	next.AssignedEngineerID = 0
	next.AssignedEngineerName = ""
	next.EngineerAssignTime = types.Timestamp{}
	return &next, nil
}

func AssignManager(d *domain.OrderDetail, userID types.ID, userName string,
	s *session.Session, now types.Timestamp) (*domain.OrderDetail, error) {

	if !s.Perms.HasAnyRole(authority.RoleSales, authority.RoleAdmin) {
		return nil, bizerror.ErrForbidden
	}
	next := d.Clone()
	next.AssignedManagerID = userID
	next.AssignedManagerName = userName
	next.ManagerAssignTime = now
	return &next, nil
}

func ClearManager(d *domain.OrderDetail, s *session.Session) (*domain.OrderDetail, error) {
	if !s.Perms.HasAnyRole(authority.RoleSales, authority.RoleAdmin) {
		return nil, bizerror.ErrForbidden
	}
	next := d.Clone()
	next.AssignedManagerID = 0
	next.AssignedManagerName = ""
	next.ManagerAssignTime = types.Timestamp{}
	return &next, nil
}

// TakeOrder lets an engineer claim an unassigned order waiting for
// engineering, without a status change
func TakeOrder(d *domain.OrderDetail, s *session.Session, now types.Timestamp) (*domain.OrderDetail, error) {
	if !s.Perms.HasRole(authority.RoleEngineering) {
		return nil, bizerror.ErrForbidden
	}
	if d.Status != state.StatusReadyForEngineering || d.AssignedEngineerID != 0 {
		return nil, bizerror.ErrInvalidState
	}

	next := d.Clone()
	next.AssignedEngineerID = s.Identity.ID
	next.AssignedEngineerName = s.Identity.Nickname
	next.EngineerAssignTime = now
	return &next, nil
}

// ReturnToQueue un-assigns the acting engineer, when the order already left
// the queue its status is forced back to READY_FOR_ENGINEERING with a history
// record. Returns nil record when only the assignment changed.
func ReturnToQueue(d *domain.OrderDetail, s *session.Session,
	now types.Timestamp, recordID types.ID) (*domain.OrderDetail, *domain.OrderStatusRecord, error) {

	if !s.Perms.HasRole(authority.RoleEngineering) {
		return nil, nil, bizerror.ErrForbidden
	}
	if d.AssignedEngineerID != s.Identity.ID {
		return nil, nil, bizerror.ErrForbidden
	}
	if !isEngineeringStageStatus(d.Status) {
		return nil, nil, bizerror.ErrInvalidState
	}

	next := d.Clone()
	next.AssignedEngineerID = 0
	next.AssignedEngineerName = ""
	next.EngineerAssignTime = types.Timestamp{}

	if d.Status == state.StatusReadyForEngineering {
		return &next, nil, nil
	}

	next.Status = state.StatusReadyForEngineering
	next.StatusChangedBy = s.Identity.ID
	next.StatusChangedByName = s.Identity.Nickname
	next.StatusChangedByRole = s.Role()
	next.StatusChangeTime = now

	record := domain.OrderStatusRecord{
		ID: recordID, OrderID: d.ID, Status: state.StatusReadyForEngineering,
		ChangedBy: s.Identity.ID, ChangedByName: s.Identity.Nickname, ChangedByRole: s.Role(),
		ChangeTime: now,
	}
	next.StatusHistory = append(next.StatusHistory, record)

	return &next, &record, nil
}
