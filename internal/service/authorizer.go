package service

import (
	"context"
	"fmt"

	"github.com/civicdesk/complaint-service/internal/domain"
	"github.com/civicdesk/complaint-service/pkg/util/errorutil"
)

const (
	CodeOnlyStaff           = "ONLY_STAFF_CAN_CHANGE_STATUS"
	CodeNotDepartmentMember = "NOT_A_MEMBER_OF_THIS_DEPARTMENT"
	CodeNoDepartment        = "COMPLAINT_HAS_NO_DEPARTMENT"
)

// MembershipChecker answers whether a user actively belongs to a department.
type MembershipChecker interface {
	IsActiveMember(ctx context.Context, userID, departmentID string) (bool, error)
}

// DepartmentAuthorizer decides whether a staff actor may operate on a complaint.
type DepartmentAuthorizer struct {
	members MembershipChecker
}

// NewDepartmentAuthorizer constructs the authorizer.
func NewDepartmentAuthorizer(members MembershipChecker) *DepartmentAuthorizer {
	return &DepartmentAuthorizer{members: members}
}

// Authorize returns nil when actor may act on complaint. ADMIN bypasses the
// department check; AGENT must be an active member of the complaint's department.
func (a *DepartmentAuthorizer) Authorize(ctx context.Context, actor *domain.User, complaint *domain.Complaint) error {
	requiresMembership, err := staffScope(actor)
	if err != nil || !requiresMembership {
		return err
	}
	if complaint.DepartmentID == nil {
		return errorutil.NewBusinessRule(CodeNoDepartment, "complaint has no department", nil)
	}
	member, err := a.members.IsActiveMember(ctx, actor.ID, *complaint.DepartmentID)
	if err != nil {
		return fmt.Errorf("check membership: %w", err)
	}
	if !member {
		return errorutil.NewForbidden(CodeNotDepartmentMember, "not a member of this department")
	}
	return nil
}

// staffScope is the pure role predicate: it rejects non-staff and reports whether a
// department membership check still applies.
func staffScope(actor *domain.User) (requiresMembership bool, err error) {
	if !actor.IsStaff() {
		return false, errorutil.NewForbidden(CodeOnlyStaff, "only staff can change complaint status")
	}
	return !actor.HasRole(domain.RoleAdmin), nil
}
