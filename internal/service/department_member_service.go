package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/civicdesk/complaint-service/internal/domain"
	"github.com/civicdesk/complaint-service/internal/repository"
	apperrors "github.com/civicdesk/complaint-service/pkg/util/errorutil"
)

const (
	CodeDepartmentNotActive    = "DEPARTMENT_NOT_ACTIVE"
	CodeOnlyAgentCanBeMember   = "ONLY_AGENT_CAN_BE_DEPARTMENT_MEMBER"
	CodeInvalidMemberRole      = "INVALID_MEMBER_ROLE"
	CodeDepartmentMemberAbsent = "DEPARTMENT_MEMBER_NOT_FOUND"
	CodeAdminRequired          = "ADMIN_REQUIRED"
)

// DepartmentMemberService manages which agents belong to which departments.
type DepartmentMemberService struct {
	repos  repository.Repositories
	tx     repository.TxRunner
	logger *zap.Logger
}

// NewDepartmentMemberService constructs the service.
func NewDepartmentMemberService(repos repository.Repositories, tx repository.TxRunner, logger *zap.Logger) *DepartmentMemberService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DepartmentMemberService{repos: repos, tx: tx, logger: logger}
}

// AddMember adds userID to the department, or reactivates and updates the role of an
// existing row. An empty role means MEMBER.
func (s *DepartmentMemberService) AddMember(ctx context.Context, actorID, departmentID, userID string, role domain.MemberRole) (*domain.DepartmentMember, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	role, err := parseMemberRole(role)
	if err != nil {
		return nil, err
	}

	var member *domain.DepartmentMember
	err = s.tx.WithinTx(ctx, func(r repository.Repositories) error {
		if err := requireActiveDepartment(ctx, r, departmentID); err != nil {
			return err
		}
		if !validID(userID) {
			return apperrors.NewNotFound(CodeUserNotFound, "user not found")
		}
		user, err := r.Users.GetByID(ctx, userID)
		if err != nil {
			return notFoundOr(err, CodeUserNotFound, "user not found")
		}
		if !user.HasRole(domain.RoleAgent) {
			return apperrors.NewBusinessRule(CodeOnlyAgentCanBeMember, "only agents can be department members", nil)
		}

		existing, err := r.Members.Get(ctx, departmentID, userID)
		switch {
		case err == nil:
			existing.Role = role
			existing.Active = true
			if err := r.Members.Update(ctx, existing); err != nil {
				return fmt.Errorf("reactivate member: %w", err)
			}
			member = existing
			return nil
		case !isNoRows(err):
			return err
		}

		member = &domain.DepartmentMember{
			DepartmentID: departmentID,
			UserID:       userID,
			Role:         role,
			Active:       true,
			UserEmail:    user.Email,
			UserPhone:    user.Phone,
		}
		if err := r.Members.Create(ctx, member); err != nil {
			if repository.IsUniqueViolation(err, "") {
				return apperrors.NewConflict("membership was modified concurrently", map[string]any{"userId": userID})
			}
			return fmt.Errorf("insert member: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("department member added",
		zap.String("department_id", departmentID),
		zap.String("user_id", userID),
		zap.String("role", string(role)))
	return member, nil
}

// RemoveMember deactivates the membership. The row is kept.
func (s *DepartmentMemberService) RemoveMember(ctx context.Context, actorID, departmentID, userID string) error {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return err
	}
	return s.tx.WithinTx(ctx, func(r repository.Repositories) error {
		member, err := loadMember(ctx, r, departmentID, userID)
		if err != nil {
			return err
		}
		if !member.Active {
			return nil
		}
		member.Active = false
		return r.Members.Update(ctx, member)
	})
}

// ChangeRole updates the role of an existing membership.
func (s *DepartmentMemberService) ChangeRole(ctx context.Context, actorID, departmentID, userID string, role domain.MemberRole) (*domain.DepartmentMember, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	role = domain.MemberRole(strings.ToUpper(strings.TrimSpace(string(role))))
	if !role.Valid() {
		return nil, apperrors.NewBusinessRule(CodeInvalidMemberRole, "invalid member role", map[string]any{"role": role})
	}
	var member *domain.DepartmentMember
	err := s.tx.WithinTx(ctx, func(r repository.Repositories) error {
		var err error
		member, err = loadMember(ctx, r, departmentID, userID)
		if err != nil {
			return err
		}
		member.Role = role
		return r.Members.Update(ctx, member)
	})
	if err != nil {
		return nil, err
	}
	return member, nil
}

// ListMembers returns active and inactive memberships, active first.
func (s *DepartmentMemberService) ListMembers(ctx context.Context, actorID, departmentID string) ([]domain.DepartmentMember, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	if !validID(departmentID) {
		return nil, apperrors.NewNotFound(CodeDepartmentNotFound, "department not found")
	}
	if _, err := s.repos.Departments.GetByID(ctx, departmentID); err != nil {
		return nil, notFoundOr(err, CodeDepartmentNotFound, "department not found")
	}
	members, err := s.repos.Members.ListByDepartment(ctx, departmentID)
	if err != nil {
		return nil, err
	}
	if members == nil {
		members = []domain.DepartmentMember{}
	}
	return members, nil
}

func (s *DepartmentMemberService) requireAdmin(ctx context.Context, actorID string) error {
	actor, err := s.repos.Users.GetByID(ctx, actorID)
	if err != nil {
		return notFoundOr(err, CodeUserNotFound, "user not found")
	}
	if !actor.HasRole(domain.RoleAdmin) {
		return apperrors.NewForbidden(CodeAdminRequired, "admin role required")
	}
	return nil
}

func requireActiveDepartment(ctx context.Context, r repository.Repositories, departmentID string) error {
	if !validID(departmentID) {
		return apperrors.NewNotFound(CodeDepartmentNotFound, "department not found")
	}
	dept, err := r.Departments.GetByID(ctx, departmentID)
	if err != nil {
		return notFoundOr(err, CodeDepartmentNotFound, "department not found")
	}
	if !dept.IsActive {
		return apperrors.NewBusinessRule(CodeDepartmentNotActive, "department is not active", nil)
	}
	return nil
}

func loadMember(ctx context.Context, r repository.Repositories, departmentID, userID string) (*domain.DepartmentMember, error) {
	if !validID(departmentID) || !validID(userID) {
		return nil, apperrors.NewNotFound(CodeDepartmentMemberAbsent, "department member not found")
	}
	member, err := r.Members.Get(ctx, departmentID, userID)
	if err != nil {
		return nil, notFoundOr(err, CodeDepartmentMemberAbsent, "department member not found")
	}
	return member, nil
}

func parseMemberRole(role domain.MemberRole) (domain.MemberRole, error) {
	role = domain.MemberRole(strings.ToUpper(strings.TrimSpace(string(role))))
	if role == "" {
		return domain.MemberRoleMember, nil
	}
	if !role.Valid() {
		return "", apperrors.NewBusinessRule(CodeInvalidMemberRole, "invalid member role", map[string]any{"role": role})
	}
	return role, nil
}
