package service

import (
	"context"
	"errors"
	"testing"

	"github.com/civicdesk/complaint-service/internal/domain"
)

type stubMembership map[string]bool

func (s stubMembership) IsActiveMember(_ context.Context, userID, departmentID string) (bool, error) {
	if userID == "broken" {
		return false, errors.New("db down")
	}
	return s[departmentID+"|"+userID], nil
}

func TestDepartmentAuthorizer(t *testing.T) {
	dept := "dept-1"
	complaint := &domain.Complaint{ID: "c-1", DepartmentID: &dept}
	authz := NewDepartmentAuthorizer(stubMembership{"dept-1|member": true})

	tests := []struct {
		name      string
		actor     *domain.User
		complaint *domain.Complaint
		wantCode  string
	}{
		{"citizen", &domain.User{ID: "cit", Roles: []domain.Role{domain.RoleCitizen}}, complaint, CodeOnlyStaff},
		{"no roles", &domain.User{ID: "nobody"}, complaint, CodeOnlyStaff},
		{"member agent", &domain.User{ID: "member", Roles: []domain.Role{domain.RoleAgent}}, complaint, ""},
		{"non member agent", &domain.User{ID: "stranger", Roles: []domain.Role{domain.RoleAgent}}, complaint, CodeNotDepartmentMember},
		{"admin", &domain.User{ID: "boss", Roles: []domain.Role{domain.RoleAdmin}}, complaint, ""},
		{"admin without department", &domain.User{ID: "boss", Roles: []domain.Role{domain.RoleAdmin}}, &domain.Complaint{ID: "c-2"}, ""},
		{"agent without department", &domain.User{ID: "member", Roles: []domain.Role{domain.RoleAgent}}, &domain.Complaint{ID: "c-2"}, CodeNoDepartment},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := authz.Authorize(context.Background(), tt.actor, tt.complaint)
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			wantCode(t, err, tt.wantCode)
		})
	}
}

func TestDepartmentAuthorizerPropagatesLookupErrors(t *testing.T) {
	dept := "dept-1"
	authz := NewDepartmentAuthorizer(stubMembership{})
	err := authz.Authorize(context.Background(),
		&domain.User{ID: "broken", Roles: []domain.Role{domain.RoleAgent}},
		&domain.Complaint{DepartmentID: &dept})
	if err == nil || errorCodeOf(err) != "" {
		t.Fatalf("expected plain infrastructure error, got %v", err)
	}
}
