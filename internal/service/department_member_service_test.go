package service

import (
	"context"
	"testing"

	"github.com/civicdesk/complaint-service/internal/domain"
)

func TestMemberLifecycle(t *testing.T) {
	f := newFixture(t)
	svc := NewDepartmentMemberService(f.store.repos(), f.store, nil)
	recruit := f.store.addUser("recruit@example.com", domain.RoleAgent)
	ctx := context.Background()

	member, err := svc.AddMember(ctx, f.admin.ID, f.dept.ID, recruit.ID, "")
	if err != nil {
		t.Fatal(err)
	}
	if member.Role != domain.MemberRoleMember || !member.Active {
		t.Fatalf("member = %+v", member)
	}

	if err := svc.RemoveMember(ctx, f.admin.ID, f.dept.ID, recruit.ID); err != nil {
		t.Fatal(err)
	}
	if ok, _ := f.store.repos().Members.IsActiveMember(ctx, recruit.ID, f.dept.ID); ok {
		t.Fatal("removed member must be inactive")
	}
	if err := svc.RemoveMember(ctx, f.admin.ID, f.dept.ID, recruit.ID); err != nil {
		t.Fatalf("second removal should be a no-op: %v", err)
	}

	member, err = svc.AddMember(ctx, f.admin.ID, f.dept.ID, recruit.ID, "manager")
	if err != nil {
		t.Fatal(err)
	}
	if !member.Active || member.Role != domain.MemberRoleManager {
		t.Fatalf("reactivated member = %+v", member)
	}

	members, err := svc.ListMembers(ctx, f.admin.ID, f.dept.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(members) != 2 {
		t.Fatalf("members = %d, want 2 (one row per user)", len(members))
	}

	member, err = svc.ChangeRole(ctx, f.admin.ID, f.dept.ID, recruit.ID, domain.MemberRoleMember)
	if err != nil || member.Role != domain.MemberRoleMember {
		t.Fatalf("ChangeRole = %+v, %v", member, err)
	}
}

func TestMemberRules(t *testing.T) {
	f := newFixture(t)
	svc := NewDepartmentMemberService(f.store.repos(), f.store, nil)
	inactive := f.store.addDepartment("Archive", false)
	ctx := context.Background()

	_, err := svc.AddMember(ctx, f.agent.ID, f.dept.ID, f.outsider.ID, "")
	wantCode(t, err, CodeAdminRequired)

	_, err = svc.AddMember(ctx, f.admin.ID, f.dept.ID, f.citizen.ID, "")
	wantCode(t, err, CodeOnlyAgentCanBeMember)

	_, err = svc.AddMember(ctx, f.admin.ID, inactive.ID, f.outsider.ID, "")
	wantCode(t, err, CodeDepartmentNotActive)

	_, err = svc.AddMember(ctx, f.admin.ID, f.dept.ID, f.outsider.ID, "OWNER")
	wantCode(t, err, CodeInvalidMemberRole)

	_, err = svc.AddMember(ctx, f.admin.ID, "9b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d", f.outsider.ID, "")
	wantCode(t, err, CodeDepartmentNotFound)

	err = svc.RemoveMember(ctx, f.admin.ID, f.dept.ID, f.citizen.ID)
	wantCode(t, err, CodeDepartmentMemberAbsent)

	_, err = svc.ChangeRole(ctx, f.admin.ID, f.dept.ID, f.agent.ID, "BOSS")
	wantCode(t, err, CodeInvalidMemberRole)
}
