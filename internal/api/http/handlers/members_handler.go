package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/civicdesk/complaint-service/internal/api/dto"
	"github.com/civicdesk/complaint-service/internal/domain"
	"github.com/civicdesk/complaint-service/internal/service"
)

// MembersHandler exposes admin department membership endpoints.
type MembersHandler struct {
	members *service.DepartmentMemberService
}

// NewMembersHandler constructs handler.
func NewMembersHandler(members *service.DepartmentMemberService) *MembersHandler {
	return &MembersHandler{members: members}
}

// Add POST /api/admin/departments/:id/members.
func (h *MembersHandler) Add(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	var req dto.AddMemberRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	member, err := h.members.AddMember(c.UserContext(), principal.UserID, c.Params("id"), req.UserID, domain.MemberRole(req.Role))
	if err != nil {
		return err
	}
	return data(c, http.StatusCreated, dto.NewMemberResponse(member))
}

// List GET /api/admin/departments/:id/members.
func (h *MembersHandler) List(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	members, err := h.members.ListMembers(c.UserContext(), principal.UserID, c.Params("id"))
	if err != nil {
		return err
	}
	out := make([]dto.MemberResponse, 0, len(members))
	for i := range members {
		out = append(out, dto.NewMemberResponse(&members[i]))
	}
	return data(c, http.StatusOK, out)
}

// Remove DELETE /api/admin/departments/:id/members/:userId.
func (h *MembersHandler) Remove(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	if err := h.members.RemoveMember(c.UserContext(), principal.UserID, c.Params("id"), c.Params("userId")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ChangeRole PATCH /api/admin/departments/:id/members/:userId.
func (h *MembersHandler) ChangeRole(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	var req dto.ChangeRoleRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	member, err := h.members.ChangeRole(c.UserContext(), principal.UserID, c.Params("id"), c.Params("userId"), domain.MemberRole(req.Role))
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewMemberResponse(member))
}
