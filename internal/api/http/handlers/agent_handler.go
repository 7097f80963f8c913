package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/civicdesk/complaint-service/internal/api/dto"
	"github.com/civicdesk/complaint-service/internal/domain"
	"github.com/civicdesk/complaint-service/internal/service"
)

// AgentHandler serves the staff work queue.
type AgentHandler struct {
	complaints *service.ComplaintService
}

// NewAgentHandler constructs handler.
func NewAgentHandler(complaints *service.ComplaintService) *AgentHandler {
	return &AgentHandler{complaints: complaints}
}

// List GET /api/agent/complaints?q=&status=NEW,IN_REVIEW&page=&size=.
func (h *AgentHandler) List(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	var statuses []domain.ComplaintStatus
	for _, s := range csvQuery(c, "status") {
		statuses = append(statuses, domain.ComplaintStatus(strings.ToUpper(s)))
	}
	page, size := pageParams(c)
	result, err := h.complaints.ListForAgent(c.UserContext(), service.AgentListInput{
		ActorID:  principal.UserID,
		Query:    c.Query("q"),
		Statuses: statuses,
		Page:     page,
		Size:     size,
	})
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.PageResponse[dto.ComplaintResponse]{
		Items: dto.NewComplaintResponses(result.Items),
		Total: result.Total,
		Page:  result.Page,
		Size:  result.Size,
	})
}

// ChangeStatus POST /api/agent/complaints/:id/status.
func (h *AgentHandler) ChangeStatus(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	var req dto.ChangeStatusRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	complaint, err := h.complaints.ChangeStatus(c.UserContext(), service.ChangeStatusInput{
		ActorID:      principal.UserID,
		ComplaintID:  c.Params("id"),
		ToStatus:     domain.ComplaintStatus(strings.ToUpper(strings.TrimSpace(req.ToStatus))),
		Note:         req.Note,
		PublicAnswer: req.PublicAnswer,
	})
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewComplaintResponse(complaint))
}
