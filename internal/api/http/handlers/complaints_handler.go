package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/civicdesk/complaint-service/internal/api/dto"
	"github.com/civicdesk/complaint-service/internal/service"
)

// ComplaintsHandler manages citizen complaint endpoints.
type ComplaintsHandler struct {
	complaints *service.ComplaintService
}

// NewComplaintsHandler constructs handler.
func NewComplaintsHandler(complaints *service.ComplaintService) *ComplaintsHandler {
	return &ComplaintsHandler{complaints: complaints}
}

// Create POST /api/citizen/complaints.
func (h *ComplaintsHandler) Create(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	var req dto.CreateComplaintRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	complaint, err := h.complaints.Create(c.UserContext(), service.CreateComplaintInput{
		CitizenID:   principal.UserID,
		Title:       req.Title,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Lat:         req.Lat,
		Lon:         req.Lon,
	})
	if err != nil {
		return err
	}
	return data(c, http.StatusCreated, dto.NewComplaintResponse(complaint))
}

// ListMine GET /api/citizen/complaints.
func (h *ComplaintsHandler) ListMine(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	page, size := pageParams(c)
	result, err := h.complaints.ListMine(c.UserContext(), principal.UserID, page, size)
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

// Get GET /api/citizen/complaints/:id.
func (h *ComplaintsHandler) Get(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	complaint, err := h.complaints.GetMine(c.UserContext(), c.Params("id"), principal.UserID)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewComplaintResponse(complaint))
}

// History GET /api/citizen/complaints/:id/history.
func (h *ComplaintsHandler) History(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	history, err := h.complaints.GetHistory(c.UserContext(), c.Params("id"), principal.UserID)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewHistoryResponses(history))
}
