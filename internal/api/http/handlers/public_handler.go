package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/civicdesk/complaint-service/internal/api/dto"
	"github.com/civicdesk/complaint-service/internal/service"
	apperrors "github.com/civicdesk/complaint-service/pkg/util/errorutil"
)

// PublicHandler serves unauthenticated endpoints.
type PublicHandler struct {
	complaints *service.ComplaintService
	feed       *service.PublicFeedProjector
	catalog    *service.CatalogService
}

// NewPublicHandler constructs handler.
func NewPublicHandler(complaints *service.ComplaintService, feed *service.PublicFeedProjector, catalog *service.CatalogService) *PublicHandler {
	return &PublicHandler{complaints: complaints, feed: feed, catalog: catalog}
}

// Track GET /api/public/track/:code.
func (h *PublicHandler) Track(c *fiber.Ctx) error {
	complaint, err := h.complaints.TrackByCode(c.UserContext(), c.Params("code"))
	if err != nil {
		return err
	}
	if complaint == nil {
		return apperrors.NewNotFound(service.CodeComplaintNotFound, "no complaint with this tracking code")
	}
	return data(c, http.StatusOK, dto.TrackResponse{
		TrackingCode:   complaint.TrackingCode,
		Status:         complaint.Status,
		DepartmentName: complaint.DepartmentName,
	})
}

// Feed GET /api/public/feed?categoryId=&departmentId=&page=&size=.
func (h *PublicHandler) Feed(c *fiber.Ctx) error {
	page, size := pageParams(c)
	result, err := h.feed.Feed(c.UserContext(), service.PublicFeedQuery{
		CategoryID:   c.Query("categoryId"),
		DepartmentID: c.Query("departmentId"),
		Page:         page,
		Size:         size,
	})
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, result)
}

// Categories GET /api/public/categories.
func (h *PublicHandler) Categories(c *fiber.Ctx) error {
	items, err := h.catalog.ListActiveCategories(c.UserContext())
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewCategoryResponses(items))
}

// Departments GET /api/public/departments.
func (h *PublicHandler) Departments(c *fiber.Ctx) error {
	items, err := h.catalog.ListActiveDepartments(c.UserContext())
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewDepartmentResponses(items))
}
