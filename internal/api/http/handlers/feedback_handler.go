package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/civicdesk/complaint-service/internal/api/dto"
	"github.com/civicdesk/complaint-service/internal/service"
)

// FeedbackHandler manages citizen ratings.
type FeedbackHandler struct {
	feedback *service.FeedbackService
}

// NewFeedbackHandler constructs handler.
func NewFeedbackHandler(feedback *service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedback: feedback}
}

// Upsert PUT /api/citizen/complaints/:id/feedback.
func (h *FeedbackHandler) Upsert(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	var req dto.RatingRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	stats, err := h.feedback.UpsertRating(c.UserContext(), principal.UserID, c.Params("id"), req.Rating)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, statsResponse(stats))
}

// Mine GET /api/citizen/complaints/:id/feedback.
func (h *FeedbackHandler) Mine(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	rating, err := h.feedback.GetMyRating(c.UserContext(), principal.UserID, c.Params("id"))
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.MyRatingResponse{Rating: rating})
}

// Stats GET /api/public/complaints/:id/feedback/stats. A signed in citizen also gets
// their own rating back.
func (h *FeedbackHandler) Stats(c *fiber.Ctx) error {
	var citizenID string
	if principal, err := principalFrom(c); err == nil {
		citizenID = principal.UserID
	}
	stats, err := h.feedback.GetStats(c.UserContext(), c.Params("id"), citizenID)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, statsResponse(stats))
}

func statsResponse(s *service.FeedbackStats) dto.FeedbackStatsResponse {
	return dto.FeedbackStatsResponse{ComplaintID: s.ComplaintID, Avg: s.Avg, Count: s.Count, MyRating: s.MyRating}
}
