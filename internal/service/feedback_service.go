package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/civicdesk/complaint-service/internal/domain"
	"github.com/civicdesk/complaint-service/internal/events"
	"github.com/civicdesk/complaint-service/internal/observability"
	"github.com/civicdesk/complaint-service/internal/repository"
	"github.com/civicdesk/complaint-service/pkg/util/errorutil"
)

const (
	CodeOnlyCitizenCanRate = "ONLY_CITIZEN_CAN_RATE"
	CodeRatingRequired     = "RATING_REQUIRED"
	CodeRatingOutOfRange   = "RATING_MUST_BE_BETWEEN_1_AND_5"
	CodeNotRateable        = "ONLY_RESOLVED_OR_CLOSED_CAN_BE_RATED"
)

// FeedbackStats is the public rating aggregate, plus the caller's own rating when known.
type FeedbackStats struct {
	ComplaintID string
	Avg         float64
	Count       int64
	MyRating    *int
}

// FeedbackService handles citizen ratings of resolved complaints.
type FeedbackService struct {
	repos      repository.Repositories
	tx         repository.TxRunner
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
	tracer     trace.Tracer
	now        func() time.Time
}

// FeedbackDependencies bundles collaborators for the feedback service.
type FeedbackDependencies struct {
	Repos      repository.Repositories
	Tx         repository.TxRunner
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Metrics    *observability.Metrics
	Clock      func() time.Time
}

// NewFeedbackService constructs the service.
func NewFeedbackService(deps FeedbackDependencies) *FeedbackService {
	s := &FeedbackService{
		repos:      deps.Repos,
		tx:         deps.Tx,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		metrics:    deps.Metrics,
		tracer:     otel.Tracer(tracerName),
		now:        deps.Clock,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// UpsertRating records or overwrites the citizen's rating and returns fresh stats.
func (s *FeedbackService) UpsertRating(ctx context.Context, citizenID, complaintID string, rating *int) (stats *FeedbackStats, err error) {
	ctx, span := s.tracer.Start(ctx, "FeedbackService.UpsertRating",
		trace.WithAttributes(attribute.String("complaint.id", complaintID)))
	defer func() { endSpan(span, err) }()

	var created bool
	err = s.tx.WithinTx(ctx, func(r repository.Repositories) error {
		citizen, err := r.Users.GetByID(ctx, citizenID)
		if err != nil {
			return notFoundOr(err, CodeUserNotFound, "user not found")
		}
		if !citizen.HasRole(domain.RoleCitizen) {
			return errorutil.NewForbidden(CodeOnlyCitizenCanRate, "only citizens can rate complaints")
		}
		if err := validateRating(rating); err != nil {
			return err
		}
		if !validID(complaintID) {
			return errorutil.NewNotFound(CodeComplaintNotFound, "complaint not found")
		}
		// Locked so the status checked here is the one the rating is stored against.
		complaint, err := r.Complaints.GetByIDForUpdate(ctx, complaintID)
		if err != nil {
			return notFoundOr(err, CodeComplaintNotFound, "complaint not found")
		}
		if !complaint.Status.Rateable() {
			return errorutil.NewBusinessRule(CodeNotRateable, "only resolved or closed complaints can be rated",
				map[string]any{"status": complaint.Status})
		}

		fb := &domain.Feedback{
			ComplaintID: complaint.ID,
			CitizenID:   citizen.ID,
			Rating:      *rating,
			UpdatedAt:   s.now().UTC(),
		}
		created, err = r.Feedback.Upsert(ctx, fb)
		if err != nil {
			return fmt.Errorf("upsert feedback: %w", err)
		}

		aggregate, err := r.Feedback.Stats(ctx, complaint.ID)
		if err != nil {
			return err
		}
		mine := fb.Rating
		stats = newFeedbackStats(complaint.ID, aggregate, &mine)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.FeedbackSubmitted(created)
	s.logger.Info("feedback recorded",
		zap.String("complaint_id", complaintID),
		zap.String("citizen_id", citizenID),
		zap.Int("rating", *rating),
		zap.Bool("created", created))
	if s.dispatcher != nil {
		event := events.Event{
			ID:          uuid.NewString(),
			Type:        events.EventFeedbackSubmitted,
			ComplaintID: complaintID,
			ActorID:     citizenID,
			Timestamp:   s.now().UTC(),
			Payload:     events.FeedbackSubmittedPayload{Rating: *rating, Updated: !created},
		}
		if err := s.dispatcher.Publish(ctx, event); err != nil {
			s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
		}
	}
	return stats, nil
}

// GetMyRating returns the citizen's rating, or nil when they have not rated.
func (s *FeedbackService) GetMyRating(ctx context.Context, citizenID, complaintID string) (*int, error) {
	if !validID(complaintID) {
		return nil, errorutil.NewNotFound(CodeComplaintNotFound, "complaint not found")
	}
	fb, err := s.repos.Feedback.Get(ctx, complaintID, citizenID)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	rating := fb.Rating
	return &rating, nil
}

// GetStats returns avg and count, defaulting to zero. MyRating is only resolved when
// citizenID is non-empty.
func (s *FeedbackService) GetStats(ctx context.Context, complaintID, citizenID string) (*FeedbackStats, error) {
	if !validID(complaintID) {
		return nil, errorutil.NewNotFound(CodeComplaintNotFound, "complaint not found")
	}
	aggregate, err := s.repos.Feedback.Stats(ctx, complaintID)
	if err != nil {
		return nil, err
	}
	var mine *int
	if citizenID != "" {
		if mine, err = s.GetMyRating(ctx, citizenID, complaintID); err != nil {
			return nil, err
		}
	}
	return newFeedbackStats(complaintID, aggregate, mine), nil
}

func validateRating(rating *int) error {
	if rating == nil {
		return errorutil.NewBusinessRule(CodeRatingRequired, "rating is required", nil)
	}
	if *rating < 1 || *rating > 5 {
		return errorutil.NewBusinessRule(CodeRatingOutOfRange, "rating must be between 1 and 5",
			map[string]any{"rating": *rating})
	}
	return nil
}

func newFeedbackStats(complaintID string, aggregate domain.FeedbackStats, mine *int) *FeedbackStats {
	avg := aggregate.Avg
	if aggregate.Count == 0 || math.IsNaN(avg) {
		avg = 0
	}
	return &FeedbackStats{ComplaintID: complaintID, Avg: avg, Count: aggregate.Count, MyRating: mine}
}
