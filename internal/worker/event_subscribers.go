package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/civicdesk/complaint-service/internal/domain"
	"github.com/civicdesk/complaint-service/internal/events"
)

// FeedInvalidator drops cached public feed pages.
type FeedInvalidator interface {
	Invalidate(ctx context.Context) error
}

// StartEventSubscribers registers the post-commit handlers. Handlers only touch
// derived state such as caches and logs, never the complaint itself.
func StartEventSubscribers(dispatcher events.Dispatcher, feed FeedInvalidator, logger *zap.Logger) {
	if dispatcher == nil {
		return
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	dispatcher.Subscribe(events.EventComplaintCreated, func(ctx context.Context, event events.Event) error {
		payload, _ := event.Payload.(events.ComplaintCreatedPayload)
		logger.Info("complaint routed",
			zap.String("complaint_id", event.ComplaintID),
			zap.String("tracking_code", payload.TrackingCode),
			zap.String("department_id", payload.DepartmentID))
		return nil
	})

	dispatcher.Subscribe(events.EventComplaintStatusChanged, func(ctx context.Context, event events.Event) error {
		payload, ok := event.Payload.(events.ComplaintStatusChangedPayload)
		if !ok {
			return nil
		}
		if !affectsFeed(payload) || feed == nil {
			return nil
		}
		return feed.Invalidate(ctx)
	})

	dispatcher.Subscribe(events.EventFeedbackSubmitted, func(ctx context.Context, event events.Event) error {
		if feed == nil {
			return nil
		}
		return feed.Invalidate(ctx)
	})
}

// affectsFeed reports whether a transition moves a complaint into or out of the
// public feed.
func affectsFeed(p events.ComplaintStatusChangedPayload) bool {
	return p.OldStatus == domain.ComplaintStatusResolved || p.NewStatus == domain.ComplaintStatusResolved
}
