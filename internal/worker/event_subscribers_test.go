package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/civicdesk/complaint-service/internal/domain"
	"github.com/civicdesk/complaint-service/internal/events"
)

type countingInvalidator struct {
	calls int
	err   error
}

func (c *countingInvalidator) Invalidate(context.Context) error {
	c.calls++
	return c.err
}

func TestStatusChangeInvalidatesFeedOnlyAroundResolved(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	feed := &countingInvalidator{}
	StartEventSubscribers(dispatcher, feed, nil)

	publish := func(from, to domain.ComplaintStatus) {
		t.Helper()
		err := dispatcher.Publish(context.Background(), events.Event{
			Type:    events.EventComplaintStatusChanged,
			Payload: events.ComplaintStatusChangedPayload{OldStatus: from, NewStatus: to},
		})
		if err != nil {
			t.Fatalf("publish: %v", err)
		}
	}

	publish(domain.ComplaintStatusNew, domain.ComplaintStatusInReview)
	if feed.calls != 0 {
		t.Fatalf("calls = %d, want 0", feed.calls)
	}
	publish(domain.ComplaintStatusInReview, domain.ComplaintStatusResolved)
	publish(domain.ComplaintStatusResolved, domain.ComplaintStatusClosed)
	if feed.calls != 2 {
		t.Fatalf("calls = %d, want 2", feed.calls)
	}
}

func TestFeedbackInvalidatesFeed(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	feed := &countingInvalidator{err: errors.New("redis down")}
	StartEventSubscribers(dispatcher, feed, nil)

	err := dispatcher.Publish(context.Background(), events.Event{
		Type:    events.EventFeedbackSubmitted,
		Payload: events.FeedbackSubmittedPayload{Rating: 4},
	})
	if err == nil {
		t.Fatal("expected invalidation error to surface to the publisher")
	}
	if feed.calls != 1 {
		t.Fatalf("calls = %d, want 1", feed.calls)
	}
}

func TestNilFeedIsTolerated(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	StartEventSubscribers(dispatcher, nil, nil)

	err := dispatcher.Publish(context.Background(), events.Event{
		Type:    events.EventComplaintStatusChanged,
		Payload: events.ComplaintStatusChangedPayload{OldStatus: domain.ComplaintStatusInReview, NewStatus: domain.ComplaintStatusResolved},
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
}
