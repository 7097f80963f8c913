package service

import (
	"context"
	"testing"

	"github.com/civicdesk/complaint-service/internal/domain"
	"github.com/civicdesk/complaint-service/internal/events"
)

func newFeedbackFixture(t *testing.T) (*fixture, *FeedbackService) {
	t.Helper()
	f := newFixture(t)
	svc := NewFeedbackService(FeedbackDependencies{
		Repos:      f.store.repos(),
		Tx:         f.store,
		Dispatcher: f.dispatcher,
		Clock:      f.clock.Now,
	})
	return f, svc
}

func (f *fixture) resolved(t *testing.T) *domain.Complaint {
	t.Helper()
	c := f.create(t)
	if _, err := f.change(f.agent, c.ID, domain.ComplaintStatusInReview, "", ""); err != nil {
		t.Fatal(err)
	}
	c, err := f.change(f.agent, c.ID, domain.ComplaintStatusResolved, "", "Fixed")
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func intPtr(v int) *int { return &v }

func TestRatingUpsertKeepsSingleRow(t *testing.T) {
	f, svc := newFeedbackFixture(t)
	c := f.resolved(t)
	var updates []bool
	f.dispatcher.Subscribe(events.EventFeedbackSubmitted, func(_ context.Context, e events.Event) error {
		updates = append(updates, e.Payload.(events.FeedbackSubmittedPayload).Updated)
		return nil
	})

	stats, err := svc.UpsertRating(context.Background(), f.citizen.ID, c.ID, intPtr(4))
	if err != nil {
		t.Fatal(err)
	}
	if stats.Count != 1 || stats.Avg != 4 || *stats.MyRating != 4 {
		t.Fatalf("first stats = %+v", stats)
	}

	stats, err = svc.UpsertRating(context.Background(), f.citizen.ID, c.ID, intPtr(2))
	if err != nil {
		t.Fatal(err)
	}
	if stats.Count != 1 || stats.Avg != 2 || *stats.MyRating != 2 {
		t.Fatalf("second stats = %+v", stats)
	}
	if len(f.store.feedback) != 1 {
		t.Fatalf("feedback rows = %d, want 1", len(f.store.feedback))
	}
	if len(updates) != 2 || updates[0] || !updates[1] {
		t.Fatalf("updated flags = %v", updates)
	}

	stats, err = svc.UpsertRating(context.Background(), f.other.ID, c.ID, intPtr(5))
	if err != nil {
		t.Fatal(err)
	}
	if stats.Count != 2 || stats.Avg != 3.5 {
		t.Fatalf("aggregate = %+v", stats)
	}
}

func TestRatingRules(t *testing.T) {
	f, svc := newFeedbackFixture(t)
	open := f.create(t)
	done := f.resolved(t)

	tests := []struct {
		name        string
		actor       string
		complaintID string
		rating      *int
		code        string
	}{
		{"staff cannot rate", f.agent.ID, done.ID, intPtr(5), CodeOnlyCitizenCanRate},
		{"missing rating", f.citizen.ID, done.ID, nil, CodeRatingRequired},
		{"too low", f.citizen.ID, done.ID, intPtr(0), CodeRatingOutOfRange},
		{"too high", f.citizen.ID, done.ID, intPtr(6), CodeRatingOutOfRange},
		{"not yet resolved", f.citizen.ID, open.ID, intPtr(3), CodeNotRateable},
		{"unknown complaint", f.citizen.ID, "9b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d", intPtr(3), CodeComplaintNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UpsertRating(context.Background(), tt.actor, tt.complaintID, tt.rating)
			wantCode(t, err, tt.code)
		})
	}
	if len(f.store.feedback) != 0 {
		t.Fatal("rejected ratings must not be stored")
	}
}

func TestClosedComplaintsCanBeRated(t *testing.T) {
	f, svc := newFeedbackFixture(t)
	c := f.resolved(t)
	if _, err := f.change(f.agent, c.ID, domain.ComplaintStatusClosed, "", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.UpsertRating(context.Background(), f.citizen.ID, c.ID, intPtr(5)); err != nil {
		t.Fatalf("closed complaint rating: %v", err)
	}
}

func TestStatsDefaults(t *testing.T) {
	f, svc := newFeedbackFixture(t)
	c := f.resolved(t)

	stats, err := svc.GetStats(context.Background(), c.ID, "")
	if err != nil {
		t.Fatal(err)
	}
	if stats.Avg != 0 || stats.Count != 0 || stats.MyRating != nil {
		t.Fatalf("empty stats = %+v", stats)
	}

	mine, err := svc.GetMyRating(context.Background(), f.citizen.ID, c.ID)
	if err != nil || mine != nil {
		t.Fatalf("GetMyRating = %v, %v", mine, err)
	}

	if _, err := svc.UpsertRating(context.Background(), f.citizen.ID, c.ID, intPtr(3)); err != nil {
		t.Fatal(err)
	}
	stats, err = svc.GetStats(context.Background(), c.ID, f.citizen.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stats.MyRating == nil || *stats.MyRating != 3 {
		t.Fatalf("MyRating = %v", stats.MyRating)
	}
}

func TestRatingLocksComplaintRow(t *testing.T) {
	f, svc := newFeedbackFixture(t)
	c := f.resolved(t)
	f.store.lockedComplaints = nil

	if _, err := svc.UpsertRating(context.Background(), f.citizen.ID, c.ID, intPtr(3)); err != nil {
		t.Fatal(err)
	}
	if len(f.store.lockedComplaints) != 1 || f.store.lockedComplaints[0] != c.ID {
		t.Fatalf("locked complaints = %v, want [%s]", f.store.lockedComplaints, c.ID)
	}
}
