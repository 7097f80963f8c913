package service

import (
	"context"
	"testing"

	"github.com/civicdesk/complaint-service/internal/domain"
)

func TestStatusNotificationCopy(t *testing.T) {
	c := &domain.Complaint{ID: "c-1", OwnerID: "u-1", TrackingCode: "TRK-AB12CD34"}
	tests := []struct {
		status domain.ComplaintStatus
		note   string
		answer string
		title  string
		body   string
	}{
		{domain.ComplaintStatusResolved, "", "", "Complaint resolved", "Your complaint has been resolved."},
		{domain.ComplaintStatusResolved, "", "Patched", "Complaint resolved", "Patched"},
		{domain.ComplaintStatusClosed, "", "", "Complaint closed", "Your complaint has been closed. Reason: -"},
		{domain.ComplaintStatusClosed, "duplicate", "", "Complaint closed", "Your complaint has been closed. Reason: duplicate"},
	}
	for _, tt := range tests {
		n := statusNotification(c, tt.status, tt.note, tt.answer)
		if n.Title != tt.title || n.Body != tt.body {
			t.Errorf("%s: got %q / %q", tt.status, n.Title, n.Body)
		}
		if n.UserID != "u-1" || n.Link != "/complaints/c-1" {
			t.Errorf("%s: addressed to %s at %s", tt.status, n.UserID, n.Link)
		}
	}
}

func TestNotificationInbox(t *testing.T) {
	f := newFixture(t)
	c := f.create(t)
	if _, err := f.change(f.agent, c.ID, domain.ComplaintStatusInReview, "", ""); err != nil {
		t.Fatal(err)
	}
	svc := NewNotificationService(f.store.repos().Notifications, nil)
	ctx := context.Background()

	page, err := svc.List(ctx, f.citizen.ID, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 2 || page.Items[0].Title != "Complaint under review" {
		t.Fatalf("inbox = %+v", page)
	}

	unread, _ := svc.UnreadCount(ctx, f.citizen.ID)
	if unread != 2 {
		t.Fatalf("unread = %d", unread)
	}

	if err := svc.MarkRead(ctx, f.citizen.ID, page.Items[0].ID); err != nil {
		t.Fatal(err)
	}
	if err := svc.MarkRead(ctx, f.citizen.ID, page.Items[0].ID); err != nil {
		t.Fatalf("repeat MarkRead: %v", err)
	}
	wantCode(t, svc.MarkRead(ctx, f.other.ID, page.Items[1].ID), CodeNotificationNotFound)
	wantCode(t, svc.MarkRead(ctx, f.citizen.ID, "bogus"), CodeNotificationNotFound)

	changed, err := svc.MarkAllRead(ctx, f.citizen.ID)
	if err != nil || changed != 1 {
		t.Fatalf("MarkAllRead = %d, %v", changed, err)
	}
	unread, _ = svc.UnreadCount(ctx, f.citizen.ID)
	if unread != 0 {
		t.Fatalf("unread after MarkAllRead = %d", unread)
	}
}
