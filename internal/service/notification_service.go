package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/civicdesk/complaint-service/internal/domain"
	"github.com/civicdesk/complaint-service/internal/repository"
	"github.com/civicdesk/complaint-service/pkg/util/errorutil"
)

const CodeNotificationNotFound = "NOTIFICATION_NOT_FOUND"

// statusNotification builds the owner-facing message for a complaint entering status.
func statusNotification(complaint *domain.Complaint, status domain.ComplaintStatus, note, publicAnswer string) domain.Notification {
	n := domain.Notification{
		UserID:      complaint.OwnerID,
		ComplaintID: complaint.ID,
		Link:        "/complaints/" + complaint.ID,
	}
	switch status {
	case domain.ComplaintStatusNew:
		n.Title = "Complaint received"
		n.Body = fmt.Sprintf("Your complaint %s has reached us and will be reviewed shortly.", complaint.TrackingCode)
	case domain.ComplaintStatusInReview:
		n.Title = "Complaint under review"
		n.Body = "Your complaint is being reviewed by the responsible department. We will get back to you soon."
	case domain.ComplaintStatusResolved:
		n.Title = "Complaint resolved"
		n.Body = "Your complaint has been resolved."
		if answer := strings.TrimSpace(publicAnswer); answer != "" {
			n.Body = answer
		}
	case domain.ComplaintStatusClosed:
		reason := strings.TrimSpace(note)
		if reason == "" {
			reason = "-"
		}
		n.Title = "Complaint closed"
		n.Body = "Your complaint has been closed. Reason: " + reason
	}
	return n
}

// NotificationPage is a page of notifications plus the total for the user.
type NotificationPage struct {
	Items []domain.Notification
	Total int
	Page  int
	Size  int
}

// NotificationService serves the citizen inbox.
type NotificationService struct {
	notifications repository.NotificationRepository
	logger        *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(notifications repository.NotificationRepository, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{notifications: notifications, logger: logger}
}

// List returns the user's notifications newest first.
func (s *NotificationService) List(ctx context.Context, userID string, page, size int) (*NotificationPage, error) {
	page, size = normalizePaging(page, size, 20, 100)
	items, total, err := s.notifications.ListByUser(ctx, userID, size, page*size)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Notification{}
	}
	return &NotificationPage{Items: items, Total: total, Page: page, Size: size}, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.notifications.CountUnread(ctx, userID)
}

// MarkRead flags one of the user's notifications as read. Marking an already read
// notification again is a no-op.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	if !validID(notificationID) {
		return errorutil.NewNotFound(CodeNotificationNotFound, "notification not found")
	}
	found, err := s.notifications.MarkRead(ctx, userID, notificationID)
	if err != nil {
		return err
	}
	if !found {
		return errorutil.NewNotFound(CodeNotificationNotFound, "notification not found")
	}
	return nil
}

// MarkAllRead returns how many notifications changed state.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	n, err := s.notifications.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, err
	}
	s.logger.Debug("notifications marked read", zap.String("user_id", userID), zap.Int64("count", n))
	return n, nil
}
