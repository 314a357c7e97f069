package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dataroom-service/internal/access"
	"dataroom-service/internal/events"
	"dataroom-service/internal/models"
	"dataroom-service/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	NotificationTypeAccess   = "access"
	defaultNotificationLimit = 20
	maxNotificationLimit     = 100
)

type NotificationService struct {
	notifications repository.NotificationStore
	documents     repository.DocumentStore
	logger        *zap.Logger
	now           func() time.Time
}

func NewNotificationService(repos *repository.Repositories, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		notifications: repos.Notifications,
		documents:     repos.Documents,
		logger:        logger,
		now:           time.Now,
	}
}

// HandleAccessEvent records a notification for the user whose access changed.
func (s *NotificationService) HandleAccessEvent(ctx context.Context, event *events.AccessEvent) error {
	if event.UserID == "" {
		s.logger.Warn("Dropping access event without user", zap.String("event_id", event.ID))
		return nil
	}

	title := event.DocumentTitle
	if title == "" {
		if doc, err := s.documents.FindByID(ctx, event.DocumentID); err == nil {
			title = doc.Title
		} else {
			title = "a document"
		}
	}

	n := &models.Notification{
		ID:         uuid.NewString(),
		UserID:     event.UserID,
		Type:       NotificationTypeAccess,
		ActionType: actionType(event.Status),
		TargetID:   event.DocumentID,
		Title:      notificationTitle(event.Status),
		Message:    notificationMessage(event.Status, title),
		CreatedAt:  s.now().Unix(),
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}
	return nil
}

func (s *NotificationService) List(ctx context.Context, identity *models.Identity, unreadOnly bool, limit int) ([]*models.Notification, error) {
	if identity == nil || identity.UserID == "" {
		return nil, access.ErrUnauthenticated
	}
	if limit <= 0 {
		limit = defaultNotificationLimit
	}
	if limit > maxNotificationLimit {
		limit = maxNotificationLimit
	}

	items, err := s.notifications.FindByUser(ctx, identity.UserID, limit, unreadOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	if items == nil {
		items = []*models.Notification{}
	}
	return items, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, identity *models.Identity) (int64, error) {
	if identity == nil || identity.UserID == "" {
		return 0, access.ErrUnauthenticated
	}
	count, err := s.notifications.CountUnread(ctx, identity.UserID)
	if err != nil {
		return 0, fmt.Errorf("failed to count notifications: %w", err)
	}
	return count, nil
}

// MarkRead marks one of the caller's notifications read. Other users'
// notifications are reported as missing.
func (s *NotificationService) MarkRead(ctx context.Context, identity *models.Identity, id string) error {
	if identity == nil || identity.UserID == "" {
		return access.ErrUnauthenticated
	}
	if err := s.notifications.MarkRead(ctx, identity.UserID, id); err != nil {
		return notFound(err, "notification")
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, identity *models.Identity) (int64, error) {
	if identity == nil || identity.UserID == "" {
		return 0, access.ErrUnauthenticated
	}
	modified, err := s.notifications.MarkAllRead(ctx, identity.UserID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return modified, nil
}

func actionType(status models.AccessStatus) string {
	switch status {
	case models.AccessStatusApproved:
		return "approved"
	case models.AccessStatusRevoked:
		return "revoked"
	}
	return "requested"
}

func notificationTitle(status models.AccessStatus) string {
	switch status {
	case models.AccessStatusApproved:
		return "Access approved"
	case models.AccessStatusRevoked:
		return "Access revoked"
	}
	return "Access requested"
}

func notificationMessage(status models.AccessStatus, documentTitle string) string {
	documentTitle = strings.TrimSpace(documentTitle)
	switch status {
	case models.AccessStatusApproved:
		return fmt.Sprintf("Your access to %s has been approved.", documentTitle)
	case models.AccessStatusRevoked:
		return fmt.Sprintf("Your access to %s has been revoked.", documentTitle)
	}
	return fmt.Sprintf("Your NDA for %s was received and is awaiting review.", documentTitle)
}
