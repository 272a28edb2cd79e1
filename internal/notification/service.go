package notification

import (
	"context"
	"time"

	"CareerConnect/internal/access"
	"CareerConnect/internal/apperr"
	"CareerConnect/internal/metrics"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ListLimit caps how many notifications a user sees. There is no paging beyond it.
const ListLimit = 50

type NotificationStore interface {
	CreateNotification(ctx context.Context, n *Notification) error
	ListByUser(ctx context.Context, userID primitive.ObjectID, limit int64) ([]*Notification, error)
	CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error)
	MarkRead(ctx context.Context, id, userID primitive.ObjectID) (*Notification, error)
	MarkAllRead(ctx context.Context, userID primitive.ObjectID) (int64, error)
}

// NotificationService is the Notification Sink: an append-only write path for the ledger
// and an owner-scoped read path for clients.
type NotificationService struct {
	repo    NotificationStore
	checker *access.Checker
	logger  *zap.Logger
	now     func() time.Time
}

func NewNotificationService(repo NotificationStore, checker *access.Checker, logger *zap.Logger) *NotificationService {
	return &NotificationService{repo: repo, checker: checker, logger: logger, now: time.Now}
}

// Emit appends a notification for userID.
func (s *NotificationService) Emit(ctx context.Context, userID primitive.ObjectID, kind, message string, data map[string]string) error {
	n := &Notification{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Type:      kind,
		Message:   message,
		Data:      data,
		Read:      false,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.CreateNotification(ctx, n); err != nil {
		return err
	}
	metrics.NotificationsEmitted.WithLabelValues(kind).Inc()
	return nil
}

func (s *NotificationService) List(ctx context.Context, caller access.Identity) ([]*Notification, error) {
	if err := s.checker.Require(caller, access.ObjNotification, access.ActRead); err != nil {
		return nil, err
	}
	notifications, err := s.repo.ListByUser(ctx, caller.ID, ListLimit)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return notifications, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, caller access.Identity) (int64, error) {
	if err := s.checker.Require(caller, access.ObjNotification, access.ActRead); err != nil {
		return 0, err
	}
	count, err := s.repo.CountUnread(ctx, caller.ID)
	if err != nil {
		return 0, apperr.Internal(err)
	}
	return count, nil
}

// MarkRead is idempotent. Another user's notification is reported as not found.
func (s *NotificationService) MarkRead(ctx context.Context, caller access.Identity, id primitive.ObjectID) (*Notification, error) {
	if err := s.checker.Require(caller, access.ObjNotification, access.ActMarkRead); err != nil {
		return nil, err
	}
	n, err := s.repo.MarkRead(ctx, id, caller.ID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if n == nil {
		return nil, apperr.NotFound("Notification not found")
	}
	return n, nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, caller access.Identity) error {
	if err := s.checker.Require(caller, access.ObjNotification, access.ActMarkRead); err != nil {
		return err
	}
	if _, err := s.repo.MarkAllRead(ctx, caller.ID); err != nil {
		return apperr.Internal(err)
	}
	return nil
}
