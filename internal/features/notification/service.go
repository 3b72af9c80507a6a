package notification

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const persistTimeout = 5 * time.Second

var ErrNotificationNotFound = errors.New("notification not found")

type NotificationService interface {
	// Notify records the event for userID and pushes it to any open socket.
	Notify(userID primitive.ObjectID, event string, data interface{})
	GetUserNotifications(ctx context.Context, userID primitive.ObjectID, page, limit int64) ([]Notification, int64, error)
	GetUnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error)
	MarkAsRead(ctx context.Context, id, userID primitive.ObjectID) error
	MarkAllAsRead(ctx context.Context, userID primitive.ObjectID) (int64, error)
}

type NotificationServiceImpl struct {
	repo NotificationRepository
	hub  *Hub
	log  *zap.Logger
	now  func() time.Time
}

func NewNotificationService(repo NotificationRepository, hub *Hub, log *zap.Logger) NotificationService {
	return &NotificationServiceImpl{
		repo: repo,
		hub:  hub,
		log:  log,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *NotificationServiceImpl) Notify(userID primitive.ObjectID, event string, data interface{}) {
	n := &Notification{
		UserID:    userID,
		Event:     event,
		Title:     titleFor(event),
		Data:      data,
		CreatedAt: s.now(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := s.repo.Create(ctx, n); err != nil {
		s.log.Warn("failed to persist notification",
			zap.String("userId", userID.Hex()), zap.String("event", event), zap.Error(err))
	}

	msg := Message{Event: event, Title: n.Title, Data: data, At: n.CreatedAt}
	if !n.ID.IsZero() {
		msg.ID = n.ID.Hex()
	}
	s.hub.Push(userID, msg)
}

func (s *NotificationServiceImpl) GetUserNotifications(ctx context.Context, userID primitive.ObjectID, page, limit int64) ([]Notification, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.repo.GetByUserID(ctx, userID, page, limit)
}

func (s *NotificationServiceImpl) GetUnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.repo.GetUnreadCount(ctx, userID)
}

func (s *NotificationServiceImpl) MarkAsRead(ctx context.Context, id, userID primitive.ObjectID) error {
	found, err := s.repo.MarkAsRead(ctx, id, userID)
	if err != nil {
		return err
	}
	if !found {
		return ErrNotificationNotFound
	}
	return nil
}

func (s *NotificationServiceImpl) MarkAllAsRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.repo.MarkAllAsRead(ctx, userID)
}
