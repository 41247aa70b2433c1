package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tmo2000/mentorafrica/internal/models"
	apperrors "github.com/tmo2000/mentorafrica/pkg/errors"
	"github.com/tmo2000/mentorafrica/pkg/logger"
	"github.com/tmo2000/mentorafrica/pkg/mail"

	"go.uber.org/zap"
)

// ErrNotificationNotFound indicates no notification matches the id for the calling user.
var ErrNotificationNotFound = apperrors.New("NOTIFICATION_NOT_FOUND",
	"Notification not found", http.StatusNotFound)

// NotificationOption customises NotificationService behaviour.
type NotificationOption func(*NotificationService)

// WithNotificationMailer enables best-effort email copies of recorded notifications.
func WithNotificationMailer(m mail.Mailer, lookupEmail func(ctx context.Context, userID string) (string, error)) NotificationOption {
	return func(s *NotificationService) {
		s.mailer = m
		s.lookupEmail = lookupEmail
	}
}

// NotificationService records workflow events addressed to users. Delivery
// beyond persistence is best effort: a mailer failure never fails the caller.
type NotificationService struct {
	db          *gorm.DB
	mailer      mail.Mailer
	lookupEmail func(ctx context.Context, userID string) (string, error)
}

// NewNotificationService constructs a NotificationService.
func NewNotificationService(db *gorm.DB, opts ...NotificationOption) (*NotificationService, error) {
	if db == nil {
		return nil, errors.New("notification service: db is required")
	}

	service := &NotificationService{db: db}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// CreateNotificationInput defines attributes required to persist a notification.
type CreateNotificationInput struct {
	UserID  string
	Kind    string
	Message string
}

// Record persists a workflow notification and dispatches a best-effort email copy.
func (s *NotificationService) Record(ctx context.Context, input CreateNotificationInput) (*models.Notification, error) {
	ctx = ensureContext(ctx)

	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return nil, errors.New("notification service: user id is required")
	}
	message := strings.TrimSpace(input.Message)
	if message == "" {
		return nil, errors.New("notification service: message is required")
	}

	notification := &models.Notification{
		UserID:  userID,
		Kind:    strings.TrimSpace(input.Kind),
		Message: message,
	}
	if err := s.db.WithContext(ctx).Create(notification).Error; err != nil {
		return nil, fmt.Errorf("notification service: create notification: %w", err)
	}

	s.sendEmailCopy(ctx, userID, message)
	return notification, nil
}

// ListForUser returns notifications for the supplied user ordered by recency.
func (s *NotificationService) ListForUser(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	ctx = ensureContext(ctx)
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperrors.NewBadRequest("user id is required")
	}

	if limit <= 0 || limit > 100 {
		limit = 25
	}

	var rows []models.Notification
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("notification service: list notifications: %w", err)
	}
	return rows, nil
}

// MarkRead stamps a notification as read for its owner.
func (s *NotificationService) MarkRead(ctx context.Context, notificationID, userID string) error {
	ctx = ensureContext(ctx)
	notificationID = strings.TrimSpace(notificationID)
	userID = strings.TrimSpace(userID)
	if notificationID == "" || userID == "" {
		return apperrors.NewBadRequest("notification id and user id are required")
	}

	now := time.Now()
	result := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ? AND read_at IS NULL", notificationID, userID).
		Update("read_at", now)
	if result.Error != nil {
		return fmt.Errorf("notification service: mark read: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// PruneRead deletes read notifications older than the cutoff. Used by the
// maintenance sweep.
func (s *NotificationService) PruneRead(ctx context.Context, before time.Time) (int64, error) {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).
		Where("read_at IS NOT NULL AND read_at < ?", before).
		Delete(&models.Notification{})
	if result.Error != nil {
		return 0, fmt.Errorf("notification service: prune: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (s *NotificationService) sendEmailCopy(ctx context.Context, userID, message string) {
	if s.mailer == nil || s.lookupEmail == nil {
		return
	}

	email, err := s.lookupEmail(ctx, userID)
	if err != nil || email == "" {
		return
	}

	msg := mail.Message{
		To:      []string{email},
		Subject: "MentorAfrica update",
		Body:    message + "\n\nSign in to respond.\n",
	}
	if err := s.mailer.Send(ctx, msg); err != nil && !errors.Is(err, mail.ErrSMTPDisabled) {
		logger.WithModule("notifications").Warn("email copy failed",
			zap.String("user_id", userID), zap.Error(err))
	}
}
