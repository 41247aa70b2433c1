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
	"github.com/tmo2000/mentorafrica/pkg/metrics"
)

// ErrMentorshipNotFound indicates no mentorship matches the id for the calling actor.
var ErrMentorshipNotFound = apperrors.New("MENTORSHIP_NOT_FOUND",
	"Mentorship not found", http.StatusNotFound)

// MentorshipOption customises MentorshipService behaviour.
type MentorshipOption func(*MentorshipService)

// WithMentorshipClock injects a custom clock primarily for testing.
func WithMentorshipClock(clock func() time.Time) MentorshipOption {
	return func(s *MentorshipService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// MentorshipService exposes the query surface over active pairings plus the
// operational complete/cancel workflow. Mentorships are never created here;
// creation is the application-acceptance side effect.
type MentorshipService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewMentorshipService constructs a MentorshipService with the provided dependencies.
func NewMentorshipService(db *gorm.DB, opts ...MentorshipOption) (*MentorshipService, error) {
	if db == nil {
		return nil, errors.New("mentorship service: db is required")
	}

	service := &MentorshipService{db: db, now: time.Now}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// HasActive reports whether the mentee currently holds an active mentorship.
func (s *MentorshipService) HasActive(ctx context.Context, menteeID string) (bool, error) {
	ctx = ensureContext(ctx)
	menteeID = strings.TrimSpace(menteeID)
	if menteeID == "" {
		return false, apperrors.NewBadRequest("mentee id is required")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Mentorship{}).
		Where("mentee_id = ? AND status = ?", menteeID, models.MentorshipStatusActive).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("mentorship service: count active: %w", err)
	}
	return count > 0, nil
}

// ListForMentor returns all mentorships for a mentor, any status, newest first.
func (s *MentorshipService) ListForMentor(ctx context.Context, mentorID string) ([]models.Mentorship, error) {
	ctx = ensureContext(ctx)
	mentorID = strings.TrimSpace(mentorID)
	if mentorID == "" {
		return nil, apperrors.NewBadRequest("mentor id is required")
	}

	var mentorships []models.Mentorship
	if err := s.db.WithContext(ctx).
		Where("mentor_id = ?", mentorID).
		Order("created_at DESC").
		Find(&mentorships).Error; err != nil {
		return nil, fmt.Errorf("mentorship service: list for mentor: %w", err)
	}
	return mentorships, nil
}

// ListForMentee returns all mentorships for a mentee, any status, newest first.
func (s *MentorshipService) ListForMentee(ctx context.Context, menteeID string) ([]models.Mentorship, error) {
	ctx = ensureContext(ctx)
	menteeID = strings.TrimSpace(menteeID)
	if menteeID == "" {
		return nil, apperrors.NewBadRequest("mentee id is required")
	}

	var mentorships []models.Mentorship
	if err := s.db.WithContext(ctx).
		Where("mentee_id = ?", menteeID).
		Order("created_at DESC").
		Find(&mentorships).Error; err != nil {
		return nil, fmt.Errorf("mentorship service: list for mentee: %w", err)
	}
	return mentorships, nil
}

// Complete closes an active mentorship as successfully finished.
func (s *MentorshipService) Complete(ctx context.Context, mentorshipID, actorID string) (*models.Mentorship, error) {
	return s.close(ctx, mentorshipID, actorID, models.MentorshipStatusCompleted)
}

// Cancel closes an active mentorship before completion.
func (s *MentorshipService) Cancel(ctx context.Context, mentorshipID, actorID string) (*models.Mentorship, error) {
	return s.close(ctx, mentorshipID, actorID, models.MentorshipStatusCancelled)
}

// close transitions an ACTIVE mentorship to a terminal status. Only a
// participant of the pairing may close it.
func (s *MentorshipService) close(ctx context.Context, mentorshipID, actorID string, status models.MentorshipStatus) (*models.Mentorship, error) {
	ctx = ensureContext(ctx)
	mentorshipID = strings.TrimSpace(mentorshipID)
	actorID = strings.TrimSpace(actorID)
	if mentorshipID == "" || actorID == "" {
		return nil, apperrors.NewBadRequest("mentorship id and actor id are required")
	}

	ended := s.now()
	var mentorship models.Mentorship
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("id = ? AND (mentor_id = ? OR mentee_id = ?) AND status = ?",
			mentorshipID, actorID, actorID, models.MentorshipStatusActive).
			First(&mentorship).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMentorshipNotFound
		}
		if err != nil {
			return fmt.Errorf("load mentorship: %w", err)
		}

		if err := tx.Model(&mentorship).Updates(map[string]any{
			"status":   status,
			"ended_at": ended,
		}).Error; err != nil {
			return fmt.Errorf("close mentorship: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	mentorship.Status = status
	mentorship.EndedAt = &ended
	metrics.ActiveMentorships.Dec()
	return &mentorship, nil
}
