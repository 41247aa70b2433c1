package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/tmo2000/mentorafrica/internal/models"
	apperrors "github.com/tmo2000/mentorafrica/pkg/errors"
	"github.com/tmo2000/mentorafrica/pkg/metrics"
)

var (
	// ErrApplicationNotFound indicates no application matches the provided id.
	ErrApplicationNotFound = apperrors.New("APPLICATION_NOT_FOUND",
		"Application not found", http.StatusNotFound)
	// ErrAcceptedInviteRequired gates submission behind an accepted invite.
	ErrAcceptedInviteRequired = apperrors.New("ACCEPTED_INVITE_REQUIRED",
		"An accepted invite is required before submitting an application", http.StatusPreconditionFailed)
	// ErrApplicationExists signals the invite already carries a submission.
	ErrApplicationExists = apperrors.New("APPLICATION_EXISTS",
		"An application for this invite has already been submitted", http.StatusConflict)
	// ErrApplicationDecided signals the application already reached a terminal decision.
	ErrApplicationDecided = apperrors.New("APPLICATION_DECIDED",
		"Application has already been decided", http.StatusPreconditionFailed)
	// ErrMenteeAlreadyMatched forbids a second simultaneously active mentorship.
	ErrMenteeAlreadyMatched = apperrors.New("MENTEE_ALREADY_MATCHED",
		"Mentee already has an active mentorship", http.StatusPreconditionFailed)
)

// ApplicationOption customises ApplicationService behaviour.
type ApplicationOption func(*ApplicationService)

// WithApplicationClock injects a custom clock primarily for testing.
func WithApplicationClock(clock func() time.Time) ApplicationOption {
	return func(s *ApplicationService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithApplicationNotifier wires workflow notifications for decision events.
func WithApplicationNotifier(n *NotificationService) ApplicationOption {
	return func(s *ApplicationService) {
		s.notifier = n
	}
}

// ApplicationService gates formal submissions behind accepted invites and
// drives the terminal accept/reject decision, spawning the mentorship on
// acceptance.
type ApplicationService struct {
	db       *gorm.DB
	now      func() time.Time
	notifier *NotificationService
}

// NewApplicationService constructs an ApplicationService with the provided dependencies.
func NewApplicationService(db *gorm.DB, opts ...ApplicationOption) (*ApplicationService, error) {
	if db == nil {
		return nil, errors.New("application service: db is required")
	}

	service := &ApplicationService{db: db, now: time.Now}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// SubmitApplicationInput carries a mentee's formal submission.
type SubmitApplicationInput struct {
	InviteID string
	MenteeID string
	Answers  json.RawMessage
}

// Submit creates a SUBMITTED application. The referenced invite must belong to
// the mentee and have been accepted; anything else fails the precondition.
func (s *ApplicationService) Submit(ctx context.Context, input SubmitApplicationInput) (*models.Application, error) {
	ctx = ensureContext(ctx)

	inviteID := strings.TrimSpace(input.InviteID)
	menteeID := strings.TrimSpace(input.MenteeID)
	if inviteID == "" || menteeID == "" {
		return nil, apperrors.NewBadRequest("invite id and mentee id are required")
	}

	application := &models.Application{
		InviteID: inviteID,
		MenteeID: menteeID,
		Status:   models.ApplicationStatusSubmitted,
	}
	if len(input.Answers) > 0 {
		if !json.Valid(input.Answers) {
			return nil, apperrors.NewBadRequest("answers must be valid JSON")
		}
		application.Answers = datatypes.JSON(input.Answers)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var invite models.Invite
		err := tx.Where("id = ? AND mentee_id = ?", inviteID, menteeID).First(&invite).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAcceptedInviteRequired
		}
		if err != nil {
			return fmt.Errorf("load invite: %w", err)
		}
		if invite.Status != models.InviteStatusAccepted {
			return ErrAcceptedInviteRequired
		}

		var existing int64
		if err := tx.Model(&models.Application{}).
			Where("invite_id = ?", inviteID).
			Count(&existing).Error; err != nil {
			return fmt.Errorf("check existing application: %w", err)
		}
		if existing > 0 {
			return ErrApplicationExists
		}

		application.MentorID = invite.MentorID
		if err := tx.Create(application).Error; err != nil {
			return fmt.Errorf("create application: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return application, nil
}

// UpdateStatus moves an application through its review lifecycle. The sole
// side effect is on the ACCEPTED transition, which creates the mentorship
// pairing in the same transaction. An already-decided application cannot be
// decided again, so each acceptance spawns exactly one mentorship.
func (s *ApplicationService) UpdateStatus(ctx context.Context, applicationID string, status models.ApplicationStatus) (*models.Application, error) {
	ctx = ensureContext(ctx)

	applicationID = strings.TrimSpace(applicationID)
	if applicationID == "" {
		return nil, apperrors.NewBadRequest("application id is required")
	}
	if !status.Valid() || status == models.ApplicationStatusSubmitted {
		return nil, apperrors.NewBadRequest("status must be UNDER_REVIEW, ACCEPTED, or REJECTED")
	}

	var application models.Application
	accepted := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("id = ?", applicationID).First(&application).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrApplicationNotFound
		}
		if err != nil {
			return fmt.Errorf("load application: %w", err)
		}

		switch application.Status {
		case models.ApplicationStatusAccepted, models.ApplicationStatusRejected:
			return ErrApplicationDecided
		}

		if status == models.ApplicationStatusAccepted {
			var active int64
			if err := tx.Model(&models.Mentorship{}).
				Where("mentee_id = ? AND status = ?", application.MenteeID, models.MentorshipStatusActive).
				Count(&active).Error; err != nil {
				return fmt.Errorf("check active mentorship: %w", err)
			}
			if active > 0 {
				return ErrMenteeAlreadyMatched
			}

			mentorship := &models.Mentorship{
				MentorID:  application.MentorID,
				MenteeID:  application.MenteeID,
				Status:    models.MentorshipStatusActive,
				StartedAt: s.now(),
			}
			if err := tx.Create(mentorship).Error; err != nil {
				return fmt.Errorf("create mentorship: %w", err)
			}
			accepted = true
		}

		if err := tx.Model(&application).Update("status", status).Error; err != nil {
			return fmt.Errorf("update application status: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	application.Status = status
	if accepted {
		metrics.ActiveMentorships.Inc()
	}
	if status == models.ApplicationStatusAccepted || status == models.ApplicationStatusRejected {
		s.notifyDecision(ctx, application.MenteeID, status)
	}
	return &application, nil
}

// Get loads a single application by id.
func (s *ApplicationService) Get(ctx context.Context, applicationID string) (*models.Application, error) {
	ctx = ensureContext(ctx)
	applicationID = strings.TrimSpace(applicationID)
	if applicationID == "" {
		return nil, apperrors.NewBadRequest("application id is required")
	}

	var application models.Application
	err := s.db.WithContext(ctx).Where("id = ?", applicationID).First(&application).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrApplicationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("application service: load application: %w", err)
	}
	return &application, nil
}

// ListForMentor returns applications submitted toward the mentor, newest first.
func (s *ApplicationService) ListForMentor(ctx context.Context, mentorID string) ([]models.Application, error) {
	ctx = ensureContext(ctx)
	mentorID = strings.TrimSpace(mentorID)
	if mentorID == "" {
		return nil, apperrors.NewBadRequest("mentor id is required")
	}

	var applications []models.Application
	if err := s.db.WithContext(ctx).
		Where("mentor_id = ?", mentorID).
		Order("created_at DESC").
		Find(&applications).Error; err != nil {
		return nil, fmt.Errorf("application service: list for mentor: %w", err)
	}
	return applications, nil
}

// ListForMentee returns the mentee's own submissions, newest first.
func (s *ApplicationService) ListForMentee(ctx context.Context, menteeID string) ([]models.Application, error) {
	ctx = ensureContext(ctx)
	menteeID = strings.TrimSpace(menteeID)
	if menteeID == "" {
		return nil, apperrors.NewBadRequest("mentee id is required")
	}

	var applications []models.Application
	if err := s.db.WithContext(ctx).
		Where("mentee_id = ?", menteeID).
		Order("created_at DESC").
		Find(&applications).Error; err != nil {
		return nil, fmt.Errorf("application service: list for mentee: %w", err)
	}
	return applications, nil
}

func (s *ApplicationService) notifyDecision(ctx context.Context, menteeID string, status models.ApplicationStatus) {
	if s.notifier == nil {
		return
	}
	message := "Your application was not successful this time"
	if status == models.ApplicationStatusAccepted {
		message = "Congratulations, your application was accepted"
	}
	_, _ = s.notifier.Record(ctx, CreateNotificationInput{
		UserID:  menteeID,
		Kind:    models.NotificationKindApplicationDecided,
		Message: message,
	})
}
