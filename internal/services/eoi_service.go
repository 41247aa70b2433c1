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

const (
	// maxActiveEOIs caps how many expressions of interest a mentee may have
	// in flight (status EOI or INVITED) at once.
	maxActiveEOIs = 3
	// maxTextLength bounds free-form goal and note text. Longer input is
	// truncated, not rejected.
	maxTextLength = 280

	minRankedPreference = 1
	maxRankedPreference = 3
)

var (
	// ErrEOIQuotaExceeded signals the mentee already holds the maximum number of active EOIs.
	ErrEOIQuotaExceeded = apperrors.New("EOI_QUOTA_EXCEEDED",
		"You already have the maximum number of active expressions of interest", http.StatusConflict)
	// ErrDuplicateInterest signals an active EOI toward the same mentor already exists.
	ErrDuplicateInterest = apperrors.New("DUPLICATE_INTEREST",
		"An active expression of interest toward this mentor already exists", http.StatusConflict)
	// ErrEOINotFound indicates no matching EOI owned by the calling mentee.
	ErrEOINotFound = apperrors.New("EOI_NOT_FOUND",
		"Expression of interest not found", http.StatusNotFound)
)

// EOIOption customises EOIService behaviour.
type EOIOption func(*EOIService)

// WithEOIClock injects a custom clock primarily for testing.
func WithEOIClock(clock func() time.Time) EOIOption {
	return func(s *EOIService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// EOIService manages the expression-of-interest lifecycle: creation under the
// per-mentee cap, listing for both sides, and withdrawal with its invite cascade.
type EOIService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewEOIService constructs an EOIService with the provided dependencies.
func NewEOIService(db *gorm.DB, opts ...EOIOption) (*EOIService, error) {
	if db == nil {
		return nil, errors.New("eoi service: db is required")
	}

	service := &EOIService{db: db, now: time.Now}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// CreateEOIInput captures a mentee's declared interest in a mentor.
type CreateEOIInput struct {
	MentorID         string
	MenteeID         string
	Goal             string
	Note             string
	RankedPreference int
}

// Create registers a new expression of interest after enforcing the active cap
// and the no-duplicate-mentor rule. The cap check, duplicate check, and insert
// run in one transaction so concurrent creates cannot overshoot the cap.
func (s *EOIService) Create(ctx context.Context, input CreateEOIInput) (*models.ExpressionOfInterest, error) {
	ctx = ensureContext(ctx)

	mentorID := strings.TrimSpace(input.MentorID)
	menteeID := strings.TrimSpace(input.MenteeID)
	if mentorID == "" || menteeID == "" {
		return nil, apperrors.NewBadRequest("mentor id and mentee id are required")
	}
	if input.RankedPreference < minRankedPreference || input.RankedPreference > maxRankedPreference {
		return nil, apperrors.NewBadRequest("ranked preference must be between 1 and 3")
	}

	eoi := &models.ExpressionOfInterest{
		MentorID:         mentorID,
		MenteeID:         menteeID,
		Goal:             truncate(input.Goal, maxTextLength),
		Note:             truncate(input.Note, maxTextLength),
		RankedPreference: input.RankedPreference,
		Status:           models.EOIStatusActive,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var active int64
		if err := tx.Model(&models.ExpressionOfInterest{}).
			Where("mentee_id = ? AND status IN ?", menteeID, activeEOIStatuses()).
			Count(&active).Error; err != nil {
			return fmt.Errorf("count active eois: %w", err)
		}
		if active >= maxActiveEOIs {
			return ErrEOIQuotaExceeded
		}

		var duplicates int64
		if err := tx.Model(&models.ExpressionOfInterest{}).
			Where("mentee_id = ? AND mentor_id = ? AND status IN ?", menteeID, mentorID, activeEOIStatuses()).
			Count(&duplicates).Error; err != nil {
			return fmt.Errorf("check duplicate interest: %w", err)
		}
		if duplicates > 0 {
			return ErrDuplicateInterest
		}

		if err := tx.Create(eoi).Error; err != nil {
			return fmt.Errorf("create eoi: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.EOITransitions.WithLabelValues(string(models.EOIStatusActive)).Inc()
	return eoi, nil
}

// ListForMentor returns the mentor's incoming expressions of interest.
// Withdrawn and expired records are filtered out: retracted or stale interest
// is not actionable and is hidden from the mentor.
func (s *EOIService) ListForMentor(ctx context.Context, mentorID string) ([]models.ExpressionOfInterest, error) {
	ctx = ensureContext(ctx)
	mentorID = strings.TrimSpace(mentorID)
	if mentorID == "" {
		return nil, apperrors.NewBadRequest("mentor id is required")
	}

	var eois []models.ExpressionOfInterest
	if err := s.db.WithContext(ctx).
		Where("mentor_id = ? AND status NOT IN ?", mentorID,
			[]models.EOIStatus{models.EOIStatusWithdrawn, models.EOIStatusExpired}).
		Order("created_at ASC").
		Find(&eois).Error; err != nil {
		return nil, fmt.Errorf("eoi service: list for mentor: %w", err)
	}
	return eois, nil
}

// ListForMentee returns every EOI the mentee has created, regardless of status,
// so mentees can track their full history.
func (s *EOIService) ListForMentee(ctx context.Context, menteeID string) ([]models.ExpressionOfInterest, error) {
	ctx = ensureContext(ctx)
	menteeID = strings.TrimSpace(menteeID)
	if menteeID == "" {
		return nil, apperrors.NewBadRequest("mentee id is required")
	}

	var eois []models.ExpressionOfInterest
	if err := s.db.WithContext(ctx).
		Where("mentee_id = ?", menteeID).
		Order("created_at DESC").
		Find(&eois).Error; err != nil {
		return nil, fmt.Errorf("eoi service: list for mentee: %w", err)
	}
	return eois, nil
}

// Withdraw retracts an active or invited EOI owned by the mentee and expires
// every non-expired invite that references it. A withdrawn interest must not
// leave a dangling actionable invite, so both updates commit atomically.
// Withdrawing an already-withdrawn EOI reports not found.
func (s *EOIService) Withdraw(ctx context.Context, eoiID, menteeID string) (*models.ExpressionOfInterest, error) {
	ctx = ensureContext(ctx)
	eoiID = strings.TrimSpace(eoiID)
	menteeID = strings.TrimSpace(menteeID)
	if eoiID == "" || menteeID == "" {
		return nil, apperrors.NewBadRequest("eoi id and mentee id are required")
	}

	var eoi models.ExpressionOfInterest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("id = ? AND mentee_id = ? AND status IN ?", eoiID, menteeID, activeEOIStatuses()).
			First(&eoi).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEOINotFound
		}
		if err != nil {
			return fmt.Errorf("load eoi: %w", err)
		}

		if err := tx.Model(&eoi).Update("status", models.EOIStatusWithdrawn).Error; err != nil {
			return fmt.Errorf("withdraw eoi: %w", err)
		}

		if err := tx.Model(&models.Invite{}).
			Where("eoi_id = ? AND status <> ?", eoi.ID, models.InviteStatusExpired).
			Update("status", models.InviteStatusExpired).Error; err != nil {
			return fmt.Errorf("expire invites: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	eoi.Status = models.EOIStatusWithdrawn
	metrics.EOITransitions.WithLabelValues(string(models.EOIStatusWithdrawn)).Inc()
	return &eoi, nil
}

func activeEOIStatuses() []models.EOIStatus {
	return []models.EOIStatus{models.EOIStatusActive, models.EOIStatusInvited}
}
