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

var (
	// ErrInviteQuotaExceeded signals the mentor has no remaining invite capacity.
	ErrInviteQuotaExceeded = apperrors.New("INVITE_QUOTA_EXCEEDED",
		"Invite quota reached; expire or resolve outstanding invites first", http.StatusConflict)
	// ErrDuplicateInvite signals a non-expired invite already exists for this EOI.
	ErrDuplicateInvite = apperrors.New("DUPLICATE_INVITE",
		"An invite for this expression of interest already exists", http.StatusConflict)
	// ErrInviteNotFound indicates no invite matches the id for the calling mentee.
	ErrInviteNotFound = apperrors.New("INVITE_NOT_FOUND",
		"Invite not found", http.StatusNotFound)
	// ErrInviteNotPending signals the invite has already been resolved.
	ErrInviteNotPending = apperrors.New("INVITE_NOT_PENDING",
		"Invite is no longer pending", http.StatusPreconditionFailed)
	// ErrEOINotActionable signals the referenced EOI is withdrawn, locked, or expired.
	ErrEOINotActionable = apperrors.New("EOI_NOT_ACTIONABLE",
		"Expression of interest is no longer active", http.StatusPreconditionFailed)
)

// InviteOption customises InviteService behaviour.
type InviteOption func(*InviteService)

// WithInviteClock injects a custom clock primarily for testing.
func WithInviteClock(clock func() time.Time) InviteOption {
	return func(s *InviteService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithInviteTTL sets an expiry horizon stamped onto new invites. Zero disables
// expiry stamping.
func WithInviteTTL(d time.Duration) InviteOption {
	return func(s *InviteService) {
		s.ttl = d
	}
}

// WithInviteNotifier wires workflow notifications for invite events.
func WithInviteNotifier(n *NotificationService) InviteOption {
	return func(s *InviteService) {
		s.notifier = n
	}
}

// InviteService drives mentor-initiated progression of an EOI into an
// actionable invite and the mentee's accept/decline decision.
type InviteService struct {
	db       *gorm.DB
	now      func() time.Time
	ttl      time.Duration
	notifier *NotificationService
}

// NewInviteService constructs an InviteService with the provided dependencies.
func NewInviteService(db *gorm.DB, opts ...InviteOption) (*InviteService, error) {
	if db == nil {
		return nil, errors.New("invite service: db is required")
	}

	service := &InviteService{db: db, now: time.Now}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// SendInviteInput captures a mentor's decision to invite a mentee to apply.
// QuotaRemaining is computed by the caller (quota minus non-expired invites);
// the service does not own the quota constant.
type SendInviteInput struct {
	EOIID          string
	MentorID       string
	QuotaRemaining int
}

// Send creates a PENDING invite for the EOI and moves the EOI to INVITED.
// It rejects exhausted quota, duplicate invites for the same EOI, and EOIs
// that are no longer active. All checks and both writes share one transaction.
func (s *InviteService) Send(ctx context.Context, input SendInviteInput) (*models.Invite, error) {
	ctx = ensureContext(ctx)

	eoiID := strings.TrimSpace(input.EOIID)
	mentorID := strings.TrimSpace(input.MentorID)
	if eoiID == "" || mentorID == "" {
		return nil, apperrors.NewBadRequest("eoi id and mentor id are required")
	}
	if input.QuotaRemaining <= 0 {
		return nil, ErrInviteQuotaExceeded
	}

	now := s.now()
	invite := &models.Invite{
		EOIID:    eoiID,
		MentorID: mentorID,
		Status:   models.InviteStatusPending,
	}
	if s.ttl > 0 {
		expiry := now.Add(s.ttl)
		invite.ExpiresAt = &expiry
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var eoi models.ExpressionOfInterest
		err := tx.Where("id = ? AND mentor_id = ?", eoiID, mentorID).First(&eoi).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEOINotFound
		}
		if err != nil {
			return fmt.Errorf("load eoi: %w", err)
		}
		if !eoi.Status.Active() {
			return ErrEOINotActionable
		}

		var existing int64
		if err := tx.Model(&models.Invite{}).
			Where("eoi_id = ? AND mentor_id = ? AND status <> ?", eoiID, mentorID, models.InviteStatusExpired).
			Count(&existing).Error; err != nil {
			return fmt.Errorf("check duplicate invite: %w", err)
		}
		if existing > 0 {
			return ErrDuplicateInvite
		}

		invite.MenteeID = eoi.MenteeID
		if err := tx.Create(invite).Error; err != nil {
			return fmt.Errorf("create invite: %w", err)
		}

		if err := tx.Model(&eoi).Update("status", models.EOIStatusInvited).Error; err != nil {
			return fmt.Errorf("mark eoi invited: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.InviteTransitions.WithLabelValues(string(models.InviteStatusPending)).Inc()
	s.notify(ctx, invite.MenteeID, models.NotificationKindInviteReceived,
		"A mentor has invited you to apply")
	return invite, nil
}

// Accept resolves the invite in the mentee's favour and forecloses every
// competing in-flight path for that mentee: all other PENDING invites and all
// other active EOIs become LOCKED in the same transaction, so no reader can
// observe two acceptance-eligible paths for one mentee.
func (s *InviteService) Accept(ctx context.Context, inviteID, menteeID string) (*models.Invite, error) {
	ctx = ensureContext(ctx)
	inviteID = strings.TrimSpace(inviteID)
	menteeID = strings.TrimSpace(menteeID)
	if inviteID == "" || menteeID == "" {
		return nil, apperrors.NewBadRequest("invite id and mentee id are required")
	}

	var invite models.Invite
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("id = ? AND mentee_id = ?", inviteID, menteeID).First(&invite).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInviteNotFound
		}
		if err != nil {
			return fmt.Errorf("load invite: %w", err)
		}
		if invite.Status != models.InviteStatusPending {
			return ErrInviteNotPending
		}

		if err := tx.Model(&invite).Update("status", models.InviteStatusAccepted).Error; err != nil {
			return fmt.Errorf("accept invite: %w", err)
		}

		if err := tx.Model(&models.Invite{}).
			Where("mentee_id = ? AND id <> ? AND status = ?", menteeID, invite.ID, models.InviteStatusPending).
			Update("status", models.InviteStatusLocked).Error; err != nil {
			return fmt.Errorf("lock sibling invites: %w", err)
		}

		if err := tx.Model(&models.ExpressionOfInterest{}).
			Where("mentee_id = ? AND id <> ? AND status IN ?", menteeID, invite.EOIID, activeEOIStatuses()).
			Update("status", models.EOIStatusLocked).Error; err != nil {
			return fmt.Errorf("lock sibling eois: %w", err)
		}

		// The accepted invite's own EOI stays on the board as INVITED.
		if err := tx.Model(&models.ExpressionOfInterest{}).
			Where("id = ?", invite.EOIID).
			Update("status", models.EOIStatusInvited).Error; err != nil {
			return fmt.Errorf("confirm eoi invited: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	invite.Status = models.InviteStatusAccepted
	metrics.InviteTransitions.WithLabelValues(string(models.InviteStatusAccepted)).Inc()
	s.notify(ctx, invite.MentorID, models.NotificationKindInviteAccepted,
		"Your invite was accepted")
	return &invite, nil
}

// Decline resolves the invite negatively. Sibling invites and EOIs are untouched.
func (s *InviteService) Decline(ctx context.Context, inviteID, menteeID string) (*models.Invite, error) {
	ctx = ensureContext(ctx)
	inviteID = strings.TrimSpace(inviteID)
	menteeID = strings.TrimSpace(menteeID)
	if inviteID == "" || menteeID == "" {
		return nil, apperrors.NewBadRequest("invite id and mentee id are required")
	}

	var invite models.Invite
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("id = ? AND mentee_id = ?", inviteID, menteeID).First(&invite).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInviteNotFound
		}
		if err != nil {
			return fmt.Errorf("load invite: %w", err)
		}
		if invite.Status != models.InviteStatusPending {
			return ErrInviteNotPending
		}

		if err := tx.Model(&invite).Update("status", models.InviteStatusDeclined).Error; err != nil {
			return fmt.Errorf("decline invite: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	invite.Status = models.InviteStatusDeclined
	metrics.InviteTransitions.WithLabelValues(string(models.InviteStatusDeclined)).Inc()
	s.notify(ctx, invite.MentorID, models.NotificationKindInviteDeclined,
		"Your invite was declined")
	return &invite, nil
}

// ListForMentee returns every invite addressed to the mentee, newest first.
func (s *InviteService) ListForMentee(ctx context.Context, menteeID string) ([]models.Invite, error) {
	ctx = ensureContext(ctx)
	menteeID = strings.TrimSpace(menteeID)
	if menteeID == "" {
		return nil, apperrors.NewBadRequest("mentee id is required")
	}

	var invites []models.Invite
	if err := s.db.WithContext(ctx).
		Where("mentee_id = ?", menteeID).
		Order("created_at DESC").
		Find(&invites).Error; err != nil {
		return nil, fmt.Errorf("invite service: list for mentee: %w", err)
	}
	return invites, nil
}

// ListForMentor returns every invite the mentor has sent, newest first.
func (s *InviteService) ListForMentor(ctx context.Context, mentorID string) ([]models.Invite, error) {
	ctx = ensureContext(ctx)
	mentorID = strings.TrimSpace(mentorID)
	if mentorID == "" {
		return nil, apperrors.NewBadRequest("mentor id is required")
	}

	var invites []models.Invite
	if err := s.db.WithContext(ctx).
		Where("mentor_id = ?", mentorID).
		Order("created_at DESC").
		Find(&invites).Error; err != nil {
		return nil, fmt.Errorf("invite service: list for mentor: %w", err)
	}
	return invites, nil
}

// RemainingQuota computes the mentor's spendable invite capacity: the profile
// quota minus every non-expired invite. Mentors without a profile fall back to
// the platform default quota.
func (s *InviteService) RemainingQuota(ctx context.Context, mentorID string) (int, error) {
	ctx = ensureContext(ctx)
	mentorID = strings.TrimSpace(mentorID)
	if mentorID == "" {
		return 0, apperrors.NewBadRequest("mentor id is required")
	}

	quota := models.DefaultInviteQuota
	var profile models.MentorProfile
	err := s.db.WithContext(ctx).Where("user_id = ?", mentorID).First(&profile).Error
	if err == nil && profile.InviteQuota > 0 {
		quota = profile.InviteQuota
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, fmt.Errorf("invite service: load mentor profile: %w", err)
	}

	var used int64
	if err := s.db.WithContext(ctx).Model(&models.Invite{}).
		Where("mentor_id = ? AND status <> ?", mentorID, models.InviteStatusExpired).
		Count(&used).Error; err != nil {
		return 0, fmt.Errorf("invite service: count invites: %w", err)
	}

	remaining := quota - int(used)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// ExpireStale transitions PENDING invites past their expiry horizon to EXPIRED
// and expires the EOIs they were holding open. Used by the maintenance sweep.
func (s *InviteService) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	ctx = ensureContext(ctx)

	var expired int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stale []models.Invite
		if err := tx.Where("status = ? AND expires_at IS NOT NULL AND expires_at < ?",
			models.InviteStatusPending, now).Find(&stale).Error; err != nil {
			return fmt.Errorf("find stale invites: %w", err)
		}
		if len(stale) == 0 {
			return nil
		}

		ids := make([]string, 0, len(stale))
		eoiIDs := make([]string, 0, len(stale))
		for _, invite := range stale {
			ids = append(ids, invite.ID)
			eoiIDs = append(eoiIDs, invite.EOIID)
		}

		result := tx.Model(&models.Invite{}).
			Where("id IN ?", ids).
			Update("status", models.InviteStatusExpired)
		if result.Error != nil {
			return fmt.Errorf("expire invites: %w", result.Error)
		}
		expired = result.RowsAffected

		if err := tx.Model(&models.ExpressionOfInterest{}).
			Where("id IN ? AND status = ?", eoiIDs, models.EOIStatusInvited).
			Update("status", models.EOIStatusExpired).Error; err != nil {
			return fmt.Errorf("expire eois: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if expired > 0 {
		metrics.InviteTransitions.WithLabelValues(string(models.InviteStatusExpired)).Add(float64(expired))
	}
	return expired, nil
}

func (s *InviteService) notify(ctx context.Context, userID, kind, message string) {
	if s.notifier == nil || userID == "" {
		return
	}
	// Notification failures never fail the workflow operation.
	_, _ = s.notifier.Record(ctx, CreateNotificationInput{
		UserID:  userID,
		Kind:    kind,
		Message: message,
	})
}
