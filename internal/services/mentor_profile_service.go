package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/tmo2000/mentorafrica/internal/models"
	apperrors "github.com/tmo2000/mentorafrica/pkg/errors"
)

// ErrMentorProfileNotFound indicates the mentor has no capacity profile yet.
var ErrMentorProfileNotFound = apperrors.New("MENTOR_PROFILE_NOT_FOUND",
	"Mentor profile not found", http.StatusNotFound)

// MentorProfileService manages mentor capacity and directory settings.
type MentorProfileService struct {
	db *gorm.DB
}

// NewMentorProfileService constructs a MentorProfileService instance.
func NewMentorProfileService(db *gorm.DB) (*MentorProfileService, error) {
	if db == nil {
		return nil, errors.New("mentor profile service: db is required")
	}
	return &MentorProfileService{db: db}, nil
}

// Get loads the capacity profile for a mentor account.
func (s *MentorProfileService) Get(ctx context.Context, userID string) (*models.MentorProfile, error) {
	ctx = ensureContext(ctx)
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperrors.NewBadRequest("user id is required")
	}

	var profile models.MentorProfile
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMentorProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mentor profile service: load profile: %w", err)
	}
	return &profile, nil
}

// UpsertMentorProfileInput describes mutable profile fields. Nil pointers
// leave the stored value untouched.
type UpsertMentorProfileInput struct {
	Headline     *string
	Bio          *string
	Skills       *string
	InviteQuota  *int
	AcceptingNew *bool
}

// Upsert creates or updates the mentor's capacity profile.
func (s *MentorProfileService) Upsert(ctx context.Context, userID string, input UpsertMentorProfileInput) (*models.MentorProfile, error) {
	ctx = ensureContext(ctx)
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperrors.NewBadRequest("user id is required")
	}
	if input.InviteQuota != nil && *input.InviteQuota < 1 {
		return nil, apperrors.NewBadRequest("invite quota must be at least 1")
	}

	var profile models.MentorProfile
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ?", userID).First(&profile).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			profile = models.MentorProfile{
				UserID:       userID,
				InviteQuota:  models.DefaultInviteQuota,
				AcceptingNew: true,
			}
			if err := tx.Create(&profile).Error; err != nil {
				return fmt.Errorf("create profile: %w", err)
			}
		} else if err != nil {
			return fmt.Errorf("load profile: %w", err)
		}

		updates := map[string]any{}
		if input.Headline != nil {
			updates["headline"] = strings.TrimSpace(*input.Headline)
		}
		if input.Bio != nil {
			updates["bio"] = strings.TrimSpace(*input.Bio)
		}
		if input.Skills != nil {
			updates["skills"] = strings.TrimSpace(*input.Skills)
		}
		if input.InviteQuota != nil {
			updates["invite_quota"] = *input.InviteQuota
		}
		if input.AcceptingNew != nil {
			updates["accepting_new"] = *input.AcceptingNew
		}

		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&profile).Updates(updates).Error; err != nil {
			return fmt.Errorf("update profile: %w", err)
		}
		return tx.Where("user_id = ?", userID).First(&profile).Error
	})
	if err != nil {
		return nil, err
	}

	return &profile, nil
}
