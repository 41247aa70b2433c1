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
	"github.com/tmo2000/mentorafrica/pkg/crypto"
	apperrors "github.com/tmo2000/mentorafrica/pkg/errors"
)

var (
	// ErrUserNotFound indicates the requested account does not exist.
	ErrUserNotFound = apperrors.New("USER_NOT_FOUND", "User not found", http.StatusNotFound)
	// ErrUserExists signals the username or email is already taken.
	ErrUserExists = apperrors.New("USER_EXISTS",
		"Username or email already registered", http.StatusConflict)
)

// UserService manages account registration, credential checks, and directory
// listings. Token issuance lives in the auth package; this service only
// answers whether credentials are valid.
type UserService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewUserService constructs a UserService instance.
func NewUserService(db *gorm.DB) (*UserService, error) {
	if db == nil {
		return nil, errors.New("user service: db is required")
	}
	return &UserService{db: db, now: time.Now}, nil
}

// RegisterInput captures new account details.
type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	DisplayName string
	Role        string
}

// Register creates an account. Mentor accounts receive a capacity profile with
// the default invite quota in the same transaction.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	username := strings.ToLower(strings.TrimSpace(input.Username))
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if username == "" || email == "" {
		return nil, apperrors.NewBadRequest("username and email are required")
	}
	if len(input.Password) < 8 {
		return nil, apperrors.NewBadRequest("password must be at least 8 characters")
	}

	role := strings.TrimSpace(input.Role)
	switch role {
	case "":
		role = models.RoleMentee
	case models.RoleMentee, models.RoleMentor:
	default:
		// Admin accounts are provisioned out of band, never via self-registration.
		return nil, apperrors.NewBadRequest("role must be mentee or mentor")
	}

	hashed, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("user service: hash password: %w", err)
	}

	user := &models.User{
		Username:    username,
		Email:       email,
		Password:    hashed,
		DisplayName: strings.TrimSpace(input.DisplayName),
		Role:        role,
		IsActive:    true,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			if isUniqueConstraintError(err) {
				return ErrUserExists
			}
			return fmt.Errorf("create user: %w", err)
		}

		if role == models.RoleMentor {
			profile := &models.MentorProfile{
				UserID:       user.ID,
				InviteQuota:  models.DefaultInviteQuota,
				AcceptingNew: true,
			}
			if err := tx.Create(profile).Error; err != nil {
				return fmt.Errorf("create mentor profile: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// Authenticate verifies credentials and stamps the last login time.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	ctx = ensureContext(ctx)

	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || password == "" {
		return nil, apperrors.ErrInvalidCredentials
	}

	var user models.User
	err := s.db.WithContext(ctx).
		Where("username = ? OR email = ?", username, username).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("user service: load user: %w", err)
	}

	if !user.IsActive || !crypto.VerifyPassword(user.Password, password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	now := s.now()
	if err := s.db.WithContext(ctx).Model(&user).
		Update("last_login_at", now).Error; err != nil {
		return nil, fmt.Errorf("user service: stamp login: %w", err)
	}
	user.LastLoginAt = &now

	return &user, nil
}

// Get loads an account by id.
func (s *UserService) Get(ctx context.Context, userID string) (*models.User, error) {
	ctx = ensureContext(ctx)
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperrors.NewBadRequest("user id is required")
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user service: load user: %w", err)
	}
	return &user, nil
}

// List returns accounts for admin oversight, newest first.
func (s *UserService) List(ctx context.Context, limit, offset int) ([]models.User, int64, error) {
	ctx = ensureContext(ctx)

	if limit <= 0 || limit > 100 {
		limit = 25
	}
	if offset < 0 {
		offset = 0
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("user service: count users: %w", err)
	}

	var users []models.User
	if err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("user service: list users: %w", err)
	}
	return users, total, nil
}

// ListMentors returns the browsable mentor directory: active mentor accounts
// with their capacity profiles preloaded, filtered to those accepting new
// mentees.
func (s *UserService) ListMentors(ctx context.Context) ([]models.User, error) {
	ctx = ensureContext(ctx)

	var mentors []models.User
	if err := s.db.WithContext(ctx).
		Preload("MentorProfile").
		Where("role = ? AND is_active = ?", models.RoleMentor, true).
		Order("created_at ASC").
		Find(&mentors).Error; err != nil {
		return nil, fmt.Errorf("user service: list mentors: %w", err)
	}

	visible := mentors[:0]
	for _, mentor := range mentors {
		if mentor.MentorProfile == nil || mentor.MentorProfile.AcceptingNew {
			visible = append(visible, mentor)
		}
	}
	return visible, nil
}
