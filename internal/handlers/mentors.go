package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tmo2000/mentorafrica/internal/middleware"
	"github.com/tmo2000/mentorafrica/internal/services"
	"github.com/tmo2000/mentorafrica/pkg/errors"
	"github.com/tmo2000/mentorafrica/pkg/response"
)

// MentorHandler exposes the mentor directory and profile management.
type MentorHandler struct {
	users    *services.UserService
	profiles *services.MentorProfileService
}

// NewMentorHandler constructs a mentor handler.
func NewMentorHandler(db *gorm.DB) (*MentorHandler, error) {
	users, err := services.NewUserService(db)
	if err != nil {
		return nil, err
	}
	profiles, err := services.NewMentorProfileService(db)
	if err != nil {
		return nil, err
	}
	return &MentorHandler{users: users, profiles: profiles}, nil
}

// GET /api/mentors
func (h *MentorHandler) Directory(c *gin.Context) {
	mentors, err := h.users.ListMentors(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	payload := make([]gin.H, 0, len(mentors))
	for _, mentor := range mentors {
		entry := gin.H{
			"id":           mentor.ID,
			"username":     mentor.Username,
			"display_name": mentor.DisplayName,
		}
		if mentor.MentorProfile != nil {
			entry["headline"] = mentor.MentorProfile.Headline
			entry["bio"] = mentor.MentorProfile.Bio
			entry["skills"] = mentor.MentorProfile.Skills
		}
		payload = append(payload, entry)
	}

	response.Success(c, http.StatusOK, payload)
}

// GET /api/mentors/profile
func (h *MentorHandler) GetProfile(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	profile, err := h.profiles.Get(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, profile)
}

type upsertProfileRequest struct {
	Headline     *string `json:"headline" validate:"omitempty,max=160"`
	Bio          *string `json:"bio" validate:"omitempty,max=2000"`
	Skills       *string `json:"skills" validate:"omitempty,max=500"`
	InviteQuota  *int    `json:"invite_quota" validate:"omitempty,min=1"`
	AcceptingNew *bool   `json:"accepting_new"`
}

// PUT /api/mentors/profile
func (h *MentorHandler) UpsertProfile(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var req upsertProfileRequest
	if !bindAndValidate(c, &req) {
		return
	}

	profile, err := h.profiles.Upsert(requestContext(c), userID, services.UpsertMentorProfileInput{
		Headline:     req.Headline,
		Bio:          req.Bio,
		Skills:       req.Skills,
		InviteQuota:  req.InviteQuota,
		AcceptingNew: req.AcceptingNew,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, profile)
}
