package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tmo2000/mentorafrica/internal/middleware"
	"github.com/tmo2000/mentorafrica/internal/services"
	"github.com/tmo2000/mentorafrica/pkg/errors"
	"github.com/tmo2000/mentorafrica/pkg/response"
)

// MentorshipHandler exposes the mentorship query and lifecycle endpoints.
type MentorshipHandler struct {
	service *services.MentorshipService
}

// NewMentorshipHandler constructs a mentorship handler.
func NewMentorshipHandler(db *gorm.DB) (*MentorshipHandler, error) {
	service, err := services.NewMentorshipService(db)
	if err != nil {
		return nil, err
	}
	return &MentorshipHandler{service: service}, nil
}

// GET /api/mentorships/mine
func (h *MentorshipHandler) ListMine(c *gin.Context) {
	menteeID := c.GetString(middleware.CtxUserIDKey)
	if menteeID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	mentorships, err := h.service.ListForMentee(requestContext(c), menteeID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, mentorships)
}

// GET /api/mentorships/mentoring
func (h *MentorshipHandler) ListMentoring(c *gin.Context) {
	mentorID := c.GetString(middleware.CtxUserIDKey)
	if mentorID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	mentorships, err := h.service.ListForMentor(requestContext(c), mentorID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, mentorships)
}

// POST /api/mentorships/:id/complete
func (h *MentorshipHandler) Complete(c *gin.Context) {
	h.closeMentorship(c, true)
}

// POST /api/mentorships/:id/cancel
func (h *MentorshipHandler) Cancel(c *gin.Context) {
	h.closeMentorship(c, false)
}

func (h *MentorshipHandler) closeMentorship(c *gin.Context, complete bool) {
	actorID := c.GetString(middleware.CtxUserIDKey)
	if actorID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	id := strings.TrimSpace(c.Param("id"))
	var err error
	var mentorship any
	if complete {
		mentorship, err = h.service.Complete(requestContext(c), id, actorID)
	} else {
		mentorship, err = h.service.Cancel(requestContext(c), id, actorID)
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, mentorship)
}
