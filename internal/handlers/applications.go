package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tmo2000/mentorafrica/internal/middleware"
	"github.com/tmo2000/mentorafrica/internal/models"
	"github.com/tmo2000/mentorafrica/internal/services"
	"github.com/tmo2000/mentorafrica/pkg/errors"
	"github.com/tmo2000/mentorafrica/pkg/response"
)

// ApplicationHandler exposes application submission and review endpoints.
type ApplicationHandler struct {
	service *services.ApplicationService
}

// NewApplicationHandler constructs an application handler.
func NewApplicationHandler(db *gorm.DB, notifier *services.NotificationService, opts ...services.ApplicationOption) (*ApplicationHandler, error) {
	opts = append(opts, services.WithApplicationNotifier(notifier))
	service, err := services.NewApplicationService(db, opts...)
	if err != nil {
		return nil, err
	}
	return &ApplicationHandler{service: service}, nil
}

type submitApplicationRequest struct {
	InviteID string          `json:"invite_id" validate:"required"`
	Answers  json.RawMessage `json:"answers"`
}

// POST /api/applications
func (h *ApplicationHandler) Submit(c *gin.Context) {
	menteeID := c.GetString(middleware.CtxUserIDKey)
	if menteeID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var req submitApplicationRequest
	if !bindAndValidate(c, &req) {
		return
	}

	application, err := h.service.Submit(requestContext(c), services.SubmitApplicationInput{
		InviteID: req.InviteID,
		MenteeID: menteeID,
		Answers:  req.Answers,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, application)
}

// GET /api/applications/mine
func (h *ApplicationHandler) ListMine(c *gin.Context) {
	menteeID := c.GetString(middleware.CtxUserIDKey)
	if menteeID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	applications, err := h.service.ListForMentee(requestContext(c), menteeID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, applications)
}

// GET /api/applications/incoming
func (h *ApplicationHandler) ListIncoming(c *gin.Context) {
	mentorID := c.GetString(middleware.CtxUserIDKey)
	if mentorID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	applications, err := h.service.ListForMentor(requestContext(c), mentorID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, applications)
}

type updateApplicationStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=UNDER_REVIEW ACCEPTED REJECTED"`
}

// POST /api/applications/:id/status
func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	mentorID := c.GetString(middleware.CtxUserIDKey)
	if mentorID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var req updateApplicationStatusRequest
	if !bindAndValidate(c, &req) {
		return
	}

	id := strings.TrimSpace(c.Param("id"))
	application, err := h.service.Get(requestContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	// Only the receiving mentor may decide the application.
	if application.MentorID != mentorID {
		response.Error(c, services.ErrApplicationNotFound)
		return
	}

	updated, err := h.service.UpdateStatus(requestContext(c), id, models.ApplicationStatus(req.Status))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, updated)
}
