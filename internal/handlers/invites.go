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

// InviteHandler exposes invite sending and resolution endpoints.
type InviteHandler struct {
	service *services.InviteService
}

// NewInviteHandler constructs an invite handler. Invite events are recorded as
// notifications through the supplied notification service.
func NewInviteHandler(db *gorm.DB, notifier *services.NotificationService, opts ...services.InviteOption) (*InviteHandler, error) {
	opts = append(opts, services.WithInviteNotifier(notifier))
	service, err := services.NewInviteService(db, opts...)
	if err != nil {
		return nil, err
	}
	return &InviteHandler{service: service}, nil
}

type sendInviteRequest struct {
	EOIID string `json:"eoi_id" validate:"required"`
}

// POST /api/invites
func (h *InviteHandler) Send(c *gin.Context) {
	mentorID := c.GetString(middleware.CtxUserIDKey)
	if mentorID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var req sendInviteRequest
	if !bindAndValidate(c, &req) {
		return
	}

	// The remaining quota is computed here, outside the send transaction.
	remaining, err := h.service.RemainingQuota(requestContext(c), mentorID)
	if err != nil {
		response.Error(c, err)
		return
	}

	invite, err := h.service.Send(requestContext(c), services.SendInviteInput{
		EOIID:          req.EOIID,
		MentorID:       mentorID,
		QuotaRemaining: remaining,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, invite)
}

// GET /api/invites/mine
func (h *InviteHandler) ListMine(c *gin.Context) {
	menteeID := c.GetString(middleware.CtxUserIDKey)
	if menteeID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	invites, err := h.service.ListForMentee(requestContext(c), menteeID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, invites)
}

// GET /api/invites/sent
func (h *InviteHandler) ListSent(c *gin.Context) {
	mentorID := c.GetString(middleware.CtxUserIDKey)
	if mentorID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	invites, err := h.service.ListForMentor(requestContext(c), mentorID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, invites)
}

// GET /api/invites/quota
func (h *InviteHandler) Quota(c *gin.Context) {
	mentorID := c.GetString(middleware.CtxUserIDKey)
	if mentorID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	remaining, err := h.service.RemainingQuota(requestContext(c), mentorID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"remaining": remaining})
}

// POST /api/invites/:id/accept
func (h *InviteHandler) Accept(c *gin.Context) {
	menteeID := c.GetString(middleware.CtxUserIDKey)
	if menteeID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	id := strings.TrimSpace(c.Param("id"))
	invite, err := h.service.Accept(requestContext(c), id, menteeID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, invite)
}

// POST /api/invites/:id/decline
func (h *InviteHandler) Decline(c *gin.Context) {
	menteeID := c.GetString(middleware.CtxUserIDKey)
	if menteeID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	id := strings.TrimSpace(c.Param("id"))
	invite, err := h.service.Decline(requestContext(c), id, menteeID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, invite)
}
