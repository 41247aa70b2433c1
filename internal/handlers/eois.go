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

// EOIHandler exposes the mentee-facing expression-of-interest endpoints.
type EOIHandler struct {
	service *services.EOIService
}

// NewEOIHandler constructs an EOI handler.
func NewEOIHandler(db *gorm.DB) (*EOIHandler, error) {
	service, err := services.NewEOIService(db)
	if err != nil {
		return nil, err
	}
	return &EOIHandler{service: service}, nil
}

type createEOIRequest struct {
	MentorID         string `json:"mentor_id" validate:"required"`
	Goal             string `json:"goal" validate:"required"`
	Note             string `json:"note"`
	RankedPreference int    `json:"ranked_preference" validate:"required,min=1,max=3"`
}

// POST /api/eois
func (h *EOIHandler) Create(c *gin.Context) {
	menteeID := c.GetString(middleware.CtxUserIDKey)
	if menteeID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var req createEOIRequest
	if !bindAndValidate(c, &req) {
		return
	}

	eoi, err := h.service.Create(requestContext(c), services.CreateEOIInput{
		MentorID:         req.MentorID,
		MenteeID:         menteeID,
		Goal:             req.Goal,
		Note:             req.Note,
		RankedPreference: req.RankedPreference,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, eoi)
}

// GET /api/eois/mine
func (h *EOIHandler) ListMine(c *gin.Context) {
	menteeID := c.GetString(middleware.CtxUserIDKey)
	if menteeID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	eois, err := h.service.ListForMentee(requestContext(c), menteeID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, eois)
}

// GET /api/eois/incoming
func (h *EOIHandler) ListIncoming(c *gin.Context) {
	mentorID := c.GetString(middleware.CtxUserIDKey)
	if mentorID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	eois, err := h.service.ListForMentor(requestContext(c), mentorID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, eois)
}

// POST /api/eois/:id/withdraw
func (h *EOIHandler) Withdraw(c *gin.Context) {
	menteeID := c.GetString(middleware.CtxUserIDKey)
	if menteeID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	id := strings.TrimSpace(c.Param("id"))
	eoi, err := h.service.Withdraw(requestContext(c), id, menteeID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, eoi)
}
