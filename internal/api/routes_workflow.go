package api

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tmo2000/mentorafrica/internal/handlers"
	"github.com/tmo2000/mentorafrica/internal/services"
)

// registerWorkflowRoutes mounts the EOI, invite, application, and mentorship
// endpoints that drive the matching state machine.
func registerWorkflowRoutes(api *gin.RouterGroup, db *gorm.DB, notifier *services.NotificationService, inviteOpts []services.InviteOption) error {
	eoiHandler, err := handlers.NewEOIHandler(db)
	if err != nil {
		return err
	}
	eois := api.Group("/eois")
	{
		eois.POST("", eoiHandler.Create)
		eois.GET("/mine", eoiHandler.ListMine)
		eois.GET("/incoming", eoiHandler.ListIncoming)
		eois.POST("/:id/withdraw", eoiHandler.Withdraw)
	}

	inviteHandler, err := handlers.NewInviteHandler(db, notifier, inviteOpts...)
	if err != nil {
		return err
	}
	invites := api.Group("/invites")
	{
		invites.POST("", inviteHandler.Send)
		invites.GET("/mine", inviteHandler.ListMine)
		invites.GET("/sent", inviteHandler.ListSent)
		invites.GET("/quota", inviteHandler.Quota)
		invites.POST("/:id/accept", inviteHandler.Accept)
		invites.POST("/:id/decline", inviteHandler.Decline)
	}

	applicationHandler, err := handlers.NewApplicationHandler(db, notifier)
	if err != nil {
		return err
	}
	applications := api.Group("/applications")
	{
		applications.POST("", applicationHandler.Submit)
		applications.GET("/mine", applicationHandler.ListMine)
		applications.GET("/incoming", applicationHandler.ListIncoming)
		applications.POST("/:id/status", applicationHandler.UpdateStatus)
	}

	mentorshipHandler, err := handlers.NewMentorshipHandler(db)
	if err != nil {
		return err
	}
	mentorships := api.Group("/mentorships")
	{
		mentorships.GET("/mine", mentorshipHandler.ListMine)
		mentorships.GET("/mentoring", mentorshipHandler.ListMentoring)
		mentorships.POST("/:id/complete", mentorshipHandler.Complete)
		mentorships.POST("/:id/cancel", mentorshipHandler.Cancel)
	}

	return nil
}
