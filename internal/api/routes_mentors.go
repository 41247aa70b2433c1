package api

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tmo2000/mentorafrica/internal/handlers"
)

// registerDirectoryRoutes mounts the mentor directory and profile endpoints.
func registerDirectoryRoutes(api *gin.RouterGroup, db *gorm.DB) error {
	mentorHandler, err := handlers.NewMentorHandler(db)
	if err != nil {
		return err
	}

	mentors := api.Group("/mentors")
	{
		mentors.GET("", mentorHandler.Directory)
		mentors.GET("/profile", mentorHandler.GetProfile)
		mentors.PUT("/profile", mentorHandler.UpsertProfile)
	}
	return nil
}
