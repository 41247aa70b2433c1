package api

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	iauth "github.com/tmo2000/mentorafrica/internal/auth"
	"github.com/tmo2000/mentorafrica/internal/handlers"
	"github.com/tmo2000/mentorafrica/internal/middleware"
	"github.com/tmo2000/mentorafrica/internal/models"
	"github.com/tmo2000/mentorafrica/internal/services"
	"github.com/tmo2000/mentorafrica/pkg/mail"
)

// RouterOptions carries optional collaborators for route construction.
type RouterOptions struct {
	// Mailer, when set, sends best-effort email copies of workflow notifications.
	Mailer mail.Mailer
	// InviteOptions are forwarded to the invite service (TTL, clock).
	InviteOptions []services.InviteOption
}

// NewRouter builds the Gin engine, wires middleware and registers all routes.
func NewRouter(db *gorm.DB, jwt *iauth.JWTService, opts RouterOptions) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if jwt == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS())

	// Health endpoint (public)
	r.GET("/health", handlers.Health())

	authHandler, err := handlers.NewAuthHandler(db, jwt)
	if err != nil {
		return nil, err
	}

	// Public auth routes
	auth := r.Group("/api/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	// Notification service is shared: workflow services record events through
	// it and the notifications endpoints read them back.
	notifier, err := newNotifier(db, opts.Mailer)
	if err != nil {
		return nil, err
	}

	requireAuth := middleware.Auth(jwt)

	api := r.Group("/api")
	api.Use(requireAuth)

	// Authenticated auth routes
	api.GET("/auth/me", authHandler.Me)

	if err := registerWorkflowRoutes(api, db, notifier, opts.InviteOptions); err != nil {
		return nil, err
	}
	if err := registerDirectoryRoutes(api, db); err != nil {
		return nil, err
	}
	if err := registerAdminRoutes(api, db); err != nil {
		return nil, err
	}

	notificationHandler := handlers.NewNotificationHandler(notifier)
	notifications := api.Group("/notifications")
	{
		notifications.GET("", notificationHandler.List)
		notifications.POST("/:id/read", notificationHandler.MarkRead)
	}

	// Metrics endpoint
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// NotFound fallback
	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}

func newNotifier(db *gorm.DB, mailer mail.Mailer) (*services.NotificationService, error) {
	if mailer == nil {
		return services.NewNotificationService(db)
	}

	users, err := services.NewUserService(db)
	if err != nil {
		return nil, err
	}

	return services.NewNotificationService(db, services.WithNotificationMailer(mailer,
		func(ctx context.Context, userID string) (string, error) {
			user, err := users.Get(ctx, userID)
			if err != nil {
				return "", err
			}
			return user.Email, nil
		}))
}

// registerAdminRoutes mounts the account oversight endpoints behind the admin role.
func registerAdminRoutes(api *gin.RouterGroup, db *gorm.DB) error {
	userHandler, err := handlers.NewUserHandler(db)
	if err != nil {
		return err
	}

	users := api.Group("/users")
	users.Use(middleware.RequireRole(models.RoleAdmin))
	{
		users.GET("", userHandler.List)
		users.GET("/:id", userHandler.Get)
	}
	return nil
}
