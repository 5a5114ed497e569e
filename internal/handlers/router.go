package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/CyberLabs-Edu/labs-service/internal/config"
	"github.com/CyberLabs-Edu/labs-service/internal/models"
	"github.com/CyberLabs-Edu/labs-service/internal/repositories"
	"github.com/CyberLabs-Edu/labs-service/internal/services"
	"github.com/CyberLabs-Edu/labs-service/internal/utils"
	"github.com/CyberLabs-Edu/labs-service/internal/validator"
)

type HandlerManager struct {
	labHandler          *LabHandler
	challengeHandler    *ChallengeHandler
	submissionHandler   *SubmissionHandler
	progressHandler     *ProgressHandler
	reviewHandler       *ReviewHandler
	statisticsHandler   *StatisticsHandler
	profileHandler      *ProfileHandler
	notificationHandler *NotificationHandler
	userHandler         *UserHandler
	authMiddleware      *CasdoorAuthMiddleware
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	logger utils.Logger,
	casdoorConfig config.CasdoorConfig,
	userRepo repositories.UserRepository,
) *HandlerManager {
	authMiddleware := NewCasdoorAuthMiddleware(casdoorConfig, userRepo)

	return &HandlerManager{
		labHandler:          NewLabHandler(serviceManager.Lab(), logger),
		challengeHandler:    NewChallengeHandler(serviceManager.Challenge(), logger),
		submissionHandler:   NewSubmissionHandler(serviceManager.Submission(), logger),
		progressHandler:     NewProgressHandler(serviceManager.Progress(), logger),
		reviewHandler:       NewReviewHandler(serviceManager.Review(), logger),
		statisticsHandler:   NewStatisticsHandler(serviceManager.Statistics(), logger),
		profileHandler:      NewProfileHandler(serviceManager.Profile(), logger),
		notificationHandler: NewNotificationHandler(serviceManager.Notification(), validator, logger),
		userHandler:         NewUserHandler(userRepo, serviceManager.Profile(), logger),
		authMiddleware:      authMiddleware,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// API v1 routes with authentication
	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.AuthMiddleware())
	{
		// Lab routes
		labs := v1.Group("/labs")
		{
			// Authoring - Instructors and Admins only
			labs.POST("", hm.authMiddleware.RequireRoleMiddleware(models.RoleInstructor, models.RoleAdmin), hm.labHandler.CreateLab)
			labs.PUT("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleInstructor, models.RoleAdmin), hm.labHandler.UpdateLab)
			labs.DELETE("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleInstructor, models.RoleAdmin), hm.labHandler.DeleteLab)
			labs.POST("/:id/publish", hm.authMiddleware.RequireRoleMiddleware(models.RoleInstructor, models.RoleAdmin), hm.labHandler.PublishLab)
			labs.POST("/:id/unpublish", hm.authMiddleware.RequireRoleMiddleware(models.RoleInstructor, models.RoleAdmin), hm.labHandler.UnpublishLab)
			labs.GET("/creator/:creator_id", hm.authMiddleware.RequireRoleMiddleware(models.RoleInstructor, models.RoleAdmin), hm.labHandler.GetLabsByCreator)

			// Catalog - all authenticated users
			labs.GET("", hm.labHandler.ListLabs)
			labs.GET("/categories", hm.labHandler.GetCategories)
			labs.GET("/premium", hm.labHandler.GetPremiumLabs)
			labs.GET("/slug/:slug", hm.labHandler.GetLabBySlug)
			labs.GET("/:id", hm.labHandler.GetLab)
			labs.GET("/:id/details", hm.labHandler.GetLabWithDetails)

			// Challenge authoring and listing
			labs.POST("/:id/challenges", hm.authMiddleware.RequireRoleMiddleware(models.RoleInstructor, models.RoleAdmin), hm.challengeHandler.CreateChallenge)
			labs.GET("/:id/challenges", hm.challengeHandler.GetLabChallenges)

			// Progress
			labs.POST("/:id/start", hm.progressHandler.StartLab)
			labs.GET("/:id/progress", hm.progressHandler.GetLabProgress)
			labs.POST("/:id/progress/refresh", hm.progressHandler.RefreshLabProgress)

			// Submissions scoped to a lab
			labs.GET("/:id/submissions", hm.submissionHandler.GetLabSubmissions)

			// Reviews
			labs.POST("/:id/reviews", hm.reviewHandler.CreateReview)
			labs.GET("/:id/reviews", hm.reviewHandler.GetLabReviews)
			labs.GET("/:id/reviews/me", hm.reviewHandler.GetMyReview)

			// Statistics and reporting - Instructors and Admins only
			labs.GET("/:id/statistics", hm.statisticsHandler.GetLabStatistics)
			labs.POST("/:id/statistics/refresh", hm.authMiddleware.RequireRoleMiddleware(models.RoleInstructor, models.RoleAdmin), hm.statisticsHandler.RefreshLabStatistics)
			labs.GET("/:id/report", hm.authMiddleware.RequireRoleMiddleware(models.RoleInstructor, models.RoleAdmin), hm.statisticsHandler.ExportLabReport)
		}

		// Challenge routes
		challenges := v1.Group("/challenges")
		{
			challenges.GET("/:id", hm.challengeHandler.GetChallenge)
			challenges.PUT("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleInstructor, models.RoleAdmin), hm.challengeHandler.UpdateChallenge)
			challenges.DELETE("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleInstructor, models.RoleAdmin), hm.challengeHandler.DeleteChallenge)
			challenges.POST("/:id/submissions", hm.submissionHandler.SubmitAnswer)
		}

		// Submission routes
		submissions := v1.Group("/submissions")
		{
			submissions.GET("", hm.submissionHandler.ListSubmissions)
			submissions.GET("/pending", hm.authMiddleware.RequireRoleMiddleware(models.RoleInstructor, models.RoleModerator, models.RoleAdmin), hm.submissionHandler.GetPendingReview)
			submissions.GET("/:id", hm.submissionHandler.GetSubmission)
			submissions.POST("/:id/review", hm.authMiddleware.RequireRoleMiddleware(models.RoleInstructor, models.RoleModerator, models.RoleAdmin), hm.submissionHandler.ReviewSubmission)
		}

		// Progress routes
		progress := v1.Group("/progress")
		{
			progress.GET("/me", hm.progressHandler.GetMyProgress)
		}

		// Review routes (lab-independent operations)
		reviews := v1.Group("/reviews")
		{
			reviews.PUT("/:id", hm.reviewHandler.UpdateReview)
			reviews.DELETE("/:id", hm.reviewHandler.DeleteReview)
			reviews.POST("/:id/helpful", hm.reviewHandler.MarkReviewHelpful)
			reviews.PUT("/:id/approval", hm.authMiddleware.RequireRoleMiddleware(models.RoleModerator, models.RoleAdmin), hm.reviewHandler.SetReviewApproval)
		}

		// Dashboard - Instructors and Admins only
		v1.GET("/dashboard", hm.authMiddleware.RequireRoleMiddleware(models.RoleInstructor, models.RoleAdmin), hm.statisticsHandler.GetDashboard)

		// Profile routes
		profiles := v1.Group("/profiles")
		{
			profiles.GET("/me", hm.profileHandler.GetMyProfile)
			profiles.PUT("/me", hm.profileHandler.UpdateMyProfile)
			profiles.POST("/me/refresh", hm.profileHandler.RefreshMyProfile)
			profiles.GET("/:user_id", hm.profileHandler.GetProfile)
		}
		v1.GET("/leaderboard", hm.profileHandler.GetLeaderboard)

		// Notification routes
		notifications := v1.Group("/notifications")
		{
			notifications.GET("", hm.notificationHandler.ListNotifications)
			notifications.POST("/bulk", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.notificationHandler.SendBulkNotification)
			notifications.PUT("/:id/read", hm.notificationHandler.MarkNotificationRead)
			notifications.PUT("/read-all", hm.notificationHandler.MarkAllNotificationsRead)
		}

		// User routes
		users := v1.Group("/users")
		{
			users.GET("", hm.userHandler.ListUsers)
			users.GET("/search", hm.userHandler.SearchUsers)
			users.GET("/:id", hm.userHandler.GetUser)
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "labs-service",
		})
	})
}
