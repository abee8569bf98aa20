package api

import (
	"net/http"

	"alcyxob/coach-engine/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	planService service.PlanService,
	feedbackService service.FeedbackService,
	metricsService service.MetricsService,
) {
	authHandler := NewAuthHandler(authService)
	planHandler := NewPlanHandler(planService)
	activityHandler := NewActivityHandler(feedbackService)
	metricsHandler := NewMetricsHandler(metricsService)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			athleteID, err := getAthleteIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get athlete ID from token")
				return
			}
			c.JSON(http.StatusOK, gin.H{"athleteId": athleteID.Hex()})
		})
		// PUT /api/v1/me/style
		protected.PUT("/me/style", authHandler.UpdateStyle)

		planGroup := protected.Group("/plan")
		{
			// POST /api/v1/plan/ingest
			planGroup.POST("/ingest", planHandler.Ingest)
			// GET /api/v1/plan
			planGroup.GET("", planHandler.GetPlan)
			// GET /api/v1/plan/current-week
			planGroup.GET("/current-week", planHandler.GetCurrentWeek)
			// DELETE /api/v1/plan
			planGroup.DELETE("", planHandler.DeletePlan)
		}

		activityGroup := protected.Group("/activities")
		{
			// POST /api/v1/activities/feedback
			activityGroup.POST("/feedback", activityHandler.Feedback)
		}

		metricsGroup := protected.Group("/metrics")
		{
			// GET /api/v1/metrics
			metricsGroup.GET("", metricsHandler.Get)
			// POST /api/v1/metrics/lthr/lab
			metricsGroup.POST("/lthr/lab", metricsHandler.SetLTHRFromLab)
			// POST /api/v1/metrics/ftp/lab
			metricsGroup.POST("/ftp/lab", metricsHandler.SetFTPFromLab)
			// POST /api/v1/metrics/:metric/confirm
			metricsGroup.POST("/:metric/confirm", metricsHandler.Confirm)
		}
	}
}
