package router

import (
	"github.com/gin-gonic/gin"
	"github.com/ontimesolutions/restaurant-audit/controllers"
	"github.com/ontimesolutions/restaurant-audit/middlewares"
	"github.com/ontimesolutions/restaurant-audit/models"
	"github.com/ontimesolutions/restaurant-audit/services"
	"gorm.io/gorm"
)

func SetupRouter(db *gorm.DB, escalation *services.EscalationService) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.CORSMiddlewares())
	// Registered before any route so it applies to every handler chain.
	r.Use(middlewares.NewRateLimiter(50, 1).RateLimit())

	userCtrl := controllers.NewUserController(db)
	visitCtrl := controllers.NewVisitController(db)
	progressCtrl := controllers.NewProgressController(db)
	submissionCtrl := controllers.NewSubmissionController(db)
	restaurantCtrl := controllers.NewRestaurantController(db)
	assignmentCtrl := controllers.NewAssignmentController(db)
	notificationCtrl := controllers.NewNotificationController(db)
	questionCtrl := controllers.NewQuestionController(db)
	adminCtrl := controllers.NewAdminController(db, escalation)

	api := r.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Use(middlewares.NewStrictRateLimiter())
	{
		auth.POST("/login", userCtrl.Login)
	}

	protected := api.Group("")
	protected.Use(middlewares.AuthMiddleware())
	{
		protected.GET("/dashboard", userCtrl.GetDashboard)

		protected.POST("/visits", visitCtrl.ScheduleVisit)
		protected.GET("/visits", visitCtrl.GetMyVisits)
		protected.GET("/visits/week", visitCtrl.GetVisitsByWeek)
		protected.PATCH("/visits/:visit_id/cancel", visitCtrl.CancelVisit)

		protected.GET("/restaurants", restaurantCtrl.GetAssignedRestaurants)
		protected.GET("/restaurants/:restaurant_id/week-status", restaurantCtrl.GetWeekStatus)
		protected.POST("/restaurants/:restaurant_id/validate-location", restaurantCtrl.ValidateLocation)

		protected.POST("/progress", progressCtrl.SaveProgress)
		protected.GET("/progress", progressCtrl.LoadProgress)
		protected.DELETE("/progress/:progress_id", progressCtrl.DiscardProgress)

		protected.POST("/submissions", submissionCtrl.FinalizeSubmission)
		protected.GET("/submissions", submissionCtrl.GetMySubmissions)
		protected.GET("/submissions/:submission_id", submissionCtrl.GetSubmissionByID)

		protected.GET("/questions", questionCtrl.GetActiveQuestions)

		protected.GET("/notifications", notificationCtrl.GetMyNotifications)
		protected.PATCH("/notifications/:notif_id/read", notificationCtrl.MarkRead)
	}

	manager := protected.Group("")
	manager.Use(middlewares.RequireRole(models.RoleManager))
	{
		manager.GET("/restaurants/:restaurant_id/assignments", assignmentCtrl.GetAssignments)
		manager.GET("/reports/overdue", adminCtrl.GetOverdueReport)
	}

	admin := protected.Group("/admin")
	admin.Use(middlewares.RequireRole(models.RoleAdmin))
	{
		admin.POST("/users", userCtrl.Register)
		admin.PATCH("/users/:user_id/deactivate", assignmentCtrl.DeactivateUser)

		admin.POST("/restaurants", restaurantCtrl.CreateRestaurant)
		admin.POST("/questions", questionCtrl.CreateQuestion)

		admin.POST("/assignments", assignmentCtrl.CreateAssignment)
		admin.DELETE("/assignments", assignmentCtrl.RemoveAssignment)

		admin.POST("/sweeps/overdue", adminCtrl.RunOverdueSweep)
		admin.POST("/sweeps/weekly", adminCtrl.RunWeeklyEscalation)
		admin.POST("/restaurants/:restaurant_id/sweep-orphans", adminCtrl.SweepOrphanedVisits)
	}

	return r
}
