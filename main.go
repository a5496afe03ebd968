package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/ontimesolutions/restaurant-audit/config"
	"github.com/ontimesolutions/restaurant-audit/models"
	"github.com/ontimesolutions/restaurant-audit/router"
	"github.com/ontimesolutions/restaurant-audit/services"
	"github.com/ontimesolutions/restaurant-audit/utils"
	"gorm.io/gorm"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or error loading: %v", err)
	}
	utils.InitLogger()
}

func main() {
	db, err := config.InitDB()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	autoMigrate(db)

	notifier := services.NewDBNotifier(db, services.NewMailerFromEnv())
	escalation := services.NewEscalationService(db, notifier)
	escalation.Start()
	defer escalation.Stop()

	r := router.SetupRouter(db, escalation)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	utils.InfoLogger.Printf("Listening on port %s", port)
	if err := r.Run(":" + port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}

func autoMigrate(db *gorm.DB) {
	err := db.AutoMigrate(
		&models.User{},
		&models.Restaurant{},
		&models.Assignment{},
		&models.AuditQuestion{},
		&models.ScheduledVisit{},
		&models.AuditProgress{},
		&models.AuditSubmission{},
		&models.SubmissionAnswer{},
		&models.LocationCheck{},
		&models.Notification{},
	)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")

	// Legacy rows written before slot keys existed would dodge the
	// uniqueness constraint; backfill them.
	backfill := "UPDATE scheduled_visits SET slot_key = CONCAT(restaurant_id, ':', auditor_id, ':', DATE_FORMAT(visit_date, '%Y-%m-%d')) WHERE slot_key IS NULL AND status <> 'Cancelled'"
	if db.Dialector.Name() == "sqlite" {
		backfill = "UPDATE scheduled_visits SET slot_key = restaurant_id || ':' || auditor_id || ':' || strftime('%Y-%m-%d', visit_date) WHERE slot_key IS NULL AND status <> 'Cancelled'"
	}
	if err := db.Exec(backfill).Error; err != nil {
		utils.ErrorLogger.Printf("Error backfilling visit slot keys: %v", err)
	}
}
