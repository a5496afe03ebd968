package services

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/ontimesolutions/restaurant-audit/models"
	"github.com/ontimesolutions/restaurant-audit/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newTestDB opens a per-test in-memory database so tests cannot bleed
// into each other through the shared cache.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	utils.InitLogger()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	err = db.AutoMigrate(
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
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name, role string) *models.User {
	t.Helper()
	user := models.User{
		Name:     name,
		Email:    strings.ToLower(name) + "@example.com",
		Password: "secret",
		Role:     role,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return &user
}

func seedRestaurant(t *testing.T, db *gorm.DB, name string) *models.Restaurant {
	t.Helper()
	restaurant := models.Restaurant{
		Name:           name,
		AuditFrequency: models.FrequencyWeekly,
		LocationRadius: 100,
	}
	if err := db.Create(&restaurant).Error; err != nil {
		t.Fatalf("failed to seed restaurant: %v", err)
	}
	return &restaurant
}

func seedAssignment(t *testing.T, db *gorm.DB, restaurantID, userID uint, startWeekDay string) *models.Assignment {
	t.Helper()
	assignment := models.Assignment{
		RestaurantID:   restaurantID,
		UserID:         userID,
		IsActive:       true,
		EmployeeStatus: models.EmployeeActive,
		StartWeekDay:   startWeekDay,
	}
	if err := db.Create(&assignment).Error; err != nil {
		t.Fatalf("failed to seed assignment: %v", err)
	}
	return &assignment
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
