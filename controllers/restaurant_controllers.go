package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ontimesolutions/restaurant-audit/models"
	"github.com/ontimesolutions/restaurant-audit/services"
	"github.com/ontimesolutions/restaurant-audit/utils"
	"gorm.io/gorm"
)

type RestaurantController struct {
	DB         *gorm.DB
	Compliance *services.ComplianceService
	Geofence   *services.GeofenceService
}

func NewRestaurantController(db *gorm.DB) *RestaurantController {
	return &RestaurantController{
		DB:         db,
		Compliance: services.NewComplianceService(db),
		Geofence:   services.NewGeofenceService(db),
	}
}

// CreateRestaurant (admin).
func (rc *RestaurantController) CreateRestaurant(c *gin.Context) {
	type reqBody struct {
		Name           string   `json:"name" binding:"required"`
		Address        string   `json:"address"`
		Latitude       *float64 `json:"latitude"`
		Longitude      *float64 `json:"longitude"`
		LocationRadius float64  `json:"location_radius"`
		AuditFrequency string   `json:"audit_frequency"`
		ManagerID      *uint    `json:"manager_id"`
	}
	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	restaurant := models.Restaurant{
		Name:           body.Name,
		Address:        body.Address,
		Latitude:       body.Latitude,
		Longitude:      body.Longitude,
		LocationRadius: body.LocationRadius,
		AuditFrequency: body.AuditFrequency,
		ManagerID:      body.ManagerID,
	}
	if restaurant.LocationRadius <= 0 {
		restaurant.LocationRadius = 100
	}
	if restaurant.AuditFrequency == "" {
		restaurant.AuditFrequency = models.FrequencyWeekly
	}

	if err := rc.DB.Create(&restaurant).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Restaurant created", restaurant)
}

// GetAssignedRestaurants lists the auditor's restaurants enriched with
// last-audit date, audit counts, open-progress flag, and aggregate status.
func (rc *RestaurantController) GetAssignedRestaurants(c *gin.Context) {
	auditorID := currentUserID(c)
	today := time.Now().UTC()

	var assignments []models.Assignment
	if err := rc.DB.Preload("Restaurant").
		Where("user_id = ? AND is_active = ?", auditorID, true).
		Find(&assignments).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	type restaurantRow struct {
		models.Restaurant
		LastAuditDate *time.Time `json:"last_audit_date,omitempty"`
		NextAuditDate *time.Time `json:"next_audit_date,omitempty"`
		AuditStatus   string     `json:"audit_status"`
		TotalAudits   int64      `json:"total_audits"`
		MyAudits      int64      `json:"my_audits"`
		HasProgress   bool       `json:"has_progress"`
		StartWeekDay  string     `json:"start_week_day"`
	}

	rows := make([]restaurantRow, 0, len(assignments))
	for _, assignment := range assignments {
		restaurant := assignment.Restaurant
		row := restaurantRow{Restaurant: restaurant, StartWeekDay: assignment.StartWeekDay}

		status, err := rc.Compliance.AuditStatusFor(&restaurant, today)
		if err != nil {
			utils.ErrorLogger.Printf("Failed to resolve audit status for restaurant %d: %v", restaurant.ID, err)
			row.AuditStatus = services.StatusPending
		} else {
			row.AuditStatus = status.Status
			row.LastAuditDate = status.LastAuditDate
			row.NextAuditDate = status.NextAuditDate
		}

		rc.DB.Model(&models.AuditSubmission{}).Where("restaurant_id = ?", restaurant.ID).Count(&row.TotalAudits)
		rc.DB.Model(&models.AuditSubmission{}).Where("restaurant_id = ? AND auditor_id = ?", restaurant.ID, auditorID).Count(&row.MyAudits)

		var openProgress int64
		rc.DB.Model(&models.AuditProgress{}).
			Where("restaurant_id = ? AND auditor_id = ? AND is_completed = ?", restaurant.ID, auditorID, false).
			Count(&openProgress)
		row.HasProgress = openProgress > 0

		rows = append(rows, row)
	}

	utils.RespondJSON(c, http.StatusOK, "Assigned restaurants", rows)
}

// GetWeekStatus evaluates the logged-in auditor's compliance window for a
// restaurant at a reference date (default today).
func (rc *RestaurantController) GetWeekStatus(c *gin.Context) {
	idStr := c.Param("restaurant_id")
	id, _ := strconv.Atoi(idStr)

	referenceDate := time.Now().UTC()
	if refStr := c.Query("reference_date"); refStr != "" {
		parsed, err := time.Parse("2006-01-02", refStr)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, errors.New("reference_date must be YYYY-MM-DD"))
			return
		}
		referenceDate = parsed.UTC()
	}

	status, err := rc.Compliance.WeekStatus(uint(id), currentUserID(c), referenceDate)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Week status", status)
}

// ValidateLocation checks a submitted position against the restaurant
// geofence and logs the attempt.
func (rc *RestaurantController) ValidateLocation(c *gin.Context) {
	idStr := c.Param("restaurant_id")
	id, _ := strconv.Atoi(idStr)

	type reqBody struct {
		Latitude  *float64 `json:"latitude" binding:"required"`
		Longitude *float64 `json:"longitude" binding:"required"`
	}
	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var restaurant models.Restaurant
	if err := rc.DB.First(&restaurant, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("restaurant not found"))
		return
	}

	result := rc.Geofence.WithinRange(&restaurant, currentUserID(c), *body.Latitude, *body.Longitude, time.Now().UTC())
	utils.RespondJSON(c, http.StatusOK, "Location validated", result)
}
