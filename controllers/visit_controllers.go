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

type VisitController struct {
	DB        *gorm.DB
	Scheduler *services.VisitScheduler
}

func NewVisitController(db *gorm.DB) *VisitController {
	return &VisitController{DB: db, Scheduler: services.NewVisitScheduler(db)}
}

// ScheduleVisit books a Pending visit for the logged-in auditor.
func (vc *VisitController) ScheduleVisit(c *gin.Context) {
	type reqBody struct {
		RestaurantID uint   `json:"restaurant_id" binding:"required"`
		VisitDate    string `json:"visit_date" binding:"required"` // YYYY-MM-DD
	}
	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	visitDate, err := time.Parse("2006-01-02", body.VisitDate)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("visit_date must be YYYY-MM-DD"))
		return
	}

	auditorID := currentUserID(c)
	visit, err := vc.Scheduler.Schedule(body.RestaurantID, auditorID, visitDate.UTC(), time.Now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPastDate), errors.Is(err, services.ErrTooFarAhead):
			utils.RespondError(c, http.StatusBadRequest, err)
		case errors.Is(err, services.ErrDailyConflict), errors.Is(err, services.ErrAlreadyScheduled):
			utils.RespondError(c, http.StatusConflict, err)
		case errors.Is(err, services.ErrRestaurantNotFound):
			utils.RespondError(c, http.StatusNotFound, err)
		default:
			utils.RespondError(c, http.StatusInternalServerError, err)
		}
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Audit visit scheduled successfully", visit)
}

// CancelVisit moves a visit to Cancelled. Repeating the call is a no-op.
func (vc *VisitController) CancelVisit(c *gin.Context) {
	idStr := c.Param("visit_id")
	id, _ := strconv.Atoi(idStr)

	type reqBody struct {
		Reason string `json:"reason"`
	}
	var body reqBody
	_ = c.ShouldBindJSON(&body)

	if err := vc.Scheduler.Cancel(uint(id), body.Reason); err != nil {
		switch {
		case errors.Is(err, services.ErrVisitNotFound):
			utils.RespondError(c, http.StatusNotFound, err)
		case errors.Is(err, services.ErrVisitCompleted):
			utils.RespondError(c, http.StatusConflict, err)
		default:
			utils.RespondError(c, http.StatusInternalServerError, err)
		}
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Visit cancelled", gin.H{"visit_id": id})
}

// GetMyVisits lists all scheduled visits for the logged-in auditor.
func (vc *VisitController) GetMyVisits(c *gin.Context) {
	auditorID := currentUserID(c)

	var visits []models.ScheduledVisit
	if err := vc.DB.Preload("Restaurant").
		Where("auditor_id = ?", auditorID).
		Order("visit_date ASC").
		Find(&visits).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Scheduled visits", visits)
}

// GetVisitsByWeek lists the auditor's visits falling inside one week.
// Defaults to the Monday week containing today when no start is given.
func (vc *VisitController) GetVisitsByWeek(c *gin.Context) {
	auditorID := currentUserID(c)

	var weekStart time.Time
	if startStr := c.Query("start"); startStr != "" {
		parsed, err := time.Parse("2006-01-02", startStr)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, errors.New("start must be YYYY-MM-DD"))
			return
		}
		weekStart = services.DateOnly(parsed.UTC())
	} else {
		weekStart, _ = services.WindowFor(time.Now().UTC(), "Monday")
	}
	weekEnd := weekStart.AddDate(0, 0, 6)

	var visits []models.ScheduledVisit
	if err := vc.DB.Preload("Restaurant").
		Where("auditor_id = ?", auditorID).
		Where("visit_date >= ? AND visit_date < ?", weekStart, weekEnd.AddDate(0, 0, 1)).
		Order("visit_date ASC").
		Find(&visits).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Visits for week", gin.H{
		"visits":     visits,
		"week_start": weekStart.Format("2006-01-02"),
		"week_end":   weekEnd.Format("2006-01-02"),
	})
}
