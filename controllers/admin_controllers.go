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

// AdminController exposes the sweep entry points and the overdue report.
// Sweeps accept an explicit today so a rerun for a given date is
// deterministic and idempotent.
type AdminController struct {
	DB         *gorm.DB
	Escalation *services.EscalationService
	Cleanup    *services.CleanupService
}

func NewAdminController(db *gorm.DB, escalation *services.EscalationService) *AdminController {
	return &AdminController{
		DB:         db,
		Escalation: escalation,
		Cleanup:    services.NewCleanupService(db),
	}
}

func sweepDate(c *gin.Context) (time.Time, error) {
	if todayStr := c.Query("today"); todayStr != "" {
		parsed, err := time.Parse("2006-01-02", todayStr)
		if err != nil {
			return time.Time{}, errors.New("today must be YYYY-MM-DD")
		}
		return parsed.UTC(), nil
	}
	return time.Now().UTC(), nil
}

// RunOverdueSweep marks stale pending visits overdue.
func (adc *AdminController) RunOverdueSweep(c *gin.Context) {
	today, err := sweepDate(c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	count, err := adc.Escalation.RunOverdueSweep(today)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Overdue sweep completed", gin.H{
		"marked_overdue": count,
		"today":          today.Format("2006-01-02"),
	})
}

// RunWeeklyEscalation alerts restaurants missing a completed audit this week.
func (adc *AdminController) RunWeeklyEscalation(c *gin.Context) {
	today, err := sweepDate(c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if err := adc.Escalation.RunWeeklyEscalation(today); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Weekly escalation completed", gin.H{
		"today": today.Format("2006-01-02"),
	})
}

// SweepOrphanedVisits cancels visits whose auditor lost their assignment.
func (adc *AdminController) SweepOrphanedVisits(c *gin.Context) {
	idStr := c.Param("restaurant_id")
	id, _ := strconv.Atoi(idStr)

	cancelled, err := adc.Cleanup.SweepOrphanedVisits(uint(id))
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Orphaned visit sweep completed", gin.H{
		"cancelled": cancelled,
	})
}

// GetOverdueReport lists overdue visits with severity and action labels,
// most overdue first.
func (adc *AdminController) GetOverdueReport(c *gin.Context) {
	today, err := sweepDate(c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	today = services.DateOnly(today)

	var visits []models.ScheduledVisit
	if err := adc.DB.Preload("Restaurant").Preload("Auditor").
		Where("status = ?", models.VisitOverdue).
		Order("visit_date ASC").
		Find(&visits).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	type reportRow struct {
		VisitID         uint   `json:"visit_id"`
		Reference       string `json:"reference"`
		RestaurantID    uint   `json:"restaurant_id"`
		RestaurantName  string `json:"restaurant_name"`
		AuditorID       uint   `json:"auditor_id"`
		AuditorName     string `json:"auditor_name"`
		VisitDate       string `json:"visit_date"`
		DaysOverdue     int    `json:"days_overdue"`
		Priority        string `json:"priority"`
		ActionRequired  string `json:"action_required"`
		OverdueNotified bool   `json:"overdue_notified"`
	}

	// visit_date ASC puts the most overdue visits first.
	rows := make([]reportRow, 0, len(visits))
	for _, visit := range visits {
		daysOverdue := int(today.Sub(services.DateOnly(visit.VisitDate)).Hours() / 24)
		rows = append(rows, reportRow{
			VisitID:         visit.ID,
			Reference:       visit.Reference,
			RestaurantID:    visit.RestaurantID,
			RestaurantName:  visit.Restaurant.Name,
			AuditorID:       visit.AuditorID,
			AuditorName:     visit.Auditor.Name,
			VisitDate:       visit.VisitDate.Format("2006-01-02"),
			DaysOverdue:     daysOverdue,
			Priority:        services.Priority(daysOverdue),
			ActionRequired:  services.Severity(daysOverdue),
			OverdueNotified: visit.OverdueNotified,
		})
	}

	utils.RespondJSON(c, http.StatusOK, "Overdue audit report", rows)
}
