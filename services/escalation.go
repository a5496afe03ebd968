package services

import (
	"fmt"
	"time"

	"github.com/ontimesolutions/restaurant-audit/models"
	"github.com/ontimesolutions/restaurant-audit/utils"
	"gorm.io/gorm"
)

// Overdue severity tiers. Policy constants, not derived.
const (
	SeverityEscalate = "Escalate to management immediately"
	SeverityCritical = "Contact auditor and manager urgently"
	SeverityHigh     = "Send reminder notification"
	SeverityMonitor  = "Monitor closely"
)

// Severity maps days overdue onto the reporting tier.
func Severity(daysOverdue int) string {
	switch {
	case daysOverdue >= 14:
		return SeverityEscalate
	case daysOverdue >= 7:
		return SeverityCritical
	case daysOverdue >= 3:
		return SeverityHigh
	default:
		return SeverityMonitor
	}
}

// Priority is the short label used in the overdue report.
func Priority(daysOverdue int) string {
	switch {
	case daysOverdue >= 7:
		return "Critical"
	case daysOverdue >= 3:
		return "High"
	default:
		return "Medium"
	}
}

type EscalationService struct {
	DB       *gorm.DB
	Notifier Notifier
	StopChan chan struct{}
	Interval time.Duration

	lastWeeklyRun time.Time
}

func NewEscalationService(db *gorm.DB, notifier Notifier) *EscalationService {
	return &EscalationService{
		DB:       db,
		Notifier: notifier,
		StopChan: make(chan struct{}),
		Interval: 1 * time.Hour,
	}
}

// Start runs the sweeps on a ticker. Wall clock is resolved once per tick
// and threaded through so the sweep bodies stay deterministic.
func (es *EscalationService) Start() {
	go func() {
		ticker := time.NewTicker(es.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				today := time.Now()
				if _, err := es.RunOverdueSweep(today); err != nil {
					utils.ErrorLogger.Printf("Overdue sweep failed: %v", err)
				}
				if weekdayIndex(today.Weekday()) == 0 && !DateOnly(today).Equal(es.lastWeeklyRun) {
					if err := es.RunWeeklyEscalation(today); err != nil {
						utils.ErrorLogger.Printf("Weekly escalation failed: %v", err)
					}
					es.lastWeeklyRun = DateOnly(today)
				}
			case <-es.StopChan:
				return
			}
		}
	}()
}

func (es *EscalationService) Stop() {
	close(es.StopChan)
}

// RunOverdueSweep transitions every Pending visit dated before today to
// Overdue, resets overdue_notified so a fresh notification is guaranteed,
// then sends one grouped notification per auditor. Idempotent: a second
// run on the same day finds nothing left in Pending.
func (es *EscalationService) RunOverdueSweep(today time.Time) (int, error) {
	today = DateOnly(today)

	var stale []models.ScheduledVisit
	if err := es.DB.Preload("Restaurant").
		Where("visit_date < ? AND status = ?", today, models.VisitPending).
		Find(&stale).Error; err != nil {
		return 0, fmt.Errorf("listing stale visits: %w", err)
	}

	transitioned := make(map[uint][]models.ScheduledVisit)
	count := 0
	for _, visit := range stale {
		res := es.DB.Model(&models.ScheduledVisit{}).
			Where("id = ? AND status = ?", visit.ID, models.VisitPending).
			Updates(map[string]interface{}{
				"status":           models.VisitOverdue,
				"overdue_notified": false,
			})
		if res.Error != nil {
			utils.ErrorLogger.Printf("Failed to mark visit %d overdue: %v", visit.ID, res.Error)
			continue
		}
		if res.RowsAffected == 0 {
			// A concurrent completion or cancellation won; leave it alone.
			continue
		}
		count++
		transitioned[visit.AuditorID] = append(transitioned[visit.AuditorID], visit)
	}

	for auditorID, visits := range transitioned {
		body := fmt.Sprintf("%d scheduled audit(s) are now overdue:\n", len(visits))
		for _, v := range visits {
			body += fmt.Sprintf("- %s (due %s)\n", v.Restaurant.Name, v.VisitDate.Format("2006-01-02"))
		}
		title := fmt.Sprintf("%d Audit(s) Now Overdue", len(visits))
		if err := es.Notifier.Notify(auditorID, nil, title, body); err != nil {
			utils.ErrorLogger.Printf("Failed to notify auditor %d about overdue audits: %v", auditorID, err)
		}
	}

	if count > 0 {
		utils.InfoLogger.Printf("Overdue sweep for %s: %d visit(s) marked overdue", today.Format("2006-01-02"), count)
	}
	return count, nil
}

// RunWeeklyEscalation alerts every active restaurant with no completed
// visit in the current Monday-based week, notifying all assigned auditors
// and the restaurant manager, then marks that week's Pending visits as
// Overdue with overdue_notified already set. One restaurant failing never
// aborts the rest of the batch.
func (es *EscalationService) RunWeeklyEscalation(today time.Time) error {
	weekStart, weekEnd := WindowFor(today, "Monday")
	windowEndExclusive := weekEnd.AddDate(0, 0, 1)

	var restaurants []models.Restaurant
	if err := es.DB.Where("disabled = ?", false).Find(&restaurants).Error; err != nil {
		return fmt.Errorf("listing active restaurants: %w", err)
	}

	for _, restaurant := range restaurants {
		var completed int64
		if err := es.DB.Model(&models.ScheduledVisit{}).
			Where("restaurant_id = ? AND status = ?", restaurant.ID, models.VisitCompleted).
			Where("visit_date >= ? AND visit_date < ?", weekStart, windowEndExclusive).
			Count(&completed).Error; err != nil {
			utils.ErrorLogger.Printf("Weekly check failed for restaurant %d: %v", restaurant.ID, err)
			continue
		}
		if completed > 0 {
			continue
		}

		es.sendWeeklyAlerts(&restaurant, weekStart, weekEnd)

		res := es.DB.Model(&models.ScheduledVisit{}).
			Where("restaurant_id = ? AND status = ?", restaurant.ID, models.VisitPending).
			Where("visit_date >= ? AND visit_date < ?", weekStart, windowEndExclusive).
			Updates(map[string]interface{}{
				"status":           models.VisitOverdue,
				"overdue_notified": true,
			})
		if res.Error != nil {
			utils.ErrorLogger.Printf("Failed to mark weekly pending visits overdue for restaurant %d: %v", restaurant.ID, res.Error)
		}
	}
	return nil
}

func (es *EscalationService) sendWeeklyAlerts(restaurant *models.Restaurant, weekStart, weekEnd time.Time) {
	title := fmt.Sprintf("Weekly Audit Alert: %s", restaurant.Name)
	body := fmt.Sprintf(
		"Restaurant %s has not had a completed audit for the week of %s to %s. Please schedule and complete an audit as soon as possible.",
		restaurant.Name, weekStart.Format("2006-01-02"), weekEnd.Format("2006-01-02"))

	rid := restaurant.ID

	var assignments []models.Assignment
	if err := es.DB.Where("restaurant_id = ? AND is_active = ?", restaurant.ID, true).Find(&assignments).Error; err != nil {
		utils.ErrorLogger.Printf("Failed to list assignments for restaurant %d: %v", restaurant.ID, err)
	} else {
		for _, assignment := range assignments {
			if err := es.Notifier.Notify(assignment.UserID, &rid, title, body); err != nil {
				utils.ErrorLogger.Printf("Failed to alert auditor %d for restaurant %d: %v", assignment.UserID, restaurant.ID, err)
			}
		}
	}

	if restaurant.ManagerID != nil {
		if err := es.Notifier.Notify(*restaurant.ManagerID, &rid, title, body); err != nil {
			utils.ErrorLogger.Printf("Failed to alert manager %d for restaurant %d: %v", *restaurant.ManagerID, restaurant.ID, err)
		}
	}
}
