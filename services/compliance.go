package services

import (
	"fmt"
	"time"

	"github.com/ontimesolutions/restaurant-audit/models"
	"gorm.io/gorm"
)

// Aggregate audit status labels for a restaurant.
const (
	StatusInProgress = "In Progress"
	StatusPending    = "Pending"
	StatusOverdue    = "Overdue"
	StatusDueSoon    = "Due Soon"
	StatusCompleted  = "Completed"
)

type ComplianceService struct {
	DB        *gorm.DB
	Scheduler *VisitScheduler
}

func NewComplianceService(db *gorm.DB) *ComplianceService {
	return &ComplianceService{DB: db, Scheduler: NewVisitScheduler(db)}
}

type WeekStatus struct {
	WeekStart           time.Time `json:"week_start"`
	WeekEnd             time.Time `json:"week_end"`
	RestaurantSatisfied bool      `json:"restaurant_satisfied"`
	AuditorSatisfied    bool      `json:"auditor_satisfied"`
	CanAccessAudit      bool      `json:"can_access_audit"`
}

// WeekStatus evaluates the compliance window containing referenceDate for
// one auditor at one restaurant. The window follows the auditor's own
// start-of-week preference, so two auditors at the same restaurant can be
// evaluated against different windows at the same moment. Access is
// blocked per auditor: a colleague's submission satisfies the restaurant
// but does not consume this auditor's obligation.
func (cs *ComplianceService) WeekStatus(restaurantID, auditorID uint, referenceDate time.Time) (*WeekStatus, error) {
	startDay := cs.Scheduler.StartWeekDayFor(restaurantID, auditorID)
	weekStart, weekEnd := WindowFor(referenceDate, startDay)
	windowEndExclusive := weekEnd.AddDate(0, 0, 1)

	status := &WeekStatus{WeekStart: weekStart, WeekEnd: weekEnd}

	var anySubmission int64
	if err := cs.DB.Model(&models.AuditSubmission{}).
		Where("restaurant_id = ?", restaurantID).
		Where("audit_date >= ? AND audit_date < ?", weekStart, windowEndExclusive).
		Count(&anySubmission).Error; err != nil {
		return nil, fmt.Errorf("counting submissions: %w", err)
	}
	status.RestaurantSatisfied = anySubmission > 0

	var ownSubmission int64
	if err := cs.DB.Model(&models.AuditSubmission{}).
		Where("restaurant_id = ? AND auditor_id = ?", restaurantID, auditorID).
		Where("audit_date >= ? AND audit_date < ?", weekStart, windowEndExclusive).
		Count(&ownSubmission).Error; err != nil {
		return nil, fmt.Errorf("counting auditor submissions: %w", err)
	}

	var completedVisit int64
	if ownSubmission == 0 {
		if err := cs.DB.Model(&models.ScheduledVisit{}).
			Where("restaurant_id = ? AND auditor_id = ? AND status = ?", restaurantID, auditorID, models.VisitCompleted).
			Where("visit_date >= ? AND visit_date < ?", weekStart, windowEndExclusive).
			Count(&completedVisit).Error; err != nil {
			return nil, fmt.Errorf("counting completed visits: %w", err)
		}
	}

	status.AuditorSatisfied = ownSubmission > 0 || completedVisit > 0
	status.CanAccessAudit = !status.AuditorSatisfied
	return status, nil
}

// NextAuditDate adds the frequency interval to the last completed audit
// date. Weekly and bi-weekly are fixed day counts; monthly and quarterly
// follow the calendar.
func NextAuditDate(lastAuditDate time.Time, frequency string) time.Time {
	last := DateOnly(lastAuditDate)
	switch frequency {
	case models.FrequencyBiWeekly:
		return last.AddDate(0, 0, 14)
	case models.FrequencyMonthly:
		return last.AddDate(0, 1, 0)
	case models.FrequencyQuarterly:
		return last.AddDate(0, 3, 0)
	default:
		return last.AddDate(0, 0, 7)
	}
}

func frequencyPeriodDays(frequency string) int {
	switch frequency {
	case models.FrequencyBiWeekly:
		return 14
	case models.FrequencyMonthly:
		return 30
	case models.FrequencyQuarterly:
		return 90
	default:
		return 7
	}
}

type AuditStatus struct {
	Status        string     `json:"status"`
	LastAuditDate *time.Time `json:"last_audit_date,omitempty"`
	NextAuditDate *time.Time `json:"next_audit_date,omitempty"`
}

// AuditStatusFor resolves the aggregate status label for a restaurant, in
// priority order: open progress, no history, overdue, due soon (within 3
// days), completed within the frequency period, otherwise pending.
func (cs *ComplianceService) AuditStatusFor(restaurant *models.Restaurant, today time.Time) (*AuditStatus, error) {
	today = DateOnly(today)

	var openProgress int64
	if err := cs.DB.Model(&models.AuditProgress{}).
		Where("restaurant_id = ? AND is_completed = ?", restaurant.ID, false).
		Count(&openProgress).Error; err != nil {
		return nil, fmt.Errorf("counting open progress: %w", err)
	}
	if openProgress > 0 {
		return &AuditStatus{Status: StatusInProgress}, nil
	}

	var last models.AuditSubmission
	err := cs.DB.
		Where("restaurant_id = ?", restaurant.ID).
		Order("audit_date DESC").
		First(&last).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return &AuditStatus{Status: StatusPending}, nil
		}
		return nil, fmt.Errorf("loading last submission: %w", err)
	}

	lastDate := DateOnly(last.AuditDate)
	next := NextAuditDate(lastDate, restaurant.AuditFrequency)
	result := &AuditStatus{LastAuditDate: &lastDate, NextAuditDate: &next}

	switch {
	case next.Before(today):
		result.Status = StatusOverdue
	case int(next.Sub(today).Hours()/24) <= 3:
		result.Status = StatusDueSoon
	case int(today.Sub(lastDate).Hours()/24) <= frequencyPeriodDays(restaurant.AuditFrequency):
		result.Status = StatusCompleted
	default:
		result.Status = StatusPending
	}
	return result, nil
}
