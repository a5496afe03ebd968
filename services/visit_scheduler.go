package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ontimesolutions/restaurant-audit/models"
	"github.com/ontimesolutions/restaurant-audit/utils"
	"gorm.io/gorm"
)

// MaxScheduleAheadDays bounds how far in the future a visit may be booked.
const MaxScheduleAheadDays = 21

var (
	ErrPastDate           = errors.New("cannot schedule a visit for a past date")
	ErrTooFarAhead        = errors.New("cannot schedule a visit more than 21 days in advance")
	ErrDailyConflict      = errors.New("an unscheduled audit was already performed on this date")
	ErrAlreadyScheduled   = errors.New("a visit is already scheduled for this date")
	ErrRestaurantNotFound = errors.New("restaurant not found")
	ErrVisitNotFound      = errors.New("scheduled visit not found")
	ErrVisitCompleted     = errors.New("a completed visit cannot be cancelled")
)

type VisitScheduler struct {
	DB *gorm.DB
}

func NewVisitScheduler(db *gorm.DB) *VisitScheduler {
	return &VisitScheduler{DB: db}
}

// StartWeekDayFor returns the auditor's start-of-week preference for a
// restaurant, defaulting to Monday when no active assignment carries one.
func (vs *VisitScheduler) StartWeekDayFor(restaurantID, auditorID uint) string {
	var assignment models.Assignment
	err := vs.DB.
		Where("restaurant_id = ? AND user_id = ? AND is_active = ?", restaurantID, auditorID, true).
		First(&assignment).Error
	if err != nil || assignment.StartWeekDay == "" {
		return "Monday"
	}
	return assignment.StartWeekDay
}

func slotKey(restaurantID, auditorID uint, visitDate time.Time) string {
	return fmt.Sprintf("%d:%d:%s", restaurantID, auditorID, visitDate.Format("2006-01-02"))
}

// Schedule validates and creates a Pending visit. Validations run in a
// fixed order so callers get a stable failure per input class. The final
// create relies on the slot-key unique constraint: a racing duplicate
// surfaces as gorm.ErrDuplicatedKey and is reported as already-scheduled.
func (vs *VisitScheduler) Schedule(restaurantID, auditorID uint, visitDate, today time.Time) (*models.ScheduledVisit, error) {
	visitDate = DateOnly(visitDate)
	today = DateOnly(today)

	if visitDate.Before(today) {
		return nil, ErrPastDate
	}
	if visitDate.After(today.AddDate(0, 0, MaxScheduleAheadDays)) {
		return nil, ErrTooFarAhead
	}

	// Cross-modality conflict: an unscheduled (daily) audit started on the
	// same date blocks a scheduled visit for that date.
	var progressCount int64
	if err := vs.DB.Model(&models.AuditProgress{}).
		Where("restaurant_id = ? AND auditor_id = ?", restaurantID, auditorID).
		Where("start_time >= ? AND start_time < ?", visitDate, visitDate.AddDate(0, 0, 1)).
		Count(&progressCount).Error; err != nil {
		return nil, fmt.Errorf("checking daily audit conflict: %w", err)
	}
	if progressCount > 0 {
		return nil, ErrDailyConflict
	}

	var visitCount int64
	if err := vs.DB.Model(&models.ScheduledVisit{}).
		Where("restaurant_id = ? AND auditor_id = ? AND visit_date = ?", restaurantID, auditorID, visitDate).
		Where("status <> ?", models.VisitCancelled).
		Count(&visitCount).Error; err != nil {
		return nil, fmt.Errorf("checking existing visits: %w", err)
	}
	if visitCount > 0 {
		return nil, ErrAlreadyScheduled
	}

	var restaurant models.Restaurant
	if err := vs.DB.First(&restaurant, restaurantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRestaurantNotFound
		}
		return nil, fmt.Errorf("loading restaurant: %w", err)
	}

	weekStart, weekEnd := WindowFor(visitDate, vs.StartWeekDayFor(restaurantID, auditorID))

	key := slotKey(restaurantID, auditorID, visitDate)
	visit := models.ScheduledVisit{
		Reference:     "SAV-" + uuid.NewString(),
		RestaurantID:  restaurantID,
		AuditorID:     auditorID,
		VisitDate:     visitDate,
		Status:        models.VisitPending,
		WeekStartDate: weekStart,
		WeekEndDate:   weekEnd,
		SlotKey:       &key,
	}

	if err := vs.DB.Create(&visit).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyScheduled
		}
		return nil, fmt.Errorf("creating scheduled visit: %w", err)
	}

	utils.InfoLogger.Printf("Scheduled visit %s: restaurant=%d auditor=%d date=%s",
		visit.Reference, restaurantID, auditorID, visitDate.Format("2006-01-02"))

	return &visit, nil
}

// Cancel moves a visit to Cancelled and frees its slot key. Cancelling an
// already-cancelled visit is a no-op; a completed visit stays completed.
func (vs *VisitScheduler) Cancel(visitID uint, reason string) error {
	var visit models.ScheduledVisit
	if err := vs.DB.First(&visit, visitID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrVisitNotFound
		}
		return err
	}

	if visit.Status == models.VisitCancelled {
		return nil
	}
	if visit.Status == models.VisitCompleted {
		return ErrVisitCompleted
	}

	res := vs.DB.Model(&models.ScheduledVisit{}).
		Where("id = ? AND status IN ?", visitID, []string{models.VisitPending, models.VisitOverdue}).
		Updates(map[string]interface{}{
			"status":        models.VisitCancelled,
			"cancel_reason": reason,
			"slot_key":      nil,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// Lost a race against another transition; re-read to stay idempotent.
		if err := vs.DB.First(&visit, visitID).Error; err != nil {
			return err
		}
		if visit.Status == models.VisitCancelled {
			return nil
		}
		return ErrVisitCompleted
	}
	return nil
}

// CompleteSameDay transitions any non-terminal visit for the pair on the
// given date to Completed. Used when a submission finalizes: this is
// where the scheduled lifecycle and the free-form flow converge.
func (vs *VisitScheduler) CompleteSameDay(restaurantID, auditorID uint, date time.Time) (int64, error) {
	date = DateOnly(date)
	res := vs.DB.Model(&models.ScheduledVisit{}).
		Where("restaurant_id = ? AND auditor_id = ? AND visit_date = ?", restaurantID, auditorID, date).
		Where("status IN ?", []string{models.VisitPending, models.VisitOverdue}).
		Update("status", models.VisitCompleted)
	return res.RowsAffected, res.Error
}
