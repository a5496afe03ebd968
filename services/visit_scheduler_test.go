package services

import (
	"testing"
	"time"

	"github.com/ontimesolutions/restaurant-audit/models"
	"github.com/stretchr/testify/assert"
)

func TestScheduleDateValidation(t *testing.T) {
	db := newTestDB(t)
	vs := NewVisitScheduler(db)
	restaurant := seedRestaurant(t, db, "R1")
	auditor := seedUser(t, db, "AuditorA", models.RoleAuditor)

	today := date(2025, time.June, 10) // Tuesday

	_, err := vs.Schedule(restaurant.ID, auditor.ID, date(2025, time.June, 9), today)
	assert.ErrorIs(t, err, ErrPastDate)

	_, err = vs.Schedule(restaurant.ID, auditor.ID, date(2025, time.July, 5), today)
	assert.ErrorIs(t, err, ErrTooFarAhead)

	visit, err := vs.Schedule(restaurant.ID, auditor.ID, date(2025, time.June, 15), today)
	assert.NoError(t, err)
	assert.Equal(t, models.VisitPending, visit.Status)
}

func TestScheduleUsesAuditorWeekPreference(t *testing.T) {
	db := newTestDB(t)
	vs := NewVisitScheduler(db)
	restaurant := seedRestaurant(t, db, "R1")
	auditor := seedUser(t, db, "AuditorA", models.RoleAuditor)
	seedAssignment(t, db, restaurant.ID, auditor.ID, "Sunday")

	today := date(2025, time.June, 10)
	visit, err := vs.Schedule(restaurant.ID, auditor.ID, date(2025, time.June, 11), today)
	assert.NoError(t, err)

	// Wednesday 06-11 in a Sunday-start week.
	assert.Equal(t, date(2025, time.June, 8), DateOnly(visit.WeekStartDate))
	assert.Equal(t, date(2025, time.June, 14), DateOnly(visit.WeekEndDate))
}

func TestScheduleDoubleBooking(t *testing.T) {
	db := newTestDB(t)
	vs := NewVisitScheduler(db)
	restaurant := seedRestaurant(t, db, "R1")
	auditor := seedUser(t, db, "AuditorA", models.RoleAuditor)

	today := date(2025, time.June, 10)
	visitDate := date(2025, time.June, 15)

	_, err := vs.Schedule(restaurant.ID, auditor.ID, visitDate, today)
	assert.NoError(t, err)

	_, err = vs.Schedule(restaurant.ID, auditor.ID, visitDate, today)
	assert.ErrorIs(t, err, ErrAlreadyScheduled)

	var count int64
	db.Model(&models.ScheduledVisit{}).
		Where("restaurant_id = ? AND auditor_id = ? AND visit_date = ? AND status <> ?",
			restaurant.ID, auditor.ID, visitDate, models.VisitCancelled).
		Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestScheduleSlotKeyArbitratesRacingCreate(t *testing.T) {
	db := newTestDB(t)
	vs := NewVisitScheduler(db)
	restaurant := seedRestaurant(t, db, "R1")
	auditor := seedUser(t, db, "AuditorA", models.RoleAuditor)

	today := date(2025, time.June, 10)
	visitDate := date(2025, time.June, 15)

	// A racing create that won but has not committed its status yet looks
	// like this: the slot key is taken while the existence check sees no
	// non-cancelled visit. The unique index is what rejects the loser.
	key := slotKey(restaurant.ID, auditor.ID, visitDate)
	ghost := models.ScheduledVisit{
		Reference:     "SAV-ghost",
		RestaurantID:  restaurant.ID,
		AuditorID:     auditor.ID,
		VisitDate:     visitDate,
		WeekStartDate: visitDate,
		WeekEndDate:   visitDate.AddDate(0, 0, 6),
		Status:        models.VisitCancelled,
		SlotKey:       &key,
	}
	assert.NoError(t, db.Create(&ghost).Error)

	_, err := vs.Schedule(restaurant.ID, auditor.ID, visitDate, today)
	assert.ErrorIs(t, err, ErrAlreadyScheduled)

	var count int64
	db.Model(&models.ScheduledVisit{}).Count(&count)
	assert.Equal(t, int64(1), count, "the losing create never lands")
}

func TestScheduleDailyAuditConflict(t *testing.T) {
	db := newTestDB(t)
	vs := NewVisitScheduler(db)
	restaurant := seedRestaurant(t, db, "R1")
	auditor := seedUser(t, db, "AuditorA", models.RoleAuditor)

	today := date(2025, time.June, 10)
	visitDate := date(2025, time.June, 12)

	key := "progress-key"
	progress := models.AuditProgress{
		RestaurantID: restaurant.ID,
		AuditorID:    auditor.ID,
		StartTime:    visitDate.Add(9 * time.Hour),
		LastUpdated:  visitDate.Add(9 * time.Hour),
		OpenKey:      &key,
	}
	assert.NoError(t, db.Create(&progress).Error)

	_, err := vs.Schedule(restaurant.ID, auditor.ID, visitDate, today)
	assert.ErrorIs(t, err, ErrDailyConflict)
}

func TestScheduleUnknownRestaurant(t *testing.T) {
	db := newTestDB(t)
	vs := NewVisitScheduler(db)
	auditor := seedUser(t, db, "AuditorA", models.RoleAuditor)

	today := date(2025, time.June, 10)
	_, err := vs.Schedule(999, auditor.ID, date(2025, time.June, 12), today)
	assert.ErrorIs(t, err, ErrRestaurantNotFound)
}

func TestCancelIsIdempotentAndFreesSlot(t *testing.T) {
	db := newTestDB(t)
	vs := NewVisitScheduler(db)
	restaurant := seedRestaurant(t, db, "R1")
	auditor := seedUser(t, db, "AuditorA", models.RoleAuditor)

	today := date(2025, time.June, 10)
	visitDate := date(2025, time.June, 15)

	visit, err := vs.Schedule(restaurant.ID, auditor.ID, visitDate, today)
	assert.NoError(t, err)

	assert.NoError(t, vs.Cancel(visit.ID, "plans changed"))
	assert.NoError(t, vs.Cancel(visit.ID, "again"), "second cancel is a no-op")

	var reloaded models.ScheduledVisit
	assert.NoError(t, db.First(&reloaded, visit.ID).Error)
	assert.Equal(t, models.VisitCancelled, reloaded.Status)
	assert.Equal(t, "plans changed", reloaded.CancelReason)
	assert.Nil(t, reloaded.SlotKey)

	// The slot is free again after cancellation.
	_, err = vs.Schedule(restaurant.ID, auditor.ID, visitDate, today)
	assert.NoError(t, err)
}

func TestCancelCompletedVisitFails(t *testing.T) {
	db := newTestDB(t)
	vs := NewVisitScheduler(db)
	restaurant := seedRestaurant(t, db, "R1")
	auditor := seedUser(t, db, "AuditorA", models.RoleAuditor)

	today := date(2025, time.June, 10)
	visit, err := vs.Schedule(restaurant.ID, auditor.ID, today, today)
	assert.NoError(t, err)

	affected, err := vs.CompleteSameDay(restaurant.ID, auditor.ID, today)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	err = vs.Cancel(visit.ID, "too late")
	assert.ErrorIs(t, err, ErrVisitCompleted)

	var reloaded models.ScheduledVisit
	assert.NoError(t, db.First(&reloaded, visit.ID).Error)
	assert.Equal(t, models.VisitCompleted, reloaded.Status)
}

func TestVisitNotFound(t *testing.T) {
	db := newTestDB(t)
	vs := NewVisitScheduler(db)
	assert.ErrorIs(t, vs.Cancel(12345, "ghost"), ErrVisitNotFound)
}
