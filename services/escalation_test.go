package services

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ontimesolutions/restaurant-audit/models"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type recordedNotification struct {
	UserID       uint
	RestaurantID *uint
	Title        string
	Message      string
}

type fakeNotifier struct {
	sent []recordedNotification
	fail bool
}

func (f *fakeNotifier) Notify(userID uint, restaurantID *uint, title, message string) error {
	if f.fail {
		return errors.New("notifier down")
	}
	f.sent = append(f.sent, recordedNotification{userID, restaurantID, title, message})
	return nil
}

func seedVisit(t *testing.T, db *gorm.DB, restaurantID, auditorID uint, visitDate time.Time, status string) *models.ScheduledVisit {
	t.Helper()
	visit := models.ScheduledVisit{
		Reference:     fmt.Sprintf("SAV-%d-%d-%s", restaurantID, auditorID, visitDate.Format("20060102")),
		RestaurantID:  restaurantID,
		AuditorID:     auditorID,
		VisitDate:     visitDate,
		WeekStartDate: visitDate,
		WeekEndDate:   visitDate.AddDate(0, 0, 6),
		Status:        status,
	}
	if status != models.VisitCancelled {
		key := fmt.Sprintf("%d:%d:%s", restaurantID, auditorID, visitDate.Format("2006-01-02"))
		visit.SlotKey = &key
	}
	if err := db.Create(&visit).Error; err != nil {
		t.Fatalf("failed to seed visit: %v", err)
	}
	return &visit
}

func TestSeverityAndPriorityTiers(t *testing.T) {
	assert.Equal(t, SeverityMonitor, Severity(0))
	assert.Equal(t, SeverityMonitor, Severity(2))
	assert.Equal(t, SeverityHigh, Severity(3))
	assert.Equal(t, SeverityHigh, Severity(6))
	assert.Equal(t, SeverityCritical, Severity(7))
	assert.Equal(t, SeverityCritical, Severity(13))
	assert.Equal(t, SeverityEscalate, Severity(14))
	assert.Equal(t, SeverityEscalate, Severity(30))

	assert.Equal(t, "Medium", Priority(2))
	assert.Equal(t, "High", Priority(3))
	assert.Equal(t, "High", Priority(6))
	assert.Equal(t, "Critical", Priority(7))
}

func TestRunOverdueSweep(t *testing.T) {
	db := newTestDB(t)
	notifier := &fakeNotifier{}
	es := NewEscalationService(db, notifier)

	restaurant := seedRestaurant(t, db, "R1")
	auditor := seedUser(t, db, "Alice", models.RoleAuditor)

	today := date(2025, time.June, 10)
	past := seedVisit(t, db, restaurant.ID, auditor.ID, date(2025, time.June, 5), models.VisitPending)
	todayVisit := seedVisit(t, db, restaurant.ID, auditor.ID, today, models.VisitPending)
	completed := seedVisit(t, db, restaurant.ID, auditor.ID, date(2025, time.June, 4), models.VisitCompleted)

	count, err := es.RunOverdueSweep(today)
	assert.NoError(t, err)
	assert.Equal(t, 1, count)

	var reloaded models.ScheduledVisit
	assert.NoError(t, db.First(&reloaded, past.ID).Error)
	assert.Equal(t, models.VisitOverdue, reloaded.Status)
	assert.False(t, reloaded.OverdueNotified)

	// Today's visit and completed visits are untouched.
	reloaded = models.ScheduledVisit{}
	assert.NoError(t, db.First(&reloaded, todayVisit.ID).Error)
	assert.Equal(t, models.VisitPending, reloaded.Status)
	reloaded = models.ScheduledVisit{}
	assert.NoError(t, db.First(&reloaded, completed.ID).Error)
	assert.Equal(t, models.VisitCompleted, reloaded.Status)

	// One grouped notification for the auditor.
	assert.Len(t, notifier.sent, 1)
	assert.Equal(t, auditor.ID, notifier.sent[0].UserID)
	assert.Contains(t, notifier.sent[0].Message, "R1")

	// A second sweep finds nothing left in Pending before today.
	count, err = es.RunOverdueSweep(today)
	assert.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Len(t, notifier.sent, 1)
}

func TestRunOverdueSweepGroupsPerAuditor(t *testing.T) {
	db := newTestDB(t)
	notifier := &fakeNotifier{}
	es := NewEscalationService(db, notifier)

	r1 := seedRestaurant(t, db, "R1")
	r2 := seedRestaurant(t, db, "R2")
	alice := seedUser(t, db, "Alice", models.RoleAuditor)
	bob := seedUser(t, db, "Bob", models.RoleAuditor)

	today := date(2025, time.June, 10)
	seedVisit(t, db, r1.ID, alice.ID, date(2025, time.June, 3), models.VisitPending)
	seedVisit(t, db, r2.ID, alice.ID, date(2025, time.June, 4), models.VisitPending)
	seedVisit(t, db, r1.ID, bob.ID, date(2025, time.June, 5), models.VisitPending)

	count, err := es.RunOverdueSweep(today)
	assert.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Len(t, notifier.sent, 2, "one grouped notification per auditor")

	for _, n := range notifier.sent {
		if n.UserID == alice.ID {
			assert.Contains(t, n.Title, "2 Audit(s)")
		} else {
			assert.Equal(t, bob.ID, n.UserID)
			assert.Contains(t, n.Title, "1 Audit(s)")
		}
	}
}

func TestRunOverdueSweepNotifierFailureIsNonFatal(t *testing.T) {
	db := newTestDB(t)
	notifier := &fakeNotifier{fail: true}
	es := NewEscalationService(db, notifier)

	restaurant := seedRestaurant(t, db, "R1")
	auditor := seedUser(t, db, "Alice", models.RoleAuditor)
	visit := seedVisit(t, db, restaurant.ID, auditor.ID, date(2025, time.June, 5), models.VisitPending)

	count, err := es.RunOverdueSweep(date(2025, time.June, 10))
	assert.NoError(t, err)
	assert.Equal(t, 1, count)

	var reloaded models.ScheduledVisit
	assert.NoError(t, db.First(&reloaded, visit.ID).Error)
	assert.Equal(t, models.VisitOverdue, reloaded.Status, "transition survives a failing notifier")
}

func TestRunWeeklyEscalation(t *testing.T) {
	db := newTestDB(t)
	notifier := &fakeNotifier{}
	es := NewEscalationService(db, notifier)

	manager := seedUser(t, db, "Manager", models.RoleManager)
	alice := seedUser(t, db, "Alice", models.RoleAuditor)
	bob := seedUser(t, db, "Bob", models.RoleAuditor)

	quiet := seedRestaurant(t, db, "Quiet")
	quiet.ManagerID = &manager.ID
	assert.NoError(t, db.Save(quiet).Error)
	covered := seedRestaurant(t, db, "Covered")

	seedAssignment(t, db, quiet.ID, alice.ID, "Monday")
	seedAssignment(t, db, quiet.ID, bob.ID, "Monday")
	seedAssignment(t, db, covered.ID, alice.ID, "Monday")

	today := date(2025, time.June, 11) // Wednesday, week 06-09 .. 06-15

	// Covered had a completed visit this week; Quiet only has a pending one.
	seedVisit(t, db, covered.ID, alice.ID, date(2025, time.June, 9), models.VisitCompleted)
	pending := seedVisit(t, db, quiet.ID, alice.ID, date(2025, time.June, 13), models.VisitPending)

	assert.NoError(t, es.RunWeeklyEscalation(today))

	// Quiet's pending visit is now overdue and already flagged as notified.
	var reloaded models.ScheduledVisit
	assert.NoError(t, db.First(&reloaded, pending.ID).Error)
	assert.Equal(t, models.VisitOverdue, reloaded.Status)
	assert.True(t, reloaded.OverdueNotified)

	// Both assigned auditors plus the manager hear about Quiet. Nobody is
	// alerted for Covered.
	assert.Len(t, notifier.sent, 3)
	recipients := map[uint]bool{}
	for _, n := range notifier.sent {
		recipients[n.UserID] = true
		assert.Contains(t, n.Title, "Quiet")
		if assert.NotNil(t, n.RestaurantID) {
			assert.Equal(t, quiet.ID, *n.RestaurantID)
		}
	}
	assert.True(t, recipients[alice.ID])
	assert.True(t, recipients[bob.ID])
	assert.True(t, recipients[manager.ID])
}

func TestRunWeeklyEscalationSkipsDisabledRestaurants(t *testing.T) {
	db := newTestDB(t)
	notifier := &fakeNotifier{}
	es := NewEscalationService(db, notifier)

	alice := seedUser(t, db, "Alice", models.RoleAuditor)
	restaurant := seedRestaurant(t, db, "Closed")
	restaurant.Disabled = true
	assert.NoError(t, db.Save(restaurant).Error)
	seedAssignment(t, db, restaurant.ID, alice.ID, "Monday")

	assert.NoError(t, es.RunWeeklyEscalation(date(2025, time.June, 11)))
	assert.Empty(t, notifier.sent)
}
