package models

import "time"

// Visit lifecycle states. Completed and Cancelled are terminal.
const (
	VisitPending   = "Pending"
	VisitCompleted = "Completed"
	VisitOverdue   = "Overdue"
	VisitCancelled = "Cancelled"
)

type ScheduledVisit struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Reference    string     `gorm:"type:varchar(50);uniqueIndex;not null" json:"reference"`
	RestaurantID uint       `gorm:"not null;index" json:"restaurant_id"`
	Restaurant   Restaurant `gorm:"foreignKey:RestaurantID" json:"restaurant,omitempty"`
	AuditorID    uint       `gorm:"not null;index" json:"auditor_id"`
	Auditor      User       `gorm:"foreignKey:AuditorID" json:"auditor,omitempty"`
	VisitDate    time.Time  `gorm:"not null;index" json:"visit_date"`
	Status       string     `gorm:"type:varchar(20);not null;default:'Pending'" json:"status"`

	// Week bounds are frozen at creation time from the auditor's
	// start-of-week preference.
	WeekStartDate time.Time `json:"week_start_date"`
	WeekEndDate   time.Time `json:"week_end_date"`

	OverdueNotified bool   `gorm:"not null;default:false" json:"overdue_notified"`
	CancelReason    string `gorm:"type:varchar(255)" json:"cancel_reason,omitempty"`

	// SlotKey is "restaurantID:auditorID:date" while the visit is not
	// Cancelled and NULL afterwards. The unique index on it is what makes
	// two racing schedule calls for the same slot fail at the store
	// instead of both succeeding.
	SlotKey *string `gorm:"type:varchar(64);uniqueIndex" json:"-"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// IsTerminal reports whether the visit can still change state.
func (v *ScheduledVisit) IsTerminal() bool {
	return v.Status == VisitCompleted || v.Status == VisitCancelled
}
