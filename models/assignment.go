package models

import "time"

// Employee status on an assignment. An assignment is never hard-deleted;
// unlinking flips is_active and records why.
const (
	EmployeeActive   = "Active"
	EmployeeDisabled = "Disabled"
	EmployeeRemoved  = "Removed"
)

type Assignment struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	RestaurantID   uint       `gorm:"not null;index;uniqueIndex:idx_assignment_pair" json:"restaurant_id"`
	Restaurant     Restaurant `gorm:"foreignKey:RestaurantID" json:"restaurant,omitempty"`
	UserID         uint       `gorm:"not null;index;uniqueIndex:idx_assignment_pair" json:"user_id"`
	User           User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	IsActive       bool       `gorm:"not null;default:true" json:"is_active"`
	EmployeeStatus string     `gorm:"type:varchar(20);not null;default:'Active'" json:"employee_status"`
	StartWeekDay   string     `gorm:"type:varchar(10);not null;default:'Monday'" json:"start_week_day"`
	CreatedAt      time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"not null" json:"updated_at"`
}
