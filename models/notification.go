package models

import (
	"time"
)

// Notification types.
const (
	NotificationAlert    = "alert"
	NotificationReminder = "reminder"
)

type Notification struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	UserID       uint        `gorm:"not null;index" json:"user_id"`
	User         User        `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"user,omitempty"`
	RestaurantID *uint       `gorm:"index" json:"restaurant_id,omitempty"`
	Restaurant   *Restaurant `gorm:"foreignKey:RestaurantID" json:"restaurant,omitempty"`
	Title        string      `gorm:"type:varchar(150)" json:"title"`
	Message      string      `gorm:"type:text;not null" json:"message"`
	Type         string      `gorm:"type:varchar(20);not null;default:'alert'" json:"type"`
	IsRead       bool        `gorm:"not null;default:false" json:"is_read"`
	CreatedAt    time.Time   `gorm:"not null" json:"created_at"`
}
