package models

import "time"

// LocationCheck is an append-only audit log of geofence validations.
type LocationCheck struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	RestaurantID   uint       `gorm:"not null;index" json:"restaurant_id"`
	Restaurant     Restaurant `gorm:"foreignKey:RestaurantID" json:"restaurant,omitempty"`
	UserID         uint       `gorm:"not null;index" json:"user_id"`
	User           User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CheckedAt      time.Time  `gorm:"not null" json:"checked_at"`
	Latitude       float64    `json:"latitude"`
	Longitude      float64    `json:"longitude"`
	DistanceMeters float64    `json:"distance_meters"`
	RadiusUsed     float64    `json:"radius_used"`
	WithinRange    bool       `gorm:"not null" json:"within_range"`
}
