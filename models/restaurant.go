package models

import "time"

// Audit frequency options for a restaurant.
const (
	FrequencyWeekly    = "weekly"
	FrequencyBiWeekly  = "bi-weekly"
	FrequencyMonthly   = "monthly"
	FrequencyQuarterly = "quarterly"
)

type Restaurant struct {
	ID             uint     `gorm:"primaryKey" json:"id"`
	Name           string   `gorm:"type:varchar(255);not null" json:"name"`
	Address        string   `gorm:"type:varchar(255)" json:"address"`
	Latitude       *float64 `json:"latitude,omitempty"`
	Longitude      *float64 `json:"longitude,omitempty"`
	LocationRadius float64  `gorm:"not null;default:100" json:"location_radius"`
	AuditFrequency string   `gorm:"type:varchar(20);not null;default:'weekly'" json:"audit_frequency"`
	ManagerID      *uint    `gorm:"index" json:"manager_id,omitempty"`
	Manager        *User    `gorm:"foreignKey:ManagerID" json:"manager,omitempty"`
	Disabled       bool     `gorm:"not null;default:false" json:"disabled"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null" json:"updated_at"`
}

// HasCoordinates reports whether a geofence is configured for the restaurant.
func (r *Restaurant) HasCoordinates() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// AllowedRadius returns the configured radius, falling back to 100 m.
func (r *Restaurant) AllowedRadius() float64 {
	if r.LocationRadius <= 0 {
		return 100
	}
	return r.LocationRadius
}
