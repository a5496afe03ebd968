package models

import (
	"encoding/json"
	"time"
)

type AuditProgress struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	RestaurantID uint       `gorm:"not null;index" json:"restaurant_id"`
	Restaurant   Restaurant `gorm:"foreignKey:RestaurantID" json:"restaurant,omitempty"`
	AuditorID    uint       `gorm:"not null;index" json:"auditor_id"`
	Auditor      User       `gorm:"foreignKey:AuditorID" json:"auditor,omitempty"`

	StartTime   time.Time `gorm:"not null" json:"start_time"`
	LastUpdated time.Time `gorm:"not null" json:"last_updated"`

	// Answers and CategoryProgress are JSON blobs; the core never queries
	// into them, it only round-trips them for save/resume.
	Answers          string `gorm:"type:text" json:"answers"`
	OverallComment   string `gorm:"type:text" json:"overall_comment"`
	CategoryProgress string `gorm:"type:text" json:"category_progress"`

	TotalQuestions       int     `gorm:"not null;default:0" json:"total_questions"`
	CompletionPercentage float64 `gorm:"not null;default:0" json:"completion_percentage"`
	IsCompleted          bool    `gorm:"not null;default:false" json:"is_completed"`
	SubmissionID         *uint   `gorm:"index" json:"submission_id,omitempty"`

	// OpenKey is "restaurantID:auditorID" while the record is open and
	// NULL once completed, so the store enforces at most one open record
	// per pair.
	OpenKey *string `gorm:"type:varchar(40);uniqueIndex" json:"-"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// SetAnswers serializes the answer map into the stored blob.
func (p *AuditProgress) SetAnswers(answers map[string]interface{}) error {
	raw, err := json.Marshal(answers)
	if err != nil {
		return err
	}
	p.Answers = string(raw)
	return nil
}

// GetAnswers deserializes the stored answer blob.
func (p *AuditProgress) GetAnswers() (map[string]interface{}, error) {
	answers := make(map[string]interface{})
	if p.Answers == "" {
		return answers, nil
	}
	if err := json.Unmarshal([]byte(p.Answers), &answers); err != nil {
		return nil, err
	}
	return answers, nil
}
