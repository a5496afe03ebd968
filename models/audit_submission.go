package models

import "time"

type AuditSubmission struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Reference    string     `gorm:"type:varchar(50);uniqueIndex;not null" json:"reference"`
	RestaurantID uint       `gorm:"not null;index" json:"restaurant_id"`
	Restaurant   Restaurant `gorm:"foreignKey:RestaurantID" json:"restaurant,omitempty"`
	AuditorID    uint       `gorm:"not null;index" json:"auditor_id"`
	Auditor      User       `gorm:"foreignKey:AuditorID" json:"auditor,omitempty"`
	AuditDate    time.Time  `gorm:"not null;index" json:"audit_date"`

	Answers []SubmissionAnswer `gorm:"foreignKey:SubmissionID" json:"answers"`

	TotalScore       float64 `gorm:"not null;default:0" json:"total_score"`
	MaxPossibleScore float64 `gorm:"not null;default:0" json:"max_possible_score"`
	AverageScore     float64 `gorm:"not null;default:0" json:"average_score"`

	TotalQuestions       int `gorm:"not null;default:0" json:"total_questions"`
	QuestionsWithImage   int `gorm:"not null;default:0" json:"questions_with_image"`
	QuestionsWithComment int `gorm:"not null;default:0" json:"questions_with_comment"`

	OverallComment string `gorm:"type:text" json:"overall_comment"`
	Summary        string `gorm:"type:text" json:"summary"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

type SubmissionAnswer struct {
	ID           uint          `gorm:"primaryKey" json:"id"`
	SubmissionID uint          `gorm:"not null;index" json:"submission_id"`
	QuestionID   uint          `gorm:"not null;index" json:"question_id"`
	Question     AuditQuestion `gorm:"foreignKey:QuestionID" json:"question,omitempty"`
	Sequence     int           `gorm:"not null;default:0" json:"sequence"`

	RawValue string   `gorm:"type:varchar(255)" json:"raw_value"`
	Score    *float64 `json:"score,omitempty"`
	Comment  string   `gorm:"type:text" json:"comment"`
	HasImage bool     `gorm:"not null;default:false" json:"has_image"`

	IsCritical       bool `gorm:"not null;default:false" json:"is_critical"`
	RequiresFollowUp bool `gorm:"not null;default:false" json:"requires_follow_up"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}
