package models

import "time"

// Question types. Only rating and yes/no answers count toward the score.
const (
	QuestionRating = "rating"
	QuestionYesNo  = "yes_no"
	QuestionText   = "text"
)

type AuditQuestion struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Text         string    `gorm:"type:varchar(500);not null" json:"text"`
	Category     string    `gorm:"type:varchar(100)" json:"category"`
	QuestionType string    `gorm:"type:varchar(20);not null;default:'rating'" json:"question_type"`
	Sequence     int       `gorm:"not null;default:0" json:"sequence"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}

// IsScoreable reports whether answers to this question contribute to the
// score denominator.
func (q *AuditQuestion) IsScoreable() bool {
	return q.QuestionType == QuestionRating || q.QuestionType == QuestionYesNo
}
