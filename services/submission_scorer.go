package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ontimesolutions/restaurant-audit/models"
	"github.com/ontimesolutions/restaurant-audit/utils"
	"gorm.io/gorm"
)

var (
	ErrUnknownQuestion = errors.New("answer references an unknown question")
	ErrInvalidAnswer   = errors.New("answer value is invalid for the question type")
	ErrNoAnswers       = errors.New("a submission needs at least one answer")
)

// Scores below or at this value flag the answer as a critical finding.
const criticalScoreThreshold = 2

type AnswerInput struct {
	QuestionID uint   `json:"question_id"`
	Value      string `json:"value"`
	Comment    string `json:"comment"`
	HasImage   bool   `json:"has_image"`
}

type SubmissionScorer struct {
	DB        *gorm.DB
	Scheduler *VisitScheduler
	Progress  *ProgressTracker
}

func NewSubmissionScorer(db *gorm.DB) *SubmissionScorer {
	return &SubmissionScorer{
		DB:        db,
		Scheduler: NewVisitScheduler(db),
		Progress:  NewProgressTracker(db),
	}
}

// scoreAnswer converts a raw value into a numeric score. Rating answers
// must be 1-5, yes/no maps to 5/1, free text never scores.
func scoreAnswer(question *models.AuditQuestion, value string) (*float64, error) {
	switch question.QuestionType {
	case models.QuestionRating:
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || v < 1 || v > 5 {
			return nil, fmt.Errorf("%w: rating %q for question %d", ErrInvalidAnswer, value, question.ID)
		}
		return &v, nil
	case models.QuestionYesNo:
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "yes", "1", "true":
			v := 5.0
			return &v, nil
		case "no", "0", "false":
			v := 1.0
			return &v, nil
		default:
			return nil, fmt.Errorf("%w: yes/no %q for question %d", ErrInvalidAnswer, value, question.ID)
		}
	default:
		return nil, nil
	}
}

// Finalize turns accumulated answers into an immutable scored submission,
// then closes out the matching progress record and any same-day pending
// visit. The submission itself is all-or-nothing; the close-outs run
// afterwards and are logged, not rolled back, if they fail.
func (ss *SubmissionScorer) Finalize(restaurantID, auditorID uint, answers []AnswerInput, overallComment string, progressID *uint, now time.Time) (*models.AuditSubmission, error) {
	if len(answers) == 0 {
		return nil, ErrNoAnswers
	}

	var restaurant models.Restaurant
	if err := ss.DB.First(&restaurant, restaurantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRestaurantNotFound
		}
		return nil, err
	}

	questionIDs := make([]uint, 0, len(answers))
	for _, a := range answers {
		questionIDs = append(questionIDs, a.QuestionID)
	}
	var questions []models.AuditQuestion
	if err := ss.DB.Where("id IN ?", questionIDs).Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("loading questions: %w", err)
	}
	questionByID := make(map[uint]*models.AuditQuestion, len(questions))
	for i := range questions {
		questionByID[questions[i].ID] = &questions[i]
	}

	submission := models.AuditSubmission{
		Reference:      "AUD-" + uuid.NewString(),
		RestaurantID:   restaurantID,
		AuditorID:      auditorID,
		AuditDate:      now,
		OverallComment: overallComment,
	}

	var totalScore, maxPossible float64
	criticalCount := 0

	for i, input := range answers {
		question, ok := questionByID[input.QuestionID]
		if !ok {
			return nil, fmt.Errorf("%w: question %d", ErrUnknownQuestion, input.QuestionID)
		}

		score, err := scoreAnswer(question, input.Value)
		if err != nil {
			return nil, err
		}

		answer := models.SubmissionAnswer{
			QuestionID: input.QuestionID,
			Sequence:   i,
			RawValue:   input.Value,
			Score:      score,
			Comment:    input.Comment,
			HasImage:   input.HasImage,
		}

		if score != nil {
			totalScore += *score
			maxPossible += 5
		}
		if (score != nil && *score <= criticalScoreThreshold) || input.Comment != "" {
			answer.IsCritical = score != nil && *score <= criticalScoreThreshold
			answer.RequiresFollowUp = true
		}
		if answer.IsCritical {
			criticalCount++
		}
		if input.Comment != "" {
			submission.QuestionsWithComment++
		}
		if input.HasImage {
			submission.QuestionsWithImage++
		}

		submission.Answers = append(submission.Answers, answer)
	}

	submission.TotalQuestions = len(answers)
	submission.TotalScore = totalScore
	submission.MaxPossibleScore = maxPossible
	if maxPossible > 0 {
		submission.AverageScore = totalScore / maxPossible * 100
	}
	submission.Summary = fmt.Sprintf("%d questions answered, %d critical finding(s), average score %.1f",
		submission.TotalQuestions, criticalCount, submission.AverageScore)

	if err := ss.DB.Create(&submission).Error; err != nil {
		return nil, fmt.Errorf("creating submission: %w", err)
	}

	utils.InfoLogger.Printf("Submission %s finalized: restaurant=%d auditor=%d score=%.1f",
		submission.Reference, restaurantID, auditorID, submission.AverageScore)

	if progressID != nil {
		if err := ss.Progress.Complete(*progressID, submission.ID); err != nil {
			utils.ErrorLogger.Printf("Failed to complete progress %d for submission %s: %v", *progressID, submission.Reference, err)
		}
	}

	if _, err := ss.Scheduler.CompleteSameDay(restaurantID, auditorID, now); err != nil {
		utils.ErrorLogger.Printf("Failed to complete same-day visit for submission %s: %v", submission.Reference, err)
	}

	return &submission, nil
}
