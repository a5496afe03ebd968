package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/ontimesolutions/restaurant-audit/models"
	"github.com/stretchr/testify/assert"
)

func TestFinalizeScoresMixedAnswers(t *testing.T) {
	db := newTestDB(t)
	ss := NewSubmissionScorer(db)
	restaurant := seedRestaurant(t, db, "R1")
	auditor := seedUser(t, db, "Alice", models.RoleAuditor)

	rating := seedQuestion(t, db, "Kitchen clean?", models.QuestionRating)
	yes := seedQuestion(t, db, "Fridge at temp?", models.QuestionYesNo)
	no := seedQuestion(t, db, "Labels present?", models.QuestionYesNo)
	text := seedQuestion(t, db, "Anything else?", models.QuestionText)

	answers := []AnswerInput{
		{QuestionID: rating.ID, Value: "4"},
		{QuestionID: yes.ID, Value: "yes"},
		{QuestionID: no.ID, Value: "no", Comment: "labels missing on two shelves"},
		{QuestionID: text.ID, Value: "back door left open", HasImage: true},
	}

	submission, err := ss.Finalize(restaurant.ID, auditor.ID, answers, "overall ok", nil, date(2025, time.June, 10))
	assert.NoError(t, err)

	// 4 + 5 + 1 over three scoreable questions.
	assert.Equal(t, 10.0, submission.TotalScore)
	assert.Equal(t, 15.0, submission.MaxPossibleScore)
	assert.InDelta(t, 66.67, submission.AverageScore, 0.01)
	assert.Equal(t, 4, submission.TotalQuestions)
	assert.Equal(t, 1, submission.QuestionsWithComment)
	assert.Equal(t, 1, submission.QuestionsWithImage)
	assert.Contains(t, submission.Reference, "AUD-")
	assert.Contains(t, submission.Summary, "1 critical finding(s)")

	assert.Len(t, submission.Answers, 4)

	noAnswer := submission.Answers[2]
	assert.True(t, noAnswer.IsCritical, "a 'no' scores 1 and is critical")
	assert.True(t, noAnswer.RequiresFollowUp)

	textAnswer := submission.Answers[3]
	assert.Nil(t, textAnswer.Score, "free text never scores")
	assert.False(t, textAnswer.IsCritical)
	assert.False(t, textAnswer.RequiresFollowUp)
}

func TestFinalizeTextOnlyScoresZero(t *testing.T) {
	db := newTestDB(t)
	ss := NewSubmissionScorer(db)
	restaurant := seedRestaurant(t, db, "R1")
	auditor := seedUser(t, db, "Alice", models.RoleAuditor)
	text := seedQuestion(t, db, "Notes", models.QuestionText)

	submission, err := ss.Finalize(restaurant.ID, auditor.ID,
		[]AnswerInput{{QuestionID: text.ID, Value: "all quiet"}}, "", nil, date(2025, time.June, 10))
	assert.NoError(t, err)

	assert.Equal(t, 0.0, submission.TotalScore)
	assert.Equal(t, 0.0, submission.MaxPossibleScore)
	assert.Equal(t, 0.0, submission.AverageScore)
}

func TestFinalizeCommentForcesFollowUp(t *testing.T) {
	db := newTestDB(t)
	ss := NewSubmissionScorer(db)
	restaurant := seedRestaurant(t, db, "R1")
	auditor := seedUser(t, db, "Alice", models.RoleAuditor)
	rating := seedQuestion(t, db, "Kitchen clean?", models.QuestionRating)

	submission, err := ss.Finalize(restaurant.ID, auditor.ID,
		[]AnswerInput{{QuestionID: rating.ID, Value: "5", Comment: "grease trap due for service"}},
		"", nil, date(2025, time.June, 10))
	assert.NoError(t, err)

	answer := submission.Answers[0]
	assert.False(t, answer.IsCritical, "a 5 is not critical")
	assert.True(t, answer.RequiresFollowUp, "any comment requires follow-up")
}

func TestFinalizeValidation(t *testing.T) {
	db := newTestDB(t)
	ss := NewSubmissionScorer(db)
	restaurant := seedRestaurant(t, db, "R1")
	auditor := seedUser(t, db, "Alice", models.RoleAuditor)
	rating := seedQuestion(t, db, "Kitchen clean?", models.QuestionRating)
	yesNo := seedQuestion(t, db, "Fridge at temp?", models.QuestionYesNo)

	now := date(2025, time.June, 10)

	_, err := ss.Finalize(restaurant.ID, auditor.ID, nil, "", nil, now)
	assert.ErrorIs(t, err, ErrNoAnswers)

	_, err = ss.Finalize(restaurant.ID, auditor.ID,
		[]AnswerInput{{QuestionID: 999, Value: "5"}}, "", nil, now)
	assert.ErrorIs(t, err, ErrUnknownQuestion)

	for _, bad := range []string{"0", "6", "great"} {
		_, err = ss.Finalize(restaurant.ID, auditor.ID,
			[]AnswerInput{{QuestionID: rating.ID, Value: bad}}, "", nil, now)
		assert.ErrorIs(t, err, ErrInvalidAnswer, "rating %q", bad)
	}

	_, err = ss.Finalize(restaurant.ID, auditor.ID,
		[]AnswerInput{{QuestionID: yesNo.ID, Value: "maybe"}}, "", nil, now)
	assert.ErrorIs(t, err, ErrInvalidAnswer)

	_, err = ss.Finalize(999, auditor.ID,
		[]AnswerInput{{QuestionID: rating.ID, Value: "5"}}, "", nil, now)
	assert.ErrorIs(t, err, ErrRestaurantNotFound)

	// Nothing was persisted by the failed attempts.
	var count int64
	db.Model(&models.AuditSubmission{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestFinalizeClosesProgressAndVisit(t *testing.T) {
	db := newTestDB(t)
	ss := NewSubmissionScorer(db)
	restaurant := seedRestaurant(t, db, "R1")
	auditor := seedUser(t, db, "Alice", models.RoleAuditor)
	rating := seedQuestion(t, db, "Kitchen clean?", models.QuestionRating)

	today := date(2025, time.June, 10)

	visit, err := ss.Scheduler.Schedule(restaurant.ID, auditor.ID, today, today)
	assert.NoError(t, err)

	progress, err := ss.Progress.Save(restaurant.ID, auditor.ID,
		map[string]interface{}{fmt.Sprint(rating.ID): "4"}, "", nil, today)
	assert.NoError(t, err)

	submission, err := ss.Finalize(restaurant.ID, auditor.ID,
		[]AnswerInput{{QuestionID: rating.ID, Value: "4"}}, "", &progress.ID, today)
	assert.NoError(t, err)

	var doneProgress models.AuditProgress
	assert.NoError(t, db.First(&doneProgress, progress.ID).Error)
	assert.True(t, doneProgress.IsCompleted)
	if assert.NotNil(t, doneProgress.SubmissionID) {
		assert.Equal(t, submission.ID, *doneProgress.SubmissionID)
	}

	var doneVisit models.ScheduledVisit
	assert.NoError(t, db.First(&doneVisit, visit.ID).Error)
	assert.Equal(t, models.VisitCompleted, doneVisit.Status)
}

func TestFinalizeSurvivesMissingProgress(t *testing.T) {
	db := newTestDB(t)
	ss := NewSubmissionScorer(db)
	restaurant := seedRestaurant(t, db, "R1")
	auditor := seedUser(t, db, "Alice", models.RoleAuditor)
	rating := seedQuestion(t, db, "Kitchen clean?", models.QuestionRating)

	ghost := uint(555)
	submission, err := ss.Finalize(restaurant.ID, auditor.ID,
		[]AnswerInput{{QuestionID: rating.ID, Value: "3"}}, "", &ghost, date(2025, time.June, 10))

	// The close-out failure is logged, never propagated.
	assert.NoError(t, err)
	assert.NotNil(t, submission)
}
