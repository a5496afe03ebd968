package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ontimesolutions/restaurant-audit/models"
	"github.com/ontimesolutions/restaurant-audit/services"
	"github.com/ontimesolutions/restaurant-audit/utils"
	"gorm.io/gorm"
)

type SubmissionController struct {
	DB     *gorm.DB
	Scorer *services.SubmissionScorer
}

func NewSubmissionController(db *gorm.DB) *SubmissionController {
	return &SubmissionController{DB: db, Scorer: services.NewSubmissionScorer(db)}
}

// FinalizeSubmission scores and persists a completed audit.
func (sc *SubmissionController) FinalizeSubmission(c *gin.Context) {
	type reqBody struct {
		RestaurantID   uint                   `json:"restaurant_id" binding:"required"`
		Answers        []services.AnswerInput `json:"answers" binding:"required"`
		OverallComment string                 `json:"overall_comment"`
		ProgressID     *uint                  `json:"progress_id"`
	}
	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	auditorID := currentUserID(c)
	submission, err := sc.Scorer.Finalize(body.RestaurantID, auditorID, body.Answers, body.OverallComment, body.ProgressID, time.Now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrRestaurantNotFound):
			utils.RespondError(c, http.StatusNotFound, err)
		case errors.Is(err, services.ErrUnknownQuestion),
			errors.Is(err, services.ErrInvalidAnswer),
			errors.Is(err, services.ErrNoAnswers):
			utils.RespondError(c, http.StatusBadRequest, err)
		default:
			utils.RespondError(c, http.StatusInternalServerError, err)
		}
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Audit submitted", submission)
}

// GetSubmissionByID returns one finalized submission with its answers.
func (sc *SubmissionController) GetSubmissionByID(c *gin.Context) {
	idStr := c.Param("submission_id")
	id, _ := strconv.Atoi(idStr)

	var submission models.AuditSubmission
	if err := sc.DB.Preload("Answers").Preload("Restaurant").First(&submission, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Submission detail", submission)
}

// GetMySubmissions lists the auditor's finalized submissions.
func (sc *SubmissionController) GetMySubmissions(c *gin.Context) {
	auditorID := currentUserID(c)

	var submissions []models.AuditSubmission
	if err := sc.DB.Preload("Restaurant").
		Where("auditor_id = ?", auditorID).
		Order("audit_date DESC").
		Find(&submissions).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "My submissions", submissions)
}
