package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ontimesolutions/restaurant-audit/models"
	"github.com/ontimesolutions/restaurant-audit/utils"
	"gorm.io/gorm"
)

type QuestionController struct {
	DB *gorm.DB
}

func NewQuestionController(db *gorm.DB) *QuestionController {
	return &QuestionController{DB: db}
}

// GetActiveQuestions returns the question bank in display order.
func (qc *QuestionController) GetActiveQuestions(c *gin.Context) {
	var questions []models.AuditQuestion
	if err := qc.DB.Where("is_active = ?", true).Order("sequence ASC").Find(&questions).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Active questions", questions)
}

// CreateQuestion adds a question to the bank (admin).
func (qc *QuestionController) CreateQuestion(c *gin.Context) {
	type reqBody struct {
		Text         string `json:"text" binding:"required"`
		Category     string `json:"category"`
		QuestionType string `json:"question_type"`
		Sequence     int    `json:"sequence"`
	}
	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if body.QuestionType == "" {
		body.QuestionType = models.QuestionRating
	}

	question := models.AuditQuestion{
		Text:         body.Text,
		Category:     body.Category,
		QuestionType: body.QuestionType,
		Sequence:     body.Sequence,
		IsActive:     true,
	}
	if err := qc.DB.Create(&question).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Question created", question)
}
