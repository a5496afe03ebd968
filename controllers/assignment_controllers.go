package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ontimesolutions/restaurant-audit/models"
	"github.com/ontimesolutions/restaurant-audit/services"
	"github.com/ontimesolutions/restaurant-audit/utils"
	"gorm.io/gorm"
)

type AssignmentController struct {
	DB      *gorm.DB
	Cleanup *services.CleanupService
}

func NewAssignmentController(db *gorm.DB) *AssignmentController {
	return &AssignmentController{DB: db, Cleanup: services.NewCleanupService(db)}
}

// CreateAssignment links an auditor to a restaurant. Re-linking a
// previously removed pair reactivates the existing row.
func (ac *AssignmentController) CreateAssignment(c *gin.Context) {
	type reqBody struct {
		RestaurantID uint   `json:"restaurant_id" binding:"required"`
		UserID       uint   `json:"user_id" binding:"required"`
		StartWeekDay string `json:"start_week_day"`
	}
	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if body.StartWeekDay == "" {
		body.StartWeekDay = "Monday"
	}

	var assignment models.Assignment
	err := ac.DB.Where("restaurant_id = ? AND user_id = ?", body.RestaurantID, body.UserID).First(&assignment).Error
	switch {
	case err == nil:
		assignment.IsActive = true
		assignment.EmployeeStatus = models.EmployeeActive
		assignment.StartWeekDay = body.StartWeekDay
		if err := ac.DB.Save(&assignment).Error; err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		assignment = models.Assignment{
			RestaurantID:   body.RestaurantID,
			UserID:         body.UserID,
			IsActive:       true,
			EmployeeStatus: models.EmployeeActive,
			StartWeekDay:   body.StartWeekDay,
		}
		if err := ac.DB.Create(&assignment).Error; err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
	default:
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Assignment created", assignment)
}

// RemoveAssignment unlinks an auditor from a restaurant and runs the
// cleanup cascade over their in-flight work.
func (ac *AssignmentController) RemoveAssignment(c *gin.Context) {
	type reqBody struct {
		RestaurantID uint `json:"restaurant_id" binding:"required"`
		UserID       uint `json:"user_id" binding:"required"`
	}
	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var assignment models.Assignment
	if err := ac.DB.Where("restaurant_id = ? AND user_id = ?", body.RestaurantID, body.UserID).First(&assignment).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("assignment not found"))
		return
	}

	ac.Cleanup.OnAssignmentRemoved(body.RestaurantID, body.UserID, models.EmployeeRemoved)

	utils.RespondJSON(c, http.StatusOK, "Assignment removed", gin.H{
		"restaurant_id": body.RestaurantID,
		"user_id":       body.UserID,
	})
}

// DeactivateUser disables an account and cascades over every active
// assignment the auditor holds (admin).
func (ac *AssignmentController) DeactivateUser(c *gin.Context) {
	idStr := c.Param("user_id")
	id, _ := strconv.Atoi(idStr)

	type reqBody struct {
		Reason string `json:"reason"`
	}
	var body reqBody
	_ = c.ShouldBindJSON(&body)

	res := ac.DB.Model(&models.User{}).Where("id = ?", id).Update("disabled", true)
	if res.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		utils.RespondError(c, http.StatusNotFound, errors.New("user not found"))
		return
	}

	ac.Cleanup.OnAuditorDeactivated(uint(id), body.Reason)

	utils.RespondJSON(c, http.StatusOK, "User deactivated", gin.H{"user_id": id})
}

// GetAssignments lists assignments for a restaurant (admin/manager).
func (ac *AssignmentController) GetAssignments(c *gin.Context) {
	idStr := c.Param("restaurant_id")
	id, _ := strconv.Atoi(idStr)

	var assignments []models.Assignment
	if err := ac.DB.Preload("User").Where("restaurant_id = ?", id).Find(&assignments).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Assignments", assignments)
}
