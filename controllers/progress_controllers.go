package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ontimesolutions/restaurant-audit/services"
	"github.com/ontimesolutions/restaurant-audit/utils"
	"gorm.io/gorm"
)

type ProgressController struct {
	DB      *gorm.DB
	Tracker *services.ProgressTracker
}

func NewProgressController(db *gorm.DB) *ProgressController {
	return &ProgressController{DB: db, Tracker: services.NewProgressTracker(db)}
}

// SaveProgress upserts the auditor's open progress for a restaurant.
func (pc *ProgressController) SaveProgress(c *gin.Context) {
	type reqBody struct {
		RestaurantID     uint                   `json:"restaurant_id" binding:"required"`
		Answers          map[string]interface{} `json:"answers"`
		OverallComment   string                 `json:"overall_comment"`
		CategoryProgress map[string]float64     `json:"category_progress"`
	}
	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	auditorID := currentUserID(c)
	progress, err := pc.Tracker.Save(body.RestaurantID, auditorID, body.Answers, body.OverallComment, body.CategoryProgress, time.Now().UTC())
	if err != nil {
		if errors.Is(err, services.ErrRestaurantNotFound) {
			utils.RespondError(c, http.StatusNotFound, err)
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Progress saved", progress)
}

// LoadProgress returns the auditor's open progress for a restaurant.
func (pc *ProgressController) LoadProgress(c *gin.Context) {
	restaurantID, err := strconv.Atoi(c.Query("restaurant_id"))
	if err != nil || restaurantID <= 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("restaurant_id is required"))
		return
	}

	auditorID := currentUserID(c)
	progress, err := pc.Tracker.Load(uint(restaurantID), auditorID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if progress == nil {
		utils.RespondJSON(c, http.StatusOK, "No progress found", nil)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Progress loaded", progress)
}

// DiscardProgress deletes a progress record owned by the requester.
func (pc *ProgressController) DiscardProgress(c *gin.Context) {
	idStr := c.Param("progress_id")
	id, _ := strconv.Atoi(idStr)

	if err := pc.Tracker.Discard(uint(id), currentUserID(c)); err != nil {
		switch {
		case errors.Is(err, services.ErrProgressNotFound):
			utils.RespondError(c, http.StatusNotFound, err)
		case errors.Is(err, services.ErrNotOwner):
			utils.RespondError(c, http.StatusForbidden, err)
		default:
			utils.RespondError(c, http.StatusInternalServerError, err)
		}
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Progress discarded", gin.H{"progress_id": id})
}
