package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ontimesolutions/restaurant-audit/models"
	"gorm.io/gorm"
)

var (
	ErrNotOwner         = errors.New("progress record belongs to another auditor")
	ErrProgressNotFound = errors.New("progress record not found")
)

type ProgressTracker struct {
	DB *gorm.DB
}

func NewProgressTracker(db *gorm.DB) *ProgressTracker {
	return &ProgressTracker{DB: db}
}

func openKey(restaurantID, auditorID uint) string {
	return fmt.Sprintf("%d:%d", restaurantID, auditorID)
}

// Save upserts the single open progress record for the pair. A new record
// is created only when none is open; the open-key unique constraint
// arbitrates when two saves race on the create.
func (pt *ProgressTracker) Save(restaurantID, auditorID uint, answers map[string]interface{}, overallComment string, categoryProgress map[string]float64, now time.Time) (*models.AuditProgress, error) {
	var restaurant models.Restaurant
	if err := pt.DB.First(&restaurant, restaurantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRestaurantNotFound
		}
		return nil, err
	}

	progress, err := pt.Load(restaurantID, auditorID)
	if err != nil {
		return nil, err
	}
	if progress == nil {
		key := openKey(restaurantID, auditorID)
		progress = &models.AuditProgress{
			RestaurantID: restaurantID,
			AuditorID:    auditorID,
			StartTime:    now,
			LastUpdated:  now,
			OpenKey:      &key,
		}
		if err := pt.DB.Create(progress).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// Another save created the open record first; reuse it.
				if progress, err = pt.Load(restaurantID, auditorID); err != nil || progress == nil {
					return nil, fmt.Errorf("reloading open progress after race: %w", err)
				}
			} else {
				return nil, fmt.Errorf("creating progress: %w", err)
			}
		}
	}

	if err := progress.SetAnswers(answers); err != nil {
		return nil, fmt.Errorf("serializing answers: %w", err)
	}
	rawCategories, err := json.Marshal(categoryProgress)
	if err != nil {
		return nil, fmt.Errorf("serializing category progress: %w", err)
	}

	progress.OverallComment = overallComment
	progress.CategoryProgress = string(rawCategories)
	progress.LastUpdated = now
	progress.TotalQuestions = len(answers)
	progress.CompletionPercentage = pt.completionPercentage(len(answers))

	if err := pt.DB.Save(progress).Error; err != nil {
		return nil, fmt.Errorf("saving progress: %w", err)
	}
	return progress, nil
}

func (pt *ProgressTracker) completionPercentage(answered int) float64 {
	var activeQuestions int64
	if err := pt.DB.Model(&models.AuditQuestion{}).Where("is_active = ?", true).Count(&activeQuestions).Error; err != nil || activeQuestions == 0 {
		return 0
	}
	pct := float64(answered) / float64(activeQuestions) * 100
	if pct > 100 {
		pct = 100
	}
	return pct
}

// Load returns the open progress record for the pair, or nil when the
// auditor has nothing in flight.
func (pt *ProgressTracker) Load(restaurantID, auditorID uint) (*models.AuditProgress, error) {
	var progress models.AuditProgress
	err := pt.DB.
		Where("restaurant_id = ? AND auditor_id = ? AND is_completed = ?", restaurantID, auditorID, false).
		First(&progress).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &progress, nil
}

// Discard deletes a progress record, but only for its owner.
func (pt *ProgressTracker) Discard(progressID, requesterID uint) error {
	var progress models.AuditProgress
	if err := pt.DB.First(&progress, progressID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProgressNotFound
		}
		return err
	}
	if progress.AuditorID != requesterID {
		return ErrNotOwner
	}
	return pt.DB.Delete(&progress).Error
}

// Complete marks an open record finished and links the finalized
// submission. Clearing the open key frees the pair for a future audit.
func (pt *ProgressTracker) Complete(progressID, submissionID uint) error {
	res := pt.DB.Model(&models.AuditProgress{}).
		Where("id = ? AND is_completed = ?", progressID, false).
		Updates(map[string]interface{}{
			"is_completed":  true,
			"submission_id": submissionID,
			"open_key":      nil,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrProgressNotFound
	}
	return nil
}
