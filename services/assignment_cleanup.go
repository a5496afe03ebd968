package services

import (
	"fmt"

	"github.com/ontimesolutions/restaurant-audit/models"
	"github.com/ontimesolutions/restaurant-audit/utils"
	"gorm.io/gorm"
)

// CleanupService purges an auditor's in-flight work when their link to a
// restaurant ends. Each effect is idempotent and isolated: one failing
// step is logged and the rest still run.
type CleanupService struct {
	DB *gorm.DB
}

func NewCleanupService(db *gorm.DB) *CleanupService {
	return &CleanupService{DB: db}
}

// OnAssignmentRemoved reacts to an explicit unlink of an auditor from a
// restaurant. The collaborator that flips the assignment calls this
// directly; no diffing against previously persisted rows is involved.
func (cs *CleanupService) OnAssignmentRemoved(restaurantID, userID uint, status string) {
	if status == "" {
		status = models.EmployeeRemoved
	}

	cs.cancelVisits(restaurantID, userID, "assignment removed")
	cs.discardOpenProgress(restaurantID, userID)
	cs.clearNotifications(restaurantID, userID)

	res := cs.DB.Model(&models.Assignment{}).
		Where("restaurant_id = ? AND user_id = ?", restaurantID, userID).
		Updates(map[string]interface{}{
			"is_active":       false,
			"employee_status": status,
		})
	if res.Error != nil {
		utils.ErrorLogger.Printf("Cleanup: failed to deactivate assignment restaurant=%d user=%d: %v", restaurantID, userID, res.Error)
	} else {
		utils.InfoLogger.Printf("Cleanup finished for restaurant=%d user=%d (%s)", restaurantID, userID, status)
	}
}

// OnAuditorDeactivated runs the cascade across every restaurant the
// auditor is still actively assigned to.
func (cs *CleanupService) OnAuditorDeactivated(userID uint, reason string) {
	var assignments []models.Assignment
	if err := cs.DB.Where("user_id = ? AND is_active = ?", userID, true).Find(&assignments).Error; err != nil {
		utils.ErrorLogger.Printf("Cleanup: failed to list assignments for user %d: %v", userID, err)
		return
	}
	status := models.EmployeeDisabled
	if reason == "removed" {
		status = models.EmployeeRemoved
	}
	for _, assignment := range assignments {
		cs.OnAssignmentRemoved(assignment.RestaurantID, userID, status)
	}
}

// SweepOrphanedVisits cancels any non-terminal visit whose auditor is no
// longer among the restaurant's active assignments. Covers removals that
// bypassed the single-assignment path.
func (cs *CleanupService) SweepOrphanedVisits(restaurantID uint) (int64, error) {
	subquery := cs.DB.Model(&models.Assignment{}).
		Select("user_id").
		Where("restaurant_id = ? AND is_active = ?", restaurantID, true)

	res := cs.DB.Model(&models.ScheduledVisit{}).
		Where("restaurant_id = ? AND status IN ?", restaurantID, []string{models.VisitPending, models.VisitOverdue}).
		Where("auditor_id NOT IN (?)", subquery).
		Updates(map[string]interface{}{
			"status":        models.VisitCancelled,
			"cancel_reason": "auditor no longer assigned",
			"slot_key":      nil,
		})
	if res.Error != nil {
		return 0, fmt.Errorf("sweeping orphaned visits: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		utils.InfoLogger.Printf("Cancelled %d orphaned visit(s) for restaurant %d", res.RowsAffected, restaurantID)
	}
	return res.RowsAffected, nil
}

func (cs *CleanupService) cancelVisits(restaurantID, userID uint, reason string) {
	res := cs.DB.Model(&models.ScheduledVisit{}).
		Where("restaurant_id = ? AND auditor_id = ?", restaurantID, userID).
		Where("status IN ?", []string{models.VisitPending, models.VisitOverdue}).
		Updates(map[string]interface{}{
			"status":        models.VisitCancelled,
			"cancel_reason": reason,
			"slot_key":      nil,
		})
	if res.Error != nil {
		utils.ErrorLogger.Printf("Cleanup: failed to cancel visits restaurant=%d user=%d: %v", restaurantID, userID, res.Error)
		return
	}
	if res.RowsAffected > 0 {
		utils.InfoLogger.Printf("Cleanup: cancelled %d visit(s) restaurant=%d user=%d", res.RowsAffected, restaurantID, userID)
	}
}

func (cs *CleanupService) discardOpenProgress(restaurantID, userID uint) {
	res := cs.DB.
		Where("restaurant_id = ? AND auditor_id = ? AND is_completed = ?", restaurantID, userID, false).
		Delete(&models.AuditProgress{})
	if res.Error != nil {
		utils.ErrorLogger.Printf("Cleanup: failed to discard progress restaurant=%d user=%d: %v", restaurantID, userID, res.Error)
		return
	}
	if res.RowsAffected > 0 {
		utils.InfoLogger.Printf("Cleanup: discarded %d progress record(s) restaurant=%d user=%d", res.RowsAffected, restaurantID, userID)
	}
}

func (cs *CleanupService) clearNotifications(restaurantID, userID uint) {
	res := cs.DB.
		Where("user_id = ? AND restaurant_id = ? AND is_read = ?", userID, restaurantID, false).
		Delete(&models.Notification{})
	if res.Error != nil {
		utils.ErrorLogger.Printf("Cleanup: failed to clear notifications restaurant=%d user=%d: %v", restaurantID, userID, res.Error)
	}
}
