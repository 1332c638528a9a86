package storage

import (
	"encoding/json"
	"log"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/jagokomputer/jagokursus/internal/models"
)

// RecordActivity appends to the audit trail. Best-effort: a failed write is
// logged and swallowed so the action being recorded is never rolled back
// because of it.
func RecordActivity(db *gorm.DB, userID uint, action string, details map[string]interface{}) {
	payload, err := json.Marshal(details)
	if err != nil {
		log.Printf("activity log: marshal %s: %v", action, err)
		return
	}
	entry := models.ActivityLog{
		UserID:  userID,
		Action:  action,
		Details: datatypes.JSON(payload),
	}
	if err := db.Create(&entry).Error; err != nil {
		log.Printf("activity log: %s: %v", action, err)
	}
}

// RecentActivity returns the newest audit entries for the admin dashboard.
func RecentActivity(db *gorm.DB, limit int) ([]models.ActivityLog, error) {
	var entries []models.ActivityLog
	err := db.Preload("User").Order("created_at desc").Limit(limit).Find(&entries).Error
	return entries, err
}
