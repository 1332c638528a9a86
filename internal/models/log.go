package models

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityLog keeps an audit trail of user actions: "login", "register",
// "enroll_free", "payment_submitted", "payment_confirmed", "lesson_complete".
// Writes are best-effort and never block the action being logged.
type ActivityLog struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"index"`
	Action    string    `gorm:"size:64" json:"action"`
	Details   datatypes.JSON `json:"details"`
	CreatedAt time.Time `json:"created_at"`

	User User `gorm:"foreignKey:UserID"`
}
