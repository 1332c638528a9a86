package models

// LessonProgress marks one lesson done for one user. Rows are created lazily
// on the first completion and removed only when their lesson is deleted.
type LessonProgress struct {
	ID uint `gorm:"primaryKey" json:"id"`

	UserID   uint `gorm:"not null;uniqueIndex:idx_user_lesson" json:"user_id"`
	LessonID uint `gorm:"not null;uniqueIndex:idx_user_lesson" json:"lesson_id"`

	IsCompleted bool `json:"is_completed"`

	User   User   `json:"-" gorm:"foreignKey:UserID"`
	Lesson Lesson `json:"-" gorm:"foreignKey:LessonID"`
}
