package models

import (
	"golang.org/x/crypto/bcrypt"
)

// User is an account that can enroll in courses. Admins additionally manage
// the catalog and verify payments; there are no further roles.
type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Username     string `gorm:"uniqueIndex;size:64" json:"username" validate:"required,max=64"`
	Email        string `gorm:"uniqueIndex;size:120" json:"email" validate:"required,email,max=120"`
	PasswordHash string `gorm:"size:256" json:"-"`
	IsAdmin      bool   `json:"is_admin"`

	// GoogleID is set only for accounts created through the Google login path.
	GoogleID string `gorm:"index;size:64" json:"-"`

	FullName       string `gorm:"size:120" json:"full_name"`
	WhatsAppNumber string `gorm:"size:20" json:"whatsapp_number"`

	Enrollments []Enrollment     `json:"-" gorm:"foreignKey:UserID"`
	Progresses  []LessonProgress `json:"-" gorm:"foreignKey:UserID"`
}

func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// DisplayName is what goes on a certificate: the full name when the user
// filled one in, the username otherwise.
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}
