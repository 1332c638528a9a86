package storage

import (
	"errors"

	"gorm.io/gorm"

	"github.com/jagokomputer/jagokursus/internal/models"
)

// CreateUser validates, hashes the password and inserts the account. The
// friendly uniqueness prechecks exist for form feedback; the unique indexes
// remain the actual guarantee.
func CreateUser(db *gorm.DB, user *models.User, password string) error {
	if err := checkStruct(user); err != nil {
		return err
	}
	if password == "" {
		return ErrInvalidInput
	}

	var count int64
	if err := db.Model(&models.User{}).Where("username = ?", user.Username).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrUsernameTaken
	}
	if err := db.Model(&models.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrEmailTaken
	}

	if err := user.SetPassword(password); err != nil {
		return err
	}
	if err := db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrUsernameTaken
		}
		return err
	}
	return nil
}

// Authenticate resolves a username/password pair to the account, or
// ErrNotFound when either does not match. The two failure modes are
// deliberately indistinguishable to the caller.
func Authenticate(db *gorm.DB, username, password string) (*models.User, error) {
	var user models.User
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !user.CheckPassword(password) {
		return nil, ErrNotFound
	}
	return &user, nil
}

// UpdateProfile saves the fields a user may edit about themselves. Changing
// the email to one another account holds is rejected.
func UpdateProfile(db *gorm.DB, user *models.User, fullName, whatsapp, email string) error {
	if email != user.Email {
		var count int64
		if err := db.Model(&models.User{}).Where("email = ? AND id <> ?", email, user.ID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrEmailTaken
		}
	}

	user.FullName = fullName
	user.WhatsAppNumber = whatsapp
	user.Email = email
	if err := checkStruct(user); err != nil {
		return err
	}
	return db.Model(user).Select("full_name", "WhatsAppNumber", "email").Updates(user).Error
}

// AllUsers lists every account for the admin user table.
func AllUsers(db *gorm.DB) ([]models.User, error) {
	var users []models.User
	err := db.Order("id asc").Find(&users).Error
	return users, err
}

// ToggleAdmin flips a user's admin flag. Admins cannot change their own flag,
// so the last admin cannot lock everyone out by accident.
func ToggleAdmin(db *gorm.DB, actorID, targetID uint) (*models.User, error) {
	if actorID == targetID {
		return nil, ErrInvalidInput
	}
	var user models.User
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, targetID).Error; err != nil {
			return translate(err)
		}
		user.IsAdmin = !user.IsAdmin
		return tx.Model(&user).Update("is_admin", user.IsAdmin).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpsertGoogleUser links or creates an account from a Google userinfo
// payload. Existing accounts get their name refreshed; admin status is never
// touched here.
func UpsertGoogleUser(db *gorm.DB, googleID, email, name string) (*models.User, error) {
	var user models.User
	err := db.Where("google_id = ?", googleID).First(&user).Error
	switch {
	case err == nil:
		if name != "" && user.FullName == "" {
			if err := db.Model(&user).Update("full_name", name).Error; err != nil {
				return nil, err
			}
			user.FullName = name
		}
		return &user, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return nil, err
	}

	// Same email already registered with a password: link the Google ID to it.
	err = db.Where("email = ?", email).First(&user).Error
	if err == nil {
		if err := db.Model(&user).Update("google_id", googleID).Error; err != nil {
			return nil, err
		}
		user.GoogleID = googleID
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user = models.User{
		Username: email,
		Email:    email,
		GoogleID: googleID,
		FullName: name,
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}
