package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jagokomputer/jagokursus/internal/models"
)

func TestCreateUserAndAuthenticate(t *testing.T) {
	db := newTestDB(t)
	user := &models.User{Username: "sari", Email: "sari@example.com"}
	require.NoError(t, CreateUser(db, user, "rahasia123"))
	assert.NotZero(t, user.ID)
	assert.NotEqual(t, "rahasia123", user.PasswordHash)

	got, err := Authenticate(db, "sari", "rahasia123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = Authenticate(db, "sari", "salah")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = Authenticate(db, "tidakada", "rahasia123")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateUserRejectsEmptyPassword(t *testing.T) {
	db := newTestDB(t)
	err := CreateUser(db, &models.User{Username: "tono", Email: "tono@example.com"}, "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreateUserDuplicates(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, CreateUser(db, &models.User{Username: "dewi", Email: "dewi@example.com"}, "rahasia123"))

	err := CreateUser(db, &models.User{Username: "dewi", Email: "lain@example.com"}, "rahasia123")
	assert.ErrorIs(t, err, ErrUsernameTaken)

	err = CreateUser(db, &models.User{Username: "lain", Email: "dewi@example.com"}, "rahasia123")
	assert.ErrorIs(t, err, ErrEmailTaken)

	var count int64
	db.Model(&models.User{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestUpdateProfile(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "bayu")
	other := createTestUser(t, db, "cici")

	require.NoError(t, UpdateProfile(db, user, "Bayu Saputra", "+628111222333", "bayu.baru@example.com"))

	got, err := GetUser(db, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bayu Saputra", got.FullName)
	assert.Equal(t, "+628111222333", got.WhatsAppNumber)
	assert.Equal(t, "bayu.baru@example.com", got.Email)

	// Cannot take another user's email.
	err = UpdateProfile(db, user, "Bayu", "", other.Email)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestToggleAdmin(t *testing.T) {
	db := newTestDB(t)
	admin := createTestUser(t, db, "admin2")
	target := createTestUser(t, db, "warga")

	got, err := ToggleAdmin(db, admin.ID, target.ID)
	require.NoError(t, err)
	assert.True(t, got.IsAdmin)

	got, err = ToggleAdmin(db, admin.ID, target.ID)
	require.NoError(t, err)
	assert.False(t, got.IsAdmin)

	// Demoting yourself is refused.
	_, err = ToggleAdmin(db, admin.ID, admin.ID)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpsertGoogleUser(t *testing.T) {
	db := newTestDB(t)

	// First login creates the account with the email as username.
	user, err := UpsertGoogleUser(db, "g-123", "andi@gmail.com", "Andi Wijaya")
	require.NoError(t, err)
	assert.Equal(t, "andi@gmail.com", user.Username)
	assert.Equal(t, "Andi Wijaya", user.FullName)

	// Same Google ID returns the same account.
	again, err := UpsertGoogleUser(db, "g-123", "andi@gmail.com", "Andi W.")
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)

	var count int64
	db.Model(&models.User{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestUpsertGoogleUserLinksByEmail(t *testing.T) {
	db := newTestDB(t)
	existing := &models.User{Username: "eka", Email: "eka@example.com"}
	require.NoError(t, CreateUser(db, existing, "rahasia123"))

	linked, err := UpsertGoogleUser(db, "g-456", "eka@example.com", "Eka Putri")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, linked.ID)
	assert.Equal(t, "g-456", linked.GoogleID)

	// The password login keeps working after linking.
	_, err = Authenticate(db, "eka", "rahasia123")
	assert.NoError(t, err)
}

func TestEligibleCertificates(t *testing.T) {
	db := newTestDB(t)
	done := createTestUser(t, db, "fira")
	halfway := createTestUser(t, db, "galih")
	course := createTestCourse(t, db, "PHP", 0, 0, 2)
	confirmEnrollment(t, db, done, course)
	confirmEnrollment(t, db, halfway, course)

	lessons, err := LessonsFor(db, course.ID)
	require.NoError(t, err)
	for i := range lessons {
		_, err := MarkLessonComplete(db, done.ID, &lessons[i])
		require.NoError(t, err)
	}
	_, err = MarkLessonComplete(db, halfway.ID, &lessons[0])
	require.NoError(t, err)

	rows, err := EligibleCertificates(db)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, done.ID, rows[0].Enrollment.UserID)
	assert.Equal(t, 100, rows[0].Progress)
}
