package models

import "time"

// EnrollmentState is derived from the two payment flags; nothing stores it.
type EnrollmentState string

const (
	// StateUnpaid: a row exists but no payment was submitted yet.
	StateUnpaid EnrollmentState = "unpaid"
	// StatePaidPending: proof uploaded, waiting for admin verification.
	StatePaidPending EnrollmentState = "paid_pending"
	// StateConfirmed: admin verified the payment; lessons are accessible.
	StateConfirmed EnrollmentState = "confirmed"
)

// Enrollment links one user to one course. At most one row may exist per
// (user, course); the composite unique index is what resolves same-user
// submission races.
type Enrollment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	UserID   uint `gorm:"not null;uniqueIndex:idx_user_course" json:"user_id"`
	CourseID uint `gorm:"not null;uniqueIndex:idx_user_course" json:"course_id"`

	PaymentMethod  string `gorm:"size:64" json:"payment_method"`
	ProofOfPayment string `gorm:"size:256" json:"proof_of_payment"`

	// UniqueCode is a small surcharge added to the transfer amount so the
	// admin can tell which bank transfer belongs to which enrollment.
	UniqueCode int `json:"unique_code"`

	IsPaid      bool `json:"is_paid"`
	IsConfirmed bool `json:"is_confirmed"`

	User   User   `json:"user" gorm:"foreignKey:UserID"`
	Course Course `json:"course" gorm:"foreignKey:CourseID"`
}

func (e *Enrollment) State() EnrollmentState {
	switch {
	case e.IsConfirmed:
		return StateConfirmed
	case e.IsPaid:
		return StatePaidPending
	default:
		return StateUnpaid
	}
}
