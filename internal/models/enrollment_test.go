package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEnrollmentState(t *testing.T) {
	e := Enrollment{}
	assert.Equal(t, StateUnpaid, e.State())

	e.IsPaid = true
	assert.Equal(t, StatePaidPending, e.State())

	e.IsConfirmed = true
	assert.Equal(t, StateConfirmed, e.State())
}

func TestCertificateIDFor(t *testing.T) {
	e := &Enrollment{
		ID:        42,
		CreatedAt: time.Date(2025, time.March, 14, 10, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, "JK-42-2025", CertificateIDFor(e))
}
