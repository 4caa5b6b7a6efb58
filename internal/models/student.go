package models

import (
	"time"

	"github.com/google/uuid"
)

// Student represents a student with resolved subject and factor marks
type Student struct {
	ID           uuid.UUID     `json:"id" db:"id"`
	FirstName    string        `json:"firstName" db:"first_name"`
	LastName     string        `json:"lastName" db:"last_name"`
	Email        string        `json:"email,omitempty" db:"email"`
	PasswordHash string        `json:"-" db:"password_hash"`
	Course       int           `json:"course" db:"course"`
	Group        string        `json:"group" db:"grp"`
	Subjects     []SubjectMark `json:"subjects"`
	Factors      []FactorMark  `json:"factors"`
	ResetToken   string        `json:"-" db:"reset_token"`
	ResetExpires *time.Time    `json:"-" db:"reset_expires"`
	CreatedAt    time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time     `json:"updatedAt" db:"updated_at"`
}

// SubjectMark is a student's grade in one subject
type SubjectMark struct {
	Subject Subject `json:"subject"`
	Mark    float64 `json:"mark"`
}

// FactorMark is a student's value for one factor
type FactorMark struct {
	Factor Factor  `json:"factor"`
	Mark   float64 `json:"mark"`
}

// StudentSummary is the list projection of a student
type StudentSummary struct {
	ID        uuid.UUID `json:"id" db:"id"`
	FirstName string    `json:"firstName" db:"first_name"`
	LastName  string    `json:"lastName" db:"last_name"`
	Email     string    `json:"email" db:"email"`
	Course    int       `json:"course" db:"course"`
	Group     string    `json:"group" db:"grp"`
}

// MarkInput references a subject or factor by id with its mark
type MarkInput struct {
	ID   uuid.UUID `json:"id" binding:"required"`
	Mark float64   `json:"mark" binding:"gte=0"`
}

// StudentDraft is the input for creating a student
type StudentDraft struct {
	FirstName string      `json:"firstName" binding:"required"`
	LastName  string      `json:"lastName" binding:"required"`
	Email     string      `json:"email" binding:"required,email"`
	Password  string      `json:"password" binding:"required,min=6"`
	Course    int         `json:"course" binding:"required,min=1,max=6"`
	Group     string      `json:"group" binding:"required"`
	Subjects  []MarkInput `json:"subjects" binding:"omitempty,dive"`
	Factors   []MarkInput `json:"factors" binding:"omitempty,dive"`
}

// ResetValid reports whether the student's reset token is still usable at now
func (s *Student) ResetValid(now time.Time) bool {
	return s.ResetToken != "" && s.ResetExpires != nil && now.Before(*s.ResetExpires)
}

// Public returns a copy suitable for detail responses: no email, no secrets
func (s Student) Public() Student {
	s.Email = ""
	s.PasswordHash = ""
	s.ResetToken = ""
	s.ResetExpires = nil
	return s
}
