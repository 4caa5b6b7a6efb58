package models

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies which kind of account signed in
type Role string

const (
	RoleStudent   Role = "student"
	RoleSecretary Role = "secretary"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleSecretary
}

// Secretary represents a secretariat account
type Secretary struct {
	ID           uuid.UUID `json:"id" db:"id"`
	FirstName    string    `json:"firstName" db:"first_name"`
	LastName     string    `json:"lastName" db:"last_name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// Account is the role-independent view of whoever is signing in
type Account struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	Role         Role
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents a login response
type LoginResponse struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
	Role   Role   `json:"role"`
}
