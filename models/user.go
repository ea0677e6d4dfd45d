package models

import "time"

// User represents an account in the system
// Password is stored hashed (bcrypt); never return plain in JSON responses
type User struct {
	ID          int       `json:"id" db:"id"`
	Email       string    `json:"email" db:"email"`
	Name        string    `json:"name" db:"name"`
	Password    string    `json:"-" db:"password"` // Hashed; omitted from JSON
	IsActive    bool      `json:"-" db:"is_active"`
	IsStaff     bool      `json:"-" db:"is_staff"`
	IsSuperuser bool      `json:"-" db:"is_superuser"`
	CreatedAt   time.Time `json:"-" db:"created_at"`
	UpdatedAt   time.Time `json:"-" db:"updated_at"`
}

// CreateUserRequest is the signup payload
type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"` // Plaintext; hashed by the store
	Name     string `json:"name" validate:"required,max=255"`
}

// ReplaceUserRequest is the PUT /api/user/me/ payload; every field is required
type ReplaceUserRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"required,max=255"`
}

// PatchUserRequest is the PATCH /api/user/me/ payload
// Nil fields are left untouched
type PatchUserRequest struct {
	Email    *string `json:"email" validate:"omitempty,email,max=255"`
	Password *string `json:"password" validate:"omitempty,min=8,max=72"`
	Name     *string `json:"name" validate:"omitempty,min=1,max=255"`
}

// UserPatch is the set of profile fields an update touches
type UserPatch struct {
	Email    *string
	Password *string
	Name     *string
}

// TokenRequest for /api/user/token/
type TokenRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse carries the opaque auth token
type TokenResponse struct {
	Token string `json:"token"`
}

// Token is the single auth key issued to a user
type Token struct {
	Key       string    `db:"token"`
	UserID    int       `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
}
