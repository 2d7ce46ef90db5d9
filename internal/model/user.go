// Package model defines the data structures used throughout the application.
package model

import "time"

// Role is a user's privilege tier.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is a local account keyed by the identity provider's open-id.
//
// Rows are created or refreshed on every successful sign-in. Name, Email and
// LoginMethod are nullable because the provider may omit them.
type User struct {
	ID           int64     `json:"id"`
	OpenID       string    `json:"openId"`
	Name         *string   `json:"name"`
	Email        *string   `json:"email"`
	LoginMethod  *string   `json:"loginMethod"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	LastSignedIn time.Time `json:"lastSignedIn"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// UserUpsert carries the fields written on sign-in. Nil pointers leave the
// stored column untouched on update.
type UserUpsert struct {
	OpenID       string
	Name         *string
	Email        *string
	LoginMethod  *string
	Role         *Role
	LastSignedIn time.Time
}
