package models

import "time"

// UserRole represents the closed set of roles gating authorization.
type UserRole string

const (
	RoleStudent    UserRole = "STUDENT"
	RoleInstructor UserRole = "INSTRUCTOR"
	RoleAdmin      UserRole = "ADMIN"
	RoleSuperAdmin UserRole = "SUPER_ADMIN"
)

// AdminRoles is the allow-set for back-office routes.
var AdminRoles = []UserRole{RoleAdmin, RoleSuperAdmin}

// Valid reports whether the role belongs to the closed enumeration.
func (r UserRole) Valid() bool {
	switch r {
	case RoleStudent, RoleInstructor, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// User represents an application user stored in the users table. Emails are
// case-folded to lower on write and lookup. Users are never physically
// deleted; Active=false is the soft lifecycle end state.
type User struct {
	ID             string     `db:"id" json:"id"`
	Email          string     `db:"email" json:"email"`
	PasswordHash   string     `db:"password_hash" json:"-"`
	FullName       string     `db:"full_name" json:"full_name"`
	Role           UserRole   `db:"role" json:"role"`
	Active         bool       `db:"active" json:"active"`
	Verified       bool       `db:"verified" json:"verified"`
	OTPHash        *string    `db:"otp_hash" json:"-"`
	OTPExpiresAt   *time.Time `db:"otp_expires_at" json:"-"`
	ResetTokenHash *string    `db:"reset_token_hash" json:"-"`
	ResetExpiresAt *time.Time `db:"reset_expires_at" json:"-"`
	LastLogin      *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role      *UserRole
	Active    *bool
	Verified  *bool
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
