package domain

import (
	"time"

	"github.com/google/uuid"
)

// PrincipalKind distinguishes the two account namespaces.
type PrincipalKind string

const (
	PrincipalUser  PrincipalKind = "user"
	PrincipalAdmin PrincipalKind = "admin"
)

// AdminRole is carried in admin sessions. Both roles hold the same capability.
type AdminRole string

const (
	AdminRoleAdmin      AdminRole = "admin"
	AdminRoleSuperAdmin AdminRole = "super_admin"
)

func (r AdminRole) IsValid() bool {
	return r == AdminRoleAdmin || r == AdminRoleSuperAdmin
}

// DefaultBlockReason is stamped when an admin blocks without giving a reason.
const DefaultBlockReason = "No reason provided"

// User is a self-service account holder.
type User struct {
	ID                 uuid.UUID  `json:"id"`
	Username           string     `json:"username"`
	Email              string     `json:"email"`
	PasswordHash       string     `json:"-"`
	FirstName          *string    `json:"first_name,omitempty"`
	LastName           *string    `json:"last_name,omitempty"`
	Phone              *string    `json:"phone,omitempty"`
	ProfileImage       *string    `json:"profile_image,omitempty"`
	FingerprintEnabled bool       `json:"fingerprint_enabled"`
	IsVerified         bool       `json:"is_verified"`
	IsBlocked          bool       `json:"is_blocked"`
	BlockedAt          *time.Time `json:"blocked_at,omitempty"`
	BlockedBy          *uuid.UUID `json:"blocked_by,omitempty"`
	BlockedReason      *string    `json:"blocked_reason,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// Block stamps the block metadata. Callers check IsBlocked first.
func (u *User) Block(adminID uuid.UUID, reason string, at time.Time) {
	if reason == "" {
		reason = DefaultBlockReason
	}
	u.IsBlocked = true
	u.BlockedAt = &at
	u.BlockedBy = &adminID
	u.BlockedReason = &reason
	u.UpdatedAt = at
}

// Unblock clears all block metadata.
func (u *User) Unblock(at time.Time) {
	u.IsBlocked = false
	u.BlockedAt = nil
	u.BlockedBy = nil
	u.BlockedReason = nil
	u.UpdatedAt = at
}

// BlockReason returns the stored reason or the empty string.
func (u *User) BlockReason() string {
	if u.BlockedReason == nil {
		return ""
	}
	return *u.BlockedReason
}

// Summary is the owner view embedded in admin listings.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		IsBlocked:  u.IsBlocked,
		IsVerified: u.IsVerified,
	}
}

// UserSummary identifies the owner of a wallet or transaction.
type UserSummary struct {
	ID         uuid.UUID `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	IsBlocked  bool      `json:"is_blocked"`
	IsVerified bool      `json:"is_verified"`
}

// Admin is a privileged operator account.
type Admin struct {
	ID           uuid.UUID  `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         AdminRole  `json:"role"`
	IsActive     bool       `json:"is_active"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// UserStatusFilter narrows admin user listings.
type UserStatusFilter string

const (
	UserStatusBlocked    UserStatusFilter = "blocked"
	UserStatusActive     UserStatusFilter = "active"
	UserStatusVerified   UserStatusFilter = "verified"
	UserStatusUnverified UserStatusFilter = "unverified"
)

func (f UserStatusFilter) IsValid() bool {
	switch f {
	case UserStatusBlocked, UserStatusActive, UserStatusVerified, UserStatusUnverified:
		return true
	}
	return false
}

// Matches reports whether u passes the filter. An empty filter matches all.
func (f UserStatusFilter) Matches(u *User) bool {
	switch f {
	case UserStatusBlocked:
		return u.IsBlocked
	case UserStatusActive:
		return !u.IsBlocked
	case UserStatusVerified:
		return u.IsVerified
	case UserStatusUnverified:
		return !u.IsVerified
	}
	return true
}
