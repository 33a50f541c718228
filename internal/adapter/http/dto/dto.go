package dto

import (
	"time"

	"custodial-wallet/internal/core/domain"
	"custodial-wallet/pkg/pagination"
)

// RegisterRequest is the request body for user signup.
type RegisterRequest struct {
	Username  string  `json:"username" binding:"required,min=3,max=50,safe_id"`
	Email     string  `json:"email" binding:"required,email,max=120" sanitize:"trim"`
	Password  string  `json:"password" binding:"required,min=8,max=128" sanitize:"-"`
	FirstName *string `json:"first_name,omitempty" binding:"omitempty,max=50"`
	LastName  *string `json:"last_name,omitempty" binding:"omitempty,max=50"`
	Phone     *string `json:"phone,omitempty" binding:"omitempty,max=20"`
}

// LoginRequest is the request body for user and admin login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required" sanitize:"-"`
}

// UserAuthResponse is returned by user signup and login.
type UserAuthResponse struct {
	Token     string          `json:"token"`
	ExpiresAt int64           `json:"expires_at"` // Unix timestamp
	User      *domain.User    `json:"user"`
	Wallets   []domain.Wallet `json:"wallets"`
}

// AdminAuthResponse is returned by admin login.
type AdminAuthResponse struct {
	Token     string        `json:"token"`
	ExpiresAt int64         `json:"expires_at"`
	Admin     *domain.Admin `json:"admin"`
}

// UpdateProfileRequest is the request body for PUT /users/me.
type UpdateProfileRequest struct {
	FirstName          *string `json:"first_name,omitempty" binding:"omitempty,max=50"`
	LastName           *string `json:"last_name,omitempty" binding:"omitempty,max=50"`
	Phone              *string `json:"phone,omitempty" binding:"omitempty,max=20"`
	ProfileImage       *string `json:"profile_image,omitempty" binding:"omitempty,safe_url"`
	FingerprintEnabled *bool   `json:"fingerprint_enabled,omitempty"`
}

// BlockStatusResponse tells a user whether and why they are blocked.
type BlockStatusResponse struct {
	IsBlocked     bool       `json:"is_blocked"`
	BlockedAt     *time.Time `json:"blocked_at,omitempty"`
	BlockedReason *string    `json:"blocked_reason,omitempty"`
}

// SendRequest is the request body for a self-service debit.
type SendRequest struct {
	Currency  string `json:"currency" binding:"required,min=3,max=10"`
	Amount    string `json:"amount" binding:"required,decimal_amount"`
	ToAddress string `json:"to_address" binding:"required,max=128"`
}

// SubmitKYCRequest is the request body for POST /kyc.
type SubmitKYCRequest struct {
	DocumentType   string  `json:"document_type" binding:"required,oneof=passport national_id drivers_license"`
	DocumentNumber string  `json:"document_number" binding:"required,max=50,safe_id"`
	DocumentFront  *string `json:"document_front,omitempty" binding:"omitempty,safe_url"`
	DocumentBack   *string `json:"document_back,omitempty" binding:"omitempty,safe_url"`
	Selfie         *string `json:"selfie,omitempty" binding:"omitempty,safe_url"`
}

// RegisterAdminRequest is the request body for POST /admin/register.
type RegisterAdminRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50,safe_id"`
	Email    string `json:"email" binding:"required,email,max=120" sanitize:"trim"`
	Password string `json:"password" binding:"required,min=8,max=128" sanitize:"-"`
	Role     string `json:"role,omitempty" binding:"omitempty,oneof=admin super_admin"`
}

// BlockRequest is the request body for POST /admin/users/:id/block.
type BlockRequest struct {
	Reason string `json:"reason" binding:"max=500" sanitize:"trim"`
}

// SendCryptoRequest is the request body for POST /admin/send-crypto. The
// target is named by user_id or username.
type SendCryptoRequest struct {
	UserID   *string `json:"user_id,omitempty" binding:"omitempty,uuid"`
	Username string  `json:"username,omitempty" binding:"omitempty,max=50"`
	Currency string  `json:"currency" binding:"required,min=3,max=10"`
	Amount   string  `json:"amount" binding:"required,decimal_amount"`
	Note     string  `json:"note,omitempty" binding:"max=500" sanitize:"trim"`
}

// ReviewKYCRequest is the request body for POST /admin/kyc/:id/review.
type ReviewKYCRequest struct {
	Decision string `json:"decision" binding:"required,oneof=approve reject"`
	Notes    string `json:"notes,omitempty" binding:"max=1000" sanitize:"trim"`
}

// PageQuery binds ?page=&per_page= for every list endpoint.
type PageQuery struct {
	Page    int `form:"page"`
	PerPage int `form:"per_page"`
}

// Params clamps the query into a page request.
func (q PageQuery) Params() pagination.Params {
	return pagination.New(q.Page, q.PerPage, pagination.DefaultPerPage)
}

// UserListQuery binds the admin user list filters.
type UserListQuery struct {
	PageQuery
	Search string `form:"search" binding:"max=100"`
	Status string `form:"status" binding:"omitempty,oneof=blocked active verified unverified"`
}

// WalletListQuery binds the admin wallet list filters.
type WalletListQuery struct {
	PageQuery
	Currency string `form:"currency"`
	UserID   string `form:"user_id" binding:"omitempty,uuid"`
}

// ActionListQuery binds the audit trail filters.
type ActionListQuery struct {
	PageQuery
	Kind string `form:"action_type"`
}

// KYCListQuery binds the review queue filters.
type KYCListQuery struct {
	PageQuery
	Status string `form:"status" binding:"omitempty,oneof=pending approved rejected"`
}

// TransactionListQuery binds a user's history filters.
type TransactionListQuery struct {
	PageQuery
	Currency string `form:"currency"`
}
