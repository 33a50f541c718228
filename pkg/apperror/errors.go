package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Kind classifies an error for callers that branch on failure class rather than code.
type Kind string

const (
	KindConflict          Kind = "conflict"
	KindUnauthorized      Kind = "unauthorized"
	KindForbidden         Kind = "forbidden"
	KindNotFound          Kind = "not_found"
	KindInsufficientFunds Kind = "insufficient_funds"
	KindInvalidState      Kind = "invalid_state"
	KindValidation        Kind = "validation"
	KindRateLimited       Kind = "rate_limited"
	KindInternal          Kind = "internal"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string         `json:"error_code"`
	Message    string         `json:"message"`
	Kind       Kind           `json:"kind"`
	Details    map[string]any `json:"details,omitempty"`
	HTTPStatus int            `json:"-"`
	Err        error          `json:"-"` // never exposed to clients
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail returns a copy of e carrying an extra client-visible detail.
func (e *AppError) WithDetail(key string, value any) *AppError {
	cp := *e
	cp.Details = make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		cp.Details[k] = v
	}
	cp.Details[key] = value
	return &cp
}

// New creates a new AppError whose HTTP status follows from its kind.
func New(code string, message string, kind Kind) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		Kind:       kind,
		HTTPStatus: statusFor(kind),
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, kind Kind, err error) *AppError {
	e := New(code, message, kind)
	e.Err = err
	return e
}

// KindOf reports the kind of err, or KindInternal when err is not an AppError.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func statusFor(kind Kind) int {
	switch kind {
	case KindConflict:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindInsufficientFunds:
		return http.StatusPaymentRequired
	case KindInvalidState:
		return http.StatusConflict
	case KindValidation:
		return http.StatusBadRequest
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// ---- Identity & Sessions (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New("AUTH_001", "Invalid credentials", KindUnauthorized)
}

func ErrUsernameExists() *AppError {
	return New("AUTH_002", "Username already exists", KindConflict)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_003", "Invalid token", KindUnauthorized)
}

// ErrAccountBlocked carries the block reason so the user can read it.
func ErrAccountBlocked(reason string, blockedAt *time.Time) *AppError {
	e := New("AUTH_004", "Account is blocked", KindForbidden).WithDetail("blocked_reason", reason)
	if blockedAt != nil {
		e = e.WithDetail("blocked_at", blockedAt.UTC().Format(time.RFC3339))
	}
	return e
}

func ErrEmailExists() *AppError {
	return New("AUTH_005", "Email already exists", KindConflict)
}

func ErrTokenExpired() *AppError {
	return New("AUTH_006", "Token expired", KindUnauthorized)
}

func ErrAdminInactive() *AppError {
	return New("AUTH_007", "Admin account is deactivated", KindForbidden)
}

func ErrAdminRequired() *AppError {
	return New("AUTH_008", "Admin privileges required", KindForbidden)
}

func ErrAccountMissing() *AppError {
	return New("AUTH_009", "Account no longer exists", KindUnauthorized)
}

// ---- Wallet Ledger (LED) ----

func ErrInsufficientFunds() *AppError {
	return New("LED_001", "Insufficient balance in wallet", KindInsufficientFunds)
}

func ErrInvalidAmount() *AppError {
	return New("LED_002", "Amount must be a positive decimal", KindValidation)
}

func ErrWalletExists() *AppError {
	return New("LED_003", "Wallet already exists for this currency", KindConflict)
}

func ErrNotFound(entity string) *AppError {
	return New("LED_004", fmt.Sprintf("%s not found", entity), KindNotFound)
}

func ErrKYCRequired() *AppError {
	return New("LED_005", "KYC verification required", KindForbidden)
}

func ErrUnsupportedCurrency(currency string) *AppError {
	return New("LED_006", fmt.Sprintf("Unsupported currency: %s", currency), KindValidation)
}

func ErrCreditForbidden() *AppError {
	return New("LED_007", "Blocked accounts cannot receive self-service credits", KindForbidden)
}

// ---- KYC (KYC) ----

func ErrKYCAlreadySubmitted() *AppError {
	return New("KYC_001", "KYC already submitted", KindConflict)
}

func ErrKYCNotReviewable() *AppError {
	return New("KYC_002", "KYC record is not pending review", KindInvalidState)
}

// ---- State transitions (STATE) ----

func ErrInvalidState(message string) *AppError {
	return New("STATE_001", message, KindInvalidState)
}

// ---- Validation (VAL) ----

// Validation returns a VAL_001 validation error.
func Validation(message string) *AppError {
	return New("VAL_001", message, KindValidation)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", KindRateLimited)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap("SYS_001", "Internal database error", KindInternal, err)
}

func ErrEncryptionFailure(err error) *AppError {
	return Wrap("SYS_003", "Encryption service failure", KindInternal, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", KindInternal, err)
}
