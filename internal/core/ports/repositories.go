package ports

import (
	"context"
	"errors"
	"time"

	"custodial-wallet/internal/core/domain"
	"custodial-wallet/pkg/pagination"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Unique constraints surfaced through DuplicateError.
const (
	ConstraintUserUsername   = "users_username_key"
	ConstraintUserEmail      = "users_email_key"
	ConstraintAdminUsername  = "admins_username_key"
	ConstraintAdminEmail     = "admins_email_key"
	ConstraintWalletCurrency = "wallets_user_id_currency_key"
	ConstraintWalletAddress  = "wallets_address_key"
	ConstraintTxHash         = "transactions_tx_hash_key"
	ConstraintKYCActive      = "kyc_records_one_active_idx"
)

// DuplicateError reports a unique constraint violation.
type DuplicateError struct {
	Constraint string
}

func (e *DuplicateError) Error() string {
	return "duplicate key violates " + e.Constraint
}

// IsDuplicate reports whether err is a DuplicateError on constraint
// (any constraint when constraint is empty).
func IsDuplicate(err error, constraint string) bool {
	var dup *DuplicateError
	if !errors.As(err, &dup) {
		return false
	}
	return constraint == "" || dup.Constraint == constraint
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, tx pgx.Tx, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateProfile(ctx context.Context, user *domain.User) error
	UpdateBlockState(ctx context.Context, tx pgx.Tx, user *domain.User) error
	SetVerified(ctx context.Context, tx pgx.Tx, id uuid.UUID, verified bool) error
	List(ctx context.Context, params UserListParams) ([]domain.User, int64, error)
	Stats(ctx context.Context) (*UserStats, error)
}

// UserListParams holds filter + pagination for admin user listings.
type UserListParams struct {
	Search string // matched against username, email, first and last name
	Status domain.UserStatusFilter
	Page   pagination.Params
}

// UserStats feeds the admin dashboard.
type UserStats struct {
	Total      int64 `json:"total"`
	Blocked    int64 `json:"blocked"`
	Verified   int64 `json:"verified"`
	Unverified int64 `json:"unverified"`
}

// AdminRepository defines persistence operations for admins.
type AdminRepository interface {
	Create(ctx context.Context, tx pgx.Tx, admin *domain.Admin) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Admin, error)
	GetByUsername(ctx context.Context, username string) (*domain.Admin, error)
	GetByEmail(ctx context.Context, email string) (*domain.Admin, error)
	TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

// WalletRepository defines persistence operations for wallets.
// Methods accepting pgx.Tx run inside the caller's transaction.
type WalletRepository interface {
	Create(ctx context.Context, tx pgx.Tx, wallet *domain.Wallet) error
	GetByUserAndCurrency(ctx context.Context, userID uuid.UUID, currency domain.Currency) (*domain.Wallet, error)
	GetByUserAndCurrencyForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID, currency domain.Currency) (*domain.Wallet, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Wallet, error)
	List(ctx context.Context, params WalletListParams) ([]domain.WalletWithOwner, int64, error)
	UpdateBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, balance decimal.Decimal) error
	Stats(ctx context.Context) ([]CurrencyTotal, error)
}

// WalletListParams holds filter + pagination for admin wallet listings.
type WalletListParams struct {
	Currency *domain.Currency
	UserID   *uuid.UUID
	Page     pagination.Params
}

// CurrencyTotal aggregates wallets of one currency.
type CurrencyTotal struct {
	Currency     domain.Currency `json:"currency"`
	Wallets      int64           `json:"wallets"`
	TotalBalance decimal.Decimal `json:"total_balance"`
}

// TransactionRepository defines persistence operations for transactions.
type TransactionRepository interface {
	Create(ctx context.Context, tx pgx.Tx, transaction *domain.Transaction) error
	ListByUser(ctx context.Context, params TransactionListParams) ([]domain.Transaction, int64, error)
	ListAll(ctx context.Context, page pagination.Params) ([]domain.TransactionWithOwner, int64, error)
	Stats(ctx context.Context) (*TransactionStats, error)
}

// TransactionListParams holds filter + pagination for a user's history.
type TransactionListParams struct {
	UserID   uuid.UUID
	Currency *domain.Currency
	Page     pagination.Params
}

// TransactionStats feeds the admin dashboard.
type TransactionStats struct {
	Total    int64 `json:"total"`
	Sends    int64 `json:"sends"`
	Receives int64 `json:"receives"`
	Last24h  int64 `json:"last_24h"`
}

// AdminActionRepository is the append-only audit store. There is no update or delete.
type AdminActionRepository interface {
	Create(ctx context.Context, tx pgx.Tx, action *domain.AdminAction) error
	List(ctx context.Context, params AdminActionListParams) ([]domain.AdminAction, int64, error)
	Recent(ctx context.Context, limit int) ([]domain.AdminAction, error)
}

// AdminActionListParams filters the audit trail.
type AdminActionListParams struct {
	AdminID *uuid.UUID
	Kind    *domain.ActionKind
	Page    pagination.Params
}

// KYCRepository defines persistence operations for KYC records.
type KYCRepository interface {
	Create(ctx context.Context, record *domain.KYCRecord) error
	LatestByUser(ctx context.Context, userID uuid.UUID) (*domain.KYCRecord, error)
	GetActiveByUser(ctx context.Context, userID uuid.UUID) (*domain.KYCRecord, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.KYCRecord, error)
	UpdateReview(ctx context.Context, tx pgx.Tx, record *domain.KYCRecord) error
	List(ctx context.Context, params KYCListParams) ([]domain.KYCRecord, int64, error)
}

// KYCListParams filters the review queue.
type KYCListParams struct {
	Status *domain.KYCStatus
	Page   pagination.Params
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
