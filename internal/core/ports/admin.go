package ports

import (
	"context"

	"custodial-wallet/internal/core/domain"
	"custodial-wallet/pkg/pagination"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UserDetails is the admin drill-down view of one user.
type UserDetails struct {
	User               *domain.User         `json:"user"`
	Wallets            []domain.Wallet      `json:"wallets"`
	RecentTransactions []domain.Transaction `json:"recent_transactions"`
}

// SendCryptoRequest credits a user on behalf of an admin.
type SendCryptoRequest struct {
	UserID   *uuid.UUID
	Username string
	Currency domain.Currency
	Amount   decimal.Decimal
	Note     string
}

// CryptoTransfer is a send_crypto audit entry joined with its target.
type CryptoTransfer struct {
	Action domain.AdminAction  `json:"action"`
	Target *domain.UserSummary `json:"target_user,omitempty"`
}

// DashboardStats is the admin landing page.
type DashboardStats struct {
	Users         UserStats            `json:"users"`
	Wallets       []CurrencyTotal      `json:"wallets"`
	Transactions  TransactionStats     `json:"transactions"`
	RecentActions []domain.AdminAction `json:"recent_actions"`
}

// AdminService is the audited admin surface. Every method records exactly one
// AdminAction for the acting admin.
type AdminService interface {
	RegisterAdmin(ctx context.Context, actor uuid.UUID, req RegisterAdminRequest) (*domain.Admin, error)
	ListUsers(ctx context.Context, actor uuid.UUID, params UserListParams) (pagination.Page[domain.User], error)
	UserDetails(ctx context.Context, actor uuid.UUID, userID uuid.UUID) (*UserDetails, error)
	BlockUser(ctx context.Context, actor uuid.UUID, userID uuid.UUID, reason string) (*domain.User, error)
	UnblockUser(ctx context.Context, actor uuid.UUID, userID uuid.UUID) (*domain.User, error)
	ListWallets(ctx context.Context, actor uuid.UUID, params WalletListParams) (pagination.Page[domain.WalletWithOwner], error)
	UserWallets(ctx context.Context, actor uuid.UUID, userID uuid.UUID) ([]domain.Wallet, error)
	SendCrypto(ctx context.Context, actor uuid.UUID, req SendCryptoRequest) (*CreditResult, error)
	CryptoTransfers(ctx context.Context, actor uuid.UUID, page pagination.Params) (pagination.Page[CryptoTransfer], error)
	ListTransactions(ctx context.Context, actor uuid.UUID, page pagination.Params) (pagination.Page[domain.TransactionWithOwner], error)
	ListActions(ctx context.Context, actor uuid.UUID, params AdminActionListParams) (pagination.Page[domain.AdminAction], error)
	Dashboard(ctx context.Context, actor uuid.UUID) (*DashboardStats, error)
	ListKYC(ctx context.Context, actor uuid.UUID, params KYCListParams) (pagination.Page[domain.KYCRecord], error)
	ReviewKYC(ctx context.Context, actor uuid.UUID, req ReviewKYCRequest) (*domain.KYCRecord, error)
}
