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

// EncryptionService handles AES-256-GCM encryption of key material at rest.
type EncryptionService interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// Token parse failures distinguished by the gateway.
var (
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenMalformed = errors.New("token malformed")
)

// Principal is the authenticated caller carried by a session.
type Principal struct {
	Kind domain.PrincipalKind
	ID   uuid.UUID
	Role domain.AdminRole // admins only
}

// IsAdmin reports whether the principal holds admin capability.
func (p Principal) IsAdmin() bool {
	return p.Kind == domain.PrincipalAdmin
}

// TokenClaims holds the verified session claims.
type TokenClaims struct {
	Principal Principal
	KeyID     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenService issues and verifies signed session tokens.
type TokenService interface {
	Issue(p Principal) (string, time.Time, error)
	Parse(token string) (*TokenClaims, error)
}

// KeyPair is freshly generated deposit key material.
type KeyPair struct {
	Address   string
	SecretKey string // plaintext; encrypt before persisting
}

// AddressGenerator derives deposit addresses in the currency's native format.
type AddressGenerator interface {
	Generate(currency domain.Currency) (*KeyPair, error)
}

// LedgerConfirmer settles a transaction and stamps its chain metadata.
// Confirm runs inside the ledger's DB transaction before insertion.
type LedgerConfirmer interface {
	Confirm(ctx context.Context, t *domain.Transaction) error
}

// LedgerObserver receives committed balance mutations (metrics).
type LedgerObserver interface {
	ObserveCredit(currency domain.Currency, amount decimal.Decimal)
	ObserveDebit(currency domain.Currency, amount, fee decimal.Decimal)
}

// PriceSource is the external market data feed.
type PriceSource interface {
	Fetch(ctx context.Context) ([]domain.CryptoPrice, error)
}

// PriceCache stores the last live quote set.
type PriceCache interface {
	Get(ctx context.Context) ([]domain.CryptoPrice, error) // nil, nil on miss
	Set(ctx context.Context, prices []domain.CryptoPrice, ttl time.Duration) error
}

// RateLimitResult holds the outcome of a rate limit check.
type RateLimitResult struct {
	Allowed   bool
	Limit     int64
	Remaining int64
	ResetAt   int64 // Unix timestamp
}

// RateLimiter counts requests per key in fixed windows.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (*RateLimitResult, error)
}

// --- Service Ports (Business Logic) ---

// RegisterUserRequest holds the self-service signup input.
type RegisterUserRequest struct {
	Username  string
	Email     string
	Password  string
	FirstName *string
	LastName  *string
	Phone     *string
}

// UserSession is returned by user registration and login.
type UserSession struct {
	User      *domain.User
	Wallets   []domain.Wallet
	Token     string
	ExpiresAt time.Time
}

// AdminSession is returned by admin login.
type AdminSession struct {
	Admin     *domain.Admin
	Token     string
	ExpiresAt time.Time
}

// UpdateProfileRequest carries optional profile fields; nil leaves a field unchanged.
type UpdateProfileRequest struct {
	FirstName          *string
	LastName           *string
	Phone              *string
	ProfileImage       *string
	FingerprintEnabled *bool
}

// SetBlockStateRequest toggles a user's block flag on behalf of an admin.
type SetBlockStateRequest struct {
	UserID  uuid.UUID
	Blocked bool
	Reason  string
	AdminID uuid.UUID
}

// RegisterAdminRequest creates an operator account. With ActingAdminID set,
// create_admin is recorded in the same transaction.
type RegisterAdminRequest struct {
	Username      string
	Email         string
	Password      string
	Role          domain.AdminRole
	ActingAdminID *uuid.UUID
}

// IdentityService covers accounts, credentials and block state.
type IdentityService interface {
	RegisterUser(ctx context.Context, req RegisterUserRequest) (*UserSession, error)
	AuthenticateUser(ctx context.Context, username, password string) (*UserSession, error)
	AuthenticateAdmin(ctx context.Context, username, password string) (*AdminSession, error)
	RegisterAdmin(ctx context.Context, req RegisterAdminRequest) (*domain.Admin, error)
	GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetAdmin(ctx context.Context, id uuid.UUID) (*domain.Admin, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, req UpdateProfileRequest) (*domain.User, error)
	SetBlockState(ctx context.Context, req SetBlockStateRequest) (*domain.User, error)
}

// CreditSource says which path initiated a credit.
type CreditSource string

const (
	CreditSourceAdmin       CreditSource = "admin"
	CreditSourceSelfService CreditSource = "self_service"
)

// CreditRequest increases a wallet balance.
type CreditRequest struct {
	UserID        uuid.UUID
	Currency      domain.Currency
	Amount        decimal.Decimal
	Source        CreditSource
	ActingAdminID *uuid.UUID // required for CreditSourceAdmin
	FromAddress   string
	Note          string
	AutoProvision bool
}

// CreditResult is the updated wallet plus its receive record.
type CreditResult struct {
	Wallet      *domain.Wallet      `json:"wallet"`
	Transaction *domain.Transaction `json:"transaction"`
}

// DebitRequest sends funds out of a wallet.
type DebitRequest struct {
	UserID    uuid.UUID
	Currency  domain.Currency
	Amount    decimal.Decimal
	ToAddress string
}

// LedgerService owns every balance mutation.
type LedgerService interface {
	Provision(ctx context.Context, userID uuid.UUID, currency domain.Currency) (*domain.Wallet, error)
	ProvisionTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID, currency domain.Currency) (*domain.Wallet, error)
	Credit(ctx context.Context, req CreditRequest) (*CreditResult, error)
	Debit(ctx context.Context, req DebitRequest) (*domain.Transaction, error)
	Wallets(ctx context.Context, userID uuid.UUID) ([]domain.Wallet, error)
	Wallet(ctx context.Context, userID uuid.UUID, currency domain.Currency) (*domain.Wallet, error)
}

// TransactionLogService is the read side of the transaction log.
type TransactionLogService interface {
	ListForUser(ctx context.Context, params TransactionListParams) (pagination.Page[domain.Transaction], error)
	ListAll(ctx context.Context, page pagination.Params) (pagination.Page[domain.TransactionWithOwner], error)
}

// AuditService appends admin actions. Record commits on its own; RecordTx
// joins the caller's transaction so the entry commits with the mutation.
type AuditService interface {
	Record(ctx context.Context, action *domain.AdminAction) error
	RecordTx(ctx context.Context, tx pgx.Tx, action *domain.AdminAction) error
	List(ctx context.Context, params AdminActionListParams) (pagination.Page[domain.AdminAction], error)
	Recent(ctx context.Context, limit int) ([]domain.AdminAction, error)
}

// SubmitKYCRequest is a user's verification submission.
type SubmitKYCRequest struct {
	DocumentType   string
	DocumentNumber string
	DocumentFront  *string
	DocumentBack   *string
	Selfie         *string
}

// KYCStatusView answers "where is my verification".
type KYCStatusView struct {
	Status domain.KYCStatus  `json:"status"`
	Record *domain.KYCRecord `json:"record,omitempty"`
}

// ReviewKYCRequest is an admin verdict on a pending record.
type ReviewKYCRequest struct {
	RecordID uuid.UUID
	Decision domain.KYCDecision
	Notes    string
	AdminID  uuid.UUID
}

// KYCService handles verification submissions and reviews.
type KYCService interface {
	Submit(ctx context.Context, userID uuid.UUID, req SubmitKYCRequest) (*domain.KYCRecord, error)
	Status(ctx context.Context, userID uuid.UUID) (*KYCStatusView, error)
	Review(ctx context.Context, req ReviewKYCRequest) (*domain.KYCRecord, error)
	List(ctx context.Context, params KYCListParams) (pagination.Page[domain.KYCRecord], error)
}

// PriceQuote is a full price table and where it came from.
type PriceQuote struct {
	Prices    []domain.CryptoPrice `json:"prices"`
	Source    domain.PriceSource   `json:"source"`
	FetchedAt time.Time            `json:"fetched_at"`
}

// PriceService serves market prices, never failing on feed errors.
type PriceService interface {
	Prices(ctx context.Context) (*PriceQuote, error)
}

// Session is a resolved request principal with a live account behind it.
type Session struct {
	Principal Principal
	User      *domain.User
	Admin     *domain.Admin
	ExpiresAt time.Time
	// Inactive is the Forbidden error for a blocked user or a deactivated
	// admin, nil otherwise. Routes that tolerate blocked users ignore it.
	Inactive error
}

// SessionGateway turns an Authorization header into a session. Missing,
// malformed, expired and orphaned tokens fail with an Unauthorized error.
type SessionGateway interface {
	Resolve(ctx context.Context, authHeader string) (*Session, error)
}
