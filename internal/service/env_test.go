package service

import (
	"context"
	"testing"

	"custodial-wallet/internal/adapter/storage/memory"
	"custodial-wallet/internal/chain"
	"custodial-wallet/internal/core/domain"
	"custodial-wallet/internal/core/ports"
	"custodial-wallet/pkg/pagination"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var pagination100 = pagination.New(1, 100, 100)

// testEnv wires every service over one memory store.
type testEnv struct {
	store      *memory.Store
	users      *memory.UserRepo
	admins     *memory.AdminRepo
	wallets    *memory.WalletRepo
	txs        *memory.TransactionRepo
	actions    *memory.AdminActionRepo
	kycRecords *memory.KYCRepo
	transactor *memory.Transactor

	hasher   *Argon2HashService
	tokens   *JWTTokenService
	audit    *AuditServiceImpl
	ledger   *LedgerServiceImpl
	identity *IdentityServiceImpl
	txLog    *TransactionLogServiceImpl
	kyc      *KYCServiceImpl
	admin    *AdminServiceImpl
	gateway  *SessionGatewayImpl
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithConfirmer(t, chain.NewSyntheticConfirmer())
}

func newTestEnvWithConfirmer(t *testing.T, confirmer ports.LedgerConfirmer) *testEnv {
	t.Helper()
	store := memory.NewStore()
	e := &testEnv{
		store:      store,
		users:      memory.NewUserRepo(store),
		admins:     memory.NewAdminRepo(store),
		wallets:    memory.NewWalletRepo(store),
		txs:        memory.NewTransactionRepo(store),
		actions:    memory.NewAdminActionRepo(store),
		kycRecords: memory.NewKYCRepo(store),
		transactor: memory.NewTransactor(store),
		hasher:     newTestHasher(),
		tokens:     newTestTokenService(t),
	}
	enc, err := NewAESEncryptionService(testAESKey)
	require.NoError(t, err)

	log := zerolog.Nop()
	e.audit = NewAuditService(e.actions, log)
	e.ledger = NewLedgerService(e.users, e.wallets, e.txs, e.audit, e.transactor,
		chain.NewGenerator(&chaincfg.MainNetParams), enc, confirmer, nil, log)
	e.identity = NewIdentityService(e.users, e.admins, e.ledger, e.audit, e.transactor,
		e.hasher, e.tokens, []domain.Currency{domain.CurrencyBTC, domain.CurrencyUSDT}, log)
	e.txLog = NewTransactionLogService(e.txs)
	e.kyc = NewKYCService(e.kycRecords, e.users, e.audit, e.transactor, log)
	e.admin = NewAdminService(e.identity, e.ledger, e.txLog, e.audit, e.kyc, e.users, e.wallets, e.txs, log)
	e.gateway = NewSessionGateway(e.tokens, e.users, e.admins)
	return e
}

func (e *testEnv) registerUser(t *testing.T, username string) *ports.UserSession {
	t.Helper()
	s, err := e.identity.RegisterUser(context.Background(), ports.RegisterUserRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	return s
}

func (e *testEnv) createAdmin(t *testing.T, username string) *domain.Admin {
	t.Helper()
	a, err := e.identity.RegisterAdmin(context.Background(), ports.RegisterAdminRequest{
		Username: username,
		Email:    username + "@ops.example.com",
		Password: "admin-password",
	})
	require.NoError(t, err)
	return a
}

// verify marks the user KYC-approved directly in the store.
func (e *testEnv) verify(t *testing.T, userID uuid.UUID) {
	t.Helper()
	require.NoError(t, e.users.SetVerified(context.Background(), nil, userID, true))
}

func (e *testEnv) balance(t *testing.T, userID uuid.UUID, c domain.Currency) decimal.Decimal {
	t.Helper()
	w, err := e.wallets.GetByUserAndCurrency(context.Background(), userID, c)
	require.NoError(t, err)
	require.NotNil(t, w)
	return w.Balance
}

func (e *testEnv) actionsOf(t *testing.T, adminID uuid.UUID) []domain.AdminAction {
	t.Helper()
	items, _, err := e.actions.List(context.Background(), ports.AdminActionListParams{
		AdminID: &adminID,
		Page:    pagination100,
	})
	require.NoError(t, err)
	return items
}

func (e *testEnv) transactionCount(t *testing.T) int64 {
	t.Helper()
	stats, err := e.txs.Stats(context.Background())
	require.NoError(t, err)
	return stats.Total
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type decimalMatcher struct{ want decimal.Decimal }

func (m decimalMatcher) Matches(x any) bool {
	d, ok := x.(decimal.Decimal)
	return ok && d.Equal(m.want)
}

func (m decimalMatcher) String() string { return "is numerically " + m.want.String() }

// decEq matches a decimal by value, ignoring its exponent.
func decEq(s string) gomock.Matcher {
	return decimalMatcher{want: dec(s)}
}

// mockTx implements pgx.Tx for gomock-driven tests and records the outcome.
type mockTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (m *mockTx) Rollback(_ context.Context) error {
	if !m.committed {
		m.rolledBack = true
	}
	return nil
}

func (m *mockTx) Commit(_ context.Context) error {
	m.committed = true
	return nil
}
