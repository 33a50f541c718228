package postgres

import (
	"context"
	"testing"
	"time"

	"custodial-wallet/internal/core/domain"
	"custodial-wallet/internal/core/ports"
	"custodial-wallet/pkg/pagination"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWallet(userID uuid.UUID) *domain.Wallet {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Wallet{
		ID:           uuid.New(),
		UserID:       userID,
		Currency:     domain.CurrencyBTC,
		Address:      "1BoatSLRHtKNngkdXEeobR76b53LETtpyT",
		SecretKeyEnc: "aes_encrypted_wif",
		Balance:      decimal.RequireFromString("1.5"),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func walletColumnNames() []string {
	return []string{"id", "user_id", "currency", "address", "secret_key_enc", "balance", "created_at", "updated_at"}
}

func walletRow(w *domain.Wallet) *pgxmock.Rows {
	return pgxmock.NewRows(walletColumnNames()).AddRow(
		w.ID, w.UserID, w.Currency, w.Address, w.SecretKeyEnc, w.Balance.String(), w.CreatedAt, w.UpdatedAt,
	)
}

func TestWalletRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	w := newTestWallet(uuid.New())

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO wallets").
		WithArgs(w.ID, w.UserID, w.Currency, w.Address, w.SecretKeyEnc, "1.5", w.CreatedAt, w.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), tx, w)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_Create_DuplicateCurrency(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO wallets").
		WithArgs(anyArgs(8)...).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: ports.ConstraintWalletCurrency})

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), tx, newTestWallet(uuid.New()))
	assert.True(t, ports.IsDuplicate(err, ports.ConstraintWalletCurrency))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_GetByUserAndCurrency(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	w := newTestWallet(uuid.New())

	mock.ExpectQuery("SELECT .+ FROM wallets WHERE user_id").
		WithArgs(w.UserID, domain.CurrencyBTC).
		WillReturnRows(walletRow(w))

	got, err := repo.GetByUserAndCurrency(context.Background(), w.UserID, domain.CurrencyBTC)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, w.ID, got.ID)
	assert.True(t, got.Balance.Equal(decimal.RequireFromString("1.5")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_GetByUserAndCurrency_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	userID := uuid.New()

	mock.ExpectQuery("SELECT .+ FROM wallets WHERE user_id").
		WithArgs(userID, domain.CurrencyETH).
		WillReturnError(pgx.ErrNoRows)

	got, err := repo.GetByUserAndCurrency(context.Background(), userID, domain.CurrencyETH)
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestWalletRepo_GetByUserAndCurrencyForUpdate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	w := newTestWallet(uuid.New())

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM wallets WHERE user_id .+ FOR UPDATE").
		WithArgs(w.UserID, domain.CurrencyBTC).
		WillReturnRows(walletRow(w))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	got, err := repo.GetByUserAndCurrencyForUpdate(context.Background(), tx, w.UserID, domain.CurrencyBTC)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, w.ID, got.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_UpdateBalance(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	walletID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE wallets SET balance").
		WithArgs("0.499", walletID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.UpdateBalance(context.Background(), tx, walletID, decimal.RequireFromString("0.499"))
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_UpdateBalance_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	walletID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE wallets SET balance").
		WithArgs("1", walletID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.UpdateBalance(context.Background(), tx, walletID, decimal.NewFromInt(1))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "wallet not found")
}

func TestWalletRepo_ListByUser(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	userID := uuid.New()
	btc := newTestWallet(userID)
	usdt := newTestWallet(userID)
	usdt.Currency = domain.CurrencyUSDT
	usdt.Address = "0x52908400098527886E0F7030069857D2E4169EE7"

	rows := walletRow(btc).AddRow(usdt.ID, usdt.UserID, usdt.Currency, usdt.Address, usdt.SecretKeyEnc,
		usdt.Balance.String(), usdt.CreatedAt, usdt.UpdatedAt)
	mock.ExpectQuery("SELECT .+ FROM wallets WHERE user_id .+ ORDER BY created_at ASC").
		WithArgs(userID).
		WillReturnRows(rows)

	wallets, err := repo.ListByUser(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, wallets, 2)
	assert.Equal(t, domain.CurrencyUSDT, wallets[1].Currency)
}

func TestWalletRepo_List_FilteredByCurrency(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	w := newTestWallet(uuid.New())
	currency := domain.CurrencyBTC

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM wallets w WHERE w.currency = \$1`).
		WithArgs(currency).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))
	mock.ExpectQuery("SELECT .+ FROM wallets w JOIN users u").
		WithArgs(currency, 20, 0).
		WillReturnRows(pgxmock.NewRows(append(walletColumnNames(), "username", "email", "is_blocked", "is_verified")).
			AddRow(w.ID, w.UserID, w.Currency, w.Address, w.SecretKeyEnc, "1.5", w.CreatedAt, w.UpdatedAt,
				"alice", "alice@example.com", false, true))

	items, total, err := repo.List(context.Background(), ports.WalletListParams{
		Currency: &currency,
		Page:     pagination.New(1, 0, 20),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, "alice", items[0].Owner.Username)
	assert.Equal(t, w.UserID, items[0].Owner.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_Stats(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	mock.ExpectQuery("SELECT currency, COUNT.+FROM wallets GROUP BY currency").
		WillReturnRows(pgxmock.NewRows([]string{"currency", "count", "sum"}).
			AddRow(domain.CurrencyBTC, int64(3), "2.25").
			AddRow(domain.CurrencyUSDT, int64(3), "0"))

	stats, err := repo.Stats(context.Background())
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.True(t, stats[0].TotalBalance.Equal(decimal.RequireFromString("2.25")))
	assert.Equal(t, int64(3), stats[1].Wallets)
}
