package postgres

import (
	"context"
	"testing"
	"time"

	"custodial-wallet/internal/core/domain"
	"custodial-wallet/internal/core/ports"
	"custodial-wallet/pkg/pagination"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTransaction(userID uuid.UUID) *domain.Transaction {
	now := time.Now().UTC().Truncate(time.Microsecond)
	walletID := uuid.New()
	block := int64(18_000_000)
	blockHash := "0x" + "ab"
	return &domain.Transaction{
		ID:           uuid.New(),
		UserID:       userID,
		FromWalletID: &walletID,
		FromAddress:  "1BoatSLRHtKNngkdXEeobR76b53LETtpyT",
		ToAddress:    "1BvBMSEYstWetqTFn5Au4m4GFg7xJaNVN2",
		Currency:     domain.CurrencyBTC,
		Amount:       decimal.RequireFromString("0.5"),
		Fee:          decimal.RequireFromString("0.001"),
		TxHash:       "0xdeadbeef",
		BlockNumber:  &block,
		BlockHash:    &blockHash,
		Status:       domain.TransactionStatusConfirmed,
		Direction:    domain.DirectionSend,
		CreatedAt:    now,
		ConfirmedAt:  &now,
	}
}

func transactionColumnNames() []string {
	return []string{"id", "user_id", "from_wallet_id", "to_wallet_id", "from_address", "to_address",
		"currency", "amount", "fee", "tx_hash", "block_number", "block_hash", "gas_used", "gas_price",
		"contract_address", "status", "transaction_type", "created_at", "confirmed_at"}
}

func transactionValues(t *domain.Transaction) []any {
	return []any{t.ID, t.UserID, t.FromWalletID, t.ToWalletID, t.FromAddress, t.ToAddress,
		t.Currency, t.Amount.String(), t.Fee.String(), t.TxHash, t.BlockNumber, t.BlockHash, t.GasUsed, t.GasPrice,
		t.ContractAddress, t.Status, t.Direction, t.CreatedAt, t.ConfirmedAt}
}

func TestTransactionRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	txn := newTestTransaction(uuid.New())

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO transactions").
		WithArgs(transactionValues(txn)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), tx, txn)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_Create_DuplicateHash(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO transactions").
		WithArgs(anyArgs(19)...).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: ports.ConstraintTxHash})

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), tx, newTestTransaction(uuid.New()))
	assert.True(t, ports.IsDuplicate(err, ports.ConstraintTxHash))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_ListByUser_WithCurrency(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	userID := uuid.New()
	txn := newTestTransaction(userID)
	currency := domain.CurrencyBTC

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM transactions t WHERE t.user_id = \$1 AND t.currency = \$2`).
		WithArgs(userID, currency).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))
	mock.ExpectQuery(`SELECT .+ FROM transactions t WHERE .+ ORDER BY t.created_at DESC LIMIT \$3 OFFSET \$4`).
		WithArgs(userID, currency, 20, 0).
		WillReturnRows(pgxmock.NewRows(transactionColumnNames()).AddRow(transactionValues(txn)...))

	items, total, err := repo.ListByUser(context.Background(), ports.TransactionListParams{
		UserID:   userID,
		Currency: &currency,
		Page:     pagination.New(1, 20, 20),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, txn.TxHash, items[0].TxHash)
	assert.True(t, items[0].Total().Equal(decimal.RequireFromString("0.501")))
	assert.Equal(t, int64(18_000_000), *items[0].BlockNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_ListAll(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	txn := newTestTransaction(uuid.New())

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM transactions`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))
	mock.ExpectQuery("SELECT .+ FROM transactions t JOIN users u").
		WithArgs(5, 5).
		WillReturnRows(pgxmock.NewRows(append(transactionColumnNames(), "username", "email", "is_blocked", "is_verified")).
			AddRow(append(transactionValues(txn), "bob", "bob@example.com", true, false)...))

	items, total, err := repo.ListAll(context.Background(), pagination.New(2, 5, 20))
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, "bob", items[0].Owner.Username)
	assert.True(t, items[0].Owner.IsBlocked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_Stats(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	mock.ExpectQuery("SELECT COUNT.+FROM transactions").
		WillReturnRows(pgxmock.NewRows([]string{"total", "sends", "receives", "last_24h"}).
			AddRow(int64(7), int64(3), int64(4), int64(2)))

	st, err := repo.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &ports.TransactionStats{Total: 7, Sends: 3, Receives: 4, Last24h: 2}, st)
}
