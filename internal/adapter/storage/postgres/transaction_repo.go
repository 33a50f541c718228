package postgres

import (
	"context"
	"fmt"

	"custodial-wallet/internal/core/domain"
	"custodial-wallet/internal/core/ports"
	"custodial-wallet/pkg/pagination"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const transactionColumns = `t.id, t.user_id, t.from_wallet_id, t.to_wallet_id, t.from_address, t.to_address,
	t.currency, t.amount::text, t.fee::text, t.tx_hash, t.block_number, t.block_hash, t.gas_used, t.gas_price,
	t.contract_address, t.status, t.transaction_type, t.created_at, t.confirmed_at`

// TransactionRepo implements ports.TransactionRepository.
type TransactionRepo struct {
	pool Pool
}

func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

// Create inserts a transaction within the ledger's database transaction.
func (r *TransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	query := `INSERT INTO transactions (id, user_id, from_wallet_id, to_wallet_id, from_address, to_address,
		currency, amount, fee, tx_hash, block_number, block_hash, gas_used, gas_price, contract_address,
		status, transaction_type, created_at, confirmed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`

	_, err := tx.Exec(ctx, query,
		t.ID, t.UserID, t.FromWalletID, t.ToWalletID, t.FromAddress, t.ToAddress,
		t.Currency, t.Amount.String(), t.Fee.String(), t.TxHash, t.BlockNumber, t.BlockHash,
		t.GasUsed, t.GasPrice, t.ContractAddress, t.Status, t.Direction, t.CreatedAt, t.ConfirmedAt,
	)
	if err != nil {
		return wrapErr("insert transaction", err)
	}
	return nil
}

// ListByUser returns a user's history newest first, optionally for one currency.
func (r *TransactionRepo) ListByUser(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
	where := " WHERE t.user_id = $1"
	args := []any{params.UserID}
	if params.Currency != nil {
		args = append(args, *params.Currency)
		where += " AND t.currency = $2"
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM transactions t`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	args = append(args, params.Page.PerPage, params.Page.Offset())
	query := fmt.Sprintf(`SELECT %s FROM transactions t%s ORDER BY t.created_at DESC LIMIT $%d OFFSET $%d`,
		transactionColumns, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	out := []domain.Transaction{}
	for rows.Next() {
		var t domain.Transaction
		if err := scanTransaction(rows, &t); err != nil {
			return nil, 0, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, total, nil
}

// ListAll returns every transaction with its owner, newest first.
func (r *TransactionRepo) ListAll(ctx context.Context, page pagination.Params) ([]domain.TransactionWithOwner, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	query := `SELECT ` + transactionColumns + `, u.username, u.email, u.is_blocked, u.is_verified
		FROM transactions t JOIN users u ON u.id = t.user_id
		ORDER BY t.created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, page.PerPage, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list all transactions: %w", err)
	}
	defer rows.Close()

	out := []domain.TransactionWithOwner{}
	for rows.Next() {
		var tw domain.TransactionWithOwner
		if err := scanTransaction(rows, &tw.Transaction,
			&tw.Owner.Username, &tw.Owner.Email, &tw.Owner.IsBlocked, &tw.Owner.IsVerified); err != nil {
			return nil, 0, err
		}
		tw.Owner.ID = tw.UserID
		out = append(out, tw)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, total, nil
}

func (r *TransactionRepo) Stats(ctx context.Context) (*ports.TransactionStats, error) {
	query := `SELECT COUNT(*),
		COUNT(*) FILTER (WHERE transaction_type = 'send'),
		COUNT(*) FILTER (WHERE transaction_type = 'receive'),
		COUNT(*) FILTER (WHERE created_at > NOW() - INTERVAL '24 hours')
		FROM transactions`

	st := &ports.TransactionStats{}
	if err := r.pool.QueryRow(ctx, query).Scan(&st.Total, &st.Sends, &st.Receives, &st.Last24h); err != nil {
		return nil, fmt.Errorf("transaction stats: %w", err)
	}
	return st, nil
}

// scanTransaction scans transactionColumns into t, followed by any extra destinations.
func scanTransaction(row pgx.Row, t *domain.Transaction, extra ...any) error {
	var amount, fee string
	dest := []any{
		&t.ID, &t.UserID, &t.FromWalletID, &t.ToWalletID, &t.FromAddress, &t.ToAddress,
		&t.Currency, &amount, &fee, &t.TxHash, &t.BlockNumber, &t.BlockHash, &t.GasUsed, &t.GasPrice,
		&t.ContractAddress, &t.Status, &t.Direction, &t.CreatedAt, &t.ConfirmedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return fmt.Errorf("scan transaction: %w", err)
	}
	var err error
	if t.Amount, err = decimal.NewFromString(amount); err != nil {
		return fmt.Errorf("parse transaction amount: %w", err)
	}
	if t.Fee, err = decimal.NewFromString(fee); err != nil {
		return fmt.Errorf("parse transaction fee: %w", err)
	}
	return nil
}
