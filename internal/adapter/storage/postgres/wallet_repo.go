package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"custodial-wallet/internal/core/domain"
	"custodial-wallet/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Balances travel as text so no precision is lost crossing the driver.
const walletColumns = `id, user_id, currency, address, secret_key_enc, balance::text, created_at, updated_at`

// WalletRepo implements ports.WalletRepository.
type WalletRepo struct {
	pool Pool
}

func NewWalletRepo(pool Pool) *WalletRepo {
	return &WalletRepo{pool: pool}
}

// Create inserts a wallet inside the provisioning transaction.
func (r *WalletRepo) Create(ctx context.Context, tx pgx.Tx, w *domain.Wallet) error {
	query := `INSERT INTO wallets (id, user_id, currency, address, secret_key_enc, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := tx.Exec(ctx, query,
		w.ID, w.UserID, w.Currency, w.Address, w.SecretKeyEnc, w.Balance.String(), w.CreatedAt, w.UpdatedAt,
	)
	if err != nil {
		return wrapErr("insert wallet", err)
	}
	return nil
}

func (r *WalletRepo) GetByUserAndCurrency(ctx context.Context, userID uuid.UUID, currency domain.Currency) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1 AND currency = $2`
	return scanWallet(r.pool.QueryRow(ctx, query, userID, currency), "get wallet")
}

// GetByUserAndCurrencyForUpdate locks the wallet row. This MUST be called within a transaction.
func (r *WalletRepo) GetByUserAndCurrencyForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID, currency domain.Currency) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1 AND currency = $2 FOR UPDATE`
	return scanWallet(tx.QueryRow(ctx, query, userID, currency), "get wallet for update")
}

func (r *WalletRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1 ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list wallets by user: %w", err)
	}
	defer rows.Close()

	wallets := []domain.Wallet{}
	for rows.Next() {
		w, err := scanWallet(rows, "scan wallet")
		if err != nil {
			return nil, err
		}
		wallets = append(wallets, *w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallets: %w", err)
	}
	return wallets, nil
}

// List joins wallets with their owners for the admin view.
func (r *WalletRepo) List(ctx context.Context, params ports.WalletListParams) ([]domain.WalletWithOwner, int64, error) {
	var conds []string
	var args []any
	if params.Currency != nil {
		args = append(args, *params.Currency)
		conds = append(conds, fmt.Sprintf("w.currency = $%d", len(args)))
	}
	if params.UserID != nil {
		args = append(args, *params.UserID)
		conds = append(conds, fmt.Sprintf("w.user_id = $%d", len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM wallets w`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count wallets: %w", err)
	}

	args = append(args, params.Page.PerPage, params.Page.Offset())
	query := fmt.Sprintf(`SELECT w.id, w.user_id, w.currency, w.address, w.secret_key_enc, w.balance::text,
		w.created_at, w.updated_at, u.username, u.email, u.is_blocked, u.is_verified
		FROM wallets w JOIN users u ON u.id = w.user_id%s
		ORDER BY w.created_at DESC LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list wallets: %w", err)
	}
	defer rows.Close()

	out := []domain.WalletWithOwner{}
	for rows.Next() {
		var ww domain.WalletWithOwner
		var balance string
		if err := rows.Scan(
			&ww.ID, &ww.UserID, &ww.Currency, &ww.Address, &ww.SecretKeyEnc, &balance,
			&ww.CreatedAt, &ww.UpdatedAt,
			&ww.Owner.Username, &ww.Owner.Email, &ww.Owner.IsBlocked, &ww.Owner.IsVerified,
		); err != nil {
			return nil, 0, fmt.Errorf("scan wallet with owner: %w", err)
		}
		if ww.Balance, err = decimal.NewFromString(balance); err != nil {
			return nil, 0, fmt.Errorf("parse wallet balance: %w", err)
		}
		ww.Owner.ID = ww.UserID
		out = append(out, ww)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate wallets: %w", err)
	}
	return out, total, nil
}

// UpdateBalance writes the new balance within the caller's transaction.
// The wallets_balance_check constraint rejects negative values.
func (r *WalletRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, balance decimal.Decimal) error {
	query := `UPDATE wallets SET balance = $1, updated_at = NOW() WHERE id = $2`

	tag, err := tx.Exec(ctx, query, balance.String(), walletID)
	if err != nil {
		return fmt.Errorf("update wallet balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("wallet not found: %s", walletID)
	}
	return nil
}

func (r *WalletRepo) Stats(ctx context.Context) ([]ports.CurrencyTotal, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT currency, COUNT(*), COALESCE(SUM(balance), 0)::text FROM wallets GROUP BY currency ORDER BY currency`)
	if err != nil {
		return nil, fmt.Errorf("wallet stats: %w", err)
	}
	defer rows.Close()

	out := []ports.CurrencyTotal{}
	for rows.Next() {
		var ct ports.CurrencyTotal
		var sum string
		if err := rows.Scan(&ct.Currency, &ct.Wallets, &sum); err != nil {
			return nil, fmt.Errorf("scan wallet stats: %w", err)
		}
		if ct.TotalBalance, err = decimal.NewFromString(sum); err != nil {
			return nil, fmt.Errorf("parse wallet total: %w", err)
		}
		out = append(out, ct)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallet stats: %w", err)
	}
	return out, nil
}

func scanWallet(row pgx.Row, op string) (*domain.Wallet, error) {
	w := &domain.Wallet{}
	var balance string
	err := row.Scan(&w.ID, &w.UserID, &w.Currency, &w.Address, &w.SecretKeyEnc, &balance, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if w.Balance, err = decimal.NewFromString(balance); err != nil {
		return nil, fmt.Errorf("parse wallet balance: %w", err)
	}
	return w, nil
}
