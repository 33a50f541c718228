package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"custodial-wallet/internal/core/domain"
	"custodial-wallet/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

var (
	// errNegativeBalance mirrors the wallets_balance_check constraint.
	errNegativeBalance = errors.New("wallet balance cannot be negative")
	// errBalanceOverflow mirrors NUMERIC(20,8) rejecting a wider value.
	errBalanceOverflow = errors.New("wallet balance exceeds numeric precision")
)

// WalletRepo implements ports.WalletRepository.
type WalletRepo struct {
	s *Store
}

func NewWalletRepo(s *Store) *WalletRepo {
	return &WalletRepo{s: s}
}

func (r *WalletRepo) Create(ctx context.Context, tx pgx.Tx, w *domain.Wallet) error {
	return r.s.mutate(tx, func() error {
		for _, existing := range r.s.wallets {
			if existing.UserID == w.UserID && existing.Currency == w.Currency {
				return &ports.DuplicateError{Constraint: ports.ConstraintWalletCurrency}
			}
			if existing.Address == w.Address {
				return &ports.DuplicateError{Constraint: ports.ConstraintWalletAddress}
			}
		}
		cp := *w
		r.s.wallets[w.ID] = &cp
		r.s.walletOrder = append(r.s.walletOrder, w.ID)
		return nil
	}, func() {
		delete(r.s.wallets, w.ID)
		r.s.walletOrder = removeID(r.s.walletOrder, w.ID)
	})
}

func (r *WalletRepo) GetByUserAndCurrency(ctx context.Context, userID uuid.UUID, currency domain.Currency) (*domain.Wallet, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, w := range r.s.wallets {
		if w.UserID == userID && w.Currency == currency {
			cp := *w
			return &cp, nil
		}
	}
	return nil, nil
}

// GetByUserAndCurrencyForUpdate needs no row lock; the open Tx already
// excludes every other writer.
func (r *WalletRepo) GetByUserAndCurrencyForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID, currency domain.Currency) (*domain.Wallet, error) {
	return r.GetByUserAndCurrency(ctx, userID, currency)
}

func (r *WalletRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Wallet, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.Wallet{}
	for _, id := range r.s.walletOrder {
		if w := r.s.wallets[id]; w.UserID == userID {
			out = append(out, *w)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *WalletRepo) List(ctx context.Context, params ports.WalletListParams) ([]domain.WalletWithOwner, int64, error) {
	r.s.mu.RLock()
	var out []domain.WalletWithOwner
	for _, id := range r.s.walletOrder {
		w := r.s.wallets[id]
		if params.Currency != nil && w.Currency != *params.Currency {
			continue
		}
		if params.UserID != nil && w.UserID != *params.UserID {
			continue
		}
		ww := domain.WalletWithOwner{Wallet: *w}
		if u, ok := r.s.users[w.UserID]; ok {
			ww.Owner = u.Summary()
		}
		out = append(out, ww)
	}
	r.s.mu.RUnlock()

	newestFirst(out, func(w domain.WalletWithOwner) int64 { return w.CreatedAt.UnixNano() })
	items, total := paginate(out, params.Page)
	return items, total, nil
}

func (r *WalletRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, balance decimal.Decimal) error {
	var prev decimal.Decimal
	var prevUpdated time.Time
	return r.s.mutate(tx, func() error {
		w, ok := r.s.wallets[walletID]
		if !ok {
			return fmt.Errorf("wallet not found: %s", walletID)
		}
		if balance.IsNegative() {
			return errNegativeBalance
		}
		if !domain.WithinStorage(balance) {
			return errBalanceOverflow
		}
		prev, prevUpdated = w.Balance, w.UpdatedAt
		w.Balance = balance
		w.UpdatedAt = time.Now().UTC()
		return nil
	}, func() {
		if w, ok := r.s.wallets[walletID]; ok {
			w.Balance, w.UpdatedAt = prev, prevUpdated
		}
	})
}

func (r *WalletRepo) Stats(ctx context.Context) ([]ports.CurrencyTotal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	byCurrency := make(map[domain.Currency]*ports.CurrencyTotal)
	for _, w := range r.s.wallets {
		ct, ok := byCurrency[w.Currency]
		if !ok {
			ct = &ports.CurrencyTotal{Currency: w.Currency, TotalBalance: decimal.Zero}
			byCurrency[w.Currency] = ct
		}
		ct.Wallets++
		ct.TotalBalance = ct.TotalBalance.Add(w.Balance)
	}
	out := make([]ports.CurrencyTotal, 0, len(byCurrency))
	for _, ct := range byCurrency {
		out = append(out, *ct)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Currency < out[j].Currency })
	return out, nil
}
