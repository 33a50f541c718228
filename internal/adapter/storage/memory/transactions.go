package memory

import (
	"context"
	"time"

	"custodial-wallet/internal/core/domain"
	"custodial-wallet/internal/core/ports"
	"custodial-wallet/pkg/pagination"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TransactionRepo implements ports.TransactionRepository.
type TransactionRepo struct {
	s *Store
}

func NewTransactionRepo(s *Store) *TransactionRepo {
	return &TransactionRepo{s: s}
}

func (r *TransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	return r.s.mutate(tx, func() error {
		for _, existing := range r.s.transactions {
			if existing.TxHash == t.TxHash {
				return &ports.DuplicateError{Constraint: ports.ConstraintTxHash}
			}
		}
		cp := *t
		r.s.transactions = append(r.s.transactions, &cp)
		return nil
	}, func() {
		r.s.transactions = removeTransaction(r.s.transactions, t.ID)
	})
}

// ListByUser returns the user's history newest first.
func (r *TransactionRepo) ListByUser(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
	r.s.mu.RLock()
	var out []domain.Transaction
	for _, t := range r.s.transactions {
		if t.UserID != params.UserID {
			continue
		}
		if params.Currency != nil && t.Currency != *params.Currency {
			continue
		}
		out = append(out, *t)
	}
	r.s.mu.RUnlock()

	newestFirst(out, func(t domain.Transaction) int64 { return t.CreatedAt.UnixNano() })
	items, total := paginate(out, params.Page)
	return items, total, nil
}

func (r *TransactionRepo) ListAll(ctx context.Context, page pagination.Params) ([]domain.TransactionWithOwner, int64, error) {
	r.s.mu.RLock()
	out := make([]domain.TransactionWithOwner, 0, len(r.s.transactions))
	for _, t := range r.s.transactions {
		tw := domain.TransactionWithOwner{Transaction: *t}
		if u, ok := r.s.users[t.UserID]; ok {
			tw.Owner = u.Summary()
		}
		out = append(out, tw)
	}
	r.s.mu.RUnlock()

	newestFirst(out, func(t domain.TransactionWithOwner) int64 { return t.CreatedAt.UnixNano() })
	items, total := paginate(out, page)
	return items, total, nil
}

func (r *TransactionRepo) Stats(ctx context.Context) (*ports.TransactionStats, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	since := time.Now().Add(-24 * time.Hour)
	st := &ports.TransactionStats{}
	for _, t := range r.s.transactions {
		st.Total++
		switch t.Direction {
		case domain.DirectionSend:
			st.Sends++
		case domain.DirectionReceive:
			st.Receives++
		}
		if t.CreatedAt.After(since) {
			st.Last24h++
		}
	}
	return st, nil
}

func removeTransaction(list []*domain.Transaction, id uuid.UUID) []*domain.Transaction {
	for i, t := range list {
		if t.ID == id {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
