// Package memory is a process-local storage backend implementing the same
// repository ports as the postgres adapter. Write transactions are serialised
// by a store-wide lock and undone on rollback.
package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"custodial-wallet/internal/core/domain"
	"custodial-wallet/pkg/pagination"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var errSQLUnsupported = errors.New("memory store does not execute SQL")

// Store holds every table in memory.
type Store struct {
	txMu sync.Mutex   // held for the lifetime of a write transaction
	mu   sync.RWMutex // guards the maps below

	users        map[uuid.UUID]*domain.User
	userOrder    []uuid.UUID
	admins       map[uuid.UUID]*domain.Admin
	wallets      map[uuid.UUID]*domain.Wallet
	walletOrder  []uuid.UUID
	transactions []*domain.Transaction
	actions      []*domain.AdminAction
	kyc          map[uuid.UUID]*domain.KYCRecord
	kycOrder     []uuid.UUID
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		users:   make(map[uuid.UUID]*domain.User),
		admins:  make(map[uuid.UUID]*domain.Admin),
		wallets: make(map[uuid.UUID]*domain.Wallet),
		kyc:     make(map[uuid.UUID]*domain.KYCRecord),
	}
}

// Tx is the memory backend's pgx.Tx. Only Commit and Rollback are meaningful.
type Tx struct {
	store *Store
	undo  []func()
	done  bool
}

// mutate applies fn under the write lock and remembers revert for rollback.
// A nil or foreign tx applies without undo.
func (s *Store) mutate(tx pgx.Tx, fn func() error, revert func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fn(); err != nil {
		return err
	}
	if mt, ok := tx.(*Tx); ok && mt != nil && revert != nil {
		mt.undo = append(mt.undo, revert)
	}
	return nil
}

func (t *Tx) Begin(ctx context.Context) (pgx.Tx, error) {
	return nil, errors.New("memory store does not support nested transactions")
}

func (t *Tx) Commit(ctx context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	t.done = true
	t.undo = nil
	t.store.txMu.Unlock()
	return nil
}

func (t *Tx) Rollback(ctx context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	t.done = true
	t.store.mu.Lock()
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.store.mu.Unlock()
	t.undo = nil
	t.store.txMu.Unlock()
	return nil
}

func (t *Tx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, errSQLUnsupported
}

func (t *Tx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }

func (t *Tx) LargeObjects() pgx.LargeObjects { return pgx.LargeObjects{} }

func (t *Tx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, errSQLUnsupported
}

func (t *Tx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, errSQLUnsupported
}

func (t *Tx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errSQLUnsupported
}

func (t *Tx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return errRow{err: errSQLUnsupported}
}

func (t *Tx) Conn() *pgx.Conn { return nil }

type errRow struct{ err error }

func (r errRow) Scan(dest ...any) error { return r.err }

// Transactor implements ports.DBTransactor for the memory store.
type Transactor struct {
	store *Store
}

func NewTransactor(store *Store) *Transactor {
	return &Transactor{store: store}
}

// Begin blocks until no other write transaction is open.
func (t *Transactor) Begin(ctx context.Context) (pgx.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t.store.txMu.Lock()
	return &Tx{store: t.store}, nil
}

// HealthCheck implements ports.HealthChecker; the memory store is always up.
type HealthCheck struct{}

func NewHealthCheck() *HealthCheck { return &HealthCheck{} }

func (HealthCheck) Ping(ctx context.Context) error { return nil }

func (HealthCheck) Name() string { return "memory" }

// paginate slices an already ordered result set.
func paginate[T any](items []T, p pagination.Params) ([]T, int64) {
	total := int64(len(items))
	start := p.Offset()
	if start < 0 || start >= len(items) {
		return []T{}, total
	}
	end := start + p.PerPage
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], total
}

func containsFold(s *string, needle string) bool {
	return s != nil && strings.Contains(strings.ToLower(*s), needle)
}

// newestFirst orders by CreatedAt desc, later insertions first on ties.
func newestFirst[T any](items []T, createdAt func(T) int64) {
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	sort.SliceStable(items, func(i, j int) bool {
		return createdAt(items[i]) > createdAt(items[j])
	})
}
