package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"custodial-wallet/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const adminColumns = `id, username, email, password_hash, role, is_active, last_login, created_at, updated_at`

// AdminRepo implements ports.AdminRepository.
type AdminRepo struct {
	pool Pool
}

func NewAdminRepo(pool Pool) *AdminRepo {
	return &AdminRepo{pool: pool}
}

// Create inserts inside tx, or directly on the pool when tx is nil.
func (r *AdminRepo) Create(ctx context.Context, tx pgx.Tx, a *domain.Admin) error {
	query := `INSERT INTO admins (` + adminColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	args := []any{a.ID, a.Username, a.Email, a.PasswordHash, a.Role, a.IsActive, a.LastLogin, a.CreatedAt, a.UpdatedAt}

	var err error
	if tx != nil {
		_, err = tx.Exec(ctx, query, args...)
	} else {
		_, err = r.pool.Exec(ctx, query, args...)
	}
	if err != nil {
		return wrapErr("insert admin", err)
	}
	return nil
}

func (r *AdminRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Admin, error) {
	return r.get(ctx, "id", id)
}

func (r *AdminRepo) GetByUsername(ctx context.Context, username string) (*domain.Admin, error) {
	return r.get(ctx, "username", username)
}

func (r *AdminRepo) GetByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	return r.get(ctx, "email", email)
}

// get looks an admin up by one of the fixed column names above.
func (r *AdminRepo) get(ctx context.Context, column string, value any) (*domain.Admin, error) {
	query := `SELECT ` + adminColumns + ` FROM admins WHERE ` + column + ` = $1`

	a := &domain.Admin{}
	err := r.pool.QueryRow(ctx, query, value).Scan(
		&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.Role, &a.IsActive, &a.LastLogin, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get admin by %s: %w", column, err)
	}
	return a, nil
}

func (r *AdminRepo) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `UPDATE admins SET last_login = $1 WHERE id = $2`, at, id)
	if err != nil {
		return fmt.Errorf("update admin last login: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("admin not found: %s", id)
	}
	return nil
}
