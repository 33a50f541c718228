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
)

const userColumns = `id, username, email, password_hash, first_name, last_name, phone, profile_image,
	fingerprint_enabled, is_verified, is_blocked, blocked_at, blocked_by, blocked_reason, created_at, updated_at`

// UserRepo implements ports.UserRepository.
type UserRepo struct {
	pool Pool
}

func NewUserRepo(pool Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

// Create inserts a user inside the registration transaction.
func (r *UserRepo) Create(ctx context.Context, tx pgx.Tx, u *domain.User) error {
	query := `INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err := tx.Exec(ctx, query,
		u.ID, u.Username, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.Phone, u.ProfileImage,
		u.FingerprintEnabled, u.IsVerified, u.IsBlocked, u.BlockedAt, u.BlockedBy, u.BlockedReason,
		u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return wrapErr("insert user", err)
	}
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id), "get user by id")
}

// GetByIDForUpdate locks the user row for a block-state change.
func (r *UserRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.User, error) {
	return scanUser(tx.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id), "get user for update")
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username), "get user by username")
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email), "get user by email")
}

func (r *UserRepo) UpdateProfile(ctx context.Context, u *domain.User) error {
	query := `UPDATE users SET first_name = $1, last_name = $2, phone = $3, profile_image = $4,
		fingerprint_enabled = $5, updated_at = $6 WHERE id = $7`

	tag, err := r.pool.Exec(ctx, query, u.FirstName, u.LastName, u.Phone, u.ProfileImage,
		u.FingerprintEnabled, u.UpdatedAt, u.ID)
	if err != nil {
		return fmt.Errorf("update user profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user not found: %s", u.ID)
	}
	return nil
}

func (r *UserRepo) UpdateBlockState(ctx context.Context, tx pgx.Tx, u *domain.User) error {
	query := `UPDATE users SET is_blocked = $1, blocked_at = $2, blocked_by = $3, blocked_reason = $4,
		updated_at = $5 WHERE id = $6`

	tag, err := tx.Exec(ctx, query, u.IsBlocked, u.BlockedAt, u.BlockedBy, u.BlockedReason, u.UpdatedAt, u.ID)
	if err != nil {
		return fmt.Errorf("update user block state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user not found: %s", u.ID)
	}
	return nil
}

func (r *UserRepo) SetVerified(ctx context.Context, tx pgx.Tx, id uuid.UUID, verified bool) error {
	tag, err := tx.Exec(ctx, `UPDATE users SET is_verified = $1, updated_at = NOW() WHERE id = $2`, verified, id)
	if err != nil {
		return fmt.Errorf("set user verified: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user not found: %s", id)
	}
	return nil
}

// List returns users newest first with the total matching count.
func (r *UserRepo) List(ctx context.Context, params ports.UserListParams) ([]domain.User, int64, error) {
	where, args := userFilter(params)

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	args = append(args, params.Page.PerPage, params.Page.Offset())
	query := fmt.Sprintf(`SELECT %s FROM users%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		userColumns, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		u, err := scanUser(rows, "scan user")
		if err != nil {
			return nil, 0, err
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate users: %w", err)
	}
	return users, total, nil
}

func userFilter(params ports.UserListParams) (string, []any) {
	var conds []string
	var args []any
	if s := strings.TrimSpace(params.Search); s != "" {
		args = append(args, "%"+s+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(username ILIKE $%[1]d OR email ILIKE $%[1]d OR first_name ILIKE $%[1]d OR last_name ILIKE $%[1]d)", n))
	}
	switch params.Status {
	case domain.UserStatusBlocked:
		conds = append(conds, "is_blocked = TRUE")
	case domain.UserStatusActive:
		conds = append(conds, "is_blocked = FALSE")
	case domain.UserStatusVerified:
		conds = append(conds, "is_verified = TRUE")
	case domain.UserStatusUnverified:
		conds = append(conds, "is_verified = FALSE")
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *UserRepo) Stats(ctx context.Context) (*ports.UserStats, error) {
	query := `SELECT COUNT(*),
		COUNT(*) FILTER (WHERE is_blocked),
		COUNT(*) FILTER (WHERE is_verified),
		COUNT(*) FILTER (WHERE NOT is_verified)
		FROM users`

	st := &ports.UserStats{}
	if err := r.pool.QueryRow(ctx, query).Scan(&st.Total, &st.Blocked, &st.Verified, &st.Unverified); err != nil {
		return nil, fmt.Errorf("user stats: %w", err)
	}
	return st, nil
}

func scanUser(row pgx.Row, op string) (*domain.User, error) {
	u := &domain.User{}
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Phone, &u.ProfileImage,
		&u.FingerprintEnabled, &u.IsVerified, &u.IsBlocked, &u.BlockedAt, &u.BlockedBy, &u.BlockedReason,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}
