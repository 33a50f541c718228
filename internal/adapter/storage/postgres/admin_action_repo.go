package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"custodial-wallet/internal/core/domain"
	"custodial-wallet/internal/core/ports"

	"github.com/jackc/pgx/v5"
)

const adminActionColumns = `id, admin_id, action_type, target_user_id, action_details, created_at`

// AdminActionRepo implements ports.AdminActionRepository. The table is append-only.
type AdminActionRepo struct {
	pool Pool
}

func NewAdminActionRepo(pool Pool) *AdminActionRepo {
	return &AdminActionRepo{pool: pool}
}

// Create appends an action. tx may be nil to write outside a transaction.
func (r *AdminActionRepo) Create(ctx context.Context, tx pgx.Tx, a *domain.AdminAction) error {
	var details []byte
	if a.Details != nil {
		var err error
		if details, err = json.Marshal(a.Details); err != nil {
			return fmt.Errorf("marshal action details: %w", err)
		}
	}

	query := `INSERT INTO admin_actions (` + adminActionColumns + `) VALUES ($1, $2, $3, $4, $5, $6)`
	args := []any{a.ID, a.AdminID, a.Kind, a.TargetUserID, details, a.CreatedAt}

	var err error
	if tx != nil {
		_, err = tx.Exec(ctx, query, args...)
	} else {
		_, err = r.pool.Exec(ctx, query, args...)
	}
	if err != nil {
		return fmt.Errorf("insert admin action: %w", err)
	}
	return nil
}

func (r *AdminActionRepo) List(ctx context.Context, params ports.AdminActionListParams) ([]domain.AdminAction, int64, error) {
	var conds []string
	var args []any
	if params.AdminID != nil {
		args = append(args, *params.AdminID)
		conds = append(conds, fmt.Sprintf("admin_id = $%d", len(args)))
	}
	if params.Kind != nil {
		args = append(args, *params.Kind)
		conds = append(conds, fmt.Sprintf("action_type = $%d", len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM admin_actions`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count admin actions: %w", err)
	}

	args = append(args, params.Page.PerPage, params.Page.Offset())
	query := fmt.Sprintf(`SELECT %s FROM admin_actions%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		adminActionColumns, where, len(args)-1, len(args))

	actions, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return actions, total, nil
}

func (r *AdminActionRepo) Recent(ctx context.Context, limit int) ([]domain.AdminAction, error) {
	query := `SELECT ` + adminActionColumns + ` FROM admin_actions ORDER BY created_at DESC LIMIT $1`
	return r.query(ctx, query, limit)
}

func (r *AdminActionRepo) query(ctx context.Context, query string, args ...any) ([]domain.AdminAction, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list admin actions: %w", err)
	}
	defer rows.Close()

	out := []domain.AdminAction{}
	for rows.Next() {
		var a domain.AdminAction
		var details []byte
		if err := rows.Scan(&a.ID, &a.AdminID, &a.Kind, &a.TargetUserID, &details, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan admin action: %w", err)
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &a.Details); err != nil {
				return nil, fmt.Errorf("unmarshal action details: %w", err)
			}
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate admin actions: %w", err)
	}
	return out, nil
}
