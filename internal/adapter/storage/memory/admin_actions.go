package memory

import (
	"context"

	"custodial-wallet/internal/core/domain"
	"custodial-wallet/internal/core/ports"

	"github.com/jackc/pgx/v5"
)

// AdminActionRepo implements ports.AdminActionRepository. Entries are only ever appended.
type AdminActionRepo struct {
	s *Store
}

func NewAdminActionRepo(s *Store) *AdminActionRepo {
	return &AdminActionRepo{s: s}
}

func (r *AdminActionRepo) Create(ctx context.Context, tx pgx.Tx, a *domain.AdminAction) error {
	return r.s.mutate(tx, func() error {
		cp := *a
		cp.Details = copyDetails(a.Details)
		r.s.actions = append(r.s.actions, &cp)
		return nil
	}, func() {
		for i, existing := range r.s.actions {
			if existing.ID == a.ID {
				r.s.actions = append(r.s.actions[:i], r.s.actions[i+1:]...)
				return
			}
		}
	})
}

func (r *AdminActionRepo) List(ctx context.Context, params ports.AdminActionListParams) ([]domain.AdminAction, int64, error) {
	r.s.mu.RLock()
	var out []domain.AdminAction
	for _, a := range r.s.actions {
		if params.AdminID != nil && a.AdminID != *params.AdminID {
			continue
		}
		if params.Kind != nil && a.Kind != *params.Kind {
			continue
		}
		out = append(out, *a)
	}
	r.s.mu.RUnlock()

	newestFirst(out, func(a domain.AdminAction) int64 { return a.CreatedAt.UnixNano() })
	items, total := paginate(out, params.Page)
	return items, total, nil
}

func (r *AdminActionRepo) Recent(ctx context.Context, limit int) ([]domain.AdminAction, error) {
	r.s.mu.RLock()
	out := make([]domain.AdminAction, 0, len(r.s.actions))
	for _, a := range r.s.actions {
		out = append(out, *a)
	}
	r.s.mu.RUnlock()

	newestFirst(out, func(a domain.AdminAction) int64 { return a.CreatedAt.UnixNano() })
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func copyDetails(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
