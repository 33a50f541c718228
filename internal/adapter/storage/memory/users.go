package memory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"custodial-wallet/internal/core/domain"
	"custodial-wallet/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// UserRepo implements ports.UserRepository.
type UserRepo struct {
	s *Store
}

func NewUserRepo(s *Store) *UserRepo {
	return &UserRepo{s: s}
}

func (r *UserRepo) Create(ctx context.Context, tx pgx.Tx, u *domain.User) error {
	return r.s.mutate(tx, func() error {
		for _, existing := range r.s.users {
			if existing.Username == u.Username {
				return &ports.DuplicateError{Constraint: ports.ConstraintUserUsername}
			}
			if existing.Email == u.Email {
				return &ports.DuplicateError{Constraint: ports.ConstraintUserEmail}
			}
		}
		cp := *u
		r.s.users[u.ID] = &cp
		r.s.userOrder = append(r.s.userOrder, u.ID)
		return nil
	}, func() {
		delete(r.s.users, u.ID)
		r.s.userOrder = removeID(r.s.userOrder, u.ID)
	})
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if u, ok := r.s.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r *UserRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.User, error) {
	return r.GetByID(ctx, id)
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Username == username })
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Email == email })
}

func (r *UserRepo) find(match func(*domain.User) bool) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *UserRepo) UpdateProfile(ctx context.Context, u *domain.User) error {
	return r.s.mutate(nil, func() error {
		cur, ok := r.s.users[u.ID]
		if !ok {
			return fmt.Errorf("user not found: %s", u.ID)
		}
		cur.FirstName, cur.LastName, cur.Phone = u.FirstName, u.LastName, u.Phone
		cur.ProfileImage, cur.FingerprintEnabled = u.ProfileImage, u.FingerprintEnabled
		cur.UpdatedAt = u.UpdatedAt
		return nil
	}, nil)
}

func (r *UserRepo) UpdateBlockState(ctx context.Context, tx pgx.Tx, u *domain.User) error {
	var prev domain.User
	return r.s.mutate(tx, func() error {
		cur, ok := r.s.users[u.ID]
		if !ok {
			return fmt.Errorf("user not found: %s", u.ID)
		}
		prev = *cur
		cur.IsBlocked, cur.BlockedAt, cur.BlockedBy, cur.BlockedReason = u.IsBlocked, u.BlockedAt, u.BlockedBy, u.BlockedReason
		cur.UpdatedAt = u.UpdatedAt
		return nil
	}, func() {
		if cur, ok := r.s.users[u.ID]; ok {
			*cur = prev
		}
	})
}

func (r *UserRepo) SetVerified(ctx context.Context, tx pgx.Tx, id uuid.UUID, verified bool) error {
	var prev bool
	return r.s.mutate(tx, func() error {
		cur, ok := r.s.users[id]
		if !ok {
			return fmt.Errorf("user not found: %s", id)
		}
		prev = cur.IsVerified
		cur.IsVerified = verified
		cur.UpdatedAt = time.Now().UTC()
		return nil
	}, func() {
		if cur, ok := r.s.users[id]; ok {
			cur.IsVerified = prev
		}
	})
}

func (r *UserRepo) List(ctx context.Context, params ports.UserListParams) ([]domain.User, int64, error) {
	r.s.mu.RLock()
	needle := strings.ToLower(strings.TrimSpace(params.Search))
	var out []domain.User
	for _, id := range r.s.userOrder {
		u := r.s.users[id]
		if !params.Status.Matches(u) {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(u.Username), needle) &&
			!strings.Contains(strings.ToLower(u.Email), needle) &&
			!containsFold(u.FirstName, needle) &&
			!containsFold(u.LastName, needle) {
			continue
		}
		out = append(out, *u)
	}
	r.s.mu.RUnlock()

	newestFirst(out, func(u domain.User) int64 { return u.CreatedAt.UnixNano() })
	items, total := paginate(out, params.Page)
	return items, total, nil
}

func (r *UserRepo) Stats(ctx context.Context) (*ports.UserStats, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	st := &ports.UserStats{}
	for _, u := range r.s.users {
		st.Total++
		if u.IsBlocked {
			st.Blocked++
		}
		if u.IsVerified {
			st.Verified++
		} else {
			st.Unverified++
		}
	}
	return st, nil
}

func removeID(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
