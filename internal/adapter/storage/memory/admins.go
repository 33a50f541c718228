package memory

import (
	"context"
	"fmt"
	"time"

	"custodial-wallet/internal/core/domain"
	"custodial-wallet/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// AdminRepo implements ports.AdminRepository.
type AdminRepo struct {
	s *Store
}

func NewAdminRepo(s *Store) *AdminRepo {
	return &AdminRepo{s: s}
}

func (r *AdminRepo) Create(ctx context.Context, tx pgx.Tx, a *domain.Admin) error {
	return r.s.mutate(tx, func() error {
		for _, existing := range r.s.admins {
			if existing.Username == a.Username {
				return &ports.DuplicateError{Constraint: ports.ConstraintAdminUsername}
			}
			if existing.Email == a.Email {
				return &ports.DuplicateError{Constraint: ports.ConstraintAdminEmail}
			}
		}
		cp := *a
		r.s.admins[a.ID] = &cp
		return nil
	}, func() {
		delete(r.s.admins, a.ID)
	})
}

func (r *AdminRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Admin, error) {
	return r.find(func(a *domain.Admin) bool { return a.ID == id })
}

func (r *AdminRepo) GetByUsername(ctx context.Context, username string) (*domain.Admin, error) {
	return r.find(func(a *domain.Admin) bool { return a.Username == username })
}

func (r *AdminRepo) GetByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	return r.find(func(a *domain.Admin) bool { return a.Email == email })
}

func (r *AdminRepo) find(match func(*domain.Admin) bool) (*domain.Admin, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, a := range r.s.admins {
		if match(a) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *AdminRepo) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.s.mutate(nil, func() error {
		a, ok := r.s.admins[id]
		if !ok {
			return fmt.Errorf("admin not found: %s", id)
		}
		a.LastLogin = &at
		return nil
	}, nil)
}
