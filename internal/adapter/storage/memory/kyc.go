package memory

import (
	"context"
	"fmt"

	"custodial-wallet/internal/core/domain"
	"custodial-wallet/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// KYCRepo implements ports.KYCRepository.
type KYCRepo struct {
	s *Store
}

func NewKYCRepo(s *Store) *KYCRepo {
	return &KYCRepo{s: s}
}

func (r *KYCRepo) Create(ctx context.Context, rec *domain.KYCRecord) error {
	return r.s.mutate(nil, func() error {
		if rec.IsActive() {
			for _, existing := range r.s.kyc {
				if existing.UserID == rec.UserID && existing.IsActive() {
					return &ports.DuplicateError{Constraint: ports.ConstraintKYCActive}
				}
			}
		}
		cp := *rec
		r.s.kyc[rec.ID] = &cp
		r.s.kycOrder = append(r.s.kycOrder, rec.ID)
		return nil
	}, nil)
}

func (r *KYCRepo) LatestByUser(ctx context.Context, userID uuid.UUID) (*domain.KYCRecord, error) {
	return r.latest(userID, func(*domain.KYCRecord) bool { return true })
}

func (r *KYCRepo) GetActiveByUser(ctx context.Context, userID uuid.UUID) (*domain.KYCRecord, error) {
	return r.latest(userID, (*domain.KYCRecord).IsActive)
}

func (r *KYCRepo) latest(userID uuid.UUID, match func(*domain.KYCRecord) bool) (*domain.KYCRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var found *domain.KYCRecord
	for _, id := range r.s.kycOrder {
		rec := r.s.kyc[id]
		if rec.UserID != userID || !match(rec) {
			continue
		}
		if found == nil || !rec.SubmittedAt.Before(found.SubmittedAt) {
			found = rec
		}
	}
	if found == nil {
		return nil, nil
	}
	cp := *found
	return &cp, nil
}

func (r *KYCRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.KYCRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if rec, ok := r.s.kyc[id]; ok {
		cp := *rec
		return &cp, nil
	}
	return nil, nil
}

func (r *KYCRepo) UpdateReview(ctx context.Context, tx pgx.Tx, rec *domain.KYCRecord) error {
	var prev domain.KYCRecord
	return r.s.mutate(tx, func() error {
		cur, ok := r.s.kyc[rec.ID]
		if !ok {
			return fmt.Errorf("kyc record not found: %s", rec.ID)
		}
		prev = *cur
		cur.Status, cur.ReviewedAt, cur.ReviewedBy, cur.ReviewerNotes = rec.Status, rec.ReviewedAt, rec.ReviewedBy, rec.ReviewerNotes
		return nil
	}, func() {
		if cur, ok := r.s.kyc[rec.ID]; ok {
			*cur = prev
		}
	})
}

func (r *KYCRepo) List(ctx context.Context, params ports.KYCListParams) ([]domain.KYCRecord, int64, error) {
	r.s.mu.RLock()
	var out []domain.KYCRecord
	for _, id := range r.s.kycOrder {
		rec := r.s.kyc[id]
		if params.Status != nil && rec.Status != *params.Status {
			continue
		}
		out = append(out, *rec)
	}
	r.s.mu.RUnlock()

	newestFirst(out, func(k domain.KYCRecord) int64 { return k.SubmittedAt.UnixNano() })
	items, total := paginate(out, params.Page)
	return items, total, nil
}
