package service

import (
	"context"
	"fmt"

	"custodial-wallet/internal/core/domain"
	"custodial-wallet/internal/core/ports"
	"custodial-wallet/pkg/apperror"
	"custodial-wallet/pkg/pagination"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// AuditServiceImpl implements ports.AuditService. Writes are synchronous:
// a failed write fails the caller.
type AuditServiceImpl struct {
	repo ports.AdminActionRepository
	log  zerolog.Logger
}

func NewAuditService(repo ports.AdminActionRepository, log zerolog.Logger) *AuditServiceImpl {
	return &AuditServiceImpl{repo: repo, log: log}
}

func (s *AuditServiceImpl) Record(ctx context.Context, action *domain.AdminAction) error {
	return s.RecordTx(ctx, nil, action)
}

// RecordTx appends action inside tx. A nil tx commits on its own.
func (s *AuditServiceImpl) RecordTx(ctx context.Context, tx pgx.Tx, action *domain.AdminAction) error {
	if !action.Kind.IsValid() {
		return apperror.InternalError(fmt.Errorf("unknown admin action kind %q", action.Kind))
	}
	if err := s.repo.Create(ctx, tx, action); err != nil {
		return apperror.InternalError(fmt.Errorf("record admin action: %w", err))
	}

	ev := s.log.Info().
		Str("admin_id", action.AdminID.String()).
		Str("action", string(action.Kind))
	if action.TargetUserID != nil {
		ev = ev.Str("target_user_id", action.TargetUserID.String())
	}
	ev.Msg("audit")
	return nil
}

func (s *AuditServiceImpl) List(ctx context.Context, params ports.AdminActionListParams) (pagination.Page[domain.AdminAction], error) {
	items, total, err := s.repo.List(ctx, params)
	if err != nil {
		return pagination.Page[domain.AdminAction]{}, apperror.InternalError(fmt.Errorf("list admin actions: %w", err))
	}
	return pagination.NewPage(items, total, params.Page), nil
}

func (s *AuditServiceImpl) Recent(ctx context.Context, limit int) ([]domain.AdminAction, error) {
	items, err := s.repo.Recent(ctx, limit)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("recent admin actions: %w", err))
	}
	return items, nil
}
