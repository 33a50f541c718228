package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"custodial-wallet/internal/core/domain"
	"custodial-wallet/internal/core/ports"
	"custodial-wallet/pkg/apperror"
	"custodial-wallet/pkg/pagination"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// KYCServiceImpl implements ports.KYCService.
type KYCServiceImpl struct {
	records    ports.KYCRepository
	users      ports.UserRepository
	audit      ports.AuditService
	transactor ports.DBTransactor
	log        zerolog.Logger
}

func NewKYCService(
	records ports.KYCRepository,
	users ports.UserRepository,
	audit ports.AuditService,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *KYCServiceImpl {
	return &KYCServiceImpl{
		records:    records,
		users:      users,
		audit:      audit,
		transactor: transactor,
		log:        log,
	}
}

// Submit files a pending record. A user holds at most one pending or
// approved record; a rejected one may be resubmitted.
func (s *KYCServiceImpl) Submit(ctx context.Context, userID uuid.UUID, req ports.SubmitKYCRequest) (*domain.KYCRecord, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find user: %w", err))
	}
	if user == nil {
		return nil, apperror.ErrNotFound("User")
	}
	if user.IsBlocked {
		return nil, apperror.ErrAccountBlocked(user.BlockReason(), user.BlockedAt)
	}

	active, err := s.records.GetActiveByUser(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find active kyc: %w", err))
	}
	if active != nil {
		return nil, apperror.ErrKYCAlreadySubmitted().WithDetail("status", string(active.Status))
	}

	record := &domain.KYCRecord{
		ID:             uuid.New(),
		UserID:         userID,
		DocumentType:   strings.TrimSpace(req.DocumentType),
		DocumentNumber: strings.TrimSpace(req.DocumentNumber),
		DocumentFront:  req.DocumentFront,
		DocumentBack:   req.DocumentBack,
		Selfie:         req.Selfie,
		Status:         domain.KYCStatusPending,
		SubmittedAt:    time.Now().UTC(),
	}
	if err := s.records.Create(ctx, record); err != nil {
		if ports.IsDuplicate(err, ports.ConstraintKYCActive) {
			return nil, apperror.ErrKYCAlreadySubmitted()
		}
		return nil, apperror.InternalError(fmt.Errorf("create kyc record: %w", err))
	}

	s.log.Info().
		Str("kyc_id", record.ID.String()).
		Str("user_id", userID.String()).
		Msg("kyc submitted")
	return record, nil
}

// Status reports the latest record, or not_submitted.
func (s *KYCServiceImpl) Status(ctx context.Context, userID uuid.UUID) (*ports.KYCStatusView, error) {
	record, err := s.records.LatestByUser(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find kyc: %w", err))
	}
	if record == nil {
		return &ports.KYCStatusView{Status: domain.KYCStatusNotSubmitted}, nil
	}
	return &ports.KYCStatusView{Status: record.Status, Record: record}, nil
}

// Review settles a pending record. Approval marks the user verified; the
// review_kyc entry commits with the verdict.
func (s *KYCServiceImpl) Review(ctx context.Context, req ports.ReviewKYCRequest) (*domain.KYCRecord, error) {
	if !req.Decision.IsValid() {
		return nil, apperror.Validation(fmt.Sprintf("invalid decision %q", req.Decision))
	}
	notes := strings.TrimSpace(req.Notes)
	if req.Decision == domain.KYCDecisionReject && notes == "" {
		return nil, apperror.Validation("notes are required when rejecting")
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	record, err := s.records.GetByIDForUpdate(ctx, dbTx, req.RecordID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock kyc record: %w", err))
	}
	if record == nil {
		return nil, apperror.ErrNotFound("KYC record")
	}
	if record.Status != domain.KYCStatusPending {
		return nil, apperror.ErrKYCNotReviewable().WithDetail("status", string(record.Status))
	}

	now := time.Now().UTC()
	record.Status = req.Decision.Status()
	record.ReviewedAt = &now
	record.ReviewedBy = &req.AdminID
	if notes != "" {
		record.ReviewerNotes = &notes
	}
	if err := s.records.UpdateReview(ctx, dbTx, record); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update kyc review: %w", err))
	}
	if req.Decision == domain.KYCDecisionApprove {
		if err := s.users.SetVerified(ctx, dbTx, record.UserID, true); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("set verified: %w", err))
		}
	}

	details := map[string]any{
		"kyc_id":   record.ID.String(),
		"decision": string(req.Decision),
	}
	if notes != "" {
		details["notes"] = notes
	}
	action := domain.NewAdminAction(req.AdminID, domain.ActionReviewKYC, &record.UserID, details)
	if err := s.audit.RecordTx(ctx, dbTx, action); err != nil {
		return nil, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("kyc_id", record.ID.String()).
		Str("admin_id", req.AdminID.String()).
		Str("status", string(record.Status)).
		Msg("kyc reviewed")
	return record, nil
}

func (s *KYCServiceImpl) List(ctx context.Context, params ports.KYCListParams) (pagination.Page[domain.KYCRecord], error) {
	items, total, err := s.records.List(ctx, params)
	if err != nil {
		return pagination.Page[domain.KYCRecord]{}, apperror.InternalError(fmt.Errorf("list kyc: %w", err))
	}
	return pagination.NewPage(items, total, params.Page), nil
}
