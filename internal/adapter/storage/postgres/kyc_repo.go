package postgres

import (
	"context"
	"errors"
	"fmt"

	"custodial-wallet/internal/core/domain"
	"custodial-wallet/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const kycColumns = `id, user_id, document_type, document_number, document_front, document_back, selfie,
	status, submitted_at, reviewed_at, reviewed_by, reviewer_notes`

// KYCRepo implements ports.KYCRepository.
type KYCRepo struct {
	pool Pool
}

func NewKYCRepo(pool Pool) *KYCRepo {
	return &KYCRepo{pool: pool}
}

// Create inserts a submission. kyc_records_one_active_idx rejects a second
// pending or approved record for the same user.
func (r *KYCRepo) Create(ctx context.Context, k *domain.KYCRecord) error {
	query := `INSERT INTO kyc_records (` + kycColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.pool.Exec(ctx, query,
		k.ID, k.UserID, k.DocumentType, k.DocumentNumber, k.DocumentFront, k.DocumentBack, k.Selfie,
		k.Status, k.SubmittedAt, k.ReviewedAt, k.ReviewedBy, k.ReviewerNotes,
	)
	if err != nil {
		return wrapErr("insert kyc record", err)
	}
	return nil
}

func (r *KYCRepo) LatestByUser(ctx context.Context, userID uuid.UUID) (*domain.KYCRecord, error) {
	query := `SELECT ` + kycColumns + ` FROM kyc_records WHERE user_id = $1 ORDER BY submitted_at DESC LIMIT 1`
	return scanKYC(r.pool.QueryRow(ctx, query, userID), "latest kyc record")
}

func (r *KYCRepo) GetActiveByUser(ctx context.Context, userID uuid.UUID) (*domain.KYCRecord, error) {
	query := `SELECT ` + kycColumns + ` FROM kyc_records
		WHERE user_id = $1 AND status IN ('pending', 'approved') ORDER BY submitted_at DESC LIMIT 1`
	return scanKYC(r.pool.QueryRow(ctx, query, userID), "active kyc record")
}

func (r *KYCRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.KYCRecord, error) {
	query := `SELECT ` + kycColumns + ` FROM kyc_records WHERE id = $1 FOR UPDATE`
	return scanKYC(tx.QueryRow(ctx, query, id), "get kyc record for update")
}

func (r *KYCRepo) UpdateReview(ctx context.Context, tx pgx.Tx, k *domain.KYCRecord) error {
	query := `UPDATE kyc_records SET status = $1, reviewed_at = $2, reviewed_by = $3, reviewer_notes = $4 WHERE id = $5`

	tag, err := tx.Exec(ctx, query, k.Status, k.ReviewedAt, k.ReviewedBy, k.ReviewerNotes, k.ID)
	if err != nil {
		return fmt.Errorf("update kyc review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("kyc record not found: %s", k.ID)
	}
	return nil
}

func (r *KYCRepo) List(ctx context.Context, params ports.KYCListParams) ([]domain.KYCRecord, int64, error) {
	where := ""
	var args []any
	if params.Status != nil {
		args = append(args, *params.Status)
		where = " WHERE status = $1"
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM kyc_records`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count kyc records: %w", err)
	}

	args = append(args, params.Page.PerPage, params.Page.Offset())
	query := fmt.Sprintf(`SELECT %s FROM kyc_records%s ORDER BY submitted_at DESC LIMIT $%d OFFSET $%d`,
		kycColumns, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list kyc records: %w", err)
	}
	defer rows.Close()

	out := []domain.KYCRecord{}
	for rows.Next() {
		k, err := scanKYC(rows, "scan kyc record")
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *k)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate kyc records: %w", err)
	}
	return out, total, nil
}

func scanKYC(row pgx.Row, op string) (*domain.KYCRecord, error) {
	k := &domain.KYCRecord{}
	err := row.Scan(
		&k.ID, &k.UserID, &k.DocumentType, &k.DocumentNumber, &k.DocumentFront, &k.DocumentBack, &k.Selfie,
		&k.Status, &k.SubmittedAt, &k.ReviewedAt, &k.ReviewedBy, &k.ReviewerNotes,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return k, nil
}
