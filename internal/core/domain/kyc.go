package domain

import (
	"time"

	"github.com/google/uuid"
)

type KYCStatus string

const (
	KYCStatusPending  KYCStatus = "pending"
	KYCStatusApproved KYCStatus = "approved"
	KYCStatusRejected KYCStatus = "rejected"
)

// KYCStatusNotSubmitted is reported when a user has no record.
const KYCStatusNotSubmitted KYCStatus = "not_submitted"

// KYCRecord is an identity verification submission.
type KYCRecord struct {
	ID             uuid.UUID  `json:"id"`
	UserID         uuid.UUID  `json:"user_id"`
	DocumentType   string     `json:"document_type"`
	DocumentNumber string     `json:"document_number"`
	DocumentFront  *string    `json:"document_front,omitempty"`
	DocumentBack   *string    `json:"document_back,omitempty"`
	Selfie         *string    `json:"selfie,omitempty"`
	Status         KYCStatus  `json:"status"`
	SubmittedAt    time.Time  `json:"submitted_at"`
	ReviewedAt     *time.Time `json:"reviewed_at,omitempty"`
	ReviewedBy     *uuid.UUID `json:"reviewed_by,omitempty"`
	ReviewerNotes  *string    `json:"reviewer_notes,omitempty"`
}

// IsActive reports whether the record blocks a new submission.
func (k *KYCRecord) IsActive() bool {
	return k.Status == KYCStatusPending || k.Status == KYCStatusApproved
}

// KYCDecision is an admin review outcome.
type KYCDecision string

const (
	KYCDecisionApprove KYCDecision = "approve"
	KYCDecisionReject  KYCDecision = "reject"
)

func (d KYCDecision) IsValid() bool {
	return d == KYCDecisionApprove || d == KYCDecisionReject
}

// Status maps the decision onto the record status it produces.
func (d KYCDecision) Status() KYCStatus {
	if d == KYCDecisionApprove {
		return KYCStatusApproved
	}
	return KYCStatusRejected
}
