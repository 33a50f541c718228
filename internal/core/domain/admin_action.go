package domain

import (
	"time"

	"github.com/google/uuid"
)

// ActionKind enumerates audited admin operations.
type ActionKind string

const (
	ActionViewUsers        ActionKind = "view_users"
	ActionViewUserDetails  ActionKind = "view_user_details"
	ActionBlockUser        ActionKind = "block_user"
	ActionUnblockUser      ActionKind = "unblock_user"
	ActionViewWallets      ActionKind = "view_wallets"
	ActionViewUserWallets  ActionKind = "view_user_wallets"
	ActionSendCrypto       ActionKind = "send_crypto"
	ActionViewActions      ActionKind = "view_actions"
	ActionViewTransactions ActionKind = "view_transactions"
	ActionViewDashboard    ActionKind = "view_dashboard"
	ActionViewKYC          ActionKind = "view_kyc"
	ActionReviewKYC        ActionKind = "review_kyc"
	ActionCreateAdmin      ActionKind = "create_admin"
)

var actionKinds = map[ActionKind]struct{}{
	ActionViewUsers: {}, ActionViewUserDetails: {}, ActionBlockUser: {}, ActionUnblockUser: {},
	ActionViewWallets: {}, ActionViewUserWallets: {}, ActionSendCrypto: {}, ActionViewActions: {},
	ActionViewTransactions: {}, ActionViewDashboard: {}, ActionViewKYC: {}, ActionReviewKYC: {},
	ActionCreateAdmin: {},
}

func (k ActionKind) IsValid() bool {
	_, ok := actionKinds[k]
	return ok
}

// AdminAction is an append-only audit record.
type AdminAction struct {
	ID           uuid.UUID      `json:"id"`
	AdminID      uuid.UUID      `json:"admin_id"`
	Kind         ActionKind     `json:"action_type"`
	TargetUserID *uuid.UUID     `json:"target_user_id,omitempty"`
	Details      map[string]any `json:"action_details,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// NewAdminAction stamps id and time on a new record.
func NewAdminAction(adminID uuid.UUID, kind ActionKind, target *uuid.UUID, details map[string]any) *AdminAction {
	return &AdminAction{
		ID:           uuid.New(),
		AdminID:      adminID,
		Kind:         kind,
		TargetUserID: target,
		Details:      details,
		CreatedAt:    time.Now().UTC(),
	}
}
