package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionStatus is the settlement state of a transaction.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusConfirmed TransactionStatus = "confirmed"
	TransactionStatusFailed    TransactionStatus = "failed"
)

// Direction is relative to the owning user.
type Direction string

const (
	DirectionSend    Direction = "send"
	DirectionReceive Direction = "receive"
)

// Transaction is an immutable record of one balance mutation.
type Transaction struct {
	ID              uuid.UUID         `json:"id"`
	UserID          uuid.UUID         `json:"user_id"`
	FromWalletID    *uuid.UUID        `json:"from_wallet_id,omitempty"`
	ToWalletID      *uuid.UUID        `json:"to_wallet_id,omitempty"`
	FromAddress     string            `json:"from_address"`
	ToAddress       string            `json:"to_address"`
	Currency        Currency          `json:"currency"`
	Amount          decimal.Decimal   `json:"amount"`
	Fee             decimal.Decimal   `json:"fee"`
	TxHash          string            `json:"tx_hash"`
	BlockNumber     *int64            `json:"block_number,omitempty"`
	BlockHash       *string           `json:"block_hash,omitempty"`
	GasUsed         *int64            `json:"gas_used,omitempty"`
	GasPrice        *int64            `json:"gas_price,omitempty"`
	ContractAddress *string           `json:"contract_address,omitempty"`
	Status          TransactionStatus `json:"status"`
	Direction       Direction         `json:"transaction_type"`
	CreatedAt       time.Time         `json:"created_at"`
	ConfirmedAt     *time.Time        `json:"confirmed_at,omitempty"`
}

// Total is the amount that leaves a wallet for a send.
func (t *Transaction) Total() decimal.Decimal {
	return t.Amount.Add(t.Fee)
}

// IsConfirmed reports whether settlement completed.
func (t *Transaction) IsConfirmed() bool {
	return t.Status == TransactionStatusConfirmed
}

// TransactionWithOwner is a transaction enriched with its owner.
type TransactionWithOwner struct {
	Transaction
	Owner UserSummary `json:"user"`
}
