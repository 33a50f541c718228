package domain

import (
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Currency is an upper-case ticker.
type Currency string

const (
	CurrencyBTC  Currency = "BTC"
	CurrencyUSDT Currency = "USDT"
	CurrencyETH  Currency = "ETH"
)

// DefaultCurrency carries the lower fee rate.
const DefaultCurrency = CurrencyBTC

// SupportedCurrencies is the closed set of currencies wallets can hold.
var SupportedCurrencies = []Currency{CurrencyBTC, CurrencyUSDT, CurrencyETH}

// ParseCurrency normalises s and reports whether it is supported.
func ParseCurrency(s string) (Currency, bool) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	for _, sc := range SupportedCurrencies {
		if c == sc {
			return c, true
		}
	}
	return c, false
}

// AddressFamily groups currencies sharing an address format.
type AddressFamily string

const (
	FamilyUTXO    AddressFamily = "utxo"    // base58 P2PKH
	FamilyAccount AddressFamily = "account" // 0x-prefixed hex
)

func (c Currency) Family() AddressFamily {
	if c == CurrencyBTC {
		return FamilyUTXO
	}
	return FamilyAccount
}

const (
	utxoAddressLen    = 34
	accountAddressLen = 42
)

// ValidDepositAddress checks the literal format generated for a family:
// 34 chars starting with '1', or 42 chars of 0x-prefixed hex.
func ValidDepositAddress(c Currency, addr string) bool {
	switch c.Family() {
	case FamilyUTXO:
		return len(addr) == utxoAddressLen && strings.HasPrefix(addr, "1")
	default:
		if len(addr) != accountAddressLen || !strings.HasPrefix(addr, "0x") {
			return false
		}
		_, err := hex.DecodeString(addr[2:])
		return err == nil
	}
}

var (
	feeDefaultCurrency = decimal.RequireFromString("0.001")
	feeOtherCurrency   = decimal.RequireFromString("0.01")
)

// FeeFor returns the flat send fee for c.
func FeeFor(c Currency) decimal.Decimal {
	if c == DefaultCurrency {
		return feeDefaultCurrency
	}
	return feeOtherCurrency
}

// BalanceScale is the number of fractional digits stored (NUMERIC(20,8)).
const BalanceScale = 8

// MaxAmount is the largest value a NUMERIC(20,8) balance or amount column holds.
var MaxAmount = decimal.RequireFromString("99999999999.99999999")

// WithinStorage reports whether v fits the stored precision.
func WithinStorage(v decimal.Decimal) bool {
	return v.LessThanOrEqual(MaxAmount)
}

// Wallet is a per-user, per-currency balance.
type Wallet struct {
	ID           uuid.UUID       `json:"id"`
	UserID       uuid.UUID       `json:"user_id"`
	Currency     Currency        `json:"currency"`
	Address      string          `json:"address"`
	SecretKeyEnc string          `json:"-"`
	Balance      decimal.Decimal `json:"balance"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// CanCover reports whether the balance can absorb total without going negative.
func (w *Wallet) CanCover(total decimal.Decimal) bool {
	return w.Balance.GreaterThanOrEqual(total)
}

// WalletWithOwner is a wallet enriched with its owner for admin listings.
type WalletWithOwner struct {
	Wallet
	Owner UserSummary `json:"user"`
}
