package chain

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"sync/atomic"
	"time"

	"custodial-wallet/internal/core/domain"

	"github.com/ethereum/go-ethereum/common"
)

// USDTContract is the mainnet ERC-20 address stamped on USDT transfers.
var USDTContract = common.HexToAddress("0xdAC17F958D2ee523a2206206994597C13D831ec7").Hex()

const (
	minBlock    = 17_000_000
	maxBlock    = 35_000_000
	minGasUsed  = 21_000
	maxGasUsed  = 71_000
	minGasPrice = 10
	maxGasPrice = 60
)

// SyntheticConfirmer implements ports.LedgerConfirmer without a chain:
// transactions settle immediately with generated hashes and block data.
type SyntheticConfirmer struct {
	seq atomic.Uint64
	now func() time.Time
}

func NewSyntheticConfirmer() *SyntheticConfirmer {
	return &SyntheticConfirmer{now: func() time.Time { return time.Now().UTC() }}
}

// Confirm stamps t as confirmed. The hash mixes a process-wide counter and a
// random nonce so two confirmations never share one.
func (c *SyntheticConfirmer) Confirm(ctx context.Context, t *domain.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("read nonce: %w", err)
	}
	now := c.now()

	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%s|%d|%d|", t.FromAddress, t.ToAddress, t.Amount.String(), now.UnixNano(), c.seq.Add(1))
	h.Write(nonce)
	t.TxHash = "0x" + hex.EncodeToString(h.Sum(nil))

	block, err := randRange(minBlock, maxBlock)
	if err != nil {
		return err
	}
	blockHash := make([]byte, 32)
	if _, err := rand.Read(blockHash); err != nil {
		return fmt.Errorf("read block hash: %w", err)
	}
	bh := "0x" + hex.EncodeToString(blockHash)
	t.BlockNumber = &block
	t.BlockHash = &bh

	if t.Currency == domain.CurrencyUSDT {
		gasUsed, err := randRange(minGasUsed, maxGasUsed)
		if err != nil {
			return err
		}
		gasPrice, err := randRange(minGasPrice, maxGasPrice)
		if err != nil {
			return err
		}
		contract := USDTContract
		t.GasUsed, t.GasPrice, t.ContractAddress = &gasUsed, &gasPrice, &contract
	}

	t.Status = domain.TransactionStatusConfirmed
	t.ConfirmedAt = &now
	return nil
}

// randRange returns a uniform value in [lo, hi).
func randRange(lo, hi int64) (int64, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(hi-lo))
	if err != nil {
		return 0, fmt.Errorf("random range: %w", err)
	}
	return lo + n.Int64(), nil
}
