// Package chain derives deposit key material and stamps synthetic
// settlement metadata on ledger transactions.
package chain

import (
	"fmt"
	"sync"

	"custodial-wallet/internal/core/domain"
	"custodial-wallet/internal/core/ports"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// maxAddressAttempts bounds regeneration when a P2PKH encoding comes out
// shorter than the canonical 34 characters.
const maxAddressAttempts = 32

// KeyFunc generates one key pair for an address family.
type KeyFunc func() (*ports.KeyPair, error)

// Generator implements ports.AddressGenerator over a registry of families.
type Generator struct {
	mu       sync.RWMutex
	families map[domain.AddressFamily]KeyFunc
}

// NewGenerator registers P2PKH keys on params for UTXO currencies and
// secp256k1 account keys for the rest.
func NewGenerator(params *chaincfg.Params) *Generator {
	g := &Generator{families: make(map[domain.AddressFamily]KeyFunc)}
	g.Register(domain.FamilyUTXO, func() (*ports.KeyPair, error) { return utxoKey(params) })
	g.Register(domain.FamilyAccount, accountKey)
	return g
}

// Register adds or replaces the key function for a family.
func (g *Generator) Register(family domain.AddressFamily, fn KeyFunc) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.families[family] = fn
}

// Generate returns a fresh key pair whose address passes ValidDepositAddress.
func (g *Generator) Generate(currency domain.Currency) (*ports.KeyPair, error) {
	g.mu.RLock()
	fn, ok := g.families[currency.Family()]
	g.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no key generator for currency %s", currency)
	}

	for i := 0; i < maxAddressAttempts; i++ {
		kp, err := fn()
		if err != nil {
			return nil, err
		}
		if domain.ValidDepositAddress(currency, kp.Address) {
			return kp, nil
		}
	}
	return nil, fmt.Errorf("could not derive a canonical %s address after %d attempts", currency, maxAddressAttempts)
}

func utxoKey(params *chaincfg.Params) (*ports.KeyPair, error) {
	privateKey, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("generate private key: %w", err)
	}

	pubKeyHash := btcutil.Hash160(privateKey.PubKey().SerializeCompressed())
	address, err := btcutil.NewAddressPubKeyHash(pubKeyHash, params)
	if err != nil {
		return nil, fmt.Errorf("create address: %w", err)
	}

	wif, err := btcutil.NewWIF(privateKey, params, true)
	if err != nil {
		return nil, fmt.Errorf("create WIF: %w", err)
	}

	return &ports.KeyPair{Address: address.EncodeAddress(), SecretKey: wif.String()}, nil
}

func accountKey() (*ports.KeyPair, error) {
	privateKey, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("generate private key: %w", err)
	}

	return &ports.KeyPair{
		Address:   crypto.PubkeyToAddress(privateKey.PublicKey).Hex(),
		SecretKey: hexutil.Encode(crypto.FromECDSA(privateKey))[2:],
	}, nil
}
