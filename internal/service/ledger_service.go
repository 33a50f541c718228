package service

import (
	"context"
	"fmt"
	"time"

	"custodial-wallet/internal/core/domain"
	"custodial-wallet/internal/core/ports"
	"custodial-wallet/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	adminSourceAddress    = "admin"
	externalSourceAddress = "external"
)

// LedgerServiceImpl implements ports.LedgerService. Every balance change is
// Begin, FOR UPDATE on user and wallet, balance write, transaction insert,
// optional audit insert, Commit.
type LedgerServiceImpl struct {
	users      ports.UserRepository
	wallets    ports.WalletRepository
	txs        ports.TransactionRepository
	audit      ports.AuditService
	transactor ports.DBTransactor
	addrs      ports.AddressGenerator
	encSvc     ports.EncryptionService
	confirmer  ports.LedgerConfirmer
	observer   ports.LedgerObserver
	log        zerolog.Logger
}

// NewLedgerService creates a new LedgerServiceImpl. observer may be nil.
func NewLedgerService(
	users ports.UserRepository,
	wallets ports.WalletRepository,
	txs ports.TransactionRepository,
	audit ports.AuditService,
	transactor ports.DBTransactor,
	addrs ports.AddressGenerator,
	encSvc ports.EncryptionService,
	confirmer ports.LedgerConfirmer,
	observer ports.LedgerObserver,
	log zerolog.Logger,
) *LedgerServiceImpl {
	if observer == nil {
		observer = nopObserver{}
	}
	return &LedgerServiceImpl{
		users:      users,
		wallets:    wallets,
		txs:        txs,
		audit:      audit,
		transactor: transactor,
		addrs:      addrs,
		encSvc:     encSvc,
		confirmer:  confirmer,
		observer:   observer,
		log:        log,
	}
}

type nopObserver struct{}

func (nopObserver) ObserveCredit(domain.Currency, decimal.Decimal) {}
func (nopObserver) ObserveDebit(domain.Currency, decimal.Decimal, decimal.Decimal) {}

// Provision creates an empty wallet in its own transaction.
func (s *LedgerServiceImpl) Provision(ctx context.Context, userID uuid.UUID, currency domain.Currency) (*domain.Wallet, error) {
	var wallet *domain.Wallet
	err := withRetry(ctx, func() error {
		dbTx, err := s.transactor.Begin(ctx)
		if err != nil {
			return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
		}
		defer dbTx.Rollback(ctx) //nolint:errcheck

		w, err := s.ProvisionTx(ctx, dbTx, userID, currency)
		if err != nil {
			return err
		}
		if err := dbTx.Commit(ctx); err != nil {
			return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
		}
		wallet = w
		return nil
	})
	if err != nil {
		return nil, err
	}
	return wallet, nil
}

// ProvisionTx creates an empty wallet inside the caller's transaction. An
// address collision surfaces as a duplicate error; the caller reruns the
// whole transaction.
func (s *LedgerServiceImpl) ProvisionTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID, currency domain.Currency) (*domain.Wallet, error) {
	currency, ok := domain.ParseCurrency(string(currency))
	if !ok {
		return nil, apperror.ErrUnsupportedCurrency(string(currency))
	}

	existing, err := s.wallets.GetByUserAndCurrencyForUpdate(ctx, tx, userID, currency)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check wallet: %w", err))
	}
	if existing != nil {
		return nil, apperror.ErrWalletExists()
	}

	keys, err := s.addrs.Generate(currency)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("generate address: %w", err))
	}
	secretEnc, err := s.encSvc.Encrypt(keys.SecretKey)
	if err != nil {
		return nil, apperror.ErrEncryptionFailure(fmt.Errorf("encrypt wallet key: %w", err))
	}

	now := time.Now().UTC()
	wallet := &domain.Wallet{
		ID:           uuid.New(),
		UserID:       userID,
		Currency:     currency,
		Address:      keys.Address,
		SecretKeyEnc: secretEnc,
		Balance:      decimal.Zero,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.wallets.Create(ctx, tx, wallet); err != nil {
		if ports.IsDuplicate(err, ports.ConstraintWalletCurrency) {
			return nil, apperror.ErrWalletExists()
		}
		return nil, apperror.InternalError(fmt.Errorf("create wallet: %w", err))
	}

	s.log.Info().
		Str("wallet_id", wallet.ID.String()).
		Str("user_id", userID.String()).
		Str("currency", string(currency)).
		Msg("wallet provisioned")

	return wallet, nil
}

// Credit increases a balance and records the receive transaction. Admin
// credits also record send_crypto in the same transaction.
func (s *LedgerServiceImpl) Credit(ctx context.Context, req ports.CreditRequest) (*ports.CreditResult, error) {
	if err := validateAmount(req.Amount); err != nil {
		return nil, err
	}
	currency, ok := domain.ParseCurrency(string(req.Currency))
	if !ok {
		return nil, apperror.ErrUnsupportedCurrency(string(req.Currency))
	}
	req.Currency = currency

	isAdmin := req.Source == ports.CreditSourceAdmin
	if isAdmin && req.ActingAdminID == nil {
		return nil, apperror.InternalError(fmt.Errorf("admin credit without acting admin"))
	}
	if req.FromAddress == "" {
		req.FromAddress = externalSourceAddress
		if isAdmin {
			req.FromAddress = adminSourceAddress
		}
	}

	var result *ports.CreditResult
	err := withRetry(ctx, func() error {
		r, err := s.credit(ctx, req)
		result = r
		return err
	})
	if err != nil {
		return nil, err
	}

	s.observer.ObserveCredit(currency, req.Amount)
	s.log.Info().
		Str("tx_id", result.Transaction.ID.String()).
		Str("user_id", req.UserID.String()).
		Str("currency", string(currency)).
		Str("amount", req.Amount.String()).
		Str("source", string(req.Source)).
		Msg("credit committed")

	return result, nil
}

func (s *LedgerServiceImpl) credit(ctx context.Context, req ports.CreditRequest) (*ports.CreditResult, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	user, err := s.users.GetByIDForUpdate(ctx, dbTx, req.UserID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock user: %w", err))
	}
	if user == nil {
		return nil, apperror.ErrNotFound("User")
	}
	if user.IsBlocked && req.Source != ports.CreditSourceAdmin {
		return nil, apperror.ErrCreditForbidden()
	}

	wallet, err := s.wallets.GetByUserAndCurrencyForUpdate(ctx, dbTx, req.UserID, req.Currency)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet == nil {
		if !req.AutoProvision || req.Source != ports.CreditSourceAdmin {
			return nil, apperror.ErrNotFound("Wallet")
		}
		if wallet, err = s.ProvisionTx(ctx, dbTx, req.UserID, req.Currency); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	newBalance := wallet.Balance.Add(req.Amount)
	if !domain.WithinStorage(newBalance) {
		return nil, apperror.ErrInvalidAmount().WithDetail("max_balance", domain.MaxAmount.String())
	}
	if err := s.wallets.UpdateBalance(ctx, dbTx, wallet.ID, newBalance); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update balance: %w", err))
	}
	wallet.Balance = newBalance
	wallet.UpdatedAt = now

	txn := &domain.Transaction{
		ID:          uuid.New(),
		UserID:      req.UserID,
		ToWalletID:  &wallet.ID,
		FromAddress: req.FromAddress,
		ToAddress:   wallet.Address,
		Currency:    req.Currency,
		Amount:      req.Amount,
		Fee:         decimal.Zero,
		Status:      domain.TransactionStatusPending,
		Direction:   domain.DirectionReceive,
		CreatedAt:   now,
	}
	if err := s.record(ctx, dbTx, txn); err != nil {
		return nil, err
	}

	if req.Source == ports.CreditSourceAdmin {
		details := map[string]any{
			"currency":       string(req.Currency),
			"amount":         req.Amount.String(),
			"transaction_id": txn.ID.String(),
			"tx_hash":        txn.TxHash,
			"username":       user.Username,
		}
		if req.Note != "" {
			details["note"] = req.Note
		}
		action := domain.NewAdminAction(*req.ActingAdminID, domain.ActionSendCrypto, &user.ID, details)
		if err := s.audit.RecordTx(ctx, dbTx, action); err != nil {
			return nil, err
		}
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}
	return &ports.CreditResult{Wallet: wallet, Transaction: txn}, nil
}

// Debit sends amount plus the currency's flat fee out of a wallet. The owner
// must be unblocked and KYC verified.
func (s *LedgerServiceImpl) Debit(ctx context.Context, req ports.DebitRequest) (*domain.Transaction, error) {
	if err := validateAmount(req.Amount); err != nil {
		return nil, err
	}
	currency, ok := domain.ParseCurrency(string(req.Currency))
	if !ok {
		return nil, apperror.ErrUnsupportedCurrency(string(req.Currency))
	}
	req.Currency = currency
	if req.ToAddress == "" {
		return nil, apperror.Validation("to_address is required")
	}

	var txn *domain.Transaction
	err := withRetry(ctx, func() error {
		t, err := s.debit(ctx, req)
		txn = t
		return err
	})
	if err != nil {
		return nil, err
	}

	s.observer.ObserveDebit(currency, txn.Amount, txn.Fee)
	s.log.Info().
		Str("tx_id", txn.ID.String()).
		Str("user_id", req.UserID.String()).
		Str("currency", string(currency)).
		Str("amount", txn.Amount.String()).
		Str("fee", txn.Fee.String()).
		Msg("debit committed")

	return txn, nil
}

func (s *LedgerServiceImpl) debit(ctx context.Context, req ports.DebitRequest) (*domain.Transaction, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	user, err := s.users.GetByIDForUpdate(ctx, dbTx, req.UserID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock user: %w", err))
	}
	if user == nil {
		return nil, apperror.ErrNotFound("User")
	}
	if user.IsBlocked {
		return nil, apperror.ErrAccountBlocked(user.BlockReason(), user.BlockedAt)
	}
	if !user.IsVerified {
		return nil, apperror.ErrKYCRequired()
	}

	wallet, err := s.wallets.GetByUserAndCurrencyForUpdate(ctx, dbTx, req.UserID, req.Currency)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("Wallet")
	}

	txn := &domain.Transaction{
		ID:           uuid.New(),
		UserID:       req.UserID,
		FromWalletID: &wallet.ID,
		FromAddress:  wallet.Address,
		ToAddress:    req.ToAddress,
		Currency:     req.Currency,
		Amount:       req.Amount,
		Fee:          domain.FeeFor(req.Currency),
		Status:       domain.TransactionStatusPending,
		Direction:    domain.DirectionSend,
		CreatedAt:    time.Now().UTC(),
	}
	if !wallet.CanCover(txn.Total()) {
		return nil, apperror.ErrInsufficientFunds().
			WithDetail("balance", wallet.Balance.String()).
			WithDetail("required", txn.Total().String())
	}

	if err := s.wallets.UpdateBalance(ctx, dbTx, wallet.ID, wallet.Balance.Sub(txn.Total())); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update balance: %w", err))
	}
	if err := s.record(ctx, dbTx, txn); err != nil {
		return nil, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}
	return txn, nil
}

// record settles txn and inserts it.
func (s *LedgerServiceImpl) record(ctx context.Context, dbTx pgx.Tx, txn *domain.Transaction) error {
	if err := s.confirmer.Confirm(ctx, txn); err != nil {
		return apperror.InternalError(fmt.Errorf("confirm transaction: %w", err))
	}
	if err := s.txs.Create(ctx, dbTx, txn); err != nil {
		return apperror.InternalError(fmt.Errorf("create transaction: %w", err))
	}
	return nil
}

func (s *LedgerServiceImpl) Wallets(ctx context.Context, userID uuid.UUID) ([]domain.Wallet, error) {
	wallets, err := s.wallets.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list wallets: %w", err))
	}
	if wallets == nil {
		wallets = []domain.Wallet{}
	}
	return wallets, nil
}

// Wallet never provisions; a missing wallet is NotFound.
func (s *LedgerServiceImpl) Wallet(ctx context.Context, userID uuid.UUID, currency domain.Currency) (*domain.Wallet, error) {
	currency, ok := domain.ParseCurrency(string(currency))
	if !ok {
		return nil, apperror.ErrUnsupportedCurrency(string(currency))
	}
	wallet, err := s.wallets.GetByUserAndCurrency(ctx, userID, currency)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("Wallet")
	}
	return wallet, nil
}

// validateAmount requires a positive value representable at the stored scale.
func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return apperror.ErrInvalidAmount()
	}
	if !amount.Equal(amount.Truncate(domain.BalanceScale)) {
		return apperror.ErrInvalidAmount().WithDetail("max_decimals", domain.BalanceScale)
	}
	if !domain.WithinStorage(amount) {
		return apperror.ErrInvalidAmount().WithDetail("max_amount", domain.MaxAmount.String())
	}
	return nil
}
