package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"custodial-wallet/internal/chain"
	"custodial-wallet/internal/core/domain"
	"custodial-wallet/internal/core/ports"
	"custodial-wallet/internal/core/ports/mocks"
	"custodial-wallet/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func adminCredit(adminID uuid.UUID, userID uuid.UUID, c domain.Currency, amount string) ports.CreditRequest {
	return ports.CreditRequest{
		UserID:        userID,
		Currency:      c,
		Amount:        dec(amount),
		Source:        ports.CreditSourceAdmin,
		ActingAdminID: &adminID,
	}
}

func TestLedger_ProvisionAddressFormats(t *testing.T) {
	e := newTestEnv(t)
	s := e.registerUser(t, "alice")

	require.Len(t, s.Wallets, 2)
	for _, w := range s.Wallets {
		assert.True(t, w.Balance.IsZero())
		assert.True(t, domain.ValidDepositAddress(w.Currency, w.Address), w.Address)
		assert.NotEmpty(t, w.SecretKeyEnc)
	}

	eth, err := e.ledger.Provision(context.Background(), s.User.ID, domain.CurrencyETH)
	require.NoError(t, err)
	assert.Len(t, eth.Address, 42)
	assert.True(t, strings.HasPrefix(eth.Address, "0x"))

	_, err = e.ledger.Provision(context.Background(), s.User.ID, domain.CurrencyETH)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))

	_, err = e.ledger.Provision(context.Background(), s.User.ID, "XRP")
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestLedger_CreditThenDebitNetOfFee(t *testing.T) {
	tests := []struct {
		currency domain.Currency
		credit   string
		debit    string
		want     string
	}{
		{domain.CurrencyBTC, "1.5", "0.5", "0.999"},
		{domain.CurrencyUSDT, "100", "40", "59.99"},
		{domain.CurrencyBTC, "0.002", "0.00000001", "0.00099999"},
	}
	for _, tt := range tests {
		t.Run(string(tt.currency)+"/"+tt.credit, func(t *testing.T) {
			e := newTestEnv(t)
			admin := e.createAdmin(t, "root")
			user := e.registerUser(t, "bob").User
			e.verify(t, user.ID)
			ctx := context.Background()

			res, err := e.ledger.Credit(ctx, adminCredit(admin.ID, user.ID, tt.currency, tt.credit))
			require.NoError(t, err)
			assert.Equal(t, domain.DirectionReceive, res.Transaction.Direction)
			assert.True(t, res.Transaction.Fee.IsZero())
			assert.True(t, res.Transaction.IsConfirmed())

			sent, err := e.ledger.Debit(ctx, ports.DebitRequest{
				UserID: user.ID, Currency: tt.currency, Amount: dec(tt.debit), ToAddress: "1BoatSLRHtKNngkdXEeobR76b53LETtpyT",
			})
			require.NoError(t, err)
			assert.Equal(t, domain.DirectionSend, sent.Direction)
			assert.True(t, domain.FeeFor(tt.currency).Equal(sent.Fee))
			assert.NotEqual(t, res.Transaction.TxHash, sent.TxHash)

			assert.True(t, dec(tt.want).Equal(e.balance(t, user.ID, tt.currency)), e.balance(t, user.ID, tt.currency).String())
			assert.EqualValues(t, 2, e.transactionCount(t))
		})
	}
}

func TestLedger_DebitRejections(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	admin := e.createAdmin(t, "root")

	unverified := e.registerUser(t, "nokyc").User
	_, err := e.ledger.Credit(ctx, adminCredit(admin.ID, unverified.ID, domain.CurrencyBTC, "1"))
	require.NoError(t, err)

	poor := e.registerUser(t, "poor").User
	e.verify(t, poor.ID)
	_, err = e.ledger.Credit(ctx, adminCredit(admin.ID, poor.ID, domain.CurrencyBTC, "0.5"))
	require.NoError(t, err)

	blocked := e.registerUser(t, "mallory").User
	e.verify(t, blocked.ID)
	_, err = e.ledger.Credit(ctx, adminCredit(admin.ID, blocked.ID, domain.CurrencyBTC, "1"))
	require.NoError(t, err)
	_, err = e.identity.SetBlockState(ctx, ports.SetBlockStateRequest{UserID: blocked.ID, Blocked: true, AdminID: admin.ID})
	require.NoError(t, err)

	before := e.transactionCount(t)
	tests := []struct {
		name   string
		req    ports.DebitRequest
		code   string
		status int
	}{
		{"not kyc verified", ports.DebitRequest{UserID: unverified.ID, Currency: "BTC", Amount: dec("0.1"), ToAddress: "x"}, "LED_005", 403},
		{"insufficient by fee", ports.DebitRequest{UserID: poor.ID, Currency: "BTC", Amount: dec("0.5"), ToAddress: "x"}, "LED_001", 402},
		{"blocked", ports.DebitRequest{UserID: blocked.ID, Currency: "BTC", Amount: dec("0.1"), ToAddress: "x"}, "AUTH_004", 403},
		{"no wallet", ports.DebitRequest{UserID: poor.ID, Currency: "ETH", Amount: dec("0.1"), ToAddress: "x"}, "LED_004", 404},
		{"unknown user", ports.DebitRequest{UserID: uuid.New(), Currency: "BTC", Amount: dec("0.1"), ToAddress: "x"}, "LED_004", 404},
		{"zero", ports.DebitRequest{UserID: poor.ID, Currency: "BTC", Amount: decimal.Zero, ToAddress: "x"}, "LED_002", 400},
		{"negative", ports.DebitRequest{UserID: poor.ID, Currency: "BTC", Amount: dec("-1"), ToAddress: "x"}, "LED_002", 400},
		{"too precise", ports.DebitRequest{UserID: poor.ID, Currency: "BTC", Amount: dec("0.000000001"), ToAddress: "x"}, "LED_002", 400},
		{"unsupported", ports.DebitRequest{UserID: poor.ID, Currency: "XRP", Amount: dec("1"), ToAddress: "x"}, "LED_006", 400},
		{"no destination", ports.DebitRequest{UserID: poor.ID, Currency: "BTC", Amount: dec("0.1")}, "VAL_001", 400},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.ledger.Debit(ctx, tt.req)
			var appErr *apperror.AppError
			require.True(t, errors.As(err, &appErr), "got %v", err)
			assert.Equal(t, tt.code, appErr.Code)
			assert.Equal(t, tt.status, appErr.HTTPStatus)
		})
	}

	assert.Equal(t, before, e.transactionCount(t))
	assert.True(t, dec("0.5").Equal(e.balance(t, poor.ID, domain.CurrencyBTC)))
	assert.True(t, dec("1").Equal(e.balance(t, blocked.ID, domain.CurrencyBTC)))
}

func TestLedger_CreditSources(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	admin := e.createAdmin(t, "root")
	user := e.registerUser(t, "carol").User
	_, err := e.identity.SetBlockState(ctx, ports.SetBlockStateRequest{UserID: user.ID, Blocked: true, AdminID: admin.ID})
	require.NoError(t, err)

	_, err = e.ledger.Credit(ctx, ports.CreditRequest{
		UserID: user.ID, Currency: domain.CurrencyBTC, Amount: dec("1"), Source: ports.CreditSourceSelfService,
	})
	assert.Equal(t, "LED_007", err.(*apperror.AppError).Code)

	res, err := e.ledger.Credit(ctx, adminCredit(admin.ID, user.ID, domain.CurrencyBTC, "1"))
	require.NoError(t, err)
	assert.Equal(t, "admin", res.Transaction.FromAddress)
	assert.Equal(t, res.Wallet.Address, res.Transaction.ToAddress)

	actions := e.actionsOf(t, admin.ID)
	require.Len(t, actions, 2) // block_user, send_crypto
	assert.Equal(t, domain.ActionSendCrypto, actions[0].Kind)
	assert.Equal(t, user.ID, *actions[0].TargetUserID)
	assert.Equal(t, res.Transaction.TxHash, actions[0].Details["tx_hash"])
}

func TestLedger_CreditMissingWallet(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	admin := e.createAdmin(t, "root")
	user := e.registerUser(t, "dave").User

	_, err := e.ledger.Credit(ctx, adminCredit(admin.ID, user.ID, domain.CurrencyETH, "2"))
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	assert.Empty(t, e.actionsOf(t, admin.ID), "rolled back with the credit")

	req := adminCredit(admin.ID, user.ID, domain.CurrencyETH, "2")
	req.AutoProvision = true
	res, err := e.ledger.Credit(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, domain.CurrencyETH, res.Wallet.Currency)
	assert.True(t, dec("2").Equal(e.balance(t, user.ID, domain.CurrencyETH)))

	_, err = e.ledger.Credit(ctx, adminCredit(admin.ID, uuid.New(), domain.CurrencyBTC, "1"))
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestLedger_CreditBeyondStoredPrecision(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	admin := e.createAdmin(t, "root")
	user := e.registerUser(t, "erin").User

	_, err := e.ledger.Credit(ctx, adminCredit(admin.ID, user.ID, domain.CurrencyBTC, "123456789012345678901234567890"))
	require.Error(t, err)
	assert.Equal(t, "LED_002", err.(*apperror.AppError).Code)

	_, err = e.ledger.Credit(ctx, adminCredit(admin.ID, user.ID, domain.CurrencyBTC, domain.MaxAmount.String()))
	require.NoError(t, err)

	_, err = e.ledger.Credit(ctx, adminCredit(admin.ID, user.ID, domain.CurrencyBTC, "0.00000001"))
	require.Error(t, err)
	assert.Equal(t, "LED_002", err.(*apperror.AppError).Code)
	assert.True(t, domain.MaxAmount.Equal(e.balance(t, user.ID, domain.CurrencyBTC)))
	assert.Len(t, e.actionsOf(t, admin.ID), 1, "rejected credit left no audit row")
}

func TestLedger_USDTCarriesContractMetadata(t *testing.T) {
	e := newTestEnv(t)
	admin := e.createAdmin(t, "root")
	user := e.registerUser(t, "erin").User

	res, err := e.ledger.Credit(context.Background(), adminCredit(admin.ID, user.ID, domain.CurrencyUSDT, "10"))
	require.NoError(t, err)
	txn := res.Transaction
	require.NotNil(t, txn.ContractAddress)
	assert.Equal(t, chain.USDTContract, *txn.ContractAddress)
	require.NotNil(t, txn.GasUsed)
	assert.GreaterOrEqual(t, *txn.GasUsed, int64(21000))
	assert.True(t, strings.HasPrefix(txn.TxHash, "0x"))
}

func TestLedger_ConcurrentDebitsNeverOverdraw(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	admin := e.createAdmin(t, "root")
	user := e.registerUser(t, "frank").User
	e.verify(t, user.ID)
	_, err := e.ledger.Credit(ctx, adminCredit(admin.ID, user.ID, domain.CurrencyUSDT, "1.01"))
	require.NoError(t, err)

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.ledger.Debit(ctx, ports.DebitRequest{UserID: user.ID, Currency: "USDT", Amount: dec("0.5"), ToAddress: "0xabc"})
			if err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.True(t, dec("0.5").Equal(e.balance(t, user.ID, domain.CurrencyUSDT)))
}

// collidingConfirmer hands out the same hash for the first n confirmations.
type collidingConfirmer struct {
	inner *chain.SyntheticConfirmer
	hash  string
	left  int
}

func (c *collidingConfirmer) Confirm(ctx context.Context, t *domain.Transaction) error {
	if err := c.inner.Confirm(ctx, t); err != nil {
		return err
	}
	if c.left > 0 {
		c.left--
		t.TxHash = c.hash
	}
	return nil
}

func TestLedger_HashCollisionRetries(t *testing.T) {
	ctx := context.Background()
	conf := &collidingConfirmer{inner: chain.NewSyntheticConfirmer(), hash: "0xfixed", left: 3}
	e := newTestEnvWithConfirmer(t, conf)
	admin := e.createAdmin(t, "root")
	user := e.registerUser(t, "gina").User

	first, err := e.ledger.Credit(ctx, adminCredit(admin.ID, user.ID, domain.CurrencyBTC, "1"))
	require.NoError(t, err)
	assert.Equal(t, "0xfixed", first.Transaction.TxHash)

	second, err := e.ledger.Credit(ctx, adminCredit(admin.ID, user.ID, domain.CurrencyBTC, "1"))
	require.NoError(t, err)
	assert.NotEqual(t, "0xfixed", second.Transaction.TxHash)
	assert.True(t, dec("2").Equal(e.balance(t, user.ID, domain.CurrencyBTC)), "collided attempts rolled back")
	assert.EqualValues(t, 2, e.transactionCount(t))
	assert.Len(t, e.actionsOf(t, admin.ID), 2)

	conf.left = maxWriteAttempts
	_, err = e.ledger.Credit(ctx, adminCredit(admin.ID, user.ID, domain.CurrencyBTC, "1"))
	assert.True(t, ports.IsDuplicate(err, ports.ConstraintTxHash))
}

// ==================== mock-driven failure paths ====================

type ledgerMocks struct {
	svc        *LedgerServiceImpl
	users      *mocks.MockUserRepository
	wallets    *mocks.MockWalletRepository
	txs        *mocks.MockTransactionRepository
	audit      *mocks.MockAuditService
	transactor *mocks.MockDBTransactor
	confirmer  *mocks.MockLedgerConfirmer
	observer   *mocks.MockLedgerObserver
	ctrl       *gomock.Controller
}

func setupLedgerMocks(t *testing.T) *ledgerMocks {
	ctrl := gomock.NewController(t)
	d := &ledgerMocks{
		users:      mocks.NewMockUserRepository(ctrl),
		wallets:    mocks.NewMockWalletRepository(ctrl),
		txs:        mocks.NewMockTransactionRepository(ctrl),
		audit:      mocks.NewMockAuditService(ctrl),
		transactor: mocks.NewMockDBTransactor(ctrl),
		confirmer:  mocks.NewMockLedgerConfirmer(ctrl),
		observer:   mocks.NewMockLedgerObserver(ctrl),
		ctrl:       ctrl,
	}
	d.svc = NewLedgerService(d.users, d.wallets, d.txs, d.audit, d.transactor,
		mocks.NewMockAddressGenerator(ctrl), mocks.NewMockEncryptionService(ctrl),
		d.confirmer, d.observer, zerolog.Nop())
	return d
}

func TestLedger_AuditFailureRollsBackCredit(t *testing.T) {
	d := setupLedgerMocks(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	adminID, userID := uuid.New(), uuid.New()
	wallet := &domain.Wallet{ID: uuid.New(), UserID: userID, Currency: "BTC", Address: "1addr", Balance: dec("1")}
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.users.EXPECT().GetByIDForUpdate(ctx, tx, userID).Return(&domain.User{ID: userID, Username: "u"}, nil)
	d.wallets.EXPECT().GetByUserAndCurrencyForUpdate(ctx, tx, userID, domain.CurrencyBTC).Return(wallet, nil)
	d.wallets.EXPECT().UpdateBalance(ctx, tx, wallet.ID, decEq("1.25")).Return(nil)
	d.confirmer.EXPECT().Confirm(ctx, gomock.Any()).Return(nil)
	d.txs.EXPECT().Create(ctx, tx, gomock.Any()).Return(nil)
	d.audit.EXPECT().RecordTx(ctx, tx, gomock.Any()).Return(apperror.InternalError(errors.New("disk full")))

	_, err := d.svc.Credit(ctx, adminCredit(adminID, userID, domain.CurrencyBTC, "0.25"))
	assert.Equal(t, apperror.KindInternal, apperror.KindOf(err))
	assert.True(t, tx.rolledBack)
	assert.False(t, tx.committed)
}

func TestLedger_DebitObservesOnCommit(t *testing.T) {
	d := setupLedgerMocks(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	wallet := &domain.Wallet{ID: uuid.New(), UserID: userID, Currency: "USDT", Address: "0xfrom", Balance: dec("10")}
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.users.EXPECT().GetByIDForUpdate(ctx, tx, userID).Return(&domain.User{ID: userID, IsVerified: true}, nil)
	d.wallets.EXPECT().GetByUserAndCurrencyForUpdate(ctx, tx, userID, domain.CurrencyUSDT).Return(wallet, nil)
	d.wallets.EXPECT().UpdateBalance(ctx, tx, wallet.ID, decEq("6.99")).Return(nil)
	d.confirmer.EXPECT().Confirm(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, t *domain.Transaction) error {
		t.Status = domain.TransactionStatusConfirmed
		t.TxHash = "0x01"
		return nil
	})
	d.txs.EXPECT().Create(ctx, tx, gomock.Any()).Return(nil)
	d.observer.EXPECT().ObserveDebit(domain.CurrencyUSDT, decEq("3"), decEq("0.01"))

	txn, err := d.svc.Debit(ctx, ports.DebitRequest{UserID: userID, Currency: "usdt", Amount: dec("3"), ToAddress: "0xto"})
	require.NoError(t, err)
	assert.Equal(t, "0xfrom", txn.FromAddress)
	assert.True(t, tx.committed)
}

func TestLedger_BeginFailure(t *testing.T) {
	d := setupLedgerMocks(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.transactor.EXPECT().Begin(ctx).Return(nil, errors.New("pool closed"))

	_, err := d.svc.Debit(ctx, ports.DebitRequest{UserID: uuid.New(), Currency: "BTC", Amount: dec("1"), ToAddress: "1x"})
	assert.Equal(t, apperror.KindInternal, apperror.KindOf(err))
}
