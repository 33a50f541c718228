// Package mocks holds gomock mocks for the ports interfaces in services.go,
// kept in mockgen's output format.
package mocks

import (
	"context"
	"reflect"
	"time"

	"custodial-wallet/internal/core/domain"
	"custodial-wallet/internal/core/ports"
	"custodial-wallet/pkg/pagination"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"
)

// MockEncryptionService is a mock of EncryptionService interface.
type MockEncryptionService struct {
	ctrl     *gomock.Controller
	recorder *MockEncryptionServiceMockRecorder
	isgomock struct{}
}

// MockEncryptionServiceMockRecorder is the mock recorder for MockEncryptionService.
type MockEncryptionServiceMockRecorder struct {
	mock *MockEncryptionService
}

// NewMockEncryptionService creates a new mock instance.
func NewMockEncryptionService(ctrl *gomock.Controller) *MockEncryptionService {
	mock := &MockEncryptionService{ctrl: ctrl}
	mock.recorder = &MockEncryptionServiceMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockEncryptionService) EXPECT() *MockEncryptionServiceMockRecorder {
	return m.recorder
}

// Encrypt mocks base method.
func (m *MockEncryptionService) Encrypt(plaintext string) (string, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Encrypt", plaintext)
	ret0, _ := ret[0].(string)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Encrypt indicates an expected call of Encrypt.
func (mr *MockEncryptionServiceMockRecorder) Encrypt(plaintext any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Encrypt", reflect.TypeOf((*MockEncryptionService)(nil).Encrypt), plaintext)
}

// Decrypt mocks base method.
func (m *MockEncryptionService) Decrypt(ciphertext string) (string, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Decrypt", ciphertext)
	ret0, _ := ret[0].(string)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Decrypt indicates an expected call of Decrypt.
func (mr *MockEncryptionServiceMockRecorder) Decrypt(ciphertext any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Decrypt", reflect.TypeOf((*MockEncryptionService)(nil).Decrypt), ciphertext)
}

// MockHashService is a mock of HashService interface.
type MockHashService struct {
	ctrl     *gomock.Controller
	recorder *MockHashServiceMockRecorder
	isgomock struct{}
}

// MockHashServiceMockRecorder is the mock recorder for MockHashService.
type MockHashServiceMockRecorder struct {
	mock *MockHashService
}

// NewMockHashService creates a new mock instance.
func NewMockHashService(ctrl *gomock.Controller) *MockHashService {
	mock := &MockHashService{ctrl: ctrl}
	mock.recorder = &MockHashServiceMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockHashService) EXPECT() *MockHashServiceMockRecorder {
	return m.recorder
}

// Hash mocks base method.
func (m *MockHashService) Hash(password string) (string, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Hash", password)
	ret0, _ := ret[0].(string)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Hash indicates an expected call of Hash.
func (mr *MockHashServiceMockRecorder) Hash(password any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Hash", reflect.TypeOf((*MockHashService)(nil).Hash), password)
}

// Verify mocks base method.
func (m *MockHashService) Verify(password string, hash string) (bool, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Verify", password, hash)
	ret0, _ := ret[0].(bool)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Verify indicates an expected call of Verify.
func (mr *MockHashServiceMockRecorder) Verify(password, hash any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Verify", reflect.TypeOf((*MockHashService)(nil).Verify), password, hash)
}

// MockTokenService is a mock of TokenService interface.
type MockTokenService struct {
	ctrl     *gomock.Controller
	recorder *MockTokenServiceMockRecorder
	isgomock struct{}
}

// MockTokenServiceMockRecorder is the mock recorder for MockTokenService.
type MockTokenServiceMockRecorder struct {
	mock *MockTokenService
}

// NewMockTokenService creates a new mock instance.
func NewMockTokenService(ctrl *gomock.Controller) *MockTokenService {
	mock := &MockTokenService{ctrl: ctrl}
	mock.recorder = &MockTokenServiceMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockTokenService) EXPECT() *MockTokenServiceMockRecorder {
	return m.recorder
}

// Issue mocks base method.
func (m *MockTokenService) Issue(p ports.Principal) (string, time.Time, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Issue", p)
	ret0, _ := ret[0].(string)
	ret1, _ := ret[1].(time.Time)
	ret2, _ := ret[2].(error)
	return ret0, ret1, ret2
}

// Issue indicates an expected call of Issue.
func (mr *MockTokenServiceMockRecorder) Issue(p any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Issue", reflect.TypeOf((*MockTokenService)(nil).Issue), p)
}

// Parse mocks base method.
func (m *MockTokenService) Parse(token string) (*ports.TokenClaims, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Parse", token)
	ret0, _ := ret[0].(*ports.TokenClaims)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Parse indicates an expected call of Parse.
func (mr *MockTokenServiceMockRecorder) Parse(token any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Parse", reflect.TypeOf((*MockTokenService)(nil).Parse), token)
}

// MockAddressGenerator is a mock of AddressGenerator interface.
type MockAddressGenerator struct {
	ctrl     *gomock.Controller
	recorder *MockAddressGeneratorMockRecorder
	isgomock struct{}
}

// MockAddressGeneratorMockRecorder is the mock recorder for MockAddressGenerator.
type MockAddressGeneratorMockRecorder struct {
	mock *MockAddressGenerator
}

// NewMockAddressGenerator creates a new mock instance.
func NewMockAddressGenerator(ctrl *gomock.Controller) *MockAddressGenerator {
	mock := &MockAddressGenerator{ctrl: ctrl}
	mock.recorder = &MockAddressGeneratorMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockAddressGenerator) EXPECT() *MockAddressGeneratorMockRecorder {
	return m.recorder
}

// Generate mocks base method.
func (m *MockAddressGenerator) Generate(currency domain.Currency) (*ports.KeyPair, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Generate", currency)
	ret0, _ := ret[0].(*ports.KeyPair)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Generate indicates an expected call of Generate.
func (mr *MockAddressGeneratorMockRecorder) Generate(currency any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Generate", reflect.TypeOf((*MockAddressGenerator)(nil).Generate), currency)
}

// MockLedgerConfirmer is a mock of LedgerConfirmer interface.
type MockLedgerConfirmer struct {
	ctrl     *gomock.Controller
	recorder *MockLedgerConfirmerMockRecorder
	isgomock struct{}
}

// MockLedgerConfirmerMockRecorder is the mock recorder for MockLedgerConfirmer.
type MockLedgerConfirmerMockRecorder struct {
	mock *MockLedgerConfirmer
}

// NewMockLedgerConfirmer creates a new mock instance.
func NewMockLedgerConfirmer(ctrl *gomock.Controller) *MockLedgerConfirmer {
	mock := &MockLedgerConfirmer{ctrl: ctrl}
	mock.recorder = &MockLedgerConfirmerMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockLedgerConfirmer) EXPECT() *MockLedgerConfirmerMockRecorder {
	return m.recorder
}

// Confirm mocks base method.
func (m *MockLedgerConfirmer) Confirm(ctx context.Context, t *domain.Transaction) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Confirm", ctx, t)
	ret0, _ := ret[0].(error)
	return ret0
}

// Confirm indicates an expected call of Confirm.
func (mr *MockLedgerConfirmerMockRecorder) Confirm(ctx, t any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Confirm", reflect.TypeOf((*MockLedgerConfirmer)(nil).Confirm), ctx, t)
}

// MockLedgerObserver is a mock of LedgerObserver interface.
type MockLedgerObserver struct {
	ctrl     *gomock.Controller
	recorder *MockLedgerObserverMockRecorder
	isgomock struct{}
}

// MockLedgerObserverMockRecorder is the mock recorder for MockLedgerObserver.
type MockLedgerObserverMockRecorder struct {
	mock *MockLedgerObserver
}

// NewMockLedgerObserver creates a new mock instance.
func NewMockLedgerObserver(ctrl *gomock.Controller) *MockLedgerObserver {
	mock := &MockLedgerObserver{ctrl: ctrl}
	mock.recorder = &MockLedgerObserverMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockLedgerObserver) EXPECT() *MockLedgerObserverMockRecorder {
	return m.recorder
}

// ObserveCredit mocks base method.
func (m *MockLedgerObserver) ObserveCredit(currency domain.Currency, amount decimal.Decimal) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "ObserveCredit", currency, amount)
}

// ObserveCredit indicates an expected call of ObserveCredit.
func (mr *MockLedgerObserverMockRecorder) ObserveCredit(currency, amount any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ObserveCredit", reflect.TypeOf((*MockLedgerObserver)(nil).ObserveCredit), currency, amount)
}

// ObserveDebit mocks base method.
func (m *MockLedgerObserver) ObserveDebit(currency domain.Currency, amount decimal.Decimal, fee decimal.Decimal) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "ObserveDebit", currency, amount, fee)
}

// ObserveDebit indicates an expected call of ObserveDebit.
func (mr *MockLedgerObserverMockRecorder) ObserveDebit(currency, amount, fee any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ObserveDebit", reflect.TypeOf((*MockLedgerObserver)(nil).ObserveDebit), currency, amount, fee)
}

// MockPriceSource is a mock of PriceSource interface.
type MockPriceSource struct {
	ctrl     *gomock.Controller
	recorder *MockPriceSourceMockRecorder
	isgomock struct{}
}

// MockPriceSourceMockRecorder is the mock recorder for MockPriceSource.
type MockPriceSourceMockRecorder struct {
	mock *MockPriceSource
}

// NewMockPriceSource creates a new mock instance.
func NewMockPriceSource(ctrl *gomock.Controller) *MockPriceSource {
	mock := &MockPriceSource{ctrl: ctrl}
	mock.recorder = &MockPriceSourceMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockPriceSource) EXPECT() *MockPriceSourceMockRecorder {
	return m.recorder
}

// Fetch mocks base method.
func (m *MockPriceSource) Fetch(ctx context.Context) ([]domain.CryptoPrice, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Fetch", ctx)
	ret0, _ := ret[0].([]domain.CryptoPrice)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Fetch indicates an expected call of Fetch.
func (mr *MockPriceSourceMockRecorder) Fetch(ctx any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Fetch", reflect.TypeOf((*MockPriceSource)(nil).Fetch), ctx)
}

// MockPriceCache is a mock of PriceCache interface.
type MockPriceCache struct {
	ctrl     *gomock.Controller
	recorder *MockPriceCacheMockRecorder
	isgomock struct{}
}

// MockPriceCacheMockRecorder is the mock recorder for MockPriceCache.
type MockPriceCacheMockRecorder struct {
	mock *MockPriceCache
}

// NewMockPriceCache creates a new mock instance.
func NewMockPriceCache(ctrl *gomock.Controller) *MockPriceCache {
	mock := &MockPriceCache{ctrl: ctrl}
	mock.recorder = &MockPriceCacheMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockPriceCache) EXPECT() *MockPriceCacheMockRecorder {
	return m.recorder
}

// Get mocks base method.
func (m *MockPriceCache) Get(ctx context.Context) ([]domain.CryptoPrice, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Get", ctx)
	ret0, _ := ret[0].([]domain.CryptoPrice)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Get indicates an expected call of Get.
func (mr *MockPriceCacheMockRecorder) Get(ctx any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Get", reflect.TypeOf((*MockPriceCache)(nil).Get), ctx)
}

// Set mocks base method.
func (m *MockPriceCache) Set(ctx context.Context, prices []domain.CryptoPrice, ttl time.Duration) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Set", ctx, prices, ttl)
	ret0, _ := ret[0].(error)
	return ret0
}

// Set indicates an expected call of Set.
func (mr *MockPriceCacheMockRecorder) Set(ctx, prices, ttl any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Set", reflect.TypeOf((*MockPriceCache)(nil).Set), ctx, prices, ttl)
}

// MockRateLimiter is a mock of RateLimiter interface.
type MockRateLimiter struct {
	ctrl     *gomock.Controller
	recorder *MockRateLimiterMockRecorder
	isgomock struct{}
}

// MockRateLimiterMockRecorder is the mock recorder for MockRateLimiter.
type MockRateLimiterMockRecorder struct {
	mock *MockRateLimiter
}

// NewMockRateLimiter creates a new mock instance.
func NewMockRateLimiter(ctrl *gomock.Controller) *MockRateLimiter {
	mock := &MockRateLimiter{ctrl: ctrl}
	mock.recorder = &MockRateLimiterMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockRateLimiter) EXPECT() *MockRateLimiterMockRecorder {
	return m.recorder
}

// Allow mocks base method.
func (m *MockRateLimiter) Allow(ctx context.Context, key string, limit int64, window time.Duration) (*ports.RateLimitResult, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Allow", ctx, key, limit, window)
	ret0, _ := ret[0].(*ports.RateLimitResult)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Allow indicates an expected call of Allow.
func (mr *MockRateLimiterMockRecorder) Allow(ctx, key, limit, window any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Allow", reflect.TypeOf((*MockRateLimiter)(nil).Allow), ctx, key, limit, window)
}

// MockIdentityService is a mock of IdentityService interface.
type MockIdentityService struct {
	ctrl     *gomock.Controller
	recorder *MockIdentityServiceMockRecorder
	isgomock struct{}
}

// MockIdentityServiceMockRecorder is the mock recorder for MockIdentityService.
type MockIdentityServiceMockRecorder struct {
	mock *MockIdentityService
}

// NewMockIdentityService creates a new mock instance.
func NewMockIdentityService(ctrl *gomock.Controller) *MockIdentityService {
	mock := &MockIdentityService{ctrl: ctrl}
	mock.recorder = &MockIdentityServiceMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockIdentityService) EXPECT() *MockIdentityServiceMockRecorder {
	return m.recorder
}

// RegisterUser mocks base method.
func (m *MockIdentityService) RegisterUser(ctx context.Context, req ports.RegisterUserRequest) (*ports.UserSession, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "RegisterUser", ctx, req)
	ret0, _ := ret[0].(*ports.UserSession)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// RegisterUser indicates an expected call of RegisterUser.
func (mr *MockIdentityServiceMockRecorder) RegisterUser(ctx, req any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "RegisterUser", reflect.TypeOf((*MockIdentityService)(nil).RegisterUser), ctx, req)
}

// AuthenticateUser mocks base method.
func (m *MockIdentityService) AuthenticateUser(ctx context.Context, username string, password string) (*ports.UserSession, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "AuthenticateUser", ctx, username, password)
	ret0, _ := ret[0].(*ports.UserSession)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// AuthenticateUser indicates an expected call of AuthenticateUser.
func (mr *MockIdentityServiceMockRecorder) AuthenticateUser(ctx, username, password any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "AuthenticateUser", reflect.TypeOf((*MockIdentityService)(nil).AuthenticateUser), ctx, username, password)
}

// AuthenticateAdmin mocks base method.
func (m *MockIdentityService) AuthenticateAdmin(ctx context.Context, username string, password string) (*ports.AdminSession, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "AuthenticateAdmin", ctx, username, password)
	ret0, _ := ret[0].(*ports.AdminSession)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// AuthenticateAdmin indicates an expected call of AuthenticateAdmin.
func (mr *MockIdentityServiceMockRecorder) AuthenticateAdmin(ctx, username, password any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "AuthenticateAdmin", reflect.TypeOf((*MockIdentityService)(nil).AuthenticateAdmin), ctx, username, password)
}

// RegisterAdmin mocks base method.
func (m *MockIdentityService) RegisterAdmin(ctx context.Context, req ports.RegisterAdminRequest) (*domain.Admin, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "RegisterAdmin", ctx, req)
	ret0, _ := ret[0].(*domain.Admin)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// RegisterAdmin indicates an expected call of RegisterAdmin.
func (mr *MockIdentityServiceMockRecorder) RegisterAdmin(ctx, req any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "RegisterAdmin", reflect.TypeOf((*MockIdentityService)(nil).RegisterAdmin), ctx, req)
}

// GetUser mocks base method.
func (m *MockIdentityService) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetUser", ctx, id)
	ret0, _ := ret[0].(*domain.User)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetUser indicates an expected call of GetUser.
func (mr *MockIdentityServiceMockRecorder) GetUser(ctx, id any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetUser", reflect.TypeOf((*MockIdentityService)(nil).GetUser), ctx, id)
}

// GetAdmin mocks base method.
func (m *MockIdentityService) GetAdmin(ctx context.Context, id uuid.UUID) (*domain.Admin, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetAdmin", ctx, id)
	ret0, _ := ret[0].(*domain.Admin)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetAdmin indicates an expected call of GetAdmin.
func (mr *MockIdentityServiceMockRecorder) GetAdmin(ctx, id any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetAdmin", reflect.TypeOf((*MockIdentityService)(nil).GetAdmin), ctx, id)
}

// UpdateProfile mocks base method.
func (m *MockIdentityService) UpdateProfile(ctx context.Context, id uuid.UUID, req ports.UpdateProfileRequest) (*domain.User, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "UpdateProfile", ctx, id, req)
	ret0, _ := ret[0].(*domain.User)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// UpdateProfile indicates an expected call of UpdateProfile.
func (mr *MockIdentityServiceMockRecorder) UpdateProfile(ctx, id, req any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "UpdateProfile", reflect.TypeOf((*MockIdentityService)(nil).UpdateProfile), ctx, id, req)
}

// SetBlockState mocks base method.
func (m *MockIdentityService) SetBlockState(ctx context.Context, req ports.SetBlockStateRequest) (*domain.User, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "SetBlockState", ctx, req)
	ret0, _ := ret[0].(*domain.User)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// SetBlockState indicates an expected call of SetBlockState.
func (mr *MockIdentityServiceMockRecorder) SetBlockState(ctx, req any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "SetBlockState", reflect.TypeOf((*MockIdentityService)(nil).SetBlockState), ctx, req)
}

// MockLedgerService is a mock of LedgerService interface.
type MockLedgerService struct {
	ctrl     *gomock.Controller
	recorder *MockLedgerServiceMockRecorder
	isgomock struct{}
}

// MockLedgerServiceMockRecorder is the mock recorder for MockLedgerService.
type MockLedgerServiceMockRecorder struct {
	mock *MockLedgerService
}

// NewMockLedgerService creates a new mock instance.
func NewMockLedgerService(ctrl *gomock.Controller) *MockLedgerService {
	mock := &MockLedgerService{ctrl: ctrl}
	mock.recorder = &MockLedgerServiceMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockLedgerService) EXPECT() *MockLedgerServiceMockRecorder {
	return m.recorder
}

// Provision mocks base method.
func (m *MockLedgerService) Provision(ctx context.Context, userID uuid.UUID, currency domain.Currency) (*domain.Wallet, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Provision", ctx, userID, currency)
	ret0, _ := ret[0].(*domain.Wallet)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Provision indicates an expected call of Provision.
func (mr *MockLedgerServiceMockRecorder) Provision(ctx, userID, currency any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Provision", reflect.TypeOf((*MockLedgerService)(nil).Provision), ctx, userID, currency)
}

// ProvisionTx mocks base method.
func (m *MockLedgerService) ProvisionTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID, currency domain.Currency) (*domain.Wallet, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ProvisionTx", ctx, tx, userID, currency)
	ret0, _ := ret[0].(*domain.Wallet)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ProvisionTx indicates an expected call of ProvisionTx.
func (mr *MockLedgerServiceMockRecorder) ProvisionTx(ctx, tx, userID, currency any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ProvisionTx", reflect.TypeOf((*MockLedgerService)(nil).ProvisionTx), ctx, tx, userID, currency)
}

// Credit mocks base method.
func (m *MockLedgerService) Credit(ctx context.Context, req ports.CreditRequest) (*ports.CreditResult, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Credit", ctx, req)
	ret0, _ := ret[0].(*ports.CreditResult)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Credit indicates an expected call of Credit.
func (mr *MockLedgerServiceMockRecorder) Credit(ctx, req any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Credit", reflect.TypeOf((*MockLedgerService)(nil).Credit), ctx, req)
}

// Debit mocks base method.
func (m *MockLedgerService) Debit(ctx context.Context, req ports.DebitRequest) (*domain.Transaction, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Debit", ctx, req)
	ret0, _ := ret[0].(*domain.Transaction)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Debit indicates an expected call of Debit.
func (mr *MockLedgerServiceMockRecorder) Debit(ctx, req any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Debit", reflect.TypeOf((*MockLedgerService)(nil).Debit), ctx, req)
}

// Wallets mocks base method.
func (m *MockLedgerService) Wallets(ctx context.Context, userID uuid.UUID) ([]domain.Wallet, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Wallets", ctx, userID)
	ret0, _ := ret[0].([]domain.Wallet)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Wallets indicates an expected call of Wallets.
func (mr *MockLedgerServiceMockRecorder) Wallets(ctx, userID any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Wallets", reflect.TypeOf((*MockLedgerService)(nil).Wallets), ctx, userID)
}

// Wallet mocks base method.
func (m *MockLedgerService) Wallet(ctx context.Context, userID uuid.UUID, currency domain.Currency) (*domain.Wallet, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Wallet", ctx, userID, currency)
	ret0, _ := ret[0].(*domain.Wallet)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Wallet indicates an expected call of Wallet.
func (mr *MockLedgerServiceMockRecorder) Wallet(ctx, userID, currency any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Wallet", reflect.TypeOf((*MockLedgerService)(nil).Wallet), ctx, userID, currency)
}

// MockTransactionLogService is a mock of TransactionLogService interface.
type MockTransactionLogService struct {
	ctrl     *gomock.Controller
	recorder *MockTransactionLogServiceMockRecorder
	isgomock struct{}
}

// MockTransactionLogServiceMockRecorder is the mock recorder for MockTransactionLogService.
type MockTransactionLogServiceMockRecorder struct {
	mock *MockTransactionLogService
}

// NewMockTransactionLogService creates a new mock instance.
func NewMockTransactionLogService(ctrl *gomock.Controller) *MockTransactionLogService {
	mock := &MockTransactionLogService{ctrl: ctrl}
	mock.recorder = &MockTransactionLogServiceMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockTransactionLogService) EXPECT() *MockTransactionLogServiceMockRecorder {
	return m.recorder
}

// ListForUser mocks base method.
func (m *MockTransactionLogService) ListForUser(ctx context.Context, params ports.TransactionListParams) (pagination.Page[domain.Transaction], error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ListForUser", ctx, params)
	ret0, _ := ret[0].(pagination.Page[domain.Transaction])
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ListForUser indicates an expected call of ListForUser.
func (mr *MockTransactionLogServiceMockRecorder) ListForUser(ctx, params any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ListForUser", reflect.TypeOf((*MockTransactionLogService)(nil).ListForUser), ctx, params)
}

// ListAll mocks base method.
func (m *MockTransactionLogService) ListAll(ctx context.Context, page pagination.Params) (pagination.Page[domain.TransactionWithOwner], error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ListAll", ctx, page)
	ret0, _ := ret[0].(pagination.Page[domain.TransactionWithOwner])
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ListAll indicates an expected call of ListAll.
func (mr *MockTransactionLogServiceMockRecorder) ListAll(ctx, page any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ListAll", reflect.TypeOf((*MockTransactionLogService)(nil).ListAll), ctx, page)
}

// MockAuditService is a mock of AuditService interface.
type MockAuditService struct {
	ctrl     *gomock.Controller
	recorder *MockAuditServiceMockRecorder
	isgomock struct{}
}

// MockAuditServiceMockRecorder is the mock recorder for MockAuditService.
type MockAuditServiceMockRecorder struct {
	mock *MockAuditService
}

// NewMockAuditService creates a new mock instance.
func NewMockAuditService(ctrl *gomock.Controller) *MockAuditService {
	mock := &MockAuditService{ctrl: ctrl}
	mock.recorder = &MockAuditServiceMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockAuditService) EXPECT() *MockAuditServiceMockRecorder {
	return m.recorder
}

// Record mocks base method.
func (m *MockAuditService) Record(ctx context.Context, action *domain.AdminAction) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Record", ctx, action)
	ret0, _ := ret[0].(error)
	return ret0
}

// Record indicates an expected call of Record.
func (mr *MockAuditServiceMockRecorder) Record(ctx, action any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Record", reflect.TypeOf((*MockAuditService)(nil).Record), ctx, action)
}

// RecordTx mocks base method.
func (m *MockAuditService) RecordTx(ctx context.Context, tx pgx.Tx, action *domain.AdminAction) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "RecordTx", ctx, tx, action)
	ret0, _ := ret[0].(error)
	return ret0
}

// RecordTx indicates an expected call of RecordTx.
func (mr *MockAuditServiceMockRecorder) RecordTx(ctx, tx, action any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "RecordTx", reflect.TypeOf((*MockAuditService)(nil).RecordTx), ctx, tx, action)
}

// List mocks base method.
func (m *MockAuditService) List(ctx context.Context, params ports.AdminActionListParams) (pagination.Page[domain.AdminAction], error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "List", ctx, params)
	ret0, _ := ret[0].(pagination.Page[domain.AdminAction])
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// List indicates an expected call of List.
func (mr *MockAuditServiceMockRecorder) List(ctx, params any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "List", reflect.TypeOf((*MockAuditService)(nil).List), ctx, params)
}

// Recent mocks base method.
func (m *MockAuditService) Recent(ctx context.Context, limit int) ([]domain.AdminAction, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Recent", ctx, limit)
	ret0, _ := ret[0].([]domain.AdminAction)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Recent indicates an expected call of Recent.
func (mr *MockAuditServiceMockRecorder) Recent(ctx, limit any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Recent", reflect.TypeOf((*MockAuditService)(nil).Recent), ctx, limit)
}

// MockKYCService is a mock of KYCService interface.
type MockKYCService struct {
	ctrl     *gomock.Controller
	recorder *MockKYCServiceMockRecorder
	isgomock struct{}
}

// MockKYCServiceMockRecorder is the mock recorder for MockKYCService.
type MockKYCServiceMockRecorder struct {
	mock *MockKYCService
}

// NewMockKYCService creates a new mock instance.
func NewMockKYCService(ctrl *gomock.Controller) *MockKYCService {
	mock := &MockKYCService{ctrl: ctrl}
	mock.recorder = &MockKYCServiceMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockKYCService) EXPECT() *MockKYCServiceMockRecorder {
	return m.recorder
}

// Submit mocks base method.
func (m *MockKYCService) Submit(ctx context.Context, userID uuid.UUID, req ports.SubmitKYCRequest) (*domain.KYCRecord, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Submit", ctx, userID, req)
	ret0, _ := ret[0].(*domain.KYCRecord)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Submit indicates an expected call of Submit.
func (mr *MockKYCServiceMockRecorder) Submit(ctx, userID, req any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Submit", reflect.TypeOf((*MockKYCService)(nil).Submit), ctx, userID, req)
}

// Status mocks base method.
func (m *MockKYCService) Status(ctx context.Context, userID uuid.UUID) (*ports.KYCStatusView, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Status", ctx, userID)
	ret0, _ := ret[0].(*ports.KYCStatusView)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Status indicates an expected call of Status.
func (mr *MockKYCServiceMockRecorder) Status(ctx, userID any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Status", reflect.TypeOf((*MockKYCService)(nil).Status), ctx, userID)
}

// Review mocks base method.
func (m *MockKYCService) Review(ctx context.Context, req ports.ReviewKYCRequest) (*domain.KYCRecord, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Review", ctx, req)
	ret0, _ := ret[0].(*domain.KYCRecord)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Review indicates an expected call of Review.
func (mr *MockKYCServiceMockRecorder) Review(ctx, req any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Review", reflect.TypeOf((*MockKYCService)(nil).Review), ctx, req)
}

// List mocks base method.
func (m *MockKYCService) List(ctx context.Context, params ports.KYCListParams) (pagination.Page[domain.KYCRecord], error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "List", ctx, params)
	ret0, _ := ret[0].(pagination.Page[domain.KYCRecord])
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// List indicates an expected call of List.
func (mr *MockKYCServiceMockRecorder) List(ctx, params any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "List", reflect.TypeOf((*MockKYCService)(nil).List), ctx, params)
}

// MockPriceService is a mock of PriceService interface.
type MockPriceService struct {
	ctrl     *gomock.Controller
	recorder *MockPriceServiceMockRecorder
	isgomock struct{}
}

// MockPriceServiceMockRecorder is the mock recorder for MockPriceService.
type MockPriceServiceMockRecorder struct {
	mock *MockPriceService
}

// NewMockPriceService creates a new mock instance.
func NewMockPriceService(ctrl *gomock.Controller) *MockPriceService {
	mock := &MockPriceService{ctrl: ctrl}
	mock.recorder = &MockPriceServiceMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockPriceService) EXPECT() *MockPriceServiceMockRecorder {
	return m.recorder
}

// Prices mocks base method.
func (m *MockPriceService) Prices(ctx context.Context) (*ports.PriceQuote, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Prices", ctx)
	ret0, _ := ret[0].(*ports.PriceQuote)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Prices indicates an expected call of Prices.
func (mr *MockPriceServiceMockRecorder) Prices(ctx any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Prices", reflect.TypeOf((*MockPriceService)(nil).Prices), ctx)
}

// MockSessionGateway is a mock of SessionGateway interface.
type MockSessionGateway struct {
	ctrl     *gomock.Controller
	recorder *MockSessionGatewayMockRecorder
	isgomock struct{}
}

// MockSessionGatewayMockRecorder is the mock recorder for MockSessionGateway.
type MockSessionGatewayMockRecorder struct {
	mock *MockSessionGateway
}

// NewMockSessionGateway creates a new mock instance.
func NewMockSessionGateway(ctrl *gomock.Controller) *MockSessionGateway {
	mock := &MockSessionGateway{ctrl: ctrl}
	mock.recorder = &MockSessionGatewayMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockSessionGateway) EXPECT() *MockSessionGatewayMockRecorder {
	return m.recorder
}

// Resolve mocks base method.
func (m *MockSessionGateway) Resolve(ctx context.Context, authHeader string) (*ports.Session, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Resolve", ctx, authHeader)
	ret0, _ := ret[0].(*ports.Session)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Resolve indicates an expected call of Resolve.
func (mr *MockSessionGatewayMockRecorder) Resolve(ctx, authHeader any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Resolve", reflect.TypeOf((*MockSessionGateway)(nil).Resolve), ctx, authHeader)
}
