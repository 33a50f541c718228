// Package mocks holds gomock mocks for the ports interfaces in admin.go,
// kept in mockgen's output format.
package mocks

import (
	"context"
	"reflect"

	"custodial-wallet/internal/core/domain"
	"custodial-wallet/internal/core/ports"
	"custodial-wallet/pkg/pagination"

	"github.com/google/uuid"
	"go.uber.org/mock/gomock"
)

// MockAdminService is a mock of AdminService interface.
type MockAdminService struct {
	ctrl     *gomock.Controller
	recorder *MockAdminServiceMockRecorder
	isgomock struct{}
}

// MockAdminServiceMockRecorder is the mock recorder for MockAdminService.
type MockAdminServiceMockRecorder struct {
	mock *MockAdminService
}

// NewMockAdminService creates a new mock instance.
func NewMockAdminService(ctrl *gomock.Controller) *MockAdminService {
	mock := &MockAdminService{ctrl: ctrl}
	mock.recorder = &MockAdminServiceMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockAdminService) EXPECT() *MockAdminServiceMockRecorder {
	return m.recorder
}

// RegisterAdmin mocks base method.
func (m *MockAdminService) RegisterAdmin(ctx context.Context, actor uuid.UUID, req ports.RegisterAdminRequest) (*domain.Admin, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "RegisterAdmin", ctx, actor, req)
	ret0, _ := ret[0].(*domain.Admin)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// RegisterAdmin indicates an expected call of RegisterAdmin.
func (mr *MockAdminServiceMockRecorder) RegisterAdmin(ctx, actor, req any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "RegisterAdmin", reflect.TypeOf((*MockAdminService)(nil).RegisterAdmin), ctx, actor, req)
}

// ListUsers mocks base method.
func (m *MockAdminService) ListUsers(ctx context.Context, actor uuid.UUID, params ports.UserListParams) (pagination.Page[domain.User], error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ListUsers", ctx, actor, params)
	ret0, _ := ret[0].(pagination.Page[domain.User])
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ListUsers indicates an expected call of ListUsers.
func (mr *MockAdminServiceMockRecorder) ListUsers(ctx, actor, params any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ListUsers", reflect.TypeOf((*MockAdminService)(nil).ListUsers), ctx, actor, params)
}

// UserDetails mocks base method.
func (m *MockAdminService) UserDetails(ctx context.Context, actor uuid.UUID, userID uuid.UUID) (*ports.UserDetails, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "UserDetails", ctx, actor, userID)
	ret0, _ := ret[0].(*ports.UserDetails)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// UserDetails indicates an expected call of UserDetails.
func (mr *MockAdminServiceMockRecorder) UserDetails(ctx, actor, userID any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "UserDetails", reflect.TypeOf((*MockAdminService)(nil).UserDetails), ctx, actor, userID)
}

// BlockUser mocks base method.
func (m *MockAdminService) BlockUser(ctx context.Context, actor uuid.UUID, userID uuid.UUID, reason string) (*domain.User, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "BlockUser", ctx, actor, userID, reason)
	ret0, _ := ret[0].(*domain.User)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// BlockUser indicates an expected call of BlockUser.
func (mr *MockAdminServiceMockRecorder) BlockUser(ctx, actor, userID, reason any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "BlockUser", reflect.TypeOf((*MockAdminService)(nil).BlockUser), ctx, actor, userID, reason)
}

// UnblockUser mocks base method.
func (m *MockAdminService) UnblockUser(ctx context.Context, actor uuid.UUID, userID uuid.UUID) (*domain.User, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "UnblockUser", ctx, actor, userID)
	ret0, _ := ret[0].(*domain.User)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// UnblockUser indicates an expected call of UnblockUser.
func (mr *MockAdminServiceMockRecorder) UnblockUser(ctx, actor, userID any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "UnblockUser", reflect.TypeOf((*MockAdminService)(nil).UnblockUser), ctx, actor, userID)
}

// ListWallets mocks base method.
func (m *MockAdminService) ListWallets(ctx context.Context, actor uuid.UUID, params ports.WalletListParams) (pagination.Page[domain.WalletWithOwner], error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ListWallets", ctx, actor, params)
	ret0, _ := ret[0].(pagination.Page[domain.WalletWithOwner])
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ListWallets indicates an expected call of ListWallets.
func (mr *MockAdminServiceMockRecorder) ListWallets(ctx, actor, params any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ListWallets", reflect.TypeOf((*MockAdminService)(nil).ListWallets), ctx, actor, params)
}

// UserWallets mocks base method.
func (m *MockAdminService) UserWallets(ctx context.Context, actor uuid.UUID, userID uuid.UUID) ([]domain.Wallet, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "UserWallets", ctx, actor, userID)
	ret0, _ := ret[0].([]domain.Wallet)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// UserWallets indicates an expected call of UserWallets.
func (mr *MockAdminServiceMockRecorder) UserWallets(ctx, actor, userID any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "UserWallets", reflect.TypeOf((*MockAdminService)(nil).UserWallets), ctx, actor, userID)
}

// SendCrypto mocks base method.
func (m *MockAdminService) SendCrypto(ctx context.Context, actor uuid.UUID, req ports.SendCryptoRequest) (*ports.CreditResult, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "SendCrypto", ctx, actor, req)
	ret0, _ := ret[0].(*ports.CreditResult)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// SendCrypto indicates an expected call of SendCrypto.
func (mr *MockAdminServiceMockRecorder) SendCrypto(ctx, actor, req any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "SendCrypto", reflect.TypeOf((*MockAdminService)(nil).SendCrypto), ctx, actor, req)
}

// CryptoTransfers mocks base method.
func (m *MockAdminService) CryptoTransfers(ctx context.Context, actor uuid.UUID, page pagination.Params) (pagination.Page[ports.CryptoTransfer], error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "CryptoTransfers", ctx, actor, page)
	ret0, _ := ret[0].(pagination.Page[ports.CryptoTransfer])
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// CryptoTransfers indicates an expected call of CryptoTransfers.
func (mr *MockAdminServiceMockRecorder) CryptoTransfers(ctx, actor, page any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "CryptoTransfers", reflect.TypeOf((*MockAdminService)(nil).CryptoTransfers), ctx, actor, page)
}

// ListTransactions mocks base method.
func (m *MockAdminService) ListTransactions(ctx context.Context, actor uuid.UUID, page pagination.Params) (pagination.Page[domain.TransactionWithOwner], error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ListTransactions", ctx, actor, page)
	ret0, _ := ret[0].(pagination.Page[domain.TransactionWithOwner])
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ListTransactions indicates an expected call of ListTransactions.
func (mr *MockAdminServiceMockRecorder) ListTransactions(ctx, actor, page any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ListTransactions", reflect.TypeOf((*MockAdminService)(nil).ListTransactions), ctx, actor, page)
}

// ListActions mocks base method.
func (m *MockAdminService) ListActions(ctx context.Context, actor uuid.UUID, params ports.AdminActionListParams) (pagination.Page[domain.AdminAction], error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ListActions", ctx, actor, params)
	ret0, _ := ret[0].(pagination.Page[domain.AdminAction])
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ListActions indicates an expected call of ListActions.
func (mr *MockAdminServiceMockRecorder) ListActions(ctx, actor, params any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ListActions", reflect.TypeOf((*MockAdminService)(nil).ListActions), ctx, actor, params)
}

// Dashboard mocks base method.
func (m *MockAdminService) Dashboard(ctx context.Context, actor uuid.UUID) (*ports.DashboardStats, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Dashboard", ctx, actor)
	ret0, _ := ret[0].(*ports.DashboardStats)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Dashboard indicates an expected call of Dashboard.
func (mr *MockAdminServiceMockRecorder) Dashboard(ctx, actor any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Dashboard", reflect.TypeOf((*MockAdminService)(nil).Dashboard), ctx, actor)
}

// ListKYC mocks base method.
func (m *MockAdminService) ListKYC(ctx context.Context, actor uuid.UUID, params ports.KYCListParams) (pagination.Page[domain.KYCRecord], error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ListKYC", ctx, actor, params)
	ret0, _ := ret[0].(pagination.Page[domain.KYCRecord])
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ListKYC indicates an expected call of ListKYC.
func (mr *MockAdminServiceMockRecorder) ListKYC(ctx, actor, params any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ListKYC", reflect.TypeOf((*MockAdminService)(nil).ListKYC), ctx, actor, params)
}

// ReviewKYC mocks base method.
func (m *MockAdminService) ReviewKYC(ctx context.Context, actor uuid.UUID, req ports.ReviewKYCRequest) (*domain.KYCRecord, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ReviewKYC", ctx, actor, req)
	ret0, _ := ret[0].(*domain.KYCRecord)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ReviewKYC indicates an expected call of ReviewKYC.
func (mr *MockAdminServiceMockRecorder) ReviewKYC(ctx, actor, req any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ReviewKYC", reflect.TypeOf((*MockAdminService)(nil).ReviewKYC), ctx, actor, req)
}
