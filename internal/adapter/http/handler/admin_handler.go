package handler

import (
	"strings"

	"custodial-wallet/internal/adapter/http/dto"
	"custodial-wallet/internal/core/domain"
	"custodial-wallet/internal/core/ports"
	"custodial-wallet/pkg/apperror"
	"custodial-wallet/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AdminHandler serves the /admin surface. Every authenticated route goes
// through ports.AdminService, which writes the audit entry.
type AdminHandler struct {
	identity ports.IdentityService
	admin    ports.AdminService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(identity ports.IdentityService, admin ports.AdminService) *AdminHandler {
	return &AdminHandler{identity: identity, admin: admin}
}

// Login handles POST /api/v1/admin/login.
func (h *AdminHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	session, err := h.identity.AuthenticateAdmin(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.AdminAuthResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt.Unix(),
		Admin:     session.Admin,
	})
}

// Register handles POST /api/v1/admin/register.
func (h *AdminHandler) Register(c *gin.Context) {
	actor, ok := principalID(c)
	if !ok {
		return
	}
	var req dto.RegisterAdminRequest
	if !bindJSON(c, &req) {
		return
	}

	admin, err := h.admin.RegisterAdmin(c.Request.Context(), actor, ports.RegisterAdminRequest{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     domain.AdminRole(req.Role),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, admin)
}

// Profile handles GET /api/v1/admin/profile.
func (h *AdminHandler) Profile(c *gin.Context) {
	actor, ok := principalID(c)
	if !ok {
		return
	}
	admin, err := h.identity.GetAdmin(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, admin)
}

// Dashboard handles GET /api/v1/admin/dashboard.
func (h *AdminHandler) Dashboard(c *gin.Context) {
	actor, ok := principalID(c)
	if !ok {
		return
	}
	stats, err := h.admin.Dashboard(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, stats)
}

// ListUsers handles GET /api/v1/admin/users?search=&status=.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	actor, ok := principalID(c)
	if !ok {
		return
	}
	var q dto.UserListQuery
	if !bindQuery(c, &q) {
		return
	}

	page, err := h.admin.ListUsers(c.Request.Context(), actor, ports.UserListParams{
		Search: q.Search,
		Status: domain.UserStatusFilter(q.Status),
		Page:   q.Params(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, page)
}

// UserDetails handles GET /api/v1/admin/users/:id.
func (h *AdminHandler) UserDetails(c *gin.Context) {
	actor, ok := principalID(c)
	if !ok {
		return
	}
	userID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	details, err := h.admin.UserDetails(c.Request.Context(), actor, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, details)
}

// Block handles POST /api/v1/admin/users/:id/block. The body is optional.
func (h *AdminHandler) Block(c *gin.Context) {
	actor, ok := principalID(c)
	if !ok {
		return
	}
	userID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.BlockRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	user, err := h.admin.BlockUser(c.Request.Context(), actor, userID, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, user)
}

// Unblock handles POST /api/v1/admin/users/:id/unblock.
func (h *AdminHandler) Unblock(c *gin.Context) {
	actor, ok := principalID(c)
	if !ok {
		return
	}
	userID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	user, err := h.admin.UnblockUser(c.Request.Context(), actor, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, user)
}

// UserWallets handles GET /api/v1/admin/users/:id/wallets.
func (h *AdminHandler) UserWallets(c *gin.Context) {
	actor, ok := principalID(c)
	if !ok {
		return
	}
	userID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	wallets, err := h.admin.UserWallets(c.Request.Context(), actor, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, wallets)
}

// ListWallets handles GET /api/v1/admin/wallets?currency=&user_id=.
func (h *AdminHandler) ListWallets(c *gin.Context) {
	actor, ok := principalID(c)
	if !ok {
		return
	}
	var q dto.WalletListQuery
	if !bindQuery(c, &q) {
		return
	}
	params := ports.WalletListParams{
		Currency: currencyFilter(q.Currency),
		Page:     q.Params(),
	}
	if q.UserID != "" {
		id := uuid.MustParse(q.UserID) // validated by binding
		params.UserID = &id
	}

	page, err := h.admin.ListWallets(c.Request.Context(), actor, params)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, page)
}

// SendCrypto handles POST /api/v1/admin/send-crypto.
func (h *AdminHandler) SendCrypto(c *gin.Context) {
	actor, ok := principalID(c)
	if !ok {
		return
	}
	var req dto.SendCryptoRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.UserID == nil && req.Username == "" {
		response.Error(c, apperror.Validation("user_id or username is required"))
		return
	}
	amount, ok := parseAmount(c, req.Amount)
	if !ok {
		return
	}

	in := ports.SendCryptoRequest{
		Username: req.Username,
		Currency: domain.Currency(strings.ToUpper(req.Currency)),
		Amount:   amount,
		Note:     req.Note,
	}
	if req.UserID != nil {
		id := uuid.MustParse(*req.UserID)
		in.UserID = &id
	}

	result, err := h.admin.SendCrypto(c.Request.Context(), actor, in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// CryptoTransfers handles GET /api/v1/admin/crypto-transfers.
func (h *AdminHandler) CryptoTransfers(c *gin.Context) {
	actor, ok := principalID(c)
	if !ok {
		return
	}
	var q dto.PageQuery
	if !bindQuery(c, &q) {
		return
	}
	page, err := h.admin.CryptoTransfers(c.Request.Context(), actor, q.Params())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, page)
}

// Transactions handles GET /api/v1/admin/transactions.
func (h *AdminHandler) Transactions(c *gin.Context) {
	actor, ok := principalID(c)
	if !ok {
		return
	}
	var q dto.PageQuery
	if !bindQuery(c, &q) {
		return
	}
	page, err := h.admin.ListTransactions(c.Request.Context(), actor, q.Params())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, page)
}

// Actions handles GET /api/v1/admin/actions?action_type=.
func (h *AdminHandler) Actions(c *gin.Context) {
	actor, ok := principalID(c)
	if !ok {
		return
	}
	var q dto.ActionListQuery
	if !bindQuery(c, &q) {
		return
	}
	params := ports.AdminActionListParams{Page: q.Params()}
	if q.Kind != "" {
		kind := domain.ActionKind(q.Kind)
		params.Kind = &kind
	}

	page, err := h.admin.ListActions(c.Request.Context(), actor, params)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, page)
}

// ListKYC handles GET /api/v1/admin/kyc?status=.
func (h *AdminHandler) ListKYC(c *gin.Context) {
	actor, ok := principalID(c)
	if !ok {
		return
	}
	var q dto.KYCListQuery
	if !bindQuery(c, &q) {
		return
	}
	params := ports.KYCListParams{Page: q.Params()}
	if q.Status != "" {
		status := domain.KYCStatus(q.Status)
		params.Status = &status
	}

	page, err := h.admin.ListKYC(c.Request.Context(), actor, params)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, page)
}

// ReviewKYC handles POST /api/v1/admin/kyc/:id/review.
func (h *AdminHandler) ReviewKYC(c *gin.Context) {
	actor, ok := principalID(c)
	if !ok {
		return
	}
	recordID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.ReviewKYCRequest
	if !bindJSON(c, &req) {
		return
	}

	record, err := h.admin.ReviewKYC(c.Request.Context(), actor, ports.ReviewKYCRequest{
		RecordID: recordID,
		Decision: domain.KYCDecision(req.Decision),
		Notes:    req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, record)
}
