package handler

import (
	"strings"

	"custodial-wallet/internal/adapter/http/dto"
	"custodial-wallet/internal/core/domain"
	"custodial-wallet/internal/core/ports"
	"custodial-wallet/pkg/response"

	"github.com/gin-gonic/gin"
)

// WalletHandler handles a user's wallets and transaction history.
type WalletHandler struct {
	ledger ports.LedgerService
	txLog  ports.TransactionLogService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(ledger ports.LedgerService, txLog ports.TransactionLogService) *WalletHandler {
	return &WalletHandler{ledger: ledger, txLog: txLog}
}

// List handles GET /api/v1/wallets.
func (h *WalletHandler) List(c *gin.Context) {
	userID, ok := principalID(c)
	if !ok {
		return
	}
	wallets, err := h.ledger.Wallets(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, wallets)
}

// Get handles GET /api/v1/wallets/:currency.
func (h *WalletHandler) Get(c *gin.Context) {
	userID, ok := principalID(c)
	if !ok {
		return
	}
	currency := domain.Currency(strings.ToUpper(c.Param("currency")))
	wallet, err := h.ledger.Wallet(c.Request.Context(), userID, currency)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, wallet)
}

// Send handles POST /api/v1/wallets/send.
func (h *WalletHandler) Send(c *gin.Context) {
	userID, ok := principalID(c)
	if !ok {
		return
	}
	var req dto.SendRequest
	if !bindJSON(c, &req) {
		return
	}
	amount, ok := parseAmount(c, req.Amount)
	if !ok {
		return
	}

	txn, err := h.ledger.Debit(c.Request.Context(), ports.DebitRequest{
		UserID:    userID,
		Currency:  domain.Currency(strings.ToUpper(req.Currency)),
		Amount:    amount,
		ToAddress: req.ToAddress,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, txn)
}

// Transactions handles GET /api/v1/transactions.
func (h *WalletHandler) Transactions(c *gin.Context) {
	userID, ok := principalID(c)
	if !ok {
		return
	}
	var q dto.TransactionListQuery
	if !bindQuery(c, &q) {
		return
	}

	page, err := h.txLog.ListForUser(c.Request.Context(), ports.TransactionListParams{
		UserID:   userID,
		Currency: currencyFilter(q.Currency),
		Page:     q.Params(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, page)
}
