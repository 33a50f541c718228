package handler

import (
	"custodial-wallet/internal/core/ports"
	"custodial-wallet/pkg/response"

	"github.com/gin-gonic/gin"
)

// PriceHandler serves GET /api/v1/crypto/prices.
type PriceHandler struct {
	prices ports.PriceService
}

func NewPriceHandler(prices ports.PriceService) *PriceHandler {
	return &PriceHandler{prices: prices}
}

func (h *PriceHandler) Prices(c *gin.Context) {
	quote, err := h.prices.Prices(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, quote)
}
