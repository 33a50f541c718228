package handler

import (
	"strings"

	"custodial-wallet/internal/adapter/http/dto"
	"custodial-wallet/internal/adapter/http/middleware"
	"custodial-wallet/internal/core/domain"
	"custodial-wallet/pkg/apperror"
	"custodial-wallet/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// bindJSON binds and sanitises a request body, writing a VAL_001 response on
// failure.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return false
	}
	dto.SanitizeStruct(req)
	return true
}

func bindQuery(c *gin.Context, q any) bool {
	if err := c.ShouldBindQuery(q); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return false
	}
	dto.SanitizeStruct(q)
	return true
}

// principalID returns the authenticated principal id.
func principalID(c *gin.Context) (uuid.UUID, bool) {
	s := middleware.SessionFrom(c)
	if s == nil {
		response.Error(c, apperror.ErrInvalidToken())
		return uuid.Nil, false
	}
	return s.Principal.ID, true
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.Error(c, apperror.Validation("invalid "+name).WithDetail(name, c.Param(name)))
		return uuid.Nil, false
	}
	return id, true
}

// parseAmount reads a validated decimal_amount field.
func parseAmount(c *gin.Context, raw string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		response.Error(c, apperror.ErrInvalidAmount())
		return decimal.Decimal{}, false
	}
	return d, true
}

// currencyFilter turns an optional query value into a filter; services
// reject unsupported codes.
func currencyFilter(raw string) *domain.Currency {
	if raw == "" {
		return nil
	}
	cur := domain.Currency(strings.ToUpper(raw))
	return &cur
}
