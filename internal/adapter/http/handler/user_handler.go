package handler

import (
	"custodial-wallet/internal/adapter/http/dto"
	"custodial-wallet/internal/core/ports"
	"custodial-wallet/pkg/response"

	"github.com/gin-gonic/gin"
)

// UserHandler serves the signed-in user's profile, block status and KYC.
type UserHandler struct {
	identity ports.IdentityService
	kyc      ports.KYCService
}

func NewUserHandler(identity ports.IdentityService, kyc ports.KYCService) *UserHandler {
	return &UserHandler{identity: identity, kyc: kyc}
}

// Profile handles GET /api/v1/users/me.
func (h *UserHandler) Profile(c *gin.Context) {
	id, ok := principalID(c)
	if !ok {
		return
	}
	user, err := h.identity.GetUser(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, user)
}

// UpdateProfile handles PUT /api/v1/users/me.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	id, ok := principalID(c)
	if !ok {
		return
	}
	var req dto.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.identity.UpdateProfile(c.Request.Context(), id, ports.UpdateProfileRequest{
		FirstName:          req.FirstName,
		LastName:           req.LastName,
		Phone:              req.Phone,
		ProfileImage:       req.ProfileImage,
		FingerprintEnabled: req.FingerprintEnabled,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, user)
}

// Status handles GET /api/v1/users/me/status. Blocked users reach it too.
func (h *UserHandler) Status(c *gin.Context) {
	id, ok := principalID(c)
	if !ok {
		return
	}
	user, err := h.identity.GetUser(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.BlockStatusResponse{
		IsBlocked:     user.IsBlocked,
		BlockedAt:     user.BlockedAt,
		BlockedReason: user.BlockedReason,
	})
}

// SubmitKYC handles POST /api/v1/kyc.
func (h *UserHandler) SubmitKYC(c *gin.Context) {
	id, ok := principalID(c)
	if !ok {
		return
	}
	var req dto.SubmitKYCRequest
	if !bindJSON(c, &req) {
		return
	}

	record, err := h.kyc.Submit(c.Request.Context(), id, ports.SubmitKYCRequest{
		DocumentType:   req.DocumentType,
		DocumentNumber: req.DocumentNumber,
		DocumentFront:  req.DocumentFront,
		DocumentBack:   req.DocumentBack,
		Selfie:         req.Selfie,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// KYCStatus handles GET /api/v1/kyc/status.
func (h *UserHandler) KYCStatus(c *gin.Context) {
	id, ok := principalID(c)
	if !ok {
		return
	}
	view, err := h.kyc.Status(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, view)
}
