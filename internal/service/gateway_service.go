package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"custodial-wallet/internal/core/domain"
	"custodial-wallet/internal/core/ports"
	"custodial-wallet/pkg/apperror"
)

const bearerPrefix = "Bearer "

// SessionGatewayImpl implements ports.SessionGateway. It walks a request
// from no credentials to one of valid, expired, malformed, account missing
// or account inactive.
type SessionGatewayImpl struct {
	tokens ports.TokenService
	users  ports.UserRepository
	admins ports.AdminRepository
}

func NewSessionGateway(tokens ports.TokenService, users ports.UserRepository, admins ports.AdminRepository) *SessionGatewayImpl {
	return &SessionGatewayImpl{tokens: tokens, users: users, admins: admins}
}

// Resolve returns an Unauthorized error for anything but a valid token whose
// account still exists. Inactive accounts resolve with Session.Inactive set.
func (g *SessionGatewayImpl) Resolve(ctx context.Context, authHeader string) (*ports.Session, error) {
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return nil, apperror.ErrInvalidToken().WithDetail("reason", "missing bearer token")
	}
	raw := strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix))
	if raw == "" {
		return nil, apperror.ErrInvalidToken().WithDetail("reason", "missing bearer token")
	}

	claims, err := g.tokens.Parse(raw)
	if err != nil {
		if errors.Is(err, ports.ErrTokenExpired) {
			return nil, apperror.ErrTokenExpired()
		}
		return nil, apperror.ErrInvalidToken()
	}

	session := &ports.Session{Principal: claims.Principal, ExpiresAt: claims.ExpiresAt}
	switch claims.Principal.Kind {
	case domain.PrincipalUser:
		user, err := g.users.GetByID(ctx, claims.Principal.ID)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("resolve user: %w", err))
		}
		if user == nil {
			return nil, apperror.ErrAccountMissing()
		}
		session.User = user
		if user.IsBlocked {
			session.Inactive = apperror.ErrAccountBlocked(user.BlockReason(), user.BlockedAt)
		}
	case domain.PrincipalAdmin:
		admin, err := g.admins.GetByID(ctx, claims.Principal.ID)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("resolve admin: %w", err))
		}
		if admin == nil {
			return nil, apperror.ErrAccountMissing()
		}
		session.Admin = admin
		session.Principal.Role = admin.Role
		if !admin.IsActive {
			session.Inactive = apperror.ErrAdminInactive()
		}
	default:
		return nil, apperror.ErrInvalidToken()
	}
	return session, nil
}
