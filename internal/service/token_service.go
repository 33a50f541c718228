package service

import (
	"errors"
	"fmt"
	"time"

	"custodial-wallet/config"
	"custodial-wallet/internal/core/domain"
	"custodial-wallet/internal/core/ports"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTTokenService implements ports.TokenService with HS256 and a key ring.
// New tokens are signed with the current key and carry its id in the "kid"
// header; retired keys still verify until they are dropped from config.
type JWTTokenService struct {
	kid         string
	keys        map[string][]byte
	userExpiry  time.Duration
	adminExpiry time.Duration
	issuer      string
	now         func() time.Time
}

func NewJWTTokenService(cfg config.JWTConfig) (*JWTTokenService, error) {
	previous, err := cfg.VerificationKeys()
	if err != nil {
		return nil, err
	}
	if cfg.Secret == "" || cfg.KeyID == "" {
		return nil, errors.New("jwt secret and key id are required")
	}

	keys := make(map[string][]byte, len(previous)+1)
	for kid, secret := range previous {
		keys[kid] = []byte(secret)
	}
	keys[cfg.KeyID] = []byte(cfg.Secret)

	return &JWTTokenService{
		kid:         cfg.KeyID,
		keys:        keys,
		userExpiry:  cfg.UserExpiry,
		adminExpiry: cfg.AdminExpiry,
		issuer:      cfg.Issuer,
		now:         time.Now,
	}, nil
}

// Issue signs a token for p. Admin sessions use the shorter admin expiry.
func (s *JWTTokenService) Issue(p ports.Principal) (string, time.Time, error) {
	now := s.now()
	ttl := s.userExpiry
	if p.IsAdmin() {
		ttl = s.adminExpiry
	}
	expiresAt := now.Add(ttl)

	claims := jwt.MapClaims{
		"sub":  p.ID.String(),
		"kind": string(p.Kind),
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
		"iss":  s.issuer,
	}
	if p.IsAdmin() {
		claims["role"] = string(p.Role)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["kid"] = s.kid
	signed, err := token.SignedString(s.keys[s.kid])
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing token: %w", err)
	}
	return signed, expiresAt, nil
}

// Parse verifies signature, expiry and issuer. Expired tokens yield
// ports.ErrTokenExpired; every other failure wraps ports.ErrTokenMalformed.
func (s *JWTTokenService) Parse(tokenString string) (*ports.TokenClaims, error) {
	var kid string
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		kid, _ = t.Header["kid"].(string)
		key, ok := s.keys[kid]
		if !ok {
			return nil, fmt.Errorf("unknown key id %q", kid)
		}
		return key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ports.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ports.ErrTokenMalformed, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: invalid claims", ports.ErrTokenMalformed)
	}

	sub, _ := claims["sub"].(string)
	id, err := uuid.Parse(sub)
	if err != nil {
		return nil, fmt.Errorf("%w: subject: %v", ports.ErrTokenMalformed, err)
	}

	kind := domain.PrincipalKind(stringClaim(claims, "kind"))
	if kind != domain.PrincipalUser && kind != domain.PrincipalAdmin {
		return nil, fmt.Errorf("%w: kind %q", ports.ErrTokenMalformed, kind)
	}
	p := ports.Principal{Kind: kind, ID: id}
	if kind == domain.PrincipalAdmin {
		p.Role = domain.AdminRole(stringClaim(claims, "role"))
		if !p.Role.IsValid() {
			return nil, fmt.Errorf("%w: role %q", ports.ErrTokenMalformed, p.Role)
		}
	}

	out := &ports.TokenClaims{Principal: p, KeyID: kid}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		out.IssuedAt = iat.Time
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}

func stringClaim(c jwt.MapClaims, name string) string {
	v, _ := c[name].(string)
	return v
}
