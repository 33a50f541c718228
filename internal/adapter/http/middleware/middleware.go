package middleware

import (
	"net/http"
	"time"

	"custodial-wallet/internal/core/domain"
	"custodial-wallet/internal/core/ports"
	"custodial-wallet/pkg/apperror"
	"custodial-wallet/pkg/idgen"
	"custodial-wallet/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	HeaderRequestID = "X-Request-ID"

	// Context keys
	CtxSession = "session"

	maxInboundRequestID = 64
)

// RequestID propagates a caller-supplied X-Request-ID or assigns a ULID.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > maxInboundRequestID {
			id = idgen.RequestID()
		}
		c.Set(response.CtxRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// Authenticate resolves the bearer token into a session of the given kind.
// Blocked users and deactivated admins are rejected with 403.
func Authenticate(gw ports.SessionGateway, kind domain.PrincipalKind) gin.HandlerFunc {
	return authenticate(gw, kind, false)
}

// AuthenticateAllowBlocked is Authenticate for the few routes a blocked
// account may still reach.
func AuthenticateAllowBlocked(gw ports.SessionGateway, kind domain.PrincipalKind) gin.HandlerFunc {
	return authenticate(gw, kind, true)
}

func authenticate(gw ports.SessionGateway, kind domain.PrincipalKind, allowInactive bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := gw.Resolve(c.Request.Context(), c.GetHeader("Authorization"))
		if err != nil {
			response.Abort(c, err)
			return
		}

		if session.Principal.Kind != kind {
			if kind == domain.PrincipalAdmin {
				response.Abort(c, apperror.ErrAdminRequired())
			} else {
				response.Abort(c, apperror.ErrInvalidToken().WithDetail("reason", "user session required"))
			}
			return
		}

		if session.Inactive != nil && !allowInactive {
			response.Abort(c, session.Inactive)
			return
		}

		c.Set(CtxSession, session)
		c.Next()
	}
}

// SessionFrom returns the session stored by Authenticate, or nil.
func SessionFrom(c *gin.Context) *ports.Session {
	v, ok := c.Get(CtxSession)
	if !ok {
		return nil
	}
	s, _ := v.(*ports.Session)
	return s
}

// RequestLogger creates a middleware that logs every HTTP request.
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()

		event := log.Info()
		if status >= http.StatusInternalServerError {
			event = log.Error()
		} else if status >= http.StatusBadRequest {
			event = log.Warn()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", latency).
			Str("client_ip", c.ClientIP()).
			Str("request_id", c.GetString(response.CtxRequestID)).
			Msg("http request")
	}
}

// Recovery creates a panic recovery middleware.
func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().
					Interface("panic", r).
					Str("path", c.Request.URL.Path).
					Str("request_id", c.GetString(response.CtxRequestID)).
					Msg("panic recovered")
				response.Abort(c, apperror.New("SYS_001", "Internal server error", apperror.KindInternal))
			}
		}()
		c.Next()
	}
}
