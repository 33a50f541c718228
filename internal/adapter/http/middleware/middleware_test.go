package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"custodial-wallet/internal/core/domain"
	"custodial-wallet/internal/core/ports"
	"custodial-wallet/internal/core/ports/mocks"
	"custodial-wallet/pkg/apperror"
	"custodial-wallet/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) response.ErrorResponse {
	t.Helper()
	var resp response.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func authRouter(gw ports.SessionGateway, mw func(ports.SessionGateway, domain.PrincipalKind) gin.HandlerFunc, kind domain.PrincipalKind) *gin.Engine {
	r := gin.New()
	r.GET("/test", mw(gw, kind), func(c *gin.Context) {
		s := SessionFrom(c)
		c.JSON(http.StatusOK, gin.H{"id": s.Principal.ID.String()})
	})
	return r
}

func TestAuthenticate(t *testing.T) {
	userID := uuid.New()
	adminID := uuid.New()
	blockedAt := time.Now()

	userSession := &ports.Session{Principal: ports.Principal{Kind: domain.PrincipalUser, ID: userID}}
	blockedSession := &ports.Session{
		Principal: ports.Principal{Kind: domain.PrincipalUser, ID: userID},
		Inactive:  apperror.ErrAccountBlocked("fraud", &blockedAt),
	}
	adminSession := &ports.Session{Principal: ports.Principal{Kind: domain.PrincipalAdmin, ID: adminID, Role: domain.AdminRoleAdmin}}

	tests := []struct {
		name       string
		want       domain.PrincipalKind
		allowBlock bool
		session    *ports.Session
		resolveErr error
		status     int
		code       string
	}{
		{name: "valid user", want: domain.PrincipalUser, session: userSession, status: http.StatusOK},
		{name: "valid admin", want: domain.PrincipalAdmin, session: adminSession, status: http.StatusOK},
		{name: "gateway rejects", want: domain.PrincipalUser, resolveErr: apperror.ErrTokenExpired(), status: http.StatusUnauthorized, code: "AUTH_006"},
		{name: "user on admin route", want: domain.PrincipalAdmin, session: userSession, status: http.StatusForbidden, code: "AUTH_008"},
		{name: "admin on user route", want: domain.PrincipalUser, session: adminSession, status: http.StatusUnauthorized, code: "AUTH_003"},
		{name: "blocked user", want: domain.PrincipalUser, session: blockedSession, status: http.StatusForbidden, code: "AUTH_004"},
		{name: "blocked user on status route", want: domain.PrincipalUser, allowBlock: true, session: blockedSession, status: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			gw := mocks.NewMockSessionGateway(ctrl)
			gw.EXPECT().Resolve(gomock.Any(), "Bearer tok").Return(tt.session, tt.resolveErr)

			mw := Authenticate
			if tt.allowBlock {
				mw = AuthenticateAllowBlocked
			}
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.Header.Set("Authorization", "Bearer tok")
			w := httptest.NewRecorder()
			authRouter(gw, mw, tt.want).ServeHTTP(w, req)

			require.Equal(t, tt.status, w.Code, w.Body.String())
			if tt.code != "" {
				assert.Equal(t, tt.code, decodeError(t, w).ErrorCode)
			}
		})
	}
}

func TestAuthenticate_BlockedUserSeesReason(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	gw := mocks.NewMockSessionGateway(ctrl)
	gw.EXPECT().Resolve(gomock.Any(), "").Return(&ports.Session{
		Principal: ports.Principal{Kind: domain.PrincipalUser, ID: uuid.New()},
		Inactive:  apperror.ErrAccountBlocked("chargebacks", nil),
	}, nil)

	w := httptest.NewRecorder()
	authRouter(gw, Authenticate, domain.PrincipalUser).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "chargebacks", decodeError(t, w).Details["blocked_reason"])
}

func TestSessionFrom_Missing(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, SessionFrom(c))
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/test", func(c *gin.Context) {
		response.OK(c, nil)
	})

	t.Run("generated", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
		id := w.Header().Get(HeaderRequestID)
		assert.Len(t, id, 26)
		assert.Contains(t, w.Body.String(), id)
	})

	t.Run("propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(HeaderRequestID, "upstream-42")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, "upstream-42", w.Header().Get(HeaderRequestID))
	})

	t.Run("oversized is replaced", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(HeaderRequestID, strings.Repeat("x", 200))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Len(t, w.Header().Get(HeaderRequestID), 26)
	})
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	r := gin.New()
	r.Use(RequestID(), RequestLogger(log))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first, second map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, "info", first["level"])
	assert.Equal(t, "/ok", first["path"])
	assert.NotEmpty(t, first["request_id"])
	assert.Equal(t, "warn", second["level"])
	assert.EqualValues(t, 404, second["status"])
}

func TestRecovery(t *testing.T) {
	var buf bytes.Buffer
	r := gin.New()
	r.Use(Recovery(zerolog.New(&buf)))
	r.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "SYS_001", decodeError(t, w).ErrorCode)
	assert.Contains(t, buf.String(), "panic recovered")
}

type recordedRequest struct {
	method, route string
	status        int
}

type fakeHTTPObserver struct {
	seen []recordedRequest
}

func (f *fakeHTTPObserver) ObserveHTTP(method, route string, status int, _ time.Duration) {
	f.seen = append(f.seen, recordedRequest{method, route, status})
}

func TestMetrics_UsesRouteTemplate(t *testing.T) {
	obs := &fakeHTTPObserver{}
	r := gin.New()
	r.Use(Metrics(obs))
	r.GET("/wallets/:currency", func(c *gin.Context) { c.Status(http.StatusOK) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/wallets/BTC", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	require.Len(t, obs.seen, 2)
	assert.Equal(t, recordedRequest{"GET", "/wallets/:currency", 200}, obs.seen[0])
	assert.Equal(t, recordedRequest{"GET", "unmatched", 404}, obs.seen[1])
}

func TestAuthenticate_PassesRequestContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	gw := mocks.NewMockSessionGateway(ctrl)

	type ctxKey struct{}
	gw.EXPECT().Resolve(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ string) (*ports.Session, error) {
			assert.Equal(t, "marker", ctx.Value(ctxKey{}))
			return nil, apperror.ErrInvalidToken()
		})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req = req.WithContext(context.WithValue(req.Context(), ctxKey{}, "marker"))
	w := httptest.NewRecorder()
	authRouter(gw, Authenticate, domain.PrincipalUser).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
