package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"students/config"
	apimiddleware "students/internal/delivery/api/middleware"
	"students/internal/delivery/api/router"
	"students/internal/delivery/api/router/handler"
	"students/internal/domain/entity"
	domainerrors "students/internal/domain/errors"
	"students/internal/infra/metrics"
	"students/internal/infra/ratelimit"
	mockusecase "students/internal/mocks/usecase"
	"students/internal/usecase"
	"students/internal/validation"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type apiFixture struct {
	echo      *echo.Echo
	accountUC *mockusecase.MockAccountUsecase
	authUC    *mockusecase.MockAuthUsecase
	metrics   *metrics.Metrics
}

type fixtureOption func(cfg *config.Config)

func withEnv(env string) fixtureOption {
	return func(cfg *config.Config) {
		cfg.Env.Env = env
	}
}

func withRateLimit(maxRequests int) fixtureOption {
	return func(cfg *config.Config) {
		cfg.RateLimit.Enabled = true
		cfg.RateLimit.MaxRequests = maxRequests
	}
}

func newAPIFixture(t *testing.T, opts ...fixtureOption) *apiFixture {
	t.Helper()

	cfg := &config.Config{}
	cfg.Env.Env = "test"
	cfg.HTTP.MaxRequestBodySize = "1M"
	cfg.RateLimit = &config.RateLimitConfig{
		Enabled:     false,
		Window:      15 * time.Minute,
		MaxRequests: 100,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.New()
	accountUC := mockusecase.NewMockAccountUsecase(t)
	authUC := mockusecase.NewMockAuthUsecase(t)
	store := ratelimit.NewFixedWindowStore(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window, 0)

	e := NewEcho(ServerParams{
		Cfg:             cfg,
		Logger:          logger,
		Metrics:         m,
		Validate:        validation.New(),
		ErrorMiddleware: apimiddleware.NewErrorMiddleware(logger, cfg),
		RateLimiter: apimiddleware.NewRateLimitMiddleware(apimiddleware.RateLimitMiddlewareParams{
			Store:   store,
			Config:  cfg,
			Metrics: m,
			Logger:  logger,
		}),
		RouterParams: router.RouterParams{
			AccountHandler: handler.NewAccountHandler(handler.AccountHandlerParams{AccountUC: accountUC, Logger: logger}),
			AuthHandler:    handler.NewAuthHandler(handler.AuthHandlerParams{AuthUC: authUC, Metrics: m, Logger: logger}),
			AuthMiddleware: apimiddleware.NewAuthMiddleware(apimiddleware.AuthMiddlewareParams{AuthUC: authUC, Logger: logger}),
			Metrics:        m,
		},
	})

	return &apiFixture{echo: e, accountUC: accountUC, authUC: authUC, metrics: m}
}

func (f *apiFixture) do(t *testing.T, method, target, body string, headers map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	f.echo.ServeHTTP(rec, req)

	var decoded map[string]any
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}

	return rec, decoded
}

func bearer(token string) map[string]string {
	return map[string]string{echo.HeaderAuthorization: "Bearer " + token}
}

func (f *apiFixture) expectIdentity(token string, id int64) {
	f.authUC.EXPECT().ResolveIdentity(mock.Anything, token).Return(&entity.IdentityClaim{
		ID:             id,
		AccessUsername: "ana_s",
		Email:          "ana@example.com",
	}, nil)
}

func sampleAccount() *entity.Account {
	note := "first year"

	return &entity.Account{
		ID:             7,
		FullName:       "Ana Silva",
		AccessUsername: "ana_s",
		Email:          "ana@example.com",
		SecretHash:     "$2a$10$shouldneverleak",
		Note:           &note,
		CreatedAt:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestAPI_HealthCheck(t *testing.T) {
	f := newAPIFixture(t)

	rec, body := f.do(t, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, map[string]any{"status": "ok"}, body["data"])
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestAPI_UnknownRoute(t *testing.T) {
	f := newAPIFixture(t)

	rec, body := f.do(t, http.MethodGet, "/api/nope", "", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "route not found: GET /api/nope", body["message"])
}

func TestAPI_CreateAccount(t *testing.T) {
	f := newAPIFixture(t)
	f.accountUC.EXPECT().
		Create(mock.Anything, &usecase.CreateAccountInput{
			FullName:       "Ana Silva",
			AccessUsername: "ana_s",
			Secret:         "abcdef",
			Email:          "ana@example.com",
		}).
		Return(sampleAccount().WithoutSecret(), nil)

	rec, body := f.do(t, http.MethodPost, "/api/students",
		`{"full_name":"Ana Silva","access_username":"ana_s","secret":"abcdef","email":"ana@example.com"}`, nil)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "student created successfully", body["message"])
	data := body["data"].(map[string]any)
	assert.Equal(t, float64(7), data["id"])
	assert.Equal(t, "ana_s", data["access_username"])
	assert.NotContains(t, rec.Body.String(), "shouldneverleak")
	assert.NotContains(t, data, "secret")
}

func TestAPI_CreateAccount_ValidationErrors(t *testing.T) {
	f := newAPIFixture(t)
	f.accountUC.EXPECT().
		Create(mock.Anything, mock.Anything).
		Return(nil, domainerrors.NewValidationError([]string{"full_name must be at least 3 characters"}))

	rec, body := f.do(t, http.MethodPost, "/api/students", `{"full_name":"An"}`, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid data", body["message"])
	assert.Equal(t, []any{"full_name must be at least 3 characters"}, body["errors"])
	assert.NotContains(t, body, "stack")
}

func TestAPI_CreateAccount_Conflict(t *testing.T) {
	f := newAPIFixture(t)
	f.accountUC.EXPECT().
		Create(mock.Anything, mock.Anything).
		Return(nil, errors.Wrap(domainerrors.ErrUsernameTaken, "create account"))

	rec, body := f.do(t, http.MethodPost, "/api/students", `{"access_username":"ANA_S"}`, nil)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "access username is already in use", body["message"])
}

func TestAPI_CreateAccount_MalformedBody(t *testing.T) {
	f := newAPIFixture(t)

	rec, body := f.do(t, http.MethodPost, "/api/students", `{"full_name":`, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid request body", body["message"])
}

func TestAPI_GetAccount(t *testing.T) {
	f := newAPIFixture(t)
	f.accountUC.EXPECT().GetByID(mock.Anything, int64(7)).Return(sampleAccount().WithoutSecret(), nil)

	rec, body := f.do(t, http.MethodGet, "/api/students/7", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	data := body["data"].(map[string]any)
	assert.Equal(t, "Ana Silva", data["full_name"])
	assert.Equal(t, "first year", data["note"])
	assert.Equal(t, "2026-03-01T12:00:00Z", data["created_at"])
}

func TestAPI_GetAccount_BadID(t *testing.T) {
	for _, id := range []string{"abc", "0", "-3"} {
		t.Run(id, func(t *testing.T) {
			f := newAPIFixture(t)

			rec, body := f.do(t, http.MethodGet, "/api/students/"+id, "", nil)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "invalid id", body["message"])
		})
	}
}

func TestAPI_GetAccount_NotFound(t *testing.T) {
	f := newAPIFixture(t)
	f.accountUC.EXPECT().GetByID(mock.Anything, int64(99)).Return(nil, domainerrors.ErrAccountNotFound)

	rec, body := f.do(t, http.MethodGet, "/api/students/99", "", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "student not found", body["message"])
}

func TestAPI_ListAccounts_Defaults(t *testing.T) {
	f := newAPIFixture(t)
	f.accountUC.EXPECT().
		List(mock.Anything, usecase.ListAccountsInput{Limit: 50, Offset: 0}).
		Return(&usecase.ListAccountsOutput{
			Items:  []*entity.Account{sampleAccount().WithoutSecret()},
			Total:  51,
			Limit:  50,
			Offset: 0,
		}, nil)

	rec, body := f.do(t, http.MethodGet, "/api/students", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["data"], 1)
	assert.Equal(t, map[string]any{
		"total":   float64(51),
		"limit":   float64(50),
		"offset":  float64(0),
		"hasMore": true,
	}, body["pagination"])
}

func TestAPI_ListAccounts_EmptyPage(t *testing.T) {
	f := newAPIFixture(t)
	f.accountUC.EXPECT().
		List(mock.Anything, usecase.ListAccountsInput{Limit: 10, Offset: 20}).
		Return(&usecase.ListAccountsOutput{Total: 5, Limit: 10, Offset: 20}, nil)

	rec, body := f.do(t, http.MethodGet, "/api/students?limit=10&offset=20", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{}, body["data"])
	assert.Equal(t, false, body["pagination"].(map[string]any)["hasMore"])
}

func TestAPI_ListAccounts_BadPaging(t *testing.T) {
	t.Run("non-integer", func(t *testing.T) {
		f := newAPIFixture(t)

		rec, _ := f.do(t, http.MethodGet, "/api/students?limit=ten", "", nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("out of range", func(t *testing.T) {
		f := newAPIFixture(t)
		f.accountUC.EXPECT().
			List(mock.Anything, usecase.ListAccountsInput{Limit: 101, Offset: 0}).
			Return(nil, domainerrors.ErrInvalidPagination)

		rec, body := f.do(t, http.MethodGet, "/api/students?limit=101", "", nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, domainerrors.ErrInvalidPagination.Message(), body["message"])
	})
}

func TestAPI_CheckUsername(t *testing.T) {
	f := newAPIFixture(t)
	f.accountUC.EXPECT().UsernameExists(mock.Anything, "ana_s").Return(true, nil)
	f.accountUC.EXPECT().UsernameExists(mock.Anything, "new_one").Return(false, nil)

	_, taken := f.do(t, http.MethodGet, "/api/students/check/username/ana_s", "", nil)
	assert.Equal(t, map[string]any{"success": true, "available": false, "message": "username already in use"}, taken)

	_, free := f.do(t, http.MethodGet, "/api/students/check/username/new_one", "", nil)
	assert.Equal(t, map[string]any{"success": true, "available": true, "message": "username available"}, free)
}

func TestAPI_CheckEmail(t *testing.T) {
	f := newAPIFixture(t)
	f.accountUC.EXPECT().EmailExists(mock.Anything, "ana@example.com").Return(false, nil)

	rec, body := f.do(t, http.MethodGet, "/api/students/check/email/ana@example.com", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["available"])
	assert.Equal(t, "email available", body["message"])
}

func TestAPI_AuthGate(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		setup   func(f *apiFixture)
		message string
	}{
		{
			name:    "missing header",
			message: "authentication token not provided",
		},
		{
			name:    "wrong scheme",
			header:  "Basic abc",
			message: "invalid token format, expected: Bearer <token>",
		},
		{
			name:    "too many parts",
			header:  "Bearer abc def",
			message: "invalid token format, expected: Bearer <token>",
		},
		{
			name:    "token only",
			header:  "abc",
			message: "invalid token format, expected: Bearer <token>",
		},
		{
			name:   "expired token",
			header: "Bearer expired",
			setup: func(f *apiFixture) {
				f.authUC.EXPECT().ResolveIdentity(mock.Anything, "expired").Return(nil, domainerrors.ErrTokenExpired)
			},
			message: "authentication failed",
		},
		{
			name:   "malformed token",
			header: "Bearer garbage",
			setup: func(f *apiFixture) {
				f.authUC.EXPECT().ResolveIdentity(mock.Anything, "garbage").Return(nil, domainerrors.ErrTokenMalformed)
			},
			message: "authentication failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAPIFixture(t)
			if tt.setup != nil {
				tt.setup(f)
			}

			headers := map[string]string{}
			if tt.header != "" {
				headers[echo.HeaderAuthorization] = tt.header
			}

			rec, body := f.do(t, http.MethodPut, "/api/students/7", `{"note":"x"}`, headers)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, tt.message, body["message"])
		})
	}
}

func TestAPI_Me_SchemeIsCaseInsensitive(t *testing.T) {
	f := newAPIFixture(t)
	f.expectIdentity("tok", 7)

	rec, body := f.do(t, http.MethodGet, "/api/auth/me", "", map[string]string{echo.HeaderAuthorization: "bearer tok"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{
		"id":              float64(7),
		"access_username": "ana_s",
		"email":           "ana@example.com",
	}, body["data"])
}

func TestAPI_UpdateAccount(t *testing.T) {
	f := newAPIFixture(t)
	f.expectIdentity("tok", 7)
	note := "updated"
	f.accountUC.EXPECT().
		Update(mock.Anything, int64(7), int64(7), &usecase.UpdateAccountInput{Note: &note}).
		Return(sampleAccount().WithoutSecret(), nil)

	rec, body := f.do(t, http.MethodPut, "/api/students/7", `{"note":"updated"}`, bearer("tok"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "student updated successfully", body["message"])
}

func TestAPI_UpdateAccount_NullNoteClears(t *testing.T) {
	f := newAPIFixture(t)
	f.expectIdentity("tok", 7)
	f.accountUC.EXPECT().
		Update(mock.Anything, int64(7), int64(7), &usecase.UpdateAccountInput{ClearNote: true}).
		Return(sampleAccount().WithoutSecret(), nil)

	rec, _ := f.do(t, http.MethodPut, "/api/students/7", `{"note":null}`, bearer("tok"))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPI_UpdateAccount_NotOwner(t *testing.T) {
	f := newAPIFixture(t)
	f.expectIdentity("tok", 8)
	f.accountUC.EXPECT().
		Update(mock.Anything, int64(7), int64(8), mock.Anything).
		Return(nil, domainerrors.ErrNotAccountOwner)

	rec, body := f.do(t, http.MethodPut, "/api/students/7", `{"full_name":"Someone Else"}`, bearer("tok"))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "you can only modify your own account", body["message"])
}

func TestAPI_UpdateAccount_EmptyPatch(t *testing.T) {
	f := newAPIFixture(t)
	f.expectIdentity("tok", 7)
	f.accountUC.EXPECT().
		Update(mock.Anything, int64(7), int64(7), &usecase.UpdateAccountInput{}).
		Return(nil, domainerrors.ErrNoFieldsToUpdate)

	rec, body := f.do(t, http.MethodPut, "/api/students/7", `{}`, bearer("tok"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "no fields to update", body["message"])
}

func TestAPI_DeleteAccount(t *testing.T) {
	f := newAPIFixture(t)
	f.expectIdentity("tok", 7)
	f.accountUC.EXPECT().Delete(mock.Anything, int64(7), int64(7)).Return(nil)

	rec, body := f.do(t, http.MethodDelete, "/api/students/7", "", bearer("tok"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"success": true, "message": "account deleted successfully"}, body)
}

func TestAPI_Login(t *testing.T) {
	f := newAPIFixture(t)
	f.authUC.EXPECT().
		Login(mock.Anything, &usecase.LoginInput{AccessUsername: "ANA_S", Secret: "abcdef"}).
		Return(&usecase.LoginOutput{Account: sampleAccount().WithoutSecret(), Token: "signed"}, nil)

	rec, body := f.do(t, http.MethodPost, "/api/auth/login", `{"access_username":"ANA_S","secret":"abcdef"}`, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "login successful", body["message"])
	data := body["data"].(map[string]any)
	assert.Equal(t, "signed", data["token"])
	assert.Equal(t, "ana_s", data["account"].(map[string]any)["access_username"])
	assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.LoginsTotal.WithLabelValues(metrics.LoginSucceeded)), 0)
}

func TestAPI_Login_WrongCredentials(t *testing.T) {
	f := newAPIFixture(t)
	f.authUC.EXPECT().
		Login(mock.Anything, mock.Anything).
		Return(nil, domainerrors.ErrInvalidCredentials)

	rec, body := f.do(t, http.MethodPost, "/api/auth/login", `{"access_username":"ana_s","secret":"wrong!"}`, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "incorrect username or password", body["message"])
	assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.LoginsTotal.WithLabelValues(metrics.LoginRejected)), 0)
}

func TestAPI_Login_MissingFields(t *testing.T) {
	f := newAPIFixture(t)

	rec, body := f.do(t, http.MethodPost, "/api/auth/login", `{}`, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []any{"access_username is required", "secret is required"}, body["errors"])
}

func TestAPI_InternalErrorEnvelope(t *testing.T) {
	t.Run("stack outside production", func(t *testing.T) {
		f := newAPIFixture(t)
		f.accountUC.EXPECT().GetByID(mock.Anything, int64(7)).
			Return(nil, domainerrors.NewDatabaseExecuteError(errors.New("connection reset"), "find by id"))

		rec, body := f.do(t, http.MethodGet, "/api/students/7", "", nil)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "database operation failed", body["message"])
		assert.Contains(t, body["stack"], "connection reset")
	})

	t.Run("no stack in production", func(t *testing.T) {
		f := newAPIFixture(t, withEnv(config.EnvProduction))
		f.accountUC.EXPECT().GetByID(mock.Anything, int64(7)).
			Return(nil, errors.New("boom"))

		rec, body := f.do(t, http.MethodGet, "/api/students/7", "", nil)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "internal server error", body["message"])
		assert.NotContains(t, body, "stack")
		assert.NotContains(t, rec.Body.String(), "boom")
	})
}

func TestAPI_RateLimit(t *testing.T) {
	f := newAPIFixture(t, withRateLimit(2))

	for range 2 {
		rec, _ := f.do(t, http.MethodGet, "/health", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec, body := f.do(t, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, domainerrors.ErrRateLimited.Message(), body["message"])
	assert.Equal(t, float64(900), body["retryAfter"])
	assert.Equal(t, "900", rec.Header().Get("Retry-After"))
	assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.RateLimitedTotal), 0)

	metricsRec, _ := f.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, metricsRec.Code)
	assert.Contains(t, metricsRec.Body.String(), "students_http_requests_total")
}

func TestAPI_RateLimit_DisabledInDevelopment(t *testing.T) {
	f := newAPIFixture(t, withRateLimit(1), withEnv(config.EnvDevelopment))

	for range 3 {
		rec, _ := f.do(t, http.MethodGet, "/health", "", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}
