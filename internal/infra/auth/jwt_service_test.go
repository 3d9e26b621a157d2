package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"students/config"
	"students/internal/domain/entity"
	domainerrors "students/internal/domain/errors"
	"students/internal/domain/service"
)

const testSecret = "test_token_secret_key_very_long_for_testing"

func newTestConfig(secret string) *config.Config {
	cfg := &config.Config{}
	cfg.Token.Secret = secret

	return cfg
}

func TestJWTService_IssueAndResolve(t *testing.T) {
	jwtService, err := NewJWTService(newTestConfig(testSecret))
	require.NoError(t, err)
	require.NotNil(t, jwtService)

	claim := entity.IdentityClaim{ID: 42, AccessUsername: "ana_s", Email: "ana@example.com"}

	token, err := jwtService.Issue(claim)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	resolved, err := jwtService.Resolve(token)
	require.NoError(t, err)
	assert.Equal(t, claim, *resolved)
}

func TestJWTService_TokenExpiresAfterTTL(t *testing.T) {
	issuedAt := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	current := issuedAt
	svc := newJWTService(testSecret, TokenTTL, func() time.Time { return current })

	token, err := svc.Issue(entity.IdentityClaim{ID: 1, AccessUsername: "ana_s", Email: "ana@example.com"})
	require.NoError(t, err)

	current = issuedAt.Add(TokenTTL - time.Minute)
	_, err = svc.Resolve(token)
	require.NoError(t, err)

	current = issuedAt.Add(TokenTTL + time.Minute)
	claims, err := svc.Resolve(token)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, domainerrors.ErrTokenExpired)
}

func TestJWTService_MalformedToken(t *testing.T) {
	jwtService, err := NewJWTService(newTestConfig(testSecret))
	require.NoError(t, err)

	claims, err := jwtService.Resolve("clearly-not-a-jwt-token-format")
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, domainerrors.ErrTokenMalformed)
}

func TestJWTService_WrongSigningKey(t *testing.T) {
	issuer := newJWTService("another_secret_key", TokenTTL, time.Now)
	verifier := newJWTService(testSecret, TokenTTL, time.Now)

	token, err := issuer.Issue(entity.IdentityClaim{ID: 7, AccessUsername: "bob", Email: "bob@example.com"})
	require.NoError(t, err)

	claims, err := verifier.Resolve(token)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, domainerrors.ErrTokenMalformed)
}

func TestJWTService_RejectsUnexpectedAlgorithm(t *testing.T) {
	svc := newJWTService(testSecret, TokenTTL, time.Now)

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, &service.Claims{
		AccountID: 7,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)

	claims, err := svc.Resolve(signed)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, domainerrors.ErrTokenMalformed)
}

func TestJWTService_MissingIdentityIsInvalid(t *testing.T) {
	svc := newJWTService(testSecret, TokenTTL, time.Now)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &service.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)

	claims, err := svc.Resolve(signed)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, domainerrors.ErrTokenInvalid)
}

func TestJWTService_EmptySecret(t *testing.T) {
	jwtService, err := NewJWTService(newTestConfig(""))
	assert.Error(t, err)
	assert.Nil(t, jwtService)
	assert.Contains(t, err.Error(), "token signing secret must be provided")
}

func TestJWTService_IssuesSevenDayTokens(t *testing.T) {
	jwtService, err := NewJWTService(newTestConfig(testSecret))
	require.NoError(t, err)

	token, err := jwtService.Issue(entity.IdentityClaim{ID: 1, AccessUsername: "ana_s", Email: "ana@example.com"})
	require.NoError(t, err)

	claims := &service.Claims{}
	_, _, err = jwt.NewParser().ParseUnverified(token, claims)
	require.NoError(t, err)
	assert.Equal(t, 7*24*time.Hour, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}
