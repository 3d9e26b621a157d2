package auth

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"students/config"
	"students/internal/domain/entity"
	domainerrors "students/internal/domain/errors"
	"students/internal/domain/service"
)

// TokenTTL is how long a session token stays valid after issuance.
const TokenTTL = 7 * 24 * time.Hour

// jwtService is a concrete implementation of the TokenService interface using the JWT standard.
type jwtService struct {
	secret []byte           // HMAC key, loaded once at startup.
	ttl    time.Duration    // Time-to-live for issued tokens.
	now    func() time.Time // Clock used for issuing and validating.
}

// NewJWTService is the constructor for jwtService.
// A missing signing key is a startup error.
func NewJWTService(cfg *config.Config) (service.TokenService, error) {
	if cfg == nil || cfg.Token.Secret == "" {
		return nil, errors.New("token signing secret must be provided")
	}

	return newJWTService(cfg.Token.Secret, TokenTTL, time.Now), nil
}

func newJWTService(secret string, ttl time.Duration, now func() time.Time) *jwtService {
	return &jwtService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    now,
	}
}

// Issue creates a signed token embedding the identity claim.
func (s *jwtService) Issue(claim entity.IdentityClaim) (string, error) {
	issuedAt := s.now()
	claims := &service.Claims{
		AccountID:      claim.ID,
		AccessUsername: claim.AccessUsername,
		Email:          claim.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(claim.ID, 10),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(domainerrors.ErrTokenSigningFailed, err.Error())
	}

	return signed, nil
}

// Resolve verifies the token and returns the identity it carries.
func (s *jwtService) Resolve(tokenString string) (*entity.IdentityClaim, error) {
	claims := &service.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, classifyTokenError(err)
	}

	if !token.Valid || claims.AccountID <= 0 {
		return nil, domainerrors.ErrTokenInvalid
	}

	identity := claims.Identity()

	return &identity, nil
}

func classifyTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return domainerrors.ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenMalformed),
		errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable):
		return domainerrors.ErrTokenMalformed
	default:
		return domainerrors.ErrTokenInvalid
	}
}
