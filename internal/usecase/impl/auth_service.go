package impl

import (
	"context"
	"log/slog"
	"strings"

	deliverycontext "students/internal/delivery/context"
	"students/internal/domain/entity"
	domainerrors "students/internal/domain/errors"
	"students/internal/domain/repository"
	"students/internal/domain/service"
	"students/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// authService implements the AuthUsecase interface.
type authService struct {
	accountRepo  repository.AccountRepository
	hasher       service.PasswordHasher
	tokenService service.TokenService
	logger       *slog.Logger
}

// AuthServiceParams holds dependencies for AuthService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	AccountRepo  repository.AccountRepository
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	Logger       *slog.Logger
}

// NewAuthService is the constructor for authService.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	return &authService{
		accountRepo:  params.AccountRepo,
		hasher:       params.Hasher,
		tokenService: params.TokenService,
		logger:       params.Logger,
	}
}

func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Login checks the credentials and issues a session token.
// Unknown username and wrong secret produce the same error.
func (srv *authService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.LoginOutput, error) {
	username := strings.ToLower(strings.TrimSpace(input.AccessUsername))

	var missing []string
	if username == "" {
		missing = append(missing, "access_username is required")
	}
	if input.Secret == "" {
		missing = append(missing, "secret is required")
	}
	if len(missing) > 0 {
		return nil, domainerrors.NewValidationError(missing)
	}

	account, err := srv.accountRepo.FindByUsername(ctx, username)
	if errors.Is(err, domainerrors.ErrAccountNotFound) {
		srv.log(ctx).Info("Login failed", slog.String("reason", "unknown username"))

		return nil, domainerrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find account")
	}

	if !srv.hasher.Check(input.Secret, account.SecretHash) {
		srv.log(ctx).Info("Login failed",
			slog.String("reason", "secret mismatch"),
			slog.Int64("account_id", account.ID),
		)

		return nil, domainerrors.ErrInvalidCredentials
	}

	token, err := srv.tokenService.Issue(account.Claim())
	if err != nil {
		srv.log(ctx).Error("Failed to issue token", slog.Int64("account_id", account.ID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to issue token")
	}

	srv.log(ctx).Info("Login succeeded", slog.Int64("account_id", account.ID))

	return &usecase.LoginOutput{
		Account: account.WithoutSecret(),
		Token:   token,
	}, nil
}

// ResolveIdentity delegates to the token service and keeps its error kinds.
func (srv *authService) ResolveIdentity(ctx context.Context, token string) (*entity.IdentityClaim, error) {
	claim, err := srv.tokenService.Resolve(token)
	if err != nil {
		srv.log(ctx).Debug("Token rejected", slog.Any("error", err))

		return nil, err
	}

	return claim, nil
}
