package impl

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"students/internal/domain/entity"
	mockRepo "students/internal/mocks/repository"
	mockService "students/internal/mocks/service"
	"students/internal/validation"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func strPtr(s string) *string {
	return &s
}

type accountServiceFixture struct {
	repo    *mockRepo.MockAccountRepository
	hasher  *mockService.MockPasswordHasher
	service *accountService
}

func createTestAccountService(t *testing.T) *accountServiceFixture {
	t.Helper()

	repo := mockRepo.NewMockAccountRepository(t)
	hasher := mockService.NewMockPasswordHasher(t)
	svc := NewAccountService(AccountServiceParams{
		AccountRepo: repo,
		Hasher:      hasher,
		Validate:    validation.New(),
		Logger:      newDiscardLogger(),
	}).(*accountService)

	return &accountServiceFixture{repo: repo, hasher: hasher, service: svc}
}

func storedAccount(id int64) *entity.Account {
	return &entity.Account{
		ID:             id,
		FullName:       "Ana Silva",
		AccessUsername: "ana_s",
		Email:          "ana@example.com",
		SecretHash:     "$2a$10$storedhash",
		CreatedAt:      time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}
