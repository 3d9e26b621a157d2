// Package handler contains the HTTP handlers for the application.
package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"students/internal/delivery/api/middleware"
	"students/internal/delivery/api/response"
	domainerrors "students/internal/domain/errors"
	"students/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// AccountHandlerParams holds dependencies for AccountHandler, injected by Fx.
type AccountHandlerParams struct {
	fx.In

	AccountUC usecase.AccountUsecase
	Logger    *slog.Logger
}

// AccountHandler holds dependencies for student account handlers.
type AccountHandler struct {
	accountUC usecase.AccountUsecase
	logger    *slog.Logger
}

// NewAccountHandler is the constructor for AccountHandler
func NewAccountHandler(params AccountHandlerParams) *AccountHandler {
	return &AccountHandler{
		accountUC: params.AccountUC,
		logger:    params.Logger,
	}
}

// Create handles anonymous account creation.
func (h *AccountHandler) Create(c echo.Context) error {
	var input usecase.CreateAccountInput
	if err := c.Bind(&input); err != nil {
		return domainerrors.ErrInvalidInput.WrapMessage(err.Error())
	}

	account, err := h.accountUC.Create(c.Request().Context(), &input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, toAccountResponse(account), "student created successfully")
}

// Get returns one account by id.
func (h *AccountHandler) Get(c echo.Context) error {
	id, err := parseAccountID(c)
	if err != nil {
		return err
	}

	account, err := h.accountUC.GetByID(c.Request().Context(), id)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toAccountResponse(account), "")
}

// List returns one page of accounts, newest first.
func (h *AccountHandler) List(c echo.Context) error {
	input := usecase.ListAccountsInput{Limit: usecase.DefaultListLimit}
	if err := echo.QueryParamsBinder(c).
		Int("limit", &input.Limit).
		Int("offset", &input.Offset).
		BindError(); err != nil {
		return domainerrors.ErrInvalidPagination.WrapMessage(err.Error())
	}

	page, err := h.accountUC.List(c.Request().Context(), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Page(c, toAccountResponses(page.Items), response.Pagination{
		Total:   page.Total,
		Limit:   page.Limit,
		Offset:  page.Offset,
		HasMore: page.HasMore(),
	})
}

// CheckUsername reports whether an access username is still free.
func (h *AccountHandler) CheckUsername(c echo.Context) error {
	exists, err := h.accountUC.UsernameExists(c.Request().Context(), c.Param("username"))
	if err != nil {
		return errors.WithStack(err)
	}

	if exists {
		return response.Availability(c, false, "username already in use")
	}

	return response.Availability(c, true, "username available")
}

// CheckEmail reports whether an email is still free.
func (h *AccountHandler) CheckEmail(c echo.Context) error {
	exists, err := h.accountUC.EmailExists(c.Request().Context(), c.Param("email"))
	if err != nil {
		return errors.WithStack(err)
	}

	if exists {
		return response.Availability(c, false, "email already in use")
	}

	return response.Availability(c, true, "email available")
}

// Update applies a partial update to the caller's own account.
func (h *AccountHandler) Update(c echo.Context) error {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		return domainerrors.ErrAuthenticationFailed
	}

	id, err := parseAccountID(c)
	if err != nil {
		return err
	}

	var req UpdateAccountRequest
	if err := c.Bind(&req); err != nil {
		return domainerrors.ErrInvalidInput.WrapMessage(err.Error())
	}

	input := &usecase.UpdateAccountInput{
		FullName:       req.FullName,
		AccessUsername: req.AccessUsername,
		Secret:         req.Secret,
		Email:          req.Email,
	}
	if req.Note.Present {
		if req.Note.Value == nil {
			input.ClearNote = true
		} else {
			input.Note = req.Note.Value
		}
	}

	account, err := h.accountUC.Update(c.Request().Context(), id, identity.ID, input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toAccountResponse(account), "student updated successfully")
}

// Delete permanently removes the caller's own account.
func (h *AccountHandler) Delete(c echo.Context) error {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		return domainerrors.ErrAuthenticationFailed
	}

	id, err := parseAccountID(c)
	if err != nil {
		return err
	}

	if err := h.accountUC.Delete(c.Request().Context(), id, identity.ID); err != nil {
		return errors.WithStack(err)
	}

	return response.Message(c, http.StatusOK, "account deleted successfully")
}

func parseAccountID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, domainerrors.ErrInvalidAccountID
	}

	return id, nil
}
