package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/roadprice/valuation/internal/auth"
	"github.com/roadprice/valuation/internal/model"
	"github.com/roadprice/valuation/internal/queue"
	"github.com/roadprice/valuation/internal/repository"
)

// AccountHandler bundles dependencies for account endpoints.
type AccountHandler struct {
	Accounts AccountStore
	Codec    *auth.Codec
}

func NewAccountHandler(accounts AccountStore, codec *auth.Codec) *AccountHandler {
	return &AccountHandler{Accounts: accounts, Codec: codec}
}

// ----- DTOs -----

type signupReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"` // ADMIN | USER, defaults to USER
}
type signinReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type updateAccountReq struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
}

type tokenResp struct {
	ID    uint64     `json:"id"`
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
	Token string     `json:"token"`
}

// Signup: create account and return an access token immediately.
func (h *AccountHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}
	role := model.ParseRole(strings.ToUpper(strings.TrimSpace(req.Role)))

	ctx, cancel := reqContext(c)
	defer cancel()

	existing, err := h.Accounts.FindByEmail(ctx, req.Email)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if existing != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "account with this email already exists"})
	}

	record, err := auth.HashPassword(req.Password)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash failed"})
	}
	id, err := h.Accounts.Create(ctx, req.Email, record, role)
	if err != nil {
		// A racing signup can still trip the unique constraint.
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "account with this email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create account failed"})
	}

	token, _, err := h.Codec.Issue(id, req.Email, role)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
	}
	return c.JSON(http.StatusCreated, tokenResp{ID: id, Email: req.Email, Role: role, Token: token})
}

// Signin: verify credentials and return a fresh token. The failure
// body is identical for an unknown email and a wrong password.
func (h *AccountHandler) Signin(c echo.Context) error {
	var req signinReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	acct, err := h.Accounts.FindByEmail(ctx, req.Email)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if acct == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "wrong credentials"})
	}
	ok, err := auth.VerifyPassword(req.Password, acct.Password)
	if err != nil {
		// Malformed stored record: integrity problem, not a bad login.
		c.Logger().Errorf("account %d: %v", acct.ID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "wrong credentials"})
	}

	token, _, err := h.Codec.Issue(acct.ID, acct.Email, acct.Role)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
	}
	return c.JSON(http.StatusOK, tokenResp{ID: acct.ID, Email: acct.Email, Role: acct.Role, Token: token})
}

// Fetch handles GET /v1/account/:id.
func (h *AccountHandler) Fetch(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	acct, err := h.Accounts.FindByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if acct == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "account not found"})
	}
	return c.JSON(http.StatusOK, acct)
}

// Update handles PATCH /v1/account/:id: partial update of email,
// password and role. A new password is hashed before it is stored.
func (h *AccountHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req updateAccountReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	acct, err := h.Accounts.FindByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if acct == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "account not found"})
	}

	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "email must not be empty"})
		}
		acct.Email = email
	}
	if req.Password != nil {
		record, err := auth.HashPassword(*req.Password)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash failed"})
		}
		acct.Password = record
	}
	if req.Role != nil {
		acct.Role = model.ParseRole(strings.ToUpper(strings.TrimSpace(*req.Role)))
	}

	if err := h.Accounts.Save(ctx, acct); err != nil {
		switch {
		case errors.Is(err, repository.ErrAccountNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "account not found"})
		case errors.Is(err, repository.ErrEmailExists):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "account with this email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, acct)
}

// Remove handles DELETE /v1/account/:id. Reports cascade in the store.
func (h *AccountHandler) Remove(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	acct, err := h.Accounts.FindByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if acct == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "account not found"})
	}
	if err := h.Accounts.Delete(ctx, acct); err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "account not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	publishAudit(queue.AuditEvent{
		Kind:      queue.KindAccountRemoved,
		AccountID: acct.ID,
		Email:     acct.Email,
		Detail:    "account and owned reports removed",
	})
	return c.NoContent(http.StatusNoContent)
}

func reqContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}
