package handler

import (
	"context"
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/roadprice/valuation/internal/model"
)

// AccountStore is the narrow persistence surface the account handlers
// need. Find methods return (nil, nil) for a missing row.
type AccountStore interface {
	FindByEmail(ctx context.Context, email string) (*model.Account, error)
	FindByID(ctx context.Context, id uint64) (*model.Account, error)
	Create(ctx context.Context, email, passwordRecord string, role model.Role) (uint64, error)
	Save(ctx context.Context, a *model.Account) error
	Delete(ctx context.Context, a *model.Account) error
}

// ReportStore is the narrow persistence surface the report handlers
// need. FindByID returns (nil, nil) for a missing row.
type ReportStore interface {
	Create(ctx context.Context, r *model.Report) error
	FindByID(ctx context.Context, id uint64) (*model.Report, error)
	FindByOwner(ctx context.Context, ownerID uint64) ([]model.Report, error)
	Save(ctx context.Context, r *model.Report) error
}

// AccountContextKey is where the access middleware stores the resolved
// caller for protected routes.
const AccountContextKey = "account"

// callerAccount extracts the account the access middleware attached to
// the request context.
func callerAccount(c echo.Context) (*model.Account, error) {
	acct, ok := c.Get(AccountContextKey).(*model.Account)
	if !ok || acct == nil {
		return nil, errors.New("no account in context")
	}
	return acct, nil
}
