package auth

import (
	"context"
	"errors"

	"github.com/roadprice/valuation/internal/model"
)

// ErrUnauthorized is returned when a protected operation has no usable
// identity: missing bearer, failed token validation, or a token whose
// account no longer exists. Maps to HTTP 401.
var ErrUnauthorized = errors.New("unauthorized")

// ErrForbidden is returned when the caller is authenticated but its
// role is not in the operation's allowed set. Maps to HTTP 403.
var ErrForbidden = errors.New("forbidden")

// IdentityLookup resolves the account referenced by a token's id claim.
// A (nil, nil) result means the account does not exist.
type IdentityLookup interface {
	FindByID(ctx context.Context, id uint64) (*model.Account, error)
}

// Policy declares the access requirement of a single operation: either
// public, or restricted to a set of roles. Routes pass their policy
// value explicitly instead of relying on reflective metadata.
type Policy struct {
	public bool
	roles  map[model.Role]bool
}

// Public is the policy for operations anyone may call. A supplied
// bearer token is ignored entirely, not validated.
func Public() Policy {
	return Policy{public: true}
}

// RequireRoles restricts an operation to callers whose account role is
// in the given set.
func RequireRoles(roles ...model.Role) Policy {
	allowed := make(map[model.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return Policy{roles: allowed}
}

// Engine makes the per-request access decision. Token validation is
// local; only the identity lookup touches the store.
type Engine struct {
	codec      *Codec
	identities IdentityLookup
}

func NewEngine(codec *Codec, identities IdentityLookup) *Engine {
	return &Engine{codec: codec, identities: identities}
}

// Authorize runs the two-stage decision for one operation: public
// bypass first, then token validation, identity resolution, and role
// check. On success it returns the resolved account so handlers can
// filter by ownership. Tokens are not revoked on account deletion, so
// the identity lookup is what invalidates them.
func (e *Engine) Authorize(ctx context.Context, policy Policy, bearer string) (*model.Account, error) {
	if policy.public {
		return nil, nil
	}
	if bearer == "" {
		return nil, ErrUnauthorized
	}
	claims, err := e.codec.Validate(bearer)
	if err != nil {
		return nil, ErrUnauthorized
	}
	acct, err := e.identities.FindByID(ctx, claims.AccountID)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return nil, ErrUnauthorized
	}
	if !policy.roles[acct.Role] {
		return nil, ErrForbidden
	}
	return acct, nil
}
