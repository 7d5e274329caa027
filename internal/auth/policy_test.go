package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roadprice/valuation/internal/model"
)

// fakeLookup serves accounts from a map; absent ids resolve to nil.
type fakeLookup struct {
	accounts map[uint64]*model.Account
}

func (f *fakeLookup) FindByID(_ context.Context, id uint64) (*model.Account, error) {
	return f.accounts[id], nil
}

func newTestEngine(accounts ...*model.Account) (*Engine, *Codec) {
	codec := NewCodec("policy-test-secret", time.Hour)
	byID := make(map[uint64]*model.Account)
	for _, a := range accounts {
		byID[a.ID] = a
	}
	return NewEngine(codec, &fakeLookup{accounts: byID}), codec
}

func TestAuthorizePublicIgnoresToken(t *testing.T) {
	engine, _ := newTestEngine()

	// No token.
	acct, err := engine.Authorize(context.Background(), Public(), "")
	require.NoError(t, err)
	assert.Nil(t, acct)

	// Garbage token supplied anyway: a public route must not validate it.
	acct, err = engine.Authorize(context.Background(), Public(), "definitely-not-a-jwt")
	require.NoError(t, err)
	assert.Nil(t, acct)
}

func TestAuthorizeMissingToken(t *testing.T) {
	engine, _ := newTestEngine()

	_, err := engine.Authorize(context.Background(), RequireRoles(model.RoleAdmin, model.RoleUser), "")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthorizeInvalidToken(t *testing.T) {
	engine, _ := newTestEngine()

	_, err := engine.Authorize(context.Background(), RequireRoles(model.RoleUser), "bogus")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthorizeResolvesAccount(t *testing.T) {
	user := &model.Account{ID: 7, Email: "u@example.com", Role: model.RoleUser}
	engine, codec := newTestEngine(user)

	token, _, err := codec.Issue(user.ID, user.Email, user.Role)
	require.NoError(t, err)

	acct, err := engine.Authorize(context.Background(), RequireRoles(model.RoleAdmin, model.RoleUser), token)
	require.NoError(t, err)
	require.NotNil(t, acct)
	assert.Equal(t, user.ID, acct.ID)
}

func TestAuthorizeInsufficientRole(t *testing.T) {
	user := &model.Account{ID: 7, Email: "u@example.com", Role: model.RoleUser}
	engine, codec := newTestEngine(user)

	token, _, err := codec.Issue(user.ID, user.Email, user.Role)
	require.NoError(t, err)

	_, err = engine.Authorize(context.Background(), RequireRoles(model.RoleAdmin), token)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAuthorizeDeletedAccount(t *testing.T) {
	// Token issued for an account that no longer exists: the token has
	// not expired, but the lookup comes back empty.
	engine, codec := newTestEngine()

	token, _, err := codec.Issue(99, "gone@example.com", model.RoleUser)
	require.NoError(t, err)

	_, err = engine.Authorize(context.Background(), RequireRoles(model.RoleAdmin, model.RoleUser), token)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthorizeRoleReadFromStoreNotToken(t *testing.T) {
	// The role claim in the token may be stale; the decision uses the
	// stored account's current role.
	demoted := &model.Account{ID: 5, Email: "d@example.com", Role: model.RoleUser}
	engine, codec := newTestEngine(demoted)

	token, _, err := codec.Issue(demoted.ID, demoted.Email, model.RoleAdmin)
	require.NoError(t, err)

	_, err = engine.Authorize(context.Background(), RequireRoles(model.RoleAdmin), token)
	assert.ErrorIs(t, err, ErrForbidden)
}
