package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roadprice/valuation/internal/auth"
	"github.com/roadprice/valuation/internal/model"
)

func newAccountHandler() (*AccountHandler, *fakeAccountStore) {
	store := newFakeAccountStore()
	codec := auth.NewCodec("handler-test-secret", time.Hour)
	return NewAccountHandler(store, codec), store
}

func jsonRequest(method, target, body string) (*http.Request, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req, httptest.NewRecorder()
}

func TestSignupCreatesAccountAndToken(t *testing.T) {
	h, store := newAccountHandler()
	e := echo.New()

	req, rec := jsonRequest(http.MethodPost, "/v1/account/signup",
		`{"email":"New@Example.com","password":"secret","role":"USER"}`)
	require.NoError(t, h.Signup(e.NewContext(req, rec)))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp tokenResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "new@example.com", resp.Email, "email is normalized")
	assert.Equal(t, model.RoleUser, resp.Role)
	assert.NotEmpty(t, resp.Token)

	stored, err := store.FindByID(context.Background(), resp.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.NotEqual(t, "secret", stored.Password, "raw password must not be stored")
	ok, err := auth.VerifyPassword("secret", stored.Password)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSignupDuplicateEmail(t *testing.T) {
	h, _ := newAccountHandler()
	e := echo.New()

	req, rec := jsonRequest(http.MethodPost, "/v1/account/signup",
		`{"email":"dup@example.com","password":"secret"}`)
	require.NoError(t, h.Signup(e.NewContext(req, rec)))
	require.Equal(t, http.StatusCreated, rec.Code)

	req, rec = jsonRequest(http.MethodPost, "/v1/account/signup",
		`{"email":"dup@example.com","password":"other"}`)
	require.NoError(t, h.Signup(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSignupUnknownRoleFallsBackToUser(t *testing.T) {
	h, _ := newAccountHandler()
	e := echo.New()

	req, rec := jsonRequest(http.MethodPost, "/v1/account/signup",
		`{"email":"r@example.com","password":"secret","role":"SUPERUSER"}`)
	require.NoError(t, h.Signup(e.NewContext(req, rec)))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp tokenResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, model.RoleUser, resp.Role)
}

func TestSigninSuccess(t *testing.T) {
	h, _ := newAccountHandler()
	e := echo.New()

	req, rec := jsonRequest(http.MethodPost, "/v1/account/signup",
		`{"email":"s@example.com","password":"secret"}`)
	require.NoError(t, h.Signup(e.NewContext(req, rec)))
	require.Equal(t, http.StatusCreated, rec.Code)

	req, rec = jsonRequest(http.MethodPost, "/v1/account/signin",
		`{"email":"s@example.com","password":"secret"}`)
	require.NoError(t, h.Signin(e.NewContext(req, rec)))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp tokenResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
}

func TestSigninFailureIsIndistinguishable(t *testing.T) {
	h, _ := newAccountHandler()
	e := echo.New()

	req, rec := jsonRequest(http.MethodPost, "/v1/account/signup",
		`{"email":"known@example.com","password":"secret"}`)
	require.NoError(t, h.Signup(e.NewContext(req, rec)))

	// Wrong password for a known email.
	req, rec = jsonRequest(http.MethodPost, "/v1/account/signin",
		`{"email":"known@example.com","password":"wrong"}`)
	require.NoError(t, h.Signin(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	wrongPassword := rec.Body.String()

	// Unknown email entirely.
	req, rec = jsonRequest(http.MethodPost, "/v1/account/signin",
		`{"email":"unknown@example.com","password":"wrong"}`)
	require.NoError(t, h.Signin(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, wrongPassword, rec.Body.String(),
		"response must not reveal whether the email exists")
}

func TestFetchAccount(t *testing.T) {
	h, store := newAccountHandler()
	e := echo.New()

	id, err := store.Create(context.Background(), "f@example.com", "aa.bb", model.RoleUser)
	require.NoError(t, err)

	req, rec := jsonRequest(http.MethodGet, "/v1/account/1", "")
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.Fetch(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.EqualValues(t, id, got["id"])
	assert.NotContains(t, rec.Body.String(), "aa.bb", "password record must not leak")

	req, rec = jsonRequest(http.MethodGet, "/v1/account/99", "")
	c = e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("99")
	require.NoError(t, h.Fetch(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateAccountPartial(t *testing.T) {
	h, store := newAccountHandler()
	e := echo.New()

	_, err := store.Create(context.Background(), "old@example.com", "aa.bb", model.RoleUser)
	require.NoError(t, err)

	req, rec := jsonRequest(http.MethodPatch, "/v1/account/1",
		`{"email":"New@Example.com","password":"fresh","role":"ADMIN"}`)
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.Update(c))
	require.Equal(t, http.StatusOK, rec.Code)

	stored, err := store.FindByID(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "new@example.com", stored.Email)
	assert.Equal(t, model.RoleAdmin, stored.Role)
	ok, err := auth.VerifyPassword("fresh", stored.Password)
	require.NoError(t, err)
	assert.True(t, ok, "new password is re-hashed")
}

func TestUpdateAccountNotFound(t *testing.T) {
	h, _ := newAccountHandler()
	e := echo.New()

	req, rec := jsonRequest(http.MethodPatch, "/v1/account/42", `{"email":"x@example.com"}`)
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("42")
	require.NoError(t, h.Update(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRemoveAccount(t *testing.T) {
	h, store := newAccountHandler()
	e := echo.New()

	_, err := store.Create(context.Background(), "gone@example.com", "aa.bb", model.RoleUser)
	require.NoError(t, err)

	req, rec := jsonRequest(http.MethodDelete, "/v1/account/1", "")
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.Remove(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	stored, err := store.FindByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, stored)

	// Removing again is a 404.
	req, rec = jsonRequest(http.MethodDelete, "/v1/account/1", "")
	c = e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.Remove(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
