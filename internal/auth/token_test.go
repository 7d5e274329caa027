package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roadprice/valuation/internal/model"
)

func TestCodecRoundTrip(t *testing.T) {
	codec := NewCodec("test-secret", time.Hour)

	token, exp, err := codec.Issue(42, "a@b.com", model.RoleAdmin)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC().Add(time.Hour), exp, 5*time.Second)

	claims, err := codec.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), claims.AccountID)
	assert.Equal(t, "a@b.com", claims.Email)
	assert.Equal(t, model.RoleAdmin, claims.Role)
}

func TestCodecRejectsExpired(t *testing.T) {
	codec := NewCodec("test-secret", -time.Minute)

	token, _, err := codec.Issue(1, "a@b.com", model.RoleUser)
	require.NoError(t, err)

	_, err = codec.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCodecRejectsTampered(t *testing.T) {
	codec := NewCodec("test-secret", time.Hour)

	token, _, err := codec.Issue(1, "a@b.com", model.RoleUser)
	require.NoError(t, err)

	// Flip one byte in the middle of the token.
	b := []byte(token)
	mid := len(b) / 2
	if b[mid] == 'a' {
		b[mid] = 'b'
	} else {
		b[mid] = 'a'
	}

	_, err = codec.Validate(string(b))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCodecRejectsWrongSecret(t *testing.T) {
	issuer := NewCodec("secret-one", time.Hour)
	verifier := NewCodec("secret-two", time.Hour)

	token, _, err := issuer.Issue(1, "a@b.com", model.RoleUser)
	require.NoError(t, err)

	_, err = verifier.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCodecRejectsMalformed(t *testing.T) {
	codec := NewCodec("test-secret", time.Hour)

	_, err := codec.Validate("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
