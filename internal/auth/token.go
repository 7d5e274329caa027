package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/roadprice/valuation/internal/model"
)

// ErrInvalidToken is returned for any bearer token that fails
// validation: bad signature, wrong algorithm, malformed, or expired.
// Handlers translate it into HTTP 401.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the payload signed into a bearer token: enough identity to
// authorize a request without a session store. Expiry lives in the
// embedded RegisteredClaims.
type Claims struct {
	AccountID uint64     `json:"id"`
	Email     string     `json:"email"`
	Role      model.Role `json:"role"`
	jwt.RegisteredClaims
}

// Codec signs and verifies claims with a server-held HS256 secret. The
// secret and TTL are injected at construction; there is no package
// state.
type Codec struct {
	secret []byte
	ttl    time.Duration
}

func NewCodec(secret string, ttl time.Duration) *Codec {
	return &Codec{secret: []byte(secret), ttl: ttl}
}

// Issue signs the identity into a token expiring after the configured
// TTL. The expiry returned alongside lets callers report it to clients.
func (c *Codec) Issue(id uint64, email string, role model.Role) (string, time.Time, error) {
	now := time.Now().UTC()
	exp := now.Add(c.ttl)
	claims := &Claims{
		AccountID: id,
		Email:     email,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Validate checks signature and expiry and returns the embedded claims.
// Signature integrity is checked before any payload is trusted; a token
// signed with a non-HMAC method is rejected outright.
func (c *Codec) Validate(token string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return c.secret, nil
	})
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
