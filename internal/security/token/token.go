// Package token issues and verifies signed session tokens.
//
// Tokens are HS256 JWTs carrying the user id, a purpose tag, the issue time
// and a random token id, so two tokens issued for the same user in the same
// second are still distinct. A Codec holds no mutable state and is safe for
// concurrent use.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Rejection reasons. A failed Verify returns a *RejectedError that unwraps to
// exactly one of these.
var (
	ErrMalformed        = errors.New("token malformed")
	ErrSignatureInvalid = errors.New("token signature invalid")
	ErrExpired          = errors.New("token expired")
)

// ErrEmptySecret is returned by NewCodec when no signing secret is configured.
var ErrEmptySecret = errors.New("token signing secret is empty")

// RejectedError is the single failure outcome of Verify.
type RejectedError struct {
	Reason error
	cause  error
}

func (e *RejectedError) Error() string {
	if e.cause == nil {
		return "token rejected: " + e.Reason.Error()
	}
	return fmt.Sprintf("token rejected: %v (%v)", e.Reason, e.cause)
}

func (e *RejectedError) Unwrap() error { return e.Reason }

func reject(reason, cause error) error {
	return &RejectedError{Reason: reason, cause: cause}
}

// Claims is what a verified token asserts.
type Claims struct {
	UserID    string
	Purpose   string
	IssuedAt  time.Time
	ExpiresAt time.Time // zero when the codec has no TTL
}

type jwtClaims struct {
	jwt.RegisteredClaims
	UserID  string `json:"user_id"`
	Purpose string `json:"access"`
}

// Codec signs and verifies tokens with one secret.
type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewCodec returns a codec signing with secret. ttl <= 0 disables expiry.
func NewCodec(secret string, ttl time.Duration) (*Codec, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	if ttl < 0 {
		ttl = 0
	}
	return &Codec{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// TTL returns the configured token lifetime; zero means tokens never expire.
func (c *Codec) TTL() time.Duration { return c.ttl }

// Issue returns a signed token bound to userID and purpose.
func (c *Codec) Issue(userID, purpose string) (string, error) {
	if userID == "" || purpose == "" {
		return "", errors.New("issue token: user id and purpose are required")
	}
	now := c.now()
	rc := jwt.RegisteredClaims{
		ID:       uuid.NewString(),
		IssuedAt: jwt.NewNumericDate(now),
	}
	if c.ttl > 0 {
		rc.ExpiresAt = jwt.NewNumericDate(now.Add(c.ttl))
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, &jwtClaims{
		RegisteredClaims: rc,
		UserID:           userID,
		Purpose:          purpose,
	})
	signed, err := tok.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry of raw and returns its claims.
func (c *Codec) Verify(raw string) (Claims, error) {
	if raw == "" {
		return Claims{}, reject(ErrMalformed, nil)
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
	)
	var claims jwtClaims
	_, err := parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
		return c.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
			return Claims{}, reject(ErrSignatureInvalid, err)
		case errors.Is(err, jwt.ErrTokenExpired):
			return Claims{}, reject(ErrExpired, err)
		default:
			return Claims{}, reject(ErrMalformed, err)
		}
	}

	if claims.UserID == "" || claims.Purpose == "" || claims.IssuedAt == nil {
		return Claims{}, reject(ErrMalformed, errors.New("missing required claims"))
	}

	out := Claims{
		UserID:   claims.UserID,
		Purpose:  claims.Purpose,
		IssuedAt: claims.IssuedAt.Time.UTC(),
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time.UTC()
	}
	return out, nil
}
