package token

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCodec(t *testing.T, ttl time.Duration) *Codec {
	t.Helper()
	c, err := NewCodec("test-secret", ttl)
	require.NoError(t, err)
	return c
}

func assertRejected(t *testing.T, err error, reason error) {
	t.Helper()
	require.Error(t, err)
	var rej *RejectedError
	require.True(t, errors.As(err, &rej), "expected *RejectedError, got %T", err)
	assert.ErrorIs(t, err, reason)
}

func TestNewCodec_EmptySecret(t *testing.T) {
	_, err := NewCodec("", time.Hour)
	require.ErrorIs(t, err, ErrEmptySecret)
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	c := newTestCodec(t, 0)

	raw, err := c.Issue("U1", "auth")
	require.NoError(t, err)

	claims, err := c.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, "U1", claims.UserID)
	assert.Equal(t, "auth", claims.Purpose)
	assert.False(t, claims.IssuedAt.IsZero())
	assert.True(t, claims.ExpiresAt.IsZero(), "no ttl means no expiry")
}

func TestIssue_TokensAreDistinct(t *testing.T) {
	c := newTestCodec(t, 0)
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return fixed }

	a, err := c.Issue("U1", "auth")
	require.NoError(t, err)
	b, err := c.Issue("U1", "auth")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestIssue_RequiresUserAndPurpose(t *testing.T) {
	c := newTestCodec(t, 0)
	_, err := c.Issue("", "auth")
	assert.Error(t, err)
	_, err = c.Issue("U1", "")
	assert.Error(t, err)
}

func TestVerify_Expired(t *testing.T) {
	c := newTestCodec(t, time.Hour)
	t0 := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return t0 }

	raw, err := c.Issue("U1", "auth")
	require.NoError(t, err)

	claims, err := c.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, t0.Add(time.Hour), claims.ExpiresAt)

	c.now = func() time.Time { return t0.Add(2 * time.Hour) }
	_, err = c.Verify(raw)
	assertRejected(t, err, ErrExpired)
}

func TestVerify_SignatureInvalid(t *testing.T) {
	c := newTestCodec(t, 0)
	other, err := NewCodec("another-secret", 0)
	require.NoError(t, err)

	forged, err := other.Issue("U1", "auth")
	require.NoError(t, err)
	_, err = c.Verify(forged)
	assertRejected(t, err, ErrSignatureInvalid)

	// Swap the claims segment of a genuine token for one naming another user.
	genuine, err := c.Issue("U1", "auth")
	require.NoError(t, err)
	victim, err := c.Issue("U2", "auth")
	require.NoError(t, err)
	g := strings.Split(genuine, ".")
	v := strings.Split(victim, ".")
	tampered := g[0] + "." + v[1] + "." + g[2]
	_, err = c.Verify(tampered)
	assertRejected(t, err, ErrSignatureInvalid)
}

func TestVerify_UnexpectedAlgorithm(t *testing.T) {
	c := newTestCodec(t, 0)
	claims := &jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{IssuedAt: jwt.NewNumericDate(time.Now())},
		UserID:           "U1",
		Purpose:          "auth",
	}

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = c.Verify(none)
	assertRejected(t, err, ErrSignatureInvalid)

	hs384, err := jwt.NewWithClaims(jwt.SigningMethodHS384, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = c.Verify(hs384)
	assertRejected(t, err, ErrSignatureInvalid)
}

func TestVerify_Malformed(t *testing.T) {
	c := newTestCodec(t, 0)
	for _, raw := range []string{"", "abc", "a.b.c", "not.a.jwt.at.all"} {
		t.Run(raw, func(t *testing.T) {
			_, err := c.Verify(raw)
			assertRejected(t, err, ErrMalformed)
		})
	}
}

func TestVerify_MissingClaims(t *testing.T) {
	c := newTestCodec(t, 0)
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{IssuedAt: jwt.NewNumericDate(time.Now())},
		Purpose:          "auth",
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = c.Verify(raw)
	assertRejected(t, err, ErrMalformed)
}

func TestCodec_ConcurrentUse(t *testing.T) {
	c := newTestCodec(t, time.Hour)

	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			raw, err := c.Issue("U1", "auth")
			if err != nil {
				errs <- err
				return
			}
			if _, err := c.Verify(raw); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent issue/verify failed: %v", err)
	}
}
