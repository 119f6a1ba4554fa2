// Package hasher turns secrets into storable bcrypt digests and checks
// secrets against them. bcrypt embeds a random per-call salt and the cost in
// the digest, so a digest alone is enough to verify.
package hasher

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MaxSecretBytes is the longest secret bcrypt accepts.
const MaxSecretBytes = 72

var (
	// ErrEmptySecret is returned by Hash for an empty secret.
	ErrEmptySecret = errors.New("secret is empty")
	// ErrSecretTooLong is returned by Hash for secrets over MaxSecretBytes.
	ErrSecretTooLong = errors.New("secret exceeds 72 bytes")
)

// Bcrypt hashes with a fixed cost.
type Bcrypt struct {
	cost int
}

// New returns a bcrypt hasher. A cost outside bcrypt's accepted range falls
// back to bcrypt.DefaultCost.
func New(cost int) *Bcrypt {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Bcrypt{cost: cost}
}

// Hash returns a salted digest of secret.
func (b *Bcrypt) Hash(secret string) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}
	if len(secret) > MaxSecretBytes {
		return "", ErrSecretTooLong
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(secret), b.cost)
	if err != nil {
		return "", fmt.Errorf("hash secret: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether secret matches digest. Malformed digests yield false.
func (b *Bcrypt) Verify(secret, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(secret)) == nil
}
