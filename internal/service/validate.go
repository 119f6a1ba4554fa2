package service

import (
	"fmt"
	"strings"

	"todo_api/internal/security/hasher"

	"github.com/go-playground/validator/v10"
	"github.com/oklog/ulid/v2"
)

var validate = validator.New()

// normalizeEmail trims and lowercases so lookups match what registration stored.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateCredentials(email, secret string, minLen int) error {
	if err := validate.Var(email, "required,email,max=254"); err != nil {
		return ErrInvalidEmail
	}
	if len(secret) < minLen {
		return fmt.Errorf("%w: at least %d characters required", ErrWeakSecret, minLen)
	}
	if len(secret) > hasher.MaxSecretBytes {
		return fmt.Errorf("%w: at most %d bytes allowed", ErrLongSecret, hasher.MaxSecretBytes)
	}
	return nil
}

// newID returns a fresh lexicographically sortable id.
func newID() string {
	return ulid.Make().String()
}

// validID reports whether id could have been produced by newID.
func validID(id string) bool {
	_, err := ulid.ParseStrict(id)
	return err == nil
}
