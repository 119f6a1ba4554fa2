package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"todo_api/internal/logger"
	"todo_api/internal/metrics"
	"todo_api/internal/models"
	"todo_api/internal/repository"
	"todo_api/internal/security/token"
)

// PurposeAuth tags session tokens handed out on registration and login.
const PurposeAuth = "auth"

const defaultMinPasswordLength = 6

// Audit event types.
const (
	EventRegistered     = "REGISTERED"
	EventLogin          = "LOGIN"
	EventLoginFailed    = "LOGIN_FAILED"
	EventLogout         = "LOGOUT"
	EventAccountDeleted = "ACCOUNT_DELETED"
)

// UserService handles user records, credentials and session tokens.
type UserService struct {
	users   repository.UserRepo
	todos   repository.TodoRepo
	events  repository.EventRepo
	hasher  CredentialHasher
	tokens  TokenCodec
	log     *logger.Logger
	metrics *metrics.Metrics
	minLen  int
	now     func() time.Time

	decoyOnce   sync.Once
	decoyDigest string
}

func NewUserService(users repository.UserRepo, todos repository.TodoRepo, events repository.EventRepo, deps Deps) *UserService {
	minLen := deps.MinPasswordLength
	if minLen < 1 {
		minLen = defaultMinPasswordLength
	}
	return &UserService{
		users:   users,
		todos:   todos,
		events:  events,
		hasher:  deps.Hasher,
		tokens:  deps.Tokens,
		log:     logger.OrNop(deps.Logger),
		metrics: deps.Metrics,
		minLen:  minLen,
		now:     time.Now,
	}
}

// Create validates the credentials, hashes the secret and persists a new
// user. The store's unique constraint decides whether the email is taken.
func (s *UserService) Create(ctx context.Context, email, secret string) (*models.User, error) {
	email = normalizeEmail(email)
	if err := validateCredentials(email, secret, s.minLen); err != nil {
		return nil, err
	}

	digest, err := s.hasher.Hash(secret)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	u := models.User{
		ID:           newID(),
		Email:        email,
		PasswordHash: digest,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return &u, nil
}

// Authenticate returns the user whose email and secret match. With
// ErrBadSecret the matched user is returned too, for auditing.
func (s *UserService) Authenticate(ctx context.Context, email, secret string) (*models.User, error) {
	u, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if u == nil {
		// Spend the same bcrypt work as a real comparison.
		s.hasher.Verify(secret, s.decoy())
		return nil, ErrUserNotFound
	}
	if !s.hasher.Verify(secret, u.PasswordHash) {
		return u, ErrBadSecret
	}
	return u, nil
}

// decoy returns a digest no caller's secret will match.
func (s *UserService) decoy() string {
	s.decoyOnce.Do(func() {
		digest, err := s.hasher.Hash(newID())
		if err != nil {
			s.log.Errorw("decoy_digest_failed", "err", err)
			return
		}
		s.decoyDigest = digest
	})
	return s.decoyDigest
}

// IssueToken signs a token for u and records it as active.
func (s *UserService) IssueToken(ctx context.Context, u *models.User, purpose string) (string, error) {
	raw, err := s.tokens.Issue(u.ID, purpose)
	if err != nil {
		return "", err
	}
	claims, err := s.tokens.Verify(raw)
	if err != nil {
		return "", fmt.Errorf("verify issued token: %w", err)
	}

	sess := models.Session{
		UserID:   u.ID,
		Token:    raw,
		Purpose:  purpose,
		IssuedAt: claims.IssuedAt,
	}
	if !claims.ExpiresAt.IsZero() {
		exp := claims.ExpiresAt
		sess.ExpiresAt = &exp
	}
	if err := s.users.AddToken(ctx, sess); err != nil {
		if errors.Is(err, repository.ErrMissingParent) {
			return "", ErrInvalidToken
		}
		return "", err
	}
	return raw, nil
}

// Register creates the account and signs it in.
func (s *UserService) Register(ctx context.Context, email, password string) (*models.User, string, error) {
	u, err := s.Create(ctx, email, password)
	if err != nil {
		return nil, "", err
	}
	raw, err := s.IssueToken(ctx, u, PurposeAuth)
	if err != nil {
		// Without a token the client cannot use the account, and a retry
		// would hit ErrEmailTaken, so the new row is rolled back.
		if _, derr := s.users.Delete(context.WithoutCancel(ctx), u.ID); derr != nil {
			s.log.Errorw("register_rollback_failed", "user_id", u.ID, "err", derr)
		}
		return nil, "", err
	}

	s.metrics.Registered()
	s.audit(ctx, u.ID, EventRegistered, "Account registered", nil)
	return u, raw, nil
}

// Login authenticates and issues a fresh session token.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	u, err := s.Authenticate(ctx, email, password)
	if err != nil {
		if errors.Is(err, ErrBadSecret) {
			s.audit(ctx, u.ID, EventLoginFailed, "Wrong password", nil)
		}
		if errors.Is(err, ErrBadSecret) || errors.Is(err, ErrUserNotFound) {
			s.metrics.Login(metrics.LoginFailed)
		}
		return nil, "", err
	}

	raw, err := s.IssueToken(ctx, u, PurposeAuth)
	if err != nil {
		return nil, "", err
	}

	s.metrics.Login(metrics.LoginOK)
	s.audit(ctx, u.ID, EventLogin, "Signed in", nil)
	return u, raw, nil
}

// FindByToken verifies raw and confirms, in one query, that its user still
// holds it. Revoked tokens and deleted users are rejected even though the
// signature is fine.
func (s *UserService) FindByToken(ctx context.Context, raw string) (*models.User, error) {
	if raw == "" {
		s.metrics.TokenRejected("missing")
		return nil, ErrInvalidToken
	}

	claims, err := s.tokens.Verify(raw)
	if err != nil {
		s.metrics.TokenRejected(rejectionReason(err))
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if claims.Purpose != PurposeAuth {
		s.metrics.TokenRejected("purpose")
		return nil, ErrInvalidToken
	}

	u, err := s.users.FindByToken(ctx, claims.UserID, raw, claims.Purpose)
	if err != nil {
		return nil, err
	}
	if u == nil {
		s.metrics.TokenRejected("revoked")
		return nil, ErrInvalidToken
	}
	return u, nil
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, token.ErrExpired):
		return "expired"
	case errors.Is(err, token.ErrSignatureInvalid):
		return "signature_invalid"
	default:
		return "malformed"
	}
}

// RevokeToken removes one token of u. Revoking an unknown token is a no-op.
func (s *UserService) RevokeToken(ctx context.Context, u *models.User, raw string) (bool, error) {
	return s.users.RevokeToken(ctx, u.ID, raw)
}

func (s *UserService) Logout(ctx context.Context, u *models.User, raw string) error {
	removed, err := s.RevokeToken(ctx, u, raw)
	if err != nil {
		return err
	}
	if removed {
		s.audit(ctx, u.ID, EventLogout, "Signed out", nil)
	}
	return nil
}

// Delete removes the user record; its tokens go with it.
func (s *UserService) Delete(ctx context.Context, u *models.User) (bool, error) {
	return s.users.Delete(ctx, u.ID)
}

// DeleteAccount removes the user's todos, then the user.
func (s *UserService) DeleteAccount(ctx context.Context, u *models.User) error {
	n, err := s.todos.DeleteByOwner(ctx, u.ID)
	if err != nil {
		return err
	}
	if _, err := s.Delete(ctx, u); err != nil {
		return err
	}
	s.audit(ctx, u.ID, EventAccountDeleted, "Account deleted", map[string]any{"todos_removed": n})
	return nil
}

// Sessions lists the active tokens of u, flagging the one in use.
func (s *UserService) Sessions(ctx context.Context, u *models.User, current string) ([]SessionInfo, error) {
	list, err := s.users.ListTokens(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	out := make([]SessionInfo, 0, len(list))
	for _, t := range list {
		out = append(out, SessionInfo{
			Purpose:   t.Purpose,
			IssuedAt:  t.IssuedAt,
			ExpiresAt: t.ExpiresAt,
			Current:   t.Token == current,
		})
	}
	return out, nil
}

// audit appends an event; a failure is logged and never fails the caller.
func (s *UserService) audit(ctx context.Context, userID, typ, desc string, meta map[string]any) {
	e := models.AuthEvent{
		EventID:     newID(),
		UserID:      userID,
		OccurredAt:  s.now().UTC(),
		Type:        typ,
		Description: desc,
	}
	if meta != nil {
		e.Metadata = meta
	}
	if err := s.events.Append(ctx, e); err != nil {
		s.log.Errorw("auth_event_append_failed", "user_id", userID, "type", typ, "err", err)
	}
}
