package service

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"todo_api/internal/apperr"
	"todo_api/internal/models"
	"todo_api/internal/repository"
	"todo_api/internal/repository/db"
	"todo_api/internal/security/hasher"
	"todo_api/internal/security/token"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// store runs the services against a migrated SQLite file.
type store struct {
	db    *sql.DB
	repos *repository.Repository
	svc   *Service
	users *UserService
	codec *token.Codec
}

func newStore(t *testing.T) *store {
	t.Helper()
	ctx := context.Background()

	conn, err := db.InitDB(ctx, db.Options{
		Driver: db.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "todo.db"),
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	codec, err := token.NewCodec("property-secret", 0)
	require.NoError(t, err)

	repos := repository.NewRepository(conn, repository.Options{Dialect: repository.SQLite, QueryTimeout: 5 * time.Second})
	svc := NewService(repos, Deps{Hasher: hasher.New(bcrypt.MinCost), Tokens: codec})
	return &store{db: conn, repos: repos, svc: svc, users: svc.Users.(*UserService), codec: codec}
}

func (s *store) count(t *testing.T, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, s.db.QueryRow(query, args...).Scan(&n))
	return n
}

func TestStore_CreateThenAuthenticate(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	created, err := s.users.Create(ctx, "new@example.com", "newUserPass")
	require.NoError(t, err)

	got, err := s.users.Authenticate(ctx, "new@example.com", "newUserPass")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "new@example.com", got.Email)
	assert.NotEqual(t, "newUserPass", got.PasswordHash)

	_, err = s.users.Authenticate(ctx, "new@example.com", "wrongPass")
	assert.ErrorIs(t, err, ErrBadSecret)
}

func TestStore_SecretLengthBoundary(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	longest := strings.Repeat("a", hasher.MaxSecretBytes)
	_, err := s.users.Create(ctx, "max@example.com", longest)
	require.NoError(t, err)
	_, err = s.users.Authenticate(ctx, "max@example.com", longest)
	require.NoError(t, err)

	_, err = s.users.Create(ctx, "long@example.com", longest+"a")
	require.ErrorIs(t, err, ErrLongSecret)
	assert.True(t, apperr.IsValidation(err))
	assert.Zero(t, s.count(t, `SELECT COUNT(*) FROM users WHERE email = ?`, "long@example.com"))
}

func TestStore_IssuedTokenVerifies(t *testing.T) {
	s := newStore(t)
	u, raw, err := s.users.Register(context.Background(), "u1@example.com", "secret-1")
	require.NoError(t, err)

	claims, err := s.codec.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, PurposeAuth, claims.Purpose)
}

func TestStore_RevokedTokenIsRejectedButStillVerifies(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	u, raw, err := s.users.Register(ctx, "alice@example.com", "secret-1")
	require.NoError(t, err)

	found, err := s.users.FindByToken(ctx, raw)
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)

	_, err = s.users.RevokeToken(ctx, u, raw)
	require.NoError(t, err)

	_, err = s.users.FindByToken(ctx, raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = s.codec.Verify(raw)
	assert.NoError(t, err, "the signature itself stays valid")
}

func TestStore_DuplicateEmail(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	_, err := s.users.Create(ctx, "dup@example.com", "secret-1")
	require.NoError(t, err)
	_, err = s.users.Create(ctx, " DUP@example.com", "secret-2")
	assert.ErrorIs(t, err, ErrEmailTaken)

	assert.Equal(t, 1, s.count(t, `SELECT COUNT(*) FROM users WHERE email = ?`, "dup@example.com"))
}

func TestStore_DeletedUserTokenIsRejected(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	u, raw, err := s.users.Register(ctx, "gone@example.com", "secret-1")
	require.NoError(t, err)

	removed, err := s.users.Delete(ctx, u)
	require.NoError(t, err)
	require.True(t, removed)

	_, err = s.users.FindByToken(ctx, raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Equal(t, 0, s.count(t, `SELECT COUNT(*) FROM user_tokens WHERE user_id = ?`, u.ID), "tokens cascade")
}

func TestStore_RevokeTwiceIsIdempotent(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	u, raw, err := s.users.Register(ctx, "twice@example.com", "secret-1")
	require.NoError(t, err)
	_, keep, err := s.users.Login(ctx, "twice@example.com", "secret-1")
	require.NoError(t, err)

	first, err := s.users.RevokeToken(ctx, u, raw)
	require.NoError(t, err)
	assert.True(t, first)
	before, err := s.repos.Users.ListTokens(ctx, u.ID)
	require.NoError(t, err)

	second, err := s.users.RevokeToken(ctx, u, raw)
	require.NoError(t, err)
	assert.False(t, second)
	after, err := s.repos.Users.ListTokens(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	require.Len(t, after, 1)
	assert.Equal(t, keep, after[0].Token)
}

func TestStore_TodoLifecycleIsOwnerScoped(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	alice, _, err := s.users.Register(ctx, "alice@example.com", "secret-1")
	require.NoError(t, err)
	bob, _, err := s.users.Register(ctx, "bob@example.com", "secret-1")
	require.NoError(t, err)

	first, err := s.svc.Todos.Create(ctx, alice.ID, "first")
	require.NoError(t, err)
	_, err = s.svc.Todos.Create(ctx, alice.ID, "second")
	require.NoError(t, err)

	list, err := s.svc.Todos.List(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "first", list[0].Text)

	_, err = s.svc.Todos.Get(ctx, bob.ID, first.ID)
	assert.ErrorIs(t, err, ErrTodoNotFound)
	_, err = s.svc.Todos.Delete(ctx, bob.ID, first.ID)
	assert.ErrorIs(t, err, ErrTodoNotFound)

	done, err := s.svc.Todos.Update(ctx, alice.ID, first.ID, TodoPatch{Completed: ptr(true), Text: ptr("renamed")})
	require.NoError(t, err)
	assert.True(t, done.Completed)
	require.NotNil(t, done.CompletedAt)
	assert.Equal(t, "renamed", done.Text)

	reopened, err := s.svc.Todos.Update(ctx, alice.ID, first.ID, TodoPatch{})
	require.NoError(t, err)
	assert.False(t, reopened.Completed)
	assert.Nil(t, reopened.CompletedAt)
	assert.Equal(t, "renamed", reopened.Text)

	deleted, err := s.svc.Todos.Delete(ctx, alice.ID, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, deleted.ID)
	_, err = s.svc.Todos.Get(ctx, alice.ID, first.ID)
	assert.ErrorIs(t, err, ErrTodoNotFound)
}

func TestStore_DeleteAccountCascades(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	u, raw, err := s.users.Register(ctx, "leaver@example.com", "secret-1")
	require.NoError(t, err)
	_, err = s.svc.Todos.Create(ctx, u.ID, "one")
	require.NoError(t, err)

	require.NoError(t, s.svc.Users.DeleteAccount(ctx, u))

	assert.Equal(t, 0, s.count(t, `SELECT COUNT(*) FROM todos WHERE owner_id = ?`, u.ID))
	assert.Equal(t, 0, s.count(t, `SELECT COUNT(*) FROM users WHERE id = ?`, u.ID))
	_, err = s.users.FindByToken(ctx, raw)
	assert.ErrorIs(t, err, ErrInvalidToken)

	events, err := s.svc.EventLog.List(ctx, u.ID, LogFilter{Type: EventAccountDeleted})
	require.NoError(t, err)
	assert.Len(t, events, 1, "the audit trail outlives the account")
}

func TestStore_AuditTrail(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	u, raw, err := s.users.Register(ctx, "audit@example.com", "secret-1")
	require.NoError(t, err)
	_, _, err = s.users.Login(ctx, "audit@example.com", "bad-secret")
	require.Error(t, err)
	require.NoError(t, s.users.Logout(ctx, u, raw))

	all, err := s.svc.EventLog.List(ctx, u.ID, LogFilter{})
	require.NoError(t, err)
	types := make([]string, 0, len(all))
	for _, e := range all {
		types = append(types, e.Type)
	}
	assert.Equal(t, []string{EventRegistered, EventLoginFailed, EventLogout}, types)

	failed, err := s.svc.EventLog.List(ctx, u.ID, LogFilter{Type: "login_failed"})
	require.NoError(t, err)
	assert.Len(t, failed, 1)

	future, err := s.svc.EventLog.List(ctx, u.ID, LogFilter{From: time.Now().Add(time.Hour)})
	require.NoError(t, err)
	assert.Empty(t, future)
}

func TestStore_SweeperRemovesExpiredTokens(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	u, live, err := s.users.Register(ctx, "sweep@example.com", "secret-1")
	require.NoError(t, err)

	past := time.Now().UTC().Add(-time.Hour)
	require.NoError(t, s.repos.Users.AddToken(ctx, models.Session{
		UserID: u.ID, Token: "stale", Purpose: PurposeAuth, IssuedAt: past.Add(-time.Hour), ExpiresAt: &past,
	}))

	n, err := NewTokenSweeper(s.repos.Users, nil, nil).SweepOnce(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	left, err := s.repos.Users.ListTokens(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, live, left[0].Token)
}
